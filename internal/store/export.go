package store

import (
	"context"
	"fmt"

	"github.com/jsantoro/mealbank/internal/model"
)

// Backup is the portable dump of one user's ledger.
type Backup struct {
	Meals     []model.Meal        `json:"meals"`
	Summaries []model.DaySummary  `json:"summaries"`
	Weights   []model.WeightEntry `json:"weights"`
	Water     map[string]float64  `json:"water"` // date key -> ml
}

// Export dumps every meal, summary, weight entry and water total for a user.
func (s *SQLiteStore) Export(ctx context.Context, userID string) (*Backup, error) {
	b := &Backup{Water: make(map[string]float64)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, date_key, eaten_at, calories, protein_g, carbs_g, fat_g, covered_by_bank, created_at
		FROM meals WHERE user_id = ? ORDER BY date_key, eaten_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("export meals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		b.Meals = append(b.Meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	b.Summaries, err = s.Summaries(ctx, userID, 100000)
	if err != nil {
		return nil, err
	}
	b.Weights, err = s.Weights(ctx, userID, 100000)
	if err != nil {
		return nil, err
	}

	wrows, err := s.db.QueryContext(ctx,
		`SELECT date_key, ml FROM water WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("export water: %w", err)
	}
	defer wrows.Close()
	for wrows.Next() {
		var day string
		var ml float64
		if err := wrows.Scan(&day, &ml); err != nil {
			return nil, err
		}
		b.Water[day] = ml
	}
	return b, wrows.Err()
}

// Import loads a backup produced by Export. Existing rows with the same keys
// are overwritten. Returns the number of records written.
func (s *SQLiteStore) Import(ctx context.Context, userID string, b *Backup) (int, error) {
	var ops []WriteOp
	for _, m := range b.Meals {
		ops = append(ops, PutMeal(m))
	}
	for _, sum := range b.Summaries {
		ops = append(ops, PutSummary(sum))
	}
	if err := s.BatchWrite(ctx, userID, ops); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	count := len(ops)
	for day, ml := range b.Water {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO water (user_id, date_key, ml) VALUES (?, ?, ?)
			ON CONFLICT(user_id, date_key) DO UPDATE SET ml = excluded.ml`,
			userID, day, ml)
		if err != nil {
			return count, fmt.Errorf("import water: %w", err)
		}
		count++
	}
	for _, w := range b.Weights {
		if _, err := s.LogWeight(ctx, userID, w.WeightKG, w.Notes); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
