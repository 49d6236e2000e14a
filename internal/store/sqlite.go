package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/jsantoro/mealbank/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meals (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		name            TEXT NOT NULL,
		date_key        TEXT NOT NULL,
		eaten_at        TEXT NOT NULL,
		calories        REAL NOT NULL DEFAULT 0,
		protein_g       REAL NOT NULL DEFAULT 0,
		carbs_g         REAL NOT NULL DEFAULT 0,
		fat_g           REAL NOT NULL DEFAULT 0,
		covered_by_bank REAL NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meals_user_day ON meals(user_id, date_key);
	CREATE INDEX IF NOT EXISTS idx_meals_eaten ON meals(user_id, date_key, eaten_at);

	CREATE TABLE IF NOT EXISTS water (
		user_id  TEXT NOT NULL,
		date_key TEXT NOT NULL,
		ml       REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date_key)
	);

	CREATE TABLE IF NOT EXISTS day_summaries (
		user_id            TEXT NOT NULL,
		date_key           TEXT NOT NULL,
		consumed_calories  REAL NOT NULL DEFAULT 0,
		consumed_protein_g REAL NOT NULL DEFAULT 0,
		consumed_carbs_g   REAL NOT NULL DEFAULT 0,
		consumed_fat_g     REAL NOT NULL DEFAULT 0,
		goal_calories      REAL NOT NULL DEFAULT 0,
		goal_protein_g     REAL NOT NULL DEFAULT 0,
		goal_carbs_g       REAL NOT NULL DEFAULT 0,
		goal_fat_g         REAL NOT NULL DEFAULT 0,
		goal_type          TEXT NOT NULL DEFAULT 'maintain',
		goal_met           INTEGER NOT NULL DEFAULT 0,
		protein_goal_met   INTEGER NOT NULL DEFAULT 0,
		water_goal_met     INTEGER,
		banked_calories    REAL NOT NULL DEFAULT 0,
		streak_for_day     INTEGER NOT NULL DEFAULT 0,
		binary_origin      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date_key)
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_date ON day_summaries(user_id, date_key DESC);

	CREATE TABLE IF NOT EXISTS user_state (
		user_id           TEXT PRIMARY KEY,
		current_streak    INTEGER NOT NULL DEFAULT 0,
		highest_streak    INTEGER NOT NULL DEFAULT 0,
		last_date_checked TEXT,
		bank_week_id      TEXT NOT NULL DEFAULT '',
		bank_calories     REAL NOT NULL DEFAULT 0,
		bank_start        TEXT NOT NULL DEFAULT '',
		bank_end          TEXT NOT NULL DEFAULT '',
		goal_calories     REAL NOT NULL DEFAULT 0,
		goal_protein_g    REAL NOT NULL DEFAULT 0,
		goal_carbs_g      REAL NOT NULL DEFAULT 0,
		goal_fat_g        REAL NOT NULL DEFAULT 0,
		goal_water_ml     REAL NOT NULL DEFAULT 0,
		goal_type         TEXT NOT NULL DEFAULT 'maintain',
		updated_at        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS weights (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		measured_at TEXT NOT NULL,
		weight_kg   REAL NOT NULL,
		notes       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_weights_user ON weights(user_id, measured_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) MealsForDay(ctx context.Context, userID, dateKey string) ([]model.Meal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, date_key, eaten_at, calories, protein_g, carbs_g, fat_g, covered_by_bank, created_at
		FROM meals WHERE user_id = ? AND date_key = ?
		ORDER BY eaten_at ASC`, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("meals for %s: %w", dateKey, err)
	}
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *SQLiteStore) WaterForDay(ctx context.Context, userID, dateKey string) (float64, error) {
	var ml float64
	err := s.db.QueryRowContext(ctx,
		`SELECT ml FROM water WHERE user_id = ? AND date_key = ?`, userID, dateKey).Scan(&ml)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("water for %s: %w", dateKey, err)
	}
	return ml, nil
}

func (s *SQLiteStore) DaySummary(ctx context.Context, userID, dateKey string) (*model.DaySummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date_key, consumed_calories, consumed_protein_g, consumed_carbs_g, consumed_fat_g,
		       goal_calories, goal_protein_g, goal_carbs_g, goal_fat_g, goal_type,
		       goal_met, protein_goal_met, water_goal_met, banked_calories, streak_for_day, binary_origin
		FROM day_summaries WHERE user_id = ? AND date_key = ?`, userID, dateKey)

	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("summary for %s: %w", dateKey, err)
	}
	return &sum, nil
}

func (s *SQLiteStore) Summaries(ctx context.Context, userID string, limit int) ([]model.DaySummary, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date_key, consumed_calories, consumed_protein_g, consumed_carbs_g, consumed_fat_g,
		       goal_calories, goal_protein_g, goal_carbs_g, goal_fat_g, goal_type,
		       goal_met, protein_goal_met, water_goal_met, banked_calories, streak_for_day, binary_origin
		FROM day_summaries WHERE user_id = ?
		ORDER BY date_key DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var sums []model.DaySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// BatchWrite applies all operations in a single transaction. Either every
// operation commits or none do.
func (s *SQLiteStore) BatchWrite(ctx context.Context, userID string, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch op.Kind {
		case OpPutMeal:
			if err := putMealTx(ctx, tx, userID, op.Meal, s.newID); err != nil {
				return err
			}
		case OpDeleteMeal:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM meals WHERE user_id = ? AND id = ?`, userID, op.MealID); err != nil {
				return fmt.Errorf("delete meal %s: %w", op.MealID, err)
			}
		case OpPutSummary:
			if err := putSummaryTx(ctx, tx, userID, op.Summary); err != nil {
				return err
			}
		case OpPatchAggregate:
			if err := patchAggregateTx(ctx, tx, userID, *op.Aggregate); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown write op kind %q", op.Kind)
		}
	}

	return tx.Commit()
}

func putMealTx(ctx context.Context, tx *sql.Tx, userID string, m *model.Meal, newID func() string) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meals (id, user_id, name, date_key, eaten_at, calories, protein_g, carbs_g, fat_g, covered_by_bank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, date_key=excluded.date_key, eaten_at=excluded.eaten_at,
			calories=excluded.calories, protein_g=excluded.protein_g, carbs_g=excluded.carbs_g,
			fat_g=excluded.fat_g, covered_by_bank=excluded.covered_by_bank`,
		m.ID, userID, m.Name, m.DateKey, m.EatenAt.Format(time.RFC3339), m.Calories,
		m.ProteinG, m.CarbsG, m.FatG, m.CoveredByBank, m.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put meal %s: %w", m.ID, err)
	}
	return nil
}

func putSummaryTx(ctx context.Context, tx *sql.Tx, userID string, sum *model.DaySummary) error {
	var waterMet interface{}
	if sum.WaterGoalMet != nil {
		waterMet = boolToInt(*sum.WaterGoalMet)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO day_summaries (user_id, date_key, consumed_calories, consumed_protein_g, consumed_carbs_g, consumed_fat_g,
			goal_calories, goal_protein_g, goal_carbs_g, goal_fat_g, goal_type,
			goal_met, protein_goal_met, water_goal_met, banked_calories, streak_for_day, binary_origin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date_key) DO UPDATE SET
			consumed_calories=excluded.consumed_calories, consumed_protein_g=excluded.consumed_protein_g,
			consumed_carbs_g=excluded.consumed_carbs_g, consumed_fat_g=excluded.consumed_fat_g,
			goal_calories=excluded.goal_calories, goal_protein_g=excluded.goal_protein_g,
			goal_carbs_g=excluded.goal_carbs_g, goal_fat_g=excluded.goal_fat_g,
			goal_type=excluded.goal_type, goal_met=excluded.goal_met,
			protein_goal_met=excluded.protein_goal_met, water_goal_met=excluded.water_goal_met,
			banked_calories=excluded.banked_calories, streak_for_day=excluded.streak_for_day,
			binary_origin=excluded.binary_origin`,
		userID, sum.DateKey, sum.ConsumedCalories, sum.ConsumedProteinG, sum.ConsumedCarbsG, sum.ConsumedFatG,
		sum.GoalCalories, sum.GoalProteinG, sum.GoalCarbsG, sum.GoalFatG, string(sum.GoalType),
		boolToInt(sum.GoalMet), boolToInt(sum.ProteinGoalMet), waterMet,
		sum.BankedCalories, sum.StreakForDay, boolToInt(sum.BinaryOrigin))
	if err != nil {
		return fmt.Errorf("put summary %s: %w", sum.DateKey, err)
	}
	return nil
}

func patchAggregateTx(ctx context.Context, tx *sql.Tx, userID string, p AggregatePatch) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_state (user_id, updated_at) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, now)
	if err != nil {
		return fmt.Errorf("ensure user state: %w", err)
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{now}

	add := func(col string, v interface{}) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.CurrentStreak != nil {
		add("current_streak", *p.CurrentStreak)
	}
	if p.HighestStreak != nil {
		add("highest_streak", *p.HighestStreak)
	}
	if p.LastDateChecked != nil {
		add("last_date_checked", *p.LastDateChecked)
	}
	if p.BankWeekID != nil {
		add("bank_week_id", *p.BankWeekID)
	}
	if p.BankCalories != nil {
		add("bank_calories", *p.BankCalories)
	}
	if p.BankStart != nil {
		add("bank_start", *p.BankStart)
	}
	if p.BankEnd != nil {
		add("bank_end", *p.BankEnd)
	}
	if p.Goals != nil {
		add("goal_calories", p.Goals.Calories)
		add("goal_protein_g", p.Goals.ProteinG)
		add("goal_carbs_g", p.Goals.CarbsG)
		add("goal_fat_g", p.Goals.FatG)
		add("goal_water_ml", p.Goals.WaterML)
	}
	if p.GoalType != nil {
		add("goal_type", string(*p.GoalType))
	}

	args = append(args, userID)
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE user_state SET %s WHERE user_id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return fmt.Errorf("patch aggregate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserAggregate(ctx context.Context, userID string) (*model.UserAggregate, error) {
	var agg model.UserAggregate
	var lastChecked sql.NullString
	var goalType string

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, current_streak, highest_streak, last_date_checked,
		       bank_week_id, bank_calories, bank_start, bank_end,
		       goal_calories, goal_protein_g, goal_carbs_g, goal_fat_g, goal_water_ml, goal_type
		FROM user_state WHERE user_id = ?`, userID).Scan(
		&agg.UserID, &agg.Streak.Current, &agg.Streak.Highest, &lastChecked,
		&agg.Bank.WeekID, &agg.Bank.Calories, &agg.Bank.StartDate, &agg.Bank.EndDate,
		&agg.Goals.Calories, &agg.Goals.ProteinG, &agg.Goals.CarbsG, &agg.Goals.FatG,
		&agg.Goals.WaterML, &goalType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user aggregate: %w", err)
	}

	if lastChecked.Valid {
		agg.Streak.LastDateChecked = lastChecked.String
	}
	agg.GoalType = model.GoalType(goalType)
	return &agg, nil
}

func (s *SQLiteStore) UpdateUserAggregate(ctx context.Context, userID string, p AggregatePatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := patchAggregateTx(ctx, tx, userID, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddWater(ctx context.Context, userID, dateKey string, ml float64) (float64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO water (user_id, date_key, ml) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date_key) DO UPDATE SET ml = ml + excluded.ml`,
		userID, dateKey, ml)
	if err != nil {
		return 0, fmt.Errorf("add water: %w", err)
	}
	return s.WaterForDay(ctx, userID, dateKey)
}

func (s *SQLiteStore) LogWeight(ctx context.Context, userID string, weightKG float64, notes string) (*model.WeightEntry, error) {
	e := &model.WeightEntry{
		ID:         s.newID(),
		UserID:     userID,
		MeasuredAt: time.Now().UTC(),
		WeightKG:   weightKG,
		Notes:      notes,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weights (id, user_id, measured_at, weight_kg, notes) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.MeasuredAt.Format(time.RFC3339), e.WeightKG, e.Notes)
	if err != nil {
		return nil, fmt.Errorf("log weight: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) Weights(ctx context.Context, userID string, limit int) ([]model.WeightEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, measured_at, weight_kg, notes
		FROM weights WHERE user_id = ?
		ORDER BY measured_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	var entries []model.WeightEntry
	for rows.Next() {
		var e model.WeightEntry
		var measuredAt string
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &measuredAt, &e.WeightKG, &notes); err != nil {
			return nil, err
		}
		e.MeasuredAt, _ = time.Parse(time.RFC3339, measuredAt)
		if notes.Valid {
			e.Notes = notes.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMeal(row scanner) (model.Meal, error) {
	var m model.Meal
	var eatenAt, createdAt string

	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.DateKey, &eatenAt,
		&m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG, &m.CoveredByBank, &createdAt)
	if err != nil {
		return m, err
	}

	m.EatenAt, _ = time.Parse(time.RFC3339, eatenAt)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}

func scanSummary(row scanner) (model.DaySummary, error) {
	var sum model.DaySummary
	var goalType string
	var goalMet, proteinMet, binaryOrigin int
	var waterMet sql.NullInt64

	err := row.Scan(&sum.DateKey, &sum.ConsumedCalories, &sum.ConsumedProteinG,
		&sum.ConsumedCarbsG, &sum.ConsumedFatG,
		&sum.GoalCalories, &sum.GoalProteinG, &sum.GoalCarbsG, &sum.GoalFatG, &goalType,
		&goalMet, &proteinMet, &waterMet, &sum.BankedCalories, &sum.StreakForDay, &binaryOrigin)
	if err != nil {
		return sum, err
	}

	sum.GoalType = model.GoalType(goalType)
	sum.GoalMet = goalMet != 0
	sum.ProteinGoalMet = proteinMet != 0
	sum.BinaryOrigin = binaryOrigin != 0
	if waterMet.Valid {
		b := waterMet.Int64 != 0
		sum.WaterGoalMet = &b
	}
	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
