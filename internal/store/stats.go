package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string  `json:"db_path"`
	DBSizeBytes   int64   `json:"db_size_bytes"`
	TotalMeals    int     `json:"total_meals"`
	TotalDays     int     `json:"total_days_summarized"`
	DaysMet       int     `json:"days_goal_met"`
	TotalWeighIns int     `json:"total_weigh_ins"`
	BankedTotal   float64 `json:"banked_calories_lifetime"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath, userID string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals WHERE user_id = ?`, userID).Scan(&st.TotalMeals)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM day_summaries WHERE user_id = ?`, userID).Scan(&st.TotalDays)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM day_summaries WHERE user_id = ? AND goal_met = 1`, userID).Scan(&st.DaysMet)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weights WHERE user_id = ?`, userID).Scan(&st.TotalWeighIns)
	s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(banked_calories), 0) FROM day_summaries WHERE user_id = ?`, userID).Scan(&st.BankedTotal)

	return st, nil
}
