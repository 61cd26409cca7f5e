package pg

import (
	"context"
	"database/sql"

	"github.com/qscuio/qubot/internal/hotwords"
)

// HotWordStore implements hotwords.Store backed by the hot_words table,
// keyed by (date, channel_id, word) with additive upsert.
type HotWordStore struct {
	db *sql.DB
}

// NewHotWordStore constructs a HotWordStore backed by db.
func NewHotWordStore(db *sql.DB) *HotWordStore {
	return &HotWordStore{db: db}
}

var _ hotwords.Store = (*HotWordStore)(nil)

// Upsert additively increments (date, channel_id, word)'s count by delta.
func (s *HotWordStore) Upsert(ctx context.Context, date, channelID, word, category string, delta int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hot_words (date, channel_id, word, category, count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date, channel_id, word) DO UPDATE SET
			count = hot_words.count + EXCLUDED.count,
			category = EXCLUDED.category`,
		date, channelID, word, category, delta)
	return err
}

// CountsForDate returns word -> count for one channel/date.
func (s *HotWordStore) CountsForDate(ctx context.Context, channelID, date string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, count FROM hot_words WHERE channel_id = $1 AND date = $2`, channelID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var word string
		var count int
		if err := rows.Scan(&word, &count); err != nil {
			continue
		}
		out[word] = count
	}
	return out, rows.Err()
}

// AverageOverDays returns word -> average daily count over the `days`
// days preceding (but not including) date.
func (s *HotWordStore) AverageOverDays(ctx context.Context, channelID, date string, days int) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, AVG(count) FROM hot_words
		WHERE channel_id = $1 AND date < $2 AND date >= ($2::date - ($3 || ' days')::interval)
		GROUP BY word`, channelID, date, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var word string
		var avg float64
		if err := rows.Scan(&word, &avg); err != nil {
			continue
		}
		out[word] = avg
	}
	return out, rows.Err()
}
