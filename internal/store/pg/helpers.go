package pg

import "time"

// nullTime returns nil for a zero time.Time so the query's COALESCE(..., now())
// fallback applies, and a pointer to t otherwise.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
