package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qscuio/qubot/internal/domain"
)

// MessageCacheStore persists monitor_message_cache: messages retained
// per channel between report cycles, and monitor_history: the
// forwarded-message audit trail.
type MessageCacheStore struct {
	db *sql.DB
}

// NewMessageCacheStore constructs a MessageCacheStore backed by db.
func NewMessageCacheStore(db *sql.DB) *MessageCacheStore {
	return &MessageCacheStore{db: db}
}

// Add inserts a cached message, assigning it an id if unset.
func (s *MessageCacheStore) Add(ctx context.Context, m domain.CachedMessage) error {
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_message_cache (id, channel_id, sender_id, text, html, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))`,
		m.ID, m.ChannelID, m.SenderID, m.Text, m.HTML, m.URL, nullTime(m.CreatedAt))
	return err
}

// ListByChannel returns every cached message for channelID, oldest first.
func (s *MessageCacheStore) ListByChannel(ctx context.Context, channelID string) ([]domain.CachedMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, sender_id, text, html, url, created_at
		FROM monitor_message_cache WHERE channel_id = $1 ORDER BY created_at ASC`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CachedMessage
	for rows.Next() {
		var m domain.CachedMessage
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Text, &m.HTML, &m.URL, &m.CreatedAt); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ChannelsWithCache returns the distinct channel ids with at least one
// cached message, satisfying scheduler.ChannelReporter.Channels.
func (s *MessageCacheStore) ChannelsWithCache(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT channel_id FROM monitor_message_cache ORDER BY channel_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Clear deletes every cached message for channelID, used once a report
// cycle has consumed them.
func (s *MessageCacheStore) Clear(ctx context.Context, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM monitor_message_cache WHERE channel_id = $1`, channelID)
	return err
}

// HistoryEntry is one forwarded-message audit record.
type HistoryEntry struct {
	UserID    string
	ChannelID string
	Text      string
	Outcome   string
	CreatedAt time.Time
}

// HistoryStore persists monitor_history: the forwarded-message audit log.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore constructs a HistoryStore backed by db.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Add records one forwarded (or dropped) message for audit.
func (s *HistoryStore) Add(ctx context.Context, h HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_history (user_id, channel_id, text, outcome, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))`,
		h.UserID, h.ChannelID, h.Text, h.Outcome, nullTime(h.CreatedAt))
	return err
}

// ListByUser returns a user's forwarded-message history, newest first.
func (s *HistoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, channel_id, text, outcome, created_at
		FROM monitor_history WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.UserID, &h.ChannelID, &h.Text, &h.Outcome, &h.CreatedAt); err != nil {
			continue
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
