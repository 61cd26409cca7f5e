package pg

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/qscuio/qubot/internal/domain"
)

// ChannelStore persists the monitor_channels / monitor_vip_users /
// monitor_blacklist tables: source/target routing, VIP bypass, and
// blacklist entries.
type ChannelStore struct {
	db *sql.DB
}

// NewChannelStore constructs a ChannelStore backed by db.
func NewChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

// Upsert inserts or replaces a channel's routing configuration.
func (s *ChannelStore) Upsert(ctx context.Context, c domain.Channel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_channels
			(channel_id, transport, title, is_source, is_target, is_vip_target, is_report, own_user_ids, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		ON CONFLICT (channel_id) DO UPDATE SET
			transport = EXCLUDED.transport,
			title = EXCLUDED.title,
			is_source = EXCLUDED.is_source,
			is_target = EXCLUDED.is_target,
			is_vip_target = EXCLUDED.is_vip_target,
			is_report = EXCLUDED.is_report,
			own_user_ids = EXCLUDED.own_user_ids,
			category = EXCLUDED.category`,
		c.ID, c.Transport, c.Title, c.IsSource, c.IsTarget, c.IsVIPTarget, c.IsReport,
		pq.Array(c.OwnUserIDs), c.Category, nullTime(c.CreatedAt))
	return err
}

// Get returns the channel with the given id, or nil if not found.
func (s *ChannelStore) Get(ctx context.Context, channelID string) (*domain.Channel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT channel_id, transport, title, is_source, is_target, is_vip_target, is_report, own_user_ids, category, created_at
		FROM monitor_channels WHERE channel_id = $1`, channelID)
	return scanChannel(row)
}

// SetCategory updates a channel's classified market category.
func (s *ChannelStore) SetCategory(ctx context.Context, channelID, category string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE monitor_channels SET category = $1 WHERE channel_id = $2`, category, channelID)
	return err
}

// ListSources returns every channel flagged as an ingest source.
func (s *ChannelStore) ListSources(ctx context.Context) ([]domain.Channel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, transport, title, is_source, is_target, is_vip_target, is_report, own_user_ids, category, created_at
		FROM monitor_channels WHERE is_source = true ORDER BY channel_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Channel
	for rows.Next() {
		c, err := scanChannelRows(rows)
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanChannel(row *sql.Row) (*domain.Channel, error) {
	var c domain.Channel
	var ownUserIDs pq.StringArray
	err := row.Scan(&c.ID, &c.Transport, &c.Title, &c.IsSource, &c.IsTarget, &c.IsVIPTarget, &c.IsReport,
		&ownUserIDs, &c.Category, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.OwnUserIDs = []string(ownUserIDs)
	return &c, nil
}

func scanChannelRows(rows *sql.Rows) (*domain.Channel, error) {
	var c domain.Channel
	var ownUserIDs pq.StringArray
	if err := rows.Scan(&c.ID, &c.Transport, &c.Title, &c.IsSource, &c.IsTarget, &c.IsVIPTarget, &c.IsReport,
		&ownUserIDs, &c.Category, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.OwnUserIDs = []string(ownUserIDs)
	return &c, nil
}

// VIPStore persists monitor_vip_users.
type VIPStore struct {
	db *sql.DB
}

// NewVIPStore constructs a VIPStore backed by db.
func NewVIPStore(db *sql.DB) *VIPStore {
	return &VIPStore{db: db}
}

// Add inserts a VIP user entry, replacing any existing one for the same
// (user_id, channel_id) pair.
func (s *VIPStore) Add(ctx context.Context, v domain.VIPUser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_vip_users (user_id, channel_id, note, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		ON CONFLICT (user_id, channel_id) DO UPDATE SET note = EXCLUDED.note`,
		v.UserID, v.ChannelID, v.Note, nullTime(v.CreatedAt))
	return err
}

// Remove deletes a VIP entry.
func (s *VIPStore) Remove(ctx context.Context, userID, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM monitor_vip_users WHERE user_id = $1 AND channel_id = $2`, userID, channelID)
	return err
}

// IsVIP reports whether userID is a VIP, either globally (channel_id
// empty) or scoped to channelID.
func (s *VIPStore) IsVIP(ctx context.Context, userID, channelID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM monitor_vip_users
		WHERE user_id = $1 AND (channel_id = '' OR channel_id = $2)`, userID, channelID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every VIP user entry.
func (s *VIPStore) List(ctx context.Context) ([]domain.VIPUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, channel_id, note, created_at FROM monitor_vip_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VIPUser
	for rows.Next() {
		var v domain.VIPUser
		if err := rows.Scan(&v.UserID, &v.ChannelID, &v.Note, &v.CreatedAt); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// BlacklistStore persists monitor_blacklist.
type BlacklistStore struct {
	db *sql.DB
}

// NewBlacklistStore constructs a BlacklistStore backed by db.
func NewBlacklistStore(db *sql.DB) *BlacklistStore {
	return &BlacklistStore{db: db}
}

// Add inserts a blacklist entry blocking a channel, a user, or both.
func (s *BlacklistStore) Add(ctx context.Context, b domain.BlacklistEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_blacklist (channel_id, user_id, reason, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		ON CONFLICT (channel_id, user_id) DO UPDATE SET reason = EXCLUDED.reason`,
		b.ChannelID, b.UserID, b.Reason, nullTime(b.CreatedAt))
	return err
}

// IsBlacklisted reports whether channelID or userID is blocked.
func (s *BlacklistStore) IsBlacklisted(ctx context.Context, channelID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM monitor_blacklist
		WHERE (channel_id = $1 AND user_id = '') OR (user_id = $2 AND user_id <> '')`,
		channelID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every blacklist entry.
func (s *BlacklistStore) List(ctx context.Context) ([]domain.BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, user_id, reason, created_at FROM monitor_blacklist ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BlacklistEntry
	for rows.Next() {
		var b domain.BlacklistEntry
		if err := rows.Scan(&b.ChannelID, &b.UserID, &b.Reason, &b.CreatedAt); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
