package pg

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/qscuio/qubot/internal/domain"
)

// ChatStore persists ai_chats / ai_messages: one active conversation
// thread per user, with an append-only message log.
type ChatStore struct {
	db *sql.DB
}

// NewChatStore constructs a ChatStore backed by db.
func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

// ActiveChat returns the active chat for (channelID, userID), creating
// one if none exists.
func (s *ChatStore) ActiveChat(ctx context.Context, channelID, userID, agentName string) (*domain.Chat, error) {
	var c domain.Chat
	err := s.db.QueryRowContext(ctx, `
		SELECT id, channel_id, user_id, agent_name, created_at, updated_at
		FROM ai_chats WHERE channel_id = $1 AND user_id = $2 AND is_active = true`,
		channelID, userID).Scan(&c.ID, &c.ChannelID, &c.UserID, &c.AgentName, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	c = domain.Chat{ID: uuid.Must(uuid.NewV7()).String(), ChannelID: channelID, UserID: userID, AgentName: agentName}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ai_chats (id, channel_id, user_id, agent_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())`,
		c.ID, c.ChannelID, c.UserID, c.AgentName)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Reset deactivates the user's current chat so ActiveChat starts a fresh one.
func (s *ChatStore) Reset(ctx context.Context, channelID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE ai_chats SET is_active = false WHERE channel_id = $1 AND user_id = $2 AND is_active = true`,
		channelID, userID)
	return err
}

// AppendMessage records one turn in chatID's history.
func (s *ChatStore) AppendMessage(ctx context.Context, m domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_messages (id, chat_id, role, content, tool_call_id, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))`,
		m.ID, m.ChatID, m.Role, m.Content, m.ToolCallID, nullTime(m.CreatedAt))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE ai_chats SET updated_at = now() WHERE id = $1`, m.ChatID)
	return err
}

// History returns chatID's full message log, oldest first.
func (s *ChatStore) History(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, role, content, tool_call_id, created_at
		FROM ai_messages WHERE chat_id = $1 ORDER BY created_at ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.ToolCallID, &m.CreatedAt); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
