package pg

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/qscuio/qubot/internal/domain"
)

// AgentSettingsStore persists ai_settings / ai_agent_settings: per-user
// preferences and per-named-agent tool/prompt configuration.
type AgentSettingsStore struct {
	db *sql.DB
}

// NewAgentSettingsStore constructs an AgentSettingsStore backed by db.
func NewAgentSettingsStore(db *sql.DB) *AgentSettingsStore {
	return &AgentSettingsStore{db: db}
}

// Get returns the named agent's settings, or nil if unconfigured.
func (s *AgentSettingsStore) Get(ctx context.Context, name string) (*domain.AgentSettings, error) {
	var a domain.AgentSettings
	var tools pq.StringArray
	err := s.db.QueryRowContext(ctx, `
		SELECT name, system_prompt, tools, max_tool_calls, model, allow_parallel
		FROM ai_agent_settings WHERE name = $1`, name).
		Scan(&a.Name, &a.SystemPrompt, &tools, &a.MaxToolCalls, &a.Model, &a.AllowParallel)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Tools = []string(tools)
	return &a, nil
}

// Upsert inserts or replaces a named agent's settings.
func (s *AgentSettingsStore) Upsert(ctx context.Context, a domain.AgentSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_agent_settings (name, system_prompt, tools, max_tool_calls, model, allow_parallel)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			system_prompt = EXCLUDED.system_prompt,
			tools = EXCLUDED.tools,
			max_tool_calls = EXCLUDED.max_tool_calls,
			model = EXCLUDED.model,
			allow_parallel = EXCLUDED.allow_parallel`,
		a.Name, a.SystemPrompt, pq.Array(a.Tools), a.MaxToolCalls, a.Model, a.AllowParallel)
	return err
}

// UserPref is one per-user preference row from ai_settings.
type UserPref struct {
	UserID       string
	PreferredAgent string
}

// UserPrefStore persists ai_settings: per-user preferences keyed by user_id.
type UserPrefStore struct {
	db *sql.DB
}

// NewUserPrefStore constructs a UserPrefStore backed by db.
func NewUserPrefStore(db *sql.DB) *UserPrefStore {
	return &UserPrefStore{db: db}
}

// Get returns userID's preferences, or the zero value if unset.
func (s *UserPrefStore) Get(ctx context.Context, userID string) (UserPref, error) {
	p := UserPref{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT preferred_agent FROM ai_settings WHERE user_id = $1`, userID).Scan(&p.PreferredAgent)
	if err == sql.ErrNoRows {
		return p, nil
	}
	return p, err
}

// Set upserts userID's preferences.
func (s *UserPrefStore) Set(ctx context.Context, p UserPref) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_settings (user_id, preferred_agent)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET preferred_agent = EXCLUDED.preferred_agent`,
		p.UserID, p.PreferredAgent)
	return err
}
