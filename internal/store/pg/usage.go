package pg

import (
	"context"
	"database/sql"
)

// UsageRecord is one AI gateway call's tracing summary, aggregated into
// the ai_token_usage table keyed by (provider, model).
type UsageRecord struct {
	Provider           string
	Model              string
	PromptTokensEst    int
	ResponseTokensEst  int
	DurationMS         int64
	Success            bool
}

// TokenUsageStore persists ai_token_usage: per (provider, model)
// aggregated call counts, token estimates, and duration.
type TokenUsageStore struct {
	db *sql.DB
}

// NewTokenUsageStore constructs a TokenUsageStore backed by db.
func NewTokenUsageStore(db *sql.DB) *TokenUsageStore {
	return &TokenUsageStore{db: db}
}

// Record additively aggregates one call's usage into its (provider,
// model) row, incrementing call_count and success_count/failure_count.
func (s *TokenUsageStore) Record(ctx context.Context, u UsageRecord) error {
	successDelta, failureDelta := 0, 0
	if u.Success {
		successDelta = 1
	} else {
		failureDelta = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_token_usage
			(provider, model, call_count, success_count, failure_count, prompt_tokens_est, response_tokens_est, duration_ms)
		VALUES ($1, $2, 1, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, model) DO UPDATE SET
			call_count = ai_token_usage.call_count + 1,
			success_count = ai_token_usage.success_count + EXCLUDED.success_count,
			failure_count = ai_token_usage.failure_count + EXCLUDED.failure_count,
			prompt_tokens_est = ai_token_usage.prompt_tokens_est + EXCLUDED.prompt_tokens_est,
			response_tokens_est = ai_token_usage.response_tokens_est + EXCLUDED.response_tokens_est,
			duration_ms = ai_token_usage.duration_ms + EXCLUDED.duration_ms`,
		u.Provider, u.Model, successDelta, failureDelta, u.PromptTokensEst, u.ResponseTokensEst, u.DurationMS)
	return err
}

// Totals returns the aggregated usage row for (provider, model).
func (s *TokenUsageStore) Totals(ctx context.Context, provider, model string) (UsageRecord, error) {
	var u UsageRecord
	var successCount, failureCount int
	u.Provider, u.Model = provider, model
	err := s.db.QueryRowContext(ctx, `
		SELECT success_count, failure_count, prompt_tokens_est, response_tokens_est, duration_ms
		FROM ai_token_usage WHERE provider = $1 AND model = $2`, provider, model,
	).Scan(&successCount, &failureCount, &u.PromptTokensEst, &u.ResponseTokensEst, &u.DurationMS)
	if err == sql.ErrNoRows {
		return u, nil
	}
	u.Success = successCount > 0
	return u, err
}
