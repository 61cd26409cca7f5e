package store

import (
	"context"

	"github.com/qscuio/qubot/internal/agent"
	"github.com/qscuio/qubot/internal/store/pg"
)

// usageAdapter adapts *pg.TokenUsageStore to agent.UsageRecorder.
type usageAdapter struct {
	store *pg.TokenUsageStore
}

// NewUsageRecorder wraps a TokenUsageStore for use by the agent loop.
func NewUsageRecorder(s *pg.TokenUsageStore) agent.UsageRecorder {
	return usageAdapter{store: s}
}

func (a usageAdapter) Record(ctx context.Context, u agent.UsageRecord) error {
	return a.store.Record(ctx, pg.UsageRecord{
		Provider:          u.Provider,
		Model:             u.Model,
		PromptTokensEst:   u.PromptTokensEst,
		ResponseTokensEst: u.ResponseTokensEst,
		DurationMS:        u.DurationMS,
		Success:           u.Success,
	})
}
