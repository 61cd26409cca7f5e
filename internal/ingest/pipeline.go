// Package ingest implements qubot's update ingestion and filtering
// pipeline: the strict 11-step sequence from reentry-guard through
// cache side-effect that decides what happens to each inbound chat
// update.
package ingest

import (
	"strings"
	"time"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/qscuio/qubot/internal/contentfilter"
	"github.com/qscuio/qubot/internal/dedup"
	"github.com/qscuio/qubot/internal/domain"
)

// Outcome is the terminal decision the pipeline reaches for one update.
type Outcome string

const (
	OutcomeDrop         Outcome = "drop"
	OutcomeForwardNormal Outcome = "forward-normal"
	OutcomeForwardVIP    Outcome = "forward-vip"
	OutcomeCacheOnly     Outcome = "cache-only"
)

// reentryCacheSize bounds the reentry guard's processed-set (spec: 1,000).
const reentryCacheSize = 1000

// Update is one inbound chat message as received from a channel adapter.
type Update struct {
	ChatID         string
	ChatTitle      string
	ChatUsername   string
	SenderID       string
	SenderUsername string
	MessageID      string
	Text           string
	HTML           string
	Media          []string
	Timestamp      time.Time
	// ChannelCategory is the source channel's administrative category
	// (market, news, tech, resource, skip). Empty defaults to "market".
	ChannelCategory string
}

// noCacheCategories are the channel categories step 11 never caches,
// regardless of text length: the channel is dedicated to something
// other than market/news digests.
var noCacheCategories = map[string]struct{}{
	"tech":     {},
	"resource": {},
	"skip":     {},
}

// Config is the ingest pipeline's filter configuration, one instance
// shared across all updates in a process.
type Config struct {
	OwnUserIDs        map[string]struct{}
	DestinationChannels map[string]struct{}
	Blacklist         map[string]struct{} // channel IDs
	VIPUsers          map[string]struct{} // user IDs with enabled=true
	SourceChannels    map[string]struct{} // empty = unrestricted
	FromUsers         map[string]struct{} // empty = unrestricted
	Keywords          []string            // empty = unrestricted
	VIPTargetChannel  string
	DefaultTargetChannel string
}

// Pipeline is the sole owner of the short-term (chat_id, message_id)
// processed-set and the dedup engine it consults.
type Pipeline struct {
	cfg    Config
	dedup  *dedup.Deduplicator
	processed *orderedmap.OrderedMap[string, struct{}]
}

// New constructs a Pipeline. dd is the dedup engine consulted by step 9.
func New(cfg Config, dd *dedup.Deduplicator) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		dedup:     dd,
		processed: orderedmap.NewOrderedMap[string, struct{}](),
	}
}

// Result is the pipeline's decision for one update, plus the
// information downstream senders/cachers need.
type Result struct {
	Outcome    Outcome
	TargetChannel string
	CacheMessage *domain.CachedMessage
}

// Process runs the full 11-step pipeline for one update.
func (p *Pipeline) Process(u Update) Result {
	key := u.ChatID + ":" + u.MessageID

	// 1. Reentry guard.
	if _, ok := p.processed.Get(key); ok {
		return Result{Outcome: OutcomeDrop}
	}

	// 2. Self-loop guard.
	if _, ok := p.cfg.OwnUserIDs[u.SenderID]; ok {
		p.markProcessed(key)
		return Result{Outcome: OutcomeDrop}
	}

	// 3. Destination guard.
	if _, ok := p.cfg.DestinationChannels[u.ChatID]; ok {
		p.markProcessed(key)
		return Result{Outcome: OutcomeDrop}
	}

	// 4. Content filter.
	if !contentfilter.IsAllowed(u.Text) {
		p.markProcessed(key)
		return Result{Outcome: OutcomeDrop}
	}

	isVIP := p.isVIP(u.SenderID)

	// 5. Blacklist (VIP overrides).
	if _, blocked := p.cfg.Blacklist[u.ChatID]; blocked && !isVIP {
		p.markProcessed(key)
		return Result{Outcome: OutcomeDrop}
	}

	// 6. Source allow-list.
	if len(p.cfg.SourceChannels) > 0 {
		_, byID := p.cfg.SourceChannels[u.ChatID]
		_, byUsername := p.cfg.SourceChannels["@"+u.ChatUsername]
		if !byID && !byUsername {
			p.markProcessed(key)
			return Result{Outcome: OutcomeDrop}
		}
	}

	// 7. From-user allow-list.
	if len(p.cfg.FromUsers) > 0 {
		if _, ok := p.cfg.FromUsers[u.SenderID]; !ok {
			p.markProcessed(key)
			return Result{Outcome: OutcomeDrop}
		}
	}

	// 8. Keyword filter.
	if len(p.cfg.Keywords) > 0 && !containsKeyword(u.Text, p.cfg.Keywords) {
		p.markProcessed(key)
		return Result{Outcome: OutcomeDrop}
	}

	// 9. Content dedup (VIP bypass).
	if !isVIP {
		if dup, _ := p.dedup.IsDuplicate(u.Text, u.ChatID, true); dup {
			p.markProcessed(key)
			return Result{Outcome: OutcomeDrop}
		}
	}

	p.markProcessed(key)

	// 10. Routing.
	outcome := OutcomeForwardNormal
	target := p.cfg.DefaultTargetChannel
	if isVIP {
		outcome = OutcomeForwardVIP
		if p.cfg.VIPTargetChannel != "" {
			target = p.cfg.VIPTargetChannel
		}
	}

	result := Result{Outcome: outcome, TargetChannel: target}

	// 11. Cache side-effect (unconditional on forward decision), unless
	// the source channel is dedicated to tech/resource/skip content.
	if _, excluded := noCacheCategories[u.ChannelCategory]; !excluded && len([]rune(u.Text)) >= 20 {
		result.CacheMessage = &domain.CachedMessage{
			ChannelID:   u.ChatID,
			ChannelName: u.ChatTitle,
			SenderID:    u.SenderID,
			Text:        u.Text,
			HTML:        u.HTML,
			CreatedAt:   u.Timestamp,
		}
	}

	return result
}

func (p *Pipeline) isVIP(senderID string) bool {
	_, ok := p.cfg.VIPUsers[senderID]
	return ok
}

// markProcessed records key in the processed-set, evicting the oldest
// entry (insertion order) when over reentryCacheSize.
func (p *Pipeline) markProcessed(key string) {
	p.processed.Set(key, struct{}{})
	for p.processed.Len() > reentryCacheSize {
		if el := p.processed.Front(); el != nil {
			p.processed.Delete(el.Key)
		}
	}
}

func containsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ShouldOffloadToInstantView reports whether body is long enough and
// contains a URL such that the forwarder should replace it with a
// short preview plus an instant-view link (see InstantViewExporter).
func ShouldOffloadToInstantView(html string) bool {
	return len(html) > 500 && strings.Contains(html, "http")
}

// InstantViewExporter renders long-form HTML to an external viewer and
// returns its URL. qubot calls this interface; it does not implement
// a renderer itself (external collaborator, per spec §6).
type InstantViewExporter interface {
	Export(title, html string) (url string, err error)
}
