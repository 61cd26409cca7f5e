// Package hotwords tracks daily word-frequency counters per channel
// and surfaces trending words: today's words whose count grew the
// most versus a historical daily average.
package hotwords

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// tokenPattern is the Unicode-range fallback segmenter: runs of CJK
// ideographs or Latin letters, each treated as one token. Used when no
// dedicated Chinese segmenter is wired (see DESIGN.md).
var tokenPattern = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+|[A-Za-z]+`)

// stopWords is filtered out of every tokenization unconditionally.
var stopWords = map[string]bool{
	"的": true, "了": true, "是": true, "在": true, "和": true, "就": true,
	"都": true, "而": true, "及": true, "与": true, "这": true, "那": true,
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "it": true, "on": true, "for": true,
}

// Tokenize splits text into lowercased tokens, filtering stop words.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		lower := toLower(tok)
		if stopWords[lower] {
			continue
		}
		out = append(out, lower)
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Word is one trending result: the word, today's count, and its
// growth (today's count minus the historical daily average).
type Word struct {
	Word   string
	Count  int
	Growth float64
}

// Store persists and queries daily word counters.
type Store interface {
	// Upsert additively increments (date, channel_id, word)'s count by
	// delta, inserting a fresh row with count=delta if absent.
	Upsert(ctx context.Context, date, channelID, word, category string, delta int) error
	// CountsForDate returns word -> count for one channel/date.
	CountsForDate(ctx context.Context, channelID, date string) (map[string]int, error)
	// AverageOverDays returns word -> average daily count over the
	// `days` days preceding (but not including) date.
	AverageOverDays(ctx context.Context, channelID, date string, days int) (map[string]float64, error)
}

// Service is the in-memory counting front-end over a Store.
type Service struct {
	store   Store
	pending map[string]map[string]int // date|channelID -> word -> count
}

// NewService constructs a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store, pending: make(map[string]map[string]int)}
}

// AddMessage tokenizes text and accumulates its word counts in memory
// for (date, channelID), to be flushed by PersistToDB.
func (s *Service) AddMessage(date, channelID, text string) {
	key := date + "|" + channelID
	counts, ok := s.pending[key]
	if !ok {
		counts = make(map[string]int)
		s.pending[key] = counts
	}
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
}

// PersistToDB flushes every pending (date, channelID) counter to the
// store via additive upsert, then clears the in-memory counters.
func (s *Service) PersistToDB(ctx context.Context, categoryOf func(word string) string) error {
	for key, counts := range s.pending {
		date, channelID := splitKey(key)
		for word, count := range counts {
			cat := "general"
			if categoryOf != nil {
				cat = categoryOf(word)
			}
			if err := s.store.Upsert(ctx, date, channelID, word, cat, count); err != nil {
				return err
			}
		}
	}
	s.pending = make(map[string]map[string]int)
	return nil
}

func splitKey(key string) (date, channelID string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// GetTrending returns today's words with the largest positive delta
// versus their average count over the preceding `days` days, ordered
// by growth descending, capped at topN.
func (s *Service) GetTrending(ctx context.Context, channelID string, days, topN int) ([]Word, error) {
	today := time.Now().Format("2006-01-02")
	counts, err := s.store.CountsForDate(ctx, channelID, today)
	if err != nil {
		return nil, err
	}
	avgs, err := s.store.AverageOverDays(ctx, channelID, today, days)
	if err != nil {
		return nil, err
	}

	words := make([]Word, 0, len(counts))
	for word, count := range counts {
		avg := avgs[word]
		growth := float64(count) - avg
		if growth <= 0 {
			continue
		}
		words = append(words, Word{Word: word, Count: count, Growth: growth})
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].Growth > words[j].Growth })
	if len(words) > topN {
		words = words[:topN]
	}
	return words, nil
}

// medals are prepended to the top 3 trending words in a formatted report.
var medals = []string{"🥇", "🥈", "🥉"}

// FormatReport renders trending words as a medal-emoji markdown list.
func FormatReport(words []Word) string {
	out := ""
	for i, w := range words {
		medal := "▫️"
		if i < len(medals) {
			medal = medals[i]
		}
		out += medal + " " + w.Word + " ×" + strconv.Itoa(w.Count) + "\n"
	}
	return out
}
