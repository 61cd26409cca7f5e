// Package compress implements qubot's message compression and
// scoring pipeline: raw cached messages go through clean → score →
// select → structure → aggregate to produce a CompressionResult.
package compress

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/qscuio/qubot/internal/contentfilter"
	"github.com/qscuio/qubot/internal/domain"
	"github.com/qscuio/qubot/internal/hotwords"
	"github.com/qscuio/qubot/internal/market"
)

const (
	// MaxMessages is the Stage 3 selection cap ("MAX_MESSAGES" in spec).
	MaxMessages = 50
	// ScoreThreshold is the minimum score Stage 3 keeps ("SCORE_THRESHOLD").
	ScoreThreshold = 0.20
	minTextLength  = 15
)

var (
	percentOrUnit = regexp.MustCompile(`\d+%|\d+[$¥KMB万亿]`)
	anyDigit      = regexp.MustCompile(`\d`)
	urlPattern    = regexp.MustCompile(`https?://`)
	emojiPattern  = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}]`)
)

type scored struct {
	msg   domain.CachedMessage
	score float64
}

// Run executes all five pipeline stages over a channel's cached
// messages and returns the compression result.
func Run(channelID string, messages []domain.CachedMessage) domain.CompressionResult {
	cleaned := clean(messages)
	all := scoreAll(cleaned)
	selected := selectTopN(all)
	structured := toStructured(selected)
	hotWords := extractHotWords(structured)

	originalCount := len(messages)
	compressedCount := len(structured)
	ratio := 0.0
	if originalCount > 0 {
		ratio = float64(compressedCount) / float64(originalCount)
	}

	return domain.CompressionResult{
		ChannelID: channelID,
		Messages:  structured,
		HotWords:  hotWords,
		Stats: domain.CompressionRunStats{
			OriginalCount:    originalCount,
			CompressedCount:  compressedCount,
			CompressionRatio: ratio,
			CategoryStats:    categoryStats(structured),
			SentimentStats:   sentimentStats(structured),
		},
		CreatedAt: time.Now(),
	}
}

// categoryStats counts how many selected messages carry each market
// category. A message with multiple categories increments every one.
func categoryStats(structured []domain.StructuredMessage) map[string]int {
	stats := make(map[string]int)
	for _, m := range structured {
		for _, cat := range m.Categories {
			stats[cat]++
		}
	}
	return stats
}

// sentimentStats counts the selected messages by detected sentiment.
func sentimentStats(structured []domain.StructuredMessage) map[string]int {
	stats := make(map[string]int)
	for _, m := range structured {
		stats[m.Sentiment]++
	}
	return stats
}

// clean drops messages that are too short, content-filter-rejected,
// duplicated within this run, or left shorter than 15 characters after
// stripping emoji.
func clean(messages []domain.CachedMessage) []domain.CachedMessage {
	seen := make(map[string]bool, len(messages))
	out := make([]domain.CachedMessage, 0, len(messages))
	for _, m := range messages {
		if utf8.RuneCountInString(m.Text) < minTextLength {
			continue
		}
		if !contentfilter.IsAllowed(m.Text) {
			continue
		}
		residue := emojiPattern.ReplaceAllString(m.Text, "")
		if utf8.RuneCountInString(residue) < minTextLength {
			continue
		}
		if seen[m.Text] {
			continue
		}
		seen[m.Text] = true
		out = append(out, m)
	}
	return out
}

// scoreAll computes the Stage 2 six-factor additive score for every message.
func scoreAll(messages []domain.CachedMessage) []scored {
	out := make([]scored, len(messages))
	for i, m := range messages {
		out[i] = scored{msg: m, score: scoreMessage(m.Text)}
	}
	return out
}

func scoreMessage(text string) float64 {
	var s float64

	matched := market.ExtractMatchedKeywords(text)
	if len(matched) > 0 {
		kwScore := 0.05*float64(len(matched)) + 0.10
		if kwScore > 0.30 {
			kwScore = 0.30
		}
		s += kwScore
	}

	if percentOrUnit.MatchString(text) {
		s += 0.20
	} else if anyDigit.MatchString(text) {
		s += 0.10
	}

	n := len([]rune(text))
	switch {
	case n >= 50 && n <= 500:
		s += 0.15
	case (n >= 30 && n <= 49) || (n >= 501 && n <= 1000):
		s += 0.10
	case n > 1000:
		s += 0.05
	}

	if urlPattern.MatchString(text) {
		s += 0.15
	}

	if market.DetectSentiment(text) != market.SentimentNeutral {
		s += 0.10
	}

	// Source credibility (reserved, max weight 0.10) is not yet wired
	// to any per-source trust signal; contributes 0 until one exists.

	if s > 1.0 {
		s = 1.0
	}
	return s
}

// selectTopN sorts descending by score and keeps the top MaxMessages
// above ScoreThreshold.
func selectTopN(all []scored) []scored {
	above := make([]scored, 0, len(all))
	for _, sc := range all {
		if sc.score > ScoreThreshold {
			above = append(above, sc)
		}
	}
	sort.SliceStable(above, func(i, j int) bool { return above[i].score > above[j].score })
	if len(above) > MaxMessages {
		above = above[:MaxMessages]
	}
	return above
}

// toStructured computes per-message categories/keywords/sentiment for
// the selected set.
func toStructured(selected []scored) []domain.StructuredMessage {
	out := make([]domain.StructuredMessage, len(selected))
	for i, sc := range selected {
		keywords := market.ExtractMatchedKeywords(sc.msg.Text)
		if len(keywords) > 20 {
			keywords = keywords[:20]
		}

		cats := market.Categorize(sc.msg.Text)
		categories := make([]string, len(cats))
		for j, cat := range cats {
			categories[j] = string(cat)
		}

		out[i] = domain.StructuredMessage{
			ID:          ContentID(sc.msg.Text),
			Text:        sc.msg.Text,
			Score:       sc.score,
			Categories:  categories,
			Sentiment:   string(market.DetectSentiment(sc.msg.Text)),
			Keywords:    keywords,
			URL:         sc.msg.URL,
			HasURL:      urlPattern.MatchString(sc.msg.Text),
			HasNumbers:  anyDigit.MatchString(sc.msg.Text),
			ChannelID:   sc.msg.ChannelID,
			ChannelName: sc.msg.ChannelName,
			Sender:      sc.msg.SenderID,
			Timestamp:   sc.msg.CreatedAt,
		}
	}
	return out
}

// extractHotWords builds the Stage 5 top-20 word-frequency counter
// over the selected messages' text, using the same tokenizer as the
// standalone hot-words service.
func extractHotWords(structured []domain.StructuredMessage) []domain.HotWord {
	counts := make(map[string]int)
	// category records, per word, the first matching market category among
	// the messages it appeared in (falls back to "general" per spec).
	category := make(map[string]string)
	for _, m := range structured {
		cat := "general"
		if len(m.Categories) > 0 && m.Categories[0] != string(market.CategoryGeneral) {
			cat = m.Categories[0]
		}
		for _, tok := range hotwords.Tokenize(m.Text) {
			counts[tok]++
			if prev, seen := category[tok]; !seen || (prev == "general" && cat != "general") {
				category[tok] = cat
			}
		}
	}

	words := make([]domain.HotWord, 0, len(counts))
	for word, count := range counts {
		words = append(words, domain.HotWord{Word: word, Count: count, Category: category[word]})
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Count > words[j].Count })
	if len(words) > 20 {
		words = words[:20]
	}
	return words
}

// ContentID returns the 8-hex content id for a message's text, used
// by the structure stage as a stable short identifier.
func ContentID(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:8]
}
