package ingest

import (
	"testing"
	"time"

	"github.com/qscuio/qubot/internal/dedup"
)

func baseUpdate() Update {
	return Update{
		ChatID:    "chat1",
		SenderID:  "user1",
		MessageID: "msg1",
		Text:      "this is a perfectly normal message about the weather today",
		Timestamp: time.Now(),
	}
}

func newPipeline(cfg Config) *Pipeline {
	return New(cfg, dedup.New(1000, 0.9))
}

func TestProcess_ReentryGuardDropsRepeatedKey(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "out"})
	u := baseUpdate()

	first := p.Process(u)
	if first.Outcome == OutcomeDrop {
		t.Fatalf("first occurrence should not be dropped, got %v", first.Outcome)
	}

	second := p.Process(u)
	if second.Outcome != OutcomeDrop {
		t.Errorf("expected reentry guard to drop repeated (chat,message) key, got %v", second.Outcome)
	}
}

func TestProcess_SelfLoopGuard(t *testing.T) {
	p := newPipeline(Config{
		OwnUserIDs:           map[string]struct{}{"bot1": {}},
		DefaultTargetChannel: "out",
	})
	u := baseUpdate()
	u.SenderID = "bot1"

	result := p.Process(u)
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected self-authored message to be dropped, got %v", result.Outcome)
	}
}

func TestProcess_DestinationGuard(t *testing.T) {
	p := newPipeline(Config{
		DestinationChannels:  map[string]struct{}{"chat1": {}},
		DefaultTargetChannel: "out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected update from a destination channel to be dropped, got %v", result.Outcome)
	}
}

func TestProcess_ContentFilterDropsDisallowedText(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "out"})
	u := baseUpdate()
	u.Text = "click here to win a free prize right now"

	result := p.Process(u)
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected spam text to be dropped by the content filter, got %v", result.Outcome)
	}
}

func TestProcess_BlacklistDropsNonVIP(t *testing.T) {
	p := newPipeline(Config{
		Blacklist:            map[string]struct{}{"chat1": {}},
		DefaultTargetChannel: "out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected blacklisted channel to be dropped, got %v", result.Outcome)
	}
}

func TestProcess_BlacklistVIPOverride(t *testing.T) {
	p := newPipeline(Config{
		Blacklist:            map[string]struct{}{"chat1": {}},
		VIPUsers:             map[string]struct{}{"user1": {}},
		DefaultTargetChannel: "out",
		VIPTargetChannel:     "vip-out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeForwardVIP {
		t.Errorf("expected VIP sender to override blacklist, got %v", result.Outcome)
	}
	if result.TargetChannel != "vip-out" {
		t.Errorf("TargetChannel = %q, want vip-out", result.TargetChannel)
	}
}

func TestProcess_SourceAllowListRestricts(t *testing.T) {
	p := newPipeline(Config{
		SourceChannels:       map[string]struct{}{"other-chat": {}},
		DefaultTargetChannel: "out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected update from non-allow-listed source channel to be dropped, got %v", result.Outcome)
	}
}

func TestProcess_SourceAllowListByUsername(t *testing.T) {
	p := newPipeline(Config{
		SourceChannels:       map[string]struct{}{"@mychannel": {}},
		DefaultTargetChannel: "out",
	})
	u := baseUpdate()
	u.ChatUsername = "mychannel"

	result := p.Process(u)
	if result.Outcome != OutcomeForwardNormal {
		t.Errorf("expected username-based allow-list match to pass through, got %v", result.Outcome)
	}
}

func TestProcess_FromUsersAllowListRestricts(t *testing.T) {
	p := newPipeline(Config{
		FromUsers:            map[string]struct{}{"someone-else": {}},
		DefaultTargetChannel: "out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected sender not on the from-users allow-list to be dropped, got %v", result.Outcome)
	}
}

func TestProcess_KeywordFilterRequiresMatch(t *testing.T) {
	p := newPipeline(Config{
		Keywords:             []string{"bitcoin"},
		DefaultTargetChannel: "out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeDrop {
		t.Errorf("expected message without any configured keyword to be dropped, got %v", result.Outcome)
	}

	u := baseUpdate()
	u.MessageID = "msg2"
	u.Text = "bitcoin just hit a new high today according to several traders"
	result = p.Process(u)
	if result.Outcome != OutcomeForwardNormal {
		t.Errorf("expected message containing the configured keyword to pass, got %v", result.Outcome)
	}
}

func TestProcess_DedupDropsRepeatedTextForNonVIP(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "out"})
	u := baseUpdate()
	u.Text = "the market rallied sharply today on surprisingly strong earnings across the board"

	first := p.Process(u)
	if first.Outcome != OutcomeForwardNormal {
		t.Fatalf("expected first occurrence to forward, got %v", first.Outcome)
	}

	dupUpdate := u
	dupUpdate.MessageID = "msg2"
	second := p.Process(dupUpdate)
	if second.Outcome != OutcomeDrop {
		t.Errorf("expected exact repeat text to be dropped by dedup, got %v", second.Outcome)
	}
}

func TestProcess_DedupBypassForVIP(t *testing.T) {
	p := newPipeline(Config{
		VIPUsers:             map[string]struct{}{"user1": {}},
		DefaultTargetChannel: "out",
	})
	u := baseUpdate()
	u.Text = "the market rallied sharply today on surprisingly strong earnings across the board"

	first := p.Process(u)
	if first.Outcome != OutcomeForwardVIP {
		t.Fatalf("expected first occurrence to forward as VIP, got %v", first.Outcome)
	}

	dupUpdate := u
	dupUpdate.MessageID = "msg2"
	second := p.Process(dupUpdate)
	if second.Outcome != OutcomeForwardVIP {
		t.Errorf("expected VIP sender to bypass dedup on repeated text, got %v", second.Outcome)
	}
}

func TestProcess_DefaultRoutingUsesDefaultTarget(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "general-out"})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeForwardNormal {
		t.Fatalf("expected normal forward, got %v", result.Outcome)
	}
	if result.TargetChannel != "general-out" {
		t.Errorf("TargetChannel = %q, want general-out", result.TargetChannel)
	}
}

func TestProcess_VIPRoutingFallsBackToDefaultWhenNoVIPTarget(t *testing.T) {
	p := newPipeline(Config{
		VIPUsers:             map[string]struct{}{"user1": {}},
		DefaultTargetChannel: "general-out",
	})
	result := p.Process(baseUpdate())
	if result.Outcome != OutcomeForwardVIP {
		t.Fatalf("expected VIP forward, got %v", result.Outcome)
	}
	if result.TargetChannel != "general-out" {
		t.Errorf("TargetChannel = %q, want fallback to general-out", result.TargetChannel)
	}
}

func TestProcess_CacheMessagePopulatedForLongText(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "out"})
	u := baseUpdate()
	u.Text = "this message is long enough to clear the twenty rune cache threshold easily"

	result := p.Process(u)
	if result.CacheMessage == nil {
		t.Fatal("expected CacheMessage to be populated for a long message")
	}
	if result.CacheMessage.ChannelID != u.ChatID {
		t.Errorf("CacheMessage.ChannelID = %q, want %q", result.CacheMessage.ChannelID, u.ChatID)
	}
	if result.CacheMessage.Text != u.Text {
		t.Errorf("CacheMessage.Text = %q, want %q", result.CacheMessage.Text, u.Text)
	}
}

func TestProcess_CacheMessageOmittedForShortText(t *testing.T) {
	p := newPipeline(Config{DefaultTargetChannel: "out"})
	u := baseUpdate()
	u.Text = "too short"

	result := p.Process(u)
	if result.CacheMessage != nil {
		t.Error("expected CacheMessage to be nil for text under the twenty rune threshold")
	}
}

func TestShouldOffloadToInstantView(t *testing.T) {
	longHTML := "<p>" + repeatString("word ", 120) + "</p><a href=\"http://example.com\">link</a>"
	if !ShouldOffloadToInstantView(longHTML) {
		t.Error("expected long HTML containing a URL to be offloaded")
	}
	if ShouldOffloadToInstantView("<p>short</p>") {
		t.Error("expected short HTML to not be offloaded")
	}
	if ShouldOffloadToInstantView(repeatString("word ", 200)) {
		t.Error("expected long HTML without a URL to not be offloaded")
	}
}

func repeatString(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
