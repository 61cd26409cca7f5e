package agent

import (
	"strings"
	"testing"

	"github.com/qscuio/qubot/internal/domain"
)

func TestSkillMatches_ByName(t *testing.T) {
	s := domain.Skill{Name: "deploy-checklist", Description: "irrelevant description text"}
	if !skillMatches(s, "run the deploy-checklist before shipping") {
		t.Error("expected name-substring match")
	}
}

func TestSkillMatches_ByKeywordOverlap(t *testing.T) {
	s := domain.Skill{
		Name:        "incident-response",
		Description: "Handle production outages, escalate to oncall, and write a postmortem",
	}

	if !skillMatches(s, "we have a production outage, need to escalate now") {
		t.Error("expected keyword-overlap match (production, escalate)")
	}
	if skillMatches(s, "just a regular chat message") {
		t.Error("expected no match for unrelated query")
	}
}

func TestSkillMatches_SingleKeywordInsufficient(t *testing.T) {
	s := domain.Skill{
		Name:        "incident-response",
		Description: "Handle production outages, escalate to oncall",
	}
	// Only "production" overlaps; one keyword match is not enough.
	if skillMatches(s, "production deployment went out today") {
		t.Error("expected single-keyword overlap to be insufficient")
	}
}

func TestSkillMatches_ShortAndStopwordKeywordsIgnored(t *testing.T) {
	s := domain.Skill{
		Name:        "writer-helper",
		Description: "use the tool to help write and check your text",
	}
	// "use", "tool", "write", "check", "your", "text" are either <=4 chars
	// or stopwords; none should count toward the two-keyword threshold.
	if skillMatches(s, "please use this tool to write and check your text") {
		t.Error("expected stopword/short-word keywords to be filtered out")
	}
}

func TestMatchingSkills_CapsAtMax(t *testing.T) {
	skills := []domain.Skill{
		{Name: "alpha", Keywords: []string{"research", "summarize"}},
		{Name: "bravo", Keywords: []string{"research", "citation"}},
		{Name: "charlie", Keywords: []string{"research", "footnote"}},
	}
	got := matchingSkills(skills, "please research and summarize with citation and footnote")
	if len(got) != maxInjectedSkills {
		t.Fatalf("len(matchingSkills) = %d, want %d", len(got), maxInjectedSkills)
	}
}

func TestBuildSkillContext_EmptyWhenNoMatch(t *testing.T) {
	if got := buildSkillContext(nil, "hello"); got != "" {
		t.Errorf("buildSkillContext = %q, want empty", got)
	}
}

func TestBuildSkillContext_RendersMatchedSkill(t *testing.T) {
	skills := []domain.Skill{
		{Name: "research-helper", Description: "search and research topics", Prompt: "Always cite sources."},
	}
	got := buildSkillContext(skills, "please research this topic")
	if !strings.Contains(got, "# Active Skills") {
		t.Error("missing skill context header")
	}
	if !strings.Contains(got, "research-helper") {
		t.Error("missing skill name")
	}
	if !strings.Contains(got, "Always cite sources.") {
		t.Error("missing skill prompt")
	}
}
