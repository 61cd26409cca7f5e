package agent

import (
	"testing"

	"github.com/qscuio/qubot/internal/domain"
)

func TestNewRegistry_SeedsBuiltinAgents(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"chat", "research", "code", "devops", "writer"} {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("expected builtin agent %q to be registered", name)
		}
	}
}

func TestRegistry_Get_EmptyNameReturnsDefault(t *testing.T) {
	reg := NewRegistry()
	a, ok := reg.Get("")
	if !ok {
		t.Fatal("expected default agent")
	}
	if a.Name != "chat" {
		t.Errorf("default agent = %q, want %q", a.Name, "chat")
	}
}

func TestRegistry_Get_UnknownNameFallsBackToDefault(t *testing.T) {
	reg := NewRegistry()
	a, ok := reg.Get("does-not-exist")
	if !ok {
		t.Fatal("expected fallback to default agent")
	}
	if a.Name != "chat" {
		t.Errorf("fallback agent = %q, want %q", a.Name, "chat")
	}
}

func TestRegistry_RegisterOverridesAgent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(domain.Agent{Name: "chat", Settings: domain.AgentSettings{Name: "chat", SystemPrompt: "overridden"}})

	a, _ := reg.Get("chat")
	if a.Settings.SystemPrompt != "overridden" {
		t.Errorf("SystemPrompt = %q, want %q", a.Settings.SystemPrompt, "overridden")
	}
}

func TestRegistry_RegisterSkillAndSkills(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterSkill(domain.Skill{Name: "test-skill"})
	skills := reg.Skills()
	if len(skills) != 1 || skills[0].Name != "test-skill" {
		t.Errorf("Skills() = %v, want one skill named test-skill", skills)
	}
}
