package agent

import "testing"

func TestRouteMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"research by search verb", "can you search for the latest Go release notes", "research"},
		{"research by who is", "who is the author of this package", "research"},
		{"code by bug", "there's a bug in this function", "code"},
		{"code by language name", "write this in python", "code"}, // "code" table entry (python) checked before "writer" (write)
		{"devops by github", "open a pr on our github repo", "devops"},
		{"devops by cloudflare", "purge the cloudflare cache", "devops"},
		{"writer by draft", "draft a blog article about onboarding", "writer"},
		{"default chat", "good morning everyone", "chat"},
		{"case insensitive", "SEARCH for flaky tests", "research"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RouteMessage(tt.message); got != tt.want {
				t.Errorf("RouteMessage(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestRouteMessage_FirstMatchWins(t *testing.T) {
	// "research" is checked before "code": a message matching both keyword
	// sets routes to research.
	got := RouteMessage("research this bug for me")
	if got != "research" {
		t.Errorf("RouteMessage = %q, want %q", got, "research")
	}
}
