package agent

import "strings"

// routingTable maps an agent name to the keywords that select it. Checked
// in order; the first match wins. Unchanged from orchestrator.py's
// _route_message.
var routingTable = []struct {
	agent    string
	keywords []string
}{
	{"research", []string{"search", "find", "research", "look up", "what is", "who is"}},
	{"code", []string{"code", "function", "class", "bug", "error", "implement", "python", "javascript"}},
	{"devops", []string{"github", "repo", "issue", "pr", "cloudflare", "dns", "deploy", "worker"}},
	{"writer", []string{"write", "article", "blog", "document", "essay", "draft"}},
}

// RouteMessage picks the agent best suited to handle message, defaulting to
// "chat" when no keyword table entry matches.
func RouteMessage(message string) string {
	lower := strings.ToLower(message)
	for _, route := range routingTable {
		for _, kw := range route.keywords {
			if strings.Contains(lower, kw) {
				return route.agent
			}
		}
	}
	return "chat"
}
