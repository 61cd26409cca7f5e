package agent

import "github.com/qscuio/qubot/internal/domain"

// Registry holds the configured agents, keyed by name.
type Registry struct {
	agents  map[string]domain.Agent
	skills  []domain.Skill
	defName string
}

// NewRegistry builds a registry seeded with the builtin agents and skills.
func NewRegistry() *Registry {
	r := &Registry{
		agents:  make(map[string]domain.Agent),
		defName: "chat",
	}
	for _, a := range builtinAgents() {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an agent under a.Name.
func (r *Registry) Register(a domain.Agent) {
	r.agents[a.Name] = a
}

// RegisterSkill adds a skill available for injection into any agent's context.
func (r *Registry) RegisterSkill(s domain.Skill) {
	r.skills = append(r.skills, s)
}

// Get returns the named agent, or the default agent if name is empty or
// unknown.
func (r *Registry) Get(name string) (domain.Agent, bool) {
	if name != "" {
		if a, ok := r.agents[name]; ok {
			return a, true
		}
	}
	a, ok := r.agents[r.defName]
	return a, ok
}

// Names returns every registered agent name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.agents))
	for name := range r.agents {
		out = append(out, name)
	}
	return out
}

// Skills returns every registered skill.
func (r *Registry) Skills() []domain.Skill {
	return r.skills
}

// builtinAgents returns the default persona set, each scoped to the tools
// its role needs.
func builtinAgents() []domain.Agent {
	return []domain.Agent{
		{
			Name: "chat",
			Settings: domain.AgentSettings{
				Name:          "chat",
				SystemPrompt:  "You are a helpful assistant in a group chat. Keep replies concise.",
				Tools:         []string{"calculator", "web_search"},
				MaxToolCalls:  10,
				AllowParallel: true,
			},
		},
		{
			Name: "research",
			Settings: domain.AgentSettings{
				Name:          "research",
				SystemPrompt:  "You are a research assistant. Search the web and cite sources before answering.",
				Tools:         []string{"web_search", "web_fetch"},
				MaxToolCalls:  10,
				AllowParallel: true,
			},
		},
		{
			Name: "code",
			Settings: domain.AgentSettings{
				Name:          "code",
				SystemPrompt:  "You are a software engineering assistant. Read files precisely before answering; explain changes briefly.",
				Tools:         []string{"read_file", "list_dir", "calculator"},
				MaxToolCalls:  15,
				AllowParallel: false,
			},
		},
		{
			Name: "devops",
			Settings: domain.AgentSettings{
				Name:          "devops",
				SystemPrompt:  "You are a DevOps assistant with access to GitHub and Cloudflare. Confirm destructive actions before taking them.",
				Tools:         []string{"github_repo", "cloudflare_purge"},
				MaxToolCalls:  10,
				AllowParallel: false,
			},
		},
		{
			Name: "writer",
			Settings: domain.AgentSettings{
				Name:          "writer",
				SystemPrompt:  "You are a writing assistant. Produce clear, well-structured prose.",
				Tools:         []string{"web_search"},
				MaxToolCalls:  5,
				AllowParallel: true,
			},
		},
	}
}
