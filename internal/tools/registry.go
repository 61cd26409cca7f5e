package tools

import (
	"context"
	"fmt"

	"github.com/qscuio/qubot/internal/providers"
)

// Registry holds the set of tools available to the agent orchestrator.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t under t.Name(), overwriting any existing entry.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.tools)
}

// Names returns every registered tool name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}

// ProviderDefs renders every registered tool as a provider-facing
// ToolDefinition, for inclusion in a ChatRequest.
func (r *Registry) ProviderDefs() []providers.ToolDefinition {
	out := make([]providers.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, providers.ToolDefinition{
			Type: "function",
			Function: providers.ToolFunctionSchema{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// Execute runs the named tool, returning an error Result if it is unknown.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *Result {
	t, ok := r.tools[name]
	if !ok {
		return ErrorResult(fmt.Sprintf("unknown tool %q", name))
	}
	return t.Execute(ctx, args)
}
