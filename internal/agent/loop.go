package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qscuio/qubot/internal/domain"
	"github.com/qscuio/qubot/internal/providers"
	"github.com/qscuio/qubot/internal/tools"
)

var tracer = otel.Tracer("qubot/agent")

// UsageRecord is one LLM call's token/latency accounting.
type UsageRecord struct {
	Provider          string
	Model             string
	PromptTokensEst   int
	ResponseTokensEst int
	DurationMS        int64
	Success           bool
}

// UsageRecorder persists per-call token/latency accounting, e.g. to the
// ai_token_usage table.
type UsageRecorder interface {
	Record(ctx context.Context, u UsageRecord) error
}

// RunRequest is one turn of a conversation with an agent.
type RunRequest struct {
	Message string
	History []domain.ChatMessage
	Model   string // overrides the agent's configured model when set
}

// RunResult is the outcome of one agent run.
type RunResult struct {
	Response   domain.AgentResponse
	Iterations int
}

// Loop runs one agent's bounded think-act-observe cycle.
type Loop struct {
	provider providers.Provider
	tools    *tools.Registry
	usage    UsageRecorder
}

// NewLoop constructs a Loop over the given provider and tool registry.
// usage may be nil to skip persistence (standalone mode).
func NewLoop(provider providers.Provider, toolReg *tools.Registry, usage UsageRecorder) *Loop {
	return &Loop{provider: provider, tools: toolReg, usage: usage}
}

// Run executes agent against req, looping through tool calls until the
// model stops requesting them or settings.MaxToolCalls is reached.
func (l *Loop) Run(ctx context.Context, a domain.Agent, skillCtx string, req RunRequest) (*RunResult, error) {
	settings := a.Settings
	maxIterations := settings.MaxToolCalls
	if maxIterations <= 0 {
		maxIterations = 10
	}

	messages := l.buildMessages(a, skillCtx, req)

	var toolDefs []providers.ToolDefinition
	for _, name := range settings.Tools {
		if t, ok := l.tools.Get(name); ok {
			toolDefs = append(toolDefs, providers.ToolDefinition{
				Type: "function",
				Function: providers.ToolFunctionSchema{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
	}

	model := req.Model
	if model == "" {
		model = settings.Model
	}

	iteration := 0
	var finalContent, thinking string
	var toolCalls []domain.ToolCallRecord
	var toolResults []domain.ToolResult
	boundReached := false

	for iteration < maxIterations {
		iteration++

		resp, err := l.chat(ctx, messages, toolDefs, model)
		if err != nil {
			return nil, fmt.Errorf("agent %q LLM call failed (iteration %d): %w", a.Name, iteration, err)
		}
		if resp.Thinking != "" {
			thinking = resp.Thinking
		}

		if len(resp.ToolCalls) == 0 {
			finalContent = resp.Content
			break
		}

		messages = append(messages, providers.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, domain.ToolCallRecord{ID: tc.ID, Name: tc.Name, Args: tc.Arguments})
		}

		var execs []toolExecution
		if settings.AllowParallel && len(resp.ToolCalls) > 1 {
			execs = l.executeParallel(ctx, resp.ToolCalls)
		} else {
			execs = l.executeSequential(ctx, resp.ToolCalls)
		}
		for _, e := range execs {
			messages = append(messages, e.msg)
			toolResults = append(toolResults, domain.ToolResult{
				ToolCallID: e.msg.ToolCallID,
				Name:       e.name,
				Content:    e.msg.Content,
				IsError:    e.isError,
			})
		}

		if iteration == maxIterations {
			boundReached = true
			finalContent = "I reached the maximum number of tool calls for this request without finishing. Please narrow the request and try again."
		}
	}

	response := domain.AgentResponse{
		Content:     SanitizeAssistantContent(finalContent),
		Thinking:    thinking,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
	}
	if boundReached {
		response.Metadata = map[string]interface{}{"max_calls_reached": true}
	}

	return &RunResult{Response: response, Iterations: iteration}, nil
}

func (l *Loop) buildMessages(a domain.Agent, skillCtx string, req RunRequest) []providers.Message {
	systemPrompt := a.Settings.SystemPrompt
	if skillCtx != "" {
		systemPrompt = systemPrompt + "\n\n" + skillCtx
	}

	messages := []providers.Message{{Role: "system", Content: systemPrompt}}
	for _, m := range req.History {
		messages = append(messages, providers.Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		})
	}
	messages = append(messages, providers.Message{Role: "user", Content: req.Message})
	return messages
}

func (l *Loop) chat(ctx context.Context, messages []providers.Message, toolDefs []providers.ToolDefinition, model string) (*providers.ChatResponse, error) {
	ctx, span := tracer.Start(ctx, "agent.llm_call", trace.WithAttributes(
		attribute.String("provider", l.provider.Name()),
		attribute.String("model", model),
	))
	defer span.End()

	start := time.Now()
	resp, err := l.provider.Chat(ctx, providers.ChatRequest{
		Messages: messages,
		Tools:    toolDefs,
		Model:    model,
		Options: map[string]interface{}{
			providers.OptMaxTokens:   8192,
			providers.OptTemperature: 0.7,
		},
	})
	duration := time.Since(start)

	if l.usage != nil {
		responseEst := 0
		if resp != nil {
			responseEst = len(resp.Content) / 3
		}
		rec := UsageRecord{
			Provider:          l.provider.Name(),
			Model:             model,
			PromptTokensEst:   estimateTokens(messages),
			ResponseTokensEst: responseEst,
			DurationMS:        duration.Milliseconds(),
			Success:           err == nil,
		}
		if rerr := l.usage.Record(ctx, rec); rerr != nil {
			slog.Warn("usage record failed", "error", rerr)
		}
	}

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("tool_calls", len(resp.ToolCalls)))
	return resp, nil
}

// estimateTokens approximates prompt token count as len(text)/3, matching
// the original service's token estimation since vendors don't uniformly
// report it.
func estimateTokens(messages []providers.Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 3
	}
	return total
}

// toolExecution pairs a tool call's outgoing provider message with the
// bookkeeping (name, error state) the caller folds into AgentResponse.
type toolExecution struct {
	name    string
	msg     providers.Message
	isError bool
}

func (l *Loop) executeSequential(ctx context.Context, calls []providers.ToolCall) []toolExecution {
	out := make([]toolExecution, 0, len(calls))
	for _, tc := range calls {
		out = append(out, l.runTool(ctx, tc))
	}
	return out
}

func (l *Loop) executeParallel(ctx context.Context, calls []providers.ToolCall) []toolExecution {
	type indexed struct {
		idx int
		exec toolExecution
	}

	resultCh := make(chan indexed, len(calls))
	var wg sync.WaitGroup
	for i, tc := range calls {
		wg.Add(1)
		go func(idx int, tc providers.ToolCall) {
			defer wg.Done()
			resultCh <- indexed{idx: idx, exec: l.runTool(ctx, tc)}
		}(i, tc)
	}
	go func() { wg.Wait(); close(resultCh) }()

	collected := make([]indexed, 0, len(calls))
	for r := range resultCh {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })

	out := make([]toolExecution, len(collected))
	for i, r := range collected {
		out[i] = r.exec
	}
	return out
}

func (l *Loop) runTool(ctx context.Context, tc providers.ToolCall) toolExecution {
	ctx, span := tracer.Start(ctx, "agent.tool_call", trace.WithAttributes(
		attribute.String("tool", tc.Name),
	))
	defer span.End()

	argsJSON, _ := json.Marshal(tc.Arguments)
	slog.Info("tool call", "tool", tc.Name, "args_len", len(argsJSON))

	result := l.tools.Execute(ctx, tc.Name, tc.Arguments)
	if result.IsError {
		span.RecordError(fmt.Errorf("%s", result.ForLLM))
		slog.Warn("tool error", "tool", tc.Name, "error", result.ForLLM)
	}

	return toolExecution{
		name:    tc.Name,
		isError: result.IsError,
		msg: providers.Message{
			Role:       "tool",
			Content:    result.ForLLM,
			ToolCallID: tc.ID,
		},
	}
}
