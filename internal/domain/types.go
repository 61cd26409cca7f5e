// Package domain holds the core entities shared across qubot's ingest,
// compression, and agent subsystems.
package domain

import "time"

// Channel describes an upstream or downstream chat destination qubot
// knows about: its transport, its role in routing, and per-channel
// overrides of the global allow/deny lists.
type Channel struct {
	ID          string    `json:"id"`
	Transport   string    `json:"transport"` // "telegram", "discord", ...
	Title       string    `json:"title"`
	IsSource    bool      `json:"is_source"`
	IsTarget    bool      `json:"is_target"`
	IsVIPTarget bool      `json:"is_vip_target"`
	IsReport    bool      `json:"is_report"`
	OwnUserIDs  []string  `json:"own_user_ids,omitempty"` // self-loop guard
	Category    string    `json:"category,omitempty"`     // market category this channel is dedicated to, if any
	CreatedAt   time.Time `json:"created_at"`
}

// VIPUser bypasses dedup and blacklist checks; messages from a VIP
// user are routed to VIPTargetChannel when set, falling back to the
// normal target channel otherwise.
type VIPUser struct {
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id,omitempty"` // optional scoping to one source channel
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BlacklistEntry blocks a channel or user from being forwarded, unless
// the message's sender is a VIPUser (VIP overrides blacklist).
type BlacklistEntry struct {
	ChannelID string    `json:"channel_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Fingerprint is a stored SimHash/exact-hash dedup record.
type Fingerprint struct {
	ID        string    `json:"id"`
	SimHash   uint64    `json:"simhash"`
	ExactHash string    `json:"exact_hash"`
	ChannelID string    `json:"channel_id,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

// CachedMessage is a message retained for compression/reporting,
// keyed by channel and populated by the ingest pipeline's cache step.
type CachedMessage struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	SenderID    string    `json:"sender_id"`
	Text        string    `json:"text"`
	HTML        string    `json:"html,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StructuredMessage is a scored, categorized message produced by the
// compression pipeline's toStructured stage. ID is the first 8 hex
// chars of the text's content hash (see compress.ContentID). Categories
// is a set: a message matching more than one market domain (e.g.
// crypto and us_stock keywords both present) carries every match.
type StructuredMessage struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Score       float64   `json:"score"`
	Categories  []string  `json:"categories"`
	Sentiment   string    `json:"sentiment"` // "bullish", "bearish", "neutral"
	Keywords    []string  `json:"keywords"`
	URL         string    `json:"url,omitempty"`
	HasURL      bool      `json:"has_url"`
	HasNumbers  bool      `json:"has_numbers"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	Sender      string    `json:"sender,omitempty"`
	Timestamp   time.Time `json:"ts"`
}

// CompressionResult is the final output of one compression run over a
// channel's cached messages: the selected top-N structured messages
// plus the hot words extracted from those selected messages.
type CompressionResult struct {
	ChannelID string              `json:"channel_id"`
	Messages  []StructuredMessage `json:"messages"`
	HotWords  []HotWord           `json:"hot_words"`
	Stats     CompressionRunStats `json:"stats"`
	CreatedAt time.Time           `json:"created_at"`
}

// CompressionRunStats summarizes one compression run for observability
// and reporting: the raw-vs-selected counts and ratio, plus a breakdown
// of the selected set by market category and sentiment.
type CompressionRunStats struct {
	OriginalCount    int            `json:"original_count"`
	CompressedCount  int            `json:"compressed_count"`
	CompressionRatio float64        `json:"compression_ratio"`
	CategoryStats    map[string]int `json:"category_stats"`
	SentimentStats   map[string]int `json:"sentiment_stats"`
}

// HotWord is one trending-word entry in a report.
type HotWord struct {
	Word     string  `json:"word"`
	Count    int     `json:"count"`
	Growth   float64 `json:"growth"`   // vs N-day historical average
	Category string  `json:"category"` // first matching market category, or "general"
}

// Chat is a conversation thread with the agent.
type Chat struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	AgentName string    `json:"agent_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one turn in a Chat's history.
type ChatMessage struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	Role       string    `json:"role"` // "user", "assistant", "tool"
	Content    string    `json:"content"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AgentSettings configures one named agent: its system prompt, the
// tools it may call, and its tool-call budget.
type AgentSettings struct {
	Name          string   `json:"name"`
	SystemPrompt  string   `json:"system_prompt"`
	Tools         []string `json:"tools"`
	MaxToolCalls  int      `json:"max_tool_calls"`
	Model         string   `json:"model,omitempty"`
	AllowParallel bool     `json:"allow_parallel"`
}

// Skill is an injectable capability description matched against the
// incoming message by name or keyword overlap (see internal/agent).
type Skill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Prompt      string   `json:"prompt"`
	Keywords    []string `json:"keywords"`
}

// Tool describes one callable tool's schema, independent of its
// concrete implementation (internal/tools.Tool carries the Execute method).
type Tool struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]ToolParam `json:"parameters"`
}

// ToolParam describes one parameter of a Tool's schema.
type ToolParam struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Agent is the runtime identity the orchestrator routes a message to.
type Agent struct {
	Name     string        `json:"name"`
	Settings AgentSettings `json:"settings"`
	Skills   []Skill       `json:"skills"`
}

// ToolCallRecord is one tool invocation the model requested during a run.
type ToolCallRecord struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ToolResult is the outcome of executing one ToolCallRecord.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// AgentResponse is what the orchestrator returns for one run.
type AgentResponse struct {
	Content     string                 `json:"content"`
	Thinking    string                 `json:"thinking,omitempty"`
	ToolCalls   []ToolCallRecord       `json:"tool_calls"`
	ToolResults []ToolResult           `json:"tool_results"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
