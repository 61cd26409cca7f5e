// Package config loads qubot's flat environment-variable configuration
// surface into a single nested struct, following the teacher's
// converter-with-defaults pattern (ToXConfig() methods) but sourced
// from env vars via struct tags instead of a JSON/YAML document.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"

	"github.com/qscuio/qubot/internal/channels/telegram"
)

// Config is the root configuration loaded once at startup.
type Config struct {
	AI        AIConfig
	Telegram  TelegramEnvConfig
	Monitor   MonitorConfig
	Dedup     DedupConfig
	Compressor CompressorConfig
	Tools     ToolsConfig
	Logging   LoggingConfig
	DatabaseURL string `env:"DATABASE_URL"`

	mu sync.RWMutex
}

// AIConfig configures the agent's LLM vendor and workspace access.
type AIConfig struct {
	Provider         string `env:"AI_PROVIDER" envDefault:"openai"`
	AdvancedProvider string `env:"AI_ADVANCED_PROVIDER"`
	Model            string `env:"AI_MODEL"`
	ExtendedThinking bool   `env:"AI_EXTENDED_THINKING" envDefault:"false"`
	AllowedPaths     []string `env:"AI_ALLOWED_PATHS" envSeparator:","`
	SkillsPath       string `env:"AI_SKILLS_PATH"`
	WorkspacePath    string `env:"WORKSPACE_PATH" envDefault:"./workspace"`

	Vendors VendorKeys
}

// VendorKeys holds per-vendor credentials for every provider adapter the
// gateway can register. A provider is only registered at startup when its
// key is non-empty.
type VendorKeys struct {
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBase      string `env:"OPENAI_API_BASE" envDefault:"https://api.openai.com/v1"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GroqKey         string `env:"GROQ_API_KEY"`
	GroqModel       string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	OpenRouterKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel string `env:"OPENROUTER_MODEL" envDefault:"openrouter/auto"`
	GLMKey          string `env:"GLM_API_KEY"`
	GLMModel        string `env:"GLM_MODEL" envDefault:"glm-4-plus"`
	NvidiaKey       string `env:"NVIDIA_API_KEY"`
	NvidiaModel     string `env:"NVIDIA_MODEL" envDefault:"meta/llama-3.1-70b-instruct"`
	MinimaxKey      string `env:"MINIMAX_API_KEY"`
	MinimaxModel    string `env:"MINIMAX_MODEL" envDefault:"abab6.5s-chat"`
	GeminiKey       string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	AnthropicKey    string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	DashScopeKey    string `env:"DASHSCOPE_API_KEY"`
	DashScopeBase   string `env:"DASHSCOPE_API_BASE" envDefault:"https://dashscope.aliyuncs.com/compatible-mode/v1"`
	DashScopeModel  string `env:"DASHSCOPE_MODEL" envDefault:"qwen-plus"`
}

// TelegramEnvConfig mirrors telegram.Config, loaded from the environment.
type TelegramEnvConfig struct {
	Token        string   `env:"TELEGRAM_BOT_TOKEN"`
	Proxy        string   `env:"TELEGRAM_PROXY"`
	AllowedUsers []string `env:"ALLOWED_USERS" envSeparator:","`
}

// ToChannelConfig converts to the telegram package's Config type.
func (t TelegramEnvConfig) ToChannelConfig() telegram.Config {
	return telegram.Config{
		Token:     t.Token,
		Proxy:     t.Proxy,
		AllowFrom: t.AllowedUsers,
	}
}

// MonitorConfig configures the ingest pipeline's routing. BufferSize and
// BufferFlushInterval are loaded but not read by any package.
type MonitorConfig struct {
	TargetChannel       string   `env:"TARGET_CHANNEL"`
	VIPTargetChannel    string   `env:"VIP_TARGET_CHANNEL"`
	ReportTargetChannel string   `env:"REPORT_TARGET_CHANNEL"`
	BlacklistChannels   []string `env:"BLACKLIST_CHANNELS" envSeparator:","`
	SourceChannels      []string `env:"SOURCE_CHANNELS" envSeparator:","`
	FromUsers           []string `env:"FROM_USERS" envSeparator:","`
	Keywords            []string `env:"KEYWORDS" envSeparator:","`
	BufferSize          int      `env:"MONITOR_BUFFER_SIZE" envDefault:"100"`
	BufferFlushInterval string   `env:"MONITOR_BUFFER_FLUSH_INTERVAL" envDefault:"5s"`
}

// DedupConfig configures the SimHash dedup engine's cache sizing.
type DedupConfig struct {
	CacheSize           int     `env:"DEDUP_CACHE_SIZE" envDefault:"5000"`
	SimilarityThreshold float64 `env:"DEDUP_SIMILARITY_THRESHOLD" envDefault:"0.85"`
}

// CompressorConfig holds scoring thresholds for the report generator. They
// are loaded but not read: internal/compress uses its own MaxMessages and
// ScoreThreshold constants.
type CompressorConfig struct {
	MinScore float64 `env:"COMPRESSOR_MIN_SCORE" envDefault:"0.3"`
	TopN     int     `env:"COMPRESSOR_TOP_N" envDefault:"20"`
}

// ToolsConfig configures the config-gated external-collaborator tools.
type ToolsConfig struct {
	NotesRepo         string `env:"NOTES_REPO"`
	GitSSHKeyPath     string `env:"GIT_SSH_KEY_PATH"`
	GitHubToken       string `env:"GITHUB_TOKEN"`
	SearxURL          string `env:"SEARX_URL"`
	CloudflareAPIToken string `env:"CLOUDFLARE_API_TOKEN"`
	CloudflareZoneID  string `env:"CLOUDFLARE_ZONE_ID"`
}

// LoggingConfig configures the slog-based structured logger.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"`
}

// Load parses the process environment into a Config, applying defaults
// for any unset field via struct tags.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}
	return cfg, nil
}

// ReplaceFrom atomically swaps in new values loaded from the
// environment, for hot reload without restarting the process.
func (c *Config) ReplaceFrom(other *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AI = other.AI
	c.Telegram = other.Telegram
	c.Monitor = other.Monitor
	c.Dedup = other.Dedup
	c.Compressor = other.Compressor
	c.Tools = other.Tools
	c.Logging = other.Logging
	c.DatabaseURL = other.DatabaseURL
}

// Snapshot returns a copy of the config safe to read without holding c.mu.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{
		AI:          c.AI,
		Telegram:    c.Telegram,
		Monitor:     c.Monitor,
		Dedup:       c.Dedup,
		Compressor:  c.Compressor,
		Tools:       c.Tools,
		Logging:     c.Logging,
		DatabaseURL: c.DatabaseURL,
	}
}

// IsManagedMode reports whether a Postgres DSN is configured; without
// one, qubot runs in a single-process, in-memory-only mode.
func (c *Config) IsManagedMode() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}
