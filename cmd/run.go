package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qscuio/qubot/internal/agent"
	"github.com/qscuio/qubot/internal/bus"
	"github.com/qscuio/qubot/internal/channels"
	"github.com/qscuio/qubot/internal/channels/telegram"
	"github.com/qscuio/qubot/internal/compress"
	"github.com/qscuio/qubot/internal/config"
	"github.com/qscuio/qubot/internal/dedup"
	"github.com/qscuio/qubot/internal/domain"
	"github.com/qscuio/qubot/internal/ingest"
	"github.com/qscuio/qubot/internal/providers"
	"github.com/qscuio/qubot/internal/scheduler"
	"github.com/qscuio/qubot/internal/store"
	"github.com/qscuio/qubot/internal/tools"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor/gateway daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stdout
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
			return
		}
		slog.Warn("failed to open log file, falling back to stdout", "path", cfg.File, "error", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	setupLogging(cfg.Logging)

	providerReg := buildProviderRegistry(cfg.AI.Vendors)
	toolReg := buildToolRegistry(cfg)

	var stores *store.Stores
	if cfg.IsManagedMode() {
		stores, err = store.NewPGStores(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
	}

	msgBus := bus.NewMessageBus()
	dd := dedup.New(cfg.Dedup.CacheSize, cfg.Dedup.SimilarityThreshold)
	pipeline := ingest.New(buildIngestConfig(cfg.Monitor), dd)

	chanMgr := channels.NewManager(msgBus)
	if cfg.Telegram.Token != "" {
		tgChannel, err := telegram.New(cfg.Telegram.ToChannelConfig(), msgBus)
		if err != nil {
			return fmt.Errorf("init telegram channel: %w", err)
		}
		chanMgr.RegisterChannel("telegram", tgChannel)
	}

	var orchestrator *agent.Orchestrator
	if p, err := providerReg.Get(cfg.AI.Provider); err == nil {
		var usage agent.UsageRecorder
		if stores != nil {
			usage = store.NewUsageRecorder(stores.Usage)
		}
		loop := agent.NewLoop(p, toolReg, usage)
		orchestrator = agent.NewOrchestrator(agent.NewRegistry(), loop)
	} else {
		slog.Warn("no AI provider configured; agent replies disabled", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()

	if err := chanMgr.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	defer chanMgr.StopAll(context.Background())

	var sched *scheduler.Scheduler
	if stores != nil {
		reporter := &channelReporter{stores: stores, bus: msgBus}
		sched = scheduler.New(reporter)
		go sched.Run(ctx)
	}

	slog.Info("qubot daemon started",
		"providers", providerReg.Names(),
		"tools", toolReg.Names(),
		"managed_mode", cfg.IsManagedMode(),
	)

	runIngestLoop(ctx, msgBus, pipeline, stores, orchestrator)

	slog.Info("qubot daemon stopped")
	return nil
}

// runIngestLoop consumes inbound updates from the bus, decides their fate
// via the ingest pipeline, persists cache hits, and runs the agent
// orchestrator for any update whose text starts with "/ai ", whatever the
// pipeline decided for it.
func runIngestLoop(ctx context.Context, msgBus *bus.MessageBus, pipeline *ingest.Pipeline, stores *store.Stores, orch *agent.Orchestrator) {
	for {
		inbound, ok := msgBus.ConsumeInbound(ctx)
		if !ok {
			return
		}

		result := pipeline.Process(ingest.Update{
			ChatID:          inbound.ChatID,
			ChatTitle:       inbound.ChatTitle,
			ChatUsername:    inbound.ChatUsername,
			SenderID:        inbound.SenderID,
			SenderUsername:  inbound.SenderUsername,
			MessageID:       inbound.MessageID,
			Text:            inbound.Content,
			HTML:            inbound.HTML,
			Media:           inbound.Media,
			Timestamp:       time.Now(),
			ChannelCategory: channelCategory(ctx, stores, inbound.ChatID),
		})

		if result.CacheMessage != nil && stores != nil {
			if err := stores.Cache.Add(ctx, *result.CacheMessage); err != nil {
				slog.Warn("cache message failed", "error", err)
			}
		}

		switch result.Outcome {
		case ingest.OutcomeForwardNormal, ingest.OutcomeForwardVIP:
			msgBus.PublishOutbound(bus.OutboundMessage{
				Channel: inbound.Channel,
				ChatID:  result.TargetChannel,
				Content: inbound.Content,
			})
		}

		if orch != nil && strings.HasPrefix(strings.TrimSpace(inbound.Content), "/ai ") {
			go replyWithAgent(ctx, orch, msgBus, inbound)
		}
	}
}

func replyWithAgent(ctx context.Context, orch *agent.Orchestrator, msgBus *bus.MessageBus, inbound bus.InboundMessage) {
	prompt := strings.TrimSpace(strings.TrimPrefix(inbound.Content, "/ai"))
	resp, err := orch.RunWithRouting(ctx, agent.RunRequest{Message: prompt})
	if err != nil {
		slog.Error("agent run failed", "error", err)
		return
	}
	if resp.Content == "" {
		return
	}
	msgBus.PublishOutbound(bus.OutboundMessage{
		Channel: inbound.Channel,
		ChatID:  inbound.ChatID,
		Content: resp.Content,
	})
}

// channelCategory looks up chatID's administrative category (market,
// news, tech, resource, skip), defaulting to "" (treated as "market")
// when standalone mode has no store or the channel is unknown.
func channelCategory(ctx context.Context, stores *store.Stores, chatID string) string {
	if stores == nil {
		return ""
	}
	ch, err := stores.Channels.Get(ctx, chatID)
	if err != nil || ch == nil {
		return ""
	}
	return ch.Category
}

func buildIngestConfig(mon config.MonitorConfig) ingest.Config {
	return ingest.Config{
		DestinationChannels:  toSet([]string{mon.TargetChannel, mon.VIPTargetChannel, mon.ReportTargetChannel}),
		Blacklist:            toSet(mon.BlacklistChannels),
		SourceChannels:       toSet(mon.SourceChannels),
		FromUsers:            toSet(mon.FromUsers),
		Keywords:             mon.Keywords,
		VIPTargetChannel:     mon.VIPTargetChannel,
		DefaultTargetChannel: mon.TargetChannel,
	}
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// buildProviderRegistry registers a Provider for every vendor with a
// configured API key.
func buildProviderRegistry(v config.VendorKeys) *providers.Registry {
	reg := providers.NewRegistry()

	if v.OpenAIKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("openai", v.OpenAIKey, v.OpenAIBase, v.OpenAIModel))
	}
	if v.GroqKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("groq", v.GroqKey, "", v.GroqModel))
	}
	if v.OpenRouterKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("openrouter", v.OpenRouterKey, "", v.OpenRouterModel))
	}
	if v.GLMKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("glm", v.GLMKey, "", v.GLMModel))
	}
	if v.NvidiaKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("nvidia", v.NvidiaKey, "", v.NvidiaModel))
	}
	if v.MinimaxKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("minimax", v.MinimaxKey, "", v.MinimaxModel))
	}
	if v.GeminiKey != "" {
		reg.Register(providers.NewOpenAIVendorProvider("gemini", v.GeminiKey, "", v.GeminiModel))
	}
	if v.AnthropicKey != "" {
		reg.Register(providers.NewAnthropicProvider(v.AnthropicKey))
	}
	if v.DashScopeKey != "" {
		reg.Register(providers.NewDashScopeProvider(v.DashScopeKey, v.DashScopeBase, v.DashScopeModel))
	}

	return reg
}

func buildToolRegistry(cfg *config.Config) *tools.Registry {
	reg := tools.NewRegistry()

	reg.Register(tools.NewCalculatorTool())
	reg.Register(tools.NewReadFileTool(cfg.AI.WorkspacePath, true))
	reg.Register(tools.NewListDirTool(cfg.AI.WorkspacePath, true))

	if cfg.Tools.GitHubToken != "" {
		reg.Register(tools.NewGitHubRepoTool(cfg.Tools.GitHubToken))
	}
	if cfg.Tools.CloudflareAPIToken != "" {
		reg.Register(tools.NewCloudflarePurgeTool(cfg.Tools.CloudflareAPIToken, cfg.Tools.CloudflareZoneID))
	}
	reg.Register(tools.NewWebSearchTool(tools.WebSearchConfig{DDGEnabled: true, DDGMaxResults: 5}))
	reg.Register(tools.NewWebFetchTool(tools.WebFetchConfig{}))

	return reg
}

// channelReporter implements scheduler.ChannelReporter over the
// persisted message cache: it compresses every cached channel's backlog
// into a report, records hot words, and clears the cache. It does not
// look at the channel's category: channels are not classified here, and
// tech/resource/skip channels are compressed and reported like any other.
type channelReporter struct {
	stores *store.Stores
	bus    *bus.MessageBus
}

func (r *channelReporter) Channels(ctx context.Context) ([]string, error) {
	return r.stores.Cache.ChannelsWithCache(ctx)
}

func (r *channelReporter) RunReport(ctx context.Context, channelID string) error {
	messages, err := r.stores.Cache.ListByChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("list cached messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	result := compress.Run(channelID, messages)

	for _, hw := range result.HotWords {
		if err := r.stores.HotWords.Upsert(ctx, result.CreatedAt.Format("2006-01-02"), channelID, hw.Word, hw.Category, hw.Count); err != nil {
			slog.Warn("hot word upsert failed", "word", hw.Word, "error", err)
		}
	}

	r.bus.PublishOutbound(bus.OutboundMessage{
		Channel: "telegram",
		ChatID:  channelID,
		Content: formatReport(result),
	})

	return r.stores.Cache.Clear(ctx, channelID)
}

func formatReport(result domain.CompressionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Channel digest (%d of %d messages selected, ratio %.2f)\n\n", result.Stats.CompressedCount, result.Stats.OriginalCount, result.Stats.CompressionRatio)
	for _, m := range result.Messages {
		fmt.Fprintf(&b, "- %s\n", m.Text)
	}
	if len(result.HotWords) > 0 {
		b.WriteString("\nHot words: ")
		for i, hw := range result.HotWords {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%d)", hw.Word, hw.Count)
		}
	}
	return b.String()
}
