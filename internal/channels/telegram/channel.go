// Package telegram implements the Telegram Bot API channel adapter:
// long-polling ingestion of chat updates onto the message bus, and
// outbound delivery of forwarded/agent replies.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/qscuio/qubot/internal/bus"
	"github.com/qscuio/qubot/internal/channels"
)

// Config holds the Telegram channel's settings.
type Config struct {
	Token     string
	Proxy     string   // optional HTTP(S) proxy URL
	AllowFrom []string // allow-list of sender IDs/usernames; empty = unrestricted
}

// Channel connects to Telegram via the Bot API using long polling.
type Channel struct {
	*channels.BaseChannel
	bot        *telego.Bot
	config     Config
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New creates a new Telegram channel from config.
func New(cfg Config, msgBus *bus.MessageBus) (*Channel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	base := channels.NewBaseChannel("telegram", msgBus, cfg.AllowFrom)

	return &Channel{
		BaseChannel: base,
		bot:         bot,
		config:      cfg,
	}, nil
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message", "channel_post"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	c.SetRunning(true)
	slog.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				msg := update.Message
				if msg == nil {
					msg = update.ChannelPost
				}
				if msg == nil {
					continue
				}
				c.handleMessage(msg)
			}
		}
	}()

	return nil
}

// Stop shuts down the Telegram bot by cancelling the long polling context
// and waiting for the polling goroutine to exit.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")
	c.SetRunning(false)

	if c.pollCancel != nil {
		c.pollCancel()
	}

	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}

	return nil
}

// handleMessage converts a Telegram update into an InboundMessage and
// publishes it to the bus for the ingest pipeline to consume.
func (c *Channel) handleMessage(msg *telego.Message) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}

	senderID := ""
	senderUsername := ""
	if msg.From != nil {
		senderID = fmt.Sprintf("%d", msg.From.ID)
		senderUsername = msg.From.Username
	}

	c.HandleMessage(bus.InboundMessage{
		ChatID:         fmt.Sprintf("%d", msg.Chat.ID),
		ChatTitle:      msg.Chat.Title,
		ChatUsername:   msg.Chat.Username,
		SenderID:       senderID,
		SenderUsername: senderUsername,
		MessageID:      fmt.Sprintf("%d", msg.MessageID),
		Content:        text,
	})
}

// Send delivers an outbound message to Telegram.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	chatID, err := parseChatID(msg.ChatID)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", msg.ChatID, err)
	}

	content := msg.Content
	for _, media := range msg.Media {
		if media.Caption != "" {
			content = strings.TrimSpace(content + "\n" + media.Caption)
		}
	}

	sendMsg := tu.Message(tu.ID(chatID), content)
	_, err = c.bot.SendMessage(ctx, sendMsg)
	return err
}

// parseChatID converts a string chat ID to int64.
func parseChatID(chatIDStr string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(chatIDStr, "%d", &id)
	return id, err
}
