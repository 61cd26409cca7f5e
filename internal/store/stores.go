// Package store aggregates qubot's persistence interfaces. In managed
// mode (DATABASE_URL set) these are backed by internal/store/pg;
// without one, qubot runs in-memory only and no Stores value is built.
package store

import (
	"github.com/qscuio/qubot/internal/store/pg"
)

// Stores bundles every persistence dependency the composition root wires.
type Stores struct {
	Channels  *pg.ChannelStore
	VIP       *pg.VIPStore
	Blacklist *pg.BlacklistStore
	Cache     *pg.MessageCacheStore
	History   *pg.HistoryStore
	HotWords  *pg.HotWordStore
	Usage     *pg.TokenUsageStore
	Chats     *pg.ChatStore
	Agents    *pg.AgentSettingsStore
	Prefs     *pg.UserPrefStore
}

// NewPGStores constructs every store over a single Postgres connection pool.
func NewPGStores(dsn string) (*Stores, error) {
	db, err := pg.OpenDB(dsn)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Channels:  pg.NewChannelStore(db),
		VIP:       pg.NewVIPStore(db),
		Blacklist: pg.NewBlacklistStore(db),
		Cache:     pg.NewMessageCacheStore(db),
		History:   pg.NewHistoryStore(db),
		HotWords:  pg.NewHotWordStore(db),
		Usage:     pg.NewTokenUsageStore(db),
		Chats:     pg.NewChatStore(db),
		Agents:    pg.NewAgentSettingsStore(db),
		Prefs:     pg.NewUserPrefStore(db),
	}, nil
}
