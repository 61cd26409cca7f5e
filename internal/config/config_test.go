package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, "openai")
	}
	if cfg.Dedup.CacheSize != 5000 {
		t.Errorf("Dedup.CacheSize = %d, want 5000", cfg.Dedup.CacheSize)
	}
	if cfg.Compressor.TopN != 20 {
		t.Errorf("Compressor.TopN = %d, want 20", cfg.Compressor.TopN)
	}
	if cfg.IsManagedMode() {
		t.Error("IsManagedMode() = true, want false with no DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("SOURCE_CHANNELS", "a,b,c")
	t.Setenv("DATABASE_URL", "postgres://localhost/qubot")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.Provider != "anthropic" {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, "anthropic")
	}
	if len(cfg.Monitor.SourceChannels) != 3 {
		t.Errorf("SourceChannels = %v, want 3 entries", cfg.Monitor.SourceChannels)
	}
	if !cfg.IsManagedMode() {
		t.Error("IsManagedMode() = false, want true with DATABASE_URL set")
	}
}

func TestTelegramEnvConfig_ToChannelConfig(t *testing.T) {
	tc := TelegramEnvConfig{Token: "abc", AllowedUsers: []string{"123", "456"}}
	cc := tc.ToChannelConfig()
	if cc.Token != "abc" {
		t.Errorf("Token = %q, want %q", cc.Token, "abc")
	}
	if len(cc.AllowFrom) != 2 {
		t.Errorf("AllowFrom = %v, want 2 entries", cc.AllowFrom)
	}
}
