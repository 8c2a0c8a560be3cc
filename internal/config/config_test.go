package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_DefaultsAndYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
telegram:
  bot_token: "token-123"
  chat_id: "42"
scan:
  timeframe: "15m"
  alerts_enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "token-123" {
		t.Errorf("bot token = %q", cfg.Telegram.BotToken)
	}
	if cfg.Scan.Timeframe != "15m" {
		t.Errorf("timeframe = %q", cfg.Scan.Timeframe)
	}
	if !cfg.Scan.AlertsEnabled {
		t.Error("alerts_enabled should be true")
	}
	// Defaults fill in the rest.
	if cfg.Scan.WindowSize != 15 || cfg.Scan.MinWindow != 3 {
		t.Errorf("window defaults = (%d, %d), want (15, 3)", cfg.Scan.WindowSize, cfg.Scan.MinWindow)
	}
	if cfg.Email.SMTPPort != 587 || cfg.Email.Subject != "Screener Alert" {
		t.Errorf("email defaults = (%d, %q)", cfg.Email.SMTPPort, cfg.Email.Subject)
	}
	if cfg.Files.Triggers != "triggers.json" {
		t.Errorf("triggers file default = %q", cfg.Files.Triggers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCREENER_TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SCREENER_SCAN_WINDOW_SIZE", "20")

	path := writeFile(t, "config.yaml", `
telegram:
  bot_token: "file-token"
  chat_id: "42"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("bot token = %q, want env override", cfg.Telegram.BotToken)
	}
	if cfg.Scan.WindowSize != 20 {
		t.Errorf("window size = %d, want 20", cfg.Scan.WindowSize)
	}
}

func TestValidate_Failures(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Telegram.BotToken = "t"
		cfg.Telegram.ChatID = "c"
		cfg.Scan.Timeframe = "1d"
		cfg.Scan.WindowSize = 15
		cfg.Scan.MinWindow = 3
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing bot token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"missing chat id", func(c *Config) { c.Telegram.ChatID = "" }},
		{"bad timeframe", func(c *Config) { c.Scan.Timeframe = "1h" }},
		{"window below minimum", func(c *Config) { c.Scan.WindowSize = 2 }},
		{"recipients without credentials", func(c *Config) { c.Email.Recipients = []string{"a@b.c"} }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("base config should validate: %v", err)
	}
}

func TestLoadTriggers(t *testing.T) {
	path := writeFile(t, "triggers.json", `{
  "Bullish Close": "Close > Open",
  "Gap Up": "Open > High[-1]"
}`)
	triggers, err := LoadTriggers(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if triggers["Bullish Close"] != "Close > Open" {
		t.Errorf("unexpected library: %v", triggers)
	}
	if got := TriggerNames(triggers); !reflect.DeepEqual(got, []string{"Bullish Close", "Gap Up"}) {
		t.Errorf("names = %v", got)
	}

	if _, err := LoadTriggers(writeFile(t, "empty.json", `{}`)); err == nil {
		t.Error("empty library should fail")
	}
	if _, err := LoadTriggers(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadSymbols(t *testing.T) {
	path := writeFile(t, "tickers.txt", "reliance.ns, TCS.NS,\ninfy.ns\n, ,\n")
	symbols, err := LoadSymbols(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("symbols = %v, want %v", symbols, want)
	}

	if _, err := LoadSymbols(writeFile(t, "blank.txt", " ,\n, ")); err == nil {
		t.Error("blank ticker list should fail")
	}
}
