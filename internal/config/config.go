package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram"`
	Email struct {
		SMTPHost   string   `yaml:"smtp_host" envconfig:"SMTP_HOST"`
		SMTPPort   int      `yaml:"smtp_port" envconfig:"SMTP_PORT"`
		Username   string   `yaml:"username" envconfig:"USERNAME"`
		Password   string   `yaml:"password" envconfig:"PASSWORD"`
		Recipients []string `yaml:"recipients" envconfig:"RECIPIENTS"`
		Subject    string   `yaml:"subject" envconfig:"SUBJECT"`
	} `yaml:"email"`
	Scan struct {
		Cron           string `yaml:"cron" envconfig:"CRON"`
		Timeframe      string `yaml:"timeframe" envconfig:"TIMEFRAME"`
		WindowSize     int    `yaml:"window_size" envconfig:"WINDOW_SIZE"`
		MinWindow      int    `yaml:"min_window" envconfig:"MIN_WINDOW"`
		AlertsEnabled  bool   `yaml:"alerts_enabled" envconfig:"ALERTS_ENABLED"`
		DefaultTrigger string `yaml:"default_trigger" envconfig:"DEFAULT_TRIGGER"`
	} `yaml:"scan"`
	Files struct {
		Triggers string `yaml:"triggers" envconfig:"TRIGGERS"`
		Tickers  string `yaml:"tickers" envconfig:"TICKERS"`
	} `yaml:"files"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies SCREENER_* environment
// variable overrides and fills in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides (SCREENER_TELEGRAM_BOT_TOKEN, ...)
	if err := envconfig.Process("screener", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	// Defaults
	if cfg.Scan.Cron == "" {
		cfg.Scan.Cron = "0 */15 * * * *"
	}
	if cfg.Scan.Timeframe == "" {
		cfg.Scan.Timeframe = "1d"
	}
	if cfg.Scan.WindowSize == 0 {
		cfg.Scan.WindowSize = 15
	}
	if cfg.Scan.MinWindow == 0 {
		cfg.Scan.MinWindow = 3
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.Subject == "" {
		cfg.Email.Subject = "Screener Alert"
	}
	if cfg.Files.Triggers == "" {
		cfg.Files.Triggers = "triggers.json"
	}
	if cfg.Files.Tickers == "" {
		cfg.Files.Tickers = "tickers.txt"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Scan.Timeframe != "15m" && c.Scan.Timeframe != "1d" {
		return fmt.Errorf("scan.timeframe must be 15m or 1d, got %q", c.Scan.Timeframe)
	}
	if c.Scan.MinWindow < 1 {
		return fmt.Errorf("scan.min_window must be positive")
	}
	if c.Scan.WindowSize < c.Scan.MinWindow {
		return fmt.Errorf("scan.window_size (%d) must be at least scan.min_window (%d)",
			c.Scan.WindowSize, c.Scan.MinWindow)
	}
	if len(c.Email.Recipients) > 0 && (c.Email.Username == "" || c.Email.Password == "") {
		return fmt.Errorf("email.username and email.password are required when recipients are set")
	}
	return nil
}

// EmailEnabled reports whether the email channel is configured.
func (c *Config) EmailEnabled() bool {
	return len(c.Email.Recipients) > 0
}
