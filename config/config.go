// Package config reads the bot's settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the bot reads at startup.
type Config struct {
	DiscordToken string `envconfig:"DISCORD_TOKEN"`

	// Up to three Hugging Face tokens, used round-robin.
	HuggingAPI  string `envconfig:"HUGGING_API"`
	HuggingAPI2 string `envconfig:"HUGGING_API2"`
	HuggingAPI3 string `envconfig:"HUGGING_API3"`

	InferenceURL   string `envconfig:"HF_BASE_URL" default:"https://router.huggingface.co/v1"`
	InferenceModel string `envconfig:"HF_MODEL" default:"meta-llama/Llama-3.1-8B-Instruct"`

	BMKGURL        string `envconfig:"BMKG_URL" default:"https://api.bmkg.go.id/publik/prakiraan-cuaca"`
	AlertChannelID string `envconfig:"ALERT_CHANNEL_ID"`

	// Upstream monitoring runs only when AlertChannelID is set.
	MonitorRegion string        `envconfig:"MONITOR_ADM4" default:"31.71.03.1001"`
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"1m"`
	AlertInterval time.Duration `envconfig:"ALERT_INTERVAL" default:"1h"`

	DataDir     string `envconfig:"DATA_DIR" default:"./data"`
	PostgresURL string `envconfig:"POSTGRES_URL"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":6060"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// OnePasswordToken enables resolving missing credentials from 1Password.
	OnePasswordToken string `envconfig:"OP_SA"`
	OnePasswordVault string `envconfig:"OP_VAULT" default:"kingdom-of-science"`
}

// Load reads envFile into the process environment when it exists and then fills a
// Config from the environment. Variables already set in the environment win over
// the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error reading environment: %w", err)
	}
	return cfg, nil
}

// InferenceKeys returns the configured Hugging Face tokens in rotation order,
// skipping blanks.
func (c Config) InferenceKeys() []string {
	var keys []string
	for _, k := range []string{c.HuggingAPI, c.HuggingAPI2, c.HuggingAPI3} {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate reports settings the bot cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DiscordToken) == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty")
	}
	if c.AlertChannelID != "" && c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive, got %s", c.CheckInterval)
	}
	return nil
}
