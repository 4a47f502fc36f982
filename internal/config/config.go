// Package config loads cardsift configuration from the environment and
// an optional config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds everything the CLI needs to run a sync.
type Config struct {
	// Trello credentials.
	TrelloKey   string
	TrelloToken string

	// Anthropic credentials and model for the extraction service.
	AnthropicAPIKey string
	Model           string

	// DataDir is the root for the database, marker and logs.
	// Defaults to ~/.cardsift.
	DataDir string
}

// Load reads configuration from CARDSIFT_* environment variables, the
// conventional credential variables (TRELLO_KEY, TRELLO_TOKEN,
// ANTHROPIC_API_KEY), and an optional $DataDir/config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("CARDSIFT")
	v.AutomaticEnv()

	// Credentials follow the services' own conventional variable names.
	_ = v.BindEnv("trello_key", "CARDSIFT_TRELLO_KEY", "TRELLO_KEY")
	_ = v.BindEnv("trello_token", "CARDSIFT_TRELLO_TOKEN", "TRELLO_TOKEN")
	_ = v.BindEnv("anthropic_api_key", "CARDSIFT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	v.SetDefault("data_dir", filepath.Join(home, ".cardsift"))
	v.SetDefault("model", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars are enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		TrelloKey:       v.GetString("trello_key"),
		TrelloToken:     v.GetString("trello_token"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		Model:           v.GetString("model"),
		DataDir:         v.GetString("data_dir"),
	}, nil
}

// RequireTrello returns an error if the Trello credentials are missing.
func (c *Config) RequireTrello() error {
	if c.TrelloKey == "" || c.TrelloToken == "" {
		return fmt.Errorf("Trello credentials not set (TRELLO_KEY and TRELLO_TOKEN)")
	}
	return nil
}

// RequireAnthropic returns an error if the extraction API key is missing.
func (c *Config) RequireAnthropic() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("Anthropic API key not set (ANTHROPIC_API_KEY)")
	}
	return nil
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "cardsift.db")
}

// MarkerPath returns the last-synced-board marker location.
func (c *Config) MarkerPath() string {
	return filepath.Join(c.DataDir, "last_board.json")
}

// RunLogPath returns the per-run failure log location.
func (c *Config) RunLogPath() string {
	return filepath.Join(c.DataDir, "run.log")
}

// AppLogPath returns the rotating application log location.
func (c *Config) AppLogPath() string {
	return filepath.Join(c.DataDir, "cardsift.log")
}
