package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DiscordConfig holds the Discord application settings for the interactions
// endpoint and outbound message delivery.
type DiscordConfig struct {
	// AppID is the Discord application ID.
	AppID string `yaml:"app_id" json:"app_id"`
	// PublicKey is the hex-encoded Ed25519 key used to verify interaction
	// signatures.
	PublicKey string `yaml:"public_key" json:"public_key"`
	// BotToken authenticates outbound REST calls. Usually supplied via the
	// DISCORD_BOT_TOKEN environment variable rather than the config file.
	BotToken string `yaml:"bot_token,omitempty" json:"bot_token,omitempty"`
	// NotifyChannelID is the channel that receives the daily summary.
	// Empty disables the daily summary.
	NotifyChannelID string `yaml:"notify_channel_id" json:"notify_channel_id"`
}

// GoogleConfig holds the Calendar API credentials. The refresh token is
// obtained out of band; the bot only ever refreshes access tokens.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	RefreshToken string `yaml:"refresh_token,omitempty" json:"refresh_token,omitempty"`
	TokenURI     string `yaml:"token_uri" json:"token_uri"`
	// CalendarID is the calendar the bot manages. Defaults to "primary".
	CalendarID string `yaml:"calendar_id" json:"calendar_id"`
}

// LLMConfig configures the /search command against an OpenAI-compatible
// chat completion endpoint.
type LLMConfig struct {
	// ProviderName is a display label used in command feedback.
	ProviderName string `yaml:"provider_name" json:"provider_name"`
	Model        string `yaml:"model" json:"model"`
	APIKey       string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	// APIURL is the base URL of the endpoint. Empty means the provider
	// library's default (api.openai.com).
	APIURL       string `yaml:"api_url" json:"api_url"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the interactions endpoint.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is an IANA timezone name. Empty means the operating system's
	// local zone, which is also what all day-boundary math uses.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DailySummaryTime is the local wall-clock time ("HH:MM") at which the
	// daily schedule summary fires.
	DailySummaryTime string `yaml:"daily_summary_time" json:"daily_summary_time"`

	Discord DiscordConfig `yaml:"discord" json:"discord"`
	Google  GoogleConfig  `yaml:"google" json:"google"`
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           "127.0.0.1:8080",
		Timezone:         "",
		LogLevel:         "info",
		DailySummaryTime: "08:00",
		Google: GoogleConfig{
			TokenURI:   "https://oauth2.googleapis.com/token",
			CalendarID: "primary",
		},
		LLM: LLMConfig{
			ProviderName: "LLM",
			SystemPrompt: "You are a careful research assistant. Answer with sources where possible.",
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DailySummaryTime == "" {
		c.DailySummaryTime = "08:00"
	}
	if c.Google.TokenURI == "" {
		c.Google.TokenURI = "https://oauth2.googleapis.com/token"
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = "primary"
	}
	if c.LLM.ProviderName == "" {
		c.LLM.ProviderName = "LLM"
	}
}

// Location resolves the configured timezone. Empty falls back to the local
// system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ApplyEnv overlays secrets from the environment. Values already set in the
// config file are only replaced when the variable is non-empty.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		c.Discord.BotToken = v
	}
	if v := os.Getenv("GOOGLE_REFRESH_TOKEN"); v != "" {
		c.Google.RefreshToken = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - If the file exists, it is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calbot-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
