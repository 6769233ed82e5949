package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application-level configuration.
type Config struct {
	InstanceURL string `env:"FEEDLINE_INSTANCE" env-default:"https://mastodon.social" env-description:"Mastodon instance URL"`
	Token       string `env:"FEEDLINE_TOKEN" env-description:"Bearer access token (takes precedence over the token file)"`
	TokenPath   string `env:"FEEDLINE_TOKEN_FILE" env-description:"Path to a file containing the access token"`

	Timeline  string `env:"FEEDLINE_TIMELINE" env-default:"public" env-description:"home, public, local, hashtag, account or list"`
	Hashtag   string `env:"FEEDLINE_HASHTAG" env-description:"Tag for the hashtag timeline, without '#'"`
	AccountID string `env:"FEEDLINE_ACCOUNT" env-description:"Account id or user@domain handle for the account timeline"`
	ListID    string `env:"FEEDLINE_LIST" env-description:"List id for the list timeline"`

	ShowBoosts  bool `env:"FEEDLINE_SHOW_BOOSTS" env-default:"true"`
	ShowReplies bool `env:"FEEDLINE_SHOW_REPLIES" env-default:"true"`
	PageLimit   int  `env:"FEEDLINE_PAGE_LIMIT" env-default:"20"`

	Streaming        bool   `env:"FEEDLINE_STREAMING" env-default:"true"`
	StreamMaxRetries uint64 `env:"FEEDLINE_STREAM_MAX_RETRIES" env-default:"8"`

	LogLevel  string `env:"FEEDLINE_LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"FEEDLINE_LOG_FORMAT" env-default:"json"`
	LogFile   string `env:"FEEDLINE_LOG_FILE" env-description:"Log destination; logs are discarded when empty"`
}

// Load reads configuration from FEEDLINE_* environment variables and applies
// defaults. The result is not validated until Normalize, so command-line
// overrides can replace a bad value first.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// Normalize validates the instance URL and fills derived defaults.
func (c *Config) Normalize() error {
	parsed, err := url.Parse(strings.TrimSpace(c.InstanceURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid FEEDLINE_INSTANCE: must be an absolute URL")
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("invalid FEEDLINE_INSTANCE: only https is allowed")
	}
	c.InstanceURL = strings.TrimRight(parsed.String(), "/")

	if c.PageLimit <= 0 {
		c.PageLimit = 20
	}
	if c.PageLimit > 40 {
		// Mastodon caps timeline pages at 40.
		c.PageLimit = 40
	}
	c.Hashtag = strings.TrimPrefix(strings.TrimSpace(c.Hashtag), "#")
	c.TokenPath = expandTilde(strings.TrimSpace(c.TokenPath))
	c.LogFile = expandTilde(strings.TrimSpace(c.LogFile))
	return nil
}

// Usage describes the supported environment variables.
func Usage() string {
	var cfg Config
	help, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return help
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
