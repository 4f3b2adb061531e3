// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "BUREAU_CHAT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local use against a test homeserver.
	Development Environment = "development"
	// Production is for day-to-day use against a real homeserver.
	Production Environment = "production"
)

// Config is the bureau-chat configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// HomeserverURL is the base URL of the Matrix homeserver,
	// e.g. "https://matrix.example.org".
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the account to log in as, e.g. "@alice:example.org".
	UserID string `yaml:"user_id"`

	// AccessTokenFile holds a Matrix access token. When empty the
	// command prompts for a password and logs in instead.
	AccessTokenFile string `yaml:"access_token_file"`

	Sync          SyncConfig          `yaml:"sync"`
	History       HistoryConfig       `yaml:"history"`
	Notifications NotificationsConfig `yaml:"notifications"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	HomeserverURL   string               `yaml:"homeserver_url,omitempty"`
	AccessTokenFile string               `yaml:"access_token_file,omitempty"`
	Sync            *SyncConfig          `yaml:"sync,omitempty"`
	Notifications   *NotificationsConfig `yaml:"notifications,omitempty"`
}

// SyncConfig tunes the /sync long-poll loop.
type SyncConfig struct {
	// Timeout is the server-side long-poll hold time.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxBackoff caps the retry delay after failed syncs.
	// Default: 30s
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// TimelineLimit bounds timeline events per room in each sync
	// response and the per-room buffer kept in memory.
	// Default: 50
	TimelineLimit int `yaml:"timeline_limit"`
}

// HistoryConfig tunes the history fetched when joining a room.
type HistoryConfig struct {
	// Limit is the number of events requested from /messages.
	// Default: 50
	Limit int `yaml:"limit"`
}

// NotificationsConfig tunes transient notifications in the terminal UI.
type NotificationsConfig struct {
	// Fade is how long a notification stays visible.
	// Default: 5s
	Fade time.Duration `yaml:"fade"`
}

// Default returns the configuration used as a base before the file is
// applied.
func Default() *Config {
	return &Config{
		Environment: Development,
		Sync: SyncConfig{
			Timeout:       30 * time.Second,
			MaxBackoff:    30 * time.Second,
			TimelineLimit: 50,
		},
		History: HistoryConfig{
			Limit: 50,
		},
		Notifications: NotificationsConfig{
			Fade: 5 * time.Second,
		},
	}
}

// Load loads configuration from the file named by BUREAU_CHAT_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so the yaml tags serve both forms.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.HomeserverURL != "" {
		c.HomeserverURL = overrides.HomeserverURL
	}
	if overrides.AccessTokenFile != "" {
		c.AccessTokenFile = overrides.AccessTokenFile
	}
	if overrides.Sync != nil {
		if overrides.Sync.Timeout != 0 {
			c.Sync.Timeout = overrides.Sync.Timeout
		}
		if overrides.Sync.MaxBackoff != 0 {
			c.Sync.MaxBackoff = overrides.Sync.MaxBackoff
		}
		if overrides.Sync.TimelineLimit != 0 {
			c.Sync.TimelineLimit = overrides.Sync.TimelineLimit
		}
	}
	if overrides.Notifications != nil && overrides.Notifications.Fade != 0 {
		c.Notifications.Fade = overrides.Notifications.Fade
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.AccessTokenFile = expandVars(c.AccessTokenFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// take precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.HomeserverURL == "" {
		errs = append(errs, fmt.Errorf("homeserver_url is required"))
	} else if parsed, err := url.Parse(c.HomeserverURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("homeserver_url %q is not an absolute URL", c.HomeserverURL))
	}

	if c.UserID == "" {
		errs = append(errs, fmt.Errorf("user_id is required"))
	} else if _, err := ref.ParseUserID(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("user_id: %w", err))
	}

	if c.Sync.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sync.timeout must be positive"))
	}
	if c.Sync.MaxBackoff <= 0 {
		errs = append(errs, fmt.Errorf("sync.max_backoff must be positive"))
	}
	if c.Sync.TimelineLimit <= 0 {
		errs = append(errs, fmt.Errorf("sync.timeline_limit must be positive"))
	}
	if c.History.Limit <= 0 {
		errs = append(errs, fmt.Errorf("history.limit must be positive"))
	}
	if c.Notifications.Fade <= 0 {
		errs = append(errs, fmt.Errorf("notifications.fade must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
