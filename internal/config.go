package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Note layouts.
const (
	LayoutNested = "nested"
	LayoutFlat   = "flat"
)

// Config represents the application configuration. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Telegram TelegramConfig    `yaml:"telegram"`
	Journal  JournalConfig     `yaml:"journal"`
	Git      GitConfig         `yaml:"git"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	return c.Git.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the health endpoint configuration. Port 0 disables
// the HTTP listener entirely.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Enabled reports whether the health listener should run.
func (c *HTTPConfig) Enabled() bool {
	return c.Port > 0
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// TelegramConfig holds the messaging API configuration.
type TelegramConfig struct {
	Token           string `yaml:"token"`
	PollIntervalSec int    `yaml:"poll_interval_seconds"`
	LongPollSec     int    `yaml:"long_poll_timeout_seconds"`
}

// PollInterval returns the pause between polls.
func (c *TelegramConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// Validate validates the Telegram configuration.
func (c *TelegramConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.PollIntervalSec, validation.Required, validation.Min(1)),
		validation.Field(&c.LongPollSec, validation.Min(0), validation.Max(300)),
	)
}

// JournalConfig holds the note repository configuration.
type JournalConfig struct {
	RepoRoot         string `yaml:"repo_root"`
	NotesDir         string `yaml:"notes_dir"`
	Layout           string `yaml:"layout"`
	Timezone         string `yaml:"timezone"`
	SkeletonTemplate string `yaml:"skeleton_template"`
	FragmentTemplate string `yaml:"fragment_template"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.RepoRoot, validation.Required),
		validation.Field(&c.Layout, validation.Required, validation.In(LayoutNested, LayoutFlat)),
	); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("journal: invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the host's.
func (c *JournalConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// GitConfig holds the commit identity and subprocess bound.
type GitConfig struct {
	AuthorName        string `yaml:"author_name"`
	AuthorEmail       string `yaml:"author_email"`
	CommandTimeoutSec int    `yaml:"command_timeout_seconds"`
}

// CommandTimeout returns the per-subprocess bound; zero means unbounded.
func (c *GitConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSec) * time.Second
}

// Validate validates the git configuration.
func (c *GitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AuthorName, validation.Required),
		validation.Field(&c.AuthorEmail, validation.Required),
		validation.Field(&c.CommandTimeoutSec, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// The Telegram token and git identity have no defaults and must come
// from the config file, flags, or environment.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Telegram: TelegramConfig{
			PollIntervalSec: 10,
			LongPollSec:     30,
		},
		Journal: JournalConfig{
			RepoRoot: ".",
			NotesDir: "journal",
			Layout:   LayoutNested,
		},
		Git: GitConfig{
			CommandTimeoutSec: 60,
		},
	}
}
