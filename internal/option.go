package internal

import (
	"github.com/feldrik/jotbot/internal/gitsync"
	"github.com/feldrik/jotbot/internal/poller"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	fetcher poller.Fetcher
	syncer  gitsync.Syncer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFetcher overrides the Telegram client, primarily for tests.
func WithFetcher(f poller.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}

// WithSyncer overrides the git syncer, primarily for tests.
func WithSyncer(s gitsync.Syncer) Option {
	return func(a *application) {
		a.syncer = s
	}
}
