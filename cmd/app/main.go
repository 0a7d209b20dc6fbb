package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/feldrik/jotbot/internal"
	pkgconfig "github.com/feldrik/jotbot/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	if err := pkgconfig.Validate(cfg); err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// applyFlags overrides file/default configuration with any flag that was
// set explicitly or through its environment source.
func applyFlags(cmd *cli.Command, cfg *internal.Config) error {
	if cmd.IsSet("token") {
		cfg.Telegram.Token = cmd.String("token")
	}
	if cmd.IsSet("poll-interval") {
		cfg.Telegram.PollIntervalSec = int(cmd.Int("poll-interval"))
	}
	if cmd.IsSet("long-poll-timeout") {
		cfg.Telegram.LongPollSec = int(cmd.Int("long-poll-timeout"))
	}
	if cmd.IsSet("repo-root") {
		cfg.Journal.RepoRoot = cmd.String("repo-root")
	}
	if cmd.IsSet("notes-dir") {
		cfg.Journal.NotesDir = cmd.String("notes-dir")
	}
	if cmd.IsSet("layout") {
		cfg.Journal.Layout = cmd.String("layout")
	}
	if cmd.IsSet("timezone") {
		cfg.Journal.Timezone = cmd.String("timezone")
	}
	if cmd.IsSet("skeleton-template") {
		cfg.Journal.SkeletonTemplate = cmd.String("skeleton-template")
	}
	if cmd.IsSet("fragment-template") {
		cfg.Journal.FragmentTemplate = cmd.String("fragment-template")
	}
	if cmd.IsSet("git-author-name") {
		cfg.Git.AuthorName = cmd.String("git-author-name")
	}
	if cmd.IsSet("git-author-email") {
		cfg.Git.AuthorEmail = cmd.String("git-author-email")
	}
	if cmd.IsSet("git-timeout") {
		cfg.Git.CommandTimeoutSec = int(cmd.Int("git-timeout"))
	}
	if cmd.IsSet("http-port") {
		cfg.App.HTTP.Port = int(cmd.Int("http-port"))
	}
	if cmd.IsSet("log-level") {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		cfg.App.LogLevel = lvl
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "jotbot",
		Usage:  "Telegram bot that appends messages to daily Markdown notes in a git-synced repository",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Telegram bot token",
				Sources: cli.EnvVars("TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"),
			},
			&cli.IntFlag{
				Name:    "poll-interval",
				Usage:   "Seconds between polls when long polling is disabled",
				Sources: cli.EnvVars("POLL_INTERVAL_SECONDS"),
			},
			&cli.IntFlag{
				Name:    "long-poll-timeout",
				Usage:   "getUpdates long-poll timeout in seconds (0 disables)",
				Sources: cli.EnvVars("LONG_POLL_TIMEOUT_SECONDS"),
			},
			&cli.StringFlag{
				Name:    "repo-root",
				Usage:   "Path to the pre-cloned note repository",
				Sources: cli.EnvVars("REPO_ROOT"),
			},
			&cli.StringFlag{
				Name:    "notes-dir",
				Usage:   "Notes subdirectory inside the repository",
				Sources: cli.EnvVars("DAILY_NOTES_DIR"),
			},
			&cli.StringFlag{
				Name:    "layout",
				Usage:   "Note layout: nested or flat",
				Sources: cli.EnvVars("NOTES_LAYOUT"),
			},
			&cli.StringFlag{
				Name:    "timezone",
				Usage:   "IANA timezone for note dates (default: host timezone)",
				Sources: cli.EnvVars("LOCAL_TIMEZONE"),
			},
			&cli.StringFlag{
				Name:    "skeleton-template",
				Usage:   "Path to a custom note skeleton template",
				Sources: cli.EnvVars("SKELETON_TEMPLATE_FILE"),
			},
			&cli.StringFlag{
				Name:    "fragment-template",
				Usage:   "Path to a custom message fragment template",
				Sources: cli.EnvVars("FRAGMENT_TEMPLATE_FILE"),
			},
			&cli.StringFlag{
				Name:    "git-author-name",
				Usage:   "Commit author name",
				Sources: cli.EnvVars("GIT_AUTHOR_NAME"),
			},
			&cli.StringFlag{
				Name:    "git-author-email",
				Usage:   "Commit author email",
				Sources: cli.EnvVars("GIT_AUTHOR_EMAIL"),
			},
			&cli.IntFlag{
				Name:    "git-timeout",
				Usage:   "Per-git-subprocess timeout in seconds (0 disables)",
				Sources: cli.EnvVars("GIT_COMMAND_TIMEOUT_SECONDS"),
			},
			&cli.IntFlag{
				Name:    "http-port",
				Usage:   "Health endpoint port (0 disables)",
				Sources: cli.EnvVars("HTTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
