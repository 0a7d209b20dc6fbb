// Package poller long-polls the Telegram Bot API and dispatches inbound
// text messages one at a time.
package poller

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/feldrik/jotbot/internal/models"
)

// Fetcher is the slice of the Telegram client the poller depends on.
// *tgbotapi.BotAPI satisfies it.
type Fetcher interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Handler processes one inbound message. A returned error is logged by
// the poller; the message is dropped, never requeued.
type Handler func(ctx context.Context, msg models.Message) error

// Poller runs the fetch-and-dispatch loop. Delivery is at-least-once:
// the offset is held in memory only and is acknowledged to the API by the
// next GetUpdates call, so a restart between fetch and processing
// redelivers the batch.
type Poller struct {
	fetcher  Fetcher
	handler  Handler
	logger   *slog.Logger
	interval time.Duration // pause between polls when long polling is off or a fetch fails
	longPoll int           // getUpdates timeout in seconds; 0 disables long polling
}

// New creates a Poller. interval must be positive; longPollSeconds of 0
// selects fixed-interval polling.
func New(fetcher Fetcher, handler Handler, logger *slog.Logger, interval time.Duration, longPollSeconds int) *Poller {
	return &Poller{
		fetcher:  fetcher,
		handler:  handler,
		logger:   logger,
		interval: interval,
		longPoll: longPollSeconds,
	}
}

// Step fetches the next batch of updates for offset and returns the next
// offset together with the accepted text messages, in arrival order.
// Non-text updates and bot commands are skipped with no observable
// effect. The offset advances past the whole batch regardless of how the
// messages fare downstream.
func (p *Poller) Step(offset int) (int, []models.Message, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = p.longPoll
	cfg.AllowedUpdates = []string{"message"}

	updates, err := p.fetcher.GetUpdates(cfg)
	if err != nil {
		return offset, nil, err
	}

	next := offset
	var msgs []models.Message
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
		m := u.Message
		if m == nil || m.Text == "" {
			continue
		}
		if strings.HasPrefix(m.Text, "/") {
			continue
		}
		msgs = append(msgs, models.Message{
			Sender: displayName(m.From),
			SentAt: m.Time().UTC(),
			Text:   m.Text,
		})
	}
	return next, msgs, nil
}

// Run loops Step until ctx is cancelled, dispatching each message to the
// handler sequentially. Fetch and handler errors are logged and the loop
// continues; Run returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	offset := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		next, msgs, err := p.Step(offset)
		if err != nil {
			p.logger.Error("poll failed", slog.String("error", err.Error()))
			if !p.wait(ctx) {
				return nil
			}
			continue
		}
		offset = next

		for _, msg := range msgs {
			if err := p.handler(ctx, msg); err != nil {
				p.logger.Error("message dropped",
					slog.String("sender", msg.Sender),
					slog.String("error", err.Error()))
			}
		}

		if p.longPoll == 0 {
			if !p.wait(ctx) {
				return nil
			}
		}
	}
}

// wait pauses for the poll interval; it reports false when ctx ended first.
func (p *Poller) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.interval):
		return true
	}
}

// displayName builds the author label from the Telegram user: full name
// plus @username when present.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName)); name != "" {
		parts = append(parts, name)
	}
	if u.UserName != "" {
		parts = append(parts, "@"+u.UserName)
	}
	return strings.Join(parts, " ")
}
