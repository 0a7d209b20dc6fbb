package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feldrik/jotbot/internal/gitsync"
	"github.com/feldrik/jotbot/internal/journal"
	"github.com/feldrik/jotbot/internal/models"
)

// PipelineStage identifies how far a message travelled through the
// append-and-sync pipeline.
type PipelineStage string

const (
	StageAppend PipelineStage = "append"
	StagePull   PipelineStage = "pull"
	StageStage  PipelineStage = "stage"
	StageCommit PipelineStage = "commit"
	StagePush   PipelineStage = "push"
	StageDone   PipelineStage = "done"
)

// Outcome is the result of processing one message. Tests assert on it
// directly instead of parsing log output.
type Outcome struct {
	NotePath string
	Created  bool          // note was initialized from the skeleton
	Stage    PipelineStage // stage that failed, or StageDone
	Err      error
}

// OK reports whether the message was appended and synchronized.
func (o Outcome) OK() bool { return o.Err == nil }

// Processor runs the per-message pipeline: append the message to its
// daily note, then pull, stage, commit, and push. A failed append never
// reaches the syncer; a failed sync step leaves the repository in the
// intermediate state the step produced, with no rollback of the append.
type Processor struct {
	journal *journal.Journal
	syncer  gitsync.Syncer
	tz      *time.Location
}

// NewProcessor creates a Processor writing in the given local timezone.
func NewProcessor(j *journal.Journal, syncer gitsync.Syncer, tz *time.Location) *Processor {
	return &Processor{journal: j, syncer: syncer, tz: tz}
}

// Process handles one message end to end.
func (p *Processor) Process(ctx context.Context, msg models.Message) Outcome {
	local := msg.SentAt.In(p.tz)

	rel, created, err := p.journal.Append(local, msg.Sender, msg.Text)
	if err != nil {
		return Outcome{NotePath: rel, Stage: StageAppend, Err: err}
	}
	out := Outcome{NotePath: rel, Created: created}

	steps := []struct {
		stage PipelineStage
		run   func() error
	}{
		{StagePull, func() error { return p.syncer.Pull(ctx) }},
		{StageStage, func() error { return p.syncer.Stage(ctx, rel) }},
		{StageCommit, func() error { return p.syncer.Commit(ctx, commitMessage(local)) }},
		{StagePush, func() error { return p.syncer.Push(ctx) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			out.Stage = s.stage
			out.Err = err
			return out
		}
	}
	out.Stage = StageDone
	return out
}

// LogOutcome writes one structured record for a processed message.
func LogOutcome(logger *slog.Logger, msg models.Message, out Outcome) {
	if out.Err != nil {
		logger.Error("message pipeline failed",
			slog.String("note", out.NotePath),
			slog.String("stage", string(out.Stage)),
			slog.String("error", out.Err.Error()))
		return
	}
	logger.Info("note updated",
		slog.String("note", out.NotePath),
		slog.Bool("created", out.Created),
		slog.String("sender", msg.Sender))
}

func commitMessage(ts time.Time) string {
	return fmt.Sprintf("note: telegram %s", ts.Format("2006-01-02 15:04"))
}
