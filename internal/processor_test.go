package internal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/feldrik/jotbot/internal/journal"
	"github.com/feldrik/jotbot/internal/models"
	"github.com/feldrik/jotbot/internal/storage"
	"github.com/feldrik/jotbot/internal/testutil"
)

// fakeSyncer records sync calls and fails at a chosen step.
type fakeSyncer struct {
	calls  []string
	failAt string
	staged []string
	msgs   []string
}

func (f *fakeSyncer) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failAt == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeSyncer) Pull(context.Context) error { return f.step("pull") }

func (f *fakeSyncer) Stage(_ context.Context, path string) error {
	f.staged = append(f.staged, path)
	return f.step("stage")
}

func (f *fakeSyncer) Commit(_ context.Context, message string) error {
	f.msgs = append(f.msgs, message)
	return f.step("commit")
}

func (f *fakeSyncer) Push(context.Context) error { return f.step("push") }

// failingStore rejects every operation.
type failingStore struct{}

func (failingStore) Read(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingStore) Write(string, []byte) error  { return errors.New("disk on fire") }
func (failingStore) Append(string, []byte) error { return errors.New("disk on fire") }

func testMessage() models.Message {
	return models.Message{
		Sender: "Alice",
		SentAt: time.Date(2024, 3, 5, 13, 32, 0, 0, time.UTC),
		Text:   "Bought milk",
	}
}

func newProcessor(t *testing.T, store storage.Provider, syncer *fakeSyncer) *Processor {
	t.Helper()
	j := journal.New(store, "journal", journal.LayoutNested, testutil.Templates(t))
	// UTC+1 puts the 13:32 UTC message at 14:32 local.
	return NewProcessor(j, syncer, time.FixedZone("UTC+1", 3600))
}

func TestProcessHappyPath(t *testing.T) {
	_, store := testutil.TestRepo(t)
	syncer := &fakeSyncer{}
	p := newProcessor(t, store, syncer)

	out := p.Process(context.Background(), testMessage())
	if !out.OK() || out.Stage != StageDone {
		t.Fatalf("outcome = %+v", out)
	}
	if !out.Created {
		t.Error("first message of the day should initialize the note")
	}

	wantCalls := []string{"pull", "stage", "commit", "push"}
	if strings.Join(syncer.calls, ",") != strings.Join(wantCalls, ",") {
		t.Errorf("sync calls = %v, want %v", syncer.calls, wantCalls)
	}
	if len(syncer.staged) != 1 || !strings.HasSuffix(syncer.staged[0], "note.md") {
		t.Errorf("staged = %v", syncer.staged)
	}
	if len(syncer.msgs) != 1 || syncer.msgs[0] != "note: telegram 2024-03-05 14:32" {
		t.Errorf("commit messages = %v", syncer.msgs)
	}

	note, err := store.Read(out.NotePath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(note), "## 14:32 telegram update\n\nBought milk") {
		t.Errorf("note content = %q", note)
	}
}

func TestProcessWriteFailureSkipsSync(t *testing.T) {
	syncer := &fakeSyncer{}
	p := newProcessor(t, failingStore{}, syncer)

	out := p.Process(context.Background(), testMessage())
	if out.OK() {
		t.Fatal("expected failure outcome")
	}
	if out.Stage != StageAppend {
		t.Errorf("stage = %q, want %q", out.Stage, StageAppend)
	}
	if len(syncer.calls) != 0 {
		t.Errorf("syncer invoked despite write failure: %v", syncer.calls)
	}
}

func TestProcessPushFailureKeepsAppend(t *testing.T) {
	_, store := testutil.TestRepo(t)
	syncer := &fakeSyncer{failAt: "push"}
	p := newProcessor(t, store, syncer)

	out := p.Process(context.Background(), testMessage())
	if out.OK() {
		t.Fatal("expected failure outcome")
	}
	if out.Stage != StagePush {
		t.Errorf("stage = %q, want %q", out.Stage, StagePush)
	}
	// No rollback: the append and the earlier sync steps stand.
	if _, err := store.Read(out.NotePath); err != nil {
		t.Errorf("note should exist after push failure: %v", err)
	}
	want := []string{"pull", "stage", "commit", "push"}
	if strings.Join(syncer.calls, ",") != strings.Join(want, ",") {
		t.Errorf("sync calls = %v, want %v", syncer.calls, want)
	}
}

func TestProcessPullFailureStopsPipeline(t *testing.T) {
	_, store := testutil.TestRepo(t)
	syncer := &fakeSyncer{failAt: "pull"}
	p := newProcessor(t, store, syncer)

	out := p.Process(context.Background(), testMessage())
	if out.Stage != StagePull {
		t.Errorf("stage = %q, want %q", out.Stage, StagePull)
	}
	if strings.Join(syncer.calls, ",") != "pull" {
		t.Errorf("sync calls = %v, want pull only", syncer.calls)
	}
}
