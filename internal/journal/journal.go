// Package journal maps timestamps to daily note files and appends
// rendered messages to them.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feldrik/jotbot/internal/storage"
)

// Layout selects how note paths are partitioned under the notes directory.
type Layout string

const (
	// LayoutNested produces <dir>/YYYY/MM/DD/note.md.
	LayoutNested Layout = "nested"
	// LayoutFlat produces <dir>/YYYY-MM-DD.md.
	LayoutFlat Layout = "flat"
)

// Journal writes daily notes into a storage provider.
type Journal struct {
	store  storage.Provider
	dir    string // notes directory relative to the repository root
	layout Layout
	tmpl   *Templates
}

// New creates a Journal writing under dir (relative to the provider root).
func New(store storage.Provider, dir string, layout Layout, tmpl *Templates) *Journal {
	return &Journal{store: store, dir: dir, layout: layout, tmpl: tmpl}
}

// NotePath returns the note path for ts, relative to the repository root.
// It is pure and depends only on the local date of ts.
func (j *Journal) NotePath(ts time.Time) string {
	if j.layout == LayoutFlat {
		return filepath.Join(j.dir, ts.Format("2006-01-02")+".md")
	}
	return filepath.Join(j.dir, ts.Format("2006"), ts.Format("01"), ts.Format("02"), "note.md")
}

// Append writes one message to the note for the local timestamp ts,
// initializing the note from the skeleton when it is absent or empty.
// It returns the note path (relative to the repository root) and whether
// the note was newly initialized.
func (j *Journal) Append(ts time.Time, sender, text string) (string, bool, error) {
	rel := j.NotePath(ts)

	existing, err := j.store.Read(rel)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return rel, false, fmt.Errorf("journal: check note: %w", err)
	}

	created := false
	if len(existing) == 0 {
		skeleton, err := j.tmpl.RenderSkeleton(SkeletonData{
			Date:    ts.Format("2006-01-02"),
			Weekday: ts.Format("Monday"),
		})
		if err != nil {
			return rel, false, err
		}
		if err := j.store.Write(rel, []byte(skeleton)); err != nil {
			return rel, false, err
		}
		created = true
	}

	fragment, err := j.tmpl.RenderFragment(FragmentData{
		Time:   ts.Format("15:04"),
		Sender: sender,
		Text:   strings.TrimSpace(text),
	})
	if err != nil {
		return rel, created, err
	}
	if err := j.store.Append(rel, []byte(fragment)); err != nil {
		return rel, created, err
	}
	return rel, created, nil
}
