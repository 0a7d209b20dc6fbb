// Package testutil provides shared test helpers for setting up note
// repositories and templates.
package testutil

import (
	"testing"

	"github.com/feldrik/jotbot/internal/journal"
	"github.com/feldrik/jotbot/internal/storage"
)

// TestRepo creates a temporary repository root with a storage.Provider.
func TestRepo(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// Templates loads the built-in note templates.
func Templates(t *testing.T) *journal.Templates {
	t.Helper()
	tmpl, err := journal.LoadTemplates("", "")
	if err != nil {
		t.Fatal(err)
	}
	return tmpl
}
