package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
)

// Built-in template content, used when no override file is configured or
// the configured file does not exist.
const (
	defaultSkeleton = "---\ntags: []\n---\n\n# {{.Date}}, {{.Weekday}}\n"
	defaultFragment = "\n## {{.Time}} telegram update\n\n{{.Text}}\n"
)

// SkeletonData holds the substitutions for a new note's initial content.
type SkeletonData struct {
	Date    string // local date, YYYY-MM-DD
	Weekday string // English weekday name
}

// FragmentData holds the substitutions for one appended message.
type FragmentData struct {
	Time   string // local time of day, HH:MM
	Sender string // author display name, may be empty
	Text   string // message body
}

// Templates renders note skeletons and message fragments.
type Templates struct {
	skeleton *template.Template
	fragment *template.Template
}

// LoadTemplates parses the skeleton and fragment templates. An empty path
// selects the built-in default; a configured path that does not exist
// falls back to the default as well. Parse and substitution failures are
// reported here so a malformed template aborts startup rather than a
// message.
func LoadTemplates(skeletonPath, fragmentPath string) (*Templates, error) {
	skeleton, err := parseTemplate("skeleton", skeletonPath, defaultSkeleton)
	if err != nil {
		return nil, err
	}
	fragment, err := parseTemplate("fragment", fragmentPath, defaultFragment)
	if err != nil {
		return nil, err
	}

	t := &Templates{skeleton: skeleton, fragment: fragment}

	// Trial renders surface unknown-placeholder errors at load time.
	if _, err := t.RenderSkeleton(SkeletonData{Date: "2006-01-02", Weekday: "Monday"}); err != nil {
		return nil, fmt.Errorf("journal: skeleton template: %w", err)
	}
	if _, err := t.RenderFragment(FragmentData{Time: "15:04", Sender: "sender", Text: "text"}); err != nil {
		return nil, fmt.Errorf("journal: fragment template: %w", err)
	}
	return t, nil
}

func parseTemplate(name, path, fallback string) (*template.Template, error) {
	text := fallback
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Keep the built-in default.
		case err != nil:
			return nil, fmt.Errorf("journal: read %s template %s: %w", name, path, err)
		default:
			text = string(data)
		}
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("journal: parse %s template: %w", name, err)
	}
	return tmpl, nil
}

// RenderSkeleton fills the skeleton template for a new note.
func (t *Templates) RenderSkeleton(d SkeletonData) (string, error) {
	var b strings.Builder
	if err := t.skeleton.Execute(&b, d); err != nil {
		return "", fmt.Errorf("journal: render skeleton: %w", err)
	}
	return b.String(), nil
}

// RenderFragment fills the fragment template for one message.
func (t *Templates) RenderFragment(d FragmentData) (string, error) {
	var b strings.Builder
	if err := t.fragment.Execute(&b, d); err != nil {
		return "", fmt.Errorf("journal: render fragment: %w", err)
	}
	return b.String(), nil
}
