package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func defaultTemplates(t *testing.T) *Templates {
	t.Helper()
	tmpl, err := LoadTemplates("", "")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	return tmpl
}

func TestRenderSkeletonDefault(t *testing.T) {
	tmpl := defaultTemplates(t)
	got, err := tmpl.RenderSkeleton(SkeletonData{Date: "2024-03-05", Weekday: "Tuesday"})
	if err != nil {
		t.Fatalf("RenderSkeleton: %v", err)
	}
	want := "---\ntags: []\n---\n\n# 2024-03-05, Tuesday\n"
	if got != want {
		t.Errorf("skeleton = %q, want %q", got, want)
	}
}

func TestRenderFragmentDefault(t *testing.T) {
	tmpl := defaultTemplates(t)
	got, err := tmpl.RenderFragment(FragmentData{Time: "14:32", Sender: "Alice", Text: "Bought milk"})
	if err != nil {
		t.Fatalf("RenderFragment: %v", err)
	}
	want := "\n## 14:32 telegram update\n\nBought milk\n"
	if got != want {
		t.Errorf("fragment = %q, want %q", got, want)
	}
}

func TestCustomTemplateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragment.tmpl")
	if err := os.WriteFile(path, []byte("[{{.Time}}] {{.Sender}}: {{.Text}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tmpl, err := LoadTemplates("", path)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	got, err := tmpl.RenderFragment(FragmentData{Time: "09:15", Sender: "Bob", Text: "hi"})
	if err != nil {
		t.Fatalf("RenderFragment: %v", err)
	}
	if got != "[09:15] Bob: hi\n" {
		t.Errorf("fragment = %q", got)
	}
}

func TestMissingCustomTemplateFallsBack(t *testing.T) {
	tmpl, err := LoadTemplates(filepath.Join(t.TempDir(), "absent.tmpl"), "")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	got, err := tmpl.RenderSkeleton(SkeletonData{Date: "2024-03-05", Weekday: "Tuesday"})
	if err != nil {
		t.Fatalf("RenderSkeleton: %v", err)
	}
	if !strings.Contains(got, "# 2024-03-05, Tuesday") {
		t.Errorf("expected default skeleton, got %q", got)
	}
}

func TestMalformedTemplateFailsAtLoad(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.tmpl")
	if err := os.WriteFile(broken, []byte("{{.Date"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates(broken, ""); err == nil {
		t.Error("expected parse error for malformed skeleton template")
	}

	unknown := filepath.Join(dir, "unknown.tmpl")
	if err := os.WriteFile(unknown, []byte("{{.Nope}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates("", unknown); err == nil {
		t.Error("expected error for unknown placeholder at load time")
	}
}
