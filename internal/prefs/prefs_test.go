package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p != Default() {
		t.Fatalf("Load = %+v, want %+v", p, Default())
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "leaddesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "theme = \"Slate\"\nstart_view = \"todos\"\nhint_dismissed = true\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.StartView != "todos" {
		t.Fatalf("StartView = %q, want %q", p.StartView, "todos")
	}
	if !p.HintDismissed {
		t.Fatalf("HintDismissed = false, want true")
	}
}

func TestLoad_NormalizesValues(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTheme string
		wantView  string
	}{
		{"empty theme", "theme = \"\"\n", defaultTheme, defaultStartView},
		{"unknown view", "start_view = \"kanban\"\n", defaultTheme, defaultStartView},
		{"view case", "start_view = \" Calendar \"\n", defaultTheme, "calendar"},
		{"invalid toml", "not valid toml {{{\n", defaultTheme, defaultStartView},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Load(writePrefs(t, tt.body))
			if p.Theme != tt.wantTheme {
				t.Fatalf("Theme = %q, want %q", p.Theme, tt.wantTheme)
			}
			if p.StartView != tt.wantView {
				t.Fatalf("StartView = %q, want %q", p.StartView, tt.wantView)
			}
		})
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	want := Prefs{Theme: "Kanagawa", StartView: "activity", HintDismissed: true}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := Load(path); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("prefs dir holds %d entries, want only prefs.toml", len(entries))
	}
}

func TestUpdate_PreservesOtherFields(t *testing.T) {
	path := writePrefs(t, "theme = \"Slate\"\nstart_view = \"todos\"\n")

	if err := Update(path, func(p *Prefs) { p.HintDismissed = true }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got := Load(path)
	if got.Theme != "Slate" || got.StartView != "todos" || !got.HintDismissed {
		t.Fatalf("Load = %+v", got)
	}
}
