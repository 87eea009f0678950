// Package prefs persists leaddesk user preferences in
// ~/.config/leaddesk/prefs.toml. Unreadable or malformed files degrade to
// defaults; only Save reports errors.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/leaddesk/internal/config"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme     string `toml:"theme"`
	StartView string `toml:"start_view"`
	// HintDismissed hides the first-run key hint in the footer.
	HintDismissed bool `toml:"hint_dismissed"`
}

const (
	defaultPrefsPath = "~/.config/leaddesk/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultStartView = "leads"
)

// StartViews lists the views the TUI can open on.
var StartViews = []string{"leads", "todos", "calendar", "activity"}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, StartView: defaultStartView}
}

// Load reads preferences from path. A blank path means DefaultPath.
func Load(path string) Prefs {
	resolved, err := resolve(path)
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default()
	}
	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default()
	}
	return p.normalized()
}

// Save writes preferences to path, replacing the file atomically.
func Save(path string, p Prefs) error {
	resolved, err := resolve(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// Update loads the stored prefs, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) error {
	p := Load(path)
	fn(&p)
	return Save(path, p)
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.StartView = strings.ToLower(strings.TrimSpace(p.StartView))
	if !slices.Contains(StartViews, p.StartView) {
		p.StartView = defaultStartView
	}
	return p
}

func resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
