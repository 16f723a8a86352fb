// Package deck holds the theme catalogue players choose personal decks from.
package deck

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jason-s-yu/towerofsins/engine"
)

//go:embed themes.yaml
var builtinThemes []byte

type themeFile struct {
	Themes []engine.Theme `yaml:"themes"`
}

// Catalogue is a set of validated themes keyed by ID. It is safe for
// concurrent use and satisfies game.ThemeSource.
type Catalogue struct {
	mu     sync.RWMutex
	themes map[string]engine.Theme
}

// NewCatalogue returns a catalogue holding only the classic theme.
func NewCatalogue() *Catalogue {
	c := &Catalogue{themes: make(map[string]engine.Theme)}
	classic := engine.ClassicTheme()
	c.themes[classic.ID] = classic
	return c
}

// Default returns the classic theme plus the embedded built-ins.
func Default() (*Catalogue, error) {
	c := NewCatalogue()
	if err := c.Load(builtinThemes); err != nil {
		return nil, fmt.Errorf("built-in themes: %w", err)
	}
	return c, nil
}

// Parse decodes a YAML theme file and validates every theme in it.
func Parse(data []byte) ([]engine.Theme, error) {
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidTheme, err)
	}
	seen := make(map[string]bool, len(f.Themes))
	for _, t := range f.Themes {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", engine.ErrInvalidTheme, t.ID)
		}
		seen[t.ID] = true
	}
	return f.Themes, nil
}

// Load adds the themes in data, replacing any with the same ID. Nothing is
// added if any theme is invalid.
func (c *Catalogue) Load(data []byte) error {
	themes, err := Parse(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range themes {
		if _, ok := c.themes[t.ID]; ok {
			log.WithField("theme", t.ID).Warn("theme redefined")
		}
		c.themes[t.ID] = t
	}
	return nil
}

// LoadFile reads a YAML theme file from disk.
func (c *Catalogue) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading themes file: %w", err)
	}
	if err := c.Load(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.WithField("path", path).Info("loaded themes")
	return nil
}

// Theme looks up a theme by ID.
func (c *Catalogue) Theme(id string) (engine.Theme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.themes[id]
	return t, ok
}

// IDs lists the theme IDs in sorted order.
func (c *Catalogue) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.themes))
	for id := range c.themes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
