// Package themes loads theme definitions and serves them to the engine.
package themes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"liveeditor/internal/domain"
)

var fileNamePattern = regexp.MustCompile(`^theme(\d+)\.(json|ya?ml)$`)

// Catalog is a thread-safe in-memory set of theme definitions.
type Catalog struct {
	mu     sync.RWMutex
	themes map[int]*domain.ThemeDefinition
}

func NewCatalog(defs ...*domain.ThemeDefinition) *Catalog {
	c := &Catalog{themes: make(map[int]*domain.ThemeDefinition)}
	for _, d := range defs {
		c.Put(d)
	}
	return c
}

// Definition implements domain.ThemeSource.
func (c *Catalog) Definition(number int) (*domain.ThemeDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.themes[number]
	if !ok {
		return nil, fmt.Errorf("theme %d: %w", number, domain.ErrUnknownTheme)
	}
	return d, nil
}

func (c *Catalog) Put(def *domain.ThemeDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themes[def.Number] = def
}

// Numbers lists the loaded theme numbers in ascending order.
func (c *Catalog) Numbers() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, 0, len(c.themes))
	for n := range c.themes {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// LoadDir parses every theme<N>.json|yaml|yml file in dir into the catalog.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read themes dir: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !IsThemeFile(e.Name()) {
			continue
		}
		def, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		c.Put(def)
		loaded++
	}
	return loaded, nil
}

// IsThemeFile reports whether name follows the theme<N>.ext convention.
func IsThemeFile(name string) bool {
	return fileNamePattern.MatchString(name)
}

// LoadFile parses one theme definition. YAML files are converted to JSON
// first so component payloads decode through the same typed path.
func LoadFile(path string) (*domain.ThemeDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}
	name := filepath.Base(path)
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("theme file %s: name must be theme<N>.json|yaml", name)
	}

	if strings.HasPrefix(m[2], "y") {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", name, err)
		}
	}

	def := &domain.ThemeDefinition{}
	if err := json.Unmarshal(raw, def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if def.Number == 0 {
		def.Number, _ = strconv.Atoi(m[1])
	}
	return def, nil
}

var _ domain.ThemeSource = (*Catalog)(nil)
