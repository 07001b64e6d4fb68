// Package templates provides the built-in starter graphs
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"graphedit/internal/domain"
)

//go:embed graphs/*.yaml
var graphsFS embed.FS

// Template is a named starter graph
type Template struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Graph       *domain.GraphData `yaml:"graph" json:"graph"`
}

// Library holds templates by name
type Library struct {
	byName map[string]Template
}

// Load reads every embedded template
func Load() (*Library, error) {
	return loadFS(graphsFS, "graphs")
}

func loadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	lib := &Library{byName: make(map[string]Template, len(entries))}
	for _, entry := range entries {
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		if t.Name == "" || t.Graph == nil {
			return nil, fmt.Errorf("%s: template needs a name and a graph", entry.Name())
		}
		if _, dup := lib.byName[t.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate template %q", entry.Name(), t.Name)
		}
		lib.byName[t.Name] = t
	}
	return lib, nil
}

// Get returns the template with the given name
func (l *Library) Get(name string) (Template, bool) {
	t, ok := l.byName[name]
	return t, ok
}

// Names returns the template names in sorted order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every template sorted by name
func (l *Library) All() []Template {
	out := make([]Template, 0, len(l.byName))
	for _, name := range l.Names() {
		out = append(out, l.byName[name])
	}
	return out
}
