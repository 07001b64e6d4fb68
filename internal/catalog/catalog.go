// Package catalog describes the agents the editor knows about: the input
// and output ports drawn on their nodes and the params a new node starts
// with. Built-in profiles are embedded; extra profiles may be loaded from
// a directory of TOML files and override built-ins by name.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed agents/*.toml
var builtinFS embed.FS

// DefaultAgent is the agent given to nodes added without one
const DefaultAgent = "echoAgent"

// Profile describes one agent
type Profile struct {
	Name        string         `toml:"name" json:"name"`
	Category    string         `toml:"category" json:"category"`
	Description string         `toml:"description" json:"description"`
	Inputs      []string       `toml:"inputs" json:"inputs"`
	Outputs     []string       `toml:"outputs" json:"outputs"`
	Params      map[string]any `toml:"params" json:"params,omitempty"`
}

type profileFile struct {
	Agents []Profile `toml:"agents"`
}

// Catalog holds agent profiles keyed by name
type Catalog struct {
	profiles     []Profile
	byName       map[string]int
	defaultAgent string
}

// New creates a catalog from a list of profiles. Later profiles replace
// earlier ones with the same name.
func New(profiles []Profile) *Catalog {
	c := &Catalog{
		byName:       make(map[string]int, len(profiles)),
		defaultAgent: DefaultAgent,
	}
	for _, p := range profiles {
		if i, ok := c.byName[p.Name]; ok {
			c.profiles[i] = p
			continue
		}
		c.byName[p.Name] = len(c.profiles)
		c.profiles = append(c.profiles, p)
	}
	return c
}

// Builtin loads the embedded profiles
func Builtin() (*Catalog, error) {
	profiles, err := loadFS(builtinFS, "agents")
	if err != nil {
		return nil, err
	}
	return New(profiles), nil
}

// Load returns the built-in profiles merged with every *.toml file in dir.
// An empty or missing dir yields the built-ins alone.
func Load(dir string) (*Catalog, error) {
	profiles, err := loadFS(builtinFS, "agents")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return New(profiles), nil
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return New(profiles), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		var pf profileFile
		if _, err := toml.DecodeFile(filepath.Join(dir, entry.Name()), &pf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		profiles = append(profiles, pf.Agents...)
	}
	return New(profiles), nil
}

func loadFS(fs embed.FS, dir string) ([]Profile, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}

	var all []Profile
	for _, entry := range entries {
		data, err := fs.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var pf profileFile
		if err := toml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		all = append(all, pf.Agents...)
	}
	return all, nil
}

// SetDefault changes the agent given to new nodes
func (c *Catalog) SetDefault(agent string) {
	if agent != "" {
		c.defaultAgent = agent
	}
}

// Default returns the agent given to new nodes
func (c *Catalog) Default() string {
	return c.defaultAgent
}

// Lookup returns the profile for agent
func (c *Catalog) Lookup(agent string) (Profile, bool) {
	i, ok := c.byName[agent]
	if !ok {
		return Profile{}, false
	}
	return c.profiles[i], true
}

// All returns every profile in load order
func (c *Catalog) All() []Profile {
	return c.profiles
}

// Categories returns the sorted set of profile categories
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range c.profiles {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats
}
