package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// GraphData is the portable graph description consumed by an execution
// engine. Node order is the declared order of the source document.
type GraphData struct {
	Version     float64           `json:"version,omitempty" yaml:"version,omitempty"`
	Nodes       Ordered[NodeData] `json:"nodes" yaml:"nodes"`
	Loop        *LoopSpec         `json:"loop,omitempty" yaml:"loop,omitempty"`
	Concurrency int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Metadata    *Metadata         `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NodeData is one entry of a graph description. A node with an Agent is
// computed; a node without one is static and carries Value.
type NodeData struct {
	Agent    string         `json:"agent,omitempty" yaml:"agent,omitempty"`
	Inputs   Ordered[any]   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Value    any            `json:"value,omitempty" yaml:"value,omitempty"`
	Update   string         `json:"update,omitempty" yaml:"update,omitempty"`
	IsResult bool           `json:"isResult,omitempty" yaml:"isResult,omitempty"`
	Graph    *GraphData     `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// Metadata is the editor's extension to a graph description. Positions are
// keyed by flat key path (outer/inner); NextID is the node ID allocation
// watermark of the editor that wrote the description.
type Metadata struct {
	Positions map[string]Position `json:"positions,omitempty" yaml:"positions,omitempty"`
	NextID    int                 `json:"nextId,omitempty" yaml:"nextId,omitempty"`
}

// UnmarshalJSON decodes a node, keeping integral numbers in Value and
// Params as int
func (n *NodeData) UnmarshalJSON(data []byte) error {
	type plain NodeData
	var p plain
	if err := decodeJSON(data, &p); err != nil {
		return err
	}
	return n.normalize(NodeData(p))
}

// UnmarshalYAML decodes a node. Mappings in Value and Params must have
// scalar keys; they are converted to string-keyed maps.
func (n *NodeData) UnmarshalYAML(value *yaml.Node) error {
	type plain NodeData
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if err := n.normalize(NodeData(p)); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

func (n *NodeData) normalize(nd NodeData) error {
	v, err := normalizeValue(nd.Value)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	nd.Value = v
	if nd.Params != nil {
		if _, err := normalizeValue(nd.Params); err != nil {
			return fmt.Errorf("params: %w", err)
		}
	}
	*n = nd
	return nil
}

// UnmarshalJSON decodes a loop setting, keeping an integral While as int
func (l *LoopSpec) UnmarshalJSON(data []byte) error {
	type plain LoopSpec
	var p plain
	if err := decodeJSON(data, &p); err != nil {
		return err
	}
	while, err := normalizeValue(p.While)
	if err != nil {
		return fmt.Errorf("while: %w", err)
	}
	p.While = while
	*l = LoopSpec(p)
	return nil
}

// UnmarshalYAML decodes a loop setting
func (l *LoopSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain LoopSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	while, err := normalizeValue(p.While)
	if err != nil {
		return fmt.Errorf("line %d: while: %w", value.Line, err)
	}
	p.While = while
	*l = LoopSpec(p)
	return nil
}

// NewGraphData creates an empty graph description
func NewGraphData() *GraphData {
	return &GraphData{Version: DefaultVersion}
}

// DefaultVersion is the description format version written by the editor
const DefaultVersion = 0.5

// PathSeparator joins nested node keys into a flat ID
const PathSeparator = "/"

// JoinPath returns the flat key path of key nested under parent
func JoinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + PathSeparator + key
}

// ValidKey reports whether s may be used as a node key. Keys may not be
// empty or contain characters that carry meaning in references or paths.
func ValidKey(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, ":./ \t\r\n")
}

// ParseRef splits a node reference ":key" or ":key.port". ok is false for
// any other value.
func ParseRef(s string) (key, port string, ok bool) {
	body, found := strings.CutPrefix(s, ":")
	if !found {
		return "", "", false
	}
	key, port, hasPort := strings.Cut(body, ".")
	if !ValidKey(key) || (hasPort && port == "") {
		return "", "", false
	}
	return key, port, true
}

// FormatRef renders a node reference
func FormatRef(key, port string) string {
	if port == "" {
		return ":" + key
	}
	return ":" + key + "." + port
}
