package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"graphedit/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a graph description from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.GraphData, error) {
	var g domain.GraphData
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&g); err != nil {
		return nil, malformed("YAML", err)
	}
	return &g, nil
}

// Export writes a graph description as YAML
func (c *YAMLCodec) Export(g *domain.GraphData, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
