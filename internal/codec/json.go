package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"graphedit/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a graph description from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.GraphData, error) {
	var g domain.GraphData
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&g); err != nil {
		return nil, malformed("JSON", err)
	}
	return &g, nil
}

// Export writes a graph description as indented JSON
func (c *JSONCodec) Export(g *domain.GraphData, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
