// Package codec reads and writes graph descriptions as JSON, YAML or HCL.
// Node and input order is preserved by every format.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"graphedit/internal/domain"
)

// Importer parses graph descriptions
type Importer interface {
	Parse(r io.Reader) (*domain.GraphData, error)
	Format() string
}

// Exporter writes graph descriptions
type Exporter interface {
	Export(g *domain.GraphData, w io.Writer) error
	Format() string
}

// Codec both parses and writes one format
type Codec interface {
	Importer
	Exporter
}

// ErrUnsupportedFormat is returned for an unknown format identifier
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats lists the supported format identifiers
var Formats = []string{"json", "yaml", "hcl"}

// ForFormat returns the codec for a format identifier
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "hcl":
		return NewHCLCodec(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: cannot infer format of %q", ErrUnsupportedFormat, path)
	}
	return ForFormat(ext)
}

// ContentType returns the MIME type for a format identifier
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "yaml", "yml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func malformed(format string, err error) error {
	return fmt.Errorf("%w: failed to parse %s: %w", domain.ErrMalformedData, format, err)
}
