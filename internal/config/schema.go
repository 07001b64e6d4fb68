package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Editor   EditorConfig   `yaml:"editor" toml:"editor"`
	Catalog  CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Watch    WatchConfig    `yaml:"watch" toml:"watch"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr" validate:"required,hostname_port"`
	AllowedOrigins  []string `yaml:"allowed_origins,omitempty" toml:"allowed_origins,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DatabaseConfig holds saved-graph storage settings
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path" validate:"required"`
}

// EditorConfig holds edit store and drafting settings
type EditorConfig struct {
	HistoryLimit int     `yaml:"history_limit" toml:"history_limit" validate:"min=1"`
	SnapDistance float64 `yaml:"snap_distance" toml:"snap_distance" validate:"gt=0"`
	DefaultAgent string  `yaml:"default_agent,omitempty" toml:"default_agent,omitempty"`
}

// CatalogConfig points at extra agent profile files
type CatalogConfig struct {
	Dir string `yaml:"dir,omitempty" toml:"dir,omitempty"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json console"`
}

// WatchConfig names a description file reloaded whenever it changes
type WatchConfig struct {
	Path     string   `yaml:"path,omitempty" toml:"path,omitempty"`
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
