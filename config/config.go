// Package config loads gpubridged settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/translate"
)

// ErrInvalid is returned by Validate and Load for unusable settings.
var ErrInvalid = errors.New("config: invalid")

// ErrUnknownFormat is returned by Load for files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config holds daemon settings.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" toml:"listen"`

	// Path is the websocket endpoint path.
	Path string `yaml:"path" toml:"path"`

	// Backend names a registered backend. Empty selects the
	// highest-priority backend that initializes.
	Backend string `yaml:"backend" toml:"backend"`

	// Dialect overrides the enum vocabulary of the software backend.
	Dialect string `yaml:"dialect" toml:"dialect"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	TextCacheSize   int   `yaml:"text_cache_size" toml:"text_cache_size"`
	MaxMessageBytes int64 `yaml:"max_message_bytes" toml:"max_message_bytes"`

	// AllowedOrigins lists websocket origins. Empty allows same-origin
	// requests only; "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Listen:          "127.0.0.1:8765",
		Path:            "/ws",
		LogLevel:        "info",
		MaxMessageBytes: 64 << 20,
	}
}

// Load reads path into a copy of Default. The format is chosen by
// extension: .yaml, .yml or .toml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// Parse decodes data in the named format ("yaml", "yml" or "toml") over
// the defaults and validates the result.
func Parse(data []byte, format string) (Config, error) {
	c := Default()
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: yaml: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalid)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalid, c.Path)
	}
	if c.Backend != "" && !backend.IsRegistered(c.Backend) {
		return fmt.Errorf("%w: backend %q is not registered (have %v)", ErrInvalid, c.Backend, backend.Available())
	}
	if c.Dialect != "" {
		if _, ok := translate.Lookup(c.Dialect); !ok {
			return fmt.Errorf("%w: unknown dialect %q", ErrInvalid, c.Dialect)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.TextCacheSize < 0 {
		return fmt.Errorf("%w: text_cache_size %d is negative", ErrInvalid, c.TextCacheSize)
	}
	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("%w: max_message_bytes must be positive", ErrInvalid)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// AllowOrigin reports whether a websocket handshake from origin is accepted.
// host is the request's Host header.
func (c *Config) AllowOrigin(origin, host string) bool {
	if origin == "" {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	// Same origin: the origin's host part matches the request host.
	if i := strings.Index(origin, "://"); i >= 0 {
		return strings.EqualFold(origin[i+3:], host)
	}
	return false
}
