// Package config loads converter settings from TOML files.
//
// Settings merge in precedence order: built-in defaults, then the config
// file, then command-line flags (applied by the CLI layer). The file is
// optional; every setting has a usable default.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowmaid/pkg/errors"
)

// FileName is the config file looked up in the working directory and the
// user config directory.
const FileName = "flowmaid.toml"

// Config holds the full converter configuration.
type Config struct {
	// Direction forces the layout direction ("TD" or "LR"). Empty selects
	// automatically from the diagram's geometry.
	Direction string `toml:"direction"`

	// Strict promotes recoverable conversion warnings to errors.
	Strict bool `toml:"strict"`

	// DropContainerEdges omits connectors whose endpoint is a container.
	DropContainerEdges bool `toml:"drop_container_edges"`

	// ReservedWords extends the set of output keywords that node
	// identifiers must avoid.
	ReservedWords []string `toml:"reserved_words"`

	// ShapeOverrides maps style tokens to bracket pairs, e.g.
	// hexagon = "{{}}".
	ShapeOverrides map[string]string `toml:"shape_overrides"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Enabled toggles caching. Defaults to true.
	Enabled bool `toml:"enabled"`

	// Dir is the file cache directory. Empty uses the user cache dir.
	Dir string `toml:"dir"`

	// RedisAddr switches the backend to Redis when non-empty.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Listen is the bind address, e.g. ":8080".
	Listen string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache:  CacheConfig{Enabled: true},
		Server: ServerConfig{Listen: ":8080"},
	}
}

// Load reads the config file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading config file %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault searches the working directory, then the user config
// directory, for a config file. A missing file yields the defaults.
func LoadDefault() (*Config, error) {
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "flowmaid", "config.toml"))
	}
	return paths
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := errors.ValidateDirection(c.Direction); err != nil {
		return err
	}
	for _, word := range c.ReservedWords {
		if err := errors.ValidateReservedWord(word); err != nil {
			return err
		}
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must not be negative")
	}
	return nil
}

// CacheDir resolves the file cache directory, falling back to the user
// cache dir when unset.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "flowmaid")
	}
	return ".flowmaid-cache"
}
