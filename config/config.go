// Package config handles abcdump.toml project configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/wippyai/abcdump"
	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "abcdump.toml"

// Config is the abcdump.toml configuration.
type Config struct {
	Output     string             `toml:"output"`
	Projection abcdump.Projection `toml:"projection"`
	Include    []string           `toml:"include"`
	Exclude    []string           `toml:"exclude"`
	Log        Log                `toml:"log"`
	Workers    int                `toml:"workers"`
	CacheSize  int                `toml:"cache_size"`
	DebounceMS int                `toml:"debounce_ms"`
	Strict     bool               `toml:"strict"`

	// Dir is the directory containing the loaded file, empty for defaults.
	Dir string `toml:"-"`
}

// Log configures the zap logger built by the CLI.
type Log struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = "out"
	}
	if c.Projection == "" {
		c.Projection = abcdump.ProjectionBoth
	}
	if len(c.Include) == 0 {
		c.Include = []string{"**/*.swf", "**/*.swc", "**/*.abc"}
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 128
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = 200
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate rejects unknown projections, log formats and malformed globs.
func (c *Config) Validate() error {
	if !c.Projection.Valid() {
		return errors.InvalidInput(errors.PhaseLoad, "unknown projection "+string(c.Projection))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return errors.InvalidInput(errors.PhaseLoad, "unknown log format "+c.Log.Format)
	}
	for _, group := range [][]string{c.Include, c.Exclude} {
		for _, p := range group {
			if !doublestar.ValidatePattern(p) {
				return errors.InvalidInput(errors.PhaseLoad, "invalid glob pattern "+p)
			}
		}
	}
	return nil
}

// Mode returns the decoder mode selected by Strict.
func (c *Config) Mode() abc.Mode {
	if c.Strict {
		return abc.Strict
	}
	return abc.Lenient
}

// Debounce returns the watch-mode debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LoadFile parses the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("cannot read "+path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("parse error in %s", path).
			Cause(err).
			Build()
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Load("cannot resolve path "+path, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.WithPath(err, path)
	}
	return &c, nil
}

// Load parses abcdump.toml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find abcdump.toml and loads it.
// Defaults are returned when no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.Load("cannot resolve path "+startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
