// Package config reads the TOML configuration of the wallscene command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultMaxObjects matches the renderer's default capacity.
const DefaultMaxObjects = 1024

// Config is the command configuration. Zero sizes mean "use the scene's
// orthogonal projection".
type Config struct {
	Render Render `toml:"render"`
	Output Output `toml:"output"`
	Log    Log    `toml:"log"`
}

type Render struct {
	MaxObjects uint32 `toml:"max_objects"`
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	SPIRV      bool   `toml:"spirv"`
}

type Output struct {
	Path string `toml:"path"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Render: Render{MaxObjects: DefaultMaxObjects},
		Output: Output{Path: "frame.png"},
		Log:    Log{Level: "warn"},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Render.MaxObjects == 0 || c.Render.MaxObjects > 16384 {
		return fmt.Errorf("config: render.max_objects %d out of range [1, 16384]", c.Render.MaxObjects)
	}
	if (c.Render.Width == 0) != (c.Render.Height == 0) {
		return errors.New("config: render.width and render.height must be set together")
	}
	if c.Output.Path == "" {
		return errors.New("config: output.path is empty")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the level name to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return lvl, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
