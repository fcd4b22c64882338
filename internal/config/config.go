// Package config loads dhash driver settings from defaults, an optional
// YAML or JSON file, DHASH_ environment variables and command line flags, in
// increasing order of priority.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/theflywheel/dhash"
)

const EnvPrefix = "DHASH_"

// Config holds the table policy and the random workload settings.
type Config struct {
	GrowAt      int `koanf:"grow-at"`
	ShrinkBelow int `koanf:"shrink-below"`
	MinBaseSize int `koanf:"min-base-size"`

	Words       int     `koanf:"words"`
	MinKeyLen   int     `koanf:"min-key-len"`
	MaxKeyLen   int     `koanf:"max-key-len"`
	MinValueLen int     `koanf:"min-value-len"`
	MaxValueLen int     `koanf:"max-value-len"`
	DeleteRatio float64 `koanf:"delete-ratio"`
	Seed        string  `koanf:"seed"`

	// MemoryLimit caps table memory in bytes. Zero means no limit.
	MemoryLimit int64 `koanf:"memory-limit"`
}

// Default returns the settings of the classic run: 2000 words with keys of
// 12 to 50 letters and values of 10 to 100.
func Default() Config {
	p := dhash.DefaultPolicy()
	return Config{
		GrowAt:      p.GrowAt,
		ShrinkBelow: p.ShrinkBelow,
		MinBaseSize: p.MinBaseSize,
		Words:       2000,
		MinKeyLen:   12,
		MaxKeyLen:   50,
		MinValueLen: 10,
		MaxValueLen: 100,
	}
}

// Policy returns the table resize policy described by c.
func (c Config) Policy() dhash.Policy {
	return dhash.Policy{
		GrowAt:      c.GrowAt,
		ShrinkBelow: c.ShrinkBelow,
		MinBaseSize: c.MinBaseSize,
	}
}

// Validate checks the policy and the workload settings, reporting every
// problem found.
func (c Config) Validate() error {
	var result *multierror.Error
	if err := c.Policy().Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Words < 0 {
		result = multierror.Append(result, fmt.Errorf("words must not be negative, got %d", c.Words))
	}
	if c.MinKeyLen < 0 || c.MaxKeyLen < c.MinKeyLen {
		result = multierror.Append(result, fmt.Errorf("key length range [%d, %d] is invalid", c.MinKeyLen, c.MaxKeyLen))
	}
	if c.MinValueLen < 0 || c.MaxValueLen < c.MinValueLen {
		result = multierror.Append(result, fmt.Errorf("value length range [%d, %d] is invalid", c.MinValueLen, c.MaxValueLen))
	}
	if c.DeleteRatio < 0 || c.DeleteRatio > 1 {
		result = multierror.Append(result, fmt.Errorf("delete-ratio must be in [0, 1], got %g", c.DeleteRatio))
	}
	if c.MemoryLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("memory-limit must not be negative, got %d", c.MemoryLimit))
	}
	return result.ErrorOrNil()
}

// Load builds a Config from the defaults, the file at path if path is not
// empty, the environment and finally overrides, which are keyed like the
// file (e.g. "grow-at").
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return Config{}, fmt.Errorf("error loading environment variables: %w", err)
	}

	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return Config{}, fmt.Errorf("error applying %s: %w", key, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	ext := filepath.Ext(path)

	var parser koanf.Parser
	switch ext {
	case ".json":
		parser = json.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		// files without an extension may still be JSON
		if ext == "" {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return fmt.Errorf("config file must be JSON or YAML: %w", err)
			}
			return nil
		}
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

// loadEnv maps DHASH_GROW_AT to grow-at and so on. DHASH_CONFIG names the
// file itself and is skipped.
func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "-"))
		if name == "config" {
			return "", nil
		}
		return name, value
	}), nil)
}
