// Package config loads pipeline configuration from TOML files.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// OptLevel is the optimization aggressiveness. Optimization
	// passes run at level 2 and above; levels 0 and 1 leave bodies
	// untouched.
	OptLevel int `toml:"opt_level"`
	// Passes names the passes to run, in order.
	Passes []string `toml:"passes"`
	// Debug enables verbose logging in the driver.
	Debug bool `toml:"debug"`
}

var defaultConfig = Config{
	OptLevel: 2,
	Passes:   []string{"copyprop", "nopelim"},
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := defaultConfig
	cfg.Passes = append([]string(nil), defaultConfig.Passes...)
	return cfg
}

// Load reads the configuration at path. Keys absent from the file
// keep their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := Default()
	meta, err := toml.DecodeReader(f, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) != 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, keys[0].String())
	}
	if cfg.OptLevel < 0 {
		return Config{}, fmt.Errorf("%s: opt_level must not be negative", path)
	}
	return cfg, nil
}
