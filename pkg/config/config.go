// Package config loads compiler settings from a YAML file
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/ralph-pl0/pkg/logger"
)

// ErrInvalid is returned by Validate for out-of-range settings
var ErrInvalid = errors.New("invalid configuration")

// Log holds logging settings
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds the settings of one compiler run
type Config struct {
	Registers int `yaml:"registers"`
	WordSize  int `yaml:"word_size"`
	Log       Log `yaml:"log"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Registers: 11,
		WordSize:  4,
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates a configuration file. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting
func (c Config) Validate() error {
	if c.Registers < 3 {
		return errors.Wrapf(ErrInvalid, "registers: %d, need at least 3", c.Registers)
	}
	if c.WordSize != 4 && c.WordSize != 8 {
		return errors.Wrapf(ErrInvalid, "word_size: %d, must be 4 or 8", c.WordSize)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalid, "log.level: %v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalid, "log.format: %q, must be text or json", c.Log.Format)
	}
	return nil
}

// LoggerConfig converts the log settings for logger.Init
func (c Config) LoggerConfig() (logger.Config, error) {
	lc := logger.DefaultConfig()
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return lc, err
	}
	lc.Level = level
	lc.Format = c.Log.Format
	return lc, nil
}
