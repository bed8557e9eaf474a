// Package config loads the runtime settings for the memodeck server,
// layering defaults, an optional YAML file, MEMODECK_* environment variables,
// and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "MEMODECK_"

// Config holds the runtime settings for the server.
type Config struct {
	Storage struct {
		// Backend selects the persistence adapter.
		Backend string `koanf:"backend" validate:"oneof=file sqlite"`
		// Path is the JSON file or SQLite database location.
		Path string `koanf:"path" validate:"required"`
	} `koanf:"storage"`

	Session struct {
		MaxNew    int `koanf:"max_new" validate:"gte=0"`
		MaxReview int `koanf:"max_review" validate:"gte=0"`
	} `koanf:"session"`

	Logging struct {
		Level string `koanf:"level" validate:"oneof=debug info warn error"`
	} `koanf:"logging"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	var cfg Config
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = "./memodeck.json"
	cfg.Session.MaxNew = 5
	cfg.Session.MaxReview = 20
	cfg.Logging.Level = "info"
	return cfg
}

// Load builds the effective configuration. filePath may be empty to skip the
// YAML layer; flags may be nil to skip the flag layer. Later layers override
// earlier ones.
func Load(filePath string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// MEMODECK_STORAGE_PATH -> storage.path, MEMODECK_SESSION_MAX_NEW ->
	// session.max_new: only the first underscore separates the section.
	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
