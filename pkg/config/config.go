// Package config loads ezmatch settings with koanf, layered in increasing
// precedence: embedded defaults, the user TOML file, then EZMATCH_*
// environment variables.
package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

const envPrefix = "EZMATCH_"

// Config holds user-tunable settings.
type Config struct {
	// MatchDir is the espanso match directory; empty means auto-detect.
	MatchDir string `koanf:"match_dir" toml:"match_dir"`

	// Plain forces the degraded structural backend.
	Plain bool `koanf:"plain" toml:"plain"`

	Classifier ClassifierConfig `koanf:"classifier" toml:"classifier"`
}

// ClassifierConfig is the allow-list surface for the entry classifier.
type ClassifierConfig struct {
	// BenignFields are extra scalar fields tolerated on a simple match.
	BenignFields []string `koanf:"benign_fields" toml:"benign_fields"`
}

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load builds the effective configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file, when present
	userFile := paths.ConfigFile()
	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", userFile)
		}
	}

	// 3. Environment overrides for top-level keys: EZMATCH_MATCH_DIR,
	// EZMATCH_PLAIN. (EZMATCH_MATCH_DIR is also honored directly by
	// pkg/paths for callers bypassing config.)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}
	return &cfg, nil
}

// Save persists cfg to the user config file, creating its directory on
// demand. Mirrors the original tool's remembered preferences (match
// folder and friends).
func Save(cfg *Config) error {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "failed to encode configuration")
	}

	userFile := paths.ConfigFile()
	if err := os.MkdirAll(filepath.Dir(userFile), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to create %s", filepath.Dir(userFile))
	}
	if err := os.WriteFile(userFile, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to write %s", userFile)
	}
	return nil
}
