// Package paths centralizes filesystem locations: the espanso match
// directory being edited and ezmatch's own config file. XDG base
// directories are used throughout, which also yields the right
// platform-specific espanso location on macOS.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/ezmatch/ezmatch/pkg/errors"
)

// Environment variable names
const (
	// EnvMatchDir overrides the espanso match directory
	EnvMatchDir = "EZMATCH_MATCH_DIR"

	// EnvConfigDir overrides the ezmatch config directory
	EnvConfigDir = "EZMATCH_CONFIG_DIR"
)

const (
	appDirName     = "ezmatch"
	configFileName = "ezmatch.toml"

	espansoDirName = "espanso"
	matchDirName   = "match"
)

// MatchDir resolves the espanso match directory, in order: the explicit
// argument (from config or flag), EZMATCH_MATCH_DIR, then the platform
// default under the XDG config home (~/.config/espanso/match on Linux,
// ~/Library/Application Support/espanso/match on macOS). The directory
// must exist.
func MatchDir(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		dir = os.Getenv(EnvMatchDir)
	}
	if dir == "" {
		dir = filepath.Join(xdg.ConfigHome, espansoDirName, matchDirName)
	}

	dir = expandHome(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirNotFound, "match directory %s not found", dir)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrDirNotFound, "%s is not a directory", dir)
	}
	return dir, nil
}

// ConfigFile returns the path of the user configuration file, honoring
// EZMATCH_CONFIG_DIR.
func ConfigFile() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(expandHome(dir), configFileName)
	}
	return filepath.Join(xdg.ConfigHome, appDirName, configFileName)
}

// expandHome resolves a leading ~/ against the user home directory.
func expandHome(path string) string {
	if len(path) >= 2 && path[0] == '~' && path[1] == filepath.Separator {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
