package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDirExplicit(t *testing.T) {
	dir := t.TempDir()

	got, err := MatchDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestMatchDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvMatchDir, dir)

	got, err := MatchDir("")
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestMatchDirExplicitWinsOverEnv(t *testing.T) {
	explicit := t.TempDir()
	t.Setenv(EnvMatchDir, t.TempDir())

	got, err := MatchDir(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestMatchDirMissing(t *testing.T) {
	_, err := MatchDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMatchDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.yml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := MatchDir(file)
	assert.Error(t, err)
}

func TestConfigFileHonorsOverride(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/ezmatch-test")
	assert.Equal(t, filepath.Join("/tmp/ezmatch-test", "ezmatch.toml"), ConfigFile())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "relative", expandHome("relative"))
}
