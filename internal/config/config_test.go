package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "hadron", FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(LoadOptions{Home: home, Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsXDGConfigFile(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	path := writeConfig(t, xdg, `
steam_dir   = "${home}/.steam/steam"
user_id     = "12345"
compat_tool = "${env.TOOL}"

log {
  level  = "debug"
  format = "json"
}
`)

	cfg, err := Load(LoadOptions{
		Home:    home,
		Environ: map[string]string{"XDG_CONFIG_HOME": xdg, "TOOL": "GE-Proton9-20"},
	})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		SteamDir:   filepath.Join(home, ".steam", "steam"),
		UserID:     "12345",
		CompatTool: "GE-Proton9-20",
		LogLevel:   "debug",
		LogFormat:  "json",
		Source:     path,
	}, cfg)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	home := t.TempDir()
	path := writeConfig(t, t.TempDir(), `
steam_dir = "/from/file"
user_id   = "1"
`)

	cfg, err := Load(LoadOptions{
		Path: path,
		Home: home,
		Environ: map[string]string{
			"HADRON_STEAM_DIR": "~/Steam",
			"HADRON_LOG_LEVEL": "INFO",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Steam"), cfg.SteamDir)
	assert.Equal(t, "1", cfg.UserID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultCompatTool, cfg.CompatTool)
}

func TestLoadErrors(t *testing.T) {
	home := t.TempDir()

	_, err := Load(LoadOptions{Path: filepath.Join(home, "missing.hcl"), Home: home})
	assert.Error(t, err, "an explicit config path must exist")

	bad := writeConfig(t, t.TempDir(), `steam_dir = `)
	_, err = Load(LoadOptions{Path: bad, Home: home})
	assert.ErrorContains(t, err, "failed to parse config file")

	unknown := writeConfig(t, t.TempDir(), `steam_path = "/x"`)
	_, err = Load(LoadOptions{Path: unknown, Home: home})
	assert.ErrorContains(t, err, "failed to decode config file")

	_, err = Load(LoadOptions{Home: home, Environ: map[string]string{"HADRON_LOG_FORMAT": "xml"}})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "/home/u/.config/hadron/config.hcl", DefaultPath("/home/u", nil))
	assert.Equal(t, "/xdg/hadron/config.hcl", DefaultPath("/home/u", map[string]string{"XDG_CONFIG_HOME": "/xdg"}))
}
