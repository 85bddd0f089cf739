package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hadron-dev/hadron/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestCommand(opts *string) *ProtonCommand {
	return &ProtonCommand{
		ProtonPath:     "/steam/steamapps/common/Proton 9.0/proton",
		ExePath:        "/games/steamapps/common/Team Fortress 2/hl2.exe",
		CompatDataPath: "/games/steamapps/compatdata/440",
		ClientPath:     "/steam",
		AppID:          "440",
		LaunchOptions:  opts,
	}
}

func TestBuildWithoutLaunchOptions(t *testing.T) {
	want := "'/steam/steamapps/common/Proton 9.0/proton' waitforexitandrun '/games/steamapps/common/Team Fortress 2/hl2.exe'"
	assert.Equal(t, want, newTestCommand(nil).Build())
	assert.Equal(t, want, newTestCommand(strPtr("   ")).Build())
}

func TestBuildSubstitutesEveryPlaceholder(t *testing.T) {
	cmd := newTestCommand(strPtr("PROTON_LOG=1 %command% -novid; echo %command%"))
	invocation := cmd.Invocation()

	assert.Equal(t, "PROTON_LOG=1 "+invocation+" -novid; echo "+invocation, cmd.Build())
	assert.NotContains(t, cmd.Build(), "%command%")
}

func TestBuildPrefixesOptionsWithoutPlaceholder(t *testing.T) {
	cmd := newTestCommand(strPtr("gamemoderun"))
	assert.Equal(t, "gamemoderun "+cmd.Invocation(), cmd.Build())
}

func TestQuoteLeavesPlainWordsAlone(t *testing.T) {
	assert.Equal(t, "/usr/bin/proton", Quote("/usr/bin/proton"))
	assert.Equal(t, "'/a b/proton'", Quote("/a b/proton"))
}

func TestQuoteSurvivesShell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	for _, s := range []string{"it's here", `C:\Games\x.exe`, "$HOME `x`", "a\"b"} {
		out, err := exec.Command("sh", "-c", "printf %s "+Quote(s)).Output()
		require.NoError(t, err, "quoted %q as %s", s, Quote(s))
		assert.Equal(t, s, string(out))
	}
}

func TestEnv(t *testing.T) {
	assert.Equal(t, []EnvVar{
		{Key: "STEAM_COMPAT_DATA_PATH", Value: "/games/steamapps/compatdata/440"},
		{Key: "STEAM_COMPAT_CLIENT_INSTALL_PATH", Value: "/steam"},
		{Key: "SteamAppId", Value: "440"},
		{Key: "SteamGameId", Value: "440"},
	}, newTestCommand(nil).Env())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, newTestCommand(strPtr("DXVK_HUD=fps %command%")).Validate())
	assert.Error(t, newTestCommand(strPtr(`DXVK_HUD="fps %command%`)).Validate())
}

func TestPrintDryRun(t *testing.T) {
	var buf bytes.Buffer
	cmd := newTestCommand(strPtr("%command% -novid"))
	require.NoError(t, cmd.PrintDryRun(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Environment:\n  STEAM_COMPAT_DATA_PATH=/games/steamapps/compatdata/440\n"))
	assert.Contains(t, out, "  SteamGameId=440\n")
	assert.Contains(t, out, "\nCommand:\n  "+cmd.Build()+"\n")
}

func TestFromResult(t *testing.T) {
	opts := "-novid"
	cmd := FromResult(&steam.Result{
		AppID:          "440",
		ClientRootPath: "/steam",
		ExecutablePath: "/lib/steamapps/common/TF2/hl2.exe",
		RuntimePath:    "/steam/steamapps/common/Proton 9.0/proton",
		CompatDataPath: "/lib/steamapps/compatdata/440",
		LaunchOptions:  &opts,
	})
	assert.Equal(t, &ProtonCommand{
		ProtonPath:     "/steam/steamapps/common/Proton 9.0/proton",
		ExePath:        "/lib/steamapps/common/TF2/hl2.exe",
		CompatDataPath: "/lib/steamapps/compatdata/440",
		ClientPath:     "/steam",
		AppID:          "440",
		LaunchOptions:  &opts,
	}, cmd)
}

// writeFakeProton installs an executable shell script named proton in dir.
func writeFakeProton(t *testing.T, dir, body string) string {
	t.Helper()
	script := filepath.Join(dir, "proton")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755))
	return script
}

func TestExecuteRunsFromExecutableDirectory(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	gameDir := filepath.Join(root, "game")
	require.NoError(t, os.MkdirAll(gameDir, 0o755))
	record := filepath.Join(root, "record.txt")
	proton := writeFakeProton(t, root, `echo "$1|$2|$(pwd -P)|$STEAM_COMPAT_DATA_PATH|$SteamAppId|$EXTRA" > "`+record+`"`+"\n")

	cmd := &ProtonCommand{
		ProtonPath:     proton,
		ExePath:        filepath.Join(gameDir, "game.exe"),
		CompatDataPath: filepath.Join(root, "compatdata", "440"),
		ClientPath:     root,
		AppID:          "440",
		LaunchOptions:  strPtr("EXTRA=yes %command%"),
	}
	require.NoError(t, cmd.Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}))

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	gameDirReal, err := filepath.EvalSymlinks(gameDir)
	require.NoError(t, err)
	want := strings.Join([]string{
		"waitforexitandrun",
		filepath.Join(gameDir, "game.exe"),
		gameDirReal,
		filepath.Join(root, "compatdata", "440"),
		"440",
		"yes",
	}, "|")
	assert.Equal(t, want+"\n", string(data))
}

func TestExecuteReportsExitStatus(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	proton := writeFakeProton(t, root, "exit 3\n")

	cmd := &ProtonCommand{ProtonPath: proton, ExePath: filepath.Join(root, "game.exe"), AppID: "1"}
	err := cmd.Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected *exec.ExitError, got %v", err)
	assert.Equal(t, 3, exitErr.ExitCode())
}
