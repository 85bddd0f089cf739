// Package command turns a resolution result into the shell invocation that
// starts an executable through Proton, and runs or prints it.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hadron-dev/hadron/internal/launchopts"
	"github.com/hadron-dev/hadron/internal/steam"
	"mvdan.cc/sh/v3/syntax"
)

// ProtonVerb makes Proton wait for the prefix's wineserver before and after
// running the executable, the way the client launches games.
const ProtonVerb = "waitforexitandrun"

// EnvVar is one environment assignment added to the child process.
type EnvVar struct {
	Key   string
	Value string
}

// ProtonCommand is the launch recipe for one executable.
type ProtonCommand struct {
	ProtonPath     string
	ExePath        string
	CompatDataPath string
	ClientPath     string
	AppID          string
	LaunchOptions  *string
}

// FromResult copies the fields the command needs out of a resolution.
func FromResult(r *steam.Result) *ProtonCommand {
	return &ProtonCommand{
		ProtonPath:     r.RuntimePath,
		ExePath:        r.ExecutablePath,
		CompatDataPath: r.CompatDataPath,
		ClientPath:     r.ClientRootPath,
		AppID:          r.AppID,
		LaunchOptions:  r.LaunchOptions,
	}
}

// Quote shell-quotes s for bash, leaving plain words untouched.
func Quote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return quoted
}

// Invocation is the bare Proton call without launch options.
func (c *ProtonCommand) Invocation() string {
	return Quote(c.ProtonPath) + " " + ProtonVerb + " " + Quote(c.ExePath)
}

// Build applies the launch options: every %command% is replaced by the
// invocation; options without the placeholder are put in front of it.
func (c *ProtonCommand) Build() string {
	invocation := c.Invocation()
	if c.LaunchOptions == nil || strings.TrimSpace(*c.LaunchOptions) == "" {
		return invocation
	}
	opts := *c.LaunchOptions
	if strings.Contains(opts, launchopts.CommandPlaceholder) {
		return strings.ReplaceAll(opts, launchopts.CommandPlaceholder, invocation)
	}
	return opts + " " + invocation
}

// Env returns the variables Proton reads to find its prefix and the client.
func (c *ProtonCommand) Env() []EnvVar {
	return []EnvVar{
		{Key: "STEAM_COMPAT_DATA_PATH", Value: c.CompatDataPath},
		{Key: "STEAM_COMPAT_CLIENT_INSTALL_PATH", Value: c.ClientPath},
		{Key: "SteamAppId", Value: c.AppID},
		{Key: "SteamGameId", Value: c.AppID},
	}
}

// Validate checks that the built command is parseable shell, so broken
// launch options fail before anything is spawned.
func (c *ProtonCommand) Validate() error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(c.Build()), ""); err != nil {
		return fmt.Errorf("launch options do not form a valid shell command: %w", err)
	}
	return nil
}

// PrintDryRun writes the environment and command that Execute would use.
func (c *ProtonCommand) PrintDryRun(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("Environment:\n")
	for _, v := range c.Env() {
		fmt.Fprintf(&sb, "  %s=%s\n", v.Key, v.Value)
	}
	sb.WriteString("\nCommand:\n")
	fmt.Fprintf(&sb, "  %s\n", c.Build())
	_, err := io.WriteString(w, sb.String())
	return err
}

// Execute runs the command through `sh -c` from the executable's directory
// and waits for it. A non-zero exit is returned wrapping *exec.ExitError.
func (c *ProtonCommand) Execute(ctx context.Context, stdout, stderr io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", c.Build())
	cmd.Env = os.Environ()
	for _, v := range c.Env() {
		cmd.Env = append(cmd.Env, v.Key+"="+v.Value)
	}
	if dir := filepath.Dir(c.ExePath); dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("command exited with status %d: %w", exitErr.ExitCode(), err)
		}
		return fmt.Errorf("failed to execute command: %w", err)
	}
	return nil
}
