package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/config"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/steam"
	"github.com/spf13/cobra"
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// childExit converts a non-zero exit of the launched process into an
// ExitError with the same code. A child killed by a signal exits with
// 128+signal, as a shell reports it. Other errors pass through.
func childExit(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return &ExitError{Code: code}
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return &ExitError{
			Code:    128 + int(status.Signal()),
			Message: fmt.Sprintf("hadron: launched process killed by signal: %v", status.Signal()),
		}
	}
	return &ExitError{Code: 1, Message: "hadron: launched process terminated abnormally: " + exitErr.Error()}
}

// session is the per-invocation state every command starts from.
type session struct {
	ctx  context.Context
	cfg  *config.Config
	home string
	fsys clientfs.FS
}

func newSession(cmd *cobra.Command) (*session, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:    configPath,
		Home:    home,
		Environ: config.Environ(),
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	if err := applyFlagOverrides(cmd, cfg, home); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)
	if cfg.Source != "" {
		logger.Debug("Loaded config file.", "path", cfg.Source)
	}

	return &session{ctx: ctx, cfg: cfg, home: home, fsys: clientfs.OS()}, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, home string) error {
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"steam-dir", &cfg.SteamDir},
		{"user-id", &cfg.UserID},
		{"compat-tool", &cfg.CompatTool},
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
	}
	for _, o := range overrides {
		value, err := OptionalStringFlag(cmd, o.flag)
		if err != nil {
			return err
		}
		if value != "" {
			*o.dst = value
		}
	}
	cfg.SteamDir = config.ExpandHome(cfg.SteamDir, home)
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return nil
}

// clientRoot returns the configured client root, or the first detected one.
func (s *session) clientRoot() (string, error) {
	if s.cfg.SteamDir == "" {
		return steam.Locate(s.fsys, s.home)
	}
	abs, err := filepath.Abs(s.cfg.SteamDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve steam directory %s: %w", s.cfg.SteamDir, err)
	}
	return abs, nil
}

func (s *session) openSteam() (*steam.Steam, error) {
	root, err := s.clientRoot()
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(s.ctx).Debug("Using Steam client root.", "path", root)
	return steam.New(s.fsys, root)
}
