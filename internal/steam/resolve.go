package steam

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/hadron-dev/hadron/internal/compattool"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/library"
	"github.com/hadron-dev/hadron/internal/steamerr"
)

// Request is what the caller knows before resolution.
type Request struct {
	AppID string
	// ExePath is relative to the install directory.
	ExePath string
	// SkipExecutable resolves everything but the executable, for callers
	// that only describe the app (`hadron info`). ExePath is ignored.
	SkipExecutable bool
	UserID  string
	// Fallback names the tool used when the client has no mapping for the
	// app. Empty means compattool.DefaultFallback.
	Fallback string
}

// Result is everything the command builder needs. It is only returned when
// every stage succeeded.
type Result struct {
	AppID          string  `json:"app_id" yaml:"app_id"`
	AppName        string  `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	ClientRootPath string  `json:"client_root_path" yaml:"client_root_path"`
	LibraryPath    string  `json:"library_path" yaml:"library_path"`
	InstallDir     string  `json:"install_dir" yaml:"install_dir"`
	ExecutablePath string  `json:"executable_path,omitempty" yaml:"executable_path,omitempty"`
	CompatToolName string  `json:"compat_tool_name" yaml:"compat_tool_name"`
	RuntimePath    string  `json:"runtime_path" yaml:"runtime_path"`
	CompatDataPath string  `json:"compat_data_path" yaml:"compat_data_path"`
	LaunchOptions  *string `json:"launch_options,omitempty" yaml:"launch_options,omitempty"`
}

// Resolve runs library lookup, manifest read, tool selection and lookup,
// prefix derivation and launch-option lookup in that order, stopping at the
// first failure.
func (s *Steam) Resolve(ctx context.Context, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	appID := strings.TrimSpace(req.AppID)
	if appID == "" {
		return nil, steamerr.Malformed("application id", "must not be empty")
	}
	fallback := req.Fallback
	if strings.TrimSpace(fallback) == "" {
		fallback = compattool.DefaultFallback
	}

	roots, err := s.Libraries(ctx)
	if err != nil {
		return nil, err
	}
	lib, err := library.FindOwningLibrary(ctx, s.fsys, roots, appID)
	if err != nil {
		return nil, err
	}
	manifest, err := s.Manifest(lib, appID)
	if err != nil {
		return nil, err
	}
	installDir := library.InstallPath(lib, manifest.InstallDir)
	logger.Debug("Install directory resolved.", "app_id", appID, "install_dir", installDir)

	var exePath string
	if !req.SkipExecutable {
		exePath, err = s.executablePath(installDir, req.ExePath)
		if err != nil {
			return nil, err
		}
	}

	toolName, err := s.CompatToolName(ctx, appID, fallback)
	if err != nil {
		return nil, err
	}
	runtimePath, err := compattool.ResolvePath(ctx, s.fsys, roots, toolName)
	if err != nil {
		return nil, err
	}

	opts, err := s.LaunchOptions(ctx, req.UserID, appID)
	if err != nil {
		return nil, err
	}

	return &Result{
		AppID:          appID,
		AppName:        manifest.Name,
		ClientRootPath: s.root,
		LibraryPath:    lib,
		InstallDir:     installDir,
		ExecutablePath: exePath,
		CompatToolName: toolName,
		RuntimePath:    runtimePath,
		CompatDataPath: s.CompatDataPath(lib, appID),
		LaunchOptions:  opts,
	}, nil
}

// executablePath joins rel onto installDir, refusing paths that leave it,
// and checks that a file is there.
func (s *Steam) executablePath(installDir, rel string) (string, error) {
	slashed := filepath.ToSlash(strings.TrimSpace(rel))
	if slashed == "" {
		return "", steamerr.Malformed("executable path", "must not be empty")
	}
	if path.IsAbs(slashed) {
		return "", steamerr.Malformed("executable path "+rel, "must be relative to the install directory")
	}
	clean := path.Clean(slashed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", steamerr.Malformed("executable path "+rel, "must stay inside the install directory")
	}

	full := path.Join(installDir, clean)
	info, err := s.fsys.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()):
		return "", steamerr.NotFound("executable "+rel+" (looking in "+installDir+")", full)
	case err != nil:
		return "", fmt.Errorf("check executable %s: %w", rel, err)
	}
	return full, nil
}
