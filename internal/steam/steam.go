// Package steam ties the resolvers together into the queries the launcher
// needs: which library holds an app, where it is installed, which
// compatibility tool runs it, where its prefix lives, and which launch
// options apply. Every query reads client state fresh; nothing is cached
// between calls and nothing is written.
package steam

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/compattool"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/launchopts"
	"github.com/hadron-dev/hadron/internal/library"
	"github.com/hadron-dev/hadron/internal/steamerr"
)

// Steam is a view of one client installation.
type Steam struct {
	fsys clientfs.FS
	root string
}

// New validates root as a client root.
func New(fsys clientfs.FS, root string) (*Steam, error) {
	root = path.Clean(filepath.ToSlash(strings.TrimSpace(root)))
	if err := library.CheckClientRoot(fsys, root); err != nil {
		return nil, err
	}
	return &Steam{fsys: fsys, root: root}, nil
}

// Candidates lists the places a client is commonly installed under home,
// in the order Locate tries them.
func Candidates(home string) []string {
	home = filepath.ToSlash(home)
	return []string{
		path.Join(home, ".steam", "steam"),
		path.Join(home, ".steam", "root"),
		path.Join(home, ".local", "share", "Steam"),
		path.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
	}
}

// Locate returns the first candidate under home with a client layout.
func Locate(fsys clientfs.FS, home string) (string, error) {
	candidates := Candidates(home)
	for _, candidate := range candidates {
		if library.CheckClientRoot(fsys, candidate) == nil {
			return candidate, nil
		}
	}
	return "", steamerr.NotFound("steam client root", strings.Join(candidates, ", "))
}

// RootPath returns the client root.
func (s *Steam) RootPath() string {
	return s.root
}

// Libraries returns the library roots in discovery order.
func (s *Steam) Libraries(ctx context.Context) ([]string, error) {
	return library.Discover(ctx, s.fsys, s.root)
}

// FindLibraryForApp returns the first library root holding appID.
func (s *Steam) FindLibraryForApp(ctx context.Context, appID string) (string, error) {
	roots, err := s.Libraries(ctx)
	if err != nil {
		return "", err
	}
	return library.FindOwningLibrary(ctx, s.fsys, roots, appID)
}

// Manifest reads appID's manifest from lib.
func (s *Steam) Manifest(lib, appID string) (library.Manifest, error) {
	return library.ReadManifest(s.fsys, lib, appID)
}

// InstallDir returns the absolute install directory of appID within lib.
func (s *Steam) InstallDir(lib, appID string) (string, error) {
	dir, err := library.ReadInstallDir(s.fsys, lib, appID)
	if err != nil {
		return "", err
	}
	return library.InstallPath(lib, dir), nil
}

// CompatToolName returns the tool the client maps appID to. An explicit
// "use the default" mapping resolves to the client-wide default tool when
// one is configured and to fallback otherwise.
func (s *Steam) CompatToolName(ctx context.Context, appID, fallback string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	cfg, err := compattool.LoadClientConfig(s.fsys, s.root)
	if err != nil {
		return "", err
	}

	name := compattool.ResolveName(cfg, appID, fallback)
	if name != compattool.Autodetect {
		logger.Debug("Compatibility tool selected.", "app_id", appID, "tool", name)
		return name, nil
	}
	if def, ok := compattool.DefaultName(cfg); ok {
		logger.Debug("App uses the client default compatibility tool.", "app_id", appID, "tool", def)
		return def, nil
	}
	logger.Debug("App uses the client default, none configured; using fallback.", "app_id", appID, "tool", fallback)
	return fallback, nil
}

// ProtonPath resolves a tool name to its executable.
func (s *Steam) ProtonPath(ctx context.Context, name string) (string, error) {
	roots, err := s.Libraries(ctx)
	if err != nil {
		return "", err
	}
	return compattool.ResolvePath(ctx, s.fsys, roots, name)
}

// CompatDataPath derives the prefix directory of appID within lib.
func (s *Steam) CompatDataPath(lib, appID string) string {
	return library.CompatDataPath(lib, appID)
}

// LaunchOptions returns the user's launch options for appID, or nil.
func (s *Steam) LaunchOptions(ctx context.Context, userID, appID string) (*string, error) {
	opts, ok, err := launchopts.Resolve(ctx, s.fsys, s.root, userID, appID)
	if err != nil || !ok {
		return nil, err
	}
	return &opts, nil
}

// Tools lists the installed compatibility tools across all libraries.
func (s *Steam) Tools(ctx context.Context) ([]compattool.Tool, error) {
	roots, err := s.Libraries(ctx)
	if err != nil {
		return nil, err
	}
	return compattool.List(ctx, s.fsys, roots)
}
