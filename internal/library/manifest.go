package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/hadron-dev/hadron/internal/vdf"
)

// Manifest is the subset of appmanifest_<id>.acf the launcher needs.
type Manifest struct {
	AppID      string `json:"app_id"`
	Name       string `json:"name,omitempty"`
	InstallDir string `json:"install_dir"`
	StateFlags string `json:"state_flags,omitempty"`
}

// ManifestPath returns the manifest location for appID inside root.
func ManifestPath(root, appID string) string {
	return clientfs.Join(SteamApps(root), fmt.Sprintf("appmanifest_%s.acf", strings.TrimSpace(appID)))
}

// InstallPath joins a manifest's install directory onto the library.
func InstallPath(root, installDir string) string {
	return clientfs.Join(SteamApps(root), CommonDir, installDir)
}

// CompatDataPath is where the compatibility runtime keeps the app's prefix.
// It is derived, not checked: the runtime creates it on first launch.
func CompatDataPath(root, appID string) string {
	return clientfs.Join(SteamApps(root), CompatDataDir, strings.TrimSpace(appID))
}

// FindOwningLibrary returns the first root, in discovery order, that holds a
// manifest for appID. Manifest contents are not consulted.
func FindOwningLibrary(ctx context.Context, fsys clientfs.FS, roots []string, appID string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	appID = strings.TrimSpace(appID)
	for _, root := range roots {
		if fsys.Exists(ManifestPath(root, appID)) {
			logger.Debug("Found owning library.", "app_id", appID, "library", root)
			return root, nil
		}
	}
	return "", steamerr.NotFound("manifest for app "+appID, strings.Join(roots, ", "))
}

// ReadManifest parses the manifest for appID and validates installdir.
func ReadManifest(fsys clientfs.FS, root, appID string) (Manifest, error) {
	appID = strings.TrimSpace(appID)
	manifestPath := ManifestPath(root, appID)

	doc, err := vdf.ParseFile(fsys, manifestPath)
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			return Manifest{}, steamerr.NotFound("app manifest", manifestPath)
		}
		return Manifest{}, err
	}
	_, state := vdf.Document(doc)
	if state == nil {
		return Manifest{}, steamerr.Malformed(manifestPath, "no AppState section")
	}

	if declared, ok := state.LeafAt("appid"); ok && strings.TrimSpace(declared) != appID {
		return Manifest{}, steamerr.Malformed(manifestPath, "declares appid %q, expected %q", declared, appID)
	}

	installDir, ok := state.LeafAt("installdir")
	if !ok {
		return Manifest{}, steamerr.NotFound("installdir entry", manifestPath)
	}
	if err := validateInstallDir(installDir); err != nil {
		return Manifest{}, steamerr.Malformed(manifestPath, "installdir %q %s", installDir, err.Error())
	}

	name, _ := state.LeafAt("name")
	flags, _ := state.LeafAt("StateFlags")
	return Manifest{
		AppID:      appID,
		Name:       name,
		InstallDir: installDir,
		StateFlags: flags,
	}, nil
}

// ReadInstallDir returns only the install directory name.
func ReadInstallDir(fsys clientfs.FS, root, appID string) (string, error) {
	m, err := ReadManifest(fsys, root, appID)
	if err != nil {
		return "", err
	}
	return m.InstallDir, nil
}

func validateInstallDir(dir string) error {
	switch {
	case strings.TrimSpace(dir) == "":
		return errors.New("is empty")
	case dir == "." || dir == "..":
		return errors.New("is not a directory name")
	case strings.ContainsAny(dir, `/\`):
		return errors.New("contains a path separator")
	}
	return nil
}
