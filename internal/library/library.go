// Package library discovers the Steam library roots a client knows about
// and reads the per-application manifests inside them.
package library

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/hadron-dev/hadron/internal/vdf"
)

const (
	SteamAppsDir    = "steamapps"
	CommonDir       = "common"
	CompatDataDir   = "compatdata"
	LibraryListFile = "libraryfolders.vdf"
)

// SteamApps returns the storage subdirectory of a library root.
func SteamApps(root string) string {
	return clientfs.Join(root, SteamAppsDir)
}

// ListingPath returns where the client keeps its list of library roots.
func ListingPath(clientRoot string) string {
	return clientfs.Join(SteamApps(clientRoot), LibraryListFile)
}

// CheckClientRoot fails with NotAClientRoot when root lacks steamapps/.
func CheckClientRoot(fsys clientfs.FS, root string) error {
	if !fsys.IsDir(SteamApps(root)) {
		return &steamerr.NotAClientRootError{Path: root}
	}
	return nil
}

// Discover returns the library roots in discovery order. The client root is
// always first; listed roots follow in file order, minus duplicates and
// directories that no longer exist.
func Discover(ctx context.Context, fsys clientfs.FS, clientRoot string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	clientRoot = cleanRoot(clientRoot)
	if err := CheckClientRoot(fsys, clientRoot); err != nil {
		return nil, err
	}

	roots := []string{clientRoot}
	seen := map[string]bool{clientRoot: true}

	listed, err := ReadListing(fsys, clientRoot)
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			logger.Debug("No library listing, using client root only.", "path", ListingPath(clientRoot))
			return roots, nil
		}
		return nil, err
	}

	for _, root := range listed {
		root = cleanRoot(root)
		if seen[root] {
			continue
		}
		seen[root] = true
		if !fsys.IsDir(root) {
			logger.Debug("Skipping stale library root.", "path", root)
			continue
		}
		roots = append(roots, root)
	}

	logger.Debug("Library roots discovered.", "count", len(roots), "roots", roots)
	return roots, nil
}

// ReadListing returns the raw root paths named by libraryfolders.vdf, in
// file order, without any existence checks.
func ReadListing(fsys clientfs.FS, clientRoot string) ([]string, error) {
	doc, err := vdf.ParseFile(fsys, ListingPath(clientRoot))
	if err != nil {
		return nil, err
	}
	_, top := vdf.Document(doc)

	var out []string
	for _, e := range top.Entries() {
		switch {
		case e.Value.IsNode():
			for _, p := range e.Value.GetAll("path") {
				if p.IsLeaf() && strings.TrimSpace(p.String()) != "" {
					out = append(out, p.String())
				}
			}
		case isDigits(e.Key) && strings.TrimSpace(e.Value.String()) != "":
			// Older clients wrote `"1" "/path"` directly under the top node.
			out = append(out, e.Value.String())
		}
	}
	return out, nil
}

func cleanRoot(root string) string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(root)))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
