// Package clientfs is the read-only filesystem capability the resolvers use
// to look at a Steam client installation. Paths are absolute, slash
// separated host paths; the real filesystem and in-memory fixtures
// (testing/fstest.MapFS) are interchangeable behind the FS interface.
package clientfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hadron-dev/hadron/internal/steamerr"
)

// FS is the minimal set of operations the engine performs on client state.
type FS interface {
	// ReadFile returns the file's contents. A missing or unreadable file is
	// a *steamerr.NotFoundError wrapping the filesystem error.
	ReadFile(name string) ([]byte, error)
	// ReadDir lists a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)
	// Stat follows symlinks.
	Stat(name string) (fs.FileInfo, error)
	// Exists reports whether name resolves to anything.
	Exists(name string) bool
	// IsDir reports whether name resolves to a directory.
	IsDir(name string) bool
	// Glob matches a doublestar pattern relative to dir and returns absolute
	// paths in lexical order.
	Glob(dir, pattern string) ([]string, error)
}

type hostFS struct {
	root fs.FS
}

// OS returns an FS over the real filesystem.
func OS() FS {
	return &hostFS{root: os.DirFS("/")}
}

// FromFS wraps an fs.FS whose root stands for "/".
func FromFS(root fs.FS) FS {
	return &hostFS{root: root}
}

func toFSPath(name string) (string, error) {
	slashed := filepath.ToSlash(name)
	if !strings.HasPrefix(slashed, "/") {
		return "", fmt.Errorf("clientfs: path %q is not absolute", name)
	}
	clean := strings.TrimPrefix(path.Clean(slashed), "/")
	if clean == "" {
		clean = "."
	}
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("clientfs: invalid path %q", name)
	}
	return clean, nil
}

func wrapErr(name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &steamerr.NotFoundError{What: "file", Path: name, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &steamerr.NotFoundError{What: "readable file", Path: name, Err: err}
	}
	return fmt.Errorf("read %s: %w", name, err)
}

func (h *hostFS) ReadFile(name string) ([]byte, error) {
	p, err := toFSPath(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(h.root, p)
	if err != nil {
		return nil, wrapErr(name, err)
	}
	return data, nil
}

func (h *hostFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := toFSPath(name)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(h.root, p)
	if err != nil {
		return nil, wrapErr(name, err)
	}
	return entries, nil
}

func (h *hostFS) Stat(name string) (fs.FileInfo, error) {
	p, err := toFSPath(name)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(h.root, p)
	if err != nil {
		return nil, wrapErr(name, err)
	}
	return info, nil
}

func (h *hostFS) Exists(name string) bool {
	_, err := h.Stat(name)
	return err == nil
}

func (h *hostFS) IsDir(name string) bool {
	info, err := h.Stat(name)
	return err == nil && info.IsDir()
}

func (h *hostFS) Glob(dir, pattern string) ([]string, error) {
	p, err := toFSPath(dir)
	if err != nil {
		return nil, err
	}
	if !h.IsDir(dir) {
		return nil, nil
	}
	sub, err := fs.Sub(h.root, p)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	matches, err := doublestar.Glob(sub, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s/%s: %w", dir, pattern, err)
	}
	sort.Strings(matches)

	base := path.Clean(filepath.ToSlash(dir))
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, path.Join(base, match))
	}
	return out, nil
}

// Join joins host path elements with forward slashes.
func Join(elem ...string) string {
	return path.Join(elem...)
}
