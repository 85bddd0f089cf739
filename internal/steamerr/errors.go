// Package steamerr defines the typed failures the resolution engine reports.
// Every error carries enough context (which id, which file) to be shown to the
// user verbatim.
package steamerr

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrNotFound matches any NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an expected file or entry that is absent or that
// cannot be read.
type NotFoundError struct {
	What string // e.g. "app manifest", "installdir entry"
	Path string
	// Err is the underlying filesystem error, if any.
	Err error
}

func (e *NotFoundError) Error() string {
	msg := e.What + " not found"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist) {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// MalformedError reports an entry that exists but violates a structural rule.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Path, e.Reason)
}

// UnknownUserError reports a user id with no per-user data directory.
type UnknownUserError struct {
	UserID string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown steam user %q: no userdata directory", e.UserID)
}

// CompatToolNotFoundError reports a compatibility tool name that matched
// neither an installed tool package nor a bundled runtime.
type CompatToolNotFoundError struct {
	Name string
}

func (e *CompatToolNotFoundError) Error() string {
	return fmt.Sprintf("compatibility tool %q not found", e.Name)
}

// NotAClientRootError reports a directory that lacks the client's base layout.
type NotAClientRootError struct {
	Path string
}

func (e *NotAClientRootError) Error() string {
	return fmt.Sprintf("%s is not a steam client root (missing steamapps directory)", e.Path)
}

// NotFound is a shorthand constructor used by readers.
func NotFound(what, path string) error {
	return &NotFoundError{What: what, Path: path}
}

// Malformed is a shorthand constructor used by readers.
func Malformed(path, format string, args ...any) error {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
