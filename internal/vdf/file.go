package vdf

import (
	"errors"

	"github.com/hadron-dev/hadron/internal/clientfs"
)

// ParseFile reads and parses one document. Missing files surface as the
// capability's not-found error; syntax errors are tagged with the path.
func ParseFile(fsys clientfs.FS, path string) (*Value, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := Parse(data)
	if err != nil {
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			syntaxErr.File = path
		}
		return nil, err
	}
	return root, nil
}

// Document returns the single top-level node most client files wrap their
// content in ("libraryfolders", "AppState", ...), whatever it is called.
// It returns nil when the document has no node at the top.
func Document(root *Value) (string, *Value) {
	for _, e := range root.Entries() {
		if e.Value.IsNode() {
			return e.Key, e.Value
		}
	}
	return "", nil
}
