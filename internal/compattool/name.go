// Package compattool decides which compatibility tool (a Proton build or a
// similar runtime) applies to an application and finds it on disk.
package compattool

import (
	"errors"
	"strings"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/hadron-dev/hadron/internal/vdf"
)

// Autodetect is returned by ResolveName when the client explicitly maps an
// app to an empty tool name, i.e. "let the client pick its default". It is
// distinct from any caller fallback.
const Autodetect = "@default"

// DefaultFallback is the tool used when the client has no opinion at all.
const DefaultFallback = "proton_experimental"

// ClientDefaultKey is the mapping entry the client uses for its global
// default tool.
const ClientDefaultKey = "0"

var mappingPath = []string{"InstallConfigStore", "Software", "Valve", "Steam", "CompatToolMapping"}

// ConfigPath is the client's global configuration file.
func ConfigPath(clientRoot string) string {
	return clientfs.Join(clientRoot, "config", "config.vdf")
}

// LoadClientConfig parses config.vdf. A client that never wrote one has no
// overrides, so a missing file yields an empty tree.
func LoadClientConfig(fsys clientfs.FS, clientRoot string) (*vdf.Value, error) {
	cfg, err := vdf.ParseFile(fsys, ConfigPath(clientRoot))
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			return vdf.NewNode(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Mapping returns the CompatToolMapping node, or nil.
func Mapping(cfg *vdf.Value) *vdf.Value {
	return cfg.Lookup(mappingPath...)
}

// lookup reports the tool name mapped to appID and whether an entry exists.
func lookup(cfg *vdf.Value, appID string) (string, bool) {
	entry := Mapping(cfg).Get(appID)
	if entry == nil {
		return "", false
	}
	if entry.IsLeaf() {
		return entry.String(), true
	}
	name, _ := entry.LeafAt("name")
	return name, true
}

// ResolveName applies the override mapping: no entry returns fallback, an
// empty name returns Autodetect, anything else is returned verbatim.
func ResolveName(cfg *vdf.Value, appID, fallback string) string {
	name, ok := lookup(cfg, strings.TrimSpace(appID))
	if !ok {
		return fallback
	}
	if strings.TrimSpace(name) == "" {
		return Autodetect
	}
	return name
}

// DefaultName returns the client-wide default tool, if one is set.
func DefaultName(cfg *vdf.Value) (string, bool) {
	name, ok := lookup(cfg, ClientDefaultKey)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}
