package compattool

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/library"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/hadron-dev/hadron/internal/vdf"
)

const (
	ToolsDir         = "compatibilitytools.d"
	ToolDescriptor   = "compatibilitytool.vdf"
	ToolManifest     = "toolmanifest.vdf"
	defaultEntryFile = "proton"
)

type Kind string

const (
	KindCustom  Kind = "custom"
	KindBundled Kind = "bundled"
)

// Tool is one installed compatibility tool.
type Tool struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Dir         string `json:"dir"`
	Kind        Kind   `json:"kind"`
	Library     string `json:"library"`
}

// bundledDirs maps the client's internal tool names onto the directory the
// runtime is installed under in steamapps/common.
var bundledDirs = map[string]string{
	"proton_experimental":       "Proton - Experimental",
	"proton_hotfix":             "Proton Hotfix",
	"proton_63":                 "Proton 6.3",
	"proton_513":                "Proton 5.13",
	"proton_411":                "Proton 4.11",
	"proton_42":                 "Proton 4.2",
	"proton_316":                "Proton 3.16",
	"proton_37":                 "Proton 3.7",
	"steamlinuxruntime":         "SteamLinuxRuntime",
	"steamlinuxruntime_soldier": "SteamLinuxRuntime_soldier",
	"steamlinuxruntime_sniper":  "SteamLinuxRuntime_sniper",
}

var (
	majorOnlyName = regexp.MustCompile(`^proton_(\d{1,2})$`)
	majorOnlyDir  = regexp.MustCompile(`^Proton (\d{1,2})\.0$`)
)

// ResolvePath finds the executable of the named tool. Installed tool
// packages under each root's compatibilitytools.d are checked first, then
// runtimes the client installs into steamapps/common. Roots are searched in
// discovery order and the first match wins.
func ResolvePath(ctx context.Context, fsys clientfs.FS, roots []string, name string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" || name == Autodetect {
		return "", &steamerr.CompatToolNotFoundError{Name: name}
	}

	custom, err := customTools(ctx, fsys, roots)
	if err != nil {
		return "", err
	}
	for _, tool := range custom {
		if tool.Name == name || path.Base(tool.Dir) == name {
			logger.Debug("Matched installed compatibility tool.", "name", name, "dir", tool.Dir)
			return Executable(fsys, tool.Dir)
		}
	}

	for _, root := range roots {
		common := clientfs.Join(library.SteamApps(root), library.CommonDir)
		for _, dirName := range bundledCandidates(name) {
			dir := clientfs.Join(common, dirName)
			if fsys.IsDir(dir) {
				logger.Debug("Matched bundled compatibility tool.", "name", name, "dir", dir)
				return Executable(fsys, dir)
			}
		}
	}

	return "", &steamerr.CompatToolNotFoundError{Name: name}
}

// Executable returns the entry point of a tool directory. toolmanifest.vdf
// names it in its commandline (e.g. "/proton %verb%"); without a manifest
// the conventional "proton" script is assumed.
func Executable(fsys clientfs.FS, dir string) (string, error) {
	entry := defaultEntryFile

	manifestPath := clientfs.Join(dir, ToolManifest)
	doc, err := vdf.ParseFile(fsys, manifestPath)
	switch {
	case err == nil:
		if cmdline, ok := doc.LeafAt("manifest", "commandline"); ok {
			if fields := strings.Fields(cmdline); len(fields) > 0 {
				entry = strings.TrimPrefix(fields[0], "/")
			}
		}
	case errors.Is(err, steamerr.ErrNotFound):
		// no manifest: keep the default entry point
	default:
		return "", err
	}

	if entry == "" || strings.Contains(entry, "%") {
		return "", steamerr.Malformed(manifestPath, "commandline has no executable")
	}

	exe := clientfs.Join(dir, entry)
	if !fsys.Exists(exe) {
		return "", steamerr.NotFound("compatibility tool executable", exe)
	}
	return exe, nil
}

func bundledCandidates(name string) []string {
	var out []string
	if dir, ok := bundledDirs[name]; ok {
		out = append(out, dir)
	} else if m := majorOnlyName.FindStringSubmatch(name); m != nil {
		out = append(out, "Proton "+m[1]+".0")
	}
	if !strings.ContainsAny(name, `/\`) && name != "." && name != ".." {
		out = append(out, name)
	}
	return out
}

// customTools reads every compatibilitytool.vdf under each root's tools
// directory, in root order then directory order. Unreadable descriptors are
// skipped with a warning so one broken package does not hide the others.
func customTools(ctx context.Context, fsys clientfs.FS, roots []string) ([]Tool, error) {
	logger := ctxlog.FromContext(ctx)

	var tools []Tool
	for _, root := range roots {
		descriptors, err := fsys.Glob(clientfs.Join(root, ToolsDir), "*/"+ToolDescriptor)
		if err != nil {
			return nil, err
		}
		for _, descriptor := range descriptors {
			doc, err := vdf.ParseFile(fsys, descriptor)
			if err != nil {
				logger.Warn("Skipping unreadable compatibility tool descriptor.", "path", descriptor, "error", err)
				continue
			}
			base := path.Dir(descriptor)
			for _, e := range doc.Lookup("compatibilitytools", "compat_tools").Entries() {
				if !e.Value.IsNode() {
					continue
				}
				installPath, _ := e.Value.LeafAt("install_path")
				dir := base
				if installPath != "" {
					if path.IsAbs(installPath) {
						dir = path.Clean(installPath)
					} else {
						dir = clientfs.Join(base, installPath)
					}
				}
				display, _ := e.Value.LeafAt("display_name")
				tools = append(tools, Tool{
					Name:        e.Key,
					DisplayName: display,
					Dir:         dir,
					Kind:        KindCustom,
					Library:     root,
				})
			}
		}
	}
	return tools, nil
}

// List returns every installed tool: custom packages first, then runtimes
// found in steamapps/common (any directory carrying a toolmanifest.vdf).
func List(ctx context.Context, fsys clientfs.FS, roots []string) ([]Tool, error) {
	tools, err := customTools(ctx, fsys, roots)
	if err != nil {
		return nil, err
	}

	reverse := make(map[string]string, len(bundledDirs))
	for name, dir := range bundledDirs {
		reverse[dir] = name
	}

	for _, root := range roots {
		common := clientfs.Join(library.SteamApps(root), library.CommonDir)
		manifests, err := fsys.Glob(common, "*/"+ToolManifest)
		if err != nil {
			return nil, err
		}
		for _, manifest := range manifests {
			dir := path.Dir(manifest)
			dirName := path.Base(dir)
			name := dirName
			if internal, ok := reverse[dirName]; ok {
				name = internal
			} else if m := majorOnlyDir.FindStringSubmatch(dirName); m != nil {
				name = "proton_" + m[1]
			}
			tools = append(tools, Tool{
				Name:        name,
				DisplayName: dirName,
				Dir:         dir,
				Kind:        KindBundled,
				Library:     root,
			})
		}
	}

	return tools, nil
}
