// Package steamtest builds in-memory Steam client layouts for tests.
package steamtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hadron-dev/hadron/internal/clientfs"
)

// Fixture is a client layout keyed by absolute path.
type Fixture struct {
	files fstest.MapFS
}

func New() *Fixture {
	return &Fixture{files: fstest.MapFS{}}
}

func key(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

// File adds a file with the given content.
func (f *Fixture) File(p, content string) *Fixture {
	f.files[key(p)] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	return f
}

// FileAt adds a file with an explicit modification time.
func (f *Fixture) FileAt(p, content string, mtime time.Time) *Fixture {
	f.files[key(p)] = &fstest.MapFile{Data: []byte(content), Mode: 0o644, ModTime: mtime}
	return f
}

// Dir adds an empty directory.
func (f *Fixture) Dir(p string) *Fixture {
	f.files[key(p)] = &fstest.MapFile{Mode: os.ModeDir | 0o755}
	return f
}

// Library creates root/steamapps.
func (f *Fixture) Library(root string) *Fixture {
	return f.Dir(root + "/steamapps")
}

// Listing writes root/steamapps/libraryfolders.vdf naming paths in order.
func (f *Fixture) Listing(root string, paths ...string) *Fixture {
	var sb strings.Builder
	sb.WriteString("\"libraryfolders\"\n{\n")
	for i, p := range paths {
		fmt.Fprintf(&sb, "\t\"%d\"\n\t{\n\t\t\"path\"\t\t\"%s\"\n\t}\n", i, p)
	}
	sb.WriteString("}\n")
	return f.File(root+"/steamapps/libraryfolders.vdf", sb.String())
}

// App writes an app manifest into lib and creates its install directory.
func (f *Fixture) App(lib, appID, name, installDir string) *Fixture {
	manifest := fmt.Sprintf("\"AppState\"\n{\n\t\"appid\"\t\t\"%s\"\n\t\"name\"\t\t\"%s\"\n\t\"StateFlags\"\t\t\"4\"\n\t\"installdir\"\t\t\"%s\"\n}\n",
		appID, name, installDir)
	f.File(lib+"/steamapps/appmanifest_"+appID+".acf", manifest)
	return f.Dir(lib + "/steamapps/common/" + installDir)
}

// CompatMapping writes config/config.vdf mapping app ids to tool names.
// Pairs are appID, toolName, appID, toolName, ...
func (f *Fixture) CompatMapping(clientRoot string, pairs ...string) *Fixture {
	var sb strings.Builder
	sb.WriteString("\"InstallConfigStore\"\n{\n\t\"Software\"\n\t{\n\t\t\"Valve\"\n\t\t{\n\t\t\t\"Steam\"\n\t\t\t{\n")
	sb.WriteString("\t\t\t\t\"CompatToolMapping\"\n\t\t\t\t{\n")
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&sb, "\t\t\t\t\t\"%s\"\n\t\t\t\t\t{\n\t\t\t\t\t\t\"name\"\t\t\"%s\"\n\t\t\t\t\t\t\"config\"\t\t\"\"\n\t\t\t\t\t\t\"priority\"\t\t\"250\"\n\t\t\t\t\t}\n",
			pairs[i], pairs[i+1])
	}
	sb.WriteString("\t\t\t\t}\n\t\t\t}\n\t\t}\n\t}\n}\n")
	return f.File(clientRoot+"/config/config.vdf", sb.String())
}

// BundledTool installs a runtime under lib/steamapps/common/dir.
func (f *Fixture) BundledTool(lib, dir string) *Fixture {
	base := lib + "/steamapps/common/" + dir
	f.File(base+"/toolmanifest.vdf", "\"manifest\"\n{\n\t\"commandline\"\t\t\"/proton %verb%\"\n}\n")
	return f.File(base+"/proton", "#!/bin/sh\n")
}

// CustomTool installs a tool package under root/compatibilitytools.d/dir.
func (f *Fixture) CustomTool(root, dir, name, displayName string) *Fixture {
	base := root + "/compatibilitytools.d/" + dir
	descriptor := fmt.Sprintf("\"compatibilitytools\"\n{\n\t\"compat_tools\"\n\t{\n\t\t\"%s\"\n\t\t{\n\t\t\t\"install_path\"\t\t\".\"\n\t\t\t\"display_name\"\t\t\"%s\"\n\t\t\t\"from_oslist\"\t\t\"windows\"\n\t\t\t\"to_oslist\"\t\t\"linux\"\n\t\t}\n\t}\n}\n",
		name, displayName)
	f.File(base+"/compatibilitytool.vdf", descriptor)
	f.File(base+"/toolmanifest.vdf", "\"manifest\"\n{\n\t\"commandline\"\t\t\"/proton %verb%\"\n}\n")
	return f.File(base+"/proton", "#!/bin/sh\n")
}

// LaunchOptions writes a user's localconfig.vdf. Pairs are appID, options.
func (f *Fixture) LaunchOptions(clientRoot, userID string, mtime time.Time, pairs ...string) *Fixture {
	var sb strings.Builder
	sb.WriteString("\"UserLocalConfigStore\"\n{\n\t\"Software\"\n\t{\n\t\t\"Valve\"\n\t\t{\n\t\t\t\"Steam\"\n\t\t\t{\n\t\t\t\t\"apps\"\n\t\t\t\t{\n")
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&sb, "\t\t\t\t\t\"%s\"\n\t\t\t\t\t{\n\t\t\t\t\t\t\"LaunchOptions\"\t\t\"%s\"\n\t\t\t\t\t}\n",
			pairs[i], strings.ReplaceAll(pairs[i+1], `"`, `\"`))
	}
	sb.WriteString("\t\t\t\t}\n\t\t\t}\n\t\t}\n\t}\n}\n")
	return f.FileAt(clientRoot+"/userdata/"+userID+"/config/localconfig.vdf", sb.String(), mtime)
}

// Files returns the underlying map, for tests that wrap it in another fs.FS.
func (f *Fixture) Files() fstest.MapFS {
	return f.files
}

// FS exposes the layout through the capability the resolvers take.
func (f *Fixture) FS() clientfs.FS {
	return clientfs.FromFS(f.files)
}

// Materialize writes the layout to disk at its absolute paths, for tests
// that go through the real filesystem. Build the fixture under t.TempDir().
func (f *Fixture) Materialize(t testing.TB) {
	t.Helper()
	for name, file := range f.files {
		target := filepath.FromSlash("/" + name)
		if file.Mode.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				t.Fatalf("failed to create directory %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", filepath.Dir(target), err)
		}
		mode := file.Mode.Perm()
		if strings.HasSuffix(name, "/proton") {
			mode = 0o755
		}
		if err := os.WriteFile(target, file.Data, mode); err != nil {
			t.Fatalf("failed to write file %s: %v", target, err)
		}
		if !file.ModTime.IsZero() {
			if err := os.Chtimes(target, file.ModTime, file.ModTime); err != nil {
				t.Fatalf("failed to set mtime on %s: %v", target, err)
			}
		}
	}
}
