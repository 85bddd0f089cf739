package vdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) *Value {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "fixtures", "steam", name))
	require.NoError(t, err)
	root, err := Parse(data)
	require.NoError(t, err, "fixture %s", name)
	return root
}

func TestClientFixturesRoundTrip(t *testing.T) {
	for _, name := range []string{"libraryfolders.vdf", "appmanifest_440.acf", "config.vdf", "localconfig.vdf"} {
		t.Run(name, func(t *testing.T) {
			root := parseFixture(t, name)

			data, err := Marshal(root)
			require.NoError(t, err)
			again, err := Parse(data)
			require.NoError(t, err)
			if diff := cmp.Diff(root, again, valueOpts); diff != "" {
				t.Fatalf("round trip changed %s (-want +got):\n%s", name, diff)
			}
		})
	}
}

func TestClientFixtureContents(t *testing.T) {
	listing := parseFixture(t, "libraryfolders.vdf")
	_, top := Document(listing)
	require.NotNil(t, top)
	path, ok := top.LeafAt("1", "path")
	require.True(t, ok)
	assert.Equal(t, "/run/media/mmcblk0p1", path)

	manifest := parseFixture(t, "appmanifest_440.acf")
	installDir, ok := manifest.LeafAt("AppState", "installdir")
	require.True(t, ok)
	assert.Equal(t, "Team Fortress 2", installDir)

	cfg := parseFixture(t, "config.vdf")
	cdn, ok := cfg.LeafAt("InstallConfigStore", "Software", "Valve", "Steam", "depots", "228988", "CDN")
	require.True(t, ok)
	assert.Equal(t, "http://cdn.example.com/depot/228988", cdn, "// inside a quoted token is not a comment")

	local := parseFixture(t, "localconfig.vdf")
	opts, ok := local.LeafAt("UserLocalConfigStore", "Software", "Valve", "Steam", "apps", "440", "LaunchOptions")
	require.True(t, ok)
	assert.Equal(t, `PROTON_LOG=1 DXVK_HUD="fps" %command% -novid`, opts)
}
