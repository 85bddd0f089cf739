package clientfs

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS() FS {
	return FromFS(fstest.MapFS{
		"steam/steamapps/libraryfolders.vdf":                          {Data: []byte(`"libraryfolders" {}`)},
		"steam/compatibilitytools.d/GE-Proton9/compatibilitytool.vdf": {Data: []byte("{}")},
		"steam/compatibilitytools.d/Luxtorpeda/compatibilitytool.vdf": {Data: []byte("{}")},
		"steam/compatibilitytools.d/broken/readme.txt":                {Data: []byte("x")},
	})
}

func TestReadFileRequiresAbsolutePath(t *testing.T) {
	fsys := newTestFS()

	data, err := fsys.ReadFile("/steam/steamapps/libraryfolders.vdf")
	require.NoError(t, err)
	assert.Equal(t, `"libraryfolders" {}`, string(data))

	_, err = fsys.ReadFile("steam/steamapps/libraryfolders.vdf")
	assert.Error(t, err)
}

func TestMissingFileIsNotFound(t *testing.T) {
	_, err := newTestFS().ReadFile("/steam/config/config.vdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, steamerr.ErrNotFound))

	var notFound *steamerr.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "/steam/config/config.vdf", notFound.Path)
}

// deniedFS refuses to open one path, the way a file owned by another user
// behaves.
type deniedFS struct {
	fs.FS
	denied string
}

func (d deniedFS) Open(name string) (fs.File, error) {
	if name == d.denied {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.FS.Open(name)
}

func TestUnreadableFileIsTypedNotFound(t *testing.T) {
	fsys := FromFS(deniedFS{
		FS:     fstest.MapFS{"steam/config/config.vdf": {Data: []byte("{}")}},
		denied: "steam/config/config.vdf",
	})

	_, err := fsys.ReadFile("/steam/config/config.vdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, steamerr.ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrPermission), "cause is kept")

	var notFound *steamerr.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "/steam/config/config.vdf", notFound.Path)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = fsys.Stat("/steam/config/config.vdf")
	assert.True(t, errors.As(err, &notFound))
}

func TestExistsAndIsDir(t *testing.T) {
	fsys := newTestFS()

	assert.True(t, fsys.IsDir("/steam/steamapps"))
	assert.True(t, fsys.IsDir("/steam/steamapps/"))
	assert.False(t, fsys.IsDir("/steam/steamapps/libraryfolders.vdf"))
	assert.True(t, fsys.Exists("/steam/steamapps/libraryfolders.vdf"))
	assert.False(t, fsys.Exists("/steam/userdata"))
	assert.True(t, fsys.IsDir("/"))
}

func TestGlobReturnsSortedAbsolutePaths(t *testing.T) {
	fsys := newTestFS()

	matches, err := fsys.Glob("/steam/compatibilitytools.d", "*/compatibilitytool.vdf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/steam/compatibilitytools.d/GE-Proton9/compatibilitytool.vdf",
		"/steam/compatibilitytools.d/Luxtorpeda/compatibilitytool.vdf",
	}, matches)

	matches, err = fsys.Glob("/nowhere", "*")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReadDirListsEntries(t *testing.T) {
	entries, err := newTestFS().ReadDir("/steam/compatibilitytools.d")
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Equal(t, []string{"GE-Proton9", "Luxtorpeda", "broken"}, names)
}
