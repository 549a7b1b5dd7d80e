package tracks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTrackFixture lays out a maps directory with one built-in track and one
// custom track carrying metadata.
func writeTrackFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	mapDir := filepath.Join(root, "MP-3fd")
	require.NoError(t, os.MkdirAll(mapDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mapDir, "gates-of-hell.json"), []byte(`{"gates":12}`), 0o644))

	customDir := filepath.Join(mapDir, "custom", "skyline-sprint")
	require.NoError(t, os.MkdirAll(customDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(customDir, "track.bin"), []byte("track-data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(customDir, "meta.json"), []byte(`{"name":"Skyline Sprint","author":"aria"}`), 0o644))

	return root
}

func TestCatalog_Scan(t *testing.T) {
	catalog := NewCatalog(writeTrackFixture(t))

	all := catalog.List("")
	require.Len(t, all, 2)

	builtin, ok := catalog.Get("MP-3fd", "gates-of-hell")
	require.True(t, ok)
	assert.False(t, builtin.IsCustom)
	assert.NotEmpty(t, builtin.FileHash)
	assert.Equal(t, int64(len(`{"gates":12}`)), builtin.FileSize)

	custom, ok := catalog.Get("MP-3fd", "skyline-sprint")
	require.True(t, ok)
	assert.True(t, custom.IsCustom)
	assert.Equal(t, "Skyline Sprint", custom.Name)
	assert.Equal(t, "aria", custom.Author)
	assert.Contains(t, custom.Files, "track.bin")
	assert.Contains(t, custom.Files, "meta.json")
}

func TestCatalog_Has(t *testing.T) {
	catalog := NewCatalog(writeTrackFixture(t))

	available, hashMatch := catalog.Has("MP-3fd", "skyline-sprint", "")
	assert.True(t, available)
	assert.True(t, hashMatch)

	info, ok := catalog.Get("MP-3fd", "skyline-sprint")
	require.True(t, ok)
	available, hashMatch = catalog.Has("MP-3fd", "skyline-sprint", info.FileHash)
	assert.True(t, available)
	assert.True(t, hashMatch)

	available, hashMatch = catalog.Has("MP-3fd", "skyline-sprint", "deadbeef")
	assert.True(t, available)
	assert.False(t, hashMatch)

	available, _ = catalog.Has("MP-3fd", "missing", "")
	assert.False(t, available)
}

func TestCatalog_ListByMap(t *testing.T) {
	root := writeTrackFixture(t)

	otherMap := filepath.Join(root, "MP-a11")
	require.NoError(t, os.MkdirAll(otherMap, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(otherMap, "canyon.json"), []byte(`{}`), 0o644))

	catalog := NewCatalog(root)

	assert.Len(t, catalog.List(""), 3)
	assert.Len(t, catalog.List("MP-3fd"), 2)
	assert.Len(t, catalog.List("MP-a11"), 1)
	assert.Empty(t, catalog.List("MP-zzz"))
}

func TestCatalog_EmptyPath(t *testing.T) {
	catalog := NewCatalog("")

	assert.Empty(t, catalog.List(""))
	_, ok := catalog.Get("MP-3fd", "anything")
	assert.False(t, ok)
}

func TestCatalog_HashChangesWithContent(t *testing.T) {
	root := writeTrackFixture(t)
	catalog := NewCatalog(root)

	before, ok := catalog.Get("MP-3fd", "skyline-sprint")
	require.True(t, ok)

	trackFile := filepath.Join(root, "MP-3fd", "custom", "skyline-sprint", "track.bin")
	require.NoError(t, os.WriteFile(trackFile, []byte("different-data"), 0o644))
	require.NoError(t, catalog.Scan())

	after, ok := catalog.Get("MP-3fd", "skyline-sprint")
	require.True(t, ok)
	assert.NotEqual(t, before.FileHash, after.FileHash)
}
