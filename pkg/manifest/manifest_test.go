package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), DefaultName))
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	require.NoError(t, os.WriteFile(path, []byte("files: [\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unmarshal manifest")
}

func TestSaveSortsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultName)
	m := &Manifest{}
	m.Record(Entry{Package: "example.com/b", File: "b/collections_gen.go", SHA256: Hash([]byte("b"))})
	m.Record(Entry{Package: "example.com/a", File: "a/collections_gen.go", SHA256: Hash([]byte("a"))})
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Files, 2)
	assert.Equal(t, "a/collections_gen.go", loaded.Files[0].File)
	assert.Equal(t, "example.com/b", loaded.Files[1].Package)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sha256: "+Hash([]byte("a")))
}

func TestRecordReplacesAndRemove(t *testing.T) {
	m := &Manifest{}
	m.Record(Entry{Package: "p", File: "p/out.go", SHA256: "old"})
	m.Record(Entry{Package: "p", File: "p/out.go", SHA256: "new"})
	require.Len(t, m.Files, 1)

	e, ok := m.Lookup("p/out.go")
	require.True(t, ok)
	assert.Equal(t, "new", e.SHA256)

	m.Remove("p/out.go")
	m.Remove("missing.go")
	_, ok = m.Lookup("p/out.go")
	assert.False(t, ok)
}

func TestUnmodified(t *testing.T) {
	content := []byte("// Code generated by collectiongen. DO NOT EDIT.\n\npackage p\n")
	m := &Manifest{}
	m.Record(Entry{Package: "p", File: "p/out.go", SHA256: Hash(content)})

	assert.True(t, m.Unmodified("p/out.go", content))
	assert.False(t, m.Unmodified("p/out.go", append(content, '\n')))
	assert.False(t, m.Unmodified("q/out.go", content))
}
