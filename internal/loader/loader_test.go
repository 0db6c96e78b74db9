package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

func TestFindModule(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	mod, err := FindModule(wd)
	require.NoError(t, err)
	assert.Equal(t, "github.com/cmmoran/collectiongen", mod.Path)
	assert.Equal(t, filepath.Join(wd, "..", ".."), filepath.Clean(mod.Dir+"/"))
}

func TestFindModuleMissing(t *testing.T) {
	_, err := FindModule(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no go.mod found")
}

func TestOverlay(t *testing.T) {
	pkgs := []*packages.Package{
		{Name: "priority", GoFiles: []string{"/src/priority/priority.go", "/src/priority/collections_gen.go"}},
		{Name: "", GoFiles: []string{"/src/broken/collections_gen.go"}},
		{Name: "shapes", GoFiles: []string{"/src/shapes/shapes.go"}},
	}
	overlay := Overlay(pkgs, "collections_gen.go")
	assert.Equal(t, map[string][]byte{
		"/src/priority/collections_gen.go": []byte("package priority\n"),
	}, overlay)
	assert.Empty(t, Overlay(pkgs, ""))
}

func TestLoadNeutralisesStaleOutput(t *testing.T) {
	res, err := Load(context.Background(), Config{
		Dir:      filepath.Join("..", "..", "testdata", "fixtures", "stale"),
		Patterns: []string{"."},
		Output:   "collections_gen.go",
	})
	require.NoError(t, err)
	require.Len(t, res.Packages, 1)

	p := res.Packages[0]
	assert.Equal(t, "stale", p.Name)
	assert.Empty(t, p.TypeErrors, "the stale generated file must not reach the type checker")
	assert.NotNil(t, p.Types.Scope().Lookup("Level"))
	assert.True(t, res.Module.InModule(p))
	assert.Equal(t, "stale", filepath.Base(Dir(p)))
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, Config{Dir: filepath.Join("..", "..", "testdata", "fixtures", "stale"), Patterns: []string{"."}})
	require.Error(t, err)
}
