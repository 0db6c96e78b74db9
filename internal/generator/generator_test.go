package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/emit"
	"github.com/cmmoran/collectiongen/internal/testutil"
	"github.com/cmmoran/collectiongen/pkg/manifest"
)

const modulePath = "github.com/cmmoran/collectiongen"

// module lays out packages in a scratch directory under testdata so that
// they resolve enumopt through this module. It returns the directory and its
// import path.
func module(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	testdata, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)
	root, err := os.MkdirTemp(testdata, "gen")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(root) })

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root, modulePath + "/testdata/" + filepath.Base(root)
}

func run(t *testing.T, root string, opts ...Option) (*Result, error) {
	t.Helper()
	base := []Option{
		WithDir(root),
		WithWorkers(2),
		WithManifest(filepath.Join(root, manifest.DefaultName)),
	}
	return New(append(base, opts...)...).Run(context.Background())
}

// rel is the manifest key of a file below root.
func rel(root, name string) string {
	return "testdata/" + filepath.Base(root) + "/" + name
}

func byPath(t *testing.T, res *Result, path string) *PackageResult {
	t.Helper()
	for _, p := range res.Packages {
		if p.Path == path {
			return p
		}
	}
	t.Fatalf("package %s not in result", path)
	return nil
}

func TestRunWritesAndIsIdempotent(t *testing.T) {
	root, path := module(t, map[string]string{
		"colors/colors.go":     testutil.Colors,
		"priority/priority.go": testutil.Priority,
		"plain/plain.go":       "package plain\n\nconst Answer = 42\n",
	})

	res, err := run(t, root)
	require.NoError(t, err)
	colors := byPath(t, res, path+"/colors")
	assert.Equal(t, StatusWritten, colors.Status)
	assert.Equal(t, StatusNone, byPath(t, res, path+"/plain").Status)

	priority := byPath(t, res, path+"/priority")
	assert.Equal(t, StatusWritten, priority.Status)
	assert.Empty(t, priority.Diagnostics)
	assert.Contains(t, string(priority.Content), "var Priorities = newPrioritiesCollection()")

	written, err := os.ReadFile(filepath.Join(root, "colors", emit.FileName))
	require.NoError(t, err)
	assert.Equal(t, string(colors.Content), string(written))
	assert.True(t, IsGenerated(written))
	assert.NoFileExists(t, filepath.Join(root, "plain", emit.FileName))

	m, err := manifest.Load(filepath.Join(root, manifest.DefaultName))
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	entry, ok := m.Lookup(rel(root, "colors/"+emit.FileName))
	require.True(t, ok)
	assert.Equal(t, path+"/colors", entry.Package)
	assert.True(t, m.Unmodified(entry.File, written))

	again, err := run(t, root)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, byPath(t, again, path+"/colors").Status)
	assert.Equal(t, StatusUnchanged, byPath(t, again, path+"/priority").Status)
	regenerated, err := os.ReadFile(filepath.Join(root, "colors", emit.FileName))
	require.NoError(t, err)
	assert.Equal(t, string(written), string(regenerated))
}

func TestRunDeletesOutputWhenMarkersDisappear(t *testing.T) {
	root, path := module(t, map[string]string{"colors/colors.go": testutil.Colors})
	_, err := run(t, root)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "colors", emit.FileName))

	stripped := strings.Replace(testutil.Colors, "//enum:extend\n", "", 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "colors", "colors.go"), []byte(stripped), 0o644))

	res, err := run(t, root)
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, byPath(t, res, path+"/colors").Status)
	assert.NoFileExists(t, filepath.Join(root, "colors", emit.FileName))

	m, err := manifest.Load(filepath.Join(root, manifest.DefaultName))
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestRunKeepsHandWrittenFiles(t *testing.T) {
	handWritten := "package plain\n\nconst Answer = 42\n"
	root, path := module(t, map[string]string{
		"plain/plain.go":         "package plain\n",
		"plain/" + emit.FileName: handWritten,
	})

	res, err := run(t, root)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, byPath(t, res, path+"/plain").Status)

	got, err := os.ReadFile(filepath.Join(root, "plain", emit.FileName))
	require.NoError(t, err)
	assert.Equal(t, handWritten, string(got))
}

func TestRunDryRun(t *testing.T) {
	root, path := module(t, map[string]string{"colors/colors.go": testutil.Colors})

	res, err := run(t, root, WithDryRun())
	require.NoError(t, err)
	colors := byPath(t, res, path+"/colors")
	assert.Equal(t, StatusWritten, colors.Status)
	assert.Contains(t, string(colors.Content), "func (c *ColorsCollection) NameOf(v Color) string")
	assert.NoFileExists(t, colors.File)
	assert.NoFileExists(t, filepath.Join(root, manifest.DefaultName))
}

func TestRunRemovesOrphans(t *testing.T) {
	stale := "// " + emit.Header + "\n\npackage gone\n"
	root, path := module(t, map[string]string{
		"colors/colors.go":           testutil.Colors,
		"gone/README":                "moved\n",
		"gone/" + emit.FileName:      stale,
		"elsewhere/elsewhere.go":     "package elsewhere\n",
		"elsewhere/" + emit.FileName: stale,
	})
	m := &manifest.Manifest{}
	m.Record(manifest.Entry{Package: path + "/gone", File: rel(root, "gone/"+emit.FileName), SHA256: manifest.Hash([]byte(stale))})
	m.Record(manifest.Entry{Package: path + "/elsewhere", File: rel(root, "elsewhere/"+emit.FileName), SHA256: manifest.Hash([]byte(stale))})
	require.NoError(t, m.Save(filepath.Join(root, manifest.DefaultName)))

	res, err := run(t, root, WithPatterns("./colors"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "gone", emit.FileName)}, res.Orphans)
	assert.NoFileExists(t, filepath.Join(root, "gone", emit.FileName))
	assert.FileExists(t, filepath.Join(root, "elsewhere", emit.FileName), "packages outside the run are left alone")

	m, err = manifest.Load(filepath.Join(root, manifest.DefaultName))
	require.NoError(t, err)
	_, ok := m.Lookup(rel(root, "gone/"+emit.FileName))
	assert.False(t, ok)
	_, ok = m.Lookup(rel(root, "elsewhere/"+emit.FileName))
	assert.True(t, ok)
	_, ok = m.Lookup(rel(root, "colors/"+emit.FileName))
	assert.True(t, ok)
}

func TestRunReportsDiagnostics(t *testing.T) {
	root, path := module(t, map[string]string{
		"broken/broken.go": "package broken\n\n//enum:option id=abc\ntype Thing struct{}\n",
		"colors/colors.go": testutil.Colors,
	})

	res, err := run(t, root)
	require.ErrorIs(t, err, ErrDiagnostics)
	require.NotNil(t, res)
	assert.True(t, res.HasErrors())

	var ids []diag.ID
	for _, d := range byPath(t, res, path+"/broken").Diagnostics {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, diag.MalformedDirective)
	assert.Equal(t, StatusWritten, byPath(t, res, path+"/colors").Status, "other packages still render")

	_, err = run(t, root, WithFailOnError(false))
	require.NoError(t, err)
}

func TestRunLoadError(t *testing.T) {
	_, err := New(WithDir(t.TempDir())).Run(context.Background())
	require.ErrorIs(t, err, ErrLoadFailed)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "no go.mod found")
}

func TestOptionsNormalize(t *testing.T) {
	o := NewOptions()
	for _, fn := range []Option{
		WithDir(""),
		WithPatterns(" ", "./a", ""),
		WithOutput("sub/out_gen.go"),
		WithWorkers(-1),
		WithoutManifest(),
	} {
		fn(o)
	}
	o.Normalize()

	assert.True(t, filepath.IsAbs(o.Dir))
	assert.Equal(t, []string{"./a"}, o.Patterns)
	assert.Equal(t, "out_gen.go", o.Output)
	assert.Positive(t, o.Workers)
	assert.Empty(t, o.Manifest)
	assert.True(t, o.FailOnError)

	empty := &Options{}
	empty.Normalize()
	assert.Equal(t, []string{"./..."}, empty.Patterns)
	assert.Equal(t, emit.FileName, empty.Output)
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated([]byte("\n// "+emit.Header+"\n\npackage x\n")))
	assert.False(t, IsGenerated([]byte("package x\n\n// "+emit.Header+"\n")))
	assert.False(t, IsGenerated(nil))
}

func TestErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("boom")
	ge := &GenerationError{Package: "example.com/p", File: "p/out.go", Message: "write output", Cause: cause}
	assert.ErrorIs(t, ge, ErrGenerationFailed)
	assert.ErrorIs(t, ge, cause)
	assert.Equal(t, "collectiongen: generate example.com/p (p/out.go): write output: boom", ge.Error())

	le := &LoadError{Dir: "/src", Cause: cause}
	assert.ErrorIs(t, le, ErrLoadFailed)
	assert.NotErrorIs(t, le, ErrGenerationFailed)
	assert.Equal(t, "collectiongen: load /src: boom", le.Error())
}
