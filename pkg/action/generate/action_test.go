package generate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/collectiongen/internal/generator"
)

func fixtures() string {
	return filepath.Join("..", "..", "..", "testdata", "fixtures")
}

func TestGenerateDryRun(t *testing.T) {
	opts := generator.NewOptions()
	opts.Dir = filepath.Join(fixtures(), "priority")
	opts.Patterns = []string{"."}
	opts.DryRun = true

	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Packages, 1)
	assert.Equal(t, Summary{Written: 1}, Summarize(res))
	assert.NoFileExists(t, res.Packages[0].File)
	assert.Contains(t, string(res.Packages[0].Content), "func (c *PrioritiesCollection) High() Priority")
}

func TestGenerateReturnsResultWithDiagnostics(t *testing.T) {
	opts := generator.NewOptions()
	opts.Dir = filepath.Join(fixtures(), "invalid")
	opts.Patterns = []string{"."}
	opts.DryRun = true

	res, err := Generate(context.Background(), opts)
	require.ErrorIs(t, err, generator.ErrDiagnostics)
	require.NotNil(t, res)
	assert.True(t, res.HasErrors())
}

func TestGenerateLoadFailure(t *testing.T) {
	opts := generator.NewOptions()
	opts.Dir = t.TempDir()

	res, err := Generate(context.Background(), opts)
	require.ErrorIs(t, err, generator.ErrLoadFailed)
	assert.Nil(t, res)
}
