package initialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/collectiongen/internal/generator"
)

func TestGenerateWritesPortableConfig(t *testing.T) {
	dir := t.TempDir()
	opts := generator.NewOptions()
	opts.Tags = []string{"integration"}
	opts.Normalize()

	path, err := Generate(dir, opts, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigName), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got config
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, "info", got.Common.Log.Level)
	require.NotNil(t, got.Generate)
	assert.Empty(t, got.Generate.Dir)
	assert.Zero(t, got.Generate.Workers)
	assert.Equal(t, []string{"./..."}, got.Generate.Patterns)
	assert.Equal(t, []string{"integration"}, got.Generate.Tags)
	assert.True(t, got.Generate.FailOnError)
	assert.True(t, filepath.IsAbs(opts.Dir), "the caller's options are not modified")
}

func TestGenerateRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, generator.NewOptions(), false)
	require.NoError(t, err)

	_, err = Generate(dir, generator.NewOptions(), false)
	require.ErrorIs(t, err, ErrExists)

	_, err = Generate(dir, generator.NewOptions(), true)
	require.NoError(t, err)
}
