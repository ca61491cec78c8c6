package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppliesDocumentedDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)

	assert.Equal(t, dir, cfg.Root.ProjectRoot)
	assert.Equal(t, 4096, cfg.Root.MapTokens)
	assert.Equal(t, 50, cfg.Root.MaxResults)
	assert.Equal(t, 4, cfg.Perf.MaxWorkers)
	assert.Equal(t, 10, cfg.Perf.ParallelThreshold)
	assert.Equal(t, 1000, cfg.Perf.CacheSize)
	assert.Equal(t, 3600, cfg.Perf.CacheTTLSeconds)
	assert.Equal(t, 70, cfg.Fuzzy.Threshold)
	assert.False(t, cfg.Semantic.Enabled)
	assert.Equal(t, 10000, cfg.Deps.MaxGraphSize)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Root.ProjectRoot)
	assert.Equal(t, 4, cfg.Perf.MaxWorkers)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "perf:\n  max_workers: 8\nfuzzy:\n  threshold: 80\n"
	require.NoError(t, os.WriteFile(dir+"/repomap.yaml", []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Perf.MaxWorkers)
	assert.Equal(t, 80, cfg.Fuzzy.Threshold)
}

func TestValidateRejectsOutOfRangeWorkers(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Perf.MaxWorkers = 32
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsMissingRoot(t *testing.T) {
	cfg := Default("/path/does/not/exist-repomap-test")
	require.Error(t, Validate(cfg))
}
