package repomap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repomap/internal/config"
	"repomap/internal/logging"
)

func newTestFacade(t *testing.T, root string) *Facade {
	t.Helper()
	cfg := config.Default(root)
	cfg.Root.CacheDir = filepath.Join(t.TempDir(), "cache")
	return NewFacade(cfg, logging.NewTestLogger("facade"))
}

func writeSampleProject(t *testing.T, dir string) {
	t.Helper()
	writeTestFile(t, dir, "main.go", `package main

import "util"

func main() {
	Helper()
}
`)
	writeTestFile(t, dir, "util.go", `package util

func Helper() {}
`)
}

func TestAnalyzeProjectBuildsTagsAndGraph(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)

	f := newTestFacade(t, dir)
	info, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, info.FileCount)
	assert.NotEmpty(t, info.RunID)
	assert.Greater(t, info.IdentifierCount, 0)

	graph, err := f.BuildDependencyGraph()
	require.NoError(t, err)
	assert.Contains(t, graph.Nodes, "main.go")
	assert.Contains(t, graph.Nodes, "util.go")
}

func TestAnalyzeProjectKindHistogramClassifiesByNamingConvention(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)

	f := newTestFacade(t, dir)
	info, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, info.KindHistogram["classes"], "Helper starts with a capital letter")
	assert.Equal(t, 2, info.KindHistogram["variables"], "main and the imported util are all-lowercase with no underscore")
	assert.Zero(t, info.KindHistogram["functions"])
	assert.Zero(t, info.KindHistogram["constants"])
}

func TestFacadeStatisticsReflectsCachesAndGraph(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)

	f := newTestFacade(t, dir)
	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	stats := f.Statistics()
	assert.Equal(t, 2, stats.TagCacheEntries)
	assert.Equal(t, 2, stats.Graph.Nodes)

	_ = f.SearchIdentifiers(SearchRequest{Query: "Help", Kind: MatchFuzzy})
	stats = f.Statistics()
	assert.Equal(t, 1, stats.MatchCacheEntries)
	assert.Greater(t, stats.MatchCacheBytes, int64(0))
}

func TestFacadeOperationsFailBeforeAnalysis(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	_, err := f.BuildDependencyGraph()
	assert.Error(t, err)

	_, err = f.CentralityScores()
	assert.Error(t, err)

	_, err = f.ImpactOf([]string{"main.go"})
	assert.Error(t, err)

	_, err = f.FindCycles()
	assert.Error(t, err)
}

func TestSearchIdentifiersFindsExtractedFunction(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	resp := f.SearchIdentifiers(SearchRequest{Query: "Helper", Kind: MatchFuzzy, Threshold: 0.1, MaxResults: 5})
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Helper", resp.Results[0].Identifier)
	assert.NotEmpty(t, resp.Request.ID)
}

func TestSearchIdentifiersSecondCallHitsCache(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	req := SearchRequest{Query: "Helper", Kind: MatchFuzzy, Threshold: 0.1, MaxResults: 5}
	first := f.SearchIdentifiers(req)
	assert.False(t, first.CacheHit)

	second := f.SearchIdentifiers(req)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Total, second.Total)
}

func TestCentralityScoresReflectsConfiguredAlgorithms(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	cfg := config.Default(dir)
	cfg.Root.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Deps.CentralityAlgorithms = []string{"degree"}
	f := NewFacade(cfg, logging.NewTestLogger("facade"))

	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	vec, err := f.CentralityScores()
	require.NoError(t, err)
	assert.NotEmpty(t, vec.Degree)
	assert.Nil(t, vec.Betweenness)
	assert.Nil(t, vec.PageRank)
}

func TestImpactOfReportsDependentsOfChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	report, err := f.ImpactOf([]string{"util.go"})
	require.NoError(t, err)
	assert.Contains(t, report.Direct, "main.go")
}

func TestRefreshPicksUpTouchedFile(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	_, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)

	writeTestFile(t, dir, "extra.go", "package main\nfunc Extra() {}\n")
	// ensure a distinct mtime from the initial write
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "extra.go"), future, future))

	info, err := f.Refresh(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, info.FileCount)

	resp := f.SearchIdentifiers(SearchRequest{Query: "Extra", Kind: MatchFuzzy, Threshold: 0.1, MaxResults: 5})
	require.NotEmpty(t, resp.Results)
}

func TestAnalyzeEmptyProjectReturnsZeroCounts(t *testing.T) {
	dir := t.TempDir()
	f := newTestFacade(t, dir)

	info, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, info.FileCount)
	assert.Equal(t, 0, info.IdentifierCount)
}

func TestLastProjectInfoReturnsMostRecentRun(t *testing.T) {
	dir := t.TempDir()
	writeSampleProject(t, dir)
	f := newTestFacade(t, dir)

	info, err := f.AnalyzeProject(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, info.RunID, f.LastProjectInfo().RunID)
}
