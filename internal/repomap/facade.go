package repomap

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"repomap/internal/config"
	"repomap/internal/logging"
)

// Facade is C10: the single entry point this module exposes. It owns every
// other component's lifecycle (worker pool, caches, the built graph) and
// publishes the read-only operations spec.md §5 names. Every method is
// safe for concurrent use. Analysis runs without holding mu and swaps its
// results in under mu at the end, so a concurrent read never sees a
// half-built graph; concurrent AnalyzeProject calls are not serialized,
// and the last one to finish wins.
type Facade struct {
	cfg config.Configuration
	log *logging.Logger

	parser      *treeSitterParser
	extractor   *tagExtractor
	cache       *TagCache
	orchestrator *Orchestrator
	importer    *ImportAnalyzer

	fuzzy    *FuzzyMatcher
	semantic *SemanticMatcher
	hybrid   *HybridMatcher
	matchCache *MatcherResultCache

	mu         sync.RWMutex
	tags       map[string]FileTags
	imports    map[string]FileImports
	knownFiles map[string]struct{}
	graph      *DependencyGraph
	centrality *CentralityEngine
	impact     *ImpactAnalyzer
	lastInfo   ProjectInfo
}

// NewFacade constructs a Facade without running any analysis. The tag
// cache (loading any persisted entries), the matcher result cache, and the
// orchestrator are created here; the orchestrator starts a worker pool for
// each parallel extraction run inside AnalyzeProject.
func NewFacade(cfg config.Configuration, log *logging.Logger) *Facade {
	if log == nil {
		log = logging.NewLoggerWithName("facade")
	}
	parser := newTreeSitterParser()
	f := &Facade{
		cfg:      cfg,
		log:      log,
		parser:   parser,
		extractor: newTagExtractor(parser),
		cache:    NewTagCache(cfg.Root.CacheDir, log.WithField("component", "cache")),
		importer: NewImportAnalyzer(parser),
	}
	f.orchestrator = NewOrchestrator(OrchestratorConfig{
		MaxWorkers:        cfg.Perf.MaxWorkers,
		ParallelThreshold: cfg.Perf.ParallelThreshold,
		EnableProgress:    cfg.Perf.EnableProgress,
		AllowFallback:     cfg.Perf.AllowFallback,
	}, f.extractor, f.cache, cfg.Root.ProjectRoot, log.WithField("component", "orchestrator"))

	f.fuzzy = NewFuzzyMatcher(cfg.Fuzzy.Strategies)
	f.semantic = NewSemanticMatcher(cfg.Semantic.MinWordLength)
	f.hybrid = NewHybridMatcher(f.fuzzy, f.semantic)
	f.matchCache = NewMatcherResultCache(cfg.Perf.CacheSize, time.Duration(cfg.Perf.CacheTTLSeconds)*time.Second)
	return f
}

// AnalyzeProject is C10's primary operation: discover files (C1), extract
// tags for each (C2 via C4, consulting C3), extract and resolve imports
// (C6), and build the dependency graph (C7). It is safe to call more than
// once; each call fully replaces the previous analysis.
func (f *Facade) AnalyzeProject(ctx context.Context, progress ProgressSink) (ProjectInfo, error) {
	start := time.Now()
	runID := uuid.NewString()
	f.log.WithField("run_id", runID).Info("starting project analysis")

	paths, err := DiscoverFiles(f.cfg.Root.ProjectRoot, defaultAnalyzableExtensions, f.log.WithField("component", "discovery"))
	if err != nil {
		return ProjectInfo{}, err
	}

	if f.cfg.Root.RefreshCache {
		f.cache.InvalidateStale(func(path string) (int64, int64, bool) {
			info, statErr := os.Stat(filepath.Join(f.cfg.Root.ProjectRoot, path))
			if statErr != nil {
				return 0, 0, false
			}
			return info.ModTime().Unix(), info.Size(), true
		})
	}

	tags, err := f.orchestrator.Run(ctx, paths, progress)
	if err != nil {
		return ProjectInfo{}, err
	}

	knownFiles := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		knownFiles[p] = struct{}{}
	}

	imports := make(map[string]FileImports, len(paths))
	for _, p := range paths {
		ft := tags[p]
		content, readErr := os.ReadFile(filepath.Join(f.cfg.Root.ProjectRoot, p))
		if readErr != nil {
			continue
		}
		language, ok := languageForExt(filepath.Ext(p))
		if !ok {
			continue
		}
		fi := f.importer.Analyze(ctx, p, language, content)
		f.importer.Resolve(&fi, knownFiles, defaultAnalyzableExtensions)
		imports[p] = fi
		_ = ft
	}

	graph, err := BuildDependencyGraph(imports, tags, f.cfg.Root.ProjectRoot, f.cfg.Deps.MaxGraphSize, f.log.WithField("component", "graph"))
	if err != nil {
		return ProjectInfo{}, err
	}
	if stats := graph.Statistics(); stats.BuildTook.Seconds() > f.cfg.Deps.PerformanceThresholdSeconds {
		f.log.Warn("dependency graph build took %s, exceeding deps.performance_threshold_seconds (%.1fs)",
			stats.BuildTook, f.cfg.Deps.PerformanceThresholdSeconds)
	}
	centralityEngine := NewCentralityEngine(graph, f.cfg.Deps.CentralityAlgorithms...)

	info := ProjectInfo{
		RunID:             runID,
		FileCount:         len(paths),
		FileTypeHistogram: make(map[string]int),
		KindHistogram:     make(map[string]int),
		ElapsedMillis:     time.Since(start).Milliseconds(),
		LastUpdated:       time.Now(),
	}
	for _, p := range paths {
		info.FileTypeHistogram[filepath.Ext(p)]++
	}
	seenNames := make(map[string]struct{})
	for _, ft := range tags {
		info.IdentifierCount += len(ft.Tags)
		for _, t := range ft.Tags {
			if _, ok := seenNames[t.Name]; ok {
				continue
			}
			seenNames[t.Name] = struct{}{}
			info.KindHistogram[classifyIdentifier(t.Name)]++
		}
	}

	f.mu.Lock()
	f.tags = tags
	f.imports = imports
	f.knownFiles = knownFiles
	f.graph = graph
	f.centrality = centralityEngine
	f.impact = NewImpactAnalyzer(graph, centralityEngine, tags, knownFiles)
	f.lastInfo = info
	f.mu.Unlock()

	f.matchCache.Invalidate()
	return info, nil
}

// Refresh re-runs AnalyzeProject, tearing down and rebuilding every
// derived structure, per spec.md §5's lifecycle rules.
func (f *Facade) Refresh(ctx context.Context, progress ProgressSink) (ProjectInfo, error) {
	return f.AnalyzeProject(ctx, progress)
}

// identifierUniverse returns every identifier known across the project,
// deduplicated, carrying its first-seen Tag for Path/Line/Context.
func (f *Facade) identifierUniverse() ([]string, map[string]Tag) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[string]Tag)
	for _, ft := range f.tags {
		for _, t := range ft.Tags {
			if _, ok := seen[t.Name]; !ok {
				seen[t.Name] = t
			}
		}
	}
	universe := make([]string, 0, len(seen))
	for name := range seen {
		universe = append(universe, name)
	}
	return universe, seen
}

// SearchIdentifiers is C10's façade over C5: it selects the matcher by
// request.Kind, consults the C5 result cache, and attaches Path/Line
// context from the first tag observed for each identifier.
func (f *Facade) SearchIdentifiers(req SearchRequest) SearchResponse {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	universe, byName := f.identifierUniverse()

	opts := MatchOptions{Threshold: req.Threshold, MaxResults: req.MaxResults}
	if req.Kind == MatchFuzzy {
		opts.Strategies = f.fuzzy.DefaultStrategies
	}

	cacheKeyStrategies := opts.Strategies
	if cached, ok := f.matchCache.Get(req.Query+"|"+string(req.Kind), req.Threshold, cacheKeyStrategies); ok {
		return SearchResponse{Request: req, Total: len(cached), Results: cached, ElapsedMS: time.Since(start).Milliseconds(), CacheHit: true}
	}

	var matcher Matcher
	switch req.Kind {
	case MatchSemantic:
		matcher = f.semantic
	case MatchHybrid:
		matcher = f.hybrid
	default:
		matcher = f.fuzzy
	}

	results := matcher.Match(req.Query, universe, opts)
	for i := range results {
		if t, ok := byName[results[i].Identifier]; ok {
			results[i].Path = t.Path
			results[i].Line = t.Line
		}
	}
	f.matchCache.Put(req.Query+"|"+string(req.Kind), req.Threshold, cacheKeyStrategies, results)

	return SearchResponse{
		Request:   req,
		Total:     len(results),
		Results:   results,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
}

// BuildDependencyGraph exposes the graph already built by AnalyzeProject.
// Returns NotFoundError if no analysis has run yet.
func (f *Facade) BuildDependencyGraph() (*DependencyGraph, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.graph == nil {
		return nil, NewNotFoundError("", "no analysis has been run; call AnalyzeProject first")
	}
	return f.graph, nil
}

// CentralityScores is C10's façade over C8.
func (f *Facade) CentralityScores() (CentralityVector, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.centrality == nil {
		return CentralityVector{}, NewNotFoundError("", "no analysis has been run; call AnalyzeProject first")
	}
	return f.centrality.Compute(), nil
}

// ImpactOf is C10's façade over C9.
func (f *Facade) ImpactOf(changed []string) (ImpactReport, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.impact == nil {
		return ImpactReport{}, NewNotFoundError("", "no analysis has been run; call AnalyzeProject first")
	}
	return f.impact.ImpactOf(changed), nil
}

// FindCycles is C10's façade over C7's cycle detection.
func (f *Facade) FindCycles() ([][]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.graph == nil {
		return nil, NewNotFoundError("", "no analysis has been run; call AnalyzeProject first")
	}
	return f.graph.FindCycles(), nil
}

// LastProjectInfo returns the statistics from the most recent analysis.
func (f *Facade) LastProjectInfo() ProjectInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastInfo
}

// Statistics is C10's read-only performance-metrics method (spec.md
// §4.10): the tag cache's resident entry count, the matcher result
// cache's size and estimated memory footprint, and the dependency
// graph's own statistics if a graph has been built.
func (f *Facade) Statistics() FacadeStatistics {
	f.mu.RLock()
	graph := f.graph
	f.mu.RUnlock()

	stats := FacadeStatistics{
		TagCacheEntries:   f.cache.Size(),
		MatchCacheEntries: f.matchCache.Len(),
		MatchCacheBytes:   f.matchCache.EstimatedBytes(),
	}
	if graph != nil {
		stats.Graph = graph.Statistics()
	}
	return stats
}
