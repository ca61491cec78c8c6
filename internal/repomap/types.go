// Package repomap implements the RepoMap analysis engine: tag extraction,
// identifier matching, import/dependency graph construction, centrality and
// impact analysis, bound together by the Facade in facade.go.
package repomap

import "time"

// TagKind classifies a Tag as a definition, a reference, or an import.
type TagKind string

const (
	TagDefinition TagKind = "definition"
	TagReference  TagKind = "reference"
	TagImport     TagKind = "import"
)

// Tag is a single named entity extracted from a source file. Tags have
// value semantics: two tags with identical fields are equal.
type Tag struct {
	Name     string
	Kind     TagKind
	Entity   EntityKind // meaningful only when Kind == TagDefinition
	Path     string     // project-relative
	Line     int        // 1-based
	Language string
}

// EntityKind distinguishes what a TagDefinition defines, independent of
// TagKind: a class-shaped construct (class/struct/interface) versus a
// function/method. Used to route graph nodes' Functions vs Classes.
type EntityKind string

const (
	EntityFunction EntityKind = "function"
	EntityClass    EntityKind = "class"
)

// FileTags is the ordered sequence of Tags extracted from one file, plus
// the mtime/size pair used as the C3 cache key.
type FileTags struct {
	Path        string
	Tags        []Tag
	MTime       int64 // unix seconds
	Size        int64
	Diagnostics []string
}

// ImportKind classifies how an Import statement names its target module.
type ImportKind string

const (
	ImportAbsolute ImportKind = "absolute"
	ImportRelative ImportKind = "relative"
	ImportExternal ImportKind = "external"
)

// Import is one import/require/use statement observed in a file.
type Import struct {
	Module       string
	Alias        string
	Symbols      []string
	Relative     bool
	Kind         ImportKind
	Line         int
	ResolvedPath string // project-relative; empty when unresolved (external)
}

// FileImports is the list of Import statements detected in one file. At
// most one FileImports exists per file.
type FileImports struct {
	Path        string
	Imports     []Import
	Language    string
	Diagnostics []string
}

// DependencyNode is one file's position in the dependency graph: what it
// imports, what imports it, and the symbols it defines.
type DependencyNode struct {
	Path            string
	Imports         map[string]struct{}
	ImportedBy      map[string]struct{}
	Functions       []string
	Classes         []string
	compositeScore  float64
	compositeCached bool
}

// ProjectInfo summarizes a full analyze_project run (C10). RunID identifies
// the analysis pass the way the teacher's worker.Manager tags each worker
// run with a uuid, so callers can correlate this info against log lines
// emitted during the same AnalyzeProject call.
type ProjectInfo struct {
	RunID             string
	FileCount         int
	IdentifierCount   int
	FileTypeHistogram map[string]int
	KindHistogram     map[string]int
	ElapsedMillis     int64
	LastUpdated       time.Time
}

// FacadeStatistics is the C10 performance-metrics snapshot spec.md §4.10
// requires ("publishes performance metrics via a read-only statistics
// method"): the tag cache's resident entry count and the matcher result
// cache's entry count and estimated memory footprint.
type FacadeStatistics struct {
	TagCacheEntries      int
	MatchCacheEntries    int
	MatchCacheBytes      int64
	Graph                GraphStatistics
}

// MatchKind labels which matcher produced a MatchResult.
type MatchKind string

const (
	MatchFuzzy    MatchKind = "fuzzy"
	MatchSemantic MatchKind = "semantic"
	MatchHybrid   MatchKind = "hybrid"
)

// MatchResult is one scored identifier match. Score is always clamped to
// [0, 1]; result lists are ordered by descending score with identifier
// ascending as the tie-break.
type MatchResult struct {
	Identifier string
	Score      float64
	Strategy   string
	Kind       MatchKind
	Path       string
	Line       int
	Context    string
	Metadata   map[string]float64
}

// SearchRequest is a search_identifiers request.
type SearchRequest struct {
	ID         string
	Query      string
	Kind       MatchKind
	Threshold  float64
	MaxResults int
}

// SearchResponse is the result of a SearchRequest.
type SearchResponse struct {
	Request    SearchRequest
	Total      int
	Results    []MatchResult
	ElapsedMS  int64
	CacheHit   bool
}

// CentralityVector maps path to per-algorithm score plus the composite.
type CentralityVector struct {
	Degree      map[string]float64
	Betweenness map[string]float64
	PageRank    map[string]float64
	Eigenvector map[string]float64
	Closeness   map[string]float64
	Composite   map[string]float64
}

// BreakingChangeRisk buckets a file's composite centrality score.
type BreakingChangeRisk string

const (
	RiskLow      BreakingChangeRisk = "LOW"
	RiskMedium   BreakingChangeRisk = "MEDIUM"
	RiskHigh     BreakingChangeRisk = "HIGH"
	RiskCritical BreakingChangeRisk = "CRITICAL"
)

// RiskFactors records the boolean risk signals the original implementation
// surfaced alongside the scalar risk score (see SPEC_FULL.md "Supplemented
// from original").
type RiskFactors struct {
	HighImportCount      bool
	ComplexFunctionCalls bool
	ManyDependents       bool
	AnalysisErrors       bool
}

// ImpactReport is the result of impact_of(changed_files).
type ImpactReport struct {
	Changed            []string
	Direct             []string
	Transitive         []string
	RiskScore          float64
	PerFileRisk        map[string]BreakingChangeRisk
	RiskFactors        map[string]RiskFactors
	SuggestedTests     []string
	Diagnostics        []string
}

// ProgressEvent is emitted by the Parallel Orchestrator during C4 fan-out.
type ProgressEvent struct {
	FilesDone        int
	FilesTotal       int
	LastCompletedPath string
}

// ProgressSink receives ProgressEvents. Implementations must be callable
// from any worker without external locking.
type ProgressSink func(ProgressEvent)
