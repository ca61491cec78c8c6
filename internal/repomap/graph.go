package repomap

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"repomap/internal/logging"
)

// maxCycleSearchSeen bounds the backtracking cycle search below so a
// pathological strongly-connected component cannot run unbounded; repo
// dependency SCCs in practice are small.
const maxCycleSearchSeen = 200000

// DependencyGraph is C7: a directed graph over files with imports/
// imported_by edges. It is built once and is immutable (safe to share for
// read) until the facade rebuilds it.
type DependencyGraph struct {
	Nodes map[string]*DependencyNode

	root       string
	g          *simple.DirectedGraph
	idByPath   map[string]int64
	pathByID   map[int64]string
	builtAt    time.Time
	buildTook  time.Duration

	cyclesOnce  sync.Once
	cycleCache  [][]string
}

// normalize funnels a caller-supplied path through the same
// project-relative, slash-separated form used as a graph key, so
// Dependencies/Dependents/Neighbors accept whatever form of path a caller
// passes in (absolute, relative, or already-normalized).
func (dg *DependencyGraph) normalize(path string) string {
	return normalizePath(dg.root, path)
}

// BuildDependencyGraph constructs the graph from the map path → FileImports
// (C7). It is idempotent: building from the same input twice yields
// structurally identical graphs. If input exceeds maxNodes, only the first
// maxNodes files (in sorted path order, for determinism) are included and
// a warning is logged. root anchors normalize for the lookup methods below;
// callers with no meaningful root (e.g. tests working in path-relative
// terms already) may pass "".
func BuildDependencyGraph(imports map[string]FileImports, tags map[string]FileTags, root string, maxNodes int, log *logging.Logger) (*DependencyGraph, error) {
	if log == nil {
		log = logging.NewLoggerWithName("graph")
	}
	start := time.Now()

	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if maxNodes > 0 && len(paths) > maxNodes {
		log.Warn("dependency graph input (%d files) exceeds max_graph_size (%d); truncating", len(paths), maxNodes)
		paths = paths[:maxNodes]
	}
	included := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		included[p] = struct{}{}
	}

	dg := &DependencyGraph{
		Nodes:    make(map[string]*DependencyNode),
		root:     root,
		g:        simple.NewDirectedGraph(),
		idByPath: make(map[string]int64),
		pathByID: make(map[int64]string),
	}

	ensureNode := func(path string) *DependencyNode {
		if n, ok := dg.Nodes[path]; ok {
			return n
		}
		n := &DependencyNode{
			Path:       path,
			Imports:    make(map[string]struct{}),
			ImportedBy: make(map[string]struct{}),
		}
		dg.Nodes[path] = n
		gn := dg.g.NewNode()
		dg.g.AddNode(gn)
		dg.idByPath[path] = gn.ID()
		dg.pathByID[gn.ID()] = path
		return n
	}

	for _, path := range paths {
		fi := imports[path]
		from := ensureNode(path)
		for _, imp := range fi.Imports {
			if imp.ResolvedPath == "" {
				continue
			}
			if _, ok := included[imp.ResolvedPath]; !ok {
				continue
			}
			to := ensureNode(imp.ResolvedPath)
			if from.Path == to.Path {
				continue // no self-loops, per spec.md §3
			}
			from.Imports[to.Path] = struct{}{}
			to.ImportedBy[from.Path] = struct{}{}
			fromID, toID := dg.idByPath[from.Path], dg.idByPath[to.Path]
			if !dg.g.HasEdgeFromTo(fromID, toID) {
				dg.g.SetEdge(dg.g.NewEdge(dg.g.Node(fromID), dg.g.Node(toID)))
			}
		}
	}

	for path := range dg.Nodes {
		ft, ok := tags[path]
		if !ok {
			continue
		}
		node := dg.Nodes[path]
		for _, t := range ft.Tags {
			if t.Kind != TagDefinition {
				continue
			}
			if t.Entity == EntityClass {
				node.Classes = append(node.Classes, t.Name)
			} else {
				node.Functions = append(node.Functions, t.Name)
			}
		}
		sort.Strings(node.Functions)
		sort.Strings(node.Classes)
	}

	dg.builtAt = time.Now()
	dg.buildTook = time.Since(start)
	return dg, nil
}

func (dg *DependencyGraph) Dependencies(path string) []string {
	n, ok := dg.Nodes[dg.normalize(path)]
	if !ok {
		return nil
	}
	return sortedKeys(n.Imports)
}

func (dg *DependencyGraph) Dependents(path string) []string {
	n, ok := dg.Nodes[dg.normalize(path)]
	if !ok {
		return nil
	}
	return sortedKeys(n.ImportedBy)
}

// Neighbors returns every node within radius hops of path along either
// direction of the graph.
func (dg *DependencyGraph) Neighbors(path string, radius int) []string {
	path = dg.normalize(path)
	if _, ok := dg.Nodes[path]; !ok || radius < 0 {
		return nil
	}
	visited := map[string]struct{}{path: {}}
	frontier := []string{path}
	for depth := 0; depth < radius; depth++ {
		var next []string
		for _, p := range frontier {
			n := dg.Nodes[p]
			for dep := range n.Imports {
				if _, seen := visited[dep]; !seen {
					visited[dep] = struct{}{}
					next = append(next, dep)
				}
			}
			for dep := range n.ImportedBy {
				if _, seen := visited[dep]; !seen {
					visited[dep] = struct{}{}
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	delete(visited, path)
	return sortedKeys(visited)
}

// FindCycles returns every simple cycle in the graph, memoized until the
// graph is rebuilt. Computed via strongly-connected-components
// decomposition followed by simple-cycle enumeration within each
// non-trivial SCC, per spec.md §4.7.
func (dg *DependencyGraph) FindCycles() [][]string {
	dg.cyclesOnce.Do(dg.computeCycles)
	return dg.cycleCache
}

func (dg *DependencyGraph) computeCycles() {
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(dg.g) {
		if len(scc) < 2 {
			continue
		}
		sccIDs := make(map[int64]struct{}, len(scc))
		for _, n := range scc {
			sccIDs[n.ID()] = struct{}{}
		}
		found := enumerateSimpleCycles(dg.g, sccIDs)
		for _, cycleIDs := range found {
			cyclePaths := make([]string, len(cycleIDs))
			for i, id := range cycleIDs {
				cyclePaths[i] = dg.pathByID[id]
			}
			cycles = append(cycles, cyclePaths)
		}
	}
	dg.cycleCache = cycles
}

// enumerateSimpleCycles backtracks from every node in an SCC, recording
// each closed simple path once (deduplicated by rotation).
func enumerateSimpleCycles(g *simple.DirectedGraph, sccIDs map[int64]struct{}) [][]int64 {
	var result [][]int64
	seenSignature := make(map[string]struct{})
	seenStates := 0

	var ids []int64
	for id := range sccIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, start := range ids {
		var path []int64
		onPath := make(map[int64]bool)

		var dfs func(current int64)
		dfs = func(current int64) {
			seenStates++
			if seenStates > maxCycleSearchSeen {
				return
			}
			path = append(path, current)
			onPath[current] = true

			to := g.From(current)
			for to.Next() {
				next := to.Node().ID()
				if _, inSCC := sccIDs[next]; !inSCC {
					continue
				}
				if next == start && len(path) >= 1 {
					sig := cycleSignature(path)
					if _, dup := seenSignature[sig]; !dup {
						seenSignature[sig] = struct{}{}
						cp := make([]int64, len(path))
						copy(cp, path)
						result = append(result, cp)
					}
					continue
				}
				if !onPath[next] && next > start { // only extend via higher-id nodes to avoid re-deriving rotations
					dfs(next)
				}
			}

			path = path[:len(path)-1]
			onPath[current] = false
		}
		dfs(start)
	}
	return result
}

// cycleSignature rotates path to start at its smallest node ID so that two
// traversals of the same cycle produce the same key.
func cycleSignature(path []int64) string {
	min := 0
	for i, v := range path {
		if v < path[min] {
			min = i
		}
	}
	rotated := append(append([]int64{}, path[min:]...), path[:min]...)
	var b strings.Builder
	for _, v := range rotated {
		fmt.Fprintf(&b, "%d,", v)
	}
	return b.String()
}

// Statistics reports node count, edge count, cycle count, root-node count
// (no incoming), and leaf-node count (no outgoing).
type GraphStatistics struct {
	Nodes      int
	Edges      int
	Cycles     int
	RootNodes  int
	LeafNodes  int
	BuildTook  time.Duration
}

func (dg *DependencyGraph) Statistics() GraphStatistics {
	stats := GraphStatistics{Nodes: len(dg.Nodes), BuildTook: dg.buildTook}
	for _, n := range dg.Nodes {
		stats.Edges += len(n.Imports)
		if len(n.ImportedBy) == 0 {
			stats.RootNodes++
		}
		if len(n.Imports) == 0 {
			stats.LeafNodes++
		}
	}
	stats.Cycles = len(dg.FindCycles())
	return stats
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
