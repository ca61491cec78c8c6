package repomap

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph/network"
)

// defaultCentralityAlgorithms mirrors config.DepsConfig's documented default
// (spec.md §6): degree, betweenness, and pagerank run unless the caller asks
// for the optional eigenvector/closeness algorithms too.
var defaultCentralityAlgorithms = []string{"degree", "betweenness", "pagerank"}

// CentralityEngine is C8: computes per-file centrality scores over a
// DependencyGraph and combines them into one composite ranking, per
// spec.md §4.8. Results are memoized until the backing graph changes.
type CentralityEngine struct {
	dg      *DependencyGraph
	enabled map[string]struct{}

	mu     sync.Mutex
	cached *CentralityVector
}

// NewCentralityEngine builds an engine that computes every algorithm in
// deps.centrality_algorithms (spec.md §6); algorithms omitted from that set
// are simply absent from the returned CentralityVector, per §9's "Open
// Questions" policy of omitting rather than silently nulling.
func NewCentralityEngine(dg *DependencyGraph, algorithms ...string) *CentralityEngine {
	if len(algorithms) == 0 {
		algorithms = defaultCentralityAlgorithms
	}
	enabled := make(map[string]struct{}, len(algorithms))
	for _, a := range algorithms {
		enabled[a] = struct{}{}
	}
	return &CentralityEngine{dg: dg, enabled: enabled}
}

// Compute returns the full CentralityVector, memoized across calls.
func (e *CentralityEngine) Compute() CentralityVector {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cached != nil {
		return *e.cached
	}

	vec := CentralityVector{}
	var components []map[string]float64

	if e.isEnabled("degree") {
		vec.Degree = e.degreeCentrality()
		components = append(components, normalize(vec.Degree))
	}
	if e.isEnabled("betweenness") {
		vec.Betweenness = e.betweennessCentrality()
		components = append(components, normalize(vec.Betweenness))
	}
	if e.isEnabled("pagerank") {
		vec.PageRank = e.pageRankCentrality(0.85)
		components = append(components, normalize(vec.PageRank))
	}
	if e.isEnabled("eigenvector") {
		if eigen, ok := e.eigenvectorCentrality(100); ok {
			vec.Eigenvector = eigen
			components = append(components, normalize(eigen))
		}
	}
	if e.isEnabled("closeness") {
		vec.Closeness = e.closenessCentrality()
		components = append(components, normalize(vec.Closeness))
	}

	composite := make(map[string]float64, len(e.dg.Nodes))
	for path := range e.dg.Nodes {
		var sum float64
		var n int
		for _, c := range components {
			if v, ok := c[path]; ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			composite[path] = sum / float64(n)
		}
	}
	vec.Composite = normalize(composite)

	e.cached = &vec
	return vec
}

func (e *CentralityEngine) isEnabled(algorithm string) bool {
	_, ok := e.enabled[algorithm]
	return ok
}

// Invalidate drops the memoized vector; call after the graph is rebuilt.
func (e *CentralityEngine) Invalidate() {
	e.mu.Lock()
	e.cached = nil
	e.mu.Unlock()
}

// RankOf returns path's 1-based rank (1 = most central) among every node
// that has a composite score, plus the total node count. This is the
// SPEC_FULL.md "rank of total" supplement carried over from the original
// implementation's centrality report.
func (e *CentralityEngine) RankOf(path string) (rank int, total int) {
	path = e.dg.normalize(path)
	vec := e.Compute()
	type scored struct {
		path  string
		score float64
	}
	ranked := make([]scored, 0, len(vec.Composite))
	for p, s := range vec.Composite {
		ranked = append(ranked, scored{p, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].path < ranked[j].path
	})
	total = len(ranked)
	for i, r := range ranked {
		if r.path == path {
			return i + 1, total
		}
	}
	return 0, total
}

func (e *CentralityEngine) degreeCentrality() map[string]float64 {
	n := len(e.dg.Nodes)
	out := make(map[string]float64, n)
	if n <= 1 {
		for p := range e.dg.Nodes {
			out[p] = 0
		}
		return out
	}
	denom := float64(2 * (n - 1))
	for p, node := range e.dg.Nodes {
		out[p] = float64(len(node.Imports)+len(node.ImportedBy)) / denom
	}
	return out
}

func (e *CentralityEngine) betweennessCentrality() map[string]float64 {
	scores := network.Betweenness(e.dg.g)
	out := make(map[string]float64, len(scores))
	for id, score := range scores {
		if p, ok := e.dg.pathByID[id]; ok {
			out[p] = score
		}
	}
	return out
}

func (e *CentralityEngine) pageRankCentrality(damping float64) map[string]float64 {
	scores := network.PageRank(e.dg.g, damping, 1e-6)
	out := make(map[string]float64, len(scores))
	for id, score := range scores {
		if p, ok := e.dg.pathByID[id]; ok {
			out[p] = score
		}
	}
	return out
}

// eigenvectorCentrality runs power iteration over the unnormalized
// adjacency sets, counting each edge in both directions (a node accrues
// score from the files it imports and from the files that import it),
// until convergence or maxIter is exhausted. Returns
// ok=false if it fails to converge, per spec.md §4.8's optional-on-
// non-convergence allowance.
func (e *CentralityEngine) eigenvectorCentrality(maxIter int) (map[string]float64, bool) {
	n := len(e.dg.Nodes)
	if n == 0 {
		return map[string]float64{}, true
	}

	paths := make([]string, 0, n)
	for p := range e.dg.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	idx := make(map[string]int, n)
	for i, p := range paths {
		idx[p] = i
	}

	vec := make([]float64, n)
	for i := range vec {
		vec[i] = 1.0 / float64(n)
	}

	const tol = 1e-8
	converged := false
	for iter := 0; iter < maxIter; iter++ {
		next := make([]float64, n)
		for p, node := range e.dg.Nodes {
			i := idx[p]
			for dep := range node.ImportedBy { // accrue rank from files that import this one
				next[i] += vec[idx[dep]]
			}
			for dep := range node.Imports {
				next[i] += vec[idx[dep]]
			}
		}
		var norm float64
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, false
		}
		var delta float64
		for i := range next {
			next[i] /= norm
			delta += math.Abs(next[i] - vec[i])
		}
		vec = next
		if delta < tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, false
	}

	out := make(map[string]float64, n)
	for p, i := range idx {
		out[p] = vec[i]
	}
	return out, true
}

// closenessCentrality scores each node as the reciprocal of its average
// unweighted shortest-path distance to every reachable node, computed via
// BFS over the undirected view of the graph (import direction ignored, so
// a file's closeness reflects its position in the whole dependency web).
func (e *CentralityEngine) closenessCentrality() map[string]float64 {
	out := make(map[string]float64, len(e.dg.Nodes))
	for start := range e.dg.Nodes {
		dist := map[string]int{start: 0}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			node := e.dg.Nodes[cur]
			neighbors := make([]string, 0, len(node.Imports)+len(node.ImportedBy))
			for dep := range node.Imports {
				neighbors = append(neighbors, dep)
			}
			for dep := range node.ImportedBy {
				neighbors = append(neighbors, dep)
			}
			for _, nb := range neighbors {
				if _, seen := dist[nb]; !seen {
					dist[nb] = dist[cur] + 1
					queue = append(queue, nb)
				}
			}
		}
		if len(dist) <= 1 {
			out[start] = 0
			continue
		}
		var sum int
		for p, d := range dist {
			if p != start {
				sum += d
			}
		}
		avg := float64(sum) / float64(len(dist)-1)
		if avg > 0 {
			out[start] = 1.0 / avg
		}
	}
	return out
}

// normalize min-max scales a score map into [0,1]. A degenerate map (all
// equal, or fewer than two entries) maps every value to 0.
func normalize(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range scores {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	for p, v := range scores {
		if span == 0 {
			out[p] = 0
			continue
		}
		out[p] = (v - min) / span
	}
	return out
}
