package repomap

import (
	"path"
	"sort"
	"strings"
)

// ImpactAnalyzer is C9: given a set of changed files, it reports which
// other files are affected, how severely, and which tests are most likely
// to exercise the change, per spec.md §4.9.
type ImpactAnalyzer struct {
	dg         *DependencyGraph
	centrality *CentralityEngine
	tags       map[string]FileTags
	knownFiles map[string]struct{}

	lowMax, mediumMax, highMax float64
}

func NewImpactAnalyzer(dg *DependencyGraph, centrality *CentralityEngine, tags map[string]FileTags, knownFiles map[string]struct{}) *ImpactAnalyzer {
	return &ImpactAnalyzer{
		dg:         dg,
		centrality: centrality,
		tags:       tags,
		knownFiles: knownFiles,
		lowMax:     0.25,
		mediumMax:  0.50,
		highMax:    0.75,
	}
}

// ImpactOf computes the ImpactReport for a set of changed files. Files not
// present in the graph are reported via Diagnostics rather than raising,
// per spec.md §4.9's failure semantics.
func (a *ImpactAnalyzer) ImpactOf(changed []string) ImpactReport {
	report := ImpactReport{
		Changed:     append([]string(nil), changed...),
		PerFileRisk: make(map[string]BreakingChangeRisk),
		RiskFactors: make(map[string]RiskFactors),
	}

	directSet := make(map[string]struct{})
	var validChanged []string
	for _, raw := range changed {
		normalized := a.dg.normalize(raw)
		if _, ok := a.dg.Nodes[normalized]; !ok {
			report.Diagnostics = append(report.Diagnostics, "unknown file: "+raw)
			continue
		}
		validChanged = append(validChanged, normalized)
		for _, dep := range a.dg.Dependents(normalized) {
			directSet[dep] = struct{}{}
		}
	}
	report.Direct = sortedKeys(directSet)

	transitiveSet := make(map[string]struct{})
	for p := range directSet {
		transitiveSet[p] = struct{}{}
	}
	queue := make([]string, 0, len(directSet))
	for p := range directSet {
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range a.dg.Dependents(cur) {
			if _, seen := transitiveSet[dep]; !seen {
				transitiveSet[dep] = struct{}{}
				queue = append(queue, dep)
			}
		}
	}
	// Changed files themselves are always part of the affected set.
	for _, p := range validChanged {
		transitiveSet[p] = struct{}{}
	}
	report.Transitive = sortedKeys(transitiveSet)

	if len(validChanged) == 0 {
		return report
	}

	vec := a.centrality.Compute()
	var avgCentrality float64
	for _, p := range validChanged {
		avgCentrality += vec.Composite[p]
	}
	avgCentrality /= float64(len(validChanged))

	totalNodes := len(a.dg.Nodes)
	spread := 0.0
	if totalNodes > 0 {
		spread = float64(len(transitiveSet)) / float64(totalNodes)
	}
	report.RiskScore = clamp01(0.5*spread + 0.5*avgCentrality)

	for p := range transitiveSet {
		score := vec.Composite[p]
		if score == 0 {
			score = report.RiskScore
		}
		report.PerFileRisk[p] = bucketRisk(score, a.lowMax, a.mediumMax, a.highMax)
	}

	for _, p := range validChanged {
		report.RiskFactors[p] = a.riskFactors(p)
	}

	report.SuggestedTests = a.suggestTests(validChanged)
	return report
}

func bucketRisk(score, lowMax, mediumMax, highMax float64) BreakingChangeRisk {
	switch {
	case score <= lowMax:
		return RiskLow
	case score <= mediumMax:
		return RiskMedium
	case score <= highMax:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// riskFactors computes the boolean signals SPEC_FULL.md carries forward
// from the original implementation's `_assess_risk`.
func (a *ImpactAnalyzer) riskFactors(p string) RiskFactors {
	node := a.dg.Nodes[p]
	ft := a.tags[p]

	var calls int
	for _, t := range ft.Tags {
		if t.Kind == TagReference {
			calls++
		}
	}

	return RiskFactors{
		HighImportCount:      len(node.Imports) > 10,
		ComplexFunctionCalls: calls > 20,
		ManyDependents:       len(node.ImportedBy) > 5,
		AnalysisErrors:       len(ft.Diagnostics) > 0,
	}
}

// suggestTests probes conventional test-file locations for each changed
// file: the patterns spec.md names (test_X.py / X_test.py) plus the
// SPEC_FULL.md supplement (tests/-sibling, __tests__/, Go/TS suffixes).
func (a *ImpactAnalyzer) suggestTests(changed []string) []string {
	found := make(map[string]struct{})
	for _, p := range changed {
		dir := path.Dir(p)
		base := path.Base(p)
		ext := path.Ext(base)
		stem := strings.TrimSuffix(base, ext)

		candidates := []string{
			path.Join(dir, "test_"+base),
			path.Join(dir, stem+"_test"+ext),
			path.Join(dir, stem+".test"+ext),
			path.Join(dir, stem+".spec"+ext),
			path.Join(dir, stem+"_test.go"),
			path.Join(dir, "tests", "test_"+base),
			path.Join(dir, "tests", base),
			path.Join(dir, "__tests__", base),
			path.Join(dir, "__tests__", stem+".test"+ext),
		}
		for _, c := range candidates {
			if _, ok := a.knownFiles[c]; ok {
				found[c] = struct{}{}
			}
		}
	}
	return sortedKeys(found)
}
