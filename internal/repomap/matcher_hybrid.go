package repomap

// HybridMatcher computes both fuzzy and semantic scores per identifier and
// combines them as a weighted max, the contract spec.md §9 fixes in place
// of the original's several inconsistent call-site formulas.
type HybridMatcher struct {
	Fuzzy    *FuzzyMatcher
	Semantic *SemanticMatcher
}

func NewHybridMatcher(fuzzy *FuzzyMatcher, semantic *SemanticMatcher) *HybridMatcher {
	return &HybridMatcher{Fuzzy: fuzzy, Semantic: semantic}
}

func (m *HybridMatcher) Match(query string, universe []string, opts MatchOptions) []MatchResult {
	if query == "" || len(universe) == 0 {
		return nil
	}

	// Gather component scores without filtering by threshold yet, since the
	// combined score is what must clear opts.Threshold.
	unfiltered := opts
	unfiltered.Threshold = 0
	unfiltered.MaxResults = 0

	fuzzyResults := m.Fuzzy.Match(query, universe, unfiltered)
	fuzzyByID := make(map[string]MatchResult, len(fuzzyResults))
	for _, r := range fuzzyResults {
		fuzzyByID[r.Identifier] = r
	}

	semanticResults := m.Semantic.Match(query, universe, unfiltered)
	semanticByID := make(map[string]float64, len(semanticResults))
	for _, r := range semanticResults {
		semanticByID[r.Identifier] = r.Score
	}

	results := make([]MatchResult, 0, len(universe))
	for _, identifier := range universe {
		fuzzyScore := fuzzyByID[identifier].Score
		semanticScore := semanticByID[identifier]
		combined := fuzzyScore
		strategy := fuzzyByID[identifier].Strategy
		if semanticScore > combined {
			combined = semanticScore
			strategy = "tfidf-cosine"
		}
		if combined < opts.Threshold {
			continue
		}
		if combined == 0 {
			continue
		}
		results = append(results, MatchResult{
			Identifier: identifier,
			Score:      clamp01(combined),
			Strategy:   strategy,
			Kind:       MatchHybrid,
			Metadata: map[string]float64{
				"fuzzy":    fuzzyScore,
				"semantic": semanticScore,
			},
		})
	}
	return sortAndTruncate(results, opts.MaxResults)
}
