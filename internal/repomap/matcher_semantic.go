package repomap

import (
	"math"
)

// SemanticMatcher implements C5's TF-IDF strategy: a tokenized view of the
// identifier universe (camelCase/snake_case split, lowercased, short tokens
// dropped) embedded into a vector space; cosine similarity against the
// query's embedding yields the score.
type SemanticMatcher struct {
	MinWordLength int
}

func NewSemanticMatcher(minWordLength int) *SemanticMatcher {
	if minWordLength <= 0 {
		minWordLength = 3
	}
	return &SemanticMatcher{MinWordLength: minWordLength}
}

func (m *SemanticMatcher) Match(query string, universe []string, opts MatchOptions) []MatchResult {
	if query == "" || len(universe) == 0 {
		return nil
	}

	docs := make([][]string, len(universe))
	df := make(map[string]int)
	for i, identifier := range universe {
		tokens := m.filterTokens(tokenizeWords(identifier))
		docs[i] = tokens
		seen := make(map[string]struct{})
		for _, t := range tokens {
			if _, ok := seen[t]; !ok {
				df[t]++
				seen[t] = struct{}{}
			}
		}
	}
	if len(df) == 0 {
		return nil
	}

	n := float64(len(universe))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(1+n/float64(count)) + 1
	}

	vectors := make([]map[string]float64, len(universe))
	for i, tokens := range docs {
		vectors[i] = tfidfVector(tokens, idf)
	}

	queryTokens := m.filterTokens(tokenizeWords(query))
	queryVec := tfidfVector(queryTokens, idf)
	if len(queryVec) == 0 {
		return nil
	}

	results := make([]MatchResult, 0, len(universe))
	for i, identifier := range universe {
		score := clamp01(cosineSimilarity(queryVec, vectors[i]))
		if score < opts.Threshold {
			continue
		}
		results = append(results, MatchResult{
			Identifier: identifier,
			Score:      score,
			Strategy:   "tfidf-cosine",
			Kind:       MatchSemantic,
		})
	}
	return sortAndTruncate(results, opts.MaxResults)
}

func (m *SemanticMatcher) filterTokens(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if len(t) >= m.MinWordLength {
			out = append(out, t)
		}
	}
	return out
}

func tfidfVector(tokens []string, idf map[string]float64) map[string]float64 {
	tf := make(map[string]float64)
	for _, t := range tokens {
		tf[t]++
	}
	vec := make(map[string]float64, len(tf))
	for term, count := range tf {
		weight, ok := idf[term]
		if !ok {
			continue
		}
		vec[term] = count * weight
	}
	return vec
}

func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, magA, magB float64
	for term, va := range a {
		magA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		magB += vb * vb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
