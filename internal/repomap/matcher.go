package repomap

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// MatchOptions configures a single matcher invocation.
type MatchOptions struct {
	Threshold  float64
	MaxResults int
	Strategies []string // fuzzy matcher only; empty means the matcher's configured default
}

// Matcher is the common contract C5's three strategies share.
type Matcher interface {
	Match(query string, universe []string, opts MatchOptions) []MatchResult
}

// FuzzyMatcher implements the {exact,prefix,suffix,substring,levenshtein,word}
// strategy set of spec.md §4.5. Per identifier the reported score is the
// maximum over enabled strategies; ties are broken by identifier ascending.
type FuzzyMatcher struct {
	DefaultStrategies []string
}

func NewFuzzyMatcher(defaultStrategies []string) *FuzzyMatcher {
	if len(defaultStrategies) == 0 {
		defaultStrategies = []string{"prefix", "substring", "levenshtein"}
	}
	return &FuzzyMatcher{DefaultStrategies: defaultStrategies}
}

func (m *FuzzyMatcher) Match(query string, universe []string, opts MatchOptions) []MatchResult {
	if query == "" || universe == nil {
		return nil
	}
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = m.DefaultStrategies
	}
	strategySet := make(map[string]struct{}, len(strategies))
	for _, s := range strategies {
		strategySet[s] = struct{}{}
	}

	results := make([]MatchResult, 0, len(universe))
	for _, identifier := range universe {
		score, strategy := m.scoreOne(query, identifier, strategySet, opts.Threshold)
		if strategy == "" {
			continue
		}
		if score < opts.Threshold {
			continue
		}
		results = append(results, MatchResult{
			Identifier: identifier,
			Score:      clamp01(score),
			Strategy:   strategy,
			Kind:       MatchFuzzy,
		})
	}
	return sortAndTruncate(results, opts.MaxResults)
}

func (m *FuzzyMatcher) scoreOne(query, identifier string, strategies map[string]struct{}, threshold float64) (score float64, strategy string) {
	defer func() { // a strategy panicking falls back to substring, per spec.md §4.5
		if r := recover(); r != nil {
			score, strategy = 0, ""
			if strings.Contains(strings.ToLower(identifier), strings.ToLower(query)) {
				score, strategy = 0.5, "substring-fallback"
			}
		}
	}()

	best := 0.0
	bestStrategy := ""
	consider := func(score float64, strategy string) {
		if score > best {
			best = score
			bestStrategy = strategy
		}
	}

	lq, li := strings.ToLower(query), strings.ToLower(identifier)

	if _, ok := strategies["exact"]; ok && lq == li {
		consider(1.0, "exact")
	}
	if _, ok := strategies["prefix"]; ok && strings.HasPrefix(li, lq) {
		consider(math.Min(0.95, 0.70+0.02*float64(len(query))), "prefix")
	}
	if _, ok := strategies["suffix"]; ok && strings.HasSuffix(li, lq) {
		consider(math.Min(0.90, 0.65+0.02*float64(len(query))), "suffix")
	}
	if _, ok := strategies["substring"]; ok {
		if p := strings.Index(li, lq); p >= 0 {
			consider(math.Min(0.85, 0.60+0.02*float64(len(query))+math.Max(0, float64(10-p))/100), "substring")
		}
	}
	if _, ok := strategies["levenshtein"]; ok {
		if s := levenshteinCombined(lq, li); s >= threshold {
			consider(s, "levenshtein")
		}
	}
	if _, ok := strategies["word"]; ok {
		if s := jaccardWords(li, lq); s >= threshold {
			consider(s, "word")
		}
	}

	if bestStrategy == "" {
		// Fallback: plain substring match, per spec.md §9's internal
		// fallback policy, used when no enabled strategy admitted a score.
		if strings.Contains(li, lq) {
			return 0.5, "substring-fallback"
		}
		return 0, ""
	}
	return best, bestStrategy
}

func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(score)
}

func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if shorter == "" {
		return 0
	}
	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if r := levenshteinRatio(shorter, longer[i:i+len(shorter)]); r > best {
			best = r
		}
	}
	if best == 0 {
		best = levenshteinRatio(shorter, longer)
	}
	return best
}

func tokenSortRatio(a, b string) float64 {
	return levenshteinRatio(sortedTokens(a), sortedTokens(b))
}

func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	inter, union := tokenIntersectSorted(ta, tb), tokenUnionSorted(ta, tb)
	r1 := levenshteinRatio(inter, sortedTokens(a))
	r2 := levenshteinRatio(inter, sortedTokens(b))
	r3 := levenshteinRatio(inter, union)
	return math.Max(r1, math.Max(r2, r3))
}

func levenshteinCombined(a, b string) float64 {
	return math.Max(levenshteinRatio(a, b),
		math.Max(partialRatio(a, b), math.Max(tokenSortRatio(a, b), tokenSetRatio(a, b))))
}

func sortedTokens(s string) string {
	tokens := tokenizeWords(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenizeWords(s) {
		set[t] = struct{}{}
	}
	return set
}

func tokenIntersectSorted(a, b map[string]struct{}) string {
	var out []string
	for t := range a {
		if _, ok := b[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}

func tokenUnionSorted(a, b map[string]struct{}) string {
	set := make(map[string]struct{})
	for t := range a {
		set[t] = struct{}{}
	}
	for t := range b {
		set[t] = struct{}{}
	}
	var out []string
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}

func jaccardWords(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	inter, union := 0, len(sa)
	for t := range sb {
		if _, ok := sa[t]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// tokenizeWords splits on `[_\-\s]+` and camelCase boundaries, lowercased.
func tokenizeWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '\t':
			flush()
		case i > 0 && isUpper(r) && !isUpper(runes[i-1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortAndTruncate orders results by descending score with identifier
// ascending as the tie-break, then applies max_results.
func sortAndTruncate(results []MatchResult, maxResults int) []MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Identifier < results[j].Identifier
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
