package repomap

import "strings"

// classifyIdentifier buckets an identifier name into one of the
// identifier-kind histogram categories spec.md §4.10 names, purely by
// naming convention (never by Tag.Kind): functions, classes, constants,
// variables, or other. Grounded on the original implementation's
// analyze_identifier_types, which applies the same rule order over the
// deduplicated identifier set rather than per-tag.
func classifyIdentifier(name string) string {
	switch {
	case name == "":
		return "other"
	case isAllUpperWithUnderscores(name):
		return "constants"
	case isInitialCapital(name):
		return "classes"
	case strings.HasSuffix(name, "()") || (strings.Contains(name, "_") && isAllLower(name)):
		return "functions"
	case isAllLower(name):
		return "variables"
	default:
		return "other"
	}
}

func isAllUpperWithUnderscores(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r == '_' || (r >= '0' && r <= '9'):
			continue
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}

func isInitialCapital(s string) bool {
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}

func isAllLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r == '_' || (r >= '0' && r <= '9'):
			continue
		case r >= 'a' && r <= 'z':
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
