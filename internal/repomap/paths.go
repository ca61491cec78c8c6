package repomap

import (
	"path/filepath"
	"strings"
)

// normalizePath funnels a path through project-relative, slash-separated
// form before it is used as a graph or cache key, the way the original
// implementation's PathNormalizer does ahead of a lookup. It is wired into
// the Orchestrator's cache keys (C3/C4) and the Dependency Graph and Impact
// Analyzer's path-accepting lookups (C7/C9), so callers may pass an
// absolute path, a path relative to root, or an already-normalized one.
// root == "" means the caller has no meaningful root (tests working in
// path-relative terms already); in that case normalizePath only cleans and
// slash-converts path instead of relativizing it against root.
func normalizePath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(filepath.Clean(path))
	}
	abs := path
	if !filepath.IsAbs(path) {
		abs = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func languageForExt(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return "go", true
	case ".py":
		return "python", true
	case ".js", ".jsx":
		return "javascript", true
	case ".ts", ".tsx":
		return "typescript", true
	case ".java":
		return "java", true
	case ".c", ".h":
		return "c", true
	case ".cpp", ".cc", ".cxx", ".hpp":
		return "cpp", true
	default:
		return "", false
	}
}

// defaultAnalyzableExtensions is the extension set spec.md §4.1 names.
// .cs has no registered tree-sitter grammar in this module's dependency
// set; files with that extension are discovered (C1) but skipped by C2
// with a diagnostic rather than silently dropped.
var defaultAnalyzableExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".go", ".c", ".cpp", ".h", ".cs",
}
