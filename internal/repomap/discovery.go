package repomap

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"repomap/internal/logging"
)

// gitignoreRule is one parsed line of a .gitignore file, per the subset
// spec.md §6 names: literal prefixes, `dir/` directory patterns, and
// `*`-prefixed globs. Blank lines and `#` comments are dropped during
// parsing; negation is not supported.
type gitignoreRule struct {
	pattern   string
	dirOnly   bool
	isGlob    bool
}

func parseGitignore(path string) ([]gitignoreRule, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []gitignoreRule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		rule := gitignoreRule{pattern: line}
		if strings.HasSuffix(rule.pattern, "/") {
			rule.dirOnly = true
			rule.pattern = strings.TrimSuffix(rule.pattern, "/")
		}
		if strings.HasPrefix(rule.pattern, "*") {
			rule.isGlob = true
		}
		rules = append(rules, rule)
	}
	return rules, scanner.Err()
}

func matchesIgnore(rules []gitignoreRule, relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	for _, r := range rules {
		if r.dirOnly && !isDir {
			// A dir-only rule can still match an ancestor directory of a file.
			if !strings.Contains("/"+relPath+"/", "/"+r.pattern+"/") {
				continue
			}
			return true
		}
		if r.isGlob {
			if matched, _ := doublestar.Match(r.pattern, filepath.Base(relPath)); matched {
				return true
			}
			if matched, _ := doublestar.Match(r.pattern, relPath); matched {
				return true
			}
			continue
		}
		// Literal prefix match, anchored at a path segment boundary.
		if relPath == r.pattern || strings.HasPrefix(relPath, r.pattern+"/") {
			return true
		}
		if matched, _ := doublestar.Match(r.pattern, relPath); matched {
			return true
		}
	}
	return false
}

// DiscoverFiles walks root, honoring a .gitignore at the root, and returns
// the project-relative paths of every file whose extension is in
// extensions (spec.md §4.1). Ordering is unspecified but deterministic:
// filepath.Walk already yields lexical order per directory.
func DiscoverFiles(root string, extensions []string, log *logging.Logger) ([]string, error) {
	if log == nil {
		log = logging.NewLoggerWithName("discovery")
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, NewIoError(root, "project root is not readable", err)
	}

	rules, err := parseGitignore(filepath.Join(root, ".gitignore"))
	if err != nil {
		log.Warn("failed to parse .gitignore: %v", err)
	}

	extSet := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	var out []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			log.Warn("skipping unreadable path %s: %v", path, walkErr)
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel == ".git" || matchesIgnore(rules, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesIgnore(rules, rel, false) {
			return nil
		}
		if _, ok := extSet[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, NewIoError(root, "failed walking project tree", err)
	}
	return out, nil
}
