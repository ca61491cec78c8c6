package repomap

import (
	"context"
	"path"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ImportAnalyzer is C6: language-specific extraction of import statements,
// plus resolution of relative and in-project absolute imports to files.
type ImportAnalyzer struct {
	parser *treeSitterParser
}

func NewImportAnalyzer(parser *treeSitterParser) *ImportAnalyzer {
	return &ImportAnalyzer{parser: parser}
}

// Analyze extracts FileImports for one file. Failures never abort the
// project scan: a single file's failure yields an empty FileImports with
// diagnostics.
func (a *ImportAnalyzer) Analyze(ctx context.Context, path, language string, content []byte) FileImports {
	fi := FileImports{Path: path, Language: language}
	switch language {
	case "python":
		fi.Imports = a.pythonImports(ctx, content)
	case "javascript", "typescript":
		fi.Imports = a.jsImports(content)
	case "java":
		fi.Imports = a.javaImports(content)
	case "go":
		fi.Imports = a.goImports(content)
	default:
		fi.Diagnostics = append(fi.Diagnostics, "no import parser for language: "+language)
	}
	return fi
}

// --- Python: grammar-level AST via tree-sitter ---

func (a *ImportAnalyzer) pythonImports(ctx context.Context, content []byte) []Import {
	tree, err := a.parser.parseSource(ctx, content, "python")
	if err != nil {
		return nil
	}
	defer tree.Close()

	var imports []Import
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		line := int(n.StartPoint().Row) + 1
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(i)
				switch c.Type() {
				case "dotted_name":
					imports = append(imports, Import{Module: c.Content(content), Kind: ImportAbsolute, Line: line})
				case "aliased_import":
					name := c.ChildByFieldName("name")
					alias := c.ChildByFieldName("alias")
					imp := Import{Kind: ImportAbsolute, Line: line}
					if name != nil {
						imp.Module = name.Content(content)
					}
					if alias != nil {
						imp.Alias = alias.Content(content)
					}
					imports = append(imports, imp)
				}
			}
		case "import_from_statement":
			moduleNode := n.ChildByFieldName("module_name")
			module := ""
			level := 0
			if moduleNode != nil {
				module = moduleNode.Content(content)
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				if n.Child(i).Type() == "." {
					level++
				}
			}
			if level == 0 {
				// The grammar nests the dots of `from ..pkg import x` inside
				// the module_name node, so count them from its text.
				level = len(module) - len(strings.TrimLeft(module, "."))
			}
			var symbols []string
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(i)
				if c.Type() == "dotted_name" && c != moduleNode {
					symbols = append(symbols, c.Content(content))
				}
				if c.Type() == "aliased_import" {
					name := c.ChildByFieldName("name")
					if name != nil {
						symbols = append(symbols, name.Content(content))
					}
				}
			}
			imports = append(imports, Import{
				Module:   module,
				Symbols:  symbols,
				Relative: level > 0,
				Kind:     relOrAbs(level > 0),
				Line:     line,
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return imports
}

func relOrAbs(relative bool) ImportKind {
	if relative {
		return ImportRelative
	}
	return ImportAbsolute
}

// --- JavaScript/TypeScript: regex-based, per spec.md §4.6 ---

var (
	reESImport   = regexp.MustCompile(`import\s*(?:\{([^}]*)\}|(\*\s*as\s+\w+)|(\w+))?\s*(?:,\s*\{([^}]*)\})?\s*from\s*['"]([^'"]+)['"]`)
	reRequire    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	reDynamic    = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
)

func (a *ImportAnalyzer) jsImports(content []byte) []Import {
	text := string(content)
	lineOf := lineIndexer(text)
	var imports []Import

	for _, loc := range reESImport.FindAllStringSubmatchIndex(text, -1) {
		m := reESImport.FindStringSubmatch(text[loc[0]:loc[1]])
		module := m[5]
		var symbols []string
		if m[1] != "" {
			for _, s := range strings.Split(m[1], ",") {
				s = strings.TrimSpace(s)
				if s != "" {
					symbols = append(symbols, s)
				}
			}
		}
		if m[4] != "" {
			for _, s := range strings.Split(m[4], ",") {
				s = strings.TrimSpace(s)
				if s != "" {
					symbols = append(symbols, s)
				}
			}
		}
		imports = append(imports, Import{
			Module:   module,
			Symbols:  symbols,
			Relative: strings.HasPrefix(module, "."),
			Kind:     relOrAbs(strings.HasPrefix(module, ".")),
			Line:     lineOf(loc[0]),
		})
	}
	for _, loc := range reRequire.FindAllStringSubmatchIndex(text, -1) {
		m := reRequire.FindStringSubmatch(text[loc[0]:loc[1]])
		imports = append(imports, Import{
			Module:   m[1],
			Relative: strings.HasPrefix(m[1], "."),
			Kind:     relOrAbs(strings.HasPrefix(m[1], ".")),
			Line:     lineOf(loc[0]),
		})
	}
	for _, loc := range reDynamic.FindAllStringSubmatchIndex(text, -1) {
		m := reDynamic.FindStringSubmatch(text[loc[0]:loc[1]])
		imports = append(imports, Import{
			Module:   m[1],
			Relative: strings.HasPrefix(m[1], "."),
			Kind:     relOrAbs(strings.HasPrefix(m[1], ".")),
			Line:     lineOf(loc[0]),
		})
	}
	sortImportsByLine(imports)
	return imports
}

func lineIndexer(text string) func(offset int) int {
	return func(offset int) int {
		return strings.Count(text[:offset], "\n") + 1
	}
}

func sortImportsByLine(imports []Import) {
	for i := 1; i < len(imports); i++ {
		for j := i; j > 0 && imports[j].Line < imports[j-1].Line; j-- {
			imports[j], imports[j-1] = imports[j-1], imports[j]
		}
	}
}

// --- Java: `import <dotted>;`, static imports dropped ---

var reJavaImport = regexp.MustCompile(`(?m)^\s*import\s+(static\s+)?([\w.]+)(\.\*)?\s*;`)

func (a *ImportAnalyzer) javaImports(content []byte) []Import {
	text := string(content)
	lineOf := lineIndexer(text)
	var imports []Import
	for _, loc := range reJavaImport.FindAllStringSubmatchIndex(text, -1) {
		m := reJavaImport.FindStringSubmatch(text[loc[0]:loc[1]])
		if m[1] != "" { // static import, dropped per spec.md §4.6
			continue
		}
		imports = append(imports, Import{
			Module: m[2],
			Kind:   ImportAbsolute,
			Line:   lineOf(loc[0]),
		})
	}
	return imports
}

// --- Go: single `import "M"` and grouped `import ( … )` forms ---

var (
	reGoSingle = regexp.MustCompile(`(?m)^\s*import\s+(?:(\w+)\s+)?"([^"]+)"`)
	reGoGroup  = regexp.MustCompile(`(?ms)^\s*import\s*\(\s*(.*?)\)`)
	reGoGroupLine = regexp.MustCompile(`(\w+)?\s*"([^"]+)"`)
)

func (a *ImportAnalyzer) goImports(content []byte) []Import {
	text := string(content)
	lineOf := lineIndexer(text)
	var imports []Import

	if groupLoc := reGoGroup.FindStringSubmatchIndex(text); groupLoc != nil {
		body := text[groupLoc[2]:groupLoc[3]]
		bodyStart := groupLoc[2]
		for _, loc := range reGoGroupLine.FindAllStringSubmatchIndex(body, -1) {
			m := reGoGroupLine.FindStringSubmatch(body[loc[0]:loc[1]])
			imports = append(imports, Import{
				Module: m[2],
				Alias:  m[1],
				Kind:   ImportAbsolute,
				Line:   lineOf(bodyStart + loc[0]),
			})
		}
		return imports
	}

	for _, loc := range reGoSingle.FindAllStringSubmatchIndex(text, -1) {
		m := reGoSingle.FindStringSubmatch(text[loc[0]:loc[1]])
		imports = append(imports, Import{
			Module: m[2],
			Alias:  m[1],
			Kind:   ImportAbsolute,
			Line:   lineOf(loc[0]),
		})
	}
	return imports
}

// --- Resolution ---

// Resolve attempts to resolve every Import in fi to a project-relative
// file path. knownFiles is the discovered file set (C1's output);
// extensions is the analyzable extension set used to probe candidates.
func (a *ImportAnalyzer) Resolve(fi *FileImports, knownFiles map[string]struct{}, extensions []string) {
	dir := path.Dir(fi.Path)
	for i := range fi.Imports {
		imp := &fi.Imports[i]
		if imp.Relative {
			imp.ResolvedPath = resolveRelative(dir, imp.Module, knownFiles, extensions)
		} else {
			imp.ResolvedPath = resolveAbsoluteBestEffort(dir, imp.Module, knownFiles, extensions)
		}
		if imp.ResolvedPath == "" {
			imp.Kind = ImportExternal
		}
	}
}

func resolveRelative(fromDir, module string, knownFiles map[string]struct{}, extensions []string) string {
	// TrimLeft strips every leading dot, not just one occurrence, so
	// "..pkg" yields level 2 rather than 1 (TrimPrefix would only strip
	// the first dot).
	rel := strings.TrimLeft(module, ".")
	level := len(module) - len(rel)
	dir := fromDir
	for i := 1; i < level; i++ {
		dir = path.Dir(dir)
	}
	target := strings.ReplaceAll(strings.Trim(rel, "."), ".", "/")
	base := path.Join(dir, target)
	return probeCandidates(base, knownFiles, extensions)
}

func resolveAbsoluteBestEffort(fromDir, module string, knownFiles map[string]struct{}, extensions []string) string {
	segment := strings.ReplaceAll(module, ".", "/")
	if r := probeCandidates(path.Join(fromDir, path.Base(segment)), knownFiles, extensions); r != "" {
		return r
	}
	return probeCandidates(segment, knownFiles, extensions)
}

func probeCandidates(base string, knownFiles map[string]struct{}, extensions []string) string {
	if _, ok := knownFiles[base]; ok {
		return base
	}
	for _, ext := range extensions {
		candidate := base + ext
		if _, ok := knownFiles[candidate]; ok {
			return candidate
		}
	}
	for _, ext := range extensions {
		candidate := path.Join(base, "__init__"+ext)
		if _, ok := knownFiles[candidate]; ok {
			return candidate
		}
		candidate = path.Join(base, "index"+ext)
		if _, ok := knownFiles[candidate]; ok {
			return candidate
		}
	}
	return ""
}
