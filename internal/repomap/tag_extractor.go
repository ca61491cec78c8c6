package repomap

import (
	"context"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

// tagExtractor implements C2: given a file's content and language, produce
// an ordered FileTags. Extraction never throws; a grammar-level syntax
// error yields an empty FileTags plus a diagnostic.
type tagExtractor struct {
	parser *treeSitterParser
}

func newTagExtractor(parser *treeSitterParser) *tagExtractor {
	return &tagExtractor{parser: parser}
}

// nodeRule associates a tree-sitter node type with the Tag kind it yields
// and the strategy for recovering the identifier name from it.
type nodeRule struct {
	kind      TagKind
	entity    EntityKind // meaningful only when kind == TagDefinition; the zero value is treated as EntityFunction
	nameField string     // field name to read the identifier from, if non-empty
	nameType  string     // fall back: first descendant of this node type
}

// languageRules is the closed per-language dispatch table spec.md §9
// ("Polymorphism over languages") calls for: a variant per language, not an
// open class hierarchy. Node type names are the ones go-tree-sitter's
// bundled grammars produce.
var languageRules = map[string]map[string]nodeRule{
	"go": {
		"function_declaration": {kind: TagDefinition, nameField: "name"},
		"method_declaration":   {kind: TagDefinition, nameField: "name"},
		"type_spec":            {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"import_spec":          {kind: TagImport, nameType: "interpreted_string_literal"},
		"call_expression":      {kind: TagReference, nameType: "identifier"},
	},
	"python": {
		"function_definition": {kind: TagDefinition, nameField: "name"},
		"class_definition":    {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"import_statement":    {kind: TagImport, nameType: "dotted_name"},
		"import_from_statement": {kind: TagImport, nameType: "dotted_name"},
		"call":                {kind: TagReference, nameType: "identifier"},
	},
	"javascript": {
		"function_declaration": {kind: TagDefinition, nameField: "name"},
		"class_declaration":    {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"method_definition":    {kind: TagDefinition, nameField: "name"},
		"import_statement":     {kind: TagImport, nameType: "string"},
		"call_expression":      {kind: TagReference, nameType: "identifier"},
	},
	"typescript": {
		"function_declaration": {kind: TagDefinition, nameField: "name"},
		"class_declaration":    {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"interface_declaration": {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"method_definition":    {kind: TagDefinition, nameField: "name"},
		"import_statement":     {kind: TagImport, nameType: "string"},
		"call_expression":      {kind: TagReference, nameType: "identifier"},
	},
	"java": {
		"class_declaration":     {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"interface_declaration": {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"method_declaration":    {kind: TagDefinition, nameField: "name"},
		"import_declaration":    {kind: TagImport, nameType: "scoped_identifier"},
		"method_invocation":     {kind: TagReference, nameField: "name"},
	},
	"c": {
		"function_definition": {kind: TagDefinition, nameType: "identifier"},
		"struct_specifier":    {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"preproc_include":     {kind: TagImport, nameType: "string_literal"},
		"call_expression":     {kind: TagReference, nameField: "function"},
	},
	"cpp": {
		"function_definition": {kind: TagDefinition, nameType: "identifier"},
		"class_specifier":     {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"struct_specifier":    {kind: TagDefinition, entity: EntityClass, nameField: "name"},
		"preproc_include":     {kind: TagImport, nameType: "string_literal"},
		"call_expression":     {kind: TagReference, nameField: "function"},
	},
}

// Extract is C2's contract: pure with respect to content and language,
// identical inputs produce identical outputs.
func (te *tagExtractor) Extract(ctx context.Context, path string, content []byte, language string) FileTags {
	ft := FileTags{Path: path}

	if !te.parser.supports(language) {
		ft.Diagnostics = append(ft.Diagnostics, "no grammar registered for language: "+language)
		return ft
	}

	tree, err := te.parser.parseSource(ctx, content, language)
	if err != nil {
		ft.Diagnostics = append(ft.Diagnostics, err.Error())
		return ft
	}
	defer tree.Close()

	rules, ok := languageRules[language]
	if !ok {
		ft.Diagnostics = append(ft.Diagnostics, "no extraction rules for language: "+language)
		return ft
	}

	root := tree.RootNode()
	if root.HasError() {
		ft.Diagnostics = append(ft.Diagnostics, "syntax error while parsing "+path)
		return ft
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if rule, ok := rules[n.Type()]; ok {
			if tag, ok := te.buildTag(n, content, path, language, rule); ok {
				ft.Tags = append(ft.Tags, tag)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	return ft
}

func (te *tagExtractor) buildTag(n *sitter.Node, content []byte, path, language string, rule nodeRule) (Tag, bool) {
	var nameNode *sitter.Node
	if rule.nameField != "" {
		nameNode = n.ChildByFieldName(rule.nameField)
	}
	if nameNode == nil && rule.nameType != "" {
		nameNode = firstDescendantOfType(n, rule.nameType)
	}
	if nameNode == nil {
		return Tag{}, false
	}
	name := trimQuotes(nameNode.Content(content))
	if name == "" || name == "unknown" {
		return Tag{}, false
	}
	entity := rule.entity
	if rule.kind == TagDefinition && entity == "" {
		entity = EntityFunction
	}
	return Tag{
		Name:     name,
		Kind:     rule.kind,
		Entity:   entity,
		Path:     path,
		Line:     int(n.StartPoint().Row) + 1,
		Language: language,
	}, true
}

func firstDescendantOfType(n *sitter.Node, nodeType string) *sitter.Node {
	if n.Type() == nodeType {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstDescendantOfType(n.Child(i), nodeType); found != nil {
			return found
		}
	}
	return nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// extractTimeout bounds a single file's parse; the orchestrator (C4) uses
// this as the per-file ceiling spec.md §5 requires without naming a value.
const extractTimeout = 5 * time.Second
