package repomap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractGoFunctionAndCallTags(t *testing.T) {
	code := []byte(`package main

import "fmt"

func greet(name string) {
	fmt.Println(name)
}

func main() {
	greet("world")
}
`)
	extractor := newTagExtractor(newTreeSitterParser())
	ft := extractor.Extract(context.Background(), "main.go", code, "go")

	require.Empty(t, ft.Diagnostics)

	var defs, refs []string
	for _, tag := range ft.Tags {
		switch tag.Kind {
		case TagDefinition:
			defs = append(defs, tag.Name)
		case TagReference:
			refs = append(refs, tag.Name)
		}
	}
	assert.Contains(t, defs, "greet")
	assert.Contains(t, defs, "main")
	assert.Contains(t, refs, "greet")
}

func TestExtractPythonDefinitionsAndImport(t *testing.T) {
	code := []byte(`import os

def load(path):
    return os.path.exists(path)
`)
	extractor := newTagExtractor(newTreeSitterParser())
	ft := extractor.Extract(context.Background(), "loader.py", code, "python")

	var names []string
	for _, tag := range ft.Tags {
		names = append(names, tag.Name)
	}
	assert.Contains(t, names, "load")
	assert.Contains(t, names, "os")
}

func TestExtractPythonClassDefinitionTaggedAsClassEntity(t *testing.T) {
	code := []byte(`class Loader:
    def run(self):
        pass
`)
	extractor := newTagExtractor(newTreeSitterParser())
	ft := extractor.Extract(context.Background(), "loader.py", code, "python")

	var classEntity, funcEntity EntityKind
	for _, tag := range ft.Tags {
		if tag.Kind != TagDefinition {
			continue
		}
		switch tag.Name {
		case "Loader":
			classEntity = tag.Entity
		case "run":
			funcEntity = tag.Entity
		}
	}
	assert.Equal(t, EntityClass, classEntity)
	assert.Equal(t, EntityFunction, funcEntity)
}

func TestExtractUnsupportedLanguageReturnsDiagnostic(t *testing.T) {
	extractor := newTagExtractor(newTreeSitterParser())
	ft := extractor.Extract(context.Background(), "main.rs", []byte("fn main() {}"), "rust")

	assert.Empty(t, ft.Tags)
	assert.NotEmpty(t, ft.Diagnostics)
}

func TestExtractIsPureForIdenticalInput(t *testing.T) {
	code := []byte("package p\n\nfunc f() {}\n")
	extractor := newTagExtractor(newTreeSitterParser())

	first := extractor.Extract(context.Background(), "p.go", code, "go")
	second := extractor.Extract(context.Background(), "p.go", code, "go")

	assert.Equal(t, first.Tags, second.Tags)
}

func TestTrimQuotesStripsMatchingDelimiters(t *testing.T) {
	assert.Equal(t, "fmt", trimQuotes(`"fmt"`))
	assert.Equal(t, "fmt", trimQuotes("fmt"))
	assert.Equal(t, "x", trimQuotes("'x'"))
}
