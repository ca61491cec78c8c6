package repomap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImportAnalyzer() *ImportAnalyzer {
	return NewImportAnalyzer(newTreeSitterParser())
}

func TestPythonImportsAbsoluteAndFrom(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte(`import os
from pkg.mod import thing, other as o
`)
	fi := a.Analyze(context.Background(), "main.py", "python", code)
	require.Len(t, fi.Imports, 2)

	assert.Equal(t, "os", fi.Imports[0].Module)
	assert.Equal(t, ImportAbsolute, fi.Imports[0].Kind)

	assert.Equal(t, "pkg.mod", fi.Imports[1].Module)
}

func TestPythonRelativeImportCapturesModuleText(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte("from .utils import helper\n")
	fi := a.Analyze(context.Background(), "pkg/main.py", "python", code)
	require.Len(t, fi.Imports, 1)
	assert.Equal(t, ".utils", fi.Imports[0].Module)
}

func TestJSImportsES6NamedAndDefault(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte(`import { a, b as c } from './local';
import Default from 'pkg';
const x = require('other');
`)
	fi := a.Analyze(context.Background(), "index.js", "javascript", code)
	require.Len(t, fi.Imports, 3)

	assert.Equal(t, "./local", fi.Imports[0].Module)
	assert.True(t, fi.Imports[0].Relative)
	assert.Contains(t, fi.Imports[0].Symbols, "a")

	assert.Equal(t, "pkg", fi.Imports[1].Module)
	assert.Equal(t, "other", fi.Imports[2].Module)
}

func TestJavaImportDropsStatic(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte("import java.util.List;\nimport static java.lang.Math.max;\n")
	fi := a.Analyze(context.Background(), "Main.java", "java", code)
	require.Len(t, fi.Imports, 1)
	assert.Equal(t, "java.util.List", fi.Imports[0].Module)
}

func TestGoImportsGroupedForm(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte(`package main

import (
	"fmt"
	alias "os/exec"
)
`)
	fi := a.Analyze(context.Background(), "main.go", "go", code)
	require.Len(t, fi.Imports, 2)
	assert.Equal(t, "fmt", fi.Imports[0].Module)
	assert.Equal(t, "os/exec", fi.Imports[1].Module)
	assert.Equal(t, "alias", fi.Imports[1].Alias)
}

func TestGoImportsSingleForm(t *testing.T) {
	a := newTestImportAnalyzer()
	code := []byte("package main\n\nimport \"fmt\"\n")
	fi := a.Analyze(context.Background(), "main.go", "go", code)
	require.Len(t, fi.Imports, 1)
	assert.Equal(t, "fmt", fi.Imports[0].Module)
}

func TestResolveRelativeImportToKnownFile(t *testing.T) {
	a := newTestImportAnalyzer()
	fi := FileImports{Path: "pkg/a.py", Imports: []Import{{Module: ".b", Relative: true, Kind: ImportRelative}}}
	known := map[string]struct{}{"pkg/b.py": {}}

	a.Resolve(&fi, known, []string{".py"})
	assert.Equal(t, "pkg/b.py", fi.Imports[0].ResolvedPath)
	assert.Equal(t, ImportRelative, fi.Imports[0].Kind)
}

func TestResolveRelativeImportWithTwoLeadingDotsClimbsParentPackage(t *testing.T) {
	a := newTestImportAnalyzer()
	fi := FileImports{Path: "pkg/sub/a.py", Imports: []Import{{Module: "..b", Relative: true, Kind: ImportRelative}}}
	known := map[string]struct{}{"pkg/b.py": {}}

	a.Resolve(&fi, known, []string{".py"})
	assert.Equal(t, "pkg/b.py", fi.Imports[0].ResolvedPath)
}

func TestResolveUnresolvableImportMarksExternal(t *testing.T) {
	a := newTestImportAnalyzer()
	fi := FileImports{Path: "a.py", Imports: []Import{{Module: "numpy", Relative: false, Kind: ImportAbsolute}}}

	a.Resolve(&fi, map[string]struct{}{}, []string{".py"})
	assert.Equal(t, "", fi.Imports[0].ResolvedPath)
	assert.Equal(t, ImportExternal, fi.Imports[0].Kind)
}

func TestAnalyzeUnsupportedLanguageYieldsDiagnostic(t *testing.T) {
	a := newTestImportAnalyzer()
	fi := a.Analyze(context.Background(), "main.rs", "rust", []byte("fn main() {}"))
	assert.Empty(t, fi.Imports)
	assert.NotEmpty(t, fi.Diagnostics)
}
