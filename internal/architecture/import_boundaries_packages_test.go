package architecture_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// TestImportBoundaries_PackagesParity re-derives the import graph through
// go/packages and cross-checks it against the parser-based scan, so the
// two views of the boundaries cannot silently drift apart.
func TestImportBoundaries_PackagesParity(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports,
		Dir:  repoRootDir(),
	}
	pkgs, err := packages.Load(cfg, "./internal/...")
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)

	fromPackages := make(map[string]bool)
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}
		require.Emptyf(t, pkg.Errors, "load %s", pkg.PkgPath)

		rule, ok := findRule(pkg.PkgPath)
		if !ok {
			continue
		}
		for importPath := range pkg.Imports {
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if violatesRule(importPath, rule.forbidden) {
				fromPackages[pkg.PkgPath+" -> "+importPath] = true
			}
		}
	}

	fromParser := make(map[string]bool)
	files, err := collectGoFiles(internalRootDir())
	require.NoError(t, err)
	for _, file := range files {
		if isTestFile(file) {
			continue
		}
		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}
		for _, importPath := range parseImports(t, file) {
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if violatesRule(importPath, rule.forbidden) {
				fromParser[sourcePkg+" -> "+importPath] = true
			}
		}
	}

	require.Equal(t, sortedEdges(fromParser), sortedEdges(fromPackages),
		"package-graph import boundary check must match parser-based check")
}

func sortedEdges(set map[string]bool) []string {
	edges := make([]string, 0, len(set))
	for edge := range set {
		edges = append(edges, edge)
	}
	sort.Strings(edges)
	return edges
}
