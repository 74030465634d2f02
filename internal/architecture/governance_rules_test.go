package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "pbi-rag"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/config",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/config",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "config may depend on domain only",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "service should depend on domain, config, and outbound client packages",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden: []string{
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "api should depend on service, domain, and middleware packages",
	},
	{
		sourcePrefix: modulePath + "/internal/db",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/middleware",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "db should depend on domain and db-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/middleware",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
		},
		hint: "middleware should depend on config, domain, and middleware-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/powerbi",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "outbound clients depend on domain and config only",
	},
	{
		sourcePrefix: modulePath + "/internal/search",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "outbound clients depend on domain and config only",
	},
	{
		sourcePrefix: modulePath + "/internal/storage",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "outbound clients depend on domain and config only",
	},
	{
		sourcePrefix: modulePath + "/internal/ui",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/powerbi",
			modulePath + "/internal/search",
			modulePath + "/internal/service",
			modulePath + "/internal/storage",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "ui reads run history through its own interfaces",
	},
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func internalRootDir() string {
	return filepath.Join(repoRootDir(), "internal")
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range architectureRules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	return matchingForbiddenPrefix(importPath, forbidden) != ""
}

func matchingForbiddenPrefix(importPath string, forbidden []string) string {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return prefix
		}
	}
	return ""
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

func packageImportPath(file string) string {
	dir := filepath.ToSlash(filepath.Dir(file))
	idx := strings.Index(dir, "/internal/")
	if idx >= 0 {
		return modulePath + dir[idx:]
	}
	return modulePath + "/" + dir
}

func isTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func parseImports(t *testing.T, file string) []string {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	require.NoErrorf(t, err, "parse imports for %s", file)

	imports := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, "\""))
	}
	return imports
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
