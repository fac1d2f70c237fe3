// Package nostdout implements an analyzer that keeps stdout reserved for the
// collectd protocol stream.
package nostdout

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports fmt.Print, fmt.Printf, fmt.Println and the print/println
// builtins anywhere, and references to os.Stdout outside package main.
// Package main is where stdout is handed to the emitter.
var Analyzer = &analysis.Analyzer{
	Name: "nostdout",
	Doc:  "forbid writing to stdout outside the PUTVAL emitter",
	Run:  run,
}

var printFuncs = map[string]bool{"Print": true, "Printf": true, "Println": true}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil || strings.HasSuffix(pass.Pkg.Path(), "/cmd/staticlint") {
		return nil, nil
	}
	isMain := pass.Pkg.Name() == "main"

	for _, f := range pass.Files {
		fn := pass.Fset.Position(f.Pos()).Filename
		if strings.Contains(fn, "/.cache/go-build/") || isGenerated(f) || importsTesting(f) {
			continue
		}

		ast.Inspect(f, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.SelectorExpr:
				obj := pass.TypesInfo.Uses[n.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				switch {
				case obj.Pkg().Path() == "fmt" && printFuncs[obj.Name()]:
					pass.Reportf(n.Pos(), "fmt.%s writes to stdout; use the logger or the emitter", obj.Name())
				case obj.Pkg().Path() == "os" && obj.Name() == "Stdout" && !isMain:
					pass.Reportf(n.Pos(), "os.Stdout is reserved for PUTVAL records; accept an io.Writer instead")
				}
			case *ast.CallExpr:
				id, ok := n.Fun.(*ast.Ident)
				if !ok {
					return true
				}
				if b, ok := pass.TypesInfo.Uses[id].(*types.Builtin); ok && (b.Name() == "print" || b.Name() == "println") {
					pass.Reportf(n.Pos(), "builtin %s writes to stderr unbuffered; use the logger", b.Name())
				}
			}
			return true
		})
	}
	return nil, nil
}

func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.Contains(c.Text, "Code generated") && strings.Contains(c.Text, "DO NOT EDIT") {
				return true
			}
		}
	}
	return false
}

func importsTesting(f *ast.File) bool {
	for _, im := range f.Imports {
		if p, _ := strconv.Unquote(im.Path.Value); p == "testing" || p == "testing/internal/testdeps" {
			return true
		}
	}
	return false
}
