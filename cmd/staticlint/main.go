// Package main provides the staticlint multichecker for this project.
//
// Build:
//
//	go build -o staticlint ./cmd/staticlint
//
// Usage:
//
//	./staticlint ./...
//
// Analyzers:
//
// Std passes (golang.org/x/tools/go/analysis/passes):
//
//	assign, atomic, bools, buildtag, composite, copylock, errorsas,
//	ifaceassert, loopclosure, lostcancel, nilfunc, printf, shadow, shift,
//	sigchanyzer, stdmethods, stringintconv, structtag, tests, unreachable,
//	unusedresult.
//
// Staticcheck (honnef.co/go/tools): all SA* rules, plus ST1000 (package comment).
//
// Public analyzers:
//
//	bodyclose (github.com/timakin/bodyclose) - http.Response.Body is closed.
//	nilerr    (github.com/gostaticanalysis/nilerr) - no nil return inside `if err != nil`.
//
// Custom:
//
//	nostdout - stdout carries PUTVAL records only; no fmt.Print*, print/println,
//	or os.Stdout outside package main.
package main

import (
	"strings"

	"github.com/gostaticanalysis/nilerr"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/remicollet/collectd/internal/analyzers/nostdout"

	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/ifaceassert"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
)

func collect() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		assign.Analyzer, atomic.Analyzer, bools.Analyzer, buildtag.Analyzer, composite.Analyzer,
		copylock.Analyzer, errorsas.Analyzer, ifaceassert.Analyzer, loopclosure.Analyzer,
		lostcancel.Analyzer, nilfunc.Analyzer, printf.Analyzer, shadow.Analyzer, shift.Analyzer,
		sigchanyzer.Analyzer, stdmethods.Analyzer, stringintconv.Analyzer, structtag.Analyzer,
		tests.Analyzer, unreachable.Analyzer, unusedresult.Analyzer,

		nostdout.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			list = append(list, a.Analyzer)
		}
	}
	for _, a := range stylecheck.Analyzers {
		if a.Analyzer.Name == "ST1000" {
			list = append(list, a.Analyzer)
		}
	}

	return append(list, bodyclose.Analyzer, nilerr.Analyzer)
}

func main() {
	multichecker.Main(collect()...)
}
