// Package analyzer implements the orchestrator of spec §5: lexer → parser
// → signature pass → per-function/per-method CFG construction → dataflow
// solve → sense facts, for one source buffer. Grounded on the teacher's
// top-level pipeline shape (cmd/dwscript/cmd/compile.go: tokenize, parse,
// then run each configured pass over the tree) but restructured around
// per-function graphs instead of a single whole-file pass.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/cfg"
	"github.com/gscls/analyzer/internal/dataflow"
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/eval"
	"github.com/gscls/analyzer/internal/lexer"
	"github.com/gscls/analyzer/internal/parser"
	"github.com/gscls/analyzer/internal/sense"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
)

// Options configures one Analyze call. Every field is optional.
type Options struct {
	API              *apidata.Provider
	Fields           eval.FieldRegistry
	Logger           *slog.Logger
	BudgetMultiplier int
}

// Result is everything a caller (the CLI, the workspace scheduler, an
// editor integration) needs from one analyzed buffer.
type Result struct {
	Script      *ast.Script
	Defs        *sig.Table
	Diagnostics []diag.Diagnostic
	Sense       *sense.Facts
}

// Analyze runs the full pipeline over src, tagging every diagnostic with
// file. It checks ctx for cancellation between top-level units (spec §5
// "long-running analysis must be cancellable") rather than inside a
// single function's solve, since a function's own dataflow fixed point is
// already bounded by its iteration budget.
func Analyze(ctx context.Context, file, src string, opts Options) (*Result, error) {
	api := opts.API
	if api == nil {
		api = apidata.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := lexer.New(src).Tokenize()
	p := parser.New(tokens)
	script, diags := p.Parse()

	defs, sigDiags := sig.Analyze(script, file)
	diags = append(diags, sigDiags...)

	res := &Result{Script: script, Defs: defs}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	globals := buildGlobals(defs)
	known := defs.Namespaces

	base := dataflow.Context{
		Defs: defs, API: api, Fields: opts.Fields, Globals: globals,
		KnownNamespaces: known, Logger: logger, BudgetMultiplier: opts.BudgetMultiplier,
	}

	for _, ns := range script.Namespaces {
		for _, fn := range ns.Funcs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			diags = append(diags, analyzeFunc(base, ns.Name, nil, fn)...)
		}
	}
	for _, fn := range script.Functions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		diags = append(diags, analyzeFunc(base, "", nil, fn)...)
	}
	for _, cd := range script.Classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		diags = append(diags, analyzeClass(base, cd)...)
	}

	for i := range diags {
		diags[i].File = file
	}
	diag.SortStable(diags)
	res.Diagnostics = diags
	res.Sense = sense.Build(script, defs, api)
	return res, nil
}

// buildGlobals projects the definitions table into the symbol table's
// exported-symbol map (spec §6 "Inputs": function/class records keyed by
// namespace::name). Built-in functions are intentionally absent here —
// internal/eval resolves those through the api.Provider instead.
func buildGlobals(defs *sig.Table) map[string]symtab.GlobalSymbol {
	out := make(map[string]symtab.GlobalSymbol, len(defs.Funcs)+len(defs.Classes))
	for k, f := range defs.Funcs {
		out[k] = symtab.GlobalSymbol{
			Kind: symtab.GlobalFunction, Namespace: f.Namespace, Name: f.Name,
			Overloads: []symtab.Overload{paramsToOverload(f.Params)},
		}
	}
	for k, c := range defs.Classes {
		out[k] = symtab.GlobalSymbol{Kind: symtab.GlobalClass, Name: c.Name, ClassID: c.Name}
	}
	return out
}

func paramsToOverload(params []*ast.Param) symtab.Overload {
	min, max := 0, len(params)
	seenDefault := false
	for _, p := range params {
		if p.IsVararg {
			max = -1
			break
		}
		if p.Default != nil {
			seenDefault = true
		} else if !seenDefault {
			min++
		}
	}
	return symtab.Overload{MinParams: min, MaxParams: max, Vararg: max == -1, Return: types.Any}
}

// entryParams builds the Entry node's seeded IN environment: every
// parameter bound to Any (spec §4.4 "Parameters carry no caller-supplied
// type information; they enter a function as Any").
func entryParams(params []*ast.Param) dataflow.Env {
	env := make(dataflow.Env, len(params))
	for _, p := range params {
		env[symtab.FoldForCompare(p.Name)] = &symtab.Variable{Name: p.Name, Value: types.AnyData()}
	}
	return env
}

func analyzeFunc(base dataflow.Context, ns string, class *symtab.ClassInfo, fn *ast.FunDefn) []diag.Diagnostic {
	ctx := base
	ctx.Namespace = ns
	ctx.Class = class
	g := cfg.Build(fn)
	res := dataflow.Solve(g, ctx, entryParams(fn.Params))
	return res.Diagnostics
}

func analyzeStructor(base dataflow.Context, class *symtab.ClassInfo, st *ast.Structor) []diag.Diagnostic {
	ctx := base
	ctx.Class = class
	g := cfg.BuildStructor(st)
	res := dataflow.Solve(g, ctx, entryParams(st.Params))
	return res.Diagnostics
}

func analyzeClass(base dataflow.Context, cd *ast.ClassDefn) []diag.Diagnostic {
	decl, ok := base.Defs.Classes[cd.Name]
	if !ok {
		return nil
	}
	class := decl.ClassMembersSet()
	var diags []diag.Diagnostic
	diags = append(diags, memberInitDiagnostics(base, class, cd)...)
	for _, m := range cd.Methods {
		diags = append(diags, analyzeFunc(base, cd.Name, class, m)...)
	}
	if cd.Ctor != nil {
		diags = append(diags, analyzeStructor(base, class, cd.Ctor)...)
	}
	if cd.Dtor != nil {
		diags = append(diags, analyzeStructor(base, class, cd.Dtor)...)
	}
	return diags
}

// memberInitDiagnostics evaluates each field initializer once under an
// empty local environment; there is no flow to solve for a single
// expression, so this runs the expression analyzer directly rather than
// building a one-node CFG for it.
func memberInitDiagnostics(base dataflow.Context, class *symtab.ClassInfo, cd *ast.ClassDefn) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, m := range cd.Members {
		if m.Init == nil {
			continue
		}
		t := symtab.New(base.Globals, cd.Name, class, base.KnownNamespaces)
		ev := eval.New(t, base.Defs, base.API, 0)
		ev.Fields = base.Fields
		ev.Eval(m.Init)
		diags = append(diags, ev.Diags...)
	}
	return diags
}
