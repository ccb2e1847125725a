// Package dataflow implements the forward reaching-definitions solver of
// spec §4.4: a LIFO-worklist fixed point over a function's internal/cfg
// graph, threading internal/eval expression analysis through each node and
// narrowing per-edge environments on Decision/Iteration/Enumeration
// branches. Grounded on the teacher's multi-pass analysis shape
// (internal/semantic/passes/pass.go, pass_context.go: a shared context
// object threaded through a sequence of passes over the same tree) but
// rebuilt around a CFG worklist instead of a tree walk.
package dataflow

import (
	"log/slog"

	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/cfg"
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/eval"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/pkg/token"
)

// unreachableRange picks the best available source position for an
// unreachable CFG node: its origin statement (Decision/Iteration/etc.) or,
// for a plain BasicBlock, its first statement. A block with neither (an
// empty synthetic block, e.g. a loop's merge point) has nothing to anchor
// a diagnostic to and is skipped.
func unreachableRange(n *cfg.Node) (token.Range, bool) {
	if n.Origin != nil {
		return n.Origin.Range(), true
	}
	if len(n.Stmts) > 0 {
		return n.Stmts[0].Range(), true
	}
	return token.Range{}, false
}

// Env is one node's local-variable environment: a snapshot of the
// symtab.Table's local layer (spec §3 "IN/OUT environments").
type Env map[string]*symtab.Variable

func cloneEnv(e Env) Env {
	out := make(Env, len(e))
	for k, v := range e {
		cp := *v
		out[k] = &cp
	}
	return out
}

// Context bundles the collaborators that are constant across every node
// visit of one function/method graph (spec §6 "Exported-symbol map", "API
// data provider").
type Context struct {
	Defs            *sig.Table
	API             *apidata.Provider
	Fields          eval.FieldRegistry
	Globals         map[string]symtab.GlobalSymbol
	Namespace       string
	Class           *symtab.ClassInfo
	KnownNamespaces map[string]bool
	Logger          *slog.Logger
	// BudgetMultiplier scales the per-node iteration budget (internal/config
	// "solver iteration multiplier"); 0 falls back to the default of 5.
	BudgetMultiplier int
}

func (c Context) budgetMultiplier() int {
	if c.BudgetMultiplier > 0 {
		return c.BudgetMultiplier
	}
	return 5
}

func (c Context) newTable(env Env) *symtab.Table {
	t := symtab.New(c.Globals, c.Namespace, c.Class, c.KnownNamespaces)
	t.RestoreLocals(cloneEnv(env))
	return t
}

func (c Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

type edgeKey struct{ from, to int }

// Result is the converged state of one Solve call.
type Result struct {
	In             map[int]Env
	Out            map[int]Env
	Diagnostics    []diag.Diagnostic
	Iterations     int
	BudgetExceeded bool
}

// Solve runs the two-phase (silent, then diagnostic) fixed point of spec
// §4.4 over g, seeded with params as the entry node's IN environment
// (already-bound parameters, `self`/implicit bindings are modeled in
// ctx.Globals/ctx.Class rather than params).
func Solve(g *cfg.Graph, ctx Context, params Env) *Result {
	res := &Result{In: make(map[int]Env), Out: make(map[int]Env)}
	if g == nil || g.Entry == nil {
		return res
	}
	budget := 100
	if n := ctx.budgetMultiplier() * len(g.Nodes); n > budget {
		budget = n
	}

	edgeOut := make(map[edgeKey]Env)
	worklist := []*cfg.Node{g.Entry}
	queued := map[int]bool{g.Entry.ID: true}

	push := func(n *cfg.Node) {
		if !queued[n.ID] {
			queued[n.ID] = true
			worklist = append(worklist, n)
		}
	}

	for len(worklist) > 0 {
		if res.Iterations >= budget {
			res.BudgetExceeded = true
			ctx.logger().Warn("dataflow: iteration budget exceeded, stopping early",
				"budget", budget, "nodes", len(g.Nodes))
			break
		}
		res.Iterations++

		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		queued[n.ID] = false

		in := mergeIncoming(n, g, params, edgeOut, res.Out)
		if prev, ok := res.In[n.ID]; ok && symtab.Equal(prev, in) {
			continue
		}
		res.In[n.ID] = in

		base, trueOut, falseOut, _ := analyzeNode(ctx, n, in, true)
		res.Out[n.ID] = base

		for _, e := range n.Outgoing {
			candidate := base
			switch e.Kind {
			case cfg.True:
				if trueOut != nil {
					candidate = trueOut
				}
			case cfg.False:
				if falseOut != nil {
					candidate = falseOut
				}
			}
			key := edgeKey{n.ID, e.To.ID}
			if existing, ok := edgeOut[key]; !ok || !symtab.Equal(existing, candidate) {
				edgeOut[key] = candidate
				push(e.To)
			}
		}
	}

	for _, n := range g.Nodes {
		in, ok := res.In[n.ID]
		if !ok {
			continue
		}
		_, _, _, diags := analyzeNode(ctx, n, in, false)
		res.Diagnostics = append(res.Diagnostics, diags...)
	}

	for _, n := range g.Unreachable() {
		if n.Kind == cfg.FunctionExit {
			continue
		}
		r, ok := unreachableRange(n)
		if !ok {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, diag.New(r, diag.Warning, diag.UnreachableStatement))
	}

	return res
}

// mergeIncoming computes a node's IN environment per spec §4.4: the
// entry node seeds from params; every other node joins, over its
// incoming edges, the per-edge OUT when one has been computed, falling
// back to the source node's base OUT, discarding entries whose scope
// exceeds the target node's own.
func mergeIncoming(n *cfg.Node, g *cfg.Graph, params Env, edgeOut map[edgeKey]Env, out map[int]Env) Env {
	if n == g.Entry {
		return cloneEnv(params)
	}
	var merged Env
	for _, e := range n.Incoming {
		var src Env
		if eo, ok := edgeOut[edgeKey{e.From.ID, n.ID}]; ok {
			src = eo
		} else if o, ok := out[e.From.ID]; ok {
			src = o
		} else {
			continue
		}
		if merged == nil {
			merged = filterScope(src, n.Scope)
		} else {
			merged = Env(symtab.Merge(merged, src, n.Scope))
		}
	}
	if merged == nil {
		return Env{}
	}
	return merged
}

// filterScope returns a copy of e with entries scoped deeper than
// targetScope discarded (spec §3 symbol-table invariant).
func filterScope(e Env, targetScope int) Env {
	out := make(Env, len(e))
	for k, v := range e {
		if v.Scope > targetScope {
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}
