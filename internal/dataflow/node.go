package dataflow

import (
	"github.com/gscls/analyzer/internal/cfg"
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/eval"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// analyzeNode runs the per-kind analyzer of spec §4.4 on n given its IN
// environment, returning the base OUT environment plus, for
// Decision/Iteration/Enumeration nodes, the narrowed OUT for the
// True/False successor edges (nil when no narrowing applies).
func analyzeNode(ctx Context, n *cfg.Node, in Env, silent bool) (base, trueOut, falseOut Env, diags []diag.Diagnostic) {
	t := ctx.newTable(in)
	ev := eval.New(t, ctx.Defs, ctx.API, n.Scope)
	ev.Fields = ctx.Fields
	ev.Silent = silent

	switch n.Kind {
	case cfg.BasicBlock:
		for _, s := range n.Stmts {
			execStmt(ev, s)
		}
	case cfg.Decision, cfg.Iteration:
		if n.Cond != nil {
			_, wt, wf := ev.EvalCond(n.Cond)
			base = Env(t.Snapshot())
			trueOut = applyFacts(base, wt)
			falseOut = applyFacts(base, wf)
		}
	case cfg.Enumeration:
		coll := ev.Eval(n.Coll)
		if !silent && !coll.Type.Intersects(types.Array|types.Struct|types.Any|types.Undefined) {
			diags = append(diags, diag.New(n.Origin.Range(), diag.Error, diag.CannotEnumerateType, coll.Type.String()))
		}
		base = Env(t.Snapshot())
		trueOut = cloneEnv(base)
		// The loop body's entry block carries the same Scope as the
		// Enumeration node itself (the builder only bumps scope for nodes
		// created while recursing into the body's statements), so key/value
		// must share that scope to survive the single-predecessor merge
		// into the body's entry block.
		if n.Key != "" {
			trueOut[symtab.FoldForCompare(n.Key)] = &symtab.Variable{Name: n.Key, Value: types.AnyData(), Scope: n.Scope}
		}
		if n.Value != "" {
			trueOut[symtab.FoldForCompare(n.Value)] = &symtab.Variable{Name: n.Value, Value: types.AnyData(), Scope: n.Scope}
		}
		// The Back edge from the body carries key/value into this node's
		// IN, so the after-loop edge drops them explicitly.
		falseOut = cloneEnv(base)
		if n.Key != "" {
			delete(falseOut, symtab.FoldForCompare(n.Key))
		}
		if n.Value != "" {
			delete(falseOut, symtab.FoldForCompare(n.Value))
		}
	case cfg.Switch:
		ev.Eval(n.Expr)
		if !silent {
			diags = append(diags, checkSwitchLabels(n)...)
		}
	case cfg.SwitchCaseDecision, cfg.FunctionEntry, cfg.FunctionExit, cfg.ClassEntry, cfg.ClassMembersBlock:
		// Structural nodes: no expression work, environment passes through.
	}

	if base == nil {
		base = Env(t.Snapshot())
	}
	return base, trueOut, falseOut, append(diags, ev.Diags...)
}

// applyFacts narrows base per facts, returning nil when facts is empty (no
// edge-specific environment needed).
func applyFacts(base Env, facts types.Facts) Env {
	if len(facts) == 0 {
		return nil
	}
	out := cloneEnv(base)
	for name, n := range facts {
		key := symtab.FoldForCompare(name)
		v, ok := out[key]
		if !ok {
			continue
		}
		nv := *v
		nv.Value = n.Apply(v.Value)
		out[key] = &nv
	}
	return out
}

func execStmt(ev *eval.Evaluator, s ast.Statement) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		evalExprStatement(ev, st)
	case *ast.Const:
		assignConst(ev, st)
	case *ast.Return:
		if st.Value != nil {
			ev.Eval(st.Value)
		}
	case *ast.Wait:
		if st.Value != nil {
			ev.Eval(st.Value)
		}
	case *ast.Break, *ast.Continue, *ast.Empty:
		// No expression work; CFG edges already encode the jump.
	default:
		// Any other statement kind is not evaluated here.
	}
}

// evalExprStatement evaluates st.X and, for expressions with no possible
// side effect, flags the statement as dead code (spec §4.7
// InvalidExpressionStatement).
func evalExprStatement(ev *eval.Evaluator, st *ast.ExprStmt) {
	ev.Eval(st.X)
	if !hasSideEffect(st.X) {
		report(ev, st.Range(), diag.Warning, diag.InvalidExpressionStatement)
	}
}

func hasSideEffect(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Call, *ast.MethodCall, *ast.CalledOn, *ast.Waittill, *ast.WaittillMatch, *ast.Postfix:
		return true
	case *ast.Binary:
		return isAssignToken(x.Op)
	default:
		return false
	}
}

var assignTokens = map[token.Kind]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.AND_ASSIGN: true, token.OR_ASSIGN: true, token.XOR_ASSIGN: true,
	token.SHL_ASSIGN: true, token.SHR_ASSIGN: true,
}

func isAssignToken(k token.Kind) bool { return assignTokens[k] }

func assignConst(ev *eval.Evaluator, st *ast.Const) {
	v := ev.Eval(st.Value)
	switch ev.Sym.AddOrSet(st.Name, v, ev.Scope, true, st.Range()) {
	case symtab.FailedConstant:
		report(ev, st.Range(), diag.Error, diag.CannotAssignToConstant, st.Name)
	case symtab.FailedReserved:
		report(ev, st.Range(), diag.Error, diag.InvalidAssignmentTarget)
	}
}

// report appends a diagnostic to ev.Diags, honoring ev.Silent exactly like
// the expression analyzer's own errorf/warnf (spec §4.7 "Emission is
// gated by silent").
func report(ev *eval.Evaluator, r token.Range, sev diag.Severity, code diag.Code, args ...any) {
	if ev.Silent {
		return
	}
	ev.Diags = append(ev.Diags, diag.New(r, sev, code, args...))
}

// checkSwitchLabels flags duplicate case labels and more than one default
// label (spec §4.7 DuplicateCaseLabel, MultipleDefaultLabels). It is a
// purely structural check independent of flow state, so it runs once per
// Switch node during the diagnostic pass rather than needing its own
// repeated-visit dedup bookkeeping (the diagnostic pass itself already
// visits every node exactly once).
func checkSwitchLabels(n *cfg.Node) []diag.Diagnostic {
	sw, ok := n.Origin.(*ast.Switch)
	if !ok {
		return nil
	}
	var diags []diag.Diagnostic
	seen := map[string]bool{}
	defaultCount := 0
	for _, grp := range sw.Groups {
		for _, l := range grp.Labels {
			if l.IsDefault {
				defaultCount++
				if defaultCount > 1 {
					diags = append(diags, diag.New(l.Range(), diag.Error, diag.MultipleDefaultLabels))
				}
				continue
			}
			key := caseLabelKey(l.Expr)
			if key == "" {
				continue
			}
			if seen[key] {
				diags = append(diags, diag.New(l.Range(), diag.Error, diag.DuplicateCaseLabel, key))
			}
			seen[key] = true
		}
	}
	return diags
}

func caseLabelKey(e ast.Expression) string {
	d, ok := e.(*ast.Data)
	if !ok {
		return ""
	}
	return d.Text
}
