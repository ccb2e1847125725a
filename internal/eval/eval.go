// Package eval implements the expression analyzer (spec §4.6): it
// evaluates pkg/ast expressions under a symtab.Table into an
// internal/types.Data lattice value, producing branch-sensitive
// narrowing facts and diagnostics along the way. Grounded on the
// teacher's expression-typing visitor (internal/semantic/passes/*) but
// rebuilt around GSC's union-of-kinds lattice instead of DWScript's
// nominal class hierarchy.
package eval

import (
	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// FieldRegistry resolves predefined entity/struct field shapes so field
// writes can be checked against a known schema (spec §4.6 "the entity
// registry returns one of {Success, FieldReadOnly, EntityImmutable,
// FieldTypeMismatch}"). No concrete implementation ships with the core:
// the predefined-field schema is an external data source; a nil Registry
// makes every field write succeed.
type FieldRegistry interface {
	Lookup(className string, field string) FieldResult
}

// FieldResult is one field lookup outcome, ranked by the priority order
// Immutable > ReadOnly > TypeMismatch > Success (spec §9 "Field-set
// failure prioritization").
type FieldResult struct {
	Exists       bool
	Immutable    bool
	ReadOnly     bool
	ExpectedKind types.Kind
}

// Evaluator carries the mutable state threaded through one CFG node's
// expression analysis: the symbol table, the definitions table, the
// built-in overload provider, and the diagnostic sink.
type Evaluator struct {
	Sym      *symtab.Table
	Defs     *sig.Table
	API      *apidata.Provider
	Fields   FieldRegistry
	Scope    int
	Silent   bool
	Diags    []diag.Diagnostic
}

// New builds an Evaluator. api may be nil, in which case apidata.Default()
// is used.
func New(sym *symtab.Table, defs *sig.Table, api *apidata.Provider, scope int) *Evaluator {
	if api == nil {
		api = apidata.Default()
	}
	return &Evaluator{Sym: sym, Defs: defs, API: api, Scope: scope}
}

func (ev *Evaluator) errorf(r token.Range, code diag.Code, args ...any) {
	if ev.Silent {
		return
	}
	ev.Diags = append(ev.Diags, diag.New(r, diag.Error, code, args...))
}

func (ev *Evaluator) warnf(r token.Range, code diag.Code, args ...any) {
	if ev.Silent {
		return
	}
	ev.Diags = append(ev.Diags, diag.New(r, diag.Warning, code, args...))
}

// Eval evaluates e to a lattice value, discarding any narrowing facts
// (use EvalCond when facts are needed, e.g. at a Decision node).
func (ev *Evaluator) Eval(e ast.Expression) types.Data {
	v, _, _ := ev.EvalCond(e)
	return v
}

// applyFacts narrows the named symbols per facts and returns a restore
// function that undoes the narrowing. Used to analyze the right-hand
// side of `&&`/`||` and the two arms of a ternary under a refined
// environment (spec §4.6).
func (ev *Evaluator) applyFacts(facts types.Facts) func() {
	if len(facts) == 0 {
		return func() {}
	}
	saved := make(map[string]*symtab.Variable, len(facts))
	for name, n := range facts {
		v, status := ev.Sym.TryGet(name)
		if status != symtab.Found {
			continue
		}
		saved[name] = v
		nv := *v
		nv.Value = n.Apply(v.Value)
		ev.Sym.SetRaw(name, &nv)
	}
	return func() {
		for name, v := range saved {
			ev.Sym.SetRaw(name, v)
		}
	}
}

// EvalCond evaluates e and, when e is a boolean-producing expression
// covered by the narrowing table of spec §4.6, also returns the
// WhenTrue/WhenFalse facts.
func (ev *Evaluator) EvalCond(e ast.Expression) (types.Data, types.Facts, types.Facts) {
	if e == nil {
		return types.AnyData(), nil, nil
	}
	switch x := e.(type) {
	case *ast.Prefix:
		if x.Op == "!" {
			_, wt, wf := ev.EvalCond(x.X)
			return types.BoolData(false), wf, wt
		}
	case *ast.Binary:
		switch x.Op {
		case token.ANDAND:
			_, lwt, _ := ev.EvalCond(x.Left)
			restore := ev.applyFacts(lwt)
			_, rwt, _ := ev.EvalCond(x.Right)
			restore()
			return types.Data{Type: types.Bool}, types.MergeFacts(lwt, rwt), nil
		case token.OROR:
			_, _, lwf := ev.EvalCond(x.Left)
			restore := ev.applyFacts(lwf)
			_, _, rwf := ev.EvalCond(x.Right)
			restore()
			return types.Data{Type: types.Bool}, nil, types.MergeFacts(lwf, rwf)
		}
	case *ast.Call:
		if facts, ok := ev.predicateFacts(x); ok {
			return types.Data{Type: types.Bool}, facts.whenTrue, facts.whenFalse
		}
	}
	return ev.evalValue(e), nil, nil
}

type predicate struct {
	whenTrue  types.Facts
	whenFalse types.Facts
}

// predicateFacts recognizes the extensible predicate-call table of spec
// §4.6 — currently just IsDefined(x) for a bare identifier x.
func (ev *Evaluator) predicateFacts(c *ast.Call) (predicate, bool) {
	ident, ok := c.Callee.(*ast.Identifier)
	if !ok || !equalFold(ident.Name, "IsDefined") || len(c.Args) != 1 {
		return predicate{}, false
	}
	arg, ok := c.Args[0].(*ast.Identifier)
	if !ok {
		ev.Eval(c.Args[0])
		return predicate{}, false
	}
	ev.Eval(arg)
	return predicate{
		whenTrue:  types.Facts{arg.Name: types.RemoveUndefined()},
		whenFalse: types.Facts{arg.Name: types.OnlyUndefined()},
	}, true
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (ev *Evaluator) evalValue(e ast.Expression) types.Data {
	switch x := e.(type) {
	case *ast.Data:
		return ev.evalLiteral(x)
	case *ast.Identifier:
		return ev.evalIdentifier(x)
	case *ast.Prefix:
		return ev.evalPrefix(x)
	case *ast.Postfix:
		return ev.evalPostfix(x)
	case *ast.Binary:
		return ev.evalBinary(x)
	case *ast.Ternary:
		return ev.evalTernary(x)
	case *ast.Vector:
		return ev.evalVector(x)
	case *ast.Index:
		ev.Eval(x.Target)
		ev.Eval(x.Sub)
		return types.AnyData()
	case *ast.Call:
		return ev.evalCall(x)
	case *ast.MethodCall:
		return ev.evalMethodCall(x)
	case *ast.CalledOn:
		for _, a := range x.Args {
			ev.Eval(a)
		}
		return types.AnyData()
	case *ast.NamespacedMember:
		return ev.evalNamespacedMember(x)
	case *ast.Constructor:
		return ev.evalConstructor(x)
	case *ast.Waittill:
		return ev.evalWaittill(x)
	case *ast.WaittillMatch:
		ev.Eval(x.Target)
		ev.Eval(x.Event)
		if x.Value != nil {
			ev.Eval(x.Value)
		}
		return types.VoidData()
	case *ast.Deref:
		return ev.evalDeref(x)
	case *ast.Field:
		return ev.evalField(x)
	default:
		return types.AnyData()
	}
}

func (ev *Evaluator) evalLiteral(x *ast.Data) types.Data {
	switch x.Kind {
	case token.INT:
		return types.Of(types.Int)
	case token.FLOAT:
		return types.Of(types.Float)
	case token.STRING:
		return types.Of(types.String)
	case token.ISTRING:
		return types.Of(types.IString)
	case token.TRUE:
		return types.BoolData(true)
	case token.FALSE:
		return types.BoolData(false)
	case token.UNDEFINED:
		return types.Of(types.Undefined)
	case token.LBRACK:
		return types.Of(types.Array)
	default:
		return types.AnyData()
	}
}

func (ev *Evaluator) evalIdentifier(x *ast.Identifier) types.Data {
	switch symtab.FoldForCompare(x.Name) {
	case "self", "level":
		return types.Of(types.Entity)
	case "game", "anim":
		return types.Of(types.Struct)
	}
	v, status := ev.Sym.TryGet(x.Name)
	switch status {
	case symtab.Found:
		return v.Value
	case symtab.GlobalBuiltin:
		return types.AnyData()
	default:
		return types.Of(types.Undefined)
	}
}

func (ev *Evaluator) evalPrefix(x *ast.Prefix) types.Data {
	switch x.Op {
	case "+", "-":
		v := ev.Eval(x.X)
		if v.Type.Intersects(types.Number | types.Any) {
			return types.Of(v.Type & (types.Number | types.Any))
		}
		ev.errorf(x.Range(), diag.OperatorNotSupportedOnTypes, x.Op, v.Type.String(), "")
		return types.AnyData()
	case "~":
		ev.Eval(x.X)
		return types.Of(types.Int)
	case "!":
		ev.Eval(x.X)
		return types.Data{Type: types.Bool}
	case "&":
		return ev.evalAddressOf(x)
	default:
		ev.Eval(x.X)
		return types.AnyData()
	}
}

func (ev *Evaluator) evalAddressOf(x *ast.Prefix) types.Data {
	ident, ok := x.X.(*ast.Identifier)
	if !ok {
		ev.Eval(x.X)
		return types.AnyData()
	}
	if ev.Defs != nil {
		if _, ok := ev.Defs.Funcs[ident.Name]; ok {
			return types.Data{Type: types.FunctionPointer, Sub: types.Subtype{Kind: types.FunctionTarget, Tag: ident.Name}}
		}
	}
	if ev.API != nil {
		if _, ok := ev.API.Overloads(ident.Name); ok {
			return types.Data{Type: types.FunctionPointer, Sub: types.Subtype{Kind: types.FunctionTarget, Tag: ident.Name}}
		}
	}
	ev.errorf(x.Range(), diag.FunctionDoesNotExist, ident.Name)
	return types.Of(types.Undefined)
}

func (ev *Evaluator) evalPostfix(x *ast.Postfix) types.Data {
	v := ev.Eval(x.X)
	result := types.Of(v.Type & (types.Number | types.Any))
	if ident, ok := x.X.(*ast.Identifier); ok {
		ev.assignIdentifier(ident, result, x.Range())
	}
	return result
}

func (ev *Evaluator) evalTernary(x *ast.Ternary) types.Data {
	_, wt, wf := ev.EvalCond(x.Cond)
	restoreT := ev.applyFacts(wt)
	thenVal := ev.Eval(x.Then)
	restoreT()
	restoreF := ev.applyFacts(wf)
	elseVal := ev.Eval(x.Else)
	restoreF()
	return types.Merge(thenVal, elseVal)
}

func (ev *Evaluator) evalVector(x *ast.Vector) types.Data {
	for _, c := range []ast.Expression{x.X, x.Y, x.Z} {
		if c == nil {
			continue
		}
		v := ev.Eval(c)
		if !v.Type.Intersects(types.Number | types.Undefined | types.Any) {
			ev.errorf(c.Range(), diag.InvalidVectorComponent)
		}
	}
	return types.Of(types.Vector)
}

func (ev *Evaluator) evalDeref(x *ast.Deref) types.Data {
	v := ev.Eval(x.X)
	if v.Type.Has(types.FunctionPointer) {
		return types.Of(types.Function)
	}
	if v.Type.Intersects(types.Any | types.Undefined) {
		return types.AnyData()
	}
	ev.errorf(x.Range(), diag.ExpectedFunction, v.Type.String())
	return types.AnyData()
}

func (ev *Evaluator) evalField(x *ast.Field) types.Data {
	target := ev.Eval(x.Target)
	if !target.Type.Intersects(types.Struct | types.Entity | types.Object | types.Any | types.Undefined) {
		ev.errorf(x.Range(), diag.DoesNotContainMember, target.Type.String(), x.Name)
		return types.AnyData()
	}
	return types.Data{Type: types.Any, Field: x.Name}
}

func (ev *Evaluator) evalWaittill(x *ast.Waittill) types.Data {
	ev.Eval(x.Target)
	if x.Event != nil {
		ev.Eval(x.Event)
	}
	for _, p := range x.Params {
		ev.Sym.AddOrSet(p, types.AnyData(), ev.Scope, false, x.Range())
	}
	return types.VoidData()
}
