package eval

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// isThreadedCall reports whether e syntactically is a threaded call
// expression, used to diagnose `x = thread g();` (spec §4.6, scenario 7).
func isThreadedCall(e ast.Expression) bool {
	switch c := e.(type) {
	case *ast.Call:
		return c.Thread
	case *ast.MethodCall:
		return c.Thread
	case *ast.CalledOn:
		return c.Thread
	}
	return false
}

func (ev *Evaluator) evalAssign(x *ast.Binary) types.Data {
	var rhs types.Data
	if x.Op == token.ASSIGN {
		rhs = ev.Eval(x.Right)
	} else {
		cur := ev.Eval(x.Left)
		right := ev.Eval(x.Right)
		rhs = ev.arith(&ast.Binary{Op: compoundBase[x.Op], Left: x.Left, Right: x.Right}, cur, right)
	}
	if isThreadedCall(x.Right) {
		ev.errorf(x.Range(), diag.AssignOnThreadedFunction)
		rhs = types.Of(types.Undefined)
	}
	ev.assignTo(x.Left, rhs, x.Range())
	return rhs
}

func (ev *Evaluator) assignIdentifier(ident *ast.Identifier, val types.Data, r token.Range) {
	if symtab.IsReserved(ident.Name) {
		ev.errorf(r, diag.InvalidAssignmentTarget)
		return
	}
	switch ev.Sym.AddOrSet(ident.Name, val, ev.Scope, false, r) {
	case symtab.FailedConstant:
		ev.errorf(r, diag.CannotAssignToConstant, ident.Name)
	case symtab.FailedReserved:
		ev.errorf(r, diag.InvalidAssignmentTarget)
	}
}

func (ev *Evaluator) assignTo(target ast.Expression, val types.Data, r token.Range) {
	switch t := target.(type) {
	case *ast.Identifier:
		ev.assignIdentifier(t, val, r)
	case *ast.Field:
		ev.assignField(t, val, r)
	case *ast.Index:
		ev.Eval(t.Target)
		ev.Eval(t.Sub)
	default:
		ev.errorf(r, diag.InvalidAssignmentTarget)
	}
}

// assignField applies the Immutable > ReadOnly > TypeMismatch priority
// of spec §9 "Field-set failure prioritization": exactly one diagnostic
// per invalid field write.
func (ev *Evaluator) assignField(t *ast.Field, val types.Data, r token.Range) {
	target := ev.Eval(t.Target)
	if !target.Type.Intersects(types.Struct | types.Entity | types.Object | types.Any | types.Undefined) {
		ev.errorf(r, diag.DoesNotContainMember, target.Type.String(), t.Name)
		return
	}
	if ev.Fields == nil {
		return
	}
	className := target.Sub.Tag
	res := ev.Fields.Lookup(className, t.Name)
	switch {
	case res.Exists && res.Immutable:
		ev.errorf(r, diag.CannotAssignToImmutableEntity, t.Name)
	case res.Exists && res.ReadOnly:
		ev.errorf(r, diag.CannotAssignToReadOnlyProperty, t.Name)
	case res.Exists && res.ExpectedKind != 0 && !val.Type.Intersects(res.ExpectedKind|types.Any|types.Undefined):
		ev.errorf(r, diag.PredefinedFieldTypeMismatch, t.Name, res.ExpectedKind.String(), val.Type.String())
	}
}
