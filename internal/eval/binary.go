package eval

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

var compoundBase = map[token.Kind]token.Kind{
	token.PLUS_ASSIGN: token.PLUS, token.MINUS_ASSIGN: token.MINUS,
	token.STAR_ASSIGN: token.STAR, token.SLASH_ASSIGN: token.SLASH,
	token.PERCENT_ASSIGN: token.PERCENT, token.AND_ASSIGN: token.AMP,
	token.OR_ASSIGN: token.PIPE, token.XOR_ASSIGN: token.CARET,
	token.SHL_ASSIGN: token.SHL, token.SHR_ASSIGN: token.SHR,
}

func isAssignKind(k token.Kind) bool {
	if k == token.ASSIGN {
		return true
	}
	_, ok := compoundBase[k]
	return ok
}

func isComparison(k token.Kind) bool {
	switch k {
	case token.EQ, token.NEQ, token.EQEQEQ, token.NEQEQ, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func (ev *Evaluator) evalBinary(x *ast.Binary) types.Data {
	if isAssignKind(x.Op) {
		return ev.evalAssign(x)
	}
	if isComparison(x.Op) {
		return ev.evalComparison(x)
	}
	left := ev.Eval(x.Left)
	right := ev.Eval(x.Right)
	switch x.Op {
	case token.PLUS:
		return ev.evalPlus(x, left, right)
	case token.MINUS, token.STAR:
		return ev.arith(x, left, right)
	case token.SLASH, token.PERCENT:
		if isZeroLiteral(x.Right) {
			ev.errorf(x.Range(), diag.DivisionByZero)
		}
		return ev.arith(x, left, right)
	case token.PIPE, token.CARET, token.AMP, token.SHL, token.SHR:
		return ev.bitwise(x, left, right)
	case token.OROR, token.ANDAND:
		return types.Data{Type: types.Bool}
	default:
		return types.AnyData()
	}
}

func isZeroLiteral(e ast.Expression) bool {
	d, ok := e.(*ast.Data)
	return ok && (d.Kind == token.INT || d.Kind == token.FLOAT) && (d.Text == "0" || d.Text == "0.0")
}

// evalPlus implements the numeric-coercion table of spec §4.6: Vector op
// Number → Vector; String + anything coercible → String; Hash + String →
// Hash (either side); otherwise falls through to ordinary arithmetic.
func (ev *Evaluator) evalPlus(x *ast.Binary, left, right types.Data) types.Data {
	switch {
	case left.Type.Has(types.Vector) && right.Type.Intersects(types.Number|types.Vector|types.Any):
		return types.Of(types.Vector)
	case right.Type.Has(types.Vector) && left.Type.Intersects(types.Number|types.Vector|types.Any):
		return types.Of(types.Vector)
	case left.Type.Has(types.Hash) && right.Type.Intersects(types.String | types.Hash | types.Any):
		return types.Of(types.Hash)
	case right.Type.Has(types.Hash) && left.Type.Intersects(types.String | types.Hash | types.Any):
		return types.Of(types.Hash)
	case left.Type.Intersects(types.String|types.IString) || right.Type.Intersects(types.String|types.IString):
		return types.Of(types.String)
	default:
		return ev.arith(x, left, right)
	}
}

// arith is the Int/Float coercion rule: Int+Int→Int; either side Float→
// Float.
func (ev *Evaluator) arith(x *ast.Binary, left, right types.Data) types.Data {
	if left.Type.Has(types.Any) || right.Type.Has(types.Any) {
		return types.AnyData()
	}
	if !left.Type.Intersects(types.Number|types.Undefined) || !right.Type.Intersects(types.Number|types.Undefined) {
		ev.errorf(x.Range(), diag.OperatorNotSupportedOnTypes, x.Op.String(), left.Type.String(), right.Type.String())
		return types.AnyData()
	}
	if left.Type.Has(types.Float) || right.Type.Has(types.Float) {
		return types.Of(types.Float)
	}
	return types.Of(types.Int)
}

func (ev *Evaluator) bitwise(x *ast.Binary, left, right types.Data) types.Data {
	if left.Type.Has(types.Any) || right.Type.Has(types.Any) {
		return types.AnyData()
	}
	if !left.Type.Intersects(types.Int|types.Bool|types.Undefined) || !right.Type.Intersects(types.Int|types.Bool|types.Undefined) {
		ev.errorf(x.Range(), diag.OperatorNotSupportedOnTypes, x.Op.String(), left.Type.String(), right.Type.String())
		return types.AnyData()
	}
	return types.Of(types.Int)
}

func (ev *Evaluator) evalComparison(x *ast.Binary) types.Data {
	left := ev.Eval(x.Left)
	right := ev.Eval(x.Right)
	if left.Type.Has(types.Undefined) || right.Type.Has(types.Undefined) {
		ev.warnf(x.Range(), diag.PossibleUndefinedComparison)
	}
	return types.Data{Type: types.Bool}
}
