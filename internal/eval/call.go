package eval

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// overloadBounds computes the (min, max) argument-count bounds across a
// set of overloads, spec §4.6 "validated against all overloads (min/max
// bounds across overloads; vararg marks 'any count ≥ min')". max < 0
// means unbounded.
func overloadBounds(overloads []symtab.Overload) (min, max int) {
	min, max = -1, 0
	for _, o := range overloads {
		if min == -1 || o.MinParams < min {
			min = o.MinParams
		}
		if o.Vararg || o.MaxParams < 0 {
			max = -1
			continue
		}
		if max >= 0 && o.MaxParams > max {
			max = o.MaxParams
		}
	}
	if min == -1 {
		min = 0
	}
	return min, max
}

func paramBounds(params []*ast.Param) (min, max int) {
	for _, p := range params {
		if p.IsVararg {
			return min, -1
		}
		max++
		if p.Default == nil {
			min++
		}
	}
	return min, max
}

// evalCall resolves the callee and validates arity per spec §4.6.
func (ev *Evaluator) evalCall(x *ast.Call) types.Data {
	for _, a := range x.Args {
		ev.Eval(a)
	}
	switch callee := x.Callee.(type) {
	case *ast.Identifier:
		return ev.resolveCall("", callee.Name, len(x.Args), x.Range())
	case *ast.NamespacedMember:
		return ev.resolveCall(callee.Namespace, callee.Name, len(x.Args), x.Range())
	case *ast.Deref:
		v := ev.Eval(callee)
		if !v.Type.Intersects(types.Function | types.Any) {
			ev.errorf(x.Range(), diag.ExpectedFunction, v.Type.String())
		}
		return types.AnyData()
	default:
		v := ev.Eval(x.Callee)
		if !v.Type.Intersects(types.Function | types.Any) {
			ev.errorf(x.Range(), diag.ExpectedFunction, v.Type.String())
		}
		return types.AnyData()
	}
}

func (ev *Evaluator) resolveCall(ns, name string, argc int, r token.Range) types.Data {
	if ns != "" && !ev.Sym.KnownNamespace(ns) {
		ev.errorf(r, diag.UnknownNamespace, ns)
		return types.AnyData()
	}
	if ev.Defs != nil {
		k := name
		if ns != "" {
			k = ns + "::" + name
		}
		if fn, ok := ev.Defs.Funcs[k]; ok {
			_, max := paramBounds(fn.Params)
			if argc > max && max >= 0 {
				ev.errorf(r, diag.TooManyArguments, name, max, argc)
			}
			return types.AnyData()
		}
	}
	if ev.API != nil {
		if overloads, ok := ev.API.Overloads(name); ok {
			min, max := overloadBounds(overloads)
			tooFew, tooMany := diag.TooFewArguments, diag.TooManyArguments
			if len(overloads) > 0 && overloads[0].Autogenerated {
				tooFew, tooMany = diag.TooFewArgumentsUnverified, diag.TooManyArgumentsUnverified
			}
			if argc < min {
				ev.errorf(r, tooFew, name, min, argc)
			} else if max >= 0 && argc > max {
				ev.errorf(r, tooMany, name, max, argc)
			}
			if len(overloads) > 0 {
				return types.Of(overloads[0].Return)
			}
			return types.AnyData()
		}
	}
	ev.errorf(r, diag.FunctionDoesNotExist, name)
	return types.Of(types.Undefined)
}

func (ev *Evaluator) evalMethodCall(x *ast.MethodCall) types.Data {
	target := ev.Eval(x.Target)
	for _, a := range x.Args {
		ev.Eval(a)
	}
	if !target.Type.Intersects(types.Struct | types.Entity | types.Object | types.Any | types.Undefined) {
		ev.errorf(x.Range(), diag.DoesNotContainMember, target.Type.String(), x.Method)
	}
	return types.AnyData()
}

func (ev *Evaluator) evalNamespacedMember(x *ast.NamespacedMember) types.Data {
	if !ev.Sym.KnownNamespace(x.Namespace) {
		ev.errorf(x.Range(), diag.UnknownNamespace, x.Namespace)
		return types.AnyData()
	}
	if ev.Defs != nil {
		if _, ok := ev.Defs.Funcs[x.Namespace+"::"+x.Name]; ok {
			return types.Of(types.Function)
		}
	}
	return types.AnyData()
}

func (ev *Evaluator) evalConstructor(x *ast.Constructor) types.Data {
	if ev.Defs != nil {
		if _, ok := ev.Defs.Classes[x.ClassName]; ok {
			return types.Data{Type: types.Object, Sub: types.Subtype{Kind: types.ClassID, Tag: x.ClassName}}
		}
	}
	ev.errorf(x.Range(), diag.FunctionDoesNotExist, x.ClassName)
	return types.AnyData()
}

