package eval

import (
	"testing"

	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func intLit(text string) *ast.Data { return &ast.Data{Kind: token.INT, Text: text} }

func stringLit(text string) *ast.Data { return &ast.Data{Kind: token.STRING, Text: text} }

func newEvaluator() *Evaluator {
	tbl := symtab.New(nil, "", nil, map[string]bool{})
	return New(tbl, &sig.Table{Funcs: map[string]*sig.FuncDecl{}, Classes: map[string]*sig.ClassDecl{}, Namespaces: map[string]bool{}}, nil, 0)
}

func TestEvalLiteralKinds(t *testing.T) {
	ev := newEvaluator()
	if v := ev.Eval(intLit("1")); v.Type != types.Int {
		t.Errorf("int literal = %v, want Int", v.Type)
	}
	if v := ev.Eval(&ast.Data{Kind: token.TRUE}); v.Type != types.Bool || !v.KnownBool {
		t.Errorf("true literal = %+v, want known Bool true", v)
	}
	if v := ev.Eval(&ast.Data{Kind: token.UNDEFINED}); v.Type != types.Undefined {
		t.Errorf("undefined literal = %v, want Undefined", v.Type)
	}
}

func TestEvalIdentifierSelfAndLevelAreEntity(t *testing.T) {
	ev := newEvaluator()
	if v := ev.Eval(ident("self")); v.Type != types.Entity {
		t.Errorf("self = %v, want Entity", v.Type)
	}
	if v := ev.Eval(ident("level")); v.Type != types.Entity {
		t.Errorf("level = %v, want Entity", v.Type)
	}
}

func TestEvalIdentifierUnknownIsUndefined(t *testing.T) {
	ev := newEvaluator()
	if v := ev.Eval(ident("neverAssigned")); v.Type != types.Undefined {
		t.Errorf("unassigned identifier = %v, want Undefined", v.Type)
	}
}

func TestEvalAssignBindsIdentifierIntoSymbolTable(t *testing.T) {
	ev := newEvaluator()
	assign := &ast.Binary{Op: token.ASSIGN, Left: ident("x"), Right: intLit("5")}
	ev.Eval(assign)

	if v := ev.Eval(ident("x")); v.Type != types.Int {
		t.Errorf("x after assignment = %v, want Int", v.Type)
	}
}

func TestEvalAssignToReservedNameIsInvalidTarget(t *testing.T) {
	ev := newEvaluator()
	ev.Eval(&ast.Binary{Op: token.ASSIGN, Left: ident("self"), Right: intLit("5")})
	if !hasCode(ev.Diags, diag.InvalidAssignmentTarget) {
		t.Errorf("expected InvalidAssignmentTarget, got %+v", ev.Diags)
	}
}

func TestEvalPlusCoercesStringConcatenation(t *testing.T) {
	ev := newEvaluator()
	v := ev.Eval(&ast.Binary{Op: token.PLUS, Left: stringLit("a"), Right: intLit("1")})
	if v.Type != types.String {
		t.Errorf("string + int = %v, want String", v.Type)
	}
}

func TestEvalArithRejectsNonNumericOperands(t *testing.T) {
	ev := newEvaluator()
	ev.Eval(&ast.Binary{Op: token.STAR, Left: stringLit("a"), Right: intLit("1")})
	if !hasCode(ev.Diags, diag.OperatorNotSupportedOnTypes) {
		t.Errorf("expected OperatorNotSupportedOnTypes, got %+v", ev.Diags)
	}
}

func TestEvalDivisionByZeroLiteralIsReported(t *testing.T) {
	ev := newEvaluator()
	ev.Eval(&ast.Binary{Op: token.SLASH, Left: intLit("1"), Right: intLit("0")})
	if !hasCode(ev.Diags, diag.DivisionByZero) {
		t.Errorf("expected DivisionByZero, got %+v", ev.Diags)
	}
}

func TestEvalCondIsDefinedNarrowsBothBranches(t *testing.T) {
	ev := newEvaluator()
	ev.Sym.AddOrSet("x", types.Data{Type: types.Int | types.Undefined}, 0, false, token.Range{})

	call := &ast.Call{Callee: ident("IsDefined"), Args: []ast.Expression{ident("x")}}
	_, wt, wf := ev.EvalCond(call)

	if _, ok := wt["x"]; !ok {
		t.Fatal("expected a when-true fact for x")
	}
	if _, ok := wf["x"]; !ok {
		t.Fatal("expected a when-false fact for x")
	}
}

func TestEvalTernaryMergesBothArms(t *testing.T) {
	ev := newEvaluator()
	tern := &ast.Ternary{Cond: ident("flag"), Then: intLit("1"), Else: stringLit("s")}
	v := ev.Eval(tern)
	if v.Type != (types.Int | types.String) {
		t.Errorf("ternary merge = %v, want Int|String", v.Type)
	}
}

func TestEvalCallUnknownFunctionReportsDoesNotExist(t *testing.T) {
	ev := newEvaluator()
	ev.Eval(&ast.Call{Callee: ident("TotallyMadeUpFn"), Args: nil})
	if !hasCode(ev.Diags, diag.FunctionDoesNotExist) {
		t.Errorf("expected FunctionDoesNotExist, got %+v", ev.Diags)
	}
}

func TestEvalCallBuiltinTooManyArguments(t *testing.T) {
	ev := New(symtab.New(nil, "", nil, nil), &sig.Table{Funcs: map[string]*sig.FuncDecl{}, Classes: map[string]*sig.ClassDecl{}, Namespaces: map[string]bool{}}, nil, 0)
	call := &ast.Call{Callee: ident("GetTime"), Args: []ast.Expression{intLit("1")}}
	ev.Eval(call)
	if !hasCode(ev.Diags, diag.TooManyArguments) {
		t.Errorf("expected TooManyArguments, got %+v", ev.Diags)
	}
}

func TestEvalCallAutogeneratedBuiltinTagsUnverified(t *testing.T) {
	tbl := symtab.New(nil, "", nil, map[string]bool{})
	ev := New(tbl, &sig.Table{Funcs: map[string]*sig.FuncDecl{}, Classes: map[string]*sig.ClassDecl{}, Namespaces: map[string]bool{}}, nil, 0)
	call := &ast.Call{Callee: ident("TableLookup"), Args: []ast.Expression{intLit("1"), intLit("2")}}
	ev.Eval(call)

	if hasCode(ev.Diags, diag.TooFewArguments) {
		t.Errorf("expected the verified TooFewArguments code not to be used for an autogenerated built-in, got %+v", ev.Diags)
	}
	if !hasCode(ev.Diags, diag.TooFewArgumentsUnverified) {
		t.Errorf("expected TooFewArgumentsUnverified for an autogenerated built-in, got %+v", ev.Diags)
	}
}

func TestEvalCallVerifiedBuiltinDoesNotTagUnverified(t *testing.T) {
	ev := newEvaluator()
	call := &ast.Call{Callee: ident("GetTime"), Args: []ast.Expression{intLit("1")}}
	ev.Eval(call)

	if hasCode(ev.Diags, diag.TooManyArgumentsUnverified) {
		t.Errorf("expected the verified TooManyArguments code for a hand-verified built-in, got %+v", ev.Diags)
	}
	if !hasCode(ev.Diags, diag.TooManyArguments) {
		t.Errorf("expected TooManyArguments, got %+v", ev.Diags)
	}
}

func TestEvalVectorRejectsNonNumericComponent(t *testing.T) {
	ev := newEvaluator()
	vec := &ast.Vector{X: intLit("1"), Y: stringLit("bad"), Z: intLit("3")}
	ev.Eval(vec)
	if !hasCode(ev.Diags, diag.InvalidVectorComponent) {
		t.Errorf("expected InvalidVectorComponent, got %+v", ev.Diags)
	}
}

func TestSilentSuppressesDiagnostics(t *testing.T) {
	ev := newEvaluator()
	ev.Silent = true
	ev.Eval(&ast.Call{Callee: ident("TotallyMadeUpFn")})
	if len(ev.Diags) != 0 {
		t.Errorf("expected no diagnostics while Silent, got %+v", ev.Diags)
	}
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
