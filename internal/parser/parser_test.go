package parser

import (
	"testing"

	"github.com/gscls/analyzer/internal/lexer"
	"github.com/gscls/analyzer/pkg/ast"
)

func parse(t *testing.T, src string) *ast.Script {
	t.Helper()
	toks := lexer.New(src).Tokenize()
	script, diags := New(toks).Parse()
	for _, d := range diags {
		t.Logf("diag: %s: %s", d.Severity, d.Message())
	}
	return script
}

func TestParseTopLevelFunction(t *testing.T) {
	script := parse(t, `function Main(a, b) { return a; }`)
	if len(script.Functions) != 1 {
		t.Fatalf("Functions = %d, want 1", len(script.Functions))
	}
	fn := script.Functions[0]
	if fn.Name != "Main" {
		t.Errorf("Name = %q, want Main", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("Params = %+v, want [a b]", fn.Params)
	}
}

func TestParseNamespaceFunctions(t *testing.T) {
	script := parse(t, `namespace utils { function Clamp(x) { return x; } }`)
	if len(script.Namespaces) != 1 {
		t.Fatalf("Namespaces = %d, want 1", len(script.Namespaces))
	}
	ns := script.Namespaces[0]
	if ns.Name != "utils" {
		t.Errorf("Namespace.Name = %q, want utils", ns.Name)
	}
	if len(ns.Funcs) != 1 || ns.Funcs[0].Name != "Clamp" {
		t.Errorf("Funcs = %+v, want [Clamp]", ns.Funcs)
	}
}

func TestParseClassWithMembersCtorDtorAndMethod(t *testing.T) {
	script := parse(t, `
class Foo
{
	health;
	armor = 100;

	init()
	{
		health = 100;
	}

	destroy()
	{
	}

	function TakeDamage(amount)
	{
		health -= amount;
	}
}`)
	if len(script.Classes) != 1 {
		t.Fatalf("Classes = %d, want 1", len(script.Classes))
	}
	cd := script.Classes[0]
	if cd.Name != "Foo" {
		t.Errorf("Name = %q, want Foo", cd.Name)
	}
	if len(cd.Members) != 2 {
		t.Fatalf("Members = %d, want 2", len(cd.Members))
	}
	if cd.Members[0].Name != "health" || cd.Members[0].Init != nil {
		t.Errorf("Members[0] = %+v, want health with no initializer", cd.Members[0])
	}
	if cd.Members[1].Name != "armor" || cd.Members[1].Init == nil {
		t.Errorf("Members[1] = %+v, want armor with an initializer", cd.Members[1])
	}
	if cd.Ctor == nil {
		t.Fatal("expected a constructor")
	}
	if cd.Dtor == nil {
		t.Fatal("expected a destructor")
	}
	if len(cd.Methods) != 1 || cd.Methods[0].Name != "TakeDamage" {
		t.Errorf("Methods = %+v, want [TakeDamage]", cd.Methods)
	}
}

func TestParseClassWithInheritance(t *testing.T) {
	script := parse(t, `class Bar : Foo { }`)
	cd := script.Classes[0]
	if cd.Inherits != "Foo" {
		t.Errorf("Inherits = %q, want Foo", cd.Inherits)
	}
}

func TestParseParamListByRefDefaultAndVararg(t *testing.T) {
	script := parse(t, `function F(&a, b = 1, vararg) { }`)
	params := script.Functions[0].Params
	if len(params) != 3 {
		t.Fatalf("Params = %d, want 3", len(params))
	}
	if !params[0].ByRef {
		t.Errorf("params[0].ByRef = false, want true")
	}
	if params[1].Default == nil {
		t.Errorf("params[1].Default = nil, want an expression")
	}
	if !params[2].IsVararg {
		t.Errorf("params[2].IsVararg = false, want true")
	}
}

func TestParseUnknownTopLevelTokenRecoversToNextDeclaration(t *testing.T) {
	script := parse(t, `???
function Main() { }`)
	if len(script.Functions) != 1 {
		t.Fatalf("expected recovery to still find the function, got %d Functions", len(script.Functions))
	}
}

func TestParseDependencyAndPrecache(t *testing.T) {
	script := parse(t, `#using scripts\utility;
#precache("weapon", "iw5_weapon");
function Main() { }`)
	if len(script.Dependencies) != 1 {
		t.Errorf("Dependencies = %d, want 1", len(script.Dependencies))
	}
	if len(script.Precaches) != 1 {
		t.Errorf("Precaches = %d, want 1", len(script.Precaches))
	}
}
