package sig

import (
	"testing"

	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/lexer"
	"github.com/gscls/analyzer/internal/parser"
)

func analyze(t *testing.T, src string) (*Table, []diag.Diagnostic) {
	t.Helper()
	toks := lexer.New(src).Tokenize()
	script, parseDiags := parser.New(toks).Parse()
	for _, d := range parseDiags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message())
	}
	return Analyze(script, "test.gsc")
}

func TestAnalyzeRegistersTopLevelAndNamespacedFunctions(t *testing.T) {
	table, diags := analyze(t, `
function Main() { }
namespace utils { function Clamp(x) { } }
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if _, ok := table.Funcs["Main"]; !ok {
		t.Errorf("expected Funcs[Main], got %v", table.Funcs)
	}
	if _, ok := table.Funcs["utils::Clamp"]; !ok {
		t.Errorf("expected Funcs[utils::Clamp], got %v", table.Funcs)
	}
	if !table.Namespaces["utils"] {
		t.Errorf("expected Namespaces[utils] = true")
	}
}

func TestAnalyzeFlagsDuplicateFunctionAsRedefinition(t *testing.T) {
	_, diags := analyze(t, `function Main() { } function Main() { }`)
	if !hasCode(diags, diag.RedefinitionOfSymbol) {
		t.Errorf("expected RedefinitionOfSymbol, got %+v", diags)
	}
}

func TestAnalyzeFlagsReservedFunctionName(t *testing.T) {
	_, diags := analyze(t, `function self() { }`)
	if !hasCode(diags, diag.ReservedSymbol) {
		t.Errorf("expected ReservedSymbol, got %+v", diags)
	}
}

func TestAnalyzeRegistersClassMembersAndMethods(t *testing.T) {
	table, diags := analyze(t, `
class Foo
{
	health;
	init() { }
	function Bar() { }
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	cd, ok := table.Classes["Foo"]
	if !ok {
		t.Fatal("expected Classes[Foo]")
	}
	if _, ok := cd.Members["health"]; !ok {
		t.Errorf("expected Members[health], got %v", cd.Members)
	}
	if _, ok := cd.Methods["Bar"]; !ok {
		t.Errorf("expected Methods[Bar], got %v", cd.Methods)
	}
}

func TestAnalyzeFlagsDuplicateClass(t *testing.T) {
	_, diags := analyze(t, `class Foo { } class Foo { }`)
	if !hasCode(diags, diag.RedefinitionOfSymbol) {
		t.Errorf("expected RedefinitionOfSymbol, got %+v", diags)
	}
}

func TestDefinitionLocationsCoversFuncsAndClasses(t *testing.T) {
	table, _ := analyze(t, `function Main() { } class Foo { }`)
	locs := table.DefinitionLocations()
	if _, ok := locs["Main"]; !ok {
		t.Errorf("expected a definition location for Main, got %v", locs)
	}
	if _, ok := locs["Foo"]; !ok {
		t.Errorf("expected a definition location for Foo, got %v", locs)
	}
}

func TestClassMembersSetBuildsMemberNameSet(t *testing.T) {
	table, _ := analyze(t, `class Foo { health; armor; }`)
	info := table.Classes["Foo"].ClassMembersSet()
	if !info.HasMember("health") || !info.HasMember("armor") {
		t.Errorf("expected health and armor members, got %v", info)
	}
	if info.HasMember("nonexistent") {
		t.Errorf("expected nonexistent member to be absent")
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
