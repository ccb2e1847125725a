package sense

import (
	"testing"

	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func findToken(toks []Token, name string, kind Kind) (Token, bool) {
	for _, t := range toks {
		if t.Name == name && t.Kind == kind {
			return t, true
		}
	}
	return Token{}, false
}

func TestBuildTagsFunctionDeclarationAndCall(t *testing.T) {
	callee := &ast.FunDefn{
		Name: "Helper",
		Body: &ast.StmtList{},
	}
	caller := &ast.FunDefn{
		Name: "Main",
		Body: &ast.StmtList{Stmts: []ast.Statement{
			&ast.ExprStmt{X: &ast.Call{Callee: ident("Helper")}},
		}},
	}
	script := &ast.Script{Functions: []*ast.FunDefn{callee, caller}}

	defs, diags := sig.Analyze(script, "test.gsc")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	facts := Build(script, defs, apidata.Default())

	count := 0
	for _, tok := range facts.Tokens {
		if tok.Name == "Helper" && tok.Kind == Function {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected two Helper/Function tokens (decl + call), got %d in %+v", count, facts.Tokens)
	}
}

func TestBuildTagsBuiltInCallAsDefaultLibrary(t *testing.T) {
	fn := &ast.FunDefn{
		Name: "Main",
		Body: &ast.StmtList{Stmts: []ast.Statement{
			&ast.ExprStmt{X: &ast.Call{Callee: ident("IsDefined"), Args: []ast.Expression{ident("x")}}},
		}},
		Params: []*ast.Param{{Name: "x"}},
	}
	script := &ast.Script{Functions: []*ast.FunDefn{fn}}
	defs, _ := sig.Analyze(script, "test.gsc")
	facts := Build(script, defs, apidata.Default())

	tok, ok := findToken(facts.Tokens, "IsDefined", Function)
	if !ok || !tok.Modifiers.Has(DefaultLibrary) {
		t.Errorf("expected IsDefined tagged Function|DefaultLibrary, got %+v", tok)
	}
	param, ok := findToken(facts.Tokens, "x", Parameter)
	if !ok || !param.Modifiers.Has(Declaration|Local) {
		t.Errorf("expected x tagged Parameter|Declaration|Local, got %+v", param)
	}
}

func TestBuildTagsClassMemberAsField(t *testing.T) {
	cd := &ast.ClassDefn{
		Name:    "Foo",
		Members: []*ast.MemberDecl{{Name: "health"}},
		Methods: []*ast.FunDefn{{
			Name: "Heal",
			Body: &ast.StmtList{Stmts: []ast.Statement{
				&ast.ExprStmt{X: &ast.Binary{Op: token.ASSIGN, Left: &ast.Field{Target: ident("self"), Name: "health"}, Right: &ast.Data{Kind: token.INT, Text: "100"}}},
			}},
		}},
	}
	script := &ast.Script{Classes: []*ast.ClassDefn{cd}}
	defs, diags := sig.Analyze(script, "test.gsc")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	facts := Build(script, defs, apidata.Default())

	if _, ok := findToken(facts.Tokens, "health", Field); !ok {
		t.Errorf("expected a Field token for health, got %+v", facts.Tokens)
	}
	if _, ok := findToken(facts.Tokens, "Heal", Method); !ok {
		t.Errorf("expected a Method declaration token for Heal, got %+v", facts.Tokens)
	}
}

func TestBuildFoldingRangesCoverBodiesAndSwitchGroups(t *testing.T) {
	body := &ast.StmtList{Base: ast.At(token.Range{Start: token.Position{Line: 1}, End: token.Position{Line: 10}})}
	sw := &ast.Switch{
		Base: ast.At(token.Range{Start: token.Position{Line: 2}, End: token.Position{Line: 9}}),
		Expr: ident("x"),
		Groups: []*ast.CaseGroup{
			{Base: ast.At(token.Range{Start: token.Position{Line: 3}, End: token.Position{Line: 4}}),
				Labels: []*ast.CaseLabel{{Expr: &ast.Data{Kind: token.INT, Text: "1"}}}},
		},
	}
	fn := &ast.FunDefn{
		Name:   "Main",
		Params: []*ast.Param{{Name: "x"}},
		Body:   &ast.StmtList{Base: body.Base, Stmts: []ast.Statement{sw}},
	}
	script := &ast.Script{Functions: []*ast.FunDefn{fn}}
	defs, _ := sig.Analyze(script, "test.gsc")
	facts := Build(script, defs, apidata.Default())

	foundBody, foundGroup := false, false
	for _, f := range facts.Folding {
		if f.Range == fn.Body.Range() {
			foundBody = true
		}
		if f.Range == sw.Groups[0].Range() {
			foundGroup = true
		}
	}
	if !foundBody {
		t.Errorf("expected a folding range over the function body, got %+v", facts.Folding)
	}
	if !foundGroup {
		t.Errorf("expected a folding range over the switch case group, got %+v", facts.Folding)
	}
}

func TestBuildDefinitionsMatchesSigTable(t *testing.T) {
	fn := &ast.FunDefn{Name: "Main", Body: &ast.StmtList{}}
	script := &ast.Script{Functions: []*ast.FunDefn{fn}}
	defs, _ := sig.Analyze(script, "test.gsc")
	facts := Build(script, defs, apidata.Default())

	if len(facts.Definitions) != 1 {
		t.Fatalf("Definitions = %+v, want exactly one entry", facts.Definitions)
	}
	if _, ok := facts.Definitions["Main"]; !ok {
		t.Errorf("Definitions missing entry for Main")
	}
}
