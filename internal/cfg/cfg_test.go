package cfg

import (
	"testing"

	"github.com/gscls/analyzer/internal/lexer"
	"github.com/gscls/analyzer/internal/parser"
	"github.com/gscls/analyzer/pkg/ast"
)

func parseFunc(t *testing.T, src string) *ast.FunDefn {
	t.Helper()
	toks := lexer.New(src).Tokenize()
	script, diags := parser.New(toks).Parse()
	for _, d := range diags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message())
	}
	if len(script.Functions) == 0 {
		t.Fatal("no functions parsed")
	}
	return script.Functions[0]
}

func TestBuildStraightLineFunctionHasSingleBlockBetweenEntryAndExit(t *testing.T) {
	fn := parseFunc(t, `function F() { x = 1; y = 2; }`)
	g := Build(fn)

	if g.Entry.Kind != FunctionEntry {
		t.Errorf("Entry.Kind = %v, want FunctionEntry", g.Entry.Kind)
	}
	if g.Exit.Kind != FunctionExit {
		t.Errorf("Exit.Kind = %v, want FunctionExit", g.Exit.Kind)
	}
	if len(g.Unreachable()) != 0 {
		t.Errorf("Unreachable() = %v, want none", g.Unreachable())
	}
}

func TestBuildReturnTerminatesFlowAndLeavesTailUnreachable(t *testing.T) {
	fn := parseFunc(t, `function F() { return; x = 1; }`)
	g := Build(fn)

	unreachable := g.Unreachable()
	if len(unreachable) == 0 {
		t.Fatal("expected at least one unreachable node after an unconditional return")
	}
}

func TestBuildIfCreatesDecisionWithTrueAndFalseEdges(t *testing.T) {
	fn := parseFunc(t, `function F(a) { if (a) { x = 1; } else { x = 2; } }`)
	g := Build(fn)

	var decision *Node
	for _, n := range g.Nodes {
		if n.Kind == Decision {
			decision = n
		}
	}
	if decision == nil {
		t.Fatal("expected a Decision node for the if statement")
	}
	var sawTrue, sawFalse bool
	for _, e := range decision.Outgoing {
		if e.Kind == True {
			sawTrue = true
		}
		if e.Kind == False {
			sawFalse = true
		}
	}
	if !sawTrue || !sawFalse {
		t.Errorf("decision edges: sawTrue=%v sawFalse=%v, want both true", sawTrue, sawFalse)
	}
}

func TestBuildWhileLoopBackEdge(t *testing.T) {
	fn := parseFunc(t, `function F(a) { while (a) { a -= 1; } }`)
	g := Build(fn)

	var sawBack bool
	for _, n := range g.Nodes {
		for _, e := range n.Outgoing {
			if e.Kind == Back {
				sawBack = true
			}
		}
	}
	if !sawBack {
		t.Errorf("expected a Back edge somewhere in the while loop's graph")
	}
}

func TestBuildStructorProducesEntryAndExit(t *testing.T) {
	toks := lexer.New(`class Foo { init() { x = 1; } }`).Tokenize()
	script, diags := parser.New(toks).Parse()
	for _, d := range diags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message())
	}
	cd := script.Classes[0]
	g := BuildStructor(cd.Ctor)
	if g.Entry == nil || g.Exit == nil {
		t.Fatal("expected both Entry and Exit to be set")
	}
}

func TestBuildClassLinksMembersAndMethods(t *testing.T) {
	toks := lexer.New(`
class Foo
{
	init() { }
	destroy() { }
	function Bar() { }
}`).Tokenize()
	script, diags := parser.New(toks).Parse()
	for _, d := range diags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message())
	}
	cg := BuildClass(script.Classes[0])
	if cg.Ctor == nil || cg.Dtor == nil {
		t.Fatal("expected both Ctor and Dtor graphs")
	}
	if _, ok := cg.Methods["Bar"]; !ok {
		t.Errorf("expected a Bar method graph, got %v", cg.Methods)
	}
}
