package ast

import (
	"testing"

	"github.com/gscls/analyzer/pkg/token"
)

func TestAtWrapsRangeIntoBase(t *testing.T) {
	r := NewRange(token.Position{Line: 1, Character: 0}, token.Position{Line: 1, Character: 5})
	b := At(r)
	if b.Range() != r {
		t.Errorf("At(r).Range() = %v, want %v", b.Range(), r)
	}
}

func TestEmbeddedBaseSatisfiesNodeInterface(t *testing.T) {
	r := NewRange(token.Position{Line: 2, Character: 1}, token.Position{Line: 2, Character: 8})
	id := &Identifier{Base: At(r), Name: "foo"}

	var n Node = id
	if n.Range() != r {
		t.Errorf("Identifier.Range() = %v, want %v", n.Range(), r)
	}

	var e Expression = id
	if e.Range() != r {
		t.Errorf("Identifier as Expression.Range() = %v, want %v", e.Range(), r)
	}
}

func TestStatementNodesImplementStatementInterface(t *testing.T) {
	var stmts []Statement = []Statement{
		&Empty{},
		&Break{},
		&Continue{},
		&ExprStmt{},
	}
	for _, s := range stmts {
		_ = s.Range() // must not panic on the zero Base
	}
}
