// Package sense derives the editor-facing facts of spec §6: a semantic
// token per identifier (kind, modifiers, hover content), folding ranges
// over brace-delimited bodies and switch/case groups, and the
// cross-file go-to-definition map. Grounded on spec §6's "External
// Interfaces" contract directly — no single teacher file matches, since
// the teacher's own internal/semantic passes return diagnostics rather
// than editor data — so this package is shaped the way the teacher's
// passes shape their own results: plain structs built by one AST walk,
// no interfaces, no side channel back into analysis.
package sense

import (
	"fmt"
	"strings"

	"github.com/gscls/analyzer/pkg/token"
)

// Kind classifies what a semantic token refers to (spec §6 "kind
// (variable/field/property/function/method/namespace/class)").
type Kind int

const (
	Variable Kind = iota
	Parameter
	Field
	Property
	Function
	Method
	Namespace
	Class
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	case Field:
		return "field"
	case Property:
		return "property"
	case Function:
		return "function"
	case Method:
		return "method"
	case Namespace:
		return "namespace"
	case Class:
		return "class"
	default:
		return "unknown"
	}
}

// Modifier is a bitmask of the per-token flags of spec §6 ("declaration,
// readonly, local, defaultLibrary").
type Modifier uint8

const (
	Declaration Modifier = 1 << iota
	ReadOnly
	Local
	DefaultLibrary
)

func (m Modifier) Has(f Modifier) bool { return m&f != 0 }

// Token is one definition record attached to an identifier occurrence.
type Token struct {
	Range     token.Range
	Name      string
	Kind      Kind
	Modifiers Modifier
	Hover     string
}

// FoldingRange is one collapsible region: a brace-delimited block or a
// switch/case group (spec §6 "Folding ranges at `{...}` and switch/case
// bodies").
type FoldingRange struct {
	Range token.Range
}

// Facts is the full set of editor-facing output for one script (spec §6).
type Facts struct {
	Tokens      []Token
	Folding     []FoldingRange
	Definitions map[string]token.Range
}

func formatParam(p paramLike) string {
	var b strings.Builder
	if p.ByRef {
		b.WriteByte('&')
	}
	if p.IsVararg {
		b.WriteString("...")
	}
	b.WriteString(p.Name)
	if p.HasDefault {
		b.WriteString(" = <default>")
	}
	return b.String()
}

// paramLike is the subset of ast.Param needed to render a hover
// signature, decoupled from the AST so formatParam has no import cycle
// concerns and can be unit tested directly.
type paramLike struct {
	Name       string
	ByRef      bool
	IsVararg   bool
	HasDefault bool
}

func signature(qualifiedName string, params []paramLike, doc string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	sig := fmt.Sprintf("%s(%s)", qualifiedName, strings.Join(parts, ", "))
	if doc == "" {
		return sig
	}
	return sig + "\n" + doc
}
