// Package ast defines the abstract syntax tree node types produced by the
// parser: Script, declarations, statements, and expressions.
//
// Every node exclusively owns its children; shared references are
// disallowed. For every non-empty expression node R, R.Range() covers the
// ranges of all of R's direct children — this is the Range-coverage
// invariant the dataflow solver and editor-facing facts both rely on.
package ast

import "github.com/gscls/analyzer/pkg/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Range() token.Range
}

// Statement is any node that can appear in a statement list.
type Statement interface {
	Node
	stmtNode()
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Base carries the source range shared by every node, computed by the
// parser from the node's constituent tokens. Every node type embeds Base.
type Base struct {
	Rng token.Range
}

func (b Base) Range() token.Range { return b.Rng }

// At returns a Base covering the given range; a small constructor so
// parser code reads `ast.At(r)` instead of a literal struct each time.
func At(r token.Range) Base { return Base{Rng: r} }

// Script is the root node: the full parse of one source buffer.
type Script struct {
	Base
	Dependencies []*Dependency
	Precaches    []*Precache
	AnimTrees    []*UsingAnimTree
	Namespaces   []*Namespace // top-level `namespace X { ... }` blocks
	Functions    []*FunDefn
	Classes      []*ClassDefn
}

func (*Script) stmtNode() {}

// Dependency is a `#using path\to\script;` declaration.
type Dependency struct {
	Base
	Path string
}

func (*Dependency) stmtNode() {}

// Precache is a `#precache("type", "asset");` declaration.
type Precache struct {
	Base
	Type  string
	Asset string
}

func (*Precache) stmtNode() {}

// UsingAnimTree is a `#using_animtree("name");` declaration.
type UsingAnimTree struct {
	Base
	Name string
}

func (*UsingAnimTree) stmtNode() {}

// Namespace groups declarations under `namespace N { ... }`.
type Namespace struct {
	Base
	Name  string
	Funcs []*FunDefn
}

func (*Namespace) stmtNode() {}

// Param is a function/method parameter.
type Param struct {
	Base
	Name      string
	ByRef     bool
	Default   Expression // nil when the parameter has no default
	IsVararg  bool       // `...` trailing parameter
}

// FunDefn is a top-level or namespaced function/method definition.
type FunDefn struct {
	Base
	Namespace string
	Name      string
	Params    []*Param
	Body      *StmtList
	AutoExec  bool
	Private   bool
	DocText   string
}

func (*FunDefn) stmtNode() {}

// Structor is a class constructor/destructor (`init`/`destroy` by GSC
// convention, modeled distinctly from FunDefn because the definitions
// table tracks them per-class rather than per-namespace).
type Structor struct {
	Base
	IsDestructor bool
	Params       []*Param
	Body         *StmtList
}

func (*Structor) stmtNode() {}

// MemberDecl declares a class field, optionally with an initializer.
type MemberDecl struct {
	Base
	Name string
	Init Expression // nil if uninitialized
}

func (*MemberDecl) stmtNode() {}

// ClassDefn is a `class C : Base { ... }` definition.
type ClassDefn struct {
	Base
	Name     string
	Inherits string // "" if no base class
	Members  []*MemberDecl
	Methods  []*FunDefn
	Ctor     *Structor
	Dtor     *Structor
}

func (*ClassDefn) stmtNode() {}

// StmtList is a brace-delimited sequence of statements.
type StmtList struct {
	Base
	Stmts []Statement
}

func (*StmtList) stmtNode() {}

// Empty is a bare `;`.
type Empty struct{ Base }

func (*Empty) stmtNode() {}

// If is `if (Cond) Then [else Else]`. Else-if chains are represented by
// nesting another *If as Else.
type If struct {
	Base
	Cond Expression
	Then Statement
	Else Statement // nil, *If (else-if), or another Statement
}

func (*If) stmtNode() {}

// While is `while (Cond) Body`.
type While struct {
	Base
	Cond Expression
	Body Statement
}

func (*While) stmtNode() {}

// DoWhile is `do Body while (Cond);`.
type DoWhile struct {
	Base
	Body Statement
	Cond Expression
}

func (*DoWhile) stmtNode() {}

// For is `for (Init; Cond; Incr) Body`. Any of Init/Cond/Incr may be nil.
type For struct {
	Base
	Init Statement
	Cond Expression
	Incr Statement
	Body Statement
}

func (*For) stmtNode() {}

// Foreach is `foreach ([Key,] Value in Coll) Body`.
type Foreach struct {
	Base
	Key   string // "" if no key binding
	Value string
	Coll  Expression
	Body  Statement
}

func (*Foreach) stmtNode() {}

// CaseLabel is one `case Expr:` or `default:` label within a switch.
type CaseLabel struct {
	Base
	Expr      Expression // nil for `default:`
	IsDefault bool
}

// CaseGroup is a run of fallthrough-sharing labels followed by statements,
// e.g. `case 1: case 2: <stmts>`.
type CaseGroup struct {
	Base
	Labels []*CaseLabel
	Body   []Statement
}

// Switch is `switch (Expr) { case ...: ... }`.
type Switch struct {
	Base
	Expr   Expression
	Groups []*CaseGroup
}

func (*Switch) stmtNode() {}

// Return is `return [Expr];`.
type Return struct {
	Base
	Value Expression // nil for bare `return;`
}

func (*Return) stmtNode() {}

// WaitKind distinguishes the wait-family statements.
type WaitKind int

const (
	WaitSeconds WaitKind = iota
	WaitRealTime
	WaitTillFrameEnd
)

// Wait is `wait Expr;`, `waitrealtime Expr;`, or `waittillframeend;`.
type Wait struct {
	Base
	Kind  WaitKind
	Value Expression // nil for WaitTillFrameEnd
}

func (*Wait) stmtNode() {}

// Break is `break;`.
type Break struct{ Base }

func (*Break) stmtNode() {}

// Continue is `continue;`.
type Continue struct{ Base }

func (*Continue) stmtNode() {}

// Const is `const Name = Expr;`.
type Const struct {
	Base
	Name  string
	Value Expression
}

func (*Const) stmtNode() {}

// ExprStmt wraps an expression used as a statement (assignment or call).
type ExprStmt struct {
	Base
	X Expression
}

func (*ExprStmt) stmtNode() {}

// DevBlock is `/# ... #/`. Statements inside are parsed but every CFG node
// they produce is tagged InDevBlock.
type DevBlock struct {
	Base
	Body []Statement
}

func (*DevBlock) stmtNode() {}

// ---- Expressions ----

// Data is a literal expression (int/float/string/bool/undefined).
type Data struct {
	Base
	Kind  token.Kind // token.INT, FLOAT, STRING, ISTRING, TRUE, FALSE, UNDEFINED
	Text  string
}

func (*Data) exprNode() {}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

func (*Identifier) exprNode() {}

// Binary is a two-operand operator expression, including assignment
// (`=`, `+=`, ...) which the spec treats as the lowest precedence level.
type Binary struct {
	Base
	Op    token.Kind
	Left  Expression
	Right Expression
}

func (*Binary) exprNode() {}

// Prefix is a unary prefix operator: `+x`, `-x`, `~x`, `!x`, `&x`.
type Prefix struct {
	Base
	Op string
	X  Expression
}

func (*Prefix) exprNode() {}

// Postfix is `x++` / `x--`.
type Postfix struct {
	Base
	Op string
	X  Expression
}

func (*Postfix) exprNode() {}

// Ternary is `Cond ? Then : Else`.
type Ternary struct {
	Base
	Cond Expression
	Then Expression
	Else Expression
}

func (*Ternary) exprNode() {}

// Vector is a `( x, y, z )` vector literal.
type Vector struct {
	Base
	X, Y, Z Expression
}

func (*Vector) exprNode() {}

// Index is `Target[Sub]`.
type Index struct {
	Base
	Target Expression
	Sub    Expression
}

func (*Index) exprNode() {}

// Call is `Callee(Args...)`, possibly preceded by `thread`.
type Call struct {
	Base
	Callee  Expression
	Args    []Expression
	Thread  bool
}

func (*Call) exprNode() {}

// MethodCall is `Target.Method(Args...)`, possibly preceded by `thread`.
type MethodCall struct {
	Base
	Target Expression
	Method string
	Args   []Expression
	Thread bool
}

func (*MethodCall) exprNode() {}

// CalledOn is `self Method(Args...)` — an implicit-target method call.
type CalledOn struct {
	Base
	Method string
	Args   []Expression
	Thread bool
}

func (*CalledOn) exprNode() {}

// NamespacedMember is `Namespace::Name`.
type NamespacedMember struct {
	Base
	Namespace string
	Name      string
}

func (*NamespacedMember) exprNode() {}

// Constructor is `new Ident()`.
type Constructor struct {
	Base
	ClassName string
}

func (*Constructor) exprNode() {}

// Waittill is `Target waittill("event", a, b, ...)`.
type Waittill struct {
	Base
	Target Expression
	Event  Expression
	Params []string // identifiers bound to the event's arguments
}

func (*Waittill) exprNode() {}

// WaittillMatch is `Target waittillmatch("event", "value");`.
type WaittillMatch struct {
	Base
	Target Expression
	Event  Expression
	Value  Expression
}

func (*WaittillMatch) exprNode() {}

// Deref is `[[ Expr ]]` — a function-pointer dereference, optionally
// immediately called as `[[ Expr ]](Args...)` (see Call.Callee).
type Deref struct {
	Base
	X Expression
}

func (*Deref) exprNode() {}

// Field is `Target.Name` (non-call member access).
type Field struct {
	Base
	Target Expression
	Name   string
}

func (*Field) exprNode() {}

// NewRange constructs a Range-carrying base from explicit positions. Used
// by the parser and node builder helpers.
func NewRange(start, end token.Position) token.Range { return token.Range{Start: start, End: end} }
