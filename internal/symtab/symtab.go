// Package symtab implements the per-analysis-point symbol table (spec
// §4.5): a three-layer lookup over exported globals, local variables, and
// the current class/namespace context, grounded on the teacher's
// semantic-pass symbol table but generalized to case-insensitive GSC
// identifiers and a flow-sensitive merge operation.
package symtab

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/token"
)

var fold = cases.Fold()

func foldName(name string) string { return fold.String(name) }

// FoldForCompare exposes the case-folding used for identifier lookup, for
// callers (the expression analyzer) that need to compare a name against a
// reserved word without going through TryGet.
func FoldForCompare(name string) string { return foldName(name) }

// reserved is the set of identifiers that can never be bound as a local
// variable (spec §4.5).
var reserved = map[string]bool{
	"self": true, "level": true, "game": true, "anim": true, "vararg": true,
}

// IsReserved reports whether name (case-insensitively) is a reserved
// identifier.
func IsReserved(name string) bool { return reserved[foldName(name)] }

// Status classifies the result of TryGet.
type Status int

const (
	Found Status = iota
	NotDefined
	Reserved
	GlobalBuiltin
)

// Variable is a local binding (spec §3 "Symbol table").
type Variable struct {
	Name     string
	Value    types.Data
	Scope    int
	Constant bool
	Range    token.Range
}

// FailKind is the reason AddOrSet refused a write.
type FailKind int

const (
	OK FailKind = iota
	FailedConstant
	FailedReserved
)

// GlobalSymbol is an entry in the exported-symbol map (spec §6 Inputs):
// either a function record or a class record, identified by Kind.
type GlobalSymbol struct {
	Kind       GlobalKind
	Namespace  string
	Name       string
	Overloads  []Overload
	ClassID    string
}

type GlobalKind int

const (
	GlobalFunction GlobalKind = iota
	GlobalClass
)

// Overload is one callable shape of a function record (spec §6 "overload
// list with parameter specs and return spec").
type Overload struct {
	MinParams int
	MaxParams int // -1 when the overload is vararg (any count ≥ MinParams)
	Vararg    bool
	Return    types.Kind
	Autogenerated bool
}

// ClassInfo tracks the currently-analyzed class for implicit
// `this.member` resolution (spec §4.5 "CurrentClass").
type ClassInfo struct {
	Name    string
	Members map[string]bool
}

// HasMember reports whether name (case-insensitively) is a declared
// member of c; Members is keyed by folded name. A nil c has no members.
func (c *ClassInfo) HasMember(name string) bool {
	if c == nil {
		return false
	}
	return c.Members[foldName(name)]
}

// Table is the live symbol table threaded through one function/method's
// analysis.
type Table struct {
	globals   map[string]GlobalSymbol // keyed by "namespace::name" or bare name
	locals    map[string]*Variable    // keyed by folded identifier
	class     *ClassInfo
	namespace string
	known     map[string]bool // known namespace names
}

// New builds a Table seeded with the exported-symbol map.
func New(globals map[string]GlobalSymbol, namespace string, class *ClassInfo, knownNamespaces map[string]bool) *Table {
	return &Table{
		globals:   globals,
		locals:    make(map[string]*Variable),
		class:     class,
		namespace: namespace,
		known:     knownNamespaces,
	}
}

// CurrentClass returns the class context, or nil at file/namespace scope.
func (t *Table) CurrentClass() *ClassInfo { return t.class }

// CurrentNamespace returns the enclosing namespace, "" at top level.
func (t *Table) CurrentNamespace() string { return t.namespace }

// KnownNamespace reports whether ns has been declared anywhere in the
// analyzed script (spec §4.6 UnknownNamespace diagnostic).
func (t *Table) KnownNamespace(ns string) bool {
	key := foldName(ns)
	for name, ok := range t.known {
		if ok && foldName(name) == key {
			return true
		}
	}
	return false
}

// TryGet resolves name first against locals, then the exported map, per
// spec §4.5.
func (t *Table) TryGet(name string) (*Variable, Status) {
	if IsReserved(name) {
		return nil, Reserved
	}
	if v, ok := t.locals[foldName(name)]; ok {
		return v, Found
	}
	if _, ok := t.globals[name]; ok {
		return nil, GlobalBuiltin
	}
	return nil, NotDefined
}

// AddOrSet inserts name on first write and mutates it on subsequent
// writes (spec §4.5).
func (t *Table) AddOrSet(name string, value types.Data, scope int, isConstant bool, r token.Range) FailKind {
	if IsReserved(name) {
		return FailedReserved
	}
	key := foldName(name)
	if existing, ok := t.locals[key]; ok {
		if existing.Constant {
			return FailedConstant
		}
		existing.Value = value
		existing.Scope = scope
		existing.Constant = isConstant
		existing.Range = r
		return OK
	}
	t.locals[key] = &Variable{Name: name, Value: value, Scope: scope, Constant: isConstant, Range: r}
	return OK
}

// SetRaw replaces a single local binding directly, bypassing the
// constant/reserved checks of AddOrSet. Used by the expression analyzer
// to apply and later undo a narrowing fact around a sub-expression
// analyzed under a refined environment (spec §4.6).
func (t *Table) SetRaw(name string, v *Variable) {
	t.locals[foldName(name)] = v
}

// Snapshot copies the local-variable layer, used by the dataflow solver
// to build per-node IN/OUT environments without aliasing mutable state
// across nodes.
func (t *Table) Snapshot() map[string]*Variable {
	out := make(map[string]*Variable, len(t.locals))
	for k, v := range t.locals {
		cp := *v
		out[k] = &cp
	}
	return out
}

// RestoreLocals replaces the local-variable layer wholesale, used when
// the solver re-enters a node with a previously computed IN environment.
func (t *Table) RestoreLocals(locals map[string]*Variable) {
	t.locals = locals
}

// Merge joins two local-variable environments per spec §4.4: a variable
// present on both sides merges its Data via types.Merge and ANDs the
// constant flag; entries whose scope exceeds targetScope are discarded
// entirely (spec §3 symbol-table invariant); a variable present on only
// one side was never assigned along the other path, so it merges with an
// implicit Undefined rather than passing through unchanged — `if (c) { b
// = 1; } b;` must read b as Undefined|Int after the if, since the
// fallthrough edge carries no binding for b at all.
func Merge(a, b map[string]*Variable, targetScope int) map[string]*Variable {
	out := make(map[string]*Variable, len(a)+len(b))
	inB := func(k string) (*Variable, bool) {
		v, ok := b[k]
		if !ok || v.Scope > targetScope {
			return nil, false
		}
		return v, true
	}
	for k, v := range a {
		if v.Scope > targetScope {
			continue
		}
		if bv, ok := inB(k); ok {
			merged := *v
			merged.Value = types.Merge(v.Value, bv.Value)
			merged.Constant = v.Constant && bv.Constant
			out[k] = &merged
			continue
		}
		out[k] = oneSided(v)
	}
	for k, v := range b {
		if v.Scope > targetScope {
			continue
		}
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = oneSided(v)
	}
	return out
}

// oneSided builds the record for a variable bound on only one incoming
// path: its value unions with Undefined (the other path left it
// unassigned) and it can no longer be treated as constant.
func oneSided(v *Variable) *Variable {
	merged := *v
	merged.Value = types.Merge(v.Value, types.Of(types.Undefined))
	merged.Constant = false
	return &merged
}

// Equal reports whether two environments are identical for change
// detection in the solver's fixed-point loop.
func Equal(a, b map[string]*Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		o, ok := b[k]
		if !ok || o.Value != v.Value || o.Constant != v.Constant || o.Scope != v.Scope {
			return false
		}
	}
	return true
}
