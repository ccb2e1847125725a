// Package types implements the union-of-kinds type/value lattice (spec
// §3 "Lattice value") that the expression analyzer and dataflow solver
// carry at every program point, grounded on the teacher's type-hierarchy
// package but flattened from DWScript's class hierarchy into a bitmask
// suited to flow-sensitive merge/narrow operations.
package types

// Kind is a bitmask over the primitive and composite GSC/CSC value
// categories. Multiple bits may be set simultaneously (e.g. Undefined|Int
// for a variable that may or may not have been assigned yet).
type Kind uint32

const (
	Bool Kind = 1 << iota
	Int
	Float
	String
	IString
	Array
	Vector
	Struct
	Entity
	Object
	Hash
	AnimTree
	Anim
	Function
	FunctionPointer
	Undefined
	UInt64
	Error

	kindCount
)

// Void is the empty mask: no value has reached this point yet.
const Void Kind = 0

// Any is every valid bit: the top of the lattice, used when a value's
// type cannot be determined precisely.
const Any = kindCount - 1

// Number is the numeric supertype used by the arithmetic coercion table.
const Number = Int | Float

var names = [...]struct {
	k Kind
	s string
}{
	{Bool, "Bool"}, {Int, "Int"}, {Float, "Float"}, {String, "String"},
	{IString, "IString"}, {Array, "Array"}, {Vector, "Vector"}, {Struct, "Struct"},
	{Entity, "Entity"}, {Object, "Object"}, {Hash, "Hash"}, {AnimTree, "AnimTree"},
	{Anim, "Anim"}, {Function, "Function"}, {FunctionPointer, "FunctionPointer"},
	{Undefined, "Undefined"}, {UInt64, "UInt64"}, {Error, "Error"},
}

// Has reports whether every bit of want is set in k.
func (k Kind) Has(want Kind) bool { return k&want == want }

// Intersects reports whether k and other share any bit.
func (k Kind) Intersects(other Kind) bool { return k&other != 0 }

// String renders k skipping base kinds implied by a present superset
// (spec §3 invariant: "pretty-printing skips base kinds when a superset
// is present"), e.g. a value carrying both Bool and Int prints only
// "Int" since Int ⊇ Bool in GSC's numeric-truthiness model.
func (k Kind) String() string {
	if k == Void {
		return "Void"
	}
	if k == Any {
		return "Any"
	}
	show := k
	if show.Has(IString) {
		show &^= String
	}
	if show.Has(Int) {
		show &^= Bool
	}
	var out []byte
	for _, e := range names {
		if show&e.k != 0 {
			if len(out) > 0 {
				out = append(out, '|')
			}
			out = append(out, e.s...)
		}
	}
	if len(out) == 0 {
		return "Void"
	}
	return string(out)
}
