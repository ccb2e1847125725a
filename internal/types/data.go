package types

// SubtypeKind discriminates which of Entity/Object/Function the Subtype
// record describes (spec §3 "optional sub-type set").
type SubtypeKind int

const (
	NoSubtype SubtypeKind = iota
	EntityTag
	ClassID
	FunctionTarget
)

// Subtype attaches a finite-enumeration refinement to an Entity, Object,
// or Function/FunctionPointer kind. Kept as a sum type (per spec §9
// "Lattice merges") so merges stay cheap and total: two Subtypes merge by
// falling back to NoSubtype whenever they disagree.
type Subtype struct {
	Kind SubtypeKind
	// Tag holds the entity-kind tag, class id, or target-function name
	// depending on Kind.
	Tag string
}

func (s Subtype) merge(o Subtype) Subtype {
	if s == o {
		return s
	}
	return Subtype{}
}

// Data is the lattice value carried at every program point (spec §3).
type Data struct {
	Type Kind
	Sub  Subtype

	// KnownBool is valid only when HasBool is true: the value's boolean
	// truthiness is statically known (e.g. a literal `true` or a
	// narrowing fact collapsed it to a single value).
	HasBool   bool
	KnownBool bool

	ReadOnly bool

	// Field is the member name this value was produced by, e.g. from
	// `ent.health`; used to diagnose field-set failures without
	// re-deriving the access chain (spec §4.6).
	Field string
}

// AnyData is the top-of-lattice value used when an operand's type cannot
// be determined precisely (spec §4.6 "Failure semantics").
func AnyData() Data { return Data{Type: Any} }

// VoidData is the bottom value: nothing has reached this point.
func VoidData() Data { return Data{Type: Void} }

// Of builds a Data carrying exactly the given kind bits.
func Of(k Kind) Data { return Data{Type: k} }

// Bool builds a known-boolean Data.
func BoolData(v bool) Data { return Data{Type: Bool, HasBool: true, KnownBool: v} }

// Merge joins two Data records describing the same symbol along
// different control-flow paths (spec §4.4 "the merge operation"):
// bitwise OR on kind masks, subtype union (here: equal-or-drop), known
// boolean combined by logical AND of agreement, read-only by AND.
func Merge(a, b Data) Data {
	out := Data{
		Type:     a.Type | b.Type,
		Sub:      a.Sub.merge(b.Sub),
		ReadOnly: a.ReadOnly && b.ReadOnly,
	}
	if a.HasBool && b.HasBool && a.KnownBool == b.KnownBool {
		out.HasBool, out.KnownBool = true, a.KnownBool
	}
	if a.Field != "" && a.Field == b.Field {
		out.Field = a.Field
	}
	return out
}

// Narrowing is a (keep, remove) mask pair applied to a Kind: newKind =
// (oldKind & Keep) &^ Remove, clamped to Any (spec §4.6).
type Narrowing struct {
	Keep   Kind
	Remove Kind
}

// Identity is the no-op narrowing.
func Identity() Narrowing { return Narrowing{Keep: Any, Remove: Void} }

// Apply narrows d.Type per n.
func (n Narrowing) Apply(d Data) Data {
	d.Type = (d.Type & n.Keep) &^ n.Remove
	return d
}

// Compose sequences two narrowings: keeps intersect, removes union (spec
// §4.6 "Composition is intersection of keeps and union of removes").
func (n Narrowing) Compose(o Narrowing) Narrowing {
	return Narrowing{Keep: n.Keep & o.Keep, Remove: n.Remove | o.Remove}
}

// RemoveUndefined is the narrowing applied by `IsDefined(x)` on the
// when-true edge.
func RemoveUndefined() Narrowing { return Narrowing{Keep: Any, Remove: Undefined} }

// OnlyUndefined is the narrowing applied by `IsDefined(x)` on the
// when-false edge.
func OnlyUndefined() Narrowing { return Narrowing{Keep: Undefined, Remove: Void} }

// Facts is the set of per-symbol narrowings produced by evaluating a
// boolean expression, keyed by symbol name (spec §4.6 WhenTrue/WhenFalse
// fact tables). A nil/empty Facts means "no refinement."
type Facts map[string]Narrowing

// MergeFacts composes facts for symbols present in both f and g and
// set-unions facts for symbols present in only one (spec §4.6 "merge on
// the same name composes; merge across disjoint names is set-union").
func MergeFacts(f, g Facts) Facts {
	if len(f) == 0 {
		return g
	}
	if len(g) == 0 {
		return f
	}
	out := make(Facts, len(f)+len(g))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range g {
		if existing, ok := out[k]; ok {
			out[k] = existing.Compose(v)
		} else {
			out[k] = v
		}
	}
	return out
}
