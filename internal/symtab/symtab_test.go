package symtab

import (
	"testing"

	"github.com/gscls/analyzer/internal/types"
	"github.com/gscls/analyzer/pkg/token"
)

func TestIsReservedIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"self", "Self", "LEVEL", "Game", "anim", "VarArg"} {
		if !IsReserved(name) {
			t.Errorf("IsReserved(%q) = false, want true", name)
		}
	}
	if IsReserved("health") {
		t.Error("IsReserved(health) = true, want false")
	}
}

func TestClassInfoHasMemberNilSafe(t *testing.T) {
	var c *ClassInfo
	if c.HasMember("anything") {
		t.Error("HasMember on a nil *ClassInfo should return false")
	}
	c = &ClassInfo{Members: map[string]bool{"health": true}}
	if !c.HasMember("Health") {
		t.Error("HasMember should fold case")
	}
}

func TestTryGetReservedTakesPriorityOverLocals(t *testing.T) {
	tbl := New(nil, "", nil, nil)
	tbl.AddOrSet("x", types.Data{}, 0, false, token.Range{})
	if _, status := tbl.TryGet("self"); status != Reserved {
		t.Errorf("TryGet(self) status = %v, want Reserved", status)
	}
}

func TestTryGetFindsLocalThenGlobalThenNotDefined(t *testing.T) {
	globals := map[string]GlobalSymbol{"Foo": {Kind: GlobalFunction, Name: "Foo"}}
	tbl := New(globals, "", nil, nil)
	tbl.AddOrSet("x", types.Data{Type: types.Int}, 0, false, token.Range{})

	if v, status := tbl.TryGet("X"); status != Found || v.Value.Type != types.Int {
		t.Errorf("TryGet(X) = %+v, %v, want Found local x", v, status)
	}
	if _, status := tbl.TryGet("Foo"); status != GlobalBuiltin {
		t.Errorf("TryGet(Foo) status = %v, want GlobalBuiltin", status)
	}
	if _, status := tbl.TryGet("bar"); status != NotDefined {
		t.Errorf("TryGet(bar) status = %v, want NotDefined", status)
	}
}

func TestAddOrSetRefusesReservedAndConstantOverwrite(t *testing.T) {
	tbl := New(nil, "", nil, nil)
	if fail := tbl.AddOrSet("self", types.Data{}, 0, false, token.Range{}); fail != FailedReserved {
		t.Errorf("AddOrSet(self) = %v, want FailedReserved", fail)
	}
	if fail := tbl.AddOrSet("x", types.Data{Type: types.Int}, 0, true, token.Range{}); fail != OK {
		t.Fatalf("initial AddOrSet(x) = %v, want OK", fail)
	}
	if fail := tbl.AddOrSet("x", types.Data{Type: types.String}, 0, false, token.Range{}); fail != FailedConstant {
		t.Errorf("AddOrSet(x) over a constant = %v, want FailedConstant", fail)
	}
}

func TestSnapshotIsIndependentOfLiveTable(t *testing.T) {
	tbl := New(nil, "", nil, nil)
	tbl.AddOrSet("x", types.Data{Type: types.Int}, 0, false, token.Range{})
	snap := tbl.Snapshot()

	tbl.AddOrSet("x", types.Data{Type: types.String}, 0, false, token.Range{})
	if snap["x"].Value.Type != types.Int {
		t.Errorf("snapshot mutated after later write: got %v, want Int preserved", snap["x"].Value.Type)
	}
}

func TestRestoreLocalsReplacesEnvironment(t *testing.T) {
	tbl := New(nil, "", nil, nil)
	tbl.AddOrSet("x", types.Data{Type: types.Int}, 0, false, token.Range{})
	restored := map[string]*Variable{"y": {Name: "y", Value: types.Data{Type: types.String}}}
	tbl.RestoreLocals(restored)

	if _, status := tbl.TryGet("x"); status != NotDefined {
		t.Errorf("TryGet(x) after RestoreLocals status = %v, want NotDefined", status)
	}
	if v, status := tbl.TryGet("y"); status != Found || v.Value.Type != types.String {
		t.Errorf("TryGet(y) after RestoreLocals = %+v, %v, want Found String", v, status)
	}
}

func TestMergeUnionsValuesAndDropsOutOfScope(t *testing.T) {
	a := map[string]*Variable{
		"x": {Name: "x", Value: types.Data{Type: types.Int}, Constant: true, Scope: 0},
		"s": {Name: "s", Value: types.Data{Type: types.Bool}, Scope: 2},
	}
	b := map[string]*Variable{
		"x": {Name: "x", Value: types.Data{Type: types.String}, Constant: false, Scope: 0},
		"y": {Name: "y", Value: types.Data{Type: types.Float}, Scope: 0},
	}
	merged := Merge(a, b, 0)

	if _, ok := merged["s"]; ok {
		t.Error("Merge should drop entries whose scope exceeds targetScope")
	}
	if merged["x"].Constant {
		t.Error("Merge should AND the constant flag")
	}
	if merged["x"].Value.Type != (types.Int | types.String) {
		t.Errorf("merged[x].Value.Type = %v, want Int|String", merged["x"].Value.Type)
	}
	y, ok := merged["y"]
	if !ok {
		t.Fatal("Merge should keep a variable present only on one side")
	}
	if y.Value.Type != (types.Float | types.Undefined) {
		t.Errorf("merged[y].Value.Type = %v, want Float|Undefined since x's path never bound y", y.Value.Type)
	}
	if y.Constant {
		t.Error("a one-sided merge result can no longer be treated as constant")
	}
}

func TestMergeOneSidedVariableUnionsWithUndefined(t *testing.T) {
	// spec.md §8 scenario 2: `if (IsDefined(a) && a == 0) { b = 1; } b;`
	// must read b as Undefined|Int after the if, since the fallthrough
	// edge never binds b at all.
	thenSide := map[string]*Variable{"b": {Name: "b", Value: types.Data{Type: types.Int}, Scope: 0}}
	elseSide := map[string]*Variable{}

	merged := Merge(thenSide, elseSide, 0)

	b, ok := merged["b"]
	if !ok {
		t.Fatal("expected b to survive the merge")
	}
	if b.Value.Type != (types.Int | types.Undefined) {
		t.Errorf("merged[b].Value.Type = %v, want Int|Undefined", b.Value.Type)
	}
}

func TestEqualComparesValueConstantAndScope(t *testing.T) {
	a := map[string]*Variable{"x": {Value: types.Data{Type: types.Int}, Scope: 0}}
	b := map[string]*Variable{"x": {Value: types.Data{Type: types.Int}, Scope: 0}}
	if !Equal(a, b) {
		t.Error("Equal should report true for structurally identical environments")
	}
	b["x"].Scope = 1
	if Equal(a, b) {
		t.Error("Equal should report false once scope differs")
	}
}
