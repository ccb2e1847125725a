package types

import "testing"

func TestKindHasAndIntersects(t *testing.T) {
	k := Int | Undefined

	if !k.Has(Int) {
		t.Errorf("Has(Int) = false, want true")
	}
	if k.Has(Float) {
		t.Errorf("Has(Float) = true, want false")
	}
	if !k.Intersects(Float | Int) {
		t.Errorf("Intersects(Float|Int) = false, want true")
	}
	if k.Intersects(Float | String) {
		t.Errorf("Intersects(Float|String) = true, want false")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		name string
		k    Kind
		want string
	}{
		{"void", Void, "Void"},
		{"any", Any, "Any"},
		{"plain int", Int, "Int"},
		{"int implies bool hidden", Int | Bool, "Int"},
		{"bool alone", Bool, "Bool"},
		{"istring implies string hidden", IString | String, "IString"},
		{"union of unrelated kinds", Int | String, "Int|String"},
		{"undefined union", Int | Undefined, "Int|Undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.k.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumberIsIntOrFloat(t *testing.T) {
	if !Number.Has(Int) || !Number.Has(Float) {
		t.Fatalf("Number = %v, want Int|Float", Number)
	}
	if Number.Has(String) {
		t.Fatalf("Number should not include String")
	}
}
