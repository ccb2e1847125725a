package apidata

import (
	"testing"

	"github.com/gscls/analyzer/internal/types"
)

func TestLoadRejectsInvalidJSON(t *testing.T) {
	if _, err := Load("not json"); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestLoadParsesOverloadsAndFlags(t *testing.T) {
	p, err := Load(`{"functions":[
		{"name":"Foo","reserved":true,"overloads":[{"minParams":1,"maxParams":2,"return":"Int"}]}
	]}`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	ovs, ok := p.Overloads("foo")
	if !ok {
		t.Fatal("expected Overloads lookup to succeed case-insensitively")
	}
	if len(ovs) != 1 || ovs[0].MinParams != 1 || ovs[0].MaxParams != 2 || ovs[0].Return != types.Int {
		t.Errorf("Overloads = %+v, want MinParams=1 MaxParams=2 Return=Int", ovs)
	}
	flags, ok := p.FlagsFor("FOO")
	if !ok || !flags.Reserved || !flags.BuiltIn {
		t.Errorf("FlagsFor = %+v, want BuiltIn and Reserved true", flags)
	}
}

func TestLoadVarargOverloadForcesUnboundedMaxParams(t *testing.T) {
	p, _ := Load(`{"functions":[
		{"name":"PrintLn","overloads":[{"minParams":0,"maxParams":0,"vararg":true,"return":"Void"}]}
	]}`)
	ovs, _ := p.Overloads("PrintLn")
	if ovs[0].MaxParams != -1 {
		t.Errorf("MaxParams = %d, want -1 for a vararg overload", ovs[0].MaxParams)
	}
}

func TestOverloadsMissingFunctionReturnsFalse(t *testing.T) {
	p := Default()
	if _, ok := p.Overloads("DoesNotExist"); ok {
		t.Error("expected Overloads for an unknown function to report false")
	}
}

func TestParseKindFallsBackToAnyForUnknownNames(t *testing.T) {
	p, _ := Load(`{"functions":[{"name":"Weird","overloads":[{"return":"NotAKind"}]}]}`)
	ovs, _ := p.Overloads("Weird")
	if ovs[0].Return != types.Any {
		t.Errorf("Return = %v, want types.Any for an unrecognized kind name", ovs[0].Return)
	}
}

func TestDefaultIncludesEngineBuiltins(t *testing.T) {
	p := Default()
	for _, name := range []string{"IsDefined", "GetTime", "VectorScale", "SpawnStruct", "PrintLn"} {
		if _, ok := p.Overloads(name); !ok {
			t.Errorf("Default() missing built-in %q", name)
		}
	}
	ovs, _ := p.Overloads("TableLookup")
	flags, _ := p.FlagsFor("TableLookup")
	if !flags.Autogenerated {
		t.Errorf("TableLookup flags = %+v, want Autogenerated", flags)
	}
	if len(ovs) != 1 || !ovs[0].Autogenerated {
		t.Errorf("TableLookup overloads = %+v, want Autogenerated propagated", ovs)
	}
}
