// Package apidata implements the API data provider contract of spec §6:
// built-in function overloads with {parameters[], vararg, return-type}
// flags, backed by a JSON document the way the teacher's builtins table
// was data-driven, read here with tidwall/gjson instead of a Go literal
// table so the built-in set can be updated without a rebuild.
package apidata

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/internal/types"
)

// Provider answers overload lookups for built-in functions (spec §6
// "API data provider").
type Provider struct {
	funcs map[string][]symtab.Overload
	flags map[string]Flags
}

// Flags tags a built-in entry per spec §6: "built-in", "autogenerated",
// "reserved".
type Flags struct {
	BuiltIn       bool
	Autogenerated bool
	Reserved      bool
}

// Load parses a JSON document of the shape:
//
//	{"functions": [{"name": "...", "reserved": false, "autogenerated": false,
//	  "overloads": [{"minParams": 0, "maxParams": 1, "vararg": false, "return": "Int"}]}]}
func Load(jsonDoc string) (*Provider, error) {
	if !gjson.Valid(jsonDoc) {
		return nil, fmt.Errorf("apidata: invalid JSON document")
	}
	p := &Provider{funcs: make(map[string][]symtab.Overload), flags: make(map[string]Flags)}
	root := gjson.Parse(jsonDoc)
	for _, fn := range root.Get("functions").Array() {
		name := fn.Get("name").String()
		if name == "" {
			continue
		}
		p.flags[foldKey(name)] = Flags{
			BuiltIn:       true,
			Autogenerated: fn.Get("autogenerated").Bool(),
			Reserved:      fn.Get("reserved").Bool(),
		}
		var overloads []symtab.Overload
		for _, ov := range fn.Get("overloads").Array() {
			o := symtab.Overload{
				MinParams:     int(ov.Get("minParams").Int()),
				MaxParams:     int(ov.Get("maxParams").Int()),
				Vararg:        ov.Get("vararg").Bool(),
				Return:        parseKind(ov.Get("return").String()),
				Autogenerated: fn.Get("autogenerated").Bool(),
			}
			if o.Vararg {
				o.MaxParams = -1
			}
			overloads = append(overloads, o)
		}
		p.funcs[foldKey(name)] = overloads
	}
	return p, nil
}

func foldKey(name string) string { return stringsToLowerASCII(name) }

func stringsToLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

var kindNames = map[string]types.Kind{
	"Bool": types.Bool, "Int": types.Int, "Float": types.Float, "String": types.String,
	"IString": types.IString, "Array": types.Array, "Vector": types.Vector, "Struct": types.Struct,
	"Entity": types.Entity, "Object": types.Object, "Hash": types.Hash, "AnimTree": types.AnimTree,
	"Anim": types.Anim, "Function": types.Function, "FunctionPointer": types.FunctionPointer,
	"Undefined": types.Undefined, "UInt64": types.UInt64, "Error": types.Error, "Any": types.Any,
	"Void": types.Void,
}

func parseKind(s string) types.Kind {
	if k, ok := kindNames[s]; ok {
		return k
	}
	return types.Any
}

// Overloads returns the overload list for a built-in function name, and
// whether it exists.
func (p *Provider) Overloads(name string) ([]symtab.Overload, bool) {
	ov, ok := p.funcs[foldKey(name)]
	return ov, ok
}

// FlagsFor returns the built-in/autogenerated/reserved flags for name.
func (p *Provider) FlagsFor(name string) (Flags, bool) {
	f, ok := p.flags[foldKey(name)]
	return f, ok
}

// Default returns a small built-in table covering the engine predicates
// referenced directly by the expression analyzer (IsDefined) plus a
// representative sample of the GSC/CSC standard library, used when no
// external API data file is configured.
func Default() *Provider {
	doc := `{"functions":[
		{"name":"IsDefined","overloads":[{"minParams":1,"maxParams":1,"return":"Bool"}]},
		{"name":"IsDefinedIn","overloads":[{"minParams":2,"maxParams":2,"return":"Bool"}]},
		{"name":"GetTime","overloads":[{"minParams":0,"maxParams":0,"return":"Int"}]},
		{"name":"VectorScale","overloads":[{"minParams":2,"maxParams":2,"return":"Vector"}]},
		{"name":"VectorToAngles","overloads":[{"minParams":1,"maxParams":1,"return":"Vector"}]},
		{"name":"AbsVectorToAngles","overloads":[{"minParams":1,"maxParams":1,"return":"Vector"}]},
		{"name":"SpawnStruct","overloads":[{"minParams":0,"maxParams":0,"return":"Struct"}]},
		{"name":"TableLookup","autogenerated":true,"overloads":[{"minParams":3,"maxParams":4,"return":"Any"}]},
		{"name":"PrintLn","overloads":[{"minParams":0,"maxParams":0,"vararg":true,"return":"Void"}]}
	]}`
	p, err := Load(doc)
	if err != nil {
		// The literal above is a build-time constant; a parse failure here
		// is a programming error, not a runtime condition.
		panic(err)
	}
	return p
}
