// Package sig implements the signature analyzer (spec §4.2): a first
// pass over the AST that populates the definitions table consumed by the
// expression analyzer's call/namespace resolution, grounded on the
// teacher's declaration pass (internal/semantic/passes/declaration_pass.go
// in spirit: walk declarations before bodies, diagnose duplicates early).
package sig

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/internal/symtab"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// FuncDecl is a definitions-table entry for one function or method (spec
// §3 "Definitions table").
type FuncDecl struct {
	Namespace string
	Name      string
	Params    []*ast.Param
	DocText   string
	File      string
	Range     token.Range
	Node      *ast.FunDefn
}

// ClassDecl is a definitions-table entry for one class.
type ClassDecl struct {
	Name     string
	Inherits string
	Members  map[string]*ast.MemberDecl
	Methods  map[string]*FuncDecl
	File     string
	Range    token.Range
	Node     *ast.ClassDefn
}

// Table is the definitions table populated by Analyze. It is immutable
// once Analyze returns (spec §3 "Populated by the signature pass;
// immutable during dataflow").
type Table struct {
	// Funcs is keyed by "namespace::name", or bare "name" for top-level
	// functions with no namespace.
	Funcs      map[string]*FuncDecl
	Classes    map[string]*ClassDecl
	Namespaces map[string]bool
}

func key(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

// DefinitionLocations exposes per-definition ranges for cross-file
// Go-to-Definition (SPEC_FULL.md §13), keyed as in Funcs ("namespace::name",
// or bare "name" at top level) and, for classes, by class name.
func (t *Table) DefinitionLocations() map[string]token.Range {
	out := make(map[string]token.Range, len(t.Funcs)+len(t.Classes))
	for k, f := range t.Funcs {
		out[k] = f.Range
	}
	for k, c := range t.Classes {
		out[k] = c.Range
	}
	return out
}

// Analyze walks script and returns its definitions table plus any
// reserved-name/duplicate-name diagnostics (spec §4.2).
func Analyze(script *ast.Script, file string) (*Table, []diag.Diagnostic) {
	t := &Table{
		Funcs:      make(map[string]*FuncDecl),
		Classes:    make(map[string]*ClassDecl),
		Namespaces: make(map[string]bool),
	}
	var diags []diag.Diagnostic

	addFunc := func(ns string, fn *ast.FunDefn) {
		if symtab.IsReserved(fn.Name) {
			diags = append(diags, diag.New(fn.Range(), diag.Error, diag.ReservedSymbol, fn.Name))
			return
		}
		k := key(ns, fn.Name)
		if _, dup := t.Funcs[k]; dup {
			diags = append(diags, diag.New(fn.Range(), diag.Error, diag.RedefinitionOfSymbol, fn.Name))
			return
		}
		t.Funcs[k] = &FuncDecl{
			Namespace: ns, Name: fn.Name, Params: fn.Params,
			DocText: fn.DocText, File: file, Range: fn.Range(), Node: fn,
		}
	}

	for _, ns := range script.Namespaces {
		t.Namespaces[ns.Name] = true
		for _, fn := range ns.Funcs {
			addFunc(ns.Name, fn)
		}
	}
	for _, fn := range script.Functions {
		addFunc("", fn)
	}

	for _, cd := range script.Classes {
		if _, dup := t.Classes[cd.Name]; dup {
			diags = append(diags, diag.New(cd.Range(), diag.Error, diag.RedefinitionOfSymbol, cd.Name))
			continue
		}
		c := &ClassDecl{
			Name: cd.Name, Inherits: cd.Inherits, File: file, Range: cd.Range(), Node: cd,
			Members: make(map[string]*ast.MemberDecl), Methods: make(map[string]*FuncDecl),
		}
		for _, m := range cd.Members {
			if _, dup := c.Members[m.Name]; dup {
				diags = append(diags, diag.New(m.Range(), diag.Error, diag.RedefinitionOfSymbol, m.Name))
				continue
			}
			c.Members[m.Name] = m
		}
		for _, meth := range cd.Methods {
			if _, dup := c.Methods[meth.Name]; dup {
				diags = append(diags, diag.New(meth.Range(), diag.Error, diag.RedefinitionOfSymbol, meth.Name))
				continue
			}
			c.Methods[meth.Name] = &FuncDecl{
				Namespace: cd.Name, Name: meth.Name, Params: meth.Params,
				DocText: meth.DocText, File: file, Range: meth.Range(), Node: meth,
			}
		}
		t.Classes[cd.Name] = c
	}
	return t, diags
}

// ClassMembersSet builds the symtab.ClassInfo member set for c, used to
// seed the symbol table for each of its methods (spec §4.5
// "CurrentClass").
func (c *ClassDecl) ClassMembersSet() *symtab.ClassInfo {
	members := make(map[string]bool, len(c.Members))
	for name := range c.Members {
		members[symtab.FoldForCompare(name)] = true
	}
	return &symtab.ClassInfo{Name: c.Name, Members: members}
}
