package sense

import (
	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/sig"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// Build walks script once and returns every editor-facing fact for it
// (spec §6). defs is the already-populated definitions table (internal/sig)
// for this script; api resolves built-in function names so they can be
// tagged DefaultLibrary.
func Build(script *ast.Script, defs *sig.Table, api *apidata.Provider) *Facts {
	c := &collector{defs: defs, api: api}
	c.walkScript(script)
	return &Facts{Tokens: c.tokens, Folding: c.folding, Definitions: defs.DefinitionLocations()}
}

type collector struct {
	defs    *sig.Table
	api     *apidata.Provider
	tokens  []Token
	folding []FoldingRange
}

// fnScope is the per-function classification context: its own parameters
// and, inside a method, the enclosing class's member-field names (spec
// §4.5 "CurrentClass" mirrored onto the sense walk).
type fnScope struct {
	namespace string
	params    map[string]bool
	fields    map[string]bool
}

func (c *collector) addToken(t Token) { c.tokens = append(c.tokens, t) }

func (c *collector) fold(r ast.Node) {
	if r == nil {
		return
	}
	c.folding = append(c.folding, FoldingRange{Range: r.Range()})
}

func (c *collector) walkScript(s *ast.Script) {
	for _, ns := range s.Namespaces {
		c.addToken(Token{Range: ns.Range(), Name: ns.Name, Kind: Namespace, Modifiers: Declaration})
		for _, fn := range ns.Funcs {
			c.walkFunc(ns.Name, fn, nil)
		}
	}
	for _, fn := range s.Functions {
		c.walkFunc("", fn, nil)
	}
	for _, cd := range s.Classes {
		c.walkClass(cd)
	}
}

func toParamLikes(params []*ast.Param) []paramLike {
	out := make([]paramLike, len(params))
	for i, p := range params {
		out[i] = paramLike{Name: p.Name, ByRef: p.ByRef, IsVararg: p.IsVararg, HasDefault: p.Default != nil}
	}
	return out
}

func (c *collector) walkClass(cd *ast.ClassDefn) {
	c.addToken(Token{Range: cd.Range(), Name: cd.Name, Kind: Class, Modifiers: Declaration})
	c.fold(cd)

	fields := make(map[string]bool, len(cd.Members))
	for _, m := range cd.Members {
		fields[foldKey(m.Name)] = true
		c.addToken(Token{Range: m.Range(), Name: m.Name, Kind: Field, Modifiers: Declaration})
		if m.Init != nil {
			c.walkExpr(m.Init, &fnScope{fields: fields})
		}
	}
	for _, meth := range cd.Methods {
		c.walkFunc(cd.Name, meth, fields)
	}
	if cd.Ctor != nil {
		c.walkStructor(cd.Ctor, fields)
	}
	if cd.Dtor != nil {
		c.walkStructor(cd.Dtor, fields)
	}
}

func (c *collector) walkStructor(st *ast.Structor, fields map[string]bool) {
	c.fold(st.Body)
	scope := &fnScope{params: paramSet(st.Params), fields: fields}
	for _, p := range st.Params {
		c.addToken(Token{Range: p.Range(), Name: p.Name, Kind: Parameter, Modifiers: Declaration | Local})
	}
	c.walkStmtList(st.Body, scope)
}

func paramSet(params []*ast.Param) map[string]bool {
	out := make(map[string]bool, len(params))
	for _, p := range params {
		out[foldKey(p.Name)] = true
	}
	return out
}

func (c *collector) walkFunc(ns string, fn *ast.FunDefn, fields map[string]bool) {
	kind := Function
	if fields != nil {
		kind = Method
	}
	hover := signature(qualify(ns, fn.Name), toParamLikes(fn.Params), fn.DocText)
	c.addToken(Token{Range: fn.Range(), Name: fn.Name, Kind: kind, Modifiers: Declaration, Hover: hover})
	c.fold(fn.Body)

	scope := &fnScope{namespace: ns, params: paramSet(fn.Params), fields: fields}
	for _, p := range fn.Params {
		c.addToken(Token{Range: p.Range(), Name: p.Name, Kind: Parameter, Modifiers: Declaration | Local})
		if p.Default != nil {
			c.walkExpr(p.Default, scope)
		}
	}
	c.walkStmtList(fn.Body, scope)
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

func foldKey(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + ('a' - 'A')
		}
	}
	return string(b)
}

func (c *collector) walkStmtList(sl *ast.StmtList, scope *fnScope) {
	if sl == nil {
		return
	}
	for _, s := range sl.Stmts {
		c.walkStmt(s, scope)
	}
}

// bodyStmtList reports whether a loop/if body is itself a brace-delimited
// block, the only shape that gets its own folding range (spec §6).
func bodyStmtList(s ast.Statement) *ast.StmtList {
	sl, _ := s.(*ast.StmtList)
	return sl
}

func (c *collector) walkStmt(s ast.Statement, scope *fnScope) {
	switch st := s.(type) {
	case *ast.StmtList:
		c.fold(st)
		c.walkStmtList(st, scope)
	case *ast.If:
		c.walkExpr(st.Cond, scope)
		if sl := bodyStmtList(st.Then); sl != nil {
			c.fold(sl)
		}
		c.walkStmt(st.Then, scope)
		if st.Else != nil {
			if sl := bodyStmtList(st.Else); sl != nil {
				c.fold(sl)
			}
			c.walkStmt(st.Else, scope)
		}
	case *ast.While:
		c.walkExpr(st.Cond, scope)
		if sl := bodyStmtList(st.Body); sl != nil {
			c.fold(sl)
		}
		c.walkStmt(st.Body, scope)
	case *ast.DoWhile:
		if sl := bodyStmtList(st.Body); sl != nil {
			c.fold(sl)
		}
		c.walkStmt(st.Body, scope)
		c.walkExpr(st.Cond, scope)
	case *ast.For:
		if st.Init != nil {
			c.walkStmt(st.Init, scope)
		}
		if st.Cond != nil {
			c.walkExpr(st.Cond, scope)
		}
		if st.Incr != nil {
			c.walkStmt(st.Incr, scope)
		}
		if sl := bodyStmtList(st.Body); sl != nil {
			c.fold(sl)
		}
		c.walkStmt(st.Body, scope)
	case *ast.Foreach:
		c.walkExpr(st.Coll, scope)
		loopScope := scope.withLocals(st.Key, st.Value)
		if sl := bodyStmtList(st.Body); sl != nil {
			c.fold(sl)
		}
		c.walkStmt(st.Body, loopScope)
	case *ast.Switch:
		c.walkExpr(st.Expr, scope)
		c.fold(st)
		for _, grp := range st.Groups {
			c.fold(grp)
			for _, l := range grp.Labels {
				if l.Expr != nil {
					c.walkExpr(l.Expr, scope)
				}
			}
			for _, gs := range grp.Body {
				c.walkStmt(gs, scope)
			}
		}
	case *ast.Return:
		if st.Value != nil {
			c.walkExpr(st.Value, scope)
		}
	case *ast.Wait:
		if st.Value != nil {
			c.walkExpr(st.Value, scope)
		}
	case *ast.Const:
		c.addToken(Token{Range: st.Range(), Name: st.Name, Kind: Variable, Modifiers: Declaration | Local | ReadOnly})
		c.walkExpr(st.Value, scope)
	case *ast.ExprStmt:
		c.walkExpr(st.X, scope)
	case *ast.DevBlock:
		for _, gs := range st.Body {
			c.walkStmt(gs, scope)
		}
	case *ast.Break, *ast.Continue, *ast.Empty:
		// No identifiers to classify.
	}
}

func (scope *fnScope) withLocals(names ...string) *fnScope {
	out := &fnScope{namespace: scope.namespace, fields: scope.fields, params: make(map[string]bool, len(scope.params))}
	for k := range scope.params {
		out.params[k] = true
	}
	for _, n := range names {
		if n != "" {
			out.params[foldKey(n)] = true
		}
	}
	return out
}

func (c *collector) walkExpr(e ast.Expression, scope *fnScope) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Identifier:
		c.addToken(c.classify(x.Name, x.Range(), scope))
	case *ast.Data:
		// Literal, nothing to classify.
	case *ast.Binary:
		c.walkExpr(x.Left, scope)
		c.walkExpr(x.Right, scope)
	case *ast.Prefix:
		c.walkExpr(x.X, scope)
	case *ast.Postfix:
		c.walkExpr(x.X, scope)
	case *ast.Ternary:
		c.walkExpr(x.Cond, scope)
		c.walkExpr(x.Then, scope)
		c.walkExpr(x.Else, scope)
	case *ast.Vector:
		c.walkExpr(x.X, scope)
		c.walkExpr(x.Y, scope)
		c.walkExpr(x.Z, scope)
	case *ast.Index:
		c.walkExpr(x.Target, scope)
		c.walkExpr(x.Sub, scope)
	case *ast.Call:
		c.walkCallee(x.Callee, scope)
		for _, a := range x.Args {
			c.walkExpr(a, scope)
		}
	case *ast.MethodCall:
		c.walkExpr(x.Target, scope)
		c.addToken(Token{Range: x.Range(), Name: x.Method, Kind: Method, Modifiers: 0})
		for _, a := range x.Args {
			c.walkExpr(a, scope)
		}
	case *ast.CalledOn:
		c.addToken(Token{Range: x.Range(), Name: x.Method, Kind: Method, Modifiers: 0})
		for _, a := range x.Args {
			c.walkExpr(a, scope)
		}
	case *ast.NamespacedMember:
		kind := Function
		mods := Modifier(0)
		if c.defs.Namespaces[x.Namespace] {
			if _, ok := c.defs.Funcs[qualify(x.Namespace, x.Name)]; !ok {
				kind = Variable
			}
		}
		c.addToken(Token{Range: x.Range(), Name: x.Name, Kind: kind, Modifiers: mods})
	case *ast.Constructor:
		kind := Class
		if _, ok := c.defs.Classes[x.ClassName]; !ok {
			kind = Variable
		}
		c.addToken(Token{Range: x.Range(), Name: x.ClassName, Kind: kind})
	case *ast.Waittill:
		c.walkExpr(x.Target, scope)
		c.walkExpr(x.Event, scope)
		for _, p := range x.Params {
			c.addToken(Token{Name: p, Kind: Variable, Modifiers: Declaration | Local})
		}
	case *ast.WaittillMatch:
		c.walkExpr(x.Target, scope)
		c.walkExpr(x.Event, scope)
		c.walkExpr(x.Value, scope)
	case *ast.Deref:
		c.walkExpr(x.X, scope)
	case *ast.Field:
		c.walkExpr(x.Target, scope)
		kind := Field
		if scope.fields == nil || !scope.fields[foldKey(x.Name)] {
			kind = Property
		}
		c.addToken(Token{Range: x.Range(), Name: x.Name, Kind: kind})
	}
}

// walkCallee classifies a direct-call target by name; a computed callee
// (e.g. a Deref) carries no single identifier to tag and is left to its
// own walkExpr dispatch.
func (c *collector) walkCallee(callee ast.Expression, scope *fnScope) {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		c.walkExpr(callee, scope)
		return
	}
	c.addToken(c.classify(id.Name, id.Range(), scope))
}

// classify resolves a bare identifier occurrence against the definitions
// table, the built-in API provider, and the local function scope, in that
// order, to pick the most specific kind spec §6 asks for.
func (c *collector) classify(name string, r token.Range, scope *fnScope) Token {
	if scope.fields != nil && scope.fields[foldKey(name)] {
		return Token{Range: r, Name: name, Kind: Field}
	}
	if scope.namespace != "" {
		if _, ok := c.defs.Funcs[qualify(scope.namespace, name)]; ok {
			return Token{Range: r, Name: name, Kind: Function}
		}
	}
	if _, ok := c.defs.Funcs[qualify("", name)]; ok {
		return Token{Range: r, Name: name, Kind: Function}
	}
	if _, ok := c.defs.Classes[name]; ok {
		return Token{Range: r, Name: name, Kind: Class}
	}
	if c.defs.Namespaces[name] {
		return Token{Range: r, Name: name, Kind: Namespace}
	}
	if c.api != nil {
		if _, ok := c.api.FlagsFor(name); ok {
			return Token{Range: r, Name: name, Kind: Function, Modifiers: DefaultLibrary}
		}
	}
	if scope.params != nil && scope.params[foldKey(name)] {
		return Token{Range: r, Name: name, Kind: Parameter, Modifiers: Local}
	}
	return Token{Range: r, Name: name, Kind: Variable, Modifiers: Local}
}
