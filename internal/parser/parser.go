// Package parser implements the GSC/CSC LL(1) recursive-descent parser
// with local error recovery, grounded on the teacher's context-flag and
// panic-mode-recovery machinery (internal/parser/context.go,
// error_recovery.go) generalized from DWScript's Pascal-like grammar to
// GSC's C-like one.
package parser

import (
	"fmt"

	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// Parser consumes an immutable token stream and produces a *ast.Script
// plus a sequence of diagnostics. Pure with respect to files.
type Parser struct {
	cur   *cursor
	ctx   contextStack
	diags []diag.Diagnostic

	// silent suppresses diagnostic emission while the parser resynchronizes
	// after an error (§4.1 "silent flag").
	silent bool
}

// New creates a Parser over a token stream (see internal/lexer.Tokenize).
func New(tokens []*token.Token) *Parser {
	return &Parser{cur: newCursor(tokens)}
}

// Diagnostics returns the diagnostics accumulated during Parse.
func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags }

func (p *Parser) errorf(r token.Range, code diag.Code, args ...any) {
	if p.silent {
		return
	}
	p.diags = append(p.diags, diag.New(r, diag.Error, code, args...))
}

func (p *Parser) warnf(r token.Range, code diag.Code, args ...any) {
	if p.silent {
		return
	}
	p.diags = append(p.diags, diag.New(r, diag.Warning, code, args...))
}

// expect consumes the current token if it has kind k; otherwise it emits
// ExpectedToken anchored at the current token and returns false without
// advancing, so callers can attempt local recovery.
func (p *Parser) expect(k token.Kind) (*token.Token, bool) {
	if p.cur.Is(k) {
		return p.cur.Advance(), true
	}
	p.errorf(p.cur.Current().Range, diag.ExpectedToken, k.String(), p.cur.Current().Kind.String())
	return nil, false
}

// expectSemi consumes a `;`, or emits ExpectedSemiColon anchored at the
// end of the previous token's range, clamped to column ≥0 (§4.1).
func (p *Parser) expectSemi(prevEnd token.Position) {
	if p.cur.Is(token.SEMI) {
		p.cur.Advance()
		return
	}
	if prevEnd.Character > 0 {
		prevEnd.Character--
	}
	p.errorf(token.Range{Start: prevEnd, End: prevEnd}, diag.ExpectedSemiColon)
}

// Parse runs the full grammar over the token stream and returns the
// resulting *ast.Script. It never panics on well-formed or malformed
// input; unexpected internal failures are converted into a single
// InternalFault diagnostic (§4.1, §7).
func (p *Parser) Parse() (script *ast.Script, diags []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			var err error
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
			p.diags = append(p.diags, diag.Internal(diag.FaultAST, err))
			diags = p.diags
		}
	}()

	start := p.cur.Current().Range.Start
	s := &ast.Script{}
	for !p.cur.IsEOF() {
		mark := p.cur.Mark()
		switch p.cur.Current().Kind {
		case token.HASH_USING:
			s.Dependencies = append(s.Dependencies, p.parseDependency())
		case token.HASH_PRECACHE:
			s.Precaches = append(s.Precaches, p.parsePrecache())
		case token.HASH_USING_ANIMTREE:
			s.AnimTrees = append(s.AnimTrees, p.parseUsingAnimTree())
		case token.NAMESPACE:
			s.Namespaces = append(s.Namespaces, p.parseNamespace())
		case token.FUNCTION:
			s.Functions = append(s.Functions, p.parseFunDefn(""))
		case token.CLASS:
			s.Classes = append(s.Classes, p.parseClassDefn())
		case token.PRIVATE, token.AUTOEXEC:
			s.Functions = append(s.Functions, p.parseFunDefn(""))
		case token.DEVBLOCK_OPEN:
			p.skipTopLevelDevBlock()
		default:
			p.errorf(p.cur.Current().Range, diag.ExpectedScriptDefn)
			p.recoverTopLevel()
			if p.cur.Mark() == mark {
				// Guarantee forward progress even if recovery could not
				// find a synchronizer token before EOF.
				p.cur.Advance()
			}
		}
	}
	end := p.cur.Current().Range.End
	s.Rng = token.Range{Start: start, End: end}
	return s, p.diags
}

// recoverTopLevel advances until the current token is in the FIRST set of
// ScriptList/DependenciesList: any declaration starter, a dev-block
// delimiter, or EOF (§4.1 "Top-level resync").
func (p *Parser) recoverTopLevel() {
	for !p.cur.IsEOF() {
		switch p.cur.Current().Kind {
		case token.HASH_USING, token.HASH_PRECACHE, token.HASH_USING_ANIMTREE,
			token.FUNCTION, token.CLASS, token.NAMESPACE, token.DEVBLOCK_OPEN,
			token.PRIVATE, token.AUTOEXEC:
			return
		}
		p.cur.Advance()
	}
}

func (p *Parser) skipTopLevelDevBlock() {
	p.cur.Advance() // consume /#
	depth := 1
	for !p.cur.IsEOF() && depth > 0 {
		switch p.cur.Current().Kind {
		case token.DEVBLOCK_OPEN:
			depth++
		case token.DEVBLOCK_CLOSE:
			depth--
		}
		p.cur.Advance()
	}
}

func (p *Parser) parseDependency() *ast.Dependency {
	start := p.cur.Current().Range.Start
	p.cur.Advance() // #using
	path := p.scanUsingPath()
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Dependency{Base: ast.At(token.Range{Start: start, End: end}), Path: path}
}

// scanUsingPath walks the raw link chain (not the trivia-skipping
// advance) so that `scripts\foo bar\baz` is distinguishable from
// `scripts\foo\bar baz` — whitespace inside a path is part of the
// segment boundary, per spec §4.1 and §9.
func (p *Parser) scanUsingPath() string {
	var sb []byte
	for {
		t := p.cur.Current()
		if t == nil || t.Kind == token.SEMI || t.Kind == token.EOF {
			break
		}
		if t.Kind == token.BACKSLASH || t.Kind == token.IDENT || t.Kind == token.DOT ||
			!t.Kind.IsTrivia() {
			sb = append(sb, t.Lexeme...)
		}
		if t.Kind.IsTrivia() {
			p.cur.AdvanceRaw()
			continue
		}
		p.cur.AdvanceRaw()
	}
	p.cur.skipTrivia()
	return string(sb)
}

func (p *Parser) parsePrecache() *ast.Precache {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	typ := p.expectStringLiteral()
	p.expect(token.COMMA)
	asset := p.expectStringLiteral()
	p.expect(token.RPAREN)
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Precache{Base: ast.At(token.Range{Start: start, End: end}), Type: typ, Asset: asset}
}

func (p *Parser) parseUsingAnimTree() *ast.UsingAnimTree {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	name := p.expectStringLiteral()
	p.expect(token.RPAREN)
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.UsingAnimTree{Base: ast.At(token.Range{Start: start, End: end}), Name: name}
}

func (p *Parser) expectStringLiteral() string {
	if p.cur.Is(token.STRING) {
		lex := p.cur.Current().Lexeme
		p.cur.Advance()
		return unquote(lex)
	}
	p.errorf(p.cur.Current().Range, diag.ExpectedToken, "string literal", p.cur.Current().Kind.String())
	return ""
}

func unquote(lex string) string {
	if len(lex) >= 2 && lex[0] == '"' && lex[len(lex)-1] == '"' {
		return lex[1 : len(lex)-1]
	}
	return lex
}

func (p *Parser) parseNamespace() *ast.Namespace {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	name := p.parseIdentName()
	p.expect(token.LBRACE)
	var funcs []*ast.FunDefn
	for !p.cur.Is(token.RBRACE) && !p.cur.IsEOF() {
		if p.cur.Is(token.FUNCTION) || p.cur.Is(token.PRIVATE) || p.cur.Is(token.AUTOEXEC) {
			funcs = append(funcs, p.parseFunDefn(name))
		} else {
			p.errorf(p.cur.Current().Range, diag.ExpectedScriptDefn)
			p.localResync()
		}
	}
	end := p.cur.Current().Range.End
	p.expect(token.RBRACE)
	return &ast.Namespace{Base: ast.At(token.Range{Start: start, End: end}), Name: name, Funcs: funcs}
}

func (p *Parser) parseIdentName() string {
	if p.cur.Is(token.IDENT) {
		name := p.cur.Current().Lexeme
		p.cur.Advance()
		return name
	}
	p.errorf(p.cur.Current().Range, diag.ExpectedToken, "identifier", p.cur.Current().Kind.String())
	return ""
}

// parseFunDefn handles `function Name(params) { ... }`, including the
// `private`/`autoexec` modifiers that may precede `function`.
func (p *Parser) parseFunDefn(ns string) *ast.FunDefn {
	start := p.cur.Current().Range.Start
	private, autoexec := false, false
	for p.cur.Is(token.PRIVATE) || p.cur.Is(token.AUTOEXEC) {
		if p.cur.Is(token.PRIVATE) {
			private = true
		} else {
			autoexec = true
		}
		p.cur.Advance()
	}
	p.expect(token.FUNCTION)
	name := p.parseIdentName()
	params := p.parseParamList()

	wasNewly := p.ctx.EnterContextIfNewly(InFunctionBody)
	body := p.parseStmtList()
	p.ctx.ExitContextIfWasNewly(InFunctionBody, wasNewly)

	end := body.Rng.End
	return &ast.FunDefn{
		Base: ast.At(token.Range{Start: start, End: end}), Namespace: ns, Name: name,
		Params: params, Body: body, AutoExec: autoexec, Private: private,
	}
}

func (p *Parser) parseParamList() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.cur.Is(token.RPAREN) && !p.cur.IsEOF() {
		start := p.cur.Current().Range.Start
		byRef := false
		if p.cur.Is(token.AMP) {
			byRef = true
			p.cur.Advance()
		}
		name := p.parseIdentName()
		var def ast.Expression
		vararg := false
		if p.cur.Is(token.ASSIGN) {
			p.cur.Advance()
			def = p.parseExpression(LOWEST)
		}
		if name == "vararg" {
			vararg = true
		}
		end := p.cur.Current().Range.End
		params = append(params, &ast.Param{
			Base: ast.At(token.Range{Start: start, End: end}), Name: name,
			ByRef: byRef, Default: def, IsVararg: vararg,
		})
		if p.cur.Is(token.COMMA) {
			p.cur.Advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseClassDefn() *ast.ClassDefn {
	start := p.cur.Current().Range.Start
	p.cur.Advance() // class
	name := p.parseIdentName()
	inherits := ""
	if p.cur.Is(token.COLON) {
		p.cur.Advance()
		inherits = p.parseIdentName()
	}
	p.expect(token.LBRACE)
	cd := &ast.ClassDefn{Name: name, Inherits: inherits}
	for !p.cur.Is(token.RBRACE) && !p.cur.IsEOF() {
		switch {
		case p.cur.Is(token.FUNCTION):
			cd.Methods = append(cd.Methods, p.parseFunDefn(""))
		case p.cur.Is(token.IDENT) && p.cur.Current().Lexeme == "init":
			cd.Ctor = p.parseStructor(false)
		case p.cur.Is(token.IDENT) && p.cur.Current().Lexeme == "destroy":
			cd.Dtor = p.parseStructor(true)
		case p.cur.Is(token.IDENT):
			cd.Members = append(cd.Members, p.parseMemberDecl())
		default:
			p.errorf(p.cur.Current().Range, diag.ExpectedScriptDefn)
			p.localResync()
		}
	}
	end := p.cur.Current().Range.End
	p.expect(token.RBRACE)
	cd.Rng = token.Range{Start: start, End: end}
	return cd
}

func (p *Parser) parseStructor(isDtor bool) *ast.Structor {
	start := p.cur.Current().Range.Start
	p.cur.Advance() // init | destroy
	params := p.parseParamList()
	wasNewly := p.ctx.EnterContextIfNewly(InFunctionBody)
	body := p.parseStmtList()
	p.ctx.ExitContextIfWasNewly(InFunctionBody, wasNewly)
	return &ast.Structor{
		Base: ast.At(token.Range{Start: start, End: body.Rng.End}),
		IsDestructor: isDtor, Params: params, Body: body,
	}
}

func (p *Parser) parseMemberDecl() *ast.MemberDecl {
	start := p.cur.Current().Range.Start
	name := p.parseIdentName()
	var init ast.Expression
	if p.cur.Is(token.ASSIGN) {
		p.cur.Advance()
		init = p.parseExpression(LOWEST)
	}
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.MemberDecl{Base: ast.At(token.Range{Start: start, End: end}), Name: name, Init: init}
}

// localResync re-enters silent recovery and advances past the next
// statement terminator or matching brace (§4.1 "Local resync").
func (p *Parser) localResync() {
	wasSilent := p.silent
	p.silent = true
	depth := 0
	for !p.cur.IsEOF() {
		switch p.cur.Current().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				p.silent = wasSilent
				return
			}
			depth--
		case token.SEMI:
			if depth == 0 {
				p.cur.Advance()
				p.silent = wasSilent
				return
			}
		}
		p.cur.Advance()
	}
	p.silent = wasSilent
}
