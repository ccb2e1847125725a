package parser

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

// Precedence levels, spec §4.1 table (1 lowest .. 11 highest binary
// level; unary prefix and call/access are handled outside this ladder by
// parseUnary, which always binds tighter than any binary operator).
const (
	LOWEST = iota
	ASSIGN
	LOGOR
	LOGAND
	BITOR
	BITXOR
	BITAND
	EQUALITY
	RELATIONAL
	SHIFTP
	ADDITIVE
	MULTIPLICATIVE
)

var binPrec = map[token.Kind]int{
	token.ASSIGN: ASSIGN, token.PLUS_ASSIGN: ASSIGN, token.MINUS_ASSIGN: ASSIGN,
	token.STAR_ASSIGN: ASSIGN, token.SLASH_ASSIGN: ASSIGN, token.PERCENT_ASSIGN: ASSIGN,
	token.AND_ASSIGN: ASSIGN, token.OR_ASSIGN: ASSIGN, token.XOR_ASSIGN: ASSIGN,
	token.SHL_ASSIGN: ASSIGN, token.SHR_ASSIGN: ASSIGN,
	token.OROR: LOGOR, token.ANDAND: LOGAND,
	token.PIPE: BITOR, token.CARET: BITXOR, token.AMP: BITAND,
	token.EQ: EQUALITY, token.NEQ: EQUALITY, token.EQEQEQ: EQUALITY, token.NEQEQ: EQUALITY,
	token.LT: RELATIONAL, token.LE: RELATIONAL, token.GT: RELATIONAL, token.GE: RELATIONAL,
	token.SHL: SHIFTP, token.SHR: SHIFTP,
	token.PLUS: ADDITIVE, token.MINUS: ADDITIVE,
	token.STAR: MULTIPLICATIVE, token.SLASH: MULTIPLICATIVE, token.PERCENT: MULTIPLICATIVE,
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN,
		token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.AND_ASSIGN, token.OR_ASSIGN,
		token.XOR_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN:
		return true
	}
	return false
}

// parseExpression implements precedence climbing. Assignment is
// right-associative; every other binary level is left-associative. A nil
// return means the expression could not be built (spec §4.1 "Failure
// semantics"): the caller emits a diagnostic at the offending token and
// continues.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		k := p.cur.Current().Kind
		prec, ok := binPrec[k]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur.Advance()
		nextMin := prec + 1
		if isAssignOp(k) {
			nextMin = prec // right-associative
		}
		right := p.parseExpression(nextMin)
		if right == nil {
			p.errorf(op.Range, diag.ExpectedToken, "expression", "nothing")
			return left
		}
		left = &ast.Binary{
			Base: ast.At(token.Range{Start: left.Range().Start, End: right.Range().End}),
			Op:   k, Left: left, Right: right,
		}
	}
}

var prefixOps = map[token.Kind]string{
	token.PLUS: "+", token.MINUS: "-", token.TILDE: "~", token.NOT: "!", token.AMP: "&",
}

// parseUnary handles level-12 prefix operators and `new Ident()`, then
// defers to parsePostfix for the level-13 call/access productions, which
// always bind tighter.
func (p *Parser) parseUnary() ast.Expression {
	if p.cur.Is(token.THREAD) {
		start := p.cur.Current().Range.Start
		p.cur.Advance()
		inner := p.parseUnary()
		return markThreaded(inner, start)
	}
	if op, ok := prefixOps[p.cur.Current().Kind]; ok {
		start := p.cur.Current().Range.Start
		p.cur.Advance()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &ast.Prefix{Base: ast.At(token.Range{Start: start, End: x.Range().End}), Op: op, X: x}
	}
	if p.cur.Is(token.NEW) {
		start := p.cur.Current().Range.Start
		p.cur.Advance()
		name := p.parseIdentName()
		p.expect(token.LPAREN)
		for !p.cur.Is(token.RPAREN) && !p.cur.IsEOF() {
			p.parseExpression(LOWEST)
			if p.cur.Is(token.COMMA) {
				p.cur.Advance()
				continue
			}
			break
		}
		end := p.cur.Current().Range.End
		p.expect(token.RPAREN)
		return &ast.Constructor{Base: ast.At(token.Range{Start: start, End: end}), ClassName: name}
	}
	return p.parsePostfix()
}

func markThreaded(e ast.Expression, start token.Position) ast.Expression {
	switch n := e.(type) {
	case *ast.Call:
		n.Thread = true
		n.Rng.Start = start
		return n
	case *ast.MethodCall:
		n.Thread = true
		n.Rng.Start = start
		return n
	case *ast.CalledOn:
		n.Thread = true
		n.Rng.Start = start
		return n
	default:
		return e
	}
}

// parsePostfix parses a primary expression and then the level-13
// call/access chain: `()`, `[]`, `.`, `::`, postfix `++`/`--`, and the
// `waittill`/`waittillmatch` pseudo-operators.
func (p *Parser) parsePostfix() ast.Expression {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}
	for {
		switch p.cur.Current().Kind {
		case token.LPAREN:
			args, end := p.parseArgs()
			left = &ast.Call{Base: ast.At(token.Range{Start: left.Range().Start, End: end}), Callee: left, Args: args}
		case token.LBRACK:
			p.cur.Advance()
			sub := p.parseExpression(LOWEST)
			end := p.cur.Current().Range.End
			p.expect(token.RBRACK)
			left = &ast.Index{Base: ast.At(token.Range{Start: left.Range().Start, End: end}), Target: left, Sub: sub}
		case token.DOT:
			p.cur.Advance()
			name := p.parseIdentName()
			if p.cur.Is(token.LPAREN) {
				args, end := p.parseArgs()
				left = &ast.MethodCall{Base: ast.At(token.Range{Start: left.Range().Start, End: end}), Target: left, Method: name, Args: args}
			} else {
				left = &ast.Field{Base: ast.At(token.Range{Start: left.Range().Start, End: p.cur.Current().Range.End}), Target: left, Name: name}
			}
		case token.COLONCOLON:
			p.cur.Advance()
			name := p.parseIdentName()
			ns := ""
			if id, ok := left.(*ast.Identifier); ok {
				ns = id.Name
			}
			left = &ast.NamespacedMember{Base: ast.At(token.Range{Start: left.Range().Start, End: p.cur.Current().Range.End}), Namespace: ns, Name: name}
		case token.INC, token.DEC:
			op := "++"
			if p.cur.Current().Kind == token.DEC {
				op = "--"
			}
			end := p.cur.Current().Range.End
			p.cur.Advance()
			left = &ast.Postfix{Base: ast.At(token.Range{Start: left.Range().Start, End: end}), Op: op, X: left}
		case token.THREAD:
			// "called-on position": `target thread Method(args)`.
			p.cur.Advance()
			name := p.parseIdentName()
			args, end := p.parseArgs()
			left = &ast.MethodCall{Base: ast.At(token.Range{Start: left.Range().Start, End: end}), Target: left, Method: name, Args: args, Thread: true}
		case token.WAITTILL:
			left = p.parseWaittill(left)
		case token.WAITTILLMATCH:
			left = p.parseWaittillMatch(left)
		default:
			return left
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expression, token.Position) {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.cur.Is(token.RPAREN) && !p.cur.IsEOF() {
		a := p.parseExpression(LOWEST)
		if a != nil {
			args = append(args, a)
		}
		if p.cur.Is(token.COMMA) {
			p.cur.Advance()
			continue
		}
		break
	}
	end := p.cur.Current().Range.End
	p.expect(token.RPAREN)
	return args, end
}

func (p *Parser) parseWaittill(target ast.Expression) ast.Expression {
	p.cur.Advance() // waittill
	p.expect(token.LPAREN)
	var event ast.Expression
	if !p.cur.Is(token.RPAREN) {
		event = p.parseExpression(LOWEST)
	}
	var params []string
	for p.cur.Is(token.COMMA) {
		p.cur.Advance()
		params = append(params, p.parseIdentName())
	}
	end := p.cur.Current().Range.End
	p.expect(token.RPAREN)
	return &ast.Waittill{Base: ast.At(token.Range{Start: target.Range().Start, End: end}), Target: target, Event: event, Params: params}
}

func (p *Parser) parseWaittillMatch(target ast.Expression) ast.Expression {
	p.cur.Advance() // waittillmatch
	p.expect(token.LPAREN)
	var event, value ast.Expression
	if !p.cur.Is(token.RPAREN) {
		event = p.parseExpression(LOWEST)
	}
	if p.cur.Is(token.COMMA) {
		p.cur.Advance()
		value = p.parseExpression(LOWEST)
	}
	end := p.cur.Current().Range.End
	p.expect(token.RPAREN)
	return &ast.WaittillMatch{Base: ast.At(token.Range{Start: target.Range().Start, End: end}), Target: target, Event: event, Value: value}
}

func (p *Parser) parsePrimary() ast.Expression {
	t := p.cur.Current()
	switch t.Kind {
	case token.INT, token.FLOAT, token.STRING, token.ISTRING, token.TRUE, token.FALSE, token.UNDEFINED:
		p.cur.Advance()
		return &ast.Data{Base: ast.At(t.Range), Kind: t.Kind, Text: t.Lexeme}
	case token.IDENT:
		return p.parseIdentOrSelf(t)
	case token.SELF:
		return p.parseSelfCall(t)
	case token.LPAREN:
		return p.parseGrouping(t)
	case token.LBRACK:
		return p.parseEmptyArray(t)
	case token.LBRACK2:
		return p.parseDeref(t)
	default:
		p.errorf(t.Range, diag.ExpectedToken, "expression", t.Kind.String())
		return nil
	}
}

func (p *Parser) parseIdentOrSelf(t *token.Token) ast.Expression {
	p.cur.Advance()
	return &ast.Identifier{Base: ast.At(t.Range), Name: t.Lexeme}
}

// parseSelfCall handles `self`, and the implicit-call shorthand `self
// foo(...)` / `self thread foo(...)` (spec §4.1 call/access level).
func (p *Parser) parseSelfCall(t *token.Token) ast.Expression {
	p.cur.Advance()
	selfExpr := &ast.Identifier{Base: ast.At(t.Range), Name: "self"}
	thread := false
	if p.cur.Is(token.THREAD) {
		thread = true
		p.cur.Advance()
	}
	if p.cur.Is(token.IDENT) && p.cur.Peek(1) != nil && p.cur.Peek(1).Kind == token.LPAREN {
		name := p.cur.Current().Lexeme
		p.cur.Advance()
		args, end := p.parseArgs()
		return &ast.CalledOn{Base: ast.At(token.Range{Start: t.Range.Start, End: end}), Method: name, Args: args, Thread: thread}
	}
	return selfExpr
}

func (p *Parser) parseGrouping(t *token.Token) ast.Expression {
	p.cur.Advance() // (
	first := p.parseExpression(LOWEST)
	switch p.cur.Current().Kind {
	case token.QUESTION:
		p.cur.Advance()
		then := p.parseExpression(LOWEST)
		p.expect(token.COLON)
		elseE := p.parseExpression(LOWEST)
		end := p.cur.Current().Range.End
		p.expect(token.RPAREN)
		return &ast.Ternary{Base: ast.At(token.Range{Start: t.Range.Start, End: end}), Cond: first, Then: then, Else: elseE}
	case token.COMMA:
		comps := []ast.Expression{first}
		for p.cur.Is(token.COMMA) {
			p.cur.Advance()
			comps = append(comps, p.parseExpression(LOWEST))
		}
		end := p.cur.Current().Range.End
		p.expect(token.RPAREN)
		v := &ast.Vector{Base: ast.At(token.Range{Start: t.Range.Start, End: end})}
		if len(comps) > 0 {
			v.X = comps[0]
		}
		if len(comps) > 1 {
			v.Y = comps[1]
		}
		if len(comps) > 2 {
			v.Z = comps[2]
		}
		return v
	default:
		p.expect(token.RPAREN)
		return first
	}
}

func (p *Parser) parseEmptyArray(t *token.Token) ast.Expression {
	p.cur.Advance() // [
	end := p.cur.Current().Range.End
	p.expect(token.RBRACK)
	return &ast.Data{Base: ast.At(token.Range{Start: t.Range.Start, End: end}), Kind: token.LBRACK, Text: "[]"}
}

func (p *Parser) parseDeref(t *token.Token) ast.Expression {
	p.cur.Advance() // [[
	x := p.parseExpression(LOWEST)
	end := p.cur.Current().Range.End
	p.expect(token.RBRACK2)
	return &ast.Deref{Base: ast.At(token.Range{Start: t.Range.Start, End: end}), X: x}
}
