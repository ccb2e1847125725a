package parser

import (
	"github.com/gscls/analyzer/internal/diag"
	"github.com/gscls/analyzer/pkg/ast"
	"github.com/gscls/analyzer/pkg/token"
)

func (p *Parser) parseStmtList() *ast.StmtList {
	start := p.cur.Current().Range.Start
	p.expect(token.LBRACE)
	var stmts []ast.Statement
	for !p.cur.Is(token.RBRACE) && !p.cur.IsEOF() {
		mark := p.cur.Mark()
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.cur.Mark() == mark {
			// parseStatement made no progress; force advancement to keep
			// recovery from looping on the same token (spec §8 Recovery
			// progress).
			p.cur.Advance()
		}
	}
	end := p.cur.Current().Range.End
	p.expect(token.RBRACE)
	return &ast.StmtList{Base: ast.At(token.Range{Start: start, End: end}), Stmts: stmts}
}

// parseStatement dispatches on the current token per the LL(1) grammar.
// A nil return means the statement could not be built; the caller
// swallows it and continues (spec §4.1 "Failure semantics").
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Current().Kind {
	case token.SEMI:
		r := p.cur.Current().Range
		p.cur.Advance()
		return &ast.Empty{Base: ast.At(r)}
	case token.LBRACE:
		return p.parseStmtList()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.SWITCH:
		return p.parseSwitch()
	case token.RETURN:
		return p.parseReturn()
	case token.WAIT, token.WAITREALTIME, token.WAITTILLFRAMEEND:
		return p.parseWait()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.CONST:
		return p.parseConst()
	case token.DEVBLOCK_OPEN:
		return p.parseDevBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	then := p.parseStatement()
	var elseStmt ast.Statement
	if p.cur.Is(token.ELSE) {
		p.cur.Advance()
		elseStmt = p.parseStatement()
	}
	end := p.endOf(then)
	if elseStmt != nil {
		end = p.endOf(elseStmt)
	}
	return &ast.If{Base: ast.At(token.Range{Start: start, End: end}), Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) endOf(s ast.Statement) token.Position {
	if s == nil {
		return p.cur.Current().Range.End
	}
	return s.Range().End
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	wasNewly := p.ctx.EnterContextIfNewly(InLoopBody)
	body := p.parseStatement()
	p.ctx.ExitContextIfWasNewly(InLoopBody, wasNewly)
	return &ast.While{Base: ast.At(token.Range{Start: start, End: p.endOf(body)}), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	wasNewly := p.ctx.EnterContextIfNewly(InLoopBody)
	body := p.parseStatement()
	p.ctx.ExitContextIfWasNewly(InLoopBody, wasNewly)
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.DoWhile{Base: ast.At(token.Range{Start: start, End: end}), Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	var init ast.Statement
	if !p.cur.Is(token.SEMI) {
		init = p.parseExprStatementNoSemi()
	}
	p.expect(token.SEMI)
	var cond ast.Expression
	if !p.cur.Is(token.SEMI) {
		cond = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMI)
	var incr ast.Statement
	if !p.cur.Is(token.RPAREN) {
		incr = p.parseExprStatementNoSemi()
	}
	p.expect(token.RPAREN)
	wasNewly := p.ctx.EnterContextIfNewly(InLoopBody)
	body := p.parseStatement()
	p.ctx.ExitContextIfWasNewly(InLoopBody, wasNewly)
	return &ast.For{Base: ast.At(token.Range{Start: start, End: p.endOf(body)}), Init: init, Cond: cond, Incr: incr, Body: body}
}

func (p *Parser) parseForeach() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	first := p.parseIdentName()
	key, value := "", first
	if p.cur.Is(token.COMMA) {
		p.cur.Advance()
		key = first
		value = p.parseIdentName()
	}
	p.expect(token.IN)
	coll := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	wasNewly := p.ctx.EnterContextIfNewly(InLoopBody)
	body := p.parseStatement()
	p.ctx.ExitContextIfWasNewly(InLoopBody, wasNewly)
	return &ast.Foreach{Base: ast.At(token.Range{Start: start, End: p.endOf(body)}), Key: key, Value: value, Coll: coll, Body: body}
}

func (p *Parser) parseSwitch() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	p.expect(token.LPAREN)
	expr := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	wasNewly := p.ctx.EnterContextIfNewly(InSwitchBody)
	var groups []*ast.CaseGroup
	for !p.cur.Is(token.RBRACE) && !p.cur.IsEOF() {
		gStart := p.cur.Current().Range.Start
		var labels []*ast.CaseLabel
		for p.cur.Is(token.CASE) || p.cur.Is(token.DEFAULT) {
			lStart := p.cur.Current().Range.Start
			if p.cur.Is(token.CASE) {
				p.cur.Advance()
				e := p.parseExpression(LOWEST)
				p.expect(token.COLON)
				labels = append(labels, &ast.CaseLabel{Base: ast.At(token.Range{Start: lStart, End: p.cur.Current().Range.End}), Expr: e})
			} else {
				p.cur.Advance()
				p.expect(token.COLON)
				labels = append(labels, &ast.CaseLabel{Base: ast.At(token.Range{Start: lStart, End: p.cur.Current().Range.End}), IsDefault: true})
			}
		}
		var body []ast.Statement
		for !p.cur.Is(token.CASE) && !p.cur.Is(token.DEFAULT) && !p.cur.Is(token.RBRACE) && !p.cur.IsEOF() {
			mark := p.cur.Mark()
			s := p.parseStatement()
			if s != nil {
				body = append(body, s)
			}
			if p.cur.Mark() == mark {
				p.cur.Advance()
			}
		}
		if len(labels) == 0 {
			break
		}
		groups = append(groups, &ast.CaseGroup{Base: ast.At(token.Range{Start: gStart, End: p.cur.Current().Range.End}), Labels: labels, Body: body})
	}
	p.ctx.ExitContextIfWasNewly(InSwitchBody, wasNewly)

	end := p.cur.Current().Range.End
	p.expect(token.RBRACE)
	return &ast.Switch{Base: ast.At(token.Range{Start: start, End: end}), Expr: expr, Groups: groups}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	var val ast.Expression
	if !p.cur.Is(token.SEMI) {
		val = p.parseExpression(LOWEST)
	}
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Return{Base: ast.At(token.Range{Start: start, End: end}), Value: val}
}

func (p *Parser) parseWait() ast.Statement {
	start := p.cur.Current().Range.Start
	kind := ast.WaitSeconds
	switch p.cur.Current().Kind {
	case token.WAITREALTIME:
		kind = ast.WaitRealTime
	case token.WAITTILLFRAMEEND:
		kind = ast.WaitTillFrameEnd
	}
	p.cur.Advance()
	var val ast.Expression
	if kind != ast.WaitTillFrameEnd {
		val = p.parseExpression(LOWEST)
	}
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Wait{Base: ast.At(token.Range{Start: start, End: end}), Kind: kind, Value: val}
}

func (p *Parser) parseBreak() ast.Statement {
	start := p.cur.Current().Range.Start
	if !p.ctx.Has(InLoopBody) && !p.ctx.Has(InSwitchBody) {
		p.errorf(p.cur.Current().Range, diag.InvalidBreakContext)
	}
	p.cur.Advance()
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Break{Base: ast.At(token.Range{Start: start, End: end})}
}

func (p *Parser) parseContinue() ast.Statement {
	start := p.cur.Current().Range.Start
	if !p.ctx.Has(InLoopBody) {
		p.errorf(p.cur.Current().Range, diag.InvalidContinueContext)
	}
	p.cur.Advance()
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Continue{Base: ast.At(token.Range{Start: start, End: end})}
}

func (p *Parser) parseConst() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance()
	name := p.parseIdentName()
	p.expect(token.ASSIGN)
	val := p.parseExpression(LOWEST)
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.Const{Base: ast.At(token.Range{Start: start, End: end}), Name: name, Value: val}
}

func (p *Parser) parseDevBlock() ast.Statement {
	start := p.cur.Current().Range.Start
	p.cur.Advance() // /#
	wasNewly := p.ctx.EnterContextIfNewly(InDevBlock)
	var stmts []ast.Statement
	for !p.cur.Is(token.DEVBLOCK_CLOSE) && !p.cur.IsEOF() {
		mark := p.cur.Mark()
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.cur.Mark() == mark {
			p.cur.Advance()
		}
	}
	p.ctx.ExitContextIfWasNewly(InDevBlock, wasNewly)
	end := p.cur.Current().Range.End
	p.expect(token.DEVBLOCK_CLOSE)
	return &ast.DevBlock{Base: ast.At(token.Range{Start: start, End: end}), Body: stmts}
}

func (p *Parser) parseExprStatement() ast.Statement {
	start := p.cur.Current().Range.Start
	e := p.parseExpression(LOWEST)
	if e == nil {
		p.localResync()
		return nil
	}
	end := p.cur.Current().Range.End
	p.expectSemi(end)
	return &ast.ExprStmt{Base: ast.At(token.Range{Start: start, End: end}), X: e}
}

// parseExprStatementNoSemi is used inside a `for (...)` header where the
// statement is terminated by `;` or `)` rather than consuming one itself.
func (p *Parser) parseExprStatementNoSemi() ast.Statement {
	start := p.cur.Current().Range.Start
	e := p.parseExpression(LOWEST)
	if e == nil {
		return nil
	}
	return &ast.ExprStmt{Base: ast.At(token.Range{Start: start, End: p.cur.Current().Range.End}), X: e}
}
