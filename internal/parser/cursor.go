package parser

import "github.com/gscls/analyzer/pkg/token"

// cursor walks a doubly-linked token.Token stream. Advance skips trivia
// (whitespace/comments); advanceRaw follows the raw Next() link without
// skipping, used only while scanning a `#using` path where whitespace is
// significant (spec §4.1, §9).
type cursor struct {
	cur *token.Token
}

func newCursor(tokens []*token.Token) *cursor {
	c := &cursor{cur: tokens[0]}
	c.skipTrivia()
	return c
}

func (c *cursor) skipTrivia() {
	for c.cur != nil && c.cur.Kind.IsTrivia() {
		if c.cur.Next() == nil {
			return
		}
		c.cur = c.cur.Next()
	}
}

// Current returns the current significant token.
func (c *cursor) Current() *token.Token { return c.cur }

// Advance moves to the next significant token and returns the token that
// was current before moving.
func (c *cursor) Advance() *token.Token {
	prev := c.cur
	if c.cur != nil && c.cur.Next() != nil {
		c.cur = c.cur.Next()
		c.skipTrivia()
	}
	return prev
}

// AdvanceRaw moves exactly one link, trivia included.
func (c *cursor) AdvanceRaw() *token.Token {
	prev := c.cur
	if c.cur != nil && c.cur.Next() != nil {
		c.cur = c.cur.Next()
	}
	return prev
}

// Peek looks ahead n significant tokens without moving the cursor.
func (c *cursor) Peek(n int) *token.Token {
	t := c.cur
	for i := 0; i < n && t != nil; i++ {
		t = t.Next()
		for t != nil && t.Kind.IsTrivia() {
			t = t.Next()
		}
	}
	return t
}

func (c *cursor) Is(k token.Kind) bool { return c.cur != nil && c.cur.Kind == k }

func (c *cursor) IsEOF() bool { return c.cur == nil || c.cur.Kind == token.EOF }

// mark is a lightweight position snapshot for backtracking.
type mark struct{ tok *token.Token }

func (c *cursor) Mark() mark { return mark{tok: c.cur} }

func (c *cursor) ResetTo(m mark) { c.cur = m.tok }
