package token

import "testing"

func TestLookupResolvesKeywordsCaseInsensitively(t *testing.T) {
	cases := map[string]Kind{
		"function": FUNCTION, "Function": FUNCTION, "FUNCTION": FUNCTION,
		"self": SELF, "Self": SELF,
		"notAKeyword": IDENT, "": IDENT,
	}
	for lexeme, want := range cases {
		if got := Lookup(lexeme); got != want {
			t.Errorf("Lookup(%q) = %s, want %s", lexeme, got, want)
		}
	}
}

func TestKindIsKeyword(t *testing.T) {
	if !FUNCTION.IsKeyword() {
		t.Errorf("FUNCTION.IsKeyword() = false, want true")
	}
	if IDENT.IsKeyword() {
		t.Errorf("IDENT.IsKeyword() = true, want false")
	}
	if LPAREN.IsKeyword() {
		t.Errorf("LPAREN.IsKeyword() = true, want false")
	}
}

func TestKindIsTrivia(t *testing.T) {
	for _, k := range []Kind{WHITESPACE, NEWLINE, LINE_COMMENT, BLOCK_COMMENT} {
		if !k.IsTrivia() {
			t.Errorf("%s.IsTrivia() = false, want true", k)
		}
	}
	if IDENT.IsTrivia() {
		t.Errorf("IDENT.IsTrivia() = true, want false")
	}
}

func TestKindStringFallsBackForUnknownValues(t *testing.T) {
	got := Kind(-1).String()
	if got != "Kind(-1)" {
		t.Errorf("Kind(-1).String() = %q, want %q", got, "Kind(-1)")
	}
	if FUNCTION.String() != "function" {
		t.Errorf("FUNCTION.String() = %q, want %q", FUNCTION.String(), "function")
	}
}

func TestRangeContains(t *testing.T) {
	outer := Range{Start: Position{Line: 1, Character: 0}, End: Position{Line: 3, Character: 0}}
	inner := Range{Start: Position{Line: 1, Character: 5}, End: Position{Line: 2, Character: 0}}
	if !outer.Contains(inner) {
		t.Errorf("expected outer to contain inner")
	}
	if inner.Contains(outer) {
		t.Errorf("expected inner not to contain outer")
	}
}

func TestRangeCoverReturnsSmallestEnclosingRange(t *testing.T) {
	a := Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 2, Character: 5}}
	b := Range{Start: Position{Line: 1, Character: 3}, End: Position{Line: 4, Character: 1}}
	got := a.Cover(b)
	want := Range{Start: Position{Line: 1, Character: 3}, End: Position{Line: 4, Character: 1}}
	if got != want {
		t.Errorf("Cover = %+v, want %+v", got, want)
	}
}

func TestNewStreamLinksPrevNext(t *testing.T) {
	toks := []Token{
		{Kind: FUNCTION, Lexeme: "function"},
		{Kind: IDENT, Lexeme: "Main"},
		{Kind: LPAREN, Lexeme: "("},
	}
	linked := NewStream(toks)
	if len(linked) != 3 {
		t.Fatalf("NewStream returned %d tokens, want 3", len(linked))
	}
	if linked[0].Prev() != nil {
		t.Errorf("first token's Prev() = %v, want nil", linked[0].Prev())
	}
	if linked[0].Next() != linked[1] {
		t.Errorf("first token's Next() did not point at second token")
	}
	if linked[2].Next() != nil {
		t.Errorf("last token's Next() = %v, want nil", linked[2].Next())
	}
	if linked[1].Prev() != linked[0] || linked[1].Next() != linked[2] {
		t.Errorf("middle token's links are wrong: prev=%v next=%v", linked[1].Prev(), linked[1].Next())
	}
}

func TestTokenStringIncludesKindLexemeAndRange(t *testing.T) {
	tok := Token{Kind: IDENT, Lexeme: "foo", Range: Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 5}}}
	got := tok.String()
	want := `IDENT("foo")@1:2-1:5`
	if got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
