// Package lexer scans a GSC/CSC source buffer into a pkg/token stream.
//
// The lexer is an out-of-core collaborator per the analyzer's external
// interfaces (an LSP host may supply its own incremental scanner), but a
// reference implementation ships here so the pipeline is runnable
// end-to-end: parser, CFG builder, and dataflow solver all consume the
// pkg/token.Token stream this package produces.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gscls/analyzer/pkg/token"
)

// Option configures a Lexer.
type Option func(*Lexer)

// WithTrivia records keep on the Lexer but does not change its output:
// Tokenize always emits WHITESPACE/NEWLINE/comment tokens, whatever this
// option is set to (see Tokenize).
func WithTrivia(keep bool) Option {
	return func(l *Lexer) { l.keepTrivia = keep }
}

// Lexer is a rune-at-a-time scanner over a UTF-16-code-unit-positioned
// source buffer. Positions are reported in UTF-16 code units to match the
// LSP convention described in the analyzer's external interfaces; for the
// BMP-only subset GSC scripts are normally authored in, this coincides
// with the rune count.
type Lexer struct {
	input      string
	pos        int // byte offset of ch
	readPos    int // byte offset of next rune
	ch         rune
	line       int
	character  int
	keepTrivia bool
}

// New creates a Lexer over src, stripping a UTF-8 BOM if present.
func New(src string, opts ...Option) *Lexer {
	if strings.HasPrefix(src, "\xef\xbb\xbf") {
		src = src[len("\xef\xbb\xbf"):]
	}
	l := &Lexer{input: src, line: 0, character: 0}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.pos = l.readPos
	l.readPos += w
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) advancePos() {
	if l.ch == '\n' {
		l.line++
		l.character = 0
	} else if l.ch != 0 {
		l.character++
	}
}

func (l *Lexer) currentPosition() token.Position {
	return token.Position{Line: l.line, Character: l.character}
}

// Tokenize scans the entire buffer and returns the doubly-linked token
// list. Trivia (whitespace/comments) is always included in the returned
// list and linked via Prev/Next — the parser's advance operation skips it,
// but #using path scanning walks the raw link chain to stay whitespace
// sensitive (spec §4.1, §9). The WithTrivia option is therefore a no-op
// kept for call-site documentation; trivia inclusion is not optional.
// The final token is always an EOF token.
func (l *Lexer) Tokenize() []*token.Token {
	var toks []token.Token
	for {
		t := l.scanOne()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return token.NewStream(toks)
}

func (l *Lexer) scanOne() token.Token {
	start := l.currentPosition()

	switch {
	case l.ch == 0:
		return l.tok(token.EOF, "", start)
	case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
		return l.scanWhitespace(start)
	case l.ch == '\n':
		l.advancePos()
		l.readChar()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\n", Range: token.Range{Start: start, End: l.currentPosition()}}
	case l.ch == '/' && l.peekChar() == '/':
		return l.scanLineComment(start)
	case l.ch == '/' && l.peekChar() == '*':
		return l.scanBlockComment(start)
	case l.ch == '/' && l.peekChar() == '#':
		l.advancePos()
		l.readChar()
		l.advancePos()
		l.readChar()
		return l.finish(token.DEVBLOCK_OPEN, "/#", start)
	case l.ch == '#' && l.peekChar() == '/':
		l.advancePos()
		l.readChar()
		l.advancePos()
		l.readChar()
		return l.finish(token.DEVBLOCK_CLOSE, "#/", start)
	case l.ch == '#':
		return l.scanDirective(start)
	case isIdentStart(l.ch):
		return l.scanIdentOrKeyword(start)
	case isDigit(l.ch):
		return l.scanNumber(start)
	case l.ch == '"':
		return l.scanString(start, '"')
	case l.ch == '&' && l.peekChar() == '"':
		l.advancePos()
		l.readChar()
		t := l.scanString(start, '"')
		t.Kind = token.ISTRING
		t.Lexeme = "&" + t.Lexeme
		return t
	default:
		return l.scanPunct(start)
	}
}

func (l *Lexer) tok(k token.Kind, lex string, start token.Position) token.Token {
	return token.Token{Kind: k, Lexeme: lex, Range: token.Range{Start: start, End: start}}
}

func (l *Lexer) finish(k token.Kind, lex string, start token.Position) token.Token {
	return token.Token{Kind: k, Lexeme: lex, Range: token.Range{Start: start, End: l.currentPosition()}}
}

func (l *Lexer) scanWhitespace(start token.Position) token.Token {
	var sb strings.Builder
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	return l.finish(token.WHITESPACE, sb.String(), start)
}

func (l *Lexer) scanLineComment(start token.Position) token.Token {
	var sb strings.Builder
	for l.ch != 0 && l.ch != '\n' {
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	return l.finish(token.LINE_COMMENT, sb.String(), start)
}

func (l *Lexer) scanBlockComment(start token.Position) token.Token {
	var sb strings.Builder
	sb.WriteString("/*")
	l.advancePos()
	l.readChar()
	l.advancePos()
	l.readChar()
	for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	if l.ch != 0 {
		sb.WriteString("*/")
		l.advancePos()
		l.readChar()
		l.advancePos()
		l.readChar()
	}
	return l.finish(token.BLOCK_COMMENT, sb.String(), start)
}

// scanDirective handles `#using`, `#precache`, `#using_animtree` and
// `#insert`; any other word after `#` yields an ILLEGAL token. The path
// after `#using` is not scanned here: its segments come out as ordinary
// IDENT tokens and its `\` separators as BACKSLASH punctuators, with the
// whitespace between them kept as trivia tokens (spec §4.1).
func (l *Lexer) scanDirective(start token.Position) token.Token {
	l.advancePos()
	l.readChar()
	word := l.readWord()
	switch strings.ToLower(word) {
	case "using":
		return l.finish(token.HASH_USING, "#using", start)
	case "precache":
		return l.finish(token.HASH_PRECACHE, "#precache", start)
	case "using_animtree":
		return l.finish(token.HASH_USING_ANIMTREE, "#using_animtree", start)
	case "insert":
		return l.finish(token.HASH_INSERT, "#insert", start)
	default:
		return l.finish(token.ILLEGAL, "#"+word, start)
	}
}

func (l *Lexer) readWord() string {
	var sb strings.Builder
	for isIdentPart(l.ch) {
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	return sb.String()
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
func isDigit(r rune) bool      { return r >= '0' && r <= '9' }

func (l *Lexer) scanIdentOrKeyword(start token.Position) token.Token {
	word := l.readWord()
	// `self foo` (implicit method call on self) and namespaced access use
	// `::`; both are disambiguated by the parser, not the lexer.
	return l.finish(token.Lookup(word), word, start)
}

func (l *Lexer) scanNumber(start token.Position) token.Token {
	var sb strings.Builder
	isFloat := false
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.advancePos()
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			sb.WriteRune(l.ch)
			l.advancePos()
			l.readChar()
		}
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.advancePos()
			l.readChar()
		}
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return l.finish(kind, sb.String(), start)
}

func (l *Lexer) scanString(start token.Position, quote rune) token.Token {
	var sb strings.Builder
	sb.WriteRune(quote)
	l.advancePos()
	l.readChar()
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' && l.peekChar() != 0 {
			sb.WriteRune(l.ch)
			l.advancePos()
			l.readChar()
		}
		sb.WriteRune(l.ch)
		l.advancePos()
		l.readChar()
	}
	if l.ch == quote {
		sb.WriteRune(quote)
		l.advancePos()
		l.readChar()
	}
	kind := token.STRING
	if strings.HasPrefix(strings.TrimSpace(sb.String()), "&") {
		kind = token.ISTRING
	}
	return l.finish(kind, sb.String(), start)
}

type punctRule struct {
	lexeme string
	kind   token.Kind
}

// multiCharPuncts is ordered longest-first so greedy matching picks `<<=`
// before `<<` before `<`.
var multiCharPuncts = []punctRule{
	{"<<=", token.SHL_ASSIGN}, {">>=", token.SHR_ASSIGN},
	{"===", token.EQEQEQ}, {"!==", token.NEQEQ},
	{"[[", token.LBRACK2}, {"]]", token.RBRACK2},
	{"::", token.COLONCOLON},
	{"+=", token.PLUS_ASSIGN}, {"-=", token.MINUS_ASSIGN},
	{"*=", token.STAR_ASSIGN}, {"/=", token.SLASH_ASSIGN},
	{"%=", token.PERCENT_ASSIGN}, {"&=", token.AND_ASSIGN},
	{"|=", token.OR_ASSIGN}, {"^=", token.XOR_ASSIGN},
	{"++", token.INC}, {"--", token.DEC},
	{"||", token.OROR}, {"&&", token.ANDAND},
	{"==", token.EQ}, {"!=", token.NEQ},
	{"<=", token.LE}, {">=", token.GE},
	{"<<", token.SHL}, {">>", token.SHR},
}

var singleCharPuncts = map[rune]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACK, ']': token.RBRACK, ';': token.SEMI, ',': token.COMMA,
	'.': token.DOT, ':': token.COLON, '?': token.QUESTION,
	'=': token.ASSIGN, '|': token.PIPE, '^': token.CARET, '&': token.AMP,
	'<': token.LT, '>': token.GT, '+': token.PLUS, '-': token.MINUS,
	'*': token.STAR, '/': token.SLASH, '%': token.PERCENT, '!': token.NOT,
	'~': token.TILDE, '\\': token.BACKSLASH,
}

func (l *Lexer) scanPunct(start token.Position) token.Token {
	rest := l.input[l.pos:]
	for _, rule := range multiCharPuncts {
		if strings.HasPrefix(rest, rule.lexeme) {
			for range rule.lexeme {
				l.advancePos()
				l.readChar()
			}
			return l.finish(rule.kind, rule.lexeme, start)
		}
	}
	if k, ok := singleCharPuncts[l.ch]; ok {
		lex := string(l.ch)
		l.advancePos()
		l.readChar()
		return l.finish(k, lex, start)
	}
	lex := string(l.ch)
	l.advancePos()
	l.readChar()
	return l.finish(token.ILLEGAL, lex, start)
}
