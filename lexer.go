package f90doc

import (
	"strings"

	"github.com/soypat/f90doc/token"
)

// LineLexer splits the text of a single logical code line into tokens.
// Continuation and comments have already been handled by the [LineStream],
// so the lexer never sees a '!' that starts a comment.
type LineLexer struct {
	text string
	pos  int // byte offset of the current character.
}

// Reset begins lexing text.
func (l *LineLexer) Reset(text string) {
	*l = LineLexer{text: text}
}

// IsDone returns true once all of the input has been consumed.
func (l *LineLexer) IsDone() bool { return l.pos >= len(l.text) }

// NextToken returns the next token and its starting byte offset. The literal
// is the identifier or number text as written, or the unquoted contents of a
// character literal with doubled quotes collapsed.
func (l *LineLexer) NextToken() (tok token.Token, start int, literal string) {
	l.skipWhitespace()
	start = l.pos
	if l.IsDone() {
		return token.EOF, start, ""
	}
	ch := l.text[l.pos]
	switch ch {
	case '(':
		tok = token.LParen
	case ')':
		tok = token.RParen
	case ',':
		tok = token.Comma
	case ':':
		if l.peekChar() == ':' {
			l.pos++
			tok = token.DoubleColon
		} else {
			tok = token.Colon
		}
	case '=':
		if l.peekChar() == '>' {
			l.pos++
			tok = token.PointerAssign
		} else {
			tok = token.Equals
		}
	case '*':
		tok = token.Asterisk
	case '/':
		tok = token.Slash
	case '%':
		tok = token.Percent
	case '+':
		tok = token.Plus
	case '-':
		tok = token.Minus
	case '\'', '"':
		var ok bool
		literal, ok = l.readString(ch)
		if !ok {
			return token.Illegal, start, literal
		}
		return token.StringLit, start, literal
	case '.':
		next := l.peekChar()
		if isDigit(next) {
			return token.FloatLit, start, l.readNumber()
		} else if isIdentifierChar(next) {
			return token.DotOp, start, l.readDotOperator()
		}
		tok = token.Other
	default:
		switch {
		case isIdentifierChar(ch):
			literal = l.readIdentifier()
			return token.LookupKeyword([]byte(literal)), start, literal
		case isDigit(ch):
			literal = l.readNumber()
			mantissa, _, _ := strings.Cut(literal, "_")
			if strings.ContainsAny(mantissa, ".eEdDqQ") {
				return token.FloatLit, start, literal
			}
			return token.IntLit, start, literal
		}
		tok = token.Other
	}
	l.pos++
	return tok, start, l.text[start:l.pos]
}

func (l *LineLexer) peekChar() byte {
	if l.pos+1 < len(l.text) {
		return l.text[l.pos+1]
	}
	return 0
}

func (l *LineLexer) peekN(n int) byte {
	if l.pos+n < len(l.text) {
		return l.text[l.pos+n]
	}
	return 0
}

func (l *LineLexer) skipWhitespace() {
	for !l.IsDone() && isWhitespace(l.text[l.pos]) {
		l.pos++
	}
}

func (l *LineLexer) readIdentifier() string {
	start := l.pos
	for !l.IsDone() && (isIdentifierChar(l.text[l.pos]) || isDigit(l.text[l.pos])) {
		l.pos++
	}
	return l.text[start:l.pos]
}

// readString reads a character literal delimited by quote. ok is false if the
// literal is not terminated on this line.
func (l *LineLexer) readString(quote byte) (s string, ok bool) {
	var sb strings.Builder
	l.pos++ // consume opening quote
	for !l.IsDone() {
		ch := l.text[l.pos]
		if ch == quote {
			if l.peekChar() == quote {
				// Doubled quote is an escaped quote.
				sb.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++ // consume closing quote
			return sb.String(), true
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return sb.String(), false
}

func (l *LineLexer) readDotOperator() string {
	start := l.pos
	l.pos++ // consume opening '.'
	for !l.IsDone() && isIdentifierChar(l.text[l.pos]) {
		l.pos++
	}
	if !l.IsDone() && l.text[l.pos] == '.' {
		l.pos++ // consume closing '.'
	}
	return l.text[start:l.pos]
}

// readNumber reads an integer or real literal including an exponent and kind suffix, i.e. 1.5d-3 or 2_dp.
func (l *LineLexer) readNumber() string {
	start := l.pos
	seenDot := false
	for !l.IsDone() {
		ch := l.text[l.pos]
		if isDigit(ch) {
			l.pos++
			continue
		}
		if ch == '.' && !seenDot {
			// 1.eq.2 must leave the dot to the operator.
			next := l.peekChar()
			if isIdentifierChar(next) && !isExponentLetter(next) {
				break
			} else if isExponentLetter(next) && !isExponentStart(l.peekN(2)) {
				break
			}
			seenDot = true
			l.pos++
			continue
		}
		break
	}
	if !l.IsDone() && isExponentLetter(l.text[l.pos]) {
		save := l.pos
		l.pos++
		if !l.IsDone() && (l.text[l.pos] == '+' || l.text[l.pos] == '-') {
			l.pos++
		}
		if l.IsDone() || !isDigit(l.text[l.pos]) {
			l.pos = save // not an exponent, i.e. 1.eq.
		}
		for !l.IsDone() && isDigit(l.text[l.pos]) {
			l.pos++
		}
	}
	if !l.IsDone() && l.text[l.pos] == '_' {
		l.pos++
		for !l.IsDone() && (isIdentifierChar(l.text[l.pos]) || isDigit(l.text[l.pos])) {
			l.pos++
		}
	}
	return l.text[start:l.pos]
}

// lexeme is a token of a logical line with its byte span in the line text.
type lexeme struct {
	tok        token.Token
	lit        string
	start, end int
}

// tokenize lexes text into lexemes. The result never contains the EOF token.
func tokenize(text string) []lexeme {
	var l LineLexer
	l.Reset(text)
	var lexemes []lexeme
	for {
		tok, start, lit := l.NextToken()
		if tok == token.EOF {
			return lexemes
		}
		lexemes = append(lexemes, lexeme{tok: tok, lit: lit, start: start, end: l.pos})
	}
}

func isIdentifierChar(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isExponentLetter(ch byte) bool {
	return ch == 'e' || ch == 'E' || ch == 'd' || ch == 'D' || ch == 'q' || ch == 'Q'
}

func isExponentStart(ch byte) bool {
	return isDigit(ch) || ch == '+' || ch == '-'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}
