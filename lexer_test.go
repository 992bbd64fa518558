package f90doc

import (
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/soypat/f90doc/token"
)

type testtoktuple struct {
	tok     token.Token
	literal string
}

func TestLineLexer_tokens(t *testing.T) {
	cases := []struct {
		src    string
		expect []testtoktuple
	}{
		0: {
			src: "real(dp), intent(in) :: x(3) = 1.5d-3",
			expect: []testtoktuple{
				{tok: token.REAL, literal: "real"},
				{tok: token.LParen, literal: "("},
				{tok: token.Identifier, literal: "dp"},
				{tok: token.RParen, literal: ")"},
				{tok: token.Comma, literal: ","},
				{tok: token.INTENT, literal: "intent"},
				{tok: token.LParen, literal: "("},
				{tok: token.Identifier, literal: "in"},
				{tok: token.RParen, literal: ")"},
				{tok: token.DoubleColon, literal: "::"},
				{tok: token.Identifier, literal: "x"},
				{tok: token.LParen, literal: "("},
				{tok: token.IntLit, literal: "3"},
				{tok: token.RParen, literal: ")"},
				{tok: token.Equals, literal: "="},
				{tok: token.FloatLit, literal: "1.5d-3"},
			},
		},
		1: {
			src: "if (a.eq.1.and.b) c => d",
			expect: []testtoktuple{
				{tok: token.Identifier, literal: "if"},
				{tok: token.LParen, literal: "("},
				{tok: token.Identifier, literal: "a"},
				{tok: token.DotOp, literal: ".eq."},
				{tok: token.IntLit, literal: "1"},
				{tok: token.DotOp, literal: ".and."},
				{tok: token.Identifier, literal: "b"},
				{tok: token.RParen, literal: ")"},
				{tok: token.Identifier, literal: "c"},
				{tok: token.PointerAssign, literal: "=>"},
				{tok: token.Identifier, literal: "d"},
			},
		},
		2: {
			src: "x = 2_dp + .5 - 'it''s'",
			expect: []testtoktuple{
				{tok: token.Identifier, literal: "x"},
				{tok: token.Equals, literal: "="},
				{tok: token.IntLit, literal: "2_dp"},
				{tok: token.Plus, literal: "+"},
				{tok: token.FloatLit, literal: ".5"},
				{tok: token.Minus, literal: "-"},
				{tok: token.StringLit, literal: "it's"},
			},
		},
		3: {
			src: "1.e5 1.eq.2",
			expect: []testtoktuple{
				{tok: token.FloatLit, literal: "1.e5"},
				{tok: token.IntLit, literal: "1"},
				{tok: token.DotOp, literal: ".eq."},
				{tok: token.IntLit, literal: "2"},
			},
		},
		4: {
			src: "CHARACTER*(*) :: s",
			expect: []testtoktuple{
				{tok: token.CHARACTER, literal: "CHARACTER"},
				{tok: token.Asterisk, literal: "*"},
				{tok: token.LParen, literal: "("},
				{tok: token.Asterisk, literal: "*"},
				{tok: token.RParen, literal: ")"},
				{tok: token.DoubleColon, literal: "::"},
				{tok: token.Identifier, literal: "s"},
			},
		},
		5: {
			src: `EndSubroutine "open`,
			expect: []testtoktuple{
				{tok: token.ENDSUBROUTINE, literal: "EndSubroutine"},
				{tok: token.Illegal, literal: "open"},
			},
		},
	}
	var l LineLexer
	for i, tc := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			l.Reset(tc.src)
			var got []testtoktuple
			for {
				tok, _, lit := l.NextToken()
				if tok == token.EOF {
					break
				}
				got = append(got, testtoktuple{tok: tok, literal: lit})
			}
			assert.Equal(t, tc.expect, got)
			assert.True(t, l.IsDone())
		})
	}
}

func TestTokenizeSpans(t *testing.T) {
	const text = "integer,  dimension(:) :: a"
	lexemes := tokenize(text)
	assert.Equal(t, 8, len(lexemes))
	for _, lx := range lexemes {
		assert.True(t, lx.start < lx.end, text[lx.start:])
	}
	assert.Equal(t, "dimension", text[lexemes[2].start:lexemes[2].end])
	assert.Equal(t, "::", text[lexemes[6].start:lexemes[6].end])
}
