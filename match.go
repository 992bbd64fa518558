package f90doc

import (
	"slices"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/soypat/f90doc/token"
)

// Statement recognizers are built from parser combinators over the lexemes of
// a single logical line. Tokens of interest are tagged through their Type
// field and read back by the construct parsers.

type (
	ptoken = pc.Token[lexeme]
	parser = pc.Parser[lexeme]
)

// Tags set on matched tokens.
const (
	tagRaw      = "raw"
	tagName     = "name"
	tagPrefix   = "prefix"
	tagType     = "type"
	tagParam    = "param"
	tagResult   = "result"
	tagAbstract = "abstract"
	tagProcName = "procname"
)

// kw matches a single token of any of the given kinds.
func kw(label string, toks ...token.Token) parser {
	return func(pctx *pc.ParseContext[lexeme], tokens []ptoken) (int, []ptoken, error) {
		if len(tokens) > 0 {
			for _, t := range toks {
				if tokens[0].Val.tok == t {
					return 1, tokens[:1], nil
				}
			}
		}
		return 0, nil, pc.ErrNotMatch
	}
}

// ident matches any token that can name an entity. Keywords qualify.
func ident(label string) parser {
	return func(pctx *pc.ParseContext[lexeme], tokens []ptoken) (int, []ptoken, error) {
		if len(tokens) > 0 && tokens[0].Val.tok.CanBeUsedAsIdentifier() {
			return 1, tokens[:1], nil
		}
		return 0, nil, pc.ErrNotMatch
	}
}

// parenGroup matches a balanced parenthesized token group.
func parenGroup(label string) parser {
	return func(pctx *pc.ParseContext[lexeme], tokens []ptoken) (int, []ptoken, error) {
		if len(tokens) == 0 || tokens[0].Val.tok != token.LParen {
			return 0, nil, pc.ErrNotMatch
		}
		depth := 0
		for i := range tokens {
			switch tokens[i].Val.tok {
			case token.LParen:
				depth++
			case token.RParen:
				depth--
				if depth == 0 {
					return i + 1, tokens[:i+1], nil
				}
			}
		}
		return 0, nil, pc.ErrNotMatch
	}
}

// tag marks every token matched by the sequence p with typ.
func tag(typ string, p ...parser) parser {
	return pc.Trans(pc.Seq(p...), func(pctx *pc.ParseContext[lexeme], src []ptoken) ([]ptoken, error) {
		// Matched tokens alias the statement's tokens.
		out := slices.Clone(src)
		for i := range out {
			out[i].Type = typ
		}
		return out, nil
	})
}

var (
	lparen   = kw("lparen", token.LParen)
	rparen   = kw("rparen", token.RParen)
	comma    = kw("comma", token.Comma)
	dcolon   = kw("double colon", token.DoubleColon)
	asterisk = kw("asterisk", token.Asterisk)
	intLit   = kw("int", token.IntLit)
	name     = ident("name")
	parens   = parenGroup("parens")
	eos      = pc.EOS[lexeme]()

	// typeSpec matches an intrinsic or derived type specification with its kind or length selector:
	// real(dp), character(len=*), character*(*), real*8, double precision, type(atoms).
	typeSpec = pc.Or(
		pc.Seq(kw("double", token.DOUBLE), kw("precision", token.PRECISION)),
		pc.Seq(
			kw("intrinsic type", token.INTEGER, token.REAL, token.COMPLEX, token.LOGICAL, token.CHARACTER, token.DOUBLEPRECISION),
			pc.Optional(pc.Or(parens, pc.Seq(asterisk, pc.Or(intLit, parens)))),
		),
		pc.Seq(kw("derived type", token.TYPE, token.CLASS), parens),
	)

	procPrefix = kw("procedure prefix", token.RECURSIVE, token.PURE, token.ELEMENTAL)

	paramList = pc.Seq(
		lparen,
		pc.Optional(pc.Seq(
			tag(tagParam, pc.Or(name, asterisk)),
			pc.ZeroOrMore("parameters", pc.Seq(comma, tag(tagParam, pc.Or(name, asterisk)))),
		)),
		rparen,
	)

	moduleStmt  = pc.Seq(kw("module", token.MODULE), tag(tagName, name), eos)
	programStmt = pc.Seq(kw("program", token.PROGRAM), pc.Optional(tag(tagName, name)), eos)

	subroutineStmt = pc.Seq(
		pc.ZeroOrMore("prefixes", tag(tagPrefix, procPrefix)),
		kw("subroutine", token.SUBROUTINE),
		tag(tagName, name),
		pc.Optional(paramList),
	)

	functionStmt = pc.Seq(
		pc.ZeroOrMore("prefixes", pc.Or(tag(tagPrefix, procPrefix), tag(tagType, typeSpec))),
		kw("function", token.FUNCTION),
		tag(tagName, name),
		pc.Optional(paramList),
	)

	resultClause = pc.Seq(kw("result", token.RESULT), lparen, tag(tagResult, name), rparen)

	// typeDefStmt matches "type name", "type :: name" and "type, attrs :: name".
	typeDefStmt = pc.Seq(
		kw("type", token.TYPE),
		pc.Optional(pc.Seq(
			pc.ZeroOrMore("type attributes", pc.Seq(comma, name, pc.Optional(parens))),
			dcolon,
		)),
		tag(tagName, name),
		eos,
	)

	interfaceStmt = pc.Seq(
		pc.Optional(tag(tagAbstract, kw("abstract", token.ABSTRACT))),
		kw("interface", token.INTERFACE),
		pc.Optional(tag(tagName, name, pc.Optional(parens))),
		eos,
	)

	// procedureStmt matches "module procedure a, b" and "procedure :: a, b".
	procedureStmt = pc.Seq(
		pc.Optional(kw("module", token.MODULE)),
		kw("procedure", token.PROCEDURE),
		pc.Optional(dcolon),
		tag(tagProcName, name),
		pc.ZeroOrMore("procedure names", pc.Seq(comma, tag(tagProcName, name))),
		eos,
	)

	useStmt = pc.Seq(
		kw("use", token.USE),
		pc.Optional(pc.Seq(comma, name)),
		pc.Optional(dcolon),
		tag(tagName, name),
	)

	containsStmt = pc.Seq(kw("contains", token.CONTAINS), eos)
)

// endStmt returns a recognizer for the terminator of construct kw: the
// composite form (ENDMODULE), the two word form (END MODULE) and, if
// bare is set, a lone END. The optional trailing name is tagged.
func endStmt(construct token.Token, bare bool) parser {
	alts := []parser{
		pc.Seq(kw("end", construct.EndComposite()), pc.Optional(tag(tagName, name, pc.Optional(parens))), eos),
		pc.Seq(kw("end", token.END), kw("construct", construct), pc.Optional(tag(tagName, name, pc.Optional(parens))), eos),
	}
	if bare {
		alts = append(alts, pc.Seq(kw("end", token.END), eos))
	}
	return pc.Or(alts...)
}

var (
	endModule     = endStmt(token.MODULE, true)
	endProgram    = endStmt(token.PROGRAM, true)
	endSubroutine = endStmt(token.SUBROUTINE, true)
	endFunction   = endStmt(token.FUNCTION, true)
	endType       = endStmt(token.TYPE, false)
	endInterface  = endStmt(token.INTERFACE, false)
)

// statement holds the lexemes of a logical code line ready for matching.
type statement struct {
	text   string
	line   int
	tokens []ptoken
}

func newStatement(ll LogicalLine) *statement {
	lexemes := tokenize(ll.Text)
	tokens := make([]ptoken, len(lexemes))
	for i, lx := range lexemes {
		tokens[i] = ptoken{
			Type: tagRaw,
			Pos:  &pc.Pos{Line: ll.Line, Col: lx.start + 1, Index: lx.start},
			Val:  lx,
			Raw:  ll.Text[lx.start:lx.end],
		}
	}
	return &statement{text: ll.Text, line: ll.Line, tokens: tokens}
}

// first returns the kind of the first token of the statement.
func (st *statement) first() token.Token {
	if len(st.tokens) == 0 {
		return token.EOF
	}
	return st.tokens[0].Val.tok
}

// match runs p against the statement from its first token.
func (st *statement) match(pctx *pc.ParseContext[lexeme], p parser) (matched []ptoken, consumed int, ok bool) {
	consumed, matched, err := p(pctx, st.tokens)
	if err != nil {
		return nil, 0, false
	}
	return matched, consumed, true
}

// span returns the source text covered by tokens, from the first token's
// start to the last token's end.
func (st *statement) span(tokens []ptoken) string {
	if len(tokens) == 0 {
		return ""
	}
	return st.text[tokens[0].Val.start:tokens[len(tokens)-1].Val.end]
}

// tagged returns the contiguous runs of matched tokens carrying tag typ.
func tagged(matched []ptoken, typ string) [][]ptoken {
	var runs [][]ptoken
	start := -1
	for i := range matched {
		if matched[i].Type == typ {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, matched[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, matched[start:])
	}
	return runs
}

// taggedText returns the source text of the first run tagged typ.
func (st *statement) taggedText(matched []ptoken, typ string) string {
	runs := tagged(matched, typ)
	if len(runs) == 0 {
		return ""
	}
	return st.span(runs[0])
}

// taggedTexts returns the source text of every token tagged typ.
func (st *statement) taggedTexts(matched []ptoken, typ string) []string {
	var texts []string
	for _, tk := range matched {
		if tk.Type == typ {
			texts = append(texts, tk.Raw)
		}
	}
	return texts
}
