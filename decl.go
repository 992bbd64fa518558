package f90doc

import (
	"slices"
	"strings"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/soypat/f90doc/doc"
	"github.com/soypat/f90doc/token"
)

// declHead matches the type specification opening a declaration. Procedure
// prefixes are tolerated before the type and ignored.
var declHead = pc.Seq(
	pc.ZeroOrMore("prefixes", procPrefix),
	tag(tagType, typeSpec),
)

// parseDeclaration parses a type declaration statement into one declaration
// per declared name. ok is false when the statement is not a well formed
// declaration with attributes from the accepted vocabulary.
func parseDeclaration(pctx *pc.ParseContext[lexeme], st *statement) (decls []doc.Declaration, ok bool) {
	matched, n, ok := st.match(pctx, declHead)
	if !ok {
		return nil, false
	}
	typ := collapseSpace(st.taggedText(matched, tagType))
	rest := st.tokens[n:]
	if len(rest) > 0 && rest[0].Val.tok == token.FUNCTION {
		return nil, false // function header.
	}

	var attrs []doc.Attribute
	nameToks := rest
	if k := indexDepth0(rest, token.DoubleColon); k >= 0 {
		attrToks := rest[:k]
		nameToks = rest[k+1:]
		if len(attrToks) > 0 {
			if attrToks[0].Val.tok != token.Comma {
				return nil, false
			}
			for _, item := range splitDepth0(attrToks[1:]) {
				attr, ok := parseAttribute(st, item)
				if !ok {
					return nil, false
				}
				attrs = append(attrs, attr)
			}
		}
	} else if len(rest) > 0 && rest[0].Val.tok == token.Comma {
		// Attributes require the double colon separator.
		return nil, false
	}

	items := splitDepth0(nameToks)
	if len(items) == 0 {
		return nil, false
	}
	for _, item := range items {
		d, ok := parseEntity(st, item)
		if !ok {
			return nil, false
		}
		d.Type = []string{typ}
		d.Line = st.line
		dimension := d.Attributes
		d.Attributes = slices.Clone(attrs)
		if len(dimension) > 0 {
			d.Attributes = setDimension(d.Attributes, dimension[0])
		}
		decls = append(decls, d)
	}
	return decls, true
}

// parseAttribute parses a single attribute list item such as "intent(in)".
func parseAttribute(st *statement, item []ptoken) (doc.Attribute, bool) {
	if len(item) == 0 || !item[0].Val.tok.IsAttribute() {
		return "", false
	}
	hasArgs := item[0].Val.tok == token.DIMENSION || item[0].Val.tok == token.INTENT
	switch {
	case len(item) == 1 && !hasArgs:
	case hasArgs && len(item) > 2 && item[1].Val.tok == token.LParen && item[len(item)-1].Val.tok == token.RParen:
	default:
		return "", false
	}
	return doc.Attribute(normalizeAttribute(st.span(item))), true
}

// parseEntity parses one item of the name list: name[(dims)][*len][= init | => init].
// A dimension suffix is returned as the only attribute of the declaration.
func parseEntity(st *statement, item []ptoken) (d doc.Declaration, ok bool) {
	if len(item) == 0 || !item[0].Val.tok.CanBeUsedAsIdentifier() {
		return d, false
	}
	d.Name = item[0].Val.lit
	i := 1
	if i < len(item) && item[i].Val.tok == token.LParen {
		end := matchParen(item, i)
		if end < 0 {
			return d, false
		}
		d.Attributes = []doc.Attribute{doc.Attribute("dimension" + normalizeAttribute(st.span(item[i:end+1])))}
		i = end + 1
	}
	if i < len(item) && item[i].Val.tok == token.Asterisk {
		// Character length override, i.e. name*10 or name*(*).
		i++
		if i < len(item) && item[i].Val.tok == token.LParen {
			end := matchParen(item, i)
			if end < 0 {
				return d, false
			}
			i = end + 1
		} else if i < len(item) && item[i].Val.tok == token.IntLit {
			i++
		} else {
			return d, false
		}
	}
	if i < len(item) {
		if tok := item[i].Val.tok; tok != token.Equals && tok != token.PointerAssign {
			return d, false
		}
		if i+1 >= len(item) {
			return d, false
		}
		d.Default = strings.TrimSpace(st.text[item[i].Val.end:item[len(item)-1].Val.end])
	}
	return d, true
}

// setDimension replaces the dimension attribute in attrs with dim, or appends it.
func setDimension(attrs []doc.Attribute, dim doc.Attribute) []doc.Attribute {
	for i, a := range attrs {
		if a.IsDimension() {
			attrs[i] = dim
			return attrs
		}
	}
	return append(attrs, dim)
}

// splitDepth0 splits tokens at commas outside of parentheses and brackets.
func splitDepth0(tokens []ptoken) [][]ptoken {
	if len(tokens) == 0 {
		return nil
	}
	var items [][]ptoken
	depth, start := 0, 0
	for i, tk := range tokens {
		switch {
		case tk.Val.tok == token.LParen || tk.Raw == "[":
			depth++
		case tk.Val.tok == token.RParen || tk.Raw == "]":
			depth--
		case tk.Val.tok == token.Comma && depth == 0:
			items = append(items, tokens[start:i])
			start = i + 1
		}
	}
	return append(items, tokens[start:])
}

// indexDepth0 returns the index of the first tok outside of parentheses, or -1.
func indexDepth0(tokens []ptoken, tok token.Token) int {
	depth := 0
	for i, tk := range tokens {
		switch tk.Val.tok {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case tok:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchParen returns the index of the parenthesis closing tokens[open], or -1.
func matchParen(tokens []ptoken, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Val.tok {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// normalizeAttribute lower cases s and drops all whitespace: "INTENT(in out)" becomes "intent(inout)".
func normalizeAttribute(s string) string {
	return strings.Join(strings.Fields(lowerString(s)), "")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lowerString(s string) string { return doc.FoldName(s) }
