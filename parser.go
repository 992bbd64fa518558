package f90doc

import (
	"io"
	"log/slog"
	"slices"
	"strings"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/soypat/f90doc/doc"
)

// Options configures a [Parser].
type Options struct {
	// DocMarker starts a documentation comment. Defaults to "!%".
	DocMarker string
	// ReturnValueMarker starts a function return value documentation comment. Defaults to "!%RV".
	ReturnValueMarker string
	// NaiveComments splits comments at the first '!' of a line even when it
	// lies inside a character literal.
	NaiveComments bool
	// CarryPendingDoc keeps documentation still held at the end of a file and
	// attaches it to the first construct of the next file parsed by the same Parser.
	CarryPendingDoc bool
	// Logger receives debug records of the parse. May be nil.
	Logger *slog.Logger
}

// ParseFile parses the Fortran source read from r with a new [Parser].
func ParseFile(source string, r io.Reader, opts Options) (*doc.File, error) {
	return NewParser(opts).ParseFile(source, r)
}

// Parser extracts the documentation model from free form Fortran 90 source.
// A Parser may be reused for many files but not concurrently.
type Parser struct {
	Logger
	opts   Options
	ls     *LineStream
	line   LogicalLine
	stmt   *statement // non-nil when line is code.
	unread bool
	dc     docContext
	pctx   *pc.ParseContext[lexeme]
}

// NewParser returns a parser configured with opts.
func NewParser(opts Options) *Parser {
	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With(slog.String("component", "parser"))
	}
	return &Parser{Logger: Logger{L: logger}, opts: opts}
}

// Reset discards all state and begins parsing the input r.
// Held documentation survives only if Options.CarryPendingDoc is set.
func (p *Parser) Reset(source string, r io.Reader) error {
	ls, err := NewLineStream(source, r, LineStreamOptions{
		DocMarker:         p.opts.DocMarker,
		ReturnValueMarker: p.opts.ReturnValueMarker,
		NaiveComments:     p.opts.NaiveComments,
	})
	if err != nil {
		return err
	}
	var dc docContext
	if p.opts.CarryPendingDoc {
		dc = p.dc
	}
	*p = Parser{
		Logger: p.Logger,
		opts:   p.opts,
		ls:     ls,
		dc:     dc,
		pctx:   pc.NewParseContext[lexeme](),
	}
	return nil
}

// ParseFile parses the source read from r. If an error is returned the file
// still holds every construct completed before the failure.
func (p *Parser) ParseFile(source string, r io.Reader) (*doc.File, error) {
	if err := p.Reset(source, r); err != nil {
		return nil, err
	}
	return p.parseFile(&p.dc)
}

// Pending returns the documentation currently held for the next construct.
func (p *Parser) Pending() doc.DocBlock { return slices.Clone(p.dc.pending) }

// docContext carries documentation held for the next subroutine, function,
// module or program to be parsed.
type docContext struct {
	pending doc.DocBlock
}

func (dc *docContext) hold(lines ...string) { dc.pending = append(dc.pending, lines...) }

// take returns the held documentation and clears it.
func (dc *docContext) take() doc.DocBlock {
	block := dc.pending
	dc.pending = nil
	return block
}

// rule is a named alternative of a construct body loop. try reports whether
// it accepted the current line.
type rule struct {
	name string
	try  func() (bool, error)
}

// apply tries rules in order on the current line and returns the name of
// the rule that accepted it. A line accepted by no rule is discarded and the
// returned name is empty.
func (p *Parser) apply(rules []rule) (string, error) {
	for _, r := range rules {
		ok, err := r.try()
		if err != nil {
			return r.name, err
		}
		if ok {
			return r.name, nil
		}
	}
	if p.Enabled(slog.LevelDebug) {
		p.Log(slog.LevelDebug, "line skipped",
			slog.String("source", p.ls.Source()),
			slog.Int("line", p.line.Line),
			slog.String("text", p.line.Text))
	}
	return "", nil
}

func (p *Parser) parseFile(dc *docContext) (*doc.File, error) {
	f := &doc.File{Source: p.ls.Source()}
	rules := []rule{
		{"program", func() (bool, error) {
			prog, err := p.parseProgram(dc)
			if prog != nil {
				f.Programs = append(f.Programs, prog)
			}
			return prog != nil, err
		}},
		{"module", func() (bool, error) {
			m, err := p.parseModule(dc)
			if m != nil {
				f.Modules = append(f.Modules, m)
			}
			return m != nil, err
		}},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			dc.hold(p.line.Text)
			return true, nil
		}},
		{"subroutine", func() (bool, error) {
			proc, err := p.parseSubroutine(dc)
			if proc != nil {
				f.Subroutines = append(f.Subroutines, proc)
			}
			return proc != nil, err
		}},
		{"function", func() (bool, error) {
			proc, err := p.parseFunction(dc)
			if proc != nil {
				f.Functions = append(f.Functions, proc)
			}
			return proc != nil, err
		}},
	}
	for p.next() {
		if _, err := p.apply(rules); err != nil {
			return f, err
		}
	}
	if len(dc.pending) > 0 && !p.opts.CarryPendingDoc {
		p.Log(slog.LevelDebug, "pending doc dropped",
			slog.String("source", p.ls.Source()),
			slog.Int("lines", len(dc.pending)))
		dc.take()
	}
	return f, nil
}

// next advances to the next code or documentation line. Plain comments are
// skipped. It returns false at the end of input.
func (p *Parser) next() bool {
	if p.unread {
		p.unread = false
		return true
	}
	for {
		ll, ok := p.ls.Next()
		if !ok {
			p.line, p.stmt = LogicalLine{}, nil
			return false
		}
		if ll.Kind == PlainComment {
			continue
		}
		p.line, p.stmt = ll, nil
		if ll.Kind == Code {
			p.stmt = newStatement(ll)
		}
		return true
	}
}

// backup makes the next call to next return the current line again.
func (p *Parser) backup() { p.unread = true }

// matchStmt runs the recognizer r against the current line.
func (p *Parser) matchStmt(r parser) ([]ptoken, bool) {
	if p.stmt == nil {
		return nil, false
	}
	matched, _, ok := p.stmt.match(p.pctx, r)
	return matched, ok
}

// readDocBlock consumes the documentation comment lines that follow the current line.
func (p *Parser) readDocBlock() doc.DocBlock {
	var block doc.DocBlock
	for p.next() {
		if p.line.Kind != DocComment {
			p.backup()
			break
		}
		block = append(block, p.line.Text)
	}
	return block
}

// parseDeclarationStmt parses the current line as a declaration together
// with its trailing documentation. Returns nil if the line is not a declaration.
func (p *Parser) parseDeclarationStmt() []doc.Declaration {
	if p.stmt == nil {
		return nil
	}
	decls, ok := parseDeclaration(p.pctx, p.stmt)
	if !ok {
		return nil
	}
	if block := p.readDocBlock(); len(block) > 0 {
		for i := range decls {
			decls[i].Doc = slices.Clone(block)
		}
	}
	return decls
}

// endRule accepts the terminator end of the construct called name. A
// terminator carrying a different name is not accepted.
func (p *Parser) endRule(end parser, name string, done *bool) func() (bool, error) {
	return func() (bool, error) {
		matched, ok := p.matchStmt(end)
		if !ok {
			return false, nil
		}
		if endName := p.stmt.taggedText(matched, tagName); endName != "" && !sameName(endName, name) {
			p.Log(slog.LevelDebug, "terminator name mismatch",
				slog.String("source", p.ls.Source()),
				slog.Int("line", p.line.Line),
				slog.String("want", name),
				slog.String("got", endName))
			return false, nil
		}
		*done = true
		return true, nil
	}
}

// useRule records the module named by a USE statement.
func (p *Parser) useRule(uses *[]string) func() (bool, error) {
	return func() (bool, error) {
		matched, ok := p.matchStmt(useStmt)
		if !ok {
			return false, nil
		}
		*uses = append(*uses, p.stmt.taggedText(matched, tagName))
		return true, nil
	}
}

func (p *Parser) unterminated(start LogicalLine, construct, name string) error {
	return &ParserError{
		sp:  sourcePos{Source: p.ls.Source(), Line: start.Line},
		msg: "unterminated " + construct + " " + name,
		err: ErrUnexpectedEOF,
	}
}

// sameName compares construct names ignoring case and blanks, so that
// "operator (+)" and "OPERATOR(+)" are equal.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), ""), strings.Join(strings.Fields(b), ""))
}
