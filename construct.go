package f90doc

import (
	"log/slog"
	"slices"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/soypat/f90doc/doc"
)

// Construct parsers are entered with the opening statement as the current
// line. They return nil and no error when the current line does not open
// their construct, and consume input through the terminator otherwise.

// unnamedProgram names a main program without a PROGRAM statement name.
const unnamedProgram = "<Unnamed>"

func (p *Parser) parseModule(dc *docContext) (*doc.Module, error) {
	matched, ok := p.matchStmt(moduleStmt)
	if !ok {
		return nil, nil
	}
	start := p.line
	m := &doc.Module{Name: p.stmt.taggedText(matched, tagName), Line: start.Line}
	lead := dc.take()
	var (
		held     doc.DocBlock // specification part documentation not yet owned.
		contains bool
		done     bool
	)
	end := rule{"end module", p.endRule(endModule, m.Name, &done)}
	specRules := []rule{
		end,
		{"contains", func() (bool, error) {
			if _, ok := p.matchStmt(containsStmt); !ok {
				return false, nil
			}
			dc.hold(held...)
			held = nil
			contains = true
			return true, nil
		}},
		{"use", p.useRule(&m.Uses)},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			held = append(held, p.line.Text)
			return true, nil
		}},
		{"interface", func() (bool, error) {
			iface, err := p.parseInterface(held, nil)
			if iface == nil {
				return false, err
			}
			held = nil
			m.Interfaces = append(m.Interfaces, iface)
			return true, err
		}},
		{"type", func() (bool, error) {
			t, err := p.parseDerivedType()
			if t == nil {
				return false, err
			}
			m.DerivedTypes = append(m.DerivedTypes, t)
			return true, err
		}},
		{"variable", func() (bool, error) {
			decls := p.parseDeclarationStmt()
			m.Variables = append(m.Variables, decls...)
			return decls != nil, nil
		}},
	}
	containsRules := []rule{
		end,
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			dc.hold(p.line.Text)
			return true, nil
		}},
		{"subroutine", func() (bool, error) {
			proc, err := p.parseSubroutine(dc)
			if proc == nil {
				return false, err
			}
			if iface := routeProcedure(m.Interfaces, proc); iface != nil {
				iface.Subroutines = append(iface.Subroutines, proc)
			} else {
				m.Subroutines = append(m.Subroutines, proc)
			}
			return true, err
		}},
		{"function", func() (bool, error) {
			proc, err := p.parseFunction(dc)
			if proc == nil {
				return false, err
			}
			if iface := routeProcedure(m.Interfaces, proc); iface != nil {
				iface.Functions = append(iface.Functions, proc)
			} else {
				m.Functions = append(m.Functions, proc)
			}
			return true, err
		}},
	}

	for !done {
		if !p.next() {
			return nil, p.unterminated(start, "module", m.Name)
		}
		rules := specRules
		if contains {
			rules = containsRules
		}
		name, err := p.apply(rules)
		if err != nil {
			return nil, err
		}
		if len(held) > 0 && name != "doc" && name != "interface" {
			// Documentation followed by anything else describes the module.
			m.Doc = append(m.Doc, held...)
			held = nil
		}
	}
	m.Doc = append(lead, m.Doc...)
	p.Log(slog.LevelDebug, "module parsed",
		slog.String("module", m.Name),
		slog.Int("types", len(m.DerivedTypes)),
		slog.Int("variables", len(m.Variables)),
		slog.Int("interfaces", len(m.Interfaces)),
		slog.Int("subroutines", len(m.Subroutines)),
		slog.Int("functions", len(m.Functions)))
	return m, nil
}

func (p *Parser) parseProgram(dc *docContext) (*doc.Program, error) {
	matched, ok := p.matchStmt(programStmt)
	if !ok {
		return nil, nil
	}
	start := p.line
	prog := &doc.Program{Name: p.stmt.taggedText(matched, tagName), Line: start.Line}
	if prog.Name == "" {
		prog.Name = unnamedProgram
	}
	lead := dc.take()
	var contains, done bool
	end := rule{"end program", p.endRule(endProgram, prog.Name, &done)}
	if prog.Name == unnamedProgram {
		end = rule{"end program", p.endRule(endProgram, "", &done)}
	}
	specRules := []rule{
		end,
		{"contains", func() (bool, error) {
			_, ok := p.matchStmt(containsStmt)
			contains = ok
			return ok, nil
		}},
		{"use", p.useRule(&prog.Uses)},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			prog.Doc = append(prog.Doc, p.line.Text)
			return true, nil
		}},
		{"interface", func() (bool, error) {
			// Bodies may end with a bare END that must not close the program.
			iface, err := p.parseInterface(nil, nil)
			return iface != nil, err
		}},
	}
	containsRules := []rule{
		end,
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			dc.hold(p.line.Text)
			return true, nil
		}},
		{"subroutine", func() (bool, error) {
			proc, err := p.parseSubroutine(dc)
			if proc == nil {
				return false, err
			}
			prog.Subroutines = append(prog.Subroutines, proc)
			return true, err
		}},
		{"function", func() (bool, error) {
			proc, err := p.parseFunction(dc)
			if proc == nil {
				return false, err
			}
			prog.Functions = append(prog.Functions, proc)
			return true, err
		}},
	}
	for !done {
		if !p.next() {
			return nil, p.unterminated(start, "program", prog.Name)
		}
		rules := specRules
		if contains {
			rules = containsRules
		}
		if _, err := p.apply(rules); err != nil {
			return nil, err
		}
	}
	prog.Doc = append(lead, prog.Doc...)
	return prog, nil
}

func (p *Parser) parseDerivedType() (*doc.DerivedType, error) {
	matched, ok := p.matchStmt(typeDefStmt)
	if !ok {
		return nil, nil
	}
	start := p.line
	t := &doc.DerivedType{Name: p.stmt.taggedText(matched, tagName), Line: start.Line}
	var done bool
	rules := []rule{
		{"end type", p.endRule(endType, t.Name, &done)},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			t.Doc = append(t.Doc, p.line.Text)
			return true, nil
		}},
		{"element", func() (bool, error) {
			decls := p.parseDeclarationStmt()
			t.Elements = append(t.Elements, decls...)
			return decls != nil, nil
		}},
	}
	for !done {
		if !p.next() {
			return nil, p.unterminated(start, "type", t.Name)
		}
		if _, err := p.apply(rules); err != nil {
			return nil, err
		}
	}
	p.Log(slog.LevelDebug, "type parsed", slog.String("type", t.Name), slog.Int("elements", len(t.Elements)))
	return t, nil
}

// parseInterface parses an interface block. lead is documentation that
// preceded the block. Explicit procedure bodies are also appended to bodies
// in source order when bodies is not nil.
func (p *Parser) parseInterface(lead doc.DocBlock, bodies *[]*doc.Procedure) (*doc.Interface, error) {
	matched, ok := p.matchStmt(interfaceStmt)
	if !ok {
		return nil, nil
	}
	start := p.line
	iface := &doc.Interface{
		Name:     p.stmt.taggedText(matched, tagName),
		Abstract: len(tagged(matched, tagAbstract)) > 0,
		Doc:      slices.Clone(lead),
		Line:     start.Line,
	}
	// Bodies never take documentation held outside of the block.
	var nested docContext
	var done bool
	rules := []rule{
		{"end interface", p.endRule(endInterface, iface.Name, &done)},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			iface.Doc = append(iface.Doc, p.line.Text)
			return true, nil
		}},
		{"procedure", func() (bool, error) {
			matched, ok := p.matchStmt(procedureStmt)
			if !ok {
				return false, nil
			}
			for _, name := range p.stmt.taggedTexts(matched, tagProcName) {
				iface.ProcedureNames = append(iface.ProcedureNames, lowerString(name))
			}
			return true, nil
		}},
		{"subroutine", func() (bool, error) {
			proc, err := p.parseSubroutine(&nested)
			if proc == nil {
				return false, err
			}
			iface.Subroutines = append(iface.Subroutines, proc)
			if bodies != nil {
				*bodies = append(*bodies, proc)
			}
			return true, err
		}},
		{"function", func() (bool, error) {
			proc, err := p.parseFunction(&nested)
			if proc == nil {
				return false, err
			}
			iface.Functions = append(iface.Functions, proc)
			if bodies != nil {
				*bodies = append(*bodies, proc)
			}
			return true, err
		}},
	}
	for !done {
		if !p.next() {
			return nil, p.unterminated(start, "interface", iface.Name)
		}
		if _, err := p.apply(rules); err != nil {
			return nil, err
		}
	}
	p.Log(slog.LevelDebug, "interface parsed",
		slog.String("interface", iface.Name),
		slog.Int("procedures", len(iface.ProcedureNames)+len(iface.Subroutines)+len(iface.Functions)))
	return iface, nil
}

func (p *Parser) parseSubroutine(dc *docContext) (*doc.Procedure, error) {
	matched, ok := p.matchStmt(subroutineStmt)
	if !ok {
		return nil, nil
	}
	proc := p.newProcedure(doc.Subroutine, matched)
	if err := p.parseProcedureBody(dc, proc, endSubroutine); err != nil {
		return nil, err
	}
	p.Log(slog.LevelDebug, "subroutine parsed", slog.String("subroutine", proc.Name), slog.Int("args", len(proc.Arguments)))
	return proc, nil
}

func (p *Parser) parseFunction(dc *docContext) (*doc.Procedure, error) {
	if p.stmt == nil {
		return nil, nil
	}
	matched, n, ok := p.stmt.match(p.pctx, functionStmt)
	if !ok {
		return nil, nil
	}
	proc := p.newProcedure(doc.Function, matched)
	if typ := collapseSpace(p.stmt.taggedText(matched, tagType)); typ != "" {
		proc.ReturnValue = &doc.Declaration{Type: []string{typ}, Line: proc.Line}
	} else {
		proc.ReturnValue = &doc.Declaration{Line: proc.Line}
	}
	if _, rm, _, _, found := pc.Find(p.pctx, resultClause, p.stmt.tokens[n:]); found {
		proc.ResultName = p.stmt.taggedText(rm, tagResult)
	}
	if err := p.parseProcedureBody(dc, proc, endFunction); err != nil {
		return nil, err
	}
	p.Log(slog.LevelDebug, "function parsed", slog.String("function", proc.Name), slog.Int("args", len(proc.Arguments)))
	return proc, nil
}

func (p *Parser) newProcedure(kind doc.ProcedureKind, matched []ptoken) *doc.Procedure {
	proc := &doc.Procedure{
		Kind:   kind,
		Name:   p.stmt.taggedText(matched, tagName),
		Params: p.stmt.taggedTexts(matched, tagParam),
		Line:   p.line.Line,
	}
	for _, prefix := range p.stmt.taggedTexts(matched, tagPrefix) {
		prefix = lowerString(prefix)
		proc.Prefixes = append(proc.Prefixes, prefix)
		if prefix == "recursive" {
			proc.Recursive = true
		}
	}
	return proc
}

// parseProcedureBody consumes the body of proc through the terminator end,
// then reconciles its arguments and return value. Internal procedures and
// local derived types are parsed so their statements are not mistaken for
// those of proc, and then discarded.
func (p *Parser) parseProcedureBody(dc *docContext, proc *doc.Procedure, end parser) error {
	start := p.line
	lead := dc.take()
	var (
		decls     []doc.Declaration
		callbacks []*doc.Procedure
		contains  bool
		done      bool
		internal  docContext
	)
	endRule := rule{"end", p.endRule(end, proc.Name, &done)}
	rules := []rule{
		endRule,
		{"contains", func() (bool, error) {
			_, ok := p.matchStmt(containsStmt)
			contains = ok
			return ok, nil
		}},
		{"use", p.useRule(&proc.Uses)},
		{"return value doc", func() (bool, error) {
			if !proc.IsFunction() || p.line.Kind != ReturnValueDocComment {
				return false, nil
			}
			proc.ReturnValueDoc = append(proc.ReturnValueDoc, p.line.Text)
			return true, nil
		}},
		{"doc", func() (bool, error) {
			if !p.line.Kind.IsDoc() {
				return false, nil
			}
			proc.Doc = append(proc.Doc, p.line.Text)
			return true, nil
		}},
		{"interface", func() (bool, error) {
			iface, err := p.parseInterface(nil, &callbacks)
			return iface != nil, err
		}},
		{"local type", func() (bool, error) {
			t, err := p.parseDerivedType()
			return t != nil, err
		}},
		{"declaration", func() (bool, error) {
			d := p.parseDeclarationStmt()
			decls = append(decls, d...)
			return d != nil, nil
		}},
	}
	containsRules := []rule{
		endRule,
		{"internal subroutine", func() (bool, error) {
			inner, err := p.parseSubroutine(&internal)
			return inner != nil, err
		}},
		{"internal function", func() (bool, error) {
			inner, err := p.parseFunction(&internal)
			return inner != nil, err
		}},
	}
	for !done {
		if !p.next() {
			return p.unterminated(start, proc.Kind.String(), proc.Name)
		}
		active := rules
		if contains {
			active = containsRules
		}
		if _, err := p.apply(active); err != nil {
			return err
		}
	}
	reconcile(proc, decls, callbacks)
	proc.Doc = append(lead, proc.Doc...)
	return nil
}

// routeProcedure returns the first interface proc is a member of, or nil.
func routeProcedure(ifaces []*doc.Interface, proc *doc.Procedure) *doc.Interface {
	for _, iface := range ifaces {
		if iface.Has(proc.Name) {
			return iface
		}
	}
	return nil
}
