package f90doc

import (
	"fmt"
	"io"
	"strings"
)

// LineKind classifies a logical line.
type LineKind uint8

const (
	// Code is a statement with comments removed.
	Code LineKind = iota
	// PlainComment is an ordinary comment.
	PlainComment
	// DocComment is a comment carrying the documentation marker.
	DocComment
	// ReturnValueDocComment documents the return value of the enclosing function.
	ReturnValueDocComment
)

func (k LineKind) String() string {
	switch k {
	case Code:
		return "code"
	case PlainComment:
		return "comment"
	case DocComment:
		return "doc"
	case ReturnValueDocComment:
		return "rvdoc"
	}
	return fmt.Sprintf("LineKind(%d)", k)
}

// IsDoc reports whether k is one of the documentation comment kinds.
func (k LineKind) IsDoc() bool { return k == DocComment || k == ReturnValueDocComment }

// LogicalLine is a single statement after continuation joining, or a single comment.
// For comments Text holds the content with the comment or doc marker removed.
type LogicalLine struct {
	Kind LineKind
	Text string
	// Line is the 1 based physical line the logical line starts on.
	Line int
}

const (
	DefaultDocMarker         = "!%"
	DefaultReturnValueMarker = "!%RV"
)

// LineStreamOptions configures comment classification.
type LineStreamOptions struct {
	// DocMarker starts a documentation comment. Defaults to [DefaultDocMarker].
	DocMarker string
	// ReturnValueMarker starts a return value documentation comment. Defaults to [DefaultReturnValueMarker].
	ReturnValueMarker string
	// NaiveComments splits at the first '!' even inside character literals.
	NaiveComments bool
}

// LineStream yields the logical lines of a free form Fortran source.
// The whole input is read when the stream is created.
type LineStream struct {
	source   string
	physical []string
	next     int // index of the next physical line.
	queue    []LogicalLine
	opts     LineStreamOptions
}

// NewLineStream reads r to completion and returns a stream over its logical lines.
func NewLineStream(source string, r io.Reader, opts LineStreamOptions) (*LineStream, error) {
	if r == nil {
		return nil, ErrNilReader
	} else if source == "" {
		return nil, ErrNoSource
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	if opts.DocMarker == "" {
		opts.DocMarker = DefaultDocMarker
	}
	if opts.ReturnValueMarker == "" {
		opts.ReturnValueMarker = DefaultReturnValueMarker
	}
	text := strings.ReplaceAll(string(data), "\r", "")
	return &LineStream{
		source:   source,
		physical: strings.Split(text, "\n"),
		opts:     opts,
	}, nil
}

// Source returns the name the stream was created with.
func (ls *LineStream) Source() string { return ls.source }

// Next returns the next non-empty logical line. ok is false once the input is exhausted.
func (ls *LineStream) Next() (line LogicalLine, ok bool) {
	for len(ls.queue) == 0 {
		if ls.next >= len(ls.physical) {
			return LogicalLine{}, false
		}
		ls.readStatement()
	}
	line = ls.queue[0]
	ls.queue = ls.queue[1:]
	return line, true
}

// readStatement consumes one physical line plus its continuation lines and
// queues the resulting logical lines: the joined code first, then any comments
// found along the way in source order.
func (ls *LineStream) readStatement() {
	lineno := ls.next + 1
	s := strings.TrimSpace(ls.physical[ls.next])
	ls.next++
	if s == "" {
		return
	}
	if s[0] == '!' {
		// Whole line comments never take part in continuation.
		ls.queue = append(ls.queue, ls.classify(s, lineno))
		return
	}

	var comments []LogicalLine
	code, tail, quote := ls.split(s, 0)
	if tail != "" {
		comments = append(comments, ls.classify(tail, lineno))
	}
	for {
		trimmed := strings.TrimRight(code, " \t")
		if !strings.HasSuffix(trimmed, "&") {
			break
		}
		code = trimmed[:len(trimmed)-1]
		cont, contLine, found := ls.nextContinuation(&comments)
		if !found {
			break
		}
		if cont[0] == '&' {
			cont = cont[1:]
		} else {
			code = strings.TrimRight(code, " \t") + " "
		}
		var more string
		more, tail, quote = ls.split(cont, quote)
		if tail != "" {
			comments = append(comments, ls.classify(tail, contLine))
		}
		code += more
	}
	if code = strings.TrimSpace(code); code != "" {
		ls.queue = append(ls.queue, LogicalLine{Kind: Code, Text: code, Line: lineno})
	}
	ls.queue = append(ls.queue, comments...)
}

// nextContinuation returns the next physical line holding code, queueing
// comment lines met on the way into comments.
func (ls *LineStream) nextContinuation(comments *[]LogicalLine) (text string, lineno int, found bool) {
	for ls.next < len(ls.physical) {
		lineno = ls.next + 1
		text = strings.TrimSpace(ls.physical[ls.next])
		ls.next++
		switch {
		case text == "":
		case text[0] == '!':
			*comments = append(*comments, ls.classify(text, lineno))
		default:
			return text, lineno, true
		}
	}
	return "", 0, false
}

// split separates s into code and a trailing comment starting at '!'. quote is
// the delimiter of a character literal left open by a previous line, or zero.
// The returned quote is the literal still open at the end of s.
func (ls *LineStream) split(s string, quote byte) (code, comment string, open byte) {
	if ls.opts.NaiveComments {
		if i := strings.IndexByte(s, '!'); i >= 0 {
			return s[:i], s[i:], 0
		}
		return s, "", 0
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				// A doubled delimiter is an escaped quote and reopens the literal on the next iteration.
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '!':
			return s[:i], s[i:], 0
		}
	}
	return s, "", quote
}

// classify tags a comment starting with '!'.
func (ls *LineStream) classify(comment string, lineno int) LogicalLine {
	ll := LogicalLine{Kind: PlainComment, Line: lineno}
	switch {
	case strings.HasPrefix(comment, ls.opts.ReturnValueMarker):
		ll.Kind = ReturnValueDocComment
		comment = comment[len(ls.opts.ReturnValueMarker):]
	case strings.HasPrefix(comment, ls.opts.DocMarker):
		ll.Kind = DocComment
		comment = comment[len(ls.opts.DocMarker):]
	default:
		comment = comment[1:]
	}
	ll.Text = strings.TrimSpace(comment)
	return ll
}
