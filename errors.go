package f90doc

import (
	"errors"
	"strconv"
)

var (
	// ErrUnexpectedEOF is returned when the input ends inside a construct
	// that has not seen its terminator.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrNilReader is returned when a nil reader is given to the parser.
	ErrNilReader = errors.New("nil reader")
	// ErrNoSource is returned when the source name is empty.
	ErrNoSource = errors.New("no source name")
)

// ParserError is a failure tied to a position in the source.
type ParserError struct {
	sp  sourcePos
	msg string
	err error
}

func (pe *ParserError) Error() string {
	var dst []byte
	dst = pe.sp.AppendString(dst)
	dst = append(dst, ':', ' ')
	dst = append(dst, pe.msg...)
	if pe.err != nil {
		dst = append(dst, ':', ' ')
		dst = append(dst, pe.err.Error()...)
	}
	return string(dst)
}

func (pe *ParserError) Unwrap() error { return pe.err }

// Source returns the name of the file the error occurred in.
func (pe *ParserError) Source() string { return pe.sp.Source }

// Line returns the 1 based line number the error refers to.
func (pe *ParserError) Line() int { return pe.sp.Line }

type sourcePos struct {
	Source string
	Line   int
	Col    int
}

func (l *sourcePos) String() string {
	return string(l.AppendString(nil))
}

func (l *sourcePos) AppendString(b []byte) []byte {
	if b == nil {
		b = make([]byte, 0, len(l.Source)+3+3)
	}
	b = append(b, l.Source...)
	b = append(b, ':')

	b = strconv.AppendInt(b, int64(l.Line), 10)
	if l.Col > 0 {
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(l.Col), 10)
	}
	return b
}
