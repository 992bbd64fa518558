package f90doc

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func logicalLines(t *testing.T, src string, opts LineStreamOptions) []LogicalLine {
	t.Helper()
	ls, err := NewLineStream("test.f90", strings.NewReader(src), opts)
	assert.NoError(t, err)
	var lines []LogicalLine
	for {
		ll, ok := ls.Next()
		if !ok {
			return lines
		}
		lines = append(lines, ll)
	}
}

func TestLineStream(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		naive  bool
		expect []LogicalLine
	}{
		{
			name: "continuation",
			src:  "call foo(a, &\n      b)\n",
			expect: []LogicalLine{
				{Kind: Code, Text: "call foo(a, b)", Line: 1},
			},
		},
		{
			name: "leading ampersand inside literal",
			src:  "x = 'abc&\n  &def'",
			expect: []LogicalLine{
				{Kind: Code, Text: "x = 'abcdef'", Line: 1},
			},
		},
		{
			name: "trailing comment",
			src:  "  x = 1 ! note\n\n",
			expect: []LogicalLine{
				{Kind: Code, Text: "x = 1", Line: 1},
				{Kind: PlainComment, Text: "note", Line: 1},
			},
		},
		{
			name: "doc markers",
			src:  "!% Hello   \n!%RV result\n!%\n! plain",
			expect: []LogicalLine{
				{Kind: DocComment, Text: "Hello", Line: 1},
				{Kind: ReturnValueDocComment, Text: "result", Line: 2},
				{Kind: DocComment, Text: "", Line: 3},
				{Kind: PlainComment, Text: "plain", Line: 4},
			},
		},
		{
			name: "bang inside literal",
			src:  "print *, 'hi!' ! c",
			expect: []LogicalLine{
				{Kind: Code, Text: "print *, 'hi!'", Line: 1},
				{Kind: PlainComment, Text: "c", Line: 1},
			},
		},
		{
			name:  "bang inside literal naive",
			src:   "print *, 'hi!' ! c",
			naive: true,
			expect: []LogicalLine{
				{Kind: Code, Text: "print *, 'hi", Line: 1},
				{Kind: PlainComment, Text: "' ! c", Line: 1},
			},
		},
		{
			name: "comments inside continuation",
			src:  "call f(a, & ! first\n! whole\n\n   b)",
			expect: []LogicalLine{
				{Kind: Code, Text: "call f(a, b)", Line: 1},
				{Kind: PlainComment, Text: "first", Line: 1},
				{Kind: PlainComment, Text: "whole", Line: 2},
			},
		},
		{
			name: "carriage returns",
			src:  "module m\r\n!% doc\r\n",
			expect: []LogicalLine{
				{Kind: Code, Text: "module m", Line: 1},
				{Kind: DocComment, Text: "doc", Line: 2},
			},
		},
		{
			name: "dangling continuation",
			src:  "x = 1 + &",
			expect: []LogicalLine{
				{Kind: Code, Text: "x = 1 +", Line: 1},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := logicalLines(t, tc.src, LineStreamOptions{NaiveComments: tc.naive})
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestLineStreamJoinEquivalence(t *testing.T) {
	const single = "subroutine foo(a, b, c)"
	splits := []string{
		"subroutine foo(a, &\n b, c)",
		"subroutine foo(a, b&\n  &, c)",
		"subroutine &\n  foo(a, &\n  b, &\n  c)",
		"subroutine foo(a, & ! trailing\n b, c)",
	}
	want := logicalLines(t, single, LineStreamOptions{})
	for _, src := range splits {
		got := logicalLines(t, src, LineStreamOptions{})
		assert.Equal(t, want[0], got[0], src)
	}
}

func TestLineStreamCustomMarkers(t *testing.T) {
	opts := LineStreamOptions{DocMarker: "!>", ReturnValueMarker: "!>RV"}
	got := logicalLines(t, "!> about\n!>RV value\n!% not a doc", opts)
	assert.Equal(t, []LogicalLine{
		{Kind: DocComment, Text: "about", Line: 1},
		{Kind: ReturnValueDocComment, Text: "value", Line: 2},
		{Kind: PlainComment, Text: "% not a doc", Line: 3},
	}, got)
}

func TestNewLineStreamErrors(t *testing.T) {
	_, err := NewLineStream("a.f90", nil, LineStreamOptions{})
	assert.IsError(t, err, ErrNilReader)
	_, err = NewLineStream("", strings.NewReader(""), LineStreamOptions{})
	assert.IsError(t, err, ErrNoSource)
}
