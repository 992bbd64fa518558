package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"

	"github.com/soypat/f90doc"
)

// GrepCmd searches the logical lines of Fortran files. Continued statements
// are matched as a single line reported at the line they start on.
type GrepCmd struct {
	Pattern    string   `arg:"" help:"Regular expression to search for"`
	Files      []string `arg:"" help:"Fortran source files" type:"existingfile"`
	IgnoreCase bool     `help:"Case-insensitive matching" short:"i"`
	NoComments bool     `help:"Exclude comment lines from search" short:"c"`
	DocsOnly   bool     `help:"Search documentation comments only" short:"d"`
	FilesOnly  bool     `help:"Only print filenames with matches" short:"l"`
	Invert     bool     `help:"Print non-matching lines"`
	Syntax     bool     `help:"Highlight matched code lines as Fortran" short:"s"`
}

func (cmd *GrepCmd) Run(ctx *Context) error {
	if cmd.NoComments && cmd.DocsOnly {
		return fmt.Errorf("%w: --no-comments and --docs-only are mutually exclusive", errInvalidFlag)
	}
	pattern := cmd.Pattern
	if cmd.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	opts := ctx.Config.ParserOptions(nil)
	lsOpts := f90doc.LineStreamOptions{
		DocMarker:         opts.DocMarker,
		ReturnValueMarker: opts.ReturnValueMarker,
		NaiveComments:     opts.NaiveComments,
	}
	matched := false
	for _, filename := range cmd.Files {
		found, err := cmd.searchFile(ctx.Stdout, filename, re, lsOpts, len(cmd.Files) > 1)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", filename, err)
		}
		matched = matched || found
	}
	if !matched {
		return errNoMatch
	}
	return nil
}

func (cmd *GrepCmd) searchFile(w io.Writer, filename string, re *regexp.Regexp, opts f90doc.LineStreamOptions, showFilename bool) (bool, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer fp.Close()
	ls, err := f90doc.NewLineStream(filename, fp, opts)
	if err != nil {
		return false, err
	}

	prefix := ""
	if showFilename {
		prefix = filename + ":"
	}
	found := false
	for {
		line, ok := ls.Next()
		if !ok {
			break
		}
		if cmd.NoComments && line.Kind != f90doc.Code {
			continue
		} else if cmd.DocsOnly && !line.Kind.IsDoc() {
			continue
		}
		text := renderLine(line, opts)
		if re.MatchString(text) == cmd.Invert {
			continue
		}
		found = true
		if cmd.FilesOnly {
			fmt.Fprintln(w, filename)
			return true, nil
		}
		fmt.Fprintf(w, "%s%d:", prefix, line.Line)
		if err := cmd.writeMatch(w, re, line.Kind, text); err != nil {
			return found, err
		}
	}
	return found, nil
}

func (cmd *GrepCmd) writeMatch(w io.Writer, re *regexp.Regexp, kind f90doc.LineKind, text string) error {
	switch {
	case cmd.Syntax && kind == f90doc.Code:
		return quick.Highlight(w, text+"\n", "fortran", "terminal256", "monokai")
	case cmd.Invert:
		_, err := fmt.Fprintln(w, text)
		return err
	}
	highlight := color.New(color.FgRed, color.Bold).SprintFunc()
	_, err := fmt.Fprintln(w, re.ReplaceAllStringFunc(text, func(s string) string { return highlight(s) }))
	return err
}

// renderLine returns the logical line as it would be written in source,
// comments carrying their marker.
func renderLine(line f90doc.LogicalLine, opts f90doc.LineStreamOptions) string {
	var marker string
	switch line.Kind {
	case f90doc.Code:
		return line.Text
	case f90doc.DocComment:
		marker = opts.DocMarker
	case f90doc.ReturnValueDocComment:
		marker = opts.ReturnValueMarker
	default:
		marker = "!"
	}
	return strings.TrimSpace(marker + " " + line.Text)
}
