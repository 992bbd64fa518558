// f90doc extracts documentation from Fortran 90 source files.
//
// Usage:
//
//	f90doc [flags] <command> [args]
//
// Commands:
//
//	dump    print the documentation model as YAML, JSON or a tree
//	vars    list declarations one per line
//	grep    search logical lines with comment awareness
//	index   build or update the derived type index
//
// Example output of vars:
//
//	MOD(atoms_module) VAR(integer:MAX_ATOMS): decl=atoms.f90:9 PARAMETER
//	SUB(atoms_print) ARG(type(Atoms):this): decl=atoms.f90:37 INTENT(IN)
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/soypat/f90doc"
	"github.com/soypat/f90doc/doc"
)

var (
	// errNoMatch makes grep exit with status 1 without an error message.
	errNoMatch     = errors.New("no match")
	errInvalidFlag = errors.New("invalid flag")
)

// Context is shared by all commands.
type Context struct {
	Config  *f90doc.Config
	Logger  *slog.Logger
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Quiet   bool
}

// CLI describes the command line.
type CLI struct {
	Config  string     `help:"Configuration file path" default:"f90doc.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress status output" short:"q"`
	Dump    DumpCmd    `cmd:"" help:"Print the documentation model of Fortran files"`
	Vars    VarsCmd    `cmd:"" help:"List the declarations of Fortran files"`
	Grep    GrepCmd    `cmd:"" help:"Search Fortran files with comment awareness"`
	Index   IndexCmd   `cmd:"" help:"Build or update the derived type index"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "f90doc v0.1.0")
	return nil
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errNoMatch) {
		os.Exit(1)
	} else if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("f90doc"),
		kong.Description("Extract documentation from Fortran 90 source files."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	config, err := f90doc.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	} else if cli.Quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return kctx.Run(&Context{
		Config:  config,
		Logger:  logger,
		Stdout:  stdout,
		Stderr:  stderr,
		Verbose: cli.Verbose,
		Quiet:   cli.Quiet,
	})
}

// parseFiles parses files in order with a single parser so that held
// documentation crosses file boundaries only when the configuration asks for it.
// On error the files parsed so far are returned.
func (ctx *Context) parseFiles(filenames []string) ([]*doc.File, error) {
	parser := f90doc.NewParser(ctx.Config.ParserOptions(ctx.Logger))
	var files []*doc.File
	for _, filename := range filenames {
		f, err := parseFile(parser, filename)
		if err != nil {
			return files, fmt.Errorf("error processing %s: %w", filename, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func parseFile(parser *f90doc.Parser, filename string) (*doc.File, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return parser.ParseFile(filename, fp)
}

// status prints a progress message to standard error unless quiet.
func (ctx *Context) status(format string, args ...any) {
	if ctx.Quiet {
		return
	}
	color.New(color.FgCyan).Fprintf(ctx.Stderr, format+"\n", args...)
}
