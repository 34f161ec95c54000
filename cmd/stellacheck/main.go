// Command stellacheck is the host CLI around the checker: it reads a
// serialized program tree from standard input, runs the two-pass driver,
// and reports the collected diagnostics — colorized, in the teacher's
// cmd/ailang/main.go style (flag + a command switch, not cobra).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/d-tolmachev/stella-type-checker/internal/checker"
	"github.com/d-tolmachev/stella-type-checker/internal/constraint"
	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/diag"
	"github.com/d-tolmachev/stella-type-checker/internal/driver"
	"github.com/d-tolmachev/stella-type-checker/internal/flags"
	"github.com/d-tolmachev/stella-type-checker/internal/tenv"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

var (
	// Version is set at build time via -ldflags, matching the teacher's
	// cmd/ailang/main.go convention.
	Version = "dev"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stellacheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	versionFlag := fs.Bool("version", false, "print version and exit")
	flagsPath := fs.String("flags", "", "path to a YAML extension-flags document")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "stellacheck %s\n", Version)
		return 0
	}

	command := "check"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	flagSet, err := loadFlags(*flagsPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", red("error"), err)
		return 2
	}

	switch command {
	case "check":
		return runCheck(flagSet, stdin, stdout, stderr)
	case "repl":
		return runREPL(flagSet, stdout, stderr)
	case "help":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n", red("error"), command)
		printHelp(stderr)
		return 2
	}
}

func loadFlags(path string) (*flags.Set, error) {
	if path == "" {
		return flags.NewSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extension flags: %w", err)
	}
	return flags.Decode(data)
}

func runCheck(flagSet *flags.Set, stdin io.Reader, stdout, stderr io.Writer) int {
	data, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%s: reading stdin: %v\n", red("error"), err)
		return 2
	}

	prog, err := cst.Decode(data)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", red("error"), err)
		return 2
	}
	cst.Normalize(prog)

	result := driver.Run(prog, flagSet)
	printReport(stdout, result.Diagnostics)

	if len(result.Diagnostics) > 0 {
		return 1
	}
	return 0
}

func printReport(w io.Writer, diagnostics []diag.Diagnostic) {
	if len(diagnostics) == 0 {
		fmt.Fprintln(w, green("ok: no type errors found"))
		return
	}
	for _, d := range diagnostics {
		fmt.Fprintf(w, "%s [%s] %s\n", red("error:"), yellow(d.Kind.String()), d.Message())
	}
	fmt.Fprintf(w, bold("%d error(s) found\n"), len(diagnostics))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "stellacheck - a static type checker for the Stella family of languages")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  stellacheck [-flags path.yaml] check   check a program tree read from stdin")
	fmt.Fprintln(w, "  stellacheck repl                       interactively check one expression at a time")
	fmt.Fprintln(w, "  stellacheck -version                   print the version")
}

func runREPL(flagSet *flags.Set, stdout, stderr io.Writer) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := os.TempDir() + "/.stellacheck_history"
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(stdout, bold("stellacheck repl — paste one YAML-serialized expression per entry, Ctrl-D to exit"))

	for {
		input, err := line.Prompt("stella> ")
		if err != nil {
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		doc := "decls:\n  - kind: Wrapper\n    expr:\n" + reindent(input, "      ")
		prog, err := cst.Decode([]byte(doc))
		if err != nil {
			fmt.Fprintf(stderr, "%s %v\n", red("parse error:"), err)
			continue
		}
		cst.Normalize(prog)
		exprNode := prog.Decls[0].Child("expr")

		sink := diag.NewSink()
		c := checker.New(sink, flagSet, types.NewFresh(), constraint.NewStore())
		ty := c.Check(tenv.New(), exprNode, nil)

		if sink.HasErrors() {
			printReport(stdout, sink.Diagnostics())
			continue
		}
		fmt.Fprintf(stdout, "%s %s\n", green("::"), ty.String())
	}

	if f, err := os.Create(historyPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return 0
}

func reindent(s, prefix string) string {
	out := ""
	cur := ""
	for _, r := range s {
		if r == '\n' {
			out += prefix + cur + "\n"
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out += prefix + cur + "\n"
	}
	return out
}
