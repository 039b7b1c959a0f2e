package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/go-zwerg/zwerg/pkg/diag"
	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/dwarfx"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/qparse"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// run evaluates the query against every file and returns the exit
// code. A returned error is fatal (bad expression, unhandled runtime
// fault) and maps to exit code 2 in Execute.
func run(args []string) (int, error) {
	expr := flags.expr
	if expr == "" {
		if len(args) == 0 {
			return exitError, fmt.Errorf("no query expression given")
		}
		expr, args = args[0], args[1:]
	}
	if len(args) == 0 {
		return exitError, fmt.Errorf("no input files given")
	}

	colorize := shouldColorize()
	d := diag.New(diag.Options{
		Out:      os.Stderr,
		Colorize: colorize,
		Quiet:    flags.noMessages,
	})

	voc := dwarfx.Vocabulary(d.Recoverable)
	root, sc, err := qparse.Parse(expr, voc)
	if err != nil {
		return exitError, err
	}
	query, err := engine.NewQuery(root, sc, voc, d.Recoverable)
	if err != nil {
		return exitError, err
	}

	prefix := len(args) > 1
	if flags.withFilename {
		prefix = true
	}
	if flags.noFilename {
		prefix = false
	}

	matched := false
	hadError := false
	for _, path := range args {
		n, err := runFile(query, path, prefix, colorize)
		if err != nil {
			hadError = true
			if !flags.noMessages {
				fmt.Fprintf(os.Stderr, "zwerg: %s: %v\n", path, err)
			}
			continue
		}
		if n > 0 {
			matched = true
			if flags.quiet {
				return exitMatch, nil
			}
		}
	}

	switch {
	case hadError:
		return exitError, nil
	case matched:
		return exitMatch, nil
	default:
		return exitNoMatch, nil
	}
}

// runFile evaluates the compiled query against one file, printing
// matches (or their count) and reporting how many there were. Runtime
// faults (re-binding, unbound reads, origin misuse) surface as panics
// in the engine and are converted to errors here so one bad file does
// not take down the whole run.
func runFile(query *engine.Query, path string, prefix, colorize bool) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime fault: %v", r)
		}
	}()

	ctx, err := dwarfx.Open(path)
	if err != nil {
		return 0, err
	}
	defer ctx.Close()

	seed := engine.NewStack().Push(dwarfx.NewDwarf(ctx, dwarfx.Cooked))
	query.Run(seed)

	for {
		s, ok := query.Next()
		if !ok {
			break
		}
		n++
		if flags.quiet {
			return n, nil
		}
		if flags.count {
			continue
		}
		printMatch(s, path, prefix, colorize)
	}

	if flags.count {
		if prefix {
			fmt.Printf("%s:%d\n", path, n)
		} else {
			fmt.Printf("%d\n", n)
		}
	}
	return n, nil
}

func printMatch(s *engine.Stack, path string, prefix, colorize bool) {
	if s.Depth() == 0 {
		return
	}
	text := s.Top().Show(domain.Full)
	if colorize {
		text = utils.Colorize(text)
	}
	if prefix {
		fmt.Printf("%s:%s\n", path, text)
	} else {
		fmt.Println(text)
	}
}

func shouldColorize() bool {
	switch flags.color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}
