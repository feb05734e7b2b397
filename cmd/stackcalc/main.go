package main

import (
	"fmt"
	"io"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/zephyrtronium/stackcalc"
	"github.com/zephyrtronium/stackcalc/irgen"
)

var plog = capnslog.NewPackageLogger("github.com/zephyrtronium/stackcalc", "main")

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(err)
		os.Exit(1)
	}
}

// newApp creates the command line application reading from stdin and
// writing to stdout and stderr.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	var cfg config
	app := &cli.App{
		Name:      "stackcalc",
		Usage:     "integer and floating-point calculator",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load settings from a YAML `FILE`",
				EnvVars: []string{"STACKCALC_CONFIG"},
			},
			&cli.StringFlag{Name: "prompt", Usage: "interactive prompt"},
			&cli.BoolFlag{Name: "trace", Usage: "print every intermediate value"},
			&cli.BoolFlag{Name: "echo", Usage: "print the canonical form of each expression"},
			&cli.BoolFlag{Name: "dis", Usage: "print the bytecode of each expression"},
			&cli.BoolFlag{Name: "dump", Usage: "print the syntax tree of each expression"},
			&cli.BoolFlag{Name: "promote-neg-exp", Usage: "compute integer powers with negative exponents in floating point"},
			&cli.StringFlag{Name: "log-level", Usage: "log `LEVEL` (ERROR, WARNING, INFO, DEBUG, ...)"},
			&cli.BoolFlag{Name: "debug", Usage: "log everything and print stack traces with errors"},
			&cli.BoolFlag{Name: "color", Usage: "style prompt and errors"},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			cfg.applyFlags(c)
			l, err := cfg.level()
			if err != nil {
				return err
			}
			capnslog.SetFormatter(capnslog.NewStringFormatter(stderr))
			capnslog.SetGlobalLogLevel(l)
			plog.Debugf("config: %+v", cfg)
			return nil
		},
		Action: func(c *cli.Context) error {
			return repl(cfg, stdin, stdout, stderr)
		},
		Commands: []*cli.Command{
			{
				Name:  "repl",
				Usage: "evaluate lines from standard input",
				Action: func(c *cli.Context) error {
					return repl(cfg, stdin, stdout, stderr)
				},
			},
			{
				Name:      "eval",
				Usage:     "evaluate each argument",
				ArgsUsage: "EXPR...",
				Action: func(c *cli.Context) error {
					s := newSession(cfg, stdout, stderr)
					failed := 0
					for _, arg := range c.Args().Slice() {
						if !s.eval(arg) {
							failed++
						}
					}
					if failed > 0 {
						return cli.Exit(fmt.Sprintf("%d of %d expressions failed", failed, c.NArg()), 1)
					}
					return nil
				},
			},
			{
				Name:      "llvm",
				Usage:     "print the LLVM IR for an expression",
				ArgsUsage: "EXPR",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("llvm takes exactly one expression", 2)
					}
					e, err := stackcalc.ParseExpr(c.Args().First())
					if err != nil {
						return cli.Exit("Error: "+err.Error(), 1)
					}
					m, err := irgen.Lower(e.Program())
					if err != nil {
						return cli.Exit("Error: "+err.Error(), 1)
					}
					plog.Debugf("lowered %q", e.Source())
					fmt.Fprint(stdout, m)
					return nil
				},
			},
		},
	}
	return app
}
