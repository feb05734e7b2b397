package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/repr"
	"github.com/charmbracelet/lipgloss"
	"github.com/ztrue/tracerr"
	"golang.org/x/term"

	"github.com/zephyrtronium/stackcalc"
)

var (
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	traceStyle  = lipgloss.NewStyle().Faint(true)
)

// session evaluates lines of input and writes results.
type session struct {
	cfg config
	vm  *stackcalc.VM
	// out receives values and "Error:" lines. log receives debug traces.
	out io.Writer
	log io.Writer
}

func newSession(cfg config, out, log io.Writer) *session {
	var opts []stackcalc.VMOption
	if cfg.Promote {
		opts = append(opts, stackcalc.PromoteNegativeExponents())
	}
	return &session{
		cfg: cfg,
		vm:  stackcalc.NewVM(opts...),
		out: out,
		log: log,
	}
}

func (s *session) paint(style lipgloss.Style, text string) string {
	if !s.cfg.Color {
		return text
	}
	return style.Render(text)
}

// eval evaluates one line and prints its result or its error. It reports
// whether evaluation succeeded.
func (s *session) eval(line string) bool {
	start := time.Now()
	e, err := stackcalc.ParseExpr(line)
	if err != nil {
		s.fail(line, err)
		return false
	}
	plog.Debugf("compiled %q to %d instructions in %v", e.Source(), len(e.Program()), time.Since(start))
	if s.cfg.Echo {
		fmt.Fprintln(s.out, e)
	}
	if s.cfg.Dump {
		fmt.Fprintln(s.out, repr.String(e.AST(), repr.Indent("  ")))
	}
	if s.cfg.Disassemble {
		fmt.Fprintln(s.out, e.Program())
	}
	start = time.Now()
	vals, err := e.Trace(s.vm)
	if err != nil {
		s.fail(line, err)
		return false
	}
	plog.Debugf("evaluated %q in %v", e.Source(), time.Since(start))
	if s.cfg.Trace {
		for _, v := range vals[:len(vals)-1] {
			fmt.Fprintln(s.out, s.paint(traceStyle, v.String()))
		}
	}
	fmt.Fprintln(s.out, vals[len(vals)-1])
	return true
}

func (s *session) fail(line string, err error) {
	plog.Infof("%q: %v", line, err)
	fmt.Fprintln(s.out, s.paint(errorStyle, "Error:"), err.Error())
	if s.cfg.Debug {
		fmt.Fprint(s.log, tracerr.Sprint(tracerr.Wrap(err)))
		fmt.Fprintln(s.log)
	}
}

// lineReader is a source of input lines. ReadLine returns io.EOF when the
// input is exhausted.
type lineReader interface {
	ReadLine() (string, error)
}

// scanReader reads lines from a non-interactive source.
type scanReader struct {
	sc *bufio.Scanner
}

func (r scanReader) ReadLine() (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// run evaluates lines from r until it is exhausted. Failed lines are reported
// and do not stop the loop.
func (s *session) run(r lineReader) error {
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return tracerr.Wrap(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.eval(line)
	}
}

// repl runs an interactive session on in. When in is a terminal, input gets
// line editing and history and output goes through the terminal; otherwise
// lines are read from in and results are written to out.
func repl(cfg config, in io.Reader, out, log io.Writer) error {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		sc := bufio.NewScanner(in)
		return newSession(cfg, out, log).run(scanReader{sc})
	}
	fd := int(f.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer term.Restore(fd, old)
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, out}, "")
	s := newSession(cfg, t, t)
	t.SetPrompt(s.paint(promptStyle, cfg.Prompt))
	plog.Debugf("interactive session on fd %d", fd)
	return s.run(t)
}
