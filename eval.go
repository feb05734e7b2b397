package stackcalc

import "strings"

// Expr is an expression carried through every stage of the pipeline. It is
// immutable and may be evaluated any number of times by any number of VMs.
type Expr struct {
	src    string
	tokens []Token
	root   Node
	prog   Program
}

// ParseExpr lexes, parses, and compiles one line of input. Leading and
// trailing whitespace, including a line terminator, is ignored. Errors
// unwrap to ErrLex or ErrParse.
func ParseExpr(line string) (*Expr, error) {
	src := strings.TrimSpace(line)
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	root, err := Parse(toks)
	if err != nil {
		return nil, err
	}
	return &Expr{
		src:    src,
		tokens: toks,
		root:   root,
		prog:   Compile(root),
	}, nil
}

// Source returns the trimmed input the expression was parsed from.
func (e *Expr) Source() string {
	return e.src
}

// Tokens returns a copy of the expression's tokens, ending with EOF.
func (e *Expr) Tokens() []Token {
	return append([]Token(nil), e.tokens...)
}

// AST returns the root of the expression's syntax tree. The tree must not be
// modified.
func (e *Expr) AST() Node {
	return e.root
}

// Program returns a copy of the compiled bytecode.
func (e *Expr) Program() Program {
	return append(Program(nil), e.prog...)
}

// String returns the canonical form of the expression.
func (e *Expr) String() string {
	return e.root.String()
}

// Eval evaluates the expression on vm. Errors unwrap to ErrRuntime.
func (e *Expr) Eval(vm *VM) (Value, error) {
	return vm.Exec(e.prog)
}

// Trace evaluates the expression on vm and returns every value it produced.
// The last is the result.
func (e *Expr) Trace(vm *VM) ([]Value, error) {
	if _, err := vm.Exec(e.prog); err != nil {
		return nil, err
	}
	return vm.trace(), nil
}

// Eval is a shortcut to evaluate one line of input on a new VM. Every error
// unwraps to exactly one of ErrLex, ErrParse, and ErrRuntime.
func Eval(line string, opts ...VMOption) (Value, error) {
	e, err := ParseExpr(line)
	if err != nil {
		return Value{}, err
	}
	return e.Eval(NewVM(opts...))
}
