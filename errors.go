package stackcalc

import "errors"

var (
	// ErrLex indicates a lexer failure. Every *LexError unwraps to it.
	ErrLex = errors.New("lex error")

	// ErrParse indicates a parser failure. Every *ParseError unwraps to it.
	ErrParse = errors.New("parse error")

	// ErrRuntime indicates a failure while executing bytecode. Every
	// *RuntimeError unwraps to it.
	ErrRuntime = errors.New("runtime error")
)

var (
	_ error = (*LexError)(nil)
	_ error = (*ParseError)(nil)
	_ error = (*RuntimeError)(nil)
)
