// Package stackcalc implements an integer and floating-point calculator that
// compiles expressions to bytecode for a small stack machine.
//
// An expression is a line like "2^3^2 - (1 + 0.5) * -4". Numbers without a
// decimal point are 64-bit integers; numbers with one are 64-bit floats. The
// operators are + - * / ^ and unary + and -, with the usual precedence. "^"
// is right-associative, so "2^3^2" is "2^(3^2)", and it binds tighter than
// unary minus, so "-2^2" is "-(2^2)".
//
// Evaluation happens in four stages, each usable on its own: Tokenize turns
// text into tokens, Parse builds a syntax tree, Compile flattens the tree
// into a Program, and a VM runs the program. Integer operations stay integer
// (division truncates); any operation with a float operand is done in
// floating point.
//
package stackcalc
