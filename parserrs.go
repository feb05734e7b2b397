package stackcalc

import "strconv"

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int8

const (
	// UnexpectedEndOfInput indicates that the input ended where an operand
	// was required, e.g. "1+" or "".
	UnexpectedEndOfInput ParseErrorKind = iota
	// ExpectedAtom indicates a token that cannot start an operand, e.g. the
	// second operator in "1*/2".
	ExpectedAtom
	// ExpectedCloseParen indicates an open parenthesis with no matching
	// close parenthesis.
	ExpectedCloseParen
	// UnexpectedToken indicates input left over after a complete
	// expression, e.g. "1 2" or "1)".
	UnexpectedToken
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case ExpectedAtom:
		return "ExpectedAtom"
	case ExpectedCloseParen:
		return "ExpectedCloseParen"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return "ParseErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseError is an error indicating a token sequence that does not form an
// expression.
type ParseError struct {
	// Kind is the reason parsing failed.
	Kind ParseErrorKind
	// Got is the token at which parsing failed.
	Got Token
}

func (err *ParseError) Error() string {
	switch err.Kind {
	case UnexpectedEndOfInput:
		return "unexpected end of input"
	case ExpectedAtom:
		return "expected number or '(', got " + err.Got.String()
	case ExpectedCloseParen:
		return "expected ')', got " + err.Got.String()
	case UnexpectedToken:
		return "unexpected " + err.Got.String() + " after expression"
	default:
		return "cannot parse at " + err.Got.String()
	}
}

func (err *ParseError) Unwrap() error {
	return ErrParse
}
