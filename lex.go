package stackcalc

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// Token is a single lexical token.
type Token struct {
	// Kind is the type of the token.
	Kind TokenKind
	// Text is the source text of the token. For numbers it is the literal
	// exactly as scanned. It is empty for EOF.
	Text string
	// Int is the value of an integer literal.
	Int int64
	// Float is the value of a floating-point literal.
	Float float64
}

func (t Token) String() string {
	switch t.Kind {
	case TokenInt:
		return "Int(" + strconv.FormatInt(t.Int, 10) + ")"
	case TokenFloat:
		return "Float(" + strconv.FormatFloat(t.Float, 'g', -1, 64) + ")"
	default:
		return t.Kind.String()
	}
}

// TokenKind is the type of a token.
type TokenKind int8

const (
	// TokenEOF indicates the end of the input.
	TokenEOF TokenKind = iota
	// TokenInt is a signed 64-bit integer literal.
	TokenInt
	// TokenFloat is a 64-bit floating-point literal.
	TokenFloat

	TokenAdd
	TokenSub
	TokenMul
	TokenDiv
	TokenPow

	TokenLParen
	TokenRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenInt:
		return "Int"
	case TokenFloat:
		return "Float"
	case TokenAdd:
		return "Add"
	case TokenSub:
		return "Sub"
	case TokenMul:
		return "Mul"
	case TokenDiv:
		return "Div"
	case TokenPow:
		return "Pow"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// symbols maps single-rune operators and brackets to their tokens.
var symbols = map[rune]TokenKind{
	'+': TokenAdd,
	'-': TokenSub,
	'*': TokenMul,
	'/': TokenDiv,
	'^': TokenPow,
	'(': TokenLParen,
	')': TokenRParen,
}

type lexer struct {
	src io.RuneScanner
	buf strings.Builder
}

// Tokenize scans text into tokens. The result always ends with an EOF token.
// The first invalid character or malformed number aborts the scan, in which
// case the token list is nil.
func Tokenize(text string) ([]Token, error) {
	l := lexer{src: strings.NewReader(text)}
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// unreadRune unreads a rune from the src. Panics if unreading returns an
// error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
}

// next scans the next token from the input.
func (l *lexer) next() (Token, error) {
	for {
		r, _, err := l.src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Token{Kind: TokenEOF}, nil
			}
			return Token{}, err
		}
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r':
			continue
		case '0' <= r && r <= '9':
			l.unreadRune()
			return l.scanNum()
		default:
			if k, ok := symbols[r]; ok {
				return Token{Kind: k, Text: string(r)}, nil
			}
			return Token{}, &LexError{Kind: UnexpectedCharacter, Text: string(r), Char: r}
		}
	}
}

func (l *lexer) scanNum() (Token, error) {
	defer l.buf.Reset()
	dot := false
	for {
		r, _, err := l.src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{}, err
		}
		if r == '.' {
			l.buf.WriteRune(r)
			if dot {
				return Token{}, &LexError{Kind: TooManyDecimalPoints, Text: l.buf.String()}
			}
			dot = true
			continue
		}
		if r < '0' || '9' < r {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
	}
	text := l.buf.String()
	if !dot {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Token{}, &LexError{Kind: InvalidInteger, Text: text}
		}
		return Token{Kind: TokenInt, Text: text, Int: n}, nil
	}
	if strings.HasSuffix(text, ".") {
		return Token{}, &LexError{Kind: InvalidFloat, Text: text}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		// Only digits and one interior dot reach here, so any error is a
		// range error and f already holds the rounded result, +Inf on
		// overflow.
		return Token{}, &LexError{Kind: InvalidFloat, Text: text}
	}
	return Token{Kind: TokenFloat, Text: text, Float: f}, nil
}

// LexErrorKind classifies a LexError.
type LexErrorKind int8

const (
	// UnexpectedCharacter is a rune that cannot start any token.
	UnexpectedCharacter LexErrorKind = iota
	// TooManyDecimalPoints is a number with a second decimal point.
	TooManyDecimalPoints
	// InvalidInteger is an integer literal that does not fit in an int64.
	InvalidInteger
	// InvalidFloat is a malformed decimal literal, e.g. one ending in ".".
	InvalidFloat
)

func (k LexErrorKind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	case TooManyDecimalPoints:
		return "TooManyDecimalPoints"
	case InvalidInteger:
		return "InvalidInteger"
	case InvalidFloat:
		return "InvalidFloat"
	default:
		return "LexErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// LexError indicates an invalid token.
type LexError struct {
	// Kind is the reason the token is invalid.
	Kind LexErrorKind
	// Text is the text the lexer was scanning when it failed, including the
	// offending rune.
	Text string
	// Char is the offending rune for UnexpectedCharacter.
	Char rune
}

func (err *LexError) Error() string {
	switch err.Kind {
	case UnexpectedCharacter:
		return "unexpected character " + strconv.QuoteRune(err.Char)
	case TooManyDecimalPoints:
		return "too many decimal points in " + strconv.Quote(err.Text)
	case InvalidInteger:
		return "invalid integer " + strconv.Quote(err.Text)
	case InvalidFloat:
		return "invalid floating point " + strconv.Quote(err.Text)
	default:
		return "invalid token " + strconv.Quote(err.Text)
	}
}

func (err *LexError) Unwrap() error {
	return ErrLex
}
