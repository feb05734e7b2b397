package stackcalc

import (
	"errors"
	"math/rand"
	"reflect"
	"regexp"
	"strconv"
	"testing"
)

// diff finds the first pre-order node of n that differs from m, or nil, nil
// if the two ASTs are equal.
func diff(n, m Node) (Node, Node) {
	if n == nil || m == nil {
		if n != nil || m != nil {
			return n, m
		}
		return nil, nil
	}
	if n.Kind() != m.Kind() {
		return n, m
	}
	switch n := n.(type) {
	case *IntNode:
		if n.Text != m.(*IntNode).Text {
			return n, m
		}
	case *FloatNode:
		if n.Text != m.(*FloatNode).Text {
			return n, m
		}
	case *BinaryNode:
		o := m.(*BinaryNode)
		if n.Op != o.Op {
			return n, m
		}
		if d, e := diff(n.Left, o.Left); d != nil || e != nil {
			return d, e
		}
		return diff(n.Right, o.Right)
	case *UnaryNode:
		o := m.(*UnaryNode)
		if n.Op != o.Op {
			return n, m
		}
		return diff(n.Operand, o.Operand)
	}
	return nil, nil
}

func num(s string) Node {
	for _, r := range s {
		if r == '.' {
			return &FloatNode{Text: s}
		}
	}
	return &IntNode{Text: s}
}

func bin(l Node, op BinaryOp, r Node) Node { return &BinaryNode{Left: l, Op: op, Right: r} }
func un(op UnaryOp, n Node) Node           { return &UnaryNode{Op: op, Operand: n} }

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(1)", "1"},
		{"multi", "((((1))))", "1"},

		{"plus", "+1", "(+(1))"},
		{"neg", "-1", "(-(1))"},
		{"add", "1+2", "((1)+(2))"},
		{"sub", "1-2", "((1)-(2))"},
		{"mul", "1*2", "((1)*(2))"},
		{"div", "1/2", "((1)/(2))"},
		{"pow", "1^2", "((1)^(2))"},

		{"add4", "1+2+3+4", "((1+2)+3)+4"},
		{"sub4", "1-2-3-4", "((1-2)-3)-4"},
		{"mul4", "1*2*3*4", "((1*2)*3)*4"},
		{"div4", "1/2/3/4", "((1/2)/3)/4"},
		{"pow4", "1^2^3^4", "1^(2^(3^4))"},
		{"mixsum", "1-2+3", "(1-2)+3"},
		{"mixprod", "1/2*3", "(1/2)*3"},

		{"negpow", "-2^2", "-(2^2)"},
		{"desc", "1^2*3+4", "((1^2)*3)+4"},
		{"asc", "1+2*3^4", "1+(2*(3^4))"},
		{"descasc", "1^2*3+4+5*6^7", "(((1^2)*3)+4)+(5*(6^7))"},
		{"ascdesc", "1+2*3^4^5*6+7", "(1+((2*(3^(4^5)))*6))+7"},
		{"negneg", "--1", "-(-1)"},
		{"plusneg", "+-1", "+(-1)"},
		{"negsub", "-1-1", "(-1)-1"},
		{"negmul", "-2*3", "(-2)*3"},
		{"mulneg", "2*-3", "2*(-3)"},
		{"subneg", "1--1", "1-(-1)"},
		{"powparen", "(1+2)^3", "(1+2)^(3)"},
		{"powneg", "2^(-1)", "2^(-(1))"},
		{"floats", "1.5*2.0", "(1.5)*(2.0)"},
		{"spaces", " 1 +\t2 ", "1+2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := ParseString(c.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := diff(a, b)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a, d, c.b, b, e)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		n    Node
	}{
		{"int", "42", &IntNode{Text: "42"}},
		{"float", "3.0", &FloatNode{Text: "3.0"}},
		{"leadingzero", "007", &IntNode{Text: "007"}},
		{
			name: "precedence",
			src:  "1 + 2 * 3",
			n:    bin(num("1"), OpAdd, bin(num("2"), OpMul, num("3"))),
		},
		{
			name: "rightassoc",
			src:  "2^3^2",
			n:    bin(num("2"), OpPow, bin(num("3"), OpPow, num("2"))),
		},
		{
			name: "unarypow",
			src:  "-2^2",
			n:    un(OpNegate, bin(num("2"), OpPow, num("2"))),
		},
		{
			name: "mixed",
			src:  "2^3^2 - (1 + 0.5) * -4",
			n: bin(
				bin(num("2"), OpPow, bin(num("3"), OpPow, num("2"))),
				OpSub,
				bin(bin(num("1"), OpAdd, num("0.5")), OpMul, un(OpNegate, num("4"))),
			),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			if !reflect.DeepEqual(n, c.n) {
				t.Errorf("%q: want %v, got %v", c.src, c.n, n)
			}
		})
	}
}

func TestParseWithoutEOF(t *testing.T) {
	toks := []Token{{Kind: TokenInt, Text: "1", Int: 1}, {Kind: TokenAdd, Text: "+"}, {Kind: TokenInt, Text: "2", Int: 2}}
	n, err := Parse(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := n.String(); s != "1 + 2" {
		t.Errorf("want 1 + 2, got %q", s)
	}
	if _, err := Parse(nil); err == nil {
		t.Error("empty token list parsed")
	}
}

func TestNodeString(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"1", "1"},
		{"3.0", "3.0"},
		{"((1))", "1"},
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"(1-2)-3", "1 - 2 - 3"},
		{"1/(2*3)", "1 / (2 * 3)"},
		{"2^3^2", "2 ^ 3 ^ 2"},
		{"(2^3)^2", "(2 ^ 3) ^ 2"},
		{"-2^2", "-2 ^ 2"},
		{"(-2)^2", "(-2) ^ 2"},
		{"2^(-1)", "2 ^ (-1)"},
		{"-(1+2)", "-(1 + 2)"},
		{"--1", "--1"},
		{"+(-(1))", "+-1"},
		{"1--1", "1 - -1"},
		{"2*(-3)", "2 * -3"},
		{"(1*2)^3", "(1 * 2) ^ 3"},
	}
	for _, c := range cases {
		n, err := ParseString(c.src)
		if err != nil {
			t.Errorf("failed to parse %q: %v", c.src, err)
			continue
		}
		if got := n.String(); got != c.want {
			t.Errorf("%q: want %q, got %q", c.src, c.want, got)
		}
	}
}

// randTree generates a random AST with about depth levels.
func randTree(rng *rand.Rand, depth int) Node {
	if depth <= 0 || rng.Intn(4) == 0 {
		if rng.Intn(3) == 0 {
			return &FloatNode{Text: strconv.Itoa(rng.Intn(100)) + "." + strconv.Itoa(rng.Intn(100))}
		}
		return &IntNode{Text: strconv.Itoa(rng.Intn(1000))}
	}
	if rng.Intn(4) == 0 {
		return &UnaryNode{Op: UnaryOp(rng.Intn(2)), Operand: randTree(rng, depth-1)}
	}
	return &BinaryNode{
		Left:  randTree(rng, depth-1),
		Op:    BinaryOp(rng.Intn(5)),
		Right: randTree(rng, depth-1),
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		n := randTree(rng, 6)
		s := n.String()
		m, err := ParseString(s)
		if err != nil {
			t.Fatalf("canonical form %q of %#v does not parse: %v", s, n, err)
		}
		if d, e := diff(n, m); d != nil || e != nil {
			t.Fatalf("%q parses back to %q: %v differs from %v", s, m, d, e)
		}
		if s2 := m.String(); s2 != s {
			t.Fatalf("printing is not stable: %q then %q", s, s2)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ParseErrorKind
		got  TokenKind
		res  []string
	}{
		{"empty", "", UnexpectedEndOfInput, TokenEOF, []string{`(?i)\bend of input\b`}},
		{"emptyparen", "()", ExpectedAtom, TokenRParen, []string{`\)`}},
		{"emptyoperand", "1*", UnexpectedEndOfInput, TokenEOF, []string{`(?i)\bend\b`}},
		{"emptyunary", "1*-", UnexpectedEndOfInput, TokenEOF, []string{`(?i)\bend\b`}},
		{"doubleop", "1*/2", ExpectedAtom, TokenDiv, []string{`\bDiv\b`}},
		{"leadingop", "*1", ExpectedAtom, TokenMul, []string{`\bMul\b`}},
		{"powneg", "2^-1", ExpectedAtom, TokenSub, []string{`\bSub\b`}},
		{"left", "(1", ExpectedCloseParen, TokenEOF, []string{`\)`, `\bEOF\b`}},
		{"left2", "(1 2)", ExpectedCloseParen, TokenInt, []string{`\)`, `Int\(2\)`}},
		{"right", "1)", UnexpectedToken, TokenRParen, []string{`\)`, `(?i)after expression`}},
		{"trailing", "1 2", UnexpectedToken, TokenInt, []string{`Int\(2\)`}},
		{"trailingparen", "(1)(2)", UnexpectedToken, TokenLParen, []string{`\(`}},
		{"haskell", "(+)", ExpectedAtom, TokenRParen, []string{`\)`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseString(c.src)
			if n != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, n)
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("%q: want parse error, got %v", c.src, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("%q: wrong error type %T", c.src, err)
			}
			if perr.Kind != c.kind || perr.Got.Kind != c.got {
				t.Errorf("%q: want %v at %v, got %v at %v", c.src, c.kind, c.got, perr.Kind, perr.Got.Kind)
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestParseLexError(t *testing.T) {
	_, err := ParseString("2^(-$)")
	if !errors.Is(err, ErrLex) || errors.Is(err, ErrParse) {
		t.Errorf("want only a lex error, got %v", err)
	}
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"descasc", "1^2*3+4+5*6^7"},
		{"descasc-parens", "(((1^2)*3)+4)+5*(6^7)"},
		{"ascdesc", "1+2*3^4^5*6+7"},
		{"ascdesc-parens", "1+((2*(3^(4^5)))*6)+7"},
		{"floats", "1.5^1.1*1.1+0.1+0.25*2.5"},
		{"unary", "----1"},
	}
	for _, c := range cases {
		toks, err := Tokenize(c.src)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Parse(toks)
			}
		})
	}
}
