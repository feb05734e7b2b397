package stackcalc

// expr   = term { ('+' | '-') term }
// term   = factor { ('*' | '/') factor }
// factor = ('+' | '-') factor | power
// power  = atom [ '^' power ]
// atom   = int | float | '(' expr ')'

type parser struct {
	toks []Token
	pos  int
}

// Parse builds the AST for a token list produced by Tokenize. The whole list
// must form a single expression; a list without a trailing EOF token is
// treated as though it had one.
func Parse(tokens []Token) (Node, error) {
	p := parser{toks: tokens}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, &ParseError{Kind: UnexpectedToken, Got: tok}
	}
	return n, nil
}

// ParseString tokenizes and parses text.
func ParseString(text string) (Node, error) {
	toks, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// peek returns the current token without consuming it. Past the end of the
// list, the result is an EOF token.
func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokenEOF}
	}
	return p.toks[p.pos]
}

// advance consumes the current token.
func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

// expr parses a sum. A lone term is returned as is.
func (p *parser) expr() (Node, error) {
	n, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case TokenAdd:
			op = OpAdd
		case TokenSub:
			op = OpSub
		default:
			return n, nil
		}
		p.advance()
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		n = &BinaryNode{Left: n, Op: op, Right: rhs}
	}
}

// term parses a product. A lone factor is returned as is.
func (p *parser) term() (Node, error) {
	n, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case TokenMul:
			op = OpMul
		case TokenDiv:
			op = OpDiv
		default:
			return n, nil
		}
		p.advance()
		rhs, err := p.factor()
		if err != nil {
			return nil, err
		}
		n = &BinaryNode{Left: n, Op: op, Right: rhs}
	}
}

// factor parses any number of unary prefixes followed by a power.
func (p *parser) factor() (Node, error) {
	var op UnaryOp
	switch p.peek().Kind {
	case TokenAdd:
		op = OpIdentity
	case TokenSub:
		op = OpNegate
	default:
		return p.power()
	}
	p.advance()
	n, err := p.factor()
	if err != nil {
		return nil, err
	}
	return &UnaryNode{Op: op, Operand: n}, nil
}

// power parses an atom with an optional exponent. The exponent is itself a
// power, so chains associate to the right.
func (p *parser) power() (Node, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenPow {
		return n, nil
	}
	p.advance()
	rhs, err := p.power()
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Left: n, Op: OpPow, Right: rhs}, nil
}

func (p *parser) atom() (Node, error) {
	tok := p.advance()
	switch tok.Kind {
	case TokenInt:
		return &IntNode{Text: tok.Text}, nil
	case TokenFloat:
		return &FloatNode{Text: tok.Text}, nil
	case TokenLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if end := p.advance(); end.Kind != TokenRParen {
			return nil, &ParseError{Kind: ExpectedCloseParen, Got: end}
		}
		return n, nil
	case TokenEOF:
		return nil, &ParseError{Kind: UnexpectedEndOfInput, Got: tok}
	default:
		return nil, &ParseError{Kind: ExpectedAtom, Got: tok}
	}
}
