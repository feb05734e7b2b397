package stackcalc

import (
	"strconv"
	"strings"
)

// Node is a node in the abstract syntax tree of an expression. The concrete
// types are *IntNode, *FloatNode, *BinaryNode, and *UnaryNode. An AST is a
// strict tree: no node appears twice.
type Node interface {
	// Kind returns the node's kind tag.
	Kind() NodeKind
	// String returns the canonical source text of the subtree, using the
	// fewest parentheses that parse back to the same tree.
	String() string

	// fmt writes the canonical text of the node.
	fmt(b *strings.Builder)
}

// NodeKind is the kind tag of a Node.
type NodeKind int8

const (
	NodeInt NodeKind = iota
	NodeFloat
	NodeBinaryOp
	NodeUnaryOp
)

func (k NodeKind) String() string {
	switch k {
	case NodeInt:
		return "Int"
	case NodeFloat:
		return "Float"
	case NodeBinaryOp:
		return "BinaryOp"
	case NodeUnaryOp:
		return "UnaryOp"
	default:
		return "NodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// BinaryOp is a binary operator. Its value is the operator code used in
// bytecode.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

// Symbol returns the source text of the operator.
func (op BinaryOp) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPow:
		return "pow"
	default:
		return "binop(" + strconv.Itoa(int(op)) + ")"
	}
}

// UnaryOp is a unary operator. Its value is the operator code used in
// bytecode.
type UnaryOp uint8

const (
	// OpIdentity is unary +.
	OpIdentity UnaryOp = iota
	// OpNegate is unary -.
	OpNegate
)

// Symbol returns the source text of the operator.
func (op UnaryOp) Symbol() string {
	switch op {
	case OpIdentity:
		return "+"
	case OpNegate:
		return "-"
	default:
		return "?"
	}
}

func (op UnaryOp) String() string {
	switch op {
	case OpIdentity:
		return "id"
	case OpNegate:
		return "neg"
	default:
		return "unop(" + strconv.Itoa(int(op)) + ")"
	}
}

// IntNode is an integer literal.
type IntNode struct {
	// Text is the literal as written.
	Text string
}

// FloatNode is a floating-point literal.
type FloatNode struct {
	// Text is the literal as written.
	Text string
}

// BinaryNode applies a binary operator to two operands.
type BinaryNode struct {
	Left  Node
	Op    BinaryOp
	Right Node
}

// UnaryNode applies a unary operator to one operand.
type UnaryNode struct {
	Op      UnaryOp
	Operand Node
}

func (*IntNode) Kind() NodeKind    { return NodeInt }
func (*FloatNode) Kind() NodeKind  { return NodeFloat }
func (*BinaryNode) Kind() NodeKind { return NodeBinaryOp }
func (*UnaryNode) Kind() NodeKind  { return NodeUnaryOp }

func (n *IntNode) String() string    { return nodeString(n) }
func (n *FloatNode) String() string  { return nodeString(n) }
func (n *BinaryNode) String() string { return nodeString(n) }
func (n *UnaryNode) String() string  { return nodeString(n) }

func nodeString(n Node) string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// Binding levels of the grammar, loosest first. A child is parenthesized
// when it binds more loosely than its position in the parent allows.
const (
	levelSum = iota + 1
	levelProduct
	levelUnary
	levelPower
	levelAtom
)

func level(n Node) int {
	switch n := n.(type) {
	case *BinaryNode:
		switch n.Op {
		case OpAdd, OpSub:
			return levelSum
		case OpMul, OpDiv:
			return levelProduct
		default:
			return levelPower
		}
	case *UnaryNode:
		return levelUnary
	default:
		return levelAtom
	}
}

// fmtmin writes n, wrapped in parentheses if it binds more loosely than want.
func fmtmin(b *strings.Builder, n Node, want int) {
	if level(n) < want {
		b.WriteByte('(')
		n.fmt(b)
		b.WriteByte(')')
		return
	}
	n.fmt(b)
}

func (n *IntNode) fmt(b *strings.Builder) {
	b.WriteString(n.Text)
}

func (n *FloatNode) fmt(b *strings.Builder) {
	b.WriteString(n.Text)
}

func (n *BinaryNode) fmt(b *strings.Builder) {
	switch lv := level(n); lv {
	case levelPower:
		// power := atom ['^' power]
		fmtmin(b, n.Left, levelAtom)
		b.WriteString(" ^ ")
		fmtmin(b, n.Right, levelPower)
	default:
		// Left-associative: a same-level right child needs parentheses.
		fmtmin(b, n.Left, lv)
		b.WriteByte(' ')
		b.WriteString(n.Op.Symbol())
		b.WriteByte(' ')
		fmtmin(b, n.Right, lv+1)
	}
}

func (n *UnaryNode) fmt(b *strings.Builder) {
	b.WriteString(n.Op.Symbol())
	fmtmin(b, n.Operand, levelUnary)
}
