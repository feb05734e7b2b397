package stackcalc

import (
	"errors"
	"strconv"
	"strings"
)

// Opcode is the operation of an Instruction.
type Opcode uint8

const (
	// OpPushInt pushes Instruction.Int.
	OpPushInt Opcode = iota
	// OpPushFloat pushes Instruction.Float.
	OpPushFloat
	// OpBinary pops two operands and pushes BinaryOp(Instruction.Code)
	// applied to them.
	OpBinary
	// OpUnary pops one operand and pushes UnaryOp(Instruction.Code) applied
	// to it.
	OpUnary
)

func (op Opcode) String() string {
	switch op {
	case OpPushInt:
		return "PUSHI"
	case OpPushFloat:
		return "PUSHF"
	case OpBinary:
		return "BINOP"
	case OpUnary:
		return "UNARYOP"
	default:
		return "OP(" + strconv.Itoa(int(op)) + ")"
	}
}

// Instruction is one stack machine instruction.
type Instruction struct {
	Op    Opcode
	Int   int64
	Float float64
	// Code is the operator code for OpBinary and OpUnary.
	Code uint8
}

// PushInt creates an instruction that pushes an integer.
func PushInt(v int64) Instruction {
	return Instruction{Op: OpPushInt, Int: v}
}

// PushFloat creates an instruction that pushes a float.
func PushFloat(v float64) Instruction {
	return Instruction{Op: OpPushFloat, Float: v}
}

// Binary creates an instruction that applies a binary operator.
func Binary(op BinaryOp) Instruction {
	return Instruction{Op: OpBinary, Code: uint8(op)}
}

// Unary creates an instruction that applies a unary operator.
func Unary(op UnaryOp) Instruction {
	return Instruction{Op: OpUnary, Code: uint8(op)}
}

func (in Instruction) String() string {
	switch in.Op {
	case OpPushInt:
		return "PUSHI " + strconv.FormatInt(in.Int, 10)
	case OpPushFloat:
		return "PUSHF " + strconv.FormatFloat(in.Float, 'g', -1, 64)
	case OpBinary:
		return "BINOP " + BinaryOp(in.Code).String()
	case OpUnary:
		return "UNARYOP " + UnaryOp(in.Code).String()
	default:
		return in.Op.String()
	}
}

// Program is a sequence of instructions in execution order.
type Program []Instruction

// String disassembles the program, one instruction per line.
func (prog Program) String() string {
	var b strings.Builder
	for i, in := range prog {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(in.String())
	}
	return b.String()
}

// Compile translates an AST into a program by post-order traversal, so that
// operands are always pushed before the operator that consumes them. n must
// be a well-formed tree as produced by Parse; Compile panics on nil children
// or literal text that does not parse.
func Compile(n Node) Program {
	var c compiler
	c.compile(n)
	return c.prog
}

type compiler struct {
	prog Program
}

func (c *compiler) emit(in Instruction) {
	c.prog = append(c.prog, in)
}

func (c *compiler) compile(n Node) {
	switch n := n.(type) {
	case *IntNode:
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			panic("stackcalc: invalid integer literal " + strconv.Quote(n.Text) + " (" + err.Error() + ")")
		}
		c.emit(PushInt(v))
	case *FloatNode:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			panic("stackcalc: invalid float literal " + strconv.Quote(n.Text) + " (" + err.Error() + ")")
		}
		c.emit(PushFloat(v))
	case *BinaryNode:
		c.compile(n.Left)
		c.compile(n.Right)
		c.emit(Binary(n.Op))
	case *UnaryNode:
		c.compile(n.Operand)
		c.emit(Unary(n.Op))
	default:
		// Node has unexported methods, so only a nil child gets here.
		panic("stackcalc: cannot compile nil node")
	}
}
