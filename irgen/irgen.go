// Package irgen lowers stackcalc bytecode to LLVM IR.
//
// The operand types of a program are fixed by its literals, so int/float
// promotion is resolved during lowering and the generated function returns
// either i64 or double. Integer division by zero and integer exponentiation
// with a negative exponent branch to a call of llvm.trap, where the VM would
// report DivisionByZero or NegativeIntegerExponent.
package irgen

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/zephyrtronium/stackcalc"
)

// FuncName is the name of the generated function that evaluates the program.
const FuncName = "eval"

// Lower translates a program into a module defining a function named
// FuncName with no parameters, returning the program's result. Programs the
// VM would reject for their shape (stack underflow, leftover values, invalid
// opcodes) are rejected with the same *stackcalc.RuntimeError.
func Lower(prog stackcalc.Program) (*ir.Module, error) {
	ret, err := resultType(prog)
	if err != nil {
		return nil, err
	}
	g := gen{m: ir.NewModule()}
	g.fn = g.m.NewFunc(FuncName, ret)
	g.cur = g.fn.NewBlock("entry")
	for _, in := range prog {
		g.lower(in)
	}
	g.cur.NewRet(g.pop().v)
	return g.m, nil
}

// resultType checks the stack discipline of prog and returns the type of its
// result.
func resultType(prog stackcalc.Program) (types.Type, error) {
	var stack []bool // true for float
	for pc, in := range prog {
		switch in.Op {
		case stackcalc.OpPushInt:
			stack = append(stack, false)
		case stackcalc.OpPushFloat:
			stack = append(stack, true)
		case stackcalc.OpBinary:
			if len(stack) < 2 {
				return nil, &stackcalc.RuntimeError{Kind: stackcalc.StackUnderflow, PC: pc, Instr: in, Depth: len(stack)}
			}
			f := stack[len(stack)-1] || stack[len(stack)-2]
			stack = append(stack[:len(stack)-2], f)
			if stackcalc.BinaryOp(in.Code) > stackcalc.OpPow {
				return nil, &stackcalc.RuntimeError{Kind: stackcalc.InvalidOpcode, PC: pc, Instr: in, Depth: len(stack) - 1}
			}
		case stackcalc.OpUnary:
			if len(stack) < 1 {
				return nil, &stackcalc.RuntimeError{Kind: stackcalc.StackUnderflow, PC: pc, Instr: in}
			}
			if stackcalc.UnaryOp(in.Code) > stackcalc.OpNegate {
				return nil, &stackcalc.RuntimeError{Kind: stackcalc.InvalidOpcode, PC: pc, Instr: in, Depth: len(stack) - 1}
			}
		default:
			return nil, &stackcalc.RuntimeError{Kind: stackcalc.InvalidOpcode, PC: pc, Instr: in, Depth: len(stack)}
		}
	}
	switch len(stack) {
	case 0:
		return nil, &stackcalc.RuntimeError{Kind: stackcalc.StackUnderflow, PC: len(prog)}
	case 1:
		if stack[0] {
			return types.Double, nil
		}
		return types.I64, nil
	default:
		return nil, &stackcalc.RuntimeError{Kind: stackcalc.UnbalancedStack, PC: len(prog), Depth: len(stack)}
	}
}

// operand is an SSA value on the simulated operand stack.
type operand struct {
	v     value.Value
	float bool
}

type gen struct {
	m     *ir.Module
	fn    *ir.Func
	cur   *ir.Block
	stack []operand

	// Lazily declared helpers.
	trap, pow, ipow *ir.Func
	// guards counts guard blocks so that their names are unique.
	guards int
}

func (g *gen) push(v value.Value, float bool) {
	g.stack = append(g.stack, operand{v: v, float: float})
}

func (g *gen) pop() operand {
	r := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return r
}

// lower emits code for one instruction. resultType has already checked the
// program, so lower does not revalidate it.
func (g *gen) lower(in stackcalc.Instruction) {
	switch in.Op {
	case stackcalc.OpPushInt:
		g.push(constant.NewInt(types.I64, in.Int), false)
	case stackcalc.OpPushFloat:
		g.push(constant.NewFloat(types.Double, in.Float), true)
	case stackcalc.OpBinary:
		b := g.pop()
		a := g.pop()
		if a.float || b.float {
			g.push(g.floatop(stackcalc.BinaryOp(in.Code), g.tofloat(a), g.tofloat(b)), true)
			return
		}
		g.push(g.intop(stackcalc.BinaryOp(in.Code), a.v, b.v), false)
	case stackcalc.OpUnary:
		a := g.pop()
		if stackcalc.UnaryOp(in.Code) == stackcalc.OpIdentity {
			g.push(a.v, a.float)
			return
		}
		if a.float {
			g.push(g.cur.NewFNeg(a.v), true)
			return
		}
		g.push(g.cur.NewSub(constant.NewInt(types.I64, 0), a.v), false)
	default:
		panic("irgen: unchecked opcode " + in.Op.String())
	}
}

// tofloat converts an operand to double.
func (g *gen) tofloat(x operand) value.Value {
	if x.float {
		return x.v
	}
	return g.cur.NewSIToFP(x.v, types.Double)
}

func (g *gen) floatop(op stackcalc.BinaryOp, x, y value.Value) value.Value {
	switch op {
	case stackcalc.OpAdd:
		return g.cur.NewFAdd(x, y)
	case stackcalc.OpSub:
		return g.cur.NewFSub(x, y)
	case stackcalc.OpMul:
		return g.cur.NewFMul(x, y)
	case stackcalc.OpDiv:
		return g.cur.NewFDiv(x, y)
	default:
		return g.cur.NewCall(g.powf(), x, y)
	}
}

func (g *gen) intop(op stackcalc.BinaryOp, x, y value.Value) value.Value {
	zero := constant.NewInt(types.I64, 0)
	switch op {
	case stackcalc.OpAdd:
		return g.cur.NewAdd(x, y)
	case stackcalc.OpSub:
		return g.cur.NewSub(x, y)
	case stackcalc.OpMul:
		return g.cur.NewMul(x, y)
	case stackcalc.OpDiv:
		g.guard("div", g.cur.NewICmp(enum.IPredEQ, y, zero))
		return g.cur.NewSDiv(x, y)
	default:
		g.guard("pow", g.cur.NewICmp(enum.IPredSLT, y, zero))
		return g.cur.NewCall(g.powi(), x, y)
	}
}

// guard ends the current block with a branch to a trap when bad is true and
// continues code generation in a new block otherwise.
func (g *gen) guard(name string, bad value.Value) {
	g.guards++
	n := strconv.Itoa(g.guards)
	trap := g.fn.NewBlock(name + ".trap." + n)
	trap.NewCall(g.trapf())
	trap.NewUnreachable()
	ok := g.fn.NewBlock(name + ".ok." + n)
	g.cur.NewCondBr(bad, trap, ok)
	g.cur = ok
}

func (g *gen) trapf() *ir.Func {
	if g.trap == nil {
		g.trap = g.m.NewFunc("llvm.trap", types.Void)
	}
	return g.trap
}

func (g *gen) powf() *ir.Func {
	if g.pow == nil {
		g.pow = g.m.NewFunc("llvm.pow.f64", types.Double,
			ir.NewParam("x", types.Double),
			ir.NewParam("y", types.Double),
		)
	}
	return g.pow
}

// powi defines the integer power helper. It computes x^y for y >= 0 by
// repeated squaring, wrapping on overflow like the VM:
//
//	ipow(x, 0) = 1
//	ipow(x, y) = (y odd ? x : 1) * ipow(x*x, y>>1)
func (g *gen) powi() *ir.Func {
	if g.ipow != nil {
		return g.ipow
	}
	x := ir.NewParam("x", types.I64)
	y := ir.NewParam("y", types.I64)
	f := g.m.NewFunc("stackcalc.ipow", types.I64, x, y)
	g.ipow = f

	zero := constant.NewInt(types.I64, 0)
	one := constant.NewInt(types.I64, 1)
	entry := f.NewBlock("entry")
	base := f.NewBlock("base")
	step := f.NewBlock("step")
	entry.NewCondBr(entry.NewICmp(enum.IPredEQ, y, zero), base, step)
	base.NewRet(one)
	odd := step.NewICmp(enum.IPredNE, step.NewAnd(y, one), zero)
	factor := step.NewSelect(odd, x, one)
	rest := step.NewCall(f, step.NewMul(x, x), step.NewLShr(y, one))
	step.NewRet(step.NewMul(factor, rest))
	return f
}
