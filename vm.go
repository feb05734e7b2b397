package stackcalc

import (
	"math"
	"strconv"
)

// ValueKind is the type tag of a Value.
type ValueKind int8

const (
	KindInt ValueKind = iota
	KindFloat
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a runtime value, either a signed 64-bit integer or a 64-bit
// float. The zero Value is Int(0).
type Value struct {
	kind ValueKind
	i    int64
	f    float64
}

// Int creates an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Float creates a floating-point value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Kind returns the type of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsFloat reports whether v is a floating-point value.
func (v Value) IsFloat() bool {
	return v.kind == KindFloat
}

// Int64 returns the value of an integer, or a float truncated toward zero.
func (v Value) Int64() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

// Float64 returns the value as a float, promoting an integer.
func (v Value) Float64() float64 {
	if v.kind == KindFloat {
		return v.f
	}
	return float64(v.i)
}

// String formats the value the way the calculator prints results: integers
// in decimal, floats in the shortest decimal form that round-trips, with no
// exponent. Infinities are "inf" and "-inf".
func (v Value) String() string {
	if v.kind != KindFloat {
		return strconv.FormatInt(v.i, 10)
	}
	switch {
	case math.IsInf(v.f, 1):
		return "inf"
	case math.IsInf(v.f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v.f, 'f', -1, 64)
}

// GoString distinguishes Int(3) from Float(3), which print the same.
func (v Value) GoString() string {
	return v.kind.String() + "(" + v.String() + ")"
}

// VMOption is an option used when creating a VM.
type VMOption interface {
	vmOption()
}

type promoteopt struct{}

func (promoteopt) vmOption() {}

// PromoteNegativeExponents makes integer exponentiation with a negative
// exponent compute in floating point and produce a Float, instead of failing
// with NegativeIntegerExponent.
func PromoteNegativeExponents() VMOption {
	return promoteopt{}
}

// VM executes programs on an operand stack. It is not safe to use a VM
// concurrently, but a VM may run any number of programs in sequence.
type VM struct {
	stack   []Value
	history []Value
	promote bool
}

// NewVM creates a VM.
func NewVM(opts ...VMOption) *VM {
	vm := VM{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.(type) {
		case promoteopt:
			vm.promote = true
		default:
			panic("stackcalc: unknown option type")
		}
	}
	return &vm
}

// Run executes a program and returns every value it produced, in order:
// each pushed literal and each operator result. The caller normally wants the
// last one; Exec returns just that. Each call starts from an empty stack. On
// error, the history up to the failing instruction is returned along with it.
func (vm *VM) Run(prog Program) ([]Value, error) {
	vm.stack = vm.stack[:0]
	vm.history = vm.history[:0]
	for pc, in := range prog {
		if err := vm.step(in); err != nil {
			err.PC = pc
			return vm.trace(), err
		}
	}
	return vm.trace(), nil
}

// Exec executes a program and returns its result, the last value it
// produced. A program that leaves anything but exactly one value on the stack
// is an error.
func (vm *VM) Exec(prog Program) (Value, error) {
	hist, err := vm.Run(prog)
	if err != nil {
		return Value{}, err
	}
	switch len(vm.stack) {
	case 0:
		return Value{}, &RuntimeError{Kind: StackUnderflow, PC: len(prog)}
	case 1:
		return hist[len(hist)-1], nil
	default:
		return Value{}, &RuntimeError{Kind: UnbalancedStack, PC: len(prog), Depth: len(vm.stack)}
	}
}

// trace copies the history so that later runs don't overwrite results held
// by callers.
func (vm *VM) trace() []Value {
	return append([]Value(nil), vm.history...)
}

// push puts a value on the stack and records it.
func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
	vm.history = append(vm.history, v)
}

// pop removes the top from the stack and returns it. The caller checks depth.
func (vm *VM) pop() Value {
	r := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return r
}

func (vm *VM) step(in Instruction) *RuntimeError {
	switch in.Op {
	case OpPushInt:
		vm.push(Int(in.Int))
	case OpPushFloat:
		vm.push(Float(in.Float))
	case OpBinary:
		if len(vm.stack) < 2 {
			return &RuntimeError{Kind: StackUnderflow, Instr: in, Depth: len(vm.stack)}
		}
		b := vm.pop()
		a := vm.pop()
		r, kind := vm.binary(BinaryOp(in.Code), a, b)
		if kind != noError {
			return &RuntimeError{Kind: kind, Instr: in, Depth: len(vm.stack)}
		}
		vm.push(r)
	case OpUnary:
		if len(vm.stack) < 1 {
			return &RuntimeError{Kind: StackUnderflow, Instr: in}
		}
		a := vm.pop()
		r, kind := unary(UnaryOp(in.Code), a)
		if kind != noError {
			return &RuntimeError{Kind: kind, Instr: in, Depth: len(vm.stack)}
		}
		vm.push(r)
	default:
		return &RuntimeError{Kind: InvalidOpcode, Instr: in, Depth: len(vm.stack)}
	}
	return nil
}

// binary applies op to a and b. If either is a float, both are promoted and
// the result is a float.
func (vm *VM) binary(op BinaryOp, a, b Value) (Value, RuntimeErrorKind) {
	if op > OpPow {
		return Value{}, InvalidOpcode
	}
	if a.IsFloat() || b.IsFloat() {
		return Float(floatop(op, a.Float64(), b.Float64())), noError
	}
	x, y := a.i, b.i
	switch op {
	case OpAdd:
		return Int(x + y), noError
	case OpSub:
		return Int(x - y), noError
	case OpMul:
		return Int(x * y), noError
	case OpDiv:
		if y == 0 {
			return Value{}, DivisionByZero
		}
		return Int(x / y), noError
	default:
		if y < 0 {
			if vm.promote {
				return Float(math.Pow(float64(x), float64(y))), noError
			}
			return Value{}, NegativeIntegerExponent
		}
		return Int(ipow(x, y)), noError
	}
}

func floatop(op BinaryOp, x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	default:
		return math.Pow(x, y)
	}
}

// ipow raises x to a non-negative power by repeated squaring. Overflow wraps
// like every other integer operation.
func ipow(x, y int64) int64 {
	r := int64(1)
	for y > 0 {
		if y&1 != 0 {
			r *= x
		}
		x *= x
		y >>= 1
	}
	return r
}

func unary(op UnaryOp, a Value) (Value, RuntimeErrorKind) {
	switch op {
	case OpIdentity:
		return a, noError
	case OpNegate:
		if a.IsFloat() {
			return Float(-a.f), noError
		}
		return Int(-a.i), noError
	default:
		return Value{}, InvalidOpcode
	}
}

// RuntimeErrorKind classifies a RuntimeError.
type RuntimeErrorKind int8

const (
	noError RuntimeErrorKind = iota - 1

	// DivisionByZero is integer division by zero. Float division by zero
	// follows IEEE 754 instead.
	DivisionByZero
	// NegativeIntegerExponent is integer exponentiation with a negative
	// exponent on a VM without PromoteNegativeExponents.
	NegativeIntegerExponent
	// StackUnderflow is an operator without enough operands, or a program
	// that produced no result.
	StackUnderflow
	// InvalidOpcode is an unknown opcode or operator code.
	InvalidOpcode
	// UnbalancedStack is a program that left more than one value.
	UnbalancedStack
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case DivisionByZero:
		return "DivisionByZero"
	case NegativeIntegerExponent:
		return "NegativeIntegerExponent"
	case StackUnderflow:
		return "StackUnderflow"
	case InvalidOpcode:
		return "InvalidOpcode"
	case UnbalancedStack:
		return "UnbalancedStack"
	default:
		return "RuntimeErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// RuntimeError is an error executing a program.
type RuntimeError struct {
	// Kind is the reason execution failed.
	Kind RuntimeErrorKind
	// PC is the index of the failing instruction, or the program length for
	// errors detected after the last instruction.
	PC int
	// Instr is the failing instruction. It is the zero Instruction for
	// errors detected after the last instruction.
	Instr Instruction
	// Depth is the stack depth when the error was detected.
	Depth int
}

func (err *RuntimeError) Error() string {
	switch err.Kind {
	case DivisionByZero:
		return "division by zero"
	case NegativeIntegerExponent:
		return "negative exponent for integer power"
	case StackUnderflow:
		if err.Instr == (Instruction{}) {
			return "stack underflow: program produced no value"
		}
		return "stack underflow at " + strconv.Itoa(err.PC) + ": " + err.Instr.String()
	case InvalidOpcode:
		return "invalid instruction at " + strconv.Itoa(err.PC) + ": " + err.Instr.String()
	case UnbalancedStack:
		return "unbalanced stack: " + strconv.Itoa(err.Depth) + " values left"
	default:
		return "runtime error at " + strconv.Itoa(err.PC)
	}
}

func (err *RuntimeError) Unwrap() error {
	return ErrRuntime
}
