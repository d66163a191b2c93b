package pm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

const memSize = 1024

var (
	// ErrDivisionByZero is raised by DIV when reg[t] == 0.
	ErrDivisionByZero = errors.New("DIVISION_BY_ZERO")
	// ErrIMemOOR is raised when the program counter leaves [0,1024).
	ErrIMemOOR = errors.New("IMEM_OOR")
	// ErrDMemOOR is raised when an RM-form address leaves [0,1024).
	ErrDMemOOR = errors.New("DMEM_OOR")
)

// StepResult distinguishes a live execution step from termination.
type StepResult int

const (
	StepOkay StepResult = iota
	StepHalt
)

// VM is the PM register machine: 8 registers, and separate instruction and
// data memories of 1024 cells each.
type VM struct {
	Reg [8]ast.Value

	iMem map[int]Instruction
	dMem map[int]ast.Value

	symtab *semantic.SymbolTable
	out    io.Writer
	in     *bufio.Reader

	instructionCount int
}

// NewVM creates a VM reading IN input from in and writing OUT/OUTLN output
// to out. symtab drives ST's type-aware coercion.
func NewVM(symtab *semantic.SymbolTable, in io.Reader, out io.Writer) *VM {
	vm := &VM{symtab: symtab, out: out, in: bufio.NewReader(in)}
	vm.Reset()
	return vm
}

// Reset zeroes every register, clears data memory, and reinitializes
// dMem[0] to 1023 — the REPL's `c` command.
func (vm *VM) Reset() {
	for i := range vm.Reg {
		vm.Reg[i] = ast.IntVal(0)
	}
	vm.dMem = make(map[int]ast.Value, memSize)
	vm.dMem[0] = ast.IntVal(1023)
	vm.instructionCount = 0
}

// Load installs a compiled program into instruction memory.
func (vm *VM) Load(instrs []Instruction) {
	vm.iMem = make(map[int]Instruction, len(instrs))
	for _, instr := range instrs {
		vm.iMem[instr.Loc] = instr
	}
}

// InstructionCount reports how many instructions have executed since the
// last Reset.
func (vm *VM) InstructionCount() int { return vm.instructionCount }

// DataAt returns the value stored at data memory cell m.
func (vm *VM) DataAt(m int) ast.Value { return vm.dMem[m] }

// Step fetches the instruction at reg[PC], increments PC, and executes it.
func (vm *VM) Step() (StepResult, error) {
	pc := int(vm.Reg[RegPC].Int)
	if pc < 0 || pc >= memSize {
		return StepHalt, fmt.Errorf("%w: pc=%d", ErrIMemOOR, pc)
	}
	instr, ok := vm.iMem[pc]
	if !ok {
		return StepHalt, fmt.Errorf("%w: no instruction at %d", ErrIMemOOR, pc)
	}
	vm.Reg[RegPC] = ast.IntVal(int64(pc + 1))
	vm.instructionCount++
	return vm.exec(instr)
}

// Run steps until HALT or a fatal error, returning the instruction count.
func (vm *VM) Run() (int, error) {
	for {
		res, err := vm.Step()
		if err != nil {
			return vm.instructionCount, err
		}
		if res == StepHalt {
			return vm.instructionCount, nil
		}
	}
}

func (vm *VM) exec(instr Instruction) (StepResult, error) {
	switch instr.Op {
	case HALT:
		return StepHalt, nil

	case IN:
		line, _ := vm.in.ReadString('\n')
		vm.Reg[instr.A1] = parseInputValue(line)

	case OUT:
		fmt.Fprint(vm.out, vm.Reg[instr.A1].String())

	case OUTLN:
		fmt.Fprintln(vm.out, vm.Reg[instr.A1].String())

	case ADD, SUB, MUL, DIV, DIVR:
		val, err := arith(instr.Op, vm.Reg[int(instr.A2)], vm.Reg[instr.A3])
		if err != nil {
			return StepHalt, err
		}
		vm.Reg[instr.A1] = val

	case LD:
		m := int(instr.A2) + int(vm.Reg[instr.A3].Int)
		if m < 0 || m >= memSize {
			return StepHalt, fmt.Errorf("%w: m=%d", ErrDMemOOR, m)
		}
		vm.Reg[instr.A1] = vm.dMem[m]

	case ST:
		m := int(instr.A2) + int(vm.Reg[instr.A3].Int)
		if m < 0 || m >= memSize {
			return StepHalt, fmt.Errorf("%w: m=%d", ErrDMemOOR, m)
		}
		vm.dMem[m] = vm.coerceForStore(m, vm.Reg[instr.A1])

	case LDA:
		m := int(instr.A2) + int(vm.Reg[instr.A3].Int)
		vm.Reg[instr.A1] = ast.IntVal(int64(m))

	case LDC:
		if instr.A2 == float64(int64(instr.A2)) {
			vm.Reg[instr.A1] = ast.IntVal(int64(instr.A2))
		} else {
			vm.Reg[instr.A1] = ast.RealVal(instr.A2)
		}

	case JLT, JLE, JGT, JGE, JEQ, JNE:
		if evalCC(instr.Op, vm.Reg[instr.A1]) {
			m := int(instr.A2) + int(vm.Reg[instr.A3].Int)
			vm.Reg[RegPC] = ast.IntVal(int64(m))
		}
	}
	return StepOkay, nil
}

func arith(op Opcode, l, r ast.Value) (ast.Value, error) {
	isReal := l.Kind == ast.RealValue || r.Kind == ast.RealValue
	switch op {
	case ADD:
		if isReal {
			return ast.RealVal(l.AsFloat() + r.AsFloat()), nil
		}
		return ast.IntVal(l.Int + r.Int), nil
	case SUB:
		if isReal {
			return ast.RealVal(l.AsFloat() - r.AsFloat()), nil
		}
		return ast.IntVal(l.Int - r.Int), nil
	case MUL:
		if isReal {
			return ast.RealVal(l.AsFloat() * r.AsFloat()), nil
		}
		return ast.IntVal(l.Int * r.Int), nil
	case DIVR:
		// Forced real division: codegen emits this instead of DIV whenever
		// the assignment target is real, so a whole-number quotient like
		// 7/2 comes out as 3.5 instead of truncating to 3 first.
		if r.AsFloat() == 0 {
			return ast.Value{}, ErrDivisionByZero
		}
		return ast.RealVal(l.AsFloat() / r.AsFloat()), nil
	default: // DIV
		if r.AsFloat() == 0 {
			return ast.Value{}, ErrDivisionByZero
		}
		if isReal {
			return ast.RealVal(l.AsFloat() / r.AsFloat()), nil
		}
		return ast.IntVal(l.Int / r.Int), nil
	}
}

func evalCC(op Opcode, v ast.Value) bool {
	n := v.AsFloat()
	switch op {
	case JLT:
		return n < 0
	case JLE:
		return n <= 0
	case JGT:
		return n > 0
	case JGE:
		return n >= 0
	case JEQ:
		return n == 0
	default: // JNE
		return n != 0
	}
}

// coerceForStore coerces v to the declared type of the symbol occupying
// mem_location m, updating that symbol's live value too: ST writes both
// dMem[m] and the symbol table entry atomically.
func (vm *VM) coerceForStore(m int, v ast.Value) ast.Value {
	info := vm.symtab.ByMemLocation(m)
	if info == nil {
		return v
	}
	var coerced ast.Value
	switch info.Type {
	case "real":
		coerced = ast.RealVal(v.AsFloat())
	case "boolean":
		coerced = ast.BoolVal(v.AsFloat() != 0)
	default:
		coerced = ast.IntVal(int64(v.AsFloat()))
	}
	info.Value = coerced
	return coerced
}

func parseInputValue(line string) ast.Value {
	s := strings.TrimSpace(line)
	switch s {
	case "True":
		return ast.BoolVal(true)
	case "False":
		return ast.BoolVal(false)
	}
	if iv, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ast.IntVal(iv)
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return ast.RealVal(fv)
	}
	return ast.IntVal(0)
}
