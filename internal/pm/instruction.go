// Package pm implements the "PM" register virtual machine: 8 registers,
// separate 1024-cell instruction and data memories, and the code
// generator that targets it.
package pm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Opcode identifies a PM instruction.
type Opcode int

const (
	HALT Opcode = iota
	IN
	OUT
	OUTLN
	ADD
	SUB
	MUL
	DIV
	DIVR
	LD
	ST
	LDA
	LDC
	JLT
	JLE
	JGT
	JGE
	JEQ
	JNE
)

var opcodeNames = map[Opcode]string{
	HALT: "HALT", IN: "IN", OUT: "OUT", OUTLN: "OUTLN",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", DIVR: "DIVR",
	LD: "LD", ST: "ST", LDA: "LDA", LDC: "LDC",
	JLT: "JLT", JLE: "JLE", JGT: "JGT", JGE: "JGE", JEQ: "JEQ", JNE: "JNE",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", int(op))
}

func opcodeFromName(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// Form distinguishes the three textual/operand shapes an instruction can
// take.
type Form int

const (
	FormRR Form = iota // register-only: a1,a2,a3 are register indices
	FormRM             // reg-to-memory: r, d(s)
	FormRA             // reg-absolute/constant: r, d(s)
)

var opcodeForms = map[Opcode]Form{
	HALT: FormRR, IN: FormRR, OUT: FormRR, OUTLN: FormRR,
	ADD: FormRR, SUB: FormRR, MUL: FormRR, DIV: FormRR, DIVR: FormRR,
	LD: FormRM, ST: FormRM,
	LDA: FormRA, LDC: FormRA,
	JLT: FormRA, JLE: FormRA, JGT: FormRA, JGE: FormRA, JEQ: FormRA, JNE: FormRA,
}

// Register aliases per the machine ABI.
const (
	RegAC  = 0
	RegAC1 = 1
	RegGP  = 5
	RegMP  = 6
	RegPC  = 7
)

// Instruction is one PM instruction: {op, a1, a2, a3}. a2 is widened to
// float64 since it only ever holds a register index, a displacement, or a
// numeric constant, all of which round-trip exactly through float64 at PM
// scale.
type Instruction struct {
	Loc     int
	Op      Opcode
	Form    Form
	A1      int
	A2      float64
	A3      int
	Comment string
}

// String renders the instruction in the authoritative listing format.
func (i Instruction) String() string {
	line := fmt.Sprintf("%d:  %s  %s", i.Loc, i.Op, i.operands())
	if i.Comment != "" {
		line += "\t" + i.Comment
	}
	return line
}

func (i Instruction) operands() string {
	if i.Form == FormRR {
		return fmt.Sprintf("%d,%d,%d", i.A1, int(i.A2), i.A3)
	}
	return fmt.Sprintf("%d,%s(%d)", i.A1, formatOperand(i.A2), i.A3)
}

func formatOperand(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseListing parses a textual instruction listing back into instructions,
// skipping blank lines and "*"-prefixed comment lines.
// Any listing produced by this package's own String()/Listing() round-trips
// through ParseListing to an identical instruction sequence.
func ParseListing(text string) ([]Instruction, error) {
	var out []Instruction
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") {
			continue
		}
		instr, err := parseInstructionLine(line)
		if err != nil {
			return nil, fmt.Errorf("listing line %d: %w", n+1, err)
		}
		out = append(out, instr)
	}
	return out, nil
}

func parseInstructionLine(line string) (Instruction, error) {
	body, comment := line, ""
	if idx := strings.Index(line, "\t"); idx >= 0 {
		body, comment = line[:idx], strings.TrimSpace(line[idx+1:])
	}

	colon := strings.Index(body, ":")
	if colon < 0 {
		return Instruction{}, fmt.Errorf("missing ':' in %q", line)
	}
	loc, err := strconv.Atoi(strings.TrimSpace(body[:colon]))
	if err != nil {
		return Instruction{}, fmt.Errorf("bad location in %q: %w", line, err)
	}
	if loc < 0 || loc > 1024 {
		return Instruction{}, fmt.Errorf("location %d out of range", loc)
	}

	fields := strings.Fields(strings.TrimSpace(body[colon+1:]))
	if len(fields) < 2 {
		return Instruction{}, fmt.Errorf("malformed instruction %q", body)
	}
	op, ok := opcodeFromName(fields[0])
	if !ok {
		return Instruction{}, fmt.Errorf("unrecognized opcode %q", fields[0])
	}
	operandStr := strings.Join(fields[1:], "")
	form := opcodeForms[op]
	instr := Instruction{Loc: loc, Op: op, Form: form, Comment: comment}

	if form == FormRR {
		parts := strings.Split(operandStr, ",")
		if len(parts) != 3 {
			return Instruction{}, fmt.Errorf("%s expects a1,a2,a3, got %q", fields[0], operandStr)
		}
		a1, e1 := strconv.Atoi(parts[0])
		a2, e2 := strconv.Atoi(parts[1])
		a3, e3 := strconv.Atoi(parts[2])
		if e1 != nil || e2 != nil || e3 != nil {
			return Instruction{}, fmt.Errorf("%s: RR-form args must be integers, got %q", fields[0], operandStr)
		}
		instr.A1, instr.A2, instr.A3 = a1, float64(a2), a3
		return instr, nil
	}

	open, close := strings.Index(operandStr, "("), strings.Index(operandStr, ")")
	if open < 0 || close < open {
		return Instruction{}, fmt.Errorf("%s expects r,d(s), got %q", fields[0], operandStr)
	}
	head := strings.Split(operandStr[:open], ",")
	if len(head) != 2 {
		return Instruction{}, fmt.Errorf("%s expects r,d(s), got %q", fields[0], operandStr)
	}
	r, err := strconv.Atoi(head[0])
	if err != nil {
		return Instruction{}, fmt.Errorf("%s: r must be an integer, got %q", fields[0], head[0])
	}
	d, err := parseOperandLiteral(head[1])
	if err != nil {
		return Instruction{}, fmt.Errorf("%s: %w", fields[0], err)
	}
	s, err := strconv.Atoi(operandStr[open+1 : close])
	if err != nil {
		return Instruction{}, fmt.Errorf("%s: s must be an integer, got %q", fields[0], operandStr[open+1:close])
	}
	instr.A1, instr.A2, instr.A3 = r, d, s
	return instr, nil
}

func parseOperandLiteral(s string) (float64, error) {
	switch s {
	case "True":
		return 1, nil
	case "False":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric literal %q", s)
	}
	return v, nil
}
