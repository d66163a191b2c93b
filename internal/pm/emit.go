package pm

import (
	"fmt"
	"strings"
)

// EmitBuffer is the code generator's instruction sink, modeled as an
// explicit value with operations rather than a bare slice. It tracks a
// write cursor separate from highestEmitted so emit_skip/emit_backup/
// emit_restore can leave and later fill backpatch holes, while
// highestEmitted — the invariant this type exists to enforce — never
// decreases.
type EmitBuffer struct {
	instrs         []Instruction
	cursor         int
	highestEmitted int
}

// NewEmitBuffer creates an empty buffer positioned at location 0.
func NewEmitBuffer() *EmitBuffer {
	return &EmitBuffer{}
}

// Here returns the current write cursor (the next location emit_ro/
// emit_rm/emit_rm_abs will use).
func (b *EmitBuffer) Here() int { return b.cursor }

// HighestEmitted returns the maximum location ever reached.
func (b *EmitBuffer) HighestEmitted() int { return b.highestEmitted }

func (b *EmitBuffer) ensure(n int) {
	for len(b.instrs) < n {
		b.instrs = append(b.instrs, Instruction{})
	}
}

func (b *EmitBuffer) write(loc int, instr Instruction) int {
	b.ensure(loc + 1)
	instr.Loc = loc
	b.instrs[loc] = instr
	if loc+1 > b.highestEmitted {
		b.highestEmitted = loc + 1
	}
	return loc
}

// EmitRO emits a register-only instruction at the cursor and advances it.
func (b *EmitBuffer) EmitRO(op Opcode, a1, a2, a3 int, comment string) int {
	loc := b.cursor
	b.write(loc, Instruction{Op: op, Form: FormRR, A1: a1, A2: float64(a2), A3: a3, Comment: comment})
	b.cursor++
	return loc
}

// EmitRM emits a reg-to-memory instruction `r, d(s)` at the cursor.
func (b *EmitBuffer) EmitRM(op Opcode, r, d, s int, comment string) int {
	loc := b.cursor
	b.write(loc, Instruction{Op: op, Form: FormRM, A1: r, A2: float64(d), A3: s, Comment: comment})
	b.cursor++
	return loc
}

// EmitRA emits a reg-absolute/constant instruction `r, d(s)` with a literal
// displacement or constant value already known relative to s.
func (b *EmitBuffer) EmitRA(op Opcode, r int, d float64, s int, comment string) int {
	loc := b.cursor
	b.write(loc, Instruction{Op: op, Form: FormRA, A1: r, A2: d, A3: s, Comment: comment})
	b.cursor++
	return loc
}

// EmitRMAbs converts an absolute code address to a PC-relative displacement
// and emits it: `r, (abs-(here+1))(pc)`.
func (b *EmitBuffer) EmitRMAbs(op Opcode, r, abs int, comment string) int {
	here := b.cursor
	disp := abs - (here + 1)
	return b.EmitRA(op, r, float64(disp), RegPC, comment)
}

// Skip reserves n instruction slots for later backpatching and returns the
// cursor position before the reservation.
func (b *EmitBuffer) Skip(n int) int {
	loc := b.cursor
	b.cursor += n
	b.ensure(b.cursor)
	if b.cursor > b.highestEmitted {
		b.highestEmitted = b.cursor
	}
	return loc
}

// Backup moves the write cursor back to loc so a hole can be filled. loc
// must not exceed highestEmitted; violating this is a codegen bug, reported
// as BUG_IN_EMIT.
func (b *EmitBuffer) Backup(loc int) error {
	if loc > b.highestEmitted {
		return fmt.Errorf("%w: backup to %d exceeds highestEmitted %d", ErrBugInEmit, loc, b.highestEmitted)
	}
	b.cursor = loc
	return nil
}

// Restore returns the write cursor to highestEmitted, resuming normal
// forward emission after a backpatch.
func (b *EmitBuffer) Restore() {
	b.cursor = b.highestEmitted
}

// Instructions returns the emitted instructions in location order, up to
// highestEmitted.
func (b *EmitBuffer) Instructions() []Instruction {
	return append([]Instruction(nil), b.instrs[:b.highestEmitted]...)
}

// Listing renders the buffer in the authoritative textual format, one
// instruction per line.
func (b *EmitBuffer) Listing() string {
	var sb strings.Builder
	for _, instr := range b.Instructions() {
		sb.WriteString(instr.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
