// Package asm implements virtual-ASM lowering (C12): translating IR basic
// blocks into a flat instruction stream over virtual registers, still
// carrying organizational pseudo-ops (labels, calls by symbol, data-section
// placeholders) that C14 resolves to concrete offsets before C15 emits
// machine words. Grounded on the teacher's vmregister.OpCode table
// (internal/vmregister/bytecode.go): the same arithmetic/comparison/memory
// opcode groups, generalized from a dynamically-typed register VM's opcodes
// to the target's real fixed-width-integer VM opcodes plus the
// organizational ops a single-pass assembler needs.
package asm

import (
	"errors"

	"corec/internal/ir"
)

// ErrInternal marks a failure that indicates a compiler bug rather than a
// malformed program: spec §7 requires these be distinguishable from ordinary
// diagnostics so a caller can tell "your program has an error" apart from
// "the compiler itself broke" (a fixpoint that never converges in C14, for
// instance). Wrap it with fmt.Errorf's %w rather than returning it bare, so
// the message still carries the specific failure.
var ErrInternal = errors.New("internal compiler error")

// Op is one virtual-ASM operation: either a real VM opcode operating on
// virtual registers, or an organizational pseudo-op consumed entirely by
// C13/C14 and never emitted as a machine word.
type Op uint8

const (
	// Real VM opcodes, operating on virtual registers (spec §9: one real
	// opcode per IR BinOp/Op).
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpGt
	OpLt
	OpNot
	OpMove
	OpMoveImmediate
	OpLoad
	OpStore
	OpCallReal
	OpReturn
	OpLog
	OpWideAdd
	OpWideSub
	OpWideMul
	OpWideMod
	OpWideCmp
	OpNoOp // inserted ahead of a self-loop header, or folded away by C11

	// Trampoline opcodes emitted by C14's rewrite pass (spec §4.6 step 3)
	// when a jump/call no longer fits its immediate width. JMPF/JMPB take
	// either a direct immediate magnitude (HasLhs false, near backward
	// branch: self-loop) or jump indirectly through a scratch register
	// loaded by a prior LoadLabel (HasLhs true, Imm fixed at 0).
	OpJumpForward  // JMPF
	OpJumpBackward // JMPB
	OpJumpAndLink  // JAL(Dst=return-addr, Lhs=target, 0): call through a register
	OpLoadDataId   // Dst = data section word at index Imm, once LoadLabel is finalized

	// PUSHA/POPA expansion (spec §4.6 step 4): split register masks.
	OpPushLow  // PSHL(Imm=low mask, regs 16..39)
	OpPushHigh // PSHH(Imm=high mask, regs 40..63)
	OpPopHigh  // POPH
	OpPopLow   // POPL

	// Organizational ops. C14 strips OpLabel and replaces OpPushAll/OpPopAll
	// and OpLoadLabel; an OpJump, OpJumpIfNotZero or OpCallSymbol that fits
	// its immediate leaves C14 with the resolved offset in Imm and is packed
	// by C15's encoder, which also resolves OpDataOffset/OpConfigurables.
	OpLabel
	OpJump
	OpJumpIfNotZero
	OpCallSymbol
	OpLoadLabel
	OpPushAll
	OpPopAll
	OpComment
	OpDataOffset     // placeholder for a not-yet-known data-section offset
	OpConfigurables  // placeholder for the not-yet-known configurables-section offset
)

// LoadLabelKind records which trampoline a LoadLabel belongs to (spec §4.6
// step 3): a far jump's relative displacement, or the target a call's JAL
// goes through. C14's finalizeLoadLabels stores the same literal for both
// kinds: the label's offset from the LoadLabel, minus one.
type LoadLabelKind uint8

const (
	LoadLabelRelative LoadLabelKind = iota
	LoadLabelJAL
)

// Label names a resolution target: either an instruction position (a jump
// target) or a named symbol (a function entry, a data-section slot).
type Label struct {
	Name string
	ID   int
}

// Instr is one virtual-ASM instruction.
type Instr struct {
	Op   Op
	Dst  ir.Reg
	Lhs  ir.Reg
	Rhs  ir.Reg
	HasLhs, HasRhs bool
	Imm  int64
	HasImm bool

	Label  Label // OpLabel (defines), OpJump/OpJumpIfNotZero/OpCallSymbol/OpLoadLabel (references)
	Regs   []ir.Reg // OpPushAll/OpPopAll
	Text   string   // OpComment

	Kind LoadLabelKind // OpLoadLabel
}

// Program is one function's virtual-ASM stream, labels not yet resolved.
type Program struct {
	Instrs []Instr
	// Data is not filled by Lower or by C14: labels.Resolve returns the
	// literals it finalizes in Resolved.Data, which OpLoadDataId's Imm
	// indexes.
	Data []int64
	// nextLabelID backs newLabel. Lower does not call newLabel: it labels
	// each block with the block's index.
	nextLabelID int
}

func (p *Program) newLabel(name string) Label {
	p.nextLabelID++
	return Label{Name: name, ID: p.nextLabelID}
}
