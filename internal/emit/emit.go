// Package emit implements binary emission (C15): packing a label-resolved
// virtual-ASM stream (C14's output, registers already rewritten to physical
// ids by C13's Allocation) into the target VM's fixed-width machine words,
// plus the content-addressed data section those words reference. Grounded
// on the teacher's packed-32-bit instruction format in
// internal/vmregister.CreateABC/CreateABx/CreateAsBx (the iABC/iABx/iAsBx
// layouts this package reuses unchanged) and on
// internal/compregister.Compiler's final assemble step, generalized from
// the teacher's own ~100-member dynamic-language opcode catalog (table ops,
// string methods, class/instance/fiber machinery: spec's register VM has no
// analog for any of these, see DESIGN.md) to asm.Op's much smaller
// fixed-width-integer catalog. Op values are cast straight into
// vmregister.OpCode so the packing helpers need no wrapper of their own.
package emit

import (
	"fmt"

	"corec/internal/asm"
	"corec/internal/dataseg"
	"corec/internal/vmregister"
)

// Word is one packed 32-bit machine instruction, in the teacher's iABC /
// iABx / iAsBx layout.
type Word = vmregister.Instruction

// Program is the fully packed machine-word stream for one function.
type Program struct {
	Words []Word
}

// Emit packs r's label-resolved, register-allocated instruction stream into
// machine words. data is consulted to resolve OpDataOffset/OpConfigurables
// placeholders (spec §6): by the time C15 runs, every such placeholder's
// Label.ID names an already-interned dataseg entry via idsByLabel.
func Emit(instrs []asm.Instr, data *dataseg.Section, idsByLabel map[int]dataseg.ID) (*Program, error) {
	words := make([]Word, 0, len(instrs))
	for _, instr := range instrs {
		w, err := emitOne(instr, data, idsByLabel)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return &Program{Words: words}, nil
}

func emitOne(instr asm.Instr, data *dataseg.Section, idsByLabel map[int]dataseg.ID) (Word, error) {
	op := vmregister.OpCode(instr.Op)

	switch instr.Op {
	case asm.OpDataOffset, asm.OpConfigurables, asm.OpLoadLabel:
		id, ok := idsByLabel[instr.Label.ID]
		if !ok {
			return 0, fmt.Errorf("emit: no data-section entry for label %q (id %d)", instr.Label.Name, instr.Label.ID)
		}
		offset, ok := data.Offset(id)
		if !ok {
			return 0, fmt.Errorf("emit: dangling data-section id for label %q", instr.Label.Name)
		}
		return vmregister.CreateABx(op, uint8(instr.Dst), uint16(offset)), nil

	case asm.OpMoveImmediate, asm.OpJump, asm.OpJumpIfNotZero, asm.OpCallSymbol:
		if instr.Imm < -0x8000 || instr.Imm > 0x7fff {
			return 0, fmt.Errorf("emit: immediate %d overflows the 16-bit sBx field", instr.Imm)
		}
		return vmregister.CreateAsBx(op, uint8(instr.Dst), int16(instr.Imm)), nil

	case asm.OpLoad, asm.OpStore, asm.OpReturn, asm.OpNot, asm.OpMove, asm.OpCallReal, asm.OpLog:
		return vmregister.CreateABC(op, uint8(instr.Dst), uint8(instr.Lhs), 0), nil

	case asm.OpLoadDataId:
		// Imm is an index into labels.Resolved.Data, not a dataseg offset: C14's
		// finalizeLoadLabels already resolved the label, so this needs no
		// idsByLabel lookup, just the 16-bit slot id.
		if instr.Imm < 0 || instr.Imm > vmregister.MAXARG_Bx {
			return 0, fmt.Errorf("emit: data id %d overflows the 16-bit Bx field", instr.Imm)
		}
		return vmregister.CreateABx(op, uint8(instr.Dst), uint16(instr.Imm)), nil

	case asm.OpJumpForward, asm.OpJumpBackward:
		if instr.HasLhs {
			// Indirect trampoline form: target lives in the scratch register,
			// Imm is unused.
			return vmregister.CreateABC(op, uint8(instr.Dst), uint8(instr.Lhs), 0), nil
		}
		// Direct immediate form (the self-loop's backward branch).
		if instr.Imm < -0x8000 || instr.Imm > 0x7fff {
			return 0, fmt.Errorf("emit: immediate %d overflows the 16-bit sBx field", instr.Imm)
		}
		return vmregister.CreateAsBx(op, uint8(instr.Dst), int16(instr.Imm)), nil

	case asm.OpJumpAndLink:
		return vmregister.CreateABC(op, uint8(instr.Dst), uint8(instr.Lhs), 0), nil

	case asm.OpPushLow, asm.OpPushHigh, asm.OpPopHigh, asm.OpPopLow:
		// A 24..64-register mask doesn't fit an 8-bit B/C field; these use the
		// iAx extra-large-operand format instead.
		if instr.Imm < 0 || instr.Imm > vmregister.MAXARG_Ax {
			return 0, fmt.Errorf("emit: register mask %d overflows the 24-bit Ax field", instr.Imm)
		}
		return vmregister.CreateAx(op, uint32(instr.Imm)), nil

	case asm.OpNoOp:
		return vmregister.CreateABC(op, 0, 0, 0), nil

	case asm.OpComment, asm.OpLabel, asm.OpPushAll, asm.OpPopAll:
		return 0, fmt.Errorf("emit: %v reached the encoder unresolved (C14 should have expanded or stripped it)", instr.Op)

	default:
		// Every other real opcode (the arithmetic/comparison/wide group) is a
		// plain three-register form.
		return vmregister.CreateABC(op, uint8(instr.Dst), uint8(instr.Lhs), uint8(instr.Rhs)), nil
	}
}
