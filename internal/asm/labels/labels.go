// Package labels implements label resolution and jump rewriting (C14): the
// last IR-adjacent pass before binary emission, turning the symbolic labels
// left by C12/C13 into concrete instruction offsets, detecting when a jump
// or call's offset overflows its immediate field width, expanding such
// overflows into trampoline sequences (scratch-register indirect jumps,
// tiered call sequences), and expanding the PUSHA/POPA organizational ops
// into concrete register-mask save/restore sequences. Grounded on the
// teacher's patchJump/patchJumpAt two-pass backpatching in
// internal/compregister.Compiler, generalized from "single linear pass,
// offsets always fit" to an iterative fixpoint, since widening an
// out-of-range jump into a multi-instruction trampoline can itself push a
// later jump out of range.
package labels

import (
	"fmt"

	"corec/internal/asm"
	"corec/internal/ir"
)

// Immediate field widths the target VM's jump/call encodings expose (spec
// §4.6 step 2): an unconditional jump/call fits 18 bits; a conditional jump
// fits 12 bits; a call's forward-only encoding is also 12 bits before it
// needs widening.
const (
	NearBits = 12
	FarBits  = 18
)

// maxFixpointIterations caps Resolve's loop (spec §4.6 step 4's "cap the
// iteration count ... and error on overflow"). A var rather than a const so
// tests can shrink it to exercise the ErrInternal path deterministically,
// without needing a genuinely pathological program.
var maxFixpointIterations = 64

// scratchReg/linkReg/pcReg are reserved physical registers the trampoline
// sequences use, mirrored locally (like regalloc_excludedFP/LB below)
// rather than imported from regalloc to avoid a dependency cycle.
const (
	scratchReg uint8 = 58
	linkReg    uint8 = 59
	pcReg      uint8 = 60
)

func maxSigned(bits int) int64 { return 1<<(uint(bits)-1) - 1 }
func minSigned(bits int) int64 { return -(1 << (uint(bits) - 1)) }

// Resolved is the label-free instruction stream handed to C15, with every
// jump/call now carrying a concrete relative offset, a register-indirect
// trampoline, or a data-section reference.
type Resolved struct {
	Instrs []asm.Instr // labels stripped; jump/call Imm now holds the final offset
	Data   []int64     // literals LoadLabel finalized into, addressed by OpLoadDataId.Imm
}

// Resolve computes offsets for every label in p, rewriting jumps/calls whose
// offset doesn't fit their encoding into a trampoline (self-loop detection,
// forward/backward far jump, tiered call sequences), iterating until a
// fixpoint (no further rewrite grows any instruction) or until
// maxFixpointIterations is exceeded, at which point the compilation fails
// with Internal per spec §7.
func Resolve(p *asm.Program) (*Resolved, error) {
	instrs := append([]asm.Instr(nil), p.Instrs...)

	for iter := 0; iter < maxFixpointIterations; iter++ {
		offsets, posOf := computeOffsets(instrs)
		rewritten, changed := rewritePass(instrs, offsets, posOf)
		instrs = rewritten
		if !changed {
			instrs, data := finalizeLoadLabels(instrs)
			instrs = expandPushPop(stripLabelDefs(instrs))
			return &Resolved{Instrs: instrs, Data: data}, nil
		}
	}
	return nil, fmt.Errorf("%w: failed to resolve ASM labels: exceeded %d fixpoint iterations", asm.ErrInternal, maxFixpointIterations)
}

// computeOffsets scans instrs (which still carries OpLabel defs) and
// returns two maps: label id -> the position (in the label-free stream) its
// OpLabel def occupies, and instruction index -> its own label-free
// position, so rewritePass can compute a relative offset between any two
// instructions in the current (pre-strip) slice.
func computeOffsets(instrs []asm.Instr) (labelPos map[int]int, posOf []int) {
	labelPos = make(map[int]int)
	posOf = make([]int, len(instrs))
	pos := 0
	for i, instr := range instrs {
		posOf[i] = pos
		if instr.Op == asm.OpLabel {
			labelPos[instr.Label.ID] = pos
			continue
		}
		pos++
	}
	return labelPos, posOf
}

func stripLabelDefs(instrs []asm.Instr) []asm.Instr {
	var out []asm.Instr
	for _, instr := range instrs {
		if instr.Op == asm.OpLabel {
			continue
		}
		out = append(out, instr)
	}
	return out
}

// rewritePass rewrites every jump/call whose relative offset overflows its
// immediate field, returning whether anything changed (the fixpoint
// condition). Label defs pass through untouched so the next iteration can
// still resolve against them. Already-rewritten trampoline ops (OpLoadLabel,
// OpJumpForward/Backward, OpJumpAndLink, OpSub, OpMoveImmediate) fall
// through the default case and are never re-rewritten, which is what makes
// the fixpoint converge: a widened op stops being a rewrite candidate. An
// overflowing JumpIfNotZero is not rewritten: it only reports a change, so
// Resolve keeps iterating until it returns ErrInternal.
func rewritePass(instrs []asm.Instr, labelPos map[int]int, posOf []int) ([]asm.Instr, bool) {
	var out []asm.Instr
	changed := false
	for i, instr := range instrs {
		switch instr.Op {
		case asm.OpJump:
			target, ok := labelPos[instr.Label.ID]
			if !ok {
				out = append(out, instr)
				continue
			}
			rel := int64(target - posOf[i])
			if rel == 0 {
				// Self-loop trampoline (spec §4.6 step 3, §8 scenario 1):
				// prepend a NoOp before the loop header and branch back to
				// it, rather than leaving a zero-width offset that would
				// hang the fixpoint forever.
				out = append(out, asm.Instr{Op: asm.OpNoOp})
				out = append(out, asm.Instr{Op: asm.OpJumpBackward, Imm: 1, HasImm: true})
				changed = true
				continue
			}
			if rel > maxSigned(FarBits) || rel < minSigned(FarBits) {
				changed = true
				kind := asm.OpJumpForward
				if rel < 0 {
					kind = asm.OpJumpBackward
				}
				out = append(out, asm.Instr{Op: asm.OpLoadLabel, Dst: ir.Reg(scratchReg), Label: instr.Label, Kind: asm.LoadLabelRelative})
				out = append(out, asm.Instr{Op: kind, Lhs: ir.Reg(scratchReg), HasLhs: true, Imm: 0, HasImm: true})
				continue
			}
			resolved := instr
			resolved.Imm, resolved.HasImm = rel, true
			out = append(out, resolved)

		case asm.OpJumpIfNotZero:
			target, ok := labelPos[instr.Label.ID]
			if !ok {
				out = append(out, instr)
				continue
			}
			rel := int64(target - posOf[i])
			if rel > maxSigned(NearBits) || rel < minSigned(NearBits) {
				changed = true
			}
			resolved := instr
			resolved.Imm, resolved.HasImm = rel, true
			out = append(out, resolved)

		case asm.OpCallSymbol:
			target, ok := labelPos[instr.Label.ID]
			if !ok {
				out = append(out, instr)
				continue
			}
			rel := int64(target - posOf[i])
			switch {
			case rel < 0:
				// Backward call: the native call encoding is forward-only,
				// so it always needs the full load+subtract+JAL sequence
				// regardless of magnitude (spec §4.6 step 3).
				changed = true
				out = append(out, asm.Instr{Op: asm.OpLoadLabel, Dst: ir.Reg(scratchReg), Label: instr.Label, Kind: asm.LoadLabelJAL})
				out = append(out, asm.Instr{Op: asm.OpSub, Dst: ir.Reg(pcReg), Lhs: ir.Reg(scratchReg), Rhs: ir.Reg(pcReg), HasLhs: true, HasRhs: true})
				out = append(out, asm.Instr{Op: asm.OpJumpAndLink, Dst: ir.Reg(linkReg), Lhs: ir.Reg(scratchReg), HasLhs: true, Imm: 0, HasImm: true})
			case rel > maxSigned(FarBits):
				changed = true
				out = append(out, asm.Instr{Op: asm.OpLoadLabel, Dst: ir.Reg(scratchReg), Label: instr.Label, Kind: asm.LoadLabelJAL})
				out = append(out, asm.Instr{Op: asm.OpJumpAndLink, Dst: ir.Reg(linkReg), Lhs: ir.Reg(scratchReg), HasLhs: true, Imm: 0, HasImm: true})
			case rel > maxSigned(NearBits):
				changed = true
				out = append(out, asm.Instr{Op: asm.OpMoveImmediate, Dst: ir.Reg(scratchReg), Imm: rel, HasImm: true})
				out = append(out, asm.Instr{Op: asm.OpJumpAndLink, Dst: ir.Reg(linkReg), Lhs: ir.Reg(scratchReg), HasLhs: true, Imm: 0, HasImm: true})
			default:
				resolved := instr
				resolved.Imm, resolved.HasImm = rel, true
				out = append(out, resolved)
			}

		default:
			out = append(out, instr)
		}
	}
	return out, changed
}

// finalizeLoadLabels replaces every OpLoadLabel placeholder left standing
// once the fixpoint has converged with an OpLoadDataId referencing a fresh
// literal in the returned data section (spec §4.6: "Each LoadLabel(reg, L,
// kind) is finalized by inserting the literal offset into the data section
// and rewriting the op into LoadDataId(reg, data-id) once the fixpoint has
// converged"). Per §8 scenario 6, the stored literal is the relative offset
// minus one (the trampoline's own JMPF/JMPB already contributes the first
// step of displacement).
func finalizeLoadLabels(instrs []asm.Instr) ([]asm.Instr, []int64) {
	labelPos, posOf := computeOffsets(instrs)
	var data []int64
	out := make([]asm.Instr, 0, len(instrs))
	for i, instr := range instrs {
		if instr.Op != asm.OpLoadLabel {
			out = append(out, instr)
			continue
		}
		target := labelPos[instr.Label.ID]
		rel := int64(target-posOf[i]) - 1
		idx := len(data)
		data = append(data, rel)
		out = append(out, asm.Instr{Op: asm.OpLoadDataId, Dst: instr.Dst, Imm: int64(idx), HasImm: true})
	}
	return out, data
}

// expandPushPop replaces the organizational PUSHA/POPA pseudo-ops with a
// concrete register-mask save/restore sequence (spec §4.6, PUSHA/POPA
// expansion): for each nested PushAll(L)..PopAll(L) region, compute the set
// of registers defined by any op inside it, split into a low mask (16..39)
// and high mask (40..63), and emit PSHL/PSHH ahead of the region and the
// symmetric POPH/POPL after it. The frame pointer is always included in
// both masks; the locals-base register is left alone entirely, since it is
// unconditionally preserved across every region by convention.
func expandPushPop(instrs []asm.Instr) []asm.Instr {
	var out []asm.Instr
	for i := 0; i < len(instrs); i++ {
		instr := instrs[i]
		if instr.Op != asm.OpPushAll {
			out = append(out, instr)
			continue
		}

		defined := make(map[uint8]bool)
		j := i + 1
		for ; j < len(instrs); j++ {
			if instrs[j].Op == asm.OpPopAll && instrs[j].Label.ID == instr.Label.ID {
				break
			}
			if definesDst(instrs[j].Op) {
				r := uint8(instrs[j].Dst)
				if r != regalloc_excludedLB {
					defined[r] = true
				}
			}
		}

		low, high := splitMask(defined)
		if low != 0 {
			out = append(out, asm.Instr{Op: asm.OpPushLow, Imm: int64(low), HasImm: true})
		}
		if high != 0 {
			out = append(out, asm.Instr{Op: asm.OpPushHigh, Imm: int64(high), HasImm: true})
		}

		for k := i + 1; k < j && k < len(instrs); k++ {
			out = append(out, instrs[k])
		}

		if j < len(instrs) {
			if high != 0 {
				out = append(out, asm.Instr{Op: asm.OpPopHigh, Imm: int64(high), HasImm: true})
			}
			if low != 0 {
				out = append(out, asm.Instr{Op: asm.OpPopLow, Imm: int64(low), HasImm: true})
			}
			i = j
		}
	}
	return out
}

// definesDst reports whether op writes a result into its Dst field, as
// opposed to a control-transfer, store, or organizational op with no
// meaningful destination register.
func definesDst(op asm.Op) bool {
	switch op {
	case asm.OpStore, asm.OpReturn, asm.OpLog, asm.OpNoOp, asm.OpComment, asm.OpLabel,
		asm.OpJump, asm.OpJumpIfNotZero, asm.OpCallSymbol, asm.OpJumpForward, asm.OpJumpBackward,
		asm.OpPushAll, asm.OpPopAll, asm.OpPushLow, asm.OpPushHigh, asm.OpPopLow, asm.OpPopHigh,
		asm.OpDataOffset, asm.OpConfigurables:
		return false
	default:
		return true
	}
}

// maskBit returns the bit a register contributes to a 24-wide mask
// starting at base (16 for the low mask, 40 for the high mask), and
// whether reg actually falls in that range.
func maskBit(reg, base uint8) (uint64, bool) {
	if reg < base || reg >= base+24 {
		return 0, false
	}
	return 1 << uint(reg-base), true
}

// splitMask computes the low/high register masks for a PUSHA/POPA region
// from its defined-register set, always folding in the frame pointer. Since
// the frame pointer's physical register only falls in one of the two
// 24-wide ranges, the other mask sets its top bit (23) to stand for it.
// That bit is also the bit of a real register (39 in the low mask), so that
// register is saved and restored in every region.
func splitMask(defined map[uint8]bool) (low, high uint64) {
	for r := range defined {
		if bit, ok := maskBit(r, 16); ok {
			low |= bit
		}
		if bit, ok := maskBit(r, 40); ok {
			high |= bit
		}
	}
	if bit, ok := maskBit(regalloc_excludedFP, 16); ok {
		low |= bit
	} else {
		low |= 1 << 23
	}
	if bit, ok := maskBit(regalloc_excludedFP, 40); ok {
		high |= bit
	} else {
		high |= 1 << 23
	}
	return low, high
}

// regalloc_excludedFP/LB name the two physical registers C13 never hands
// out to ordinary values (conventionally the top of the file), mirrored
// here rather than imported from regalloc to avoid a dependency cycle
// (regalloc has no reason to depend on labels, and shouldn't gain one).
const (
	regalloc_excludedFP uint8 = 62
	regalloc_excludedLB uint8 = 63
)
