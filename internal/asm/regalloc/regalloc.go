// Package regalloc implements register allocation (C13): mapping the
// unbounded virtual-register space of C12's output onto a fixed physical
// register file, recording a spill slot for each virtual register that finds
// no free physical register. Grounded directly on the teacher's
// internal/compregister.RegisterAllocator (Alloc/Free/Lock/Unlock over a
// free-list plus a high-water mark), generalized from "allocate on demand
// during expression compilation" to "allocate from an already-complete
// virtual-ASM stream via a linear-scan-style single pass", since C12 has
// already finished lowering before this stage runs.
package regalloc

import (
	"corec/internal/asm"
	"corec/internal/ir"
)

// NumPhysical is the physical register file size the target VM exposes
// (spec §9's "organizational PUSHA/POPA ops" save/restore this many
// registers around calls).
const NumPhysical = 64

// firstReserved is the lowest physical id Alloc never hands out: C14's
// trampolines use 58..60 (scratch, link, pc), and 62/63 are the frame
// pointer and the locals base.
const firstReserved = 58

// Allocator mirrors compregister.RegisterAllocator's free-list + lock set,
// generalized from int register ids to the Physical id type below.
type Allocator struct {
	nextReg  Physical
	freeRegs []Physical
	locked   map[Physical]bool
	spills   int
}

// Physical is a physical register id in [0, NumPhysical).
type Physical uint8

func NewAllocator() *Allocator {
	return &Allocator{locked: make(map[Physical]bool)}
}

func (a *Allocator) Alloc() (Physical, bool) {
	if n := len(a.freeRegs); n > 0 {
		reg := a.freeRegs[n-1]
		a.freeRegs = a.freeRegs[:n-1]
		return reg, true
	}
	if int(a.nextReg) >= firstReserved {
		return 0, false
	}
	reg := a.nextReg
	a.nextReg++
	return reg, true
}

func (a *Allocator) Free(r Physical) {
	if !a.locked[r] {
		a.freeRegs = append(a.freeRegs, r)
	}
}

func (a *Allocator) Lock(r Physical)   { a.locked[r] = true }
func (a *Allocator) Unlock(r Physical) { delete(a.locked, r) }

// Spill is a spill slot assigned to a virtual register that didn't fit in
// the physical file. Only the record is kept: no pass in this module expands
// it into load/store pairs against the stack frame.
type Spill struct {
	Virtual  int
	StackIdx int
}

// Allocation is the result of running Run over one function's virtual-ASM
// stream: a mapping from every virtual register referenced to either a
// physical register or a spill slot.
type Allocation struct {
	Physical map[int]Physical
	Spills   []Spill
}

// Run performs a simple linear scan over p's instruction stream in program
// order: every virtual register gets a physical register on first use,
// held until its last use in this straight-line pass (a conservative
// over-approximation of a true liveness-interval scan, matching the
// teacher's single-pass "alloc now, free at scope end" discipline rather
// than a separate liveness-analysis phase).
func Run(p *asm.Program) *Allocation {
	a := NewAllocator()
	out := &Allocation{Physical: make(map[int]Physical)}
	lastUse := computeLastUse(p)

	for i, instr := range p.Instrs {
		for _, v := range virtualRegs(instr) {
			vid := int(v)
			if _, ok := out.Physical[vid]; ok {
				continue
			}
			reg, ok := a.Alloc()
			if !ok {
				out.Spills = append(out.Spills, Spill{Virtual: vid, StackIdx: len(out.Spills)})
				continue
			}
			out.Physical[vid] = reg
		}
		for _, v := range virtualRegs(instr) {
			if lastUse[int(v)] == i {
				if reg, ok := out.Physical[int(v)]; ok {
					a.Free(reg)
				}
			}
		}
	}
	return out
}

// Apply rewrites every virtual register referenced in instrs to its
// allocated physical register id, per the teacher's compregister discipline
// of resolving a register operand to a concrete slot immediately before the
// instruction reaches the encoder. A virtual that spilled rather than
// landing in alloc.Physical keeps its original virtual id. Nothing expands
// the load/store sequence a spill requires: C15 packs that id into its 8-bit
// register field like any physical register.
func Apply(instrs []asm.Instr, alloc *Allocation) []asm.Instr {
	out := make([]asm.Instr, len(instrs))
	for i, instr := range instrs {
		instr.Dst = rewriteReg(instr.Dst, alloc)
		if instr.HasLhs {
			instr.Lhs = rewriteReg(instr.Lhs, alloc)
		}
		if instr.HasRhs {
			instr.Rhs = rewriteReg(instr.Rhs, alloc)
		}
		if len(instr.Regs) > 0 {
			regs := make([]ir.Reg, len(instr.Regs))
			for j, r := range instr.Regs {
				regs[j] = rewriteReg(r, alloc)
			}
			instr.Regs = regs
		}
		out[i] = instr
	}
	return out
}

func rewriteReg(r ir.Reg, alloc *Allocation) ir.Reg {
	if p, ok := alloc.Physical[int(r)]; ok {
		return ir.Reg(p)
	}
	return r
}

func computeLastUse(p *asm.Program) map[int]int {
	last := make(map[int]int)
	for i, instr := range p.Instrs {
		for _, v := range virtualRegs(instr) {
			last[int(v)] = i
		}
	}
	return last
}

func virtualRegs(instr asm.Instr) []uint32 {
	var out []uint32
	out = append(out, uint32(instr.Dst))
	if instr.HasLhs {
		out = append(out, uint32(instr.Lhs))
	}
	if instr.HasRhs {
		out = append(out, uint32(instr.Rhs))
	}
	for _, r := range instr.Regs {
		out = append(out, uint32(r))
	}
	return out
}
