package regalloc

import (
	"testing"

	"corec/internal/asm"
	"corec/internal/ir"
)

func TestRunAssignsDistinctPhysicalRegisters(t *testing.T) {
	p := &asm.Program{Instrs: []asm.Instr{
		{Op: asm.OpAdd, Dst: 0, Lhs: 1, Rhs: 2, HasLhs: true, HasRhs: true},
	}}
	alloc := Run(p)
	seen := make(map[Physical]bool)
	for _, v := range []int{0, 1, 2} {
		reg, ok := alloc.Physical[v]
		if !ok {
			t.Fatalf("virtual %d was not assigned a physical register", v)
		}
		if seen[reg] {
			t.Fatalf("physical register %d assigned to more than one live virtual", reg)
		}
		seen[reg] = true
	}
}

func TestRunSpillsPastPhysicalFile(t *testing.T) {
	var instrs []asm.Instr
	var all []ir.Reg
	for i := 0; i < NumPhysical+1; i++ {
		instrs = append(instrs, asm.Instr{Op: asm.OpMoveImmediate, Dst: ir.Reg(i), Imm: int64(i), HasImm: true})
		all = append(all, ir.Reg(i))
	}
	// Reference every virtual from one final instruction so none is freed
	// before the whole set is live at once, forcing the allocator to spill.
	instrs = append(instrs, asm.Instr{Op: asm.OpPushAll, Regs: all})
	p := &asm.Program{Instrs: instrs}
	alloc := Run(p)
	if len(alloc.Spills) == 0 {
		t.Fatalf("expected at least one spill once virtuals exceed NumPhysical")
	}
}

func TestApplyRewritesVirtualsToPhysical(t *testing.T) {
	instrs := []asm.Instr{
		{Op: asm.OpAdd, Dst: 5, Lhs: 6, Rhs: 7, HasLhs: true, HasRhs: true},
	}
	alloc := &Allocation{Physical: map[int]Physical{5: 40, 6: 41, 7: 42}}
	out := Apply(instrs, alloc)
	if out[0].Dst != 40 || out[0].Lhs != 41 || out[0].Rhs != 42 {
		t.Fatalf("unexpected rewritten registers: %+v", out[0])
	}
}

func TestApplyLeavesSpilledVirtualsUntouched(t *testing.T) {
	instrs := []asm.Instr{{Op: asm.OpMove, Dst: 99}}
	alloc := &Allocation{Physical: map[int]Physical{}}
	out := Apply(instrs, alloc)
	if out[0].Dst != 99 {
		t.Fatalf("expected unresolved virtual 99 to pass through unchanged, got %d", out[0].Dst)
	}
}
