package labels

import (
	"errors"
	"testing"

	"corec/internal/asm"
)

func TestResolveComputesForwardJumpOffset(t *testing.T) {
	lbl := asm.Label{Name: "end", ID: 1}
	p := &asm.Program{Instrs: []asm.Instr{
		{Op: asm.OpJump, Label: lbl},
		{Op: asm.OpAdd, Dst: 0, Lhs: 1, Rhs: 2, HasLhs: true, HasRhs: true},
		{Op: asm.OpLabel, Label: lbl},
	}}
	r, err := Resolve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Instrs) != 2 {
		t.Fatalf("expected label def stripped, got %d instrs", len(r.Instrs))
	}
	if !r.Instrs[0].HasImm || r.Instrs[0].Imm != 2 {
		t.Fatalf("expected a +2 relative offset, got %+v", r.Instrs[0])
	}
}

func TestResolveSelfLoopBecomesBackwardTrampoline(t *testing.T) {
	lbl := asm.Label{Name: "top", ID: 1}
	p := &asm.Program{Instrs: []asm.Instr{
		{Op: asm.OpLabel, Label: lbl},
		{Op: asm.OpJump, Label: lbl},
	}}
	r, err := Resolve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Instrs) != 2 {
		t.Fatalf("expected a NoOp plus a backward-branch instruction, got %+v", r.Instrs)
	}
	if r.Instrs[0].Op != asm.OpNoOp {
		t.Fatalf("expected the loop header to be a NoOp, got %+v", r.Instrs[0])
	}
	if r.Instrs[1].Op != asm.OpJumpBackward || r.Instrs[1].Imm != 1 {
		t.Fatalf("expected a JMPB with relative offset 1, got %+v", r.Instrs[1])
	}
}

func TestResolveFarForwardJumpBecomesLoadLabelTrampoline(t *testing.T) {
	lbl := asm.Label{Name: "far", ID: 1}
	instrs := []asm.Instr{{Op: asm.OpJump, Label: lbl}}
	const gap = 1 << FarBits // 2^18, beyond the 18-bit signed maximum of 2^17-1
	for i := 0; i < gap; i++ {
		instrs = append(instrs, asm.Instr{Op: asm.OpAdd, Dst: 0, Lhs: 1, Rhs: 2, HasLhs: true, HasRhs: true})
	}
	instrs = append(instrs, asm.Instr{Op: asm.OpLabel, Label: lbl})

	r, err := Resolve(&asm.Program{Instrs: instrs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Instrs[0].Op != asm.OpLoadDataId {
		t.Fatalf("expected the far jump to finalize into a LoadDataId, got %+v", r.Instrs[0])
	}
	if r.Instrs[1].Op != asm.OpJumpForward || !r.Instrs[1].HasLhs {
		t.Fatalf("expected an indirect JMPF through the scratch register, got %+v", r.Instrs[1])
	}
	if len(r.Data) != 1 || r.Data[0] != int64(gap)-1 {
		t.Fatalf("expected one data word equal to the relative offset minus one, got %+v", r.Data)
	}
}

func TestResolveExceedingFixpointReturnsErrInternal(t *testing.T) {
	orig := maxFixpointIterations
	maxFixpointIterations = 0
	defer func() { maxFixpointIterations = orig }()

	lbl := asm.Label{Name: "anywhere", ID: 1}
	p := &asm.Program{Instrs: []asm.Instr{
		{Op: asm.OpJump, Label: lbl},
		{Op: asm.OpLabel, Label: lbl},
	}}
	_, err := Resolve(p)
	if !errors.Is(err, asm.ErrInternal) {
		t.Fatalf("expected asm.ErrInternal, got %v", err)
	}
}
