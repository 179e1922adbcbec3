package emit

import (
	"testing"

	"corec/internal/asm"
	"corec/internal/dataseg"
	"corec/internal/vmregister"
)

func TestEmitArithmeticRoundTrips(t *testing.T) {
	instrs := []asm.Instr{
		{Op: asm.OpAdd, Dst: 1, Lhs: 2, Rhs: 3, HasLhs: true, HasRhs: true},
	}
	data := dataseg.New()
	prog, err := Emit(instrs, data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(prog.Words))
	}
	w := prog.Words[0]
	if w.OpCode() != vmregister.OpCode(asm.OpAdd) || w.A() != 1 || w.B() != 2 || w.C() != 3 {
		t.Fatalf("unexpected packed word: op=%d a=%d b=%d c=%d", w.OpCode(), w.A(), w.B(), w.C())
	}
}

func TestEmitDataOffsetResolvesAgainstSection(t *testing.T) {
	data := dataseg.New()
	id := data.InternUint64(42)
	instrs := []asm.Instr{
		{Op: asm.OpDataOffset, Dst: 4, Label: asm.Label{Name: "k", ID: 7}},
	}
	prog, err := Emit(instrs, data, map[int]dataseg.ID{7: id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offset, _ := data.Offset(id)
	if int(prog.Words[0].Bx()) != offset {
		t.Fatalf("expected Bx %d, got %d", offset, prog.Words[0].Bx())
	}
}

func TestEmitMissingDataIDErrors(t *testing.T) {
	data := dataseg.New()
	instrs := []asm.Instr{{Op: asm.OpDataOffset, Label: asm.Label{Name: "missing", ID: 9}}}
	if _, err := Emit(instrs, data, nil); err == nil {
		t.Fatalf("expected an error for an unresolved data label")
	}
}

func TestEmitUnresolvedLabelErrors(t *testing.T) {
	instrs := []asm.Instr{{Op: asm.OpLabel, Label: asm.Label{Name: "L", ID: 1}}}
	if _, err := Emit(instrs, dataseg.New(), nil); err == nil {
		t.Fatalf("expected an error for a label reaching the encoder")
	}
}

func TestEmitImmediateOverflowErrors(t *testing.T) {
	instrs := []asm.Instr{{Op: asm.OpJump, Imm: 1 << 20, HasImm: true}}
	if _, err := Emit(instrs, dataseg.New(), nil); err == nil {
		t.Fatalf("expected an overflow error")
	}
}
