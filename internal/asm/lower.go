package asm

import "corec/internal/ir"

// Lower translates fn's basic blocks into one flat virtual-ASM stream, with
// a label marking each block's entry and Jump/JumpIfNotZero referencing
// those labels by name (block index), matching the teacher's compregister
// approach of recording instruction positions to patch later (patchJump),
// generalized from "patch backward at the end of a function" to "emit
// labeled, unresolved jumps for C14 to rewrite".
func Lower(fn *ir.Function) *Program {
	p := &Program{}
	blockLabels := make([]Label, len(fn.Blocks))
	for i := range fn.Blocks {
		blockLabels[i] = Label{Name: "block", ID: i}
	}
	for i, block := range fn.Blocks {
		p.Instrs = append(p.Instrs, Instr{Op: OpLabel, Label: blockLabels[i]})
		for _, instr := range block.Instrs {
			p.Instrs = append(p.Instrs, lowerInstr(instr, blockLabels)...)
		}
	}
	return p
}

func lowerInstr(instr ir.Instr, blockLabels []Label) []Instr {
	switch instr.Op {
	case ir.OpBinary:
		out := Instr{Op: binOpToAsm(instr.Bin), Dst: instr.Dst}
		setOperand(&out, instr.Lhs, true)
		setOperand(&out, instr.Rhs, false)
		return []Instr{out}

	case ir.OpUnary:
		out := Instr{Op: OpNot, Dst: instr.Dst}
		setOperand(&out, instr.Lhs, true)
		return []Instr{out}

	case ir.OpMoveImmediate:
		out := Instr{Op: OpMoveImmediate, Dst: instr.Dst}
		setOperand(&out, instr.Lhs, true)
		return []Instr{out}

	case ir.OpNoOp:
		return []Instr{{Op: OpNoOp}}

	case ir.OpMove:
		out := Instr{Op: OpMove, Dst: instr.Dst}
		setOperand(&out, instr.Lhs, true)
		return []Instr{out}

	case ir.OpGetLocal:
		return []Instr{{Op: OpLoad, Dst: instr.Dst, Imm: int64(instr.Local), HasImm: true}}

	case ir.OpStore, ir.OpLoad:
		op := OpStore
		if instr.Op == ir.OpLoad {
			op = OpLoad
		}
		out := Instr{Op: op, Dst: instr.Dst, Imm: int64(instr.Local), HasImm: true}
		setOperand(&out, instr.Lhs, true)
		return []Instr{out}

	case ir.OpCall:
		return []Instr{{Op: OpCallSymbol, Dst: instr.Dst, Label: Label{Name: "fn", ID: int(instr.Callee)}}}

	case ir.OpJump:
		return []Instr{{Op: OpJump, Label: blockLabels[instr.Target]}}

	case ir.OpJumpIfNotZero:
		out := Instr{Op: OpJumpIfNotZero, Label: blockLabels[instr.TrueTarget]}
		setOperand(&out, instr.Lhs, true)
		fallthroughJump := Instr{Op: OpJump, Label: blockLabels[instr.FalseTarget]}
		return []Instr{out, fallthroughJump}

	case ir.OpReturn:
		out := Instr{Op: OpReturn}
		if instr.Lhs.IsReg || instr.Lhs.IsConst {
			setOperand(&out, instr.Lhs, true)
		}
		return []Instr{out}

	case ir.OpLog:
		out := Instr{Op: OpLog}
		setOperand(&out, instr.Lhs, true)
		return []Instr{out}

	case ir.OpWideAdd:
		return []Instr{wideOp(OpWideAdd, instr)}
	case ir.OpWideSub:
		return []Instr{wideOp(OpWideSub, instr)}
	case ir.OpWideMul:
		return []Instr{wideOp(OpWideMul, instr)}
	case ir.OpWideMod:
		return []Instr{wideOp(OpWideMod, instr)}
	case ir.OpWideCmp:
		return []Instr{wideOp(OpWideCmp, instr)}

	case ir.OpAsmBlock:
		var out []Instr
		for _, a := range instr.Asm {
			out = append(out, Instr{Op: OpComment, Text: a.Mnemonic})
		}
		return out

	default:
		return nil
	}
}

func wideOp(op Op, instr ir.Instr) Instr {
	out := Instr{Op: op, Dst: instr.Dst}
	setOperand(&out, instr.Lhs, true)
	setOperand(&out, instr.Rhs, false)
	return out
}

func setOperand(instr *Instr, v ir.Value, isLhs bool) {
	if v.IsConst {
		instr.Imm = v.Const
		instr.HasImm = true
		return
	}
	if isLhs {
		instr.Lhs = v.Reg
		instr.HasLhs = true
	} else {
		instr.Rhs = v.Reg
		instr.HasRhs = true
	}
}

func binOpToAsm(op ir.BinOp) Op {
	switch op {
	case ir.BinAdd:
		return OpAdd
	case ir.BinSub:
		return OpSub
	case ir.BinMul:
		return OpMul
	case ir.BinDiv:
		return OpDiv
	case ir.BinMod:
		return OpMod
	case ir.BinAnd:
		return OpAnd
	case ir.BinOr:
		return OpOr
	case ir.BinXor:
		return OpXor
	case ir.BinShl:
		return OpShl
	case ir.BinShr:
		return OpShr
	case ir.BinEq:
		return OpEq
	case ir.BinGt:
		return OpGt
	case ir.BinLt:
		return OpLt
	default:
		return OpAdd
	}
}
