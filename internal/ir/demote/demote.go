// Package demote implements the value-demotion IR pass (C10): rewriting
// operations that the target VM cannot execute directly on a bare virtual
// register (log/asm-block operands, 256-bit wide arithmetic) into an
// explicit GetLocal+Store+pointer sequence, so later passes and lowering
// only ever see register-sized values flowing through ordinary
// instructions. Grounded on the teacher's "everything is boxed through one
// Value representation" convention in internal/vmregister (Value, BoxInt,
// BoxString, ...), generalized here to an explicit memory-demotion rewrite
// since this pipeline's IR is register-typed rather than dynamically boxed.
package demote

import (
	"corec/internal/ir"
	"corec/internal/types"
)

// Run rewrites fn in place, demoting every instruction whose operands must
// be addressable (OpLog, OpAsmBlock, OpWide*) to first spill their operand
// registers to fresh local slots. A wide op that produces a wide result
// (Add/Sub/Mul/Mod, but not Cmp, which yields a narrow boolean) also gets
// its destination rerouted through a result local: the instruction writes
// through a pointer and a trailing Load hands the value back to a fresh
// register, with every later use of the original destination rewritten to
// that register. Run does not recognise operands demoted by an earlier run:
// the OpGetLocal results it introduces are ordinary registers, so a second
// run demotes them again and adds another result local for each wide op.
func Run(fn *ir.Function, engine *types.Engine) {
	rename := make(map[ir.Reg]ir.Reg)
	for bi := range fn.Blocks {
		fn.Blocks[bi].Instrs = demoteBlock(fn, engine, fn.Blocks[bi].Instrs, rename)
	}
	if len(rename) == 0 {
		return
	}
	for bi := range fn.Blocks {
		instrs := fn.Blocks[bi].Instrs
		for i := range instrs {
			renameUses(&instrs[i], rename)
		}
	}
}

func demoteBlock(fn *ir.Function, engine *types.Engine, instrs []ir.Instr, rename map[ir.Reg]ir.Reg) []ir.Instr {
	var out []ir.Instr
	for _, instr := range instrs {
		switch instr.Op {
		case ir.OpLog, ir.OpAsmBlock:
			out = append(out, spillOperand(fn, &instr.Lhs)...)
			out = append(out, instr)
		case ir.OpWideAdd, ir.OpWideSub, ir.OpWideMul, ir.OpWideMod, ir.OpWideCmp:
			producesWide := instr.Op != ir.OpWideCmp
			origDst := instr.Dst
			var resultLocal int
			if producesWide {
				resultLocal = fn.AddLocal("", instr.Type)
				resultPtr := fn.FreshReg()
				out = append(out, ir.Instr{Op: ir.OpGetLocal, Dst: resultPtr, Local: resultLocal})
				instr.Dst = resultPtr
			}
			out = append(out, spillOperand(fn, &instr.Lhs)...)
			out = append(out, spillOperand(fn, &instr.Rhs)...)
			if instr.Op == ir.OpWideMod {
				// MOD-style wide ops need a third, zero-initialized operand
				// slot for the runtime call's remainder output (mirrors the
				// teacher's OP_MOD needing a result register distinct from
				// both operands).
				zeroLocal := fn.AddLocal("", 0)
				out = append(out, ir.Instr{Op: ir.OpStore, Local: zeroLocal, Lhs: ir.ConstValue(0)})
			}
			if producesWide {
				instr.Type = engine.Insert(types.Descriptor{Kind: types.KindRawPtr, Elem: instr.Type})
				out = append(out, instr)
				loadReg := fn.FreshReg()
				out = append(out, ir.Instr{Op: ir.OpLoad, Dst: loadReg, Local: resultLocal})
				rename[origDst] = loadReg
			} else {
				out = append(out, instr)
			}
		default:
			out = append(out, instr)
		}
	}
	return out
}

// renameUses rewrites every operand register reference in instr according
// to rename, leaving Dst (a definition, never a use) untouched.
func renameUses(instr *ir.Instr, rename map[ir.Reg]ir.Reg) {
	renameValue(&instr.Lhs, rename)
	renameValue(&instr.Rhs, rename)
	for i := range instr.Args {
		renameValue(&instr.Args[i], rename)
	}
}

func renameValue(v *ir.Value, rename map[ir.Reg]ir.Reg) {
	if !v.IsReg {
		return
	}
	if nr, ok := rename[v.Reg]; ok {
		v.Reg = nr
	}
}

// spillOperand replaces any register operand, including one that is already
// a GetLocal result, with a GetLocal-backed local slot (a constant operand is
// left alone), returning the extra instructions needed before the original
// instruction.
func spillOperand(fn *ir.Function, v *ir.Value) []ir.Instr {
	if !v.IsReg {
		return nil
	}
	local := fn.AddLocal("", 0)
	store := ir.Instr{Op: ir.OpStore, Local: local, Lhs: *v}
	dst := fn.FreshReg()
	*v = ir.RegValue(dst)
	load := ir.Instr{Op: ir.OpGetLocal, Dst: dst, Local: local}
	return []ir.Instr{store, load}
}
