// Package ir implements the IR builder (C9): lowering the typed tree to a
// three-address, basic-block-structured intermediate representation, one
// function at a time. Grounded on the teacher's compregister.Compiler (one
// flat instruction stream per function, a register allocator threaded
// through expression compilation) generalized from "registers holding
// dynamic values" to "virtual registers holding IR values typed by C3",
// since this pipeline defers physical register assignment to C13.
package ir

import (
	"corec/internal/decl"
	"corec/internal/types"
)

// Reg is a virtual register: an arbitrarily large, infinite name space
// assigned by the builder, later mapped onto the physical file by C13.
type Reg uint32

// Op tags one IR instruction's shape, mirroring the operation groups of the
// teacher's vmregister.OpCode table, generalized from A/B/C register operands
// to named fields since the virtual register space is unbounded.
type Op uint8

const (
	OpBinary Op = iota
	OpUnary
	OpMoveImmediate
	OpMove
	OpLoad     // Dst = value read from local slot Local (field Local of Lhs for a field access)
	OpStore    // store Lhs into local slot Local (or into the aggregate held by Dst)
	OpGetLocal // Dst = pointer to local slot Local
	OpCall
	OpJump
	OpJumpIfNotZero
	OpReturn
	OpLog       // Sway's __log intrinsic: dump a typed value (spec supplement)
	OpAsmBlock  // inline ASM block: opaque to IR passes beyond demotion
	OpPtrToInt
	OpWideAdd // 256-bit arithmetic over pointer operands (C10 demotes them to locals)
	OpWideSub
	OpWideMul
	OpWideMod
	OpWideCmp
	OpNoOp // constant-folded-away instruction (C11); lowers to asm.OpNoOp
)

// BinOp is the arithmetic/bitwise/comparison operator of an OpBinary
// instruction, named rather than reusing parsetree.Operator so IR constant
// folding (C11) can switch over a closed, IR-local set.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinGt
	BinLt
)

// Value is the operand to an instruction: either a virtual register, an
// immediate constant, or (for data-section references) a content-addressed
// data id resolved by C15.
type Value struct {
	IsReg   bool
	Reg     Reg
	IsConst bool
	Const   int64
	IsData  bool
	DataID  uint32
}

func RegValue(r Reg) Value    { return Value{IsReg: true, Reg: r} }
func ConstValue(c int64) Value { return Value{IsConst: true, Const: c} }
func DataValue(id uint32) Value { return Value{IsData: true, DataID: id} }

// Instr is one IR instruction. Only the fields relevant to Op are populated
// (tagged-variant style, spec §9), rather than one struct per op kind.
type Instr struct {
	Op   Op
	Type types.ID

	Bin   BinOp
	Dst   Reg
	Lhs   Value
	Rhs   Value

	Local int // OpGetLocal/OpStore/OpLoad: stack-slot index

	Callee  decl.ID
	HasCallee bool
	Args    []Value
	Results []Reg

	Target     BlockID // OpJump
	TrueTarget BlockID // OpJumpIfNotZero
	FalseTarget BlockID

	Asm []AsmOp // OpAsmBlock: the raw virtual-register asm body
}

// AsmOp is one instruction of an inline `asm {}` block, captured from the
// typed tree's asm-block payload and lowered alongside ordinary IR (spec
// supplement: Sway's `asm` blocks drop to real VM opcodes directly).
type AsmOp struct {
	Mnemonic string
	Args     []Reg
	Imm      int64
	HasImm   bool
}

// BlockID indexes a function's Blocks slice.
type BlockID int

// Block is one basic block: a straight-line instruction run ending in
// exactly one control-transfer instruction (Jump/JumpIfNotZero/Return).
type Block struct {
	Instrs []Instr
}

// Local is one stack-allocated local variable, addressed by GetLocal/Store
// rather than kept purely in virtual registers, matching the teacher's
// "locals get a register slot for their lifetime" compregister.Scope model.
type Local struct {
	Name string
	Type types.ID
}

// Function is one compiled function's IR body.
type Function struct {
	Decl    decl.ID
	Params  []Reg
	Locals  []Local
	Blocks  []Block
	Entry   BlockID
	nextReg Reg
}

func NewFunction(id decl.ID) *Function {
	return &Function{Decl: id, Blocks: []Block{{}}}
}

// FreshReg allocates a new virtual register; the builder never reuses one,
// leaving dead-value elimination to later passes (spec §9: passes, not the
// builder, own simplification).
func (f *Function) FreshReg() Reg {
	r := f.nextReg
	f.nextReg++
	return r
}

// NewBlock appends an empty block and returns its id.
func (f *Function) NewBlock() BlockID {
	f.Blocks = append(f.Blocks, Block{})
	return BlockID(len(f.Blocks) - 1)
}

func (f *Function) Emit(b BlockID, instr Instr) {
	f.Blocks[b].Instrs = append(f.Blocks[b].Instrs, instr)
}

// AddLocal declares a new stack slot and returns its index.
func (f *Function) AddLocal(name string, ty types.ID) int {
	f.Locals = append(f.Locals, Local{Name: name, Type: ty})
	return len(f.Locals) - 1
}

// Program is every function built for one compilation unit.
type Program struct {
	Functions []*Function
}
