// Package vmregister supplies the packed-instruction format C15's emitter
// builds on: the teacher's register-based 32-bit word layout (iABC / iABx /
// iAsBx / iAx), Lua/LuaJIT-style. Trimmed from the teacher's original file
// down to the format itself: the dynamic-language opcode catalog (table,
// string-method, class/instance, fiber ops) and the NaN-boxed-Value-typed
// inline-cache/JIT-feedback machinery that used to sit alongside it have no
// analog in a fixed-width-integer register VM and depended on a Value type
// this module never carries over (see DESIGN.md). asm.Op supplies this
// module's own, much smaller opcode catalog; internal/emit casts it
// straight into OpCode so CreateABC and friends need no wrapper.
package vmregister

// Register-Based Bytecode Format
// ===============================
//
// Instruction Format (32 bits):
//
// Format iABC:  [8-bit op][8-bit A][8-bit B][8-bit C]
//               Used for 3-register operations
//
// Format iABx:  [8-bit op][8-bit A][16-bit Bx]
//               Used for operations with large operands
//
// Format iAsBx: [8-bit op][8-bit A][16-bit sBx]
//               Used for jumps (signed offset)
//
// Format iAx:   [8-bit op][24-bit Ax]
//               Used for extra-large operands

type OpCode uint8

// Instruction encoding/decoding helpers
type Instruction uint32

// Instruction formats
const (
	POS_OP = 0
	POS_A  = 8
	POS_B  = 16
	POS_C  = 24

	SIZE_OP = 8
	SIZE_A  = 8
	SIZE_B  = 8
	SIZE_C  = 8
	SIZE_Bx = 16
	SIZE_Ax = 24

	MASK_OP = (1 << SIZE_OP) - 1
	MASK_A  = (1 << SIZE_A) - 1
	MASK_B  = (1 << SIZE_B) - 1
	MASK_C  = (1 << SIZE_C) - 1
	MASK_Bx = (1 << SIZE_Bx) - 1
	MASK_Ax = (1 << SIZE_Ax) - 1

	// Maximum values
	MAXARG_A  = MASK_A
	MAXARG_B  = MASK_B
	MAXARG_C  = MASK_C
	MAXARG_Bx = MASK_Bx
	MAXARG_Ax = MASK_Ax

	// Signed Bx offset
	MAXARG_sBx = MAXARG_Bx >> 1
)

// Create instructions (encoding)

func CreateABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction(op) |
		Instruction(a)<<POS_A |
		Instruction(b)<<POS_B |
		Instruction(c)<<POS_C
}

func CreateABx(op OpCode, a uint8, bx uint16) Instruction {
	return Instruction(op) |
		Instruction(a)<<POS_A |
		Instruction(bx)<<POS_B
}

func CreateAsBx(op OpCode, a uint8, sbx int16) Instruction {
	return CreateABx(op, a, uint16(int32(sbx)+MAXARG_sBx))
}

func CreateAx(op OpCode, ax uint32) Instruction {
	return Instruction(op) | Instruction(ax)<<POS_A
}

// Extract fields from instruction (decoding)

func (i Instruction) OpCode() OpCode {
	return OpCode(i & MASK_OP)
}

func (i Instruction) A() uint8 {
	return uint8((i >> POS_A) & MASK_A)
}

func (i Instruction) B() uint8 {
	return uint8((i >> POS_B) & MASK_B)
}

func (i Instruction) C() uint8 {
	return uint8((i >> POS_C) & MASK_C)
}

func (i Instruction) Bx() uint16 {
	return uint16((i >> POS_B) & MASK_Bx)
}

func (i Instruction) sBx() int16 {
	return int16(i.Bx()) - MAXARG_sBx
}

func (i Instruction) Ax() uint32 {
	return uint32((i >> POS_A) & MASK_Ax)
}
