package isa

// RV32MInstructions returns the M-extension multiply/divide instructions.
// All eight share the OP opcode and funct7=0x01, distinguished by funct3.
func RV32MInstructions() []*Instruction {
	return []*Instruction{
		rType("mul", 0x0, 0x01),
		rType("mulh", 0x1, 0x01),
		rType("mulhsu", 0x2, 0x01),
		rType("mulhu", 0x3, 0x01),
		rType("div", 0x4, 0x01),
		rType("divu", 0x5, 0x01),
		rType("rem", 0x6, 0x01),
		rType("remu", 0x7, 0x01),
	}
}

// RV64MInstructions returns the *W multiply/divide forms that operate on
// (and sign-extend from) the low 32 bits, available only when XLEN==64.
func RV64MInstructions() []*Instruction {
	return []*Instruction{
		rTypeOp("mulw", opOp32, 0x0, 0x01),
		rTypeOp("divw", opOp32, 0x4, 0x01),
		rTypeOp("divuw", opOp32, 0x5, 0x01),
		rTypeOp("remw", opOp32, 0x6, 0x01),
		rTypeOp("remuw", opOp32, 0x7, 0x01),
	}
}
