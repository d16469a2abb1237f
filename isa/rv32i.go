package isa

// RV32IInstructions returns the RV32I base integer instruction set.
func RV32IInstructions() []*Instruction {
	var table []*Instruction

	// R-type arithmetic/logical (OP, opcode 0x33)
	table = append(table,
		rType("add", 0x0, 0x00),
		rType("sub", 0x0, 0x20),
		rType("sll", 0x1, 0x00),
		rType("slt", 0x2, 0x00),
		rType("sltu", 0x3, 0x00),
		rType("xor", 0x4, 0x00),
		rType("srl", 0x5, 0x00),
		rType("sra", 0x5, 0x20),
		rType("or", 0x6, 0x00),
		rType("and", 0x7, 0x00),
	)

	// I-type arithmetic/logical (OP-IMM, opcode 0x13)
	table = append(table,
		iArithType("addi", 0x0),
		iArithType("slti", 0x2),
		iArithType("sltiu", 0x3),
		iArithType("xori", 0x4),
		iArithType("ori", 0x6),
		iArithType("andi", 0x7),
	)

	// Shifts by immediate (shamt is a 5-bit field, bits [24:20]; bits
	// [31:25] distinguish SRLI from SRAI and are zero for SLLI).
	table = append(table,
		shiftImmType("slli", 0x1, 0x00, 5),
		shiftImmType("srli", 0x5, 0x00, 5),
		shiftImmType("srai", 0x5, 0x20, 5),
	)

	// Loads (opcode 0x03) and stores (opcode 0x23)
	table = append(table,
		loadType("lb", 0x0),
		loadType("lh", 0x1),
		loadType("lw", 0x2),
		loadType("lbu", 0x4),
		loadType("lhu", 0x5),
		storeType("sb", 0x0),
		storeType("sh", 0x1),
		storeType("sw", 0x2),
	)

	// Branches (opcode 0x63)
	table = append(table,
		branchType("beq", 0x0),
		branchType("bne", 0x1),
		branchType("blt", 0x4),
		branchType("bge", 0x5),
		branchType("bltu", 0x6),
		branchType("bgeu", 0x7),
	)

	// Jumps
	table = append(table, &Instruction{
		Name:    "jal",
		Width:   32,
		Fields:  []Field{rdField(), jTypeImm(1)},
		OpParts: []OpPart{opcodePart(opJAL)},
	})
	table = append(table, &Instruction{
		Name:    "jalr",
		Width:   32,
		Fields:  []Field{rdField(), offsetImmField(1), offsetRegField(1)},
		OpParts: []OpPart{opcodePart(opJALR), funct3Part(0x0)},
	})

	// Upper immediates
	table = append(table, &Instruction{
		Name:    "lui",
		Width:   32,
		Fields:  []Field{rdField(), uTypeImm(1, AbsoluteSymbol)},
		OpParts: []OpPart{opcodePart(opLUI)},
	})
	table = append(table, &Instruction{
		Name:    "auipc",
		Width:   32,
		Fields:  []Field{rdField(), uTypeImm(1, RelativeSymbol)},
		OpParts: []OpPart{opcodePart(opAUIPC)},
	})

	// System
	table = append(table, &Instruction{
		Name:    "ecall",
		Width:   32,
		Fields:  nil,
		OpParts: []OpPart{opcodePart(opSystem), funct3Part(0x0), {Value: 0, Lo: 7, Hi: 11}, {Value: 0, Lo: 15, Hi: 19}, {Value: 0, Lo: 20, Hi: 31}},
	})
	table = append(table, &Instruction{
		Name:    "ebreak",
		Width:   32,
		Fields:  nil,
		OpParts: []OpPart{opcodePart(opSystem), funct3Part(0x0), {Value: 0, Lo: 7, Hi: 11}, {Value: 0, Lo: 15, Hi: 19}, {Value: 1, Lo: 20, Hi: 31}},
	})

	return table
}

// shiftImmType builds an immediate-shift instruction with an explicit
// shamt width (5 bits for RV32, 6 for RV64 -- see rv64i.go).
func shiftImmType(name string, funct3, funct7 uint32, shamtWidth int) *Instruction {
	hi := 20 + shamtWidth - 1
	return &Instruction{
		Name:  name,
		Width: 32,
		Fields: []Field{
			rdField(), rs1Field(1),
			{Immediate: &ImmediateField{
				TokenIdx: 2, Width: shamtWidth, Repr: Unsigned, SymbolKind: NoSymbol,
				Parts: []ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: hi}},
			}},
		},
		OpParts: []OpPart{opcodePart(opImm), funct3Part(funct3), {Value: funct7, Lo: hi + 1, Hi: 31}},
	}
}
