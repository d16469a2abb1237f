package isa

// RV64IInstructions returns the RV64I-only additions: the 64-bit
// load/store, and the *W instructions that operate on (and sign-extend
// from) the low 32 bits. It does not include slli/srli/srai -- on RV64
// those mnemonics keep their RV32 names but widen to a 6-bit shamt field,
// which RV64ShiftOverrides provides as a replacement for the RV32 forms.
func RV64IInstructions() []*Instruction {
	var table []*Instruction

	table = append(table,
		loadType("ld", 0x3),
		storeType("sd", 0x3),
	)

	// *W arithmetic (OP-IMM-32 / OP-32, opcodes 0x1B/0x3B)
	table = append(table,
		iArithTypeOp("addiw", opImm32, 0x0),
		shiftImmTypeOp("slliw", opImm32, 0x1, 0x00, 5),
		shiftImmTypeOp("srliw", opImm32, 0x5, 0x00, 5),
		shiftImmTypeOp("sraiw", opImm32, 0x5, 0x20, 5),
		rTypeOp("addw", opOp32, 0x0, 0x00),
		rTypeOp("subw", opOp32, 0x0, 0x20),
		rTypeOp("sllw", opOp32, 0x1, 0x00),
		rTypeOp("srlw", opOp32, 0x5, 0x00),
		rTypeOp("sraw", opOp32, 0x5, 0x20),
	)

	return table
}

// RV64ShiftOverrides returns the RV64-width (6-bit shamt) slli/srli/srai,
// which replace the RV32 5-bit forms in an RV64 instruction table.
func RV64ShiftOverrides() []*Instruction {
	return []*Instruction{
		shiftImmType("slli", 0x1, 0x00, 6),
		shiftImmType("srli", 0x5, 0x00, 6),
		shiftImmType("srai", 0x5, 0x10, 6),
	}
}

func iArithTypeOp(name string, opcode, funct3 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rdField(), rs1Field(1), iTypeImm(2, NoSymbol)},
		OpParts: []OpPart{opcodePart(opcode), funct3Part(funct3)},
	}
}

func rTypeOp(name string, opcode, funct3, funct7 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rdField(), rs1Field(1), rs2Field(2)},
		OpParts: []OpPart{opcodePart(opcode), funct3Part(funct3), funct7Part(funct7)},
	}
}

func shiftImmTypeOp(name string, opcode, funct3, funct7 uint32, shamtWidth int) *Instruction {
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
		OpParts: []OpPart{opcodePart(opcode), funct3Part(funct3), {Value: funct7, Lo: hi + 1, Hi: 31}},
	}
}
