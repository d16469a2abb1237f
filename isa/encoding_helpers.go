package isa

// Standard RISC-V 7-bit opcode values (bits [6:0]).
const (
	opLoad    = 0x03
	opImm     = 0x13
	opAUIPC   = 0x17
	opImm32   = 0x1B
	opStore   = 0x23
	opOp      = 0x33
	opLUI     = 0x37
	opOp32    = 0x3B
	opBranch  = 0x63
	opJALR    = 0x67
	opJAL     = 0x6F
	opSystem  = 0x73
)

func opcodePart(v uint32) OpPart   { return OpPart{Value: v, Lo: 0, Hi: 6} }
func funct3Part(v uint32) OpPart   { return OpPart{Value: v, Lo: 12, Hi: 14} }
func funct7Part(v uint32) OpPart   { return OpPart{Value: v, Lo: 25, Hi: 31} }
func funct6Part(v uint32) OpPart   { return OpPart{Value: v, Lo: 26, Hi: 31} }
func imm12ZeroPart() OpPart        { return OpPart{Value: 0, Lo: 20, Hi: 31} }

func rdField() Field {
	return Field{Register: &RegisterField{TokenIdx: 0, Lo: 7, Hi: 11, Role: "rd"}}
}
func rs1Field(idx int) Field {
	return Field{Register: &RegisterField{TokenIdx: idx, Lo: 15, Hi: 19, Role: "rs1"}}
}
func rs2Field(idx int) Field {
	return Field{Register: &RegisterField{TokenIdx: idx, Lo: 20, Hi: 24, Role: "rs2"}}
}

// iTypeImm is the plain 12-bit signed immediate at bits [31:20].
func iTypeImm(idx int, symbolKind SymbolKind) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 12, Repr: Signed, SymbolKind: symbolKind,
		Parts: []ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}},
	}}
}

// sTypeImm is the store-form 12-bit signed immediate, split across
// bits[31:25] and bits[11:7].
func sTypeImm(idx int) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 12, Repr: Signed, SymbolKind: NoSymbol,
		Parts: []ImmPart{
			{SrcOffset: 5, DstLo: 25, DstHi: 31},
			{SrcOffset: 0, DstLo: 7, DstHi: 11},
		},
	}}
}

// bTypeImm is the branch-form 13-bit signed immediate (bit0 implicit 0).
func bTypeImm(idx int) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 13, Repr: Signed, SymbolKind: RelativeSymbol,
		Parts: []ImmPart{
			{SrcOffset: 12, DstLo: 31, DstHi: 31},
			{SrcOffset: 5, DstLo: 25, DstHi: 30},
			{SrcOffset: 1, DstLo: 8, DstHi: 11},
			{SrcOffset: 11, DstLo: 7, DstHi: 7},
		},
	}}
}

// jTypeImm is the jump-form 21-bit signed immediate (bit0 implicit 0).
func jTypeImm(idx int) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 21, Repr: Signed, SymbolKind: RelativeSymbol,
		Parts: []ImmPart{
			{SrcOffset: 20, DstLo: 31, DstHi: 31},
			{SrcOffset: 1, DstLo: 21, DstHi: 30},
			{SrcOffset: 11, DstLo: 20, DstHi: 20},
			{SrcOffset: 12, DstLo: 12, DstHi: 19},
		},
	}}
}

// uTypeImm is the upper-immediate form: 20 raw bits placed at bits[31:12].
func uTypeImm(idx int, symbolKind SymbolKind) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 20, Repr: Unsigned, SymbolKind: symbolKind,
		Parts: []ImmPart{{SrcOffset: 0, DstLo: 12, DstHi: 31}},
	}}
}

// offsetRegField is the register inside a memory operand written as
// "imm(reg)": it shares its composite token with the immediate offset
// field, and the encoder/disassembler parse the parenthesized part out of
// that single token.
func offsetRegField(idx int) Field {
	return Field{Register: &RegisterField{TokenIdx: idx, Lo: 15, Hi: 19, Role: "rs1-offset"}}
}

func offsetImmField(idx int) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 12, Repr: Signed, SymbolKind: AbsoluteSymbol,
		Parts: []ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}},
	}}
}

func offsetImmFieldStore(idx int) Field {
	return Field{Immediate: &ImmediateField{
		TokenIdx: idx, Width: 12, Repr: Signed, SymbolKind: AbsoluteSymbol,
		Parts: []ImmPart{
			{SrcOffset: 5, DstLo: 25, DstHi: 31},
			{SrcOffset: 0, DstLo: 7, DstHi: 11},
		},
	}}
}

func rType(name string, funct3, funct7 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rdField(), rs1Field(1), rs2Field(2)},
		OpParts: []OpPart{opcodePart(opOp), funct3Part(funct3), funct7Part(funct7)},
	}
}

func iArithType(name string, funct3 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rdField(), rs1Field(1), iTypeImm(2, NoSymbol)},
		OpParts: []OpPart{opcodePart(opImm), funct3Part(funct3)},
	}
}

func loadType(name string, funct3 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rdField(), offsetImmField(1), offsetRegField(1)},
		OpParts: []OpPart{opcodePart(opLoad), funct3Part(funct3)},
	}
}

func storeType(name string, funct3 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rs2Field(0), offsetImmFieldStore(1), offsetRegField(1)},
		OpParts: []OpPart{opcodePart(opStore), funct3Part(funct3)},
	}
}

func branchType(name string, funct3 uint32) *Instruction {
	return &Instruction{
		Name:    name,
		Width:   32,
		Fields:  []Field{rs1Field(0), rs2Field(1), bTypeImm(2)},
		OpParts: []OpPart{opcodePart(opBranch), funct3Part(funct3)},
	}
}
