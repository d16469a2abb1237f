package isa

// PseudoKind distinguishes the expansion shapes the pseudo package knows
// how to rewrite. Most pseudo-ops are simple fixed-arity rewrites; li and
// the symbol-taking load/store forms need special-cased expanders because
// their output length depends on the operand value.
type PseudoKind int

const (
	// FixedRewrite expands to a constant sequence of real instructions
	// with operands reordered/duplicated from the pseudo-op's own operands.
	FixedRewrite PseudoKind = iota
	// LoadImmediate is "li rd, imm" -- 1 to 8 real instructions depending
	// on how many bits of imm are significant.
	LoadImmediate
	// LoadAddress is "la rd, sym" -- an auipc/addi pair linked by
	// %pcrel_hi/%pcrel_lo.
	LoadAddress
	// MemWithSymbol is "lw rd, sym" / "sw rs, sym, rt" -- an auipc paired
	// with a load or store, linked by %pcrel_hi/%pcrel_lo.
	MemWithSymbol
)

// PseudoDescriptor names one pseudo-instruction this ISA supports and the
// real instruction(s) it rewrites to. Expand holds the rewrite template
// for FixedRewrite; it is ignored for the other kinds, which the pseudo
// package implements directly.
type PseudoDescriptor struct {
	Name     string
	Kind     PseudoKind
	Operands int // expected operand count for this pseudo form, for dispatch
	// Expand is a FixedRewrite template: each entry is a real mnemonic plus
	// the indices (into the pseudo-op's own operand list) of the operands
	// to carry over, in order. Negative indices are the Ref* sentinels
	// below (e.g. RefZeroReg for x0, RefZeroImm for a literal zero).
	Expand []RewriteStep
}

// RewriteStep is one line of a FixedRewrite template. Each OperandRefs
// entry is either a non-negative index into the pseudo-op's own operands,
// or one of the sentinels below.
type RewriteStep struct {
	Mnemonic    string
	OperandRefs []int
}

// Sentinel operand references used in place of a real operand index.
const (
	RefZeroReg    = -1 // the zero register, x0
	RefZeroImm    = -2 // a literal immediate 0
	RefRAReg      = -3 // the return-address register, x1/ra
	RefOneImm     = -4 // a literal immediate 1
	RefAllOnesImm = -5 // a literal immediate -1
)

// PseudoInstructions returns the descriptors for every pseudo-op this ISA
// recognizes. li, la, call, tail, lw/sw-with-symbol are handled by their
// own PseudoKind since their expansion isn't a fixed template.
func PseudoInstructions() []PseudoDescriptor {
	zero, zimm, ra := RefZeroReg, RefZeroImm, RefRAReg
	return []PseudoDescriptor{
		{Name: "nop", Operands: 0, Expand: []RewriteStep{{"addi", []int{zero, zero, zimm}}}},
		{Name: "mv", Operands: 2, Expand: []RewriteStep{{"addi", []int{0, 1, zimm}}}},
		{Name: "not", Operands: 2, Expand: []RewriteStep{{"xori", []int{0, 1, RefAllOnesImm}}}},
		{Name: "neg", Operands: 2, Expand: []RewriteStep{{"sub", []int{0, zero, 1}}}},
		{Name: "seqz", Operands: 2, Expand: []RewriteStep{{"sltiu", []int{0, 1, RefOneImm}}}},
		{Name: "snez", Operands: 2, Expand: []RewriteStep{{"sltu", []int{0, zero, 1}}}},
		{Name: "sltz", Operands: 2, Expand: []RewriteStep{{"slt", []int{0, 1, zero}}}},
		{Name: "sgtz", Operands: 2, Expand: []RewriteStep{{"slt", []int{0, zero, 1}}}},

		{Name: "beqz", Operands: 2, Expand: []RewriteStep{{"beq", []int{0, zero, 1}}}},
		{Name: "bnez", Operands: 2, Expand: []RewriteStep{{"bne", []int{0, zero, 1}}}},
		{Name: "blez", Operands: 2, Expand: []RewriteStep{{"bge", []int{zero, 0, 1}}}},
		{Name: "bgez", Operands: 2, Expand: []RewriteStep{{"bge", []int{0, zero, 1}}}},
		{Name: "bltz", Operands: 2, Expand: []RewriteStep{{"blt", []int{0, zero, 1}}}},
		{Name: "bgtz", Operands: 2, Expand: []RewriteStep{{"blt", []int{zero, 0, 1}}}},
		{Name: "bgt", Operands: 3, Expand: []RewriteStep{{"blt", []int{1, 0, 2}}}},
		{Name: "ble", Operands: 3, Expand: []RewriteStep{{"bge", []int{1, 0, 2}}}},
		{Name: "bgtu", Operands: 3, Expand: []RewriteStep{{"bltu", []int{1, 0, 2}}}},
		{Name: "bleu", Operands: 3, Expand: []RewriteStep{{"bgeu", []int{1, 0, 2}}}},

		{Name: "j", Operands: 1, Expand: []RewriteStep{{"jal", []int{zero, 0}}}},
		{Name: "jr", Operands: 1, Expand: []RewriteStep{{"jalr", []int{zero, 0, zimm}}}},
		{Name: "jal", Operands: 1, Expand: []RewriteStep{{"jal", []int{ra, 0}}}},
		{Name: "jalr", Operands: 1, Expand: []RewriteStep{{"jalr", []int{ra, 0, zimm}}}},
		{Name: "ret", Operands: 0, Expand: []RewriteStep{{"jalr", []int{zero, ra, zimm}}}},

		{Name: "li", Kind: LoadImmediate, Operands: 2},
		{Name: "la", Kind: LoadAddress, Operands: 2},
		{Name: "call", Kind: LoadAddress, Operands: 1},
		{Name: "tail", Kind: LoadAddress, Operands: 1},
		{Name: "lw", Kind: MemWithSymbol, Operands: 2},
		{Name: "sw", Kind: MemWithSymbol, Operands: 3},
	}
}
