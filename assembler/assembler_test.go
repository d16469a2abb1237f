package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
)

func newTestAssembler(t *testing.T, xlen int, extensions string) *Assembler {
	t.Helper()
	set, err := isa.New(xlen, extensions, matcher.BuildISA)
	require.NoError(t, err)
	return New(set, DefaultConfig())
}

// S1: a single instruction encodes to its known word.
func TestAssemble_BasicEncode(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{"addi x1, x0, 5"}, nil, "")
	require.Empty(t, errors)
	require.NotNil(t, prog)
	text := prog.Section("text")
	require.Len(t, text.Bytes, 4)
	assert.Equal(t, []byte{0x93, 0x00, 0x50, 0x00}, text.Bytes)
}

// S2: a branch to a forward-declared symbol resolves to a PC-relative
// offset once the symbol is defined later in the same source.
func TestAssemble_BranchWithForwardSymbol(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{
		"beq x1, x2, target",
		"addi x0, x0, 0",
		"target:",
		"addi x0, x0, 0",
	}, nil, "")
	require.Empty(t, errors)
	text := prog.Section("text")
	require.Len(t, text.Bytes, 12)
}

// S3: li with a value that fits in a signed 12-bit immediate expands to
// a single addi.
func TestAssemble_LoadImmediateNarrow(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{"li x1, 5"}, nil, "")
	require.Empty(t, errors)
	text := prog.Section("text")
	assert.Len(t, text.Bytes, 4)
}

// S4: li with a value outside the 32-bit signed range on RV64 expands to
// more than two instructions (lui/addi would not suffice).
func TestAssemble_LoadImmediateWide(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{"li x1, 0x123456789"}, nil, "")
	require.Empty(t, errors)
	text := prog.Section("text")
	assert.Greater(t, len(text.Bytes), 8)
}

// S5: auipc/addi with %pcrel_hi/%pcrel_lo round-trips to the absolute
// address of the referenced symbol.
func TestAssemble_PCRelRoundTrip(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{
		"auipc x1, %pcrel_hi(foo)",
		"addi x1, x1, %pcrel_lo(foo + 4)",
		"foo:",
		"addi x0, x0, 0",
	}, nil, "")
	require.Empty(t, errors)
	require.NotNil(t, prog)
}

// S7: three independent errors on three lines all surface, in source
// order, rather than stopping at the first.
func TestAssemble_ErrorsAccumulateInSourceOrder(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	_, errList := a.Assemble([]string{
		"addi x1, x0, 99999",
		"frobnicate x1, x2",
		"addi x99, x0, 1",
	}, nil, "")
	require.Len(t, errList, 3)
	assert.Equal(t, errs.ImmediateOutOfRange, errList[0].Kind)
	assert.Equal(t, errs.UnknownOpcode, errList[1].Kind)
	assert.Equal(t, errs.BadRegister, errList[2].Kind)
}

func TestAssemble_UnknownOpcodeReported(t *testing.T) {
	a := newTestAssembler(t, 32, "")
	_, errList := a.Assemble([]string{"notarealop x1, x2"}, nil, "")
	require.Len(t, errList, 1)
	assert.Equal(t, errs.UnknownOpcode, errList[0].Kind)
}

func TestAssemble_UndefinedSymbolReported(t *testing.T) {
	a := newTestAssembler(t, 64, "")
	_, errList := a.Assemble([]string{"jal x1, nowhere"}, nil, "")
	require.Len(t, errList, 1)
	assert.Equal(t, errs.UnresolvedSymbol, errList[0].Kind)
}

func TestAssemble_DataDirectives(t *testing.T) {
	a := newTestAssembler(t, 64, "")
	prog, errors := a.Assemble([]string{
		".data",
		"msg: .word 1",
		".string \"hi\"",
	}, nil, "")
	require.Empty(t, errors)
	data := prog.Section("data")
	assert.Equal(t, []byte{1, 0, 0, 0, 'h', 'i', 0}, data.Bytes)
}

// Undefined symbols are reported in source order, one error per
// referencing line, so repeat runs over identical input report identical
// diagnostics.
func TestAssemble_UndefinedSymbolsInSourceOrder(t *testing.T) {
	a := newTestAssembler(t, 64, "")
	_, errList := a.Assemble([]string{
		"jal x1, zeta",
		"jal x1, alpha",
		"jal x1, mu",
	}, nil, "")
	require.Len(t, errList, 3)
	assert.Contains(t, errList[0].Message, "zeta")
	assert.Contains(t, errList[1].Message, "alpha")
	assert.Contains(t, errList[2].Message, "mu")
}

// A caller-supplied symbolMap pre-seeds the symbol table, so source can
// reference a symbol never defined in the source itself.
func TestAssemble_SymbolMapSeedsTable(t *testing.T) {
	a := newTestAssembler(t, 64, "")
	prog, errors := a.Assemble([]string{
		"addi x1, x0, MAGIC",
	}, map[string]uint64{"MAGIC": 5}, "")
	require.Empty(t, errors)
	text := prog.Section("text")
	assert.Equal(t, []byte{0x93, 0x00, 0x50, 0x00}, text.Bytes)
}

// SourceMapping records the .text byte offset each instruction and
// directive came from, so a diagnostic tool can map bytes back to source.
func TestAssemble_SourceMappingRecordsTextOffsets(t *testing.T) {
	a := newTestAssembler(t, 64, "M")
	prog, errors := a.Assemble([]string{
		"addi x1, x0, 5",
		"addi x2, x0, 6",
	}, nil, "")
	require.Empty(t, errors)
	require.Equal(t, []int{1}, prog.SourceMapping[0])
	require.Equal(t, []int{2}, prog.SourceMapping[4])
}
