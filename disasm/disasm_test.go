package disasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscv-tools/riscv-as/disasm"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
	"github.com/riscv-tools/riscv-as/object"
)

func newTestISA(t *testing.T) *isa.ISA {
	t.Helper()
	set, err := isa.New(64, "M", matcher.BuildISA)
	require.NoError(t, err)
	return set
}

// S6: the bytes 93 00 50 00 at base 0 disassemble to "addi x1 x0 5".
func TestDisassembleWord_AddiImmediate(t *testing.T) {
	set := newTestISA(t)
	word := uint32(0x00500093)
	text, consumed, err := disasm.DisassembleWord(set, word, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "addi x1 x0 5", text)
	assert.Equal(t, 4, consumed)
}

func TestDisassembleWord_UnknownInstructionErrors(t *testing.T) {
	set := newTestISA(t)
	_, _, err := disasm.DisassembleWord(set, 0xFFFFFFFF, nil, 0)
	assert.Error(t, err)
}

func TestDisassembleWord_BranchTargetSubstitutesSymbol(t *testing.T) {
	set := newTestISA(t)
	// beq x1, x2, <+8>: opcode 0x63, funct3 0, rs1=1, rs2=2, imm=8.
	word := uint32(0x00208463)
	symbols := map[uint64]string{8: "target"}
	text, _, err := disasm.DisassembleWord(set, word, symbols, 0)
	require.NoError(t, err)
	assert.Contains(t, text, "target")
}

func TestDisassemble_WalksWholeTextSection(t *testing.T) {
	set := newTestISA(t)
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0, Bytes: []byte{0x93, 0x00, 0x50, 0x00, 0x93, 0x00, 0x50, 0x00}},
		},
	}
	lines, errors := disasm.Disassemble(set, prog, 0)
	require.Empty(t, errors)
	require.Len(t, lines, 2)
	assert.Equal(t, "addi x1 x0 5", lines[0])
}

func TestDisassemble_PartialFinalWordStopsCleanly(t *testing.T) {
	set := newTestISA(t)
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0, Bytes: []byte{0x93, 0x00, 0x50, 0x00, 0x00, 0x00}},
		},
	}
	lines, errors := disasm.Disassemble(set, prog, 0)
	require.Empty(t, errors)
	require.Len(t, lines, 1)
}
