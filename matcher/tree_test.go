package matcher_test

import (
	"testing"

	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RV32IMatchesEveryInstruction(t *testing.T) {
	table := isa.RV32IInstructions()
	tree, err := matcher.Build(table)
	require.NoError(t, err)

	for _, instr := range table {
		word := instr.EncodeSkeleton()
		got, err := tree.Match(word)
		require.NoErrorf(t, err, "decoding skeleton of %s", instr.Name)
		assert.Equalf(t, instr.Name, got.Name, "skeleton 0x%08x decoded to wrong mnemonic", word)
	}
}

func TestBuild_RV64IAndMDisambiguateSharedOpcode(t *testing.T) {
	var table []*isa.Instruction
	for _, instr := range isa.RV32IInstructions() {
		switch instr.Name {
		case "slli", "srli", "srai":
			continue // replaced by the RV64 overrides below
		}
		table = append(table, instr)
	}
	table = append(table, isa.RV64ShiftOverrides()...)
	table = append(table, isa.RV64IInstructions()...)
	table = append(table, isa.RV32MInstructions()...)
	table = append(table, isa.RV64MInstructions()...)

	tree, err := matcher.Build(table)
	require.NoError(t, err)

	for _, instr := range table {
		got, err := tree.Match(instr.EncodeSkeleton())
		require.NoErrorf(t, err, "decoding skeleton of %s", instr.Name)
		assert.Equal(t, instr.Name, got.Name)
	}
}

func TestBuild_AmbiguousEncodingRejected(t *testing.T) {
	a := &isa.Instruction{Name: "a", Width: 32, OpParts: []isa.OpPart{{Value: 0x33, Lo: 0, Hi: 6}}}
	b := &isa.Instruction{Name: "b", Width: 32, OpParts: []isa.OpPart{{Value: 0x33, Lo: 0, Hi: 6}}}

	_, err := matcher.Build([]*isa.Instruction{a, b})
	assert.Error(t, err)
}

func TestBuild_ExtraMatchBreaksTie(t *testing.T) {
	a := &isa.Instruction{
		Name: "ecall", Width: 32,
		OpParts:    []isa.OpPart{{Value: 0x73, Lo: 0, Hi: 6}},
		ExtraMatch: func(word uint32) bool { return (word>>20)&0xFFF == 0 },
	}
	b := &isa.Instruction{
		Name: "ebreak", Width: 32,
		OpParts:    []isa.OpPart{{Value: 0x73, Lo: 0, Hi: 6}},
		ExtraMatch: func(word uint32) bool { return (word>>20)&0xFFF == 1 },
	}

	tree, err := matcher.Build([]*isa.Instruction{a, b})
	require.NoError(t, err)

	got, err := tree.Match(0x73)
	require.NoError(t, err)
	assert.Equal(t, "ecall", got.Name)

	got, err = tree.Match(0x00100073)
	require.NoError(t, err)
	assert.Equal(t, "ebreak", got.Name)
}

func TestMatch_UnknownInstructionReturnsError(t *testing.T) {
	tree, err := matcher.Build(isa.RV32IInstructions())
	require.NoError(t, err)

	_, err = tree.Match(0xFFFFFFFF)
	assert.Error(t, err)
}
