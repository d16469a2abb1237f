package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitWords must not split a relocation expression's internal whitespace:
// "%pcrel_lo(foo + 4)" is one operand word, not three.
func TestSplitWords_RelocationWithInternalSpace(t *testing.T) {
	words, err := splitWords("addi x1, x1, %pcrel_lo(foo + 4)")
	require.NoError(t, err)
	assert.Equal(t, []string{"addi", "x1", "x1", "%pcrel_lo(foo + 4)"}, words)
}

func TestSplitWords_NestedParens(t *testing.T) {
	words, err := splitWords("addi x1, x1, %pcrel_lo((foo + 4) * 2)")
	require.NoError(t, err)
	assert.Equal(t, []string{"addi", "x1", "x1", "%pcrel_lo((foo + 4) * 2)"}, words)
}

func TestSplitWords_UnbalancedParenIsError(t *testing.T) {
	_, err := splitWords("addi x1, x1, %pcrel_lo(foo + 4")
	assert.Error(t, err)
}

func TestSplitWords_CommaAndSpaceStillSplitOutsideParens(t *testing.T) {
	words, err := splitWords("addi  x1,\tx0, 5")
	require.NoError(t, err)
	assert.Equal(t, []string{"addi", "x1", "x0", "5"}, words)
}

func TestSplitWords_CompositeMemoryOperandUnaffected(t *testing.T) {
	words, err := splitWords("lw x1, 4(sp)")
	require.NoError(t, err)
	assert.Equal(t, []string{"lw", "x1", "4(sp)"}, words)
}
