package pseudo

import (
	"math/bits"
	"strconv"

	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/token"
)

// expandLI recursively builds the lui/addi(w)/slli sequence for val and
// returns it as parallel mnemonic/operand-literal lists (register names and
// decimal immediates), for the caller to turn into Lines.
func expandLI(rd string, val int64, xlen int, pos token.Location) (mnemonics []string, operands [][]string, err error) {
	if fitsSigned32(val) || (xlen == 32 && fitsUnsigned32(val)) {
		hi20 := int64(isa.Hi20(val))
		lo12 := int64(isa.Lo12(val))

		base := "zero"
		if hi20 != 0 {
			mnemonics = append(mnemonics, "lui")
			operands = append(operands, []string{rd, strconv.FormatInt(hi20, 10)})
			base = rd
		}
		if lo12 != 0 || hi20 == 0 {
			mnem := "addi"
			if xlen == 64 && hi20 != 0 {
				mnem = "addiw"
			}
			mnemonics = append(mnemonics, mnem)
			operands = append(operands, []string{rd, base, strconv.FormatInt(lo12, 10)})
		}
		return mnemonics, operands, nil
	}

	if xlen == 32 {
		return nil, nil, errImmediateOutOfRange(pos, val)
	}

	lo12 := int64(isa.Lo12(val))
	hi52 := (val - lo12) >> 12
	shift := 12 + bits.TrailingZeros64(uint64(hi52))
	reduced := hi52 >> uint(shift-12)

	upperMnemonics, upperOperands, err := expandLI(rd, reduced, xlen, pos)
	if err != nil {
		return nil, nil, err
	}
	mnemonics = append(mnemonics, upperMnemonics...)
	operands = append(operands, upperOperands...)

	mnemonics = append(mnemonics, "slli")
	operands = append(operands, []string{rd, rd, strconv.Itoa(shift)})

	if lo12 != 0 {
		mnemonics = append(mnemonics, "addi")
		operands = append(operands, []string{rd, rd, strconv.FormatInt(lo12, 10)})
	}
	return mnemonics, operands, nil
}

func fitsSigned32(v int64) bool {
	return v >= -(int64(1) << 31) && v < (int64(1) << 31)
}

func fitsUnsigned32(v int64) bool {
	return v >= 0 && v < (int64(1)<<32)
}
