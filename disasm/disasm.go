// Package disasm implements the reverse direction of the assembler
// pipeline (spec section 4.6): decoding raw instruction words back into
// their textual form via the same ISA the assembler encoded them with.
package disasm

import (
	"fmt"
	"strconv"

	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/object"
)

// branchOrJump names the mnemonics whose immediate is a PC-relative
// target, the only fields eligible for symbol substitution.
var branchOrJump = map[string]bool{
	"beq": true, "bne": true, "blt": true, "bge": true, "bltu": true, "bgeu": true,
	"jal": true,
}

// Disassemble walks prog's .text section, decoding one instruction per
// loop iteration starting at base. A decode failure is recorded against
// its address but does not stop the walk; it advances by the ISA's
// instruction byte alignment, per spec section 4.6.
func Disassemble(set *isa.ISA, prog *object.Program, base uint64) ([]string, []error) {
	text := prog.Section("text")
	if text == nil {
		return nil, nil
	}

	var lines []string
	var errs []error
	alignment := set.InstrByteAlignment()

	for offset := uint64(0); offset < uint64(len(text.Bytes)); {
		remaining := uint64(len(text.Bytes)) - offset
		if remaining < uint64(alignment) {
			break
		}
		addr := base + offset
		word := readWord(text.Bytes, offset)

		line, consumed, err := disassembleWord(set, word, prog.Symbols, addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("0x%x: %w", addr, err))
			offset += uint64(alignment)
			continue
		}
		lines = append(lines, line)
		offset += uint64(consumed)
	}

	return lines, errs
}

// DisassembleWord decodes a single instruction word, returning its
// textual form, the number of bytes it occupies, and an error if word
// doesn't match any known instruction.
func DisassembleWord(set *isa.ISA, word uint32, symbols map[uint64]string, base uint64) (string, int, error) {
	return disassembleWord(set, word, symbols, base)
}

func disassembleWord(set *isa.ISA, word uint32, symbols map[uint64]string, pc uint64) (string, int, error) {
	instr, err := set.Match(word)
	if err != nil {
		return "", 0, err
	}

	parts := make([]string, 0, len(instr.Fields)+1)
	parts = append(parts, instr.Name)

	for _, field := range instr.Fields {
		switch {
		case field.Register != nil:
			idx := field.Register.Decode(word)
			parts = append(parts, fmt.Sprintf("x%d", idx))

		case field.Immediate != nil:
			val := field.Immediate.Decode(word)
			parts = append(parts, formatImmediate(instr.Name, val, field.Immediate.Repr, symbols, pc))
		}
	}

	return joinFields(parts), instr.Size(), nil
}

func formatImmediate(mnemonic string, val int64, repr isa.Repr, symbols map[uint64]string, pc uint64) string {
	if branchOrJump[mnemonic] {
		target := int64(pc) + val
		if name, ok := symbols[uint64(target)]; ok {
			return name
		}
	}
	switch repr {
	case isa.Hex:
		return "0x" + strconv.FormatInt(val, 16)
	case isa.Unsigned:
		return strconv.FormatUint(uint64(val), 10)
	default:
		return strconv.FormatInt(val, 10)
	}
}

func joinFields(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}

func readWord(bytes []byte, offset uint64) uint32 {
	var w uint32
	for i := 0; i < 4; i++ {
		w |= uint32(bytes[offset+uint64(i)]) << uint(8*i)
	}
	return w
}
