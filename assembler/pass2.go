package assembler

import (
	"strings"

	"github.com/riscv-tools/riscv-as/directive"
	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/link"
	"github.com/riscv-tools/riscv-as/numlit"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/pseudo"
	"github.com/riscv-tools/riscv-as/symtab"
	"github.com/riscv-tools/riscv-as/token"
)

// pass2 encodes every line into its section's byte stream, defining labels
// as it goes and deferring symbol-bearing immediates as link.Requests for
// pass3. Per spec section 4.3.
func pass2(lines []pseudo.Line, set *isa.ISA, cfg Config, symbols *symtab.Table) (*object.Program, []link.Request, *errs.List) {
	sections := map[string]*object.Section{
		"text": {Name: "text", Base: cfg.TextStart},
		"data": {Name: "data", Base: cfg.DataStart},
		"bss":  {Name: "bss", Base: cfg.BSSStart},
	}
	current := "text"
	alignment := set.InstrByteAlignment()

	var requests []link.Request
	list := &errs.List{}
	sourceMapping := map[uint64][]int{}

	for _, line := range lines {
		sec := sections[current]
		off := uint64(len(sec.Bytes))

		for _, name := range line.Labels {
			if err := symbols.Define(name, symtab.Address, sec.Base+off, line.Pos); err != nil {
				list.Addf(line.Pos, errs.RedefinedSymbol, "%v", err)
			}
		}

		if line.IsDirective() {
			result, derr := directive.Handle(line.Directive, line.DirectiveArgs, line.Pos)
			if derr != nil {
				list.Add(derr)
				continue
			}
			if result.SwitchTo != "" {
				current = strings.TrimPrefix(result.SwitchTo, ".")
				continue
			}
			if current == "text" && len(result.Bytes) > 0 {
				sourceMapping[off] = append(sourceMapping[off], line.Pos.Line)
			}
			sec.Bytes = append(sec.Bytes, result.Bytes...)
			continue
		}

		instr, ok := set.Lookup(line.Mnemonic)
		if !ok {
			list.Addf(line.Pos, errs.UnknownOpcode, "unknown opcode %q", line.Mnemonic)
			continue
		}

		word, lineRequests, encErr := encodeInstruction(instr, line, set, current, off)
		if encErr != nil {
			list.Add(encErr)
			continue
		}
		if off%uint64(alignment) != 0 {
			list.Addf(line.Pos, errs.Misaligned, "offset 0x%x is not a multiple of %d", off, alignment)
			continue
		}

		if current == "text" {
			sourceMapping[off] = append(sourceMapping[off], line.Pos.Line)
		}
		sec.Bytes = append(sec.Bytes, littleEndianWord(word, instr.Size())...)
		requests = append(requests, lineRequests...)
	}

	prog := &object.Program{
		EntryPoint:    cfg.TextStart,
		Sections:      sections,
		Symbols:       map[uint64]string{},
		SourceMapping: sourceMapping,
	}
	return prog, requests, list
}

func encodeInstruction(instr *isa.Instruction, line pseudo.Line, set *isa.ISA, section string, off uint64) (uint32, []link.Request, *errs.Error) {
	word := instr.EncodeSkeleton()
	var requests []link.Request

	for _, field := range instr.Fields {
		idx := field.TokenIdx()
		if idx < 0 || idx >= len(line.Operands) {
			return 0, nil, errs.Newf(line.Pos, errs.Syntax, "%s: missing operand %d", line.Mnemonic, idx)
		}
		tok := line.Operands[idx]

		switch {
		case field.Register != nil:
			regName := registerNameOf(tok)
			regIdx, ok := set.ResolveRegister(regName)
			if !ok {
				return 0, nil, errs.Newf(tok.Pos, errs.BadRegister, "bad register %q", tok.Literal)
			}
			word = field.Register.Encode(word, regIdx)

		case field.Immediate != nil:
			imm := field.Immediate
			exprStr := immExprOf(tok)
			symbolic := tok.Type == token.Reloc || tok.Type == token.Ident

			if !symbolic {
				val, perr := numlit.Parse(exprStr)
				if perr != nil {
					return 0, nil, errs.Newf(tok.Pos, errs.BadImmediate, "bad immediate %q", tok.Literal)
				}
				if !isa.FitsWidth(val, imm.Width, imm.Repr) {
					return 0, nil, errs.Newf(tok.Pos, errs.ImmediateOutOfRange, "immediate %d out of range for %d-bit field", val, imm.Width)
				}
				word = imm.Encode(word, uint32(val)&isa.WidthMask(imm.Width))
			} else {
				requests = append(requests, link.Request{
					Section:    section,
					Offset:     off,
					Field:      imm,
					Relocation: tok.Reloc,
					Expression: exprStr,
					Pos:        tok.Pos,
				})
			}
		}
	}

	return word, requests, nil
}

// registerNameOf extracts the register name from an operand token, whether
// it's a bare register token or the "(reg)" half of a composite memory
// operand shared with an immediate field.
func registerNameOf(tok token.Token) string {
	_, reg, hasReg := splitComposite(tok.Literal)
	if hasReg {
		return reg
	}
	return tok.Literal
}

// immExprOf extracts the immediate/symbol-expression half of an operand
// token, whether it's a bare literal or the prefix of a composite operand.
func immExprOf(tok token.Token) string {
	expr, _, _ := splitComposite(tok.Literal)
	return expr
}

func splitComposite(literal string) (expr, reg string, hasReg bool) {
	open := strings.IndexByte(literal, '(')
	closeIdx := strings.LastIndexByte(literal, ')')
	if open < 0 || closeIdx < open {
		return literal, "", false
	}
	return literal[:open], literal[open+1 : closeIdx], true
}

func littleEndianWord(word uint32, size int) []byte {
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = byte(word >> uint(8*i))
	}
	return buf
}
