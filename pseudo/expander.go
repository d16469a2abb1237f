package pseudo

import (
	"strconv"
	"strings"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/numlit"
	"github.com/riscv-tools/riscv-as/token"
)

// Expand rewrites one Line if its mnemonic names a pseudo-op whose operand
// tokens match that op's signature. matched is false whenever line should
// pass through unchanged -- either because the mnemonic isn't a pseudo-op,
// or because it is one but the aliasing rule (section 4.2) says to defer
// to the real instruction of the same name. matched-false never carries an
// error: it is a routing signal, not a diagnostic.
func Expand(line Line, set *isa.ISA, xlen int) (lines []Line, matched bool, err error) {
	if line.IsDirective() {
		return nil, false, nil
	}
	desc, ok := set.LookupPseudo(line.Mnemonic)
	if !ok {
		return nil, false, nil
	}

	switch desc.Kind {
	case isa.FixedRewrite:
		return expandFixed(line, desc)
	case isa.LoadImmediate:
		return expandLoadImmediateLine(line, desc, xlen)
	case isa.LoadAddress:
		return expandLoadAddress(line, desc)
	case isa.MemWithSymbol:
		return expandMemWithSymbol(line, desc)
	}
	return nil, false, nil
}

func expandFixed(line Line, desc isa.PseudoDescriptor) ([]Line, bool, error) {
	if len(line.Operands) != desc.Operands {
		return nil, false, nil
	}
	out := make([]Line, 0, len(desc.Expand))
	for _, step := range desc.Expand {
		ops := make([]token.Token, 0, len(step.OperandRefs))
		for _, ref := range step.OperandRefs {
			tok, ok := resolveRef(line, ref)
			if !ok {
				return nil, false, nil
			}
			ops = append(ops, tok)
		}
		out = append(out, line.clone(step.Mnemonic, ops))
	}
	attachLabels(line, out)
	return out, true, nil
}

func resolveRef(line Line, ref int) (token.Token, bool) {
	switch ref {
	case isa.RefZeroReg:
		return token.Token{Type: token.Register, Literal: "zero", Pos: line.Pos}, true
	case isa.RefRAReg:
		return token.Token{Type: token.Register, Literal: "ra", Pos: line.Pos}, true
	case isa.RefZeroImm:
		return token.Token{Type: token.Number, Literal: "0", Pos: line.Pos}, true
	case isa.RefOneImm:
		return token.Token{Type: token.Number, Literal: "1", Pos: line.Pos}, true
	case isa.RefAllOnesImm:
		return token.Token{Type: token.Number, Literal: "-1", Pos: line.Pos}, true
	default:
		if ref < 0 || ref >= len(line.Operands) {
			return token.Token{}, false
		}
		return line.Operands[ref], true
	}
}

// expandLoadImmediateLine handles "li rd, val". val may be a numeric
// literal only (a symbol would require it to resolve at assembly time,
// which li does not support); a non-numeric second operand falls through
// so pass2 reports UnknownOpcode (li has no real-instruction counterpart,
// so this mismatch surfaces as a plain encode error, not a silent alias).
func expandLoadImmediateLine(line Line, desc isa.PseudoDescriptor, xlen int) ([]Line, bool, error) {
	if len(line.Operands) != desc.Operands {
		return nil, false, nil
	}
	rd := line.Operands[0]
	valTok := line.Operands[1]
	if !numlit.LooksNumeric(valTok.Literal) {
		return nil, false, nil
	}
	val, parseErr := numlit.Parse(valTok.Literal)
	if parseErr != nil {
		return nil, false, nil
	}

	mnemonics, operands, err := expandLI(rd.Literal, val, xlen, line.Pos)
	if err != nil {
		return nil, true, err
	}

	out := make([]Line, 0, len(mnemonics))
	for i, m := range mnemonics {
		ops := make([]token.Token, 0, len(operands[i]))
		for _, text := range operands[i] {
			ops = append(ops, literalOperandToken(text, line.Pos))
		}
		out = append(out, line.clone(m, ops))
	}
	attachLabels(line, out)
	return out, true, nil
}

func literalOperandToken(text string, pos token.Location) token.Token {
	if _, err := strconv.Atoi(text); err == nil || strings.HasPrefix(text, "-") {
		return token.Token{Type: token.Number, Literal: text, Pos: pos}
	}
	return token.Token{Type: token.Register, Literal: text, Pos: pos}
}

// expandLoadAddress handles "la rd, sym", "call sym", and "tail sym": each
// is an auipc paired with a second real instruction, linked by
// %pcrel_hi/%pcrel_lo. call uses ra as the scratch/link register (it
// returns); tail uses t1 so it doesn't clobber ra before the jump it never
// returns from.
func expandLoadAddress(line Line, desc isa.PseudoDescriptor) ([]Line, bool, error) {
	if len(line.Operands) != desc.Operands {
		return nil, false, nil
	}

	var scratch token.Token
	var sym token.Token
	var second string
	var secondRd string

	switch line.Mnemonic {
	case "la":
		scratch = line.Operands[0]
		sym = line.Operands[1]
		second, secondRd = "addi", scratch.Literal
	case "call":
		scratch = token.Token{Type: token.Register, Literal: "ra", Pos: line.Pos}
		sym = line.Operands[0]
		second, secondRd = "jalr", "ra"
	case "tail":
		scratch = token.Token{Type: token.Register, Literal: "t1", Pos: line.Pos}
		sym = line.Operands[0]
		second, secondRd = "jalr", "zero"
	default:
		return nil, false, nil
	}

	hiReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_hi", Literal: sym.Literal, Pos: line.Pos}
	loReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_lo", Literal: sym.Literal, Pos: line.Pos}

	lines := []Line{
		line.clone("auipc", []token.Token{scratch, hiReloc}),
	}
	switch second {
	case "addi":
		lines = append(lines, Line{Mnemonic: "addi", Operands: []token.Token{scratch, scratch, loReloc}, Pos: line.Pos})
	case "jalr":
		rd := token.Token{Type: token.Register, Literal: secondRd, Pos: line.Pos}
		lines = append(lines, Line{
			Mnemonic: "jalr",
			Operands: []token.Token{rd, offsetToken(loReloc, scratch.Literal)},
			Pos:      line.Pos,
		})
	}
	attachLabels(line, lines)
	return lines, true, nil
}

// expandMemWithSymbol handles "lw rd, sym" and "sw rs, sym, rt": an auipc
// paired with a load or store, linked by %pcrel_hi/%pcrel_lo, using rt (or
// an auto-chosen scratch for lw) as the base register. The aliasing gate
// is the middle operand's shape: if it's a composite "off(reg)" token
// rather than a bare symbol, this isn't the pseudo form and pass2 should
// encode the real lw/sw instead.
func expandMemWithSymbol(line Line, desc isa.PseudoDescriptor) ([]Line, bool, error) {
	if len(line.Operands) != desc.Operands {
		return nil, false, nil
	}

	switch line.Mnemonic {
	case "lw":
		rd, sym := line.Operands[0], line.Operands[1]
		if isOffsetForm(sym.Literal) {
			return nil, false, nil
		}
		hiReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_hi", Literal: sym.Literal, Pos: line.Pos}
		loReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_lo", Literal: sym.Literal, Pos: line.Pos}
		lines := []Line{
			line.clone("auipc", []token.Token{rd, hiReloc}),
			{Mnemonic: "lw", Operands: []token.Token{rd, offsetToken(loReloc, rd.Literal)}, Pos: line.Pos},
		}
		attachLabels(line, lines)
		return lines, true, nil

	case "sw":
		rs, sym, rt := line.Operands[0], line.Operands[1], line.Operands[2]
		if numlit.LooksNumeric(sym.Literal) || isOffsetForm(sym.Literal) {
			return nil, false, nil
		}
		hiReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_hi", Literal: sym.Literal, Pos: line.Pos}
		loReloc := token.Token{Type: token.Reloc, Reloc: "%pcrel_lo", Literal: sym.Literal, Pos: line.Pos}
		lines := []Line{
			line.clone("auipc", []token.Token{rt, hiReloc}),
			{Mnemonic: "sw", Operands: []token.Token{rs, offsetToken(loReloc, rt.Literal)}, Pos: line.Pos},
		}
		attachLabels(line, lines)
		return lines, true, nil
	}
	return nil, false, nil
}

func isOffsetForm(literal string) bool {
	return strings.Contains(literal, "(") && strings.Contains(literal, ")")
}

// offsetToken builds the composite "reloc(reg)" operand token that loads,
// stores, and jalr share: a single token the encoder splits into an
// immediate (carrying the relocation) and a base register.
func offsetToken(reloc token.Token, reg string) token.Token {
	return token.Token{
		Type:    token.Reloc,
		Reloc:   reloc.Reloc,
		Literal: reloc.Literal + "(" + reg + ")",
		Pos:     reloc.Pos,
	}
}

func attachLabels(orig Line, out []Line) {
	if len(out) == 0 {
		return
	}
	out[0].Labels = orig.Labels
	out[0].Directive = orig.Directive
	out[0].DirectiveArgs = orig.DirectiveArgs
}

// errImmediateOutOfRange reports that an li value needs more range than
// the target XLEN can represent (RV32 only: RV64 always has a path).
func errImmediateOutOfRange(pos token.Location, val int64) error {
	return errs.Newf(pos, errs.ImmediateOutOfRange, "li value %d does not fit in 32 bits", val)
}
