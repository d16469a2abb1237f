// Package pseudo implements pass1 of the assembler: rewriting
// pseudo-instruction mnemonics into the one or more real instructions they
// stand for.
package pseudo

import "github.com/riscv-tools/riscv-as/token"

// Line is one tokenized assembly line, the shared currency between pass0,
// pass1, and pass2: pass0 produces Lines, pass1 (this package) rewrites
// pseudo-op Lines into one or more real-instruction Lines, and pass2
// consumes the result directly.
type Line struct {
	Labels        []string
	Directive     string // directive name without its leading dot, or "" if none
	DirectiveArgs []token.Token
	Mnemonic      string
	Operands      []token.Token
	Pos           token.Location
}

// IsDirective reports whether this line carries a directive instead of an
// instruction mnemonic.
func (l Line) IsDirective() bool { return l.Directive != "" }

// clone copies a Line but drops its Labels, for synthesized lines after the
// first: per spec 4.2, symbols attach to the first synthesized line only.
func (l Line) clone(mnemonic string, operands []token.Token) Line {
	return Line{Mnemonic: mnemonic, Operands: operands, Pos: l.Pos}
}
