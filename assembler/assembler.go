// Package assembler implements the four-pass RISC-V assembler pipeline
// described in spec.md section 4: tokenize/split, pseudo-op expansion,
// encode, and link. Each pass hands its output to the next only if it
// produced no errors; a pass that fails does not advance, per spec
// section 4's "fail fast between passes" rule.
package assembler

import (
	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/symtab"
	"github.com/riscv-tools/riscv-as/token"
)

// Assembler wraps one ISA instance with the configuration used to run it,
// so a caller can reuse the same ISA across many Assemble calls without
// rebuilding the matcher tree each time.
type Assembler struct {
	set *isa.ISA
	cfg Config
}

// New builds an Assembler over a pre-built ISA. cfg controls section base
// addresses and the comment character pass0 recognizes.
func New(set *isa.ISA, cfg Config) *Assembler {
	return &Assembler{set: set, cfg: cfg}
}

// Assemble runs the full pipeline over sourceLines, producing a Program on
// success or the aggregate diagnostics from whichever pass first failed.
// symbolMap optionally pre-seeds the symbol table with already-resolved
// constants or addresses (e.g. linker-provided symbols) before pass2 runs;
// pass nil when there are none. sourceHash is carried through unchanged
// onto the resulting Program for callers that cache assembled output keyed
// on source content.
func (a *Assembler) Assemble(sourceLines []string, symbolMap map[string]uint64, sourceHash string) (*object.Program, []*errs.Error) {
	lines, list := pass0(sourceLines, a.set, a.cfg.CommentChar)
	if list.HasErrors() {
		return nil, list.Errors
	}

	lines, list = pass1(lines, a.set, a.set.XLEN)
	if list.HasErrors() {
		return nil, list.Errors
	}

	symbols := symtab.New()
	for name, value := range symbolMap {
		if err := symbols.Define(name, symtab.Constant, value, token.Location{}); err != nil {
			return nil, []*errs.Error{errs.Newf(token.Location{}, errs.RedefinedSymbol, "%v", err)}
		}
	}

	prog, requests, list := pass2(lines, a.set, a.cfg, symbols)
	if list.HasErrors() {
		return nil, list.Errors
	}

	list = pass3(prog, requests, symbols)
	if list.HasErrors() {
		return nil, list.Errors
	}

	prog.SourceHash = sourceHash
	return prog, nil
}
