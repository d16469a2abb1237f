// Package link implements pass3: resolving the symbol expressions deferred
// by pass2 into concrete bit patterns and writing them into the already-
// encoded instruction words.
package link

import (
	"encoding/binary"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/symtab"
	"github.com/riscv-tools/riscv-as/token"
)

// Request is a deferred encoding action recorded by pass2: an immediate
// field whose value depends on a symbol expression that may not have been
// defined yet when the instruction was encoded.
type Request struct {
	Section    string
	Offset     uint64 // byte offset of the instruction word within the section
	Field      *isa.ImmediateField
	Relocation string // "%hi", "%lo", "%pcrel_hi", "%pcrel_lo", or "" for a direct symbol reference
	Expression string // the raw symbol expression, e.g. "foo+4"
	Pos        token.Location
}

// Resolve evaluates every pending request against prog's symbol table and
// writes the resolved bits into prog's section bytes. Failures accumulate;
// remaining requests still process, per spec section 4.4 step 5.
func Resolve(prog *object.Program, requests []Request, symbols *symtab.Table) *errs.List {
	list := &errs.List{}
	for _, req := range requests {
		if err := resolveOne(prog, req, symbols); err != nil {
			list.Add(err)
		}
	}
	return list
}

func resolveOne(prog *object.Program, req Request, symbols *symtab.Table) *errs.Error {
	section := prog.Section(req.Section)
	if section == nil || req.Offset+4 > uint64(len(section.Bytes)) {
		return errs.Newf(req.Pos, errs.BadRelocationTarget, "link request targets invalid offset in %q", req.Section)
	}
	pc := int64(section.Base + req.Offset)

	lookup := func(name string) (int64, bool) {
		if name == "__address__" {
			return pc, true
		}
		v, err := symbols.Get(name)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	}

	val, err := evalExpr(req.Expression, lookup)
	if err != nil {
		return errs.Newf(req.Pos, errs.UnresolvedSymbol, "%s: %v", req.Expression, err)
	}

	resolved := applyRelocation(req.Relocation, val, pc, req.Field.SymbolKind)

	if !isa.FitsWidth(resolved, req.Field.Width, req.Field.Repr) {
		return errs.Newf(req.Pos, errs.RelocationOverflow, "relocated value %d does not fit in %d bits", resolved, req.Field.Width)
	}

	word := binary.LittleEndian.Uint32(section.Bytes[req.Offset : req.Offset+4])
	word = req.Field.Encode(word, uint32(resolved)&isa.WidthMask(req.Field.Width))
	binary.LittleEndian.PutUint32(section.Bytes[req.Offset:req.Offset+4], word)
	return nil
}

// applyRelocation picks the transform: an explicit named relocation, or
// (when none is given) the field's declared SymbolKind, which tells the
// linker whether the immediate wants an absolute value or one already
// relative to pc -- branches and jal use RelativeSymbol with no named
// relocation, computing target-pc directly.
func applyRelocation(name string, val, pc int64, kind isa.SymbolKind) int64 {
	switch name {
	case "%hi":
		return int64(isa.Hi20(val))
	case "%lo":
		return int64(isa.Lo12(val))
	case "%pcrel_hi":
		return int64(isa.PCRelHi20(val, pc))
	case "%pcrel_lo":
		return int64(isa.PCRelLo12(val, pc))
	}
	if kind == isa.RelativeSymbol {
		return val - pc
	}
	return val
}

