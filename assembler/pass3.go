package assembler

import (
	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/link"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/symtab"
)

// pass3 resolves every symbol expression pass2 deferred and writes the
// result back into the program's section bytes, then checks that no
// symbol remains referenced but undefined.
func pass3(prog *object.Program, requests []link.Request, symbols *symtab.Table) *errs.List {
	list := link.Resolve(prog, requests, symbols)

	for _, sym := range symbols.Undefined() {
		for _, pos := range sym.References {
			list.Addf(pos, errs.UnresolvedSymbol, "undefined symbol %q", sym.Name)
		}
	}

	prog.Symbols = symbols.AddressesToNames()
	return list
}
