package assembler

import (
	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/pseudo"
)

// pass1 rewrites every pseudo-op line into its real-instruction expansion,
// per spec section 4.2. Lines whose mnemonic isn't a pseudo-op (or whose
// pseudo-op falls through under the aliasing rule) pass through unchanged
// for pass2 to encode directly.
func pass1(lines []pseudo.Line, set *isa.ISA, xlen int) ([]pseudo.Line, *errs.List) {
	out := make([]pseudo.Line, 0, len(lines))
	list := &errs.List{}

	for _, line := range lines {
		if line.IsDirective() {
			out = append(out, line)
			continue
		}
		expanded, matched, err := pseudo.Expand(line, set, xlen)
		if err != nil {
			if asErr, ok := err.(*errs.Error); ok {
				list.Add(asErr)
			} else {
				list.Addf(line.Pos, errs.BadImmediate, "%v", err)
			}
			continue
		}
		if matched {
			out = append(out, expanded...)
			continue
		}
		out = append(out, line)
	}

	return out, list
}
