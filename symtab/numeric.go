package symtab

import "github.com/riscv-tools/riscv-as/token"

// NumericLabels manages GNU-as style numeric local labels (e.g. "1:"),
// which may be defined multiple times in one source file and are
// referenced directionally: "1f" means the next "1:" forward from here,
// "1b" means the most recent "1:" backward from here.
type NumericLabels struct {
	addresses map[int][]uint64
	positions map[int][]token.Location
}

// NewNumericLabels creates an empty numeric label table.
func NewNumericLabels() *NumericLabels {
	return &NumericLabels{
		addresses: make(map[int][]uint64),
		positions: make(map[int][]token.Location),
	}
}

// Define records a definition of numeric label n at addr.
func (n *NumericLabels) Define(num int, addr uint64, pos token.Location) {
	n.addresses[num] = append(n.addresses[num], addr)
	n.positions[num] = append(n.positions[num], pos)
}

// Backward finds the most recent definition of num at or before cur.
func (n *NumericLabels) Backward(num int, cur uint64) (uint64, bool) {
	addrs := n.addresses[num]
	for i := len(addrs) - 1; i >= 0; i-- {
		if addrs[i] <= cur {
			return addrs[i], true
		}
	}
	return 0, false
}

// Forward finds the next definition of num strictly after cur.
func (n *NumericLabels) Forward(num int, cur uint64) (uint64, bool) {
	for _, addr := range n.addresses[num] {
		if addr > cur {
			return addr, true
		}
	}
	return 0, false
}
