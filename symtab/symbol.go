// Package symtab implements the per-assemble symbol table: absolute
// addresses and constants, forward references, and a table for numeric
// local labels (N:, Nf, Nb). No assembler pass consults the numeric table,
// and pass0 rejects a numeric label such as "1:" as an illegal symbol.
package symtab

import (
	"fmt"
	"sort"

	"github.com/riscv-tools/riscv-as/token"
)

// Kind distinguishes an address-valued symbol (a label) from a
// constant-valued one (.equ / .set).
type Kind int

const (
	Address Kind = iota
	Constant
)

// Symbol is one entry in the table: its name, its kind, whether it is
// local (scoped to the source line it was defined on -- .L-prefixed),
// its value once defined, and every position that referenced it
// before (or instead of) a definition existing.
type Symbol struct {
	Name       string
	Kind       Kind
	Local      bool
	Value      uint64
	Defined    bool
	Pos        token.Location
	References []token.Location
}

// Table maps symbol names to their Symbol, tracking forward references so
// pass3 can report every symbol still undefined after pass2.
type Table struct {
	symbols map[string]*Symbol
	numeric *NumericLabels
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		symbols: make(map[string]*Symbol),
		numeric: NewNumericLabels(),
	}
}

// Numeric returns the numeric-local-label sub-table (1:, 1f, 1b).
func (t *Table) Numeric() *NumericLabels { return t.numeric }

// IsLocalName reports whether a symbol name uses the local-symbol
// convention: a ".L"-prefixed name, which may shadow across lines.
func IsLocalName(name string) bool {
	return len(name) >= 2 && name[0] == '.' && name[1] == 'L'
}

// Legal checks a symbol name against the assembler's naming rule: first
// character alpha, underscore or dot, subsequent characters alnum,
// underscore, or dot (whether a name is local is decided by IsLocalName).
func Legal(name string) bool {
	if name == "" {
		return false
	}
	first := name[0]
	if !(isAlpha(first) || first == '_' || first == '.') {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(isAlpha(c) || isDigit(c) || c == '_' || c == '.') {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Define records a symbol's value at the given position. Non-local
// symbols may be defined at most once; redefining one is an error. Local
// symbols may shadow a previous definition with the same name (they are
// still filed under the same table, but callers are expected to qualify
// local names themselves -- e.g. by source line -- when uniqueness across
// lines matters, per the spec's "unique to the source line" invariant).
func (t *Table) Define(name string, kind Kind, value uint64, pos token.Location) error {
	local := IsLocalName(name)
	if sym, exists := t.symbols[name]; exists {
		if sym.Defined && !local {
			return fmt.Errorf("symbol %q already defined at %s", name, sym.Pos)
		}
		sym.Kind = kind
		sym.Value = value
		sym.Defined = true
		sym.Pos = pos
		sym.Local = local
		return nil
	}
	t.symbols[name] = &Symbol{
		Name:    name,
		Kind:    kind,
		Local:   local,
		Value:   value,
		Defined: true,
		Pos:     pos,
	}
	return nil
}

// Reference records a use of a symbol, creating a forward-reference
// placeholder if it has not been defined yet.
func (t *Table) Reference(name string, pos token.Location) {
	if sym, exists := t.symbols[name]; exists {
		sym.References = append(sym.References, pos)
		return
	}
	t.symbols[name] = &Symbol{
		Name:       name,
		Kind:       Address,
		Local:      IsLocalName(name),
		Defined:    false,
		Pos:        pos,
		References: []token.Location{pos},
	}
}

// Lookup returns a symbol by name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Get returns a defined symbol's value, or an error naming the symbol.
func (t *Table) Get(name string) (uint64, error) {
	sym, ok := t.symbols[name]
	if !ok {
		return 0, fmt.Errorf("undefined symbol: %q", name)
	}
	if !sym.Defined {
		return 0, fmt.Errorf("symbol %q used but not defined", name)
	}
	return sym.Value, nil
}

// Undefined returns every symbol that was referenced but never defined,
// sorted by name so that callers building diagnostics from it (pass3) get
// the same error order on every run over identical input.
func (t *Table) Undefined() []*Symbol {
	var out []*Symbol
	for _, sym := range t.symbols {
		if !sym.Defined {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// All returns every symbol in the table.
func (t *Table) All() map[string]*Symbol {
	return t.symbols
}

// AddressesToNames builds the Program-facing address->name map: absolute
// addresses only, per the spec's Program.symbols contract (local and
// constant symbols are excluded).
func (t *Table) AddressesToNames() map[uint64]string {
	out := make(map[uint64]string)
	for name, sym := range t.symbols {
		if sym.Defined && sym.Kind == Address && !sym.Local {
			out[sym.Value] = name
		}
	}
	return out
}
