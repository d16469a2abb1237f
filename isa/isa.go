package isa

import "fmt"

// ISA is the immutable, construction-time-validated description of one
// RISC-V instruction set variant: a base width plus a set of enabled
// extensions. It owns the instruction descriptor table, the matcher tree
// built over it, and the register/relocation/pseudo-op tables the
// assembler consults. An *ISA is safe to share across goroutines once
// New returns successfully; nothing on it mutates afterward.
type ISA struct {
	XLEN       int
	extensions map[byte]bool

	instructions []*Instruction
	byName       map[string]*Instruction
	pseudo       []PseudoDescriptor
	matcher      Matcher
}

// Matcher decodes a 32-bit instruction word to its descriptor. It is
// implemented by the matcher package's opcode trie; ISA depends on the
// interface rather than the concrete type to keep the two packages
// decoupled (matcher imports isa for Instruction, not the reverse).
type Matcher interface {
	Match(word uint32) (*Instruction, error)
}

// BuildMatcher constructs the decode trie over a set of instructions. It
// is a function value rather than a direct import of the matcher package
// because matcher.Build needs *Instruction from this package; New takes
// it as a parameter (callers pass matcher.BuildISA) to avoid an import
// cycle between isa and matcher.
type BuildMatcher func([]*Instruction) (Matcher, error)

// New constructs an ISA for the given XLEN (32 or 64) and enabled
// extension letters (subset of "MCAFD"; unrecognized letters are
// ignored the same way the original treats reserved extensions). build
// constructs the opcode matcher tree; pass matcher.BuildISA.
func New(xlen int, extensions string, build BuildMatcher) (*ISA, error) {
	if xlen != 32 && xlen != 64 {
		return nil, fmt.Errorf("isa: unsupported XLEN %d", xlen)
	}

	enabled := map[byte]bool{}
	for i := 0; i < len(extensions); i++ {
		enabled[extensions[i]] = true
	}

	table := RV32IInstructions()
	if xlen == 64 {
		table = withoutNamed(table, "slli", "srli", "srai")
		table = append(table, RV64ShiftOverrides()...)
		table = append(table, RV64IInstructions()...)
	}
	if enabled['M'] {
		table = append(table, RV32MInstructions()...)
		if xlen == 64 {
			table = append(table, RV64MInstructions()...)
		}
	}

	byName := make(map[string]*Instruction, len(table))
	for _, instr := range table {
		byName[instr.Name] = instr
		if ok, bit := instr.CoverageOK(); !ok {
			return nil, fmt.Errorf("isa: %s leaves bit %d uncovered or double-covered", instr.Name, bit)
		}
	}

	m, err := build(table)
	if err != nil {
		return nil, err
	}

	return &ISA{
		XLEN:         xlen,
		extensions:   enabled,
		instructions: table,
		byName:       byName,
		pseudo:       PseudoInstructions(),
		matcher:      m,
	}, nil
}

func withoutNamed(table []*Instruction, names ...string) []*Instruction {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	out := table[:0:0]
	for _, instr := range table {
		if !drop[instr.Name] {
			out = append(out, instr)
		}
	}
	return out
}

// Instructions returns the real (non-pseudo) instruction descriptors.
func (isa *ISA) Instructions() []*Instruction { return isa.instructions }

// PseudoInstructions returns the pseudo-op descriptors this ISA supports.
func (isa *ISA) PseudoInstructions() []PseudoDescriptor { return isa.pseudo }

// Lookup returns the real instruction descriptor for a mnemonic.
func (isa *ISA) Lookup(name string) (*Instruction, bool) {
	instr, ok := isa.byName[name]
	return instr, ok
}

// LookupPseudo returns the pseudo-op descriptor for a mnemonic.
func (isa *ISA) LookupPseudo(name string) (PseudoDescriptor, bool) {
	for _, p := range isa.pseudo {
		if p.Name == name {
			return p, true
		}
	}
	return PseudoDescriptor{}, false
}

// Match decodes a raw instruction word via the opcode matcher tree.
func (isa *ISA) Match(word uint32) (*Instruction, error) {
	return isa.matcher.Match(word)
}

// Relocations returns the relocation transforms this ISA supports.
func (isa *ISA) Relocations() []RelocationDescriptor { return Relocations() }

// RegisterName returns the canonical display name for register index i.
func (isa *ISA) RegisterName(i uint32) string { return RegisterName(i) }

// ResolveRegister parses a register token into its 5-bit index.
func (isa *ISA) ResolveRegister(name string) (uint32, bool) { return ResolveRegister(name) }

// InstrByteAlignment is 4 for the base ISA, 2 once the C extension is
// enabled. No compressed instruction table is built (see DESIGN.md); only
// this alignment relaxation is honored.
func (isa *ISA) InstrByteAlignment() int {
	if isa.extensions['C'] {
		return 2
	}
	return 4
}

// ExtensionsEnabled returns the set of enabled extension letters.
func (isa *ISA) ExtensionsEnabled() map[byte]bool {
	out := make(map[byte]bool, len(isa.extensions))
	for k, v := range isa.extensions {
		out[k] = v
	}
	return out
}

// Opcodes returns the union of real and pseudo mnemonics, for editor
// syntax highlighting and CLI introspection.
func (isa *ISA) Opcodes() map[string]bool {
	out := make(map[string]bool, len(isa.instructions)+len(isa.pseudo))
	for _, instr := range isa.instructions {
		out[instr.Name] = true
	}
	for _, p := range isa.pseudo {
		out[p.Name] = true
	}
	return out
}
