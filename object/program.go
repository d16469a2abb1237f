// Package object defines the assembled program format: the boundary
// between the assembler and any consumer (a CPU simulator, a
// disassembler, the service package's HTTP API).
package object

// Section is one named region of the assembled program: a base address
// and its raw bytes, in target byte order (little-endian).
type Section struct {
	Name  string
	Base  uint64
	Bytes []byte
}

// Program is the result of a successful assemble call.
type Program struct {
	EntryPoint uint64
	Sections   map[string]*Section

	// Symbols maps an absolute address to the (non-local, non-constant)
	// symbol name defined there, for disassembly annotation.
	Symbols map[uint64]string

	// SourceMapping maps a byte offset within .text to the set of
	// source-line indices that produced it, for diagnostics. pass2 records
	// a line index only where it appends bytes, so each recorded offset
	// holds exactly one line index.
	SourceMapping map[uint64][]int

	// SourceHash is the caller-supplied hash of the source that produced
	// this program, carried through unchanged for cache invalidation by
	// consumers; empty if the caller didn't supply one.
	SourceHash string
}

// Section looks up a section by name, returning nil if it doesn't exist.
func (p *Program) Section(name string) *Section {
	return p.Sections[name]
}
