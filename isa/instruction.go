package isa

// Instruction is the descriptor for one real (non-pseudo) mnemonic: its
// ordered fields (by operand-token position) and its ordered opcode parts
// (the bits that identify it). ExtraMatch is the "extra match predicate"
// from spec section 4.5/9: a secondary test used at a matcher-tree leaf to
// disambiguate instructions that otherwise share the same opcode parts
// (e.g. a reserved immediate field that must read zero). It is nil for
// every instruction that doesn't need one.
type Instruction struct {
	Name       string
	Fields     []Field
	OpParts    []OpPart
	Width      int // instruction width in bits: 32 for base, 16 for compressed
	ExtraMatch func(word uint32) bool
}

// Size returns the instruction's encoded size in bytes.
func (i *Instruction) Size() int { return i.Width / 8 }

// EncodeSkeleton builds the fixed-opcode skeleton of this instruction (all
// OpParts OR'd together, every field left at zero). Callers OR in operand
// values field by field afterward.
func (i *Instruction) EncodeSkeleton() uint32 {
	var word uint32
	for _, p := range i.OpParts {
		word = p.Encode(word)
	}
	return word
}

// Matches reports whether every opcode part of this instruction is
// satisfied by word, and (if present) the extra-match predicate passes.
func (i *Instruction) Matches(word uint32) bool {
	for _, p := range i.OpParts {
		if !p.Matches(word) {
			return false
		}
	}
	if i.ExtraMatch != nil {
		return i.ExtraMatch(word)
	}
	return true
}

// RegisterFields returns the instruction's register-valued fields, in
// declared order.
func (i *Instruction) RegisterFields() []*RegisterField {
	var out []*RegisterField
	for idx := range i.Fields {
		if i.Fields[idx].Register != nil {
			out = append(out, i.Fields[idx].Register)
		}
	}
	return out
}

// ImmediateField returns the instruction's single immediate field, if any.
func (i *Instruction) ImmediateField() *ImmediateField {
	for idx := range i.Fields {
		if i.Fields[idx].Immediate != nil {
			return i.Fields[idx].Immediate
		}
	}
	return nil
}

// CoverageOK checks the spec's encoding-coverage invariant: every bit
// position in the instruction width is written exactly once by the union
// of opcode parts and immediate parts. Used at ISA-registration time.
func (i *Instruction) CoverageOK() (bool, int) {
	covered := make([]int, i.Width)
	mark := func(lo, hi int) bool {
		for b := lo; b <= hi; b++ {
			if b < 0 || b >= i.Width {
				return false
			}
			covered[b]++
		}
		return true
	}
	for _, p := range i.OpParts {
		if !mark(p.Lo, p.Hi) {
			return false, -1
		}
	}
	for idx := range i.Fields {
		f := i.Fields[idx]
		if f.Register != nil {
			if !mark(f.Register.Lo, f.Register.Hi) {
				return false, -1
			}
		}
		if f.Immediate != nil {
			for _, p := range f.Immediate.Parts {
				if !mark(p.DstLo, p.DstHi) {
					return false, -1
				}
			}
		}
	}
	for b, c := range covered {
		if c != 1 {
			return false, b
		}
	}
	return true, -1
}
