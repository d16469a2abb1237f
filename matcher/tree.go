// Package matcher builds and queries the opcode-discriminator trie that
// maps a raw instruction word back to its isa.Instruction descriptor,
// per spec section 4.5.
package matcher

import (
	"fmt"
	"sort"

	"github.com/riscv-tools/riscv-as/isa"
)

// Tree is a built, immutable opcode-discrimination trie. It satisfies
// isa.Matcher so an *isa.ISA can hold one without isa importing matcher.
type Tree struct {
	root *node
}

type node struct {
	// leaf holds the single instruction reached once the trie has
	// uniquely identified it; exhausted holds the (rare) set of
	// instructions that share every opcode part and are disambiguated
	// by their ExtraMatch predicates: the members with a predicate come
	// first, and at most one member without one is tried last.
	leaf      *isa.Instruction
	exhausted []*isa.Instruction

	// discriminator is the opcode-part bit range tested at this node to
	// pick a child; children are keyed by that part's value.
	discriminator isa.OpPart
	children      []childEdge
}

type childEdge struct {
	value uint32
	next  *node
}

// Build constructs the decode trie over instructions. It fails with an
// error identifying both mnemonics if two instructions share the same
// complete sequence of opcode parts and neither carries an ExtraMatch
// predicate to break the tie.
func Build(instructions []*isa.Instruction) (*Tree, error) {
	root, err := build(instructions, 0)
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

// BuildISA adapts Build to isa.BuildMatcher's signature (isa.Matcher
// rather than *Tree), so it can be passed directly to isa.New.
func BuildISA(instructions []*isa.Instruction) (isa.Matcher, error) {
	return Build(instructions)
}

func build(instrs []*isa.Instruction, depth int) (*node, error) {
	if len(instrs) == 1 {
		return &node{leaf: instrs[0]}, nil
	}

	exhausted := true
	for _, in := range instrs {
		if depth < len(in.OpParts) {
			exhausted = false
			break
		}
	}
	if exhausted {
		var guarded, plain []*isa.Instruction
		for _, in := range instrs {
			if in.ExtraMatch == nil {
				plain = append(plain, in)
			} else {
				guarded = append(guarded, in)
			}
		}
		if len(plain) > 1 {
			return nil, ambiguousErr(plain)
		}
		return &node{exhausted: append(guarded, plain...)}, nil
	}

	groups := map[uint32][]*isa.Instruction{}
	var discriminator isa.OpPart
	for _, in := range instrs {
		if depth >= len(in.OpParts) {
			// Shares every opcode part up to here with instructions that
			// have more to test; without an ExtraMatch it can never be
			// distinguished from whichever sibling also lands here.
			if in.ExtraMatch == nil {
				return nil, ambiguousErr(instrs)
			}
			groups[noMoreOpPartsKey] = append(groups[noMoreOpPartsKey], in)
			continue
		}
		p := in.OpParts[depth]
		discriminator = p
		groups[p.Value] = append(groups[p.Value], in)
	}

	values := make([]uint32, 0, len(groups))
	for v := range groups {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	n := &node{discriminator: discriminator}
	for _, v := range values {
		child, err := build(groups[v], depth+1)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, childEdge{value: v, next: child})
	}
	return n, nil
}

// noMoreOpPartsKey is all ones, a value no OpPart narrower than 32 bits can
// take, so it never collides with a genuine OpPart.Value grouping key.
const noMoreOpPartsKey = ^uint32(0)

func ambiguousErr(instrs []*isa.Instruction) error {
	return fmt.Errorf("isa: %w: %s and %s encode identically", errAmbiguous, instrs[0].Name, instrs[1].Name)
}

// Match decodes word against the trie, depth-first, returning the unique
// instruction whose opcode parts (and extra-match predicate, if any) are
// satisfied.
func (t *Tree) Match(word uint32) (*isa.Instruction, error) {
	instr := t.root.match(word)
	if instr == nil {
		return nil, fmt.Errorf("matcher: %w", errUnknownInstruction)
	}
	return instr, nil
}

func (n *node) match(word uint32) *isa.Instruction {
	if n.leaf != nil {
		if n.leaf.Matches(word) {
			return n.leaf
		}
		return nil
	}
	if len(n.exhausted) > 0 {
		for _, in := range n.exhausted {
			if in.Matches(word) {
				return in
			}
		}
		return nil
	}
	value := (word >> uint(n.discriminator.Lo)) & (uint32(1)<<uint(n.discriminator.Hi-n.discriminator.Lo+1) - 1)
	for _, edge := range n.children {
		if edge.value == value || edge.value == noMoreOpPartsKey {
			if found := edge.next.match(word); found != nil {
				return found
			}
		}
	}
	return nil
}
