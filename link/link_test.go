package link_test

import (
	"encoding/binary"
	"testing"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/link"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/symtab"
	"github.com/riscv-tools/riscv-as/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordBytes(opcode uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, opcode)
	return buf
}

func TestResolve_DirectSymbolReference(t *testing.T) {
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0x1000, Bytes: wordBytes(0x00000013)}, // addi x0,x0,0 skeleton
		},
	}
	symbols := symtab.New()
	require.NoError(t, symbols.Define("target", symtab.Address, 0x123, token.Location{}))

	field := &isa.ImmediateField{
		Width: 12, Repr: isa.Signed, SymbolKind: isa.AbsoluteSymbol,
		Parts: []isa.ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}},
	}
	requests := []link.Request{
		{Section: "text", Offset: 0, Field: field, Expression: "target", Relocation: ""},
	}

	errList := link.Resolve(prog, requests, symbols)
	assert.False(t, errList.HasErrors())

	word := binary.LittleEndian.Uint32(prog.Sections["text"].Bytes)
	assert.Equal(t, uint32(0x123)<<20|0x13, word)
}

func TestResolve_PCRelHiLoRoundTrip(t *testing.T) {
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0, Bytes: append(wordBytes(0x00000017), wordBytes(0x00000013)...)},
		},
	}
	symbols := symtab.New()
	require.NoError(t, symbols.Define("foo", symtab.Address, 0x12345678, token.Location{}))

	hiField := &isa.ImmediateField{Width: 20, Repr: isa.Unsigned, SymbolKind: isa.RelativeSymbol,
		Parts: []isa.ImmPart{{SrcOffset: 0, DstLo: 12, DstHi: 31}}}
	loField := &isa.ImmediateField{Width: 12, Repr: isa.Signed, SymbolKind: isa.AbsoluteSymbol,
		Parts: []isa.ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}}}

	requests := []link.Request{
		{Section: "text", Offset: 0, Field: hiField, Relocation: "%pcrel_hi", Expression: "foo"},
		{Section: "text", Offset: 4, Field: loField, Relocation: "%pcrel_lo", Expression: "foo"},
	}
	errList := link.Resolve(prog, requests, symbols)
	require.False(t, errList.HasErrors())

	hiWord := binary.LittleEndian.Uint32(prog.Sections["text"].Bytes[0:4])
	loWord := binary.LittleEndian.Uint32(prog.Sections["text"].Bytes[4:8])
	hi20 := int64(hiWord >> 12)
	lo12 := int64(int32(loWord) >> 20)

	got := (lo12 + (hi20 << 12) + int64(4&^0xFFF)) & 0xFFFFFFFF
	assert.EqualValues(t, 0x12345678, got)
}

func TestResolve_UndefinedSymbolReported(t *testing.T) {
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0, Bytes: wordBytes(0)},
		},
	}
	symbols := symtab.New()
	field := &isa.ImmediateField{Width: 12, Repr: isa.Signed,
		Parts: []isa.ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}}}

	errList := link.Resolve(prog, []link.Request{
		{Section: "text", Offset: 0, Field: field, Expression: "missing"},
	}, symbols)

	require.True(t, errList.HasErrors())
	assert.Equal(t, 1, len(errList.Errors))
}

func TestResolve_OverflowReported(t *testing.T) {
	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: 0, Bytes: wordBytes(0)},
		},
	}
	symbols := symtab.New()
	field := &isa.ImmediateField{Width: 12, Repr: isa.Signed, SymbolKind: isa.AbsoluteSymbol,
		Parts: []isa.ImmPart{{SrcOffset: 0, DstLo: 20, DstHi: 31}}}

	errList := link.Resolve(prog, []link.Request{
		{Section: "text", Offset: 0, Field: field, Expression: "100000"},
	}, symbols)

	require.True(t, errList.HasErrors())
	assert.Equal(t, errs.RelocationOverflow, errList.Errors[0].Kind)
}
