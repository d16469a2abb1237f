// Package directive implements the assembler's non-instruction directive
// handlers (spec section 4.7): section switches and literal data emission,
// fused into the same pass2 time as instruction encoding rather than a
// separate VM-loading pass.
package directive

import (
	"strings"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/numlit"
	"github.com/riscv-tools/riscv-as/token"
)

// Result is what a directive contributes to pass2: bytes to append to the
// current section, and/or a new current section name.
type Result struct {
	Bytes    []byte
	SwitchTo string // "" if this directive doesn't change section
}

var widths = map[string]int{
	".byte": 1,
	".half": 2, ".short": 2, ".2byte": 2,
	".word": 4, ".long": 4, ".4byte": 4,
}

// Handle dispatches one directive by name (without its leading dot,
// matching Line.Directive) against its argument tokens. Unknown
// directives fail with errs.UnknownDirective; wrong arity or
// unparseable values fail with errs.BadDirectiveArg.
func Handle(name string, args []token.Token, pos token.Location) (Result, *errs.Error) {
	dotted := "." + name
	switch dotted {
	case ".text", ".data", ".bss":
		return Result{SwitchTo: dotted}, nil

	case ".byte", ".half", ".short", ".2byte", ".word", ".long", ".4byte":
		return handleData(dotted, args, pos)

	case ".zero":
		return handleZero(args, pos)

	case ".string", ".asciz":
		return handleString(args, pos)

	default:
		return Result{}, errs.Newf(pos, errs.UnknownDirective, "unknown directive %q", dotted)
	}
}

func handleData(name string, args []token.Token, pos token.Location) (Result, *errs.Error) {
	if len(args) == 0 {
		return Result{}, errs.Newf(pos, errs.BadDirectiveArg, "%s requires at least one value", name)
	}
	width := widths[name]
	var buf []byte
	for _, arg := range args {
		v, err := numlit.Parse(arg.Literal)
		if err != nil {
			return Result{}, errs.Newf(pos, errs.BadDirectiveArg, "%s: invalid value %q", name, arg.Literal)
		}
		buf = append(buf, littleEndian(uint64(v), width)...)
	}
	return Result{Bytes: buf}, nil
}

func handleZero(args []token.Token, pos token.Location) (Result, *errs.Error) {
	if len(args) != 1 {
		return Result{}, errs.New(pos, errs.BadDirectiveArg, ".zero requires exactly one argument")
	}
	n, err := numlit.Parse(args[0].Literal)
	if err != nil || n < 0 {
		return Result{}, errs.Newf(pos, errs.BadDirectiveArg, ".zero: invalid count %q", args[0].Literal)
	}
	return Result{Bytes: make([]byte, n)}, nil
}

func handleString(args []token.Token, pos token.Location) (Result, *errs.Error) {
	if len(args) != 1 {
		return Result{}, errs.New(pos, errs.BadDirectiveArg, ".string/.asciz requires exactly one string argument")
	}
	text := unquote(args[0].Literal)
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")
	text = strings.ReplaceAll(text, `\0`, "\x00")
	buf := append([]byte(text), 0)
	return Result{Bytes: buf}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func littleEndian(v uint64, width int) []byte {
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte(v >> uint(8*i))
	}
	return buf
}
