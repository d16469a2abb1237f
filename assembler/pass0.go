package assembler

import (
	"strings"

	"github.com/riscv-tools/riscv-as/errs"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/numlit"
	"github.com/riscv-tools/riscv-as/pseudo"
	"github.com/riscv-tools/riscv-as/symtab"
	"github.com/riscv-tools/riscv-as/token"
)

// pass0 tokenizes raw source lines into pseudo.Line values: trailing
// comments discarded, labels split out (and carried across blank label-only
// lines onto the next real line), directives distinguished from mnemonics,
// relocation-named tokens consumed and attached to the token they qualify.
func pass0(sourceLines []string, set *isa.ISA, commentChar byte) ([]pseudo.Line, *errs.List) {
	var lines []pseudo.Line
	list := &errs.List{}
	var pendingLabels []string
	seenGlobal := map[string]bool{}

	for i, raw := range sourceLines {
		pos := token.Location{Line: i + 1}
		content := stripComment(raw, commentChar)
		words, splitErr := splitWords(content)
		if splitErr != nil {
			list.Addf(pos, errs.Syntax, "%v", splitErr)
			continue
		}
		if len(words) == 0 {
			continue
		}

		for len(words) > 0 && looksLikeLabel(words[0]) {
			name := strings.TrimSuffix(words[0], ":")
			words = words[1:]
			if !symtab.Legal(name) {
				list.Addf(pos, errs.IllegalSymbol, "illegal symbol name %q", name)
				continue
			}
			if !symtab.IsLocalName(name) {
				if seenGlobal[name] {
					list.Addf(pos, errs.RedefinedSymbol, "symbol %q redefined", name)
					continue
				}
				seenGlobal[name] = true
			}
			pendingLabels = append(pendingLabels, name)
		}
		if len(words) == 0 {
			continue
		}

		line := pseudo.Line{Labels: pendingLabels, Pos: pos}
		pendingLabels = nil

		first := words[0]
		if strings.HasPrefix(first, ".") {
			line.Directive = strings.ToLower(first[1:])
			line.DirectiveArgs = classifyAll(words[1:], set, pos)
		} else {
			line.Mnemonic = strings.ToLower(first)
			line.Operands = classifyAll(words[1:], set, pos)
		}
		lines = append(lines, line)
	}

	return lines, list
}

func looksLikeLabel(word string) bool {
	return len(word) > 1 && strings.HasSuffix(word, ":")
}

func stripComment(line string, commentChar byte) string {
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' {
			inString = !inString
		}
		if c == commentChar && !inString {
			return line[:i]
		}
	}
	return line
}

// splitWords splits on whitespace and commas, keeping quoted strings intact
// and tracking paren depth (the way link/expr.go's lexer does) so that a
// relocation expression's internal whitespace, as in "%pcrel_lo(foo + 4)",
// does not get chopped into separate words before classify/splitRelocation
// ever see it.
func splitWords(line string) ([]string, error) {
	var words []string
	var cur strings.Builder
	inString := false
	depth := 0

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inString = !inString
			cur.WriteByte(c)
		case inString:
			cur.WriteByte(c)
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case depth > 0:
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == ',':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	if inString {
		return nil, errUnterminatedString
	}
	if depth != 0 {
		return nil, errUnbalancedParen
	}
	return words, nil
}

// classifyAll converts raw words into typed operand tokens: quoted
// strings, relocation-qualified expressions, registers, numeric literals,
// and plain identifiers (symbols).
func classifyAll(words []string, set *isa.ISA, pos token.Location) []token.Token {
	out := make([]token.Token, 0, len(words))
	for _, w := range words {
		out = append(out, classify(w, set, pos))
	}
	return out
}

func classify(w string, set *isa.ISA, pos token.Location) token.Token {
	if len(w) >= 2 && w[0] == '"' && w[len(w)-1] == '"' {
		return token.Token{Type: token.String, Literal: w[1 : len(w)-1], Pos: pos}
	}
	if strings.HasPrefix(w, "%") {
		if name, expr, ok := splitRelocation(w); ok {
			return token.Token{Type: token.Reloc, Reloc: name, Literal: expr, Pos: pos}
		}
	}
	base := w
	if idx := strings.IndexByte(w, '('); idx >= 0 {
		base = w[:idx]
	}
	if _, ok := set.ResolveRegister(base); ok && base == w {
		return token.Token{Type: token.Register, Literal: w, Pos: pos}
	}
	if numlit.LooksNumeric(base) {
		return token.Token{Type: token.Number, Literal: w, Pos: pos}
	}
	return token.Token{Type: token.Ident, Literal: w, Pos: pos}
}

// splitRelocation parses "%name(expr)" possibly followed by a further
// "(reg)" suffix, returning the relocation name and the reassembled
// literal ("expr" or "expr(reg)").
func splitRelocation(w string) (name, literal string, ok bool) {
	open := strings.IndexByte(w, '(')
	if open < 0 {
		return "", "", false
	}
	name = w[:open]
	if !isa.HasRelocation(name) {
		return "", "", false
	}
	depth := 0
	closeIdx := -1
scan:
	for i := open; i < len(w); i++ {
		switch w[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
				break scan
			}
		}
	}
	if closeIdx < 0 {
		return "", "", false
	}
	expr := w[open+1 : closeIdx]
	suffix := w[closeIdx+1:]
	return name, expr + suffix, true
}

var errUnterminatedString = errs.New(token.Location{}, errs.Syntax, "unterminated string literal")
var errUnbalancedParen = errs.New(token.Location{}, errs.Syntax, "unbalanced parentheses")
