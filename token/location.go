// Package token defines the lexical units produced by the assembler's
// tokenizer (pass0): tokens, their source locations, and the type tags
// used to classify them during parsing.
package token

import "fmt"

// Location identifies where a token came from in the original source: a
// file-line index, and a column when one is available. Locations are used
// for diagnostics and for mapping assembled bytes back to source lines;
// they never retain a reference to the source buffer itself.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
