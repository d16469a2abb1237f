package assembler

// Config holds the options recognized at assembler construction (spec
// section 6's "Configuration" list). Treated as immutable once an
// Assembler is built: a new Assembler is created when configuration
// changes rather than observed and mutated mid-run (spec section 9's
// "Cyclic configuration observation" design note).
type Config struct {
	TextStart   uint64
	DataStart   uint64
	BSSStart    uint64
	CommentChar byte
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		TextStart:   0x0,
		DataStart:   0x10000000,
		BSSStart:    0x11000000,
		CommentChar: '#',
	}
}
