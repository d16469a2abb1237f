package matcher

import "errors"

// errAmbiguous is construction-time only: it means two instructions
// registered with the same ISA encode identically and neither exposes an
// ExtraMatch predicate to break the tie. It aborts ISA construction.
var errAmbiguous = errors.New("ambiguous encoding")

// errUnknownInstruction means no registered instruction's opcode parts
// match a decoded word.
var errUnknownInstruction = errors.New("unknown instruction")
