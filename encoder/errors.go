// Package encoder implements component E, Pass 2 object-code emission:
// walking a resolved parser.Program and emitting an objfile.Program of
// H/T/M/E records.
package encoder

import (
	"fmt"

	"github.com/sicsim/sicsim/lexer"
)

// Kind classifies an encoding failure (§7's EncodeError variants).
type Kind int

const (
	KindUnknownRegister Kind = iota
	KindBadIndexRegister
	KindUnresolvedSymbol
	KindOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindUnknownRegister:
		return "EncodeError::UnknownRegister"
	case KindBadIndexRegister:
		return "EncodeError::BadIndexRegister"
	case KindUnresolvedSymbol:
		return "EncodeError::UnresolvedSymbol"
	case KindOutOfRange:
		return "EncodeError::OutOfRange"
	default:
		return "EncodeError"
	}
}

// Error is a Pass 2 failure; all variants halt assembly (§7).
type Error struct {
	Pos     lexer.Position
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newError(pos lexer.Position, kind Kind, format string, args ...any) *Error {
	return &Error{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
