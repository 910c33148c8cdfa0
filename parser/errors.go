package parser

import (
	"fmt"

	"github.com/sicsim/sicsim/lexer"
)

// Kind classifies a parser/pass-1 failure per the error taxonomy.
type Kind int

const (
	KindParse Kind = iota
	KindMissingStart
	KindDuplicateSymbol
	KindUnresolvedSymbol
	KindExprDivByZero
	KindExprNegative
	KindExprSyntax
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindMissingStart:
		return "Pass1Error::MissingStart"
	case KindDuplicateSymbol:
		return "Pass1Error::DuplicateSymbol"
	case KindUnresolvedSymbol:
		return "Pass1Error::UnresolvedSymbol"
	case KindExprDivByZero:
		return "ExprError::DivByZero"
	case KindExprNegative:
		return "ExprError::Negative"
	case KindExprSyntax:
		return "ExprError::Syntax"
	default:
		return "Error"
	}
}

// Error is a single hard failure during parsing or Pass 1. All of these
// abort assembly (§7): the caller should stop at the first one and
// report it with its source position.
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
