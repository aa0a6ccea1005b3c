package rules

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected command.
type ErrorKind string

const (
	// KindSequencing: wrong player or wrong phase.
	KindSequencing ErrorKind = "SEQUENCING"
	// KindLookup: unknown player, property or trade.
	KindLookup ErrorKind = "LOOKUP"
	// KindOwnership: the actor does not own what the command needs.
	KindOwnership ErrorKind = "OWNERSHIP"
	// KindResource: insufficient cash or bank inventory.
	KindResource ErrorKind = "RESOURCE"
	// KindState: the target is in the wrong state for the command.
	KindState ErrorKind = "STATE"
)

// Error is a rule violation. A command that fails with an Error has not
// changed the game.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is reports whether target is a rule error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks by kind.
var (
	ErrSequencing = &Error{Kind: KindSequencing}
	ErrLookup     = &Error{Kind: KindLookup}
	ErrOwnership  = &Error{Kind: KindOwnership}
	ErrResource   = &Error{Kind: KindResource}
	ErrState      = &Error{Kind: KindState}
)

// NewError creates a rule error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the rule error kind from err.
func KindOf(err error) (ErrorKind, bool) {
	var ruleErr *Error
	if errors.As(err, &ruleErr) {
		return ruleErr.Kind, true
	}
	return "", false
}
