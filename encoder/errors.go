package encoder

import (
	"fmt"

	"github.com/jniemenmaa/c8c/parser"
)

// Error provides detailed context for code-generation failures. Unlike the
// front-end's parser.Error, not every codegen diagnostic has a source
// position — some (register exhaustion, address-space overflow) are
// properties of the whole program rather than one AST node, so Pos is the
// zero Position in that case and is simply omitted from the message.
type Error struct {
	Pos     parser.Position // zero value if the error has no single source location
	Message string          // error description
	Wrapped error           // underlying error (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	location := ""
	if e.Pos.Line > 0 {
		location = fmt.Sprintf("%s: ", e.Pos)
	}

	if e.Wrapped != nil {
		return fmt.Sprintf("%scode generation error: %s: %v", location, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%scode generation error: %s", location, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// NewError creates a new codegen diagnostic with no wrapped cause.
func NewError(pos parser.Position, message string) *Error {
	return &Error{Pos: pos, Message: message}
}

// Wrap attaches codegen context to an existing error. If the error is
// already a codegen *Error, it is returned unchanged. If err is nil,
// returns nil.
func Wrap(pos parser.Position, message string, err error) error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		return existing
	}
	return &Error{Pos: pos, Message: message, Wrapped: err}
}
