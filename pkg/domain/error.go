package domain

import (
	"fmt"

	"github.com/walteh/eqldoc/pkg/position"
	"github.com/walteh/eqldoc/pkg/signature"
	"gitlab.com/tozd/go/errors"
)

// Error is a problem found while processing a document. Its text ends with the
// source location and, when the underlying failure has one, its cause.
type Error struct {
	Location  position.Location
	Directive string
	Message   string
	Cause     error
	err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s in %s", e.Message, e.Location)
	if e.Cause != nil {
		msg += "\nCause: " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// NewError wraps err as a located processing error.
func NewError(loc position.Location, directive string, err error) *Error {
	out := &Error{Location: loc, Directive: directive, Message: err.Error(), err: err}

	var perr *signature.ParseError
	if errors.As(err, &perr) {
		out.Message = perr.Message()
		out.Cause = perr.Err
	}

	return out
}

func errorf(loc position.Location, directive string, sentinel error, format string, args ...any) *Error {
	return &Error{
		Location:  loc,
		Directive: directive,
		Message:   fmt.Sprintf(format, args...),
		err:       sentinel,
	}
}
