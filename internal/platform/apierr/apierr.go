// Package apierr carries transport-level failures that have no domain
// error code, such as an oversized request body.
package apierr

import (
	"errors"
	"fmt"
)

const CodePayloadTooLarge = "payload_too_large"

type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var out *Error
	if errors.As(err, &out) && out != nil {
		return out, true
	}
	return nil, false
}
