package skimmer

import (
	"errors"
	"fmt"
)

// Application error codes. These map the failure taxonomy of a batch run:
// EINVALID aborts a run before any work starts, while EFETCH, ENORMALIZE,
// EPARSE and EEXTRACT are captured per-URL in that URL's outcome.
const (
	EINVALID   = "invalid"   // validation failed; batch never starts
	EFETCH     = "fetch"     // transport failure for one URL
	ENORMALIZE = "normalize" // content conversion failure for one URL
	EPARSE     = "parse"     // unrepairable extraction output for one URL
	EEXTRACT   = "extract"   // extraction capability reported failure
	ENOTFOUND  = "not_found" // entity does not exist
	EINTERNAL  = "internal"  // internal error
)

// Error represents an application-specific error. Application errors can be
// unwrapped to inspect the code and message separately from any wrapped
// infrastructure error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string

	// Detail carries raw diagnostic text where available, e.g. the
	// unparseable response that produced an EPARSE error. It supports
	// debugging a failed URL without re-running the batch.
	Detail string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("skimmer error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorDetail unwraps an application error and returns its raw diagnostic
// detail, if any.
func ErrorDetail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
