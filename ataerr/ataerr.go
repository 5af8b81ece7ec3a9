// Package ataerr defines the error taxonomy returned by the processor and its
// supporting packages. Each code mirrors a ProgramError variant from the runtime
// the program is meant to execute under, so callers that log or match on Code can
// reproduce the on-chain diagnostic exactly.
package ataerr

import "fmt"

// Code enumerates the stable set of error conditions a processor call can fail with.
type Code int32

const (
	NotEnoughAccountKeys Code = iota
	MissingRequiredSignature
	InvalidSeeds
	InvalidAccountData
	IllegalOwner
	IncorrectProgramId
	InvalidInstructionData
	InvalidArgument
	AccountAlreadyInitialized
	UninitializedAccount
	// Custom is reserved for forward-compatible program-defined codes. The
	// idempotent-create mismatch path uses IllegalOwner/InvalidAccountData
	// instead, matching the original source's actual behavior rather than a
	// single catch-all custom code.
	Custom
)

func (c Code) String() string {
	switch c {
	case NotEnoughAccountKeys:
		return "NotEnoughAccountKeys"
	case MissingRequiredSignature:
		return "MissingRequiredSignature"
	case InvalidSeeds:
		return "InvalidSeeds"
	case InvalidAccountData:
		return "InvalidAccountData"
	case IllegalOwner:
		return "IllegalOwner"
	case IncorrectProgramId:
		return "IncorrectProgramId"
	case InvalidInstructionData:
		return "InvalidInstructionData"
	case InvalidArgument:
		return "InvalidArgument"
	case AccountAlreadyInitialized:
		return "AccountAlreadyInitialized"
	case UninitializedAccount:
		return "UninitializedAccount"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// Error is a program error carrying both the stable Code and a human-readable
// reason. Wrap a lower-level error (a CPI failure, say) with Wrap so %w-style
// unwrapping still reaches the original cause.
type Error struct {
	code   Code
	reason string
	cause  error
}

func New(code Code, reason string) *Error {
	return &Error{code: code, reason: reason}
}

func Wrap(code Code, reason string, cause error) *Error {
	return &Error{code: code, reason: reason, cause: cause}
}

func (e *Error) Error() string {
	if e.reason == "" {
		return e.code.String()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.reason, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.reason)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Code() Code {
	return e.code
}

// As reports the Code carried by err if err is (or wraps) an *Error, and false
// otherwise.
func As(err error) (Code, bool) {
	var target *Error
	if err == nil {
		return 0, false
	}
	if e, ok := err.(*Error); ok {
		return e.code, true
	}
	if errorsAs(err, &target) {
		return target.code, true
	}
	return 0, false
}

// errorsAs walks err's Unwrap chain by hand and stores the first *Error it
// finds in target.
func errorsAs(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
