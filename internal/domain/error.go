package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeUnknownCommand  ErrorCode = "UNKNOWN_COMMAND"
	CodeUnknownFamily   ErrorCode = "UNKNOWN_FAMILY"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeFailedPrecond   ErrorCode = "FAILED_PRECONDITION"
	CodeInternal        ErrorCode = "INTERNAL"
)

var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUnknownFamily      = errors.New("unknown tool family")
	ErrNotWorkingCopy     = errors.New("installation is not a git working copy")
	ErrProfileUnsupported = errors.New("command cannot be profiled")
	ErrInterpreterMissing = errors.New("interpreter not found")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(code, op, "", err)
}

// UnknownCommand reports a command name with no artifact in the family's
// command directory. The name is kept in Meta for diagnostics.
func UnknownCommand(op, name string) *Error {
	return &Error{
		Code:    CodeUnknownCommand,
		Op:      op,
		Message: fmt.Sprintf("Unknown command '%s'", name),
		Cause:   ErrUnknownCommand,
		Meta:    map[string]string{"command": name},
	}
}

// UnknownFamily reports a program name that maps to no usable family.
func UnknownFamily(op, program, reason string) *Error {
	msg := fmt.Sprintf("unknown tool family for program '%s'", program)
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{
		Code:    CodeUnknownFamily,
		Op:      op,
		Message: msg,
		Cause:   ErrUnknownFamily,
		Meta:    map[string]string{"program": program},
	}
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand, true
	case errors.Is(err, ErrUnknownFamily):
		return CodeUnknownFamily, true
	case errors.Is(err, ErrNotWorkingCopy), errors.Is(err, ErrProfileUnsupported), errors.Is(err, ErrInterpreterMissing):
		return CodeFailedPrecond, true
	default:
		return "", false
	}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeFrom(err)
	return ok && got == code
}

// Message returns the user-facing message of err without the op/code prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}
