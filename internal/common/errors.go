// Package common defines the error taxonomy and shared constants used by
// the server and client layers. Callers should use errors.Is to match the
// sentinel values and CodeOf to obtain the stable machine-readable code.
package common

import "errors"

// Code is a stable, machine-readable rejection code.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeDuplicateUser       Code = "DUPLICATE_USER"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeTokenMissing        Code = "TOKEN_MISSING"
	CodeTokenInvalid        Code = "TOKEN_INVALID"
	CodeNotFound            Code = "NOT_FOUND"
	CodeSenderNotFound      Code = "SENDER_NOT_FOUND"
	CodeReceiverNotFound    Code = "RECEIVER_NOT_FOUND"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeInvalidTransfer     Code = "INVALID_TRANSFER"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeConfiguration       Code = "CONFIGURATION_ERROR"
	CodeDatabase            Code = "DATABASE_ERROR"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeRateLimited         Code = "RATE_LIMITED"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level rejections. They match any *Error carrying the same code.
	ErrValidation          = NewError(CodeValidation, "validation error")
	ErrInvalidArgument     = NewError(CodeInvalidArgument, "invalid argument")
	ErrDuplicateUser       = NewError(CodeDuplicateUser, "Username or email already exists")
	ErrInvalidCredentials  = NewError(CodeInvalidCredentials, "Invalid credentials")
	ErrTokenMissing        = NewError(CodeTokenMissing, "No token provided")
	ErrTokenInvalid        = NewError(CodeTokenInvalid, "Invalid or expired token")
	ErrNotFound            = NewError(CodeNotFound, "Account not found")
	ErrSenderNotFound      = NewError(CodeSenderNotFound, "Sender account not found")
	ErrReceiverNotFound    = NewError(CodeReceiverNotFound, "Receiver account not found")
	ErrInsufficientBalance = NewError(CodeInsufficientBalance, "Insufficient balance")
	ErrInvalidTransfer     = NewError(CodeInvalidTransfer, "Cannot transfer money to yourself")
	ErrInvalidAmount       = NewError(CodeInvalidAmount, "Transfer amount must be greater than zero")
	ErrConfiguration       = NewError(CodeConfiguration, "configuration error")
	ErrDatabase            = NewError(CodeDatabase, "database error")
	ErrInternal            = NewError(CodeInternal, "internal error")
	ErrRateLimited         = NewError(CodeRateLimited, "Too many login attempts, try again later")
)

// Error is a rejection with a stable code and a message that is safe to show
// to callers. Err keeps the underlying cause for logs and is never rendered
// by MessageOf.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// NewError returns an *Error without an underlying cause.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// WrapError returns an *Error that keeps err as its cause.
func WrapError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrorCode implements Coded.
func (e *Error) ErrorCode() Code { return e.Code }

// Coded is implemented by every error that carries a rejection code.
type Coded interface {
	error
	ErrorCode() Code
}

// CodeOf returns the code carried by err, or CodeInternal for errors that
// carry none. A nil error has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeInternal
}

// MessageOf returns a caller-safe message for err. Uncoded errors never leak
// their text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var c Coded
	if errors.As(err, &c) {
		return c.Error()
	}
	return ErrInternal.Message
}

// IsRetryable reports whether err is an infrastructure fault that the caller
// may retry as-is.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeDatabase, CodeInternal:
		return true
	}
	return false
}
