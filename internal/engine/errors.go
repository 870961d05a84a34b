package engine

import (
	"errors"
	"fmt"
)

// Error represents a precondition violation detected before induction or
// expansion mutates anything.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the offending position in the input sequence, or -1.
	Index int

	// Symbol is the offending symbol in text form, if any.
	Symbol string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates an empty sequence or a symbol that may
	// not appear in the input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeInvalidConfig indicates a repetition threshold below 1.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrCodeUnknownSymbol indicates a rule reference missing from the rule table.
	ErrCodeUnknownSymbol ErrorCode = "UNKNOWN_SYMBOL"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Symbol != "" && e.Index >= 0 {
		return fmt.Sprintf("%s: %s (index=%d, symbol=%s)", e.Code, e.Message, e.Index, e.Symbol)
	}
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s (symbol=%s)", e.Code, e.Message, e.Symbol)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsInvalidInput reports whether err is an INVALID_INPUT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsInvalidConfig reports whether err is an INVALID_CONFIG error.
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

// IsUnknownSymbol reports whether err is an UNKNOWN_SYMBOL error.
func IsUnknownSymbol(err error) bool {
	return hasCode(err, ErrCodeUnknownSymbol)
}

// NewInvalidInputError creates an Error for a rejected input sequence.
func NewInvalidInputError(message string, index int, symbol string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message, Index: index, Symbol: symbol}
}

// NewInvalidConfigError creates an Error for a rejected configuration.
func NewInvalidConfigError(message string) *Error {
	return &Error{Code: ErrCodeInvalidConfig, Message: message, Index: -1}
}

// NewUnknownSymbolError creates an Error for a symbol absent from the rule table.
func NewUnknownSymbolError(symbol string) *Error {
	return &Error{
		Code:    ErrCodeUnknownSymbol,
		Message: "rule reference not found in rule table",
		Index:   -1,
		Symbol:  symbol,
	}
}
