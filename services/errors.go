package services

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedNotification  = errors.New("notification payload cannot be parsed")
	ErrInvalidSignature       = errors.New("notification signature mismatch")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentNotPending      = errors.New("payment is not pending")
	ErrPaymentNotSettled      = errors.New("payment is not settled")
	ErrServiceRequestNotFound = errors.New("service request not found")
	ErrTechnicianNotFound     = errors.New("technician not found")
	ErrPayoutNotFound         = errors.New("payout not found")
	ErrPayoutNotPending       = errors.New("payout is not pending")

	ErrBelowMinimumPayout    = errors.New("amount is below the minimum payout")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrBankProfileIncomplete = errors.New("bank account details are incomplete")
)

// ValidationError is a field-level rejection that is reported back to the caller
// without any state having changed.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: err}
}
