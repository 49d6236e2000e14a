package ledger

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// ErrCodeTransientStore indicates a store/network failure. The local
	// optimistic mutation has been rolled back; repeating the action retries.
	ErrCodeTransientStore ErrorCode = "TRANSIENT_STORE"

	// ErrCodeValidation indicates input that cannot be normalized into a
	// valid mutation.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodePartialReconciliation indicates a catch-up run that stopped
	// mid-range. Days finalized before the failure stay persisted; the run
	// is safe to repeat.
	ErrCodePartialReconciliation ErrorCode = "PARTIAL_RECONCILIATION"
)

// LedgerError is an error detected during a ledger operation.
type LedgerError struct {
	Code    ErrorCode
	Message string
	DateKey string // affected day, when known
	Err     error
}

func (e *LedgerError) Error() string {
	if e.DateKey != "" {
		return fmt.Sprintf("%s: %s (day=%s)", e.Code, e.Message, e.DateKey)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a rolled-back store failure.
func IsTransient(err error) bool {
	var le *LedgerError
	return errors.As(err, &le) && le.Code == ErrCodeTransientStore
}

// IsPartial reports whether err is a partial reconciliation failure.
func IsPartial(err error) bool {
	var le *LedgerError
	return errors.As(err, &le) && le.Code == ErrCodePartialReconciliation
}

func transientErr(msg string, err error) *LedgerError {
	return &LedgerError{Code: ErrCodeTransientStore, Message: msg, Err: err}
}

func validationErr(msg string) *LedgerError {
	return &LedgerError{Code: ErrCodeValidation, Message: msg}
}

func partialErr(dateKey string, err error) *LedgerError {
	return &LedgerError{
		Code:    ErrCodePartialReconciliation,
		Message: "reconciliation stopped before completing the range",
		DateKey: dateKey,
		Err:     err,
	}
}
