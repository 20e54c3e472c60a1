package model

import (
	"errors"
	"fmt"
	"net/http"
)

// LendingError is the base error for the lending domain. Every business-rule
// failure is one of the sentinels below, detected before any write, so a
// failed transition has no observable side effects.
type LendingError struct {
	Code    string
	Message string
	Err     error
}

func (e *LendingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *LendingError) Unwrap() error {
	return e.Err
}

// ============================================
// NOT FOUND
// ============================================

var ErrBookNotFound = &LendingError{
	Code:    "BOOK_NOT_FOUND",
	Message: "Book not found",
}

var ErrLoanNotFound = &LendingError{
	Code:    "LOAN_NOT_FOUND",
	Message: "Loan not found",
}

// ============================================
// FORBIDDEN (wrong actor)
// ============================================

var ErrNotOwner = &LendingError{
	Code:    "NOT_OWNER",
	Message: "Only the book owner can perform this action",
}

var ErrNotBorrower = &LendingError{
	Code:    "NOT_BORROWER",
	Message: "Only the current borrower can perform this action",
}

var ErrOwnBookRequest = &LendingError{
	Code:    "OWN_BOOK_REQUEST",
	Message: "Cannot request own book",
}

// ============================================
// INVALID STATE (precondition on status/active flags)
// ============================================

var ErrBookNotAvailable = &LendingError{
	Code:    "BOOK_NOT_AVAILABLE",
	Message: "Book is not available",
}

var ErrBookNotRequested = &LendingError{
	Code:    "BOOK_NOT_REQUESTED",
	Message: "Book has no pending request",
}

var ErrBookNotLoaned = &LendingError{
	Code:    "BOOK_NOT_LOANED",
	Message: "Book is not on loan",
}

var ErrNoActiveLoan = &LendingError{
	Code:    "NO_ACTIVE_LOAN",
	Message: "Book has no active loan",
}

var ErrLoanNotPending = &LendingError{
	Code:    "LOAN_NOT_PENDING",
	Message: "Loan request is not pending",
}

var ErrLoanNotLoaned = &LendingError{
	Code:    "LOAN_NOT_LOANED",
	Message: "Loan is not in the loaned state",
}

// ============================================
// OTHER
// ============================================

var ErrMissingLocation = &LendingError{
	Code:    "MISSING_LOCATION",
	Message: "Owner has no saved location; cannot add a book without one",
}

var ErrInvalidImage = &LendingError{
	Code:    "INVALID_IMAGE",
	Message: "Cover image must be a jpeg or png up to 5MB",
}

var errStatus = map[string]int{
	ErrBookNotFound.Code:     http.StatusNotFound,
	ErrLoanNotFound.Code:     http.StatusNotFound,
	ErrNotOwner.Code:         http.StatusForbidden,
	ErrNotBorrower.Code:      http.StatusForbidden,
	ErrOwnBookRequest.Code:   http.StatusForbidden,
	ErrBookNotAvailable.Code: http.StatusConflict,
	ErrBookNotRequested.Code: http.StatusConflict,
	ErrBookNotLoaned.Code:    http.StatusConflict,
	ErrNoActiveLoan.Code:     http.StatusConflict,
	ErrLoanNotPending.Code:   http.StatusConflict,
	ErrLoanNotLoaned.Code:    http.StatusConflict,
	ErrMissingLocation.Code:  http.StatusUnprocessableEntity,
	ErrInvalidImage.Code:     http.StatusBadRequest,
}

// GetErrorResponse maps a domain error to (HTTP status, message, code).
// Unknown errors come back as 500 without leaking internals.
func GetErrorResponse(err error) (int, string, string) {
	var le *LendingError
	if errors.As(err, &le) {
		if status, ok := errStatus[le.Code]; ok {
			return status, le.Message, le.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
