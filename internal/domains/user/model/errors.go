package model

import (
	"errors"
	"fmt"
	"net/http"
)

// UserError mirrors the lending domain's coded error shape so handlers can
// map both domains the same way.
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

var ErrUserNotFound = &UserError{
	Code:    "USER_NOT_FOUND",
	Message: "User not found",
}

var ErrInvalidRating = &UserError{
	Code:    "INVALID_RATING",
	Message: "Rating must be an integer between 1 and 5",
}

var ErrSelfRating = &UserError{
	Code:    "SELF_RATING",
	Message: "Cannot rate yourself",
}

var ErrInvalidLocation = &UserError{
	Code:    "INVALID_LOCATION",
	Message: "Latitude must be in [-90, 90] and longitude in [-180, 180]",
}

var errStatus = map[string]int{
	ErrUserNotFound.Code:    http.StatusNotFound,
	ErrInvalidRating.Code:   http.StatusBadRequest,
	ErrSelfRating.Code:      http.StatusForbidden,
	ErrInvalidLocation.Code: http.StatusBadRequest,
}

// GetErrorResponse maps a user domain error to (HTTP status, message, code).
func GetErrorResponse(err error) (int, string, string) {
	var ue *UserError
	if errors.As(err, &ue) {
		if status, ok := errStatus[ue.Code]; ok {
			return status, ue.Message, ue.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
