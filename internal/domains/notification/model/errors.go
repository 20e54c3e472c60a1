package model

import (
	"errors"
	"fmt"
	"net/http"
)

type NotificationError struct {
	Code    string
	Message string
	Err     error
}

func (e *NotificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

var ErrNotificationNotFound = &NotificationError{
	Code:    "NOTIFICATION_NOT_FOUND",
	Message: "Notification not found",
}

var ErrNotRecipient = &NotificationError{
	Code:    "NOT_RECIPIENT",
	Message: "Notification belongs to another user",
}

var errStatus = map[string]int{
	ErrNotificationNotFound.Code: http.StatusNotFound,
	ErrNotRecipient.Code:         http.StatusForbidden,
}

func GetErrorResponse(err error) (int, string, string) {
	var ne *NotificationError
	if errors.As(err, &ne) {
		if status, ok := errStatus[ne.Code]; ok {
			return status, ne.Message, ne.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
