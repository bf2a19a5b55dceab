package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized   = errors.New("session is no longer valid")
	ErrNoSession      = errors.New("not logged in")
	ErrNotAdmin       = errors.New("account is not an admin")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrUserNotFound   = errors.New("user not found")
)

// Ошибки валидации: ловятся до сетевого запроса.
var (
	ErrEmptyText         = &ValidationError{Field: "text", Message: "must not be empty"}
	ErrInvalidStatus     = &ValidationError{Field: "status", Message: "must be OPEN, IN_PROGRESS, RESOLVED or CLOSED"}
	ErrNotChatTicket     = &ValidationError{Field: "ticket", Message: "messages can only be sent to CHAT tickets"}
	ErrNotFAQTicket      = &ValidationError{Field: "ticket", Message: "replies can only be posted to FAQ tickets"}
	ErrInvalidAmount     = &ValidationError{Field: "amount", Message: "must be a positive integer"}
	ErrMissingReason     = &ValidationError{Field: "reason", Message: "suspension reason is required"}
	ErrMissingUntil      = &ValidationError{Field: "suspendedUntil", Message: "suspension end date is required"}
	ErrMissingLogin      = &ValidationError{Field: "credentials", Message: "email and password are required"}
	ErrInvalidCreditType = &ValidationError{Field: "type", Message: "must be GRANT or DEDUCT"}
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// APIError: неуспешный ответ backend.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Is: errors.Is(err, ErrUnauthorized) срабатывает на ответ 401.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrTicketNotFound, ErrUserNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// NetworkError: запрос не дошёл до backend или ответ не прочитан.
type NetworkError struct {
	Operation string
	URL       string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s to %s: %v", e.Operation, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
