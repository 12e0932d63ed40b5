package services

import (
	"errors"
	"fmt"
)

// Error kinds returned inside a ServiceError. Match them with errors.Is.
var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
)

// ServiceError is a failure the caller caused. Message is safe to show to clients.
type ServiceError struct {
	Kind    error
	Message string
	// DaysLeft is set for ErrRateLimited.
	DaysLeft int
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func newServiceError(kind error, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

func cooldownError(daysLeft int) *ServiceError {
	return &ServiceError{
		Kind:     ErrRateLimited,
		Message:  fmt.Sprintf("You must wait %d day(s) before sending a new friend request.", daysLeft),
		DaysLeft: daysLeft,
	}
}
