package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when the actor has no rights over the target.
var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationReason string

const (
	ReasonPastDateTime         ValidationReason = "PastDateTime"
	ReasonUnknownStatus        ValidationReason = "UnknownStatus"
	ReasonInvalidTransition    ValidationReason = "InvalidTransition"
	ReasonInvalidDateTime      ValidationReason = "InvalidDateTime"
	ReasonConsultationMismatch ValidationReason = "ConsultationMismatch"
	ReasonInvalidInput         ValidationReason = "InvalidInput"
)

type ValidationError struct {
	Reason ValidationReason
	Fields []string
	// Err is an optional domain sentinel, reachable through errors.Is.
	Err error
}

func (e *ValidationError) Error() string {
	msg := "validation failed (" + string(e.Reason) + ")"
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, "; ")
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(reason ValidationReason, sentinel error, fields ...string) *ValidationError {
	return &ValidationError{Reason: reason, Fields: fields, Err: sentinel}
}

// NotFoundError wraps a domain not-found sentinel with the missing id.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries the given validation reason.
func IsValidation(err error, reason ValidationReason) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}

type AuditEntry struct {
	UserID       interface{} // uuid.UUID or *uuid.UUID
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	Changes      string
}
