package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrScheduledInPast         = errors.New("appointment cannot be in the past")
	ErrUnknownStatus           = errors.New("unknown appointment status")
	ErrGuestBookingNotFound    = errors.New("no staged guest booking")
)
