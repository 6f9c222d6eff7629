package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// UpdateStatus writes only the status column.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// GuestStore is session-scoped ephemeral storage for guest bookings.
type GuestStore interface {
	Put(ctx context.Context, sessionID string, b *GuestBooking, ttl time.Duration) error
	// Take returns and removes the booking in one step. Returns
	// ErrGuestBookingNotFound when nothing is staged.
	Take(ctx context.Context, sessionID string) (*GuestBooking, error)
}
