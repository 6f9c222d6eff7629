package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"go.uber.org/zap"
)

// GuestBookingService holds a guest's booking between an anonymous
// submission and account creation. Losing a staged booking is acceptable.
type GuestBookingService struct {
	store appointment.GuestStore
	ttl   time.Duration
	log   *zap.Logger
}

func NewGuestBookingService(store appointment.GuestStore, ttl time.Duration, log *zap.Logger) *GuestBookingService {
	return &GuestBookingService{store: store, ttl: ttl, log: log}
}

// Stage stores b under sessionID, replacing anything staged earlier.
func (s *GuestBookingService) Stage(ctx context.Context, sessionID string, b *appointment.GuestBooking) error {
	if sessionID == "" {
		return newValidationError(ReasonInvalidInput, nil, "guest session id is required")
	}
	if err := s.store.Put(ctx, sessionID, b, s.ttl); err != nil {
		return fmt.Errorf("staging guest booking: %w", err)
	}
	s.log.Debug("guest booking staged",
		zap.String("doctor_id", b.DoctorID.String()),
		zap.Time("scheduled_at", b.ScheduledAt),
	)
	return nil
}

// Consume returns the staged booking for sessionID at most once. A missing
// booking is (nil, nil).
func (s *GuestBookingService) Consume(ctx context.Context, sessionID string) (*appointment.GuestBooking, error) {
	if sessionID == "" {
		return nil, nil
	}
	b, err := s.store.Take(ctx, sessionID)
	if err != nil {
		if errors.Is(err, appointment.ErrGuestBookingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("consuming guest booking: %w", err)
	}
	return b, nil
}
