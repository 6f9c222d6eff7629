package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("clinicflow/service")

// authorizeHospital checks that the appointment's doctor works at a hospital
// the actor administers, and returns that doctor.
func authorizeHospital(ctx context.Context, dir domain.Directory, actor *domain.Actor, a *appointment.Appointment) (*domain.Doctor, error) {
	if actor == nil || actor.HospitalID == nil {
		return nil, ErrForbidden
	}

	doc, err := dir.GetDoctor(ctx, a.DoctorID)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, fmt.Errorf("%w: doctor %s is not listed", ErrForbidden, a.DoctorID)
		}
		return nil, fmt.Errorf("resolving doctor: %w", err)
	}

	if !actor.Manages(doc.HospitalID) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func loadAppointment(ctx context.Context, repo appointment.Repository, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, &NotFoundError{Resource: "appointment", ID: id.String(), Err: err}
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	return a, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize
}
