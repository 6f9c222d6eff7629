package consultation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// GetOrCreate returns the consultation for appointmentID, inserting one
	// with startedAt if none exists. Safe under concurrent first calls.
	GetOrCreate(ctx context.Context, appointmentID uuid.UUID, startedAt time.Time) (*Consultation, bool, error)

	// GetByID loads the consultation with its prescriptions.
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*Consultation, error)

	// SaveDraft overwrites the scalar fields and replaces the prescription
	// set as one unit.
	SaveDraft(ctx context.Context, id uuid.UUID, fields DraftFields, prescriptions []Prescription) (*Consultation, error)

	// Complete stamps completedAt and sets the appointment to COMPLETED
	// as one unit.
	Complete(ctx context.Context, id, appointmentID uuid.UUID, completedAt time.Time) (*Consultation, error)

	ListByHospital(ctx context.Context, q *ListConsultationsQuery) (*PagedConsultations, error)
}
