package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConsultationService struct {
	repo         consultation.Repository
	appointments appointment.Repository
	directory    domain.Directory
	history      *VitalsService
	auditSvc     *AuditService
	metrics      *metrics.Collector
	log          *zap.Logger
	now          func() time.Time
}

func NewConsultationService(
	repo consultation.Repository,
	appointments appointment.Repository,
	directory domain.Directory,
	history *VitalsService,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		repo:         repo,
		appointments: appointments,
		directory:    directory,
		history:      history,
		auditSvc:     auditSvc,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// OpenOrCreate returns the consultation for an appointment, creating it on
// first open. Repeated or concurrent calls share one record.
func (s *ConsultationService) OpenOrCreate(ctx context.Context, appointmentID uuid.UUID, actor *domain.Actor) (*consultation.Consultation, error) {
	ctx, span := tracer.Start(ctx, "ConsultationService.OpenOrCreate")
	defer span.End()

	a, err := loadAppointment(ctx, s.appointments, appointmentID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeHospital(ctx, s.directory, actor, a); err != nil {
		return nil, err
	}

	c, created, err := s.repo.GetOrCreate(ctx, a.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("opening consultation: %w", err)
	}

	if created {
		s.metrics.ConsultationOpened()
		s.auditSvc.LogAsync(ctx, AuditEntry{
			UserID: actor.UserID, UserRole: string(actor.Role),
			Action: string(domain.ActionCreate), ResourceType: "consultation", ResourceID: c.ID.String(),
		})
	}

	return c, nil
}

// SaveDraft overwrites the consultation's scalar fields, replaces its
// prescriptions wholesale, and appends a vitals history entry whenever any
// vitals field is non-empty.
func (s *ConsultationService) SaveDraft(
	ctx context.Context,
	consultationID uuid.UUID,
	actor *domain.Actor,
	fields consultation.DraftFields,
	prescriptions []consultation.PrescriptionInput,
) (*consultation.Consultation, error) {
	ctx, span := tracer.Start(ctx, "ConsultationService.SaveDraft")
	defer span.End()

	c, a, err := s.loadAuthorized(ctx, consultationID, actor)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SaveDraft(ctx, c.ID, fields, consultation.BuildPrescriptions(c.ID, prescriptions))
	if err != nil {
		if errors.Is(err, consultation.ErrConsultationNotFound) {
			return nil, &NotFoundError{Resource: "consultation", ID: consultationID.String(), Err: err}
		}
		return nil, fmt.Errorf("saving consultation: %w", err)
	}

	if snap := updated.Vitals(); snap.HasReadings() {
		s.history.Append(ctx, a.PatientID, snap, actor.HospitalID)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: string(domain.ActionUpdate), ResourceType: "consultation", ResourceID: c.ID.String(),
		Changes: fmt.Sprintf(`{"prescriptions":%d}`, len(updated.Prescriptions)),
	})

	return updated, nil
}

// Complete finalizes the consultation and marks its appointment COMPLETED
// in one unit.
func (s *ConsultationService) Complete(ctx context.Context, consultationID, appointmentID uuid.UUID, actor *domain.Actor) (*consultation.Consultation, error) {
	ctx, span := tracer.Start(ctx, "ConsultationService.Complete")
	defer span.End()

	c, a, err := s.loadAuthorized(ctx, consultationID, actor)
	if err != nil {
		return nil, err
	}
	if a.ID != appointmentID {
		return nil, newValidationError(ReasonConsultationMismatch, nil,
			fmt.Sprintf("consultation %s does not belong to appointment %s", consultationID, appointmentID))
	}

	done, err := s.repo.Complete(ctx, c.ID, a.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("completing consultation: %w", err)
	}

	s.metrics.ConsultationCompleted()
	s.metrics.AppointmentWritten(string(appointment.StatusCompleted))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: string(domain.ActionUpdate), ResourceType: "consultation", ResourceID: c.ID.String(),
		Changes: `{"completed":true,"appointment_status":"COMPLETED"}`,
	})

	return done, nil
}

// ListForHospital lists consultations under the actor's hospital. Any other
// actor gets an empty page.
func (s *ConsultationService) ListForHospital(ctx context.Context, actor *domain.Actor, page, pageSize int) (*consultation.PagedConsultations, error) {
	page, pageSize = normalizePage(page, pageSize)
	if actor == nil || actor.HospitalID == nil {
		return &consultation.PagedConsultations{
			Consultations: []*consultation.Consultation{},
			Page:          page,
			PageSize:      pageSize,
		}, nil
	}
	return s.repo.ListByHospital(ctx, &consultation.ListConsultationsQuery{
		HospitalID: *actor.HospitalID,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (s *ConsultationService) loadAuthorized(ctx context.Context, id uuid.UUID, actor *domain.Actor) (*consultation.Consultation, *appointment.Appointment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, consultation.ErrConsultationNotFound) {
			return nil, nil, &NotFoundError{Resource: "consultation", ID: id.String(), Err: err}
		}
		return nil, nil, fmt.Errorf("loading consultation: %w", err)
	}

	a, err := loadAppointment(ctx, s.appointments, c.AppointmentID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := authorizeHospital(ctx, s.directory, actor, a); err != nil {
		return nil, nil, err
	}
	return c, a, nil
}
