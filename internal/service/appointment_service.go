package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AppointmentService struct {
	repo          appointment.Repository
	consultations consultation.Repository
	directory     domain.Directory
	policy        appointment.TransitionPolicy
	loc           *time.Location
	auditSvc      *AuditService
	metrics       *metrics.Collector
	log           *zap.Logger
	now           func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	consultations consultation.Repository,
	directory domain.Directory,
	policy appointment.TransitionPolicy,
	loc *time.Location,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	if policy == nil {
		policy = appointment.PermissivePolicy{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		repo:          repo,
		consultations: consultations,
		directory:     directory,
		policy:        policy,
		loc:           loc,
		auditSvc:      auditSvc,
		metrics:       m,
		log:           log,
		now:           time.Now,
	}
}

func (s *AppointmentService) Location() *time.Location {
	return s.loc
}

// Book creates a PENDING appointment for an authenticated patient. With a
// nil actor it returns a staged guest booking instead and writes nothing.
func (s *AppointmentService) Book(ctx context.Context, actor *domain.Actor, cmd *appointment.BookCommand) (*appointment.BookResult, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Book")
	defer span.End()

	if actor != nil && actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}

	// -------- Input Validation -----------
	scheduledAt, err := appointment.CombineDateTime(cmd.Date, cmd.Time, s.loc)
	if err != nil {
		return nil, newValidationError(ReasonInvalidDateTime, nil, err.Error())
	}
	now := s.now()
	if !scheduledAt.After(now) {
		return nil, newValidationError(ReasonPastDateTime, appointment.ErrScheduledInPast, appointment.ErrScheduledInPast.Error())
	}

	if _, err := s.directory.GetDoctor(ctx, cmd.DoctorID); err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: cmd.DoctorID.String(), Err: err}
		}
		return nil, fmt.Errorf("verifying doctor: %w", err)
	}

	if actor == nil {
		s.metrics.GuestBooking("staged")
		return &appointment.BookResult{Guest: &appointment.GuestBooking{
			DoctorID:    cmd.DoctorID,
			ScheduledAt: scheduledAt,
			Notes:       cmd.Notes,
			StagedAt:    now,
		}}, nil
	}

	a := &appointment.Appointment{
		PatientID:   actor.UserID,
		DoctorID:    cmd.DoctorID,
		ScheduledAt: scheduledAt,
		Status:      appointment.StatusPending,
		Notes:       cmd.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}
	span.SetAttributes(attribute.String("appointment.id", a.ID.String()))

	s.metrics.AppointmentWritten(string(a.Status))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     string(actor.Role),
		Action:       string(domain.ActionCreate),
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})

	return &appointment.BookResult{Appointment: a}, nil
}

// MaterializeGuestBooking turns a staged booking into a PENDING appointment
// for a freshly registered patient. A doctor that has since disappeared is
// logged and yields (nil, nil).
func (s *AppointmentService) MaterializeGuestBooking(ctx context.Context, staged *appointment.GuestBooking, patientID uuid.UUID) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.MaterializeGuestBooking")
	defer span.End()

	if staged == nil {
		return nil, nil
	}

	if _, err := s.directory.GetDoctor(ctx, staged.DoctorID); err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			s.metrics.GuestBooking("dropped")
			s.log.Warn("dropping guest booking: doctor no longer exists",
				zap.String("doctor_id", staged.DoctorID.String()),
				zap.String("patient_id", patientID.String()),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("verifying doctor: %w", err)
	}

	a := &appointment.Appointment{
		PatientID:   patientID,
		DoctorID:    staged.DoctorID,
		ScheduledAt: staged.ScheduledAt,
		Status:      appointment.StatusPending,
		Notes:       staged.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment from guest booking: %w", err)
	}

	s.metrics.GuestBooking("materialized")
	s.metrics.AppointmentWritten(string(a.Status))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       patientID,
		UserRole:     string(domain.RolePatient),
		Action:       string(domain.ActionCreate),
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		Changes:      `{"source":"guest_booking"}`,
	})

	return a, nil
}

// Transition moves an appointment owned by the actor's hospital to status.
// Which moves are accepted is decided by the configured policy.
func (s *AppointmentService) Transition(ctx context.Context, id uuid.UUID, actor *domain.Actor, status appointment.Status) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Transition")
	defer span.End()

	a, err := loadAppointment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeHospital(ctx, s.directory, actor, a); err != nil {
		return nil, err
	}

	if !status.IsValid() {
		return nil, newValidationError(ReasonUnknownStatus, appointment.ErrUnknownStatus, fmt.Sprintf("status %q is not one of PENDING, CONFIRMED, COMPLETED, CANCELLED", status))
	}
	if !s.policy.Allows(a.Status, status) {
		return nil, newValidationError(ReasonInvalidTransition, appointment.ErrInvalidStatusTransition, fmt.Sprintf("%s -> %s", a.Status, status))
	}

	from := a.Status
	if err := s.repo.UpdateStatus(ctx, a.ID, status); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}
	a.Status = status

	s.metrics.AppointmentWritten(string(status))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: string(domain.ActionUpdate), ResourceType: "appointment", ResourceID: a.ID.String(),
		Changes: fmt.Sprintf(`{"status":{"from":"%s","to":"%s"}}`, from, status),
	})

	return a, nil
}

// VisibleTo lists the appointments the actor may see. Scope fields on q are
// overwritten from the actor; only Statuses and paging are honoured.
func (s *AppointmentService) VisibleTo(ctx context.Context, actor *domain.Actor, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.VisibleTo")
	defer span.End()

	if actor == nil {
		return nil, ErrForbidden
	}
	if q == nil {
		q = &appointment.ListAppointmentsQuery{}
	}

	scoped := &appointment.ListAppointmentsQuery{Statuses: q.Statuses, NewestFirst: q.NewestFirst}
	scoped.Page, scoped.PageSize = normalizePage(q.Page, q.PageSize)

	switch actor.Role {
	case domain.RolePatient:
		scoped.PatientID = &actor.UserID
	case domain.RoleDoctor:
		if actor.DoctorID == nil {
			return emptyPage(scoped), nil
		}
		scoped.DoctorID = actor.DoctorID
	case domain.RoleHospital:
		if actor.HospitalID == nil {
			return emptyPage(scoped), nil
		}
		scoped.HospitalID = actor.HospitalID
	default:
		s.log.Warn("no appointment scope for role",
			zap.String("role", string(actor.Role)),
			zap.String("user_id", actor.UserID.String()),
		)
		return emptyPage(scoped), nil
	}

	return s.repo.List(ctx, scoped)
}

// History returns a patient's finished (completed or cancelled)
// appointments, newest first.
func (s *AppointmentService) History(ctx context.Context, actor *domain.Actor, page, pageSize int) (*appointment.PagedAppointments, error) {
	if actor == nil || actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}
	return s.VisibleTo(ctx, actor, &appointment.ListAppointmentsQuery{
		Statuses:    []appointment.Status{appointment.StatusCompleted, appointment.StatusCancelled},
		NewestFirst: true,
		Page:        page,
		PageSize:    pageSize,
	})
}

type AppointmentDetail struct {
	Appointment     *appointment.Appointment
	Consultation    *consultation.Consultation
	Health          vitals.Assessment
	ViewerIsPatient bool
}

// Detail is readable by the booking patient and by the managing hospital.
func (s *AppointmentService) Detail(ctx context.Context, id uuid.UUID, actor *domain.Actor) (*AppointmentDetail, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Detail")
	defer span.End()

	if actor == nil {
		return nil, ErrForbidden
	}

	a, err := loadAppointment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	isPatient := actor.Role == domain.RolePatient && a.PatientID == actor.UserID
	if !isPatient {
		if _, err := authorizeHospital(ctx, s.directory, actor, a); err != nil {
			return nil, err
		}
	}

	c, err := s.consultations.GetByAppointmentID(ctx, a.ID)
	if err != nil && !errors.Is(err, consultation.ErrConsultationNotFound) {
		return nil, fmt.Errorf("loading consultation: %w", err)
	}

	health := vitals.NoData()
	if c != nil {
		snap := c.Vitals()
		health = vitals.Score(&snap)
	}
	s.metrics.HealthBand(string(health.Status))

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: string(domain.ActionRead), ResourceType: "appointment", ResourceID: a.ID.String(),
	})

	return &AppointmentDetail{
		Appointment:     a,
		Consultation:    c,
		Health:          health,
		ViewerIsPatient: isPatient,
	}, nil
}

func emptyPage(q *appointment.ListAppointmentsQuery) *appointment.PagedAppointments {
	return &appointment.PagedAppointments{
		Appointments: []*appointment.Appointment{},
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
}
