package service

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memStore

	hospital      *domain.Hospital
	otherHospital *domain.Hospital
	doctor        *domain.Doctor
	otherDoctor   *domain.Doctor

	patient       *domain.Actor
	staff         *domain.Actor
	otherStaff    *domain.Actor
	doctorActor   *domain.Actor
	unlinkedStaff *domain.Actor

	appointments  *AppointmentService
	consultations *ConsultationService
	vitals        *VitalsService
	guests        *GuestBookingService
	auth          *AuthService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	policy appointment.TransitionPolicy
	loc    *time.Location
}

func withPolicy(p appointment.TransitionPolicy) fixtureOption {
	return func(c *fixtureConfig) { c.policy = p }
}

func withLocation(loc *time.Location) fixtureOption {
	return func(c *fixtureConfig) { c.loc = loc }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{policy: appointment.PermissivePolicy{}, loc: time.UTC}
	for _, o := range opts {
		o(&cfg)
	}

	store := newMemStore()
	log := zap.NewNop()

	staffUser := uuid.New()
	otherStaffUser := uuid.New()
	h := store.addHospital(staffUser)
	oh := store.addHospital(otherStaffUser)
	d := store.addDoctor(h.ID)
	od := store.addDoctor(oh.ID)

	dir := fakeDirectory{store}
	appts := fakeAppointmentRepo{store}
	cons := fakeConsultationRepo{store}

	vitalsSvc := NewVitalsService(fakeVitalsRepo{store}, nil, log)
	apptSvc := NewAppointmentService(appts, cons, dir, cfg.policy, cfg.loc, nil, nil, log)
	apptSvc.now = func() time.Time { return fixedNow }
	consSvc := NewConsultationService(cons, appts, dir, vitalsSvc, nil, nil, log)
	consSvc.now = func() time.Time { return fixedNow }
	guestSvc := NewGuestBookingService(fakeGuestStore{store}, time.Hour, log)

	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "clinicflow-test",
	})
	authSvc := NewAuthService(fakeUserRepo{store}, dir, jwtManager, guestSvc, apptSvc, nil, log)

	return &fixture{
		store:         store,
		hospital:      h,
		otherHospital: oh,
		doctor:        d,
		otherDoctor:   od,
		patient:       &domain.Actor{UserID: uuid.New(), Role: domain.RolePatient},
		staff:         &domain.Actor{UserID: staffUser, Role: domain.RoleHospital, HospitalID: &h.ID},
		otherStaff:    &domain.Actor{UserID: otherStaffUser, Role: domain.RoleHospital, HospitalID: &oh.ID},
		doctorActor:   &domain.Actor{UserID: d.UserID, Role: domain.RoleDoctor, DoctorID: &d.ID},
		unlinkedStaff: &domain.Actor{UserID: uuid.New(), Role: domain.RoleHospital},
		appointments:  apptSvc,
		consultations: consSvc,
		vitals:        vitalsSvc,
		guests:        guestSvc,
		auth:          authSvc,
	}
}

// seed stores an appointment with doctor d for patient p at fixedNow+offset.
func (f *fixture) seed(p uuid.UUID, d *domain.Doctor, status appointment.Status, offset time.Duration) *appointment.Appointment {
	return f.store.seedAppointment(&appointment.Appointment{
		PatientID:   p,
		DoctorID:    d.ID,
		ScheduledAt: fixedNow.Add(offset),
		Status:      status,
	})
}
