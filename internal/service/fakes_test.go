package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/google/uuid"
)

var errStorage = errors.New("storage unavailable")

// memStore backs every fake below with one lock so multi-entity writes
// behave like a single transaction.
type memStore struct {
	mu sync.Mutex

	appointments  map[uuid.UUID]*appointment.Appointment
	consultations map[uuid.UUID]*consultation.Consultation
	history       []*vitals.HistoryRecord
	doctors       map[uuid.UUID]*domain.Doctor
	hospitals     map[uuid.UUID]*domain.Hospital
	users         map[uuid.UUID]*domain.User
	guests        map[string]*appointment.GuestBooking
	audit         []*domain.AuditLog

	appointmentCreates int
	// failAppointmentStatus makes any appointment status write fail.
	failAppointmentStatus bool
	failHistory           bool
}

func newMemStore() *memStore {
	return &memStore{
		appointments:  map[uuid.UUID]*appointment.Appointment{},
		consultations: map[uuid.UUID]*consultation.Consultation{},
		doctors:       map[uuid.UUID]*domain.Doctor{},
		hospitals:     map[uuid.UUID]*domain.Hospital{},
		users:         map[uuid.UUID]*domain.User{},
		guests:        map[string]*appointment.GuestBooking{},
	}
}

func (m *memStore) addHospital(adminUserID uuid.UUID) *domain.Hospital {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := &domain.Hospital{ID: uuid.New(), Name: "General", AdminUserID: adminUserID}
	m.hospitals[h.ID] = h
	return h
}

func (m *memStore) addDoctor(hospitalID uuid.UUID) *domain.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &domain.Doctor{ID: uuid.New(), UserID: uuid.New(), HospitalID: hospitalID}
	m.doctors[d.ID] = d
	return d
}

func (m *memStore) seedAppointment(a *appointment.Appointment) *appointment.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return a
}

func (m *memStore) appointment(id uuid.UUID) *appointment.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (m *memStore) consultationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.consultations)
}

func (m *memStore) historyFor(patientID uuid.UUID) []*vitals.HistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*vitals.HistoryRecord
	for _, r := range m.history {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out
}

// ---- appointment.Repository ----

type fakeAppointmentRepo struct{ *memStore }

var _ appointment.Repository = fakeAppointmentRepo{}

func (f fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	f.appointments[a.ID] = &cp
	f.appointmentCreates++
	return nil
}

func (f fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if a := f.appointment(id); a != nil {
		return a, nil
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (f fakeAppointmentRepo) List(_ context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []*appointment.Appointment
	for _, a := range f.appointments {
		if q.PatientID != nil && a.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.HospitalID != nil {
			d, ok := f.doctors[a.DoctorID]
			if !ok || d.HospitalID != *q.HospitalID {
				continue
			}
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, a.Status) {
			continue
		}
		cp := *a
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		if q.NewestFirst {
			return rows[i].ScheduledAt.After(rows[j].ScheduledAt)
		}
		return rows[i].ScheduledAt.Before(rows[j].ScheduledAt)
	})

	total := int64(len(rows))
	start := (q.Page - 1) * q.PageSize
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return &appointment.PagedAppointments{
		Appointments: rows[start:end],
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

func (f fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status appointment.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppointmentStatus {
		return errStorage
	}
	a, ok := f.appointments[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func containsStatus(set []appointment.Status, s appointment.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ---- consultation.Repository ----

type fakeConsultationRepo struct{ *memStore }

var _ consultation.Repository = fakeConsultationRepo{}

func (f fakeConsultationRepo) GetOrCreate(_ context.Context, appointmentID uuid.UUID, startedAt time.Time) (*consultation.Consultation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.consultations {
		if c.AppointmentID == appointmentID {
			return copyConsultation(c), false, nil
		}
	}
	c := &consultation.Consultation{ID: uuid.New(), AppointmentID: appointmentID, StartedAt: startedAt}
	f.consultations[c.ID] = c
	return copyConsultation(c), true, nil
}

func (f fakeConsultationRepo) GetByID(_ context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.consultations[id]
	if !ok {
		return nil, consultation.ErrConsultationNotFound
	}
	return copyConsultation(c), nil
}

func (f fakeConsultationRepo) GetByAppointmentID(_ context.Context, appointmentID uuid.UUID) (*consultation.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.consultations {
		if c.AppointmentID == appointmentID {
			return copyConsultation(c), nil
		}
	}
	return nil, consultation.ErrConsultationNotFound
}

func (f fakeConsultationRepo) SaveDraft(_ context.Context, id uuid.UUID, fields consultation.DraftFields, prescriptions []consultation.Prescription) (*consultation.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.consultations[id]
	if !ok {
		return nil, consultation.ErrConsultationNotFound
	}
	c.Apply(fields)
	c.Prescriptions = make([]consultation.Prescription, len(prescriptions))
	for i, p := range prescriptions {
		p.ID = uuid.New()
		p.ConsultationID = id
		c.Prescriptions[i] = p
	}
	return copyConsultation(c), nil
}

func (f fakeConsultationRepo) Complete(_ context.Context, id, appointmentID uuid.UUID, completedAt time.Time) (*consultation.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.consultations[id]
	if !ok || c.AppointmentID != appointmentID {
		return nil, consultation.ErrConsultationNotFound
	}
	a, ok := f.appointments[appointmentID]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if f.failAppointmentStatus {
		return nil, errStorage
	}
	ts := completedAt
	c.CompletedAt = &ts
	a.Status = appointment.StatusCompleted
	return copyConsultation(c), nil
}

func (f fakeConsultationRepo) ListByHospital(_ context.Context, q *consultation.ListConsultationsQuery) (*consultation.PagedConsultations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []*consultation.Consultation
	for _, c := range f.consultations {
		a := f.appointments[c.AppointmentID]
		if a == nil {
			continue
		}
		if d := f.doctors[a.DoctorID]; d != nil && d.HospitalID == q.HospitalID {
			rows = append(rows, copyConsultation(c))
		}
	}
	return &consultation.PagedConsultations{
		Consultations: rows,
		TotalCount:    int64(len(rows)),
		Page:          q.Page,
		PageSize:      q.PageSize,
	}, nil
}

func copyConsultation(c *consultation.Consultation) *consultation.Consultation {
	cp := *c
	cp.Prescriptions = append([]consultation.Prescription(nil), c.Prescriptions...)
	return &cp
}

// ---- vitals.Repository ----

type fakeVitalsRepo struct{ *memStore }

var _ vitals.Repository = fakeVitalsRepo{}

func (f fakeVitalsRepo) Append(_ context.Context, r *vitals.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failHistory {
		return errStorage
	}
	r.ID = uuid.New()
	r.RecordedAt = time.Now()
	cp := *r
	f.history = append(f.history, &cp)
	return nil
}

func (f fakeVitalsRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit int) ([]*vitals.HistoryRecord, error) {
	rows := f.historyFor(patientID)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ---- domain.Directory ----

type fakeDirectory struct{ *memStore }

var _ domain.Directory = fakeDirectory{}

func (f fakeDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*domain.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.doctors[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrDoctorNotFound
}

func (f fakeDirectory) GetDoctorByUser(_ context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDoctorNotFound
}

func (f fakeDirectory) GetHospitalByAdmin(_ context.Context, adminUserID uuid.UUID) (*domain.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hospitals {
		if h.AdminUserID == adminUserID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrHospitalNotFound
}

// ---- UserRepository ----

type fakeUserRepo struct{ *memStore }

var _ UserRepository = fakeUserRepo{}

func (f fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	u.ID = uuid.New()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

// ---- appointment.GuestStore ----

type fakeGuestStore struct{ *memStore }

var _ appointment.GuestStore = fakeGuestStore{}

func (f fakeGuestStore) Put(_ context.Context, sessionID string, b *appointment.GuestBooking, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.guests[sessionID] = &cp
	return nil
}

func (f fakeGuestStore) Take(_ context.Context, sessionID string) (*appointment.GuestBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.guests[sessionID]
	if !ok {
		return nil, appointment.ErrGuestBookingNotFound
	}
	delete(f.guests, sessionID)
	return b, nil
}

// ---- AuditRepository ----

type fakeAuditRepo struct{ *memStore }

func (f fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, entry)
	return nil
}

func (f fakeAuditRepo) entries() []*domain.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.AuditLog(nil), f.audit...)
}
