package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lifecycle used by legitimate operations:
//
//	PENDING → CONFIRMED → COMPLETED
//	PENDING → CANCELLED
//	CONFIRMED → CANCELLED
//
// The data layer does not forbid other moves; see TransitionPolicy.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`

	// Date and time of the visit, stored as one instant.
	ScheduledAt time.Time `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	Status      Status    `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// Date returns the visit date in loc.
func (a *Appointment) Date(loc *time.Location) string {
	return a.ScheduledAt.In(loc).Format(DateLayout)
}

// Time returns the visit wall-clock time in loc.
func (a *Appointment) Time(loc *time.Location) string {
	return a.ScheduledAt.In(loc).Format(TimeLayout)
}

// CombineDateTime joins a "2006-01-02" date and a "15:04" (or "15:04:05")
// time in loc.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", date, err)
	}

	var t time.Time
	if t, err = time.Parse(TimeLayout, clock); err != nil {
		if t, err = time.Parse("15:04:05", clock); err != nil {
			return time.Time{}, fmt.Errorf("parsing time %q: %w", clock, err)
		}
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// GuestBooking is a booking request held across the anonymous →
// registered boundary. It is never persisted as an Appointment until
// materialized.
type GuestBooking struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes"`
	StagedAt    time.Time `json:"staged_at"`
}

type BookCommand struct {
	DoctorID uuid.UUID
	Date     string
	Time     string
	Notes    string
}

// BookResult holds exactly one of Appointment (authenticated patient) or
// Guest (anonymous caller).
type BookResult struct {
	Appointment *Appointment
	Guest       *GuestBooking
}

type ListAppointmentsQuery struct {
	PatientID  *uuid.UUID
	DoctorID   *uuid.UUID
	HospitalID *uuid.UUID
	Statuses   []Status
	// NewestFirst orders by scheduled_at descending; default is ascending.
	NewestFirst bool
	Page        int
	PageSize    int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
