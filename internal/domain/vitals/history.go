package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is one entry in a patient's longitudinal vitals series.
// Records are append-only.
type HistoryRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RecordedAt time.Time  `gorm:"column:recorded_at;autoCreateTime;index" json:"recorded_at"`
	PatientID  uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	HospitalID *uuid.UUID `gorm:"column:hospital_id;type:uuid;index" json:"hospital_id,omitempty"`

	HeightCm    float64 `gorm:"column:height;not null" json:"height"`
	WeightKg    float64 `gorm:"column:weight;not null" json:"weight"`
	BPSystolic  int     `gorm:"column:bp_systolic;not null" json:"bp_systolic"`
	BPDiastolic int     `gorm:"column:bp_diastolic;not null" json:"bp_diastolic"`
	HeartRate   int     `gorm:"column:heart_rate;not null" json:"heart_rate"`
	Temperature float64 `gorm:"column:temperature;not null" json:"temperature"`
}

func (HistoryRecord) TableName() string {
	return "clinical.vitals_history"
}

// FromSnapshot maps consultation strings onto a record. Unparseable
// values become zero. Height is always 0: the consultation workflow
// does not feed height into the history.
func FromSnapshot(patientID uuid.UUID, s Snapshot, hospitalID *uuid.UUID) *HistoryRecord {
	sys, dia, _ := ParseBloodPressure(s.BloodPressure)
	hr, _ := ParseInt(s.Pulse)
	temp, _ := ParseFloat(s.Temperature)
	wt, _ := ParseFloat(s.Weight)

	return &HistoryRecord{
		PatientID:   patientID,
		HospitalID:  hospitalID,
		HeightCm:    0,
		WeightKg:    wt,
		BPSystolic:  sys,
		BPDiastolic: dia,
		HeartRate:   hr,
		Temperature: temp,
	}
}

type SelfReportCommand struct {
	HeightCm    float64
	WeightKg    float64
	BPSystolic  int
	BPDiastolic int
	HeartRate   int
	Temperature float64
}

type Repository interface {
	Append(ctx context.Context, r *HistoryRecord) error
	// ListByPatient returns the newest records first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*HistoryRecord, error)
}
