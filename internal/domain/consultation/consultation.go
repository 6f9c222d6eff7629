package consultation

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/google/uuid"
)

// Consultation is the single clinical encounter attached to an appointment.
// A nil CompletedAt means the encounter is still in progress.
type Consultation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex" json:"appointment_id"`
	StartedAt     time.Time `gorm:"column:started_at;not null" json:"started_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	NurseName string `gorm:"column:nurse_name;type:varchar(100)" json:"nurse_name"`

	// Vitals exactly as captured; see vitals.Parse* for interpretation.
	BloodPressure string `gorm:"column:bp;type:varchar(20)" json:"bp"`
	Pulse         string `gorm:"column:pulse;type:varchar(20)" json:"pulse"`
	Temperature   string `gorm:"column:temperature;type:varchar(20)" json:"temperature"`
	Weight        string `gorm:"column:weight;type:varchar(20)" json:"weight"`
	Height        string `gorm:"column:height;type:varchar(20)" json:"height"`

	Symptoms  string `gorm:"column:symptoms;type:text" json:"symptoms"`
	Diagnosis string `gorm:"column:diagnosis;type:text" json:"diagnosis"`
	Advice    string `gorm:"column:advice;type:text" json:"advice"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`

	Prescriptions []Prescription `gorm:"foreignKey:ConsultationID;constraint:OnDelete:CASCADE" json:"prescriptions"`
}

func (Consultation) TableName() string {
	return "clinical.consultations"
}

func (c *Consultation) IsCompleted() bool {
	return c.CompletedAt != nil
}

func (c *Consultation) Vitals() vitals.Snapshot {
	return vitals.Snapshot{
		BloodPressure: c.BloodPressure,
		Pulse:         c.Pulse,
		Temperature:   c.Temperature,
		Weight:        c.Weight,
		Height:        c.Height,
	}
}

// Apply overwrites every scalar field with f. Empty values clear.
func (c *Consultation) Apply(f DraftFields) {
	c.NurseName = f.NurseName
	c.BloodPressure = f.BloodPressure
	c.Pulse = f.Pulse
	c.Temperature = f.Temperature
	c.Weight = f.Weight
	c.Height = f.Height
	c.Symptoms = f.Symptoms
	c.Diagnosis = f.Diagnosis
	c.Advice = f.Advice
}

type Prescription struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConsultationID uuid.UUID `gorm:"column:consultation_id;type:uuid;not null;index" json:"-"`

	MedicineName string `gorm:"column:medicine_name;type:varchar(200);not null" json:"medicine_name"`
	Dosage       string `gorm:"column:dosage;type:varchar(100)" json:"dosage"`     // e.g. "1-0-1"
	Duration     string `gorm:"column:duration;type:varchar(100)" json:"duration"` // e.g. "5 days"
	Instructions string `gorm:"column:instructions;type:text" json:"instructions"` // e.g. "After food"
}

func (Prescription) TableName() string {
	return "clinical.prescriptions"
}

// DraftFields is the full scalar state submitted on each save.
type DraftFields struct {
	NurseName     string
	BloodPressure string
	Pulse         string
	Temperature   string
	Weight        string
	Height        string
	Symptoms      string
	Diagnosis     string
	Advice        string
}

// PrescriptionInput is one submitted prescription row.
type PrescriptionInput struct {
	MedicineName string
	Dosage       string
	Duration     string
	Instructions string
}

// BuildPrescriptions converts submitted rows, dropping any without a
// medicine name.
func BuildPrescriptions(consultationID uuid.UUID, in []PrescriptionInput) []Prescription {
	out := make([]Prescription, 0, len(in))
	for _, p := range in {
		if p.MedicineName == "" {
			continue
		}
		out = append(out, Prescription{
			ConsultationID: consultationID,
			MedicineName:   p.MedicineName,
			Dosage:         p.Dosage,
			Duration:       p.Duration,
			Instructions:   p.Instructions,
		})
	}
	return out
}

type ListConsultationsQuery struct {
	HospitalID uuid.UUID
	Page       int
	PageSize   int
}

type PagedConsultations struct {
	Consultations []*Consultation `json:"items"`
	TotalCount    int64           `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	TotalPages    int             `json:"total_pages"`
}
