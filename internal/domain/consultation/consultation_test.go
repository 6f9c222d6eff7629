package consultation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrescriptions_SkipsBlankNames(t *testing.T) {
	id := uuid.New()
	got := BuildPrescriptions(id, []PrescriptionInput{
		{MedicineName: "Paracetamol", Dosage: "1-0-1", Duration: "5 days", Instructions: "After food"},
		{MedicineName: "", Dosage: "0-0-1"},
		{MedicineName: "Cetirizine", Dosage: "0-0-1"},
	})

	if assert.Len(t, got, 2) {
		assert.Equal(t, "Paracetamol", got[0].MedicineName)
		assert.Equal(t, "After food", got[0].Instructions)
		assert.Equal(t, "Cetirizine", got[1].MedicineName)
		assert.Equal(t, id, got[1].ConsultationID)
	}

	assert.Empty(t, BuildPrescriptions(id, nil))
}

func TestConsultation_ApplyOverwritesWithEmpty(t *testing.T) {
	c := &Consultation{BloodPressure: "120/80", Diagnosis: "Viral fever", NurseName: "Asha"}
	c.Apply(DraftFields{NurseName: "Meera", Pulse: "80"})

	assert.Equal(t, "Meera", c.NurseName)
	assert.Equal(t, "80", c.Pulse)
	assert.Empty(t, c.BloodPressure)
	assert.Empty(t, c.Diagnosis)
}

func TestConsultation_Vitals(t *testing.T) {
	c := &Consultation{BloodPressure: "120/80", Pulse: "72", Temperature: "98.6", Weight: "70", Height: "5.7"}
	s := c.Vitals()

	assert.Equal(t, "120/80", s.BloodPressure)
	assert.Equal(t, "5.7", s.Height)
	assert.True(t, s.HasReadings())
	assert.False(t, c.IsCompleted())
}
