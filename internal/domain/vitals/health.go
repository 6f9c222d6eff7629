package vitals

import "strings"

// Snapshot carries the raw vitals strings captured during a consultation.
type Snapshot struct {
	BloodPressure string
	Pulse         string
	Temperature   string
	Weight        string
	Height        string
}

// HasReadings is true when any field that feeds the vitals history is set.
// Height is not part of the check.
func (s Snapshot) HasReadings() bool {
	return s.BloodPressure != "" || s.Pulse != "" || s.Temperature != "" || s.Weight != ""
}

type HealthStatus string

const (
	StatusExcellent      HealthStatus = "Excellent"
	StatusGood           HealthStatus = "Good"
	StatusNeedsAttention HealthStatus = "Needs Attention"
	StatusCritical       HealthStatus = "Critical"
)

// Severity is the display tag paired with a status.
type Severity string

const (
	SeveritySuccess   Severity = "success"
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityDanger    Severity = "danger"
	SeveritySecondary Severity = "secondary"
)

const (
	defaultTemperatureF = 98.6
	defaultPulseBPM     = 72

	msgBloodPressure = "Blood Pressure is irregular."
	msgFever         = "Fever detected."
	msgPulse         = "Pulse rate abnormal."
	msgHealthy       = "Vitals are within healthy range."
)

type Assessment struct {
	// HasData is false when there was no consultation to score.
	HasData  bool         `json:"has_data"`
	Score    float64      `json:"score"`
	Status   HealthStatus `json:"status,omitempty"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
}

// NoData is the result for an appointment without a consultation.
func NoData() Assessment {
	return Assessment{Severity: SeveritySecondary}
}

// Score rates a snapshot from three components that each start at 100.
// Unparseable values fall back to healthy defaults.
func Score(s *Snapshot) Assessment {
	if s == nil {
		return NoData()
	}

	var notes []string

	bpScore := 100.0
	if sys, dia, ok := ParseBloodPressure(s.BloodPressure); ok {
		if sys > 140 || sys < 90 || dia > 90 || dia < 60 {
			bpScore = 50
			notes = append(notes, msgBloodPressure)
		}
	}

	tempScore := 100.0
	temp, ok := ParseFloat(s.Temperature)
	if !ok {
		temp = defaultTemperatureF
	}
	if temp > 99.5 {
		tempScore = 60
		notes = append(notes, msgFever)
	}

	pulseScore := 100.0
	pulse, ok := ParseInt(s.Pulse)
	if !ok {
		pulse = defaultPulseBPM
	}
	if pulse > 100 || pulse < 60 {
		pulseScore = 70
		notes = append(notes, msgPulse)
	}

	overall := (bpScore + tempScore + pulseScore) / 3
	a := Assessment{
		HasData: true,
		Score:   overall,
		Message: strings.Join(notes, " "),
	}

	switch {
	case overall >= 90:
		a.Status, a.Severity = StatusExcellent, SeveritySuccess
		if a.Message == "" {
			a.Message = msgHealthy
		}
	case overall >= 70:
		a.Status, a.Severity = StatusGood, SeverityInfo
	case overall >= 50:
		a.Status, a.Severity = StatusNeedsAttention, SeverityWarning
	default:
		a.Status, a.Severity = StatusCritical, SeverityDanger
	}

	return a
}
