package v1

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConsultationService interface {
	OpenOrCreate(ctx context.Context, appointmentID uuid.UUID, actor *domain.Actor) (*consultation.Consultation, error)
	SaveDraft(ctx context.Context, consultationID uuid.UUID, actor *domain.Actor, fields consultation.DraftFields, prescriptions []consultation.PrescriptionInput) (*consultation.Consultation, error)
	Complete(ctx context.Context, consultationID, appointmentID uuid.UUID, actor *domain.Actor) (*consultation.Consultation, error)
	ListForHospital(ctx context.Context, actor *domain.Actor, page, pageSize int) (*consultation.PagedConsultations, error)
}

type ConsultationHandler struct {
	svc ConsultationService
}

func NewConsultationHandler(svc ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{svc: svc}
}

type prescriptionRequest struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type saveDraftRequest struct {
	NurseName     string                `json:"nurse_name"`
	BloodPressure string                `json:"bp"`
	Pulse         string                `json:"pulse"`
	Temperature   string                `json:"temperature"`
	Weight        string                `json:"weight"`
	Height        string                `json:"height"`
	Symptoms      string                `json:"symptoms"`
	Diagnosis     string                `json:"diagnosis"`
	Advice        string                `json:"advice"`
	Prescriptions []prescriptionRequest `json:"prescriptions" binding:"max=50"`
	// Complete finalizes the consultation after saving.
	Complete bool `json:"complete"`
}

type completeRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
}

// Open returns the appointment's consultation, creating it on first open.
func (h *ConsultationHandler) Open(c *gin.Context) {
	appointmentID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cons, err := h.svc.OpenOrCreate(c.Request.Context(), appointmentID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cons)
}

func (h *ConsultationHandler) Save(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req saveDraftRequest
	if !bindJSON(c, &req) {
		return
	}

	prescriptions := make([]consultation.PrescriptionInput, 0, len(req.Prescriptions))
	for _, p := range req.Prescriptions {
		prescriptions = append(prescriptions, consultation.PrescriptionInput{
			MedicineName: p.MedicineName,
			Dosage:       p.Dosage,
			Duration:     p.Duration,
			Instructions: p.Instructions,
		})
	}

	actor := actorFrom(c)
	saved, err := h.svc.SaveDraft(c.Request.Context(), id, actor, consultation.DraftFields{
		NurseName:     req.NurseName,
		BloodPressure: req.BloodPressure,
		Pulse:         req.Pulse,
		Temperature:   req.Temperature,
		Weight:        req.Weight,
		Height:        req.Height,
		Symptoms:      req.Symptoms,
		Diagnosis:     req.Diagnosis,
		Advice:        req.Advice,
	}, prescriptions)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Complete {
		saved, err = h.svc.Complete(c.Request.Context(), saved.ID, saved.AppointmentID, actor)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}
	respondOK(c, saved)
}

func (h *ConsultationHandler) Complete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req completeRequest
	if !bindJSON(c, &req) {
		return
	}

	done, err := h.svc.Complete(c.Request.Context(), id, req.AppointmentID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, done)
}

func (h *ConsultationHandler) List(c *gin.Context) {
	p, err := h.svc.ListForHospital(c.Request.Context(), actorFrom(c),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}
