package v1

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/gin-gonic/gin"
)

type VitalsService interface {
	RecordSelfReported(ctx context.Context, actor *domain.Actor, cmd *vitals.SelfReportCommand) (*vitals.HistoryRecord, error)
	ListHistory(ctx context.Context, actor *domain.Actor, limit int) ([]*vitals.HistoryRecord, error)
}

type VitalsHandler struct {
	svc VitalsService
}

func NewVitalsHandler(svc VitalsService) *VitalsHandler {
	return &VitalsHandler{svc: svc}
}

type selfReportRequest struct {
	HeightCm    float64 `json:"height"`
	WeightKg    float64 `json:"weight"`
	BPSystolic  int     `json:"bp_systolic"`
	BPDiastolic int     `json:"bp_diastolic"`
	HeartRate   int     `json:"heart_rate"`
	Temperature float64 `json:"temperature"`
}

func (h *VitalsHandler) Record(c *gin.Context) {
	var req selfReportRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.RecordSelfReported(c.Request.Context(), actorFrom(c), &vitals.SelfReportCommand{
		HeightCm:    req.HeightCm,
		WeightKg:    req.WeightKg,
		BPSystolic:  req.BPSystolic,
		BPDiastolic: req.BPDiastolic,
		HeartRate:   req.HeartRate,
		Temperature: req.Temperature,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, rec)
}

func (h *VitalsHandler) List(c *gin.Context) {
	rows, err := h.svc.ListHistory(c.Request.Context(), actorFrom(c), parseQueryInt(c, "limit", 50))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rows)
}
