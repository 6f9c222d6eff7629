package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// VitalsService owns the append-only vitals history.
type VitalsService struct {
	repo    vitals.Repository
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewVitalsService(repo vitals.Repository, m *metrics.Collector, log *zap.Logger) *VitalsService {
	return &VitalsService{repo: repo, metrics: m, log: log}
}

// Append records a consultation snapshot in the patient's history. It never
// fails the caller: parse anomalies default to zero and storage errors are
// logged.
func (s *VitalsService) Append(ctx context.Context, patientID uuid.UUID, snap vitals.Snapshot, hospitalID *uuid.UUID) {
	ctx, span := tracer.Start(ctx, "VitalsService.Append")
	defer span.End()

	r := vitals.FromSnapshot(patientID, snap, hospitalID)
	if err := s.repo.Append(ctx, r); err != nil {
		s.log.Warn("failed to append vitals history",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		return
	}
	s.metrics.VitalsRecorded("consultation")
}

// RecordSelfReported lets a patient add their own reading.
func (s *VitalsService) RecordSelfReported(ctx context.Context, actor *domain.Actor, cmd *vitals.SelfReportCommand) (*vitals.HistoryRecord, error) {
	if actor == nil || actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}

	var bad []string
	if cmd.HeightCm < 0 {
		bad = append(bad, "height must not be negative")
	}
	if cmd.WeightKg < 0 {
		bad = append(bad, "weight must not be negative")
	}
	if cmd.BPSystolic < 0 || cmd.BPDiastolic < 0 || cmd.HeartRate < 0 {
		bad = append(bad, "blood pressure and heart rate must not be negative")
	}
	if len(bad) > 0 {
		return nil, newValidationError(ReasonInvalidInput, nil, bad...)
	}

	r := &vitals.HistoryRecord{
		PatientID:   actor.UserID,
		HeightCm:    cmd.HeightCm,
		WeightKg:    cmd.WeightKg,
		BPSystolic:  cmd.BPSystolic,
		BPDiastolic: cmd.BPDiastolic,
		HeartRate:   cmd.HeartRate,
		Temperature: cmd.Temperature,
	}
	if err := s.repo.Append(ctx, r); err != nil {
		return nil, fmt.Errorf("recording vitals: %w", err)
	}
	s.metrics.VitalsRecorded("self_reported")
	return r, nil
}

// ListHistory returns the patient's own history, newest first.
func (s *VitalsService) ListHistory(ctx context.Context, actor *domain.Actor, limit int) ([]*vitals.HistoryRecord, error) {
	if actor == nil || actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByPatient(ctx, actor.UserID, limit)
}
