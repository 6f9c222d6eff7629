package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VitalsRepository struct {
	db *gorm.DB
}

func NewVitalsRepository(db *gorm.DB) *VitalsRepository {
	return &VitalsRepository{db: db}
}

func (r *VitalsRepository) Append(ctx context.Context, rec *vitals.HistoryRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("inserting vitals record: %w", err)
	}
	return nil
}

func (r *VitalsRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*vitals.HistoryRecord, error) {
	var rows []*vitals.HistoryRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing vitals history: %w", err)
	}
	return rows, nil
}
