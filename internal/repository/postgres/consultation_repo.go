package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

// GetOrCreate relies on the unique index on appointment_id: concurrent
// first opens race on the insert and every caller then reads the winner.
func (r *ConsultationRepository) GetOrCreate(ctx context.Context, appointmentID uuid.UUID, startedAt time.Time) (*consultation.Consultation, bool, error) {
	db := r.db.WithContext(ctx)

	fresh := &consultation.Consultation{AppointmentID: appointmentID, StartedAt: startedAt}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "appointment_id"}},
		DoNothing: true,
	}).Omit("Prescriptions").Create(fresh)
	if res.Error != nil {
		return nil, false, fmt.Errorf("inserting consultation: %w", res.Error)
	}

	c, err := r.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, false, err
	}
	return c, res.RowsAffected == 1, nil
}

func (r *ConsultationRepository) GetByID(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *ConsultationRepository) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*consultation.Consultation, error) {
	return r.first(r.db.WithContext(ctx), "appointment_id = ?", appointmentID)
}

func (r *ConsultationRepository) SaveDraft(ctx context.Context, id uuid.UUID, f consultation.DraftFields, prescriptions []consultation.Prescription) (*consultation.Consultation, error) {
	var out *consultation.Consultation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked consultation.Consultation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return consultation.ErrConsultationNotFound
		}
		if err != nil {
			return fmt.Errorf("locking consultation: %w", err)
		}

		// A map keeps empty strings in the SET list.
		err = tx.Model(&consultation.Consultation{}).Where("id = ?", id).Updates(map[string]any{
			"nurse_name":  f.NurseName,
			"bp":          f.BloodPressure,
			"pulse":       f.Pulse,
			"temperature": f.Temperature,
			"weight":      f.Weight,
			"height":      f.Height,
			"symptoms":    f.Symptoms,
			"diagnosis":   f.Diagnosis,
			"advice":      f.Advice,
		}).Error
		if err != nil {
			return fmt.Errorf("updating consultation: %w", err)
		}

		if err := tx.Where("consultation_id = ?", id).Delete(&consultation.Prescription{}).Error; err != nil {
			return fmt.Errorf("clearing prescriptions: %w", err)
		}
		if len(prescriptions) > 0 {
			for i := range prescriptions {
				prescriptions[i].ConsultationID = id
			}
			if err := tx.Create(&prescriptions).Error; err != nil {
				return fmt.Errorf("inserting prescriptions: %w", err)
			}
		}

		out, err = r.first(tx, "id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConsultationRepository) Complete(ctx context.Context, id, appointmentID uuid.UUID, completedAt time.Time) (*consultation.Consultation, error) {
	var out *consultation.Consultation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&consultation.Consultation{}).
			Where("id = ? AND appointment_id = ?", id, appointmentID).
			Update("completed_at", completedAt)
		if res.Error != nil {
			return fmt.Errorf("stamping completion: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return consultation.ErrConsultationNotFound
		}

		res = tx.Model(&appointment.Appointment{}).
			Where("id = ?", appointmentID).
			Update("status", appointment.StatusCompleted)
		if res.Error != nil {
			return fmt.Errorf("completing appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return appointment.ErrAppointmentNotFound
		}

		var err error
		out, err = r.first(tx, "id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConsultationRepository) ListByHospital(ctx context.Context, q *consultation.ListConsultationsQuery) (*consultation.PagedConsultations, error) {
	tx := r.db.WithContext(ctx).Model(&consultation.Consultation{}).
		Joins("JOIN clinical.appointments a ON a.id = clinical.consultations.appointment_id").
		Joins("JOIN directory.doctors d ON d.id = a.doctor_id").
		Where("d.hospital_id = ?", q.HospitalID)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting consultations: %w", err)
	}

	var rows []*consultation.Consultation
	err := tx.Select("clinical.consultations.*").
		Preload("Prescriptions").
		Order("clinical.consultations.started_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing consultations: %w", err)
	}

	return &consultation.PagedConsultations{
		Consultations: rows,
		TotalCount:    total,
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    totalPages(total, q.PageSize),
	}, nil
}

func (r *ConsultationRepository) first(db *gorm.DB, cond string, arg any) (*consultation.Consultation, error) {
	var c consultation.Consultation
	err := db.Preload("Prescriptions").First(&c, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, consultation.ErrConsultationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading consultation: %w", err)
	}
	return &c, nil
}
