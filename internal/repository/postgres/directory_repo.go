package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectoryRepository reads the doctor and hospital tables. Profiles are
// managed elsewhere; this side never writes them.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	return &d, nil
}

func (r *DirectoryRepository) GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading doctor profile: %w", err)
	}
	return &d, nil
}

func (r *DirectoryRepository) GetHospitalByAdmin(ctx context.Context, adminUserID uuid.UUID) (*domain.Hospital, error) {
	var h domain.Hospital
	err := r.db.WithContext(ctx).First(&h, "admin_user_id = ?", adminUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrHospitalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading hospital: %w", err)
	}
	return &h, nil
}
