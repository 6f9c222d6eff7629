package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHospital Role = "HOSPITAL"
	RoleDoctor   Role = "DOCTOR"
	RolePatient  Role = "PATIENT"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHospital, RoleDoctor, RolePatient:
		return true
	}
	return false
}

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user with this email already exists")
)

// Actor is the resolved identity of the caller of an engine operation.
// A nil *Actor means the caller is anonymous.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	// Set for HOSPITAL users: the hospital they administer.
	HospitalID *uuid.UUID
	// Set for DOCTOR users: their doctor profile.
	DoctorID *uuid.UUID
}

// Manages reports whether the actor administers hospitalID.
func (a *Actor) Manages(hospitalID uuid.UUID) bool {
	return a != nil && a.HospitalID != nil && *a.HospitalID == hospitalID
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName    string `gorm:"column:first_name;type:varchar(100)"`
	LastName     string `gorm:"column:last_name;type:varchar(100)"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index"`
	Phone        string `gorm:"column:phone;type:varchar(15)"`

	DateOfBirth *time.Time `gorm:"column:dob;type:date"`
	Gender      string     `gorm:"column:gender;type:varchar(10)"`
	BloodGroup  string     `gorm:"column:blood_group;type:varchar(5)"`

	IsActive bool `gorm:"column:is_active;default:true;index"`
}

func (User) TableName() string {
	return "auth.users"
}

// Age in whole years at now, nil without a date of birth.
func (u *User) Age(now time.Time) *int {
	if u.DateOfBirth == nil {
		return nil
	}
	dob := *u.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

type Hospital struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Name        string    `gorm:"column:name;type:varchar(255);not null"`
	Address     string    `gorm:"column:address;type:text"`
	AdminUserID uuid.UUID `gorm:"column:admin_user_id;type:uuid;uniqueIndex;not null"`
	IsVerified  bool      `gorm:"column:is_verified;default:false"`
}

func (Hospital) TableName() string {
	return "directory.hospitals"
}

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	HospitalID     uuid.UUID `gorm:"column:hospital_id;type:uuid;not null;index"`
	Specialization string    `gorm:"column:specialization;type:varchar(100)"`
	Available      bool      `gorm:"column:available;default:true"`
}

func (Doctor) TableName() string {
	return "directory.doctors"
}

// Directory resolves doctors and hospitals owned by the surrounding system.
type Directory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	GetHospitalByAdmin(ctx context.Context, adminUserID uuid.UUID) (*Hospital, error)
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID   *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	UserRole Role       `gorm:"column:user_role;type:varchar(30)"`

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID     uuid.UUID  `json:"sub"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	HospitalID *uuid.UUID `json:"hospital_id,omitempty"`
	DoctorID   *uuid.UUID `json:"doctor_id,omitempty"`
}

func (c *Claims) Actor() *Actor {
	return &Actor{
		UserID:     c.UserID,
		Role:       c.Role,
		HospitalID: c.HospitalID,
		DoctorID:   c.DoctorID,
	}
}
