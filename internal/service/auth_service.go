package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
)

const minPasswordLength = 8

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type AuthService struct {
	userRepo     UserRepository
	directory    domain.Directory
	jwtManager   *auth.JWTManager
	guests       *GuestBookingService
	appointments *AppointmentService
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewAuthService(
	userRepo UserRepository,
	directory domain.Directory,
	jwtManager *auth.JWTManager,
	guests *GuestBookingService,
	appointments *AppointmentService,
	auditSvc *AuditService,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		directory:    directory,
		jwtManager:   jwtManager,
		guests:       guests,
		appointments: appointments,
		auditSvc:     auditSvc,
		log:          log,
	}
}

type RegisterCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type RegisterResult struct {
	User *domain.User
	// Appointment is set when a staged guest booking was materialized.
	Appointment *appointment.Appointment
}

// Register creates a patient account and then materializes any guest
// booking staged under guestSessionID. Guest booking problems are logged and
// never fail the registration.
func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand, guestSessionID string) (*RegisterResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	var bad []string
	if _, err := mail.ParseAddress(email); err != nil {
		bad = append(bad, "email is invalid")
	}
	if len(cmd.Password) < minPasswordLength {
		bad = append(bad, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(bad) > 0 {
		return nil, newValidationError(ReasonInvalidInput, nil, bad...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		Phone:        cmd.Phone,
		Role:         domain.RolePatient,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: u.ID, UserRole: string(u.Role),
		Action: string(domain.ActionCreate), ResourceType: "user", ResourceID: u.ID.String(),
	})

	result := &RegisterResult{User: u}

	staged, err := s.guests.Consume(ctx, guestSessionID)
	if err != nil {
		s.log.Warn("could not read staged guest booking", zap.Error(err))
		return result, nil
	}
	if staged == nil {
		return result, nil
	}

	a, err := s.appointments.MaterializeGuestBooking(ctx, staged, u.ID)
	if err != nil {
		s.log.Warn("error booking guest appointment",
			zap.String("user_id", u.ID.String()),
			zap.Error(err),
		)
		return result, nil
	}
	result.Appointment = a

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	claims, err := s.claimsFor(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtManager.GenerateTokenPair(claims)
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: user.ID, UserRole: string(user.Role),
		Action: string(domain.ActionLogin), ResourceType: "user", ResourceID: user.ID.String(),
	})

	return pair, nil
}

// RefreshToken issues a new pair given a valid refresh token. Profile
// links are re-resolved so directory changes take effect.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	fresh, err := s.claimsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.jwtManager.GenerateTokenPair(fresh)
}

// claimsFor attaches the managed hospital or doctor profile for staff roles.
// A missing profile leaves the link empty, which scopes the user to nothing.
func (s *AuthService) claimsFor(ctx context.Context, u *domain.User) (*domain.Claims, error) {
	claims := &domain.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}

	switch u.Role {
	case domain.RoleHospital:
		h, err := s.directory.GetHospitalByAdmin(ctx, u.ID)
		switch {
		case err == nil:
			claims.HospitalID = &h.ID
		case !errors.Is(err, domain.ErrHospitalNotFound):
			return nil, fmt.Errorf("resolving managed hospital: %w", err)
		}
	case domain.RoleDoctor:
		d, err := s.directory.GetDoctorByUser(ctx, u.ID)
		switch {
		case err == nil:
			claims.DoctorID = &d.ID
		case !errors.Is(err, domain.ErrDoctorNotFound):
			return nil, fmt.Errorf("resolving doctor profile: %w", err)
		}
	}

	return claims, nil
}
