package v1

import (
	"context"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, cmd *service.RegisterCommand, guestSessionID string) (*service.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

type AuthHandler struct {
	svc          AuthService
	appointments AppointmentService
	secureCookie bool
}

func NewAuthHandler(svc AuthService, appointments AppointmentService, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, appointments: appointments, secureCookie: secureCookie}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=15"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type userView struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
}

type registerView struct {
	User        userView         `json:"user"`
	Appointment *appointmentView `json:"appointment,omitempty"`
}

// Register creates a patient and books any appointment staged by the same
// browser while it was anonymous.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	sessionID, _ := c.Cookie(guestSessionCookie)
	res, err := h.svc.Register(c.Request.Context(), &service.RegisterCommand{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if sessionID != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(guestSessionCookie, "", -1, "/", "", h.secureCookie, true)
	}

	out := registerView{User: userView{
		ID:        res.User.ID,
		Email:     res.User.Email,
		FirstName: res.User.FirstName,
		LastName:  res.User.LastName,
		Role:      res.User.Role,
	}}
	msg := ""
	if res.Appointment != nil {
		loc := h.appointments.Location()
		out.Appointment = &appointmentView{
			Appointment: res.Appointment,
			Date:        res.Appointment.Date(loc),
			Time:        res.Appointment.Time(loc),
		}
		msg = "Account created and your appointment was booked."
	}
	c.JSON(http.StatusCreated, APIResponse[registerView]{Data: out, Message: msg})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}
