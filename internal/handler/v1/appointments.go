package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const guestSessionCookie = "guest_session"

type AppointmentService interface {
	Location() *time.Location
	Book(ctx context.Context, actor *domain.Actor, cmd *appointment.BookCommand) (*appointment.BookResult, error)
	Transition(ctx context.Context, id uuid.UUID, actor *domain.Actor, status appointment.Status) (*appointment.Appointment, error)
	VisibleTo(ctx context.Context, actor *domain.Actor, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error)
	History(ctx context.Context, actor *domain.Actor, page, pageSize int) (*appointment.PagedAppointments, error)
	Detail(ctx context.Context, id uuid.UUID, actor *domain.Actor) (*service.AppointmentDetail, error)
}

type GuestStager interface {
	Stage(ctx context.Context, sessionID string, b *appointment.GuestBooking) error
}

type AppointmentHandler struct {
	svc          AppointmentService
	guests       GuestStager
	cookieTTL    time.Duration
	secureCookie bool
	log          *zap.Logger
}

func NewAppointmentHandler(svc AppointmentService, guests GuestStager, cookieTTL time.Duration, secureCookie bool, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, guests: guests, cookieTTL: cookieTTL, secureCookie: secureCookie, log: log}
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	Date     string    `json:"date" binding:"required"`
	Time     string    `json:"time" binding:"required"`
	Notes    string    `json:"notes" binding:"max=2000"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type appointmentView struct {
	*appointment.Appointment
	Date string `json:"date"`
	Time string `json:"time"`
}

type guestBookingView struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Notes    string    `json:"notes"`
}

type pagedView struct {
	Items      []appointmentView `json:"items"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type detailView struct {
	Appointment     appointmentView            `json:"appointment"`
	Consultation    *consultation.Consultation `json:"consultation"`
	Health          vitals.Assessment          `json:"health"`
	ViewerIsPatient bool                       `json:"viewer_is_patient"`
}

func (h *AppointmentHandler) view(a *appointment.Appointment) appointmentView {
	loc := h.svc.Location()
	return appointmentView{Appointment: a, Date: a.Date(loc), Time: a.Time(loc)}
}

func (h *AppointmentHandler) page(p *appointment.PagedAppointments) pagedView {
	items := make([]appointmentView, 0, len(p.Appointments))
	for _, a := range p.Appointments {
		items = append(items, h.view(a))
	}
	return pagedView{Items: items, TotalCount: p.TotalCount, Page: p.Page, PageSize: p.PageSize, TotalPages: p.TotalPages}
}

// Book creates an appointment for a signed-in patient. Anonymous callers get
// their request staged under a guest_session cookie and a 202.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := actorFrom(c)
	res, err := h.svc.Book(c.Request.Context(), actor, &appointment.BookCommand{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Time:     req.Time,
		Notes:    req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if res.Guest != nil {
		sessionID, err := c.Cookie(guestSessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
		}
		if err := h.guests.Stage(c.Request.Context(), sessionID, res.Guest); err != nil {
			h.log.Error("failed to stage guest booking", zap.Error(err))
			respondServiceError(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(guestSessionCookie, sessionID, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)

		loc := h.svc.Location()
		c.JSON(http.StatusAccepted, APIResponse[guestBookingView]{
			Data: guestBookingView{
				DoctorID: res.Guest.DoctorID,
				Date:     res.Guest.ScheduledAt.In(loc).Format(appointment.DateLayout),
				Time:     res.Guest.ScheduledAt.In(loc).Format(appointment.TimeLayout),
				Notes:    res.Guest.Notes,
			},
			Message: "Please create an account to confirm your appointment.",
		})
		return
	}

	respondCreated(c, h.view(res.Appointment))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := appointment.Status(strings.ToUpper(strings.TrimSpace(s)))
			if !st.IsValid() {
				respondError(c, http.StatusBadRequest, "invalid status filter: "+s)
				return
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	q.NewestFirst = c.Query("order") == "desc"

	p, err := h.svc.VisibleTo(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, h.page(p))
}

func (h *AppointmentHandler) History(c *gin.Context) {
	p, err := h.svc.History(c.Request.Context(), actorFrom(c),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, h.page(p))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.Detail(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, detailView{
		Appointment:     h.view(d.Appointment),
		Consultation:    d.Consultation,
		Health:          d.Health,
		ViewerIsPatient: d.ViewerIsPatient,
	})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Transition(c.Request.Context(), id, actorFrom(c), appointment.Status(strings.ToUpper(req.Status)))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, h.view(a))
}
