package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config        *config.Config
	Tokens        TokenValidator
	Appointments  *AppointmentHandler
	Consultations *ConsultationHandler
	Auth          *AuthHandler
	Vitals        *VitalsHandler
	Metrics       *metrics.Collector
	Log           *zap.Logger
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		Tracing(),
		RequestLogger(d.Log),
		Metrics(d.Metrics),
		CORS(d.Config.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": d.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1", RateLimit(d.Config.RateLimit))

	authGroup := api.Group("/auth", AuthRateLimit(d.Config.RateLimit))
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)

	api.POST("/appointments", OptionalAuth(d.Tokens), d.Appointments.Book)

	secured := api.Group("", RequireAuth(d.Tokens))
	secured.GET("/appointments", d.Appointments.List)
	secured.GET("/appointments/history", d.Appointments.History)
	secured.GET("/appointments/:id", d.Appointments.Get)
	secured.PATCH("/appointments/:id/status", d.Appointments.UpdateStatus)
	secured.POST("/appointments/:id/consultation", d.Consultations.Open)

	secured.GET("/consultations", d.Consultations.List)
	secured.PUT("/consultations/:id", d.Consultations.Save)
	secured.POST("/consultations/:id/complete", d.Consultations.Complete)

	secured.GET("/vitals", d.Vitals.List)
	secured.POST("/vitals", d.Vitals.Record)

	return r
}

// Tracing starts a server span per request, continuing any incoming trace.
func Tracing() gin.HandlerFunc {
	tr := otel.Tracer("clinicflow/http")
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		ctx, span := tr.Start(ctx, c.Request.Method+" "+name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", name),
			attribute.Int("http.response.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
