package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:    true,
		// Surfaces unique violations as gorm.ErrDuplicatedKey.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinical", "auth", "audit", "directory"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&domain.Hospital{},
		&domain.Doctor{},
		&appointment.Appointment{},
		&consultation.Consultation{},
		&consultation.Prescription{},
		&vitals.HistoryRecord{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_appointments_doctor_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_schedule ON clinical.appointments (doctor_id, scheduled_at)`,
		},
		{
			name:  "idx_appointments_patient_status",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_status ON clinical.appointments (patient_id, status, scheduled_at DESC)`,
		},
		{
			name:  "idx_vitals_history_patient_time",
			query: `CREATE INDEX IF NOT EXISTS idx_vitals_history_patient_time ON clinical.vitals_history (patient_id, recorded_at DESC)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			// Indexes are an optimisation; a failure must not block startup.
			log.Warn("failed to create index", zap.String("index", idx.name), zap.Error(err))
		}
	}

	return nil
}

const startedAtKey = "clinicflow:started_at"

// Instrument feeds query timings into the collector's DB histogram and warns
// on queries slower than threshold.
func Instrument(db *gorm.DB, m *metrics.Collector, log *zap.Logger, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startedAtKey, time.Now())
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startedAtKey)
			if !ok {
				return
			}
			elapsed := time.Since(v.(time.Time))
			if m != nil {
				m.DBQueryDuration.WithLabelValues(op, tx.Statement.Table).Observe(elapsed.Seconds())
			}
			if threshold > 0 && elapsed > threshold {
				log.Warn("slow query",
					zap.String("operation", op),
					zap.String("table", tx.Statement.Table),
					zap.Duration("duration", elapsed),
				)
			}
		}
	}

	cb := db.Callback()
	regs := []error{
		cb.Create().Before("gorm:create").Register("clinicflow:before_create", before),
		cb.Create().After("gorm:create").Register("clinicflow:after_create", after("create")),
		cb.Query().Before("gorm:query").Register("clinicflow:before_query", before),
		cb.Query().After("gorm:query").Register("clinicflow:after_query", after("query")),
		cb.Update().Before("gorm:update").Register("clinicflow:before_update", before),
		cb.Update().After("gorm:update").Register("clinicflow:after_update", after("update")),
		cb.Delete().Before("gorm:delete").Register("clinicflow:before_delete", before),
		cb.Delete().After("gorm:delete").Register("clinicflow:after_delete", after("delete")),
	}
	for _, err := range regs {
		if err != nil {
			return fmt.Errorf("registering query callbacks: %w", err)
		}
	}
	return nil
}
