package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/vitals"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAppointmentRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical"."appointments" SET "status"=$1`)).
		WithArgs("CONFIRMED", sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), id, appointment.StatusConfirmed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_UpdateStatusMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical"."appointments"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(), appointment.StatusCancelled)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clinical"."appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalsRepository_Append(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalsRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "clinical"."vitals_history"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectCommit()

	rec := vitals.FromSnapshot(uuid.New(), vitals.Snapshot{BloodPressure: "120/80", Pulse: "72"}, nil)
	require.NoError(t, repo.Append(context.Background(), rec))
	assert.Equal(t, id, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepository_GetOrCreateExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository(db)
	appointmentID := uuid.New()
	existingID := uuid.New()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("appointment_id") DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clinical"."consultations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "appointment_id", "started_at"}).
			AddRow(existingID.String(), appointmentID.String(), started))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clinical"."prescriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "consultation_id", "medicine_name"}))

	c, created, err := repo.GetOrCreate(context.Background(), appointmentID, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existingID, c.ID)
	assert.Equal(t, started, c.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepository_CompleteRollsBackWithoutAppointment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical"."consultations" SET "completed_at"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical"."appointments" SET "status"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), uuid.New(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepository_CompleteUnknownConsultation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical"."consultations"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), uuid.New(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, consultation.ErrConsultationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepository_GetDoctorNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "directory"."doctors"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetDoctor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
	assert.Equal(t, 0, totalPages(5, 0))
}
