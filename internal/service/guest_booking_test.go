package service

import (
	"context"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestBookingService_StageAndConsumeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.guests.Stage(ctx, "sess", &appointment.GuestBooking{DoctorID: f.doctor.ID}))

	b, err := f.guests.Consume(ctx, "sess")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, f.doctor.ID, b.DoctorID)

	b, err = f.guests.Consume(ctx, "sess")
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestGuestBookingService_EmptySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.guests.Stage(ctx, "", &appointment.GuestBooking{})
	assert.True(t, IsValidation(err, ReasonInvalidInput))

	b, err := f.guests.Consume(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, b)
}
