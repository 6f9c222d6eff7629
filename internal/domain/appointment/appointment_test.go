package appointment

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineDateTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	got, err := CombineDateTime("2026-11-02", "09:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 2, 9, 30, 0, 0, loc), got)
	assert.Equal(t, time.Date(2026, 11, 2, 4, 0, 0, 0, time.UTC), got.UTC())

	got, err = CombineDateTime("2026-11-02", "09:30:15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Second())

	_, err = CombineDateTime("02/11/2026", "09:30", time.UTC)
	assert.Error(t, err)

	_, err = CombineDateTime("2026-11-02", "9.30am", time.UTC)
	assert.Error(t, err)
}

func TestAppointment_DateAndTime(t *testing.T) {
	a := &Appointment{ScheduledAt: time.Date(2026, 11, 2, 23, 45, 0, 0, time.UTC)}
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	assert.Equal(t, "2026-11-03", a.Date(loc))
	assert.Equal(t, "05:15", a.Time(loc))
	assert.Equal(t, "2026-11-02", a.Date(time.UTC))
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("pending").IsValid())
	assert.False(t, Status("NO_SHOW").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestPermissivePolicy(t *testing.T) {
	p := PolicyFor(false)

	assert.True(t, p.Allows(StatusCompleted, StatusPending))
	assert.True(t, p.Allows(StatusCancelled, StatusConfirmed))
	assert.True(t, p.Allows(StatusPending, StatusPending))
	assert.False(t, p.Allows(StatusPending, Status("ARCHIVED")))
}

func TestStrictPolicy(t *testing.T) {
	p := PolicyFor(true)

	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Allows(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
