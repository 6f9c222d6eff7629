package auth

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour,
		Issuer:          "clinicflow-test",
	})
}

func TestJWTManager_RoundTripPreservesActorLinks(t *testing.T) {
	m := newTestManager(time.Minute)
	hospitalID := uuid.New()

	pair, err := m.GenerateTokenPair(&domain.Claims{
		UserID:     uuid.New(),
		Email:      "admin@sunrise.example",
		Role:       domain.RoleHospital,
		HospitalID: &hospitalID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHospital, claims.Role)
	require.NotNil(t, claims.HospitalID)
	assert.Equal(t, hospitalID, *claims.HospitalID)
	assert.Nil(t, claims.DoctorID)

	actor := claims.Actor()
	assert.True(t, actor.Manages(hospitalID))
	assert.False(t, actor.Manages(uuid.New()))
}

func TestJWTManager_TokenTypeMismatch(t *testing.T) {
	m := newTestManager(time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestJWTManager_Invalid(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret-another-secret-xx", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Minute, Issuer: "clinicflow-test"})
	pair, err := other.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
