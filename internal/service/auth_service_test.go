package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "compani"})
}

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := newTestAuthService()
	actor := models.Actor{UserID: "user-1", ClientRole: models.ClientRoleAdmin, CompanyID: "company-a"}

	token, expiresAt, err := svc.GenerateToken(actor)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
}

func TestAuthServiceRejectsForeignSecret(t *testing.T) {
	other := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "other", Issuer: "compani"})
	token, _, err := other.GenerateToken(models.Actor{UserID: "user-1"})
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateToken(models.Actor{UserID: "user-1"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRejectsOtherAlgorithms(t *testing.T) {
	claims := &models.JWTClaims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "compani"}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(signed)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
