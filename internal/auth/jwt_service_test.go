package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sweetshop/internal/errors"
)

func TestNewJWTService_RequiresSecret(t *testing.T) {
	svc, err := NewJWTService("", time.Hour)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret", 7*24*time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	token, issued, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	subject, err := claims.Subject()
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestJWTService_ValidateToken_Failures(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewJWTService("other-secret", time.Hour)
	require.NoError(t, err)

	expired, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	foreign, _, err := other.GenerateToken(uuid.New())
	require.NoError(t, err)
	stale, _, err := expired.GenerateToken(uuid.New())
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString()})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "42",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	weird, err := badSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	good, _, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"malformed":     "not-a-jwt",
		"wrong secret":  foreign,
		"expired":       stale,
		"alg none":      none,
		"non uuid id":   weird,
		"tampered body": tampered,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := svc.ValidateToken(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}
