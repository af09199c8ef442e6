package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/requestcontext"
)

var userID = id.UserID(uuid.New())

func newService() *JWTService {
	return NewJWTService("test-signing-key", "vaxtrack-test", "vaxtrack-api", time.Hour)
}

func Test_GenerateAndValidate(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateAccessToken_RequiresUser(t *testing.T) {
	_, err := newService().GenerateAccessToken(context.Background(), id.UserID{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_Expired(t *testing.T) {
	svc := newService()
	issued := time.Now().Add(-2 * time.Hour)
	token, err := svc.GenerateAccessToken(requestcontext.WithTime(context.Background(), issued), userID)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsForeignIssuerAndAudience(t *testing.T) {
	token, err := NewJWTService("test-signing-key", "someone-else", "vaxtrack-api", time.Hour).
		GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	assert.ErrorContains(t, err, "invalid token")

	token, err = NewJWTService("test-signing-key", "vaxtrack-test", "other-api", time.Hour).
		GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	assert.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := AccessTokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "vaxtrack-test",
			Audience:  []string{"vaxtrack-api"},
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{"hs512 header rejected", jwt.SigningMethodHS512, []byte("test-signing-key")},
		{"alg none rejected", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := jwt.NewWithClaims(tt.signMethod, claims).SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = newService().ValidateToken(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func Test_Adapter(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(svc).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.JTI)
}

func Test_Verify(t *testing.T) {
	svc := newService()
	issued := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	token, err := svc.GenerateAccessToken(requestcontext.WithTime(context.Background(), issued), userID)
	require.NoError(t, err)

	t.Run("returns the principal at the request time", func(t *testing.T) {
		p, err := svc.Verify(requestcontext.WithTime(context.Background(), issued.Add(30*time.Minute)), token)
		require.NoError(t, err)
		assert.Equal(t, userID, p.UserID)
		assert.NotEmpty(t, p.TokenID)
		assert.Equal(t, issued.Add(time.Hour), p.ExpiresAt.UTC())
	})

	t.Run("expired relative to the request time", func(t *testing.T) {
		_, err := svc.Verify(requestcontext.WithTime(context.Background(), issued.Add(2*time.Hour)), token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
