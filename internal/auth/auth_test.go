package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/model"
)

const secret = "test-secret"

func TestHashAndCheck(t *testing.T) {
	hash, err := auth.HashPassword("Passw0rd!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)
	assert.NotContains(t, hash, "Passw0rd!")

	assert.True(t, auth.CheckPassword(hash, "Passw0rd!"))
	assert.False(t, auth.CheckPassword(hash, "passw0rd!"))

	// per-call salt
	again, _ := auth.HashPassword("Passw0rd!", bcrypt.MinCost)
	assert.NotEqual(t, hash, again)
}

func TestDummyHashMatchesCost(t *testing.T) {
	h, err := auth.DummyHash(bcrypt.MinCost + 1)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"doc@x.com", "a.b+c@clinic.example.org"} {
		assert.NoError(t, auth.ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "doc", "doc@", "@x.com", "doc x@x.com"} {
		err := auth.ValidateEmail(bad)
		assert.ErrorIs(t, err, model.ErrValidation, bad)
	}
}

func TestPolicy(t *testing.T) {
	strict := auth.Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true, RequireSymbol: true}

	tests := []struct {
		name   string
		policy auth.Policy
		pw     string
		reason string
	}{
		{"default ok", auth.DefaultPolicy(), "longenough", ""},
		{"default too short", auth.DefaultPolicy(), "short", "at least 8"},
		{"too long", auth.DefaultPolicy(), strings.Repeat("a", 73), "at most 72"},
		{"multibyte too short", auth.DefaultPolicy(), "ééééé", "at least 8"},
		{"multibyte ok", auth.DefaultPolicy(), "éééééééé", ""},
		{"multibyte over byte cap", auth.DefaultPolicy(), strings.Repeat("é", 37), "at most 72"},
		{"strict ok", strict, "Passw0rd!", ""},
		{"no upper", strict, "passw0rd!", "upper-case"},
		{"no lower", strict, "PASSW0RD!", "lower-case"},
		{"no digit", strict, "Password!", "digit"},
		{"no symbol", strict, "Passw0rdd", "symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.pw)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var fe *model.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "password", fe.Field)
			assert.Contains(t, fe.Reason, tt.reason)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	sid := auth.NewSessionID()
	tok, err := auth.MakeToken(7, sid, secret, time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, sid, claims.SessionID())

	diff := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, time.Hour.Seconds(), diff.Seconds(), 60)
}

func TestTokenExpired(t *testing.T) {
	tok, err := auth.MakeToken(7, auth.NewSessionID(), secret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(tok, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAlgorithmConfusion(t *testing.T) {
	tok, _ := auth.MakeToken(1, auth.NewSessionID(), secret, time.Hour)

	_, err := auth.ParseToken(tok, "wrong-secret")
	assert.Error(t, err)

	_, err = auth.ParseToken("not.a.token", secret)
	assert.Error(t, err)

	// alg none must be rejected
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ID: "x"},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(raw, secret)
	assert.Error(t, err)
}

func TestTokenWithoutSessionRejected(t *testing.T) {
	tok, err := auth.MakeToken(1, "", secret, time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken(tok, secret)
	assert.ErrorIs(t, err, auth.ErrBadToken)
}
