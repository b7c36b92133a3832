package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", 30*time.Minute)

	raw, exp, err := svc.Issue(42, model.RoleCustomer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), exp, 2*time.Second)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", 30*time.Minute)

	// Issue in the past, verify with the real clock.
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := svc.Issue(7, model.RoleAdmin)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := NewTokenService("key-a", time.Minute)
	verifier := NewTokenService("key-b", time.Minute)

	raw, _, err := issuer.Issue(7, model.RoleCustomer)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	// Unsigned token claiming alg=none must not pass.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  float64(7),
		"role": model.RoleCustomer,
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}

func TestVerifyRequiresSubjectAndRole(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	for name, claims := range map[string]jwt.MapClaims{
		"missing sub":  {"role": model.RoleCustomer, "exp": time.Now().Add(time.Minute).Unix()},
		"missing role": {"sub": float64(7), "exp": time.Now().Add(time.Minute).Unix()},
	} {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		raw, err := tok.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
