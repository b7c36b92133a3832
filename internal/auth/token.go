package auth // package auth provides token issuing/verification and access decisions

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by Verify for any token that cannot be
// accepted: malformed, signed with an unknown algorithm or key, or
// expired.  Callers translate it into an authentication failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID uint64
	Role   string
}

// TokenService issues and verifies HS256 bearer tokens.  The signing
// secret and TTL are explicit constructor arguments so tests can run
// with distinct keys and rotation amounts to constructing a new
// service.  Tokens are stateless: Verify never consults storage, so a
// token stays valid until its expiry even after logout or a role
// change.  Deactivated accounts are still cut off at resolution time
// because the middleware reloads the user on every request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a TokenService with the given signing secret
// and token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the given user.  The claims are the standard
// sub/iat/exp plus the role.  Pure function of input, secret and clock.
func (s *TokenService) Issue(userID uint64, role string) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks the signature and expiry of a raw token and returns its
// claims.  Any failure is reported as ErrInvalidToken: handlers need no
// finer distinction than "log in again".
func (s *TokenService) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is acceptable; reject tokens claiming other methods.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, ErrInvalidToken
	}
	role, ok := mc["role"].(string)
	if !ok || role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uint64(sub), Role: role}, nil
}
