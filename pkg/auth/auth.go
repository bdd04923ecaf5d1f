package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

var (
	ErrNoAuthHeader    = errors.New("No Authorization Header")
	ErrMalformedHeader = errors.New("Invalid Authorization Header")
	errInvalidClaims   = errors.New("invalid identity claims")
)

// VerifyError reports a token that could not be verified.
type VerifyError struct {
	Err error
}

func (e *VerifyError) Error() string { return "invalid token: " + e.Err.Error() }

func (e *VerifyError) Unwrap() error { return e.Err }

// RoleError reports a verified caller whose role is outside the required set.
type RoleError struct {
	Role     Role
	Required []Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("role %q is not allowed, required one of %v", e.Role, e.Required)
}

type Identity struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

type Claims struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims checks.
func (c *Claims) Validate() error {
	if c.ID <= 0 {
		return errInvalidClaims
	}
	return nil
}

// Authenticate turns an Authorization header value into an Identity.
// With an empty required set any known role passes.
func Authenticate(header string, secret []byte, required ...Role) (Identity, error) {
	if header == "" {
		return Identity{}, ErrNoAuthHeader
	}
	token, ok := strings.CutPrefix(header, bearer)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return Identity{}, ErrMalformedHeader
	}

	claims, err := Parse(token, secret)
	if err != nil {
		return Identity{}, &VerifyError{Err: err}
	}
	if len(required) == 0 {
		if !claims.Role.Valid() {
			return Identity{}, &RoleError{Role: claims.Role, Required: StaffRoles}
		}
	} else if !claims.Role.In(required) {
		return Identity{}, &RoleError{Role: claims.Role, Required: required}
	}
	return Identity{ID: claims.ID, Role: claims.Role}, nil
}

func Parse(token string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(id int64, role Role) (string, error) {
	now := m.now()
	claims := &Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) Authenticate(header string, required ...Role) (Identity, error) {
	return Authenticate(header, m.secret, required...)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
