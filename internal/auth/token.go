// Package auth issues and verifies the admin bearer token.
//
// There is exactly one admin identity, resolved from configuration at
// startup. Login compares the submitted pair against it and, on a
// match, signs a time-limited JWT. Every mutating or listing endpoint
// verifies that JWT before doing anything else.
package auth

import (
	"errors"
	"time"

	"studentportal/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrBadCredentials means the username/password pair did not match
	// the configured admin identity.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidToken covers every verification failure: malformed,
	// wrong signature, wrong algorithm, or expired.
	ErrInvalidToken = errors.New("invalid token")
)

// Subject is the fixed claim carried by every admin token.
const Subject = "admin"

// Claims is the payload of an issued token. Only the registered claims
// matter — there is a single admin, so no per-user fields exist.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies admin tokens against a process-wide
// secret. It is read-only after construction and safe for concurrent
// use.
type Service struct {
	adminUsername string
	adminPassword string
	signingKey    []byte
	tokenTTL      time.Duration
}

// New builds a Service from the loaded configuration.
func New(cfg config.Auth) *Service {
	return &Service{
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		signingKey:    []byte(cfg.JWTSecret),
		tokenTTL:      cfg.TokenTTL,
	}
}

// Login checks the pair against the configured admin identity — exact,
// case-sensitive comparison, no hashing — and returns a signed token on
// success.
func (s *Service) Login(username, password string) (string, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return "", ErrBadCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(s.signingKey)
}

// Verify parses and validates a token string. Any failure — missing,
// malformed, bad signature, or expired — comes back as ErrInvalidToken
// so callers answer 401 without leaking which check failed.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Accept only HMAC — a token re-signed with "none" or an
		// asymmetric key must not validate.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
