// Package auth verifies access tokens issued by the hosted auth service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/domain"
)

const clockLeeway = 30 * time.Second

// Identity is the verified caller behind an access token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

// appMetadata carries the back-office role. The hosted auth service only
// lets privileged code write it, unlike user_metadata.
type appMetadata struct {
	Role string `json:"role,omitempty"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email,omitempty"`
	AppMetadata appMetadata `json:"app_metadata"`
}

// Verifier validates HS256 access tokens signed with the shared project secret.
type Verifier struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewVerifier creates a Verifier from the auth settings.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		accessTTL: cfg.AccessTokenTTL,
	}
}

// Verify parses and validates a token. All failures wrap domain.ErrUnauthorized.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w: %w", domain.ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", domain.ErrUnauthorized)
	}

	role := domain.Role(claims.AppMetadata.Role)
	if !role.IsValid() {
		return Identity{}, fmt.Errorf("unknown role %q: %w", role, domain.ErrForbidden)
	}

	return Identity{UserID: userID, Email: claims.Email, Role: role}, nil
}

// ValidateToken adapts Verify to the HTTP auth middleware.
func (v *Verifier) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	id, err := v.Verify(token)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id.UserID, id.Role.String(), nil
}

// Issue signs a token for the given identity. Used for service accounts
// (scheduled export jobs, scripts) that call the REST API directly.
func (v *Verifier) Issue(id Identity) (string, error) {
	if !id.Role.IsValid() {
		return "", errors.New("issue token: invalid role")
	}

	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(v.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:       id.Email,
		AppMetadata: appMetadata{Role: id.Role.String()},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
