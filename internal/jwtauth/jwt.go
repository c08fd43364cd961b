// Package jwtauth validates volunteer access tokens issued by the identity
// service. This subsystem only verifies; it never issues tokens.
package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
)

// Claims represents the JWT claims on volunteer access tokens.
type Claims struct {
	VolunteerID string `json:"volunteer_id"`
	jwt.RegisteredClaims
}

// Validator verifies HS256 access tokens against a shared signing key.
type Validator struct {
	signingKey []byte
	issuer     string
}

func NewValidator(signingKey string, issuer string) *Validator {
	return &Validator{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// ValidateToken parses and verifies the token and returns the volunteer ID.
func (v *Validator) ValidateToken(tokenString string) (id.VolunteerID, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.VolunteerID{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.VolunteerID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return id.VolunteerID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	volunteerID, err := id.ParseVolunteerID(claims.VolunteerID)
	if err != nil {
		return id.VolunteerID{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no volunteer identity")
	}
	return volunteerID, nil
}

// IssueForTest mints a short-lived token signed with the validator's key.
// Test helper; production tokens come from the identity service.
func (v *Validator) IssueForTest(volunteerID id.VolunteerID, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		VolunteerID: volunteerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    v.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(v.signingKey)
}
