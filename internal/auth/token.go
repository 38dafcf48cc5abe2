package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/driftapp/callrelay/internal/domain"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrMissingSubject  = errors.New("token has no subject")
	ErrSubjectMismatch = errors.New("claimed identity does not match token subject")
)

// TokenVerifier checks the bearer credential a transport presents on upgrade.
// It only verifies; issuing tokens is the auth system's job, not the relay's.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Subject verifies the token (HS256 only) and returns its subject claim.
func (v *TokenVerifier) Subject(token string) (domain.UserID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return domain.UserID(claims.Subject), nil
}

// CheckClaim pins a join's claimed identity to the token subject.
func CheckClaim(subject, claimed domain.UserID) error {
	if subject != "" && subject != claimed {
		return ErrSubjectMismatch
	}
	return nil
}
