/**
 * @description
 * This package maps a verified account identity to a signed bearer token and
 * back. Tokens are HS256 JWTs carrying the account id, email and account
 * number; verification resolves the token into the identity that every core
 * operation receives.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT signing and parsing.
 */

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

// ErrInvalidToken is returned for any token that fails verification,
// regardless of the underlying cause.
var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies bearer tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer. ttl bounds how long issued tokens stay valid.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed bearer token for the account.
func (i *Issuer) Issue(accountID uuid.UUID, email, accountNumber string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":            accountID.String(),
		"email":          email,
		"account_number": accountNumber,
		"iat":            now.Unix(),
		"exp":            now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning the identity it
// carries. Any failure (bad signature, expiry, malformed claims) comes back
// as ErrInvalidToken so callers treat all invalid tokens the same way.
func (i *Issuer) Verify(tokenString string) (*domain.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountNumber, ok := claims["account_number"].(string)
	if !ok || accountNumber == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{AccountID: accountID, AccountNumber: accountNumber}, nil
}
