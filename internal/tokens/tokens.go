package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload for both access and refresh tokens. Callers are
// responsible for checking TokenType; Decode only verifies the signature
// and expiry.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with a process-wide secret.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (i *Issuer) IssueAccess(subject string) (string, error) {
	return i.sign(subject, TypeAccess, i.AccessTTL, "")
}

// IssueRefresh also stamps a JTI so every refresh token is unique even for
// the same subject and expiry second.
func (i *Issuer) IssueRefresh(subject string) (string, error) {
	return i.sign(subject, TypeRefresh, i.RefreshTTL, uuid.NewString())
}

func (i *Issuer) sign(subject, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.Secret)
}

// Decode fails with ErrInvalidToken on malformed input, a bad signature or
// an expired exp claim.
func (i *Issuer) Decode(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
