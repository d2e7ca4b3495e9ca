package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified subject attached to a request after a successful
// token check.
type Identity struct {
	SubjectID string
	Role      string
}

// Claims is the signed token payload: subject, role and the standard
// issued-at/expiry pair.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed, time-limited identity tokens.
//
// Tokens are stateless: once issued they remain verifiable until their
// embedded expiry elapses, regardless of later account changes such as
// deactivation. There is no server-side revocation.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens constructs a token issuer/verifier with the given HMAC secret
// and token lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for the given subject and role.
func (t *Tokens) Issue(subjectID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Callers must not leak whether a failure was an expired or a malformed
// token; the access gate collapses both into the same denial.
func (t *Tokens) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	return &Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
