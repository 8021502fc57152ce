package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type (
	// Issuer mints and checks bearer tokens
	Issuer struct {
		secret Secret
		ttl    time.Duration
		now    func() time.Time
	}

	claims struct {
		jwt.RegisteredClaims
		Username string `json:"username"`
	}
)

const (
	DefaultTokenTTL = time.Hour
)

// NewIssuer returns an issuer signing with secret, ttl <= 0 selects
// DefaultTokenTTL
func NewIssuer(secret Secret, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of i that reads the current time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(subject string) (string, error) {
	if len(subject) == 0 {
		return "", MissingField{Name: "subject"}
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: subject,
	})
	signed, err := token.SignedString([]byte(i.secret))
	if err != nil {
		return "", fmt.Errorf("unable to sign token, cause %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token.
//
// Errors can be matched with errors.Is against Malformed,
// InvalidSignature and Expired.
func (i *Issuer) Verify(token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return []byte(i.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now))
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Identity{}, verifyError{kind: Malformed, cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Identity{}, verifyError{kind: InvalidSignature, cause: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, verifyError{kind: Expired, cause: err}
	default:
		return Identity{}, verifyError{kind: Malformed, cause: err}
	}
	if !parsed.Valid || len(c.Subject) == 0 {
		return Identity{}, verifyError{kind: Malformed}
	}
	id := Identity{Username: c.Subject}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
