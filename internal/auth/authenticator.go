package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator verifies handshake bearer tokens against the forum's shared
// signing secret. It never fails a connection: any problem resolves to the
// anonymous identity (user id 0) and privileged operations are rejected at
// the point of use instead.
type Authenticator struct {
	secret string
}

// NewAuthenticator constructs an Authenticator. An empty secret disables
// verification entirely; every connection is then anonymous.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Identify resolves a raw token ("Bearer x" prefix tolerated) to a user id.
// It returns 0 for the anonymous identity; the error describes why identity
// resolution degraded and is for logging only.
func (a *Authenticator) Identify(token string) (int64, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	if token == "" {
		return 0, errors.New("missing token")
	}
	if a.secret == "" {
		return 0, errors.New("signing secret not configured")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	// Numeric JSON claims decode as float64.
	if id, ok := claims["user_id"].(float64); ok && id > 0 {
		return int64(id), nil
	}
	return 0, errors.New("missing user_id claim")
}
