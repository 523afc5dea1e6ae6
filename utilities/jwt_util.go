package utilities

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionExpiry is the lifetime of an arc_session token.
const SessionExpiry = time.Hour * 24 * 7

var (
	ErrNoSessionSecret = errors.New("session secret is not configured")
	ErrInvalidSession  = errors.New("invalid or expired session")
)

var (
	secretMu      sync.RWMutex
	sessionSecret []byte
)

// SetSessionSecret configures the HS256 key; it comes from JWT_SECRET.
func SetSessionSecret(secret string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	sessionSecret = []byte(secret)
}

func secret() ([]byte, error) {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if len(sessionSecret) == 0 {
		return nil, ErrNoSessionSecret
	}
	return sessionSecret, nil
}

// SessionClaims is the payload of the arc_session cookie.
type SessionClaims struct {
	UserID        string `json:"userId"`
	EmailVerified bool   `json:"emailVerified"`
	TS            int64  `json:"ts"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session for the user valid for SessionExpiry.
func GenerateSessionToken(userID string, emailVerified bool, now time.Time) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	claims := &SessionClaims{
		UserID:        userID,
		EmailVerified: emailVerified,
		TS:            now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateSessionToken verifies the signature and expiry and returns the claims.
func ValidateSessionToken(tokenStr string) (*SessionClaims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
