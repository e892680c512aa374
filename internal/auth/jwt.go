package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "isLoggedIn"
	SessionTTL        = 24 * time.Hour

	loggedInValue = "true"
)

// Sessions signs and verifies the session flag stored in the isLoggedIn
// cookie. The flag carries no admin identity.
type Sessions struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
}

type Claims struct {
	IsLoggedIn string `json:"isLoggedIn"`
	jwt.RegisteredClaims
}

func NewSessions(secret []byte, issuer string) *Sessions {
	return &Sessions{
		Secret: secret,
		TTL:    SessionTTL,
		Issuer: issuer,
	}
}

func (m *Sessions) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Sessions) Issue() (string, error) {
	now := m.now()
	claims := Claims{
		IsLoggedIn: loggedInValue,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
}

func (m *Sessions) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.Issuer))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Valid reports whether tokenStr is an unexpired, correctly signed flag
// asserting isLoggedIn = "true".
func (m *Sessions) Valid(tokenStr string) bool {
	if tokenStr == "" {
		return false
	}
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return false
	}
	return claims.IsLoggedIn == loggedInValue
}
