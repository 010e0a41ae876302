package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CandidateSessionTTL bounds the session minted on invite
	// redemption; the candidate has this long to sit the test.
	CandidateSessionTTL = 8 * time.Hour

	// LoginSessionTTL is the lifetime of an interactive login session.
	LoginSessionTTL = 7 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims identifies an authenticated user for the duration of a
// session.
type SessionClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionCodec mints and verifies session JWTs.
type SessionCodec struct {
	signingKey []byte
}

func NewSessionCodec(signingKey []byte) *SessionCodec {
	return &SessionCodec{signingKey: signingKey}
}

func (s *SessionCodec) Issue(userID uint, email, role string, ttl time.Duration, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionCodec) Verify(raw string) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return &claims, nil
}
