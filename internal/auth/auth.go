package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session token stays valid
const SessionTTL = 24 * time.Hour

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionService issues and verifies anonymous session tokens. A session
// is a random id wrapped in an HS256 JWT; it keys the caller's preferences.
type SessionService struct {
	secret []byte
	now    func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret), now: time.Now}
}

// NewSession generates a session id and its signed token
func (s *SessionService) NewSession() (id, token string, err error) {
	id = uuid.NewString()
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": id,
		"iat":        now.Unix(),
		"exp":        now.Add(SessionTTL).Unix(),
	})
	token, err = t.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session: %w", err)
	}
	return id, token, nil
}

// SessionFromToken extracts the session id from a token
func (s *SessionService) SessionFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidSession
	}
	id, ok := claims["session_id"].(string)
	if !ok {
		return "", ErrInvalidSession
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidSession
	}
	return id, nil
}
