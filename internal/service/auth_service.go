package service

import (
	"errors"
	"time"

	"accidentsev/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and checks form session tokens
type AuthService struct {
	jwtSecret []byte
	ttl       time.Duration
}

// NewAuthService creates a new auth service. Tokens live as long as the
// session they point at.
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		ttl:       ttl,
	}
}

// GenerateSessionToken creates a token scoped to one form session
func (s *AuthService) GenerateSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := &model.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken validates a session JWT and returns claims
func (s *AuthService) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
