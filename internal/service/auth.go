package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

const (
	sessionClaim = "sid"

	// SessionCookie holds the signed session token on HTTP clients.
	SessionCookie = "user_session"
)

type AuthService interface {
	GenerateToken(sessionID string) (string, error)
	ParseToken(token string) (string, error)
}

type authServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService signs session ids into HS256 tokens valid for ttl.
func NewAuthService(secretKey string, ttl time.Duration) AuthService {
	return &authServiceImpl{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (that *authServiceImpl) GenerateToken(sessionID string) (string, error) {
	now := that.now()

	claims := jwt.MapClaims{
		sessionClaim: sessionID,
		"iat":        now.Unix(),
		"exp":        now.Add(that.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken returns the session id of a valid, unexpired token.
func (that *authServiceImpl) ParseToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(that.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", apperror.ErrInvalidToken
	}

	sessionID, ok := claims[sessionClaim].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidToken, errMissingSession)
	}

	return sessionID, nil
}

var errMissingSession = errors.New("token has no session")
