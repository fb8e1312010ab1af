package auth

import (
	"context"
	"errors"

	"dockcall-backend/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type in context")
)

// GetSessionFromContext extracts the authenticated session placed in the
// request context by the session middleware.
func GetSessionFromContext(ctx context.Context) (*model.Session, error) {
	sessionValue := ctx.Value("session")
	if sessionValue == nil {
		return nil, ErrSessionNotFound
	}

	session, ok := sessionValue.(*model.Session)
	if !ok {
		return nil, ErrInvalidSession
	}

	return session, nil
}

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token expired")
	ErrInvalidTokenType        = errors.New("invalid token type")
	ErrMissingRole             = errors.New("missing role in token")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
)

// ValidateJWTToken parses and validates a signed token, returning its claims.
func ValidateJWTToken(tokenString string, jwtSecretKey string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigningMethod
		}
		return []byte(jwtSecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	result := make(map[string]interface{})
	for key, value := range claims {
		result[key] = value
	}

	return result, nil
}
