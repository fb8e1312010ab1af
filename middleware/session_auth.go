package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"dockcall-backend/model"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionAuthMiddleware validates the session bearer token and injects the
// resolved session (role plus capabilities) into the request context.
type SessionAuthMiddleware struct {
	jwtSecretKey string
}

func NewSessionAuthMiddleware(jwtSecretKey string) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		jwtSecretKey: jwtSecretKey,
	}
}

func (m *SessionAuthMiddleware) Auth() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		authHeader := ctx.Header("Authorization")
		if authHeader == "" {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"message":"cabeçalho de autorização ausente","detail":"missing authorization header"}`))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"message":"formato de autorização inválido","detail":"invalid authorization format"}`))
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.jwtSecretKey), nil
		})

		if err != nil {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(fmt.Sprintf(`{"code":401,"message":"token inválido","detail":"%s"}`, err.Error())))
			return
		}

		if !token.Valid {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"code":401,"message":"token expirado ou inválido","detail":"invalid token"}`))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"code":401,"message":"não foi possível ler os claims do token","detail":"invalid token claims"}`))
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != string(model.TokenTypeSession) {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"code":401,"message":"tipo de token inválido","detail":"invalid token type"}`))
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok || roleStr == "" {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.BodyWriter().Write([]byte(`{"message":"token sem papel de acesso","detail":"missing role in token"}`))
			return
		}

		role := model.UserRole(roleStr)
		session := &model.Session{
			Role:         role,
			Capabilities: model.CapabilitiesForRole(role),
		}

		ctx = huma.WithValue(ctx, "session", session)
		ctx = huma.WithValue(ctx, "role", roleStr)

		next(ctx)
	}
}

// GetSessionFromContext reads the session injected by Auth.
func (m *SessionAuthMiddleware) GetSessionFromContext(ctx huma.Context) (*model.Session, bool) {
	session, ok := ctx.Context().Value("session").(*model.Session)
	return session, ok
}
