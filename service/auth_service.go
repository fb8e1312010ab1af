package service

import (
	"context"
	"time"

	"dockcall-backend/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthService exchanges a shared access password for a role session. The
// panel has no user accounts: each role has one access password and the
// JWT only carries the role.
type AuthService struct {
	logger       zerolog.Logger
	jwtSecretKey string
	expiresHours int
	passwords    map[string]model.UserRole
	actionLog    *ActionLogService
}

func NewAuthService(logger zerolog.Logger, jwtSecretKey string, expiresHours int, rolePasswords map[model.UserRole]string, actionLog *ActionLogService) *AuthService {
	passwords := make(map[string]model.UserRole, len(rolePasswords))
	for role, password := range rolePasswords {
		passwords[password] = role
	}

	return &AuthService{
		logger:       logger.With().Str("module", "auth_service").Logger(),
		jwtSecretKey: jwtSecretKey,
		expiresHours: expiresHours,
		passwords:    passwords,
		actionLog:    actionLog,
	}
}

// LoginResult is the issued session.
type LoginResult struct {
	Token        string
	Role         model.UserRole
	Capabilities model.Capabilities
	ExpiresAt    time.Time
}

// Login resolves the access password to a role and issues a session token.
func (s *AuthService) Login(ctx context.Context, password string) (*LoginResult, error) {
	role, ok := s.passwords[password]
	if !ok {
		s.logger.Warn().Msg("login attempt with invalid access password")
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(time.Duration(s.expiresHours) * time.Hour)
	claims := jwt.MapClaims{
		"type": string(model.TokenTypeSession),
		"role": string(role),
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign session token")
		return nil, err
	}

	s.logger.Info().Str("role", string(role)).Msg("session issued")
	s.actionLog.Record(ctx, model.ActionLogin, role, "Acesso ao painel")

	return &LoginResult{
		Token:        signed,
		Role:         role,
		Capabilities: model.CapabilitiesForRole(role),
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout records the end of a session. Tokens are stateless, so this is
// audit-only.
func (s *AuthService) Logout(ctx context.Context, role model.UserRole) {
	s.actionLog.Record(ctx, model.ActionLogout, role, "Saída do painel")
}
