package controller

import (
	"context"
	"errors"
	"net/http"

	sessionauth "dockcall-backend/auth"
	authmodels "dockcall-backend/data-models/auth"
	"dockcall-backend/data-models/common"
	"dockcall-backend/middleware"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type AuthController struct {
	logger         zerolog.Logger
	authService    *service.AuthService
	authMiddleware *middleware.SessionAuthMiddleware
}

func NewAuthController(logger zerolog.Logger, authService *service.AuthService, authMiddleware *middleware.SessionAuthMiddleware) *AuthController {
	return &AuthController{
		logger:         logger.With().Str("module", "auth_controller").Logger(),
		authService:    authService,
		authMiddleware: authMiddleware,
	}
}

func (c *AuthController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Trocar a senha de acesso por uma sessão",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *authmodels.LoginInput) (*authmodels.LoginResponse, error) {
		result, err := c.authService.Login(ctx, input.Body.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("senha de acesso inválida", err)
			}
			c.logger.Error().Err(err).Msg("login failed")
			return nil, huma.Error500InternalServerError("falha ao iniciar sessão", err)
		}

		data := authmodels.LoginData{
			Token:        result.Token,
			Role:         result.Role,
			Capabilities: result.Capabilities,
			ExpiresAt:    result.ExpiresAt,
		}
		return &authmodels.LoginResponse{Body: common.SuccessResponse("sessão iniciada", &data)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Encerrar a sessão atual",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
		Middlewares: huma.Middlewares{c.authMiddleware.Auth()},
	}, func(ctx context.Context, input *struct{}) (*authmodels.LogoutResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}

		c.authService.Logout(ctx, session.Role)
		return &authmodels.LogoutResponse{Body: common.SuccessResponse[struct{}]("sessão encerrada", nil)}, nil
	})
}
