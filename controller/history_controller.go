package controller

import (
	"context"
	"net/http"

	sessionauth "dockcall-backend/auth"
	"dockcall-backend/data-models/common"
	historyModels "dockcall-backend/data-models/history"
	"dockcall-backend/middleware"
	"dockcall-backend/model"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type HistoryController struct {
	logger           zerolog.Logger
	actionLogService *service.ActionLogService
	authMiddleware   *middleware.SessionAuthMiddleware
}

func NewHistoryController(logger zerolog.Logger, actionLogService *service.ActionLogService, authMiddleware *middleware.SessionAuthMiddleware) *HistoryController {
	return &HistoryController{
		logger:           logger.With().Str("module", "history_controller").Logger(),
		actionLogService: actionLogService,
		authMiddleware:   authMiddleware,
	}
}

func (c *HistoryController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-action-history",
		Method:      http.MethodGet,
		Path:        "/action-history",
		Summary:     "Listar histórico de ações",
		Tags:        []string{"History"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
		Middlewares: huma.Middlewares{c.authMiddleware.Auth()},
	}, func(ctx context.Context, input *historyModels.ListActionHistoryInput) (*historyModels.ActionHistoryResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanViewHistorico {
			return nil, huma.Error403Forbidden("sem permissão para ver o histórico")
		}

		entries, err := c.actionLogService.List(ctx, model.UserRole(input.Role), input.Search)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to list action history")
			return nil, huma.Error500InternalServerError("falha ao listar histórico de ações", err)
		}

		data := historyModels.ActionHistoryData{Entries: entries, Total: len(entries)}
		return &historyModels.ActionHistoryResponse{Body: common.SuccessResponse("histórico de ações", &data)}, nil
	})
}
