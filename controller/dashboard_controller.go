package controller

import (
	"context"
	"net/http"

	"dockcall-backend/data-models/common"
	dashboardModels "dockcall-backend/data-models/dashboard"
	"dockcall-backend/middleware"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type DashboardController struct {
	logger           zerolog.Logger
	dashboardService *service.DashboardService
	authMiddleware   *middleware.SessionAuthMiddleware
}

func NewDashboardController(logger zerolog.Logger, dashboardService *service.DashboardService, authMiddleware *middleware.SessionAuthMiddleware) *DashboardController {
	return &DashboardController{
		logger:           logger.With().Str("module", "dashboard_controller").Logger(),
		dashboardService: dashboardService,
		authMiddleware:   authMiddleware,
	}
}

func (c *DashboardController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-panel-stats",
		Method:      http.MethodGet,
		Path:        "/dashboard/stats",
		Summary:     "Obter métricas do painel",
		Tags:        []string{"Dashboard"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
		Middlewares: huma.Middlewares{c.authMiddleware.Auth()},
	}, func(ctx context.Context, input *struct{}) (*dashboardModels.PanelStatsResponse, error) {
		stats, err := c.dashboardService.GetPanelStats(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to compute panel stats")
			return nil, huma.Error500InternalServerError("falha ao calcular métricas do painel", err)
		}

		return &dashboardModels.PanelStatsResponse{Body: common.SuccessResponse("métricas do painel", stats)}, nil
	})
}
