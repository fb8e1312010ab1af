package controller

import (
	"context"
	"net/http"

	sessionauth "dockcall-backend/auth"
	callModels "dockcall-backend/data-models/call"
	"dockcall-backend/data-models/common"
	"dockcall-backend/middleware"
	"dockcall-backend/model"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type CallController struct {
	logger         zerolog.Logger
	callService    *service.CallService
	authMiddleware *middleware.SessionAuthMiddleware
}

func NewCallController(logger zerolog.Logger, callService *service.CallService, authMiddleware *middleware.SessionAuthMiddleware) *CallController {
	return &CallController{
		logger:         logger.With().Str("module", "call_controller").Logger(),
		callService:    callService,
		authMiddleware: authMiddleware,
	}
}

func (c *CallController) RegisterRoutes(api huma.API) {
	security := []map[string][]string{{"bearerAuth": {}}}
	middlewares := huma.Middlewares{c.authMiddleware.Auth()}

	huma.Register(api, huma.Operation{
		OperationID: "place-call",
		Method:      http.MethodPost,
		Path:        "/calls",
		Summary:     "Chamar motorista para a doca",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.PlaceCallInput) (*callModels.CallResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanCallDrivers {
			return nil, huma.Error403Forbidden("sem permissão para chamar motoristas")
		}

		call, err := c.callService.PlaceCall(ctx, session.Role, service.CallInput{
			DriverID:    input.Body.DriverID,
			Message:     input.Body.Message,
			Destination: input.Body.Destination,
			Dock:        input.Body.Dock,
		})
		if err != nil {
			return nil, mapServiceError(err, "falha ao chamar motorista")
		}

		return &callModels.CallResponse{Body: common.SuccessResponse("motorista chamado", call)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-run",
		Method:      http.MethodPost,
		Path:        "/calls/assign-run",
		Summary:     "Atribuir corrida a um motorista",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.AssignRunInput) (*callModels.CallResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanCallDrivers {
			return nil, huma.Error403Forbidden("sem permissão para atribuir corridas")
		}

		call, err := c.callService.AssignRun(ctx, session.Role, service.CallInput{
			DriverID:    input.Body.DriverID,
			Message:     input.Body.Message,
			Destination: input.Body.Destination,
			Dock:        input.Body.Dock,
		})
		if err != nil {
			return nil, mapServiceError(err, "falha ao atribuir corrida")
		}

		return &callModels.CallResponse{Body: common.SuccessResponse("corrida atribuída", call)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "finalize-call",
		Method:      http.MethodPost,
		Path:        "/calls/{callId}/finalize",
		Summary:     "Finalizar chamada",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.CallIDInput) (*callModels.CallResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}

		call, err := c.callService.Finalize(ctx, session.Role, input.CallID)
		if err != nil {
			return nil, mapServiceError(err, "falha ao finalizar chamada")
		}

		return &callModels.CallResponse{Body: common.SuccessResponse("chamada finalizada", call)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reopen-call",
		Method:      http.MethodPost,
		Path:        "/calls/{callId}/reopen",
		Summary:     "Reabrir chamada finalizada",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.CallIDInput) (*callModels.CallResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}

		call, err := c.callService.Reopen(ctx, session.Role, input.CallID)
		if err != nil {
			return nil, mapServiceError(err, "falha ao reabrir chamada")
		}

		return &callModels.CallResponse{Body: common.SuccessResponse("chamada reaberta", call)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-call",
		Method:      http.MethodDelete,
		Path:        "/calls/{callId}",
		Summary:     "Remover chamada do painel",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.CallIDInput) (*callModels.RemoveCallResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanRemoveCalls {
			return nil, huma.Error403Forbidden("sem permissão para remover chamadas")
		}

		if err := c.callService.RemoveFromPanel(ctx, session.Role, input.CallID); err != nil {
			return nil, mapServiceError(err, "falha ao remover chamada")
		}

		return &callModels.RemoveCallResponse{Body: common.SuccessResponse[struct{}]("chamada removida", nil)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-active-calls",
		Method:      http.MethodGet,
		Path:        "/calls/active",
		Summary:     "Listar chamadas ativas",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.ListActiveCallsInput) (*callModels.CallListResponse, error) {
		calls, err := c.listActive(ctx, input.DriverID)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to list active calls")
			return nil, huma.Error500InternalServerError("falha ao listar chamadas ativas", err)
		}

		data := callModels.CallListData{Calls: calls, Total: len(calls)}
		return &callModels.CallListResponse{Body: common.SuccessResponse("chamadas ativas", &data)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-finalized-calls",
		Method:      http.MethodGet,
		Path:        "/calls/finalized",
		Summary:     "Listar chamadas finalizadas",
		Tags:        []string{"Calls"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *callModels.ListFinalizedCallsInput) (*callModels.CallListResponse, error) {
		calls, err := c.callService.ListFinalized(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to list finalized calls")
			return nil, huma.Error500InternalServerError("falha ao listar chamadas finalizadas", err)
		}

		if input.DriverID != "" {
			filtered := calls[:0]
			for _, call := range calls {
				if call.DriverID == input.DriverID {
					filtered = append(filtered, call)
				}
			}
			calls = filtered
		}

		data := callModels.CallListData{Calls: calls, Total: len(calls)}
		return &callModels.CallListResponse{Body: common.SuccessResponse("chamadas finalizadas", &data)}, nil
	})
}

func (c *CallController) listActive(ctx context.Context, driverID string) ([]model.Call, error) {
	if driverID != "" {
		return c.callService.FindActiveByDriver(ctx, driverID)
	}
	return c.callService.ListActive(ctx)
}
