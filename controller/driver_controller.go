package controller

import (
	"context"
	"net/http"

	sessionauth "dockcall-backend/auth"
	"dockcall-backend/data-models/common"
	driverModels "dockcall-backend/data-models/driver"
	"dockcall-backend/middleware"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type DriverController struct {
	logger         zerolog.Logger
	driverService  *service.DriverService
	authMiddleware *middleware.SessionAuthMiddleware
}

func NewDriverController(logger zerolog.Logger, driverService *service.DriverService, authMiddleware *middleware.SessionAuthMiddleware) *DriverController {
	return &DriverController{
		logger:         logger.With().Str("module", "driver_controller").Logger(),
		driverService:  driverService,
		authMiddleware: authMiddleware,
	}
}

func (c *DriverController) RegisterRoutes(api huma.API) {
	security := []map[string][]string{{"bearerAuth": {}}}
	middlewares := huma.Middlewares{c.authMiddleware.Auth()}

	huma.Register(api, huma.Operation{
		OperationID: "list-drivers",
		Method:      http.MethodGet,
		Path:        "/drivers",
		Summary:     "Listar motoristas",
		Tags:        []string{"Drivers"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *driverModels.ListDriversInput) (*driverModels.DriverListResponse, error) {
		drivers, pagination, err := c.driverService.List(ctx, input.GetSearchKeyword(), input.GetPageNum(), input.GetPageSize())
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to list drivers")
			return nil, huma.Error500InternalServerError("falha ao listar motoristas", err)
		}

		data := driverModels.DriverListData{Drivers: drivers, Pagination: pagination}
		return &driverModels.DriverListResponse{Body: common.SuccessResponse("motoristas listados", &data)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "register-driver",
		Method:      http.MethodPost,
		Path:        "/drivers",
		Summary:     "Cadastrar motorista",
		Tags:        []string{"Drivers"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *driverModels.RegisterDriverInput) (*driverModels.DriverResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanViewCadastro {
			return nil, huma.Error403Forbidden("sem permissão para cadastrar motoristas")
		}

		driver, err := c.driverService.Register(ctx, session.Role, service.RegisterInput{
			ID:                input.Body.ID,
			FullName:          input.Body.FullName,
			Phone:             input.Body.Phone,
			VehiclePlate:      input.Body.VehiclePlate,
			Transporter:       input.Body.Transporter,
			Destination:       input.Body.Destination,
			Dock:              input.Body.Dock,
			Password:          input.Body.Password,
			Client:            input.Body.Client,
			ResponsibleSeller: input.Body.ResponsibleSeller,
		})
		if err != nil {
			return nil, mapServiceError(err, "falha ao cadastrar motorista")
		}

		return &driverModels.DriverResponse{Body: common.SuccessResponse("motorista cadastrado", driver)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-driver",
		Method:      http.MethodPut,
		Path:        "/drivers/{driverId}",
		Summary:     "Editar motorista",
		Tags:        []string{"Drivers"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *driverModels.UpdateDriverInput) (*driverModels.DriverResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanEditDrivers {
			return nil, huma.Error403Forbidden("sem permissão para editar motoristas")
		}

		driver, err := c.driverService.Update(ctx, session.Role, input.ID, service.UpdateInput{
			FullName:           input.Body.FullName,
			Phone:              input.Body.Phone,
			VehiclePlate:       input.Body.VehiclePlate,
			Transporter:        input.Body.Transporter,
			Destination:        input.Body.Destination,
			Dock:               input.Body.Dock,
			Password:           input.Body.Password,
			Client:             input.Body.Client,
			ResponsibleSeller:  input.Body.ResponsibleSeller,
			AvailabilityStatus: input.Body.AvailabilityStatus,
			ServiceStatus:      input.Body.ServiceStatus,
		})
		if err != nil {
			return nil, mapServiceError(err, "falha ao editar motorista")
		}

		return &driverModels.DriverResponse{Body: common.SuccessResponse("motorista atualizado", driver)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-driver",
		Method:      http.MethodDelete,
		Path:        "/drivers/{driverId}",
		Summary:     "Excluir motorista",
		Description: "Remove o motorista e todas as suas chamadas, ativas e finalizadas.",
		Tags:        []string{"Drivers"},
		Security:    security,
		Middlewares: middlewares,
	}, func(ctx context.Context, input *driverModels.DeleteDriverInput) (*driverModels.DeleteDriverResponse, error) {
		session, err := sessionauth.GetSessionFromContext(ctx)
		if err != nil {
			return nil, huma.Error401Unauthorized("sessão inválida", err)
		}
		if !session.Capabilities.CanDeleteDrivers {
			return nil, huma.Error403Forbidden("sem permissão para excluir motoristas")
		}
		if !input.Confirm {
			return nil, huma.Error422UnprocessableEntity("exclusão requer confirmação explícita (confirm=true)")
		}

		if err := c.driverService.Delete(ctx, session.Role, input.ID); err != nil {
			return nil, mapServiceError(err, "falha ao excluir motorista")
		}

		return &driverModels.DeleteDriverResponse{Body: common.SuccessResponse[struct{}]("motorista excluído", nil)}, nil
	})
}
