package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dockcall-backend/data-models/common"
	"dockcall-backend/eventbus"
	"dockcall-backend/infra"
	"dockcall-backend/model"
	"dockcall-backend/store"

	"github.com/rs/zerolog"
)

var (
	nonDigitsRegex = regexp.MustCompile(`\D`)
	phoneRegex     = regexp.MustCompile(`^\d{10,11}$`)
	pinRegex       = regexp.MustCompile(`^\d{3}$`)
)

// DriverService is the driver registry: registration, edits, removal with
// cascade, and panel listings.
type DriverService struct {
	logger    zerolog.Logger
	store     store.Store
	bus       *eventbus.Bus
	actionLog *ActionLogService
}

func NewDriverService(logger zerolog.Logger, s store.Store, bus *eventbus.Bus, actionLog *ActionLogService) *DriverService {
	return &DriverService{
		logger:    logger.With().Str("module", "driver_service").Logger(),
		store:     s,
		bus:       bus,
		actionLog: actionLog,
	}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	ID                string
	FullName          string
	Phone             string
	VehiclePlate      string
	Transporter       string
	Destination       string
	Dock              string
	Password          string
	Client            string
	ResponsibleSeller string
}

// Register validates and stores a driver. A matching ID replaces the
// existing record, so re-submitting a form never duplicates a driver.
func (s *DriverService) Register(ctx context.Context, role model.UserRole, input RegisterInput) (*model.Driver, error) {
	ctx, span := infra.StartDriverRegistrySpan(ctx, "register")
	defer span.End()

	if err := validateRegistration(input); err != nil {
		infra.RecordError(span, err, "validation failed")
		return nil, err
	}

	now := time.Now()
	driver := &model.Driver{
		ID:                 strings.TrimSpace(input.ID),
		FullName:           strings.TrimSpace(input.FullName),
		Phone:              nonDigitsRegex.ReplaceAllString(input.Phone, ""),
		VehiclePlate:       strings.TrimSpace(input.VehiclePlate),
		Transporter:        strings.TrimSpace(input.Transporter),
		Destination:        strings.TrimSpace(input.Destination),
		Dock:               strings.TrimSpace(input.Dock),
		Password:           strings.TrimSpace(input.Password),
		Client:             strings.TrimSpace(input.Client),
		ResponsibleSeller:  strings.TrimSpace(input.ResponsibleSeller),
		AvailabilityStatus: model.AvailabilityOnline,
		ServiceStatus:      model.ServiceStatusDisponivel,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if driver.ID == "" {
		driver.ID = model.NewDriverID(now)
	} else if existing, err := s.store.GetDriver(ctx, driver.ID); err == nil {
		// Replacing an existing record keeps its creation time and
		// current panel statuses.
		driver.CreatedAt = existing.CreatedAt
		driver.AvailabilityStatus = existing.AvailabilityStatus
		driver.ServiceStatus = existing.ServiceStatus
	}

	if err := s.store.UpsertDriver(ctx, driver); err != nil {
		infra.RecordError(span, err, "upsert failed")
		return nil, err
	}

	s.logger.Info().Str("driver_id", driver.ID).Str("full_name", driver.FullName).Msg("driver registered")
	s.bus.Publish(eventbus.TopicDriversUpdated, map[string]interface{}{"driver_id": driver.ID})
	s.actionLog.Record(ctx, model.ActionRegisterDriver, role,
		fmt.Sprintf("Motorista: %s, Placa: %s", driver.FullName, driver.VehiclePlate))

	infra.MarkSuccess(span, infra.AttrDriverID(driver.ID))
	return driver, nil
}

// UpdateInput carries the editable driver fields.
type UpdateInput struct {
	FullName          string
	Phone             string
	VehiclePlate      string
	Transporter       string
	Destination       string
	Dock              string
	Password          string
	Client            string
	ResponsibleSeller string

	AvailabilityStatus model.AvailabilityStatus
	ServiceStatus      model.ServiceStatus
}

// Update replaces a driver record by id. Required fields missing from the
// input are reported together and the record is left untouched.
func (s *DriverService) Update(ctx context.Context, role model.UserRole, id string, input UpdateInput) (*model.Driver, error) {
	ctx, span := infra.StartDriverRegistrySpan(ctx, "update", infra.AttrDriverID(id))
	defer span.End()

	driver, err := s.store.GetDriver(ctx, id)
	if err != nil {
		infra.RecordError(span, err, "driver lookup failed")
		return nil, ErrDriverNotFound
	}

	if err := validateUpdate(input); err != nil {
		infra.RecordError(span, err, "validation failed")
		return nil, err
	}

	driver.FullName = strings.TrimSpace(input.FullName)
	driver.Phone = nonDigitsRegex.ReplaceAllString(input.Phone, "")
	driver.VehiclePlate = strings.TrimSpace(input.VehiclePlate)
	driver.Transporter = strings.TrimSpace(input.Transporter)
	driver.Destination = strings.TrimSpace(input.Destination)
	driver.Dock = strings.TrimSpace(input.Dock)
	driver.Password = strings.TrimSpace(input.Password)
	driver.Client = strings.TrimSpace(input.Client)
	driver.ResponsibleSeller = strings.TrimSpace(input.ResponsibleSeller)
	if input.AvailabilityStatus != "" && input.AvailabilityStatus.IsValid() {
		driver.AvailabilityStatus = input.AvailabilityStatus
	}
	if input.ServiceStatus != "" && input.ServiceStatus.IsValid() {
		driver.ServiceStatus = input.ServiceStatus
	}
	driver.UpdatedAt = time.Now()

	if err := s.store.UpsertDriver(ctx, driver); err != nil {
		infra.RecordError(span, err, "upsert failed")
		return nil, err
	}

	s.logger.Info().Str("driver_id", driver.ID).Msg("driver updated")
	s.bus.Publish(eventbus.TopicDriversUpdated, map[string]interface{}{"driver_id": driver.ID})
	s.bus.Publish(eventbus.TopicServiceStatusUpdated, map[string]interface{}{"driver_id": driver.ID})
	s.actionLog.Record(ctx, model.ActionEditDriver, role,
		fmt.Sprintf("Motorista: %s, Placa: %s", driver.FullName, driver.VehiclePlate))

	infra.MarkSuccess(span)
	return driver, nil
}

// Delete removes a driver and cascades over both call collections so no
// orphan record keeps referencing the id.
func (s *DriverService) Delete(ctx context.Context, role model.UserRole, id string) error {
	ctx, span := infra.StartDriverRegistrySpan(ctx, "delete", infra.AttrDriverID(id))
	defer span.End()

	driver, err := s.store.GetDriver(ctx, id)
	if err != nil {
		infra.RecordError(span, err, "driver lookup failed")
		return ErrDriverNotFound
	}

	if err := s.store.DeleteDriver(ctx, id); err != nil {
		infra.RecordError(span, err, "delete failed")
		return err
	}
	if err := s.store.DeleteActiveCallsByDriver(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("driver_id", id).Msg("failed to cascade active calls")
	}
	if err := s.store.DeleteFinalizedCallsByDriver(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("driver_id", id).Msg("failed to cascade finalized calls")
	}

	s.logger.Info().Str("driver_id", id).Str("full_name", driver.FullName).Msg("driver deleted")
	s.bus.Publish(eventbus.TopicDriversUpdated, map[string]interface{}{"driver_id": id})
	s.actionLog.Record(ctx, model.ActionDeleteDriver, role,
		fmt.Sprintf("Motorista: %s, Placa: %s", driver.FullName, driver.VehiclePlate))

	infra.MarkSuccess(span)
	return nil
}

// Get returns a single driver with its service status defaulted.
func (s *DriverService) Get(ctx context.Context, id string) (*model.Driver, error) {
	driver, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return nil, ErrDriverNotFound
	}
	driver.ServiceStatus = driver.EffectiveServiceStatus()
	return driver, nil
}

// List returns drivers with an optional keyword filter (name, plate,
// transporter, phone) and pagination. Service statuses are defaulted for
// legacy records.
func (s *DriverService) List(ctx context.Context, keyword string, pageNum, pageSize int) ([]model.Driver, common.PaginationInfo, error) {
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drivers")
		return nil, common.PaginationInfo{}, err
	}

	for i := range drivers {
		drivers[i].ServiceStatus = drivers[i].EffectiveServiceStatus()
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword != "" {
		filtered := make([]model.Driver, 0, len(drivers))
		for _, d := range drivers {
			if strings.Contains(strings.ToLower(d.FullName), keyword) ||
				strings.Contains(strings.ToLower(d.VehiclePlate), keyword) ||
				strings.Contains(strings.ToLower(d.Transporter), keyword) ||
				strings.Contains(d.Phone, keyword) {
				filtered = append(filtered, d)
			}
		}
		drivers = filtered
	}

	totalItems := int64(len(drivers))
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	skip := common.CalculateOffset(pageNum, pageSize)
	end := skip + pageSize
	if skip >= len(drivers) {
		drivers = []model.Driver{}
	} else if end > len(drivers) {
		drivers = drivers[skip:]
	} else {
		drivers = drivers[skip:end]
	}

	return drivers, common.NewPaginationInfo(pageNum, pageSize, totalItems), nil
}

func validateRegistration(input RegisterInput) error {
	ve := newValidationError()

	if strings.TrimSpace(input.FullName) == "" {
		ve.add("fullName", "nome completo é obrigatório")
	}
	digits := nonDigitsRegex.ReplaceAllString(input.Phone, "")
	if !phoneRegex.MatchString(digits) {
		ve.add("phone", "telefone deve ter 10 ou 11 dígitos")
	}
	if strings.TrimSpace(input.VehiclePlate) == "" {
		ve.add("vehiclePlate", "placa do veículo é obrigatória")
	}
	if pin := strings.TrimSpace(input.Password); pin != "" && !pinRegex.MatchString(pin) {
		ve.add("password", "senha deve ter exatamente 3 dígitos numéricos")
	}

	if ve.empty() {
		return nil
	}
	return ve
}

func validateUpdate(input UpdateInput) error {
	ve := newValidationError()

	required := map[string]string{
		"fullName":          input.FullName,
		"phone":             input.Phone,
		"vehiclePlate":      input.VehiclePlate,
		"transporter":       input.Transporter,
		"responsibleSeller": input.ResponsibleSeller,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			ve.add(field, "campo obrigatório")
		}
	}
	if pin := strings.TrimSpace(input.Password); pin != "" && !pinRegex.MatchString(pin) {
		ve.add("password", "senha deve ter exatamente 3 dígitos numéricos")
	}

	if ve.empty() {
		return nil
	}
	return ve
}
