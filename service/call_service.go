package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dockcall-backend/eventbus"
	"dockcall-backend/infra"
	"dockcall-backend/metrics"
	"dockcall-backend/model"
	"dockcall-backend/store"

	"github.com/rs/zerolog"
)

// CallService is the call lifecycle engine. An active call lives in the
// called_drivers collection, a finalized one in finalized_calls; finalize
// and reopen move the record between the two, stamping or clearing the
// finalization timestamp, so a call is never in both states at once.
type CallService struct {
	logger    zerolog.Logger
	store     store.Store
	bus       *eventbus.Bus
	actionLog *ActionLogService
}

func NewCallService(logger zerolog.Logger, s store.Store, bus *eventbus.Bus, actionLog *ActionLogService) *CallService {
	return &CallService{
		logger:    logger.With().Str("module", "call_service").Logger(),
		store:     s,
		bus:       bus,
		actionLog: actionLog,
	}
}

// CallInput carries the fields shared by PlaceCall and AssignRun.
type CallInput struct {
	DriverID    string
	Message     string
	Destination string
	Dock        string
}

// PlaceCall puts a driver on the panel. The driver must exist, must not be
// offline, must have no active call, and must have no pending finalized
// record; the legacy panel treated an un-reopened finalized call as "this
// driver already came through", so it blocks a fresh call.
func (s *CallService) PlaceCall(ctx context.Context, role model.UserRole, input CallInput) (*model.Call, error) {
	start := time.Now()
	ctx, span := infra.StartCallLifecycleSpan(ctx, "place_call", infra.AttrDriverID(input.DriverID))
	defer span.End()

	call, err := s.placeCall(ctx, role, input)
	if err != nil {
		metrics.RecordCallOperation(metrics.OperationPlaceCall, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "place call failed")
		return nil, err
	}

	metrics.RecordCallOperation(metrics.OperationPlaceCall, metrics.StatusSuccess, time.Since(start))
	infra.MarkSuccess(span, infra.AttrCallID(call.CallID))
	return call, nil
}

func (s *CallService) placeCall(ctx context.Context, role model.UserRole, input CallInput) (*model.Call, error) {
	driver, err := s.store.GetDriver(ctx, input.DriverID)
	if err != nil {
		return nil, ErrDriverNotFound
	}
	if driver.IsOffline() {
		return nil, ErrDriverOffline
	}
	if strings.TrimSpace(input.Message) == "" {
		ve := newValidationError()
		ve.add("message", "mensagem da chamada é obrigatória")
		return nil, ve
	}

	active, err := s.store.FindActiveCallsByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, ErrDriverAlreadyCalled
	}

	finalized, err := s.store.FindFinalizedCallsByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if len(finalized) > 0 {
		return nil, ErrDriverHasFinalizedCall
	}

	call := s.buildCall(driver, model.CallKindDock, input)
	if err := s.store.InsertActiveCall(ctx, call); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("call_id", call.CallID).
		Str("driver_id", driver.ID).
		Str("dock", call.Dock).
		Msg("driver called to dock")
	s.bus.Publish(eventbus.TopicDriverCalled, map[string]interface{}{
		"call_id":   call.CallID,
		"driver_id": driver.ID,
	})
	s.actionLog.Record(ctx, model.ActionCallDriver, role,
		fmt.Sprintf("Motorista: %s, Mensagem: %s", driver.FullName, call.Message))

	return call, nil
}

// AssignRun creates a run for a driver. Unlike PlaceCall it never checks
// prior call state: a driver can hold any number of runs. Only a non-blank
// destination and a non-offline driver are required.
func (s *CallService) AssignRun(ctx context.Context, role model.UserRole, input CallInput) (*model.Call, error) {
	start := time.Now()
	ctx, span := infra.StartCallLifecycleSpan(ctx, "assign_run", infra.AttrDriverID(input.DriverID))
	defer span.End()

	driver, err := s.store.GetDriver(ctx, input.DriverID)
	if err != nil {
		metrics.RecordCallOperation(metrics.OperationAssignRun, metrics.StatusError, time.Since(start))
		infra.RecordError(span, ErrDriverNotFound, "driver lookup failed")
		return nil, ErrDriverNotFound
	}
	if driver.IsOffline() {
		metrics.RecordCallOperation(metrics.OperationAssignRun, metrics.StatusError, time.Since(start))
		infra.RecordError(span, ErrDriverOffline, "driver offline")
		return nil, ErrDriverOffline
	}
	if strings.TrimSpace(input.Destination) == "" {
		ve := newValidationError()
		ve.add("destination", "destino da corrida é obrigatório")
		metrics.RecordCallOperation(metrics.OperationAssignRun, metrics.StatusError, time.Since(start))
		infra.RecordError(span, ve, "validation failed")
		return nil, ve
	}

	call := s.buildCall(driver, model.CallKindRun, input)
	if err := s.store.InsertActiveCall(ctx, call); err != nil {
		metrics.RecordCallOperation(metrics.OperationAssignRun, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "insert failed")
		return nil, err
	}

	s.logger.Info().
		Str("call_id", call.CallID).
		Str("driver_id", driver.ID).
		Str("destination", call.Destination).
		Msg("run assigned")
	s.bus.Publish(eventbus.TopicRunAssigned, map[string]interface{}{
		"call_id":   call.CallID,
		"driver_id": driver.ID,
	})
	s.actionLog.Record(ctx, model.ActionAssignRun, role,
		fmt.Sprintf("Motorista: %s, Destino: %s", driver.FullName, call.Destination))

	metrics.RecordCallOperation(metrics.OperationAssignRun, metrics.StatusSuccess, time.Since(start))
	infra.MarkSuccess(span, infra.AttrCallID(call.CallID))
	return call, nil
}

// Finalize moves an active call to the finalized collection and stamps its
// finalization timestamp.
func (s *CallService) Finalize(ctx context.Context, role model.UserRole, callID string) (*model.Call, error) {
	start := time.Now()
	ctx, span := infra.StartCallLifecycleSpan(ctx, "finalize", infra.AttrCallID(callID))
	defer span.End()

	call, err := s.store.GetActiveCall(ctx, callID)
	if err != nil {
		metrics.RecordCallOperation(metrics.OperationFinalize, metrics.StatusError, time.Since(start))
		infra.RecordError(span, ErrCallNotFound, "active call lookup failed")
		return nil, ErrCallNotFound
	}

	now := time.Now()
	call.FinalizedAt = &now
	if err := s.store.InsertFinalizedCall(ctx, call); err != nil {
		metrics.RecordCallOperation(metrics.OperationFinalize, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "insert finalized failed")
		return nil, err
	}
	if err := s.store.DeleteActiveCall(ctx, callID); err != nil {
		// The record is now duplicated; remove the finalized copy to
		// restore the one-collection invariant before reporting.
		_ = s.store.DeleteFinalizedCall(ctx, callID)
		metrics.RecordCallOperation(metrics.OperationFinalize, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "delete active failed")
		return nil, err
	}

	s.logger.Info().Str("call_id", callID).Str("driver_id", call.DriverID).Msg("call finalized")
	s.bus.Publish(eventbus.TopicCallFinalized, map[string]interface{}{
		"call_id":   callID,
		"driver_id": call.DriverID,
	})
	s.actionLog.Record(ctx, model.ActionFinalizeCall, role,
		fmt.Sprintf("Motorista: %s, Chamada: %s", call.DriverName, callID))

	metrics.RecordCallOperation(metrics.OperationFinalize, metrics.StatusSuccess, time.Since(start))
	infra.MarkSuccess(span)
	return call, nil
}

// Reopen moves a finalized call back to the active collection, clearing
// its finalization timestamp. The round trip restores the call exactly.
func (s *CallService) Reopen(ctx context.Context, role model.UserRole, callID string) (*model.Call, error) {
	start := time.Now()
	ctx, span := infra.StartCallLifecycleSpan(ctx, "reopen", infra.AttrCallID(callID))
	defer span.End()

	call, err := s.store.GetFinalizedCall(ctx, callID)
	if err != nil {
		metrics.RecordCallOperation(metrics.OperationReopen, metrics.StatusError, time.Since(start))
		infra.RecordError(span, ErrCallNotFound, "finalized call lookup failed")
		return nil, ErrCallNotFound
	}

	call.FinalizedAt = nil
	if err := s.store.InsertActiveCall(ctx, call); err != nil {
		metrics.RecordCallOperation(metrics.OperationReopen, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "insert active failed")
		return nil, err
	}
	if err := s.store.DeleteFinalizedCall(ctx, callID); err != nil {
		_ = s.store.DeleteActiveCall(ctx, callID)
		metrics.RecordCallOperation(metrics.OperationReopen, metrics.StatusError, time.Since(start))
		infra.RecordError(span, err, "delete finalized failed")
		return nil, err
	}

	s.logger.Info().Str("call_id", callID).Str("driver_id", call.DriverID).Msg("call reopened")
	s.bus.Publish(eventbus.TopicCallReopened, map[string]interface{}{
		"call_id":   callID,
		"driver_id": call.DriverID,
	})
	s.actionLog.Record(ctx, model.ActionReopenCall, role,
		fmt.Sprintf("Motorista: %s, Chamada: %s", call.DriverName, callID))

	metrics.RecordCallOperation(metrics.OperationReopen, metrics.StatusSuccess, time.Since(start))
	infra.MarkSuccess(span)
	return call, nil
}

// RemoveFromPanel deletes an active call outright, without creating a
// finalized record.
func (s *CallService) RemoveFromPanel(ctx context.Context, role model.UserRole, callID string) error {
	ctx, span := infra.StartCallLifecycleSpan(ctx, "remove_from_panel", infra.AttrCallID(callID))
	defer span.End()

	call, err := s.store.GetActiveCall(ctx, callID)
	if err != nil {
		infra.RecordError(span, ErrCallNotFound, "active call lookup failed")
		return ErrCallNotFound
	}
	if err := s.store.DeleteActiveCall(ctx, callID); err != nil {
		infra.RecordError(span, err, "delete failed")
		return err
	}

	s.logger.Info().Str("call_id", callID).Str("driver_id", call.DriverID).Msg("call removed from panel")
	s.bus.Publish(eventbus.TopicDriverCalled, map[string]interface{}{
		"call_id":   callID,
		"driver_id": call.DriverID,
		"removed":   true,
	})
	s.actionLog.Record(ctx, model.ActionRemoveCall, role,
		fmt.Sprintf("Motorista: %s, Chamada: %s", call.DriverName, callID))

	infra.MarkSuccess(span)
	return nil
}

// ListActive returns active calls, newest call first.
func (s *CallService) ListActive(ctx context.Context) ([]model.Call, error) {
	return s.store.ListActiveCalls(ctx)
}

// ListFinalized returns finalized calls, most recently finalized first.
func (s *CallService) ListFinalized(ctx context.Context) ([]model.Call, error) {
	return s.store.ListFinalizedCalls(ctx)
}

// FindActiveByDriver returns the driver's active calls for the driver
// panel view.
func (s *CallService) FindActiveByDriver(ctx context.Context, driverID string) ([]model.Call, error) {
	return s.store.FindActiveCallsByDriver(ctx, driverID)
}

func (s *CallService) buildCall(driver *model.Driver, kind model.CallKind, input CallInput) *model.Call {
	now := time.Now()
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		destination = driver.Destination
	}
	dock := strings.TrimSpace(input.Dock)
	if dock == "" {
		dock = driver.Dock
	}

	return &model.Call{
		CallID:       model.NewCallID(driver.ID, now),
		DriverID:     driver.ID,
		Kind:         kind,
		Message:      strings.TrimSpace(input.Message),
		Destination:  destination,
		Dock:         dock,
		Password:     driver.Password,
		CalledAt:     now,
		DriverName:   driver.FullName,
		VehiclePlate: driver.VehiclePlate,
		Transporter:  driver.Transporter,
	}
}
