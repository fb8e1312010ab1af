package service

import (
	"context"

	"dockcall-backend/data-models/dashboard"
	"dockcall-backend/model"
	"dockcall-backend/store"

	"github.com/rs/zerolog"
)

// DashboardService recomputes the panel metrics from scratch on every
// request; nothing is cached or incrementally maintained.
type DashboardService struct {
	logger zerolog.Logger
	store  store.Store
}

func NewDashboardService(logger zerolog.Logger, s store.Store) *DashboardService {
	return &DashboardService{
		logger: logger.With().Str("module", "dashboard_service").Logger(),
		store:  s,
	}
}

// GetPanelStats derives the dashboard counters. Classification precedence
// per driver: aguardando first, then em_servico/em_progresso, then
// awaiting-call (online, disponivel, and not currently on the panel).
func (s *DashboardService) GetPanelStats(ctx context.Context) (*dashboard.PanelStats, error) {
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drivers for stats")
		return nil, err
	}

	activeCalls, err := s.store.ListActiveCalls(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active calls for stats")
		return nil, err
	}
	calledDrivers := make(map[string]bool, len(activeCalls))
	for _, call := range activeCalls {
		calledDrivers[call.DriverID] = true
	}

	finalizedCount, err := s.store.CountFinalizedCalls(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count finalized calls")
		return nil, err
	}

	stats := &dashboard.PanelStats{
		TotalDrivers:        len(drivers),
		ActiveCalls:         len(activeCalls),
		FinalizedCallsCount: int(finalizedCount),
	}

	for _, driver := range drivers {
		serviceStatus := driver.EffectiveServiceStatus()
		isOnline := driver.AvailabilityStatus == model.AvailabilityOnline

		if serviceStatus == model.ServiceStatusAguardando {
			stats.DriversAwaitingStatus++
		} else if serviceStatus == model.ServiceStatusEmServico || serviceStatus == model.ServiceStatusEmProgresso {
			stats.InServiceOrProgress++
		} else if isOnline && !calledDrivers[driver.ID] && serviceStatus == model.ServiceStatusDisponivel {
			stats.AwaitingCall++
		}
	}

	return stats, nil
}

// GetAvailabilityCounts groups drivers by availability status for the
// Prometheus gauges.
func (s *DashboardService) GetAvailabilityCounts(ctx context.Context) (map[string]int, error) {
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, driver := range drivers {
		counts[string(driver.AvailabilityStatus)]++
	}
	counts["all"] = len(drivers)
	return counts, nil
}
