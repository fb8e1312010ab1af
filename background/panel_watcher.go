package background

import (
	"context"
	"time"

	"dockcall-backend/middleware"
	"dockcall-backend/service"

	"github.com/rs/zerolog"
)

// watchInterval matches the legacy panel's 5-second polling cadence.
const watchInterval = 5 * time.Second

// ConnectionCounter reports live panel connections for the gauges.
type ConnectionCounter interface {
	ConnectionCount() int
}

// PanelWatcher periodically nudges the dashboards to refresh and keeps the
// Prometheus panel gauges current. The event-driven pushes already cover
// mutations; the watcher is the safety net for clients that missed one.
type PanelWatcher struct {
	logger       zerolog.Logger
	DashboardSvc *service.DashboardService
	CallSvc      *service.CallService
	SSESvc       *service.SSEService
	Connections  ConnectionCounter
}

func NewPanelWatcher(logger zerolog.Logger, dashboardSvc *service.DashboardService, callSvc *service.CallService, sseSvc *service.SSEService, connections ConnectionCounter) *PanelWatcher {
	return &PanelWatcher{
		logger:       logger.With().Str("component", "panel-watcher").Logger(),
		DashboardSvc: dashboardSvc,
		CallSvc:      callSvc,
		SSESvc:       sseSvc,
		Connections:  connections,
	}
}

// Start runs the watcher loop until the context is cancelled.
func (pw *PanelWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	pw.logger.Info().Dur("interval", watchInterval).Msg("panel watcher started")
	for {
		select {
		case <-ctx.Done():
			pw.logger.Info().Msg("panel watcher stopped")
			return
		case <-ticker.C:
			pw.tick(ctx)
		}
	}
}

func (pw *PanelWatcher) tick(ctx context.Context) {
	stats, err := pw.DashboardSvc.GetPanelStats(ctx)
	if err != nil {
		pw.logger.Error().Err(err).Msg("failed to refresh panel stats")
		return
	}

	availabilityCounts, err := pw.DashboardSvc.GetAvailabilityCounts(ctx)
	if err != nil {
		pw.logger.Error().Err(err).Msg("failed to count drivers by availability")
		return
	}

	middleware.UpdatePanelGauges(availabilityCounts, stats.ActiveCalls, stats.FinalizedCallsCount)

	if pw.Connections != nil {
		middleware.UpdateWebSocketConnections(map[string]int{
			"driver": pw.Connections.ConnectionCount(),
		})
	}

	if pw.SSESvc != nil && pw.SSESvc.IsEnabled() {
		pw.SSESvc.PushPageRefresh(service.SSEPages.CallRelated, "periodic_panel_refresh")
	}
}
