package service

import (
	"time"

	"dockcall-backend/eventbus"

	"github.com/rs/zerolog"
)

// SSEPageType names the panel pages a browser event targets.
type SSEPageType string

const (
	PagePainel          SSEPageType = "painel"
	PageMotoristas      SSEPageType = "motoristas"
	PagePainelMotorista SSEPageType = "painel_motorista"
	PageCadastro        SSEPageType = "cadastro"
	PageHistorico       SSEPageType = "historico"
)

// SSEPages groups the page sets refreshed together.
var SSEPages = struct {
	CallRelated   []SSEPageType
	DriverRelated []SSEPageType
	History       []SSEPageType
	All           []SSEPageType
}{
	CallRelated:   []SSEPageType{PagePainel, PagePainelMotorista},
	DriverRelated: []SSEPageType{PagePainel, PageMotoristas, PagePainelMotorista, PageCadastro},
	History:       []SSEPageType{PageHistorico},
	All:           []SSEPageType{PagePainel, PageMotoristas, PagePainelMotorista, PageCadastro, PageHistorico},
}

// PagesForTopic maps a bus topic to the pages it should refresh.
func PagesForTopic(topic eventbus.Topic) []SSEPageType {
	switch topic {
	case eventbus.TopicDriversUpdated, eventbus.TopicServiceStatusUpdated:
		return SSEPages.DriverRelated
	case eventbus.TopicDriverCalled, eventbus.TopicRunAssigned, eventbus.TopicCallFinalized, eventbus.TopicCallReopened:
		return SSEPages.CallRelated
	case eventbus.TopicActionHistoryUpdated:
		return SSEPages.History
	default:
		return SSEPages.All
	}
}

// SSEBroadcaster is the push surface of the SSE controller; the interface
// breaks the service/controller dependency cycle.
type SSEBroadcaster interface {
	BroadcastPageUpdate(eventName string, pages []string, data interface{})
	GetStats() map[string]interface{}
}

// SSEService owns the push logic toward connected dashboards.
type SSEService struct {
	logger      zerolog.Logger
	broadcaster SSEBroadcaster
}

func NewSSEService(logger zerolog.Logger, broadcaster SSEBroadcaster) *SSEService {
	return &SSEService{
		logger:      logger.With().Str("module", "sse_service").Logger(),
		broadcaster: broadcaster,
	}
}

func convertPagesToStrings(pages []SSEPageType) []string {
	result := make([]string, len(pages))
	for i, page := range pages {
		result[i] = string(page)
	}
	return result
}

// PushPanelEvent pushes a panel event with its refresh-page hints.
func (s *SSEService) PushPanelEvent(topic eventbus.Topic, data map[string]interface{}) {
	if s.broadcaster == nil {
		s.logger.Warn().Msg("SSE broadcaster not initialized, skipping push")
		return
	}

	payload := map[string]interface{}{
		"timestamp": time.Now().Format("15:04"),
	}
	for key, value := range data {
		payload[key] = value
	}

	s.pushEventSafely(string(topic), convertPagesToStrings(PagesForTopic(topic)), payload)
}

// PushPageRefresh asks the given pages to re-fetch their state.
func (s *SSEService) PushPageRefresh(pages []SSEPageType, reason string) {
	if s.broadcaster == nil {
		s.logger.Warn().Msg("SSE broadcaster not initialized, skipping push")
		return
	}

	s.pushEventSafely("page_refresh", convertPagesToStrings(pages), map[string]interface{}{
		"reason":    reason,
		"timestamp": time.Now().Format("15:04"),
	})
}

// pushEventSafely pushes asynchronously so a broken client can never stall
// the calling operation.
func (s *SSEService) pushEventSafely(eventName string, pages []string, data interface{}) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Str("event_name", eventName).Interface("panic", r).Msg("SSE push panicked")
			}
		}()

		if s.broadcaster != nil {
			s.broadcaster.BroadcastPageUpdate(eventName, pages, data)
		}
	}()
}

// GetSSEStats returns connection statistics.
func (s *SSEService) GetSSEStats() map[string]interface{} {
	if s.broadcaster == nil {
		return map[string]interface{}{
			"connected_clients": 0,
			"status":            "not_initialized",
		}
	}

	stats := s.broadcaster.GetStats()
	stats["status"] = "running"
	return stats
}

// IsEnabled reports whether a broadcaster is attached.
func (s *SSEService) IsEnabled() bool {
	return s.broadcaster != nil
}
