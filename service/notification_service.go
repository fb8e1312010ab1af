package service

import (
	"context"
	"sync"

	"dockcall-backend/eventbus"
	"dockcall-backend/infra"

	"github.com/rs/zerolog"
)

// DriverPusher pushes a notification to a specific driver's live
// connection (websocket). Implemented by the websocket controller.
type DriverPusher interface {
	PushToDriver(driverID string, event string, data map[string]interface{}) bool
}

// NotificationService bridges the in-process event bus to the outward
// channels: SSE dashboards, the Redis cross-instance channel, and
// per-driver websocket connections. Deliveries run on a worker pool so a
// slow sink never backs up into the publishing operation.
type NotificationService struct {
	logger       zerolog.Logger
	sseService   *SSEService
	eventManager *infra.RedisEventManager
	driverPusher DriverPusher

	workerCount int
	tasks       chan eventbus.Event
	unsubscribe func()
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

func NewNotificationService(logger zerolog.Logger, bus *eventbus.Bus, sseService *SSEService, eventManager *infra.RedisEventManager, workerCount, queueSize int) *NotificationService {
	if workerCount <= 0 {
		workerCount = 3
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	s := &NotificationService{
		logger:       logger.With().Str("module", "notification_service").Logger(),
		sseService:   sseService,
		eventManager: eventManager,
		workerCount:  workerCount,
		tasks:        make(chan eventbus.Event, queueSize),
	}

	s.unsubscribe = bus.Subscribe(s.enqueue)
	return s
}

// SetDriverPusher attaches the websocket push sink. Set after construction
// to break the controller/service dependency cycle.
func (s *NotificationService) SetDriverPusher(pusher DriverPusher) {
	s.driverPusher = pusher
}

// Start launches the worker pool.
func (s *NotificationService) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.logger.Info().Int("workers", s.workerCount).Msg("notification workers started")
}

// Stop unsubscribes from the bus and drains the workers.
func (s *NotificationService) Stop() {
	s.stopOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.tasks)
		s.wg.Wait()
		s.logger.Info().Msg("notification workers stopped")
	})
}

func (s *NotificationService) enqueue(event eventbus.Event) {
	select {
	case s.tasks <- event:
	default:
		s.logger.Warn().Str("topic", string(event.Topic)).Msg("notification queue full, dropping event")
	}
}

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	for event := range s.tasks {
		s.deliver(event)
	}
	s.logger.Debug().Int("worker_id", id).Msg("notification worker exited")
}

func (s *NotificationService) deliver(event eventbus.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("topic", string(event.Topic)).Interface("panic", r).Msg("notification delivery panicked")
		}
	}()

	if s.sseService != nil {
		s.sseService.PushPanelEvent(event.Topic, event.Payload)
	}

	if s.eventManager != nil {
		if err := s.eventManager.PublishPanelEvent(context.Background(), string(event.Topic), event.Payload); err != nil {
			s.logger.Warn().Err(err).Str("topic", string(event.Topic)).Msg("cross-instance publish failed")
		}
	}

	// Driver-addressed events also go to the driver's live connection.
	if s.driverPusher != nil {
		if driverID, ok := event.Payload["driver_id"].(string); ok && driverID != "" {
			s.driverPusher.PushToDriver(driverID, string(event.Topic), event.Payload)
		}
	}
}
