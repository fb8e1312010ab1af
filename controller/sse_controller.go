package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SSEController manages the dashboard event stream connections.
type SSEController struct {
	logger    zerolog.Logger
	clients   map[string]*SSEClient
	clientsMu sync.RWMutex
}

// SSEClient is one connected dashboard.
type SSEClient struct {
	ID        string
	Writer    http.ResponseWriter
	Flusher   http.Flusher
	Request   *http.Request
	Events    chan SSEEvent
	Done      chan struct{}
	closeOnce sync.Once
}

// SSEEvent is one event on the stream.
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// PageUpdateEvent tells the dashboard which pages to refresh.
type PageUpdateEvent struct {
	EventName string      `json:"event_name"`
	Pages     []string    `json:"pages"`
	Data      interface{} `json:"data,omitempty"`
}

func NewSSEController(logger zerolog.Logger) *SSEController {
	sse := &SSEController{
		logger:  logger.With().Str("module", "sse_controller").Logger(),
		clients: make(map[string]*SSEClient),
	}

	go sse.cleanup()

	return sse
}

func (sse *SSEController) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	flusher, ok := w.(http.Flusher)
	if !ok {
		sse.logger.Error().Msg("streaming unsupported")
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	clientID := fmt.Sprintf("client_%d_%s", time.Now().UnixNano(), r.RemoteAddr)

	client := &SSEClient{
		ID:      clientID,
		Writer:  w,
		Flusher: flusher,
		Request: r,
		Events:  make(chan SSEEvent, 100),
		Done:    make(chan struct{}),
	}

	sse.registerClient(client)
	defer sse.unregisterClient(client)

	sse.sendEvent(client, SSEEvent{
		Event: "connected",
		Data: map[string]interface{}{
			"client_id": clientID,
			"timestamp": time.Now().Format("15:04"),
			"message":   "conexão SSE estabelecida",
		},
	})

	sse.logger.Debug().Str("client_id", clientID).Msg("SSE client connected")

	for {
		select {
		case event := <-client.Events:
			if !sse.sendEvent(client, event) {
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (sse *SSEController) registerClient(client *SSEClient) {
	sse.clientsMu.Lock()
	defer sse.clientsMu.Unlock()
	sse.clients[client.ID] = client
}

func (sse *SSEController) unregisterClient(client *SSEClient) {
	sse.clientsMu.Lock()
	defer sse.clientsMu.Unlock()

	if _, exists := sse.clients[client.ID]; exists {
		delete(sse.clients, client.ID)
		client.closeOnce.Do(func() {
			close(client.Done)
			close(client.Events)
		})
		sse.logger.Debug().Str("client_id", client.ID).Msg("SSE client disconnected")
	}
}

func (sse *SSEController) sendEvent(client *SSEClient, event SSEEvent) bool {
	data, err := json.Marshal(event.Data)
	if err != nil {
		sse.logger.Error().Err(err).Msg("failed to serialize event data")
		return false
	}

	message := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Event, string(data))

	if _, err := client.Writer.Write([]byte(message)); err != nil {
		sse.logger.Error().Err(err).Str("client_id", client.ID).Msg("failed to send SSE event")
		return false
	}

	client.Flusher.Flush()
	return true
}

// BroadcastPageUpdate pushes a page update event to every connected client.
func (sse *SSEController) BroadcastPageUpdate(eventName string, pages []string, data interface{}) {
	event := SSEEvent{
		Event: "page_update",
		Data: PageUpdateEvent{
			EventName: eventName,
			Pages:     pages,
			Data:      data,
		},
	}

	sse.clientsMu.RLock()
	clients := make([]*SSEClient, 0, len(sse.clients))
	for _, client := range sse.clients {
		clients = append(clients, client)
	}
	sse.clientsMu.RUnlock()

	for _, client := range clients {
		select {
		case client.Events <- event:
		default:
			// Client queue is full, skip it rather than block the broadcast.
			sse.logger.Warn().Str("client_id", client.ID).Msg("skipping client, event queue is full")
		}
	}
}

// BroadcastCustomEvent pushes an arbitrary event to every connected client.
func (sse *SSEController) BroadcastCustomEvent(eventType string, data interface{}) {
	event := SSEEvent{
		Event: eventType,
		Data:  data,
	}

	sse.clientsMu.RLock()
	clients := make([]*SSEClient, 0, len(sse.clients))
	for _, client := range sse.clients {
		clients = append(clients, client)
	}
	sse.clientsMu.RUnlock()

	sse.logger.Info().
		Str("event_type", eventType).
		Int("client_count", len(clients)).
		Msg("broadcasting custom event")

	for _, client := range clients {
		select {
		case client.Events <- event:
		default:
			sse.logger.Warn().Str("client_id", client.ID).Msg("skipping client, event queue is full")
		}
	}
}

// GetStats returns connection statistics.
func (sse *SSEController) GetStats() map[string]interface{} {
	sse.clientsMu.RLock()
	connectedClients := len(sse.clients)
	sse.clientsMu.RUnlock()

	return map[string]interface{}{
		"connected_clients": connectedClients,
	}
}

func (sse *SSEController) cleanup() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		sse.clientsMu.Lock()
		var toRemove []string

		for clientID, client := range sse.clients {
			select {
			case <-client.Done:
				toRemove = append(toRemove, clientID)
			default:
			}
		}

		for _, clientID := range toRemove {
			if client, exists := sse.clients[clientID]; exists {
				delete(sse.clients, clientID)
				client.closeOnce.Do(func() {
					close(client.Done)
					close(client.Events)
				})
				sse.logger.Info().Str("client_id", clientID).Msg("cleaning up stale SSE client")
			}
		}

		sse.clientsMu.Unlock()
	}
}

// GetSSEHandler returns the handler for registration on the chi router.
func (sse *SSEController) GetSSEHandler() http.HandlerFunc {
	return sse.handleSSE
}
