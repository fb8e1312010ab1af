package controller

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	websocketModels "dockcall-backend/data-models/websocket"
	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketController keeps one live connection per driver for the driver
// panel view. Drivers identify with their registry id plus their 3-digit
// operational PIN when one is set.
type WebSocketController struct {
	logger        zerolog.Logger
	driverService *service.DriverService
	upgrader      websocket.Upgrader
	connections   map[string]*websocketModels.Connection
	connectionsMu sync.RWMutex
}

func NewWebSocketController(logger zerolog.Logger, driverService *service.DriverService) *WebSocketController {
	wsc := &WebSocketController{
		logger:        logger.With().Str("module", "websocket_controller").Logger(),
		driverService: driverService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		connections: make(map[string]*websocketModels.Connection),
	}

	go wsc.healthCheck()
	return wsc
}

func (wsc *WebSocketController) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driverId")
	if driverID == "" {
		wsc.logger.Error().Msg("missing driverId parameter")
		http.Error(w, "parâmetro driverId ausente", http.StatusUnauthorized)
		return
	}

	driver, err := wsc.driverService.Get(r.Context(), driverID)
	if err != nil {
		wsc.logger.Error().Err(err).Str("driver_id", driverID).Msg("driver lookup failed")
		http.Error(w, "motorista não encontrado", http.StatusUnauthorized)
		return
	}
	if driver.Password != "" && r.URL.Query().Get("pin") != driver.Password {
		wsc.logger.Warn().Str("driver_id", driverID).Msg("panel connection rejected, wrong PIN")
		http.Error(w, "senha do motorista inválida", http.StatusUnauthorized)
		return
	}

	conn, err := wsc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsc.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	connection := &websocketModels.Connection{
		DriverID:     driver.ID,
		Conn:         conn,
		LastPing:     time.Now(),
		SendChannel:  make(chan []byte, 256),
		CloseChannel: make(chan struct{}),
		Status:       websocketModels.ConnectionStatusConnected,
	}

	wsc.registerConnection(connection)

	go wsc.handleSender(connection)
	go wsc.handleReader(connection)

	<-connection.CloseChannel
	wsc.unregisterConnection(connection)
}

func (wsc *WebSocketController) registerConnection(conn *websocketModels.Connection) {
	wsc.connectionsMu.Lock()
	defer wsc.connectionsMu.Unlock()

	if existingConn, exists := wsc.connections[conn.DriverID]; exists {
		wsc.logger.Info().Str("driver_id", conn.DriverID).Msg("duplicate panel connection, closing the old one")

		// Remove the old connection from the map before closing it to avoid
		// a race with its cleanup.
		delete(wsc.connections, conn.DriverID)

		existingConn.CloseOnce.Do(func() {
			close(existingConn.CloseChannel)
		})
		existingConn.Conn.Close()
	}

	wsc.connections[conn.DriverID] = conn
}

func (wsc *WebSocketController) unregisterConnection(conn *websocketModels.Connection) {
	wsc.connectionsMu.Lock()
	defer wsc.connectionsMu.Unlock()

	// Only remove the connection if it is still the registered one; the
	// cleanup of an old connection must not evict a newer one.
	if currentConn, exists := wsc.connections[conn.DriverID]; exists && currentConn == conn {
		delete(wsc.connections, conn.DriverID)
	}
}

func (wsc *WebSocketController) handleReader(conn *websocketModels.Connection) {
	defer func() {
		if r := recover(); r != nil {
			wsc.logger.Error().Interface("panic", r).Msg("RECOVERED in handleReader from panic")
		}
		conn.CloseOnce.Do(func() {
			close(conn.CloseChannel)
		})
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(1024)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		wsc.connectionsMu.Lock()
		conn.LastPing = time.Now()
		wsc.connectionsMu.Unlock()
		return nil
	})

	for {
		_, messageBytes, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				wsc.logger.Error().Err(err).Str("driver_id", conn.DriverID).Msg("Websocket read error")
			}
			break
		}

		var wsMessage websocketModels.WSMessage
		if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
			wsc.logger.Error().Err(err).Str("driver_id", conn.DriverID).Msg("cannot parse WebSocket message")
			continue
		}

		wsc.handleMessage(conn, wsMessage)
	}
}

func (wsc *WebSocketController) handleSender(conn *websocketModels.Connection) {
	pingTicker := time.NewTicker(10 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case message := <-conn.SendChannel:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				wsc.logger.Error().Err(err).Msg("failed to send message")
				return
			}
		case <-pingTicker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				wsc.logger.Error().Err(err).Str("driver_id", conn.DriverID).Msg("failed to send ping")
				return
			}
		case <-conn.CloseChannel:
			return
		}
	}
}

func (wsc *WebSocketController) handleMessage(conn *websocketModels.Connection, wsMessage websocketModels.WSMessage) {
	switch wsMessage.Type {
	case websocketModels.MessageTypePing:
		wsc.connectionsMu.Lock()
		conn.LastPing = time.Now()
		wsc.connectionsMu.Unlock()

		wsc.sendResponseToConnection(conn, websocketModels.WSMessage{
			Type: websocketModels.MessageTypePong,
			Data: map[string]interface{}{"timestamp": time.Now().Unix()},
		})

	default:
		wsc.logger.Warn().
			Str("driver_id", conn.DriverID).
			Str("message_type", wsMessage.Type).
			Msg("unknown WebSocket message type")
	}
}

func (wsc *WebSocketController) sendResponseToConnection(conn *websocketModels.Connection, message websocketModels.WSMessage) bool {
	data, err := json.Marshal(message)
	if err != nil {
		wsc.logger.Error().Err(err).Msg("failed to serialize message")
		return false
	}

	select {
	case conn.SendChannel <- data:
		return true
	default:
		wsc.logger.Error().Str("driver_id", conn.DriverID).Msg("send failed: driver's send channel is full")
		return false
	}
}

// PushToDriver implements service.DriverPusher: it delivers a panel event to
// the driver's live connection, if there is one.
func (wsc *WebSocketController) PushToDriver(driverID string, event string, data map[string]interface{}) bool {
	wsc.connectionsMu.RLock()
	conn, ok := wsc.connections[driverID]
	wsc.connectionsMu.RUnlock()

	if !ok {
		return false
	}

	return wsc.sendResponseToConnection(conn, websocketModels.WSMessage{
		Type: websocketModels.MessageTypePanelEvent,
		Data: map[string]interface{}{
			"event":   event,
			"payload": data,
		},
	})
}

func (wsc *WebSocketController) healthCheck() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		wsc.connectionsMu.Lock()
		var toRemove []string
		for driverID, conn := range wsc.connections {
			if time.Since(conn.LastPing) > 60*time.Second {
				wsc.logger.Info().Str("driver_id", driverID).Msg("connection timed out, closing")
				conn.CloseOnce.Do(func() {
					close(conn.CloseChannel)
				})
				conn.Conn.Close()
				toRemove = append(toRemove, driverID)
			}
		}
		for _, driverID := range toRemove {
			delete(wsc.connections, driverID)
		}
		wsc.connectionsMu.Unlock()
	}
}

func (wsc *WebSocketController) RegisterRoutes(api huma.API) {}

func (wsc *WebSocketController) GetWebSocketHandler() http.HandlerFunc {
	return wsc.handleWebSocket
}

func (wsc *WebSocketController) GetStats() *websocketModels.ConnectionStats {
	wsc.connectionsMu.RLock()
	defer wsc.connectionsMu.RUnlock()

	connectionStatus := make(map[string]websocketModels.ConnectionStatus)
	for driverID, conn := range wsc.connections {
		connectionStatus[driverID] = conn.Status
	}

	return &websocketModels.ConnectionStats{
		ConnectedDrivers: len(wsc.connections),
		TotalConnections: len(wsc.connections),
		ConnectionStatus: connectionStatus,
	}
}

// ConnectionCount returns the number of live driver connections for the
// Prometheus gauges.
func (wsc *WebSocketController) ConnectionCount() int {
	wsc.connectionsMu.RLock()
	defer wsc.connectionsMu.RUnlock()
	return len(wsc.connections)
}

var _ service.DriverPusher = (*WebSocketController)(nil)
