package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectionStatus is the lifecycle state of one panel connection.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// Connection is one driver's live panel connection.
type Connection struct {
	DriverID     string
	Conn         *websocket.Conn
	LastPing     time.Time
	SendChannel  chan []byte
	CloseChannel chan struct{}
	CloseOnce    sync.Once
	Status       ConnectionStatus
}

// WSMessage is the wire envelope for panel messages.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const (
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
	MessageTypePanelEvent = "panel_event"
)

// ConnectionStats summarizes the hub for the monitoring endpoint.
type ConnectionStats struct {
	ConnectedDrivers int                         `json:"connected_drivers"`
	TotalConnections int                         `json:"total_connections"`
	ConnectionStatus map[string]ConnectionStatus `json:"connection_status"`
}
