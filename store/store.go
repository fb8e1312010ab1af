// Package store defines the persistence boundary of the panel. Services
// depend on the Store interface only; the Mongo implementation backs the
// service in production and the memory implementation backs tests and the
// storage-free development mode.
package store

import (
	"context"
	"errors"

	"dockcall-backend/model"
)

// ErrNotFound is returned when a driver, call, or log entry does not exist.
var ErrNotFound = errors.New("not found")

// Store groups the per-collection accessors the panel uses. Every call
// record lives in exactly one of the two call collections at any time;
// the lifecycle service relies on the store honoring that split.
type Store interface {
	// Drivers
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	GetDriver(ctx context.Context, id string) (*model.Driver, error)
	UpsertDriver(ctx context.Context, driver *model.Driver) error
	DeleteDriver(ctx context.Context, id string) error
	CountDrivers(ctx context.Context) (int64, error)

	// Active calls (called_drivers)
	ListActiveCalls(ctx context.Context) ([]model.Call, error)
	GetActiveCall(ctx context.Context, callID string) (*model.Call, error)
	FindActiveCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error)
	InsertActiveCall(ctx context.Context, call *model.Call) error
	DeleteActiveCall(ctx context.Context, callID string) error
	DeleteActiveCallsByDriver(ctx context.Context, driverID string) error

	// Finalized calls (finalized_calls)
	ListFinalizedCalls(ctx context.Context) ([]model.Call, error)
	GetFinalizedCall(ctx context.Context, callID string) (*model.Call, error)
	FindFinalizedCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error)
	InsertFinalizedCall(ctx context.Context, call *model.Call) error
	DeleteFinalizedCall(ctx context.Context, callID string) error
	DeleteFinalizedCallsByDriver(ctx context.Context, driverID string) error
	CountFinalizedCalls(ctx context.Context) (int64, error)

	// Action history (action_history)
	InsertActionLog(ctx context.Context, entry *model.ActionLogEntry) error
	ListActionLogs(ctx context.Context, limit int) ([]model.ActionLogEntry, error)
	TrimActionLogs(ctx context.Context, max int) error
}
