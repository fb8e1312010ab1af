package store

import (
	"context"
	"sort"
	"sync"

	"dockcall-backend/model"
)

// MemoryStore is an in-memory Store used by tests and the "memory"
// storage backend. All methods are safe for concurrent use.
type MemoryStore struct {
	mu             sync.RWMutex
	drivers        map[string]model.Driver
	activeCalls    map[string]model.Call
	finalizedCalls map[string]model.Call
	actionLogs     []model.ActionLogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers:        make(map[string]model.Driver),
		activeCalls:    make(map[string]model.Call),
		finalizedCalls: make(map[string]model.Call),
	}
}

func (s *MemoryStore) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drivers := make([]model.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].CreatedAt.After(drivers[j].CreatedAt)
	})
	return drivers, nil
}

func (s *MemoryStore) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) UpsertDriver(ctx context.Context, driver *model.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drivers[driver.ID] = *driver
	return nil
}

func (s *MemoryStore) DeleteDriver(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(s.drivers, id)
	return nil
}

func (s *MemoryStore) CountDrivers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.drivers)), nil
}

func (s *MemoryStore) ListActiveCalls(ctx context.Context) ([]model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make([]model.Call, 0, len(s.activeCalls))
	for _, c := range s.activeCalls {
		calls = append(calls, c)
	}
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].CalledAt.After(calls[j].CalledAt)
	})
	return calls, nil
}

func (s *MemoryStore) GetActiveCall(ctx context.Context, callID string) (*model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.activeCalls[callID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) FindActiveCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var calls []model.Call
	for _, c := range s.activeCalls {
		if c.DriverID == driverID {
			calls = append(calls, c)
		}
	}
	return calls, nil
}

func (s *MemoryStore) InsertActiveCall(ctx context.Context, call *model.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeCalls[call.CallID] = *call
	return nil
}

func (s *MemoryStore) DeleteActiveCall(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeCalls[callID]; !ok {
		return ErrNotFound
	}
	delete(s.activeCalls, callID)
	return nil
}

func (s *MemoryStore) DeleteActiveCallsByDriver(ctx context.Context, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.activeCalls {
		if c.DriverID == driverID {
			delete(s.activeCalls, id)
		}
	}
	return nil
}

func (s *MemoryStore) ListFinalizedCalls(ctx context.Context) ([]model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make([]model.Call, 0, len(s.finalizedCalls))
	for _, c := range s.finalizedCalls {
		calls = append(calls, c)
	}
	sort.Slice(calls, func(i, j int) bool {
		ti, tj := calls[i].FinalizedAt, calls[j].FinalizedAt
		// Unstamped records sort last; two of them compare equal.
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.After(*tj)
	})
	return calls, nil
}

func (s *MemoryStore) GetFinalizedCall(ctx context.Context, callID string) (*model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.finalizedCalls[callID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) FindFinalizedCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var calls []model.Call
	for _, c := range s.finalizedCalls {
		if c.DriverID == driverID {
			calls = append(calls, c)
		}
	}
	return calls, nil
}

func (s *MemoryStore) InsertFinalizedCall(ctx context.Context, call *model.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finalizedCalls[call.CallID] = *call
	return nil
}

func (s *MemoryStore) DeleteFinalizedCall(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.finalizedCalls[callID]; !ok {
		return ErrNotFound
	}
	delete(s.finalizedCalls, callID)
	return nil
}

func (s *MemoryStore) DeleteFinalizedCallsByDriver(ctx context.Context, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.finalizedCalls {
		if c.DriverID == driverID {
			delete(s.finalizedCalls, id)
		}
	}
	return nil
}

func (s *MemoryStore) CountFinalizedCalls(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.finalizedCalls)), nil
}

func (s *MemoryStore) InsertActionLog(ctx context.Context, entry *model.ActionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actionLogs = append(s.actionLogs, *entry)
	return nil
}

func (s *MemoryStore) ListActionLogs(ctx context.Context, limit int) ([]model.ActionLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]model.ActionLogEntry, len(s.actionLogs))
	copy(logs, s.actionLogs)
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *MemoryStore) TrimActionLogs(ctx context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.actionLogs) <= max {
		return nil
	}
	sort.Slice(s.actionLogs, func(i, j int) bool {
		return s.actionLogs[i].Timestamp.After(s.actionLogs[j].Timestamp)
	})
	s.actionLogs = s.actionLogs[:max]
	return nil
}
