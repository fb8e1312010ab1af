package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"dockcall-backend/eventbus"
	"dockcall-backend/infra"
	"dockcall-backend/model"
	"dockcall-backend/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ActionLogService records the audit trail of mutating panel operations.
// Entries travel through the RabbitMQ audit queue when it is available and
// fall back to synchronous persistence when it is not; either way the
// retained history is capped at the newest 100 entries.
type ActionLogService struct {
	logger   zerolog.Logger
	store    store.Store
	rabbitMQ *infra.RabbitMQ
	bus      *eventbus.Bus
}

func NewActionLogService(logger zerolog.Logger, s store.Store, rabbitMQ *infra.RabbitMQ, bus *eventbus.Bus) *ActionLogService {
	return &ActionLogService{
		logger:   logger.With().Str("module", "action_log_service").Logger(),
		store:    s,
		rabbitMQ: rabbitMQ,
		bus:      bus,
	}
}

// Record enqueues an audit entry. Failures are logged and swallowed: audit
// transport problems must not fail the operation being recorded.
func (s *ActionLogService) Record(ctx context.Context, action string, role model.UserRole, details string) {
	entry := &model.ActionLogEntry{
		ID:        uuid.NewString(),
		Action:    action,
		UserRole:  role,
		Details:   details,
		Timestamp: time.Now(),
	}

	if s.rabbitMQ != nil {
		body, err := json.Marshal(entry)
		if err == nil {
			if err := s.rabbitMQ.PublishMessage(infra.QueueNameActionLog.String(), body); err == nil {
				return
			}
			s.logger.Warn().Err(err).Str("action", action).Msg("audit queue publish failed, persisting directly")
		}
	}

	if err := s.Persist(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist action log entry")
	}
}

// Persist writes an entry, trims the history to the cap, and announces the
// update. Called directly on the fallback path and by the queue consumer.
func (s *ActionLogService) Persist(ctx context.Context, entry *model.ActionLogEntry) error {
	if err := s.store.InsertActionLog(ctx, entry); err != nil {
		return err
	}
	if err := s.store.TrimActionLogs(ctx, model.ActionHistoryLimit); err != nil {
		s.logger.Error().Err(err).Msg("failed to trim action history")
	}

	s.bus.Publish(eventbus.TopicActionHistoryUpdated, map[string]interface{}{
		"action": entry.Action,
	})
	return nil
}

// List returns the newest entries first, optionally filtered by role and a
// free-text search over action and details.
func (s *ActionLogService) List(ctx context.Context, roleFilter model.UserRole, search string) ([]model.ActionLogEntry, error) {
	entries, err := s.store.ListActionLogs(ctx, model.ActionHistoryLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list action history")
		return nil, err
	}

	if roleFilter == "" && search == "" {
		return entries, nil
	}

	keyword := strings.ToLower(strings.TrimSpace(search))
	filtered := make([]model.ActionLogEntry, 0, len(entries))
	for _, entry := range entries {
		if roleFilter != "" && entry.UserRole != roleFilter {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(entry.Action), keyword) &&
			!strings.Contains(strings.ToLower(entry.Details), keyword) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, nil
}
