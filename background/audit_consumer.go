package background

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dockcall-backend/infra"
	"dockcall-backend/model"
	"dockcall-backend/service"

	"github.com/rs/zerolog"
)

// AuditConsumer drains the action log queue and persists entries through
// the action log service. Running it on the queue decouples the audit
// write from the request path.
type AuditConsumer struct {
	logger       zerolog.Logger
	RabbitMQ     *infra.RabbitMQ
	ActionLogSvc *service.ActionLogService
	consumerID   string
}

func NewAuditConsumer(logger zerolog.Logger, rabbitMQ *infra.RabbitMQ, actionLogSvc *service.ActionLogService) *AuditConsumer {
	return &AuditConsumer{
		logger:       logger.With().Str("component", "audit-consumer").Logger(),
		RabbitMQ:     rabbitMQ,
		ActionLogSvc: actionLogSvc,
		consumerID:   fmt.Sprintf("audit-consumer-%d", time.Now().Unix()),
	}
}

// Start consumes the audit queue until the context is cancelled.
func (ac *AuditConsumer) Start(ctx context.Context) {
	msgs, err := ac.RabbitMQ.Consume(infra.QueueNameActionLog.String())
	if err != nil {
		ac.logger.Fatal().Err(err).Str("queue", infra.QueueNameActionLog.String()).Msg("audit consumer cannot consume queue")
	}

	ac.logger.Info().Str("consumer_id", ac.consumerID).Msg("audit consumer started, waiting for entries...")
	for {
		select {
		case <-ctx.Done():
			ac.logger.Info().Msg("audit consumer stopped")
			return
		case msg, ok := <-msgs:
			if !ok {
				ac.logger.Warn().Msg("audit queue channel closed")
				return
			}

			var entry model.ActionLogEntry
			if err := json.Unmarshal(msg.Body, &entry); err != nil {
				ac.logger.Error().Err(err).Msg("cannot parse action log entry, discarding")
				msg.Nack(false, false)
				continue
			}

			if err := ac.ActionLogSvc.Persist(ctx, &entry); err != nil {
				ac.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to persist action log entry, requeueing")
				msg.Nack(false, true)
				continue
			}

			msg.Ack(false)
		}
	}
}
