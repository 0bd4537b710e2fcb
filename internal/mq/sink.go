package mq

import (
	"context"
	"log/slog"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// EventSink отправляет status updates движка в RabbitMQ.
// Реализует engine.Sink.
//
// Публикация best-effort: недоступный брокер не должен ронять
// выполнение workflow, поэтому ошибки логируются и глотаются.
type EventSink struct {
	publisher *Publisher
	logger    *slog.Logger
}

// NewEventSink создаёт EventSink.
func NewEventSink(publisher *Publisher, logger *slog.Logger) *EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSink{
		publisher: publisher,
		logger:    logger,
	}
}

// Emit публикует update. Всегда возвращает nil.
func (s *EventSink) Emit(ctx context.Context, u domain.StatusUpdate) error {
	if err := s.publisher.PublishStatusUpdate(ctx, u); err != nil {
		s.logger.Warn("failed to publish status update",
			"execution_id", u.ExecutionID,
			"status", u.Status,
			"error", err,
		)
	}
	return nil
}
