package engine

import (
	"context"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// Sink — приёмник StatusUpdate.
//
// Emit доставляет один update. Возвращённая ошибка означает, что
// поток мёртв (потребитель отменил контекст) — оркестратор после
// этого прекращает запуск как internal fault. Sink не обязан
// буферизовать: блокировка на медленном потребителе допустима.
type Sink interface {
	Emit(ctx context.Context, u domain.StatusUpdate) error
}

// ChannelSink — sink поверх небуферизованного канала.
//
// Emit блокируется, пока потребитель не прочитает update или
// контекст не будет отменён. Updates не теряются и не батчатся.
type ChannelSink struct {
	ch chan<- domain.StatusUpdate
}

// NewChannelSink создаёт ChannelSink поверх ch.
func NewChannelSink(ch chan<- domain.StatusUpdate) *ChannelSink {
	return &ChannelSink{ch: ch}
}

// Emit отправляет update в канал.
func (s *ChannelSink) Emit(ctx context.Context, u domain.StatusUpdate) error {
	select {
	case s.ch <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiSink рассылает каждый update во все sinks по порядку.
// Первая ошибка прерывает рассылку и возвращается вызывающему.
type MultiSink []Sink

// Emit доставляет update во все sinks.
func (m MultiSink) Emit(ctx context.Context, u domain.StatusUpdate) error {
	for _, s := range m {
		if err := s.Emit(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
