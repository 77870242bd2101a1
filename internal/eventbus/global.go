package eventbus

import (
	"context"
	"sync"

	"github.com/annel0/chunk-inspector/internal/logging"
)

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// Init устанавливает глобальную шину.
func Init(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	globalMu.RLock()
	bus := globalBus
	globalMu.RUnlock()

	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}

// Emit собирает конверт и публикует его; ошибки только логируются,
// потому что события не должны ломать обработку команды.
func Emit(ctx context.Context, source, eventType, player string, payload interface{}) {
	ev, err := NewEnvelope(source, eventType, player, payload)
	if err != nil {
		logging.Warn("[EventBus] не удалось собрать %s: %v", eventType, err)
		return
	}
	if err := Publish(ctx, ev); err != nil {
		logging.Warn("[EventBus] не удалось опубликовать %s: %v", eventType, err)
	}
}
