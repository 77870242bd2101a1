package players

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/chunk-inspector/internal/vec"
)

// MemoryLocator хранит позиции игроков в памяти.
// Используется консолью и тестами, а также как fallback без Redis.
type MemoryLocator struct {
	mu   sync.RWMutex
	data map[string]vec.Vec3Float // имя игрока -> позиция
}

// NewMemoryLocator создаёт пустой локатор
func NewMemoryLocator() *MemoryLocator {
	return &MemoryLocator{data: make(map[string]vec.Vec3Float)}
}

// Update сохраняет позицию игрока
func (l *MemoryLocator) Update(ctx context.Context, player string, pos vec.Vec3Float) error {
	key := normalize(player)
	if key == "" {
		return fmt.Errorf("пустое имя игрока")
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[key] = pos
	return nil
}

// Position возвращает позицию игрока
func (l *MemoryLocator) Position(ctx context.Context, player string) (vec.Vec3Float, error) {
	select {
	case <-ctx.Done():
		return vec.Vec3Float{}, ctx.Err()
	default:
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.data[normalize(player)]
	if !ok {
		return vec.Vec3Float{}, fmt.Errorf("%w: %s", ErrNoSuchPlayer, player)
	}
	return pos, nil
}

// Remove удаляет игрока (выход с сервера)
func (l *MemoryLocator) Remove(player string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.data, normalize(player))
}

// Count возвращает количество известных игроков (для отладки)
func (l *MemoryLocator) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data)
}
