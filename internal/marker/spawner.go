package marker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/google/uuid"
)

// Spawner - API хоста, рисующее маркеры в мире
type Spawner interface {
	Spawn(ctx context.Context, pos vec.Vec3Float, color Color) (string, error)
	Despawn(ctx context.Context, id string) error
}

// MemorySpawner держит маркеры в памяти. Используется консолью и тестами.
type MemorySpawner struct {
	mu      sync.Mutex
	markers map[string]Marker
}

// NewMemorySpawner создаёт пустой спаунер
func NewMemorySpawner() *MemorySpawner {
	return &MemorySpawner{markers: make(map[string]Marker)}
}

// Spawn создаёт маркер и возвращает его идентификатор
func (ms *MemorySpawner) Spawn(ctx context.Context, pos vec.Vec3Float, color Color) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	ms.mu.Lock()
	ms.markers[id] = Marker{Position: pos, Color: color}
	ms.mu.Unlock()
	return id, nil
}

// Despawn удаляет маркер
func (ms *MemorySpawner) Despawn(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.markers[id]; !ok {
		return fmt.Errorf("маркер %s не найден", id)
	}
	delete(ms.markers, id)
	return nil
}

// Live возвращает отсортированные идентификаторы существующих маркеров
func (ms *MemorySpawner) Live() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ids := make([]string, 0, len(ms.markers))
	for id := range ms.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get возвращает маркер по идентификатору
func (ms *MemorySpawner) Get(id string) (Marker, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m, ok := ms.markers[id]
	return m, ok
}
