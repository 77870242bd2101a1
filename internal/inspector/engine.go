// Package inspector владеет состоянием анализа и маркеров одного мира.
//
// Engine создаётся при старте плагина и передаётся обработчикам команд.
// Все методы синхронны и получают уже загруженные данные (список кирпичей,
// позицию игрока); обращения к хосту выполняет вызывающий. Engine безопасен
// для конкурентного использования: консоль и status API работают параллельно.
package inspector

import (
	"errors"
	"sync"
	"time"

	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/chunk"
	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
)

// ErrNotAnalyzed возвращается запросами до первого успешного анализа
var ErrNotAnalyzed = errors.New("the save has not been analyzed")

// State - состояние жизненного цикла движка
type State uint8

const (
	Uninitialized State = iota // анализа ещё не было
	Analyzed                   // в кеше есть результат
)

// String возвращает имя состояния
func (s State) String() string {
	if s == Analyzed {
		return "analyzed"
	}
	return "uninitialized"
}

// Engine - кеш анализа плюс планировщик маркеров
type Engine struct {
	cache   *analysis.Cache
	metrics *analysis.Metrics

	mu      sync.Mutex // защищает набор маркеров планировщика
	planner *marker.Planner
}

// New создаёт движок в состоянии Uninitialized. metrics может быть nil.
func New(metrics *analysis.Metrics) *Engine {
	return &Engine{
		cache:   analysis.NewCache(),
		planner: marker.NewPlanner(),
		metrics: metrics,
	}
}

// State возвращает текущее состояние
func (e *Engine) State() State {
	if _, ok := e.cache.Get(); ok {
		return Analyzed
	}
	return Uninitialized
}

// MarkersPlaced сообщает, отслеживаются ли размещённые маркеры
func (e *Engine) MarkersPlaced() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planner.Placed() > 0
}

// Result возвращает последний результат анализа
func (e *Engine) Result() (*analysis.Result, bool) {
	return e.cache.Get()
}

// Analyze агрегирует кирпичи и заменяет результат в кеше
func (e *Engine) Analyze(bricks []save.Brick) *analysis.Result {
	start := time.Now()
	res := analysis.Analyze(bricks)
	took := time.Since(start)

	e.cache.Set(res)
	e.metrics.ObserveAnalysis(res, took, marker.ColliderLimit)

	logging.GetAnalysisLogger().Info("🧮 Анализ: %d кирпичей, %d чанков, %d коллайдеров за %s",
		res.TotalBricks, len(res.Chunks), res.TotalColliders, took)
	return res
}

// ChunkAt возвращает чанк, содержащий позицию
func (e *Engine) ChunkAt(pos vec.Vec3Float) vec.Vec2 {
	return chunk.Of(pos)
}

// Count возвращает статистику чанка, содержащего позицию
func (e *Engine) Count(pos vec.Vec3Float) (vec.Vec2, analysis.Stats, error) {
	res, ok := e.cache.Get()
	if !ok {
		return vec.Vec2{}, analysis.Stats{}, ErrNotAnalyzed
	}
	c := chunk.Of(pos)
	stats, _ := res.Lookup(c)
	return c, stats, nil
}

// Mark строит план маркеров для чанка позиции (пустой чанк тоже размечается)
func (e *Engine) Mark(pos vec.Vec3Float) (marker.Plan, error) {
	return e.PlanChunk(chunk.Of(pos))
}

// PlanChunk строит план маркеров по координате чанка, ничего не отслеживая
func (e *Engine) PlanChunk(c vec.Vec2) (marker.Plan, error) {
	res, ok := e.cache.Get()
	if !ok {
		return marker.Plan{}, ErrNotAnalyzed
	}
	stats, _ := res.Lookup(c)
	return e.planner.PlanFor(c, stats), nil
}

// MarkAll строит планы для всех непустых чанков
func (e *Engine) MarkAll() ([]marker.Plan, error) {
	res, ok := e.cache.Get()
	if !ok {
		return nil, ErrNotAnalyzed
	}
	return e.planner.PlanAll(res), nil
}

// Track запоминает идентификаторы маркеров, созданных хостом по плану
func (e *Engine) Track(plan marker.Plan, ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.planner.Track(plan.Chunk, ids...)
	e.metrics.SetMarkers(e.planner.Placed())
}

// Retain возвращает под отслеживание маркеры, которые не удалось убрать после Clear
func (e *Engine) Retain(ids []string) {
	if len(ids) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.planner.Retain(ids...)
	e.metrics.SetMarkers(e.planner.Placed())
}

// Clear возвращает идентификаторы всех размещённых маркеров и забывает их
func (e *Engine) Clear() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.planner.ClearAll()
	e.metrics.SetMarkers(0)
	return ids
}
