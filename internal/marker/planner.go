// Package marker планирует угловые маркеры чанков и отслеживает размещённые маркеры.
package marker

import (
	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/chunk"
	"github.com/annel0/chunk-inspector/internal/vec"
)

// Marker - одна точка маркера в мире
type Marker struct {
	Position vec.Vec3Float
	Color    Color
}

// Plan - восемь угловых маркеров одного чанка
type Plan struct {
	Chunk    vec.Vec2
	Stats    analysis.Stats
	Severity Severity
	Markers  [8]Marker
}

// Planner строит планы маркеров и помнит идентификаторы уже созданных
type Planner struct {
	set *Set
}

// NewPlanner создаёт планировщик с пустым набором маркеров
func NewPlanner() *Planner {
	return &Planner{set: NewSet()}
}

// PlanFor строит план для одного чанка. Пустой чанк тоже получает маркеры,
// чтобы игрок видел, что запрос выполнен.
func (p *Planner) PlanFor(c vec.Vec2, s analysis.Stats) Plan {
	sev := Classify(s)

	zr := chunk.DefaultZRange
	if s.Bricks > 0 {
		zr = s.ZRange
	}

	plan := Plan{Chunk: c, Stats: s, Severity: sev}
	color := sev.Color()
	for i, pos := range chunk.Corners(c, zr) {
		plan.Markers[i] = Marker{Position: pos, Color: color}
	}
	return plan
}

// PlanAll строит планы для всех непустых чанков результата в детерминированном порядке
func (p *Planner) PlanAll(r *analysis.Result) []Plan {
	coords := r.Sorted()
	plans := make([]Plan, 0, len(coords))
	for _, c := range coords {
		s := *r.Chunks[c]
		if s.Bricks == 0 {
			continue
		}
		plans = append(plans, p.PlanFor(c, s))
	}
	return plans
}

// Track запоминает идентификаторы маркеров, созданных по плану чанка c
func (p *Planner) Track(c vec.Vec2, ids ...string) {
	p.set.Add(c, ids...)
}

// Placed возвращает число отслеживаемых маркеров
func (p *Planner) Placed() int {
	return p.set.Len()
}

// Retain снова отслеживает идентификаторы, которые хост не смог удалить
func (p *Planner) Retain(ids ...string) {
	p.set.Keep(ids...)
}

// ClearAll возвращает все отслеживаемые идентификаторы и очищает набор.
// На пустом наборе возвращает пустой срез.
func (p *Planner) ClearAll() []string {
	return p.set.Drain()
}
