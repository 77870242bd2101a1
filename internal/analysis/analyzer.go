// Package analysis агрегирует кирпичи сохранения по чанкам и хранит последний результат.
package analysis

import (
	"errors"
	"sort"
	"time"

	"github.com/annel0/chunk-inspector/internal/chunk"
	"github.com/annel0/chunk-inspector/internal/collider"
	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
)

// ErrEmptyInput - для вызывающих, которым нужен непустой мир.
// Сам Analyze на пустом списке не падает.
var ErrEmptyInput = errors.New("empty input: world has no bricks")

// Stats - агрегат одного чанка
type Stats struct {
	Bricks     uint64       `json:"bricks"`
	Colliders  uint64       `json:"colliders"`
	Components uint64       `json:"components"`
	ZRange     chunk.ZRange `json:"z_range"` // наблюдаемая высота кирпичей чанка
}

// add учитывает один кирпич
func (s *Stats) add(b save.Brick, colliders uint32) {
	if s.Bricks == 0 {
		s.ZRange = chunk.ZRange{Min: b.Bottom(), Max: b.Top()}
	} else {
		s.ZRange = s.ZRange.Extend(b.Bottom(), b.Top())
	}
	s.Bricks++
	s.Colliders += uint64(colliders)
	if b.Components > 0 {
		s.Components += uint64(b.Components)
	}
}

// Result - полный агрегат одного списка кирпичей
type Result struct {
	Chunks         map[vec.Vec2]*Stats
	TotalBricks    int
	TotalColliders uint64
	UnknownShapes  map[string]int // имя ассета -> число кирпичей
	AnalyzedAt     time.Time
}

// Empty сообщает, что анализ прошёл по миру без кирпичей
func (r *Result) Empty() bool {
	return r.TotalBricks == 0
}

// Lookup возвращает статистику чанка; для чанка без кирпичей - нулевую
func (r *Result) Lookup(c vec.Vec2) (Stats, bool) {
	if s, ok := r.Chunks[c]; ok {
		return *s, true
	}
	return Stats{}, false
}

// Sorted возвращает координаты чанков в детерминированном порядке
func (r *Result) Sorted() []vec.Vec2 {
	coords := make([]vec.Vec2, 0, len(r.Chunks))
	for c := range r.Chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// Over возвращает чанки, число коллайдеров которых не меньше limit
func (r *Result) Over(limit uint64) []vec.Vec2 {
	var out []vec.Vec2
	for _, c := range r.Sorted() {
		if r.Chunks[c].Colliders >= limit {
			out = append(out, c)
		}
	}
	return out
}

// Analyze агрегирует кирпичи за один проход: O(n) по числу кирпичей,
// O(1) амортизированно на обновление чанка. Порядок кирпичей не влияет на результат.
func Analyze(bricks []save.Brick) *Result {
	res := &Result{
		Chunks:        make(map[vec.Vec2]*Stats),
		TotalBricks:   len(bricks),
		UnknownShapes: make(map[string]int),
		AnalyzedAt:    time.Now(),
	}

	for i := range bricks {
		b := &bricks[i]

		c := chunk.Of(b.Position)
		n, known := collider.Count(*b)
		if !known {
			res.UnknownShapes[b.Asset]++
		}

		st, ok := res.Chunks[c]
		if !ok {
			st = &Stats{}
			res.Chunks[c] = st
		}
		st.add(*b, n)
		res.TotalColliders += uint64(n)
	}

	if len(res.UnknownShapes) > 0 {
		logging.GetAnalysisLogger().Warn("⚠️ Неизвестные формы (учтены как %d коллайдер): %v", collider.Fallback, res.UnknownShapes)
	}
	return res
}
