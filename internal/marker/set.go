package marker

import "github.com/annel0/chunk-inspector/internal/vec"

// Set - идентификаторы размещённых маркеров, сгруппированные по чанку.
// Не потокобезопасен: inspector.Engine защищает его своим мьютексом.
type Set struct {
	byChunk map[vec.Vec2][]string
	order   []vec.Vec2
	loose   []string // возвращены через Keep, чанк уже неизвестен
	total   int
}

// NewSet создаёт пустой набор
func NewSet() *Set {
	return &Set{byChunk: make(map[vec.Vec2][]string)}
}

// Add добавляет идентификаторы маркеров чанка
func (s *Set) Add(c vec.Vec2, ids ...string) {
	if len(ids) == 0 {
		return
	}
	if _, ok := s.byChunk[c]; !ok {
		s.order = append(s.order, c)
	}
	s.byChunk[c] = append(s.byChunk[c], ids...)
	s.total += len(ids)
}

// Chunk возвращает идентификаторы маркеров одного чанка
func (s *Set) Chunk(c vec.Vec2) []string {
	return s.byChunk[c]
}

// Len возвращает общее число маркеров
func (s *Set) Len() int {
	return s.total
}

// Keep возвращает в набор идентификаторы, которые не удалось убрать после Drain
func (s *Set) Keep(ids ...string) {
	s.loose = append(s.loose, ids...)
	s.total += len(ids)
}

// Drain возвращает все идентификаторы в порядке добавления и очищает набор.
// Идентификаторы из Keep идут первыми.
func (s *Set) Drain() []string {
	out := make([]string, 0, s.total)
	out = append(out, s.loose...)
	for _, c := range s.order {
		out = append(out, s.byChunk[c]...)
	}
	s.byChunk = make(map[vec.Vec2][]string)
	s.order = nil
	s.loose = nil
	s.total = 0
	return out
}
