// Package collider содержит таблицу числа физических коллайдеров на форму кирпича.
//
// Таблица - единственный источник истины для арифметики коллайдеров и должна
// совпадать с тем, как физический движок игры раскладывает формы на выпуклые
// части. Обычный кубоид даёт ровно один коллайдер.
package collider

import "github.com/annel0/chunk-inspector/internal/save"

// Fallback - вес неизвестной формы. Анализ не прерывается, форма помечается как неизвестная.
const Fallback uint32 = 1

// Weight возвращает число коллайдеров для формы и признак того, что форма известна
func Weight(s save.Shape) (uint32, bool) {
	switch s {
	case save.ShapeCuboid, save.ShapeTile:
		return 1, true
	case save.ShapeWedge, save.ShapeSideWedge, save.ShapeMicroWedge:
		return 2, true
	case save.ShapeRamp, save.ShapeRampCrest, save.ShapeCorner:
		return 3, true
	case save.ShapeRampCorner, save.ShapeArch, save.ShapeRound:
		return 4, true
	case save.ShapeCylinder:
		return 8, true
	case save.ShapeSphere:
		return 12, true
	case save.ShapeUnknown:
		return Fallback, false
	default:
		return Fallback, false
	}
}

// Count возвращает вклад кирпича в число коллайдеров чанка.
// Кирпич с отключённой коллизией не даёт коллайдеров.
func Count(b save.Brick) (n uint32, known bool) {
	n, known = Weight(b.Shape)
	if !b.Collision {
		return 0, known
	}
	return n, known
}

// Entry - строка таблицы коллайдеров
type Entry struct {
	Shape     save.Shape
	Colliders uint32
}

// Table возвращает таблицу для всех известных форм
func Table() []Entry {
	shapes := save.Shapes()
	out := make([]Entry, 0, len(shapes))
	for _, s := range shapes {
		n, _ := Weight(s)
		out = append(out, Entry{Shape: s, Colliders: n})
	}
	return out
}
