package marker

import "github.com/annel0/chunk-inspector/internal/analysis"

// ColliderLimit - предел коллайдеров чанка, после которого физика движка становится нестабильной
const ColliderLimit uint64 = 65000

// ComponentLimit - предел компонентов кирпичей в чанке
const ComponentLimit uint64 = 75

// Severity - классификация чанка для раскраски маркеров
type Severity uint8

const (
	Empty          Severity = iota // нет кирпичей
	Safe                           // в пределах лимитов
	Overloaded                     // коллайдеров не меньше ColliderLimit
	ComponentHeavy                 // компонентов больше ComponentLimit
	Critical                       // превышены оба лимита
)

// String возвращает имя классификации
func (s Severity) String() string {
	switch s {
	case Empty:
		return "empty"
	case Safe:
		return "safe"
	case Overloaded:
		return "overloaded"
	case ComponentHeavy:
		return "component_heavy"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Classify классифицирует чанк по его статистике.
// Пустой чанк всегда Empty, независимо от коллайдеров.
func Classify(s analysis.Stats) Severity {
	if s.Bricks == 0 {
		return Empty
	}

	overColliders := s.Colliders >= ColliderLimit
	overComponents := s.Components > ComponentLimit
	switch {
	case overColliders && overComponents:
		return Critical
	case overColliders:
		return Overloaded
	case overComponents:
		return ComponentHeavy
	default:
		return Safe
	}
}

// Color - цвет маркера
type Color struct {
	R, G, B, A uint8
}

var (
	White   = Color{R: 255, G: 255, B: 255, A: 255}
	Green   = Color{G: 255, A: 255}
	Red     = Color{R: 255, A: 255}
	Blue    = Color{B: 255, A: 255}
	Magenta = Color{R: 255, B: 255, A: 255}
)

// Color возвращает цвет маркеров для классификации
func (s Severity) Color() Color {
	switch s {
	case Safe:
		return Green
	case Overloaded:
		return Red
	case ComponentHeavy:
		return Blue
	case Critical:
		return Magenta
	default:
		return White
	}
}
