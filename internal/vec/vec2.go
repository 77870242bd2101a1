package vec

import "fmt"

// Vec2 представляет 2D целочисленные координаты (в том числе координаты чанка)
type Vec2 struct {
	X, Y int
}

// String возвращает координаты в виде "(x, y)"
func (v Vec2) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

// Less задаёт порядок строка-за-строкой (сначала Y, затем X) для детерминированной сортировки
func (v Vec2) Less(other Vec2) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}
