package vec

import "fmt"

// Vec3Float представляет позицию или полуразмер в мировых единицах
type Vec3Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// String возвращает координаты в виде "(x, y, z)"
func (v Vec3Float) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
