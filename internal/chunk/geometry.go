// Package chunk отображает мировые позиции на горизонтальную сетку чанков.
//
// Чанк - столбец Size x Size мировых единиц без ограничения по высоте.
// Пакет не хранит состояния; все функции детерминированы.
package chunk

import (
	"math"

	"github.com/annel0/chunk-inspector/internal/vec"
)

// Size - длина ребра чанка в мировых единицах
const Size = 512

// MarkerInset - отступ маркеров внутрь чанка, чтобы угловой маркер не попадал в соседний
const MarkerInset = 1

// ZRange задаёт вертикальные границы столбца
type ZRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MaxCoord - наибольший модуль координаты чанка, для которого Bounds
// не переполняет int
const MaxCoord = math.MaxInt/Size - 1

// DefaultZRange используется для чанков, в которых нет кирпичей
var DefaultZRange = ZRange{Min: 0, Max: Size}

// Extend расширяет диапазон так, чтобы он включал [lo, hi]
func (z ZRange) Extend(lo, hi float64) ZRange {
	return ZRange{Min: math.Min(z.Min, lo), Max: math.Max(z.Max, hi)}
}

// Of возвращает координаты чанка, содержащего позицию.
// Вертикальная компонента игнорируется.
func Of(pos vec.Vec3Float) vec.Vec2 {
	return vec.Vec2{X: floorDiv(pos.X), Y: floorDiv(pos.Y)}
}

// InRange сообщает, лежит ли чанк в пределах ±MaxCoord по обеим осям
func InRange(c vec.Vec2) bool {
	return c.X >= -MaxCoord && c.X <= MaxCoord && c.Y >= -MaxCoord && c.Y <= MaxCoord
}

// floorDiv делит на Size с округлением вниз. NaN отображается в 0,
// бесконечности и большие значения насыщаются до ±MaxCoord.
func floorDiv(v float64) int {
	q := math.Floor(v / Size)
	switch {
	case math.IsNaN(q):
		return 0
	case q >= MaxCoord:
		return MaxCoord
	case q <= -MaxCoord:
		return -MaxCoord
	}
	return int(q)
}

// Bounds возвращает минимальный и максимальный углы чанка по X/Y в мировых единицах
func Bounds(c vec.Vec2) (min, max vec.Vec2) {
	min = vec.Vec2{X: c.X * Size, Y: c.Y * Size}
	max = vec.Vec2{X: min.X + Size, Y: min.Y + Size}
	return min, max
}

// Corners возвращает восемь углов столбца чанка в пределах zr.
// Сначала четыре нижних угла, затем четыре верхних; внутри слоя порядок
// (minX,minY), (maxX,minY), (minX,maxY), (maxX,maxY).
func Corners(c vec.Vec2, zr ZRange) [8]vec.Vec3Float {
	min, max := Bounds(c)
	lx, hx := float64(min.X+MarkerInset), float64(max.X-MarkerInset)
	ly, hy := float64(min.Y+MarkerInset), float64(max.Y-MarkerInset)

	var out [8]vec.Vec3Float
	i := 0
	for _, z := range [2]float64{zr.Min, zr.Max} {
		for _, y := range [2]float64{ly, hy} {
			for _, x := range [2]float64{lx, hx} {
				out[i] = vec.Vec3Float{X: x, Y: y, Z: z}
				i++
			}
		}
	}
	return out
}
