// Package save описывает кирпичи сохранения мира и источники, из которых их получают.
package save

import (
	"strings"

	"github.com/annel0/chunk-inspector/internal/vec"
)

// Shape - закрытое перечисление форм кирпичей, влияющих на число коллайдеров
type Shape uint8

const (
	ShapeUnknown Shape = iota
	ShapeCuboid
	ShapeTile
	ShapeWedge
	ShapeSideWedge
	ShapeMicroWedge
	ShapeRamp
	ShapeRampCorner
	ShapeRampCrest
	ShapeCorner
	ShapeRound
	ShapeCylinder
	ShapeSphere
	ShapeArch
)

var shapeNames = [...]string{
	ShapeUnknown:    "unknown",
	ShapeCuboid:     "cuboid",
	ShapeTile:       "tile",
	ShapeWedge:      "wedge",
	ShapeSideWedge:  "side_wedge",
	ShapeMicroWedge: "micro_wedge",
	ShapeRamp:       "ramp",
	ShapeRampCorner: "ramp_corner",
	ShapeRampCrest:  "ramp_crest",
	ShapeCorner:     "corner",
	ShapeRound:      "round",
	ShapeCylinder:   "cylinder",
	ShapeSphere:     "sphere",
	ShapeArch:       "arch",
}

// String возвращает имя формы
func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return shapeNames[ShapeUnknown]
}

// Shapes возвращает все известные формы (без ShapeUnknown)
func Shapes() []Shape {
	out := make([]Shape, 0, len(shapeNames)-1)
	for s := ShapeCuboid; int(s) < len(shapeNames); s++ {
		out = append(out, s)
	}
	return out
}

// ShapeFromName разбирает имя формы, записанное String()
func ShapeFromName(name string) Shape {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i)
		}
	}
	return ShapeUnknown
}

// Ассеты процедурных кирпичей игры
var assetShapes = map[string]Shape{
	"PB_DefaultBrick":              ShapeCuboid,
	"PB_DefaultMicroBrick":         ShapeCuboid,
	"PB_DefaultStudded":            ShapeCuboid,
	"PB_DefaultTile":               ShapeTile,
	"PB_DefaultSmoothTile":         ShapeTile,
	"PB_DefaultWedge":              ShapeWedge,
	"PB_DefaultSideWedge":          ShapeSideWedge,
	"PB_DefaultSideWedgeTile":      ShapeSideWedge,
	"PB_DefaultMicroWedge":         ShapeMicroWedge,
	"PB_DefaultRamp":               ShapeRamp,
	"PB_DefaultRampInverted":       ShapeRamp,
	"PB_DefaultRampCorner":         ShapeRampCorner,
	"PB_DefaultRampInnerCorner":    ShapeRampCorner,
	"PB_DefaultRampCornerInverted": ShapeRampCorner,
	"PB_DefaultRampCrest":          ShapeRampCrest,
	"PB_DefaultRampCrestEnd":       ShapeRampCrest,
	"PB_DefaultRampCrestCorner":    ShapeRampCrest,
	"PB_DefaultPole":               ShapeCylinder,
}

// ParseShape определяет форму по имени ассета кирпича.
// Сначала проверяется таблица процедурных ассетов, затем семейства
// статических мешей по имени ("B_2x2_Round", "B_1x1_Cone", ...).
func ParseShape(asset string) Shape {
	if s, ok := assetShapes[asset]; ok {
		return s
	}

	switch {
	case strings.HasPrefix(asset, "PB_DefaultMicroWedge"):
		return ShapeMicroWedge
	case strings.Contains(asset, "Corner"):
		return ShapeCorner
	case strings.Contains(asset, "Round"):
		return ShapeRound
	case strings.Contains(asset, "Cone"), strings.Contains(asset, "Octo"), strings.Contains(asset, "Cylinder"):
		return ShapeCylinder
	case strings.Contains(asset, "Sphere"), strings.Contains(asset, "Ball"):
		return ShapeSphere
	case strings.Contains(asset, "Arch"):
		return ShapeArch
	}
	return ShapeUnknown
}

// Orientation - направление и поворот кирпича.
// Не влияет на число коллайдеров, но сохраняется при импорте/экспорте.
type Orientation struct {
	Direction uint8 `json:"direction"`
	Rotation  uint8 `json:"rotation"`
}

// Brick - размещённый кирпич сохранения
type Brick struct {
	Asset       string        `json:"asset"`
	Shape       Shape         `json:"-"`
	Position    vec.Vec3Float `json:"position"`
	Size        vec.Vec3Float `json:"size"` // полуразмер
	Orientation Orientation   `json:"orientation"`
	Collision   bool          `json:"collision"`
	Components  int           `json:"components,omitempty"`
}

// NewBrick создаёт сталкивающийся кирпич, форма определяется по ассету
func NewBrick(asset string, pos, size vec.Vec3Float) Brick {
	return Brick{
		Asset:     asset,
		Shape:     ParseShape(asset),
		Position:  pos,
		Size:      size,
		Collision: true,
	}
}

// Bottom возвращает нижнюю границу кирпича по Z
func (b Brick) Bottom() float64 {
	return b.Position.Z - b.Size.Z
}

// Top возвращает верхнюю границу кирпича по Z
func (b Brick) Top() float64 {
	return b.Position.Z + b.Size.Z
}
