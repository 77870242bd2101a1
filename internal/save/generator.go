package save

import (
	"math/rand"

	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/aquilax/go-perlin"
)

// Generator строит синтетические миры для нагрузочной проверки анализа.
// Рельеф задаётся шумом Перлина: каждая клетка - столбик кирпичей,
// верхний кирпич иногда заменяется клином или рампой.
type Generator struct {
	Seed       int64   // Сид шума и выбора форм
	Width      int     // Сторона квадратной области в клетках
	Cell       float64 // Шаг сетки в мировых единицах
	MaxHeight  int     // Максимальная высота столбика в кирпичах
	NoiseScale float64 // Масштаб шума (сглаженность рельефа)
	SlopeRatio float64 // Доля столбиков со скошенной вершиной (0..1)
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64, width int) *Generator {
	return &Generator{
		Seed:       seed,
		Width:      width,
		Cell:       10,
		MaxHeight:  12,
		NoiseScale: 0.03,
		SlopeRatio: 0.2,
	}
}

var slopeAssets = []string{"PB_DefaultWedge", "PB_DefaultRamp", "PB_DefaultRampCorner", "B_2x2_Round"}

// Generate возвращает список кирпичей. Один и тот же сид даёт один и тот же мир.
func (g *Generator) Generate() []Brick {
	alpha, beta, n := 2.0, 2.0, int32(3)
	noise := perlin.NewPerlin(alpha, beta, n, g.Seed)
	rng := rand.New(rand.NewSource(g.Seed))

	half := g.Cell / 2
	size := vec.Vec3Float{X: half, Y: half, Z: half}

	bricks := make([]Brick, 0, g.Width*g.Width*g.MaxHeight/2)
	for y := 0; y < g.Width; y++ {
		for x := 0; x < g.Width; x++ {
			// Шум в диапазоне [-1, 1] переводим в [0, 1]
			h := (noise.Noise2D(float64(x)*g.NoiseScale, float64(y)*g.NoiseScale) + 1) / 2
			height := int(h * float64(g.MaxHeight))
			if height < 1 {
				height = 1
			}

			for z := 0; z < height; z++ {
				asset := "PB_DefaultBrick"
				if z == height-1 && rng.Float64() < g.SlopeRatio {
					asset = slopeAssets[rng.Intn(len(slopeAssets))]
				}
				pos := vec.Vec3Float{
					X: float64(x)*g.Cell + half,
					Y: float64(y)*g.Cell + half,
					Z: float64(z)*g.Cell + half,
				}
				b := NewBrick(asset, pos, size)
				b.Orientation = Orientation{Direction: 4, Rotation: uint8(rng.Intn(4))}
				bricks = append(bricks, b)
			}
		}
	}
	return bricks
}
