package chunk

import (
	"math"
	"testing"

	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestOfFloorDivides(t *testing.T) {
	cases := []struct {
		pos  vec.Vec3Float
		want vec.Vec2
	}{
		{vec.Vec3Float{X: 0, Y: 0}, vec.Vec2{X: 0, Y: 0}},
		{vec.Vec3Float{X: 511.9, Y: 1, Z: 9000}, vec.Vec2{X: 0, Y: 0}},
		{vec.Vec3Float{X: 512, Y: 0}, vec.Vec2{X: 1, Y: 0}},
		{vec.Vec3Float{X: -0.5, Y: -512}, vec.Vec2{X: -1, Y: -1}},
		{vec.Vec3Float{X: -512.1, Y: 1024}, vec.Vec2{X: -2, Y: 2}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Of(tc.pos), "позиция %v", tc.pos)
	}
}

func TestOfIsDeterministic(t *testing.T) {
	p := vec.Vec3Float{X: 1234.5, Y: -77.25, Z: 3}
	assert.Equal(t, Of(p), Of(p))

	// Две точки одного чанка и одного квадранта
	assert.Equal(t, Of(vec.Vec3Float{X: 513, Y: 2}), Of(vec.Vec3Float{X: 1020, Y: 500}))
}

func TestOfIsTotal(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, vec.Vec2{}, Of(vec.Vec3Float{X: math.NaN(), Y: math.NaN()}))
		got := Of(vec.Vec3Float{X: math.Inf(1), Y: math.Inf(-1)})
		assert.Equal(t, MaxCoord, got.X)
		assert.Equal(t, -MaxCoord, got.Y)
	})
}

func TestOfSaturatesFarPositions(t *testing.T) {
	for _, x := range []float64{1e19, 1e300, math.MaxFloat64} {
		c := Of(vec.Vec3Float{X: x, Y: -x})
		assert.Equal(t, vec.Vec2{X: MaxCoord, Y: -MaxCoord}, c, "x=%g", x)
		assert.True(t, InRange(c))

		lo, hi := Bounds(c)
		assert.Less(t, lo.X, hi.X, "Bounds не должен переполняться")
		assert.Less(t, lo.Y, hi.Y)
		assert.Positive(t, lo.X)
		assert.Negative(t, hi.Y)
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(vec.Vec2{X: -MaxCoord, Y: MaxCoord}))
	assert.False(t, InRange(vec.Vec2{X: MaxCoord + 1}))
	assert.False(t, InRange(vec.Vec2{Y: math.MinInt}))
}

func TestCorners(t *testing.T) {
	corners := Corners(vec.Vec2{X: 1, Y: -1}, ZRange{Min: 10, Max: 90})

	assert.Equal(t, vec.Vec3Float{X: 513, Y: -511, Z: 10}, corners[0])
	assert.Equal(t, vec.Vec3Float{X: 1023, Y: -511, Z: 10}, corners[1])
	assert.Equal(t, vec.Vec3Float{X: 513, Y: -1, Z: 10}, corners[2])
	assert.Equal(t, vec.Vec3Float{X: 1023, Y: -1, Z: 90}, corners[7])

	// Все углы должны лежать внутри своего чанка
	for _, c := range corners {
		assert.Equal(t, vec.Vec2{X: 1, Y: -1}, Of(c))
	}
}

func TestZRangeExtend(t *testing.T) {
	zr := ZRange{Min: 5, Max: 10}.Extend(-2, 8)
	assert.Equal(t, ZRange{Min: -2, Max: 10}, zr)
}
