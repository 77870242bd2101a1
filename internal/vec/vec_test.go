package vec

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2OrderAndString(t *testing.T) {
	coords := []Vec2{{X: 2, Y: 1}, {X: -1, Y: 1}, {X: 5, Y: -3}}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	assert.Equal(t, []Vec2{{X: 5, Y: -3}, {X: -1, Y: 1}, {X: 2, Y: 1}}, coords)
	assert.Equal(t, "(-1, 1)", coords[1].String())
}

func TestVec3FloatString(t *testing.T) {
	assert.Equal(t, "(1.5, -2, 0)", Vec3Float{X: 1.5, Y: -2}.String())
}
