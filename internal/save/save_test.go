package save

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBricks() []Brick {
	wedge := NewBrick("PB_DefaultWedge", vec.Vec3Float{X: 600, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5})
	wedge.Components = 2
	ghost := NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 20, Y: 20, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5})
	ghost.Collision = false
	return []Brick{
		NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 10, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}),
		wedge,
		ghost,
	}
}

func TestParseShape(t *testing.T) {
	cases := map[string]Shape{
		"PB_DefaultBrick":                 ShapeCuboid,
		"PB_DefaultMicroBrick":            ShapeCuboid,
		"PB_DefaultTile":                  ShapeTile,
		"PB_DefaultWedge":                 ShapeWedge,
		"PB_DefaultRampCrestEnd":          ShapeRampCrest,
		"PB_DefaultMicroWedgeOuterCorner": ShapeMicroWedge,
		"B_2x2_Corner":                    ShapeCorner,
		"B_1x1_Round":                     ShapeRound,
		"B_2x2_Cone":                      ShapeCylinder,
		"B_Sphere":                        ShapeSphere,
		"B_1x4_Arch":                      ShapeArch,
		"B_Something_New":                 ShapeUnknown,
		"":                                ShapeUnknown,
	}
	for asset, want := range cases {
		assert.Equal(t, want, ParseShape(asset), "ассет %q", asset)
	}
}

func TestShapeNamesRoundTrip(t *testing.T) {
	for _, s := range Shapes() {
		assert.Equal(t, s, ShapeFromName(s.String()))
	}
	assert.Equal(t, ShapeUnknown, ShapeFromName("nonsense"))
	assert.Equal(t, "unknown", Shape(200).String())
}

func TestReadBricksDefaults(t *testing.T) {
	input := `{"asset":"PB_DefaultRamp","position":{"x":1,"y":2,"z":3},"size":{"x":5,"y":5,"z":2}}

{"asset":"Custom","shape":"wedge","position":{"x":0,"y":0,"z":0},"size":{"x":1,"y":1,"z":1},"collision":false}
`
	bricks, err := ReadBricks(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bricks, 2)

	assert.Equal(t, ShapeRamp, bricks[0].Shape)
	assert.True(t, bricks[0].Collision, "collision по умолчанию true")
	assert.Equal(t, 1.0, bricks[0].Bottom())
	assert.Equal(t, 5.0, bricks[0].Top())

	assert.Equal(t, ShapeWedge, bricks[1].Shape, "явная форма важнее ассета")
	assert.False(t, bricks[1].Collision)
}

func TestReadBricksReportsLine(t *testing.T) {
	_, err := ReadBricks(context.Background(), strings.NewReader("{\"asset\":\"x\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "строка 2")
}

func TestFileSourceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sampleBricks()

	for _, name := range []string{"world.jsonl", "world.jsonl.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, want))

		got, err := NewFileSource(path).Bricks(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.jsonl")).Bricks(context.Background())
	assert.Error(t, err)
}

func TestStorePutGetListDelete(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put("spawn", sampleBricks()))
	require.NoError(t, store.Put("arena", sampleBricks()[:1]))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"arena", "spawn"}, names)

	got, err := NewStoreSource(store, "spawn").Bricks(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleBricks(), got)

	require.NoError(t, store.Delete("arena"))
	_, err = store.Get(ctx, "arena")
	assert.ErrorIs(t, err, ErrSaveNotFound)
	assert.ErrorIs(t, store.Delete("arena"), ErrSaveNotFound)

	assert.Error(t, store.Put("", nil))
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := NewGenerator(42, 16).Generate()
	b := NewGenerator(42, 16).Generate()

	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "один сид - один мир")
	assert.GreaterOrEqual(t, len(a), 16*16, "каждая клетка содержит хотя бы один кирпич")
	for _, br := range a {
		assert.NotEqual(t, ShapeUnknown, br.Shape)
	}
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource(sampleBricks())
	got, err := src.Bricks(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)

	src.Replace(nil)
	got, err = src.Bricks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Bricks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
