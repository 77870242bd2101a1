package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/annel0/chunk-inspector/internal/inspector"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/players"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs map[string][]string
}

func newRecorder() *recorder {
	return &recorder{msgs: make(map[string][]string)}
}

func (r *recorder) Whisper(player, msg string) {
	r.mu.Lock()
	r.msgs[player] = append(r.msgs[player], msg)
	r.mu.Unlock()
}

func (r *recorder) last(player string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.msgs[player]
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1]
}

// failingSpawner отказывает после limit успешных Spawn
type failingSpawner struct {
	*marker.MemorySpawner
	limit int
	calls int
}

func (f *failingSpawner) Spawn(ctx context.Context, pos vec.Vec3Float, color marker.Color) (string, error) {
	f.calls++
	if f.calls > f.limit {
		return "", errors.New("host refused")
	}
	return f.MemorySpawner.Spawn(ctx, pos, color)
}

// flakyDespawner не может убрать первые fail маркеров
type flakyDespawner struct {
	*marker.MemorySpawner
	fail int
}

func (f *flakyDespawner) Despawn(ctx context.Context, id string) error {
	if f.fail > 0 {
		f.fail--
		return errors.New("host busy")
	}
	return f.MemorySpawner.Despawn(ctx, id)
}

type fixture struct {
	d       *Dispatcher
	engine  *inspector.Engine
	saves   *save.MemorySource
	locator *players.MemoryLocator
	spawner *marker.MemorySpawner
	out     *recorder
}

func scenarioBricks() []save.Brick {
	return []save.Brick{
		save.NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 10, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}),
		save.NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 100, Y: 200, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}),
		save.NewBrick("PB_DefaultWedge", vec.Vec3Float{X: 600, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}),
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine:  inspector.New(nil),
		saves:   save.NewMemorySource(scenarioBricks()),
		locator: players.NewMemoryLocator(),
		spawner: marker.NewMemorySpawner(),
		out:     newRecorder(),
	}
	f.d = NewDispatcher(f.engine, Deps{
		Saves:   f.saves,
		Players: f.locator,
		Spawner: f.spawner,
		Replier: f.out,
	}, []string{"Admin"})
	require.NoError(t, f.locator.Update(context.Background(), "admin", vec.Vec3Float{X: 20, Y: 30, Z: 4}))
	return f
}

func (f *fixture) run(player string, args ...string) string {
	f.d.Handle(context.Background(), player, args)
	return f.out.last(player)
}

func TestUnauthorizedPlayerIsRejected(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, msgNotAuthorized, f.run("griefer", "analyze"))
	assert.Equal(t, inspector.Uninitialized, f.engine.State())

	// регистр имени не важен
	assert.NotEqual(t, msgNotAuthorized, f.run("ADMIN", "in"))
}

func TestQueriesBeforeAnalyzeReportNotAnalyzed(t *testing.T) {
	f := newFixture(t)
	for _, sub := range []string{"count", "mark", "markall"} {
		assert.Equal(t, msgNotAnalyzed, f.run("admin", sub), sub)
	}
	assert.Empty(t, f.spawner.Live())
}

func TestAnalyzeThenCount(t *testing.T) {
	f := newFixture(t)

	f.run("admin", "analyze")
	msgs := f.out.msgs["admin"]
	require.Len(t, msgs, 2)
	assert.Equal(t, msgAnalyzed, msgs[0])
	assert.Contains(t, msgs[1], "3 bricks")

	got := f.run("admin", "count")
	assert.Contains(t, got, "<b>2 bricks</>")
	assert.Contains(t, got, `<color="0a0">2 colliders</>`)
	assert.Contains(t, got, "(0, 0)")

	require.NoError(t, f.locator.Update(context.Background(), "admin", vec.Vec3Float{X: 700, Y: 100}))
	got = f.run("admin", "count")
	assert.Contains(t, got, "<b>1 bricks</>")
	assert.Contains(t, got, "2 colliders")
	assert.Contains(t, got, "(1, 0)")

	require.NoError(t, f.locator.Update(context.Background(), "admin", vec.Vec3Float{X: -5, Y: -5}))
	assert.Equal(t, msgEmptyChunk, f.run("admin", "count"))
}

func TestAnalyzeEmptyWorld(t *testing.T) {
	f := newFixture(t)
	f.saves.Replace(nil)

	assert.Equal(t, msgEmptyWorld, f.run("admin", "analyze"))
	assert.Equal(t, inspector.Analyzed, f.engine.State())
	assert.Equal(t, msgEmptyChunk, f.run("admin", "count"))
}

func TestAnalyzeMissingSave(t *testing.T) {
	f := newFixture(t)
	store, err := save.NewStore("")
	require.NoError(t, err)
	defer store.Close()

	f.d.deps.Saves = save.NewStoreSource(store, "nope")
	assert.Equal(t, msgNoSave, f.run("admin", "analyze"))
	assert.Equal(t, inspector.Uninitialized, f.engine.State())
}

func TestInReportsChunk(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "You are in chunk (0, 0).", f.run("admin", "in"))

	require.NoError(t, f.locator.Update(context.Background(), "admin", vec.Vec3Float{X: -1, Y: 1024}))
	assert.Equal(t, "You are in chunk (-1, 2).", f.run("admin", "in"))

	f.locator.Remove("admin")
	assert.Equal(t, msgNoPlayer, f.run("admin", "in"))
}

func TestMarkMarkAllAndClear(t *testing.T) {
	f := newFixture(t)
	f.run("admin", "analyze")

	assert.Equal(t, msgMarked, f.run("admin", "mark"))
	assert.Len(t, f.spawner.Live(), 8)
	assert.True(t, f.engine.MarkersPlaced())

	assert.Equal(t, msgMarkedAll, f.run("admin", "markall"))
	assert.Len(t, f.spawner.Live(), 8+2*8)

	assert.Equal(t, msgCleared, f.run("admin", "clear"))
	assert.Empty(t, f.spawner.Live())
	assert.False(t, f.engine.MarkersPlaced())

	// повторный clear - не ошибка
	assert.Equal(t, msgCleared, f.run("admin", "clear"))
}

func TestMarkEmptyChunkStillPlacesMarkers(t *testing.T) {
	f := newFixture(t)
	f.run("admin", "analyze")
	require.NoError(t, f.locator.Update(context.Background(), "admin", vec.Vec3Float{X: 5000, Y: 5000}))

	assert.Equal(t, msgMarked, f.run("admin", "mark"))
	ids := f.spawner.Live()
	require.Len(t, ids, 8)
	m, ok := f.spawner.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, marker.White, m.Color)
}

func TestSpawnFailureKeepsPlacedMarkersTracked(t *testing.T) {
	f := newFixture(t)
	fs := &failingSpawner{MemorySpawner: f.spawner, limit: 3}
	f.d.deps.Spawner = fs
	f.run("admin", "analyze")

	assert.Equal(t, msgSpawnFailed, f.run("admin", "mark"))
	assert.Len(t, f.spawner.Live(), 3)

	assert.Equal(t, msgCleared, f.run("admin", "clear"))
	assert.Empty(t, f.spawner.Live())
}

func TestClearRetriesMarkersThatFailedToDespawn(t *testing.T) {
	f := newFixture(t)
	f.d.deps.Spawner = &flakyDespawner{MemorySpawner: f.spawner, fail: 2}
	f.run("admin", "analyze")
	require.Equal(t, msgMarked, f.run("admin", "mark"))

	assert.Equal(t, clearedPartially(2), f.run("admin", "clear"))
	assert.Len(t, f.spawner.Live(), 2)
	assert.True(t, f.engine.MarkersPlaced(), "неубранные маркеры остаются в наборе")

	assert.Equal(t, msgCleared, f.run("admin", "clear"))
	assert.Empty(t, f.spawner.Live())
	assert.False(t, f.engine.MarkersPlaced())
}

func TestConsoleTeleportRequiresAuthorization(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	f.d.deps.Replier = NewWriterReplier(&buf)
	require.NoError(t, f.locator.Update(context.Background(), "guest", vec.Vec3Float{X: 1, Y: 1}))

	input := strings.NewReader("guest tp 9000 9000\nguest tp 0 0 admin\n")
	require.NoError(t, RunConsole(context.Background(), input, f.d, f.locator))

	assert.Contains(t, buf.String(), "[guest] You are not authorized to use this command!")
	assert.NotContains(t, buf.String(), "Teleported")

	pos, err := f.locator.Position(context.Background(), "guest")
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3Float{X: 1, Y: 1}, pos)
}

func TestUnknownSubcommandAndUsage(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Unknown subcommand explode.", f.run("admin", "explode"))
	assert.Equal(t, msgUsage, f.run("admin"))
}

func TestConsoleDrivesDispatcher(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	f.d.deps.Replier = NewWriterReplier(&buf)

	input := strings.NewReader("# comment\n\nadmin /chunks analyze\nadmin count\nadmin tp 700 10 0\nadmin count\nadmin tp x 1\n")
	require.NoError(t, RunConsole(context.Background(), input, f.d, f.locator))

	out := buf.String()
	assert.Contains(t, out, "[admin] The save has been analyzed.")
	assert.Contains(t, out, "There are 2 bricks, 2 colliders, and 0 components in the chunk (0, 0).")
	assert.Contains(t, out, "[admin] Teleported to (700, 10, 0).")
	assert.Contains(t, out, "There are 1 bricks, 2 colliders, and 0 components in the chunk (1, 0).")
	assert.Contains(t, out, "координата")
}

func TestParseLine(t *testing.T) {
	player, args, ok := ParseLine("  Bob   chunks  mark ")
	require.True(t, ok)
	assert.Equal(t, "Bob", player)
	assert.Equal(t, []string{"mark"}, args)

	_, _, ok = ParseLine("   ")
	assert.False(t, ok)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Analyze it first with /chunks analyze.", StripMarkup(`Analyze it first with <code>/chunks analyze</>.`))
}
