// Package command переводит команды игроков /chunks <sub> в вызовы инспектора.
//
// Все ошибки обрабатываются здесь и превращаются в сообщение игроку;
// ни одна из них не останавливает процесс.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/annel0/chunk-inspector/internal/eventbus"
	"github.com/annel0/chunk-inspector/internal/inspector"
	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/players"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// eventSource - имя источника событий в шине
const eventSource = "chunk-inspector"

// Replier - API хоста для личных сообщений игроку
type Replier interface {
	Whisper(player, msg string)
}

// Deps - внешние зависимости диспетчера
type Deps struct {
	Saves   save.Source
	Players players.Locator
	Spawner marker.Spawner
	Replier Replier
}

// Dispatcher обрабатывает команды по одной, до конца, в порядке поступления
type Dispatcher struct {
	mu         sync.Mutex
	engine     *inspector.Engine
	deps       Deps
	authorized map[string]struct{}
	tracer     trace.Tracer
	log        *logging.Logger
}

// NewDispatcher создаёт диспетчер. Имена из authorized сравниваются без учёта регистра.
func NewDispatcher(engine *inspector.Engine, deps Deps, authorized []string) *Dispatcher {
	d := &Dispatcher{
		engine:     engine,
		deps:       deps,
		authorized: make(map[string]struct{}, len(authorized)),
		tracer:     otel.Tracer("chunk-inspector/command"),
		log:        logging.GetCommandLogger(),
	}
	for _, name := range authorized {
		d.authorized[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return d
}

// Authorized сообщает, может ли игрок выполнять команды
func (d *Dispatcher) Authorized(player string) bool {
	_, ok := d.authorized[strings.ToLower(strings.TrimSpace(player))]
	return ok
}

// Handle выполняет /chunks <args...> от имени игрока и отвечает ему в чат
func (d *Dispatcher) Handle(ctx context.Context, player string, args []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.Authorized(player) {
		d.log.Warn("⛔ %s: нет прав на /chunks", player)
		d.reply(player, msgNotAuthorized)
		return
	}
	if len(args) == 0 {
		d.reply(player, msgUsage)
		return
	}

	sub := strings.ToLower(args[0])
	ctx, span := d.tracer.Start(ctx, "chunks."+sub, trace.WithAttributes(
		attribute.String("chunks.player", player),
		attribute.String("chunks.subcommand", sub),
	))
	defer span.End()

	start := time.Now()
	err := d.run(ctx, player, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Warn("⚠️ /chunks %s от %s: %v", sub, player, err)
		eventbus.Emit(ctx, eventSource, eventbus.EventCommandFailed, player, map[string]string{
			"subcommand": sub,
			"error":      err.Error(),
		})
		d.reply(player, userMessage(err))
		return
	}
	d.log.Debug("✅ /chunks %s от %s за %s", sub, player, time.Since(start))
}

// errUnknown - неизвестная подкоманда; сообщение формируется отдельно
type errUnknown struct{ sub string }

func (e errUnknown) Error() string { return "unknown subcommand " + e.sub }

var (
	errSpawn     = errors.New("spawn markers")
	errLoadSave  = errors.New("load save")
	errPlayerPos = errors.New("player position")
)

// userMessage переводит ошибку в текст для игрока
func userMessage(err error) string {
	var unk errUnknown
	switch {
	case errors.As(err, &unk):
		return unknownSubcommand(unk.sub)
	case errors.Is(err, inspector.ErrNotAnalyzed):
		return msgNotAnalyzed
	case errors.Is(err, players.ErrNoSuchPlayer), errors.Is(err, errPlayerPos):
		return msgNoPlayer
	case errors.Is(err, save.ErrSaveNotFound):
		return msgNoSave
	case errors.Is(err, errLoadSave):
		return msgLoadFailed
	case errors.Is(err, errSpawn):
		return msgSpawnFailed
	default:
		return msgInternal
	}
}

func (d *Dispatcher) run(ctx context.Context, player, sub string) error {
	switch sub {
	case "in":
		return d.in(ctx, player)
	case "analyze":
		return d.analyze(ctx, player)
	case "count":
		return d.count(ctx, player)
	case "mark":
		return d.mark(ctx, player)
	case "markall":
		return d.markAll(ctx, player)
	case "clear":
		return d.clear(ctx, player)
	default:
		return errUnknown{sub: sub}
	}
}

func (d *Dispatcher) reply(player, msg string) {
	if d.deps.Replier != nil {
		d.deps.Replier.Whisper(player, msg)
	}
}

func (d *Dispatcher) position(ctx context.Context, player string) (vec.Vec3Float, error) {
	pos, err := d.deps.Players.Position(ctx, player)
	if err != nil {
		if errors.Is(err, players.ErrNoSuchPlayer) {
			return pos, err
		}
		return pos, fmt.Errorf("%w: %v", errPlayerPos, err)
	}
	return pos, nil
}

// requireAnalyzed проверяет кеш до обращения к хосту за позицией
func (d *Dispatcher) requireAnalyzed() error {
	if d.engine.State() != inspector.Analyzed {
		return inspector.ErrNotAnalyzed
	}
	return nil
}

func (d *Dispatcher) in(ctx context.Context, player string) error {
	pos, err := d.position(ctx, player)
	if err != nil {
		return err
	}
	c := d.engine.ChunkAt(pos)
	logging.LogChunkQuery(player, c.X, c.Y)
	d.reply(player, inChunk(c))
	return nil
}

func (d *Dispatcher) analyze(ctx context.Context, player string) error {
	bricks, err := d.deps.Saves.Bricks(ctx)
	if err != nil {
		if errors.Is(err, save.ErrSaveNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", errLoadSave, err)
	}

	start := time.Now()
	res := d.engine.Analyze(bricks)

	over := res.Over(marker.ColliderLimit)
	payload := eventbus.AnalyzedPayload{
		Bricks:     res.TotalBricks,
		Chunks:     len(res.Chunks),
		Colliders:  res.TotalColliders,
		DurationMs: time.Since(start).Milliseconds(),
	}
	for _, c := range over {
		payload.Overloaded = append(payload.Overloaded, c.String())
	}
	eventbus.Emit(ctx, eventSource, eventbus.EventChunksAnalyzed, player, payload)

	if res.Empty() {
		d.reply(player, msgEmptyWorld)
		return nil
	}
	d.reply(player, msgAnalyzed)
	d.reply(player, analyzedSummary(res))
	return nil
}

func (d *Dispatcher) count(ctx context.Context, player string) error {
	if err := d.requireAnalyzed(); err != nil {
		return err
	}
	pos, err := d.position(ctx, player)
	if err != nil {
		return err
	}
	c, stats, err := d.engine.Count(pos)
	if err != nil {
		return err
	}
	logging.LogChunkQuery(player, c.X, c.Y)

	if stats.Bricks == 0 {
		d.reply(player, msgEmptyChunk)
		return nil
	}
	d.reply(player, chunkCount(c, stats))
	return nil
}

func (d *Dispatcher) mark(ctx context.Context, player string) error {
	if err := d.requireAnalyzed(); err != nil {
		return err
	}
	pos, err := d.position(ctx, player)
	if err != nil {
		return err
	}
	plan, err := d.engine.Mark(pos)
	if err != nil {
		return err
	}
	if err := d.spawn(ctx, plan); err != nil {
		return err
	}

	eventbus.Emit(ctx, eventSource, eventbus.EventChunksMarked, player, eventbus.MarkedPayload{
		Chunks:  []string{plan.Chunk.String()},
		Markers: len(plan.Markers),
	})
	d.reply(player, msgMarked)
	return nil
}

func (d *Dispatcher) markAll(ctx context.Context, player string) error {
	plans, err := d.engine.MarkAll()
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		d.reply(player, msgNothingToMark)
		return nil
	}

	payload := eventbus.MarkedPayload{Chunks: make([]string, 0, len(plans))}
	for _, plan := range plans {
		if err := d.spawn(ctx, plan); err != nil {
			return err
		}
		payload.Chunks = append(payload.Chunks, plan.Chunk.String())
		payload.Markers += len(plan.Markers)
	}

	eventbus.Emit(ctx, eventSource, eventbus.EventChunksMarked, player, payload)
	d.reply(player, msgMarkedAll)
	return nil
}

// spawn создаёт маркеры плана. Уже созданные маркеры отслеживаются даже при ошибке,
// чтобы clear мог их убрать.
func (d *Dispatcher) spawn(ctx context.Context, plan marker.Plan) error {
	ids := make([]string, 0, len(plan.Markers))
	defer func() { d.engine.Track(plan, ids) }()

	for _, m := range plan.Markers {
		id, err := d.deps.Spawner.Spawn(ctx, m.Position, m.Color)
		if err != nil {
			return fmt.Errorf("%w: chunk %s: %v", errSpawn, plan.Chunk, err)
		}
		ids = append(ids, id)
	}
	return nil
}

func (d *Dispatcher) clear(ctx context.Context, player string) error {
	ids := d.engine.Clear()

	var kept []string
	for _, id := range ids {
		if err := d.deps.Spawner.Despawn(ctx, id); err != nil {
			kept = append(kept, id)
			d.log.Warn("🧹 не удалось убрать маркер %s: %v", id, err)
		}
	}
	// Неубранные маркеры остаются в наборе, повторный clear попробует снова
	d.engine.Retain(kept)
	failed := len(kept)

	eventbus.Emit(ctx, eventSource, eventbus.EventMarkersCleared, player, eventbus.ClearedPayload{
		Markers: len(ids) - failed,
		Failed:  failed,
	})
	if failed > 0 {
		d.reply(player, clearedPartially(failed))
		return nil
	}
	d.reply(player, msgCleared)
	return nil
}
