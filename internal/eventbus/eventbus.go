package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

// Типы событий инспектора
const (
	EventChunksAnalyzed = "ChunksAnalyzed"
	EventChunksMarked   = "ChunksMarked"
	EventMarkersCleared = "MarkersCleared"
	EventCommandFailed  = "CommandFailed"
)

// Envelope описывает универсальный контейнер события.
type Envelope struct {
	ID        string            `json:"id"`        // UUID события
	Timestamp time.Time         `json:"timestamp"` // Время создания (UTC)
	Source    string            `json:"source"`    // Имя сервиса-источника
	EventType string            `json:"event_type"`
	Player    string            `json:"player,omitempty"` // Кто выполнил команду
	Priority  int               `json:"priority"`         // 0=Low … 9=Critical (для backpressure)
	Payload   []byte            `json:"payload"`          // JSON полезной нагрузки
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEnvelope сериализует payload и заполняет служебные поля
func NewEnvelope(source, eventType, player string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Player:    player,
		Payload:   data,
	}, nil
}

// Decode распаковывает полезную нагрузку
func (e *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// AnalyzedPayload - полезная нагрузка ChunksAnalyzed
type AnalyzedPayload struct {
	Bricks     int      `json:"bricks"`
	Chunks     int      `json:"chunks"`
	Colliders  uint64   `json:"colliders"`
	Overloaded []string `json:"overloaded,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// MarkedPayload - полезная нагрузка ChunksMarked
type MarkedPayload struct {
	Chunks  []string `json:"chunks"`
	Markers int      `json:"markers"`
}

// ClearedPayload - полезная нагрузка MarkersCleared
type ClearedPayload struct {
	Markers int `json:"markers"`
	Failed  int `json:"failed"`
}

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus closed")

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто — все типы.
	Sources []string // Если пусто — все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus определяет абстракцию шины событий (память или JetStream).
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

type memoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
	done        chan struct{}

	sendMu sync.RWMutex // защищает buffer от закрытия во время отправки
	closed bool
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с указанным буфером.
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.sendMu.RLock()
	defer mb.sendMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.buffer <- ev:
		mb.count(func(s *Stats) { s.Published++ })
		return nil
	default:
	}

	// Буфер заполнен — низкий приоритет (<5) отбрасываем
	if ev.Priority < 5 {
		mb.count(func(s *Stats) { s.Dropped++ })
		return nil
	}
	select {
	case mb.buffer <- ev:
		mb.count(func(s *Stats) { s.Published++ })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) count(f func(s *Stats)) {
	mb.mu.Lock()
	f(&mb.stats)
	mb.mu.Unlock()
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close дожидается доставки уже принятых событий
func (mb *memoryBus) Close() error {
	mb.sendMu.Lock()
	if mb.closed {
		mb.sendMu.Unlock()
		return nil
	}
	mb.closed = true
	close(mb.buffer)
	mb.sendMu.Unlock()

	<-mb.done
	return nil
}

// dispatchLoop рассылает события подписчикам в порядке публикации.
func (mb *memoryBus) dispatchLoop() {
	defer close(mb.done)

	for ev := range mb.buffer {
		mb.mu.RLock()
		subs := make([]subscriber, 0, len(mb.subscribers))
		for _, sub := range mb.subscribers {
			if matchFilter(ev, sub.filter) {
				subs = append(subs, sub)
			}
		}
		mb.mu.RUnlock()

		for _, sub := range subs {
			if sub.ctx.Err() != nil {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.count(func(s *Stats) { s.Consumed++ })
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
