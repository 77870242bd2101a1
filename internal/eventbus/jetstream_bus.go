package eventbus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/segmentio/encoding/json"
)

// subjectPrefix - события инспектора живут в chunks.<EventType>
const subjectPrefix = "chunks."

func subject(eventType string) string {
	return subjectPrefix + eventType
}

// JetStreamBus - EventBus поверх NATS JetStream. Идентификатор конверта
// уходит в Nats-Msg-Id, поэтому повторная публикация того же события
// отбрасывается сервером в окне дедупликации стрима.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string

	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его нет.
// url: nats://127.0.0.1:4222, stream: "CHUNKS".
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = "CHUNKS"
	}

	nc, err := nats.Connect(url, nats.Name("chunk-inspector"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js, stream, retention); err != nil {
		nc.Close()
		return nil, err
	}
	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

func ensureStream(js nats.JetStreamContext, name string, retention time.Duration) error {
	if _, err := js.StreamInfo(name); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:       name,
		Subjects:   []string{subject("*")},
		Retention:  nats.LimitsPolicy,
		MaxAge:     retention,
		Storage:    nats.FileStorage,
		Duplicates: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", name, err)
	}
	return nil
}

// Publish публикует конверт в chunks.<type>
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err == nil {
		_, err = jb.js.Publish(subject(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID))
	}
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт эфемерного потребителя, получающего только новые события
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := subject("*")
	if len(f.Types) == 1 {
		subj = subject(f.Types[0])
	}

	sub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		defer msg.Ack()

		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil || !matchFilter(&ev, f) {
			return
		}
		h(ctx, &ev)
		atomic.AddUint64(&jb.consumed, 1)
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, err
	}
	return natsSubscription{sub}, nil
}

type natsSubscription struct {
	*nats.Subscription
}

func (s natsSubscription) Unsubscribe() {
	_ = s.Subscription.Unsubscribe()
}

// Metrics возвращает счётчики шины
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
	}
}

// Close дожидается обработки полученных сообщений и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
