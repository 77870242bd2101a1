package players

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/encoding/json"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	KeyPrefix    string        `yaml:"key_prefix"`
	TTL          time.Duration `yaml:"ttl"`
	BatchSize    int           `yaml:"batch_size"`
	BatchFlushMs int           `yaml:"batch_flush_ms"`
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		KeyPrefix:    "chunks:pos:",
		TTL:          5 * time.Minute,
		BatchSize:    100,
		BatchFlushMs: 100,
	}
}

// playerPosition - запись позиции в Redis
type playerPosition struct {
	Player    string        `json:"player"`
	Position  vec.Vec3Float `json:"position"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RedisLocator хранит позиции игроков в Redis. Хост пишет позиции часто,
// поэтому записи копятся в батче и сбрасываются по таймеру или по размеру.
type RedisLocator struct {
	client      *redis.Client
	keyPrefix   string
	ttl         time.Duration
	batchSize   int
	batchMu     sync.Mutex
	batchBuffer map[string]*playerPosition
	batchTicker *time.Ticker
	shutdown    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisLocator подключается к Redis и запускает фоновый сброс батчей
func NewRedisLocator(ctx context.Context, cfg RedisConfig) (*RedisLocator, error) {
	def := DefaultRedisConfig()
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = def.KeyPrefix
	}
	if cfg.TTL == 0 {
		cfg.TTL = def.TTL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchFlushMs <= 0 {
		cfg.BatchFlushMs = def.BatchFlushMs
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	l := &RedisLocator{
		client:      client,
		keyPrefix:   cfg.KeyPrefix,
		ttl:         cfg.TTL,
		batchSize:   cfg.BatchSize,
		batchBuffer: make(map[string]*playerPosition),
		batchTicker: time.NewTicker(time.Duration(cfg.BatchFlushMs) * time.Millisecond),
		shutdown:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.batchFlusher()

	logging.Info("🔴 Connected to Redis at %s", cfg.Addr)
	return l, nil
}

// Update ставит позицию игрока в батч
func (l *RedisLocator) Update(ctx context.Context, player string, pos vec.Vec3Float) error {
	key := normalize(player)
	if key == "" {
		return fmt.Errorf("пустое имя игрока")
	}

	l.batchMu.Lock()
	l.batchBuffer[key] = &playerPosition{Player: key, Position: pos, UpdatedAt: time.Now()}

	// Если буфер заполнен, сбрасываем немедленно
	if len(l.batchBuffer) >= l.batchSize {
		batch := l.batchBuffer
		l.batchBuffer = make(map[string]*playerPosition)
		l.batchMu.Unlock()
		return l.flushBatch(ctx, batch)
	}
	l.batchMu.Unlock()
	return nil
}

// Position возвращает позицию: сначала из несброшенного батча, затем из Redis
func (l *RedisLocator) Position(ctx context.Context, player string) (vec.Vec3Float, error) {
	key := normalize(player)

	l.batchMu.Lock()
	if p, ok := l.batchBuffer[key]; ok {
		l.batchMu.Unlock()
		return p.Position, nil
	}
	l.batchMu.Unlock()

	data, err := l.client.Get(ctx, l.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return vec.Vec3Float{}, fmt.Errorf("%w: %s", ErrNoSuchPlayer, player)
	}
	if err != nil {
		return vec.Vec3Float{}, fmt.Errorf("failed to get position: %w", err)
	}

	var p playerPosition
	if err := json.Unmarshal(data, &p); err != nil {
		return vec.Vec3Float{}, fmt.Errorf("failed to decode position: %w", err)
	}
	return p.Position, nil
}

// flushBatch записывает батч одной pipeline-операцией
func (l *RedisLocator) flushBatch(ctx context.Context, batch map[string]*playerPosition) error {
	if len(batch) == 0 {
		return nil
	}

	pipe := l.client.Pipeline()
	for key, p := range batch {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode position of %s: %w", key, err)
		}
		pipe.Set(ctx, l.keyPrefix+key, data, l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to flush positions: %w", err)
	}
	return nil
}

// batchFlusher периодически сбрасывает батч
func (l *RedisLocator) batchFlusher() {
	defer l.wg.Done()

	for {
		select {
		case <-l.batchTicker.C:
			l.batchMu.Lock()
			batch := l.batchBuffer
			l.batchBuffer = make(map[string]*playerPosition)
			l.batchMu.Unlock()

			if err := l.flushBatch(context.Background(), batch); err != nil {
				logging.Error("❌ Ошибка сброса позиций в Redis: %v", err)
			}
		case <-l.shutdown:
			return
		}
	}
}

// Close сбрасывает остаток батча и закрывает соединение
func (l *RedisLocator) Close() error {
	close(l.shutdown)
	l.batchTicker.Stop()
	l.wg.Wait()

	l.batchMu.Lock()
	batch := l.batchBuffer
	l.batchBuffer = make(map[string]*playerPosition)
	l.batchMu.Unlock()

	if err := l.flushBatch(context.Background(), batch); err != nil {
		logging.Error("❌ Ошибка финального сброса позиций: %v", err)
	}
	return l.client.Close()
}
