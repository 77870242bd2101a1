package save

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const savePrefix = "save:"

// Store хранит именованные сохранения (сырые списки кирпичей) в BadgerDB.
// Результаты анализа сюда не пишутся - они живут только в памяти процесса.
type Store struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewStore открывает хранилище в каталоге dir. Пустой dir - хранилище в памяти.
func NewStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}

	return &Store{db: db, isReady: true, enc: enc, dec: dec}, nil
}

// Close закрывает хранилище
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

func saveKey(name string) []byte {
	return []byte(savePrefix + name)
}

// Put сохраняет список кирпичей под именем, заменяя прежний
func (s *Store) Put(name string, bricks []Brick) error {
	if name == "" {
		return fmt.Errorf("пустое имя сохранения")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	var buf bytes.Buffer
	if err := WriteBricks(&buf, bricks); err != nil {
		return fmt.Errorf("сериализация сохранения %s: %w", name, err)
	}
	data := s.enc.EncodeAll(buf.Bytes(), nil)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(saveKey(name), data)
	})
	if err != nil {
		return fmt.Errorf("запись сохранения %s: %w", name, err)
	}

	logging.Debug("💾 Сохранение %s: %d кирпичей, %d байт", name, len(bricks), len(data))
	return nil
}

// Get загружает сохранение по имени
func (s *Store) Get(ctx context.Context, name string) ([]Brick, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(saveKey(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("чтение сохранения %s: %w", name, err)
	}

	raw, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("распаковка сохранения %s: %w", name, err)
	}
	return ReadBricks(ctx, bytes.NewReader(raw))
}

// List возвращает отсортированные имена сохранений
func (s *Store) List() ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(savePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), savePrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Delete удаляет сохранение
func (s *Store) Delete(name string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(saveKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSaveNotFound, name)
			}
			return err
		}
		return txn.Delete(saveKey(name))
	})
}

// StoreSource отдаёт одно именованное сохранение как Source
type StoreSource struct {
	store *Store
	name  string
}

// NewStoreSource создаёт источник для сохранения name
func NewStoreSource(store *Store, name string) *StoreSource {
	return &StoreSource{store: store, name: name}
}

// Bricks загружает сохранение из хранилища
func (ss *StoreSource) Bricks(ctx context.Context) ([]Brick, error) {
	return ss.store.Get(ctx, ss.name)
}
