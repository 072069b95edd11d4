package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/blockverse-mods/internal/vec"
)

// Формат записи чанка: первый байт: кодек, далее данные
const (
	codecRaw  byte = 0
	codecZstd byte = 1
)

// ErrNotReady хранилище закрыто
var ErrNotReady = errors.New("хранилище не готово")

// WorldStorage хранит снимки чанков в BadgerDB
type WorldStorage struct {
	db       *badger.DB
	dbPath   string
	mutex    sync.RWMutex
	isReady  bool
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// WorldStorageOptions параметры открытия хранилища
type WorldStorageOptions struct {
	DataPath string // директория данных, база создаётся в DataPath/world
	InMemory bool   // база только в памяти (для тестов)
	Compress bool   // сжимать снимки zstd
}

// NewWorldStorage создает новое хранилище мира
func NewWorldStorage(options WorldStorageOptions) (*WorldStorage, error) {
	var opts badger.Options
	dbPath := ""
	if options.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbPath = filepath.Join(options.DataPath, "world")
		opts = badger.DefaultOptions(dbPath)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &WorldStorage{
		db:       db,
		dbPath:   dbPath,
		isReady:  true,
		compress: options.Compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.decoder.Close()
	if err := ws.encoder.Close(); err != nil {
		ws.db.Close()
		return err
	}
	return ws.db.Close()
}

func chunkKey(coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", coords.X, coords.Z))
}

// SaveChunk сохраняет снимок чанка
func (ws *WorldStorage) SaveChunk(ctx context.Context, coords vec.Vec2, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrNotReady
	}

	var record []byte
	if ws.compress {
		record = ws.encoder.EncodeAll(data, []byte{codecZstd})
	} else {
		record = append([]byte{codecRaw}, data...)
	}

	err := ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(coords), record)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadChunk загружает снимок чанка. found == false, если чанк не сохранялся.
func (ws *WorldStorage) LoadChunk(ctx context.Context, coords vec.Vec2) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, false, ErrNotReady
	}

	var record []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		record, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := ws.decode(record)
	if err != nil {
		return nil, false, fmt.Errorf("чанк %s: %w", coords, err)
	}
	return data, true, nil
}

func (ws *WorldStorage) decode(record []byte) ([]byte, error) {
	if len(record) == 0 {
		return nil, errors.New("пустая запись")
	}
	switch record[0] {
	case codecRaw:
		return record[1:], nil
	case codecZstd:
		return ws.decoder.DecodeAll(record[1:], nil)
	default:
		return nil, fmt.Errorf("неизвестный кодек %d", record[0])
	}
}

// DeleteChunk удаляет сохранённый чанк
func (ws *WorldStorage) DeleteChunk(ctx context.Context, coords vec.Vec2) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrNotReady
	}
	return ws.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(coords))
	})
}

// CountChunks возвращает число сохранённых чанков
func (ws *WorldStorage) CountChunks() (int, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("chunk:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
