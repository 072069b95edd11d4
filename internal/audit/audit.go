// Package audit хранит журнал правок мира: кто, когда и что изменил.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/blockverse-mods/internal/vec"
)

// Record запись журнала о выполненной правке
type Record struct {
	ID      uuid.UUID `json:"id"`
	Time    time.Time `json:"time"`
	Actor   string    `json:"actor"`
	Op      string    `json:"op"`
	Min     vec.Vec3  `json:"min"`
	Max     vec.Vec3  `json:"max"`
	Block   string    `json:"block,omitempty"`
	From    string    `json:"from,omitempty"`
	Changed int       `json:"changed"`
	Error   string    `json:"error,omitempty"`
}

// Recorder журнал правок
type Recorder interface {
	// Record добавляет запись. Пустые ID и Time заполняются автоматически.
	Record(ctx context.Context, rec Record) error
	// Recent возвращает последние limit записей, новые первыми
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// DefaultLimit число записей, возвращаемое при limit <= 0
const DefaultLimit = 50

func normalize(rec Record) Record {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// MemoryRecorder хранит последние записи в кольцевом буфере
type MemoryRecorder struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
}

// NewMemoryRecorder создаёт журнал в памяти на capacity записей
func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryRecorder{capacity: capacity}
}

// Record добавляет запись, вытесняя самую старую при переполнении
func (m *MemoryRecorder) Record(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec = normalize(rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == m.capacity {
		copy(m.records, m.records[1:])
		m.records = m.records[:len(m.records)-1]
	}
	m.records = append(m.records, rec)
	return nil
}

// Recent возвращает последние записи, новые первыми
func (m *MemoryRecorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()
	n := min(limit, len(m.records))
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= len(m.records)-n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close ничего не делает
func (m *MemoryRecorder) Close() error { return nil }

// Open создаёт журнал по имени бэкенда: memory, sqlite или mongo
func Open(ctx context.Context, backend, sqlitePath string, mongo MongoConfig) (Recorder, error) {
	switch backend {
	case "", "memory":
		return NewMemoryRecorder(0), nil
	case "sqlite":
		return NewSQLiteRecorder(ctx, sqlitePath)
	case "mongo":
		return NewMongoRecorder(ctx, mongo)
	default:
		return nil, fmt.Errorf("audit: неизвестный бэкенд %q", backend)
	}
}
