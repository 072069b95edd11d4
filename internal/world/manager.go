package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/vec"
)

var (
	// ErrChunkNotLoaded чанк с указанными координатами не загружен в память
	ErrChunkNotLoaded = errors.New("chunk not loaded")
	// ErrOutOfWorld координата Y вне диапазона [0, 255]
	ErrOutOfWorld = errors.New("position outside of world height")
)

// ChunkStore сохраняет снимки чанков между запусками
type ChunkStore interface {
	SaveChunk(ctx context.Context, coords vec.Vec2, data []byte) error
	// LoadChunk возвращает found == false, если чанк ещё не сохранялся
	LoadChunk(ctx context.Context, coords vec.Vec2) (data []byte, found bool, err error)
}

// Manager управляет загруженными чанками мира
type Manager struct {
	chunks    map[vec.Vec2]*Chunk // Загруженные чанки
	mu        sync.RWMutex        // Мьютекс для карты чанков
	editMu    sync.Mutex          // Мьютекс редактирования мира
	saveMu    sync.Mutex          // Мьютекс для операций сохранения
	generator Generator
	store     ChunkStore // может быть nil, тогда мир живёт только в памяти
	logger    *logging.Logger
}

// NewManager создаёт менеджер мира. store и logger могут быть nil.
func NewManager(generator Generator, store ChunkStore, logger *logging.Logger) *Manager {
	if generator == nil {
		generator = &FlatGenerator{}
	}
	return &Manager{
		chunks:    make(map[vec.Vec2]*Chunk),
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// ChunkAt возвращает загруженный чанк или nil
func (m *Manager) ChunkAt(coords vec.Vec2) *Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chunks[coords]
}

// LoadChunk возвращает чанк, загружая его из хранилища или генерируя при отсутствии
func (m *Manager) LoadChunk(ctx context.Context, coords vec.Vec2) (*Chunk, error) {
	if c := m.ChunkAt(coords); c != nil {
		return c, nil
	}

	chunk, err := m.readOrGenerate(ctx, coords)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Проверяем еще раз под блокировкой записи
	if existing, ok := m.chunks[coords]; ok {
		return existing, nil
	}
	m.chunks[coords] = chunk
	return chunk, nil
}

func (m *Manager) readOrGenerate(ctx context.Context, coords vec.Vec2) (*Chunk, error) {
	if m.store != nil {
		data, found, err := m.store.LoadChunk(ctx, coords)
		if err != nil {
			return nil, fmt.Errorf("загрузка чанка %s: %w", coords, err)
		}
		if found {
			chunk := NewChunk(coords)
			if err := chunk.Restore(data); err != nil {
				return nil, err
			}
			m.logger.Trace("Чанк %s загружен из хранилища", coords)
			return chunk, nil
		}
	}

	chunk := m.generator.Generate(coords)
	chunk.needsSaving = m.store != nil
	m.logger.Trace("Чанк %s сгенерирован", coords)
	return chunk, nil
}

// Preload загружает квадрат чанков радиусом radius вокруг center
func (m *Manager) Preload(ctx context.Context, center vec.Vec2, radius int) error {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			coords := vec.Vec2{X: center.X + dx, Z: center.Z + dz}
			if _, err := m.LoadChunk(ctx, coords); err != nil {
				return err
			}
		}
	}
	m.logger.Info("Предзагружено %d чанков вокруг %s", (2*radius+1)*(2*radius+1), center)
	return nil
}

// UnloadChunk сохраняет (если нужно) и выгружает чанк из памяти
func (m *Manager) UnloadChunk(ctx context.Context, coords vec.Vec2) error {
	chunk := m.ChunkAt(coords)
	if chunk == nil {
		return nil
	}
	if chunk.NeedsSaving() {
		if err := m.saveChunk(ctx, chunk); err != nil {
			return err
		}
	}

	m.mu.Lock()
	delete(m.chunks, coords)
	m.mu.Unlock()
	return nil
}

// LoadedChunks возвращает координаты загруженных чанков в порядке (X, Z)
func (m *Manager) LoadedChunks() []vec.Vec2 {
	m.mu.RLock()
	coords := make([]vec.Vec2, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	m.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
	return coords
}

// DirtyChunks возвращает чанки с несохранёнными изменениями
func (m *Manager) DirtyChunks() []*Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dirty []*Chunk
	for _, c := range m.chunks {
		if c.NeedsSaving() {
			dirty = append(dirty, c)
		}
	}
	return dirty
}

// MarkDirty помечает загруженные чанки для сохранения
func (m *Manager) MarkDirty(coords ...vec.Vec2) {
	for _, c := range coords {
		if chunk := m.ChunkAt(c); chunk != nil {
			chunk.MarkNeedsSaving()
		}
	}
}

// SaveDirty сохраняет все изменённые чанки и возвращает их количество.
// Без хранилища ничего не делает.
func (m *Manager) SaveDirty(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	saved := 0
	var errs []error
	for _, chunk := range m.DirtyChunks() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := m.saveChunk(ctx, chunk); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}

	if saved > 0 {
		m.logger.Debug("Сохранено чанков: %d", saved)
	}
	return saved, errors.Join(errs...)
}

func (m *Manager) saveChunk(ctx context.Context, chunk *Chunk) error {
	if m.store == nil {
		return nil
	}
	data, counter := chunk.Snapshot()
	if err := m.store.SaveChunk(ctx, chunk.Coords, data); err != nil {
		return fmt.Errorf("сохранение чанка %s: %w", chunk.Coords, err)
	}
	chunk.ClearNeedsSaving(counter)
	return nil
}

// Exclusive выполняет fn под глобальной блокировкой редактирования мира.
// Все изменяющие мир операции должны проходить через этот метод.
func (m *Manager) Exclusive(fn func() error) error {
	m.editMu.Lock()
	defer m.editMu.Unlock()
	return fn()
}

// NewAccessor создаёт доступ к блокам загруженных чанков для одной операции
func (m *Manager) NewAccessor() *Accessor {
	return &Accessor{manager: m, touched: make(map[vec.Vec2]struct{})}
}
