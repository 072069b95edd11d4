package world

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

// Размеры чанка
const (
	ChunkSize   = 16  // ширина и глубина чанка в блоках
	ChunkHeight = 256 // высота колонки
	MinY        = 0
	MaxY        = ChunkHeight - 1

	chunkVolume = ChunkSize * ChunkHeight * ChunkSize
)

// SnapshotSize размер сериализованного чанка в байтах
const SnapshotSize = chunkVolume * 2

// Chunk представляет колонку мира 16x256x16 блоков
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	blocks      [chunkVolume]block.BlockID
	needsSaving bool

	ChangeCounter int          // Счетчик изменений
	Mu            sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт новый пустой (заполненный воздухом) чанк
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{Coords: coords}
}

func inChunk(local vec.Vec3) bool {
	return local.X >= 0 && local.X < ChunkSize &&
		local.Z >= 0 && local.Z < ChunkSize &&
		local.Y >= MinY && local.Y <= MaxY
}

func index(local vec.Vec3) int {
	return (local.Y*ChunkSize+local.Z)*ChunkSize + local.X
}

// GetBlock возвращает блок по локальным координатам.
// Для координат вне чанка возвращает воздух.
func (c *Chunk) GetBlock(local vec.Vec3) block.BlockID {
	if !inChunk(local) {
		return block.AirBlockID
	}
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.blocks[index(local)]
}

// SetBlock устанавливает блок по локальным координатам и возвращает предыдущее значение.
// Флаг сохранения не выставляется, это делает вызывающая сторона через MarkNeedsSaving.
func (c *Chunk) SetBlock(local vec.Vec3, id block.BlockID) block.BlockID {
	if !inChunk(local) {
		return block.AirBlockID
	}
	c.Mu.Lock()
	defer c.Mu.Unlock()

	i := index(local)
	old := c.blocks[i]
	if old != id {
		c.blocks[i] = id
		c.ChangeCounter++
	}
	return old
}

// MarkNeedsSaving помечает чанк для сохранения
func (c *Chunk) MarkNeedsSaving() {
	c.Mu.Lock()
	c.needsSaving = true
	c.Mu.Unlock()
}

// NeedsSaving сообщает, есть ли несохранённые изменения
func (c *Chunk) NeedsSaving() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.needsSaving
}

// ClearNeedsSaving снимает флаг сохранения, если с момента снимка
// (counter) чанк не менялся. Возвращает true, если флаг снят.
func (c *Chunk) ClearNeedsSaving(counter int) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.ChangeCounter != counter {
		return false
	}
	c.needsSaving = false
	return true
}

// Snapshot сериализует блоки чанка (little-endian uint16) и возвращает
// значение счетчика изменений на момент снимка.
func (c *Chunk) Snapshot() ([]byte, int) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	data := make([]byte, SnapshotSize)
	for i, id := range c.blocks {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(id))
	}
	return data, c.ChangeCounter
}

// Restore загружает блоки из снимка, созданного Snapshot
func (c *Chunk) Restore(data []byte) error {
	if len(data) != SnapshotSize {
		return fmt.Errorf("чанк %s: неверный размер снимка %d, ожидалось %d", c.Coords, len(data), SnapshotSize)
	}

	c.Mu.Lock()
	defer c.Mu.Unlock()
	for i := range c.blocks {
		c.blocks[i] = block.BlockID(binary.LittleEndian.Uint16(data[i*2:]))
	}
	c.needsSaving = false
	return nil
}

// fillLayer заполняет горизонтальный слой чанка, используется генераторами
func (c *Chunk) fillLayer(y int, id block.BlockID) {
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			c.blocks[index(vec.Vec3{X: x, Y: y, Z: z})] = id
		}
	}
}
