package world

import (
	"fmt"

	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

// Accessor читает и пишет блоки в мировых координатах поверх загруженных чанков.
// Запоминает чанки, в которые была успешная запись. Не потокобезопасен:
// создаётся на одну операцию.
type Accessor struct {
	manager *Manager
	last    *Chunk // последний использованный чанк
	touched map[vec.Vec2]struct{}
	order   []vec.Vec2
}

func (a *Accessor) chunkFor(pos vec.Vec3) (*Chunk, error) {
	if pos.Y < MinY || pos.Y > MaxY {
		return nil, fmt.Errorf("%w: y=%d", ErrOutOfWorld, pos.Y)
	}
	coords := pos.ChunkCoords()
	if a.last != nil && a.last.Coords == coords {
		return a.last, nil
	}
	chunk := a.manager.ChunkAt(coords)
	if chunk == nil {
		return nil, fmt.Errorf("%w: %s", ErrChunkNotLoaded, coords)
	}
	a.last = chunk
	return chunk, nil
}

// GetBlock возвращает блок по мировым координатам
func (a *Accessor) GetBlock(pos vec.Vec3) (block.BlockID, error) {
	chunk, err := a.chunkFor(pos)
	if err != nil {
		return block.AirBlockID, err
	}
	return chunk.GetBlock(pos.LocalInChunk()), nil
}

// SetBlock устанавливает блок по мировым координатам
func (a *Accessor) SetBlock(pos vec.Vec3, id block.BlockID) error {
	chunk, err := a.chunkFor(pos)
	if err != nil {
		return err
	}
	chunk.SetBlock(pos.LocalInChunk(), id)
	if _, ok := a.touched[chunk.Coords]; !ok {
		a.touched[chunk.Coords] = struct{}{}
		a.order = append(a.order, chunk.Coords)
	}
	return nil
}

// Touched возвращает чанки, в которые писали, в порядке первого обращения
func (a *Accessor) Touched() []vec.Vec2 {
	out := make([]vec.Vec2, len(a.order))
	copy(out, a.order)
	return out
}
