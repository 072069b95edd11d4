package editor

import (
	"errors"

	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

var errInjected = errors.New("injected failure")

// memGrid GridAccessor в памяти с возможностью отказа
type memGrid struct {
	cells map[vec.Vec3]block.BlockID
	sets  int
	gets  int

	failSetAfter int // отказ на (failSetAfter+1)-й записи, 0: без отказов
	failGetAt    *vec.Vec3
}

func newMemGrid() *memGrid {
	return &memGrid{cells: make(map[vec.Vec3]block.BlockID)}
}

func (g *memGrid) GetBlock(pos vec.Vec3) (block.BlockID, error) {
	g.gets++
	if g.failGetAt != nil && *g.failGetAt == pos {
		return block.AirBlockID, errInjected
	}
	return g.cells[pos], nil
}

func (g *memGrid) SetBlock(pos vec.Vec3, id block.BlockID) error {
	if g.failSetAfter > 0 && g.sets >= g.failSetAfter {
		return errInjected
	}
	g.sets++
	if id == block.AirBlockID {
		delete(g.cells, pos)
		return nil
	}
	g.cells[pos] = id
	return nil
}
