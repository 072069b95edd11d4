package editor

import (
	"fmt"
	"math"

	"github.com/annel0/blockverse-mods/internal/vec"
)

// Границы высоты мира
const (
	MinY = 0
	MaxY = 255

	// ChunkSize ширина чанка по X и Z
	ChunkSize = 16
)

// Region прямоугольная область мира с включительными границами.
// Min <= Max по X и Z всегда. По Y область пуста, если Min.Y > Max.Y.
type Region struct {
	Min vec.Vec3 `json:"min"`
	Max vec.Vec3 `json:"max"`
}

// NewRegion строит область по двум произвольным углам и обрезает Y до [MinY, MaxY].
// Если оба угла выше MaxY или ниже MinY, область пуста.
func NewRegion(c1, c2 vec.Vec3) Region {
	r := Region{
		Min: vec.Vec3{X: min(c1.X, c2.X), Y: min(c1.Y, c2.Y), Z: min(c1.Z, c2.Z)},
		Max: vec.Vec3{X: max(c1.X, c2.X), Y: max(c1.Y, c2.Y), Z: max(c1.Z, c2.Z)},
	}
	r.Min.Y = max(r.Min.Y, MinY)
	r.Max.Y = min(r.Max.Y, MaxY)
	return r
}

// ChunkRegion возвращает полную колонку чанка: 16x16 по горизонтали, Y от MinY до MaxY
func ChunkRegion(chunk vec.Vec2) Region {
	origin := chunk.Origin()
	return Region{
		Min: vec.Vec3{X: origin.X, Y: MinY, Z: origin.Z},
		Max: vec.Vec3{X: origin.X + ChunkSize - 1, Y: MaxY, Z: origin.Z + ChunkSize - 1},
	}
}

// Empty сообщает, что в области нет ни одной клетки
func (r Region) Empty() bool {
	return r.Min.Y > r.Max.Y
}

// Volume возвращает количество клеток в области.
// Для областей больше math.MaxInt клеток возвращает math.MaxInt.
func (r Region) Volume() int {
	if r.Empty() {
		return 0
	}
	dx, dy, dz := r.extents()
	return mulSat(mulSat(dx, dy), dz)
}

// extents длины области по осям с насыщением
func (r Region) extents() (dx, dy, dz int) {
	return extent(r.Min.X, r.Max.X), extent(r.Min.Y, r.Max.Y), extent(r.Min.Z, r.Max.Z)
}

// extent число целых в [lo, hi] при lo <= hi, не больше math.MaxInt
func extent(lo, hi int) int {
	d := uint64(hi) - uint64(lo)
	if d >= math.MaxInt {
		return math.MaxInt
	}
	return int(d) + 1
}

func mulSat(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// Contains проверяет, лежит ли позиция внутри области
func (r Region) Contains(pos vec.Vec3) bool {
	return !r.Empty() &&
		pos.X >= r.Min.X && pos.X <= r.Max.X &&
		pos.Y >= r.Min.Y && pos.Y <= r.Max.Y &&
		pos.Z >= r.Min.Z && pos.Z <= r.Max.Z
}

// OnBoundary проверяет, лежит ли позиция на поверхности области
// (хотя бы одна координата равна границе по своей оси)
func (r Region) OnBoundary(pos vec.Vec3) bool {
	if !r.Contains(pos) {
		return false
	}
	return pos.X == r.Min.X || pos.X == r.Max.X ||
		pos.Y == r.Min.Y || pos.Y == r.Max.Y ||
		pos.Z == r.Min.Z || pos.Z == r.Max.Z
}

// BoundaryVolume возвращает количество клеток на поверхности области.
// Насыщается так же, как Volume.
func (r Region) BoundaryVolume() int {
	total := r.Volume()
	if total == 0 || total == math.MaxInt {
		return total
	}
	dx, dy, dz := r.extents()
	return total - max(dx-2, 0)*max(dy-2, 0)*max(dz-2, 0)
}

func (r Region) String() string {
	return fmt.Sprintf("(%s)..(%s)", r.Min, r.Max)
}
