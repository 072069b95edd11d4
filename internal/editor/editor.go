// Package editor реализует массовые операции над блоками мира:
// заливку и полую коробку, замену в чанке, очистку колонки и проверки колонки.
// Редактор не синхронизирует доступ: вызывающая сторона сериализует правки сама.
package editor

import (
	"time"

	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

// GridAccessor чтение и запись блоков в мировых координатах
type GridAccessor interface {
	GetBlock(pos vec.Vec3) (block.BlockID, error)
	SetBlock(pos vec.Vec3, id block.BlockID) error
}

// Result итог изменяющей операции.
//
// Для Fill и Hollow Changed равен числу посещённых клеток (запись безусловная),
// NeedsSave всегда true. Для Replace и ClearColumn Changed считает только
// клетки, значение которых действительно изменилось, NeedsSave = Changed > 0.
type Result struct {
	Changed   int  `json:"changed"`
	NeedsSave bool `json:"needs_save"`
}

// Editor выполняет операции поверх одного GridAccessor
type Editor struct {
	acc     GridAccessor
	metrics *Metrics
	logger  *logging.Logger
}

// Option настраивает Editor
type Option func(*Editor)

// WithMetrics включает сбор метрик
func WithMetrics(m *Metrics) Option {
	return func(e *Editor) { e.metrics = m }
}

// WithLogger задаёт логгер для трассировки операций
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// New создаёт редактор поверх acc
func New(acc GridAccessor, opts ...Option) *Editor {
	e := &Editor{acc: acc}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) finish(op string, start time.Time, res Result, err error) (Result, error) {
	e.metrics.observe(op, start, res.Changed, err)
	if err != nil {
		e.logger.Warn("%s прерван после %d клеток: %v", op, res.Changed, err)
	} else {
		e.logger.Trace("%s: изменено %d клеток за %s", op, res.Changed, time.Since(start))
	}
	return res, err
}

// FillCube заполняет область между c1 и c2 блоком id. Y обрезается до [0, 255].
func (e *Editor) FillCube(c1, c2 vec.Vec3, id block.BlockID) (Result, error) {
	return e.fill(OpFill, NewRegion(c1, c2), id, false)
}

// CreateHollowCube ставит блок id только на поверхности области между c1 и c2.
// Внутренние клетки не трогаются.
func (e *Editor) CreateHollowCube(c1, c2 vec.Vec3, id block.BlockID) (Result, error) {
	return e.fill(OpHollow, NewRegion(c1, c2), id, true)
}

func (e *Editor) fill(op string, r Region, id block.BlockID, boundaryOnly bool) (Result, error) {
	start := time.Now()
	var res Result

	// Циклы закрываются по равенству с границей: x++ на math.MaxInt переполнился бы
	if !r.Empty() {
		for x := r.Min.X; ; x++ {
			for y := r.Min.Y; ; y++ {
				for z := r.Min.Z; ; z++ {
					pos := vec.Vec3{X: x, Y: y, Z: z}
					if !boundaryOnly || r.OnBoundary(pos) {
						if err := e.acc.SetBlock(pos, id); err != nil {
							res.NeedsSave = res.Changed > 0
							return e.finish(op, start, res, &AccessError{Op: op, Pos: pos, Err: err})
						}
						res.Changed++
					}
					if z == r.Max.Z {
						break
					}
				}
				if y == r.Max.Y {
					break
				}
			}
			if x == r.Max.X {
				break
			}
		}
	}

	res.NeedsSave = true
	return e.finish(op, start, res, nil)
}

// ReplaceBlocks заменяет все блоки from на to в колонке чанка chunk (Y от 0 до 255)
func (e *Editor) ReplaceBlocks(chunk vec.Vec2, from, to block.BlockID) (Result, error) {
	start := time.Now()
	var res Result

	if from == to {
		return e.finish(OpReplace, start, res, nil)
	}

	r := ChunkRegion(chunk)
	for x := r.Min.X; x-r.Min.X < ChunkSize; x++ {
		for z := r.Min.Z; z-r.Min.Z < ChunkSize; z++ {
			for y := r.Min.Y; y <= r.Max.Y; y++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				changed, err := e.swap(pos, from, to)
				if err != nil {
					res.NeedsSave = res.Changed > 0
					return e.finish(OpReplace, start, res, &AccessError{Op: OpReplace, Pos: pos, Err: err})
				}
				if changed {
					res.Changed++
				}
			}
		}
	}

	res.NeedsSave = res.Changed > 0
	return e.finish(OpReplace, start, res, nil)
}

// ClearColumn заменяет воздухом все непустые блоки колонки (x, z)
func (e *Editor) ClearColumn(x, z int) (Result, error) {
	start := time.Now()
	var res Result

	for y := MinY; y <= MaxY; y++ {
		pos := vec.Vec3{X: x, Y: y, Z: z}
		current, err := e.acc.GetBlock(pos)
		if err == nil && current != block.AirBlockID {
			err = e.acc.SetBlock(pos, block.AirBlockID)
			if err == nil {
				res.Changed++
			}
		}
		if err != nil {
			res.NeedsSave = res.Changed > 0
			return e.finish(OpClearColumn, start, res, &AccessError{Op: OpClearColumn, Pos: pos, Err: err})
		}
	}

	res.NeedsSave = res.Changed > 0
	return e.finish(OpClearColumn, start, res, nil)
}

// swap записывает to, если в pos лежит from
func (e *Editor) swap(pos vec.Vec3, from, to block.BlockID) (bool, error) {
	current, err := e.acc.GetBlock(pos)
	if err != nil {
		return false, err
	}
	if current != from {
		return false, nil
	}
	if err := e.acc.SetBlock(pos, to); err != nil {
		return false, err
	}
	return true, nil
}

// HighestSolid возвращает высоту самого верхнего непустого блока колонки (x, z).
// found == false, если колонка целиком из воздуха.
func (e *Editor) HighestSolid(x, z int) (y int, found bool, err error) {
	start := time.Now()
	defer func() { e.metrics.observe(OpHighest, start, 0, err) }()

	for y = MaxY; y >= MinY; y-- {
		pos := vec.Vec3{X: x, Y: y, Z: z}
		id, err := e.acc.GetBlock(pos)
		if err != nil {
			return 0, false, &AccessError{Op: OpHighest, Pos: pos, Err: err}
		}
		if id != block.AirBlockID {
			return y, true, nil
		}
	}
	return 0, false, nil
}

// IsSafeColumn проверяет, может ли игрок стоять в (x, y, z):
// под ногами непустой блок, на уровне ног и головы воздух.
// Для y вне [1, 253] возвращает false, не обращаясь к миру.
func (e *Editor) IsSafeColumn(x, y, z int) (safe bool, err error) {
	if y < MinY+1 || y > MaxY-2 {
		return false, nil
	}
	start := time.Now()
	defer func() { e.metrics.observe(OpIsSafe, start, 0, err) }()

	checks := []struct {
		dy    int
		solid bool
	}{
		{dy: -1, solid: true},
		{dy: 0, solid: false},
		{dy: 1, solid: false},
	}
	for _, c := range checks {
		pos := vec.Vec3{X: x, Y: y + c.dy, Z: z}
		id, err := e.acc.GetBlock(pos)
		if err != nil {
			return false, &AccessError{Op: OpIsSafe, Pos: pos, Err: err}
		}
		if (id != block.AirBlockID) != c.solid {
			return false, nil
		}
	}
	return true, nil
}
