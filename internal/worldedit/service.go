// Package worldedit единая точка изменения мира для команд, REST API и скриптов.
//
// Каждая изменяющая операция выполняется под блокировкой редактирования мира,
// помечает затронутые чанки для сохранения, пишет запись в журнал правок,
// публикует событие BlockEdit и обновляет метрики. Сбои журнала и публикации
// только логируются.
package worldedit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/blockverse-mods/internal/audit"
	"github.com/annel0/blockverse-mods/internal/editor"
	"github.com/annel0/blockverse-mods/internal/eventbus"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

// ErrOutOfRange координата Y одиночной записи вне [0, 255]
var ErrOutOfRange = errors.New("worldedit: y out of range")

const (
	// OpSetBlock операция записи одного блока
	OpSetBlock = "set_block"
	// EventBlockEdit тип конверта о выполненной правке
	EventBlockEdit = "BlockEdit"
	// EventSource источник конвертов сервиса
	EventSource = "worldedit"
)

var _ editor.GridAccessor = (*world.Accessor)(nil)

// BlockEdit полезная нагрузка конверта BlockEdit
type BlockEdit struct {
	Op      string     `json:"op"`
	Actor   string     `json:"actor"`
	Min     vec.Vec3   `json:"min"`
	Max     vec.Vec3   `json:"max"`
	Block   string     `json:"block,omitempty"`
	From    string     `json:"from,omitempty"`
	Changed int        `json:"changed"`
	Chunks  []vec.Vec2 `json:"chunks,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Service фасад правок мира
type Service struct {
	world         *world.Manager
	audit         audit.Recorder
	bus           eventbus.EventBus
	metrics       *Metrics
	editorMetrics *editor.Metrics
	logger        *logging.Logger
}

// Option настраивает Service
type Option func(*Service)

// WithAudit включает журнал правок
func WithAudit(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithEventBus включает публикацию конвертов BlockEdit
func WithEventBus(b eventbus.EventBus) Option {
	return func(s *Service) { s.bus = b }
}

// WithMetrics метрики сервиса
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEditorMetrics метрики редактора, передаются каждому Editor
func WithEditorMetrics(m *editor.Metrics) Option {
	return func(s *Service) { s.editorMetrics = m }
}

// WithLogger логгер сервиса
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New создаёт сервис поверх менеджера мира
func New(w *world.Manager, opts ...Option) *Service {
	s := &Service{world: w, logger: logging.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// World менеджер мира сервиса
func (s *Service) World() *world.Manager { return s.world }

// edit описание правки для журнала и конверта
type edit struct {
	actor  string
	op     string
	region editor.Region
	block  string
	from   string
}

// SetBlock записывает один блок и возвращает прежний.
// Y вне [0, 255] даёт ErrOutOfRange, незагруженный чанк: world.ErrChunkNotLoaded.
func (s *Service) SetBlock(ctx context.Context, actor string, pos vec.Vec3, id block.BlockID) (block.BlockID, error) {
	if pos.Y < editor.MinY || pos.Y > editor.MaxY {
		return block.AirBlockID, fmt.Errorf("%w: y=%d", ErrOutOfRange, pos.Y)
	}
	if err := ctx.Err(); err != nil {
		return block.AirBlockID, err
	}

	start := time.Now()
	var previous block.BlockID
	var touched []vec.Vec2
	err := s.world.Exclusive(func() error {
		acc := s.world.NewAccessor()
		var err error
		previous, err = acc.GetBlock(pos)
		if err != nil {
			return err
		}
		if err := acc.SetBlock(pos, id); err != nil {
			return err
		}
		touched = acc.Touched()
		s.world.MarkDirty(touched...)
		return nil
	})

	changed := 0
	if err == nil && previous != id {
		changed = 1
	}
	s.after(ctx, edit{
		actor:  actor,
		op:     OpSetBlock,
		region: editor.Region{Min: pos, Max: pos},
		block:  block.Name(id),
		from:   block.Name(previous),
	}, changed, touched, start, err)
	return previous, err
}

// Fill заполняет область между c1 и c2 блоком id
func (s *Service) Fill(ctx context.Context, actor string, c1, c2 vec.Vec3, id block.BlockID) (editor.Result, error) {
	e := edit{actor: actor, op: editor.OpFill, region: editor.NewRegion(c1, c2), block: block.Name(id)}
	return s.mutate(ctx, e, func(ed *editor.Editor) (editor.Result, error) {
		return ed.FillCube(c1, c2, id)
	})
}

// Hollow строит полую коробку между c1 и c2
func (s *Service) Hollow(ctx context.Context, actor string, c1, c2 vec.Vec3, id block.BlockID) (editor.Result, error) {
	e := edit{actor: actor, op: editor.OpHollow, region: editor.NewRegion(c1, c2), block: block.Name(id)}
	return s.mutate(ctx, e, func(ed *editor.Editor) (editor.Result, error) {
		return ed.CreateHollowCube(c1, c2, id)
	})
}

// Replace заменяет from на to во всём чанке chunk
func (s *Service) Replace(ctx context.Context, actor string, chunk vec.Vec2, from, to block.BlockID) (editor.Result, error) {
	e := edit{actor: actor, op: editor.OpReplace, region: editor.ChunkRegion(chunk), block: block.Name(to), from: block.Name(from)}
	return s.mutate(ctx, e, func(ed *editor.Editor) (editor.Result, error) {
		return ed.ReplaceBlocks(chunk, from, to)
	})
}

// ClearColumn заменяет воздухом все блоки колонки (x, z)
func (s *Service) ClearColumn(ctx context.Context, actor string, x, z int) (editor.Result, error) {
	e := edit{
		actor:  actor,
		op:     editor.OpClearColumn,
		region: editor.NewRegion(vec.Vec3{X: x, Y: editor.MinY, Z: z}, vec.Vec3{X: x, Y: editor.MaxY, Z: z}),
		block:  block.Name(block.AirBlockID),
	}
	return s.mutate(ctx, e, func(ed *editor.Editor) (editor.Result, error) {
		return ed.ClearColumn(x, z)
	})
}

// HighestSolid верхний непустой блок колонки
func (s *Service) HighestSolid(ctx context.Context, x, z int) (y int, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	err = s.world.Exclusive(func() error {
		var err error
		y, found, err = s.newEditor(s.world.NewAccessor()).HighestSolid(x, z)
		return err
	})
	return y, found, err
}

// IsSafe можно ли стоять в (x, y, z): опора снизу и два блока воздуха
func (s *Service) IsSafe(ctx context.Context, x, y, z int) (safe bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err = s.world.Exclusive(func() error {
		var err error
		safe, err = s.newEditor(s.world.NewAccessor()).IsSafeColumn(x, y, z)
		return err
	})
	return safe, err
}

// BlockAt читает блок по мировым координатам
func (s *Service) BlockAt(ctx context.Context, pos vec.Vec3) (block.BlockID, error) {
	if err := ctx.Err(); err != nil {
		return block.AirBlockID, err
	}
	var id block.BlockID
	err := s.world.Exclusive(func() error {
		var err error
		id, err = s.world.NewAccessor().GetBlock(pos)
		return err
	})
	return id, err
}

func (s *Service) newEditor(acc editor.GridAccessor) *editor.Editor {
	return editor.New(acc, editor.WithMetrics(s.editorMetrics), editor.WithLogger(s.logger))
}

func (s *Service) mutate(ctx context.Context, e edit, run func(*editor.Editor) (editor.Result, error)) (editor.Result, error) {
	if err := ctx.Err(); err != nil {
		return editor.Result{}, err
	}

	start := time.Now()
	var res editor.Result
	var touched []vec.Vec2
	err := s.world.Exclusive(func() error {
		acc := s.world.NewAccessor()
		var err error
		res, err = run(s.newEditor(acc))
		touched = acc.Touched()
		if res.NeedsSave {
			s.world.MarkDirty(touched...)
		}
		return err
	})

	s.after(ctx, e, res.Changed, touched, start, err)
	return res, err
}

// after пишет журнал, публикует конверт и обновляет метрики
func (s *Service) after(ctx context.Context, e edit, changed int, touched []vec.Vec2, start time.Time, opErr error) {
	s.metrics.observe(e.op, changed, len(touched), start, opErr)

	errText := ""
	if opErr != nil {
		errText = opErr.Error()
		s.logger.Warn("%s от %s в %s: %v", e.op, e.actor, e.region, opErr)
	} else {
		s.logger.Debug("%s от %s в %s: изменено %d", e.op, e.actor, e.region, changed)
	}

	if s.audit != nil {
		rec := audit.Record{
			Actor:   e.actor,
			Op:      e.op,
			Min:     e.region.Min,
			Max:     e.region.Max,
			Block:   e.block,
			From:    e.from,
			Changed: changed,
			Error:   errText,
		}
		if err := s.audit.Record(ctx, rec); err != nil {
			s.logger.Warn("Журнал правок недоступен: %v", err)
		}
	}

	if s.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(EventSource, EventBlockEdit, BlockEdit{
		Op:      e.op,
		Actor:   e.actor,
		Min:     e.region.Min,
		Max:     e.region.Max,
		Block:   e.block,
		From:    e.from,
		Changed: changed,
		Chunks:  touched,
		Error:   errText,
	})
	if err != nil {
		s.logger.Warn("BlockEdit не сериализован: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, env); err != nil {
		s.logger.Warn("BlockEdit не опубликован: %v", err)
	}
}
