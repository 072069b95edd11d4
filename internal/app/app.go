// Package app собирает мир и его хранилища из конфигурации.
// Используется хостом модов и консольными инструментами.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/blockverse-mods/internal/audit"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/editor"
	"github.com/annel0/blockverse-mods/internal/eventbus"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/storage"
	"github.com/annel0/blockverse-mods/internal/util"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// auditCollection коллекция журнала правок в MongoDB
const auditCollection = "edits"

// Options параметры сборки мира
type Options struct {
	// Registerer для метрик правок; nil → prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
	// InMemory открывает Badger только в памяти
	InMemory bool
	// Logger выдаёт логгер компонента; по умолчанию logging.GetComponentLogger
	Logger func(component string) *logging.Logger
}

// World открытый мир со всеми хранилищами
type World struct {
	Config  *config.Config
	Storage *storage.WorldStorage
	Manager *world.Manager
	Audit   audit.Recorder
	Bus     eventbus.EventBus
	Edits   *worldedit.Service

	logger *logging.Logger
}

// Open открывает хранилище чанков, предзагружает мир, подключает журнал правок
// и шину конвертов. При ошибке всё открытое ранее закрывается.
func Open(ctx context.Context, cfg *config.Config, opts Options) (_ *World, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetComponentLogger
	}
	w := &World{Config: cfg, logger: opts.Logger("world")}
	defer func() {
		if err != nil {
			_ = w.close(context.Background(), false)
		}
	}()

	w.Storage, err = storage.NewWorldStorage(storage.WorldStorageOptions{
		DataPath: cfg.World.DataDir,
		InMemory: opts.InMemory,
		Compress: cfg.World.Compression,
	})
	if err != nil {
		return nil, err
	}

	w.Manager = world.NewManager(newGenerator(cfg.World), w.Storage, w.logger)
	if err = w.Manager.Preload(ctx, vec.Vec2{}, cfg.World.PreloadRadius); err != nil {
		return nil, fmt.Errorf("предзагрузка мира: %w", err)
	}

	err = util.Retry(ctx, 3, 500*time.Millisecond, func(ctx context.Context) error {
		var openErr error
		w.Audit, openErr = audit.Open(ctx, cfg.Audit.Backend, cfg.Audit.SQLitePath, audit.MongoConfig{
			URI:        cfg.Audit.MongoURI,
			Database:   cfg.Audit.MongoDatabase,
			Collection: auditCollection,
		})
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("журнал правок: %w", err)
	}

	if w.Bus, err = OpenBus(cfg.EventBus); err != nil {
		return nil, err
	}

	w.Edits = worldedit.New(w.Manager,
		worldedit.WithAudit(w.Audit),
		worldedit.WithEventBus(w.Bus),
		worldedit.WithMetrics(worldedit.NewMetrics(opts.Registerer)),
		worldedit.WithEditorMetrics(editor.NewMetrics(opts.Registerer)),
		worldedit.WithLogger(opts.Logger("worldedit")),
	)
	return w, nil
}

func newGenerator(cfg config.WorldConfig) world.Generator {
	if cfg.Generator == "flat" {
		return world.NewFlatGenerator()
	}
	return world.NewPerlinGenerator(cfg.Seed)
}

// OpenBus in-memory шина без URL, иначе NATS JetStream
func OpenBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, cfg.RetentionDuration())
	if err != nil {
		return nil, fmt.Errorf("шина событий: %w", err)
	}
	return bus, nil
}

// OpenPositions репозиторий позиций игроков по positions.backend
func OpenPositions(ctx context.Context, cfg config.PositionsConfig) (storage.PositionRepo, error) {
	switch cfg.Backend {
	case "", "memory":
		return storage.NewMemoryPositionRepo(), nil
	case "redis":
		rc := storage.DefaultRedisConfig()
		rc.Addr = cfg.RedisAddr
		rc.DB = cfg.RedisDB
		return storage.NewRedisPositionRepository(ctx, rc)
	case "maria":
		return storage.NewMariaPositionRepo(ctx, cfg.MariaDSN)
	default:
		return nil, fmt.Errorf("positions: неизвестный бэкенд %q", cfg.Backend)
	}
}

// Close сохраняет изменённые чанки и закрывает хранилища
func (w *World) Close(ctx context.Context) error {
	return w.close(ctx, true)
}

func (w *World) close(ctx context.Context, save bool) error {
	var errs []error
	if save && w.Manager != nil {
		n, err := w.Manager.SaveDirty(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		w.logger.Info("💾 При остановке сохранено чанков: %d", n)
	}
	if w.Bus != nil {
		if err := w.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("шина событий: %w", err))
		}
	}
	if w.Audit != nil {
		if err := w.Audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("журнал правок: %w", err))
		}
	}
	if w.Storage != nil {
		if err := w.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("хранилище мира: %w", err))
		}
	}
	return errors.Join(errs...)
}
