package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// Deps зависимости, которые менеджер раздаёт модам
type Deps struct {
	Commands  *command.Registry
	Events    *gameevent.Bus
	Config    *config.Config
	WorldEdit *worldedit.Service
	// Logger выдаёт логгер мода; по умолчанию logging.GetPluginLogger
	Logger func(name string) *logging.Logger
	// HostLogger логгер самого менеджера
	HostLogger *logging.Logger
}

type loaded struct {
	plugin Plugin
	ctx    *Context
}

// Manager загружает моды по порядку и выгружает в обратном
type Manager struct {
	mu     sync.Mutex
	deps   Deps
	loaded []loaded
}

// NewManager создаёт менеджер модов
func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = logging.GetPluginLogger
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.HostLogger == nil {
		deps.HostLogger = logging.Default()
	}
	return &Manager{deps: deps}
}

// Load вызывает Setup каждого мода. При ошибке мода его регистрации
// снимаются, загрузка прекращается, ранее загруженные моды остаются.
func (m *Manager) Load(ctx context.Context, plugins ...Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range plugins {
		name := p.Name()
		if m.find(name) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
		}

		pctx := &Context{
			base:     ctx,
			name:     name,
			commands: &scopedCommands{registry: m.deps.Commands},
			events:   m.deps.Events.Scope(),
			logger:   m.deps.Logger(name),
			config:   m.deps.Config,
			edits:    m.deps.WorldEdit,
		}
		if err := p.Setup(pctx); err != nil {
			pctx.release()
			m.deps.HostLogger.Error("Мод %s не загружен: %v", name, err)
			return fmt.Errorf("setup %s: %w", name, err)
		}
		m.loaded = append(m.loaded, loaded{plugin: p, ctx: pctx})
		m.deps.HostLogger.Info("🧩 Мод %s загружен", name)
	}
	return nil
}

// Unload выгружает все моды в обратном порядке загрузки
func (m *Manager) Unload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.loaded) - 1; i >= 0; i-- {
		l := m.loaded[i]
		if err := l.plugin.Teardown(l.ctx); err != nil {
			errs = append(errs, fmt.Errorf("teardown %s: %w", l.plugin.Name(), err))
		}
		l.ctx.release()
		m.deps.HostLogger.Info("Мод %s выгружен", l.plugin.Name())
	}
	m.loaded = nil
	return errors.Join(errs...)
}

// Loaded имена загруженных модов в порядке загрузки
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.loaded))
	for i, l := range m.loaded {
		names[i] = l.plugin.Name()
	}
	return names
}

func (m *Manager) find(name string) int {
	for i, l := range m.loaded {
		if l.plugin.Name() == name {
			return i
		}
	}
	return -1
}
