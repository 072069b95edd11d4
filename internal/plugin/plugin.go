// Package plugin загрузка модов и выдача им возможностей хоста.
//
// Мод получает Context со ссылками на реестр команд, шину игровых событий,
// логгер, конфигурацию и сервис правок мира. Всё, что мод зарегистрировал
// через Context, снимается при выгрузке.
package plugin

import (
	"context"
	"errors"
	"sync"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// ErrDuplicatePlugin мод с таким именем уже загружен
var ErrDuplicatePlugin = errors.New("plugin: duplicate name")

// Plugin мод
type Plugin interface {
	Name() string
	Setup(ctx *Context) error
	Teardown(ctx *Context) error
}

// CommandSink куда мод регистрирует команды
type CommandSink interface {
	Register(cmd *command.Command) error
	Unregister(name string) bool
}

// Context возможности хоста, доступные моду
type Context struct {
	base     context.Context
	name     string
	commands *scopedCommands
	events   *gameevent.Scope
	logger   *logging.Logger
	config   *config.Config
	edits    *worldedit.Service
}

// Context базовый контекст хоста; отменяется при остановке
func (c *Context) Context() context.Context { return c.base }

// Name имя мода
func (c *Context) Name() string { return c.name }

// Commands реестр команд мода
func (c *Context) Commands() CommandSink { return c.commands }

// Events источник игровых событий мода
func (c *Context) Events() gameevent.Source { return c.events }

// Logger логгер мода
func (c *Context) Logger() *logging.Logger { return c.logger }

// Config конфигурация хоста только для чтения
func (c *Context) Config() *config.Config { return c.config }

// WorldEdit сервис правок мира, nil если мир не подключён
func (c *Context) WorldEdit() *worldedit.Service { return c.edits }

// release снимает команды и подписки мода
func (c *Context) release() {
	c.commands.unregisterAll()
	c.events.Close()
}

// scopedCommands запоминает команды мода для снятия при выгрузке
type scopedCommands struct {
	registry *command.Registry
	mu       sync.Mutex
	names    []string
}

func (s *scopedCommands) Register(cmd *command.Command) error {
	if err := s.registry.Register(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	s.names = append(s.names, cmd.Name())
	s.mu.Unlock()
	return nil
}

func (s *scopedCommands) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return s.registry.Unregister(name)
		}
	}
	return false
}

func (s *scopedCommands) unregisterAll() {
	s.mu.Lock()
	names := s.names
	s.names = nil
	s.mu.Unlock()
	for _, n := range names {
		s.registry.Unregister(n)
	}
}
