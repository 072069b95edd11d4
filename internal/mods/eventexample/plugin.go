// Package eventexample мод, слушающий вход, выход, чат и перемещение игроков.
package eventexample

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/plugin"
)

// Name имя мода
const Name = "event-example"

// Plugin мод с примерами обработчиков событий
type Plugin struct {
	logger  *logging.Logger
	blocked []glob.Glob
	prefix  string
}

// New создаёт мод
func New() *Plugin {
	return &Plugin{}
}

var _ plugin.Plugin = (*Plugin)(nil)

func (p *Plugin) Name() string { return Name }

// Setup компилирует фильтр чата из конфигурации и подписывается на события
func (p *Plugin) Setup(ctx *plugin.Context) error {
	p.logger = ctx.Logger()

	chat := ctx.Config().Chat
	p.blocked = p.blocked[:0]
	for _, pattern := range chat.BlockedPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return fmt.Errorf("шаблон фильтра чата %q: %w", pattern, err)
		}
		p.blocked = append(p.blocked, g)
	}
	p.prefix = chat.AnnouncementPrefix

	src := ctx.Events()
	gameevent.Subscribe(src, gameevent.PriorityNormal, p.onJoin)
	gameevent.Subscribe(src, gameevent.PriorityNormal, p.onQuit)
	gameevent.Subscribe(src, gameevent.PriorityEarly, p.onChat)
	gameevent.Subscribe(src, gameevent.PriorityLate, p.onMove)

	p.logger.Info("Event Example загружен, фильтров чата: %d", len(p.blocked))
	return nil
}

func (p *Plugin) Teardown(ctx *plugin.Context) error {
	p.logger.Info("Event Example выгружается")
	return nil
}
