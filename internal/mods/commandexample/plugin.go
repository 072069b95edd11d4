// Package commandexample мод с командами /hello и /teleport.
package commandexample

import (
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/plugin"
)

// Name имя мода
const Name = "command-example"

// Plugin мод с примерами команд
type Plugin struct {
	logger *logging.Logger
}

// New создаёт мод
func New() *Plugin {
	return &Plugin{}
}

var _ plugin.Plugin = (*Plugin)(nil)

func (p *Plugin) Name() string { return Name }

// Setup регистрирует /hello и /teleport
func (p *Plugin) Setup(ctx *plugin.Context) error {
	p.logger = ctx.Logger()
	if err := ctx.Commands().Register(p.helloCommand()); err != nil {
		return err
	}
	if err := ctx.Commands().Register(p.teleportCommand()); err != nil {
		return err
	}
	p.logger.Info("Command Example загружен, команды: /hello, /teleport")
	return nil
}

func (p *Plugin) Teardown(ctx *plugin.Context) error {
	p.logger.Info("Command Example выгружается")
	return nil
}
