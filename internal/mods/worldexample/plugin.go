// Package worldexample мод с командами правки мира: /setblock и массовые операции.
package worldexample

import (
	"errors"

	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/plugin"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// Name имя мода
const Name = "world-example"

// MaxEditVolume максимальный объём области для /fill и /hollow
const MaxEditVolume = 32768

// ErrNoWorld хост не предоставил сервис правок мира
var ErrNoWorld = errors.New("world-example: world edit service is not available")

// Plugin мод с командами правки мира
type Plugin struct {
	logger *logging.Logger
	edits  *worldedit.Service
}

// New создаёт мод
func New() *Plugin {
	return &Plugin{}
}

var _ plugin.Plugin = (*Plugin)(nil)

func (p *Plugin) Name() string { return Name }

// Setup регистрирует команды правки мира
func (p *Plugin) Setup(ctx *plugin.Context) error {
	p.logger = ctx.Logger()
	p.edits = ctx.WorldEdit()
	if p.edits == nil {
		return ErrNoWorld
	}

	for _, cmd := range p.commands() {
		if err := ctx.Commands().Register(cmd); err != nil {
			return err
		}
	}
	p.logger.Info("World Example загружен, команды: /setblock, /fill, /hollow, /replace, /clearcolumn, /top, /safe")
	return nil
}

func (p *Plugin) Teardown(ctx *plugin.Context) error {
	p.logger.Info("World Example выгружается")
	return nil
}
