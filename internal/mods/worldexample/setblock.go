package worldexample

import (
	"context"
	"errors"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

func (p *Plugin) setBlockCommand() *command.Command {
	return command.New("setblock", "Places a block at the specified coordinates").
		WithRequiredArg("x").
		WithRequiredArg("y").
		WithRequiredArg("z").
		WithRequiredArg("blockType").
		Handle(p.setBlock)
}

func (p *Plugin) setBlock(ctx context.Context, sender command.Sender, args command.Args) error {
	player, ok := command.AsPlayer(sender)
	if !ok {
		sender.SendMessage(errorMsg(msgPlayerOnly))
		return nil
	}

	xyz, ok := parseInts(args, "x", "y", "z")
	if !ok {
		sender.SendMessage(errorMsg(msgInvalidXYZ))
		return nil
	}
	pos := vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}

	if pos.Y < world.MinY || pos.Y > world.MaxY {
		sender.SendMessage(errorMsg(msgYRange))
		return nil
	}

	id, ok := parseBlock(sender, args.String("blockType"))
	if !ok {
		return nil
	}

	previous, err := p.edits.SetBlock(ctx, player.Name(), pos, id)
	if errors.Is(err, world.ErrChunkNotLoaded) {
		sender.SendMessage(errorMsg(msgChunkNotLoaded))
		return nil
	}
	if err != nil {
		sender.SendMessage(errorMsg("Failed to set block: " + err.Error()))
		p.logger.Error("Ошибка /setblock от %s: %v", player.Name(), err)
		return nil
	}

	sender.SendMessage(text.Colored("Block at ", text.Green).Append(
		coords(pos),
		text.Colored(" changed from ", text.Green),
		text.Colored(block.Name(previous), text.Aqua),
		text.Colored(" to ", text.Green),
		text.Colored(block.Name(id), text.Aqua),
	))
	p.logger.Info("%s поставил %s в %s", player.Name(), block.Name(id), pos)
	return nil
}
