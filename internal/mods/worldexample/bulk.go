package worldexample

import (
	"context"
	"fmt"
	"math"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/editor"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

func (p *Plugin) commands() []*command.Command {
	return []*command.Command{
		p.setBlockCommand(),
		boxCommand("fill", "Fills a region with a block").Handle(p.fill),
		boxCommand("hollow", "Builds a hollow box of a block").Handle(p.hollow),
		command.New("replace", "Replaces blocks in your current chunk").
			WithRequiredArg("from").
			WithRequiredArg("to").
			Handle(p.replace),
		command.New("clearcolumn", "Removes every block in a column").
			WithRequiredArg("x").
			WithRequiredArg("z").
			Handle(p.clearColumn),
		command.New("top", "Shows the highest block in a column").
			WithRequiredArg("x").
			WithRequiredArg("z").
			Handle(p.top),
		command.New("safe", "Checks whether a player can stand at a position").
			WithRequiredArg("x").
			WithRequiredArg("y").
			WithRequiredArg("z").
			Handle(p.safe),
	}
}

func boxCommand(name, description string) *command.Command {
	return command.New(name, description).
		WithRequiredArg("x1").
		WithRequiredArg("y1").
		WithRequiredArg("z1").
		WithRequiredArg("x2").
		WithRequiredArg("y2").
		WithRequiredArg("z2").
		WithRequiredArg("blockType")
}

type boxEdit func(ctx context.Context, actor string, c1, c2 vec.Vec3, id block.BlockID) (editor.Result, error)

func (p *Plugin) fill(ctx context.Context, sender command.Sender, args command.Args) error {
	return p.box(ctx, sender, args, editor.OpFill, "Filled ", p.edits.Fill)
}

func (p *Plugin) hollow(ctx context.Context, sender command.Sender, args command.Args) error {
	return p.box(ctx, sender, args, editor.OpHollow, "Built a hollow box of ", p.edits.Hollow)
}

func (p *Plugin) box(ctx context.Context, sender command.Sender, args command.Args, op, verb string, run boxEdit) error {
	v, ok := parseInts(args, "x1", "y1", "z1", "x2", "y2", "z2")
	if !ok {
		sender.SendMessage(errorMsg(msgInvalidXYZ))
		return nil
	}
	c1 := vec.Vec3{X: v[0], Y: v[1], Z: v[2]}
	c2 := vec.Vec3{X: v[3], Y: v[4], Z: v[5]}

	r := editor.NewRegion(c1, c2)
	vol := r.Volume()
	if op == editor.OpHollow {
		vol = r.BoundaryVolume()
	}
	if vol > MaxEditVolume {
		sender.SendMessage(errorMsg(fmt.Sprintf("Region too large! %d blocks, maximum is %d.", vol, MaxEditVolume)))
		return nil
	}

	id, ok := parseBlock(sender, args.String("blockType"))
	if !ok {
		return nil
	}

	res, err := run(ctx, sender.Name(), c1, c2, id)
	if err != nil {
		reportEditError(sender, res.Changed, err)
		return nil
	}

	sender.SendMessage(text.Colored(verb, text.Green).Append(
		count(res.Changed),
		text.Colored(" blocks of ", text.Green),
		text.Colored(block.Name(id), text.Aqua),
	))
	p.logger.Info("%s: %s от %s, %s → %s, изменено %d", op, block.Name(id), sender.Name(), c1, c2, res.Changed)
	return nil
}

// replace работает в чанке, где стоит игрок
func (p *Plugin) replace(ctx context.Context, sender command.Sender, args command.Args) error {
	player, ok := command.AsPlayer(sender)
	if !ok {
		sender.SendMessage(errorMsg(msgPlayerOnly))
		return nil
	}
	from, ok := parseBlock(sender, args.String("from"))
	if !ok {
		return nil
	}
	to, ok := parseBlock(sender, args.String("to"))
	if !ok {
		return nil
	}

	loc := player.Location()
	chunk := vec.Vec3{X: int(math.Floor(loc.X())), Y: 0, Z: int(math.Floor(loc.Z()))}.ChunkCoords()

	res, err := p.edits.Replace(ctx, player.Name(), chunk, from, to)
	if err != nil {
		reportEditError(sender, res.Changed, err)
		return nil
	}

	sender.SendMessage(text.Colored("Replaced ", text.Green).Append(
		count(res.Changed),
		text.Colored(" ", text.Green),
		text.Colored(block.Name(from), text.Aqua),
		text.Colored(" with ", text.Green),
		text.Colored(block.Name(to), text.Aqua),
		text.Colored(" in chunk ", text.Green),
		text.Colored(chunk.String(), text.Yellow),
	))
	p.logger.Info("%s заменил %s на %s в чанке %s: %d", player.Name(), block.Name(from), block.Name(to), chunk, res.Changed)
	return nil
}

func (p *Plugin) clearColumn(ctx context.Context, sender command.Sender, args command.Args) error {
	xz, ok := parseInts(args, "x", "z")
	if !ok {
		sender.SendMessage(errorMsg(msgInvalidXZ))
		return nil
	}

	res, err := p.edits.ClearColumn(ctx, sender.Name(), xz[0], xz[1])
	if err != nil {
		reportEditError(sender, res.Changed, err)
		return nil
	}

	sender.SendMessage(text.Colored("Cleared ", text.Green).Append(
		count(res.Changed),
		text.Colored(" blocks in column ", text.Green),
		text.Colored(fmt.Sprintf("%d, %d", xz[0], xz[1]), text.Yellow),
	))
	return nil
}

func (p *Plugin) top(ctx context.Context, sender command.Sender, args command.Args) error {
	xz, ok := parseInts(args, "x", "z")
	if !ok {
		sender.SendMessage(errorMsg(msgInvalidXZ))
		return nil
	}

	y, found, err := p.edits.HighestSolid(ctx, xz[0], xz[1])
	if err != nil {
		reportEditError(sender, 0, err)
		return nil
	}

	column := text.Colored(fmt.Sprintf("%d, %d", xz[0], xz[1]), text.Yellow)
	if !found {
		sender.SendMessage(text.Colored("Column ", text.Gray).Append(column, text.Colored(" is empty", text.Gray)))
		return nil
	}
	sender.SendMessage(text.Colored("Highest block at ", text.Green).Append(
		column,
		text.Colored(" is at Y=", text.Green),
		count(y),
	))
	return nil
}

func (p *Plugin) safe(ctx context.Context, sender command.Sender, args command.Args) error {
	xyz, ok := parseInts(args, "x", "y", "z")
	if !ok {
		sender.SendMessage(errorMsg(msgInvalidXYZ))
		return nil
	}
	pos := vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}

	safe, err := p.edits.IsSafe(ctx, pos.X, pos.Y, pos.Z)
	if err != nil {
		reportEditError(sender, 0, err)
		return nil
	}

	if safe {
		sender.SendMessage(text.Colored("Position ", text.Green).Append(coords(pos), text.Colored(" is safe", text.Green)))
	} else {
		sender.SendMessage(text.Colored("Position ", text.Red).Append(coords(pos), text.Colored(" is not safe", text.Red)))
	}
	return nil
}
