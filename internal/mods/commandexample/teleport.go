package commandexample

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
)

func (p *Plugin) teleportCommand() *command.Command {
	return command.New("teleport", "Teleports you to the specified coordinates").
		WithRequiredArg("x").
		WithRequiredArg("y").
		WithRequiredArg("z").
		Handle(p.teleport)
}

func (p *Plugin) teleport(ctx context.Context, sender command.Sender, args command.Args) error {
	player, ok := command.AsPlayer(sender)
	if !ok {
		sender.SendMessage(text.Colored("This command can only be used by players!", text.Red))
		return nil
	}

	var target mgl64.Vec3
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(args.String(name), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			sender.SendMessage(text.Colored("Invalid coordinates! Please provide numeric values.", text.Red))
			return nil
		}
		target[i] = v
	}

	if err := player.Teleport(target); err != nil {
		sender.SendMessage(text.Colored("Failed to teleport: "+err.Error(), text.Red))
		p.logger.Error("Ошибка телепортации %s: %v", player.Name(), err)
		return nil
	}

	player.SendMessage(text.Colored("Teleported to ", text.Green).Append(
		text.Colored(fmt.Sprintf("%.1f, %.1f, %.1f", target.X(), target.Y(), target.Z()), text.Yellow),
	))
	p.logger.Info("%s телепортировался в %v, %v, %v", player.Name(), target.X(), target.Y(), target.Z())
	return nil
}
