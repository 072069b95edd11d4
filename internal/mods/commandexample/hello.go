package commandexample

import (
	"context"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
)

func (p *Plugin) helloCommand() *command.Command {
	return command.New("hello", "Sends a friendly greeting").
		WithOptionalArg("player").
		Handle(p.hello)
}

func (p *Plugin) hello(ctx context.Context, sender command.Sender, args command.Args) error {
	target := args.String("player")
	if target == "" {
		sender.SendMessage(text.Colored("Hello, "+sender.Name()+"!", text.Green))
		p.logger.Info("%s использовал /hello", sender.Name())
		return nil
	}
	sender.SendMessage(text.Colored("Hello, "+target+"!", text.Green))
	p.logger.Info("%s поприветствовал %s через /hello", sender.Name(), target)
	return nil
}
