package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/blockverse-mods/internal/command"
)

const consoleHelp = `Console commands:
  /<command> [args]     run a command as the active player
  .join <name>          join a player and make them active
  .quit                 disconnect the active player
  .as <name>            switch the active player
  .move <x> <y> <z>     move the active player
  .console /<command>   run a command as the console
  .players              list online players
  .exit                 stop the host
Anything else is sent to chat as the active player.`

// ErrExit возвращается Execute на .exit
var ErrExit = errors.New("console exit")

// RunConsole читает строки из in и выполняет их до EOF, .exit или отмены ctx
func (h *Host) RunConsole(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	h.out.printf("%s\n", consoleHelp)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := h.Execute(ctx, line); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				h.out.printf("! %v\n", err)
			}
		}
	}
}

// Execute выполняет одну строку консоли
func (h *Host) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "/"):
		p := h.Active()
		if p == nil {
			return errors.New("no active player, use .join <name>")
		}
		return h.dispatch(ctx, p, line)
	case strings.HasPrefix(line, "."):
		return h.consoleCommand(ctx, line)
	default:
		p := h.Active()
		if p == nil {
			return errors.New("no active player, use .join <name>")
		}
		h.Chat(p, line)
		return nil
	}
}

// dispatch выполняет команду; о пользовательских ошибках отправитель уже уведомлён
func (h *Host) dispatch(ctx context.Context, sender command.Sender, line string) error {
	err := h.Dispatch(ctx, sender, line)
	if err == nil || errors.Is(err, command.ErrUnknownCommand) || errors.Is(err, command.ErrUsage) {
		return nil
	}
	h.logger.Debug("Команда %q от %s: %v", line, sender.Name(), err)
	return nil
}

func (h *Host) consoleCommand(ctx context.Context, line string) error {
	args, err := shellwords.SplitPosix(line)
	if err != nil {
		return fmt.Errorf("invalid syntax: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	switch name, rest := args[0], args[1:]; name {
	case ".help":
		h.out.printf("%s\n", consoleHelp)
		return nil

	case ".exit":
		return ErrExit

	case ".join":
		if len(rest) != 1 {
			return errors.New("usage: .join <name>")
		}
		p, err := h.Join(ctx, rest[0])
		if err != nil {
			return err
		}
		return h.SetActive(p.Name())

	case ".quit":
		p := h.Active()
		if p == nil {
			return errors.New("no active player")
		}
		return h.Quit(ctx, p.Name())

	case ".as":
		if len(rest) != 1 {
			return errors.New("usage: .as <name>")
		}
		return h.SetActive(rest[0])

	case ".move":
		p := h.Active()
		if p == nil {
			return errors.New("no active player")
		}
		to, err := parseVec3(rest)
		if err != nil {
			return err
		}
		moved, err := h.Move(p, to)
		if err != nil {
			return err
		}
		if moved {
			loc := p.Location()
			h.out.printf("%s is now at %.1f, %.1f, %.1f\n", p.Name(), loc.X(), loc.Y(), loc.Z())
		}
		return nil

	case ".console":
		if len(rest) == 0 {
			return errors.New("usage: .console /<command>")
		}
		cmdLine := strings.TrimSpace(strings.TrimPrefix(line, ".console"))
		if !strings.HasPrefix(cmdLine, "/") {
			cmdLine = "/" + cmdLine
		}
		return h.dispatch(ctx, h.console, cmdLine)

	case ".players":
		players := h.Players()
		if len(players) == 0 {
			h.out.printf("No players online\n")
			return nil
		}
		active := h.Active()
		for _, p := range players {
			marker := " "
			if p == active {
				marker = "*"
			}
			loc := p.Location()
			h.out.printf("%s %s [%.1f, %.1f, %.1f]\n", marker, p.Name(), loc.X(), loc.Y(), loc.Z())
		}
		return nil

	default:
		return fmt.Errorf("unknown console command %s, try .help", name)
	}
}

func parseVec3(args []string) (mgl64.Vec3, error) {
	if len(args) != 3 {
		return mgl64.Vec3{}, errors.New("usage: .move <x> <y> <z>")
	}
	var v mgl64.Vec3
	for i, raw := range args {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return mgl64.Vec3{}, fmt.Errorf("invalid coordinate %q", raw)
		}
		v[i] = f
	}
	return v, nil
}
