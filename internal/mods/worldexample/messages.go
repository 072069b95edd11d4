package worldexample

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

const (
	msgPlayerOnly     = "This command can only be used by players!"
	msgInvalidXYZ     = "Invalid coordinates! X, Y, Z must be integers."
	msgInvalidXZ      = "Invalid coordinates! X and Z must be integers."
	msgYRange         = "Y coordinate must be between 0 and 255!"
	msgChunkNotLoaded = "Chunk not loaded at those coordinates!"
	msgBlockExamples  = "\nExamples: stone, dirt, grass_block, oak_log"
)

func errorMsg(s string) text.Component {
	return text.Colored(s, text.Red)
}

// parseInts разбирает аргументы names как целые числа
func parseInts(args command.Args, names ...string) ([]int, bool) {
	out := make([]int, len(names))
	for i, name := range names {
		v, err := strconv.Atoi(args.String(name))
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// parseBlock ищет тип блока; при ошибке отправляет подсказку с примерами
func parseBlock(sender command.Sender, name string) (block.BlockID, bool) {
	id, err := block.ByName(name)
	if err != nil {
		sender.SendMessage(errorMsg("Unknown block type: " + name).Append(
			text.Colored(msgBlockExamples, text.Gray),
		))
		return block.AirBlockID, false
	}
	return id, true
}

func coords(pos vec.Vec3) text.Component {
	return text.Colored(pos.String(), text.Yellow)
}

func count(n int) text.Component {
	return text.Colored(strconv.Itoa(n), text.Yellow)
}

// reportEditError переводит ошибку правки в сообщение пользователю.
// changed: сколько блоков успело измениться до сбоя.
func reportEditError(sender command.Sender, changed int, err error) {
	var msg text.Component
	switch {
	case errors.Is(err, world.ErrChunkNotLoaded):
		msg = errorMsg(msgChunkNotLoaded)
	default:
		msg = errorMsg("Failed to edit world: " + err.Error())
	}
	if changed > 0 {
		msg = msg.Append(text.Colored(fmt.Sprintf(" (%d blocks changed before stopping)", changed), text.Gray))
	}
	sender.SendMessage(msg)
}
