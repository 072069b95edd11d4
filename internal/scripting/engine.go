// Package scripting выполняет Lua-скрипты, управляющие правками мира.
//
// Скрипту доступны глобальная таблица world (get, set, fill, hollow, replace,
// clear_column, highest, is_safe) и функция log. Блоки передаются по имени,
// ошибки правок поднимаются как ошибки Lua и прерывают скрипт.
package scripting

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/annel0/blockverse-mods/internal/editor"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// Engine Lua-окружение поверх сервиса правок. Не потокобезопасен.
type Engine struct {
	L      *lua.LState
	ctx    context.Context
	edits  *worldedit.Service
	actor  string
	logger *logging.Logger
}

// NewEngine создаёт окружение; правки записываются в журнал от имени actor
func NewEngine(ctx context.Context, edits *worldedit.Service, actor string, logger *logging.Logger) *Engine {
	e := &Engine{
		L:      lua.NewState(),
		ctx:    ctx,
		edits:  edits,
		actor:  actor,
		logger: logger,
	}
	e.L.SetContext(ctx)
	e.register()
	return e
}

// RunString выполняет исходный текст скрипта
func (e *Engine) RunString(src string) error {
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// RunFile выполняет скрипт из файла
func (e *Engine) RunFile(path string) error {
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("lua script %s: %w", path, err)
	}
	return nil
}

// Close освобождает Lua-состояние
func (e *Engine) Close() {
	e.L.Close()
}

func (e *Engine) register() {
	L := e.L
	L.SetGlobal("log", L.NewFunction(e.luaLog))
	L.SetGlobal("world", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get":          e.luaGet,
		"set":          e.luaSet,
		"fill":         e.luaFill,
		"hollow":       e.luaHollow,
		"replace":      e.luaReplace,
		"clear_column": e.luaClearColumn,
		"highest":      e.luaHighest,
		"is_safe":      e.luaIsSafe,
	}))
}

func checkVec3(L *lua.LState, first int) vec.Vec3 {
	return vec.Vec3{X: L.CheckInt(first), Y: L.CheckInt(first + 1), Z: L.CheckInt(first + 2)}
}

func checkBlock(L *lua.LState, n int) block.BlockID {
	name := L.CheckString(n)
	id, err := block.ByName(name)
	if err != nil {
		L.ArgError(n, "unknown block type "+name)
	}
	return id
}

// log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.logger.Info("[lua] %s", L.CheckString(1))
	return 0
}

// world.get(x, y, z) -> name
func (e *Engine) luaGet(L *lua.LState) int {
	id, err := e.edits.BlockAt(e.ctx, checkVec3(L, 1))
	if err != nil {
		L.RaiseError("world.get: %v", err)
		return 0
	}
	L.Push(lua.LString(block.Name(id)))
	return 1
}

// world.set(x, y, z, name) -> previous name
func (e *Engine) luaSet(L *lua.LState) int {
	pos := checkVec3(L, 1)
	id := checkBlock(L, 4)
	prev, err := e.edits.SetBlock(e.ctx, e.actor, pos, id)
	if err != nil {
		L.RaiseError("world.set: %v", err)
		return 0
	}
	L.Push(lua.LString(block.Name(prev)))
	return 1
}

// world.fill(x1, y1, z1, x2, y2, z2, name) -> changed
func (e *Engine) luaFill(L *lua.LState) int {
	return e.box(L, "world.fill", e.edits.Fill)
}

// world.hollow(x1, y1, z1, x2, y2, z2, name) -> changed
func (e *Engine) luaHollow(L *lua.LState) int {
	return e.box(L, "world.hollow", e.edits.Hollow)
}

func (e *Engine) box(L *lua.LState, fn string, run func(context.Context, string, vec.Vec3, vec.Vec3, block.BlockID) (editor.Result, error)) int {
	c1 := checkVec3(L, 1)
	c2 := checkVec3(L, 4)
	id := checkBlock(L, 7)
	res, err := run(e.ctx, e.actor, c1, c2, id)
	return e.pushResult(L, fn, res, err)
}

// world.replace(chunkX, chunkZ, from, to) -> changed
func (e *Engine) luaReplace(L *lua.LState) int {
	chunk := vec.Vec2{X: L.CheckInt(1), Z: L.CheckInt(2)}
	from := checkBlock(L, 3)
	to := checkBlock(L, 4)
	res, err := e.edits.Replace(e.ctx, e.actor, chunk, from, to)
	return e.pushResult(L, "world.replace", res, err)
}

// world.clear_column(x, z) -> changed
func (e *Engine) luaClearColumn(L *lua.LState) int {
	res, err := e.edits.ClearColumn(e.ctx, e.actor, L.CheckInt(1), L.CheckInt(2))
	return e.pushResult(L, "world.clear_column", res, err)
}

// world.highest(x, z) -> y или nil
func (e *Engine) luaHighest(L *lua.LState) int {
	y, found, err := e.edits.HighestSolid(e.ctx, L.CheckInt(1), L.CheckInt(2))
	if err != nil {
		L.RaiseError("world.highest: %v", err)
		return 0
	}
	if !found {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(y))
	return 1
}

// world.is_safe(x, y, z) -> bool
func (e *Engine) luaIsSafe(L *lua.LState) int {
	pos := checkVec3(L, 1)
	safe, err := e.edits.IsSafe(e.ctx, pos.X, pos.Y, pos.Z)
	if err != nil {
		L.RaiseError("world.is_safe: %v", err)
		return 0
	}
	L.Push(lua.LBool(safe))
	return 1
}

func (e *Engine) pushResult(L *lua.LState, fn string, res editor.Result, err error) int {
	if err != nil {
		L.RaiseError("%s: %v (changed %d)", fn, err, res.Changed)
		return 0
	}
	L.Push(lua.LNumber(res.Changed))
	return 1
}
