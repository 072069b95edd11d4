package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/blockverse-mods/internal/editor"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// BoxRequest тело /api/edits/fill и /api/edits/hollow
type BoxRequest struct {
	Actor   string   `json:"actor"`
	Corner1 vec.Vec3 `json:"corner1"`
	Corner2 vec.Vec3 `json:"corner2"`
	Block   string   `json:"block" binding:"required"`
}

// ReplaceRequest тело /api/edits/replace
type ReplaceRequest struct {
	Actor string   `json:"actor"`
	Chunk vec.Vec2 `json:"chunk"`
	From  string   `json:"from" binding:"required"`
	To    string   `json:"to" binding:"required"`
}

// ColumnRequest тело /api/edits/clear-column
type ColumnRequest struct {
	Actor string `json:"actor"`
	X     int    `json:"x"`
	Z     int    `json:"z"`
}

// SetBlockRequest тело PUT /api/blocks/:x/:y/:z
type SetBlockRequest struct {
	Actor string `json:"actor"`
	Block string `json:"block" binding:"required"`
}

// EditResponse данные ответа изменяющей операции
type EditResponse struct {
	Op        string `json:"op"`
	Changed   int    `json:"changed"`
	NeedsSave bool   `json:"needs_save"`
}

const defaultActor = "rest"

func actorOr(actor string) string {
	if actor == "" {
		return defaultActor
	}
	return actor
}

// respondError переводит ошибку сервиса в HTTP-статус.
// Недогруженный чанк для чтения это 404, для записи 409 с частичным результатом.
func (rs *RestServer) respondError(c *gin.Context, err error, read bool, data interface{}) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, block.ErrUnknownBlock),
		errors.Is(err, worldedit.ErrOutOfRange),
		errors.Is(err, world.ErrOutOfWorld):
		status = http.StatusBadRequest
	case errors.Is(err, world.ErrChunkNotLoaded):
		status = http.StatusConflict
		if read {
			status = http.StatusNotFound
		}
	}
	if status == http.StatusInternalServerError {
		rs.logger.Error("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error(), Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: msg})
}

// intParams разбирает целочисленные параметры пути
func intParams(c *gin.Context, names ...string) ([]int, bool) {
	out := make([]int, len(names))
	for i, name := range names {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			badRequest(c, "параметр "+name+" должен быть целым числом")
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// handleGetBlock GET /api/blocks/:x/:y/:z
func (rs *RestServer) handleGetBlock(c *gin.Context) {
	p, ok := intParams(c, "x", "y", "z")
	if !ok {
		return
	}
	pos := vec.Vec3{X: p[0], Y: p[1], Z: p[2]}
	id, err := rs.edits.BlockAt(c.Request.Context(), pos)
	if err != nil {
		rs.respondError(c, err, true, nil)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "ok",
		Data:    gin.H{"position": pos, "block": block.Name(id), "id": id},
	})
}

// handleSetBlock PUT /api/blocks/:x/:y/:z
func (rs *RestServer) handleSetBlock(c *gin.Context) {
	p, ok := intParams(c, "x", "y", "z")
	if !ok {
		return
	}
	var req SetBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	id, err := block.ByName(req.Block)
	if err != nil {
		rs.respondError(c, err, false, nil)
		return
	}
	pos := vec.Vec3{X: p[0], Y: p[1], Z: p[2]}
	prev, err := rs.edits.SetBlock(c.Request.Context(), actorOr(req.Actor), pos, id)
	if err != nil {
		rs.respondError(c, err, false, nil)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "block updated",
		Data:    gin.H{"position": pos, "from": block.Name(prev), "to": block.Name(id)},
	})
}

// handleHighest GET /api/columns/:x/:z/highest
func (rs *RestServer) handleHighest(c *gin.Context) {
	p, ok := intParams(c, "x", "z")
	if !ok {
		return
	}
	y, found, err := rs.edits.HighestSolid(c.Request.Context(), p[0], p[1])
	if err != nil {
		rs.respondError(c, err, true, nil)
		return
	}
	data := gin.H{"x": p[0], "z": p[1], "found": found}
	if found {
		data["y"] = y
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: data})
}

// handleSafe GET /api/columns/:x/:z/safe?y=
func (rs *RestServer) handleSafe(c *gin.Context) {
	p, ok := intParams(c, "x", "z")
	if !ok {
		return
	}
	y, err := strconv.Atoi(c.Query("y"))
	if err != nil {
		badRequest(c, "параметр y должен быть целым числом")
		return
	}
	safe, err := rs.edits.IsSafe(c.Request.Context(), p[0], y, p[1])
	if err != nil {
		rs.respondError(c, err, true, nil)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "ok",
		Data:    gin.H{"x": p[0], "y": y, "z": p[1], "safe": safe},
	})
}

type boxOp func(ctx context.Context, actor string, c1, c2 vec.Vec3, id block.BlockID) (editor.Result, error)

// handleFill POST /api/edits/fill
func (rs *RestServer) handleFill(c *gin.Context) {
	rs.handleBox(c, editor.OpFill, rs.edits.Fill)
}

// handleHollow POST /api/edits/hollow
func (rs *RestServer) handleHollow(c *gin.Context) {
	rs.handleBox(c, editor.OpHollow, rs.edits.Hollow)
}

func (rs *RestServer) handleBox(c *gin.Context, op string, run boxOp) {
	var req BoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	id, err := block.ByName(req.Block)
	if err != nil {
		rs.respondError(c, err, false, nil)
		return
	}
	res, err := run(c.Request.Context(), actorOr(req.Actor), req.Corner1, req.Corner2, id)
	rs.respondEdit(c, op, res, err)
}

// handleReplace POST /api/edits/replace
func (rs *RestServer) handleReplace(c *gin.Context) {
	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	from, err := block.ByName(req.From)
	if err != nil {
		rs.respondError(c, err, false, nil)
		return
	}
	to, err := block.ByName(req.To)
	if err != nil {
		rs.respondError(c, err, false, nil)
		return
	}
	res, err := rs.edits.Replace(c.Request.Context(), actorOr(req.Actor), req.Chunk, from, to)
	rs.respondEdit(c, editor.OpReplace, res, err)
}

// handleClearColumn POST /api/edits/clear-column
func (rs *RestServer) handleClearColumn(c *gin.Context) {
	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	res, err := rs.edits.ClearColumn(c.Request.Context(), actorOr(req.Actor), req.X, req.Z)
	rs.respondEdit(c, editor.OpClearColumn, res, err)
}

func (rs *RestServer) respondEdit(c *gin.Context, op string, res editor.Result, err error) {
	data := EditResponse{Op: op, Changed: res.Changed, NeedsSave: res.NeedsSave}
	if err != nil {
		rs.respondError(c, err, false, data)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "edit applied", Data: data})
}

// handleAudit GET /api/audit?limit=
func (rs *RestServer) handleAudit(c *gin.Context) {
	if rs.audit == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "audit log disabled"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, "параметр limit должен быть неотрицательным целым")
			return
		}
		limit = v
	}
	records, err := rs.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		rs.respondError(c, err, true, nil)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: records})
}
