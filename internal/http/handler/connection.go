package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradematch.app/linkup/common/id"
	"tradematch.app/linkup/internal/http/dto"
	"tradematch.app/linkup/internal/http/middleware"
	"tradematch.app/linkup/internal/idempotency"
	"tradematch.app/linkup/internal/service"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	maxBodyBytes         = 1 << 20

	createEndpoint = "POST /connections"
)

type ConnectionHandler struct {
	connections service.ConnectionService
	idempotency idempotency.Store
}

// NewConnectionHandler builds the handler. idem may be nil to disable
// Idempotency-Key support.
func NewConnectionHandler(connections service.ConnectionService, idem idempotency.Store) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, idempotency: idem}
}

func (h *ConnectionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	scope := idempotency.Scope{
		UserID:   user.ID,
		Endpoint: createEndpoint,
		Key:      c.GetHeader(IdempotencyKeyHeader),
	}
	if h.idempotency != nil {
		rec, replayed, err := idempotency.Replay(ctx, h.idempotency, scope)
		switch {
		case errors.Is(err, idempotency.ErrKeyTooLong):
			writeError(c, http.StatusBadRequest, dto.CodeValidation, err.Error(), nil)
			return
		case err != nil:
			slog.WarnContext(ctx, "idempotency lookup failed, processing request", "error", err)
		case replayed:
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
			return
		}
	}

	body, err := readBody(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	req, err := dto.DecodeCreateConnection(body)
	if err != nil {
		respondBindError(c, err)
		return
	}

	conn, err := h.connections.Create(ctx, user.ID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := json.Marshal(dto.ToConnectionResponse(conn))
	if err != nil {
		respondError(c, err)
		return
	}
	if h.idempotency != nil {
		if err := idempotency.Save(ctx, h.idempotency, scope, http.StatusCreated, out); err != nil {
			slog.WarnContext(ctx, "failed to record idempotent response", "error", err)
		}
	}

	c.Data(http.StatusCreated, "application/json; charset=utf-8", out)
}

func (h *ConnectionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	var query dto.ListConnectionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	conns, err := h.connections.List(ctx, user.ID, service.ListConnectionsParams{
		Status: query.Status,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConnectionResponses(conns))
}

func (h *ConnectionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	connID, err := id.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrConnectionNotFound)
		return
	}

	conn, err := h.connections.Get(ctx, user.ID, connID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConnectionResponse(conn))
}

func (h *ConnectionHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	connID, err := id.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrConnectionNotFound)
		return
	}

	body, err := readBody(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	req, err := dto.DecodeUpdateStatus(body)
	if err != nil {
		respondBindError(c, err)
		return
	}

	conn, err := h.connections.UpdateStatus(ctx, user.ID, connID, service.StatusChange{
		Status:         req.Status,
		Note:           req.Note,
		ExpectedStatus: req.ExpectedStatus,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConnectionResponse(conn))
}

func (h *ConnectionHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CreateConnectionSchema())
}

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
}
