// Package rpc serves the JSON-RPC endpoint of the budget agent.
package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kobo-labs/budget-agent/internal/a2a"
	"github.com/kobo-labs/budget-agent/internal/agent"
	apperrors "github.com/kobo-labs/budget-agent/internal/errors"
)

// Path is the JSON-RPC endpoint route.
const Path = "/a2a/budget"

// Handler decodes JSON-RPC requests, delegates to the agent and shapes the
// reply. Any failure becomes a JSON-RPC error response; nothing crashes the
// process.
type Handler struct {
	agent  *agent.Agent
	errors *apperrors.Handler
	log    *slog.Logger
}

// NewHandler constructs the RPC handler.
func NewHandler(budgetAgent *agent.Agent, errHandler *apperrors.Handler, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{agent: budgetAgent, errors: errHandler, log: log}
}

// Register mounts the RPC route on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST(Path, h.Serve)
}

// Serve handles one JSON-RPC request.
func (h *Handler) Serve(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest,
			a2a.ErrorResponse(nil, a2a.NewError(a2a.CodeParseError, "could not read request body", nil)))
	}

	var req a2a.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest,
			a2a.ErrorResponse(nil, a2a.NewError(a2a.CodeParseError, "parse error", nil)))
	}

	if req.JSONRPC != "" && req.JSONRPC != a2a.Version {
		return c.JSON(http.StatusBadRequest,
			a2a.ErrorResponse(req.ID, a2a.NewError(a2a.CodeInvalidRequest, "unsupported jsonrpc version", nil)))
	}
	if req.Method == "" {
		return c.JSON(http.StatusBadRequest,
			a2a.ErrorResponse(req.ID, a2a.NewError(a2a.CodeInvalidRequest, "method is required", nil)))
	}

	batch, rpcErr := a2a.NormalizeParams(req.Method, req.Params)
	if rpcErr != nil {
		h.errors.Handle(c.Request().Context(), apperrors.NewValidationError(rpcErr.Message))
		return c.JSON(http.StatusBadRequest, a2a.ErrorResponse(req.ID, rpcErr))
	}

	result, err := h.agent.ProcessMessages(c.Request().Context(), batch)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyBatch) {
			return c.JSON(http.StatusBadRequest,
				a2a.ErrorResponse(req.ID, a2a.NewError(a2a.CodeInvalidParams, "message batch is empty", nil)))
		}

		userMessage, _ := h.errors.Handle(c.Request().Context(), err)
		return c.JSON(http.StatusInternalServerError,
			a2a.ErrorResponse(req.ID, a2a.NewError(a2a.CodeInternalError, "Internal error", userMessage)))
	}

	return c.JSON(http.StatusOK, a2a.SuccessResponse(req.ID, result))
}
