package http

import (
	"net/http"
	"strconv"

	"agriloan-backend/internal/domain/ledger"

	"github.com/labstack/echo/v4"
)

// LedgerHandler exposes read access to the public ledger.
type LedgerHandler struct{ client ledger.Client }

func NewLedgerHandler(client ledger.Client) *LedgerHandler { return &LedgerHandler{client: client} }

func (h *LedgerHandler) Count(c echo.Context) error {
	n, err := h.client.GetRecordCount(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n})
}

func (h *LedgerHandler) Record(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "id must be a non-negative integer"})
	}
	rec, err := h.client.GetRecord(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"record_id": id, "record": rec})
}
