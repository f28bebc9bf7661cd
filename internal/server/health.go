package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type counter interface {
	CountDialogues(ctx context.Context) (int64, error)
}

// HealthHandler reports liveness and the size of the indexed corpus. A count
// failure degrades the report but never the query path.
type HealthHandler struct {
	Store counter
}

type healthResponse struct {
	Status    string `json:"status"`
	Dialogues *int64 `json:"dialogues,omitempty"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	resp := healthResponse{Status: "ok"}
	if h.Store != nil {
		if count, err := h.Store.CountDialogues(c.Request().Context()); err == nil {
			resp.Dialogues = &count
		} else {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
