package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mbenkhaled/telerag/session"
	"github.com/mbenkhaled/telerag/session/session_models"
)

// SessionsHandler renders and clears conversation transcripts.
type SessionsHandler struct {
	Sessions session.Store
}

func (h *SessionsHandler) Register(g *echo.Group) {
	g.GET("/sessions/:id", h.get)
	g.DELETE("/sessions/:id/history", h.clear)
}

type sourceView struct {
	RecordID   int64   `json:"record_id"`
	DialogueID string  `json:"dialogue_id"`
	Preview    string  `json:"preview"`
	Similarity float64 `json:"similarity"`
}

type turnView struct {
	Role    string       `json:"role"`
	Content string       `json:"content"`
	Sources []sourceView `json:"sources,omitempty"`
}

type transcriptResponse struct {
	SessionID string     `json:"session_id"`
	Turns     []turnView `json:"turns"`
}

func (h *SessionsHandler) get(c echo.Context) error {
	sess, err := h.Sessions.GetSession(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	turns, err := sess.Turns()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read transcript")
	}

	resp := transcriptResponse{SessionID: sess.ID(), Turns: make([]turnView, 0, len(turns))}
	for _, turn := range turns {
		view := turnView{Role: string(turn.Role), Content: turn.Content}
		for _, src := range turn.Sources {
			view.Sources = append(view.Sources, sourceView{
				RecordID:   src.RecordID,
				DialogueID: src.DialogueID,
				Preview:    session_models.Snippet(src.Content),
				Similarity: src.Similarity,
			})
		}
		resp.Turns = append(resp.Turns, view)
	}
	return c.JSON(http.StatusOK, resp)
}

// clear wipes the transcript. Explicit and irreversible.
func (h *SessionsHandler) clear(c echo.Context) error {
	sess, err := h.Sessions.GetSession(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if err := sess.Clear(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear transcript")
	}
	return c.NoContent(http.StatusNoContent)
}
