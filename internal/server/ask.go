package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mbenkhaled/telerag/internal/rag"
	"github.com/mbenkhaled/telerag/internal/store"
	"github.com/mbenkhaled/telerag/internal/telemetry"
	"github.com/mbenkhaled/telerag/session"
	"github.com/mbenkhaled/telerag/session/session_models"
)

// The reference UI exposes top_k as a 1-10 slider; the API enforces the same
// bounds even though the core accepts any positive value.
const (
	maxTopK      = 10
	maxMaxTokens = 1000
)

type asker interface {
	Ask(ctx context.Context, question string, opts rag.QueryOptions) (rag.Answer, error)
}

// AskHandler runs the question pipeline and records both turns on the session
// transcript.
type AskHandler struct {
	Orchestrator asker
	Sessions     session.Store
	TTL          time.Duration
	Metrics      *telemetry.Metrics
}

func (h *AskHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
}

type askRequest struct {
	Question    string   `json:"question"`
	SessionID   string   `json:"session_id,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

type askResponse struct {
	SessionID string               `json:"session_id"`
	Answer    string               `json:"answer"`
	Sources   []store.SearchResult `json:"sources"`
}

func (h *AskHandler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	opts := rag.DefaultOptions()
	if req.TopK != nil {
		if *req.TopK < 1 || *req.TopK > maxTopK {
			return echo.NewHTTPError(http.StatusBadRequest, "top_k must be between 1 and 10")
		}
		opts.TopK = *req.TopK
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "temperature must be between 0 and 1")
		}
		opts.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		if *req.MaxTokens < 1 || *req.MaxTokens > maxMaxTokens {
			return echo.NewHTTPError(http.StatusBadRequest, "max_tokens must be between 1 and 1000")
		}
		opts.MaxTokens = *req.MaxTokens
	}

	sess, err := h.Sessions.EnsureSession(req.SessionID, h.TTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	if err := sess.Append(session_models.Turn{Role: session_models.RoleUser, Content: req.Question}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record question")
	}

	answer, err := h.Orchestrator.Ask(c.Request().Context(), req.Question, opts)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.Questions.WithLabelValues(telemetry.OutcomeError).Inc()
		}
		return echo.NewHTTPError(http.StatusBadGateway, "failed to process question")
	}
	if h.Metrics != nil {
		outcome := telemetry.OutcomeAnswered
		if len(answer.Sources) == 0 {
			outcome = telemetry.OutcomeNoResults
		}
		h.Metrics.Questions.WithLabelValues(outcome).Inc()
	}

	if err := sess.Append(session_models.Turn{
		Role:    session_models.RoleAssistant,
		Content: answer.Answer,
		Sources: answer.Sources,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record answer")
	}

	sources := answer.Sources
	if sources == nil {
		sources = []store.SearchResult{}
	}
	return c.JSON(http.StatusOK, askResponse{
		SessionID: sess.ID(),
		Answer:    answer.Answer,
		Sources:   sources,
	})
}
