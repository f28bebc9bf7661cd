package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mbenkhaled/telerag/config"
	"github.com/mbenkhaled/telerag/internal/rag"
	"github.com/mbenkhaled/telerag/internal/store"
	"github.com/mbenkhaled/telerag/internal/telemetry"
	"github.com/mbenkhaled/telerag/provider"
	"github.com/mbenkhaled/telerag/session"
)

// Run wires the pipeline dependencies once at startup and serves the HTTP API.
// A configuration error here is fatal: the service refuses to serve any query.
func Run(cfg *config.Config) error {
	ctx := context.Background()

	st, err := store.NewWithDSN(ctx, cfg.Database.DSN(), cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("dialogue store unreachable: %w", err)
	}
	defer st.Close()

	llm, err := provider.NewProvider(provider.OpenAICompatible, cfg.LLM)
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics("telerag")
	ragLogger := log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	orch := rag.NewOrchestrator(llm, st, llm, ragLogger, metrics)

	e := newEcho()

	e.GET("/healthz", (&HealthHandler{Store: st}).Health)
	e.GET("/metrics", echo.WrapHandler(telemetry.MetricsHandler()))

	api := e.Group("/api")
	ah := &AskHandler{Orchestrator: orch, Sessions: sessions, TTL: cfg.Session.TTL, Metrics: metrics}
	ah.Register(api)
	sh := &SessionsHandler{Sessions: sessions}
	sh.Register(api)

	log.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}

// newEcho builds the echo instance with the shared middleware stack and the
// unified JSON error handler.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	return e
}
