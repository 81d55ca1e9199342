package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/mohammad-safakhou/tradeops/config"
	"github.com/mohammad-safakhou/tradeops/internal/pipeline"
	"github.com/mohammad-safakhou/tradeops/internal/planner"
	"github.com/mohammad-safakhou/tradeops/internal/report"
	"github.com/mohammad-safakhou/tradeops/internal/session"
	"github.com/mohammad-safakhou/tradeops/internal/telemetry"
	"github.com/mohammad-safakhou/tradeops/provider"
	"github.com/mohammad-safakhou/tradeops/tools/web_fetch"
	"github.com/mohammad-safakhou/tradeops/tools/web_search"
)

// Server holds the handlers' dependencies. Tests construct it directly
// with fakes; Run wires the real implementations from config.
type Server struct {
	Sessions   session.Store
	Pipeline   *pipeline.Pipeline
	Metrics    *telemetry.Metrics
	Logger     *log.Logger
	ReportsDir string
}

// Register mounts the API routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/auth/guest", s.guestAuth)
	e.GET("/analyze/:sector", s.analyze)
}

// Run builds the full service from config and serves until the listener
// fails.
func Run(cfg *appconfig.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
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
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		registry := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(registry)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	pipeLogger := log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)

	sessions, err := session.NewStore(cfg.Session, cfg.Redis)
	if err != nil {
		return err
	}

	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.Timeout)
	if err != nil {
		return err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Type), cfg.Fetch.Timeout)
	if err != nil {
		return err
	}

	// a missing API key is not fatal: the pipeline runs in degraded mode
	// with the default plan and the local report renderer
	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		if !errors.Is(err, provider.ErrNoAPIKey) {
			return err
		}
		pipeLogger.Printf("no LLM API key configured; planning and synthesis use local fallbacks")
		llm = nil
	}

	srv := &Server{
		Sessions: sessions,
		Pipeline: &pipeline.Pipeline{
			Search:      searcher,
			Fetcher:     fetcher,
			Planner:     &planner.Planner{LLM: llm, Logger: pipeLogger},
			Synthesizer: report.NewSynthesizer(llm, pipeLogger),
			Metrics:     metrics,
			Logger:      pipeLogger,
			MaxResults:  cfg.Search.MaxResults,
			MaxTargets:  cfg.Fetch.MaxTargets,
			MaxChars:    cfg.Fetch.MaxChars,
		},
		Metrics:    metrics,
		Logger:     baseLogger,
		ReportsDir: cfg.Reports.Dir,
	}
	srv.Register(e)

	return e.Start(cfg.Server.Address)
}
