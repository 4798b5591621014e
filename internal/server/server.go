/*
Package server provides the thin HTTP layer over the swarm engine.

It validates incoming records at the boundary and funnels them into the
engine's two entry points; it never alters the numeric contracts.
*/
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quitswarm/quitswarm/internal/memory"
	"github.com/quitswarm/quitswarm/internal/search"
	"github.com/quitswarm/quitswarm/internal/swarm"
)

// Server exposes the swarm engine over HTTP.
type Server struct {
	echo   *echo.Echo
	engine *swarm.Engine
	addr   string
}

// New creates an HTTP server bound to the given engine.
func New(engine *swarm.Engine, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Printf("%s %s -> %d (%s)",
				c.Request().Method, c.Request().RequestURI,
				c.Response().Status, time.Since(start))
			return err
		}
	})

	s := &Server{
		echo:   e,
		engine: engine,
		addr:   addr,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/decide", s.handleDecide)
	v1.POST("/feedback", s.handleFeedback)
	v1.GET("/weights", s.handleWeights)
	v1.GET("/cases/search", s.handleCaseSearch)
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// DecideRequest is the request body for POST /api/v1/decide.
type DecideRequest struct {
	Input  memory.Input `json:"input"`
	CaseID string       `json:"case_id,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// WeightsResponse is the response body for GET /api/v1/weights.
type WeightsResponse struct {
	AgentWeights   map[string]float64          `json:"agent_weights"`
	AgentScorecard map[string]memory.Scorecard `json:"agent_scorecard"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleDecide(c echo.Context) error {
	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := req.Input.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	decision, err := s.engine.Decide(c.Request().Context(), req.Input, req.CaseID)
	if err != nil {
		log.Printf("Warning: decide failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist decision")
	}

	return c.JSON(http.StatusOK, decision)
}

func (s *Server) handleFeedback(c echo.Context) error {
	var fb memory.Feedback
	if err := c.Bind(&fb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := fb.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.engine.SubmitFeedback(fb)
	if err != nil {
		log.Printf("Warning: feedback failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist feedback")
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleWeights(c echo.Context) error {
	return c.JSON(http.StatusOK, WeightsResponse{
		AgentWeights:   s.engine.Weights(),
		AgentScorecard: s.engine.Scorecard(),
	})
}

func (s *Server) handleCaseSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	indexer, err := search.NewIndexer()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build case index")
	}
	defer indexer.Close()

	if err := indexer.IndexCases(s.engine.Cases()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to index cases")
	}

	results, err := indexer.Search(query, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, results)
}
