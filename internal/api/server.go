// Package api serves the journal, watchlist, analytics and sharing
// operations as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tradedesk/internal/desk"
)

// Server is the HTTP API over a Desk.
type Server struct {
	desk   *desk.Desk
	logger zerolog.Logger
	engine *gin.Engine
}

// NewServer creates the API server and registers its routes.
func NewServer(d *desk.Desk, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		desk:   d,
		logger: logger.With().Str("component", "api").Logger(),
		engine: gin.New(),
	}
	s.engine.Use(requestLogger(s.logger), gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	trades := api.Group("/trades")
	trades.GET("", s.handleListTrades)
	trades.POST("", s.handleAddTrade)
	trades.PATCH("/:id", s.handleUpdateTrade)
	trades.DELETE("/:id", s.handleRemoveTrade)

	analytics := api.Group("/analytics")
	analytics.GET("", s.handleAnalytics)
	analytics.GET("/heatmap", s.handleHeatmap)
	analytics.GET("/calendar", s.handleCalendar)

	watchlist := api.Group("/watchlist")
	watchlist.GET("", s.handleListStocks)
	watchlist.POST("", s.handleAddStock)
	watchlist.POST("/refresh", s.handleRefresh)
	watchlist.PATCH("/:id", s.handleUpdateStock)
	watchlist.DELETE("/:id", s.handleRemoveStock)

	api.GET("/quote/:symbol", s.handleQuote)

	api.POST("/share", s.handleShare)
	api.GET("/share/:id", s.handleOpenShare)

	api.GET("/strategies", s.handleStrategies)
	api.GET("/tags", s.handleTags)
	api.GET("/sync", s.handleSyncStatus)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info().Msg("API shutting down")
	return srv.Shutdown(shutdownCtx)
}
