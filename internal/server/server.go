package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/calendar"
	"github.com/username/daily-harmony/internal/export"
	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/profile"
)

// FortuneTeller produces the daily fortune text
type FortuneTeller interface {
	DailyFortune(ctx context.Context, birthDate, birthTime, targetDate string) (string, error)
}

// Deps bundles the services the handlers call
type Deps struct {
	Annotator *calendar.Annotator
	Source    calendar.Source
	Memos     *memo.Service
	Profiles  *profile.Service
	Exporter  *export.Exporter
	Fortune   FortuneTeller
	Location  *time.Location
}

// Server exposes the calendar, memos and profile as a JSON API
type Server struct {
	deps   Deps
	logger *zap.Logger
}

// New creates a new Server
func New(deps Deps, logger *zap.Logger) *Server {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Server{deps: deps, logger: logger}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/days/:date", s.GetDay)
		api.GET("/months/:year/:month", s.GetMonth)
		api.GET("/holidays/:year", s.GetHolidays)
		api.GET("/terms/:year", s.GetSolarTerms)

		api.GET("/memos", s.ListMemos)
		api.POST("/memos", s.CreateMemo)
		api.PATCH("/memos/:id/toggle", s.ToggleMemo)
		api.PUT("/memos/:id", s.UpdateMemo)
		api.DELETE("/memos/:id", s.DeleteMemo)

		api.GET("/profile", s.GetProfile)
		api.PUT("/profile", s.SaveProfile)

		api.GET("/biorhythm/:date", s.GetBiorhythm)
		api.GET("/fortune/:date", s.GetFortune)
		api.GET("/export.ics", s.ExportCalendar)
	}

	return r
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}
