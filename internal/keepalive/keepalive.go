// Package keepalive serves the HTTP endpoint hosting platforms poll to decide
// whether the process is still alive.
package keepalive

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr    string
	engine  *gin.Engine
	logger  *zap.SugaredLogger
	started time.Time
	ready   atomic.Bool

	// Now defaults to time.Now.
	Now func() time.Time
}

type Health struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Ready  bool   `json:"ready"`
}

func New(port string, logger *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:    net.JoinHostPort("", port),
		engine:  gin.New(),
		logger:  logger,
		started: time.Now(),
	}

	s.engine.Use(gin.Recovery(), s.logRequests)
	s.engine.GET("/", s.alive)
	s.engine.HEAD("/", s.alive)
	s.engine.GET("/healthz", s.health)
	return s
}

// SetReady records whether the bot has connected to the gateway.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) Handler() http.Handler {
	return s.engine.Handler()
}

func (s *Server) alive(c *gin.Context) {
	c.String(http.StatusOK, "Bot is alive!")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, Health{
		Status: "ok",
		Uptime: s.now().Sub(s.started).Truncate(time.Second).String(),
		Ready:  s.ready.Load(),
	})
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debugw("Keep-alive request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Keep-alive server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "keep-alive server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down keep-alive server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "keep-alive server")
	}
	return nil
}
