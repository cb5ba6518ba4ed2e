package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/config"
	"github.com/tupyy/hcam-agent/internal/server/middlewares"
)

const apiV1 string = "/api/v1"

type Server struct {
	srv    *http.Server
	engine *gin.Engine
}

func NewServer(cfg config.Server, registerHandlerFn func(router *gin.RouterGroup)) *Server {
	gin.SetMode(gin.DebugMode)
	if config.ServerModeType(cfg.ServerMode) == config.ServerModeProd {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.S().Desugar(), true),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	registerHandlerFn(engine.Group(apiV1))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{srv: srv, engine: engine}
}

// Handler returns the router, for tests.
func (r *Server) Handler() http.Handler {
	return r.engine
}

// Start binds the listener and serves until Stop is called.
func (r *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.srv.Addr)
	if err != nil {
		zap.S().Named("http").Errorw("failed to listen", "address", r.srv.Addr, "error", err)
		return err
	}
	r.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	zap.S().Named("http").Infow("http server listening", "address", ln.Addr().String())
	return r.srv.Serve(ln)
}

func (r *Server) Stop(ctx context.Context) {
	if err := r.srv.Shutdown(ctx); err != nil {
		zap.S().Named("http").Errorw("server shutdown", "error", err)
	}
}
