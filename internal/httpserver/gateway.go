package httpserver

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"go-response-cache/internal/config"
)

// Gateway is the public listener in front of the pipelines
type Gateway struct {
	addr   string
	logger *zap.Logger
	server *http.Server
}

// NewGateway creates the public server for handler
func NewGateway(cfg *config.ServerConfig, handler http.Handler, logger *zap.Logger) *Gateway {
	return &Gateway{
		addr:   cfg.ListenAddr,
		logger: logger,
		server: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			ErrorLog:     zap.NewStdLog(logger.Named("http")),
		},
	}
}

// Start serves until Stop is called
func (g *Gateway) Start() error {
	listener, err := listen(g.addr, g.logger)
	if err != nil {
		return err
	}

	g.logger.Info("Starting gateway HTTP server", zap.String("addr", g.addr))
	if err := g.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and stops the server
func (g *Gateway) Stop(ctx context.Context) error {
	g.logger.Info("Stopping gateway HTTP server")
	return g.server.Shutdown(ctx)
}
