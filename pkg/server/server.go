// Package server runs the MCP server over stdio or streamable HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/config"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/metrics"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/tools"
)

// Name is the implementation name advertised to clients.
const Name = "k8s-assess"

// New creates an MCP server with every tool of d registered.
func New(d *tools.Dispatcher, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	tools.RegisterAll(s, d)
	return s
}

// RunStdio serves s on stdin/stdout until the client disconnects or ctx ends.
func RunStdio(ctx context.Context, s *mcp.Server, log *zap.SugaredLogger) error {
	log.Infow("serving on stdio")
	if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// Handler builds the HTTP mux: the streamable MCP endpoint, a liveness
// probe and Prometheus metrics.
func Handler(cfg config.ServerConfig, s *mcp.Server) http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s },
		&mcp.StreamableHTTPOptions{Stateless: false, JSONResponse: false})

	mux := http.NewServeMux()
	mux.Handle(cfg.MessagesPath, mcpHandler)
	mux.HandleFunc(cfg.HealthPath, healthHandler)
	mux.Handle(cfg.MetricsPath, metrics.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// RunHTTP listens on cfg.Address and serves Handler until ctx ends, then
// shuts down within cfg.ShutdownTimeout.
func RunHTTP(ctx context.Context, cfg config.ServerConfig, s *mcp.Server, log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Address, err)
	}
	return Serve(ctx, ln, cfg, s, log)
}

// Serve is RunHTTP on an existing listener.
func Serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig, s *mcp.Server, log *zap.SugaredLogger) error {
	srv := &http.Server{
		Handler:           Handler(cfg, s),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("serving streamable HTTP", "address", ln.Addr().String(), "path", cfg.MessagesPath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// open SSE streams outlive the grace period
		log.Warnw("graceful shutdown incomplete, closing connections", "error", err)
		return srv.Close()
	}
	return nil
}
