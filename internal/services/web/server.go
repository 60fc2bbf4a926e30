// Package web hosts the browser calculator: a keypad page whose key presses
// and keyboard input are applied through the calc gRPC service.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/calcdeck/internal/platform/timeouts"
	"github.com/louisbranch/calcdeck/internal/services/shared/i18nhttp"
	"github.com/louisbranch/calcdeck/internal/services/web/platform/httpx"
	webstatic "github.com/louisbranch/calcdeck/internal/services/web/static"
)

// maxFormBytes bounds posted forms; a press carries one short field.
const maxFormBytes = 4 << 10

// Config defines startup inputs for the web service.
type Config struct {
	HTTPAddr   string
	CalcClient CalculatorClient
	Logger     *log.Logger
}

// Server hosts the web HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler builds the root handler.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.CalcClient == nil {
		return nil, errors.New("calculator client is required")
	}
	h := handlers{calc: cfg.CalcClient}
	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static", webstatic.Handler()))
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("POST /press", h.press)
	mux.HandleFunc("POST /key", h.key)
	mux.HandleFunc("GET /tape", h.tape)
	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.LimitBody(maxFormBytes),
		httpx.RequestLogger(cfg.Logger),
		i18nhttp.Middleware(),
	), nil
}

// NewServer validates config and constructs a web server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("web server listening at %s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown web http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
