package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/calcdeck/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/calcdeck/internal/platform/grpc"
	"github.com/louisbranch/calcdeck/internal/platform/timeouts"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"github.com/louisbranch/calcdeck/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName is advertised to MCP clients during initialization.
const serverName = "calcdeck"

// TransportKind selects how the MCP server talks to its client.
type TransportKind string

const (
	// TransportStdio speaks MCP over the process's stdin and stdout.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures Run.
type Config struct {
	CalcAddr  string
	Transport TransportKind
	HTTPAddr  string
}

// Server owns an MCP server and the gRPC connection its tools call through.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// newServer registers every calculator tool against client.
func newServer(client domain.CalculatorClient) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, client)
	return server
}

func registerTools(server *mcp.Server, client domain.CalculatorClient) {
	mcp.AddTool(server, domain.SessionCreateTool(), domain.SessionCreateHandler(client))
	mcp.AddTool(server, domain.PressTool(), domain.PressHandler(client))
	mcp.AddTool(server, domain.StateTool(), domain.StateHandler(client))
	mcp.AddTool(server, domain.TapeTool(), domain.TapeHandler(client))
	mcp.AddTool(server, domain.EvaluateTool(), domain.EvaluateHandler(client))
}

// Run is the service entrypoint for MCP and blocks until ctx is canceled or
// the client disconnects.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	conn, err := dialCalculator(ctx, discovery.OrDefaultGRPCAddr(cfg.CalcAddr, discovery.ServiceCalc))
	if err != nil {
		return err
	}
	s := &Server{
		mcpServer: newServer(calcapi.NewClient(conn)),
		conn:      conn,
	}

	if cfg.Transport == TransportHTTP {
		return s.serveHTTP(ctx, discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceMCP))
	}
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func dialCalculator(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	logf := func(format string, args ...any) {
		log.Printf("calc %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(ctx, nil, addr, calcapi.ServiceName, timeouts.GRPCDial, logf)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to calculator service at %s: %w", addr, dialErr.Err)
		}
		return nil, err
	}
	return conn, nil
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP server on transport. The gRPC connection
// is closed on every exit path.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return s.finish("serve MCP", err)
}

// serveHTTP serves the streamable HTTP transport on addr until ctx ends.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return s.finish("listen", err)
	}
	return s.finish("serve MCP HTTP", s.serveListener(ctx, listener))
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("MCP HTTP listening on %s", listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// httpHandler serves MCP at /mcp and a plain health probe at /healthz.
func (s *Server) httpHandler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) finish(op string, err error) error {
	closeErr := s.Close()
	switch {
	case err != nil && closeErr != nil:
		return fmt.Errorf("%s: %v; close gRPC connection: %w", op, err, closeErr)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case closeErr != nil:
		return fmt.Errorf("close gRPC connection: %w", closeErr)
	}
	return nil
}

// ParseTransport normalizes a transport name from flags or environment.
func ParseTransport(value string) (TransportKind, error) {
	switch kind := TransportKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case "":
		return TransportStdio, nil
	case TransportStdio, TransportHTTP:
		return kind, nil
	default:
		return "", fmt.Errorf("transport %q is not supported", value)
	}
}
