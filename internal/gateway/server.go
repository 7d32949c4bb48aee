// Package gateway exposes Valet's conversation core over HTTP and a
// WebSocket event stream for UI clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/hooks"
	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/routing"
	"github.com/valetapp/valet/internal/schedule"
)

// Server is the Valet gateway HTTP + WebSocket server.
type Server struct {
	cfg  config.GatewayConfig
	orch *routing.Orchestrator
	log  *logging.Logger

	// Optional collaborators; routes degrade to 503 when absent.
	transcriber llm.Transcriber
	events      *schedule.EventStore
	advisor     *schedule.Advisor
	hooks       *hooks.Manager

	clients    *clientRegistry
	upgrader   websocket.Upgrader
	httpServer *http.Server
	startedAt  time.Time
}

// Option configures the gateway server.
type Option func(*Server)

// WithTranscriber enables the /api/transcribe route.
func WithTranscriber(t llm.Transcriber) Option {
	return func(s *Server) { s.transcriber = t }
}

// WithEvents enables the /api/events routes.
func WithEvents(store *schedule.EventStore) Option {
	return func(s *Server) { s.events = store }
}

// WithAdvisor enables the /api/events/suggest route.
func WithAdvisor(a *schedule.Advisor) Option {
	return func(s *Server) { s.advisor = a }
}

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) Option {
	return func(s *Server) { s.hooks = hm }
}

// New creates a gateway server over the orchestrator.
func New(cfg config.GatewayConfig, orch *routing.Orchestrator, log *logging.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		orch:    orch,
		log:     log.Sub("gateway"),
		clients: newClientRegistry(log.Sub("gateway.clients")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkWebSocketOrigin validates WebSocket Origin headers. Requests without
// an Origin header (non-browser clients) are always allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "loopback", "":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins serving. It blocks until the context is cancelled or a fatal
// listen error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := withMiddleware(mux, s.log, s.cfg.AllowedOrigins, s.cfg.Auth.Token)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Bool("auth", s.cfg.Auth.Token != "").
		Msg("gateway server starting")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.closeAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
