package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
)

// Dispatcher runs a task after the HTTP request has been acknowledged
type Dispatcher interface {
	Dispatch(ctx context.Context, task func(ctx context.Context) error)
}

// config holds internal HTTP server configuration
type config struct {
	addr          string
	signingSecret string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithSigningSecret sets the Slack signing secret used to verify requests
func WithSigningSecret(secret string) Option {
	return func(c *config) {
		c.signingSecret = secret
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	releaseUC interfaces.ReleaseUseCase,
	chat interfaces.ChatClient,
	dispatcher Dispatcher,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// Slack endpoints
	slackHandler := NewSlackHandler(releaseUC, chat, dispatcher)
	router.Route("/hooks/slack", func(r chi.Router) {
		r.Use(VerifySlackSignature(cfg.signingSecret))
		r.Post("/event", slackHandler.HandleEvent)
		r.Post("/interaction", slackHandler.HandleInteraction)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
