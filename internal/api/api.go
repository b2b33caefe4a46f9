// Package api provides HTTP handlers and the main API server logic for the
// valuation engine.
//
// It exposes the conversational valuation endpoints, a session
// administration surface, a health check and the Prometheus scrape
// endpoint. The API integrates with the flow engine, store and genai
// modules.
package api

import (
	"log/slog"
	"net/http"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/flow"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/genai"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/metrics"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/store"
)

// Default configuration constants
const (
	// DefaultAddr is the default API listen address.
	DefaultAddr = ":8000"
	// ServiceName identifies the service in health responses.
	ServiceName = "Upswitch Valuation Engine"
	// ServiceVersion is reported by the health endpoint.
	ServiceVersion = "1.0.0"
	// DefaultEnvironment is reported when none is configured.
	DefaultEnvironment = "development"
)

// Server bundles the API's collaborators.
type Server struct {
	st          store.Store
	engine      *flow.Engine
	addr        string
	environment string
}

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string
	// Environment is the deployment environment reported by /health.
	Environment string
}

// Option configures API server creation.
type Option func(*Opts)

// WithAddr sets the API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithEnvironment sets the environment label reported by the health endpoint.
func WithEnvironment(env string) Option {
	return func(o *Opts) {
		o.Environment = env
	}
}

// NewServer creates an API server over the given store and engine.
func NewServer(st store.Store, engine *flow.Engine, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}
	return &Server{
		st:          st,
		engine:      engine,
		addr:        cfg.Addr,
		environment: cfg.Environment,
	}
}

// Run wires up the configured modules and serves the API until the process
// terminates. The GenAI client is optional: when it cannot be constructed
// (typically a missing API key) the engine uses its static completion
// message.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return err
	}
	defer st.Close()

	engineOpts := []flow.Option{}
	if gaClient, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("GenAI client not configured, using static completion messages", "error", err)
	} else {
		engineOpts = append(engineOpts, flow.WithSummarizer(gaClient))
	}

	engine := flow.NewEngine(st, flow.DefaultCatalog(), engineOpts...)
	srv := NewServer(st, engine, apiOpts...)
	return srv.Run()
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	slog.Info("Valuation engine API running", "addr", s.addr, "environment", s.environment)
	return http.ListenAndServe(s.addr, corsMiddleware(mux))
}

// registerRoutes attaches all endpoints to the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/valuation/conversation/start", s.startConversationHandler)
	mux.HandleFunc("/api/valuation/conversation/step", s.conversationStepHandler)
	mux.HandleFunc("/api/valuation/sessions", s.sessionsHandler)
	mux.HandleFunc("/api/valuation/sessions/", s.sessionsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", metrics.Handler())
}

// corsMiddleware applies the permissive CORS policy the browser frontend
// expects and short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
