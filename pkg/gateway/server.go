package gateway

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/audit"
	"github.com/vestibule-io/vestibule/pkg/auth"
	"github.com/vestibule-io/vestibule/pkg/observability"
	"github.com/vestibule-io/vestibule/pkg/session"
	"github.com/vestibule-io/vestibule/pkg/transport"
	"github.com/vestibule-io/vestibule/pkg/upstream"
)

// Server holds the gateway's collaborators and exposes the assembled
// http.Handler. It keeps no per-request state; all durable state lives in
// the client's cookies.
type Server struct {
	codec    *session.Codec
	backend  upstream.Caller
	limiter  auth.RateLimiter
	recorder audit.Recorder
	logger   *slog.Logger

	metricsEnabled bool
	metricsPath    string
}

// Options configures optional server collaborators.
type Options struct {
	// Limiter rejects over-budget callers before the proxy. Nil disables
	// rate limiting.
	Limiter auth.RateLimiter

	// Recorder receives delegation audit events. Nil means events are
	// discarded.
	Recorder audit.Recorder

	Logger *slog.Logger

	MetricsEnabled bool
	MetricsPath    string
}

// New creates a gateway server over the given session codec and backend
// proxy.
func New(codec *session.Codec, backend upstream.Caller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = audit.Nop{}
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Server{
		codec:          codec,
		backend:        backend,
		limiter:        opts.Limiter,
		recorder:       opts.Recorder,
		logger:         opts.Logger,
		metricsEnabled: opts.MetricsEnabled,
		metricsPath:    opts.MetricsPath,
	}
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, rt := range s.routes() {
		mux.Handle(rt.method+" "+rt.pattern, s.guard(rt))
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)
	if s.metricsEnabled {
		mux.Handle("GET "+s.metricsPath, promhttp.Handler())
	}

	return transport.Chain(
		transport.RequestID(),
		transport.Logging(s.logger),
		transport.Recovery(),
		observability.MetricsMiddleware,
	)(mux)
}

// guard resolves the session, applies the authorization gate and the rate
// limiter, then dispatches to the route handler. Every operation funnels
// through this one path so role enforcement cannot be skipped by a new
// route.
func (s *Server) guard(rt route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := s.codec.Resolve(r)

		if apiErr := auth.Authorize(sc, rt.requirement); apiErr != nil {
			transport.WriteAPIError(w, apiErr)
			return
		}

		if s.limiter != nil && rt.requirement != auth.Public {
			var subject string
			if sc.User != nil {
				subject = sc.User.ID
			}
			key := subject + ":" + sc.TenantID
			if err := s.limiter.Allow(r.Context(), key); err != nil {
				observability.RateLimitRejectedTotal.Inc()
				transport.WriteAPIError(w, api.NewRateLimitedError("rate limit exceeded"))
				return
			}
		}

		r = r.WithContext(session.Set(r.Context(), sc))
		rt.handler(w, r, sc)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
