package rest

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Inference *InferenceHandler
	Health    *HealthHandler
	Metrics   http.Handler // optional, served at /metrics
	Logger    *slog.Logger
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
}

// NewRouter builds the service's http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Inference.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mws := []Middleware{
		RequestIDMiddleware(),
		LoggingMiddleware(cfg.Logger),
		RecoverMiddleware(cfg.Logger),
	}
	if cfg.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
		mws = append(mws, RateLimitMiddleware(limiter, "/healthz", "/readyz", "/metrics"))
	}

	return otelhttp.NewHandler(Chain(mux, mws...), "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)
}
