package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"txdash/internal/cache"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
	"txdash/internal/middleware/security"
	"txdash/internal/middleware/trace"
	"txdash/internal/observability"
	"txdash/internal/services"
)

// Route patterns served by the API.
const (
	RouteTransactions = "/api/transactions"
	RouteStatistics   = "/api/statistics"
	RouteBarChart     = "/api/bar-chart"
	RoutePieChart     = "/api/pie-chart"
	RouteCombined     = "/api/combined"
	RouteHealth       = "/healthz"
	RouteReady        = "/readyz"
	RouteMetrics      = "/metrics"
)

var knownRoutes = map[string]bool{
	RouteTransactions: true,
	RouteStatistics:   true,
	RouteBarChart:     true,
	RoutePieChart:     true,
	RouteCombined:     true,
	RouteHealth:       true,
	RouteReady:        true,
	RouteMetrics:      true,
}

// Queries is the read side the handlers depend on.
type Queries interface {
	ListTransactions(ctx context.Context, p services.ListParams) (services.Page, error)
	GetStatistics(ctx context.Context, month time.Month) (core.Statistics, error)
	GetBarChart(ctx context.Context, month time.Month) (core.PriceHistogram, error)
	GetPieChart(ctx context.Context, month time.Month) (core.CategoryDistribution, error)
	GetCombined(ctx context.Context, p services.ListParams) (services.Combined, error)
}

// Options configures NewServer. Zero values disable the optional parts:
// no Metrics means no /metrics route, RateLimitPerMinute 0 means unlimited.
type Options struct {
	Addr               string
	Logger             *log.Logger
	Metrics            *observability.Metrics
	RateLimitPerMinute int
	CORSOrigins        []string
	CleanupInterval    time.Duration
}

type Server struct {
	http.Server
	queries      Queries
	logger       *log.Logger
	metrics      *observability.Metrics
	limiter      *ratelimit.Limiter
	ipResolver   *security.ClientIPResolver
	tracer       *trace.Middleware
	cacheManager *cache.Manager
	started      time.Time

	shuttingDown atomic.Bool
	shutdownOnce sync.Once
}

func NewServer(opts Options, queries Queries) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}

	s := &Server{
		queries:      queries,
		logger:       logger.WithComponent(log.ComponentHTTP),
		metrics:      opts.Metrics,
		ipResolver:   security.NewClientIPResolver(),
		cacheManager: cache.NewManager(logger.Logger.With(log.FieldComponent, log.ComponentCache)),
		started:      time.Now(),
	}

	api := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		s.cacheManager.Register(s.limiter.Cleaner())
		s.cacheManager.StartCleanup(opts.CleanupInterval)
		limit := s.limiter.Middleware(s.ipResolver.ExtractClientIP, s.handleRateLimited)
		api = func(h http.HandlerFunc) http.Handler { return limit(h) }
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+RouteTransactions, api(s.handleTransactions))
	mux.Handle("GET "+RouteStatistics, api(s.handleStatistics))
	mux.Handle("GET "+RouteBarChart, api(s.handleBarChart))
	mux.Handle("GET "+RoutePieChart, api(s.handlePieChart))
	mux.Handle("GET "+RouteCombined, api(s.handleCombined))
	mux.HandleFunc("GET "+RouteHealth, s.handleHealth)
	mux.HandleFunc("GET "+RouteReady, s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET "+RouteMetrics, s.metrics.Handler())
	}

	var observe trace.ObserveFunc
	if s.metrics != nil {
		observe = func(r *http.Request, status int, took time.Duration) {
			s.metrics.ObserveRequest(routeLabel(r.URL.Path), r.Method, status, took)
		}
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if security.AllowsAnyOrigin(origins) {
		s.logger.Info("CORS allows any origin", "origins", origins)
	}
	s.tracer = trace.NewMiddleware(logger, s.ipResolver.ExtractClientIP, observe)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = security.NewCORS(security.CORSConfig{AllowedOrigins: origins})(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// routeLabel keeps metric cardinality bounded.
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// Shutdown marks the server not ready, stops background cleanup and drains
// in-flight requests. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.shuttingDown.Store(true)
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
