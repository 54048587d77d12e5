package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docverify/internal/metrics"
	"github.com/ironsheep/docverify/internal/scan"
)

var log = logrus.StandardLogger().WithField("package", "httpapi")

// Defaults applied when a Config field is zero.
const (
	DefaultMaxPayloadBytes = 20 << 20
	DefaultMaxAge          = 5 * time.Minute
	DefaultMaxSkew         = time.Minute
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) (bool, error)

// Config tunes the HTTP surface.
type Config struct {
	MaxPayloadBytes int64
	// MaxAge is how old a requestTime may be.
	MaxAge time.Duration
	// MaxSkew is how far in the future a requestTime may be.
	MaxSkew time.Duration
	// CORSOrigins lists allowed origins. Empty allows all.
	CORSOrigins []string
	// Probes are run by /healthz, keyed by dependency name.
	Probes map[string]Probe
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	// Now replaces time.Now in tests.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.MaxSkew <= 0 {
		c.MaxSkew = DefaultMaxSkew
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Server is the HTTP API.
type Server struct {
	e       *gin.Engine
	scanner *scan.Service
	metrics *metrics.Metrics
	cfg     Config
}

// New builds the routes. m may be nil.
func New(scanner *scan.Service, m *metrics.Metrics, cfg Config) *Server {
	s := &Server{
		e:       gin.New(),
		scanner: scanner,
		metrics: m,
		cfg:     cfg.withDefaults(),
	}
	s.initRoutes()
	return s
}

// Handler returns the root handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) initRoutes() {
	s.e.Use(requestID())
	s.e.Use(requestLogger())
	s.e.Use(gin.CustomRecovery(s.recovered))
	s.e.Use(securityHeaders())
	s.e.Use(s.corsMiddleware())

	s.e.GET("/healthz", s.handleHealthz)
	s.e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})))

	g := s.e.Group("/api/v1")
	g.POST("/scan", s.handleScan)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	if len(s.cfg.CORSOrigins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Server-Timing"},
		MaxAge:        12 * time.Hour,
	})
}

func (s *Server) recovered(c *gin.Context, r any) {
	log.WithField("requestId", c.GetString(requestIDKey)).
		WithField("panic", r).
		Error("handler crashed")
	s.metrics.IncrementRejected(reasonInternal)
	c.AbortWithStatusJSON(http.StatusInternalServerError, internalServerError)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, probe := range s.cfg.Probes {
		ok, err := probe(ctx)
		entry := gin.H{"ok": ok}
		if err != nil {
			entry["error"] = err.Error()
		}
		if !ok {
			status = http.StatusServiceUnavailable
		}
		deps[name] = entry
	}
	c.JSON(status, gin.H{
		"ok":           status == http.StatusOK,
		"dependencies": deps,
	})
}
