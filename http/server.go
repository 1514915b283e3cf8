package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// Server represents the HTTP server with all its dependencies.
type Server struct {
	echo    *echo.Echo
	ln      net.Listener
	logger  *slog.Logger
	metrics *Metrics
	limiter *RateLimiter

	// Configuration
	Addr       string
	APIKey     string
	UploadsDir string

	// Domain services
	classifier    jaldrishti.Classifier
	reportService jaldrishti.ReportService
	riskScorer    jaldrishti.RiskScorer
	predictor     jaldrishti.WardPredictor
	rainfall      jaldrishti.RainfallEstimator
	reference     *jaldrishti.ReferenceData
	riskPolicy    jaldrishti.RiskPolicy

	// External services
	fileStorage jaldrishti.FileStorage
}

// Config holds the configuration for creating a new Server.
type Config struct {
	Addr   string
	Logger *slog.Logger

	// APIKey protects the prediction routes when set.
	APIKey string

	// UploadsDir is served at /uploads when images are stored on local disk.
	UploadsDir string

	// AnalyzeRateLimit is the per-IP request rate for image analysis.
	AnalyzeRateLimit RateLimitConfig

	// Domain services
	Classifier        jaldrishti.Classifier
	ReportService     jaldrishti.ReportService
	RiskScorer        jaldrishti.RiskScorer
	Predictor         jaldrishti.WardPredictor
	RainfallEstimator jaldrishti.RainfallEstimator
	Reference         *jaldrishti.ReferenceData
	RiskPolicy        jaldrishti.RiskPolicy

	// External services
	FileStorage jaldrishti.FileStorage
}

// NewServer creates a new HTTP server with the given configuration.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RiskPolicy == (jaldrishti.RiskPolicy{}) {
		cfg.RiskPolicy = jaldrishti.DefaultRiskPolicy()
	}
	if cfg.AnalyzeRateLimit == (RateLimitConfig{}) {
		cfg.AnalyzeRateLimit = DefaultRateLimitConfig()
	}

	s := &Server{
		Addr:          cfg.Addr,
		APIKey:        cfg.APIKey,
		UploadsDir:    cfg.UploadsDir,
		logger:        cfg.Logger,
		metrics:       NewMetrics(),
		limiter:       NewRateLimiter(cfg.Logger, cfg.AnalyzeRateLimit),
		classifier:    cfg.Classifier,
		reportService: cfg.ReportService,
		riskScorer:    cfg.RiskScorer,
		predictor:     cfg.Predictor,
		rainfall:      cfg.RainfallEstimator,
		reference:     cfg.Reference,
		riskPolicy:    cfg.RiskPolicy,
		fileStorage:   cfg.FileStorage,
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = NewValidator()

	// Register middleware and routes
	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// Echo returns the underlying Echo instance.
// Use sparingly - prefer registering routes through Server methods.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Open starts the HTTP server.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.echo.Server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server started", slog.String("addr", s.Addr))
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.limiter.Shutdown()
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}
