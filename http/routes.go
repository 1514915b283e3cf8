package http

import (
	"fmt"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4/middleware"
)

// registerRoutes sets up all routes for the server.
// All routes are defined in this single file for easy navigation.
func (s *Server) registerRoutes() {
	// Health check routes (public)
	s.echo.GET("/health", s.handleHealthCheck)
	s.echo.GET("/health/live", s.handleLivenessCheck)
	s.echo.GET("/health/ready", s.handleReadinessCheck)

	// Prometheus scrape endpoint
	s.echo.GET("/metrics", s.metrics.Handler())

	// Locally stored report images
	if s.UploadsDir != "" {
		s.echo.Static("/uploads", s.UploadsDir)
	}

	api := s.echo.Group("/api")

	// Image analysis
	api.POST("/analyze", s.handleAnalyze,
		s.limiter.Middleware(),
		middleware.BodyLimit(fmt.Sprintf("%dK", jaldrishti.MaxUploadSize/1024+64)),
	)

	// Citizen reports
	api.POST("/reports", s.handleSubmitReport)
	api.GET("/reports", s.handleListReports)
	api.GET("/reports/:id", s.handleGetReport)
	api.PUT("/reports/:id/status", s.handleUpdateReportStatus)
	api.POST("/reports/:id/react", s.handleReactToReport)

	// Wards and predictions
	api.GET("/wards", s.handleListWards)

	predict := api.Group("/predict", s.RequireAPIKey())
	predict.POST("", s.handlePredictWards)
	predict.GET("/:wardId", s.handlePredictWard)
	predict.POST("/locations", s.handlePredictLocations)
}
