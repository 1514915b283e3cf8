package http

import (
	"log/slog"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// SubmitReportRequest is the request payload for submitting a report.
type SubmitReportRequest struct {
	Location   string                         `json:"location" validate:"required,max=200"`
	Lat        float64                        `json:"lat" validate:"latitude"`
	Lng        float64                        `json:"lng" validate:"longitude"`
	ImageURL   string                         `json:"image_url" validate:"omitempty,url"`
	Analysis   jaldrishti.ImageAnalysisResult `json:"analysis_result"`
	ReporterID string                         `json:"user_id" validate:"max=100"`
}

func (s *Server) handleSubmitReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req SubmitReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	report, err := s.reportService.SubmitReport(ctx, jaldrishti.ReportSubmission{
		Location:    req.Location,
		Coordinates: jaldrishti.Coordinates{Lat: req.Lat, Lng: req.Lng},
		ImageURL:    req.ImageURL,
		Analysis:    req.Analysis,
		ReporterID:  req.ReporterID,
	})
	if err != nil {
		return err
	}
	s.metrics.RecordReport(report)

	s.log(c).Info("report submitted",
		slog.String("report_id", report.ID.String()),
		slog.Bool("spam", report.IsSpam),
		slog.String("admin_status", string(report.AdminStatus)),
	)

	return RespondCreated(c, report)
}

func (s *Server) handleListReports(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var filter jaldrishti.ReportFilter
	if status := c.QueryParam("status"); status != "" {
		st := jaldrishti.AdminStatus(status)
		filter.Status = &st
	}

	reports, err := s.reportService.FindReports(ctx, filter)
	if err != nil {
		return err
	}
	return RespondList(c, reports)
}

func (s *Server) handleGetReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := s.reportService.FindReportByID(ctx, id)
	if err != nil {
		return err
	}
	return RespondOK(c, report)
}

// UpdateReportStatusRequest is the request payload for moderating a report.
// The status may also be given as a query parameter.
type UpdateReportStatusRequest struct {
	Status string `json:"status" query:"status" validate:"required,oneof=pending approved rejected"`
}

func (s *Server) handleUpdateReportStatus(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateReportStatusRequest
	if status := c.QueryParam("status"); status != "" {
		req.Status = status
		if err := c.Validate(&req); err != nil {
			return err
		}
	} else if err := bind(c, &req); err != nil {
		return err
	}

	report, err := s.reportService.UpdateReportStatus(ctx, id, jaldrishti.AdminStatus(req.Status))
	if err != nil {
		return err
	}

	s.log(c).Info("report status updated",
		slog.String("report_id", id.String()),
		slog.String("admin_status", req.Status),
	)

	return RespondOK(c, report)
}

// ReactRequest is the request payload for voting on a report.
type ReactRequest struct {
	Type string `json:"type" validate:"required,oneof=agree disagree"`
}

// ReactResponse reports the updated vote counts.
type ReactResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

func (s *Server) handleReactToReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ReactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	report, err := s.reportService.ReactToReport(ctx, id, jaldrishti.Reaction(req.Type))
	if err != nil {
		return err
	}
	return RespondOK(c, ReactResponse{Upvotes: report.Upvotes, Downvotes: report.Downvotes})
}
