package mock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
)

// Compile-time interface check
var _ jaldrishti.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of jaldrishti.ReportService.
type ReportService struct {
	SubmitReportFn       func(ctx context.Context, sub jaldrishti.ReportSubmission) (*jaldrishti.CitizenReport, error)
	FindReportByIDFn     func(ctx context.Context, id uuid.UUID) (*jaldrishti.CitizenReport, error)
	FindReportsFn        func(ctx context.Context, filter jaldrishti.ReportFilter) ([]*jaldrishti.CitizenReport, error)
	UpdateReportStatusFn func(ctx context.Context, id uuid.UUID, status jaldrishti.AdminStatus) (*jaldrishti.CitizenReport, error)
	ReactToReportFn      func(ctx context.Context, id uuid.UUID, reaction jaldrishti.Reaction) (*jaldrishti.CitizenReport, error)
	CountReportsFn       func(ctx context.Context) (int, error)
}

func (s *ReportService) SubmitReport(ctx context.Context, sub jaldrishti.ReportSubmission) (*jaldrishti.CitizenReport, error) {
	if s.SubmitReportFn != nil {
		return s.SubmitReportFn(ctx, sub)
	}
	isSpam, status := jaldrishti.SpamVerdict(sub.Analysis)
	return &jaldrishti.CitizenReport{
		ID:          uuid.New(),
		Timestamp:   time.Now(),
		Location:    sub.Location,
		Coordinates: sub.Coordinates,
		ImageURL:    sub.ImageURL,
		Analysis:    sub.Analysis,
		IsSpam:      isSpam,
		AdminStatus: status,
		ReporterID:  sub.ReporterID,
	}, nil
}

func (s *ReportService) FindReportByID(ctx context.Context, id uuid.UUID) (*jaldrishti.CitizenReport, error) {
	if s.FindReportByIDFn != nil {
		return s.FindReportByIDFn(ctx, id)
	}
	return nil, jaldrishti.NotFound("Report not found")
}

func (s *ReportService) FindReports(ctx context.Context, filter jaldrishti.ReportFilter) ([]*jaldrishti.CitizenReport, error) {
	if s.FindReportsFn != nil {
		return s.FindReportsFn(ctx, filter)
	}
	return []*jaldrishti.CitizenReport{}, nil
}

func (s *ReportService) UpdateReportStatus(ctx context.Context, id uuid.UUID, status jaldrishti.AdminStatus) (*jaldrishti.CitizenReport, error) {
	if s.UpdateReportStatusFn != nil {
		return s.UpdateReportStatusFn(ctx, id, status)
	}
	return nil, jaldrishti.NotFound("Report not found")
}

func (s *ReportService) ReactToReport(ctx context.Context, id uuid.UUID, reaction jaldrishti.Reaction) (*jaldrishti.CitizenReport, error) {
	if s.ReactToReportFn != nil {
		return s.ReactToReportFn(ctx, id, reaction)
	}
	return nil, jaldrishti.NotFound("Report not found")
}

func (s *ReportService) CountReports(ctx context.Context) (int, error) {
	if s.CountReportsFn != nil {
		return s.CountReportsFn(ctx)
	}
	return 0, nil
}
