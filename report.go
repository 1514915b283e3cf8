package jaldrishti

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdminStatus is the moderation state of a citizen report.
type AdminStatus string

// AdminStatus values.
const (
	AdminStatusPending      AdminStatus = "pending"
	AdminStatusApproved     AdminStatus = "approved"
	AdminStatusRejected     AdminStatus = "rejected"
	AdminStatusAutoRejected AdminStatus = "auto_rejected"
)

// IsValid reports whether an administrator may set this status.
// auto_rejected is reserved for the spam filter.
func (s AdminStatus) IsValid() bool {
	switch s {
	case AdminStatusPending, AdminStatusApproved, AdminStatusRejected:
		return true
	}
	return false
}

// Reaction is a citizen's vote on another citizen's report.
type Reaction string

// Reaction values.
const (
	ReactionAgree    Reaction = "agree"
	ReactionDisagree Reaction = "disagree"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CitizenReport is a waterlogging report submitted by a citizen.
type CitizenReport struct {
	ID          uuid.UUID           `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Location    string              `json:"location"`
	Coordinates Coordinates         `json:"coordinates"`
	ImageURL    string              `json:"image_url"`
	Analysis    ImageAnalysisResult `json:"analysis"`
	IsSpam      bool                `json:"is_spam"`
	AdminStatus AdminStatus         `json:"admin_status"`
	Upvotes     int                 `json:"upvotes"`
	Downvotes   int                 `json:"downvotes"`
	ReporterID  string              `json:"reporter_id"`
}

// ReportSubmission is the input to SubmitReport.
type ReportSubmission struct {
	Location    string
	Coordinates Coordinates
	ImageURL    string
	Analysis    ImageAnalysisResult
	ReporterID  string
}

// ReportFilter narrows FindReports. A nil Status returns every report
// except auto-rejected ones.
type ReportFilter struct {
	Status *AdminStatus
}

// SpamVerdict applies the automatic spam rules to an analysis.
// Duplicates are rejected outright; images found online are flagged but
// left for a moderator.
func SpamVerdict(a ImageAnalysisResult) (isSpam bool, status AdminStatus) {
	switch {
	case a.Forensics.IsDuplicate:
		return true, AdminStatusAutoRejected
	case a.Forensics.FoundOnline:
		return true, AdminStatusPending
	default:
		return false, AdminStatusPending
	}
}

// ReportService manages citizen reports.
type ReportService interface {
	// SubmitReport stores a new report, assigning its ID and timestamp.
	SubmitReport(ctx context.Context, sub ReportSubmission) (*CitizenReport, error)

	// FindReportByID returns ENOTFOUND if the report does not exist.
	FindReportByID(ctx context.Context, id uuid.UUID) (*CitizenReport, error)

	// FindReports returns reports in submission order.
	FindReports(ctx context.Context, filter ReportFilter) ([]*CitizenReport, error)

	// UpdateReportStatus sets a report's moderation state.
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status AdminStatus) (*CitizenReport, error)

	// ReactToReport records an agree or disagree vote.
	ReactToReport(ctx context.Context, id uuid.UUID, reaction Reaction) (*CitizenReport, error)

	// CountReports returns the number of stored reports.
	CountReports(ctx context.Context) (int, error)
}
