package memory

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
)

// Ensure service implements interface.
var _ jaldrishti.ReportService = (*ReportService)(nil)

// ReportService stores citizen reports in memory.
//
// Writers are serialised by a mutex and publish a fresh copy of the report
// list; readers load the current list without locking. Published reports
// are never mutated.
type ReportService struct {
	mu      sync.Mutex
	reports atomic.Pointer[[]*jaldrishti.CitizenReport]

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewReportService creates an empty report store.
func NewReportService() *ReportService {
	s := &ReportService{now: time.Now}
	s.reports.Store(&[]*jaldrishti.CitizenReport{})
	return s
}

func (s *ReportService) snapshot() []*jaldrishti.CitizenReport {
	return *s.reports.Load()
}

// SubmitReport stores a new report and applies the spam rules.
func (s *ReportService) SubmitReport(ctx context.Context, sub jaldrishti.ReportSubmission) (*jaldrishti.CitizenReport, error) {
	isSpam, status := jaldrishti.SpamVerdict(sub.Analysis)
	report := &jaldrishti.CitizenReport{
		ID:          uuid.New(),
		Timestamp:   s.now().UTC(),
		Location:    sub.Location,
		Coordinates: sub.Coordinates,
		ImageURL:    sub.ImageURL,
		Analysis:    sub.Analysis,
		IsSpam:      isSpam,
		AdminStatus: status,
		ReporterID:  sub.ReporterID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snapshot()
	next := make([]*jaldrishti.CitizenReport, len(current), len(current)+1)
	copy(next, current)
	next = append(next, report)
	s.reports.Store(&next)

	return clone(report), nil
}

// FindReportByID returns a report by ID.
func (s *ReportService) FindReportByID(ctx context.Context, id uuid.UUID) (*jaldrishti.CitizenReport, error) {
	for _, r := range s.snapshot() {
		if r.ID == id {
			return clone(r), nil
		}
	}
	return nil, jaldrishti.NotFound("Report not found")
}

// FindReports returns reports in submission order.
func (s *ReportService) FindReports(ctx context.Context, filter jaldrishti.ReportFilter) ([]*jaldrishti.CitizenReport, error) {
	reports := make([]*jaldrishti.CitizenReport, 0)
	for _, r := range s.snapshot() {
		if filter.Status != nil {
			if r.AdminStatus != *filter.Status {
				continue
			}
		} else if r.AdminStatus == jaldrishti.AdminStatusAutoRejected {
			continue
		}
		reports = append(reports, clone(r))
	}
	return reports, nil
}

// UpdateReportStatus sets a report's moderation state.
func (s *ReportService) UpdateReportStatus(ctx context.Context, id uuid.UUID, status jaldrishti.AdminStatus) (*jaldrishti.CitizenReport, error) {
	if !status.IsValid() {
		return nil, jaldrishti.Invalid("Invalid status %q", status)
	}
	return s.update(id, func(r *jaldrishti.CitizenReport) {
		r.AdminStatus = status
	})
}

// ReactToReport records an agree or disagree vote.
func (s *ReportService) ReactToReport(ctx context.Context, id uuid.UUID, reaction jaldrishti.Reaction) (*jaldrishti.CitizenReport, error) {
	switch reaction {
	case jaldrishti.ReactionAgree:
		return s.update(id, func(r *jaldrishti.CitizenReport) { r.Upvotes++ })
	case jaldrishti.ReactionDisagree:
		return s.update(id, func(r *jaldrishti.CitizenReport) { r.Downvotes++ })
	default:
		return nil, jaldrishti.Invalid("Invalid reaction %q", reaction)
	}
}

// CountReports returns the number of stored reports, including auto-rejected ones.
func (s *ReportService) CountReports(ctx context.Context) (int, error) {
	return len(s.snapshot()), nil
}

// update applies fn to a copy of the report and publishes a new list.
func (s *ReportService) update(id uuid.UUID, fn func(*jaldrishti.CitizenReport)) (*jaldrishti.CitizenReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snapshot()
	for i, r := range current {
		if r.ID != id {
			continue
		}
		updated := clone(r)
		fn(updated)

		next := make([]*jaldrishti.CitizenReport, len(current))
		copy(next, current)
		next[i] = updated
		s.reports.Store(&next)

		return clone(updated), nil
	}
	return nil, jaldrishti.NotFound("Report not found")
}

func clone(r *jaldrishti.CitizenReport) *jaldrishti.CitizenReport {
	c := *r
	c.Analysis.Tags = slices.Clone(r.Analysis.Tags)
	c.Analysis.Forensics.Skipped = slices.Clone(r.Analysis.Forensics.Skipped)
	return &c
}
