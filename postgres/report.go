package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jaldrishti/jaldrishti"
)

// ReportService implements jaldrishti.ReportService using PostgreSQL.
// Vote counters are incremented in SQL so concurrent reactions are never lost.
type ReportService struct {
	db *DB
}

const reportColumns = `id, created_at, location, latitude, longitude, image_url, analysis,
	is_spam, admin_status, upvotes, downvotes, reporter_id`

func scanReport(row pgx.Row) (*jaldrishti.CitizenReport, error) {
	var (
		r          jaldrishti.CitizenReport
		id         pgtype.UUID
		createdAt  pgtype.Timestamptz
		imageURL   pgtype.Text
		reporterID pgtype.Text
		status     string
	)
	err := row.Scan(&id, &createdAt, &r.Location, &r.Coordinates.Lat, &r.Coordinates.Lng,
		&imageURL, &r.Analysis, &r.IsSpam, &status, &r.Upvotes, &r.Downvotes, &reporterID)
	if err != nil {
		return nil, err
	}
	r.ID = fromPgUUID(id)
	r.Timestamp = fromPgTimestamp(createdAt)
	r.ImageURL = fromPgText(imageURL)
	r.ReporterID = fromPgText(reporterID)
	r.AdminStatus = jaldrishti.AdminStatus(status)
	if r.Analysis.Tags == nil {
		r.Analysis.Tags = []string{}
	}
	return &r, nil
}

// SubmitReport stores a new report and applies the spam rules.
func (s *ReportService) SubmitReport(ctx context.Context, sub jaldrishti.ReportSubmission) (*jaldrishti.CitizenReport, error) {
	isSpam, status := jaldrishti.SpamVerdict(sub.Analysis)

	row := s.db.pool.QueryRow(ctx, `
		INSERT INTO reports (id, created_at, location, latitude, longitude, image_url, analysis,
			is_spam, admin_status, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+reportColumns,
		toPgUUID(uuid.New()), toPgTimestamp(time.Now().UTC()), sub.Location,
		sub.Coordinates.Lat, sub.Coordinates.Lng, toPgText(sub.ImageURL), sub.Analysis,
		isSpam, string(status), toPgText(sub.ReporterID))
	report, err := scanReport(row)
	if err != nil {
		return nil, internal("Failed to create report", err)
	}
	return report, nil
}

// FindReportByID returns a report by ID.
func (s *ReportService) FindReportByID(ctx context.Context, id uuid.UUID) (*jaldrishti.CitizenReport, error) {
	row := s.db.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, toPgUUID(id))
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jaldrishti.NotFound("Report not found")
		}
		return nil, internal("Failed to fetch report", err)
	}
	return report, nil
}

// FindReports returns reports in submission order.
func (s *ReportService) FindReports(ctx context.Context, filter jaldrishti.ReportFilter) ([]*jaldrishti.CitizenReport, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.Status != nil {
		rows, err = s.db.pool.Query(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE admin_status = $1 ORDER BY seq`,
			string(*filter.Status))
	} else {
		rows, err = s.db.pool.Query(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE admin_status <> $1 ORDER BY seq`,
			string(jaldrishti.AdminStatusAutoRejected))
	}
	if err != nil {
		return nil, internal("Failed to list reports", err)
	}

	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*jaldrishti.CitizenReport, error) {
		return scanReport(row)
	})
	if err != nil {
		return nil, internal("Failed to list reports", err)
	}
	if reports == nil {
		reports = []*jaldrishti.CitizenReport{}
	}
	return reports, nil
}

// UpdateReportStatus sets a report's moderation state.
func (s *ReportService) UpdateReportStatus(ctx context.Context, id uuid.UUID, status jaldrishti.AdminStatus) (*jaldrishti.CitizenReport, error) {
	if !status.IsValid() {
		return nil, jaldrishti.Invalid("Invalid status %q", status)
	}
	return s.update(ctx, `UPDATE reports SET admin_status = $2 WHERE id = $1 RETURNING `+reportColumns,
		toPgUUID(id), string(status))
}

// ReactToReport records an agree or disagree vote.
func (s *ReportService) ReactToReport(ctx context.Context, id uuid.UUID, reaction jaldrishti.Reaction) (*jaldrishti.CitizenReport, error) {
	switch reaction {
	case jaldrishti.ReactionAgree:
		return s.update(ctx, `UPDATE reports SET upvotes = upvotes + 1 WHERE id = $1 RETURNING `+reportColumns,
			toPgUUID(id))
	case jaldrishti.ReactionDisagree:
		return s.update(ctx, `UPDATE reports SET downvotes = downvotes + 1 WHERE id = $1 RETURNING `+reportColumns,
			toPgUUID(id))
	default:
		return nil, jaldrishti.Invalid("Invalid reaction %q", reaction)
	}
}

// CountReports returns the number of stored reports, including auto-rejected ones.
func (s *ReportService) CountReports(ctx context.Context) (int, error) {
	var n int
	if err := s.db.pool.QueryRow(ctx, `SELECT count(*) FROM reports`).Scan(&n); err != nil {
		return 0, internal("Failed to count reports", err)
	}
	return n, nil
}

func (s *ReportService) update(ctx context.Context, query string, args ...any) (*jaldrishti.CitizenReport, error) {
	report, err := scanReport(s.db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jaldrishti.NotFound("Report not found")
		}
		if isCheckViolation(err) {
			return nil, jaldrishti.Invalid("Invalid status")
		}
		return nil, internal("Failed to update report", err)
	}
	return report, nil
}
