package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission(duplicate, online bool) jaldrishti.ReportSubmission {
	return jaldrishti.ReportSubmission{
		Location:    "Ward 12, Secunderabad",
		Coordinates: jaldrishti.Coordinates{Lat: 17.44, Lng: 78.5},
		ImageURL:    "https://example.com/img.jpg",
		ReporterID:  "citizen-1",
		Analysis: jaldrishti.ImageAnalysisResult{
			Waterlogged: true,
			Tags:        []string{"water"},
			Forensics: jaldrishti.ForensicResult{
				IsDuplicate: duplicate,
				FoundOnline: online,
			},
		},
	}
}

func TestReportService_SubmitReport(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()
	fixed := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	tests := []struct {
		name      string
		duplicate bool
		online    bool
		spam      bool
		status    jaldrishti.AdminStatus
	}{
		{name: "clean", spam: false, status: jaldrishti.AdminStatusPending},
		{name: "duplicate", duplicate: true, spam: true, status: jaldrishti.AdminStatusAutoRejected},
		{name: "found online", online: true, spam: true, status: jaldrishti.AdminStatusPending},
		{name: "duplicate and online", duplicate: true, online: true, spam: true, status: jaldrishti.AdminStatusAutoRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.SubmitReport(ctx, submission(tt.duplicate, tt.online))
			require.NoError(t, err)

			assert.NotEqual(t, uuid.Nil, r.ID)
			assert.Equal(t, fixed, r.Timestamp)
			assert.Equal(t, tt.spam, r.IsSpam)
			assert.Equal(t, tt.status, r.AdminStatus)
			assert.Zero(t, r.Upvotes)
		})
	}

	n, err := s.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestReportService_FindReports(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()

	clean, err := s.SubmitReport(ctx, submission(false, false))
	require.NoError(t, err)
	_, err = s.SubmitReport(ctx, submission(true, false))
	require.NoError(t, err)
	online, err := s.SubmitReport(ctx, submission(false, true))
	require.NoError(t, err)

	t.Run("default excludes auto rejected", func(t *testing.T) {
		reports, err := s.FindReports(ctx, jaldrishti.ReportFilter{})
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, clean.ID, reports[0].ID)
		assert.Equal(t, online.ID, reports[1].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		status := jaldrishti.AdminStatusAutoRejected
		reports, err := s.FindReports(ctx, jaldrishti.ReportFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Analysis.Forensics.IsDuplicate)
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		status := jaldrishti.AdminStatusApproved
		reports, err := s.FindReports(ctx, jaldrishti.ReportFilter{Status: &status})
		require.NoError(t, err)
		assert.NotNil(t, reports)
		assert.Empty(t, reports)
	})
}

func TestReportService_UpdateReportStatus(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()
	r, err := s.SubmitReport(ctx, submission(false, false))
	require.NoError(t, err)

	updated, err := s.UpdateReportStatus(ctx, r.ID, jaldrishti.AdminStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, jaldrishti.AdminStatusApproved, updated.AdminStatus)

	found, err := s.FindReportByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, jaldrishti.AdminStatusApproved, found.AdminStatus)

	_, err = s.UpdateReportStatus(ctx, r.ID, jaldrishti.AdminStatusAutoRejected)
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(err))

	_, err = s.UpdateReportStatus(ctx, r.ID, "archived")
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(err))

	_, err = s.UpdateReportStatus(ctx, uuid.New(), jaldrishti.AdminStatusRejected)
	assert.Equal(t, jaldrishti.ENOTFOUND, jaldrishti.ErrorCode(err))
}

func TestReportService_ReactToReport(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()
	r, err := s.SubmitReport(ctx, submission(false, false))
	require.NoError(t, err)

	_, err = s.ReactToReport(ctx, r.ID, jaldrishti.ReactionAgree)
	require.NoError(t, err)
	_, err = s.ReactToReport(ctx, r.ID, jaldrishti.ReactionAgree)
	require.NoError(t, err)
	updated, err := s.ReactToReport(ctx, r.ID, jaldrishti.ReactionDisagree)
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Upvotes)
	assert.Equal(t, 1, updated.Downvotes)

	_, err = s.ReactToReport(ctx, r.ID, "meh")
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(err))

	_, err = s.ReactToReport(ctx, uuid.New(), jaldrishti.ReactionAgree)
	assert.Equal(t, jaldrishti.ENOTFOUND, jaldrishti.ErrorCode(err))
}

func TestReportService_ReadsAreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()
	r, err := s.SubmitReport(ctx, submission(false, false))
	require.NoError(t, err)

	before, err := s.FindReports(ctx, jaldrishti.ReportFilter{})
	require.NoError(t, err)

	_, err = s.ReactToReport(ctx, r.ID, jaldrishti.ReactionAgree)
	require.NoError(t, err)

	assert.Equal(t, 0, before[0].Upvotes)

	before[0].Upvotes = 100
	found, err := s.FindReportByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Upvotes)
}

func TestReportService_ConcurrentReactions(t *testing.T) {
	ctx := context.Background()
	s := NewReportService()
	r, err := s.SubmitReport(ctx, submission(false, false))
	require.NoError(t, err)

	const voters = 40
	var wg sync.WaitGroup
	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reaction := jaldrishti.ReactionAgree
			if i%2 == 1 {
				reaction = jaldrishti.ReactionDisagree
			}
			_, _ = s.ReactToReport(ctx, r.ID, reaction)
			_, _ = s.FindReports(ctx, jaldrishti.ReportFilter{})
		}()
	}
	wg.Wait()

	found, err := s.FindReportByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, voters/2, found.Upvotes)
	assert.Equal(t, voters/2, found.Downvotes)
}
