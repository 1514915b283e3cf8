package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaldrishti/jaldrishti"
	"github.com/jaldrishti/jaldrishti/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MustOpenDB connects to JALDRISHTI_TEST_DATABASE_URL, applies migrations and
// empties every table. The test is skipped when the variable is unset.
func MustOpenDB(t *testing.T) *postgres.DB {
	t.Helper()

	dsn := os.Getenv("JALDRISHTI_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("JALDRISHTI_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	db := postgres.NewDB(pool)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE reports, locations, wards`)
	require.NoError(t, err)
	return db
}

func TestReferenceService_ImportAndLoad(t *testing.T) {
	db := MustOpenDB(t)
	ctx := context.Background()

	ref := &jaldrishti.ReferenceData{
		Wards: map[string]jaldrishti.WardMeta{
			"1": {WardID: "1", WardNo: "Ward 1", DrainCapacity: 52, Imperviousness: 0.7, Area: 150000, Elevation: jaldrishti.ElevationSink, Population: 42000},
		},
		Locations: []jaldrishti.LocationRecord{
			{Lat: 17.4, Lng: 78.4, WardID: "1", ImperviousSurfacePct: 70, RoadDensity: 12, NDVI: 0.2, PopulationDensity: 20000},
			{Lat: 17.5, Lng: 78.5, WardID: "AMEERPET", ImperviousSurfacePct: 50, RoadDensity: 10, NDVI: 0.3, PopulationDensity: 15000},
		},
	}
	require.NoError(t, db.ReferenceService.ImportReference(ctx, ref))
	// Re-importing replaces locations rather than duplicating them.
	require.NoError(t, db.ReferenceService.ImportReference(ctx, ref))

	got, err := db.ReferenceService.LoadReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, ref.Wards["1"], got.Wards["1"])
	assert.Contains(t, got.Wards, "AMEERPET")
	assert.Equal(t, ref.Locations, got.Locations)
}

func TestReportService(t *testing.T) {
	db := MustOpenDB(t)
	ctx := context.Background()
	s := db.ReportService

	clean, err := s.SubmitReport(ctx, jaldrishti.ReportSubmission{
		Location:    "Begumpet",
		Coordinates: jaldrishti.Coordinates{Lat: 17.44, Lng: 78.46},
		Analysis:    jaldrishti.ImageAnalysisResult{Waterlogged: true, Tags: []string{"flood"}},
	})
	require.NoError(t, err)
	assert.False(t, clean.IsSpam)
	assert.Equal(t, jaldrishti.AdminStatusPending, clean.AdminStatus)
	assert.Equal(t, []string{"flood"}, clean.Analysis.Tags)

	dup, err := s.SubmitReport(ctx, jaldrishti.ReportSubmission{
		Analysis: jaldrishti.ImageAnalysisResult{Forensics: jaldrishti.ForensicResult{IsDuplicate: true}},
	})
	require.NoError(t, err)
	assert.True(t, dup.IsSpam)
	assert.Equal(t, jaldrishti.AdminStatusAutoRejected, dup.AdminStatus)

	visible, err := s.FindReports(ctx, jaldrishti.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, clean.ID, visible[0].ID)

	status := jaldrishti.AdminStatusAutoRejected
	rejected, err := s.FindReports(ctx, jaldrishti.ReportFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, rejected, 1)

	n, err := s.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	updated, err := s.UpdateReportStatus(ctx, clean.ID, jaldrishti.AdminStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, jaldrishti.AdminStatusApproved, updated.AdminStatus)

	_, err = s.UpdateReportStatus(ctx, clean.ID, "bogus")
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(err))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ReactToReport(ctx, clean.ID, jaldrishti.ReactionAgree)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.FindReportByID(ctx, clean.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Upvotes)

	_, err = s.FindReportByID(ctx, dup.ID)
	require.NoError(t, err)

	_, err = s.ReactToReport(ctx, uuid.New(), jaldrishti.ReactionDisagree)
	assert.Equal(t, jaldrishti.ENOTFOUND, jaldrishti.ErrorCode(err))
}
