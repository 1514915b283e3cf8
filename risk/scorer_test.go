package risk

import (
	"testing"

	"github.com/jaldrishti/jaldrishti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baselineLocation(ward string) jaldrishti.LocationRecord {
	return jaldrishti.LocationRecord{
		Lat:                  17.44,
		Lng:                  78.49,
		WardID:               ward,
		ImperviousSurfacePct: 50,
		RoadDensity:          10,
		NDVI:                 0.3,
		PopulationDensity:    15000,
	}
}

func newTestScorer(wards ...jaldrishti.WardMeta) *Scorer {
	ref := &jaldrishti.ReferenceData{Wards: map[string]jaldrishti.WardMeta{}}
	for _, w := range wards {
		ref.Wards[w.WardID] = w
	}
	return NewScorer(ref, jaldrishti.DefaultRiskPolicy())
}

func TestScoreLocation(t *testing.T) {
	s := newTestScorer()
	loc := baselineLocation("W1")
	neutral := jaldrishti.NeutralModifiers()

	tests := []struct {
		name     string
		rainfall float64
		want     float64
	}{
		{name: "dry", rainfall: 0, want: 27.5},
		{name: "half cap", rainfall: 75, want: 52.5},
		{name: "at cap", rainfall: 150, want: 77.5},
		{name: "beyond cap is clamped", rainfall: 300, want: 77.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.ScoreLocation(tt.rainfall, loc, neutral), 1e-9)
		})
	}
}

func TestScoreLocation_WardPopulationPreferred(t *testing.T) {
	s := newTestScorer(jaldrishti.WardMeta{WardID: "W1", Population: 200000})
	neutral := jaldrishti.NeutralModifiers()

	withCensus := s.ScoreLocation(75, baselineLocation("w1"), neutral)
	withoutCensus := s.ScoreLocation(75, baselineLocation("W2"), neutral)

	assert.InDelta(t, 66.5, withCensus, 1e-9)
	assert.InDelta(t, 52.5, withoutCensus, 1e-9)
}

func TestScoreLocation_Modifiers(t *testing.T) {
	s := newTestScorer()
	loc := baselineLocation("W1")
	policy := jaldrishti.DefaultRiskPolicy()

	greener := 0.8
	mods := jaldrishti.Overrides{NDVI: &greener}.Modifiers(policy)
	assert.InDelta(t, 2.0, mods.NDVI, 1e-9)
	assert.InDelta(t, 1.0, mods.ISP, 1e-9)

	// ndvi factor 0.3*2 = 0.6 instead of 0.3
	assert.InDelta(t, 46.5, s.ScoreLocation(75, loc, mods), 1e-9)
}

func TestScoreLocation_Monotonic(t *testing.T) {
	s := newTestScorer()
	neutral := jaldrishti.NeutralModifiers()

	prev := -1.0
	for rain := 0.0; rain <= 400; rain += 10 {
		score := s.ScoreLocation(rain, baselineLocation("W1"), neutral)
		assert.GreaterOrEqual(t, score, prev, "rainfall=%v", rain)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		prev = score
	}

	prev = 101.0
	for ndvi := 0.0; ndvi <= 1.5; ndvi += 0.1 {
		loc := baselineLocation("W1")
		loc.NDVI = ndvi
		score := s.ScoreLocation(80, loc, neutral)
		assert.LessOrEqual(t, score, prev, "ndvi=%v", ndvi)
		prev = score
	}
}

func TestScoreLocation_Clamped(t *testing.T) {
	s := newTestScorer()
	neutral := jaldrishti.NeutralModifiers()

	hot := jaldrishti.LocationRecord{WardID: "W1", ImperviousSurfacePct: 100, RoadDensity: 40, PopulationDensity: 90000}
	assert.Equal(t, 100.0, s.ScoreLocation(500, hot, neutral))

	green := jaldrishti.LocationRecord{WardID: "W1", NDVI: 1}
	assert.Equal(t, 0.0, s.ScoreLocation(0, green, neutral))
}

func TestScore(t *testing.T) {
	s := newTestScorer()
	locations := []jaldrishti.LocationRecord{
		baselineLocation("W1"),
		baselineLocation("w1"),
		baselineLocation("W2"),
	}

	assessments, wards := s.Score(150, locations, jaldrishti.NeutralModifiers())
	require.Len(t, assessments, 3)
	require.Len(t, wards, 2)

	for _, a := range assessments {
		assert.Equal(t, 77.5, a.RiskScore)
		assert.Equal(t, jaldrishti.RiskHigh, a.Status)
	}
	assert.Equal(t, 2, wards["W1"].Locations)
	assert.Equal(t, jaldrishti.RiskHigh, wards["W1"].Status)
	assert.Equal(t, 77, wards["W1"].AggregateScore)

	sorted := SortedWards(wards)
	require.Len(t, sorted, 2)
	assert.Equal(t, "W1", sorted[0].WardID)
	assert.Equal(t, "W2", sorted[1].WardID)
}

func TestScore_WardKeysCanonical(t *testing.T) {
	s := newTestScorer()
	locations := []jaldrishti.LocationRecord{
		baselineLocation("Begumpet "),
		baselineLocation("begumpet"),
	}

	assessments, wards := s.Score(150, locations, jaldrishti.NeutralModifiers())
	require.Len(t, wards, 1)
	require.Contains(t, wards, "BEGUMPET")
	assert.Equal(t, "BEGUMPET", wards["BEGUMPET"].WardID)
	assert.Equal(t, 2, wards["BEGUMPET"].Locations)
	assert.Equal(t, "Begumpet ", assessments[0].Location.WardID)
}

func TestAggregate(t *testing.T) {
	s := newTestScorer()

	repeat := func(v float64, n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}

	tests := []struct {
		name   string
		scores []float64
		status jaldrishti.RiskStatus
		score  int
	}{
		{
			name:   "high ratio floors at 75",
			scores: append(repeat(71, 3), repeat(20, 7)...),
			status: jaldrishti.RiskHigh,
			score:  75,
		},
		{
			name:   "medium by ratio floors at 45",
			scores: append(repeat(71, 1), repeat(20, 9)...),
			status: jaldrishti.RiskMedium,
			score:  45,
		},
		{
			name:   "medium by mean",
			scores: repeat(55, 4),
			status: jaldrishti.RiskMedium,
			score:  55,
		},
		{
			name:   "high mean above floor is truncated",
			scores: repeat(77.5, 2),
			status: jaldrishti.RiskHigh,
			score:  77,
		},
		{
			name:   "low",
			scores: repeat(30, 5),
			status: jaldrishti.RiskLow,
			score:  30,
		},
		{
			name:   "exactly 70 is not high",
			scores: repeat(70, 3),
			status: jaldrishti.RiskMedium,
			score:  70,
		},
		{
			name:   "empty",
			scores: nil,
			status: jaldrishti.RiskLow,
			score:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.Aggregate("W9", tt.scores)
			assert.Equal(t, tt.status, w.Status)
			assert.Equal(t, tt.score, w.AggregateScore)
			assert.Equal(t, len(tt.scores), w.Locations)
		})
	}
}
