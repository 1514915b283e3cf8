// Package risk scores flood risk for city wards. It has two independent
// paths: a weighted-factor score over sampled locations, and a ponding
// severity index (PSI) per ward.
package risk

import (
	"math"
	"sort"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure scorer implements interface.
var _ jaldrishti.RiskScorer = (*Scorer)(nil)

// Scorer computes weighted-factor risk for locations and aggregates them
// per ward. It holds only read-only reference data and is safe for
// concurrent use.
type Scorer struct {
	policy jaldrishti.RiskPolicy
	ref    *jaldrishti.ReferenceData
}

// NewScorer creates a scorer over the given reference data.
func NewScorer(ref *jaldrishti.ReferenceData, policy jaldrishti.RiskPolicy) *Scorer {
	return &Scorer{policy: policy, ref: ref}
}

// Score evaluates every location and aggregates the results per ward.
// Assessments are returned in input order.
func (s *Scorer) Score(rainfallMM float64, locations []jaldrishti.LocationRecord, mods jaldrishti.Modifiers) ([]jaldrishti.RiskAssessment, map[string]jaldrishti.WardAssessment) {
	assessments := make([]jaldrishti.RiskAssessment, 0, len(locations))
	byWard := make(map[string][]float64)
	var order []string

	for _, loc := range locations {
		score := s.rawScore(rainfallMM, loc, mods)
		assessments = append(assessments, jaldrishti.RiskAssessment{
			Location:  loc,
			RiskScore: round(score, 1),
			Status:    s.status(score),
		})

		id := jaldrishti.NormalizeWardID(loc.WardID)
		if _, ok := byWard[id]; !ok {
			order = append(order, id)
		}
		byWard[id] = append(byWard[id], score)
	}

	wards := make(map[string]jaldrishti.WardAssessment, len(byWard))
	for _, id := range order {
		wards[id] = s.Aggregate(id, byWard[id])
	}
	return assessments, wards
}

// ScoreLocation returns the clamped 0-100 risk score of a single location.
func (s *Scorer) ScoreLocation(rainfallMM float64, loc jaldrishti.LocationRecord, mods jaldrishti.Modifiers) float64 {
	return s.rawScore(rainfallMM, loc, mods)
}

func (s *Scorer) rawScore(rainfallMM float64, loc jaldrishti.LocationRecord, mods jaldrishti.Modifiers) float64 {
	p := s.policy

	fRain := math.Min(1, rainfallMM/p.RainfallCap)
	fISP := math.Min(1, loc.ImperviousSurfacePct/p.ISPScale*mods.ISP)
	fRoad := math.Min(1, loc.RoadDensity/p.RoadScale*mods.Road)
	fNDVI := math.Min(1, loc.NDVI*mods.NDVI)
	fPop := s.populationFactor(loc, mods)

	risk := p.WeightRain*fRain +
		p.WeightISP*fISP +
		p.WeightPopulation*fPop -
		p.WeightNDVI*fNDVI +
		p.WeightRoad*fRoad

	return clamp((risk+p.Offset)*100, 0, 100)
}

// populationFactor prefers the ward's census population and falls back to
// the location's own density estimate.
func (s *Scorer) populationFactor(loc jaldrishti.LocationRecord, mods jaldrishti.Modifiers) float64 {
	if ward, ok := s.ref.Ward(loc.WardID); ok && ward.Population > 0 {
		return math.Min(1, float64(ward.Population)/s.policy.PopulationScale*mods.Population)
	}
	return math.Min(1, loc.PopulationDensity/s.policy.DensityScale*mods.Population)
}

func (s *Scorer) status(score float64) jaldrishti.RiskStatus {
	switch {
	case score > s.policy.HighScore:
		return jaldrishti.RiskHigh
	case score > s.policy.MediumScore:
		return jaldrishti.RiskMedium
	default:
		return jaldrishti.RiskLow
	}
}

// Aggregate combines the location scores of one ward. A ward is High when
// at least HighRatio of its locations are High, and Medium when at least
// MediumRatio are High or the mean exceeds MediumMean. High and Medium
// wards publish at least their floor score.
func (s *Scorer) Aggregate(wardID string, scores []float64) jaldrishti.WardAssessment {
	p := s.policy
	w := jaldrishti.WardAssessment{WardID: wardID, Status: jaldrishti.RiskLow, Locations: len(scores)}
	if len(scores) == 0 {
		return w
	}

	var sum float64
	var high int
	for _, score := range scores {
		sum += score
		if score > p.HighScore {
			high++
		}
	}
	mean := sum / float64(len(scores))
	ratio := float64(high) / float64(len(scores))

	published := mean
	switch {
	case ratio >= p.HighRatio:
		w.Status = jaldrishti.RiskHigh
		published = math.Max(mean, p.HighFloor)
	case ratio >= p.MediumRatio || mean > p.MediumMean:
		w.Status = jaldrishti.RiskMedium
		published = math.Max(mean, p.MediumFloor)
	}
	w.AggregateScore = int(published)
	return w
}

// SortedWards returns ward assessments ordered by ward ID.
func SortedWards(wards map[string]jaldrishti.WardAssessment) []jaldrishti.WardAssessment {
	out := make([]jaldrishti.WardAssessment, 0, len(wards))
	for _, w := range wards {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WardID < out[j].WardID })
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
