package jaldrishti

import (
	"context"
	"sort"
	"strings"
)

// Elevation classes a ward's terrain for runoff purposes.
type Elevation string

// Elevation values.
const (
	ElevationSink        Elevation = "Sink"
	ElevationLow         Elevation = "Low"
	ElevationModerate    Elevation = "Moderate"
	ElevationHighDensity Elevation = "High-Density"
)

// WardMeta is static reference data for one ward.
type WardMeta struct {
	WardID         string    `json:"ward_id"`
	WardNo         string    `json:"ward_no"`
	DrainCapacity  float64   `json:"drain_capacity"`
	Imperviousness float64   `json:"imperviousness"`
	Area           float64   `json:"area"`
	Elevation      Elevation `json:"elevation"`

	// Population is the ward's census population, zero when unknown.
	Population int `json:"population,omitempty"`
}

// Default attribute values for locations missing a measurement.
const (
	DefaultISP               = 50.0
	DefaultRoadDensity       = 10.0
	DefaultNDVI              = 0.3
	DefaultPopulationDensity = 15000.0
)

// LocationRecord is a sampled point inside a ward.
type LocationRecord struct {
	Lat                  float64 `json:"lat"`
	Lng                  float64 `json:"lng"`
	WardID               string  `json:"ward_id"`
	ImperviousSurfacePct float64 `json:"impervious_surface_pct"`
	RoadDensity          float64 `json:"road_density"`
	NDVI                 float64 `json:"ndvi"`
	PopulationDensity    float64 `json:"population_density"`
}

// RiskStatus is the flood risk band of a location or ward.
type RiskStatus string

// RiskStatus values.
const (
	RiskLow    RiskStatus = "Low"
	RiskMedium RiskStatus = "Medium"
	RiskHigh   RiskStatus = "High"
)

// RiskAssessment is the scored result for one location.
type RiskAssessment struct {
	Location  LocationRecord `json:"location"`
	RiskScore float64        `json:"risk_score"`
	Status    RiskStatus     `json:"status"`
}

// WardAssessment is the aggregated result for one ward.
type WardAssessment struct {
	WardID         string     `json:"ward_id"`
	Status         RiskStatus `json:"status"`
	AggregateScore int        `json:"aggregate_score"`
	Locations      int        `json:"locations"`
}

// Modifiers scale individual risk factors. 1.0 leaves a factor untouched.
type Modifiers struct {
	ISP        float64
	Road       float64
	NDVI       float64
	Population float64
}

// NeutralModifiers returns modifiers that do not change any factor.
func NeutralModifiers() Modifiers {
	return Modifiers{ISP: 1, Road: 1, NDVI: 1, Population: 1}
}

// Overrides are user-supplied attribute values for a what-if prediction.
// Nil fields are left at baseline.
type Overrides struct {
	ISP               *float64 `json:"isp,omitempty"`
	RoadDensity       *float64 `json:"road_density,omitempty"`
	NDVI              *float64 `json:"ndvi,omitempty"`
	PopulationDensity *float64 `json:"population_density,omitempty"`
}

// Modifiers converts overrides into factor modifiers relative to the
// policy's baselines.
func (o Overrides) Modifiers(p RiskPolicy) Modifiers {
	m := NeutralModifiers()
	if o.ISP != nil {
		m.ISP = *o.ISP / p.BaselineISP
	}
	if o.RoadDensity != nil {
		m.Road = *o.RoadDensity / p.BaselineRoad
	}
	if o.NDVI != nil {
		m.NDVI = *o.NDVI / p.BaselineNDVI
	}
	if o.PopulationDensity != nil {
		m.Population = *o.PopulationDensity / p.BaselinePopulation
	}
	return m
}

// RiskScorer scores locations for a given rainfall.
type RiskScorer interface {
	Score(rainfallMM float64, locations []LocationRecord, mods Modifiers) ([]RiskAssessment, map[string]WardAssessment)
}

// ReferenceData is the static ward and location table loaded at startup.
// It is read-only after loading.
type ReferenceData struct {
	Wards     map[string]WardMeta
	Locations []LocationRecord
}

// Ward returns the metadata for a ward ID.
func (r *ReferenceData) Ward(id string) (WardMeta, bool) {
	if r == nil {
		return WardMeta{}, false
	}
	w, ok := r.Wards[NormalizeWardID(id)]
	return w, ok
}

// SortedWards returns ward metadata ordered by ward ID.
func (r *ReferenceData) SortedWards() []WardMeta {
	if r == nil {
		return nil
	}
	wards := make([]WardMeta, 0, len(r.Wards))
	for _, w := range r.Wards {
		wards = append(wards, w)
	}
	sort.Slice(wards, func(i, j int) bool {
		return wards[i].WardID < wards[j].WardID
	})
	return wards
}

// ReferenceLoader loads reference data from a backing store.
type ReferenceLoader interface {
	LoadReference(ctx context.Context) (*ReferenceData, error)
}

// NormalizeWardID canonicalises a ward identifier for lookups.
func NormalizeWardID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
