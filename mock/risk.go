package mock

import (
	"context"

	"github.com/jaldrishti/jaldrishti"
)

// Compile-time interface checks
var (
	_ jaldrishti.RiskScorer        = (*RiskScorer)(nil)
	_ jaldrishti.PSIEstimator      = (*PSIEstimator)(nil)
	_ jaldrishti.WardPredictor     = (*WardPredictor)(nil)
	_ jaldrishti.RainfallEstimator = (*RainfallEstimator)(nil)
	_ jaldrishti.ReferenceLoader   = (*ReferenceLoader)(nil)
)

// RiskScorer is a mock implementation of jaldrishti.RiskScorer.
type RiskScorer struct {
	ScoreFn func(rainfallMM float64, locations []jaldrishti.LocationRecord, mods jaldrishti.Modifiers) ([]jaldrishti.RiskAssessment, map[string]jaldrishti.WardAssessment)
}

func (s *RiskScorer) Score(rainfallMM float64, locations []jaldrishti.LocationRecord, mods jaldrishti.Modifiers) ([]jaldrishti.RiskAssessment, map[string]jaldrishti.WardAssessment) {
	if s.ScoreFn != nil {
		return s.ScoreFn(rainfallMM, locations, mods)
	}
	return []jaldrishti.RiskAssessment{}, map[string]jaldrishti.WardAssessment{}
}

// PSIEstimator is a mock implementation of jaldrishti.PSIEstimator.
type PSIEstimator struct {
	PredictPSIFn func(ctx context.Context, in jaldrishti.PSIInput) (float64, error)
}

func (e *PSIEstimator) PredictPSI(ctx context.Context, in jaldrishti.PSIInput) (float64, error) {
	if e.PredictPSIFn != nil {
		return e.PredictPSIFn(ctx, in)
	}
	return 0, nil
}

// WardPredictor is a mock implementation of jaldrishti.WardPredictor.
type WardPredictor struct {
	PredictWardsFn func(ctx context.Context, rainfall float64) ([]jaldrishti.WardPrediction, error)
	PredictWardFn  func(ctx context.Context, wardID string, rainfall float64) (*jaldrishti.WardPrediction, error)
}

func (p *WardPredictor) PredictWards(ctx context.Context, rainfall float64) ([]jaldrishti.WardPrediction, error) {
	if p.PredictWardsFn != nil {
		return p.PredictWardsFn(ctx, rainfall)
	}
	return []jaldrishti.WardPrediction{}, nil
}

func (p *WardPredictor) PredictWard(ctx context.Context, wardID string, rainfall float64) (*jaldrishti.WardPrediction, error) {
	if p.PredictWardFn != nil {
		return p.PredictWardFn(ctx, wardID, rainfall)
	}
	return nil, jaldrishti.NotFound("Ward not found")
}

// RainfallEstimator is a mock implementation of jaldrishti.RainfallEstimator.
type RainfallEstimator struct {
	EstimateRainfallFn func(ctx context.Context, in jaldrishti.WeatherInput) (*jaldrishti.RainfallEstimate, error)
}

func (e *RainfallEstimator) EstimateRainfall(ctx context.Context, in jaldrishti.WeatherInput) (*jaldrishti.RainfallEstimate, error) {
	if e.EstimateRainfallFn != nil {
		return e.EstimateRainfallFn(ctx, in)
	}
	return &jaldrishti.RainfallEstimate{Source: "mock"}, nil
}

// ReferenceLoader is a mock implementation of jaldrishti.ReferenceLoader.
type ReferenceLoader struct {
	LoadReferenceFn func(ctx context.Context) (*jaldrishti.ReferenceData, error)
}

func (l *ReferenceLoader) LoadReference(ctx context.Context) (*jaldrishti.ReferenceData, error) {
	if l.LoadReferenceFn != nil {
		return l.LoadReferenceFn(ctx)
	}
	return &jaldrishti.ReferenceData{Wards: map[string]jaldrishti.WardMeta{}}, nil
}
