package risk

import (
	"context"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure types implement interfaces.
var (
	_ jaldrishti.PSIEstimator  = (*RationalEstimator)(nil)
	_ jaldrishti.WardPredictor = (*Predictor)(nil)
)

// elevationFactors scale runoff by terrain. Unknown classes are neutral.
var elevationFactors = map[jaldrishti.Elevation]float64{
	jaldrishti.ElevationSink:        1.3,
	jaldrishti.ElevationLow:         1.15,
	jaldrishti.ElevationModerate:    1.0,
	jaldrishti.ElevationHighDensity: 0.95,
}

// RationalEstimator predicts PSI from drain capacity utilisation using the
// rational runoff method.
type RationalEstimator struct{}

// NewRationalEstimator returns a RationalEstimator.
func NewRationalEstimator() *RationalEstimator {
	return &RationalEstimator{}
}

// PredictPSI returns a PSI in [0, 10] rounded to two decimals.
func (e *RationalEstimator) PredictPSI(ctx context.Context, in jaldrishti.PSIInput) (float64, error) {
	if in.DrainCapacity <= 0 {
		return 0, jaldrishti.Invalid("Drain capacity must be positive")
	}
	if in.RainfallIntensity < 0 {
		return 0, jaldrishti.Invalid("Rainfall intensity must not be negative")
	}

	runoff := in.Imperviousness * in.RainfallIntensity * (in.Area / 10000)
	factor, ok := elevationFactors[in.Elevation]
	if !ok {
		factor = 1.0
	}
	ratio := runoff / in.DrainCapacity * factor

	return round(clamp(psiFromRatio(ratio), 0, 10), 2), nil
}

// psiFromRatio maps capacity utilisation to the 0-10 severity scale.
// Utilisation below 0.3 is barely noticeable; above 1.0 the drains are
// overwhelmed and PSI climbs slowly towards the cap.
func psiFromRatio(r float64) float64 {
	switch {
	case r < 0.3:
		return r * 6.6
	case r < 0.7:
		return 2 + (r-0.3)*7.5
	case r < 1.0:
		return 5 + (r-0.7)*10
	default:
		return 8 + (r-1.0)*1.5
	}
}

// Predictor runs a PSIEstimator across the ward table.
type Predictor struct {
	estimator jaldrishti.PSIEstimator
	ref       *jaldrishti.ReferenceData
	policy    jaldrishti.PSIPolicy
}

// NewPredictor creates a ward predictor.
func NewPredictor(estimator jaldrishti.PSIEstimator, ref *jaldrishti.ReferenceData, policy jaldrishti.PSIPolicy) *Predictor {
	return &Predictor{estimator: estimator, ref: ref, policy: policy}
}

// PredictWards returns a prediction for every ward with drainage metadata,
// ordered by ward ID. Wards known only from census data are skipped.
func (p *Predictor) PredictWards(ctx context.Context, rainfall float64) ([]jaldrishti.WardPrediction, error) {
	wards := p.ref.SortedWards()
	predictions := make([]jaldrishti.WardPrediction, 0, len(wards))
	for _, w := range wards {
		if w.DrainCapacity <= 0 {
			continue
		}
		pred, err := p.predict(ctx, w, rainfall)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, *pred)
	}
	return predictions, nil
}

// PredictWard returns the prediction for a single ward.
func (p *Predictor) PredictWard(ctx context.Context, wardID string, rainfall float64) (*jaldrishti.WardPrediction, error) {
	w, ok := p.ref.Ward(wardID)
	if !ok {
		return nil, jaldrishti.NotFound("Ward not found")
	}
	return p.predict(ctx, w, rainfall)
}

func (p *Predictor) predict(ctx context.Context, w jaldrishti.WardMeta, rainfall float64) (*jaldrishti.WardPrediction, error) {
	psi, err := p.estimator.PredictPSI(ctx, jaldrishti.PSIInputForWard(w, rainfall))
	if err != nil {
		return nil, err
	}
	return &jaldrishti.WardPrediction{
		WardID:       w.WardID,
		WardNo:       w.WardNo,
		PredictedPSI: psi,
		Status:       p.policy.Status(psi),
	}, nil
}
