package jaldrishti

import "context"

// PSIStatus is the band of a ponding severity index value.
type PSIStatus string

// PSIStatus values.
const (
	PSISafe     PSIStatus = "SAFE"
	PSIModerate PSIStatus = "MODERATE"
	PSIHigh     PSIStatus = "HIGH"
	PSICritical PSIStatus = "CRITICAL"
)

// PSIInput is the feature vector for one ward under a given rainfall.
type PSIInput struct {
	RainfallIntensity float64
	DrainCapacity     float64
	Imperviousness    float64
	Area              float64
	Elevation         Elevation
}

// PSIInputForWard builds a PSIInput from ward metadata.
func PSIInputForWard(w WardMeta, rainfall float64) PSIInput {
	return PSIInput{
		RainfallIntensity: rainfall,
		DrainCapacity:     w.DrainCapacity,
		Imperviousness:    w.Imperviousness,
		Area:              w.Area,
		Elevation:         w.Elevation,
	}
}

// PSIEstimator predicts the ponding severity index (0-10) for a ward.
type PSIEstimator interface {
	PredictPSI(ctx context.Context, in PSIInput) (float64, error)
}

// WardPrediction is a PSI prediction for one ward.
type WardPrediction struct {
	WardID       string    `json:"ward_id"`
	WardNo       string    `json:"ward_no"`
	PredictedPSI float64   `json:"predicted_psi"`
	Status       PSIStatus `json:"status"`
}

// WardPredictor predicts PSI across the ward reference table.
type WardPredictor interface {
	// PredictWards returns predictions ordered by ward ID.
	PredictWards(ctx context.Context, rainfall float64) ([]WardPrediction, error)

	// PredictWard returns ENOTFOUND for an unknown ward.
	PredictWard(ctx context.Context, wardID string, rainfall float64) (*WardPrediction, error)
}
