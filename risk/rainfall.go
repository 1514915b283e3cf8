package risk

import (
	"context"
	"math"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure estimator implements interface.
var _ jaldrishti.RainfallEstimator = (*HeuristicRainfall)(nil)

// HeuristicRainfall estimates rainfall from cloud cover, humidity and
// temperature with a fixed linear blend.
type HeuristicRainfall struct{}

// EstimateRainfall never returns a negative amount.
func (HeuristicRainfall) EstimateRainfall(ctx context.Context, in jaldrishti.WeatherInput) (*jaldrishti.RainfallEstimate, error) {
	mm := in.CloudCover*1.5 + in.Humidity*0.5 - in.Temperature*0.5
	return &jaldrishti.RainfallEstimate{
		MM:     round(math.Max(0, mm), 2),
		Source: "heuristic",
	}, nil
}
