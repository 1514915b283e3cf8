package http

import (
	"log/slog"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// DefaultWardRainfall is the rainfall used by the single-ward prediction when
// none is given.
const DefaultWardRainfall = 50.0

func (s *Server) handleListWards(c echo.Context) error {
	return RespondList(c, s.reference.SortedWards())
}

// PredictWardsRequest is the request payload for the all-ward PSI prediction.
type PredictWardsRequest struct {
	RainfallIntensity *float64 `json:"rainfall_intensity" validate:"required,gte=0,lte=1000"`
}

func (s *Server) handlePredictWards(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req PredictWardsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	predictions, err := s.predictor.PredictWards(ctx, *req.RainfallIntensity)
	if err != nil {
		return err
	}
	return RespondOK(c, predictions)
}

func (s *Server) handlePredictWard(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	wardID, err := requireParam(c, "wardId")
	if err != nil {
		return err
	}
	rainfall, err := floatQuery(c, "rainfall", DefaultWardRainfall)
	if err != nil {
		return err
	}

	prediction, err := s.predictor.PredictWard(ctx, wardID, rainfall)
	if err != nil {
		return err
	}
	return RespondOK(c, prediction)
}

// PredictLocationsRequest carries weather readings and optional urban factor
// overrides. RainfallMM skips the rainfall estimate when set.
type PredictLocationsRequest struct {
	Temperature float64 `json:"temperature" validate:"gte=-60,lte=60"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	Pressure    float64 `json:"pressure" validate:"gte=0"`
	CloudCover  float64 `json:"cloud_cover" validate:"gte=0,lte=100"`

	RainfallMM *float64 `json:"rainfall_mm" validate:"omitempty,gte=0"`

	ISP               *float64 `json:"isp" validate:"omitempty,gte=0,lte=100"`
	RoadDensity       *float64 `json:"road_density" validate:"omitempty,gte=0"`
	NDVI              *float64 `json:"ndvi" validate:"omitempty,gte=-1,lte=1"`
	PopulationDensity *float64 `json:"population_density" validate:"omitempty,gte=0"`
}

// LocationRisk is one scored location in a PredictLocationsResponse.
// Population is null when the ward has no census figure.
type LocationRisk struct {
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	Ward       string                `json:"ward"`
	RiskScore  float64               `json:"risk_score"`
	Status     jaldrishti.RiskStatus `json:"status"`
	Population *int                  `json:"population"`
}

// PredictLocationsResponse is the location risk map for one rainfall figure.
type PredictLocationsResponse struct {
	RainfallMM float64                          `json:"rainfall_mm"`
	Source     string                           `json:"source"`
	Locations  []LocationRisk                   `json:"locations"`
	WardRisks  map[string]jaldrishti.RiskStatus `json:"ward_risks"`
	WardScores map[string]int                   `json:"ward_scores"`
}

func (s *Server) handlePredictLocations(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req PredictLocationsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	estimate := &jaldrishti.RainfallEstimate{Source: "user"}
	if req.RainfallMM != nil {
		estimate.MM = *req.RainfallMM
	} else {
		var err error
		estimate, err = s.rainfall.EstimateRainfall(ctx, jaldrishti.WeatherInput{
			Temperature: req.Temperature,
			Humidity:    req.Humidity,
			Pressure:    req.Pressure,
			CloudCover:  req.CloudCover,
		})
		if err != nil {
			return err
		}
	}

	mods := jaldrishti.Overrides{
		ISP:               req.ISP,
		RoadDensity:       req.RoadDensity,
		NDVI:              req.NDVI,
		PopulationDensity: req.PopulationDensity,
	}.Modifiers(s.riskPolicy)

	var locations []jaldrishti.LocationRecord
	if s.reference != nil {
		locations = s.reference.Locations
	}
	assessments, wards := s.riskScorer.Score(estimate.MM, locations, mods)

	resp := PredictLocationsResponse{
		RainfallMM: estimate.MM,
		Source:     estimate.Source,
		Locations:  make([]LocationRisk, 0, len(assessments)),
		WardRisks:  make(map[string]jaldrishti.RiskStatus, len(wards)),
		WardScores: make(map[string]int, len(wards)),
	}
	for _, a := range assessments {
		risk := LocationRisk{
			Latitude:  a.Location.Lat,
			Longitude: a.Location.Lng,
			Ward:      a.Location.WardID,
			RiskScore: a.RiskScore,
			Status:    a.Status,
		}
		if w, ok := s.reference.Ward(a.Location.WardID); ok && w.Population > 0 {
			pop := w.Population
			risk.Population = &pop
		}
		resp.Locations = append(resp.Locations, risk)
	}
	for id, w := range wards {
		resp.WardRisks[id] = w.Status
		resp.WardScores[id] = w.AggregateScore
	}

	s.log(c).Info("location risk predicted",
		slog.Float64("rainfall_mm", estimate.MM),
		slog.String("source", estimate.Source),
		slog.Int("locations", len(resp.Locations)),
		slog.Int("wards", len(wards)),
	)

	return RespondOK(c, resp)
}
