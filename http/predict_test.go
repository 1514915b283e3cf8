package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jaldrishti/jaldrishti"
	jhttp "github.com/jaldrishti/jaldrishti/http"
	"github.com/jaldrishti/jaldrishti/mock"
	"github.com/jaldrishti/jaldrishti/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReference() *jaldrishti.ReferenceData {
	return &jaldrishti.ReferenceData{
		Wards: map[string]jaldrishti.WardMeta{
			"1":        {WardID: "1", WardNo: "Ward 1", DrainCapacity: 50, Imperviousness: 1, Area: 10000, Elevation: jaldrishti.ElevationModerate},
			"BEGUMPET": {WardID: "BEGUMPET", Population: 42000},
		},
		Locations: []jaldrishti.LocationRecord{
			{Lat: 17.4, Lng: 78.4, WardID: "1", ImperviousSurfacePct: 50, RoadDensity: 10, NDVI: 0.3, PopulationDensity: 15000},
			{Lat: 17.5, Lng: 78.5, WardID: "BEGUMPET", ImperviousSurfacePct: 50, RoadDensity: 10, NDVI: 0.3, PopulationDensity: 15000},
		},
	}
}

func TestPredict_APIKey(t *testing.T) {
	s := newTestServer(t, jhttp.Config{APIKey: "secret"})

	rec := serve(s, jsonRequest(http.MethodPost, "/api/predict", map[string]float64{"rainfall_intensity": 50}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/predict", map[string]float64{"rainfall_intensity": 50})
	req.Header.Set(jhttp.HeaderAPIKey, "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code)

	req = jsonRequest(http.MethodPost, "/api/predict", map[string]float64{"rainfall_intensity": 50})
	req.Header.Set(jhttp.HeaderAPIKey, "secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)

	// Ward metadata stays public.
	assert.Equal(t, http.StatusOK, serve(s, jsonRequest(http.MethodGet, "/api/wards", nil)).Code)
}

func TestPredictWards(t *testing.T) {
	ref := testReference()
	predictor := risk.NewPredictor(risk.NewRationalEstimator(), ref, jaldrishti.DefaultPSIPolicy())
	s := newTestServer(t, jhttp.Config{Predictor: predictor, Reference: ref})

	rec := serve(s, jsonRequest(http.MethodPost, "/api/predict", map[string]float64{"rainfall_intensity": 50}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	predictions := decode[[]jaldrishti.WardPrediction](t, rec)
	require.Len(t, predictions, 1)
	assert.Equal(t, jaldrishti.WardPrediction{WardID: "1", WardNo: "Ward 1", PredictedPSI: 8, Status: jaldrishti.PSICritical}, predictions[0])

	rec = serve(s, jsonRequest(http.MethodPost, "/api/predict", map[string]float64{"rainfall_intensity": -1}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/predict", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decode[jhttp.ErrorResponse](t, rec).Fields["rainfall_intensity"])

	rec = serve(s, jsonRequest(http.MethodGet, "/api/wards", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[jhttp.ListResponse[jaldrishti.WardMeta]](t, rec).Total)
}

func TestPredictWard(t *testing.T) {
	var gotRainfall float64
	s := newTestServer(t, jhttp.Config{
		Predictor: &mock.WardPredictor{
			PredictWardFn: func(ctx context.Context, wardID string, rainfall float64) (*jaldrishti.WardPrediction, error) {
				gotRainfall = rainfall
				if wardID != "7" {
					return nil, jaldrishti.NotFound("Ward not found")
				}
				return &jaldrishti.WardPrediction{WardID: "7", PredictedPSI: 3.2, Status: jaldrishti.PSIModerate}, nil
			},
		},
	})

	rec := serve(s, jsonRequest(http.MethodGet, "/api/predict/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jhttp.DefaultWardRainfall, gotRainfall)
	assert.Equal(t, jaldrishti.PSIModerate, decode[jaldrishti.WardPrediction](t, rec).Status)

	rec = serve(s, jsonRequest(http.MethodGet, "/api/predict/7?rainfall=120.5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120.5, gotRainfall)

	rec = serve(s, jsonRequest(http.MethodGet, "/api/predict/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, jsonRequest(http.MethodGet, "/api/predict/7?rainfall=lots", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictLocations(t *testing.T) {
	ref := testReference()
	var gotWeather jaldrishti.WeatherInput
	s := newTestServer(t, jhttp.Config{
		Reference:  ref,
		RiskScorer: risk.NewScorer(ref, jaldrishti.DefaultRiskPolicy()),
		RainfallEstimator: &mock.RainfallEstimator{
			EstimateRainfallFn: func(ctx context.Context, in jaldrishti.WeatherInput) (*jaldrishti.RainfallEstimate, error) {
				gotWeather = in
				return &jaldrishti.RainfallEstimate{MM: 150, Source: "heuristic"}, nil
			},
		},
	})

	rec := serve(s, jsonRequest(http.MethodPost, "/api/predict/locations", map[string]float64{
		"temperature": 24, "humidity": 90, "pressure": 1002, "cloud_cover": 80,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, jaldrishti.WeatherInput{Temperature: 24, Humidity: 90, Pressure: 1002, CloudCover: 80}, gotWeather)

	resp := decode[jhttp.PredictLocationsResponse](t, rec)
	assert.Equal(t, 150.0, resp.RainfallMM)
	assert.Equal(t, "heuristic", resp.Source)
	require.Len(t, resp.Locations, 2)

	assert.Equal(t, 77.5, resp.Locations[0].RiskScore)
	assert.Equal(t, jaldrishti.RiskHigh, resp.Locations[0].Status)
	assert.Nil(t, resp.Locations[0].Population)

	// Begumpet has census population 42000: 0.42 instead of 0.3 for the population factor.
	assert.Equal(t, 79.9, resp.Locations[1].RiskScore)
	require.NotNil(t, resp.Locations[1].Population)
	assert.Equal(t, 42000, *resp.Locations[1].Population)

	assert.Equal(t, map[string]jaldrishti.RiskStatus{"1": jaldrishti.RiskHigh, "BEGUMPET": jaldrishti.RiskHigh}, resp.WardRisks)
	assert.Equal(t, map[string]int{"1": 77, "BEGUMPET": 79}, resp.WardScores)

	t.Run("explicit rainfall and overrides", func(t *testing.T) {
		rec := serve(s, jsonRequest(http.MethodPost, "/api/predict/locations", map[string]float64{
			"rainfall_mm": 0, "ndvi": 0.8,
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[jhttp.PredictLocationsResponse](t, rec)
		assert.Equal(t, "user", resp.Source)
		// ndvi modifier 2.0 doubles the vegetation credit: 27.5 - 6.
		assert.Equal(t, 21.5, resp.Locations[0].RiskScore)
	})

	t.Run("invalid override", func(t *testing.T) {
		rec := serve(s, jsonRequest(http.MethodPost, "/api/predict/locations", map[string]float64{"humidity": 140}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
