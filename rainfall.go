package jaldrishti

import "context"

// WeatherInput is a point-in-time weather reading.
type WeatherInput struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	CloudCover  float64 `json:"cloud_cover"`
}

// RainfallEstimate is an estimated rainfall amount and the model that produced it.
type RainfallEstimate struct {
	MM     float64 `json:"rainfall_mm"`
	Source string  `json:"source"`
}

// RainfallEstimator turns weather readings into an expected rainfall.
type RainfallEstimator interface {
	EstimateRainfall(ctx context.Context, in WeatherInput) (*RainfallEstimate, error)
}
