package jaldrishti

// ClassifierPolicy holds every tunable of the image classifier.
type ClassifierPolicy struct {
	// Lexicon is the vocabulary that marks an image as water related.
	Lexicon []string

	// TagMinConfidence is the confidence a tag must exceed to count.
	TagMinConfidence float64

	// Confidence blend.
	TagBoost         float64
	FloodBoost       float64
	PuddleBoost      float64
	StreetWaterBoost float64
	MaxConfidence    float64
	FloodFloor       float64

	// Depth labels used by the remote tagging path.
	FloodDepth   string
	PuddleDepth  string
	DefaultDepth string
	DryDepth     string

	// Local heuristic thresholds, all in percent of the lower half.
	WaterThreshold   float64
	HighCoverage     float64
	ModerateCoverage float64

	// DepthDivisor converts coverage percentage to feet.
	DepthDivisor float64
}

// DefaultClassifierPolicy returns the production classifier settings.
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{
		Lexicon: []string{
			"water", "flood", "rain", "puddle", "reflection",
			"river", "lake", "wet", "storm", "drain",
			"sewer", "canal", "road", "street", "outdoor",
		},
		TagMinConfidence: 0.4,
		TagBoost:         15,
		FloodBoost:       30,
		PuddleBoost:      20,
		StreetWaterBoost: 25,
		MaxConfidence:    98.5,
		FloodFloor:       85,
		FloodDepth:       "2.5 ft",
		PuddleDepth:      "0.5 ft",
		DefaultDepth:     "1.2 ft",
		DryDepth:         "0 ft",
		WaterThreshold:   10,
		HighCoverage:     60,
		ModerateCoverage: 40,
		DepthDivisor:     20,
	}
}

// RiskPolicy holds the weights and thresholds of the ward risk scorer.
type RiskPolicy struct {
	// Normalisation divisors for raw factors.
	RainfallCap     float64
	ISPScale        float64
	RoadScale       float64
	PopulationScale float64
	DensityScale    float64

	// Factor weights. NDVI is subtracted.
	WeightRain       float64
	WeightISP        float64
	WeightPopulation float64
	WeightNDVI       float64
	WeightRoad       float64
	Offset           float64

	// Per-location status thresholds (strictly greater than).
	HighScore   float64
	MediumScore float64

	// Ward aggregation.
	HighRatio   float64
	MediumRatio float64
	MediumMean  float64
	HighFloor   float64
	MediumFloor float64

	// Baselines that turn user overrides into modifiers.
	BaselineISP        float64
	BaselineRoad       float64
	BaselineNDVI       float64
	BaselinePopulation float64
}

// DefaultRiskPolicy returns the production scorer settings.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		RainfallCap:        150,
		ISPScale:           100,
		RoadScale:          20,
		PopulationScale:    100000,
		DensityScale:       50000,
		WeightRain:         0.5,
		WeightISP:          0.25,
		WeightPopulation:   0.2,
		WeightNDVI:         0.2,
		WeightRoad:         0.1,
		Offset:             0.1,
		HighScore:          70,
		MediumScore:        40,
		HighRatio:          0.3,
		MediumRatio:        0.1,
		MediumMean:         50,
		HighFloor:          75,
		MediumFloor:        45,
		BaselineISP:        50,
		BaselineRoad:       10,
		BaselineNDVI:       0.4,
		BaselinePopulation: 15000,
	}
}

// PSIPolicy holds the status thresholds of the ponding severity index.
type PSIPolicy struct {
	Critical float64
	High     float64
	Moderate float64
}

// DefaultPSIPolicy returns the production PSI thresholds.
func DefaultPSIPolicy() PSIPolicy {
	return PSIPolicy{Critical: 7, High: 5, Moderate: 3}
}

// Status maps a PSI value to its status label.
func (p PSIPolicy) Status(psi float64) PSIStatus {
	switch {
	case psi >= p.Critical:
		return PSICritical
	case psi >= p.High:
		return PSIHigh
	case psi >= p.Moderate:
		return PSIModerate
	default:
		return PSISafe
	}
}
