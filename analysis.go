package jaldrishti

import "context"

// Severity grades how badly an area is waterlogged.
type Severity string

// Severity values.
const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
)

// Method names the detection path that produced a result.
type Method string

// Method values.
const (
	MethodAzure  Method = "azure_api"
	MethodLocal  Method = "local_opencv"
	MethodHybrid Method = "hybrid"
)

// SourceInference describes where an image most likely came from.
type SourceInference string

// SourceInference values.
const (
	SourceOriginalCamera SourceInference = "Original Camera"
	SourceLikelyWeb      SourceInference = "Likely Web/Digital Source"
	SourceConfirmedWeb   SourceInference = "Confirmed Web Cloud Source"
)

// Camera model placeholders used when the EXIF model is not available.
const (
	CameraModelUnknown     = "Unknown"
	CameraModelOnlineMatch = "Online Image Match"
)

// Forensic check names reported in ForensicResult.Skipped.
const (
	CheckMetadata    = "metadata"
	CheckDuplicate   = "duplicate"
	CheckWebPresence = "web_presence"
)

// Outcome tags which branch of the decision pipeline produced a classification.
type Outcome string

// Outcome values.
const (
	// OutcomePrimary means the remote tagging result was used as-is.
	OutcomePrimary Outcome = "primary"

	// OutcomeLocalFallback means the remote path was unavailable and the
	// local heuristic result was used.
	OutcomeLocalFallback Outcome = "local_fallback"

	// OutcomeHybridOverride means the remote path said "not waterlogged"
	// and the local heuristic overruled it.
	OutcomeHybridOverride Outcome = "hybrid_override"
)

// ForensicResult holds the provenance checks run against an uploaded image.
type ForensicResult struct {
	HasExif         bool            `json:"has_exif"`
	CameraModel     string          `json:"camera_model"`
	SourceInference SourceInference `json:"source_inference"`
	IsDuplicate     bool            `json:"is_duplicate"`
	FoundOnline     bool            `json:"found_online"`

	// Skipped lists the checks that could not run for this image.
	Skipped []string `json:"skipped,omitempty"`
}

// ImageAnalysisResult is the verdict returned for one image.
type ImageAnalysisResult struct {
	Waterlogged    bool           `json:"waterlogged"`
	Confidence     float64        `json:"confidence"`
	Severity       Severity       `json:"severity"`
	EstimatedDepth string         `json:"estimated_depth"`
	Method         Method         `json:"method"`
	Tags           []string       `json:"tags"`
	Caption        string         `json:"caption"`
	Forensics      ForensicResult `json:"forensics"`
}

// Classification pairs a result with the pipeline branch that produced it.
type Classification struct {
	Outcome Outcome             `json:"outcome"`
	Result  ImageAnalysisResult `json:"result"`
}

// Classifier decides whether an image shows waterlogging.
type Classifier interface {
	// Classify analyses raw image bytes. External service failures never
	// surface as errors; only an image that cannot be decoded at all does.
	Classify(ctx context.Context, image []byte) (*Classification, error)
}

// Tag is a single label returned by a vision tagging service.
type Tag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Caption is a natural-language description of an image.
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TagResult is the output of a vision tagging call.
type TagResult struct {
	Tags           []Tag
	Captions       []Caption
	DominantColors []string
}

// VisionTagger labels images using a remote vision service.
type VisionTagger interface {
	// TagImage returns ErrNotConfigured when no credentials are present and
	// an *UpstreamError when the remote call fails.
	TagImage(ctx context.Context, image []byte) (*TagResult, error)
}

// WebDetector looks up whether an image already exists on the public web.
type WebDetector interface {
	// FindMatches returns URLs of full or partial matches. An empty slice
	// means the image was not found online.
	FindMatches(ctx context.Context, image []byte) ([]string, error)
}

// WaterCoverage is the share of the lower half of an image that looks like
// standing water.
type WaterCoverage struct {
	Percentage float64
}

// WaterDetector runs the local colour heuristic.
type WaterDetector interface {
	MeasureWater(ctx context.Context, image []byte) (*WaterCoverage, error)
}

// ImageHasher computes a perceptual hash that is stable across re-encoding.
type ImageHasher interface {
	PerceptualHash(image []byte) (string, error)
}

// ImageMetadata is the subset of embedded metadata used for forensics.
type ImageMetadata struct {
	HasExif     bool
	CameraModel string
}

// MetadataInspector reads embedded image metadata.
type MetadataInspector interface {
	InspectMetadata(image []byte) (*ImageMetadata, error)
}

// DuplicateRegistry remembers perceptual hashes seen since process start.
// Implementations must make CheckAndAdd atomic: of two concurrent calls with
// the same hash, exactly one reports false.
type DuplicateRegistry interface {
	// CheckAndAdd reports whether hash was already present and records it.
	CheckAndAdd(ctx context.Context, hash string) (seen bool, err error)

	// Len returns the number of distinct hashes recorded.
	Len(ctx context.Context) (int, error)

	// Close releases the registry. Its contents are not persisted.
	Close() error
}
