package mock

import (
	"context"

	"github.com/jaldrishti/jaldrishti"
)

// Compile-time interface checks
var (
	_ jaldrishti.Classifier        = (*Classifier)(nil)
	_ jaldrishti.VisionTagger      = (*VisionTagger)(nil)
	_ jaldrishti.WebDetector       = (*WebDetector)(nil)
	_ jaldrishti.WaterDetector     = (*WaterDetector)(nil)
	_ jaldrishti.ImageHasher       = (*ImageHasher)(nil)
	_ jaldrishti.MetadataInspector = (*MetadataInspector)(nil)
)

// Classifier is a mock implementation of jaldrishti.Classifier.
type Classifier struct {
	ClassifyFn func(ctx context.Context, image []byte) (*jaldrishti.Classification, error)
}

func (c *Classifier) Classify(ctx context.Context, image []byte) (*jaldrishti.Classification, error) {
	if c.ClassifyFn != nil {
		return c.ClassifyFn(ctx, image)
	}
	return &jaldrishti.Classification{
		Outcome: jaldrishti.OutcomeLocalFallback,
		Result: jaldrishti.ImageAnalysisResult{
			Severity:       jaldrishti.SeverityLow,
			EstimatedDepth: "0 ft",
			Method:         jaldrishti.MethodLocal,
			Tags:           []string{},
			Forensics: jaldrishti.ForensicResult{
				CameraModel:     jaldrishti.CameraModelUnknown,
				SourceInference: jaldrishti.SourceLikelyWeb,
			},
		},
	}, nil
}

// VisionTagger is a mock implementation of jaldrishti.VisionTagger.
// Without TagImageFn it behaves as an unconfigured client.
type VisionTagger struct {
	TagImageFn func(ctx context.Context, image []byte) (*jaldrishti.TagResult, error)
}

func (t *VisionTagger) TagImage(ctx context.Context, image []byte) (*jaldrishti.TagResult, error) {
	if t.TagImageFn != nil {
		return t.TagImageFn(ctx, image)
	}
	return nil, jaldrishti.ErrNotConfigured
}

// WebDetector is a mock implementation of jaldrishti.WebDetector.
type WebDetector struct {
	FindMatchesFn func(ctx context.Context, image []byte) ([]string, error)
}

func (d *WebDetector) FindMatches(ctx context.Context, image []byte) ([]string, error) {
	if d.FindMatchesFn != nil {
		return d.FindMatchesFn(ctx, image)
	}
	return nil, nil
}

// WaterDetector is a mock implementation of jaldrishti.WaterDetector.
type WaterDetector struct {
	MeasureWaterFn func(ctx context.Context, image []byte) (*jaldrishti.WaterCoverage, error)
}

func (d *WaterDetector) MeasureWater(ctx context.Context, image []byte) (*jaldrishti.WaterCoverage, error) {
	if d.MeasureWaterFn != nil {
		return d.MeasureWaterFn(ctx, image)
	}
	return &jaldrishti.WaterCoverage{}, nil
}

// ImageHasher is a mock implementation of jaldrishti.ImageHasher.
// By default the hash is the image bytes themselves.
type ImageHasher struct {
	PerceptualHashFn func(image []byte) (string, error)
}

func (h *ImageHasher) PerceptualHash(image []byte) (string, error) {
	if h.PerceptualHashFn != nil {
		return h.PerceptualHashFn(image)
	}
	return string(image), nil
}

// MetadataInspector is a mock implementation of jaldrishti.MetadataInspector.
type MetadataInspector struct {
	InspectMetadataFn func(image []byte) (*jaldrishti.ImageMetadata, error)
}

func (m *MetadataInspector) InspectMetadata(image []byte) (*jaldrishti.ImageMetadata, error) {
	if m.InspectMetadataFn != nil {
		return m.InspectMetadataFn(image)
	}
	return &jaldrishti.ImageMetadata{CameraModel: jaldrishti.CameraModelUnknown}, nil
}
