// Package classify implements the waterlogging decision pipeline: remote
// vision tagging with a local colour-heuristic fallback, followed by
// forensic checks on the uploaded image.
package classify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure service implements interface.
var _ jaldrishti.Classifier = (*Service)(nil)

// Service is the hybrid image classifier.
type Service struct {
	tagger   jaldrishti.VisionTagger
	detector jaldrishti.WaterDetector
	hasher   jaldrishti.ImageHasher
	metadata jaldrishti.MetadataInspector
	web      jaldrishti.WebDetector
	registry jaldrishti.DuplicateRegistry
	policy   jaldrishti.ClassifierPolicy
	logger   *slog.Logger
}

// Config holds the collaborators of a Service. Tagger and Web may be nil;
// the pipeline then behaves as if those services were not configured.
type Config struct {
	Tagger   jaldrishti.VisionTagger
	Detector jaldrishti.WaterDetector
	Hasher   jaldrishti.ImageHasher
	Metadata jaldrishti.MetadataInspector
	Web      jaldrishti.WebDetector
	Registry jaldrishti.DuplicateRegistry
	Policy   jaldrishti.ClassifierPolicy
	Logger   *slog.Logger
}

// NewService creates a classifier. A zero Policy is replaced by the default.
func NewService(cfg Config) *Service {
	policy := cfg.Policy
	if len(policy.Lexicon) == 0 {
		policy = jaldrishti.DefaultClassifierPolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tagger:   cfg.Tagger,
		detector: cfg.Detector,
		hasher:   cfg.Hasher,
		metadata: cfg.Metadata,
		web:      cfg.Web,
		registry: cfg.Registry,
		policy:   policy,
		logger:   logger,
	}
}

// Classify runs the decision pipeline and then the forensic checks.
func (s *Service) Classify(ctx context.Context, image []byte) (*jaldrishti.Classification, error) {
	if len(image) == 0 {
		return nil, jaldrishti.Invalid("Image is empty")
	}
	logger := s.logger.With(slog.String("request_id", jaldrishti.RequestIDFromContext(ctx)))

	c, err := s.decide(ctx, logger, image)
	if err != nil {
		return nil, err
	}
	c.Result.Forensics = s.forensics(ctx, logger, image)

	logger.Debug("image classified",
		slog.String("outcome", string(c.Outcome)),
		slog.Bool("waterlogged", c.Result.Waterlogged),
		slog.Float64("confidence", c.Result.Confidence))
	return c, nil
}

// decide picks between the remote and local verdicts. The local heuristic
// only runs when the remote path is unavailable or answered "not waterlogged".
func (s *Service) decide(ctx context.Context, logger *slog.Logger, image []byte) (*jaldrishti.Classification, error) {
	primary, err := s.primary(ctx, image)
	if err != nil {
		logPrimaryMiss(logger, err)

		local, err := s.local(ctx, image)
		if err != nil {
			return nil, err
		}
		return &jaldrishti.Classification{Outcome: jaldrishti.OutcomeLocalFallback, Result: *local}, nil
	}

	if primary.Waterlogged {
		return &jaldrishti.Classification{Outcome: jaldrishti.OutcomePrimary, Result: *primary}, nil
	}

	local, err := s.local(ctx, image)
	if err != nil {
		logger.Warn("local heuristic failed, keeping remote verdict", slog.String("error", err.Error()))
		return &jaldrishti.Classification{Outcome: jaldrishti.OutcomePrimary, Result: *primary}, nil
	}
	if !local.Waterlogged {
		return &jaldrishti.Classification{Outcome: jaldrishti.OutcomePrimary, Result: *primary}, nil
	}

	local.Method = jaldrishti.MethodHybrid
	local.Tags = primary.Tags
	local.Caption = primary.Caption
	return &jaldrishti.Classification{Outcome: jaldrishti.OutcomeHybridOverride, Result: *local}, nil
}

func (s *Service) primary(ctx context.Context, image []byte) (*jaldrishti.ImageAnalysisResult, error) {
	if s.tagger == nil {
		return nil, jaldrishti.ErrNotConfigured
	}
	tags, err := s.tagger.TagImage(ctx, image)
	if err != nil {
		return nil, err
	}
	result := evaluateTags(s.policy, tags)
	return &result, nil
}

func (s *Service) local(ctx context.Context, image []byte) (*jaldrishti.ImageAnalysisResult, error) {
	if s.detector == nil {
		return nil, jaldrishti.Internal("Local detector is not configured", nil)
	}
	coverage, err := s.detector.MeasureWater(ctx, image)
	if err != nil {
		if jaldrishti.ErrorCode(err) == jaldrishti.EINVALID {
			return nil, err
		}
		return nil, jaldrishti.Internal("Failed to analyse image", err)
	}
	result := evaluateCoverage(s.policy, coverage.Percentage)
	return &result, nil
}

func logPrimaryMiss(logger *slog.Logger, err error) {
	if errors.Is(err, jaldrishti.ErrNotConfigured) {
		logger.Debug("vision tagging not configured, using local heuristic")
		return
	}
	logger.Warn("vision tagging failed, using local heuristic", slog.String("error", err.Error()))
}
