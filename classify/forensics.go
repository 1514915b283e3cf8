package classify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jaldrishti/jaldrishti"
)

// forensics runs the provenance checks. A failing check is recorded as
// skipped and never fails the classification.
func (s *Service) forensics(ctx context.Context, logger *slog.Logger, image []byte) jaldrishti.ForensicResult {
	f := jaldrishti.ForensicResult{
		CameraModel:     jaldrishti.CameraModelUnknown,
		SourceInference: jaldrishti.SourceLikelyWeb,
	}

	if meta, err := s.inspectMetadata(image); err != nil {
		logger.Warn("metadata check skipped", slog.String("error", err.Error()))
		f.Skipped = append(f.Skipped, jaldrishti.CheckMetadata)
	} else {
		f.HasExif = meta.HasExif
		if meta.CameraModel != "" {
			f.CameraModel = meta.CameraModel
		}
		if meta.HasExif {
			f.SourceInference = jaldrishti.SourceOriginalCamera
		}
	}

	if seen, err := s.checkDuplicate(ctx, image); err != nil {
		logger.Warn("duplicate check skipped", slog.String("error", err.Error()))
		f.Skipped = append(f.Skipped, jaldrishti.CheckDuplicate)
	} else {
		f.IsDuplicate = seen
	}

	matches, err := s.findOnline(ctx, image)
	switch {
	case errors.Is(err, jaldrishti.ErrNotConfigured):
		f.Skipped = append(f.Skipped, jaldrishti.CheckWebPresence)
	case err != nil:
		logger.Warn("web presence check skipped", slog.String("error", err.Error()))
		f.Skipped = append(f.Skipped, jaldrishti.CheckWebPresence)
	case len(matches) > 0:
		f.FoundOnline = true
		f.SourceInference = jaldrishti.SourceConfirmedWeb
		f.CameraModel = jaldrishti.CameraModelOnlineMatch
	}

	return f
}

func (s *Service) inspectMetadata(image []byte) (*jaldrishti.ImageMetadata, error) {
	if s.metadata == nil {
		return nil, jaldrishti.ErrNotConfigured
	}
	return s.metadata.InspectMetadata(image)
}

func (s *Service) checkDuplicate(ctx context.Context, image []byte) (bool, error) {
	if s.hasher == nil || s.registry == nil {
		return false, jaldrishti.ErrNotConfigured
	}
	hash, err := s.hasher.PerceptualHash(image)
	if err != nil {
		return false, err
	}
	return s.registry.CheckAndAdd(ctx, hash)
}

func (s *Service) findOnline(ctx context.Context, image []byte) ([]string, error) {
	if s.web == nil {
		return nil, jaldrishti.ErrNotConfigured
	}
	return s.web.FindMatches(ctx, image)
}
