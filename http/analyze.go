package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// imageExtensions maps accepted content types to stored file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AnalyzeResponse is the classification result plus where the image was stored.
type AnalyzeResponse struct {
	jaldrishti.ImageAnalysisResult
	Outcome  jaldrishti.Outcome `json:"outcome"`
	ImageURL string             `json:"image_url,omitempty"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), AnalyzeTimeout)
	defer cancel()

	file, err := c.FormFile("file")
	if err != nil {
		return jaldrishti.Invalid("file is required")
	}
	if file.Size > jaldrishti.MaxUploadSize {
		return jaldrishti.Invalid("image exceeds maximum size of 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return jaldrishti.Internal("Failed to read uploaded file", err)
	}
	defer src.Close()

	image, err := io.ReadAll(io.LimitReader(src, jaldrishti.MaxUploadSize+1))
	if err != nil {
		return jaldrishti.Internal("Failed to read uploaded file", err)
	}
	if len(image) == 0 {
		return jaldrishti.Invalid("file is empty")
	}
	if len(image) > jaldrishti.MaxUploadSize {
		return jaldrishti.Invalid("image exceeds maximum size of 10MB")
	}

	contentType := http.DetectContentType(image)
	if !jaldrishti.IsAcceptedImageType(contentType) {
		return jaldrishti.Invalid("invalid image type, must be JPEG, PNG, or WebP")
	}

	classification, err := s.classifier.Classify(ctx, image)
	if err != nil {
		return err
	}
	s.metrics.RecordClassification(classification)

	resp := AnalyzeResponse{
		ImageAnalysisResult: classification.Result,
		Outcome:             classification.Outcome,
		ImageURL:            s.storeImage(ctx, c, image, contentType),
	}

	s.log(c).Info("image analyzed",
		slog.String("outcome", string(classification.Outcome)),
		slog.Bool("waterlogged", resp.Waterlogged),
		slog.Float64("confidence", resp.Confidence),
		slog.Bool("duplicate", resp.Forensics.IsDuplicate),
	)

	return RespondOK(c, resp)
}

// storeImage uploads the image and returns its URL. A storage failure is
// logged and leaves the URL empty; the analysis is still returned.
func (s *Server) storeImage(ctx context.Context, c echo.Context, image []byte, contentType string) string {
	if s.fileStorage == nil {
		return ""
	}
	key := "reports/" + uuid.New().String() + imageExtensions[contentType]
	url, err := s.fileStorage.Upload(ctx, key, bytes.NewReader(image), contentType)
	if err != nil {
		s.log(c).Warn("failed to store analyzed image",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return ""
	}
	return url
}
