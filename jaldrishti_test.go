package jaldrishti_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jaldrishti/jaldrishti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpers(t *testing.T) {
	err := fmt.Errorf("submitting: %w", jaldrishti.NotFound("Report %s not found", "abc"))
	assert.Equal(t, jaldrishti.ENOTFOUND, jaldrishti.ErrorCode(err))
	assert.Equal(t, "Report abc not found", jaldrishti.ErrorMessage(err))
	assert.True(t, jaldrishti.IsErrorCode(err, jaldrishti.ENOTFOUND))

	cause := errors.New("connection reset")
	internal := jaldrishti.Internal("Failed to store report", cause)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, jaldrishti.EINTERNAL, jaldrishti.ErrorCode(internal))

	assert.Equal(t, jaldrishti.EINTERNAL, jaldrishti.ErrorCode(errors.New("plain")))
	assert.Empty(t, jaldrishti.ErrorCode(nil))

	fields := jaldrishti.ErrorWithFields(map[string]string{"lat": "is required"})
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(fields))
	assert.Equal(t, "is required", jaldrishti.ErrorFields(fields)["lat"])
}

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("tagging: %w", jaldrishti.Upstream("azure", 503, errors.New("unavailable")))
	assert.True(t, jaldrishti.IsUpstreamError(err))
	assert.False(t, jaldrishti.IsUpstreamError(jaldrishti.ErrNotConfigured))
}

func TestSpamVerdict(t *testing.T) {
	tests := []struct {
		name       string
		forensics  jaldrishti.ForensicResult
		wantSpam   bool
		wantStatus jaldrishti.AdminStatus
	}{
		{"clean", jaldrishti.ForensicResult{}, false, jaldrishti.AdminStatusPending},
		{"duplicate", jaldrishti.ForensicResult{IsDuplicate: true}, true, jaldrishti.AdminStatusAutoRejected},
		{"found online", jaldrishti.ForensicResult{FoundOnline: true}, true, jaldrishti.AdminStatusPending},
		{"duplicate and online", jaldrishti.ForensicResult{IsDuplicate: true, FoundOnline: true}, true, jaldrishti.AdminStatusAutoRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spam, status := jaldrishti.SpamVerdict(jaldrishti.ImageAnalysisResult{Forensics: tt.forensics})
			assert.Equal(t, tt.wantSpam, spam)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestAdminStatus_IsValid(t *testing.T) {
	assert.True(t, jaldrishti.AdminStatusApproved.IsValid())
	assert.True(t, jaldrishti.AdminStatusPending.IsValid())
	assert.False(t, jaldrishti.AdminStatusAutoRejected.IsValid())
	assert.False(t, jaldrishti.AdminStatus("archived").IsValid())
}

func TestOverrides_Modifiers(t *testing.T) {
	isp, ndvi := 75.0, 0.2
	m := jaldrishti.Overrides{ISP: &isp, NDVI: &ndvi}.Modifiers(jaldrishti.DefaultRiskPolicy())

	assert.InDelta(t, 1.5, m.ISP, 1e-9)
	assert.InDelta(t, 0.5, m.NDVI, 1e-9)
	assert.Equal(t, 1.0, m.Road)
	assert.Equal(t, 1.0, m.Population)
}

func TestReferenceData_Ward(t *testing.T) {
	ref := &jaldrishti.ReferenceData{Wards: map[string]jaldrishti.WardMeta{
		"BEGUMPET": {WardID: "BEGUMPET"},
		"AMEERPET": {WardID: "AMEERPET"},
	}}

	w, ok := ref.Ward("  begumpet ")
	require.True(t, ok)
	assert.Equal(t, "BEGUMPET", w.WardID)

	_, ok = ref.Ward("Secunderabad")
	assert.False(t, ok)

	wards := ref.SortedWards()
	require.Len(t, wards, 2)
	assert.Equal(t, "AMEERPET", wards[0].WardID)

	var empty *jaldrishti.ReferenceData
	_, ok = empty.Ward("x")
	assert.False(t, ok)
	assert.Nil(t, empty.SortedWards())
}

func TestRequestIDContext(t *testing.T) {
	ctx := jaldrishti.NewContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", jaldrishti.RequestIDFromContext(ctx))
	assert.Empty(t, jaldrishti.RequestIDFromContext(context.Background()))
}
