// Package exif reads embedded camera metadata for image forensics.
package exif

import (
	"bytes"
	"strings"

	"github.com/jaldrishti/jaldrishti"
	goexif "github.com/rwcarlsen/goexif/exif"
)

// Ensure inspector implements interface.
var _ jaldrishti.MetadataInspector = (*Inspector)(nil)

// Inspector extracts EXIF presence and camera model.
type Inspector struct{}

// NewInspector returns an Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// InspectMetadata never fails on images without EXIF; those simply report
// HasExif=false. Camera model is "Unknown" when the tag is absent.
func (i *Inspector) InspectMetadata(image []byte) (*jaldrishti.ImageMetadata, error) {
	meta := &jaldrishti.ImageMetadata{CameraModel: jaldrishti.CameraModelUnknown}

	x, err := goexif.Decode(bytes.NewReader(image))
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return meta, nil
	}
	meta.HasExif = true

	tag, err := x.Get(goexif.Model)
	if err != nil {
		return meta, nil
	}
	model, err := tag.StringVal()
	if err != nil {
		return meta, nil
	}
	if model = strings.TrimSpace(strings.Trim(model, "\x00")); model != "" {
		meta.CameraModel = model
	}
	return meta, nil
}
