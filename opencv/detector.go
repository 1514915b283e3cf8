// Package opencv implements the local image heuristics on top of gocv:
// the HSV water-coverage detector and a DCT perceptual hash.
package opencv

import (
	"context"
	"image"

	"github.com/jaldrishti/jaldrishti"
	"gocv.io/x/gocv"
)

// Ensure detector implements interfaces.
var (
	_ jaldrishti.WaterDetector = (*Detector)(nil)
	_ jaldrishti.ImageHasher   = (*Detector)(nil)
)

// HSVRange is an inclusive hue/saturation/value band in OpenCV units
// (hue 0-180, saturation and value 0-255).
type HSVRange struct {
	Lower [3]float64
	Upper [3]float64
}

// Default water colour bands.
var (
	// MuddyWater matches brown, sediment-laden water.
	MuddyWater = HSVRange{Lower: [3]float64{0, 40, 40}, Upper: [3]float64{35, 255, 255}}

	// ReflectiveWater matches grey, low-saturation surfaces such as clear
	// puddles reflecting an overcast sky.
	ReflectiveWater = HSVRange{Lower: [3]float64{0, 0, 50}, Upper: [3]float64{180, 50, 200}}
)

// Detector measures standing water and hashes images.
type Detector struct {
	ranges []HSVRange

	// GroundFraction is the share of the frame, from the top, that is
	// skipped before counting water pixels.
	GroundFraction float64
}

// NewDetector returns a detector using the muddy and reflective water bands
// over the bottom half of the frame.
func NewDetector() *Detector {
	return &Detector{
		ranges:         []HSVRange{MuddyWater, ReflectiveWater},
		GroundFraction: 0.5,
	}
}

// MeasureWater decodes the image and returns the water percentage of its
// lower region.
func (d *Detector) MeasureWater(ctx context.Context, data []byte) (*jaldrishti.WaterCoverage, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	return &jaldrishti.WaterCoverage{Percentage: d.coverage(img)}, nil
}

func (d *Detector) coverage(img gocv.Mat) float64 {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()

	for _, r := range d.ranges {
		band := gocv.NewMat()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0),
			gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0),
			&band)
		gocv.BitwiseOr(mask, band, &mask)
		band.Close()
	}

	rows, cols := mask.Rows(), mask.Cols()
	top := int(float64(rows) * d.GroundFraction)
	if top >= rows || cols == 0 {
		return 0
	}

	ground := mask.Region(image.Rect(0, top, cols, rows))
	defer ground.Close()

	water := gocv.CountNonZero(ground)
	total := (rows - top) * cols
	return float64(water) / float64(total) * 100
}

func decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), jaldrishti.Invalid("Image is empty")
	}
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), jaldrishti.Invalid("Image could not be decoded")
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), jaldrishti.Invalid("Image could not be decoded")
	}
	return img, nil
}
