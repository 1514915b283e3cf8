package opencv

import (
	"fmt"
	"image"
	"slices"

	"gocv.io/x/gocv"
)

// PerceptualHash returns a 64-bit DCT hash of the image as 16 hex digits.
// Re-encoded or lightly resized copies of an image hash identically.
func (d *Detector) PerceptualHash(data []byte) (string, error) {
	img, err := decode(data)
	if err != nil {
		return "", err
	}
	defer img.Close()

	return perceptualHash(img)
}

func perceptualHash(img gocv.Mat) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("cannot compute hash for empty image")
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Point{X: 32, Y: 32}, 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()
	if resized.Channels() != 1 {
		gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	} else {
		resized.CopyTo(&gray)
	}

	floatImg := gocv.NewMat()
	defer floatImg.Close()
	gray.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)

	lowFreq := dct.Region(image.Rect(0, 0, 8, 8))
	defer lowFreq.Close()

	values := make([]float32, 0, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			values = append(values, lowFreq.GetFloatAt(y, x))
		}
	}
	mid := median(values)

	var bits uint64
	for i, v := range values {
		if v >= mid {
			bits |= 1 << (63 - uint(i))
		}
	}
	return fmt.Sprintf("%016x", bits), nil
}

func median(values []float32) float32 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
