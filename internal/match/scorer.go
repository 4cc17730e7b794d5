package match

import (
	"fmt"
	"image"

	img "holefinder/internal/image"

	"gocv.io/x/gocv"
)

// flatEpsilon is the template standard deviation (summed over channels) below
// which the template is treated as having no contrast.
const flatEpsilon = 1e-6

// Score computes the normalized cross-correlation coefficient of tmpl at every
// offset where it fits inside src. Neither input is modified.
func Score(src, tmpl image.Image) (*SimilarityMap, error) {
	if src.Bounds().Empty() || tmpl.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if img.Channels(src) != img.Channels(tmpl) {
		return nil, fmt.Errorf("%w: image has %d channels, template %d",
			ErrInvalidDimensions, img.Channels(src), img.Channels(tmpl))
	}

	srcMat, err := img.ToMat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer srcMat.Close()

	tmplMat, err := img.ToMat(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to convert template: %w", err)
	}
	defer tmplMat.Close()

	return ScoreMat(srcMat, tmplMat)
}

// ScoreMat is Score for operands that are already OpenCV matrices.
func ScoreMat(src, tmpl gocv.Mat) (*SimilarityMap, error) {
	if src.Empty() || tmpl.Empty() {
		return nil, ErrEmptyImage
	}
	if src.Channels() != tmpl.Channels() {
		return nil, fmt.Errorf("%w: image has %d channels, template %d",
			ErrInvalidDimensions, src.Channels(), tmpl.Channels())
	}
	if tmpl.Rows() > src.Rows() || tmpl.Cols() > src.Cols() {
		return nil, fmt.Errorf("%w: template %dx%d larger than image %dx%d",
			ErrInvalidDimensions, tmpl.Cols(), tmpl.Rows(), src.Cols(), src.Rows())
	}
	if isFlat(tmpl) {
		return nil, ErrFlatTemplate
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, tmpl, &result, gocv.TmCcoeffNormed, mask)

	data, err := result.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read similarity map: %w", err)
	}

	// Copy out so the map outlives the Mat.
	scores := make([]float32, len(data))
	copy(scores, data)

	return &SimilarityMap{
		Width:  result.Cols(),
		Height: result.Rows(),
		Scores: scores,
	}, nil
}

// isFlat reports whether every channel of m has (near) zero variance.
func isFlat(m gocv.Mat) bool {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()

	gocv.MeanStdDev(m, &mean, &stddev)

	var total float64
	for i := 0; i < stddev.Rows(); i++ {
		total += stddev.GetDoubleAt(i, 0)
	}
	return total < flatEpsilon
}
