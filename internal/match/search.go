package match

import (
	"fmt"
	"image"

	img "holefinder/internal/image"
	"holefinder/pkg/geometry"
)

// Search runs the full matching pipeline: optional blur and downsample,
// correlation scoring, thresholding, and deduplication. Match coordinates are
// reported at full resolution in params.Origin convention.
func Search(src, tmpl image.Image, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if src.Bounds().Empty() || tmpl.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	imgSize := img.Size(src)
	tmplSize := img.Size(tmpl)
	if tmplSize.Width > imgSize.Width || tmplSize.Height > imgSize.Height {
		return nil, fmt.Errorf("%w: template %dx%d larger than image %dx%d",
			ErrInvalidDimensions, tmplSize.Width, tmplSize.Height, imgSize.Width, imgSize.Height)
	}

	factor := params.factor()
	if factor > tmplSize.Width || factor > tmplSize.Height {
		return nil, fmt.Errorf("%w: downsample factor %d exceeds template %dx%d",
			ErrInvalidDimensions, factor, tmplSize.Width, tmplSize.Height)
	}
	srcPrepared := img.Prepare(src, img.Filter{
		Blur:       params.BlurImage,
		Sigma:      params.BlurSigma,
		Downsample: factor,
	})
	tmplPrepared := img.Prepare(tmpl, img.Filter{
		Blur:       params.BlurTemplate,
		Sigma:      params.BlurSigma,
		Downsample: factor,
	})

	scores, err := Score(srcPrepared, tmplPrepared)
	if err != nil {
		return nil, err
	}

	best, _, _ := scores.Max()
	candidates := ExtractCandidates(scores, params.Threshold)
	if factor > 1 {
		for i := range candidates {
			candidates[i].X *= factor
			candidates[i].Y *= factor
		}
	}

	matches := Deduplicate(candidates, tmplSize)

	flip := geometry.Flip{Origin: params.Origin, Height: imgSize.Height}
	for i := range matches {
		p := flip.Point(matches[i].Point())
		matches[i].X, matches[i].Y = p.X, p.Y
	}

	return &Result{
		Matches:      matches,
		Candidates:   len(candidates),
		BestScore:    float64(best),
		ImageSize:    imgSize,
		TemplateSize: tmplSize,
		Params:       params,
	}, nil
}
