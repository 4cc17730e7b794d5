package match

import (
	"fmt"

	"holefinder/pkg/geometry"
)

// Params controls a template search.
type Params struct {
	// Minimum correlation score for a placement to become a candidate.
	// Scores range over [-1, 1]; useful values are usually 0.6-0.95.
	Threshold float64

	// Gaussian pre-filter, applied independently to each operand before scoring.
	BlurImage    bool
	BlurTemplate bool
	BlurSigma    float32

	// Integer reduction applied to both operands before scoring. Returned
	// coordinates are always at full resolution.
	Downsample int

	// Corner that outward-facing coordinates are measured from.
	Origin geometry.Origin
}

// DefaultParams returns the search defaults: threshold 0.8, no blur, full
// resolution, array (top-left) coordinates.
func DefaultParams() Params {
	return Params{
		Threshold:  0.8,
		BlurSigma:  2.0,
		Downsample: 1,
		Origin:     geometry.OriginTopLeft,
	}
}

// WithThreshold returns a copy of params with the given score threshold.
func (p Params) WithThreshold(threshold float64) Params {
	p.Threshold = threshold
	return p
}

// WithBlur returns a copy of params with the Gaussian pre-filter configured.
func (p Params) WithBlur(image, template bool, sigma float32) Params {
	p.BlurImage = image
	p.BlurTemplate = template
	p.BlurSigma = sigma
	return p
}

// WithDownsample returns a copy of params scoring at 1/factor resolution.
func (p Params) WithDownsample(factor int) Params {
	p.Downsample = factor
	return p
}

// WithOrigin returns a copy of params reporting coordinates from the given corner.
func (p Params) WithOrigin(origin geometry.Origin) Params {
	p.Origin = origin
	return p
}

// Validate reports parameter values that cannot produce a meaningful search.
func (p Params) Validate() error {
	if p.Threshold < -1 || p.Threshold > 1 {
		return fmt.Errorf("threshold %.3f outside [-1, 1]", p.Threshold)
	}
	if p.Downsample < 0 {
		return fmt.Errorf("downsample factor %d must be positive", p.Downsample)
	}
	if p.BlurSigma < 0 {
		return fmt.Errorf("blur sigma %.2f must not be negative", p.BlurSigma)
	}
	if (p.BlurImage || p.BlurTemplate) && p.BlurSigma == 0 {
		return fmt.Errorf("blur enabled with zero sigma")
	}
	return nil
}

func (p Params) factor() int {
	if p.Downsample < 1 {
		return 1
	}
	return p.Downsample
}
