// Package match finds every placement of a template in an image by normalized
// cross-correlation, then thins overlapping detections down to one match per
// physical feature.
package match

import (
	"errors"

	"holefinder/pkg/geometry"
)

var (
	// ErrInvalidDimensions is returned when the template does not fit inside
	// the image or the two differ in channel count.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrEmptyImage is returned when either operand has no pixels.
	ErrEmptyImage = errors.New("empty image")

	// ErrFlatTemplate is returned for a template whose pixels are all equal.
	// Correlation against it is undefined.
	ErrFlatTemplate = errors.New("template has no contrast")
)

// SimilarityMap holds one correlation score per valid template placement,
// stored row-major. Width and Height are image size minus template size plus one.
type SimilarityMap struct {
	Width  int
	Height int
	Scores []float32
}

// At returns the score for the placement whose top-left corner is (x, y).
func (m *SimilarityMap) At(x, y int) float32 {
	return m.Scores[y*m.Width+x]
}

// Max returns the best score and where it occurs. The first occurrence wins ties.
func (m *SimilarityMap) Max() (score float32, x, y int) {
	if len(m.Scores) == 0 {
		return 0, -1, -1
	}
	best := 0
	for i, s := range m.Scores {
		if s > m.Scores[best] {
			best = i
		}
	}
	return m.Scores[best], best % m.Width, best / m.Width
}

// Candidate is a template placement (top-left corner) scoring above threshold.
type Candidate struct {
	X     int
	Y     int
	Score float64
}

// Match is an accepted detection, located at the centre of the template placement.
type Match struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`
}

// Point returns the match position.
func (m Match) Point() geometry.PointInt {
	return geometry.PointInt{X: m.X, Y: m.Y}
}

// Result holds the outcome of one Search call.
type Result struct {
	Matches      []Match       // Accepted matches, best score first
	Candidates   int           // Placements at or above threshold before deduplication
	BestScore    float64       // Highest score anywhere in the similarity map
	ImageSize    geometry.Size // Full-resolution image size
	TemplateSize geometry.Size // Full-resolution template size
	Params       Params        // Parameters used for the search
}

// Points returns the match positions in result order.
func (r *Result) Points() []geometry.PointInt {
	pts := make([]geometry.PointInt, len(r.Matches))
	for i, m := range r.Matches {
		pts[i] = m.Point()
	}
	return pts
}
