package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestExtractCandidates_SortedAndStable(t *testing.T) {
	m := &SimilarityMap{
		Width:  3,
		Height: 2,
		Scores: []float32{
			0.5, 0.9, 0.8,
			0.9, 0.1, 0.8,
		},
	}

	got := ExtractCandidates(m, 0.8)
	want := []Candidate{
		{X: 1, Y: 0, Score: float64(float32(0.9))},
		{X: 0, Y: 1, Score: float64(float32(0.9))},
		{X: 2, Y: 0, Score: float64(float32(0.8))},
		{X: 2, Y: 1, Score: float64(float32(0.8))},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCandidates_Restartable(t *testing.T) {
	m := &SimilarityMap{Width: 2, Height: 2, Scores: []float32{0.2, 0.95, 0.85, -0.4}}

	first := ExtractCandidates(m, 0.5)
	second := ExtractCandidates(m, 0.5)
	assert.Equal(t, first, second)
	assert.Equal(t, []float32{0.2, 0.95, 0.85, -0.4}, m.Scores, "map must not be modified")
}

func TestExtractCandidates_NoneAboveThreshold(t *testing.T) {
	m := &SimilarityMap{Width: 2, Height: 1, Scores: []float32{0.1, 0.2}}
	assert.Empty(t, ExtractCandidates(m, 0.8))
	assert.Nil(t, ExtractCandidates(nil, 0.8))
}

func TestExtractCandidates_NegativeThreshold(t *testing.T) {
	m := &SimilarityMap{Width: 2, Height: 1, Scores: []float32{-0.5, -0.9}}
	got := ExtractCandidates(m, -0.6)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, got[0].X)
}

func TestSimilarityMapMax(t *testing.T) {
	m := &SimilarityMap{Width: 3, Height: 2, Scores: []float32{0, 0.3, 0.2, 0.7, 0.7, 0}}
	score, x, y := m.Max()
	assert.Equal(t, float32(0.7), score)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, float32(0.2), m.At(2, 0))
}
