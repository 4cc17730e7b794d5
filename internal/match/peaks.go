package match

import "sort"

// ExtractCandidates returns every placement scoring at or above threshold,
// best first. Equal scores keep row-major scan order. The map is not modified,
// so repeated calls return the same sequence.
func ExtractCandidates(m *SimilarityMap, threshold float64) []Candidate {
	if m == nil {
		return nil
	}

	var candidates []Candidate
	for y := 0; y < m.Height; y++ {
		row := m.Scores[y*m.Width : (y+1)*m.Width]
		for x, s := range row {
			if float64(s) >= threshold {
				candidates = append(candidates, Candidate{X: x, Y: y, Score: float64(s)})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
