package match

import (
	"holefinder/pkg/geometry"
)

// ExclusionRadius returns the minimum centre-to-centre distance between two
// accepted matches for a template of the given size.
func ExclusionRadius(tmpl geometry.Size) int {
	return tmpl.MaxSide()
}

// Deduplicate walks candidates in the order given (best score first) and keeps
// a candidate only if its centre is at least ExclusionRadius away from every
// match kept so far. Kept candidates are not moved or merged.
func Deduplicate(candidates []Candidate, tmpl geometry.Size) []Match {
	if len(candidates) == 0 {
		return nil
	}

	radius := ExclusionRadius(tmpl)
	if radius < 1 {
		radius = 1
	}
	index := newGridIndex(radius)

	var matches []Match
	for _, c := range candidates {
		center := geometry.PointInt{X: c.X + tmpl.Width/2, Y: c.Y + tmpl.Height/2}
		if index.anyWithin(center) {
			continue
		}
		index.insert(center)
		matches = append(matches, Match{X: center.X, Y: center.Y, Score: c.Score})
	}
	return matches
}

// gridIndex buckets accepted centres into square cells one radius wide, so a
// conflicting centre can only sit in the 3x3 block of cells around a query.
type gridIndex struct {
	radius int
	cells  map[cellKey][]geometry.PointInt
}

type cellKey struct{ cx, cy int }

func newGridIndex(radius int) *gridIndex {
	return &gridIndex{
		radius: radius,
		cells:  make(map[cellKey][]geometry.PointInt),
	}
}

func (g *gridIndex) key(p geometry.PointInt) cellKey {
	return cellKey{cx: floorDiv(p.X, g.radius), cy: floorDiv(p.Y, g.radius)}
}

func (g *gridIndex) insert(p geometry.PointInt) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], p)
}

// anyWithin reports whether some stored point lies strictly closer than radius to p.
func (g *gridIndex) anyWithin(p geometry.PointInt) bool {
	k := g.key(p)
	r2 := g.radius * g.radius
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, q := range g.cells[cellKey{cx: k.cx + dx, cy: k.cy + dy}] {
				if p.DistanceSq(q) < r2 {
					return true
				}
			}
		}
	}
	return false
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
