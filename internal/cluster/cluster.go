// Package cluster partitions accepted matches into spatial groups and picks one
// representative (leader) per group.
//
// Points are first ordered along a greedy nearest-neighbour path that starts
// at the leftmost point. The path is then cut into groups: a new group starts
// when the next point is farther than MaxRadius from the group's reference
// point. Which point is the reference depends on the Linkage.
package cluster

import (
	"fmt"

	"holefinder/internal/match"
	"holefinder/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// Linkage selects the reference point a path step is measured against.
type Linkage int

const (
	// LinkAnchor measures each step against the first point of the current group.
	LinkAnchor Linkage = iota
	// LinkPrevious measures each step against the previous point on the path,
	// so a group can chain arbitrarily far from its first point.
	LinkPrevious
)

func (l Linkage) String() string {
	switch l {
	case LinkAnchor:
		return "anchor"
	case LinkPrevious:
		return "chain"
	default:
		return "unknown"
	}
}

// ParseLinkage parses the names produced by Linkage.String.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "anchor", "":
		return LinkAnchor, nil
	case "chain":
		return LinkPrevious, nil
	}
	return LinkAnchor, fmt.Errorf("unknown linkage %q (want anchor or chain)", s)
}

// Params holds clustering parameters.
type Params struct {
	MaxRadius float64 // Pixels; same unit as match coordinates
	Linkage   Linkage
}

// Group is an ordered set of matches. Members[0] is the leader.
type Group struct {
	Members []match.Match
}

// Leader returns the group's representative match.
func (g Group) Leader() match.Match {
	return g.Members[0]
}

// Len returns the number of matches in the group.
func (g Group) Len() int {
	return len(g.Members)
}

// Cluster groups matches with the anchor linkage.
func Cluster(matches []match.Match, maxRadius float64) []Group {
	return Params{MaxRadius: maxRadius, Linkage: LinkAnchor}.Cluster(matches)
}

// Cluster partitions matches into groups. Every input match lands in exactly
// one group. The input slice is not modified. Zero matches yield zero groups.
func (p Params) Cluster(matches []match.Match) []Group {
	if len(matches) == 0 {
		return nil
	}

	path := GreedyPath(matches)
	r2 := p.MaxRadius * p.MaxRadius
	if p.MaxRadius < 0 {
		r2 = -1
	}

	var groups []Group
	current := []match.Match{matches[path[0]]}
	for _, idx := range path[1:] {
		next := matches[idx]
		ref := current[0]
		if p.Linkage == LinkPrevious {
			ref = current[len(current)-1]
		}
		if float64(ref.Point().DistanceSq(next.Point())) > r2 {
			groups = append(groups, withLeader(current))
			current = nil
		}
		current = append(current, next)
	}
	groups = append(groups, withLeader(current))

	return groups
}

// GreedyPath returns match indices in visiting order: start at the leftmost
// match (lowest Y breaks ties), then repeatedly step to the nearest unvisited
// match. Distance ties go to the lower index.
func GreedyPath(matches []match.Match) []int {
	n := len(matches)
	if n == 0 {
		return nil
	}

	start := 0
	for i, m := range matches[1:] {
		s := matches[start]
		if m.X < s.X || (m.X == s.X && m.Y < s.Y) {
			start = i + 1
		}
	}

	visited := make([]bool, n)
	path := make([]int, 0, n)
	cur := start
	for {
		visited[cur] = true
		path = append(path, cur)
		if len(path) == n {
			return path
		}

		best, bestDist := -1, 0
		from := matches[cur].Point()
		for j := range matches {
			if visited[j] {
				continue
			}
			d := from.DistanceSq(matches[j].Point())
			if best < 0 || d < bestDist {
				best, bestDist = j, d
			}
		}
		cur = best
	}
}

// Centroid returns the mean position of the members.
func Centroid(members []match.Match) geometry.Point2D {
	xs := make([]float64, len(members))
	ys := make([]float64, len(members))
	for i, m := range members {
		xs[i] = float64(m.X)
		ys[i] = float64(m.Y)
	}
	return geometry.NewPoint2D(stat.Mean(xs, nil), stat.Mean(ys, nil))
}

// withLeader moves the member closest to the centroid to the front. The other
// members keep their path order. Ties go to the earlier member.
func withLeader(members []match.Match) Group {
	c := Centroid(members)

	leader := 0
	bestDist := -1.0
	for i, m := range members {
		d := m.Point().ToFloat().Distance(c)
		if bestDist < 0 || d < bestDist {
			leader, bestDist = i, d
		}
	}

	ordered := make([]match.Match, 0, len(members))
	ordered = append(ordered, members[leader])
	ordered = append(ordered, members[:leader]...)
	ordered = append(ordered, members[leader+1:]...)
	return Group{Members: ordered}
}

// Count returns the total number of matches across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += g.Len()
	}
	return n
}
