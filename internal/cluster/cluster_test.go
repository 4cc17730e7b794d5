package cluster

import (
	"math/rand"
	"sort"
	"testing"

	"holefinder/internal/match"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(xy ...int) []match.Match {
	out := make([]match.Match, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, match.Match{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestCluster_Empty(t *testing.T) {
	assert.Empty(t, Cluster(nil, 5))
	assert.Empty(t, Cluster([]match.Match{}, 5))
}

func TestCluster_SingleMatch(t *testing.T) {
	groups := Cluster(pts(7, 9), 5)
	require.Len(t, groups, 1)
	assert.Equal(t, match.Match{X: 7, Y: 9}, groups[0].Leader())
	assert.Equal(t, 1, groups[0].Len())
}

func TestCluster_TwoNearOneFar(t *testing.T) {
	groups := Cluster(pts(0, 0, 2, 2, 50, 50), 5)

	want := []Group{
		{Members: pts(0, 0, 2, 2)},
		{Members: pts(50, 50)},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestCluster_LeaderIsClosestToCentroid(t *testing.T) {
	// A plus shape: the centre point should lead even though the path starts at the left arm.
	groups := Cluster(pts(10, 10, 8, 10, 12, 10, 10, 8, 10, 12), 5)
	require.Len(t, groups, 1)
	assert.Equal(t, match.Match{X: 10, Y: 10}, groups[0].Leader())
	assert.Equal(t, 5, groups[0].Len())
}

func TestCluster_AnchorVersusChain(t *testing.T) {
	// Evenly spaced points 4 px apart along a line, radius 5.
	line := pts(0, 0, 4, 0, 8, 0, 12, 0, 16, 0)

	anchor := Params{MaxRadius: 5, Linkage: LinkAnchor}.Cluster(line)
	chain := Params{MaxRadius: 5, Linkage: LinkPrevious}.Cluster(line)

	// Anchor: each group may only reach 5 px from its first point.
	require.Len(t, anchor, 3)
	assert.ElementsMatch(t, pts(0, 0, 4, 0), anchor[0].Members)
	assert.ElementsMatch(t, pts(8, 0, 12, 0), anchor[1].Members)
	assert.ElementsMatch(t, pts(16, 0), anchor[2].Members)

	// Chain: every step is 4 px, so the whole line is one group.
	require.Len(t, chain, 1)
	assert.Equal(t, match.Match{X: 8, Y: 0}, chain[0].Leader())
}

func TestCluster_EveryMatchInExactlyOneGroup(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var in []match.Match
	seen := map[match.Match]bool{}
	for len(in) < 300 {
		m := match.Match{X: rng.Intn(1000), Y: rng.Intn(1000)}
		if !seen[m] {
			seen[m] = true
			in = append(in, m)
		}
	}

	for _, linkage := range []Linkage{LinkAnchor, LinkPrevious} {
		groups := Params{MaxRadius: 60, Linkage: linkage}.Cluster(in)
		assert.Equal(t, len(in), Count(groups))

		var out []match.Match
		for _, g := range groups {
			out = append(out, g.Members...)
		}
		less := func(a, b match.Match) bool { return a.X < b.X || (a.X == b.X && a.Y < b.Y) }
		want := append([]match.Match(nil), in...)
		sort.Slice(want, func(i, j int) bool { return less(want[i], want[j]) })
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
		assert.Equal(t, want, out, "linkage %s", linkage)
	}
}

func TestCluster_AnchorGroupsStayWithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	in := make([]match.Match, 200)
	for i := range in {
		in[i] = match.Match{X: rng.Intn(500), Y: rng.Intn(500)}
	}

	path := GreedyPath(in)
	groups := Cluster(in, 40)
	// Rebuild each group's first path point to check the anchor bound.
	pos := make(map[match.Match]int, len(path))
	for i, idx := range path {
		if _, ok := pos[in[idx]]; !ok {
			pos[in[idx]] = i
		}
	}
	for _, g := range groups {
		anchor := g.Members[0]
		for _, m := range g.Members {
			if pos[m] < pos[anchor] {
				anchor = m
			}
		}
		for _, m := range g.Members {
			assert.LessOrEqual(t, anchor.Point().DistanceSq(m.Point()), 40*40)
		}
	}
}

func TestCluster_DoesNotModifyInput(t *testing.T) {
	in := pts(30, 0, 0, 0, 2, 2)
	before := append([]match.Match(nil), in...)
	Cluster(in, 5)
	assert.Equal(t, before, in)
}

func TestCluster_Deterministic(t *testing.T) {
	in := pts(5, 5, 6, 7, 40, 41, 39, 40, 100, 3, 0, 90)
	assert.Equal(t, Cluster(in, 10), Cluster(in, 10))
}

func TestGreedyPath(t *testing.T) {
	in := pts(10, 0, 0, 5, 0, 0, 3, 0)
	// Leftmost with lowest Y is (0,0); then nearest (3,0), then (0,5) at 5.83 vs (10,0) at 7.
	assert.Equal(t, []int{2, 3, 1, 0}, GreedyPath(in))
	assert.Nil(t, GreedyPath(nil))
}

func TestCentroid(t *testing.T) {
	c := Centroid(pts(0, 0, 4, 2, 2, 10))
	assert.InDelta(t, 2.0, c.X, 1e-12)
	assert.InDelta(t, 4.0, c.Y, 1e-12)
}

func TestCluster_LeaderNearestCentroidInSkewedGroup(t *testing.T) {
	// Centroid is (10/3, 0): (1,0) is 2.33 px away, (9,0) is 5.67 px.
	groups := Cluster(pts(0, 0, 1, 0, 9, 0), 10)
	require.Len(t, groups, 1)
	assert.Equal(t, match.Match{X: 1, Y: 0}, groups[0].Leader())
	assert.Equal(t, pts(1, 0, 0, 0, 9, 0), groups[0].Members)
}

func TestParseLinkage(t *testing.T) {
	for _, l := range []Linkage{LinkAnchor, LinkPrevious} {
		got, err := ParseLinkage(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLinkage("single")
	assert.Error(t, err)
}
