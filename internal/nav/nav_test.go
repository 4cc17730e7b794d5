package nav

import (
	"errors"
	"testing"

	"holefinder/internal/cluster"
	"holefinder/internal/match"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapSection() map[string][]string {
	return map[string][]string{
		"Color":    {"2"},
		"Regis":    {"3"},
		"MapID":    {"417036123"},
		"StageXYZ": {"-112.25", "48.5", "-7.75"},
	}
}

func counter(start int) func() int {
	n := start - 1
	return func() int {
		n++
		return n
	}
}

func TestParseMapMetadata(t *testing.T) {
	meta, err := ParseMapMetadata(mapSection())
	require.NoError(t, err)
	assert.Equal(t, MapMetadata{Regis: 3, MapID: 417036123, StageZ: -7.75}, meta)
}

func TestParseMapMetadata_DrawnIDFallback(t *testing.T) {
	s := mapSection()
	delete(s, "MapID")
	s["DrawnID"] = []string{"55"}

	meta, err := ParseMapMetadata(s)
	require.NoError(t, err)
	assert.Equal(t, 55, meta.MapID)
}

func TestParseMapMetadata_Missing(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(map[string][]string)
	}{
		{"no regis", func(s map[string][]string) { delete(s, "Regis") }},
		{"no map id", func(s map[string][]string) { delete(s, "MapID") }},
		{"no stage", func(s map[string][]string) { delete(s, "StageXYZ") }},
		{"short stage", func(s map[string][]string) { s["StageXYZ"] = []string{"1", "2"} }},
		{"bad regis", func(s map[string][]string) { s["Regis"] = []string{"one"} }},
		{"bad z", func(s map[string][]string) { s["StageXYZ"] = []string{"1", "2", "z"} }},
		{"empty regis", func(s map[string][]string) { s["Regis"] = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := mapSection()
			tc.mutate(s)
			_, err := ParseMapMetadata(s)
			assert.True(t, errors.Is(err, ErrMissingMetadata), "got %v", err)
		})
	}
}

func TestFromMatches_SequentialLabelsNoGroups(t *testing.T) {
	meta := MapMetadata{Regis: 1, MapID: 9, StageZ: 2.5}
	matches := []match.Match{{X: 10, Y: 20}, {X: 30, Y: 40}, {X: 50, Y: 60}}

	exp := NewMapper().FromMatches(matches, meta, 100)

	require.Len(t, exp.Points, 3)
	for i, p := range exp.Points {
		assert.Equal(t, 100+i, p.Label)
		assert.Zero(t, p.GroupID)
		assert.Equal(t, 9, p.DrawnID)
		assert.Equal(t, 1, p.Regis)
		assert.Equal(t, 1, p.NumPts)
	}
	assert.Equal(t, [3]float64{30, 40, 2.5}, exp.Points[1].CoordsInMap)
	assert.Equal(t, 103, exp.NextLabel)
	assert.Zero(t, exp.Groups)
}

func TestFromGroups_LeaderFirstSharedIDs(t *testing.T) {
	groups := cluster.Cluster([]match.Match{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 50, Y: 50}}, 5)
	m := &Mapper{NewGroupID: counter(7)}

	exp := m.FromGroups(groups, MapMetadata{Regis: 2, MapID: 4}, 0)

	want := []NavPoint{
		{Label: 0, NumPts: 1, Regis: 2, DrawnID: 4, PtsX: 0, PtsY: 0, CoordsInMap: [3]float64{0, 0, 0}, GroupID: 7},
		{Label: 1, NumPts: 1, Regis: 2, DrawnID: 4, PtsX: 2, PtsY: 2, CoordsInMap: [3]float64{2, 2, 0}, GroupID: 7},
		{Label: 2, NumPts: 1, Regis: 2, DrawnID: 4, PtsX: 50, PtsY: 50, CoordsInMap: [3]float64{50, 50, 0}, GroupID: 8},
	}
	if diff := cmp.Diff(want, exp.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, exp.Groups)
	assert.Equal(t, 3, exp.NextLabel)
}

func TestFromGroups_RegeneratesDuplicateIDs(t *testing.T) {
	ids := []int{5, 5, 0, 6}
	m := &Mapper{NewGroupID: func() int {
		id := ids[0]
		ids = ids[1:]
		return id
	}}
	groups := []cluster.Group{
		{Members: []match.Match{{X: 1, Y: 1}}},
		{Members: []match.Match{{X: 90, Y: 90}}},
	}

	exp := m.FromGroups(groups, MapMetadata{}, 10)
	assert.Equal(t, 5, exp.Points[0].GroupID)
	assert.Equal(t, 6, exp.Points[1].GroupID)
}

func TestToNavPoints(t *testing.T) {
	matches := []match.Match{{X: 100, Y: 100}, {X: 0, Y: 0}, {X: 3, Y: 4}}
	m := &Mapper{NewGroupID: counter(1)}

	grouped, err := m.ToNavPoints(matches, MapMetadata{}, Options{
		StartLabel: 20,
		Grouping:   true,
		Cluster:    cluster.Params{MaxRadius: 10},
	})
	require.NoError(t, err)
	require.Len(t, grouped.Points, 3)
	assert.Equal(t, 2, grouped.Groups)
	for i, p := range grouped.Points {
		assert.Equal(t, 20+i, p.Label)
		assert.NotZero(t, p.GroupID)
	}
	assert.Equal(t, grouped.Points[0].GroupID, grouped.Points[1].GroupID)
	assert.NotEqual(t, grouped.Points[1].GroupID, grouped.Points[2].GroupID)

	flat, err := m.ToNavPoints(matches, MapMetadata{}, Options{StartLabel: 20})
	require.NoError(t, err)
	assert.Equal(t, 100.0, flat.Points[0].PtsX, "ungrouped export keeps match order")

	_, err = m.ToNavPoints(matches, MapMetadata{}, Options{StartLabel: -1})
	assert.Error(t, err)
}

func TestToNavPoints_Empty(t *testing.T) {
	exp, err := NewMapper().ToNavPoints(nil, MapMetadata{}, Options{StartLabel: 5, Grouping: true})
	require.NoError(t, err)
	assert.Empty(t, exp.Points)
	assert.Equal(t, 5, exp.NextLabel)
}

func TestRandomGroupIDPositive(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, randomGroupID(), 0)
	}
}
