package nav

import (
	"fmt"

	"holefinder/internal/cluster"
	"holefinder/internal/match"

	"github.com/google/uuid"
)

// NavPoint is a single navigation item derived from a match.
type NavPoint struct {
	Label       int
	Color       int
	NumPts      int
	Regis       int
	Type        int
	PtsX        float64
	PtsY        float64
	DrawnID     int
	CoordsInMap [3]float64
	GroupID     int // Zero when the point is not part of a group
}

// Options controls how matches are exported.
type Options struct {
	StartLabel int            // Label of the first point emitted
	Grouping   bool           // Cluster matches and emit leader-first groups
	Cluster    cluster.Params // Used when Grouping is set
}

// Export is the output of one mapping call.
type Export struct {
	Points []NavPoint
	Groups int // Number of groups emitted; zero when grouping is off
	// NextLabel is the label a follow-up export should start from.
	NextLabel int
}

// Mapper builds NavPoints. Group identifiers come from NewGroupID and are
// unique within one call.
type Mapper struct {
	NewGroupID func() int
}

// NewMapper returns a Mapper drawing group identifiers from random UUIDs.
func NewMapper() *Mapper {
	return &Mapper{NewGroupID: randomGroupID}
}

func randomGroupID() int {
	return int(uuid.New().ID() & 0x7fffffff)
}

// ToNavPoints maps matches onto the parent map, clustering them first when
// opts.Grouping is set. Labels increase by one from opts.StartLabel in emission order.
func (m *Mapper) ToNavPoints(matches []match.Match, meta MapMetadata, opts Options) (Export, error) {
	if opts.StartLabel < 0 {
		return Export{}, fmt.Errorf("start label %d must not be negative", opts.StartLabel)
	}
	if opts.Grouping {
		return m.FromGroups(opts.Cluster.Cluster(matches), meta, opts.StartLabel), nil
	}
	return m.FromMatches(matches, meta, opts.StartLabel), nil
}

// FromMatches emits one ungrouped point per match, in match order.
func (m *Mapper) FromMatches(matches []match.Match, meta MapMetadata, startLabel int) Export {
	points := make([]NavPoint, 0, len(matches))
	for i, mt := range matches {
		points = append(points, newPoint(startLabel+i, mt, meta, 0))
	}
	return Export{Points: points, NextLabel: startLabel + len(points)}
}

// FromGroups emits every group leader first, then the remaining members, all
// sharing one group identifier.
func (m *Mapper) FromGroups(groups []cluster.Group, meta MapMetadata, startLabel int) Export {
	points := make([]NavPoint, 0, cluster.Count(groups))
	used := make(map[int]bool, len(groups))

	label := startLabel
	for _, g := range groups {
		id := m.uniqueGroupID(used)
		for _, mt := range g.Members {
			points = append(points, newPoint(label, mt, meta, id))
			label++
		}
	}
	return Export{Points: points, Groups: len(groups), NextLabel: label}
}

func (m *Mapper) uniqueGroupID(used map[int]bool) int {
	gen := m.NewGroupID
	if gen == nil {
		gen = randomGroupID
	}
	for {
		id := gen()
		if id != 0 && !used[id] {
			used[id] = true
			return id
		}
	}
}

func newPoint(label int, mt match.Match, meta MapMetadata, groupID int) NavPoint {
	x, y := float64(mt.X), float64(mt.Y)
	return NavPoint{
		Label:       label,
		Color:       0,
		NumPts:      1,
		Regis:       meta.Regis,
		Type:        0,
		PtsX:        x,
		PtsY:        y,
		DrawnID:     meta.MapID,
		CoordsInMap: [3]float64{x, y, meta.StageZ},
		GroupID:     groupID,
	}
}
