// Package nav turns matches and groups into navigation points anchored to a
// parent map item.
package nav

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingMetadata is returned when a map section lacks a field the points
// inherit, or the field cannot be parsed.
var ErrMissingMetadata = errors.New("missing map metadata")

// Field names read from the parent map section.
const (
	FieldRegis    = "Regis"
	FieldMapID    = "MapID"
	FieldDrawnID  = "DrawnID"
	FieldStageXYZ = "StageXYZ"
)

// MapMetadata is the part of a parent map item shared by every derived point.
type MapMetadata struct {
	Regis  int     // Registration the map was taken in
	MapID  int     // Written to each point as DrawnID
	StageZ float64 // Stage Z height of the map
}

// ParseMapMetadata extracts MapMetadata from a section's key -> tokens mapping.
// MapID falls back to DrawnID when the section has no MapID.
func ParseMapMetadata(section map[string][]string) (MapMetadata, error) {
	var meta MapMetadata
	var err error

	if meta.Regis, err = firstInt(section, FieldRegis); err != nil {
		return MapMetadata{}, err
	}

	if _, ok := section[FieldMapID]; ok {
		meta.MapID, err = firstInt(section, FieldMapID)
	} else {
		meta.MapID, err = firstInt(section, FieldDrawnID)
	}
	if err != nil {
		return MapMetadata{}, err
	}

	xyz, ok := section[FieldStageXYZ]
	if !ok {
		return MapMetadata{}, fmt.Errorf("%w: %s", ErrMissingMetadata, FieldStageXYZ)
	}
	if len(xyz) < 3 {
		return MapMetadata{}, fmt.Errorf("%w: %s has %d values, want 3", ErrMissingMetadata, FieldStageXYZ, len(xyz))
	}
	if meta.StageZ, err = strconv.ParseFloat(xyz[2], 64); err != nil {
		return MapMetadata{}, fmt.Errorf("%w: %s z %q: %v", ErrMissingMetadata, FieldStageXYZ, xyz[2], err)
	}

	return meta, nil
}

func firstInt(section map[string][]string, key string) (int, error) {
	tokens, ok := section[key]
	if !ok || len(tokens) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingMetadata, key)
	}
	v, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrMissingMetadata, key, tokens[0], err)
	}
	return v, nil
}
