// Package config loads search and export settings from JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"holefinder/internal/cluster"
	"holefinder/internal/match"
	"holefinder/pkg/geometry"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// SearchConfig holds the settings for one search-and-export run. Pointer
// fields are optional in the JSON file; nil means "use the default".
type SearchConfig struct {
	// Matching
	Threshold    *float64 `json:"threshold,omitempty"`
	BlurImage    *bool    `json:"blur_image,omitempty"`
	BlurTemplate *bool    `json:"blur_template,omitempty"`
	BlurSigma    *float64 `json:"blur_sigma,omitempty"`
	Downsample   *int     `json:"downsample,omitempty"`
	Origin       *string  `json:"origin,omitempty"` // "top-left" or "bottom-left"

	// Grouping
	Grouping      *bool    `json:"grouping,omitempty"`
	GroupRadiusUm *float64 `json:"group_radius_um,omitempty"`
	PixelSizeNm   *float64 `json:"pixel_size_nm,omitempty"`
	Linkage       *string  `json:"linkage,omitempty"` // "anchor" or "chain"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Default returns the configuration used when no file is given.
func Default() *SearchConfig {
	return &SearchConfig{
		Threshold:     ptrFloat64(0.8),
		BlurImage:     ptrBool(false),
		BlurTemplate:  ptrBool(false),
		BlurSigma:     ptrFloat64(2.0),
		Downsample:    ptrInt(1),
		Origin:        ptrString(geometry.OriginBottomLeft.String()),
		Grouping:      ptrBool(true),
		GroupRadiusUm: ptrFloat64(7),
		PixelSizeNm:   ptrFloat64(10),
		Linkage:       ptrString(cluster.LinkAnchor.String()),
	}
}

// Load reads a SearchConfig from a JSON file. Fields omitted from the file
// keep their default values, so partial configs are safe.
func Load(path string) (*SearchConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every set field against its allowed range.
func (c *SearchConfig) Validate() error {
	if c.Threshold != nil && (*c.Threshold < -1 || *c.Threshold > 1) {
		return fmt.Errorf("%w: threshold %.3f outside [-1, 1]", ErrInvalid, *c.Threshold)
	}
	if c.BlurSigma != nil && *c.BlurSigma < 0 {
		return fmt.Errorf("%w: blur_sigma %.2f is negative", ErrInvalid, *c.BlurSigma)
	}
	if c.Downsample != nil && *c.Downsample < 1 {
		return fmt.Errorf("%w: downsample %d must be at least 1", ErrInvalid, *c.Downsample)
	}
	if c.Origin != nil {
		if _, ok := geometry.ParseOrigin(*c.Origin); !ok {
			return fmt.Errorf("%w: origin %q (want top-left or bottom-left)", ErrInvalid, *c.Origin)
		}
	}
	if c.GroupRadiusUm != nil && *c.GroupRadiusUm <= 0 {
		return fmt.Errorf("%w: group_radius_um %.2f must be positive", ErrInvalid, *c.GroupRadiusUm)
	}
	if c.PixelSizeNm != nil && *c.PixelSizeNm <= 0 {
		return fmt.Errorf("%w: pixel_size_nm %.2f must be positive", ErrInvalid, *c.PixelSizeNm)
	}
	if c.Linkage != nil {
		if _, err := cluster.ParseLinkage(*c.Linkage); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Getters fall back to Default() for nil fields.

func (c *SearchConfig) GetThreshold() float64 {
	if c.Threshold == nil {
		return *Default().Threshold
	}
	return *c.Threshold
}

func (c *SearchConfig) GetBlurImage() bool {
	if c.BlurImage == nil {
		return false
	}
	return *c.BlurImage
}

func (c *SearchConfig) GetBlurTemplate() bool {
	if c.BlurTemplate == nil {
		return false
	}
	return *c.BlurTemplate
}

func (c *SearchConfig) GetBlurSigma() float64 {
	if c.BlurSigma == nil {
		return *Default().BlurSigma
	}
	return *c.BlurSigma
}

func (c *SearchConfig) GetDownsample() int {
	if c.Downsample == nil {
		return 1
	}
	return *c.Downsample
}

func (c *SearchConfig) GetOrigin() geometry.Origin {
	if c.Origin == nil {
		return geometry.OriginBottomLeft
	}
	o, _ := geometry.ParseOrigin(*c.Origin)
	return o
}

func (c *SearchConfig) GetGrouping() bool {
	if c.Grouping == nil {
		return true
	}
	return *c.Grouping
}

func (c *SearchConfig) GetGroupRadiusUm() float64 {
	if c.GroupRadiusUm == nil {
		return *Default().GroupRadiusUm
	}
	return *c.GroupRadiusUm
}

func (c *SearchConfig) GetPixelSizeNm() float64 {
	if c.PixelSizeNm == nil {
		return *Default().PixelSizeNm
	}
	return *c.PixelSizeNm
}

func (c *SearchConfig) GetLinkage() cluster.Linkage {
	if c.Linkage == nil {
		return cluster.LinkAnchor
	}
	l, _ := cluster.ParseLinkage(*c.Linkage)
	return l
}

// GroupRadiusPixels converts the group radius from micrometres to pixels.
func (c *SearchConfig) GroupRadiusPixels() float64 {
	return 1000 * c.GetGroupRadiusUm() / c.GetPixelSizeNm()
}

// MatchParams returns the search parameters described by the config.
func (c *SearchConfig) MatchParams() match.Params {
	return match.DefaultParams().
		WithThreshold(c.GetThreshold()).
		WithBlur(c.GetBlurImage(), c.GetBlurTemplate(), float32(c.GetBlurSigma())).
		WithDownsample(c.GetDownsample()).
		WithOrigin(c.GetOrigin())
}

// ClusterParams returns the grouping parameters described by the config.
func (c *SearchConfig) ClusterParams() cluster.Params {
	return cluster.Params{
		MaxRadius: c.GroupRadiusPixels(),
		Linkage:   c.GetLinkage(),
	}
}
