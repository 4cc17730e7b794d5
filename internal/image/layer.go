// Package image provides image loading, template cropping, pre-filtering and
// conversion to OpenCV matrices.
package image

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"holefinder/pkg/geometry"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/tiff"
)

// MinCropSide is the smallest side a template crop may have. A crop is only
// rejected when both sides are below it, so thin strips stay usable.
const MinCropSide = 10

// Load decodes a PNG, JPEG or TIFF image from the specified path.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Crop copies region r (array coordinates) out of src into a new image whose
// bounds start at the origin. The region is clamped to the image first.
func Crop(src image.Image, r geometry.RectInt) (image.Image, error) {
	b := src.Bounds()
	clamped := r.Clamp(b.Dx(), b.Dy())
	if clamped.Empty() {
		return nil, fmt.Errorf("crop %+v lies outside %dx%d image", r, b.Dx(), b.Dy())
	}
	if clamped.Width < MinCropSide && clamped.Height < MinCropSide {
		return nil, fmt.Errorf("crop %dx%d too small (min side %d)", clamped.Width, clamped.Height, MinCropSide)
	}

	rect := image.Rect(
		b.Min.X+clamped.X, b.Min.Y+clamped.Y,
		b.Min.X+clamped.X+clamped.Width, b.Min.Y+clamped.Y+clamped.Height,
	)
	g := gift.New(gift.Crop(rect))
	dst := newLike(src, g.Bounds(b))
	g.Draw(dst, src)
	return dst, nil
}

// Size returns the pixel dimensions of img.
func Size(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.Size{Width: b.Dx(), Height: b.Dy()}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
