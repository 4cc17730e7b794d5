package image

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/gift"
	"gocv.io/x/gocv"
)

// Filter describes the pre-processing applied to an operand before scoring.
type Filter struct {
	Blur       bool    // Gaussian blur before matching
	Sigma      float32 // Blur standard deviation in pixels
	Downsample int     // Integer reduction factor; 0 or 1 leaves the size alone
}

// Active reports whether the filter changes the image at all.
func (f Filter) Active() bool {
	return (f.Blur && f.Sigma > 0) || f.Downsample > 1
}

// Prepare returns a filtered copy of src. The source is never modified.
// Blur runs before downsampling so the reduction does not alias noise.
func Prepare(src image.Image, f Filter) image.Image {
	if !f.Active() {
		return src
	}

	var filters []gift.Filter
	if f.Blur && f.Sigma > 0 {
		filters = append(filters, gift.GaussianBlur(f.Sigma))
	}
	if f.Downsample > 1 {
		b := src.Bounds()
		w := max(1, b.Dx()/f.Downsample)
		h := max(1, b.Dy()/f.Downsample)
		filters = append(filters, gift.Resize(w, h, gift.BoxResampling))
	}

	g := gift.New(filters...)
	dst := newLike(src, g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// Channels returns 1 for grayscale images and 3 for everything else.
// Alpha is dropped on conversion, so it does not count.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	default:
		return 3
	}
}

// ToMat converts a Go image to an 8-bit OpenCV Mat: single channel for
// grayscale sources, BGR otherwise. The caller owns the returned Mat.
func ToMat(img image.Image) (gocv.Mat, error) {
	if img.Bounds().Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	if Channels(img) == 1 {
		gray, ok := img.(*image.Gray)
		if !ok || gray.Bounds().Min != (image.Point{}) || gray.Stride != gray.Bounds().Dx() {
			gray = image.NewGray(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
			draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
		}
		return gocv.ImageGrayToMatGray(gray)
	}
	return gocv.ImageToMatRGB(img)
}

// newLike allocates a destination that keeps src's channel layout.
func newLike(src image.Image, bounds image.Rectangle) draw.Image {
	if Channels(src) == 1 {
		return image.NewGray(bounds)
	}
	return image.NewRGBA(bounds)
}
