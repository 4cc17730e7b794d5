package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2DDistance(t *testing.T) {
	assert.InDelta(t, 5.0, NewPoint2D(0, 0).Distance(NewPoint2D(3, 4)), 1e-12)
	assert.Equal(t, 25, PointInt{X: 1, Y: 1}.DistanceSq(PointInt{X: 4, Y: 5}))
	assert.InDelta(t, 5.0, PointInt{X: 1, Y: 1}.ToFloat().Distance(NewPoint2D(4, 5)), 1e-12)
}

func TestFlipIsItsOwnInverse(t *testing.T) {
	f := Flip{Origin: OriginBottomLeft, Height: 100}
	p := PointInt{X: 7, Y: 20}

	flipped := f.Point(p)
	assert.Equal(t, PointInt{X: 7, Y: 79}, flipped)
	assert.Equal(t, p, f.Point(flipped))

	top := Flip{Origin: OriginTopLeft, Height: 100}
	assert.Equal(t, p, top.Point(p))
}

func TestFlipRect(t *testing.T) {
	f := Flip{Origin: OriginBottomLeft, Height: 100}
	r := RectInt{X: 10, Y: 0, Width: 20, Height: 30}

	// Bottom 30 rows in stage coordinates are rows 70..99 in the array.
	assert.Equal(t, RectInt{X: 10, Y: 70, Width: 20, Height: 30}, f.Rect(r))
	assert.Equal(t, r, f.Rect(f.Rect(r)))
}

func TestRectClamp(t *testing.T) {
	r := RectInt{X: -5, Y: 90, Width: 20, Height: 20}.Clamp(100, 100)
	assert.Equal(t, RectInt{X: 0, Y: 90, Width: 15, Height: 10}, r)
	assert.True(t, RectInt{X: 200, Y: 0, Width: 5, Height: 5}.Clamp(100, 100).Empty())
}

func TestParseOrigin(t *testing.T) {
	for _, o := range []Origin{OriginTopLeft, OriginBottomLeft} {
		got, ok := ParseOrigin(o.String())
		assert.True(t, ok)
		assert.Equal(t, o, got)
	}
	_, ok := ParseOrigin("middle")
	assert.False(t, ok)
}

func TestSizeMaxSide(t *testing.T) {
	assert.Equal(t, 12, Size{Width: 12, Height: 9}.MaxSide())
	assert.Equal(t, 9, Size{Width: 4, Height: 9}.MaxSide())
}
