package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPixel_ClampsOverflow(t *testing.T) {
	assert.Equal(t, 1000-MarginX, ToPixel(12000, 1000, MarginX))
	assert.Equal(t, ToPixel(10000, 1000, MarginX), ToPixel(12000, 1000, MarginX))
	assert.Equal(t, 0, ToPixel(-20, 1000, MarginX))
}

func TestToPixel_Floors(t *testing.T) {
	// 3333/10000 * 984 = 327.96
	assert.Equal(t, 327, ToPixel(3333, 1000, MarginX))
	assert.Equal(t, 0, ToPixel(5000, 10, MarginY), "tiny viewport never goes negative")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 5000, Normalize(640, 1280))
	assert.Equal(t, 0, Normalize(-3, 1280))
	assert.Equal(t, 10000, Normalize(5000, 1280))
	assert.Equal(t, 0, Normalize(10, 0))
}

func TestViewport_PlaceAndSample(t *testing.T) {
	vp := Viewport{Width: 1016, Height: 832}
	left, top := vp.Place(5000, 5000)
	assert.Equal(t, 500, left)
	assert.Equal(t, 400, top)

	x, y := vp.Sample(508, 416)
	assert.Equal(t, 5000, x)
	assert.Equal(t, 5000, y)
}
