package cursor

import "github.com/tonsky/tonsky.me/internal/domain"

// Overlay margins keep the pointer sprite inside the viewport.
const (
	MarginX = 16
	MarginY = 32
)

type Viewport struct {
	Width  int
	Height int
}

// ToPixel maps a normalized coordinate to a pixel offset inside dimension-margin.
// Raw values outside [0, 10000] are clamped first.
func ToPixel(raw, dimension, margin int) int {
	span := max(dimension-margin, 0)
	return int(int64(domain.ClampCoord(raw)) * int64(span) / domain.CoordScale)
}

// Normalize maps a local pixel position to [0, 10000].
func Normalize(px, dimension int) int {
	if dimension <= 0 {
		return 0
	}
	return domain.ClampCoord(int(int64(px) * domain.CoordScale / int64(dimension)))
}

// Place returns the overlay's left/top offsets for a normalized position.
func (v Viewport) Place(x, y int) (left, top int) {
	return ToPixel(x, v.Width, MarginX), ToPixel(y, v.Height, MarginY)
}

// Sample normalizes a local pointer position on this viewport.
func (v Viewport) Sample(px, py int) (x, y int) {
	return Normalize(px, v.Width), Normalize(py, v.Height)
}
