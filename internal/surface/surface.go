// Package surface maps pointer positions into drawing-surface coordinates and
// tracks surface size changes so stored geometry can be rescaled.
package surface

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/inkpane/internal/geom"
)

// Mapper converts global pointer positions into surface-local points.
type Mapper struct {
	origin        image.Point
	width, height int
}

// SetOrigin records where the surface's top-left corner currently sits on
// screen.
func (m *Mapper) SetOrigin(x, y int) { m.origin = image.Pt(x, y) }

// Origin returns the recorded on-screen origin.
func (m *Mapper) Origin() image.Point { return m.origin }

// Size returns the current surface size. Both are zero before the first
// Resize.
func (m *Mapper) Size() (int, int) { return m.width, m.height }

// Sized reports whether the surface has non-zero dimensions.
func (m *Mapper) Sized() bool { return m.width > 0 && m.height > 0 }

// Local converts a global position into surface-local coordinates using the
// origin recorded at the time of the call.
func (m *Mapper) Local(globalX, globalY, pressure float64) geom.Point {
	return geom.Point{
		X:        globalX - float64(m.origin.X),
		Y:        globalY - float64(m.origin.Y),
		Pressure: pressure,
	}.Normalized()
}

// Resize records the new surface size and returns the factors existing
// geometry must be multiplied by. ok is false when no remap is needed: the
// surface had no previous size or the size did not change.
func (m *Mapper) Resize(newW, newH int) (s geom.Scale, ok bool) {
	oldW, oldH := m.width, m.height
	m.width, m.height = newW, newH
	if oldW <= 0 || oldH <= 0 || newW <= 0 || newH <= 0 {
		return geom.Scale{X: 1, Y: 1}, false
	}
	if oldW == newW && oldH == newH {
		return geom.Scale{X: 1, Y: 1}, false
	}
	return geom.Scale{X: float64(newW) / float64(oldW), Y: float64(newH) / float64(oldH)}, true
}

// ScaleRaster returns src resampled to w by h. A nil or empty src yields nil.
func ScaleRaster(src *image.RGBA, w, h int) *image.RGBA {
	if src == nil || src.Bounds().Empty() || w <= 0 || h <= 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
