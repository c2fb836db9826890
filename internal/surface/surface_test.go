package surface

import (
	"image"
	"testing"
)

func TestResizeFirstSizeIsBaseline(t *testing.T) {
	var m Mapper
	if _, ok := m.Resize(800, 600); ok {
		t.Fatalf("first resize must not request a remap")
	}
	if w, h := m.Size(); w != 800 || h != 600 {
		t.Fatalf("size = %dx%d", w, h)
	}
}

func TestResizeScale(t *testing.T) {
	var m Mapper
	m.Resize(800, 600)
	s, ok := m.Resize(1600, 600)
	if !ok {
		t.Fatalf("expected remap")
	}
	if s.X != 2 || s.Y != 1 {
		t.Fatalf("scale = %+v, want {2 1}", s)
	}
}

func TestResizeSameSizeIsIdempotent(t *testing.T) {
	var m Mapper
	m.Resize(800, 600)
	m.Resize(1600, 600)
	if _, ok := m.Resize(1600, 600); ok {
		t.Fatalf("repeated size must not remap twice")
	}
}

func TestResizeFromZeroSkips(t *testing.T) {
	var m Mapper
	m.Resize(0, 600)
	if _, ok := m.Resize(1024, 768); ok {
		t.Fatalf("zero width must not produce a scale")
	}
	if _, ok := m.Resize(0, 0); ok {
		t.Fatalf("shrinking to zero must not produce a scale")
	}
}

func TestLocalUsesCurrentOrigin(t *testing.T) {
	var m Mapper
	m.SetOrigin(100, 50)
	p := m.Local(150, 80, 0)
	if p.X != 50 || p.Y != 30 {
		t.Fatalf("local = (%v,%v)", p.X, p.Y)
	}
	if p.Pressure != 0.5 {
		t.Fatalf("missing pressure should default, got %v", p.Pressure)
	}
	m.SetOrigin(0, 0)
	p = m.Local(150, 80, 0.8)
	if p.X != 150 || p.Y != 80 || p.Pressure != 0.8 {
		t.Fatalf("origin change not applied: %+v", p)
	}
}

func TestScaleRaster(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	dst := ScaleRaster(src, 8, 2)
	if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(7, 1); got.R < 250 || got.A < 250 {
		t.Fatalf("pixel = %v", got)
	}
	if ScaleRaster(nil, 4, 4) != nil {
		t.Fatalf("nil source should yield nil")
	}
}
