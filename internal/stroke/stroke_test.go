package stroke

import (
	"fmt"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/tool"
)

var pen = tool.Capabilities{CanDraw: true}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func drawStroke(e *Engine, pts ...geom.Point) (Stroke, bool) {
	e.Begin(pts[0], pen)
	for _, p := range pts[1:] {
		e.Extend(p)
	}
	return e.End()
}

func TestBeginRequiresDrawCapability(t *testing.T) {
	e := New()
	if e.Begin(geom.Pt(1, 1), tool.Capabilities{CanErase: true}) {
		t.Fatalf("begin should be refused without CanDraw")
	}
	if e.Drawing() {
		t.Fatalf("no stroke should be active")
	}
	if e.Extend(geom.Pt(2, 2)) {
		t.Fatalf("extend without a stroke must be a no-op")
	}
	if _, ok := e.End(); ok {
		t.Fatalf("end without a stroke must not commit")
	}
}

func TestDefaultPen(t *testing.T) {
	s, ok := drawStroke(New(), geom.Pt(0, 0), geom.Pt(5, 5))
	if !ok || s.Color != "#ff0000" || s.Width != 2 {
		t.Fatalf("default stroke = %+v, committed %v", s, ok)
	}
}

func TestZeroLengthStrokeIsDiscarded(t *testing.T) {
	e := New()
	if _, ok := drawStroke(e, geom.Pt(10, 10)); ok {
		t.Fatalf("press and release without movement must not commit")
	}
	if _, ok := drawStroke(e, geom.Pt(10, 10), geom.Pt(10, 10)); ok {
		t.Fatalf("samples on one spot must not commit")
	}
	if n := len(e.Strokes()); n != 0 {
		t.Fatalf("expected no strokes, got %d", n)
	}
}

func TestCommitUsesCurrentStyleAndFreshID(t *testing.T) {
	e := New(WithIDSource(sequentialIDs()), WithColor("#ff0000"), WithWidth(6))
	e.Begin(geom.Pt(0, 0), pen)
	e.Extend(geom.Pt(5, 5))
	e.SetColor("#00ff00")
	s, ok := e.End()
	if !ok {
		t.Fatalf("expected commit")
	}
	if s.ID != "s1" || s.Color != "#00ff00" || s.Width != 6 {
		t.Fatalf("unexpected stroke %+v", s)
	}
	s2, _ := drawStroke(e, geom.Pt(1, 1), geom.Pt(9, 9))
	if s2.ID != "s2" {
		t.Fatalf("ids must be unique, got %q", s2.ID)
	}
	got := e.Strokes()
	if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("strokes not in commit order: %+v", got)
	}
}

func TestMissingPressureDefaults(t *testing.T) {
	e := New()
	s, ok := drawStroke(e, geom.Point{X: 0, Y: 0}, geom.Point{X: 3, Y: 4, Pressure: 0.9})
	if !ok {
		t.Fatalf("expected commit")
	}
	if s.Points[0].Pressure != geom.DefaultPressure || s.Points[1].Pressure != 0.9 {
		t.Fatalf("pressures = %v, %v", s.Points[0].Pressure, s.Points[1].Pressure)
	}
}

func TestCancelDropsActive(t *testing.T) {
	e := New()
	e.Begin(geom.Pt(0, 0), pen)
	e.Extend(geom.Pt(40, 40))
	e.Cancel()
	if _, ok := e.End(); ok {
		t.Fatalf("cancelled stroke must not commit")
	}
}

func TestRemoveWhereAndRemap(t *testing.T) {
	e := New(WithIDSource(sequentialIDs()))
	drawStroke(e, geom.Pt(0, 0), geom.Pt(10, 0))
	drawStroke(e, geom.Pt(100, 100), geom.Pt(110, 100))
	removed := e.RemoveWhere(func(s Stroke) bool { return s.ID == "s1" })
	if len(removed) != 1 || removed[0].ID != "s1" {
		t.Fatalf("removed = %+v", removed)
	}
	e.Remap(geom.Scale{X: 2, Y: 0.5})
	left := e.Strokes()
	if len(left) != 1 {
		t.Fatalf("expected one stroke left")
	}
	if p := left[0].Points[1]; p.X != 220 || p.Y != 50 {
		t.Fatalf("remapped point = %+v", p)
	}
}

func TestOutlineIsDeterministic(t *testing.T) {
	pts := []geom.Point{
		{X: 10, Y: 10, Pressure: 0.5},
		{X: 30, Y: 14, Pressure: 0.6},
		{X: 60, Y: 30, Pressure: 0.7},
		{X: 80, Y: 70, Pressure: 0.4},
		{X: 50, Y: 90, Pressure: 0.5},
		{X: 20, Y: 60, Pressure: 0.5},
	}
	opts := DefaultOutlineOptions()
	a := Outline(pts, 8, opts)
	b := Outline(pts, 8, opts)
	if len(a) == 0 {
		t.Fatalf("expected an outline")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("outline differs between runs")
	}
}

func TestOutlineDegenerateInput(t *testing.T) {
	if Outline(nil, 4, DefaultOutlineOptions()) != nil {
		t.Fatalf("no points should give no outline")
	}
	if Outline([]geom.Point{geom.Pt(1, 1), geom.Pt(5, 5)}, 0, DefaultOutlineOptions()) != nil {
		t.Fatalf("zero size should give no outline")
	}
	dot := Outline([]geom.Point{geom.Pt(20, 20)}, 6, DefaultOutlineOptions())
	if len(dot) < 3 {
		t.Fatalf("single point should still produce a closed shape, got %d points", len(dot))
	}
}

func TestOutlineStaysNearStroke(t *testing.T) {
	pts := []geom.Point{geom.Pt(0, 50), geom.Pt(25, 50), geom.Pt(50, 50), geom.Pt(75, 50), geom.Pt(100, 50)}
	for _, v := range Outline(pts, 10, DefaultOutlineOptions()) {
		if v.Y < 50-10 || v.Y > 50+10 {
			t.Fatalf("outline point %+v strays beyond the stroke width", v)
		}
	}
}

func TestRendererFillsStrokeColor(t *testing.T) {
	e := New(WithColor("#ff0000"), WithWidth(10))
	drawStroke(e, geom.Pt(10, 32), geom.Pt(30, 32), geom.Pt(50, 32))
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	NewRenderer(DefaultOutlineOptions()).Draw(dst, e.Strokes(), nil)
	if got := dst.RGBAAt(30, 32); got.R < 200 || got.G != 0 {
		t.Fatalf("stroke centre = %v", got)
	}
	if got := dst.RGBAAt(30, 5); got != (color.RGBA{}) {
		t.Fatalf("pixel far from stroke was painted: %v", got)
	}
}

func TestRendererDrawsActiveLast(t *testing.T) {
	e := New(WithColor("#ff0000"), WithWidth(12))
	drawStroke(e, geom.Pt(10, 32), geom.Pt(30, 32), geom.Pt(54, 32))
	e.SetColor("#0000ff")
	e.Begin(geom.Pt(32, 8), pen)
	e.Extend(geom.Pt(32, 30))
	e.Extend(geom.Pt(32, 56))
	active, _ := e.Active()
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	NewRenderer(DefaultOutlineOptions()).Draw(dst, e.Strokes(), &active)
	if got := dst.RGBAAt(32, 32); got.B < 200 || got.R > 50 {
		t.Fatalf("active stroke should cover the committed one, got %v", got)
	}
}
