package eraser

import (
	"testing"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/stroke"
	"github.com/example/inkpane/internal/tool"
)

var erase = tool.Capabilities{CanErase: true}

type fakeOverlays struct {
	boxes map[string]geom.Rect
}

func (f *fakeOverlays) RemoveContaining(p geom.Vec) []string {
	var ids []string
	for id, r := range f.boxes {
		if r.Contains(p) {
			ids = append(ids, id)
			delete(f.boxes, id)
		}
	}
	return ids
}

func engineWith(t *testing.T, strokes ...[]geom.Point) *stroke.Engine {
	t.Helper()
	n := 0
	e := stroke.New(stroke.WithIDSource(func() string {
		n++
		return string(rune('a' + n - 1))
	}))
	for _, pts := range strokes {
		e.Begin(pts[0], tool.Capabilities{CanDraw: true})
		for _, p := range pts[1:] {
			e.Extend(p)
		}
		if _, ok := e.End(); !ok {
			t.Fatalf("stroke %v not committed", pts)
		}
	}
	return e
}

func TestEraseWithinTwiceLineWidth(t *testing.T) {
	// Width 5 gives radius 10. Stroke a starts exactly on the edge at (6,8)
	// and is kept, c has a point at about 9.9 and d starts just outside.
	e := engineWith(t,
		[]geom.Point{geom.Pt(6, 8), geom.Pt(12, 16)},
		[]geom.Point{geom.Pt(20, 20), geom.Pt(30, 30)},
		[]geom.Point{geom.Pt(-7, 7), geom.Pt(-8, 8)},
		[]geom.Point{geom.Pt(10.1, 0), geom.Pt(50, 0)},
	)
	er := New(e, nil)
	res := er.EraseAt(geom.Pt(0, 0), 5, erase)
	if len(res.Strokes) != 1 || res.Strokes[0] != "c" {
		t.Fatalf("removed %v, want [c]", res.Strokes)
	}
	left := e.Strokes()
	if len(left) != 3 || left[0].ID != "a" || left[1].ID != "b" || left[2].ID != "d" {
		t.Fatalf("remaining %+v", left)
	}
}

func TestEraseNeedsCapability(t *testing.T) {
	e := engineWith(t, []geom.Point{geom.Pt(0, 0), geom.Pt(1, 1)})
	res := New(e, nil).EraseAt(geom.Pt(0, 0), 5, tool.Capabilities{CanDraw: true})
	if !res.Empty() {
		t.Fatalf("pen must not erase: %+v", res)
	}
	if len(e.Strokes()) != 1 {
		t.Fatalf("stroke should remain")
	}
}

func TestEraseRemovesContainingOverlays(t *testing.T) {
	ov := &fakeOverlays{boxes: map[string]geom.Rect{
		"inside":  {X: 0, Y: 0, Width: 100, Height: 20},
		"outside": {X: 200, Y: 200, Width: 100, Height: 20},
	}}
	res := New(nil, ov).EraseAt(geom.Pt(50, 10), 2, erase)
	if len(res.Overlays) != 1 || res.Overlays[0] != "inside" {
		t.Fatalf("overlays removed = %v", res.Overlays)
	}
	if _, ok := ov.boxes["outside"]; !ok {
		t.Fatalf("unrelated overlay removed")
	}
}

func TestFactorOption(t *testing.T) {
	er := New(nil, nil, WithFactor(3))
	if r := er.Radius(4); r != 12 {
		t.Fatalf("radius = %v", r)
	}
	if r := New(nil, nil, WithFactor(-1)).Radius(4); r != 8 {
		t.Fatalf("invalid factor should keep default, radius = %v", r)
	}
}
