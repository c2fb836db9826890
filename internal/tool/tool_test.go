package tool

import "testing"

func TestCapabilitiesOffGrantsNothing(t *testing.T) {
	for _, tl := range All() {
		if got := CapabilitiesFor(false, tl); got != None {
			t.Errorf("%s: expected no capabilities while off, got %+v", tl, got)
		}
	}
}

func TestCapabilitiesPerTool(t *testing.T) {
	if c := CapabilitiesFor(true, Pen); !c.CanDraw || c.CanErase || c.CanCreateText || c.CanSelect {
		t.Errorf("pen: %+v", c)
	}
	if c := CapabilitiesFor(true, Eraser); !c.CanErase || c.CanDraw {
		t.Errorf("eraser: %+v", c)
	}
	if c := CapabilitiesFor(true, Text); !c.CanCreateText || c.CanSelect {
		t.Errorf("text: %+v", c)
	}
	if c := CapabilitiesFor(true, Selector); !c.CanSelect || c.CanCreateText {
		t.Errorf("selector: %+v", c)
	}
}

func TestParseAndKeys(t *testing.T) {
	for _, tl := range All() {
		got, err := Parse(tl.String())
		if err != nil || got != tl {
			t.Errorf("Parse(%q) = %v, %v", tl.String(), got, err)
		}
	}
	if _, err := Parse("lasso"); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
	keys := map[rune]Tool{'p': Pen, 'e': Eraser, 't': Text, 'm': Selector}
	for r, want := range keys {
		got, ok := ForKey(r)
		if !ok || got != want {
			t.Errorf("ForKey(%q) = %v, %v", r, got, ok)
		}
	}
	if _, ok := ForKey('x'); ok {
		t.Errorf("ForKey('x') should not map to a tool")
	}
}
