package theme

import (
	"image/color"
)

// Theme defines the colors used for the toolbar and the overlay chrome drawn
// on top of annotations.
type Theme struct {
	Name string

	// Toolbar window
	ToolbarBackground color.RGBA
	ToolbarText       color.RGBA
	ButtonBackground  color.RGBA
	ButtonActive      color.RGBA // Highlight for the active tool
	ButtonBorder      color.RGBA

	// Overlay chrome
	Selection       color.RGBA // Outline of the selected text box
	Handle          color.RGBA
	HandleBorder    color.RGBA
	Preview         color.RGBA // Dashed rectangle while creating a text box
	Caret           color.RGBA
	PanelBackground color.RGBA // Style panel next to the selected text box
	PanelBorder     color.RGBA
	PanelText       color.RGBA
	Shadow          color.RGBA

	// Shown when no desktop backdrop could be captured
	SurfaceFallback color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:              "Default",
		ToolbarBackground: color.RGBA{240, 240, 240, 255},
		ToolbarText:       color.RGBA{0, 0, 0, 255},
		ButtonBackground:  color.RGBA{220, 220, 220, 255},
		ButtonActive:      color.RGBA{180, 210, 255, 255},
		ButtonBorder:      color.RGBA{120, 120, 120, 255},
		Selection:         color.RGBA{0x21, 0x96, 0xf3, 255},
		Handle:            color.RGBA{255, 255, 255, 255},
		HandleBorder:      color.RGBA{0x21, 0x96, 0xf3, 255},
		Preview:           color.RGBA{0x4c, 0xaf, 0x50, 255},
		Caret:             color.RGBA{0, 0, 0, 255},
		PanelBackground:   color.RGBA{255, 255, 255, 255},
		PanelBorder:       color.RGBA{200, 200, 200, 255},
		PanelText:         color.RGBA{60, 60, 60, 255},
		Shadow:            color.RGBA{0, 0, 0, 90},
		SurfaceFallback:   color.RGBA{0, 0, 0, 40},
	}
}
