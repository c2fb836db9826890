// Package config reads and writes the inkpane rc file.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/inkpane/internal/eraser"
	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/stroke"
	"github.com/example/inkpane/internal/theme"
)

// Pen holds the initial pen style.
type Pen struct {
	Color string
	Width float64
}

// Eraser holds eraser settings.
type Eraser struct {
	Factor float64
}

// Stroke holds the outline tunables.
type Stroke struct {
	Thinning   float64
	Smoothing  float64
	Streamline float64
}

// TextBox holds text overlay defaults.
type TextBox struct {
	MinWidth   float64
	MinHeight  float64
	TextColor  string
	Background string
	Opacity    float64
	FontSize   float64
}

// Toolbar is the window geometry used while annotation is off.
type Toolbar struct {
	X, Y          int
	Width, Height int
}

// Notify holds notification settings.
type Notify struct {
	Annotate bool
	Clear    bool
	Copy     bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	Pen     Pen
	Eraser  Eraser
	Stroke  Stroke
	TextBox TextBox
	Toolbar Toolbar
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	outline := stroke.DefaultOutlineOptions()
	return &Config{
		Pen:    Pen{Color: stroke.DefaultColor, Width: stroke.DefaultWidth},
		Eraser: Eraser{Factor: eraser.DefaultFactor},
		Stroke: Stroke{
			Thinning:   outline.Thinning,
			Smoothing:  outline.Smoothing,
			Streamline: outline.Streamline,
		},
		TextBox: TextBox{
			MinWidth:   overlay.DefaultMinWidth,
			MinHeight:  overlay.DefaultMinHeight,
			TextColor:  overlay.DefaultTextColor,
			Background: overlay.DefaultBackground,
			Opacity:    overlay.DefaultOpacity,
			FontSize:   overlay.DefaultFontSize,
		},
		Toolbar: Toolbar{X: 40, Y: 40, Width: 420, Height: 48},
		Themes:  make(map[string]*theme.Theme),
	}
}

// OutlineOptions returns the stroke tunables as renderer options.
func (c *Config) OutlineOptions() stroke.OutlineOptions {
	opts := stroke.DefaultOutlineOptions()
	opts.Thinning = c.Stroke.Thinning
	opts.Smoothing = c.Stroke.Smoothing
	opts.Streamline = c.Stroke.Streamline
	return opts
}

// OverlayStyle returns the text box defaults as an overlay style.
func (c *Config) OverlayStyle() overlay.Style {
	return overlay.Style{
		TextColor:  c.TextBox.TextColor,
		Background: c.TextBox.Background,
		Opacity:    c.TextBox.Opacity,
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	sb.WriteString("\n")

	sb.WriteString("[pen]\n")
	fmt.Fprintf(&sb, "color = %s\n", c.Pen.Color)
	fmt.Fprintf(&sb, "width = %s\n", formatFloat(c.Pen.Width))
	sb.WriteString("\n")

	sb.WriteString("[eraser]\n")
	fmt.Fprintf(&sb, "factor = %s\n", formatFloat(c.Eraser.Factor))
	sb.WriteString("\n")

	sb.WriteString("[stroke]\n")
	fmt.Fprintf(&sb, "thinning = %s\n", formatFloat(c.Stroke.Thinning))
	fmt.Fprintf(&sb, "smoothing = %s\n", formatFloat(c.Stroke.Smoothing))
	fmt.Fprintf(&sb, "streamline = %s\n", formatFloat(c.Stroke.Streamline))
	sb.WriteString("\n")

	sb.WriteString("[textbox]\n")
	fmt.Fprintf(&sb, "min_width = %s\n", formatFloat(c.TextBox.MinWidth))
	fmt.Fprintf(&sb, "min_height = %s\n", formatFloat(c.TextBox.MinHeight))
	fmt.Fprintf(&sb, "text_color = %s\n", c.TextBox.TextColor)
	fmt.Fprintf(&sb, "background = %s\n", c.TextBox.Background)
	fmt.Fprintf(&sb, "opacity = %s\n", formatFloat(c.TextBox.Opacity))
	fmt.Fprintf(&sb, "font_size = %s\n", formatFloat(c.TextBox.FontSize))
	sb.WriteString("\n")

	sb.WriteString("[toolbar]\n")
	fmt.Fprintf(&sb, "x = %d\n", c.Toolbar.X)
	fmt.Fprintf(&sb, "y = %d\n", c.Toolbar.Y)
	fmt.Fprintf(&sb, "width = %d\n", c.Toolbar.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Toolbar.Height)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "annotate = %v\n", c.Notify.Annotate)
	fmt.Fprintf(&sb, "clear = %v\n", c.Notify.Clear)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, kv := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
