package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/inkpane/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			currentSection = strings.ToLower(raw)
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := raw[len("theme."):]
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = theme.SetField(currentTheme, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "pen":
			err = setPenField(&cfg.Pen, key, value)
		case currentSection == "eraser":
			err = setEraserField(&cfg.Eraser, key, value)
		case currentSection == "stroke":
			err = setStrokeField(&cfg.Stroke, key, value)
		case currentSection == "textbox":
			err = setTextBoxField(&cfg.TextBox, key, value)
		case currentSection == "toolbar":
			err = setToolbarField(&cfg.Toolbar, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	}
	return nil
}

func setPenField(p *Pen, key, value string) error {
	switch strings.ToLower(key) {
	case "color":
		c, err := theme.NormalizeHex(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		p.Color = c
	case "width":
		return parsePositive(key, value, &p.Width)
	}
	return nil
}

func setEraserField(e *Eraser, key, value string) error {
	switch strings.ToLower(key) {
	case "factor":
		return parsePositive(key, value, &e.Factor)
	}
	return nil
}

func setStrokeField(s *Stroke, key, value string) error {
	var dst *float64
	switch strings.ToLower(key) {
	case "thinning":
		dst = &s.Thinning
	case "smoothing":
		dst = &s.Smoothing
	case "streamline":
		dst = &s.Streamline
	default:
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", key, f)
	}
	*dst = f
	return nil
}

func setTextBoxField(t *TextBox, key, value string) error {
	switch strings.ToLower(key) {
	case "min_width":
		return parsePositive(key, value, &t.MinWidth)
	case "min_height":
		return parsePositive(key, value, &t.MinHeight)
	case "font_size":
		return parsePositive(key, value, &t.FontSize)
	case "text_color", "background":
		c, err := theme.NormalizeHex(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		if strings.EqualFold(key, "text_color") {
			t.TextColor = c
		} else {
			t.Background = c
		}
	case "opacity":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("opacity must be between 0 and 1, got %v", f)
		}
		t.Opacity = f
	}
	return nil
}

func setToolbarField(t *Toolbar, key, value string) error {
	var dst *int
	switch strings.ToLower(key) {
	case "x":
		dst = &t.X
	case "y":
		dst = &t.Y
	case "width":
		dst = &t.Width
	case "height":
		dst = &t.Height
	default:
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "annotate":
		n.Annotate = b
	case "clear":
		n.Clear = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func parsePositive(key, value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if f <= 0 {
		return fmt.Errorf("%s must be positive, got %v", key, f)
	}
	*dst = f
	return nil
}
