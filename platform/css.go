package platform

import (
	"strconv"
	"strings"

	"gamescale/scaler"
)

// ParseCSSPixels reads a computed CSS length such as "34px" or "0". Empty,
// negative and non-pixel values report false.
func ParseCSSPixels(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || !finite(f) {
		return 0, false
	}
	return f, true
}

// insetsFromCSS builds insets from the four custom property values in
// top, right, bottom, left order. The result is usable when at least one
// side parsed.
func insetsFromCSS(top, right, bottom, left string) (scaler.Insets, bool) {
	var in scaler.Insets
	found := false
	for _, side := range []struct {
		raw string
		dst *float64
	}{
		{top, &in.Top},
		{right, &in.Right},
		{bottom, &in.Bottom},
		{left, &in.Left},
	} {
		if v, ok := ParseCSSPixels(side.raw); ok {
			*side.dst = v
			found = true
		}
	}
	return in, found
}
