package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReferenceBackground is the dashboard background every accent color is
// checked against before it may be persisted.
const ReferenceBackground = "#0f172a"

// AAThreshold is the WCAG AA minimum contrast ratio for normal text.
const AAThreshold = 4.5

// ContrastResult reports the measured contrast ratio and whether it clears
// the AA threshold.
type ContrastResult struct {
	Ratio   float64 `json:"ratio"`
	MeetsAA bool    `json:"meets_aa"`
}

// CheckContrast computes the WCAG contrast ratio between an accent color
// and the reference background.
func CheckContrast(accent string) (*ContrastResult, error) {
	fg, err := parseHexColor(accent)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(ReferenceBackground)
	if err != nil {
		return nil, err
	}

	ratio := contrastRatio(relativeLuminance(fg), relativeLuminance(bg))
	ratio = math.Round(ratio*100) / 100

	return &ContrastResult{
		Ratio:   ratio,
		MeetsAA: ratio >= AAThreshold,
	}, nil
}

type rgb struct {
	r, g, b float64 // 0..1
}

// parseHexColor accepts #rgb and #rrggbb forms.
func parseHexColor(s string) (rgb, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return rgb{}, fmt.Errorf("invalid hex color %q", s)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid hex color %q", s)
	}

	return rgb{
		r: float64(val>>16&0xff) / 255,
		g: float64(val>>8&0xff) / 255,
		b: float64(val&0xff) / 255,
	}, nil
}

// relativeLuminance implements the WCAG 2.1 definition.
func relativeLuminance(c rgb) float64 {
	return 0.2126*linearize(c.r) + 0.7152*linearize(c.g) + 0.0722*linearize(c.b)
}

func linearize(channel float64) float64 {
	if channel <= 0.03928 {
		return channel / 12.92
	}
	return math.Pow((channel+0.055)/1.055, 2.4)
}

func contrastRatio(l1, l2 float64) float64 {
	lighter, darker := l1, l2
	if darker > lighter {
		lighter, darker = darker, lighter
	}
	return (lighter + 0.05) / (darker + 0.05)
}
