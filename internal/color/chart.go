// Package color provides deterministic colors for chart series.
package color

import "fmt"

// Chart palette parameters. Hue starts at 200 and rotates 60 degrees per position.
const (
	chartBaseHue    = 200
	chartHueStep    = 60
	chartSaturation = 70
	chartLightness  = 70
)

// ForPosition returns the CSS hsl() color for the series entry at index i.
// The color depends only on the position, so the same ordering always renders the same colors.
func ForPosition(i int) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", chartHue(i), chartSaturation, chartLightness)
}

// HexForPosition returns the hex equivalent of ForPosition(i).
func HexForPosition(i int) string {
	r, g, b := hslToRGB(float64(chartHue(i)), chartSaturation/100.0, chartLightness/100.0)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// chartHue wraps the rotated hue into [0, 360).
func chartHue(i int) int {
	h := (chartBaseHue + i*chartHueStep) % 360
	if h < 0 {
		h += 360
	}
	return h
}

// hslToRGB converts HSL color space to RGB.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		v := uint8(l*255 + 0.5)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return toByte(hueToRGB(p, q, h+1.0/3.0)),
		toByte(hueToRGB(p, q, h)),
		toByte(hueToRGB(p, q, h-1.0/3.0))
}

func toByte(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
