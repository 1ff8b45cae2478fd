// Package palette provides the colours the renderer draws a mapping session
// with. Colours are built in HSV space so that shading and highlighting only
// ever move brightness and saturation, never hue.
package palette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colours of one view.
type Palette struct {
	Background color.RGBA
	Model      color.RGBA // base colour of the model mesh, before shading
	Candidate  color.RGBA // pickable model vertices
	Marker     color.RGBA // correspondences while uncalibrated
	Calibrated color.RGBA // correspondences once calibrated
	Selected   color.RGBA // the selected correspondence
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hsb converts hue in degrees and saturation/brightness in [0, 1] to RGBA.
func hsb(h, s, b float64) color.RGBA {
	c := colorful.Hsv(math.Mod(h, 360), clamp(s, 0, 1), clamp(b, 0, 1))
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 255}
}

// ForView returns the palette of the view at index. Each view gets its own
// model hue, spread by the golden angle so neighbouring views differ.
func ForView(index int) Palette {
	hue := 30 + float64(index)*137.508
	return Palette{
		Background: color.RGBA{A: 255},
		Model:      hsb(hue, 0.35, 0.85),
		Candidate:  hsb(hue+180, 0.6, 1),
		Marker:     hsb(0, 0.85, 1),
		Calibrated: hsb(120, 0.85, 0.9),
		Selected:   hsb(55, 0.9, 1),
	}
}

// MarkerColour returns the colour of a correspondence marker.
func (p Palette) MarkerColour(selected, calibrated bool) color.RGBA {
	switch {
	case selected:
		return p.Selected
	case calibrated:
		return p.Calibrated
	default:
		return p.Marker
	}
}

// Shaded scales the brightness of c by factor, clamped to [0, 1].
func Shaded(c color.RGBA, factor float64) color.RGBA {
	h, s, v := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hsv()
	out := hsb(h, s, v*factor)
	out.A = c.A
	return out
}

// Float returns c as normalized RGBA components for vertex data.
func Float(c color.RGBA) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
