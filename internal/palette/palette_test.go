package palette

import (
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestMarkerColour(t *testing.T) {
	p := ForView(0)
	test.That(t, p.MarkerColour(true, true), test.ShouldResemble, p.Selected)
	test.That(t, p.MarkerColour(true, false), test.ShouldResemble, p.Selected)
	test.That(t, p.MarkerColour(false, true), test.ShouldResemble, p.Calibrated)
	test.That(t, p.MarkerColour(false, false), test.ShouldResemble, p.Marker)
	test.That(t, p.Marker, test.ShouldNotResemble, p.Calibrated)
}

func TestForView(t *testing.T) {
	a, b := ForView(0), ForView(1)
	test.That(t, a.Model, test.ShouldNotResemble, b.Model)
	test.That(t, a.Marker, test.ShouldResemble, b.Marker)
	test.That(t, a.Model.A, test.ShouldEqual, uint8(255))
}

func TestShaded(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 128}
	test.That(t, Shaded(c, 1), test.ShouldResemble, c)
	test.That(t, Shaded(c, 0), test.ShouldResemble, color.RGBA{A: 128})
	test.That(t, Shaded(c, 0.5), test.ShouldResemble, color.RGBA{R: 100, G: 50, B: 25, A: 128})

	bright := Shaded(c, 10)
	test.That(t, bright.R, test.ShouldEqual, uint8(255))
	test.That(t, bright.A, test.ShouldEqual, uint8(128))
}

func TestFloat(t *testing.T) {
	test.That(t, Float(color.RGBA{R: 255, G: 0, B: 51, A: 255}), test.ShouldResemble, [4]float32{1, 0, 0.2, 1})
}
