// Package geom provides the 2D screen-space helpers used when picking
// calibration points:
// - Conversion between normalized device coordinates and viewport pixels
// - Projection of model points through OpenGL matrices, with frustum clipping
// - Point arithmetic and the L∞ snap test
//
// Screen coordinates are y-up with the origin in the lower-left corner of the
// viewport, matching OpenGL window coordinates. Windowing systems report
// y-down coordinates; use FlipY to convert.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point represents a 2D point or vector in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle. Viewports are boxes in pixels.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

func MakePoint(x, y float64) Point   { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box { return Box{X: x, Y: y, W: w, H: h} }

// Viewport returns the pixel box of a width x height view anchored at the
// origin.
func Viewport(width, height int) Box { return MakeBox(0, 0, float64(width), float64(height)) }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

func Dist(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// FlipY converts a y-down window coordinate into the y-up convention.
func FlipY(height int, y float64) float64 {
	return float64(height) - y
}

// Snap reports whether a is within radius of b on both axes (L∞ distance).
func Snap(a, b Point, radius float64) bool {
	return math.Abs(a.X-b.X) <= radius && math.Abs(a.Y-b.Y) <= radius
}

// DeviceToScreen maps a point in normalized device coordinates ([-1, 1] on
// both axes) to viewport pixels.
func DeviceToScreen(vp Box, ndc Point) Point {
	return Point{
		X: vp.X + (ndc.X+1)*0.5*vp.W,
		Y: vp.Y + (ndc.Y+1)*0.5*vp.H,
	}
}

// ScreenToDevice is the inverse of DeviceToScreen.
func ScreenToDevice(vp Box, p Point) Point {
	return Point{
		X: 2*(p.X-vp.X)/vp.W - 1,
		Y: 2*(p.Y-vp.Y)/vp.H - 1,
	}
}

// PixelToDevice returns the NDC extent of one pixel along each axis.
func PixelToDevice(vp Box) Point {
	return Point{X: 2 / vp.W, Y: 2 / vp.H}
}

// ProjectToScreen transforms obj by modelview then projection and maps the
// result into the viewport. The returned Z is window depth in [0, 1]. ok is
// false when the point lies behind the eye or outside the view frustum.
func ProjectToScreen(vp Box, projection, modelview mgl64.Mat4, obj mgl64.Vec3) (win mgl64.Vec3, ok bool) {
	clip := projection.Mul4(modelview).Mul4x1(obj.Vec4(1))
	w := clip.W()
	if w <= 0 || math.IsNaN(w) {
		return mgl64.Vec3{}, false
	}

	ndc := clip.Vec3().Mul(1 / w)
	for _, c := range ndc {
		if c < -1 || c > 1 {
			return mgl64.Vec3{}, false
		}
	}

	p := DeviceToScreen(vp, MakePoint(ndc.X(), ndc.Y()))
	return mgl64.Vec3{p.X, p.Y, (ndc.Z() + 1) * 0.5}, true
}

// ProjectToDevice transforms obj by modelview then projection and returns the
// resulting normalized device coordinates without clipping. ok is false when
// the homogeneous w is not positive.
func ProjectToDevice(projection, modelview mgl64.Mat4, obj mgl64.Vec3) (Point, bool) {
	clip := projection.Mul4(modelview).Mul4x1(obj.Vec4(1))
	w := clip.W()
	if w <= 0 || math.IsNaN(w) {
		return Point{}, false
	}
	return MakePoint(clip.X()/w, clip.Y()/w), true
}
