package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// cameraFOV is the vertical field of view of the framing camera.
const cameraFOV = 45.0

// cameraDirection is where the framing camera sits relative to the model
// centre: above, to the right and in front.
var cameraDirection = mgl64.Vec3{1, 0.8, 1.5}.Normalize()

// Camera returns a perspective camera looking at the centre of the model from
// far enough away that the whole model is in view. Views use it until they
// are calibrated, so that every candidate vertex can be picked.
func (m *Model) Camera(aspect, near, far float64) (projection, modelview mgl64.Mat4) {
	if aspect <= 0 {
		aspect = 1
	}
	fov := mgl64.DegToRad(cameraFOV)
	// The bounding sphere must fit the narrower of the two fields of view.
	half := fov / 2
	if aspect < 1 {
		half = math.Atan(math.Tan(half) * aspect)
	}
	radius := math.Max(m.Radius(), 1e-3)
	distance := 1.1 * radius / math.Sin(half)

	c := m.Center()
	center := mgl64.Vec3{c.X, c.Y, c.Z}
	eye := center.Add(cameraDirection.Mul(distance))

	// Keep the whole sphere between the clip planes where the caller allows.
	near = math.Max(near, math.Min(distance-radius, far)/100)
	far = math.Max(far, distance+2*radius)

	projection = mgl64.Perspective(fov, aspect, near, far)
	modelview = mgl64.LookAtV(eye, center, mgl64.Vec3{0, 1, 0})
	return projection, modelview
}
