package calib

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

const (
	near = 0.1
	far  = 100.0
)

// sixCorners is six corners of the [-1, 1] cube. No five are coplanar.
var sixCorners = []r3.Vector{
	{X: -1, Y: -1, Z: -1},
	{X: 1, Y: -1, Z: -1},
	{X: 1, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: 1},
	{X: -1, Y: -1, Z: 1},
}

func translate(pts []r3.Vector, by r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = p.Add(by)
	}
	return out
}

// projectAll maps model points to NDC through a ground-truth camera.
func projectAll(projection, modelview mgl64.Mat4, pts []r3.Vector) []r3.Vector {
	mvp := projection.Mul4(modelview)
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		clip := mvp.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
		out[i] = r3.Vector{X: clip.X() / clip.W(), Y: clip.Y() / clip.W()}
	}
	return out
}

func matricesAlmostEqual(t *testing.T, got, want mgl64.Mat4, tol float64) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			test.That(t, got.At(i, j), test.ShouldAlmostEqual, want.At(i, j), tol)
		}
	}
}

func TestCalibrateGroundTruth(t *testing.T) {
	for _, tc := range []struct {
		name       string
		projection mgl64.Mat4
		modelview  mgl64.Mat4
		model      []r3.Vector
	}{
		{
			name:       "cube",
			projection: mgl64.Perspective(mgl64.DegToRad(50), 4.0/3.0, near, far),
			modelview:  mgl64.LookAtV(mgl64.Vec3{3, 2.5, 7}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}),
			model:      sixCorners,
		},
		{
			name:       "off-axis frustum",
			projection: mgl64.Frustum(-0.05, 0.07, -0.03, 0.06, near, far),
			modelview:  mgl64.LookAtV(mgl64.Vec3{-4, 3, 6}, mgl64.Vec3{0.2, 0.1, 0}, mgl64.Vec3{0, 1, 0}),
			model:      sixCorners,
		},
		{
			// The model origin lies behind the projector, so the DLT solution
			// comes out with a negative scale.
			name:       "origin behind projector",
			projection: mgl64.Perspective(mgl64.DegToRad(50), 16.0/9.0, near, far),
			modelview:  mgl64.LookAtV(mgl64.Vec3{5, 0.5, 0.3}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{0, 1, 0}),
			model:      translate(sixCorners, r3.Vector{X: 10}),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			projected := projectAll(tc.projection, tc.modelview, tc.model)

			c := New()
			reprojErr, err := c.Calibrate(tc.model, projected, near, far)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, reprojErr, test.ShouldBeLessThan, 1e-6)

			matricesAlmostEqual(t, c.Projection(), tc.projection, 1e-6)
			matricesAlmostEqual(t, c.Modelview(), tc.modelview, 1e-6)

			recovered := projectAll(c.Projection(), c.Modelview(), tc.model)
			for i := range recovered {
				test.That(t, recovered[i].X, test.ShouldAlmostEqual, projected[i].X, 1e-6)
				test.That(t, recovered[i].Y, test.ShouldAlmostEqual, projected[i].Y, 1e-6)
			}

			camera := c.Camera()
			test.That(t, camera, test.ShouldNotBeNil)
			test.That(t, camera.K.At(2, 2), test.ShouldAlmostEqual, 1)
			test.That(t, camera.K.At(0, 0), test.ShouldBeGreaterThan, 0)
			test.That(t, camera.K.At(1, 1), test.ShouldBeGreaterThan, 0)
			test.That(t, mat.Det(camera.R), test.ShouldAlmostEqual, 1, 1e-9)
		})
	}
}

func TestCalibrateIgnoresProjectedZ(t *testing.T) {
	projection := mgl64.Perspective(mgl64.DegToRad(50), 4.0/3.0, near, far)
	modelview := mgl64.LookAtV(mgl64.Vec3{3, 2.5, 7}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	projected := projectAll(projection, modelview, sixCorners)

	withZ := make([]r3.Vector, len(projected))
	for i, p := range projected {
		withZ[i] = r3.Vector{X: p.X, Y: p.Y, Z: 42}
	}

	a, b := New(), New()
	errA, err := a.Calibrate(sixCorners, projected, near, far)
	test.That(t, err, test.ShouldBeNil)
	errB, err := b.Calibrate(sixCorners, withZ, near, far)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errB, test.ShouldEqual, errA)
	test.That(t, b.Projection(), test.ShouldResemble, a.Projection())
	test.That(t, b.Modelview(), test.ShouldResemble, a.Modelview())
}

func TestCalibrateFailures(t *testing.T) {
	projection := mgl64.Perspective(mgl64.DegToRad(50), 4.0/3.0, near, far)
	modelview := mgl64.LookAtV(mgl64.Vec3{3, 2.5, 7}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	projected := projectAll(projection, modelview, sixCorners)

	// A first solve establishes matrices that failures must leave alone.
	c := New()
	_, err := c.Calibrate(sixCorners, projected, near, far)
	test.That(t, err, test.ShouldBeNil)
	prevProjection, prevModelview := c.Projection(), c.Modelview()

	t.Run("five points", func(t *testing.T) {
		_, err := c.Calibrate(sixCorners[:5], projected[:5], near, far)
		test.That(t, errors.Is(err, ErrInsufficientPoints), test.ShouldBeTrue)
	})

	t.Run("mismatched", func(t *testing.T) {
		_, err := c.Calibrate(sixCorners, projected[:5], near, far)
		test.That(t, errors.Is(err, ErrMismatchedPoints), test.ShouldBeTrue)
	})

	t.Run("coplanar", func(t *testing.T) {
		planar := []r3.Vector{
			{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1},
			{X: -1, Y: 1}, {X: 0, Y: 0.5}, {X: 0.3, Y: -0.7},
		}
		_, err := c.Calibrate(planar, projectAll(projection, modelview, planar), near, far)
		test.That(t, errors.Is(err, ErrDegenerate), test.ShouldBeTrue)
	})

	t.Run("bad clip planes", func(t *testing.T) {
		_, err := c.Calibrate(sixCorners, projected, 10, 1)
		test.That(t, err, test.ShouldNotBeNil)
	})

	test.That(t, c.Projection(), test.ShouldResemble, prevProjection)
	test.That(t, c.Modelview(), test.ShouldResemble, prevModelview)
}

func TestCalibrateNoisy(t *testing.T) {
	projection := mgl64.Perspective(mgl64.DegToRad(50), 4.0/3.0, near, far)
	modelview := mgl64.LookAtV(mgl64.Vec3{3, 2.5, 7}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	model := append(append([]r3.Vector{}, sixCorners...),
		r3.Vector{X: 1, Y: -1, Z: 1}, r3.Vector{X: -1, Y: 1, Z: -1}, r3.Vector{X: 0, Y: 0.5, Z: 0.25})
	projected := projectAll(projection, modelview, model)

	// Five pixels in an 800x600 view.
	projected[2].X += 5 * 2.0 / 800

	c := New()
	reprojErr, err := c.Calibrate(model, projected, near, far)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reprojErr, test.ShouldBeGreaterThan, 0)
	test.That(t, reprojErr, test.ShouldBeLessThan, 0.05)

	// Keeping the skew term makes projection*modelview reproduce the solved
	// camera exactly, so the matrices report the same error.
	recovered := projectAll(c.Projection(), c.Modelview(), model)
	var sum float64
	for i := range model {
		sum += math.Hypot(recovered[i].X-projected[i].X, recovered[i].Y-projected[i].Y)
	}
	test.That(t, sum/float64(len(model)), test.ShouldAlmostEqual, reprojErr, 1e-9)
}

func TestRQ(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		2, -1, 0.5,
		0.3, 4, 1,
		-0.7, 0.2, 3,
	})
	k, q := rq(a)

	for i := 0; i < 3; i++ {
		test.That(t, k.At(i, i), test.ShouldBeGreaterThanOrEqualTo, 0)
		for j := 0; j < i; j++ {
			test.That(t, k.At(i, j), test.ShouldAlmostEqual, 0, 1e-12)
		}
	}

	var qqt mat.Dense
	qqt.Mul(q, q.T())
	test.That(t, mat.EqualApprox(&qqt, eye3(), 1e-12), test.ShouldBeTrue)

	var kq mat.Dense
	kq.Mul(k, q)
	test.That(t, mat.EqualApprox(&kq, a, 1e-12), test.ShouldBeTrue)
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
