// Package calib implements the Bimber–Raskar projector calibration: a linear
// (DLT) solve for the 3x4 camera matrix from 3D↔NDC correspondences, followed
// by an RQ decomposition into OpenGL projection and modelview matrices.
//
// The solve is closed form and needs no initial guess, so it is cheap enough
// to rerun on every pointer motion.
package calib

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// MinPoints is the minimum number of correspondences for a solve.
const MinPoints = 6

var (
	// ErrInsufficientPoints is returned for fewer than MinPoints correspondences.
	ErrInsufficientPoints = errors.New("not enough correspondences to calibrate")
	// ErrMismatchedPoints is returned when the two point lists differ in length.
	ErrMismatchedPoints = errors.New("model and projected point counts differ")
	// ErrDegenerate is returned for singular systems and unusable cameras.
	ErrDegenerate = errors.New("degenerate calibration")
)

// Calibrator holds the matrices of the last successful solve. The zero value
// is not usable; use New.
type Calibrator struct {
	projection mgl64.Mat4
	modelview  mgl64.Mat4
	camera     *Camera
}

// New returns a calibrator whose matrices start as identity.
func New() *Calibrator {
	return &Calibrator{
		projection: mgl64.Ident4(),
		modelview:  mgl64.Ident4(),
	}
}

// Calibrate solves for the camera mapping model onto projected (NDC, z
// ignored) and returns the mean reprojection error in NDC units. On error the
// previous matrices are kept.
func (c *Calibrator) Calibrate(model, projected []r3.Vector, near, far float64) (float64, error) {
	if near <= 0 || far <= near {
		return 0, errors.Errorf("invalid clip planes near=%v far=%v", near, far)
	}

	m, err := SolveCameraMatrix(model, projected)
	if err != nil {
		return 0, err
	}

	reprojErr := ReprojectionError(m, model, projected)
	if math.IsNaN(reprojErr) {
		return 0, errors.Wrap(ErrDegenerate, "reprojection error is NaN")
	}

	camera, err := Decompose(m, model)
	if err != nil {
		return 0, err
	}

	c.camera = camera
	c.projection = camera.ProjectionMatrix(near, far)
	c.modelview = camera.ModelviewMatrix()
	return reprojErr, nil
}

// Projection returns the projection matrix of the last successful solve.
func (c *Calibrator) Projection() mgl64.Mat4 { return c.projection }

// Modelview returns the modelview matrix of the last successful solve.
func (c *Calibrator) Modelview() mgl64.Mat4 { return c.modelview }

// Camera returns the decomposed camera of the last successful solve, or nil.
func (c *Calibrator) Camera() *Camera { return c.camera }
