package calib

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Camera is a solved 3x4 camera matrix split into its OpenGL factors:
// M ∝ diag(1, 1, -1) * K * [R | T], with K upper triangular, K[2,2] = 1 and a
// positive diagonal, and R a proper rotation. The eye looks down -z with y up.
type Camera struct {
	M *mat.Dense // 3x4, as solved (after sign normalization)
	K *mat.Dense // 3x3 intrinsics in NDC units
	R *mat.Dense // 3x3 rotation, model to eye
	T r3.Vector  // translation, model to eye
}

// SolveCameraMatrix solves the inhomogeneous DLT system for the 3x4 camera
// matrix mapping model points to NDC, with M[2,3] fixed to 1. Only X and Y of
// the projected points are read.
func SolveCameraMatrix(model, projected []r3.Vector) (*mat.Dense, error) {
	if len(model) != len(projected) {
		return nil, errors.Wrapf(ErrMismatchedPoints, "%d model vs %d projected", len(model), len(projected))
	}
	n := len(model)
	if n < MinPoints {
		return nil, errors.Wrapf(ErrInsufficientPoints, "have %d", n)
	}

	// Two rows per correspondence:
	//   [X Y Z 1 0 0 0 0 -uX -uY -uZ] p = u
	//   [0 0 0 0 X Y Z 1 -vX -vY -vZ] p = v
	a := mat.NewDense(2*n, 11, nil)
	b := mat.NewVecDense(2*n, nil)
	for i := range model {
		X, Y, Z := model[i].X, model[i].Y, model[i].Z
		u, v := projected[i].X, projected[i].Y

		r := 2 * i
		a.SetRow(r, []float64{X, Y, Z, 1, 0, 0, 0, 0, -u * X, -u * Y, -u * Z})
		b.SetVec(r, u)
		a.SetRow(r+1, []float64{0, 0, 0, 0, X, Y, Z, 1, -v * X, -v * Y, -v * Z})
		b.SetVec(r+1, v)
	}

	var p mat.VecDense
	if err := p.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(ErrDegenerate, err.Error())
	}

	m := mat.NewDense(3, 4, nil)
	for i := 0; i < 11; i++ {
		v := p.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrap(ErrDegenerate, "non-finite camera matrix")
		}
		m.Set(i/4, i%4, v)
	}
	m.Set(2, 3, 1)
	return m, nil
}

// ReprojectionError returns the mean euclidean distance in NDC between each
// projected point and the projection of its model point through m.
func ReprojectionError(m mat.Matrix, model, projected []r3.Vector) float64 {
	if len(model) == 0 {
		return 0
	}
	var sum float64
	for i := range model {
		u, v, ok := projectNDC(m, model[i])
		if !ok {
			return math.Inf(1)
		}
		sum += math.Hypot(u-projected[i].X, v-projected[i].Y)
	}
	return sum / float64(len(model))
}

func projectNDC(m mat.Matrix, p r3.Vector) (u, v float64, ok bool) {
	row := func(i int) float64 {
		return m.At(i, 0)*p.X + m.At(i, 1)*p.Y + m.At(i, 2)*p.Z + m.At(i, 3)
	}
	w := row(2)
	if w == 0 {
		return 0, 0, false
	}
	return row(0) / w, row(1) / w, true
}

// Decompose factors a 3x4 camera matrix into its OpenGL intrinsics, rotation
// and translation. model is used to orient the camera so that the points lie
// in front of it.
func Decompose(m *mat.Dense, model []r3.Vector) (*Camera, error) {
	m = mat.DenseCopyOf(m)

	var depth float64
	for _, p := range model {
		depth += m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)*p.Z + m.At(2, 3)
	}
	if depth < 0 {
		m.Scale(-1, m)
	}

	// The third row of an OpenGL camera is -depth; flip it so that the
	// triangular factor comes out with a positive diagonal.
	a := mat.DenseCopyOf(m.Slice(0, 3, 0, 3))
	for j := 0; j < 3; j++ {
		a.Set(2, j, -a.At(2, j))
	}

	k, r := rq(a)
	if mat.Det(r) < 0 {
		return nil, errors.Wrap(ErrDegenerate, "camera matrix is mirrored")
	}
	scale := k.At(2, 2)
	if scale <= 0 || math.IsNaN(scale) {
		return nil, errors.Wrap(ErrDegenerate, "camera has no depth axis")
	}

	// t = (F*K)^-1 * M[:,3], with F = diag(1, 1, -1).
	fk := mat.DenseCopyOf(k)
	for j := 0; j < 3; j++ {
		fk.Set(2, j, -fk.At(2, j))
	}
	var t mat.VecDense
	if err := t.SolveVec(fk, m.ColView(3)); err != nil {
		return nil, errors.Wrap(ErrDegenerate, err.Error())
	}

	k.Scale(1/scale, k)
	return &Camera{
		M: m,
		K: k,
		R: r,
		T: r3.Vector{X: t.AtVec(0), Y: t.AtVec(1), Z: t.AtVec(2)},
	}, nil
}

// rq factors a square matrix as a = k*q with k upper triangular with a
// non-negative diagonal and q orthogonal.
func rq(a mat.Matrix) (k, q *mat.Dense) {
	n, _ := a.Dims()

	// QR-factor the transpose of the row-reversed matrix:
	//   (P a)^T = Q0 R0  =>  a = (P R0^T P) (P Q0^T)
	pa := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		pa.SetRow(i, mat.Row(nil, n-1-i, a))
	}
	var qr mat.QR
	qr.Factorize(pa.T())
	var q0, r0 mat.Dense
	qr.QTo(&q0)
	qr.RTo(&r0)

	k = mat.NewDense(n, n, nil)
	q = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k.Set(i, j, r0.At(n-1-j, n-1-i))
			q.Set(i, j, q0.At(j, n-1-i))
		}
	}

	for i := 0; i < n; i++ {
		if k.At(i, i) >= 0 {
			continue
		}
		for j := 0; j < n; j++ {
			k.Set(j, i, -k.At(j, i))
			q.Set(i, j, -q.At(i, j))
		}
	}
	return k, q
}

// ProjectionMatrix returns the OpenGL projection matrix for the camera. The
// correspondences live in NDC, so the image extent is the [-1, 1] square and
// the intrinsics map onto the matrix directly.
func (c *Camera) ProjectionMatrix(near, far float64) mgl64.Mat4 {
	var p mgl64.Mat4
	p.Set(0, 0, c.K.At(0, 0))
	p.Set(0, 1, c.K.At(0, 1))
	p.Set(0, 2, c.K.At(0, 2))
	p.Set(1, 1, c.K.At(1, 1))
	p.Set(1, 2, c.K.At(1, 2))
	p.Set(2, 2, -(far+near)/(far-near))
	p.Set(2, 3, -2*far*near/(far-near))
	p.Set(3, 2, -1)
	return p
}

// ModelviewMatrix returns the 4x4 embedding of [R | T].
func (c *Camera) ModelviewMatrix() mgl64.Mat4 {
	mv := mgl64.Ident4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			mv.Set(i, j, c.R.At(i, j))
		}
	}
	mv.Set(0, 3, c.T.X)
	mv.Set(1, 3, c.T.Y)
	mv.Set(2, 3, c.T.Z)
	return mv
}
