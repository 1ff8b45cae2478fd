package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/projmap/projmap/internal/geom"
)

func unitSquare(x, y float64) []geom.Point {
	return []geom.Point{{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1}}
}

func TestBox(t *testing.T) {
	m, err := New("box", []Block{{Footprint: unitSquare(0, 0), Base: 0, Top: 2}})
	test.That(t, err, test.ShouldBeNil)

	// Two caps of two triangles plus four walls of two triangles.
	test.That(t, len(m.Triangles()), test.ShouldEqual, 12*3*3)
	test.That(t, len(m.Normals()), test.ShouldEqual, len(m.Triangles()))
	test.That(t, m.CalibrationVertices(), test.ShouldResemble, []float32{
		0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1,
		0, 2, 0, 1, 2, 0, 1, 2, 1, 0, 2, 1,
	})

	lo, hi := m.Bounds()
	test.That(t, lo, test.ShouldResemble, r3.Vector{})
	test.That(t, hi, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 1})
	test.That(t, m.Center(), test.ShouldResemble, r3.Vector{X: 0.5, Y: 1, Z: 0.5})
	test.That(t, m.Radius(), test.ShouldAlmostEqual, 1.224744871391589, 1e-12)

	for i := 0; i < len(m.Normals()); i += 3 {
		n := r3.Vector{X: float64(m.Normals()[i]), Y: float64(m.Normals()[i+1]), Z: float64(m.Normals()[i+2])}
		test.That(t, n.Norm(), test.ShouldAlmostEqual, 1, 1e-6)
	}
}

func TestSharedCornersAreDeduplicated(t *testing.T) {
	m, err := New("pair", []Block{
		{Footprint: unitSquare(0, 0), Base: 0, Top: 1},
		{Footprint: unitSquare(1, 0), Base: 0, Top: 1},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(m.CalibrationVertices()), test.ShouldEqual, (8+8-4)*3)
}

func TestConcaveFootprint(t *testing.T) {
	m := Default()
	test.That(t, m.Name, test.ShouldEqual, "demo")
	test.That(t, m.Blocks, test.ShouldHaveLength, 3)

	// The L-shaped block has six corners: four triangles per cap.
	caps, err := earClip(m.Blocks[2].Footprint)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, caps, test.ShouldHaveLength, 4)

	var triangles int
	for _, b := range m.Blocks {
		triangles += 2*(len(b.Footprint)-2) + 2*len(b.Footprint)
	}
	test.That(t, len(m.Triangles()), test.ShouldEqual, triangles*9)
	test.That(t, len(m.CalibrationVertices()), test.ShouldEqual, (8+8+12)*3)
}

func TestInvalidBlocks(t *testing.T) {
	for _, tc := range []struct {
		name   string
		blocks []Block
	}{
		{"empty", nil},
		{"two points", []Block{{Footprint: unitSquare(0, 0)[:2], Top: 1}}},
		{"flat", []Block{{Footprint: unitSquare(0, 0), Base: 1, Top: 1}}},
		{"collinear", []Block{{Footprint: []geom.Point{{X: 0}, {X: 1}, {X: 2}}, Top: 1}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.name, tc.blocks)
			test.That(t, err, test.ShouldNotBeNil)
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"name": "step", "blocks": [{"footprint": [0, 0, 1, 0, 1, 1, 0, 1], "base": 0.5, "top": 1.5}]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name, test.ShouldEqual, "step")
	test.That(t, m.Blocks[0].Footprint, test.ShouldResemble, unitSquare(0, 0))
	test.That(t, m.Blocks[0].Base, test.ShouldEqual, 0.5)

	_, err = Parse([]byte(`{"blocks": [{"footprint": [0, 0, 1, 0, 1], "top": 1}]}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "odd number")

	_, err = Parse([]byte(`{"blocks": `))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	test.That(t, os.WriteFile(path, []byte(`{"name": "file", "blocks": [{"footprint": [0, 0, 2, 0, 0, 2], "top": 1}]}`), 0o644), test.ShouldBeNil)

	m, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name, test.ShouldEqual, "file")
	test.That(t, len(m.CalibrationVertices()), test.ShouldEqual, 6*3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCameraFramesModel(t *testing.T) {
	m := Default()
	for _, aspect := range []float64{16.0 / 9.0, 1, 0.5} {
		projection, modelview := m.Camera(aspect, 0.1, 100)
		vp := geom.Viewport(int(800*aspect), 800)

		c := m.CalibrationVertices()
		for i := 0; i < len(c); i += 3 {
			obj := mgl64.Vec3{float64(c[i]), float64(c[i+1]), float64(c[i+2])}
			_, ok := geom.ProjectToScreen(vp, projection, modelview, obj)
			test.That(t, ok, test.ShouldBeTrue)
		}
	}
}
