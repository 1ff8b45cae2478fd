// Package model holds the physical scene being projected onto: a set of
// extruded blocks (a 2D footprint raised between a base and a top height).
// It provides:
// - A triangle mesh of every block for rendering
// - The candidate calibration vertices, every footprint corner at the base
//   and top heights
// - Loading from JSON and a built-in demo scene
//
// The model is y-up. Footprints lie in the x/z plane: a footprint point (x, y)
// sits at world (x, h, y) for a height h.
package model

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/projmap/projmap/internal/geom"
)

// Block is a prism: footprint extruded from Base to Top.
type Block struct {
	Footprint []geom.Point
	Base, Top float64
}

// Model is an immutable set of blocks with its derived geometry.
type Model struct {
	Name   string
	Blocks []Block

	triangles  []float32 // x, y, z per vertex, three vertices per triangle
	normals    []float32 // one face normal per vertex, parallel to triangles
	candidates []float32 // deduplicated x, y, z triples
	min, max   r3.Vector
}

// New builds a model from blocks.
func New(name string, blocks []Block) (*Model, error) {
	if len(blocks) == 0 {
		return nil, errors.New("model has no blocks")
	}

	m := &Model{
		Name:   name,
		Blocks: blocks,
		min:    r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		max:    r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	seen := make(map[[3]float32]struct{})
	for i, b := range blocks {
		if len(b.Footprint) < 3 {
			return nil, errors.Errorf("block %d: footprint has %d points, need at least 3", i, len(b.Footprint))
		}
		if !(b.Top > b.Base) {
			return nil, errors.Errorf("block %d: top %v is not above base %v", i, b.Top, b.Base)
		}
		if err := m.addBlock(b, seen); err != nil {
			return nil, errors.Wrapf(err, "block %d", i)
		}
	}
	return m, nil
}

func (m *Model) addBlock(b Block, seen map[[3]float32]struct{}) error {
	caps, err := earClip(b.Footprint)
	if err != nil {
		return err
	}

	at := func(p geom.Point, h float64) r3.Vector { return r3.Vector{X: p.X, Y: h, Z: p.Y} }

	for _, h := range []float64{b.Base, b.Top} {
		for _, p := range b.Footprint {
			v := at(p, h)
			m.extend(v)
			key := [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			m.candidates = append(m.candidates, key[:]...)
		}

		for _, tri := range caps {
			m.addTriangle(at(tri[0], h), at(tri[1], h), at(tri[2], h))
		}
	}

	for i, p := range b.Footprint {
		q := b.Footprint[(i+1)%len(b.Footprint)]
		m.addTriangle(at(p, b.Base), at(q, b.Base), at(q, b.Top))
		m.addTriangle(at(p, b.Base), at(q, b.Top), at(p, b.Top))
	}
	return nil
}

func (m *Model) addTriangle(a, b, c r3.Vector) {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	for _, v := range []r3.Vector{a, b, c} {
		m.triangles = append(m.triangles, float32(v.X), float32(v.Y), float32(v.Z))
		m.normals = append(m.normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

func (m *Model) extend(v r3.Vector) {
	m.min = r3.Vector{X: math.Min(m.min.X, v.X), Y: math.Min(m.min.Y, v.Y), Z: math.Min(m.min.Z, v.Z)}
	m.max = r3.Vector{X: math.Max(m.max.X, v.X), Y: math.Max(m.max.Y, v.Y), Z: math.Max(m.max.Z, v.Z)}
}

// CalibrationVertices returns the pickable points as consecutive x, y, z
// triples. The slice is shared; callers must not modify it.
func (m *Model) CalibrationVertices() []float32 { return m.candidates }

// Triangles returns the mesh as x, y, z per vertex, three vertices per
// triangle. The slice is shared.
func (m *Model) Triangles() []float32 { return m.triangles }

// Normals returns the face normal of every mesh vertex, parallel to
// Triangles. The slice is shared.
func (m *Model) Normals() []float32 { return m.normals }

// Bounds returns the axis-aligned bounding box of the model.
func (m *Model) Bounds() (min, max r3.Vector) { return m.min, m.max }

// Center returns the centre of the bounding box.
func (m *Model) Center() r3.Vector { return m.min.Add(m.max).Mul(0.5) }

// Radius returns half the diagonal of the bounding box.
func (m *Model) Radius() float64 { return m.max.Sub(m.min).Norm() / 2 }
