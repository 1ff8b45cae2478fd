package model

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/projmap/projmap/internal/geom"
)

// Load reads a model from a JSON file of the form
//
//	{"name": "...", "blocks": [{"footprint": [x0, y0, x1, y1, ...], "base": 0, "top": 1}]}
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading model")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading model %s", path)
	}
	return m, nil
}

// Parse decodes a JSON model.
func Parse(data []byte) (*Model, error) {
	type rawBlock struct {
		Footprint []float64 `json:"footprint"` // flat [x0,y0,x1,y1,...]
		Base      float64   `json:"base"`
		Top       float64   `json:"top"`
	}

	type rawModel struct {
		Name   string     `json:"name"`
		Blocks []rawBlock `json:"blocks"`
	}

	var raw rawModel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "error parsing model")
	}

	blocks := make([]Block, len(raw.Blocks))
	for i, rb := range raw.Blocks {
		if len(rb.Footprint)%2 != 0 {
			return nil, errors.Errorf("block %d: footprint has an odd number of coordinates (%d)", i, len(rb.Footprint))
		}
		footprint := make([]geom.Point, len(rb.Footprint)/2)
		for j := range footprint {
			footprint[j] = geom.MakePoint(rb.Footprint[j*2], rb.Footprint[j*2+1])
		}
		blocks[i] = Block{Footprint: footprint, Base: rb.Base, Top: rb.Top}
	}
	return New(raw.Name, blocks)
}

// Default returns the built-in demo scene: a plinth, a tower standing on it,
// and an L-shaped step beside it.
func Default() *Model {
	m, err := New("demo", []Block{
		{
			Footprint: []geom.Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
			Base:      0,
			Top:       1,
		},
		{
			Footprint: []geom.Point{{X: 0.2, Y: -0.6}, {X: 0.8, Y: -0.6}, {X: 0.8, Y: 0.4}, {X: 0.2, Y: 0.4}},
			Base:      1,
			Top:       1.8,
		},
		{
			Footprint: []geom.Point{
				{X: -2, Y: 1.5}, {X: -0.5, Y: 1.5}, {X: -0.5, Y: 2},
				{X: -1.5, Y: 2}, {X: -1.5, Y: 3}, {X: -2, Y: 3},
			},
			Base: 0,
			Top:  0.5,
		},
	})
	if err != nil {
		panic(err)
	}
	return m
}
