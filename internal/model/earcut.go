package model

import (
	"github.com/pkg/errors"
	"github.com/rclancey/earcut"

	"github.com/projmap/projmap/internal/geom"
)

// earClip triangulates a simple polygon with the earcut algorithm and returns
// its triangles. Concave footprints are fine; holes are not supported.
func earClip(polygon []geom.Point) ([][3]geom.Point, error) {
	if len(polygon) < 3 {
		return nil, errors.Errorf("degenerate polygon (%d vertices < 3)", len(polygon))
	}

	// Format: [x0, y0, x1, y1, ..., xn, yn]
	coords := make([]float64, len(polygon)*2)
	for i, p := range polygon {
		coords[i*2] = p.X
		coords[i*2+1] = p.Y
	}

	indices, err := earcut.Earcut(coords, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		return nil, errors.Wrapf(err, "triangulating %d-vertex polygon", len(polygon))
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, errors.Errorf("triangulating %d-vertex polygon: got %d indices", len(polygon), len(indices))
	}

	triangles := make([][3]geom.Point, len(indices)/3)
	for i := range triangles {
		triangles[i] = [3]geom.Point{
			polygon[indices[i*3]],
			polygon[indices[i*3+1]],
			polygon[indices[i*3+2]],
		}
	}
	return triangles, nil
}
