// Package render draws a mapping session into the current OpenGL context:
// 1. The model mesh, transformed by the view's projection and modelview.
// 2. The candidate calibration vertices, as points on top of the mesh.
// 3. The correspondences of the view, as square markers placed directly in
//    normalized device coordinates.
//
// The mesh and candidates are uploaded once; markers are rebuilt every frame.
package render

import (
	"image/color"
	"math"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/projmap/projmap/internal/model"
	"github.com/projmap/projmap/internal/palette"
)

const (
	markerSize      = 14.0 // outer edge in pixels
	markerRing      = 3.0  // ring width in pixels
	markerDot       = 2.0  // centre dot edge in pixels
	selectedScale   = 1.5
	candidatePoints = 6.0
)

// light is the direction faces are shaded against.
var light = r3.Vector{X: 0.4, Y: 1, Z: 0.6}.Normalize()

// Marker is a correspondence as the overlay draws it.
type Marker struct {
	X, Y       float64 // NDC
	Selected   bool
	Calibrated bool
}

// Frame is everything a single draw needs from the view.
type Frame struct {
	Width, Height  int
	Projection     mgl64.Mat4
	Modelview      mgl64.Mat4
	Markers        []Marker
	ShowCandidates bool
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastDrawTimeUs float64 // time spent in last Draw() call in microseconds
	Triangles      int
}

// Renderer owns the GL resources of one context.
type Renderer struct {
	palette palette.Palette
	logger  *zap.SugaredLogger

	shaderManager *ShaderManager
	mesh          *Buffer
	candidates    *Buffer
	markers       *Buffer
	stats         Stats
}

// NewRenderer uploads m into the current GL context.
func NewRenderer(m *model.Model, pal palette.Palette, logger *zap.SugaredLogger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	shaderManager, err := NewShaderManager()
	if err != nil {
		return nil, errors.Wrap(err, "error creating shader program")
	}

	r := &Renderer{
		palette:       pal,
		logger:        logger,
		shaderManager: shaderManager,
		mesh:          NewBuffer(gl.TRIANGLES),
		candidates:    NewBuffer(gl.POINTS),
		markers:       NewBuffer(gl.TRIANGLES),
	}
	r.mesh.Upload(meshVertices(m, pal.Model))
	r.candidates.Upload(pointVertices(m.CalibrationVertices(), pal.Candidate))
	r.stats.Triangles = r.mesh.Len() / 3

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	logger.Debugw("renderer ready", "model", m.Name, "triangles", r.stats.Triangles, "candidates", r.candidates.Len())
	return r, nil
}

// Draw clears the framebuffer and draws f.
func (r *Renderer) Draw(f Frame) {
	startTime := time.Now()

	gl.Viewport(0, 0, int32(f.Width), int32(f.Height))
	bg := palette.Float(r.palette.Background)
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	r.shaderManager.SetTransform(toFloat32(f.Projection.Mul4(f.Modelview)))
	r.mesh.Draw()
	if f.ShowCandidates {
		r.shaderManager.SetPointSize(candidatePoints)
		gl.Disable(gl.DEPTH_TEST)
		r.candidates.Draw()
	}

	gl.Disable(gl.DEPTH_TEST)
	r.markers.Upload(markerVertices(f.Markers, f.Width, f.Height, r.palette))
	r.shaderManager.SetTransform(toFloat32(mgl64.Ident4()))
	r.markers.Draw()

	r.stats.LastDrawTimeUs = float64(time.Since(startTime).Microseconds())
}

// Stats returns the current performance statistics.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Cleanup releases the GL resources. The renderer's context must be current.
func (r *Renderer) Cleanup() {
	r.mesh.Cleanup()
	r.candidates.Cleanup()
	r.markers.Cleanup()
	r.shaderManager.Cleanup()
}

func toFloat32(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func appendVertex(vertices []float32, x, y, z float32, c [4]float32) []float32 {
	return append(vertices, x, y, z, c[0], c[1], c[2], c[3])
}

// meshVertices shades every triangle of m by how squarely it faces the light.
func meshVertices(m *model.Model, base color.RGBA) []float32 {
	positions, normals := m.Triangles(), m.Normals()
	vertices := make([]float32, 0, len(positions)/3*floatsPerVertex)
	for i := 0; i+2 < len(positions); i += 3 {
		n := r3.Vector{X: float64(normals[i]), Y: float64(normals[i+1]), Z: float64(normals[i+2])}
		c := palette.Float(palette.Shaded(base, 0.45+0.55*math.Abs(n.Dot(light))))
		vertices = appendVertex(vertices, positions[i], positions[i+1], positions[i+2], c)
	}
	return vertices
}

func pointVertices(points []float32, c color.RGBA) []float32 {
	fc := palette.Float(c)
	vertices := make([]float32, 0, len(points)/3*floatsPerVertex)
	for i := 0; i+2 < len(points); i += 3 {
		vertices = appendVertex(vertices, points[i], points[i+1], points[i+2], fc)
	}
	return vertices
}

// markerVertices builds a hollow square with a centre dot per marker, sized in
// pixels and placed in NDC.
func markerVertices(markers []Marker, width, height int, pal palette.Palette) []float32 {
	if width <= 0 || height <= 0 {
		return nil
	}
	px, py := 2/float64(width), 2/float64(height)
	bg := palette.Float(pal.Background)

	square := func(vertices []float32, x, y, edge float64, c [4]float32) []float32 {
		hx, hy := float32(edge*px/2), float32(edge*py/2)
		x0, x1 := float32(x)-hx, float32(x)+hx
		y0, y1 := float32(y)-hy, float32(y)+hy
		vertices = appendVertex(vertices, x0, y0, 0, c)
		vertices = appendVertex(vertices, x1, y0, 0, c)
		vertices = appendVertex(vertices, x1, y1, 0, c)
		vertices = appendVertex(vertices, x0, y0, 0, c)
		vertices = appendVertex(vertices, x1, y1, 0, c)
		return appendVertex(vertices, x0, y1, 0, c)
	}

	vertices := make([]float32, 0, len(markers)*3*6*floatsPerVertex)
	for _, m := range markers {
		scale := 1.0
		if m.Selected {
			scale = selectedScale
		}
		c := palette.Float(pal.MarkerColour(m.Selected, m.Calibrated))
		vertices = square(vertices, m.X, m.Y, markerSize*scale, c)
		vertices = square(vertices, m.X, m.Y, (markerSize-2*markerRing)*scale, bg)
		vertices = square(vertices, m.X, m.Y, markerDot, c)
	}
	return vertices
}
