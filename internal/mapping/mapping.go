// Package mapping holds the interactive calibration state of a projector
// mapping session: the per-view correspondence sets, and the tool that turns
// key and mouse events into edits and re-solves.
//
// All methods run on the windowing thread; nothing here is safe for
// concurrent use.
package mapping

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// View is a projector output: a viewport with the matrices the renderer draws
// the model with.
type View interface {
	Width() int
	Height() int
	ProjectionMatrix() mgl64.Mat4
	ModelviewMatrix() mgl64.Mat4
	SetProjectionMatrix(m mgl64.Mat4)
	SetModelviewMatrix(m mgl64.Mat4)
	Repaint()
	Scene() Scene
}

// Scene is the ordered set of views of a session.
type Scene interface {
	Views() []View
	RepaintAll()
}

// CalibrationModel yields the candidate 3D points that can be picked, as
// consecutive x, y, z triples.
type CalibrationModel interface {
	CalibrationVertices() []float32
}

// PreferencesStore is the persistent key/value store contexts are saved to.
type PreferencesStore interface {
	PutInt(key string, val int)
	PutDouble(key string, val float64)
	Int(key string, fallback int) int
	Double(key string, fallback float64) float64
	Flush() error
}

// Calibrator solves the projection and modelview matrices for a set of
// correspondences. On error the previous matrices must remain in place.
type Calibrator interface {
	Calibrate(model, projected []r3.Vector, near, far float64) (float64, error)
	Projection() mgl64.Mat4
	Modelview() mgl64.Mat4
}

// Handler is the set of input events the windowing layer delivers to a tool.
type Handler interface {
	KeyPressed(e KeyEvent, view View)
	MousePressed(e MouseEvent, view View)
	MouseDragged(e MouseEvent, view View)
}

// Key identifies the keys the calibration tool reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyC
	KeyL
	KeyS
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyDelete
)

// KeyEvent is a key press. Code carries the windowing layer's own key code so
// that fallback handlers can interpret keys the tool ignores.
type KeyEvent struct {
	Key  Key
	Code int
}

// MouseEvent carries the cursor position in view pixels, y-down as reported
// by the windowing layer.
type MouseEvent struct {
	X, Y float64
}
