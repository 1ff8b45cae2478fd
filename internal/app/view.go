package app

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/projmap/projmap/internal/mapping"
)

// View is one projector output. It carries the matrices the model is drawn
// with and a dirty flag the main loop redraws on.
type View struct {
	scene         *Scene
	width, height int
	projection    mgl64.Mat4
	modelview     mgl64.Mat4
	dirty         bool
	framed        bool // matrices are the model-framing camera, not a calibration
}

var _ mapping.View = (*View)(nil)

// NewView creates a view of the given framebuffer size. The matrices start as
// identity.
func NewView(scene *Scene, width, height int) *View {
	return &View{
		scene:      scene,
		width:      width,
		height:     height,
		projection: mgl64.Ident4(),
		modelview:  mgl64.Ident4(),
		dirty:      true,
	}
}

func (v *View) Width() int                   { return v.width }
func (v *View) Height() int                  { return v.height }
func (v *View) ProjectionMatrix() mgl64.Mat4 { return v.projection }
func (v *View) ModelviewMatrix() mgl64.Mat4  { return v.modelview }
func (v *View) Scene() mapping.Scene         { return v.scene }

func (v *View) SetProjectionMatrix(m mgl64.Mat4) {
	v.projection = m
	v.framed = false
	v.dirty = true
}

func (v *View) SetModelviewMatrix(m mgl64.Mat4) {
	v.modelview = m
	v.framed = false
	v.dirty = true
}

// Repaint marks the view for redrawing on the next frame.
func (v *View) Repaint() { v.dirty = true }

// SetViewport updates the framebuffer size.
func (v *View) SetViewport(width, height int) {
	v.width, v.height = width, height
	v.dirty = true
}

// TakeDirty reports whether the view needs redrawing and clears the flag.
func (v *View) TakeDirty() bool {
	dirty := v.dirty
	v.dirty = false
	return dirty
}
