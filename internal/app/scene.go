package app

import (
	"github.com/projmap/projmap/internal/mapping"
)

// Scene holds the views of a session in creation order. A view's position in
// the scene is the index its calibration is persisted under.
type Scene struct {
	views []*View
}

var _ mapping.Scene = (*Scene)(nil)

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// NewView creates a view, appends it to the scene and returns it.
func (s *Scene) NewView(width, height int) *View {
	v := NewView(s, width, height)
	s.views = append(s.views, v)
	return v
}

// RemoveView removes v, shifting later views down one index.
func (s *Scene) RemoveView(v *View) bool {
	for i, view := range s.views {
		if view == v {
			s.views = append(s.views[:i], s.views[i+1:]...)
			return true
		}
	}
	return false
}

// Index returns the position of v, or -1.
func (s *Scene) Index(v mapping.View) int {
	for i, view := range s.views {
		if mapping.View(view) == v {
			return i
		}
	}
	return -1
}

// Len returns the number of views.
func (s *Scene) Len() int { return len(s.views) }

// Views returns the views in order.
func (s *Scene) Views() []mapping.View {
	views := make([]mapping.View, len(s.views))
	for i, v := range s.views {
		views[i] = v
	}
	return views
}

// RepaintAll marks every view for redrawing.
func (s *Scene) RepaintAll() {
	for _, v := range s.views {
		v.Repaint()
	}
}
