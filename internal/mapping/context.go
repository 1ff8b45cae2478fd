package mapping

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// NoSelection is the selection of a context with no current point.
const NoSelection = -1

// Context is the editable calibration state of one view: paired model and
// projected (NDC, z = 0) points, the current selection, and the outcome of the
// last solve. The two point lists always have the same length.
type Context struct {
	modelVertices     []r3.Vector
	projectedVertices []r3.Vector
	currentSelection  int
	calibrated        bool
	lastError         float64
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{
		currentSelection: NoSelection,
		lastError:        math.NaN(),
	}
}

// Len returns the number of correspondences.
func (c *Context) Len() int { return len(c.modelVertices) }

// ModelVertices returns a copy of the model points.
func (c *Context) ModelVertices() []r3.Vector {
	return append([]r3.Vector(nil), c.modelVertices...)
}

// ProjectedVertices returns a copy of the projected points.
func (c *Context) ProjectedVertices() []r3.Vector {
	return append([]r3.Vector(nil), c.projectedVertices...)
}

// Selection returns the selected index, or NoSelection.
func (c *Context) Selection() int { return c.currentSelection }

// Calibrated reports whether the last solve succeeded below the error
// threshold.
func (c *Context) Calibrated() bool { return c.calibrated }

// Error returns the reprojection error of the last solve, or NaN if it failed
// or never ran.
func (c *Context) Error() float64 { return c.lastError }

// Select sets the selection; out-of-range indices clear it.
func (c *Context) Select(i int) {
	if i < 0 || i >= c.Len() {
		c.currentSelection = NoSelection
		return
	}
	c.currentSelection = i
}

// Add appends a correspondence and selects it.
func (c *Context) Add(model, projected r3.Vector) int {
	c.modelVertices = append(c.modelVertices, model)
	c.projectedVertices = append(c.projectedVertices, projected)
	c.currentSelection = c.Len() - 1
	return c.currentSelection
}

// Remove deletes correspondence i and clears the selection.
func (c *Context) Remove(i int) {
	if i < 0 || i >= c.Len() {
		return
	}
	c.modelVertices = append(c.modelVertices[:i], c.modelVertices[i+1:]...)
	c.projectedVertices = append(c.projectedVertices[:i], c.projectedVertices[i+1:]...)
	c.currentSelection = NoSelection
}

// SetProjected replaces the projected point of correspondence i.
func (c *Context) SetProjected(i int, p r3.Vector) {
	if i < 0 || i >= c.Len() {
		return
	}
	c.projectedVertices[i] = p
}

// IndexOfModel returns the index of the correspondence whose model point is
// exactly p, or -1. The comparison has no tolerance: model data that drifts
// in the last bits is not deduplicated.
func (c *Context) IndexOfModel(p r3.Vector) int {
	for i, v := range c.modelVertices {
		if v == p {
			return i
		}
	}
	return -1
}

// setResult records the outcome of a solve.
func (c *Context) setResult(reprojErr float64, calibrated bool) {
	c.lastError = reprojErr
	c.calibrated = calibrated
}

func countKey(viewIndex int) string {
	return fmt.Sprintf("calibration.%d.N", viewIndex)
}

func pointKey(viewIndex, i int, field string) string {
	return fmt.Sprintf("calibration.%d.%d.%s", viewIndex, i, field)
}

// Load replaces the context with the correspondences stored for viewIndex.
// A missing count leaves the context empty. Selection and calibration are
// cleared.
func (c *Context) Load(store PreferencesStore, viewIndex int) {
	n := store.Int(countKey(viewIndex), 0)
	if n < 0 {
		n = 0
	}

	c.modelVertices = make([]r3.Vector, 0, n)
	c.projectedVertices = make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		c.modelVertices = append(c.modelVertices, r3.Vector{
			X: store.Double(pointKey(viewIndex, i, "mx"), 0),
			Y: store.Double(pointKey(viewIndex, i, "my"), 0),
			Z: store.Double(pointKey(viewIndex, i, "mz"), 0),
		})
		c.projectedVertices = append(c.projectedVertices, r3.Vector{
			X: store.Double(pointKey(viewIndex, i, "px"), 0),
			Y: store.Double(pointKey(viewIndex, i, "py"), 0),
		})
	}
	c.currentSelection = NoSelection
	c.setResult(math.NaN(), false)
}

// Save writes the correspondences under viewIndex.
func (c *Context) Save(store PreferencesStore, viewIndex int) {
	store.PutInt(countKey(viewIndex), c.Len())
	for i := range c.modelVertices {
		m, p := c.modelVertices[i], c.projectedVertices[i]
		store.PutDouble(pointKey(viewIndex, i, "mx"), m.X)
		store.PutDouble(pointKey(viewIndex, i, "my"), m.Y)
		store.PutDouble(pointKey(viewIndex, i, "mz"), m.Z)
		store.PutDouble(pointKey(viewIndex, i, "px"), p.X)
		store.PutDouble(pointKey(viewIndex, i, "py"), p.Y)
	}
}

// ViewContextMap maps views, by identity, to their contexts. Contexts are
// created on first reference.
type ViewContextMap struct {
	contexts map[View]*Context
}

// NewViewContextMap returns an empty map.
func NewViewContextMap() *ViewContextMap {
	return &ViewContextMap{contexts: make(map[View]*Context)}
}

// Get returns the context of view, creating an empty one if needed.
func (m *ViewContextMap) Get(view View) *Context {
	ctx, ok := m.contexts[view]
	if !ok {
		ctx = NewContext()
		m.contexts[view] = ctx
	}
	return ctx
}

// Reset replaces the context of view with an empty one.
func (m *ViewContextMap) Reset(view View) *Context {
	ctx := NewContext()
	m.contexts[view] = ctx
	return ctx
}

// Forget drops the context of a view that is going away.
func (m *ViewContextMap) Forget(view View) {
	delete(m.contexts, view)
}
