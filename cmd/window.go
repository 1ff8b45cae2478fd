package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/projmap/projmap/internal/app"
	"github.com/projmap/projmap/internal/mapping"
	"github.com/projmap/projmap/internal/palette"
	"github.com/projmap/projmap/internal/render"
)

// Window is a projector output: a GLFW window showing one view of the scene.
type Window struct {
	handle   *glfw.Window
	view     *app.View
	renderer *render.Renderer

	application    *app.App
	logger         *zap.SugaredLogger
	showCandidates bool
	title          string
}

// windowSet tracks the open windows. The first window's context is shared
// with the rest.
type windowSet struct {
	application *app.App
	logger      *zap.SugaredLogger
	windows     []*Window
}

func newWindowSet(application *app.App, logger *zap.SugaredLogger) *windowSet {
	return &windowSet{application: application, logger: logger}
}

func (ws *windowSet) len() int { return len(ws.windows) }

// open creates a window and its view and makes its context current.
func (ws *windowSet) open(width, height int) (*Window, error) {
	var share *glfw.Window
	if len(ws.windows) > 0 {
		share = ws.windows[0].handle
	}
	handle, err := glfw.CreateWindow(width, height, "projmap", nil, share)
	if err != nil {
		return nil, err
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(1)

	fw, fh := handle.GetFramebufferSize()
	w := &Window{
		handle:         handle,
		view:           ws.application.AddView(fw, fh),
		application:    ws.application,
		logger:         ws.logger,
		showCandidates: true,
	}
	ws.windows = append(ws.windows, w)
	return w, nil
}

// initRenderer uploads the model into the window's context. GL must already
// be initialized.
func (w *Window) initRenderer(index int) error {
	w.handle.MakeContextCurrent()
	renderer, err := render.NewRenderer(w.application.Model, palette.ForView(index), w.logger.Named("render"))
	if err != nil {
		return err
	}
	w.renderer = renderer
	return nil
}

// find returns the window showing view, or nil.
func (ws *windowSet) find(view mapping.View) *Window {
	for _, w := range ws.windows {
		if mapping.View(w.view) == view {
			return w
		}
	}
	return nil
}

// closeRequested tears down every window whose close flag is set.
func (ws *windowSet) closeRequested() {
	open := ws.windows[:0]
	for _, w := range ws.windows {
		if !w.handle.ShouldClose() {
			open = append(open, w)
			continue
		}
		w.handle.MakeContextCurrent()
		if w.renderer != nil {
			w.renderer.Cleanup()
		}
		ws.application.RemoveView(w.view)
		w.handle.Destroy()
		ws.logger.Debugw("window closed", "remaining", len(open))
	}
	if len(open) < len(ws.windows) {
		// Later views moved down an index; refresh their titles.
		ws.application.Scene.RepaintAll()
	}
	ws.windows = open
}

// drawDirty redraws the windows whose view changed.
func (ws *windowSet) drawDirty() {
	for _, w := range ws.windows {
		if w.view.TakeDirty() {
			w.draw()
		}
	}
}

func (w *Window) draw() {
	w.handle.MakeContextCurrent()

	ctx := w.application.Tool.Context(w.view)
	projected := ctx.ProjectedVertices()
	markers := make([]render.Marker, len(projected))
	for i, p := range projected {
		markers[i] = render.Marker{
			X:          p.X,
			Y:          p.Y,
			Selected:   i == ctx.Selection(),
			Calibrated: ctx.Calibrated(),
		}
	}

	w.renderer.Draw(render.Frame{
		Width:          w.view.Width(),
		Height:         w.view.Height(),
		Projection:     w.view.ProjectionMatrix(),
		Modelview:      w.view.ModelviewMatrix(),
		Markers:        markers,
		ShowCandidates: w.showCandidates,
	})
	w.handle.SwapBuffers()

	if title := w.application.Status(w.view); title != w.title {
		w.title = title
		w.handle.SetTitle(title)
	}
}
