// Package app ties a mapping session together: the model being projected
// onto, the preferences store, the scene of projector views and the
// calibration tool editing them. It has no windowing or GL dependencies; the
// binary owns the windows and drives an App from their events.
package app

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/projmap/projmap/internal/mapping"
	"github.com/projmap/projmap/internal/model"
	"github.com/projmap/projmap/internal/prefs"
)

// App encapsulates the session state.
type App struct {
	Model *model.Model
	Prefs *prefs.Prefs
	Scene *Scene
	Tool  *mapping.Tool

	cfg    mapping.Config
	logger *zap.SugaredLogger
}

var _ mapping.CalibrationModel = (*model.Model)(nil)

// New creates a session over m persisting to store.
func New(m *model.Model, store *prefs.Prefs, cfg mapping.Config, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		Model:  m,
		Prefs:  store,
		Scene:  NewScene(),
		Tool:   mapping.NewTool(cfg, m, store, nil, logger.Named("tool")),
		cfg:    cfg,
		logger: logger,
	}
}

// AddView appends a view of the given framebuffer size, framing the model.
func (a *App) AddView(width, height int) *View {
	v := a.Scene.NewView(width, height)
	a.frame(v)
	a.logger.Debugw("view added", "index", a.Scene.Index(v), "width", width, "height", height)
	return v
}

// RemoveView drops v and its calibration state. Later views move down one
// index, so their persisted calibration shifts with them on the next save.
func (a *App) RemoveView(v *View) {
	index := a.Scene.Index(v)
	if !a.Scene.RemoveView(v) {
		return
	}
	a.Tool.Forget(v)
	a.logger.Debugw("view removed", "index", index, "remaining", a.Scene.Len())
}

// ResizeView updates the framebuffer size of v. Views that were never
// calibrated keep framing the model at the new aspect ratio; calibrated
// matrices map straight to NDC and need no adjustment.
func (a *App) ResizeView(v *View, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.SetViewport(width, height)
	if v.framed {
		a.frame(v)
	}
}

func (a *App) frame(v *View) {
	projection, modelview := a.Model.Camera(float64(v.Width())/float64(v.Height()), a.cfg.Near, a.cfg.Far)
	v.SetProjectionMatrix(projection)
	v.SetModelviewMatrix(modelview)
	v.framed = true
}

// Status returns a one-line summary of the calibration of v.
func (a *App) Status(v *View) string {
	ctx := a.Tool.Context(v)
	state := "uncalibrated"
	if ctx.Calibrated() {
		state = "calibrated"
	}
	points := "points"
	if ctx.Len() == 1 {
		points = "point"
	}
	s := fmt.Sprintf("projmap: view %d/%d, %d %s, %s", a.Scene.Index(v)+1, a.Scene.Len(), ctx.Len(), points, state)
	if e := ctx.Error(); !math.IsNaN(e) {
		s += fmt.Sprintf(", error %.4f", e)
	}
	return s
}
