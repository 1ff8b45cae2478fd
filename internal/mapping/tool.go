package mapping

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/projmap/projmap/internal/calib"
	"github.com/projmap/projmap/internal/geom"
)

// Config tunes the calibration tool.
type Config struct {
	Near, Far  float64 // clip planes of the solved projection
	SnapRadius float64 // pick radius in pixels (L∞)
	MaxError   float64 // reprojection error (NDC) below which a view is calibrated
}

// DefaultConfig returns the stock tool configuration.
func DefaultConfig() Config {
	return Config{
		Near:       0.1,
		Far:        100,
		SnapRadius: 8,
		MaxError:   0.5,
	}
}

// Tool is the calibration controller. It is the only mutator of the contexts
// it owns: picks add or select correspondences, drags and arrow keys move the
// selected projected point, and every edit re-solves the view's camera.
type Tool struct {
	cfg        Config
	calibrator Calibrator
	model      CalibrationModel
	store      PreferencesStore
	contexts   *ViewContextMap
	fallback   Handler
	logger     *zap.SugaredLogger
}

var _ Handler = (*Tool)(nil)

// NewTool creates a tool picking from model and persisting to store. A nil
// calibrator uses calib.New(); a nil logger discards.
func NewTool(cfg Config, model CalibrationModel, store PreferencesStore, calibrator Calibrator, logger *zap.SugaredLogger) *Tool {
	if calibrator == nil {
		calibrator = calib.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tool{
		cfg:        cfg,
		calibrator: calibrator,
		model:      model,
		store:      store,
		contexts:   NewViewContextMap(),
		logger:     logger,
	}
}

// SetFallback sets the handler that receives keys the tool does not bind.
func (t *Tool) SetFallback(h Handler) {
	t.fallback = h
}

// Context returns the context of view, creating it if needed. Callers must
// treat it as read-only.
func (t *Tool) Context(view View) *Context {
	return t.contexts.Get(view)
}

// KeyPressed handles the tool's key bindings and requests a repaint of every
// view.
func (t *Tool) KeyPressed(e KeyEvent, view View) {
	switch e.Key {
	case KeyC:
		t.contexts.Reset(view)
	case KeyL:
		t.loadCalibration(view)
	case KeyS:
		t.saveCalibration(view)
	case KeyUp:
		t.cursorAdjust(view, 0, 1)
	case KeyDown:
		t.cursorAdjust(view, 0, -1)
	case KeyLeft:
		t.cursorAdjust(view, -1, 0)
	case KeyRight:
		t.cursorAdjust(view, 1, 0)
	case KeyBackspace, KeyDelete:
		t.deleteCurrent(view)
	default:
		if t.fallback != nil {
			t.fallback.KeyPressed(e, view)
		}
	}
	view.Scene().RepaintAll()
}

// MousePressed selects the projected point under the cursor, or failing that
// picks the model vertex under the cursor, adding a correspondence for it if
// it is new. Existing projected points win over model vertices so that a
// near miss never duplicates a point.
func (t *Tool) MousePressed(e MouseEvent, view View) {
	ctx := t.contexts.Get(view)
	ctx.Select(NoSelection)

	vp := geom.Viewport(view.Width(), view.Height())
	cursor := geom.MakePoint(e.X, geom.FlipY(view.Height(), e.Y))

	for i, p := range ctx.projectedVertices {
		target := geom.DeviceToScreen(vp, geom.MakePoint(p.X, p.Y))
		if geom.Snap(cursor, target, t.cfg.SnapRadius) {
			ctx.Select(i)
			view.Repaint()
			return
		}
	}

	if t.model == nil {
		return
	}
	projection, modelview := view.ProjectionMatrix(), view.ModelviewMatrix()
	mv := t.model.CalibrationVertices()
	for i := 0; i+2 < len(mv); i += 3 {
		obj := r3.Vector{X: float64(mv[i]), Y: float64(mv[i+1]), Z: float64(mv[i+2])}
		win, ok := geom.ProjectToScreen(vp, projection, modelview, toVec3(obj))
		if !ok {
			continue
		}
		if !geom.Snap(cursor, geom.MakePoint(win.X(), win.Y()), t.cfg.SnapRadius) {
			continue
		}

		if index := ctx.IndexOfModel(obj); index != -1 {
			ctx.Select(index)
		} else {
			ndc := geom.ScreenToDevice(vp, cursor)
			ctx.Add(obj, r3.Vector{X: ndc.X, Y: ndc.Y})
		}
		t.calibrate(view)
		view.Repaint()
		return
	}
}

// MouseDragged moves the selected projected point to the cursor.
func (t *Tool) MouseDragged(e MouseEvent, view View) {
	ctx := t.contexts.Get(view)
	if ctx.Selection() != NoSelection {
		vp := geom.Viewport(view.Width(), view.Height())
		ndc := geom.ScreenToDevice(vp, geom.MakePoint(e.X, geom.FlipY(view.Height(), e.Y)))
		ctx.SetProjected(ctx.Selection(), r3.Vector{X: ndc.X, Y: ndc.Y})
		t.calibrate(view)
	}
	view.Repaint()
}

// cursorAdjust nudges the selected projected point by whole pixels.
func (t *Tool) cursorAdjust(view View, dx, dy float64) {
	ctx := t.contexts.Get(view)
	sel := ctx.Selection()
	if sel == NoSelection {
		return
	}
	px := geom.PixelToDevice(geom.Viewport(view.Width(), view.Height()))
	p := ctx.projectedVertices[sel]
	ctx.SetProjected(sel, r3.Vector{X: p.X + dx*px.X, Y: p.Y + dy*px.Y})
	t.calibrate(view)
}

func (t *Tool) deleteCurrent(view View) {
	ctx := t.contexts.Get(view)
	if ctx.Selection() == NoSelection {
		return
	}
	ctx.Remove(ctx.Selection())
	t.calibrate(view)
}

// loadCalibration loads every view of the scene, indexed by its position in
// the scene, and re-solves each.
func (t *Tool) loadCalibration(view View) {
	if t.store == nil {
		return
	}
	for i, v := range view.Scene().Views() {
		t.contexts.Get(v).Load(t.store, i)
		t.calibrate(v)
	}
}

func (t *Tool) saveCalibration(view View) {
	if t.store == nil {
		return
	}
	for i, v := range view.Scene().Views() {
		t.contexts.Get(v).Save(t.store, i)
	}
	if err := t.store.Flush(); err != nil {
		t.logger.Warnw("failed to flush calibration", "error", err)
	}
}

// calibrate re-solves the camera of view. Failures are expected while the
// user is still placing points; they leave the view's matrices untouched.
func (t *Tool) calibrate(view View) {
	ctx := t.contexts.Get(view)
	ctx.setResult(math.NaN(), false)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Debugw("calibration panicked", "points", ctx.Len(), "panic", r)
		}
	}()

	reprojErr, err := t.calibrator.Calibrate(ctx.modelVertices, ctx.projectedVertices, t.cfg.Near, t.cfg.Far)
	if err != nil {
		if errors.Is(err, calib.ErrInsufficientPoints) {
			t.logger.Debugw("not enough points to calibrate", "points", ctx.Len())
		} else {
			t.logger.Debugw("calibration failed", "points", ctx.Len(), "error", err)
		}
		return
	}

	if reprojErr >= t.cfg.MaxError {
		ctx.setResult(reprojErr, false)
		t.logger.Debugw("calibration error above threshold", "points", ctx.Len(), "error", reprojErr)
		return
	}

	ctx.setResult(reprojErr, true)
	view.SetProjectionMatrix(t.calibrator.Projection())
	view.SetModelviewMatrix(t.calibrator.Modelview())
	view.Repaint()
}

// Forget drops the context of a view that is going away.
func (t *Tool) Forget(view View) {
	t.contexts.Forget(view)
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
