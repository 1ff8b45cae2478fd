package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/projmap/projmap/internal/app"
	"github.com/projmap/projmap/internal/mapping"
	"github.com/projmap/projmap/internal/model"
	"github.com/projmap/projmap/internal/prefs"
)

var (
	numViews  = flag.Int("views", 1, "number of projector views, one window each")
	width     = flag.Int("width", 1280, "initial window width")
	height    = flag.Int("height", 800, "initial window height")
	modelPath = flag.String("model", "", "JSON block model (default: built-in demo)")
	prefsPath = flag.String("prefs", "", "preferences file (default: user config directory)")
	near      = flag.Float64("near", mapping.DefaultConfig().Near, "near clip plane of calibrated views")
	far       = flag.Float64("far", mapping.DefaultConfig().Far, "far clip plane of calibrated views")
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if os.Getenv("PROJMAP_DEBUG") != "1" {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func loadModel(path string) (*model.Model, error) {
	if path == "" {
		return model.Default(), nil
	}
	return model.Load(path)
}

func loadPrefs(path string) (*prefs.Prefs, error) {
	if path == "" {
		return prefs.Default()
	}
	return prefs.Load(path)
}

func main() {
	flag.Parse()

	zl, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	if *numViews < 1 {
		logger.Fatalf("need at least one view, got %d", *numViews)
	}

	m, err := loadModel(*modelPath)
	if err != nil {
		logger.Fatalf("Failed to load model: %v", err)
	}
	store, err := loadPrefs(*prefsPath)
	if err != nil {
		logger.Warnw("starting with empty preferences", "path", store.Path(), "error", err)
	}

	cfg := mapping.DefaultConfig()
	cfg.Near, cfg.Far = *near, *far
	application := app.New(m, store, cfg, logger)

	if err := glfw.Init(); err != nil {
		logger.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	windows := newWindowSet(application, logger)
	for i := 0; i < *numViews; i++ {
		w, err := windows.open(*width, *height)
		if err != nil {
			logger.Fatalf("Failed to create window %d: %v", i, err)
		}
		if i == 0 {
			if err := gl.Init(); err != nil {
				logger.Fatalf("Failed to initialize OpenGL: %v", err)
			}
			logger.Infow("OpenGL ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
		}
		if err := w.initRenderer(i); err != nil {
			logger.Fatalf("Failed to create renderer for window %d: %v", i, err)
		}
		NewEventHandlers(application, w)
	}
	application.Tool.SetFallback(&fallbackHandler{windows: windows})

	logger.Infow("calibrating",
		"model", m.Name,
		"candidates", len(m.CalibrationVertices())/3,
		"views", *numViews,
		"prefs", store.Path(),
	)

	// Main loop. Everything is redrawn on demand; the tool marks views dirty.
	for {
		windows.closeRequested()
		if windows.len() == 0 {
			break
		}
		windows.drawDirty()
		glfw.WaitEvents()
	}
}
