package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/projmap/projmap/internal/app"
	"github.com/projmap/projmap/internal/mapping"
)

// EventHandlers forwards the input of one window to the calibration tool.
type EventHandlers struct {
	application *app.App
	window      *Window

	// The left button is held: cursor motion drags the selected point.
	isDragging bool
}

// NewEventHandlers creates the handlers of w and installs its callbacks.
func NewEventHandlers(application *app.App, w *Window) *EventHandlers {
	eh := &EventHandlers{
		application: application,
		window:      w,
	}
	eh.SetupCallbacks(w.handle)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action)
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for picking
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos) // for dragging
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.ResizeView(eh.window.view, newW, newH)
	})
	window.SetRefreshCallback(func(wnd *glfw.Window) {
		eh.window.view.Repaint()
	})
}

// toolKey maps GLFW keys onto the keys the tool binds.
func toolKey(key glfw.Key) mapping.Key {
	switch key {
	case glfw.KeyC:
		return mapping.KeyC
	case glfw.KeyL:
		return mapping.KeyL
	case glfw.KeyS:
		return mapping.KeyS
	case glfw.KeyUp:
		return mapping.KeyUp
	case glfw.KeyDown:
		return mapping.KeyDown
	case glfw.KeyLeft:
		return mapping.KeyLeft
	case glfw.KeyRight:
		return mapping.KeyRight
	case glfw.KeyBackspace:
		return mapping.KeyBackspace
	case glfw.KeyDelete:
		return mapping.KeyDelete
	default:
		return mapping.KeyOther
	}
}

// handleKey handles keyboard input events. Held arrow keys keep nudging.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action) {
	k := toolKey(key)
	switch action {
	case glfw.Press:
	case glfw.Repeat:
		if k != mapping.KeyUp && k != mapping.KeyDown && k != mapping.KeyLeft && k != mapping.KeyRight {
			return
		}
	default:
		return
	}
	eh.application.Tool.KeyPressed(mapping.KeyEvent{Key: k, Code: int(key)}, eh.window.view)
}

// handleMouseButton picks on left press and ends the drag on release.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		eh.isDragging = true
		eh.application.Tool.MousePressed(eh.cursorEvent(eh.window.handle.GetCursorPos()), eh.window.view)
	case glfw.Release:
		eh.isDragging = false
	}
}

// handleCursorPos drags while the left button is held.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	if !eh.isDragging {
		return
	}
	eh.application.Tool.MouseDragged(eh.cursorEvent(xpos, ypos), eh.window.view)
}

// cursorEvent converts a cursor position in screen coordinates into
// framebuffer pixels, which is what the view's size is measured in.
func (eh *EventHandlers) cursorEvent(xpos, ypos float64) mapping.MouseEvent {
	scaleX, scaleY := eh.window.handle.GetContentScale()
	return mapping.MouseEvent{X: xpos * float64(scaleX), Y: ypos * float64(scaleY)}
}

// fallbackHandler receives the keys the tool does not bind.
type fallbackHandler struct {
	windows *windowSet
}

var _ mapping.Handler = (*fallbackHandler)(nil)

func (f *fallbackHandler) KeyPressed(e mapping.KeyEvent, view mapping.View) {
	w := f.windows.find(view)
	if w == nil {
		return
	}
	switch glfw.Key(e.Code) {
	case glfw.KeyEscape:
		w.handle.SetShouldClose(true)
	case glfw.KeyH:
		w.showCandidates = !w.showCandidates
		view.Repaint()
	}
}

func (f *fallbackHandler) MousePressed(mapping.MouseEvent, mapping.View) {}
func (f *fallbackHandler) MouseDragged(mapping.MouseEvent, mapping.View) {}
