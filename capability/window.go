package capability

import (
	"context"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// Window is implemented by the platform embedder that owns the native
// window. A nil adapter still answers every window.* method, with an
// unsupported error, so callers can probe for the capability.
type Window interface {
	SetTitle(title string) error
	SetSize(width, height int64) error
	SetPosition(x, y int64) error
	Show() error
	Hide() error
	Minimize() error
	Maximize() error
	Fullscreen(on bool) error
	Close() error
}

// BindWindow registers the window.* methods backed by the adapter.
func BindWindow(e *bridge.Engine, w Window) error {
	return e.RegisterNamespace("window", map[string]bridge.Handler{
		"setTitle": func(ctx context.Context, params value.Value) (value.Value, error) {
			if w == nil {
				return value.Value{}, errUnsupported("window.setTitle")
			}
			title, err := stringParam(params, "title")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(w.SetTitle(title))
		},
		"setSize": func(ctx context.Context, params value.Value) (value.Value, error) {
			if w == nil {
				return value.Value{}, errUnsupported("window.setSize")
			}
			width, err := intParam(params, "width")
			if err != nil {
				return value.Value{}, err
			}
			height, err := intParam(params, "height")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(w.SetSize(width, height))
		},
		"setPosition": func(ctx context.Context, params value.Value) (value.Value, error) {
			if w == nil {
				return value.Value{}, errUnsupported("window.setPosition")
			}
			x, err := intParam(params, "x")
			if err != nil {
				return value.Value{}, err
			}
			y, err := intParam(params, "y")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(w.SetPosition(x, y))
		},
		"show":     windowAction("window.show", w, Window.Show),
		"hide":     windowAction("window.hide", w, Window.Hide),
		"minimize": windowAction("window.minimize", w, Window.Minimize),
		"maximize": windowAction("window.maximize", w, Window.Maximize),
		"fullscreen": func(ctx context.Context, params value.Value) (value.Value, error) {
			if w == nil {
				return value.Value{}, errUnsupported("window.fullscreen")
			}
			return adapterResult(w.Fullscreen(optBoolParam(params, "on", true)))
		},
		"close": windowAction("window.close", w, Window.Close),
	})
}

// windowAction wraps a parameterless adapter call.
func windowAction(method string, w Window, call func(Window) error) bridge.Handler {
	return func(ctx context.Context, params value.Value) (value.Value, error) {
		if w == nil {
			return value.Value{}, errUnsupported(method)
		}
		return adapterResult(call(w))
	}
}

func errUnsupported(method string) *bridge.HandlerError {
	return bridge.Errorf(bridge.CodeUnsupported, "%s is not supported by this host", method)
}

// adapterResult maps an adapter outcome onto the standard ok result.
func adapterResult(err error) (value.Value, error) {
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
	}
	return okResult(), nil
}
