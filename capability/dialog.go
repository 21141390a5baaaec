package capability

import (
	"context"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// Dialogs is implemented by hosts that can present native dialogs.
// OpenFile and SaveFile return an empty path when the user cancels.
type Dialogs interface {
	Message(title, text string) error
	Confirm(title, text string) (bool, error)
	OpenFile(title string) (string, error)
	SaveFile(title, defaultName string) (string, error)
}

// BindDialogs registers the dialog.* methods backed by the adapter.
func BindDialogs(e *bridge.Engine, d Dialogs) error {
	return e.RegisterNamespace("dialog", map[string]bridge.Handler{
		"message": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("dialog.message")
			}
			text, err := stringParam(params, "text")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(d.Message(optStringParam(params, "title", ""), text))
		},
		"confirm": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("dialog.confirm")
			}
			text, err := stringParam(params, "text")
			if err != nil {
				return value.Value{}, err
			}
			ok, err := d.Confirm(optStringParam(params, "title", ""), text)
			if err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
			}
			result := value.NewObject()
			result.ObjectSet("confirmed", value.Bool(ok))
			return result, nil
		},
		"openFile": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("dialog.openFile")
			}
			path, err := d.OpenFile(optStringParam(params, "title", ""))
			if err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
			}
			return dialogPathResult(path), nil
		},
		"saveFile": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("dialog.saveFile")
			}
			path, err := d.SaveFile(optStringParam(params, "title", ""), optStringParam(params, "defaultName", ""))
			if err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
			}
			return dialogPathResult(path), nil
		},
	})
}

func dialogPathResult(path string) value.Value {
	result := value.NewObject()
	if path == "" {
		result.ObjectSet("path", value.Null())
		result.ObjectSet("cancelled", value.Bool(true))
	} else {
		result.ObjectSet("path", value.String(path))
		result.ObjectSet("cancelled", value.Bool(false))
	}
	return result
}
