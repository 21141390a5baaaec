package capability

import (
	"context"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// TrayItem is one entry of the tray menu. Separator items ignore the
// other fields.
type TrayItem struct {
	ID        string
	Label     string
	Enabled   bool
	Separator bool
}

// Tray is implemented by hosts with a system tray or menu bar icon.
type Tray interface {
	SetTooltip(text string) error
	SetMenu(items []TrayItem) error
	Remove() error
}

// BindTray registers the tray.* methods backed by the adapter.
func BindTray(e *bridge.Engine, t Tray) error {
	return e.RegisterNamespace("tray", map[string]bridge.Handler{
		"setTooltip": func(ctx context.Context, params value.Value) (value.Value, error) {
			if t == nil {
				return value.Value{}, errUnsupported("tray.setTooltip")
			}
			text, err := stringParam(params, "text")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(t.SetTooltip(text))
		},
		"setMenu": func(ctx context.Context, params value.Value) (value.Value, error) {
			if t == nil {
				return value.Value{}, errUnsupported("tray.setMenu")
			}
			items, err := trayItems(params)
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(t.SetMenu(items))
		},
		"remove": func(ctx context.Context, params value.Value) (value.Value, error) {
			if t == nil {
				return value.Value{}, errUnsupported("tray.remove")
			}
			return adapterResult(t.Remove())
		},
	})
}

func trayItems(params value.Value) ([]TrayItem, error) {
	v, ok := params.ObjectGet("items")
	if !ok || v.Kind() != value.KindArray {
		return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an array", "items")
	}
	items := make([]TrayItem, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem, _ := v.At(i)
		if elem.Kind() != value.KindObject {
			return nil, bridge.Errorf(bridge.CodeHandlerFailed, "menu item %d must be an object", i)
		}
		items = append(items, TrayItem{
			ID:        optStringParam(elem, "id", ""),
			Label:     optStringParam(elem, "label", ""),
			Enabled:   optBoolParam(elem, "enabled", true),
			Separator: optBoolParam(elem, "separator", false),
		})
	}
	return items, nil
}
