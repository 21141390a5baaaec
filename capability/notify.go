package capability

import (
	"context"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// Notifier is implemented by hosts that can post desktop notifications.
type Notifier interface {
	Notify(title, body string) error
}

// BindNotifier registers the notify.* methods backed by the adapter.
func BindNotifier(e *bridge.Engine, n Notifier) error {
	return e.RegisterNamespace("notify", map[string]bridge.Handler{
		"send": func(ctx context.Context, params value.Value) (value.Value, error) {
			if n == nil {
				return value.Value{}, errUnsupported("notify.send")
			}
			title, err := stringParam(params, "title")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(n.Notify(title, optStringParam(params, "body", "")))
		},
	})
}
