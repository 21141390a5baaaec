package capability

import (
	"context"
	"runtime"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// Device is implemented by hosts exposing machine facts beyond what the
// process can see on its own. Battery returns a charge fraction in
// [0, 1] and whether the machine is plugged in.
type Device interface {
	Hostname() (string, error)
	Battery() (level float64, charging bool, err error)
	OpenURL(url string) error
}

// BindDevice registers the device.* methods backed by the adapter.
// device.info never needs an adapter; it reports process-visible facts.
func BindDevice(e *bridge.Engine, d Device) error {
	return e.RegisterNamespace("device", map[string]bridge.Handler{
		"info": func(ctx context.Context, params value.Value) (value.Value, error) {
			result := value.NewObject()
			result.ObjectSet("os", value.String(runtime.GOOS))
			result.ObjectSet("arch", value.String(runtime.GOARCH))
			result.ObjectSet("cpus", value.Int(int64(runtime.NumCPU())))
			return result, nil
		},
		"hostname": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("device.hostname")
			}
			name, err := d.Hostname()
			if err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
			}
			result := value.NewObject()
			result.ObjectSet("hostname", value.String(name))
			return result, nil
		},
		"battery": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("device.battery")
			}
			level, charging, err := d.Battery()
			if err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "%v", err)
			}
			result := value.NewObject()
			result.ObjectSet("level", value.Float(level))
			result.ObjectSet("charging", value.Bool(charging))
			return result, nil
		},
		"openURL": func(ctx context.Context, params value.Value) (value.Value, error) {
			if d == nil {
				return value.Value{}, errUnsupported("device.openURL")
			}
			url, err := stringParam(params, "url")
			if err != nil {
				return value.Value{}, err
			}
			return adapterResult(d.OpenURL(url))
		},
	})
}
