package capability

import (
	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// Param decoding helpers shared by the suites. Missing or mistyped
// parameters are application-level errors: the envelope itself was valid.

func stringParam(params value.Value, key string) (string, error) {
	v, ok := params.ObjectGet(key)
	if !ok {
		return "", bridge.Errorf(bridge.CodeHandlerFailed, "missing parameter %q", key)
	}
	s, ok := v.AsString()
	if !ok {
		return "", bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be a string", key)
	}
	return s, nil
}

func optStringParam(params value.Value, key, fallback string) string {
	v, ok := params.ObjectGet(key)
	if !ok {
		return fallback
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	return fallback
}

func intParam(params value.Value, key string) (int64, error) {
	v, ok := params.ObjectGet(key)
	if !ok {
		return 0, bridge.Errorf(bridge.CodeHandlerFailed, "missing parameter %q", key)
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an integer", key)
	}
	return i, nil
}

func optBoolParam(params value.Value, key string, fallback bool) bool {
	v, ok := params.ObjectGet(key)
	if !ok {
		return fallback
	}
	if b, ok := v.AsBool(); ok {
		return b
	}
	return fallback
}

func okResult() value.Value {
	result := value.NewObject()
	result.ObjectSet("ok", value.Bool(true))
	return result
}
