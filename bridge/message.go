package bridge

import (
	"github.com/craftkit/web-runtime/errors"
	"github.com/craftkit/web-runtime/value"
)

// Message is one decoded bridge envelope: Request, Response, ErrorResponse,
// or Event.
type Message interface {
	isMessage()
}

// Request asks the native side to invoke a capability handler.
type Request struct {
	ID     string
	Method string
	Params value.Value
}

// Response carries a handler result back to the caller that issued ID.
type Response struct {
	ID     string
	Result value.Value
}

// ErrorResponse carries a protocol or handler failure back to the caller.
type ErrorResponse struct {
	ID      string
	Message string
	Data    value.Value
	Code    int32
}

// Event is an unsolicited push; it has no id and expects no reply.
type Event struct {
	Name string
	Data value.Value
}

func (Request) isMessage()       {}
func (Response) isMessage()      {}
func (ErrorResponse) isMessage() {}
func (Event) isMessage()         {}

// DecodeMessage parses a wire message. The envelope shape is inferred from
// the fields present: "method" marks a Request, "result" a Response, "error"
// an ErrorResponse, and "event" an Event.
func DecodeMessage(data []byte) (Message, error) {
	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(v)
}

func decodeEnvelope(v value.Value) (Message, error) {
	if v.Kind() != value.KindObject {
		return nil, errors.MalformedRequest("envelope must be an object")
	}

	if name, ok := v.ObjectGet("event"); ok {
		s, ok := name.AsString()
		if !ok {
			return nil, errors.MalformedRequest("event name must be a string")
		}
		data, _ := v.ObjectGet("data")
		return Event{Name: s, Data: data}, nil
	}

	idVal, ok := v.ObjectGet("id")
	if !ok {
		return nil, errors.MalformedRequest("missing id field")
	}
	id, ok := idVal.AsString()
	if !ok {
		return nil, errors.MalformedRequest("id must be a string")
	}

	if methodVal, ok := v.ObjectGet("method"); ok {
		method, ok := methodVal.AsString()
		if !ok || method == "" {
			return nil, errors.MalformedRequest("method must be a non-empty string")
		}
		params, _ := v.ObjectGet("params")
		return Request{ID: id, Method: method, Params: params}, nil
	}

	if result, ok := v.ObjectGet("result"); ok {
		return Response{ID: id, Result: result}, nil
	}

	if errVal, ok := v.ObjectGet("error"); ok {
		if errVal.Kind() != value.KindObject {
			return nil, errors.MalformedRequest("error field must be an object")
		}
		codeVal, ok := errVal.ObjectGet("code")
		code, isInt := codeVal.AsInt()
		if !ok || !isInt {
			return nil, errors.MalformedRequest("error.code must be an integer")
		}
		msgVal, _ := errVal.ObjectGet("message")
		msg, _ := msgVal.AsString()
		data, _ := errVal.ObjectGet("data")
		return ErrorResponse{ID: id, Code: int32(code), Message: msg, Data: data}, nil
	}

	return nil, errors.MalformedRequest("envelope has none of method, result, error, event")
}

// Encode serializes any Message to its wire form.
func Encode(m Message) ([]byte, error) {
	env := value.NewObject()
	switch msg := m.(type) {
	case Request:
		env.ObjectSet("id", value.String(msg.ID))
		env.ObjectSet("method", value.String(msg.Method))
		env.ObjectSet("params", msg.Params)
	case Response:
		env.ObjectSet("id", value.String(msg.ID))
		env.ObjectSet("result", msg.Result)
	case ErrorResponse:
		env.ObjectSet("id", value.String(msg.ID))
		errObj := value.NewObject()
		errObj.ObjectSet("code", value.Int(int64(msg.Code)))
		errObj.ObjectSet("message", value.String(msg.Message))
		errObj.ObjectSet("data", msg.Data)
		env.ObjectSet("error", errObj)
	case Event:
		env.ObjectSet("event", value.String(msg.Name))
		env.ObjectSet("data", msg.Data)
	default:
		return nil, errors.InvalidInput(errors.PhaseDispatch, "unknown message type")
	}
	return value.Encode(env)
}
