package capability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/emitter"
	"github.com/craftkit/web-runtime/value"
)

const downloadChunkSize = 64 * 1024

// HTTP serves the http.* methods. Downloads stream to disk through the
// fs suite's root confinement and report progress on the event emitter.
type HTTP struct {
	client *http.Client
	fs     *FS
	events *emitter.Emitter
}

// NewHTTP creates an HTTP suite. Downloads land under the fs suite's
// root; events may be nil when no progress reporting is wanted.
func NewHTTP(fs *FS, events *emitter.Emitter) *HTTP {
	return &HTTP{
		client: &http.Client{Timeout: 60 * time.Second},
		fs:     fs,
		events: events,
	}
}

// Bind registers the http.* methods on the engine.
func (h *HTTP) Bind(e *bridge.Engine) error {
	return e.RegisterNamespace("http", map[string]bridge.Handler{
		"fetch":    h.fetch,
		"download": h.download,
	})
}

func (h *HTTP) newRequest(ctx context.Context, params value.Value) (*http.Request, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(optStringParam(params, "method", "GET"))

	var body io.Reader
	if v, ok := params.ObjectGet("body"); ok {
		s, ok := v.AsString()
		if !ok {
			return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be a string", "body")
		}
		body = strings.NewReader(s)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, bridge.Errorf(bridge.CodeHandlerFailed, "building request: %v", err)
	}
	if v, ok := params.ObjectGet("headers"); ok {
		if v.Kind() != value.KindObject {
			return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an object", "headers")
		}
		for _, m := range v.Members() {
			s, ok := m.Value.AsString()
			if !ok {
				return nil, bridge.Errorf(bridge.CodeHandlerFailed, "header %q must be a string", m.Key)
			}
			req.Header.Set(m.Key, s)
		}
	}
	return req, nil
}

func (h *HTTP) fetch(ctx context.Context, params value.Value) (value.Value, error) {
	req, err := h.newRequest(ctx, params)
	if err != nil {
		return value.Value{}, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "reading response body: %v", err)
	}

	headers := value.NewObject()
	for key := range resp.Header {
		headers.ObjectSet(key, value.String(resp.Header.Get(key)))
	}
	result := value.NewObject()
	result.ObjectSet("status", value.Int(int64(resp.StatusCode)))
	result.ObjectSet("headers", headers)
	result.ObjectSet("body", value.String(string(data)))
	return result, nil
}

func (h *HTTP) download(ctx context.Context, params value.Value) (value.Value, error) {
	dest, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := h.fs.resolve(dest)
	if err != nil {
		return value.Value{}, err
	}
	req, err := h.newRequest(ctx, params)
	if err != nil {
		return value.Value{}, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "server returned status %d", resp.StatusCode)
	}

	out, err := os.Create(full)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "creating %q: %v", dest, err)
	}
	defer out.Close()

	var written int64
	total := resp.ContentLength
	buf := make([]byte, downloadChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "writing %q: %v", dest, err)
			}
			written += int64(n)
			h.progress(dest, written, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "reading response body: %v", readErr)
		}
	}
	if err := out.Close(); err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "closing %q: %v", dest, err)
	}

	result := value.NewObject()
	result.ObjectSet("path", value.String(dest))
	result.ObjectSet("bytes", value.Int(written))
	result.ObjectSet("status", value.Int(int64(resp.StatusCode)))
	return result, nil
}

func (h *HTTP) progress(path string, written, total int64) {
	if h.events == nil {
		return
	}
	data := value.NewObject()
	data.ObjectSet("path", value.String(path))
	data.ObjectSet("bytes", value.Int(written))
	if total >= 0 {
		data.ObjectSet("total", value.Int(total))
	} else {
		data.ObjectSet("total", value.Null())
	}
	h.events.Emit("download.progress", data)
}
