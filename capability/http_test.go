package capability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/emitter"
	"github.com/craftkit/web-runtime/value"
)

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	h := NewHTTP(NewFS(t.TempDir()), nil)
	headers := value.NewObject()
	headers.ObjectSet("X-Token", value.String("secret"))

	result, err := h.fetch(context.Background(), objectParams("url", srv.URL, "headers", headers))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	status, _ := result.ObjectGet("status")
	if n, _ := status.AsInt(); n != 200 {
		t.Fatalf("expected status 200, got %d", n)
	}
	body, _ := result.ObjectGet("body")
	if s, _ := body.AsString(); s != "pong" {
		t.Fatalf("expected body %q, got %q", "pong", s)
	}
	hv, _ := result.ObjectGet("headers")
	ct, _ := hv.ObjectGet("Content-Type")
	if s, _ := ct.AsString(); s != "text/plain" {
		t.Fatalf("expected content type header, got %q", s)
	}
}

func TestHTTPFetchPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		w.Write(buf[:n])
	}))
	defer srv.Close()

	h := NewHTTP(NewFS(t.TempDir()), nil)
	result, err := h.fetch(context.Background(), objectParams(
		"url", srv.URL, "method", "post", "body", "payload",
	))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	body, _ := result.ObjectGet("body")
	if s, _ := body.AsString(); s != "payload" {
		t.Fatalf("expected echoed body, got %q", s)
	}
}

func TestHTTPDownloadWithProgress(t *testing.T) {
	payload := strings.Repeat("x", 3*downloadChunkSize/2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	dir := t.TempDir()
	events := emitter.New()
	var reports []int64
	events.On("download.progress", func(data value.Value) {
		bytes, _ := data.ObjectGet("bytes")
		n, _ := bytes.AsInt()
		reports = append(reports, n)
	})

	h := NewHTTP(NewFS(dir), events)
	result, err := h.download(context.Background(), objectParams("url", srv.URL, "path", "out.bin"))
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	bytes, _ := result.ObjectGet("bytes")
	if n, _ := bytes.AsInt(); n != int64(len(payload)) {
		t.Fatalf("expected %d bytes, got %d", len(payload), n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != payload {
		t.Fatal("downloaded file does not match the payload")
	}

	if len(reports) == 0 {
		t.Fatal("expected at least one progress event")
	}
	if last := reports[len(reports)-1]; last != int64(len(payload)) {
		t.Fatalf("final progress report %d, want %d", last, len(payload))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] < reports[i-1] {
			t.Fatal("progress reports must be non-decreasing")
		}
	}
}

func TestHTTPDownloadConfined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	h := NewHTTP(NewFS(t.TempDir()), nil)
	_, err := h.download(context.Background(), objectParams("url", srv.URL, "path", "../escape.bin"))
	if err == nil {
		t.Fatal("expected the destination to be rejected")
	}
	if code := handlerCode(t, err); code != bridge.CodeDenied {
		t.Fatalf("expected code %d, got %d", bridge.CodeDenied, code)
	}
}

func TestHTTPDownloadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewHTTP(NewFS(t.TempDir()), nil)
	_, err := h.download(context.Background(), objectParams("url", srv.URL, "path", "out.bin"))
	if err == nil {
		t.Fatal("expected a server error to fail the download")
	}
}
