package capability

import (
	"context"
	"testing"

	webruntime "github.com/craftkit/web-runtime"
	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

type fakeWindow struct {
	title  string
	width  int64
	height int64
	shown  bool
}

func (w *fakeWindow) SetTitle(title string) error          { w.title = title; return nil }
func (w *fakeWindow) SetSize(width, height int64) error    { w.width, w.height = width, height; return nil }
func (w *fakeWindow) SetPosition(x, y int64) error         { return nil }
func (w *fakeWindow) Show() error                          { w.shown = true; return nil }
func (w *fakeWindow) Hide() error                          { w.shown = false; return nil }
func (w *fakeWindow) Minimize() error                      { return nil }
func (w *fakeWindow) Maximize() error                      { return nil }
func (w *fakeWindow) Fullscreen(on bool) error             { return nil }
func (w *fakeWindow) Close() error                         { return nil }

type fakeTray struct {
	items []TrayItem
}

func (t *fakeTray) SetTooltip(text string) error    { return nil }
func (t *fakeTray) SetMenu(items []TrayItem) error  { t.items = items; return nil }
func (t *fakeTray) Remove() error                   { return nil }

type fakeDialogs struct{}

func (fakeDialogs) Message(title, text string) error          { return nil }
func (fakeDialogs) Confirm(title, text string) (bool, error)  { return true, nil }
func (fakeDialogs) OpenFile(title string) (string, error)     { return "/tmp/picked.txt", nil }
func (fakeDialogs) SaveFile(title, name string) (string, error) { return "", nil }

func bindEngine(t *testing.T, bind func(*bridge.Engine) error) *bridge.Engine {
	t.Helper()
	e := bridge.NewEngine()
	e.SetTransport(webruntime.TransportFunc(func([]byte) error { return nil }))
	if err := bind(e); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestWindowAdapter(t *testing.T) {
	w := &fakeWindow{}
	e := bindEngine(t, func(e *bridge.Engine) error { return BindWindow(e, w) })

	got := dispatchValue(t, e, "window.setTitle", objectParams("title", "Craft"))
	ok, _ := got.ObjectGet("ok")
	if b, _ := ok.AsBool(); !b {
		t.Fatal("expected ok result")
	}
	if w.title != "Craft" {
		t.Fatalf("title not applied, got %q", w.title)
	}

	dispatchValue(t, e, "window.setSize", objectParams("width", int64(800), "height", int64(600)))
	if w.width != 800 || w.height != 600 {
		t.Fatalf("size not applied, got %dx%d", w.width, w.height)
	}

	dispatchValue(t, e, "window.show", value.NewObject())
	if !w.shown {
		t.Fatal("window should be shown")
	}
}

func TestNilAdapterAnswersUnsupported(t *testing.T) {
	e := bridge.NewEngine()
	e.SetTransport(webruntime.TransportFunc(func([]byte) error { return nil }))
	defer e.Close()

	if err := BindWindow(e, nil); err != nil {
		t.Fatal(err)
	}
	if err := BindTray(e, nil); err != nil {
		t.Fatal(err)
	}
	if err := BindDialogs(e, nil); err != nil {
		t.Fatal(err)
	}
	if err := BindNotifier(e, nil); err != nil {
		t.Fatal(err)
	}
	if err := BindDevice(e, nil); err != nil {
		t.Fatal(err)
	}

	for _, method := range []string{
		"window.setTitle", "tray.setMenu", "dialog.message", "notify.send", "device.hostname",
	} {
		_, err := dispatch(e, method, objectParams("title", "t", "text", "x"))
		if err == nil {
			t.Fatalf("%s on a nil adapter should fail", method)
		}
		if code := handlerCode(t, err); code != bridge.CodeUnsupported {
			t.Fatalf("%s: expected code %d, got %d", method, bridge.CodeUnsupported, code)
		}
	}
}

func TestDeviceInfoWithoutAdapter(t *testing.T) {
	e := bridge.NewEngine()
	e.SetTransport(webruntime.TransportFunc(func([]byte) error { return nil }))
	defer e.Close()
	if err := BindDevice(e, nil); err != nil {
		t.Fatal(err)
	}

	result, err := dispatch(e, "device.info", value.NewObject())
	if err != nil {
		t.Fatalf("device.info should not need an adapter: %v", err)
	}
	if _, ok := result.ObjectGet("os"); !ok {
		t.Fatal("expected an os field")
	}
	cpus, _ := result.ObjectGet("cpus")
	if n, _ := cpus.AsInt(); n < 1 {
		t.Fatalf("expected at least one cpu, got %d", n)
	}
}

func TestTrayMenu(t *testing.T) {
	tray := &fakeTray{}
	e := bindEngine(t, func(e *bridge.Engine) error { return BindTray(e, tray) })

	items := value.NewArray()
	open := value.NewObject()
	open.ObjectSet("id", value.String("open"))
	open.ObjectSet("label", value.String("Open"))
	items.Append(open)
	sep := value.NewObject()
	sep.ObjectSet("separator", value.Bool(true))
	items.Append(sep)
	quit := value.NewObject()
	quit.ObjectSet("id", value.String("quit"))
	quit.ObjectSet("label", value.String("Quit"))
	quit.ObjectSet("enabled", value.Bool(false))
	items.Append(quit)

	dispatchValue(t, e, "tray.setMenu", objectParams("items", items))
	if len(tray.items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tray.items))
	}
	if !tray.items[1].Separator {
		t.Fatal("second item should be a separator")
	}
	if tray.items[2].Enabled {
		t.Fatal("quit item should be disabled")
	}
	if tray.items[0].Enabled != true {
		t.Fatal("enabled should default to true")
	}
}

func TestDialogResults(t *testing.T) {
	e := bindEngine(t, func(e *bridge.Engine) error { return BindDialogs(e, fakeDialogs{}) })

	got := dispatchValue(t, e, "dialog.confirm", objectParams("text", "sure?"))
	confirmed, _ := got.ObjectGet("confirmed")
	if b, _ := confirmed.AsBool(); !b {
		t.Fatal("expected confirmed true")
	}

	got = dispatchValue(t, e, "dialog.openFile", value.NewObject())
	path, _ := got.ObjectGet("path")
	if s, _ := path.AsString(); s != "/tmp/picked.txt" {
		t.Fatalf("unexpected path %q", s)
	}

	// SaveFile cancelled: empty path maps to cancelled true.
	got = dispatchValue(t, e, "dialog.saveFile", value.NewObject())
	cancelled, _ := got.ObjectGet("cancelled")
	if b, _ := cancelled.AsBool(); !b {
		t.Fatal("expected cancelled true")
	}
	path, _ = got.ObjectGet("path")
	if path.Kind() != value.KindNull {
		t.Fatal("cancelled save should carry a null path")
	}
}

// dispatch runs a registered method directly, bypassing the wire framing.
func dispatch(e *bridge.Engine, method string, params value.Value) (value.Value, error) {
	h, ok := e.Handler(method)
	if !ok {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "method %q not registered", method)
	}
	return h(context.Background(), params)
}

func dispatchValue(t *testing.T, e *bridge.Engine, method string, params value.Value) value.Value {
	t.Helper()
	result, err := dispatch(e, method, params)
	if err != nil {
		t.Fatalf("%s failed: %v", method, err)
	}
	return result
}
