package capability

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// FS serves the fs.* methods over a confined root directory. Every path
// parameter is resolved relative to the root; escaping it is an error.
type FS struct {
	root string
}

// NewFS creates a filesystem suite rooted at dir.
func NewFS(dir string) *FS {
	return &FS{root: filepath.Clean(dir)}
}

// Bind registers the fs.* methods on the engine.
func (f *FS) Bind(e *bridge.Engine) error {
	return e.RegisterNamespace("fs", map[string]bridge.Handler{
		"readFile":  f.readFile,
		"writeFile": f.writeFile,
		"readDir":   f.readDir,
		"mkdir":     f.mkdir,
		"remove":    f.remove,
		"stat":      f.stat,
		"exists":    f.exists,
	})
}

// resolve confines a request path inside the root.
func (f *FS) resolve(p string) (string, error) {
	full := filepath.Join(f.root, filepath.Clean("/"+p))
	if full != f.root && !strings.HasPrefix(full, f.root+string(filepath.Separator)) {
		return "", bridge.Errorf(bridge.CodeDenied, "path %q escapes the capability root", p)
	}
	return full, nil
}

func (f *FS) readFile(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "file %q not found", path)
		}
		return value.Value{}, err
	}
	result := value.NewObject()
	result.ObjectSet("data", value.String(string(data)))
	return result, nil
}

func (f *FS) writeFile(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	data, err := stringParam(params, "data")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	if err := os.WriteFile(full, []byte(data), 0o644); err != nil {
		return value.Value{}, err
	}
	return okResult(), nil
}

func (f *FS) readDir(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "directory %q not found", path)
		}
		return value.Value{}, err
	}
	list := value.NewArray()
	for _, entry := range entries {
		item := value.NewObject()
		item.ObjectSet("name", value.String(entry.Name()))
		item.ObjectSet("dir", value.Bool(entry.IsDir()))
		list.Append(item)
	}
	result := value.NewObject()
	result.ObjectSet("entries", list)
	return result, nil
}

func (f *FS) mkdir(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return value.Value{}, err
	}
	return okResult(), nil
}

func (f *FS) remove(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	if full == f.root {
		return value.Value{}, bridge.Errorf(bridge.CodeDenied, "refusing to remove the capability root")
	}
	if err := os.RemoveAll(full); err != nil {
		return value.Value{}, err
	}
	return okResult(), nil
}

func (f *FS) stat(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "path %q not found", path)
		}
		return value.Value{}, err
	}
	result := value.NewObject()
	result.ObjectSet("name", value.String(info.Name()))
	result.ObjectSet("size", value.Int(info.Size()))
	result.ObjectSet("dir", value.Bool(info.IsDir()))
	result.ObjectSet("modified", value.Int(info.ModTime().UnixMilli()))
	return result, nil
}

func (f *FS) exists(ctx context.Context, params value.Value) (value.Value, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return value.Value{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return value.Value{}, err
	}
	_, statErr := os.Stat(full)
	result := value.NewObject()
	result.ObjectSet("exists", value.Bool(statErr == nil))
	return result, nil
}
