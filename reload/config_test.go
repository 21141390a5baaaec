package reload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("a missing config file must not be an error: %v", err)
	}
	if len(cfg.Roots) != 0 || cfg.Addr != "" {
		t.Fatal("missing file should yield a zero config")
	}
}

func TestLoadOptionalParses(t *testing.T) {
	dir := t.TempDir()
	body := "roots:\n  - web\n  - assets\nignore:\n  - dist\ndebounce: 150ms\naddr: 127.0.0.1:9000\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Roots) != 2 || cfg.Roots[0] != "web" {
		t.Fatalf("unexpected roots %v", cfg.Roots)
	}
	if cfg.Debounce != 150*time.Millisecond {
		t.Fatalf("unexpected debounce %v", cfg.Debounce)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
}

func TestLoadOptionalRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("roots: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptional(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.Resolve(dir)

	if len(cfg.Roots) != 1 || cfg.Roots[0] != dir {
		t.Fatalf("expected the project dir as the sole root, got %v", cfg.Roots)
	}
	if cfg.Debounce != DefaultDebounce {
		t.Fatalf("unexpected debounce %v", cfg.Debounce)
	}
	if cfg.Addr == "" {
		t.Fatal("expected a default addr")
	}
	if len(cfg.Ignore) == 0 {
		t.Fatal("expected default ignore patterns")
	}
}

func TestResolveMakesRootsAbsolute(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Roots: []string{"web", "/abs"}}
	cfg.Resolve(dir)

	if cfg.Roots[0] != filepath.Join(dir, "web") {
		t.Fatalf("relative root not resolved: %q", cfg.Roots[0])
	}
	if cfg.Roots[1] != "/abs" {
		t.Fatalf("absolute root should be untouched: %q", cfg.Roots[1])
	}
}
