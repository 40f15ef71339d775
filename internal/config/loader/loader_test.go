package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTOMLLoader_Load(t *testing.T) {
	path := writeFile(t, "config.toml", `
[logging]
level = "debug"

[view]
height = 30

[keymap]
"alt+/" = "emacs.dabbrevExpand"
`)

	config, err := NewTOMLLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := GetByPath(config, "logging.level"); !ok || val != "debug" {
		t.Errorf("logging.level = %v, want 'debug'", val)
	}
	if val, ok := GetByPath(config, "view.height"); !ok || val != int64(30) {
		t.Errorf("view.height = %v (%T), want 30", val, val)
	}
	if val, ok := GetByPath(config, "keymap.alt+/"); !ok || val != "emacs.dabbrevExpand" {
		t.Errorf("keymap binding = %v", val)
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoader(filepath.Join(t.TempDir(), "nope.toml")).Load()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if config != nil {
		t.Errorf("expected nil config, got %v", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	path := writeFile(t, "bad.toml", "[logging]\nlevel = \n")

	_, err := NewTOMLLoader(path).Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != path {
		t.Errorf("path = %q, want %q", perr.Path, path)
	}
	if perr.Line < 1 {
		t.Errorf("expected a line number, got %d", perr.Line)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  level: warn
dabbrev:
  enabled: false
view:
  width: 100
`)

	config, err := NewYAMLLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, _ := GetByPath(config, "logging.level"); val != "warn" {
		t.Errorf("logging.level = %v", val)
	}
	if val, _ := GetByPath(config, "dabbrev.enabled"); val != false {
		t.Errorf("dabbrev.enabled = %v", val)
	}
	if val, _ := GetByPath(config, "view.width"); val != 100 {
		t.Errorf("view.width = %v (%T)", val, val)
	}
}

func TestYAMLLoader_NonStringKeys(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader("keymap:\n  1: editor.save\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if val, _ := GetByPath(config, "keymap.1"); val != "editor.save" {
		t.Errorf("keymap.1 = %v", val)
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	_, err := NewYAMLLoader("").LoadFromReader(strings.NewReader("logging: [unclosed\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a.toml", "*loader.TOMLLoader", false},
		{"a.TOML", "*loader.TOMLLoader", false},
		{"a.yaml", "*loader.YAMLLoader", false},
		{"a.yml", "*loader.YAMLLoader", false},
		{"a.json", "", true},
	}

	for _, tt := range tests {
		l, err := ForPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("%s: expected ErrUnsupportedFormat, got %v", tt.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.path, err)
			continue
		}
		if got := typeName(l); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.path, got, tt.want)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TOMLLoader:
		return "*loader.TOMLLoader"
	case *YAMLLoader:
		return "*loader.YAMLLoader"
	}
	return "unknown"
}

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoader("DABBREV_")
	l.environ = func() []string {
		return []string{
			"DABBREV_LOGGING_LEVEL=debug",
			"DABBREV_LOG_FORMAT=json",
			"DABBREV_EDITOR_TAB_WIDTH=2",
			"DABBREV_DABBREV_ENABLED=off",
			"DABBREV_BROKEN",
			"OTHER_VIEW_HEIGHT=10",
		}
	}

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"logging.format", "json"},
		{"editor.tabWidth", int64(2)},
		{"dabbrev.enabled", false},
	}
	for _, tt := range tests {
		if val, ok := GetByPath(config, tt.path); !ok || val != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, val, val, tt.want)
		}
	}
	if _, ok := config["view"]; ok {
		t.Error("variables without the prefix must be ignored")
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader("DABBREV_")

	tests := []struct {
		env  string
		want string
	}{
		{"DABBREV_LOGGING_LEVEL", "logging.level"},
		{"DABBREV_EDITOR_TAB_WIDTH", "editor.tabWidth"},
		{"DABBREV_VIEW_HEIGHT", "view.height"},
		{"DABBREV_ALONE", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"yes", true},
		{"False", false},
		{"42", int64(42)},
		{"1", int64(1)},
		{"1.5", 1.5},
		{"text", "text"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging": map[string]any{"level": "info", "format": "text"},
		"view":    map[string]any{"height": 24},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"keymap":  map[string]any{"ctrl+l": "view.centerCursor"},
	}

	merged := DeepMerge(dst, src)

	if val, _ := GetByPath(merged, "logging.level"); val != "debug" {
		t.Errorf("logging.level = %v", val)
	}
	if val, _ := GetByPath(merged, "logging.format"); val != "text" {
		t.Errorf("logging.format = %v", val)
	}
	if val, _ := GetByPath(merged, "keymap.ctrl+l"); val != "view.centerCursor" {
		t.Errorf("keymap.ctrl+l = %v", val)
	}

	// Merged maps must not alias src.
	src["keymap"].(map[string]any)["ctrl+l"] = "changed"
	if val, _ := GetByPath(merged, "keymap.ctrl+l"); val != "view.centerCursor" {
		t.Error("merge result aliases source map")
	}
}

func TestSetByPath(t *testing.T) {
	data := map[string]any{"a": "scalar"}
	SetByPath(data, "a.b.c", 1)

	if val, ok := GetByPath(data, "a.b.c"); !ok || val != 1 {
		t.Errorf("a.b.c = %v", val)
	}
	if _, ok := GetByPath(data, "a.x"); ok {
		t.Error("unexpected value at a.x")
	}
}
