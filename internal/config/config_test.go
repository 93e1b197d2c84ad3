package config

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/workbench/internal/solution"
	"github.com/dshills/workbench/internal/vfs"
	"github.com/google/go-cmp/cmp"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("Bindings() error = %v", err)
	}
	if diff := cmp.Diff(solution.DefaultBindings, bindings); diff != "" {
		t.Errorf("Bindings() mismatch (-want +got):\n%s", diff)
	}
	if cfg.Watch.Debounce() != 200*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Watch.Debounce())
	}
	if !cfg.Watch.Enabled {
		t.Error("watching should be enabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(vfs.NewMemFS(), "/etc/workbench/config.toml")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Clipboard.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Clipboard.Backend)
	}
}

func TestParse(t *testing.T) {
	data := `
[logging]
level = "debug"

[solution]
suffixes = [".sln.toml"]
format = ".sln.toml"

[[projects]]
id = "6c3b1c8e-2f7a-4e1d-9c0b-3d4b5e6f7a81"
extension = ".goproj"
language = "Go"

[scan]
ignore = ["vendor/"]

[watch]
enabled = true
`
	cfg := Default()
	if err := Parse([]byte(data), cfg); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if diff := cmp.Diff([]string{"vendor/"}, cfg.Scan.Ignore); diff != "" {
		t.Errorf("Scan.Ignore mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].Language != "Go" {
		t.Errorf("Projects = %+v", cfg.Projects)
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMS != 200 {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.Scan.Concurrency != 4 {
		t.Errorf("Scan.Concurrency = %d, want default 4", cfg.Scan.Concurrency)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		as   any
	}{
		{"malformed", "[logging\n", new(*ParseError)},
		{"unknown key", "colour = 1\n", new(*ParseError)},
		{"bad level", "[logging]\nlevel = \"loud\"\n", new(*ValidationError)},
		{"bad backend", "[clipboard]\nbackend = \"x11\"\n", new(*ValidationError)},
		{"bad format", "[solution]\nformat = \".sln\"\n", new(*ValidationError)},
		{"bad project id", "[[projects]]\nid = \"x\"\nextension = \".p\"\n", new(*ValidationError)},
		{"bad extension", "[[projects]]\nid = \"6c3b1c8e-2f7a-4e1d-9c0b-3d4b5e6f7a81\"\nextension = \"p\"\n", new(*ValidationError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := vfs.NewMemFS()
			if err := fsys.AddFile("/cfg.toml", tt.data); err != nil {
				t.Fatal(err)
			}
			_, err := Load(fsys, "/cfg.toml")
			if err == nil {
				t.Fatal("Load error = nil")
			}
			if !errors.As(err, tt.as) {
				t.Errorf("Load error = %T %v", err, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"WORKBENCH_LOG_LEVEL":         "warn",
		"WORKBENCH_CLIPBOARD":         "system",
		"WORKBENCH_SCAN_IGNORE":       "bin/, obj/ ,",
		"WORKBENCH_WATCH":             "true",
		"WORKBENCH_WATCH_DEBOUNCE_MS": "50",
		"WORKBENCH_SAVE_ON_CHANGE":    "false",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv error = %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Clipboard.Backend != "system" {
		t.Errorf("cfg = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"bin/", "obj/"}, cfg.Scan.Ignore); diff != "" {
		t.Errorf("Scan.Ignore mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMS != 50 || cfg.Browser.SaveOnChange {
		t.Errorf("cfg = %+v", cfg)
	}

	if err := Default().ApplyEnv(noEnv); err != nil {
		t.Errorf("ApplyEnv(empty) error = %v", err)
	}
	var envErr *EnvError
	err = Default().ApplyEnv(envMap(map[string]string{"WORKBENCH_WATCH": "maybe"}))
	if !errors.As(err, &envErr) || envErr.Name != "WORKBENCH_WATCH" {
		t.Errorf("ApplyEnv error = %v, want *EnvError", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "error"
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	got := Default()
	if err := Parse(data, got); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreOptions(t *testing.T) {
	opts, err := Default().StoreOptions()
	if err != nil {
		t.Fatalf("StoreOptions error = %v", err)
	}
	st := solution.NewStore(vfs.NewMemFS(), opts...)
	if len(st.Bindings()) != len(solution.DefaultBindings) {
		t.Errorf("Bindings() = %v", st.Bindings())
	}
}
