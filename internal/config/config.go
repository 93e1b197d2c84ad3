// Package config loads workbench settings.
//
// Settings come from three layers, later layers overriding earlier ones:
// built-in defaults, a TOML file and WORKBENCH_* environment variables.
// A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/workbench/internal/ignore"
	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/solution"
	"github.com/dshills/workbench/internal/vfs"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "WORKBENCH_"

// Config holds all workbench settings.
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Solution  SolutionConfig  `toml:"solution"`
	Projects  []ProjectType   `toml:"projects"`
	Scan      ScanConfig      `toml:"scan"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Watch     WatchConfig     `toml:"watch"`
	Browser   BrowserConfig   `toml:"browser"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SolutionConfig configures solution files.
type SolutionConfig struct {
	// Suffixes are the file name endings recognized as solution files.
	Suffixes []string `toml:"suffixes"`

	// Format is the suffix used when a solution is created for a project.
	Format string `toml:"format"`
}

// ProjectType binds a project type id to its project file extension.
type ProjectType struct {
	ID        string `toml:"id"`
	Extension string `toml:"extension"`
	Language  string `toml:"language"`
}

// ScanConfig configures project directory scanning.
type ScanConfig struct {
	Ignore      []string `toml:"ignore"`
	Concurrency int      `toml:"concurrency"`
}

// ClipboardConfig selects the clipboard used for cut and paste.
type ClipboardConfig struct {
	// Backend is "memory" or "system".
	Backend string `toml:"backend"`
}

// WatchConfig configures reloading the open solution on external edits.
type WatchConfig struct {
	// Enabled allows following the solution file for changes.
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Debounce returns the debounce delay.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// BrowserConfig configures project browser operations.
type BrowserConfig struct {
	// SaveOnChange writes the solution after every browser edit.
	SaveOnChange bool `toml:"save_on_change"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{
		Logging: LoggingConfig{Level: "info", Format: logging.FormatConsole},
		Solution: SolutionConfig{
			Suffixes: append([]string(nil), solution.DefaultSuffixes...),
			Format:   ".sln.yaml",
		},
		Scan: ScanConfig{
			Ignore:      append([]string(nil), ignore.Default...),
			Concurrency: 4,
		},
		Clipboard: ClipboardConfig{Backend: "memory"},
		Watch:     WatchConfig{Enabled: true, DebounceMS: 200},
		Browser:   BrowserConfig{SaveOnChange: true},
	}
	for _, b := range solution.DefaultBindings {
		cfg.Projects = append(cfg.Projects, ProjectType{
			ID:        b.TypeID.String(),
			Extension: b.Extension,
			Language:  b.Language,
		})
	}
	return cfg
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "workbench", "config.toml")
}

// Load reads the TOML file at path over the defaults, applies environment
// overrides and validates the result. An empty path or missing file leaves
// the defaults in place.
func Load(fsys vfs.FS, path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := fsys.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := Parse(data, cfg); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over cfg. Keys absent from data keep their
// current values; unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Lists in the file replace the defaults rather than extending them.
	if _, ok := raw["projects"]; ok {
		cfg.Projects = nil
	}
	if section, ok := raw["scan"].(map[string]any); ok {
		if _, ok := section["ignore"]; ok {
			cfg.Scan.Ignore = nil
		}
	}
	if section, ok := raw["solution"].(map[string]any); ok {
		if _, ok := section["suffixes"]; ok {
			cfg.Solution.Suffixes = nil
		}
	}

	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Marshal encodes cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = splitList(v)
		}
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("SOLUTION_FORMAT", &c.Solution.Format)
	str("CLIPBOARD", &c.Clipboard.Backend)
	list("SOLUTION_SUFFIXES", &c.Solution.Suffixes)
	list("SCAN_IGNORE", &c.Scan.Ignore)

	for name, dst := range map[string]*int{
		"SCAN_CONCURRENCY":  &c.Scan.Concurrency,
		"WATCH_DEBOUNCE_MS": &c.Watch.DebounceMS,
	} {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return &EnvError{Name: EnvPrefix + name, Value: v, Err: err}
			}
			*dst = n
		}
	}
	for name, dst := range map[string]*bool{
		"WATCH":          &c.Watch.Enabled,
		"SAVE_ON_CHANGE": &c.Browser.SaveOnChange,
	} {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return &EnvError{Name: EnvPrefix + name, Value: v, Err: err}
			}
			*dst = b
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return &ValidationError{Key: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if f := c.Logging.Format; f != logging.FormatJSON && f != logging.FormatConsole {
		return &ValidationError{Key: "logging.format", Message: fmt.Sprintf("unknown format %q", f)}
	}
	if len(c.Solution.Suffixes) == 0 {
		return &ValidationError{Key: "solution.suffixes", Message: "at least one suffix is required"}
	}
	if !containsFold(c.Solution.Suffixes, c.Solution.Format) {
		return &ValidationError{Key: "solution.format", Message: fmt.Sprintf("%q is not a solution suffix", c.Solution.Format)}
	}
	switch c.Clipboard.Backend {
	case "memory", "system":
	default:
		return &ValidationError{Key: "clipboard.backend", Message: fmt.Sprintf("unknown backend %q", c.Clipboard.Backend)}
	}
	if c.Scan.Concurrency < 0 {
		return &ValidationError{Key: "scan.concurrency", Message: "must not be negative"}
	}
	if c.Watch.DebounceMS < 0 {
		return &ValidationError{Key: "watch.debounce_ms", Message: "must not be negative"}
	}
	if _, err := c.Bindings(); err != nil {
		return err
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Bindings converts the configured project types.
func (c *Config) Bindings() (solution.Bindings, error) {
	out := make(solution.Bindings, 0, len(c.Projects))
	for i, p := range c.Projects {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, &ValidationError{Key: fmt.Sprintf("projects[%d].id", i), Message: err.Error()}
		}
		if !strings.HasPrefix(p.Extension, ".") {
			return nil, &ValidationError{Key: fmt.Sprintf("projects[%d].extension", i), Message: "must start with a dot"}
		}
		out = append(out, solution.Binding{TypeID: id, Extension: p.Extension, Language: p.Language})
	}
	return out, nil
}

// StoreOptions returns the solution store options these settings imply.
func (c *Config) StoreOptions() ([]solution.StoreOption, error) {
	bindings, err := c.Bindings()
	if err != nil {
		return nil, err
	}
	return []solution.StoreOption{
		solution.WithBindings(bindings),
		solution.WithIgnore(c.Scan.Ignore...),
		solution.WithScanConcurrency(c.Scan.Concurrency),
	}, nil
}
