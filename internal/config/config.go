// Package config loads hadron's own settings. Values come from, in rising
// precedence: built-in defaults, the HCL config file, HADRON_* environment
// variables, and finally command-line flags (applied by the cli package).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

const (
	DefaultCompatTool = "proton_experimental"
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
	FileName          = "config.hcl"
)

// Config holds the resolved settings.
type Config struct {
	SteamDir   string
	UserID     string
	CompatTool string
	LogLevel   string
	LogFormat  string
	// Source is the config file that was read, if any.
	Source string
}

// fileSchema is the shape of config.hcl.
type fileSchema struct {
	SteamDir   string    `hcl:"steam_dir,optional"`
	UserID     string    `hcl:"user_id,optional"`
	CompatTool string    `hcl:"compat_tool,optional"`
	Log        *logBlock `hcl:"log,block"`
}

type logBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// envOverrides is filled from the process environment.
type envOverrides struct {
	SteamDir   string `env:"HADRON_STEAM_DIR"`
	UserID     string `env:"HADRON_USER_ID"`
	CompatTool string `env:"HADRON_COMPAT_TOOL"`
	LogLevel   string `env:"HADRON_LOG_LEVEL"`
	LogFormat  string `env:"HADRON_LOG_FORMAT"`
}

// LoadOptions makes the environment explicit so tests do not touch the
// process state.
type LoadOptions struct {
	// Path is an explicit config file; it must exist. Empty selects
	// DefaultPath, which may be absent.
	Path string
	Home string
	// Environ stands in for the process environment; nil is empty.
	Environ map[string]string
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Config {
	return &Config{
		CompatTool: DefaultCompatTool,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/hadron/config.hcl, or
// ~/.config/hadron/config.hcl.
func DefaultPath(home string, environ map[string]string) string {
	base := environ["XDG_CONFIG_HOME"]
	if base == "" {
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "hadron", FileName)
}

// Load applies defaults, the config file and the environment, in order.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()
	if opts.Environ == nil {
		opts.Environ = map[string]string{}
	}

	path := opts.Path
	required := path != ""
	if !required {
		path = DefaultPath(opts.Home, opts.Environ)
	}

	if _, err := os.Stat(path); err == nil {
		if err := loadFile(cfg, path, opts); err != nil {
			return nil, err
		}
		cfg.Source = path
	} else if required || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Environment: opts.Environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	apply(&cfg.SteamDir, overrides.SteamDir)
	apply(&cfg.UserID, overrides.UserID)
	apply(&cfg.CompatTool, overrides.CompatTool)
	apply(&cfg.LogLevel, overrides.LogLevel)
	apply(&cfg.LogFormat, overrides.LogFormat)

	cfg.SteamDir = ExpandHome(cfg.SteamDir, opts.Home)
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	return nil
}

func loadFile(cfg *Config, path string, opts LoadOptions) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var schema fileSchema
	diags = gohcl.DecodeBody(file.Body, evalContext(opts), &schema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	apply(&cfg.SteamDir, schema.SteamDir)
	apply(&cfg.UserID, schema.UserID)
	apply(&cfg.CompatTool, schema.CompatTool)
	if schema.Log != nil {
		apply(&cfg.LogLevel, schema.Log.Level)
		apply(&cfg.LogFormat, schema.Log.Format)
	}
	return nil
}

// evalContext exposes `home` and `env.NAME` to config expressions, e.g.
// steam_dir = "${home}/.steam/steam".
func evalContext(opts LoadOptions) *hcl.EvalContext {
	envVals := make(map[string]cty.Value, len(opts.Environ))
	for k, v := range opts.Environ {
		envVals[k] = cty.StringVal(v)
	}
	envObj := cty.EmptyObjectVal
	if len(envVals) > 0 {
		envObj = cty.ObjectVal(envVals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(opts.Home),
			"env":  envObj,
		},
	}
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

// Environ snapshots the process environment as a map.
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func apply(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
