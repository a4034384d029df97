package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/wordcount/internal/config/loader"
	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/tokenize"
)

// Config is the complete plugin configuration.
type Config struct {
	Logging    LoggingConfig
	Tokenizer  TokenizerConfig
	Status     StatusConfig
	Capitalize CapitalizeConfig
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	Level string // debug, info, warn or error
	File  string // Log file; empty means stderr
}

// TokenizerConfig selects how words are counted.
type TokenizerConfig struct {
	Kind   string // word, segment or lua
	Script string // Lua script path, required for kind lua
}

// StatusConfig configures the status items.
type StatusConfig struct {
	Alignment string // left or right
}

// CapitalizeConfig configures the "!" transform.
type CapitalizeConfig struct {
	Enabled  bool
	Priority uint64
	Author   string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging:    LoggingConfig{Level: "info"},
		Tokenizer:  TokenizerConfig{Kind: tokenize.NameWord},
		Status:     StatusConfig{Alignment: string(host.AlignLeft)},
		Capitalize: CapitalizeConfig{Enabled: true, Author: "wordcount"},
	}
}

// EditOptions returns the tags attached to capitalization edits.
func (c Config) EditOptions() host.EditOptions {
	return host.EditOptions{
		Priority: c.Capitalize.Priority,
		Author:   c.Capitalize.Author,
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs ValidationErrors

	level := strings.ToLower(c.Logging.Level)
	if !contains(logLevels, level) {
		errs = append(errs, &ValidationError{
			Path:    "logging.level",
			Message: "must be one of " + strings.Join(logLevels, ", "),
			Value:   c.Logging.Level,
			Code:    ErrCodeInvalidEnum,
		})
	}

	kind := c.Tokenizer.Kind
	if kind == "" {
		kind = tokenize.NameWord
	}
	if !contains(tokenize.Names(), kind) {
		errs = append(errs, &ValidationError{
			Path:    "tokenizer.kind",
			Message: "must be one of " + strings.Join(tokenize.Names(), ", "),
			Value:   c.Tokenizer.Kind,
			Code:    ErrCodeInvalidEnum,
		})
	}
	if kind == tokenize.NameLua && c.Tokenizer.Script == "" {
		errs = append(errs, &ValidationError{
			Path:    "tokenizer.script",
			Message: "required for the lua tokenizer",
			Value:   c.Tokenizer.Script,
			Code:    ErrCodeRequiredMissing,
		})
	}

	if _, err := host.ParseAlignment(c.Status.Alignment); err != nil {
		errs = append(errs, &ValidationError{
			Path:    "status.alignment",
			Message: "must be left or right",
			Value:   c.Status.Alignment,
			Code:    ErrCodeInvalidEnum,
		})
	}

	return errs.err()
}

// FromMap overlays a loaded configuration map onto the defaults. Unknown
// sections and settings are rejected so typos do not go unnoticed.
func FromMap(m map[string]any) (Config, error) {
	c := Default()
	d := decoder{}

	for _, section := range sortedKeys(m) {
		values, ok := m[section].(map[string]any)
		if !ok {
			d.fail(section, "must be a table", m[section], ErrCodeTypeMismatch)
			continue
		}
		for _, key := range sortedKeys(values) {
			path := section + "." + key
			v := values[key]
			switch path {
			case "logging.level":
				d.str(path, v, &c.Logging.Level)
			case "logging.file":
				d.str(path, v, &c.Logging.File)
			case "tokenizer.kind":
				d.str(path, v, &c.Tokenizer.Kind)
			case "tokenizer.script":
				d.str(path, v, &c.Tokenizer.Script)
			case "status.alignment":
				d.str(path, v, &c.Status.Alignment)
			case "capitalize.enabled":
				d.boolean(path, v, &c.Capitalize.Enabled)
			case "capitalize.priority":
				d.uint(path, v, &c.Capitalize.Priority)
			case "capitalize.author":
				d.str(path, v, &c.Capitalize.Author)
			default:
				d.fail(path, "unknown setting", v, ErrCodeUnknownSetting)
			}
		}
	}

	if err := d.errs.err(); err != nil {
		return Default(), err
	}
	return c, nil
}

// Load reads path (if not empty) and the WORDCOUNT_ environment, merges them
// over the defaults and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	return load(path, loader.NewEnvLoader(loader.DefaultEnvPrefix))
}

func load(path string, env loader.Loader) (Config, error) {
	merged := make(map[string]any)

	if path != "" {
		fl, err := loader.ForPath(path)
		if err != nil {
			return Default(), err
		}
		fileMap, err := fl.Load()
		if err != nil {
			return Default(), err
		}
		merged = loader.DeepMerge(merged, fileMap)
	}

	envMap, err := env.Load()
	if err != nil {
		return Default(), fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, envMap)

	c, err := FromMap(merged)
	if err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return Default(), err
	}
	return c, nil
}

// decoder accumulates type errors while decoding.
type decoder struct {
	errs ValidationErrors
}

func (d *decoder) fail(path, msg string, v any, code ValidationErrorCode) {
	d.errs = append(d.errs, &ValidationError{Path: path, Message: msg, Value: v, Code: code})
}

func (d *decoder) str(path string, v any, dst *string) {
	s, ok := v.(string)
	if !ok {
		d.fail(path, fmt.Sprintf("expected string, got %T", v), v, ErrCodeTypeMismatch)
		return
	}
	*dst = s
}

func (d *decoder) boolean(path string, v any, dst *bool) {
	b, ok := v.(bool)
	if !ok {
		d.fail(path, fmt.Sprintf("expected bool, got %T", v), v, ErrCodeTypeMismatch)
		return
	}
	*dst = b
}

// uint accepts the integer types produced by the TOML, YAML and env loaders.
func (d *decoder) uint(path string, v any, dst *uint64) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		*dst = x
		return
	case float64:
		if x != math.Trunc(x) {
			d.fail(path, "expected integer", v, ErrCodeTypeMismatch)
			return
		}
		n = int64(x)
	default:
		d.fail(path, fmt.Sprintf("expected integer, got %T", v), v, ErrCodeTypeMismatch)
		return
	}
	if n < 0 {
		d.fail(path, "must not be negative", v, ErrCodeTypeMismatch)
		return
	}
	*dst = uint64(n)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
