// Package config loads and validates the coltype engine configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/electwix/coltype/internal/parser"
	"github.com/electwix/coltype/internal/types"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "coltype.toml"

// DefaultCacheSize bounds the native inference memo when cache_size is unset.
const DefaultCacheSize = 16

// Format identifies the encoding of a configuration file.
type Format string

const (
	// FormatTOML decodes with pelletier/go-toml.
	FormatTOML Format = "toml"
	// FormatYAML decodes with gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension. Anything that is not
// .yaml or .yml is read as TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// NativeConfig tunes native-type inference.
type NativeConfig struct {
	CacheSize    int               `toml:"cache_size" yaml:"cache_size" validate:"omitempty,min=1,max=4096"`
	AllowStrings bool              `toml:"allow_strings" yaml:"allow_strings"`
	Aliases      map[string]string `toml:"aliases" yaml:"aliases" validate:"dive,keys,required,endkeys,required"`
}

// TypeOverride pins a database type name to a logical type.
type TypeOverride struct {
	Name  string `toml:"name" yaml:"name" validate:"required"`
	DType string `toml:"dtype" yaml:"dtype" validate:"required"`
}

// DatabaseConfig tunes database type-name inference.
type DatabaseConfig struct {
	Strict    bool           `toml:"strict" yaml:"strict"`
	Overrides []TypeOverride `toml:"override" yaml:"override" validate:"dive"`
}

// CoercionConfig selects the value coercion policy.
type CoercionConfig struct {
	Strict bool `toml:"strict" yaml:"strict"`
}

// ParserConfig tunes the short-text parser.
type ParserConfig struct {
	Strict bool `toml:"strict" yaml:"strict"`
}

// Config mirrors the coltype configuration file.
type Config struct {
	Native   NativeConfig   `toml:"native" yaml:"native"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Coercion CoercionConfig `toml:"coercion" yaml:"coercion"`
	Parser   ParserConfig   `toml:"parser" yaml:"parser"`
}

// Plan is the fully-resolved configuration the engine is built from. Type
// text from the file has already been parsed.
type Plan struct {
	CacheSize      int
	AllowStrings   bool
	Aliases        map[string]types.DataType
	Overrides      map[string]types.DataType
	StrictDatabase bool
	StrictCoercion bool
	StrictParser   bool
}

// DefaultPlan is the plan used when no configuration file is present.
func DefaultPlan() Plan {
	return Plan{CacheSize: DefaultCacheSize}
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict turns unknown keys into errors.
	Strict bool
	// Format overrides the extension based format detection.
	Format Format
}

// Result wraps a loaded plan alongside any non-fatal warnings.
type Result struct {
	Plan     Plan
	Warnings []string
}

// Load reads, validates and resolves a configuration file.
func Load(path string, opts LoadOptions) (Result, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	if opts.Format == "" {
		opts.Format = FormatFor(path)
	}
	return Decode(path, data, opts)
}

// Decode is Load over an in-memory document; name prefixes messages.
func Decode(name string, data []byte, opts LoadOptions) (Result, error) {
	var res Result

	format := opts.Format
	if format == "" {
		format = FormatTOML
	}

	var cfg Config
	var raw map[string]any
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return res, fmt.Errorf("%s: unsupported config format %q", name, format)
	}

	unknown := collectUnknownKeys("", raw, knownKeys)
	if len(unknown) > 0 {
		slices.Sort(unknown)
		unknown = slices.Compact(unknown)
		message := fmt.Sprintf("%s: unknown configuration keys: %s", name, strings.Join(unknown, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	if err := validate.Struct(cfg); err != nil {
		return res, fmt.Errorf("%s: %w", name, describeValidation(err))
	}

	plan, err := resolve(cfg)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	res.Plan = plan
	return res, nil
}

func resolve(cfg Config) (Plan, error) {
	plan := DefaultPlan()
	if cfg.Native.CacheSize > 0 {
		plan.CacheSize = cfg.Native.CacheSize
	}
	plan.AllowStrings = cfg.Native.AllowStrings
	plan.StrictDatabase = cfg.Database.Strict
	plan.StrictCoercion = cfg.Coercion.Strict
	plan.StrictParser = cfg.Parser.Strict

	if len(cfg.Native.Aliases) > 0 {
		plan.Aliases = make(map[string]types.DataType, len(cfg.Native.Aliases))
		for alias, text := range cfg.Native.Aliases {
			dt, err := parser.ParseStrict(text)
			if err != nil {
				return Plan{}, fmt.Errorf("native.aliases.%s: %w", alias, err)
			}
			plan.Aliases[alias] = dt
		}
	}

	if len(cfg.Database.Overrides) > 0 {
		plan.Overrides = make(map[string]types.DataType, len(cfg.Database.Overrides))
		for n, o := range cfg.Database.Overrides {
			dt, err := parser.ParseStrict(o.DType)
			if err != nil {
				return Plan{}, fmt.Errorf("database.override[%d] %q: %w", n, o.Name, err)
			}
			key := strings.ToUpper(strings.TrimSpace(o.Name))
			if _, dup := plan.Overrides[key]; dup {
				return Plan{}, fmt.Errorf("database.override[%d]: duplicate name %q", n, o.Name)
			}
			plan.Overrides[key] = dt
		}
	}
	return plan, nil
}

// keySet describes the accepted keys of a table. A nil entry means the
// value is a leaf; free marks tables whose keys are user defined.
type keySet struct {
	children map[string]*keySet
	free     bool
}

var knownKeys = &keySet{children: map[string]*keySet{
	"native": {children: map[string]*keySet{
		"cache_size":    nil,
		"allow_strings": nil,
		"aliases":       {free: true},
	}},
	"database": {children: map[string]*keySet{
		"strict": nil,
		"override": {children: map[string]*keySet{
			"name":  nil,
			"dtype": nil,
		}},
	}},
	"coercion": {children: map[string]*keySet{"strict": nil}},
	"parser":   {children: map[string]*keySet{"strict": nil}},
}}

func collectUnknownKeys(prefix string, raw map[string]any, known *keySet) []string {
	if known == nil || known.free {
		return nil
	}
	unknown := make([]string, 0)
	for key, value := range raw {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		child, ok := known.children[key]
		if !ok {
			unknown = append(unknown, path)
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			unknown = append(unknown, collectUnknownKeys(path, v, child)...)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					unknown = append(unknown, collectUnknownKeys(path, m, child)...)
				}
			}
		}
	}
	return unknown
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// describeValidation flattens validator errors into one message per field,
// named by their dotted config path.
func describeValidation(err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		field := ve.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		messages = append(messages, field+": "+formatValidationError(ve))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
