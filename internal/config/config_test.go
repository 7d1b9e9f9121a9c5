package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/electwix/coltype/internal/types"
)

func TestLoadSuccess(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "coltype.toml", `
[native]
cache_size = 64
allow_strings = true

[native.aliases]
Money = "decimal[12,2]"
Stamp = "datetime[ms, UTC]"

[database]
strict = true

[[database.override]]
name = "geometry"
dtype = "binary"

[[database.override]]
name = "money"
dtype = "decimal[19,4]"

[coercion]
strict = true
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}

	plan := result.Plan
	if plan.CacheSize != 64 || !plan.AllowStrings {
		t.Fatalf("unexpected native plan: %+v", plan)
	}
	if !plan.StrictDatabase || !plan.StrictCoercion || plan.StrictParser {
		t.Fatalf("unexpected strictness: %+v", plan)
	}
	if got := plan.Aliases["Money"]; !got.Equal(types.Decimal(12, 2)) {
		t.Fatalf("alias Money = %s", got)
	}
	if got := plan.Aliases["Stamp"]; !got.Equal(types.Datetime(types.Milliseconds, "UTC")) {
		t.Fatalf("alias Stamp = %s", got)
	}
	if got := plan.Overrides["GEOMETRY"]; !got.Equal(types.Binary) {
		t.Fatalf("override GEOMETRY = %s", got)
	}
	if got := plan.Overrides["MONEY"]; !got.Equal(types.Decimal(19, 4)) {
		t.Fatalf("override MONEY = %s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "coltype.toml", "")
	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Plan.CacheSize != DefaultCacheSize {
		t.Fatalf("CacheSize = %d, want %d", result.Plan.CacheSize, DefaultCacheSize)
	}
	if result.Plan.Aliases != nil || result.Plan.Overrides != nil {
		t.Fatalf("expected empty maps, got %+v", result.Plan)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "coltype.yaml", `
native:
  cache_size: 8
  aliases:
    Id: u32
database:
  override:
    - name: jsonb
      dtype: str
parser:
  strict: true
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	plan := result.Plan
	if plan.CacheSize != 8 || !plan.StrictParser {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if got := plan.Aliases["Id"]; !got.Equal(types.UInt32) {
		t.Fatalf("alias Id = %s", got)
	}
	if got := plan.Overrides["JSONB"]; !got.Equal(types.String) {
		t.Fatalf("override JSONB = %s", got)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"coltype.toml": FormatTOML,
		"coltype.yaml": FormatYAML,
		"conf.YML":     FormatYAML,
		"noext":        FormatTOML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "cache too large",
			config:  "[native]\ncache_size = 5000\n",
			wantErr: "native.cache_size: must be at most 4096",
		},
		{
			name:    "cache negative",
			config:  "[native]\ncache_size = -1\n",
			wantErr: "native.cache_size: must be at least 1",
		},
		{
			name:    "override without name",
			config:  "[[database.override]]\ndtype = \"str\"\n",
			wantErr: "database.override[0].name: required",
		},
		{
			name:    "override bad dtype",
			config:  "[[database.override]]\nname = \"geometry\"\ndtype = \"nope\"\n",
			wantErr: `database.override[0] "geometry"`,
		},
		{
			name:    "duplicate override",
			config:  "[[database.override]]\nname = \"geo\"\ndtype = \"str\"\n[[database.override]]\nname = \"GEO\"\ndtype = \"binary\"\n",
			wantErr: `duplicate name "GEO"`,
		},
		{
			name:    "alias malformed parameters",
			config:  "[native.aliases]\nWhen = \"datetime[xs]\"\n",
			wantErr: "native.aliases.When",
		},
		{
			name:    "invalid toml",
			config:  "[native\n",
			wantErr: "coltype.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			configPath := writeConfig(t, t.TempDir(), "coltype.toml", tt.config)
			_, err := Load(configPath, LoadOptions{})
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadStrictUnknownKeys(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "coltype.toml", `
extra = true

[native]
cache = 4
`)

	_, err := Load(configPath, LoadOptions{Strict: true})
	if err == nil {
		t.Fatalf("expected error for unknown keys in strict mode")
	}
	if !strings.Contains(err.Error(), "unknown configuration keys: extra, native.cache") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNonStrictUnknownKeysWarning(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "coltype.toml", `
[native.aliases]
anything_goes = "i8"

[[database.override]]
name = "a"
dtype = "str"
comment = "one"

[[database.override]]
name = "b"
dtype = "str"
comment = "two"
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	if !strings.HasSuffix(result.Warnings[0], "unknown configuration keys: database.override.comment") {
		t.Fatalf("unexpected warning: %q", result.Warnings[0])
	}
	if len(result.Plan.Overrides) != 2 {
		t.Fatalf("expected overrides to load, got %+v", result.Plan.Overrides)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "read ") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode("inline", nil, LoadOptions{Format: "ini"})
	if err == nil || !strings.Contains(err.Error(), `unsupported config format "ini"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeConfig(tb testing.TB, dir, name, contents string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		tb.Fatalf("write config: %v", err)
	}
	return path
}
