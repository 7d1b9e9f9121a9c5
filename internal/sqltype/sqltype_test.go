package sqltype

import (
	"errors"
	"testing"

	"github.com/electwix/coltype/internal/types"
)

func TestFromTypeName(t *testing.T) {
	tests := []struct {
		name string
		want types.DataType
	}{
		// arrays
		{"INTEGER[]", types.List(types.Int64)},
		{"VARCHAR(64)[]", types.List(types.String)},
		{"ARRAY<INT64>", types.List(types.Int64)},
		{"ARRAY OF INTEGER", types.List(types.Int64)},
		{"LIST[FLOAT]", types.List(types.Float64)},
		{"ARRAY(SMALLINT)", types.List(types.Int16)},
		{"INTEGER[][]", types.List(types.List(types.Int64))},
		{"ARRAY<LIST<INT>>", types.List(types.List(types.Int64))},
		// floats
		{"FLOAT", types.Float64},
		{"FLOAT4", types.Float32},
		{"FLOAT(32)", types.Float32},
		{"FLOAT32", types.Float32},
		{"DOUBLE PRECISION", types.Float64},
		{"REAL", types.Float64},
		{"FloatType", types.Float64},
		// integers
		{"TINYINT UNSIGNED", types.UInt8},
		{"TINYINT", types.Int8},
		{"SMALLINT", types.Int16},
		{"INT2", types.Int16},
		{"INT4", types.Int32},
		{"INT8", types.Int64},
		{"MEDIUMINT", types.Int32},
		{"MEDIUMINT UNSIGNED", types.UInt32},
		{"BIGINT", types.Int64},
		{"BIGSERIAL", types.Int64},
		{"SERIAL", types.Int32},
		{"SMALLSERIAL", types.Int16},
		{"INTEGER", types.Int64},
		{"IntegerType", types.Int64},
		{"INT(11)", types.Int64},
		{"INT(16)", types.Int16},
		{"UINT16", types.UInt16},
		{"UINT8", types.UInt8},
		{"USMALLINT", types.UInt16},
		{"ROWID", types.UInt64},
		{"UNSIGNED BIG INT", types.UInt64},
		// decimals
		{"DECIMAL(10,2)", types.Decimal(10, 2)},
		{"DECIMAL(38, 9)", types.Decimal(38, 9)},
		{"DECIMAL", types.Base(types.KindDecimal)},
		{"NUMERIC(12,4)", types.Decimal(12, 4)},
		{"NUMERIC", types.Float64},
		{"DECIMAL(10,2) UNSIGNED", types.Decimal(10, 2)},
		// strings
		{"VARCHAR(255)", types.String},
		{"NVARCHAR(MAX)", types.String},
		{"TEXT", types.String},
		{"CHAR(3)", types.String},
		{"STRING", types.String},
		{"UTF8", types.String},
		{"LONG_UTF8", types.String},
		// binary, boolean
		{"BYTEA", types.Binary},
		{"BLOB", types.Binary},
		{"BOOLEAN", types.Boolean},
		{"BOOL", types.Boolean},
		// temporal
		{"TIMESTAMP", types.Datetime(types.Microseconds, "")},
		{"TIMESTAMP WITHOUT TIME ZONE", types.Datetime(types.Microseconds, "")},
		{"TIMESTAMP(3)", types.Datetime(types.Milliseconds, "")},
		{"TIMESTAMP(7)", types.Datetime(types.Nanoseconds, "")},
		{"DATETIME(0)", types.Datetime(types.Milliseconds, "")},
		{"TIMESTAMP[NS]", types.Datetime(types.Nanoseconds, "")},
		{"TIMESTAMP[S]", types.Datetime(types.Milliseconds, "")},
		{"DATETIME2", types.Datetime(types.Microseconds, "")},
		{"INTERVAL", types.Base(types.KindDuration)},
		{"INTERVAL64", types.Base(types.KindDuration)},
		{"TIMEDELTA", types.Base(types.KindDuration)},
		{"DATE", types.Date},
		{"DATE32", types.Date},
		{"TIME", types.Time},
		{"TIME64", types.Time},
		{"date", types.Date},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromTypeName(tt.name)
			if !ok {
				t.Fatalf("FromTypeName(%q) no match", tt.name)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FromTypeName(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestFromTypeNameNoMatch(t *testing.T) {
	names := []string{
		"TIMESTAMP WITH TIME ZONE",
		"TIMESTAMPTZ",
		"DATETIME[D]",
		"GEOMETRY",
		"JSON",
		"ARRAY",
		"[]",
		"LIST<GEOMETRY>",
		"",
		"   ",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if got, ok := FromTypeName(name); ok {
				t.Errorf("FromTypeName(%q) = %s, want no match", name, got)
			}
		})
	}
}

func TestFromTypeNameStrict(t *testing.T) {
	_, err := FromTypeNameStrict("GEOMETRY")
	var ambiguous *types.AmbiguousTypeNameError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("FromTypeNameStrict() error = %v, want AmbiguousTypeNameError", err)
	}
	if ambiguous.Name != "GEOMETRY" {
		t.Errorf("Name = %q, want GEOMETRY", ambiguous.Name)
	}
	if !errors.Is(err, types.ErrAmbiguousTypeName) {
		t.Error("expected ErrAmbiguousTypeName")
	}

	got, err := FromTypeNameStrict("BIGINT")
	if err != nil || !got.Equal(types.Int64) {
		t.Errorf("FromTypeNameStrict(BIGINT) = %s, %v", got, err)
	}
}

func TestClassifyRule(t *testing.T) {
	tests := []struct {
		name string
		want Rule
	}{
		{"NUMERIC", RuleDecimal},
		{"INTEGER[]", RuleArray},
		{"TIMESTAMPTZ", RuleDatetime},
		{"GEOMETRY", RuleNone},
		{"INTERVAL", RuleDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rule, _ := Classify(tt.name)
			if rule != tt.want {
				t.Errorf("Classify(%q) rule = %s, want %s", tt.name, rule, tt.want)
			}
		})
	}
}

func TestClassifierOverrideLayers(t *testing.T) {
	preset := map[string]types.DataType{"MONEY": types.Decimal(19, 2), "OID": types.UInt32}
	explicit := map[string]types.DataType{" money ": types.Float64}

	// map iteration order must not decide the winner
	for range 20 {
		c := NewClassifier(preset, explicit)
		if got, _, _ := c.Classify("MONEY"); !got.Equal(types.Float64) {
			t.Fatalf("Classify(MONEY) = %s, want Float64", got)
		}
		if got, _, _ := c.Classify("oid"); !got.Equal(types.UInt32) {
			t.Fatalf("Classify(oid) = %s, want UInt32", got)
		}
		if c.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", c.Len())
		}
	}
}

func TestClassifierOverrides(t *testing.T) {
	c := NewClassifier(map[string]types.DataType{
		"geometry": types.Binary,
		"JSONB":    types.String,
		"INT":      types.Int32,
	})

	tests := []struct {
		name string
		want types.DataType
		rule Rule
	}{
		{"GEOMETRY", types.Binary, RuleOverride},
		{"jsonb", types.String, RuleOverride},
		{"INT(11)", types.Int32, RuleOverride},
		{"BIGINT", types.Int64, RuleInteger},
		{"GEOMETRY[]", types.List(types.Binary), RuleArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule, ok := c.Classify(tt.name)
			if !ok {
				t.Fatalf("Classify(%q) no match", tt.name)
			}
			if !got.Equal(tt.want) || rule != tt.rule {
				t.Errorf("Classify(%q) = %s (%s), want %s (%s)", tt.name, got, rule, tt.want, tt.rule)
			}
		})
	}
}

func TestTimeUnitFromPrecision(t *testing.T) {
	tests := []struct {
		in     string
		want   types.TimeUnit
		wantOK bool
	}{
		{"", "", false},
		{"0", types.Milliseconds, true},
		{"1", types.Milliseconds, true},
		{"3", types.Milliseconds, true},
		{"4", types.Microseconds, true},
		{"6", types.Microseconds, true},
		{"7", types.Nanoseconds, true},
		{"9", types.Nanoseconds, true},
		{"12", types.Nanoseconds, true},
		{"s", types.Milliseconds, true},
		{"MS", types.Milliseconds, true},
		{"us", types.Microseconds, true},
		{"NS", types.Nanoseconds, true},
		{"fortnight", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := TimeUnitFromPrecision(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TimeUnitFromPrecision(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRuleString(t *testing.T) {
	if RuleDatetime.String() != "datetime" || Rule(99).String() != "none" {
		t.Error("unexpected rule names")
	}
}
