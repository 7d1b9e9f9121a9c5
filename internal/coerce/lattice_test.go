package coerce

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/electwix/coltype/internal/types"
)

func TestInferValueType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  types.DataType
	}{
		{"nil", nil, types.Null},
		{"int", 1, types.Int64},
		{"int16", int16(1), types.Int16},
		{"uint", uint(1), types.UInt64},
		{"float", 1.5, types.Float64},
		{"bool", true, types.Boolean},
		{"string", "a", types.String},
		{"bytes", []byte("a"), types.Binary},
		{"date", day, types.Date},
		{"time", noon, types.Time},
		{"datetime", midnight, us},
		{"duration", time.Second, types.Duration(types.Microseconds)},
		{"decimal", decimal.RequireFromString("1.25"), types.DecimalOpt(nil, ptr[uint8](2))},
		{"integral decimal", decimal.NewFromInt(3), types.DecimalOpt(nil, ptr[uint8](0))},
		{"list", []any{1, 2.5}, types.List(types.Float64)},
		{"empty list", []any{}, types.List(types.Null)},
		{"typed slice", []string{"a"}, types.List(types.String)},
		{"map", map[string]any{"b": 1, "a": "x"}, types.Struct(types.NewField("a", types.String), types.NewField("b", types.Int64))},
		{"struct value", struct{ A int }{1}, types.Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, InferValueType(tt.value)); diff != "" {
				t.Errorf("InferValueType(%#v) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}

func TestSupertype(t *testing.T) {
	tests := []struct {
		a, b types.DataType
		want types.DataType
	}{
		{types.Boolean, types.Int64, types.Int64},
		{types.Boolean, types.Float32, types.Float32},
		{types.Int8, types.Int32, types.Int32},
		{types.UInt8, types.UInt16, types.UInt16},
		{types.Int8, types.UInt8, types.Int16},
		{types.Int64, types.UInt32, types.Int64},
		{types.Int32, types.UInt64, types.Float64},
		{types.Int16, types.Float32, types.Float32},
		{types.Int64, types.Float32, types.Float64},
		{types.Float32, types.Float64, types.Float64},
		{types.Int64, types.Decimal(10, 2), types.Decimal(10, 2)},
		{types.Decimal(10, 2), types.Decimal(8, 4), types.Decimal(12, 4)},
		{types.Float64, types.Decimal(10, 2), types.Float64},
		{types.Date, us, us},
		{us, types.Datetime(types.Nanoseconds, ""), types.Datetime(types.Nanoseconds, "")},
		{us, types.Datetime(types.Microseconds, "UTC"), types.Object},
		{types.Duration(types.Milliseconds), types.Duration(types.Microseconds), types.Duration(types.Microseconds)},
		{types.Date, types.Time, types.Object},
		{types.Int64, types.String, types.String},
		{types.String, types.Date, types.String},
		{types.Boolean, types.String, types.String},
		{types.Categorical, types.String, types.String},
		{types.Binary, types.String, types.Object},
		{types.Binary, types.Int64, types.Object},
		{types.Null, types.Date, types.Date},
		{types.Object, types.Int64, types.Object},
		{types.List(types.Int64), types.List(types.Float64), types.List(types.Float64)},
		{types.List(types.Null), types.List(types.String), types.List(types.String)},
		{types.Array(types.Int8, 2), types.Array(types.Int16, 2), types.Array(types.Int16, 2)},
		{types.Array(types.Int8, 2), types.Array(types.Int8, 3), types.List(types.Int8)},
		{types.List(types.Int64), types.Int64, types.Object},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			if got := Supertype(tt.a, tt.b); !got.Equal(tt.want) {
				t.Errorf("Supertype(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
			if got := Supertype(tt.b, tt.a); !got.Equal(tt.want) {
				t.Errorf("Supertype(%s, %s) = %s, want %s", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSupertypeStruct(t *testing.T) {
	a := types.Struct(types.NewField("a", types.Int64))
	b := types.Struct(types.NewField("b", types.String), types.NewField("a", types.Float64))
	want := types.Struct(types.NewField("a", types.Float64), types.NewField("b", types.String))
	if got := Supertype(a, b); !got.Equal(want) {
		t.Errorf("Supertype() = %s, want %s", got, want)
	}
}

func TestCommonType(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   types.DataType
	}{
		{"empty", nil, types.Null},
		{"all null", []any{nil, nil}, types.Null},
		{"bool and int", []any{true, 2}, types.Int64},
		{"int and float", []any{1, nil, 2.5}, types.Float64},
		{"float and string", []any{2.0, "c"}, types.String},
		{"date and datetime", []any{day, midnight}, us},
		{"mixed", []any{1, 2.0, []byte("d"), day}, types.Object},
		{"nested lists", []any{[]any{1}, []any{2.5}}, types.List(types.Float64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommonType(tt.values, false)
			if err != nil {
				t.Fatalf("CommonType() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("CommonType(%v) = %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestCommonTypeStrict(t *testing.T) {
	got, err := CommonType([]any{1, nil, 2}, true)
	if err != nil || !got.Equal(types.Int64) {
		t.Errorf("CommonType() = %s, %v, want Int64", got, err)
	}

	_, err = CommonType([]any{1, "a"}, true)
	var schemaErr *types.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("CommonType() error = %v, want SchemaError", err)
	}
	if schemaErr.Value != "a" || !schemaErr.Target.Equal(types.Int64) {
		t.Errorf("SchemaError = %+v", schemaErr)
	}
}

func TestCommonTypeStrictWidens(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   types.DataType
	}{
		{"empty list", []any{[]any{1, 2}, []any{}}, types.List(types.Int64)},
		{"null only list", []any{[]any{nil}, []any{3}}, types.List(types.Int64)},
		{"nested empty list", []any{[]any{[]any{}}, []any{[]any{1}}}, types.List(types.List(types.Int64))},
		{"decimal scales", []any{decimal.RequireFromString("1.5"), decimal.RequireFromString("2.25")}, types.DecimalOpt(nil, ptr[uint8](2))},
		{"null struct field", []any{map[string]any{"a": nil}, map[string]any{"a": 1}}, types.Struct(types.NewField("a", types.Int64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommonType(tt.values, true)
			if err != nil {
				t.Fatalf("CommonType() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("CommonType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCommonTypeStrictRejectsMixedFamilies(t *testing.T) {
	tests := []struct {
		name   string
		values []any
	}{
		{"int and float", []any{1, 2.5}},
		{"list element kinds", []any{[]any{1}, []any{"a"}}},
		{"struct field names", []any{map[string]any{"a": 1}, map[string]any{"b": 1}}},
		{"list and scalar", []any{[]any{1}, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CommonType(tt.values, true); !errors.Is(err, types.ErrSchema) {
				t.Fatalf("CommonType() error = %v, want ErrSchema", err)
			}
		})
	}
}

func TestSequenceStrictEmptyList(t *testing.T) {
	got, dt, err := Sequence([]any{[]any{1, 2}, []any{}}, nil, true)
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}
	if !dt.Equal(types.List(types.Int64)) {
		t.Errorf("Sequence() type = %s, want List(Int64)", dt)
	}
	want := []any{[]any{int64(1), int64(2)}, []any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence(t *testing.T) {
	mixed := []any{1, 2.0, []byte("d"), day}
	tests := []struct {
		name     string
		values   []any
		target   *types.DataType
		want     []any
		wantType types.DataType
	}{
		{"object keeps values", mixed, nil, mixed, types.Object},
		{"bool and int", []any{true, 2}, nil, []any{int64(1), int64(2)}, types.Int64},
		{"float and string", []any{2.0, "c"}, nil, []any{"2.0", "c"}, types.String},
		{"date and datetime", []any{day, nil}, nil, []any{day, nil}, types.Date},
		{"explicit target nulls bad values", []any{"1", "x", 3.7}, ptr(types.Int64), []any{int64(1), nil, int64(3)}, types.Int64},
		{"explicit object", mixed, ptr(types.Object), mixed, types.Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dt, err := Sequence(tt.values, tt.target, false)
			if err != nil {
				t.Fatalf("Sequence() error = %v", err)
			}
			if !dt.Equal(tt.wantType) {
				t.Errorf("Sequence() type = %s, want %s", dt, tt.wantType)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequenceStrict(t *testing.T) {
	_, _, err := Sequence([]any{"1", "xyz"}, ptr(types.Int64), true)
	if !errors.Is(err, types.ErrSchema) {
		t.Fatalf("Sequence() error = %v, want ErrSchema", err)
	}

	got, dt, err := Policy{Strict: true}.Sequence([]any{int32(1), int16(2)}, ptr(types.Int64))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(2)}, got); diff != "" || !dt.Equal(types.Int64) {
		t.Errorf("Policy.Sequence() = %v (%s)", got, dt)
	}
}

func TestPolicy(t *testing.T) {
	lenient := Policy{}
	if got, err := lenient.Coerce("xyz", types.Int64); err != nil || got != nil {
		t.Errorf("lenient Coerce = %v, %v", got, err)
	}
	strict := Policy{Strict: true}
	if _, err := strict.Coerce("xyz", types.Int64); !errors.Is(err, types.ErrSchema) {
		t.Errorf("strict Coerce error = %v", err)
	}
	if dt, err := lenient.CommonType([]any{true, 1.5}); err != nil || !dt.Equal(types.Float64) {
		t.Errorf("CommonType = %s, %v", dt, err)
	}
}
