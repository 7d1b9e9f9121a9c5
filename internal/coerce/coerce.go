package coerce

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/electwix/coltype/internal/types"
)

var epoch = civil.Date{Year: 1970, Month: time.January, Day: 1}

// Coerce converts value into the representation of target. In lenient mode
// a value with no reasonable conversion becomes nil and the error is always
// nil. In strict mode the value must already belong to target's family and
// convert without loss, otherwise an *types.SchemaError is returned. Nil is
// accepted by every target.
func Coerce(value any, target types.DataType, strict bool) (any, error) {
	switch target.Kind() {
	case types.KindObject, types.KindUnknown:
		return value, nil
	}
	v := canonical(value)
	if v == nil {
		return nil, nil
	}
	out := convert(v, target)
	if strict && (out == nil || !accepts(v, out, target)) {
		return nil, &types.SchemaError{Target: target, Value: value}
	}
	return out, nil
}

// Sequence coerces values into one column. A nil target is inferred with
// CommonType. Lenient mode nulls individual values and never fails; strict
// mode stops at the first rejected value.
func Sequence(values []any, target *types.DataType, strict bool) ([]any, types.DataType, error) {
	var dt types.DataType
	if target != nil {
		dt = *target
	} else {
		var err error
		if dt, err = CommonType(values, strict); err != nil {
			return nil, types.Unknown, err
		}
	}
	out := make([]any, len(values))
	for i, v := range values {
		c, err := Coerce(v, dt, strict)
		if err != nil {
			return nil, dt, err
		}
		out[i] = c
	}
	return out, dt, nil
}

// Policy binds a strictness mode to the package functions.
type Policy struct {
	Strict bool
}

// Coerce converts one value under the policy.
func (p Policy) Coerce(value any, target types.DataType) (any, error) {
	return Coerce(value, target, p.Strict)
}

// Sequence converts a column of values under the policy.
func (p Policy) Sequence(values []any, target *types.DataType) ([]any, types.DataType, error) {
	return Sequence(values, target, p.Strict)
}

// CommonType infers a column type under the policy.
func (p Policy) CommonType(values []any) (types.DataType, error) {
	return CommonType(values, p.Strict)
}

func convert(v any, target types.DataType) any {
	switch {
	case target.IsInteger():
		return toInteger(v, target.Kind())
	case target.IsFloat():
		return toFloat(v, target.Kind())
	}
	switch target.Kind() {
	case types.KindBoolean:
		return toBool(v)
	case types.KindString, types.KindCategorical:
		return toString(v)
	case types.KindBinary:
		return toBinary(v)
	case types.KindDecimal:
		return toDecimal(v, target)
	case types.KindDate:
		return toDate(v)
	case types.KindTime:
		return toTime(v)
	case types.KindDatetime:
		return toDatetime(v, target)
	case types.KindDuration:
		return toDuration(v, target.TimeUnit())
	case types.KindList, types.KindArray:
		return toList(v, target)
	case types.KindStruct:
		return toStruct(v, target)
	}
	return nil
}

// accepts reports whether strict mode admits v as out for target: the
// natural type must match and the conversion must not lose information.
func accepts(v, out any, target types.DataType) bool {
	switch {
	case target.IsInteger():
		return isInteger(v)
	case target.IsFloat():
		return floatAccepts(v, out)
	}
	switch target.Kind() {
	case types.KindBoolean:
		_, ok := v.(bool)
		return ok
	case types.KindString, types.KindCategorical:
		_, ok := v.(string)
		return ok
	case types.KindBinary:
		_, ok := v.([]byte)
		return ok
	case types.KindDecimal:
		return decimalAccepts(v, out)
	case types.KindDate:
		_, ok := v.(civil.Date)
		return ok
	case types.KindTime:
		_, ok := v.(civil.Time)
		return ok
	case types.KindDatetime:
		t, ok := v.(time.Time)
		return ok && t.Equal(out.(time.Time))
	case types.KindDuration:
		d, ok := v.(time.Duration)
		return ok && d == out.(time.Duration)
	case types.KindList, types.KindArray:
		return listAccepts(v, target)
	case types.KindStruct:
		return structAccepts(v, target)
	}
	return false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func floatAccepts(v, out any) bool {
	switch x := v.(type) {
	case float64:
		if f, ok := out.(float32); ok {
			return float64(f) == x || math.IsNaN(x)
		}
		return true
	case float32:
		return true
	}
	return false
}

func decimalAccepts(v, out any) bool {
	x, ok := v.(decimal.Decimal)
	if !ok {
		return false
	}
	d, ok := out.(decimal.Decimal)
	return ok && x.Equal(d)
}

func listAccepts(v any, target types.DataType) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	inner, _ := target.Inner()
	if inner.Kind() == types.KindNull {
		return true
	}
	for _, item := range items {
		if _, err := Coerce(item, inner, true); err != nil {
			return false
		}
	}
	return true
}

func structAccepts(v any, target types.DataType) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	known := make(map[string]types.DataType, len(target.Fields()))
	for _, f := range target.Fields() {
		known[f.Name] = f.DType
	}
	for k, item := range m {
		dt, ok := known[k]
		if !ok {
			return false
		}
		if _, err := Coerce(item, dt, true); err != nil {
			return false
		}
	}
	return true
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

// integral reads v as an integer. Floats and decimals truncate, booleans
// are 0 or 1 and strings must parse. isBig reports a uint64 beyond int64.
func integral(v any) (n int64, u uint64, isBig, ok bool) {
	if i, ok := asInt64(v); ok {
		return i, 0, false, true
	}
	switch x := v.(type) {
	case uint64:
		return 0, x, true, true
	case bool:
		if x {
			return 1, 0, false, true
		}
		return 0, 0, false, true
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case decimal.Decimal:
		t := x.Truncate(0)
		if !t.BigInt().IsInt64() {
			if t.Sign() > 0 && t.BigInt().IsUint64() {
				return 0, t.BigInt().Uint64(), true, true
			}
			return 0, 0, false, false
		}
		return t.IntPart(), 0, false, true
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, 0, false, true
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return 0, u, true, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromFloat(f)
		}
	}
	return 0, 0, false, false
}

func fromFloat(f float64) (int64, uint64, bool, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, 0, false, false
	case f >= -(1<<63) && f < 1<<63:
		return int64(f), 0, false, true
	case f >= 0 && f < 1<<64:
		return 0, uint64(f), true, true
	}
	return 0, 0, false, false
}

func toInteger(v any, kind types.Kind) any {
	n, u, isBig, ok := integral(v)
	if !ok {
		return nil
	}
	if isBig {
		if kind == types.KindUInt64 {
			return u
		}
		return nil
	}
	switch kind {
	case types.KindInt8:
		if n >= math.MinInt8 && n <= math.MaxInt8 {
			return int8(n)
		}
	case types.KindInt16:
		if n >= math.MinInt16 && n <= math.MaxInt16 {
			return int16(n)
		}
	case types.KindInt32:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	case types.KindInt64:
		return n
	case types.KindUInt8:
		if n >= 0 && n <= math.MaxUint8 {
			return uint8(n)
		}
	case types.KindUInt16:
		if n >= 0 && n <= math.MaxUint16 {
			return uint16(n)
		}
	case types.KindUInt32:
		if n >= 0 && n <= math.MaxUint32 {
			return uint32(n)
		}
	case types.KindUInt64:
		if n >= 0 {
			return uint64(n)
		}
	}
	return nil
}

func toFloat(v any, kind types.Kind) any {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case decimal.Decimal:
		f = x.InexactFloat64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		i, ok := asInt64(v)
		if !ok {
			return nil
		}
		f = float64(i)
	}
	if kind == types.KindFloat32 {
		return float32(f)
	}
	return f
}

func toBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case float32:
		return x != 0
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x != 0
	case uint64:
		return x != 0
	case decimal.Decimal:
		return !x.IsZero()
	}
	if i, ok := asInt64(v); ok {
		return i != 0
	}
	return nil
}

func toString(v any) any {
	switch x := v.(type) {
	case []byte:
		if !utf8.Valid(x) {
			return nil
		}
		return string(x)
	}
	return render(v)
}

// render is the canonical textual form of a value.
func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return renderFloat(float64(x), 32)
	case float64:
		return renderFloat(x, 64)
	case uint64:
		return strconv.FormatUint(x, 10)
	case []byte:
		return string(x)
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case time.Time:
		s := x.Format("2006-01-02 15:04:05.999999999")
		if x.Location() != time.UTC {
			s += x.Format("-07:00")
		}
		return s
	case time.Duration:
		return x.String()
	case decimal.Decimal:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = render(canonical(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprint(v)
}

// renderFloat always shows a fractional part for finite integral values.
func renderFloat(f float64, size int) string {
	s := strconv.FormatFloat(f, 'g', -1, size)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strings.ToLower(strings.TrimPrefix(s, "+"))
	}
	if !strings.ContainsAny(s, ".en") {
		s += ".0"
	}
	return s
}

func toBinary(v any) any {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...)
	case string:
		return []byte(x)
	}
	return nil
}

func toDecimal(v any, target types.DataType) any {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case uint64:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
		d = decimal.NewFromFloat32(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		d = decimal.NewFromFloat(x)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		i, ok := asInt64(v)
		if !ok {
			return nil
		}
		d = decimal.NewFromInt(i)
	}
	scale, hasScale := target.Scale()
	if hasScale {
		d = d.Round(int32(scale))
	}
	if precision, ok := target.Precision(); ok && !d.IsZero() {
		intDigits := len(d.Abs().Truncate(0).String())
		if d.Abs().LessThan(decimal.NewFromInt(1)) {
			intDigits = 0
		}
		if intDigits+int(scale) > int(precision) {
			return nil
		}
	}
	return d
}

// ticks reads v as a raw tick count.
func ticks(v any) (int64, bool) {
	switch v.(type) {
	case bool, string, decimal.Decimal:
		return 0, false
	}
	n, _, isBig, ok := integral(v)
	return n, ok && !isBig
}

func toDate(v any) any {
	switch x := v.(type) {
	case civil.Date:
		return x
	case time.Time:
		return civil.DateOf(x)
	case string:
		t, err := dateparse.ParseIn(strings.TrimSpace(x), time.UTC)
		if err != nil {
			return nil
		}
		return civil.DateOf(t)
	}
	days, ok := ticks(v)
	if !ok || days < math.MinInt32 || days > math.MaxInt32 {
		return nil
	}
	return epoch.AddDays(int(days))
}

func toTime(v any) any {
	switch x := v.(type) {
	case civil.Time:
		return x
	case time.Time:
		return civil.TimeOf(x)
	case string:
		s := strings.TrimSpace(x)
		if t, err := civil.ParseTime(s); err == nil {
			return t
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return nil
		}
		return civil.TimeOf(t)
	case time.Duration, civil.Date:
		return nil
	}
	ns, ok := ticks(v)
	if !ok || ns < 0 || ns >= int64(24*time.Hour) {
		return nil
	}
	return civil.TimeOf(time.Unix(0, ns).UTC())
}

func toDatetime(v any, target types.DataType) any {
	unit := target.TimeUnit()
	loc := time.UTC
	if zone := target.TimeZone(); zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil
		}
		loc = l
	}

	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case civil.Date:
		t = x.In(loc)
	case string:
		parsed, err := dateparse.ParseIn(strings.TrimSpace(x), loc)
		if err != nil {
			return nil
		}
		t = parsed
	case civil.Time, time.Duration:
		return nil
	default:
		n, ok := ticks(v)
		if !ok {
			return nil
		}
		switch unit {
		case types.Milliseconds:
			t = time.UnixMilli(n)
		case types.Nanoseconds:
			t = time.Unix(0, n)
		default:
			t = time.UnixMicro(n)
		}
	}
	return t.In(loc).Truncate(unit.Tick())
}

func toDuration(v any, unit types.TimeUnit) any {
	tick := unit.Tick()
	switch x := v.(type) {
	case time.Duration:
		return x.Truncate(tick)
	case civil.Time:
		d := time.Duration(x.Hour)*time.Hour + time.Duration(x.Minute)*time.Minute +
			time.Duration(x.Second)*time.Second + time.Duration(x.Nanosecond)
		return d.Truncate(tick)
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		return d.Truncate(tick)
	case time.Time, civil.Date:
		return nil
	}
	n, ok := ticks(v)
	if !ok {
		return nil
	}
	if n > math.MaxInt64/int64(tick) || n < math.MinInt64/int64(tick) {
		return nil
	}
	return time.Duration(n) * tick
}

func toList(v any, target types.DataType) any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	if target.Kind() == types.KindArray && len(items) != target.Size() {
		return nil
	}
	inner, _ := target.Inner()
	out := make([]any, len(items))
	for i, item := range items {
		if inner.Kind() == types.KindNull {
			out[i] = item
			continue
		}
		out[i], _ = Coerce(item, inner, false)
	}
	return out
}

func toStruct(v any, target types.DataType) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(target.Fields()))
	for _, f := range target.Fields() {
		out[f.Name], _ = Coerce(m[f.Name], f.DType, false)
	}
	return out
}
