package coerce

import (
	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/types"
)

// CommonType infers the narrowest type all non-null values promote to.
// Promotion follows Boolean ⊂ Int ⊂ Float, Int ⊂ Decimal, Date ⊂ Datetime
// and scalars ⊂ String; lists and structs promote elementwise. Values with
// no common promotion yield Object. In strict mode every non-null value must
// share one natural type, otherwise the first offender is reported as an
// *types.SchemaError. Null list elements match any element type and decimals
// of differing scale widen to the larger one. An empty or all-null sequence is Null.
func CommonType(values []any, strict bool) (types.DataType, error) {
	dt := types.Null
	for _, v := range values {
		vt := InferValueType(v)
		if vt.Kind() == types.KindNull {
			continue
		}
		if dt.Kind() == types.KindNull {
			dt = vt
			continue
		}
		if strict && !sameFamily(dt, vt) {
			return types.Unknown, &types.SchemaError{Target: dt, Value: v}
		}
		dt = Supertype(dt, vt)
	}
	return dt, nil
}

// sameFamily reports whether a and b are one natural type, treating Null
// as a wildcard below the top level and ignoring decimal precision and
// scale.
func sameFamily(a, b types.DataType) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case types.KindDecimal:
		return true
	case types.KindList, types.KindArray:
		if a.Kind() == types.KindArray && a.Size() != b.Size() {
			return false
		}
		ai, _ := a.Inner()
		bi, _ := b.Inner()
		if ai.Kind() == types.KindNull || bi.Kind() == types.KindNull {
			return true
		}
		return sameFamily(ai, bi)
	case types.KindStruct:
		af, bf := a.Fields(), b.Fields()
		if len(af) != len(bf) {
			return false
		}
		for i := range af {
			if af[i].Name != bf[i].Name {
				return false
			}
			if af[i].DType.Kind() == types.KindNull || bf[i].DType.Kind() == types.KindNull {
				continue
			}
			if !sameFamily(af[i].DType, bf[i].DType) {
				return false
			}
		}
		return true
	}
	return a.Equal(b)
}

// Supertype returns the smallest type both a and b promote to, or Object
// when they have none.
func Supertype(a, b types.DataType) types.DataType {
	switch {
	case a.Equal(b):
		return a
	case a.Kind() == types.KindNull:
		return b
	case b.Kind() == types.KindNull:
		return a
	case a.Kind() == types.KindObject || b.Kind() == types.KindObject:
		return types.Object
	}

	if rank(a) > rank(b) {
		a, b = b, a
	}
	switch {
	case isNumeric(a) && isNumeric(b):
		return numericSupertype(a, b)
	case a.IsTemporal() && b.IsTemporal():
		return temporalSupertype(a, b)
	case isScalar(a) && b.Kind() == types.KindString:
		return types.String
	case a.Kind() == types.KindCategorical && b.Kind() == types.KindString:
		return types.String
	}
	return nestedSupertype(a, b)
}

// rank orders kinds so the two-sided rules only need one orientation.
func rank(dt types.DataType) int {
	switch k := dt.Kind(); {
	case k == types.KindBoolean:
		return 0
	case dt.IsInteger():
		return 1
	case dt.IsFloat():
		return 2
	case k == types.KindDecimal:
		return 3
	case k == types.KindDate:
		return 4
	case k == types.KindDatetime:
		return 5
	case k == types.KindTime, k == types.KindDuration:
		return 6
	case k == types.KindString:
		return 8
	}
	return 7
}

func isNumeric(dt types.DataType) bool {
	return dt.Kind() == types.KindBoolean || dt.IsNumeric()
}

func isScalar(dt types.DataType) bool {
	return isNumeric(dt) || dt.IsTemporal()
}

func numericSupertype(a, b types.DataType) types.DataType {
	switch {
	case a.Kind() == types.KindBoolean:
		return b
	case a.IsInteger() && b.IsInteger():
		return integerSupertype(a, b)
	case a.IsInteger() && b.IsFloat():
		if b.Kind() == types.KindFloat32 && bits(a) <= 16 {
			return types.Float32
		}
		return types.Float64
	case a.IsFloat() && b.IsFloat():
		return types.Float64
	case a.IsInteger() && b.IsDecimal():
		return b
	case a.IsDecimal() && b.IsDecimal():
		return decimalSupertype(a, b)
	}
	// float and decimal
	return types.Float64
}

func integerSupertype(a, b types.DataType) types.DataType {
	if a.IsUnsignedInteger() == b.IsUnsignedInteger() {
		if bits(a) >= bits(b) {
			return a
		}
		return b
	}
	signed, unsigned := a, b
	if a.IsUnsignedInteger() {
		signed, unsigned = b, a
	}
	if bits(unsigned) >= 64 {
		return types.Float64
	}
	dt, _ := registry.IntegerFromBits(max(bits(signed), 2*bits(unsigned)), false)
	return dt
}

func decimalSupertype(a, b types.DataType) types.DataType {
	sa, okA := a.Scale()
	sb, okB := b.Scale()
	scale := max(sa, sb)
	pa, okPA := a.Precision()
	pb, okPB := b.Precision()
	if !okA && !okB {
		return types.Base(types.KindDecimal)
	}
	if okPA && okPB {
		// keep room for the integer digits of both sides
		digits := max(int(pa)-int(sa), int(pb)-int(sb), 0)
		return types.Decimal(uint8(min(digits+int(scale), maxScale)), scale)
	}
	return types.DecimalOpt(nil, &scale)
}

func temporalSupertype(a, b types.DataType) types.DataType {
	switch {
	case a.Kind() == types.KindDate && b.Kind() == types.KindDatetime:
		return b
	case a.Kind() == types.KindDatetime && b.Kind() == types.KindDatetime:
		if a.TimeZone() != b.TimeZone() {
			return types.Object
		}
		return a.WithTimeUnit(finer(a.TimeUnit(), b.TimeUnit()))
	case a.Kind() == types.KindDuration && b.Kind() == types.KindDuration:
		return a.WithTimeUnit(finer(a.TimeUnit(), b.TimeUnit()))
	}
	return types.Object
}

func finer(a, b types.TimeUnit) types.TimeUnit {
	if a == "" {
		return b
	}
	if b == "" || a.Tick() < b.Tick() {
		return a
	}
	return b
}

func nestedSupertype(a, b types.DataType) types.DataType {
	ai, aNested := a.Inner()
	bi, bNested := b.Inner()
	switch {
	case aNested && bNested:
		inner := Supertype(ai, bi)
		if a.Kind() == types.KindArray && b.Kind() == types.KindArray && a.Size() == b.Size() {
			return types.Array(inner, a.Size())
		}
		return types.List(inner)
	case a.Kind() == types.KindStruct && b.Kind() == types.KindStruct:
		return structSupertype(a, b)
	}
	return types.Object
}

// structSupertype unions the fields of a and b, keeping a's order first.
func structSupertype(a, b types.DataType) types.DataType {
	fields := append([]types.Field(nil), a.Fields()...)
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	for _, f := range b.Fields() {
		if i, ok := index[f.Name]; ok {
			fields[i] = types.NewField(f.Name, Supertype(fields[i].DType, f.DType))
			continue
		}
		index[f.Name] = len(fields)
		fields = append(fields, f)
	}
	return types.Struct(fields...)
}

func bits(dt types.DataType) int {
	switch dt.Kind() {
	case types.KindInt8, types.KindUInt8:
		return 8
	case types.KindInt16, types.KindUInt16:
		return 16
	case types.KindInt32, types.KindUInt32:
		return 32
	}
	return 64
}
