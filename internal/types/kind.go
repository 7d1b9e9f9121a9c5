package types

import (
	"time"
)

// Kind identifies the variant of a DataType.
type Kind int

const (
	// KindUnknown is a placeholder for a type that is not yet determined.
	KindUnknown Kind = iota

	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64

	KindDecimal
	KindBoolean
	KindString
	KindBinary

	KindDate
	KindTime
	// KindDatetime carries a time unit and an optional time zone.
	KindDatetime
	// KindDuration carries a time unit.
	KindDuration

	KindList
	KindArray
	KindStruct
	KindCategorical

	// KindObject holds arbitrary host values without conversion.
	KindObject
	KindNull
)

var kindNames = [...]string{
	KindUnknown:     "Unknown",
	KindInt8:        "Int8",
	KindInt16:       "Int16",
	KindInt32:       "Int32",
	KindInt64:       "Int64",
	KindUInt8:       "UInt8",
	KindUInt16:      "UInt16",
	KindUInt32:      "UInt32",
	KindUInt64:      "UInt64",
	KindFloat32:     "Float32",
	KindFloat64:     "Float64",
	KindDecimal:     "Decimal",
	KindBoolean:     "Boolean",
	KindString:      "String",
	KindBinary:      "Binary",
	KindDate:        "Date",
	KindTime:        "Time",
	KindDatetime:    "Datetime",
	KindDuration:    "Duration",
	KindList:        "List",
	KindArray:       "Array",
	KindStruct:      "Struct",
	KindCategorical: "Categorical",
	KindObject:      "Object",
	KindNull:        "Null",
}

// String returns the long-form name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		out = append(out, Kind(k))
	}
	return out
}

// IsParametric reports whether values of the kind carry parameters.
func (k Kind) IsParametric() bool {
	switch k {
	case KindDecimal, KindDatetime, KindDuration, KindList, KindArray, KindStruct:
		return true
	default:
		return false
	}
}

// TimeUnit is the tick resolution of Datetime and Duration types.
// The zero value means the unit has not been resolved.
type TimeUnit string

const (
	Milliseconds TimeUnit = "ms"
	Microseconds TimeUnit = "us"
	Nanoseconds  TimeUnit = "ns"
)

// ParseTimeUnit accepts ms, us or ns. The micro sign spellings of us are
// accepted too.
func ParseTimeUnit(s string) (TimeUnit, bool) {
	switch s {
	case "ms":
		return Milliseconds, true
	case "us", "μs", "µs":
		return Microseconds, true
	case "ns":
		return Nanoseconds, true
	default:
		return "", false
	}
}

// Tick returns the length of one tick of the unit. Unresolved units tick
// in microseconds.
func (u TimeUnit) Tick() time.Duration {
	switch u {
	case Milliseconds:
		return time.Millisecond
	case Nanoseconds:
		return time.Nanosecond
	default:
		return time.Microsecond
	}
}

// Symbol renders the unit the way canonical text does (μs for micro).
func (u TimeUnit) Symbol() string {
	if u == Microseconds {
		return "μs"
	}
	return string(u)
}
