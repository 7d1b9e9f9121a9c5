package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/electwix/coltype/internal/types"
)

// LayoutKind is the single-character kind of a foreign scalar layout, as
// used by array-interface type strings.
type LayoutKind byte

const (
	LayoutBool     LayoutKind = 'b'
	LayoutInt      LayoutKind = 'i'
	LayoutUint     LayoutKind = 'u'
	LayoutFloat    LayoutKind = 'f'
	LayoutDuration LayoutKind = 'm'
	LayoutDatetime LayoutKind = 'M'
	LayoutUnicode  LayoutKind = 'U'
	LayoutBytes    LayoutKind = 'S'
)

type scalarLayout struct {
	kind  LayoutKind
	width int
}

var scalarLayouts = map[scalarLayout]types.DataType{
	{LayoutBool, 1}:     types.Boolean,
	{LayoutInt, 1}:      types.Int8,
	{LayoutInt, 2}:      types.Int16,
	{LayoutInt, 4}:      types.Int32,
	{LayoutInt, 8}:      types.Int64,
	{LayoutUint, 1}:     types.UInt8,
	{LayoutUint, 2}:     types.UInt16,
	{LayoutUint, 4}:     types.UInt32,
	{LayoutUint, 8}:     types.UInt64,
	{LayoutFloat, 4}:    types.Float32,
	{LayoutFloat, 8}:    types.Float64,
	{LayoutDuration, 8}: types.Base(types.KindDuration),
	{LayoutDatetime, 8}: types.Base(types.KindDatetime),
}

// FromScalarLayout maps a foreign scalar layout to a logical type. Temporal
// layouts come back with an unresolved unit. Text and byte-string layouts
// map at any width.
func FromScalarLayout(kind LayoutKind, width int) (types.DataType, error) {
	switch kind {
	case LayoutUnicode:
		return types.String, nil
	case LayoutBytes:
		return types.Binary, nil
	}
	dt, ok := scalarLayouts[scalarLayout{kind, width}]
	if !ok {
		return types.Unknown, fmt.Errorf("scalar layout %c%d: %w", kind, width, types.ErrUnsupportedConversion)
	}
	return dt, nil
}

// ParseTypestr maps an array-interface type string such as "<i8", "|b1" or
// "<M8[ns]" to a logical type. A bracketed unit resolves temporal types;
// "s" and coarser units resolve to milliseconds.
func ParseTypestr(typestr string) (types.DataType, error) {
	s := strings.TrimLeft(typestr, "<>|=")
	if s == "" {
		return types.Unknown, fmt.Errorf("type string %q: %w", typestr, types.ErrUnsupportedConversion)
	}
	kind := LayoutKind(s[0])
	rest := s[1:]

	var unit string
	if i := strings.IndexByte(rest, '['); i >= 0 && strings.HasSuffix(rest, "]") {
		unit = rest[i+1 : len(rest)-1]
		rest = rest[:i]
	}

	width := 0
	if rest != "" {
		w, err := strconv.Atoi(rest)
		if err != nil {
			return types.Unknown, fmt.Errorf("type string %q: %w", typestr, types.ErrUnsupportedConversion)
		}
		width = w
	}

	dt, err := FromScalarLayout(kind, width)
	if err != nil {
		return types.Unknown, err
	}
	if unit == "" || (dt.Kind() != types.KindDatetime && dt.Kind() != types.KindDuration) {
		return dt, nil
	}
	tu, ok := types.ParseTimeUnit(unit)
	if !ok {
		switch unit {
		case "s", "m", "h", "D", "W":
			tu = types.Milliseconds
		default:
			return types.Unknown, fmt.Errorf("type string %q: unit %q: %w", typestr, unit, types.ErrUnsupportedConversion)
		}
	}
	return dt.WithTimeUnit(tu), nil
}
