package native

import (
	"strconv"
	"strings"

	"github.com/electwix/coltype/internal/types"
)

// HostType enumerates the primitive host types a TypeSpec can name.
type HostType int

const (
	HostInvalid HostType = iota
	HostFloat
	HostInt
	HostString
	HostBool
	HostDatetime
	HostDate
	HostDuration
	HostTime
	HostList
	HostTuple
	HostDecimal
	HostBytes
	HostObject
	HostNone
)

var hostNames = [...]string{
	HostInvalid:  "invalid",
	HostFloat:    "float",
	HostInt:      "int",
	HostString:   "str",
	HostBool:     "bool",
	HostDatetime: "datetime",
	HostDate:     "date",
	HostDuration: "timedelta",
	HostTime:     "time",
	HostList:     "list",
	HostTuple:    "tuple",
	HostDecimal:  "Decimal",
	HostBytes:    "bytes",
	HostObject:   "object",
	HostNone:     "None",
}

func (h HostType) String() string {
	if h < 0 || int(h) >= len(hostNames) {
		return "invalid"
	}
	return hostNames[h]
}

// supertypes lists the implicit bases of each host type: datetime
// specializes date and bool specializes int.
var supertypes = map[HostType][]HostType{
	HostDatetime: {HostDate},
	HostBool:     {HostInt},
}

// SpecKind identifies the variant of a TypeSpec.
type SpecKind int

const (
	SpecPrimitive SpecKind = iota
	SpecClass
	SpecGeneric
	SpecOptional
	SpecUnion
	SpecForwardRef
	SpecDType
)

// TypeSpec is a constrained description of a host type annotation.
type TypeSpec struct {
	kind   SpecKind
	host   HostType
	name   string
	bases  []HostType
	origin *TypeSpec
	args   []TypeSpec
	dtype  types.DataType
}

// Primitive names a built-in host type.
func Primitive(h HostType) TypeSpec {
	return TypeSpec{kind: SpecPrimitive, host: h}
}

// Class names a user-defined subtype of the given host types.
func Class(name string, bases ...HostType) TypeSpec {
	return TypeSpec{kind: SpecClass, name: name, bases: append([]HostType(nil), bases...)}
}

// Generic is a parametric annotation such as list[int].
func Generic(origin TypeSpec, args ...TypeSpec) TypeSpec {
	return TypeSpec{kind: SpecGeneric, origin: &origin, args: append([]TypeSpec(nil), args...)}
}

// Optional is inner or None.
func Optional(inner TypeSpec) TypeSpec {
	return TypeSpec{kind: SpecOptional, args: []TypeSpec{inner}}
}

// Union is any one of branches.
func Union(branches ...TypeSpec) TypeSpec {
	return TypeSpec{kind: SpecUnion, args: append([]TypeSpec(nil), branches...)}
}

// ForwardRef is a deferred annotation spelled as text, e.g. "int | None".
func ForwardRef(text string) TypeSpec {
	return TypeSpec{kind: SpecForwardRef, name: text}
}

// Of wraps a type that is already logical.
func Of(dt types.DataType) TypeSpec {
	return TypeSpec{kind: SpecDType, dtype: dt}
}

// Kind reports the variant of the spec.
func (s TypeSpec) Kind() SpecKind { return s.kind }

// isNone reports whether the spec is the none type.
func (s TypeSpec) isNone() bool {
	return s.kind == SpecPrimitive && s.host == HostNone
}

// inherits reports whether a class derives, directly or implicitly, from h.
func (s TypeSpec) inherits(h HostType) bool {
	seen := make(map[HostType]bool)
	stack := append([]HostType(nil), s.bases...)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b == h {
			return true
		}
		if seen[b] {
			continue
		}
		seen[b] = true
		stack = append(stack, supertypes[b]...)
	}
	return false
}

// String renders the spec in annotation syntax.
func (s TypeSpec) String() string {
	switch s.kind {
	case SpecPrimitive:
		return s.host.String()
	case SpecClass:
		return s.name
	case SpecGeneric:
		return s.origin.String() + "[" + joinSpecs(s.args) + "]"
	case SpecOptional:
		return "Optional[" + joinSpecs(s.args) + "]"
	case SpecUnion:
		return "Union[" + joinSpecs(s.args) + "]"
	case SpecForwardRef:
		return "ForwardRef(" + strconv.Quote(s.name) + ")"
	default:
		return s.dtype.String()
	}
}

// Key returns a cache key unique to the spec's structure.
func (s TypeSpec) Key() string {
	var b strings.Builder
	s.writeKey(&b)
	return b.String()
}

func (s TypeSpec) writeKey(b *strings.Builder) {
	b.WriteString(strconv.Itoa(int(s.kind)))
	b.WriteByte('(')
	switch s.kind {
	case SpecPrimitive:
		b.WriteString(strconv.Itoa(int(s.host)))
	case SpecClass:
		b.WriteString(strconv.Quote(s.name))
		for _, h := range s.bases {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(int(h)))
		}
	case SpecForwardRef:
		b.WriteString(strconv.Quote(s.name))
	case SpecDType:
		b.WriteString(s.dtype.Key())
	case SpecGeneric:
		s.origin.writeKey(b)
	}
	for _, a := range s.args {
		b.WriteByte(';')
		a.writeKey(b)
	}
	b.WriteByte(')')
}

func joinSpecs(specs []TypeSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
