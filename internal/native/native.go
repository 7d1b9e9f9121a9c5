// Package native infers logical types from host type annotations.
//
// Annotations are described by TypeSpec values or, for Go callers, by
// reflect.Type. Results are memoized per Inferrer, so repeated lookups of the
// same annotation are cheap and return identical values.
package native

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/electwix/coltype/internal/cache"
	"github.com/electwix/coltype/internal/logging"
	"github.com/electwix/coltype/internal/parser"
	"github.com/electwix/coltype/internal/types"
)

// DefaultCacheSize bounds the memo of a default Inferrer.
const DefaultCacheSize = 16

// Options configures an Inferrer.
type Options struct {
	// CacheSize bounds the number of memoized annotations.
	CacheSize int
	// AllowStrings lets forward references fall back to the short-text
	// parser when no spelled-out name matches.
	AllowStrings bool
	// Aliases maps additional spelled-out names to types. They take
	// precedence over the built-in names.
	Aliases map[string]types.DataType
	// Logger receives debug output; defaults to a no-op logger.
	Logger logging.Logger
}

// Inferrer maps annotations to logical types. It is safe for concurrent use.
type Inferrer struct {
	allowStrings bool
	aliases      map[string]types.DataType
	logger       logging.Logger
	specs        *cache.Memo[string, types.DataType]
	goTypes      *cache.Memo[goTypeKey, types.DataType]
}

// New creates an Inferrer from opts.
func New(opts Options) *Inferrer {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = &logging.NopLogger{}
	}
	aliases := make(map[string]types.DataType, len(opts.Aliases))
	for name, dt := range opts.Aliases {
		aliases[strings.TrimSpace(name)] = dt
	}
	return &Inferrer{
		allowStrings: opts.AllowStrings,
		aliases:      aliases,
		logger:       logger,
		specs:        cache.NewMemo[string, types.DataType](size, func(k string) string { return k }),
		goTypes:      cache.NewMemo[goTypeKey, types.DataType](size, goTypeKey.String),
	}
}

// spelledNames resolves the text of forward references.
var spelledNames = map[string]types.DataType{
	"int":       types.Int64,
	"float":     types.Float64,
	"bool":      types.Boolean,
	"str":       types.String,
	"bytes":     types.Binary,
	"date":      types.Date,
	"time":      types.Time,
	"datetime":  types.Datetime(types.Microseconds, ""),
	"timedelta": types.Duration(types.Microseconds),
	"list":      types.List(types.Null),
	"tuple":     types.List(types.Null),
	"Decimal":   types.Base(types.KindDecimal),
	"object":    types.Object,
	"NoneType":  types.Null,
	"None":      types.Null,

	"int8":            types.Int8,
	"int16":           types.Int16,
	"int32":           types.Int32,
	"int64":           types.Int64,
	"uint8":           types.UInt8,
	"uint16":          types.UInt16,
	"uint32":          types.UInt32,
	"uint64":          types.UInt64,
	"float32":         types.Float32,
	"float64":         types.Float64,
	"string":          types.String,
	"[]byte":          types.Binary,
	"time.Time":       types.Datetime(types.Microseconds, ""),
	"time.Duration":   types.Duration(types.Microseconds),
	"civil.Date":      types.Date,
	"civil.Time":      types.Time,
	"civil.DateTime":  types.Datetime(types.Microseconds, ""),
	"decimal.Decimal": types.Base(types.KindDecimal),
	"uuid.UUID":       types.String,
	"any":             types.Object,
	"interface{}":     types.Object,
	"nil":             types.Null,
}

var optionalMarker = regexp.MustCompile(`(^None \|)|(\| None$)`)

// FromTypeSpec returns the logical type of spec. An annotation with no
// mapping yields an *types.UnrecognizedTypeError.
func (i *Inferrer) FromTypeSpec(spec TypeSpec) (types.DataType, error) {
	return i.specs.Do(spec.Key(), func() (types.DataType, error) {
		dt, err := i.infer(spec)
		if err == nil {
			i.logger.Debug("inferred dtype", "spec", spec.String(), "dtype", dt.String())
		}
		return dt, err
	})
}

// Lookup is FromTypeSpec reporting failure as false instead of an error.
func (i *Inferrer) Lookup(spec TypeSpec) (types.DataType, bool) {
	dt, err := i.FromTypeSpec(spec)
	if err != nil {
		return types.Unknown, false
	}
	return dt, true
}

// CacheLen returns the number of memoized annotations.
func (i *Inferrer) CacheLen() int {
	return i.specs.Len() + i.goTypes.Len()
}

func (i *Inferrer) infer(spec TypeSpec) (types.DataType, error) {
	switch spec.kind {
	case SpecDType:
		return spec.dtype, nil
	case SpecForwardRef:
		return i.resolveName(spec)
	case SpecOptional, SpecUnion:
		return i.inferUnion(spec)
	case SpecPrimitive:
		return fromHost(spec)
	case SpecClass:
		return fromClass(spec)
	case SpecGeneric:
		return i.inferGeneric(spec)
	}
	return types.Unknown, unrecognized(spec, nil)
}

func (i *Inferrer) resolveName(spec TypeSpec) (types.DataType, error) {
	text := strings.TrimSpace(optionalMarker.ReplaceAllString(spec.name, ""))
	if dt, ok := i.aliases[text]; ok {
		return dt, nil
	}
	if dt, ok := spelledNames[text]; ok {
		return dt, nil
	}
	if i.allowStrings {
		if dt, ok := parser.FromShortText(text); ok {
			return dt, nil
		}
	}
	return types.Unknown, unrecognized(spec, nil)
}

// inferUnion collapses a union whose non-None branches reduce to one.
func (i *Inferrer) inferUnion(spec TypeSpec) (types.DataType, error) {
	var branches []TypeSpec
	for _, b := range spec.args {
		if !b.isNone() {
			branches = append(branches, b)
		}
	}
	switch len(branches) {
	case 0:
		return types.Null, nil
	case 1:
		return i.FromTypeSpec(branches[0])
	}
	return types.Unknown, unrecognized(spec, types.ErrAmbiguousUnion)
}

func (i *Inferrer) inferGeneric(spec TypeSpec) (types.DataType, error) {
	origin, err := i.FromTypeSpec(*spec.origin)
	if err != nil {
		return types.Unknown, err
	}
	if len(spec.args) == 0 {
		return origin, nil
	}
	args := make([]types.DataType, len(spec.args))
	for n, a := range spec.args {
		if args[n], err = i.FromTypeSpec(a); err != nil {
			return types.Unknown, err
		}
	}
	if origin.Kind() != types.KindList {
		return types.Unknown, unrecognized(spec, fmt.Errorf("%s does not take parameters", origin))
	}
	for _, a := range args[1:] {
		if !a.Equal(args[0]) {
			return types.Unknown, unrecognized(spec, fmt.Errorf("heterogeneous parameters %s and %s", args[0], a))
		}
	}
	return types.List(args[0]), nil
}

func fromHost(spec TypeSpec) (types.DataType, error) {
	switch spec.host {
	case HostFloat:
		return types.Float64, nil
	case HostInt:
		return types.Int64, nil
	case HostString:
		return types.String, nil
	case HostBool:
		return types.Boolean, nil
	case HostDatetime:
		return types.Datetime(types.Microseconds, ""), nil
	case HostDate:
		return types.Date, nil
	case HostDuration:
		return types.Duration(types.Microseconds), nil
	case HostTime:
		return types.Time, nil
	case HostList, HostTuple:
		return types.List(types.Null), nil
	case HostDecimal:
		return types.Base(types.KindDecimal), nil
	case HostBytes:
		return types.Binary, nil
	case HostObject:
		return types.Object, nil
	case HostNone:
		return types.Null, nil
	}
	return types.Unknown, unrecognized(spec, nil)
}

// fromClass maps subclasses of the temporal host types. datetime is checked
// before date since it derives from it.
func fromClass(spec TypeSpec) (types.DataType, error) {
	switch {
	case spec.inherits(HostDatetime):
		return types.Datetime(types.Microseconds, ""), nil
	case spec.inherits(HostDate):
		return types.Date, nil
	case spec.inherits(HostDuration):
		return types.Duration(types.Microseconds), nil
	case spec.inherits(HostTime):
		return types.Time, nil
	}
	return types.Unknown, unrecognized(spec, nil)
}

func unrecognized(spec TypeSpec, err error) error {
	return &types.UnrecognizedTypeError{Spec: spec.String(), Err: err}
}

var defaultInferrer = New(Options{})

// FromTypeSpec infers spec with a shared default Inferrer.
func FromTypeSpec(spec TypeSpec) (types.DataType, error) {
	return defaultInferrer.FromTypeSpec(spec)
}

// Lookup infers spec with a shared default Inferrer, reporting failure as
// false.
func Lookup(spec TypeSpec) (types.DataType, bool) {
	return defaultInferrer.Lookup(spec)
}
