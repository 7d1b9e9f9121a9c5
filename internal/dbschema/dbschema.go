// Package dbschema resolves result-set column descriptors reported by
// database drivers into a schema of logical types.
package dbschema

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/electwix/coltype/internal/logging"
	"github.com/electwix/coltype/internal/native"
	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/sqltype"
	"github.com/electwix/coltype/internal/types"
)

// maxDecimalPrecision is the widest decimal a column refines to.
const maxDecimalPrecision = 38

// Column describes one result column. TypeCode is a driver type name
// string, a reflect.Type, a native.TypeSpec or an already logical
// types.DataType; nil leaves the column unresolved.
type Column struct {
	Name         string
	TypeCode     any
	DisplaySize  sql.Null[int64]
	InternalSize sql.Null[int64]
	Precision    sql.Null[int64]
	Scale        sql.Null[int64]
	Nullable     sql.Null[bool]
}

// Known wraps a reported size.
func Known(v int64) sql.Null[int64] {
	return sql.Null[int64]{V: v, Valid: true}
}

// ColumnError reports a column whose type could not be resolved.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// Options configures an Inferrer.
type Options struct {
	// Classifier resolves type names; defaults to the built-in rules.
	Classifier *sqltype.Classifier
	// Native resolves reflect.Type and TypeSpec codes.
	Native *native.Inferrer
	// Strict reports unmatched type names as errors instead of leaving
	// the column unresolved.
	Strict bool
	// Logger receives per-column debug output.
	Logger logging.Logger
}

// Inferrer resolves column descriptors. It is safe for concurrent use.
type Inferrer struct {
	classifier *sqltype.Classifier
	native     *native.Inferrer
	strict     bool
	logger     logging.Logger
}

// New creates an Inferrer.
func New(opts Options) *Inferrer {
	i := &Inferrer{
		classifier: opts.Classifier,
		native:     opts.Native,
		strict:     opts.Strict,
		logger:     opts.Logger,
	}
	if i.classifier == nil {
		i.classifier = sqltype.NewClassifier(nil)
	}
	if i.native == nil {
		i.native = native.New(native.Options{})
	}
	if i.logger == nil {
		i.logger = logging.NewNopLogger()
	}
	return i
}

// InferColumn resolves one column. ok is false when the column is left for
// the caller to infer from its data.
func (i *Inferrer) InferColumn(c Column) (dt types.DataType, ok bool, err error) {
	rule := sqltype.RuleNone
	switch code := c.TypeCode.(type) {
	case nil:
		return types.Unknown, false, nil
	case types.DataType:
		dt = code
	case string:
		dt, rule, ok = i.classifier.Classify(code)
		if !ok {
			if i.strict {
				return types.Unknown, false, &types.AmbiguousTypeNameError{Name: code}
			}
			i.logger.Debug("unresolved column type", "column", c.Name, "type", code)
			return types.Unknown, false, nil
		}
	case reflect.Type:
		if dt, err = i.native.FromGoType(code); err != nil {
			return types.Unknown, false, err
		}
	case native.TypeSpec:
		if dt, err = i.native.FromTypeSpec(code); err != nil {
			return types.Unknown, false, err
		}
	default:
		return types.Unknown, false, &types.UnrecognizedTypeError{Spec: fmt.Sprintf("%T", code)}
	}

	refined := refine(dt, rule, c)
	i.logger.Debug("resolved column type", "column", c.Name, "dtype", refined.String(), "rule", rule.String())
	return refined, true, nil
}

// Infer resolves every column into an ordered schema. Columns left
// unresolved are omitted. Failures of individual columns do not stop the
// others; they are joined into the returned error as *ColumnError values.
func (i *Inferrer) Infer(cols []Column) (types.Schema, error) {
	schema := types.NewSchema()
	var errs []error
	for _, c := range cols {
		dt, ok, err := i.InferColumn(c)
		if err != nil {
			errs = append(errs, &ColumnError{Column: c.Name, Err: err})
			continue
		}
		if ok {
			schema = schema.With(c.Name, dt)
		}
	}
	return schema, errors.Join(errs...)
}

// Infer resolves cols with the built-in rules.
func Infer(cols []Column) (types.Schema, error) {
	return defaultInferrer.Infer(cols)
}

var defaultInferrer = New(Options{})

// refine narrows numeric types with the reported sizes.
func refine(dt types.DataType, rule sqltype.Rule, c Column) types.DataType {
	switch {
	case dt.Kind() == types.KindFloat64:
		if c.InternalSize.Valid && c.InternalSize.V == 4 {
			return types.Float32
		}
	case dt.IsInteger():
		if c.InternalSize.Valid {
			switch c.InternalSize.V {
			case 2, 4, 8:
				return registry.FromNumericLayout(int(c.InternalSize.V*8), dt.IsUnsignedInteger(), dt)
			}
		}
	}
	if dt.IsDecimal() || rule == sqltype.RuleDecimal {
		if p, s, ok := decimalSize(c); ok {
			return types.Decimal(p, s)
		}
	}
	return dt
}

func decimalSize(c Column) (uint8, uint8, bool) {
	if !c.Precision.Valid || !c.Scale.Valid {
		return 0, 0, false
	}
	p, s := c.Precision.V, c.Scale.V
	if p <= 0 || p > maxDecimalPrecision || s < 0 || s > p {
		return 0, 0, false
	}
	return uint8(p), uint8(s), true
}
