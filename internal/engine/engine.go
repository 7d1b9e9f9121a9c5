// Package engine bundles the inference and coercion components behind one
// explicitly constructed, immutable object.
//
// Usage:
//
//	eng, err := engine.New(engine.Options{Dialect: engine.PostgreSQL})
//	if err != nil {
//	    return err
//	}
//
//	dt, err := eng.Parse("datetime[ms, UTC]")
//	schema, err := eng.Describe(ctx, db, "SELECT * FROM payments")
//
// An Engine holds no mutable state apart from its memo caches and is safe
// for concurrent use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/electwix/coltype/internal/arrowconv"
	"github.com/electwix/coltype/internal/coerce"
	"github.com/electwix/coltype/internal/config"
	"github.com/electwix/coltype/internal/dbschema"
	"github.com/electwix/coltype/internal/logging"
	"github.com/electwix/coltype/internal/native"
	"github.com/electwix/coltype/internal/parser"
	"github.com/electwix/coltype/internal/sqltype"
	"github.com/electwix/coltype/internal/types"
)

// MaxCacheSize bounds the native inference memo.
const MaxCacheSize = 4096

// ErrInvalidOptions marks engine options that cannot be honored.
var ErrInvalidOptions = errors.New("invalid engine options")

// Options configures an engine instance.
type Options struct {
	// CacheSize bounds the native inference memo; zero selects the default.
	CacheSize int

	// AllowStrings lets forward references fall back to the short-text parser.
	AllowStrings bool

	// Aliases adds spelled-out annotation names.
	Aliases map[string]types.DataType

	// Dialect contributes database type-name overrides.
	Dialect Dialect

	// Overrides pins database type names; they win over the dialect.
	Overrides map[string]types.DataType

	// StrictDatabase reports unmatched database type names as errors.
	StrictDatabase bool

	// StrictCoercion rejects values that do not already fit their target.
	StrictCoercion bool

	// StrictParser rejects malformed short-text parameters.
	StrictParser bool

	// Logger receives debug output; defaults to a no-op logger.
	Logger logging.Logger
}

// Engine resolves and coerces column types.
type Engine struct {
	dialect    Dialect
	native     *native.Inferrer
	classifier *sqltype.Classifier
	parser     *parser.Parser
	database   *dbschema.Inferrer
	policy     coerce.Policy
	logger     logging.Logger
}

// New creates an Engine from opts.
func New(opts Options) (*Engine, error) {
	if opts.CacheSize < 0 || opts.CacheSize > MaxCacheSize {
		return nil, fmt.Errorf("%w: cache size %d outside 0..%d", ErrInvalidOptions, opts.CacheSize, MaxCacheSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	inferrer := native.New(native.Options{
		CacheSize:    opts.CacheSize,
		AllowStrings: opts.AllowStrings,
		Aliases:      opts.Aliases,
		Logger:       logger.With("component", "native"),
	})
	classifier := sqltype.NewClassifier(opts.Dialect.overrides, opts.Overrides)

	e := &Engine{
		dialect:    opts.Dialect,
		native:     inferrer,
		classifier: classifier,
		parser:     parser.NewParser(parser.WithStrict(opts.StrictParser)),
		database: dbschema.New(dbschema.Options{
			Classifier: classifier,
			Native:     inferrer,
			Strict:     opts.StrictDatabase,
			Logger:     logger.With("component", "dbschema"),
		}),
		policy: coerce.Policy{Strict: opts.StrictCoercion},
		logger: logger,
	}
	logger.Debug("engine ready",
		"dialect", opts.Dialect.Name(),
		"overrides", classifier.Len(),
		"aliases", len(opts.Aliases),
		"strict_coercion", opts.StrictCoercion,
	)
	return e, nil
}

// MustNew creates a new Engine or panics if opts are invalid.
// Useful for tests and initialization code.
func MustNew(opts Options) *Engine {
	e, err := New(opts)
	if err != nil {
		panic(err)
	}
	return e
}

// FromConfig creates an Engine from a resolved configuration plan. Fields
// of opts that the plan does not cover, such as the dialect and logger,
// are kept.
func FromConfig(plan config.Plan, opts Options) (*Engine, error) {
	opts.CacheSize = plan.CacheSize
	opts.AllowStrings = plan.AllowStrings
	opts.Aliases = plan.Aliases
	opts.Overrides = plan.Overrides
	opts.StrictDatabase = opts.StrictDatabase || plan.StrictDatabase
	opts.StrictCoercion = opts.StrictCoercion || plan.StrictCoercion
	opts.StrictParser = opts.StrictParser || plan.StrictParser
	return New(opts)
}

// Dialect returns the dialect the engine was built with.
func (e *Engine) Dialect() Dialect { return e.dialect }

// Policy returns the coercion policy.
func (e *Engine) Policy() coerce.Policy { return e.policy }

// FromTypeSpec infers the logical type of a native annotation.
func (e *Engine) FromTypeSpec(spec native.TypeSpec) (types.DataType, error) {
	return e.native.FromTypeSpec(spec)
}

// FromGoType infers the logical type of a Go type.
func (e *Engine) FromGoType(t reflect.Type) (types.DataType, error) {
	return e.native.FromGoType(t)
}

// Parse reads short-form or long-form type text.
func (e *Engine) Parse(text string) (types.DataType, error) {
	return e.parser.Parse(text)
}

// FromTypeName classifies a database type name.
func (e *Engine) FromTypeName(name string) (types.DataType, bool) {
	return e.classifier.FromTypeName(name)
}

// Classify classifies a database type name and reports the deciding rule.
func (e *Engine) Classify(name string) (types.DataType, sqltype.Rule, bool) {
	return e.classifier.Classify(name)
}

// InferSchema resolves column descriptors into a schema.
func (e *Engine) InferSchema(cols []dbschema.Column) (types.Schema, error) {
	return e.database.Infer(cols)
}

// Describe runs query against db and resolves the schema of its result.
func (e *Engine) Describe(ctx context.Context, db dbschema.Querier, query string, args ...any) (types.Schema, error) {
	return e.database.Describe(ctx, db, query, args...)
}

// Coerce converts a value to target under the engine's policy.
func (e *Engine) Coerce(value any, target types.DataType) (any, error) {
	return e.policy.Coerce(value, target)
}

// Sequence coerces values to target, or to their common type when target
// is nil.
func (e *Engine) Sequence(values []any, target *types.DataType) ([]any, types.DataType, error) {
	return e.policy.Sequence(values, target)
}

// CommonType returns the supertype of values under the engine's policy.
func (e *Engine) CommonType(values []any) (types.DataType, error) {
	return e.policy.CommonType(values)
}

// ToArrow maps a logical type onto Arrow.
func (e *Engine) ToArrow(dt types.DataType) (arrow.DataType, error) {
	return arrowconv.ToArrow(dt)
}

// SchemaToArrow maps a schema onto an Arrow schema.
func (e *Engine) SchemaToArrow(s types.Schema) (*arrow.Schema, error) {
	return arrowconv.SchemaToArrow(s)
}
