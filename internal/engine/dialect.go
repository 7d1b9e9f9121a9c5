package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/electwix/coltype/internal/types"
)

// Dialect adjusts database type-name inference for one database family.
// Its overrides are consulted before the built-in rules; explicit
// overrides from Options win over the dialect's.
type Dialect struct {
	name      string
	overrides map[string]types.DataType
}

// Name returns the dialect identifier.
func (d Dialect) Name() string {
	if d.name == "" {
		return "generic"
	}
	return d.name
}

// Overrides returns a copy of the dialect's type-name overrides.
func (d Dialect) Overrides() map[string]types.DataType {
	return maps.Clone(d.overrides)
}

func (d Dialect) String() string { return d.Name() }

var (
	// Generic applies the built-in type-name rules unchanged.
	Generic = Dialect{name: "generic"}

	// PostgreSQL maps the catalog names the generic rules leave unresolved.
	PostgreSQL = Dialect{name: "postgresql", overrides: map[string]types.DataType{
		"MONEY":       types.Decimal(19, 2),
		"UUID":        types.String,
		"JSON":        types.String,
		"JSONB":       types.String,
		"INET":        types.String,
		"CIDR":        types.String,
		"MACADDR":     types.String,
		"OID":         types.UInt32,
		"TIMETZ":      types.Time,
		"TIMESTAMPTZ": types.Datetime(types.Microseconds, "UTC"),
	}}

	// MySQL reads TINYINT(1) as a boolean the way its connectors do.
	MySQL = Dialect{name: "mysql", overrides: map[string]types.DataType{
		"TINYINT(1)": types.Boolean,
		"YEAR":       types.Int16,
		"JSON":       types.String,
		"ENUM":       types.Categorical,
		"SET":        types.String,
	}}

	// SQLite maps the declared types its applications commonly store as text.
	SQLite = Dialect{name: "sqlite", overrides: map[string]types.DataType{
		"JSON": types.String,
		"UUID": types.String,
	}}
)

var dialects = map[string]Dialect{
	"generic":    Generic,
	"postgresql": PostgreSQL,
	"postgres":   PostgreSQL,
	"mysql":      MySQL,
	"sqlite":     SQLite,
}

// LookupDialect returns the dialect registered under name. The empty name
// is the generic dialect.
func LookupDialect(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Generic, nil
	}
	d, ok := dialects[key]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database dialect: %s", name)
	}
	return d, nil
}

// Dialects lists the accepted dialect names.
func Dialects() []string {
	return slices.Sorted(maps.Keys(dialects))
}
