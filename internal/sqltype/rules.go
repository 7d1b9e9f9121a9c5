package sqltype

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/types"
)

type rule struct {
	name  Rule
	match func(n typeName) bool
	infer func(c *Classifier, n typeName, depth int) (types.DataType, bool)
}

var (
	arrayMarkers   = []string{"ARRAY", "LIST", "[]"}
	stringMarkers  = []string{"VARCHAR", "STRING", "TEXT", "UNICODE"}
	stringPrefixes = []string{"STR", "CHAR", "NCHAR", "UTF"}
	stringSuffixes = []string{"_UTF8", "_UTF16", "_UTF32"}
	binaryNames    = mapset.NewSet("BYTEA", "BYTES", "BLOB", "CLOB", "BINARY")
	durationNames  = mapset.NewSet("INTERVAL", "TIMEDELTA")
	dateNames      = mapset.NewSet("DATE", "DATE32", "DATE64")
	timeNames      = mapset.NewSet("TIME", "TIME32", "TIME64")
)

// maxDepth bounds array nesting so malformed names cannot recurse forever.
const maxDepth = 32

// rules is assigned in init because the array rule recurses into the
// classifier, which walks rules.
var rules []rule

func init() {
	rules = []rule{
		{
			name: RuleArray,
			match: func(n typeName) bool {
				return hasAnyPrefix(n.value, arrayMarkers...) || hasAnySuffix(n.value, arrayMarkers...)
			},
			infer: inferArray,
		},
		{
			name: RuleFloat,
			match: func(n typeName) bool {
				return strings.HasPrefix(n.value, "FLOAT") || strings.Contains(n.value, "DOUBLE") || n.value == "REAL"
			},
			infer: func(_ *Classifier, n typeName, _ int) (types.DataType, bool) {
				if n.value == "FLOAT4" || hasAnySuffix(n.value, "16", "32") || n.modifier == "16" || n.modifier == "32" {
					return types.Float32, true
				}
				return types.Float64, true
			},
		},
		{
			name: RuleInteger,
			match: func(n typeName) bool {
				if strings.Contains(n.value, "INTERVAL") {
					return false
				}
				return hasAnyPrefix(n.value, "INT", "UINT", "UNSIGNED") ||
					hasAnySuffix(n.value, "INT", "SERIAL") ||
					strings.Contains(n.value, "INTEGER") ||
					n.value == "ROWID"
			},
			infer: inferInteger,
		},
		{
			name: RuleDecimal,
			match: func(n typeName) bool {
				return strings.Contains(n.value, "DECIMAL") || strings.Contains(n.value, "NUMERIC")
			},
			infer: func(_ *Classifier, n typeName, _ int) (types.DataType, bool) {
				if prec, scale, ok := strings.Cut(n.modifier, ","); ok {
					p, errP := strconv.ParseUint(strings.TrimSpace(prec), 10, 8)
					s, errS := strconv.ParseUint(strings.TrimSpace(scale), 10, 8)
					if errP == nil && errS == nil {
						return types.Decimal(uint8(p), uint8(s)), true
					}
				}
				if strings.Contains(n.value, "DECIMAL") {
					return types.Base(types.KindDecimal), true
				}
				return types.Float64, true
			},
		},
		{
			name: RuleString,
			match: func(n typeName) bool {
				return containsAny(n.value, stringMarkers...) ||
					hasAnyPrefix(n.value, stringPrefixes...) ||
					hasAnySuffix(n.value, stringSuffixes...)
			},
			infer: constant(types.String),
		},
		{
			name:  RuleBinary,
			match: func(n typeName) bool { return binaryNames.Contains(n.value) },
			infer: constant(types.Binary),
		},
		{
			name:  RuleBoolean,
			match: func(n typeName) bool { return strings.HasPrefix(n.value, "BOOL") },
			infer: constant(types.Boolean),
		},
		{
			name: RuleDatetime,
			match: func(n typeName) bool {
				return hasAnyPrefix(n.value, "DATETIME", "TIMESTAMP") &&
					!strings.HasSuffix(n.value, "[D]") && n.modifier != "D"
			},
			infer: func(_ *Classifier, n typeName, _ int) (types.DataType, bool) {
				compact := strings.ReplaceAll(n.value, " ", "")
				if containsAny(compact, "TZ", "TIMEZONE") && !strings.Contains(n.value, "WITHOUT") {
					// zone-aware, but the zone itself is unknown
					return types.Unknown, false
				}
				unit, ok := TimeUnitFromPrecision(n.modifier)
				if !ok {
					unit = types.Microseconds
				}
				return types.Datetime(unit, ""), true
			},
		},
		{
			name: RuleDuration,
			match: func(n typeName) bool {
				return durationNames.Contains(digits.ReplaceAllString(n.value, ""))
			},
			infer: constant(types.Base(types.KindDuration)),
		},
		{
			name:  RuleDate,
			match: func(n typeName) bool { return dateNames.Contains(n.value) },
			infer: constant(types.Date),
		},
		{
			name:  RuleTime,
			match: func(n typeName) bool { return timeNames.Contains(n.value) },
			infer: constant(types.Time),
		},
	}
}

func constant(dt types.DataType) func(*Classifier, typeName, int) (types.DataType, bool) {
	return func(*Classifier, typeName, int) (types.DataType, bool) { return dt, true }
}

func inferArray(c *Classifier, n typeName, depth int) (types.DataType, bool) {
	if depth >= maxDepth {
		return types.Unknown, false
	}
	rest := n.value
	for _, m := range arrayMarkers {
		if strings.HasPrefix(rest, m) {
			rest = strings.TrimPrefix(rest, m)
			break
		}
		if strings.HasSuffix(rest, m) {
			rest = strings.TrimSuffix(rest, m)
			break
		}
	}
	rest = strings.TrimSpace(rest)

	var (
		inner types.DataType
		ok    bool
	)
	if rest != "" {
		if strings.HasPrefix(rest, "<") && strings.HasSuffix(rest, ">") {
			rest = rest[1 : len(rest)-1]
		} else {
			rest = strings.TrimSpace(ofKeyword.ReplaceAllString(" "+rest+" ", ""))
		}
		inner, _, ok = c.classify(rest, depth+1)
	}
	if !ok && n.modifier != "" {
		inner, _, ok = c.classify(n.modifier, depth+1)
	}
	if !ok {
		return types.Unknown, false
	}
	return types.List(inner), true
}

func inferInteger(_ *Classifier, n typeName, _ int) (types.DataType, bool) {
	v := n.value
	bits := 0
	switch {
	case strings.Contains(v, "LARGE") || strings.HasPrefix(v, "BIG") || v == "INT8":
		bits = 64
	case strings.Contains(v, "MEDIUM") || v == "INT4" || v == "SERIAL":
		bits = 32
	case strings.Contains(v, "SMALL") || v == "INT2":
		bits = 16
	case strings.Contains(v, "TINY"):
		bits = 8
	default:
		bits = explicitBits(v)
	}
	if bits == 0 && isDigits(n.modifier) {
		bits, _ = strconv.Atoi(n.modifier)
	}

	unsigned := n.unsigned ||
		(strings.Contains(v, "U") && !strings.Contains(v, "MEDIUM")) ||
		strings.Contains(v, "UNSIGNED") ||
		v == "ROWID"
	if unsigned {
		return registry.FromNumericLayout(bits, true, types.UInt64), true
	}
	return registry.FromNumericLayout(bits, false, types.Int64), true
}

// explicitBits reads bit-width spellings such as INT16 or UINT8.
func explicitBits(v string) int {
	switch strings.TrimPrefix(v, "U") {
	case "INT16":
		return 16
	case "INT32":
		return 32
	case "INT64":
		return 64
	}
	if v == "UINT8" {
		return 8
	}
	return 0
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, p := range subs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
