// Package sqltype classifies the free-form type names reported by SQL
// drivers into logical types.
//
// No standard exists for cursor-reported type names, so classification is
// an ordered list of prefix, suffix and substring rules over the uppercase
// name plus an optional trailing modifier, e.g. the "64" of VARCHAR(64) or
// the element hint of LIST[FLOAT]. The first rule whose predicate matches
// decides the result, even when that result is "no match".
package sqltype

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/electwix/coltype/internal/types"
)

// Rule names the classification rule that produced a result.
type Rule int

const (
	RuleNone Rule = iota
	RuleOverride
	RuleArray
	RuleFloat
	RuleInteger
	RuleDecimal
	RuleString
	RuleBinary
	RuleBoolean
	RuleDatetime
	RuleDuration
	RuleDate
	RuleTime
)

var ruleNames = [...]string{
	RuleNone:     "none",
	RuleOverride: "override",
	RuleArray:    "array",
	RuleFloat:    "float",
	RuleInteger:  "integer",
	RuleDecimal:  "decimal",
	RuleString:   "string",
	RuleBinary:   "binary",
	RuleBoolean:  "boolean",
	RuleDatetime: "datetime",
	RuleDuration: "duration",
	RuleDate:     "date",
	RuleTime:     "time",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return "none"
	}
	return ruleNames[r]
}

// TimeUnitFromPrecision maps a fractional-seconds precision or a unit
// symbol to a time unit. Digits round up to the next multiple of three,
// clamped to [3, 9]; "s" resolves to milliseconds. Empty input has no unit.
func TimeUnitFromPrecision(precision string) (types.TimeUnit, bool) {
	if precision == "" {
		return "", false
	}
	if isDigits(precision) {
		p, err := strconv.Atoi(precision)
		if err != nil {
			return "", false
		}
		return timeUnitFromDigits(p), true
	}
	switch strings.ToLower(precision) {
	case "s", "ms":
		return types.Milliseconds, true
	case "us":
		return types.Microseconds, true
	case "ns":
		return types.Nanoseconds, true
	}
	return "", false
}

func timeUnitFromDigits(p int) types.TimeUnit {
	n := int(math.Ceil(float64(p)/3)) * 3
	n = min(max(3, n), 9)
	switch n {
	case 3:
		return types.Milliseconds
	case 6:
		return types.Microseconds
	default:
		return types.Nanoseconds
	}
}

var (
	parenModifier   = regexp.MustCompile(`\([\w,: ]+\)$`)
	bracketModifier = regexp.MustCompile(`\[[\w,\]\[: ]+]$`)
	ofKeyword       = regexp.MustCompile(`\WOF\W`)
	digits          = regexp.MustCompile(`\d`)
)

// qualifiers are trailing column attributes peeled before classification.
var qualifiers = []string{" ZEROFILL", " UNSIGNED", " SIGNED"}

// typeName is a normalized driver type name split from its modifier.
type typeName struct {
	original string
	value    string
	modifier string
	unsigned bool
}

func normalize(name string) typeName {
	n := typeName{original: name}
	value := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "TYPE", "")

	for peeled := true; peeled; {
		peeled = false
		for _, q := range qualifiers {
			if strings.HasSuffix(value, q) {
				value = strings.TrimSpace(strings.TrimSuffix(value, q))
				n.unsigned = n.unsigned || q == " UNSIGNED"
				peeled = true
			}
		}
	}

	switch {
	case parenModifier.MatchString(value):
		i := strings.IndexByte(value, '(')
		n.modifier = value[i+1 : len(value)-1]
		value = value[:i]
	case !strings.HasPrefix(value, "<") && !strings.HasPrefix(value, ">") &&
		!strings.HasSuffix(value, "[]") && bracketModifier.MatchString(value):
		i := strings.IndexByte(value, '[')
		n.modifier = value[i+1 : len(value)-1]
		value = value[:i]
	}
	n.value = strings.TrimSpace(value)
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
