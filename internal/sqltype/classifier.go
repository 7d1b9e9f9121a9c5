package sqltype

import (
	"maps"
	"slices"
	"strings"

	"github.com/electwix/coltype/internal/types"
)

// Classifier resolves database type names. Exact-name overrides are
// checked before the built-in rules. A Classifier is immutable and safe for
// concurrent use.
type Classifier struct {
	overrides map[string]types.DataType
}

// NewClassifier creates a Classifier from override layers. Keys match the
// normalized uppercase type name, with or without its modifier. A later
// layer replaces entries of an earlier one; within a layer, keys that
// normalize alike are applied in sorted order.
func NewClassifier(layers ...map[string]types.DataType) *Classifier {
	c := &Classifier{overrides: make(map[string]types.DataType)}
	for _, layer := range layers {
		for _, name := range slices.Sorted(maps.Keys(layer)) {
			c.overrides[strings.ToUpper(strings.TrimSpace(name))] = layer[name]
		}
	}
	return c
}

// Len reports the number of distinct override names.
func (c *Classifier) Len() int { return len(c.overrides) }

// Classify returns the inferred type together with the rule that decided
// it. ok is false when no rule matched or the matching rule rejected the
// name.
func (c *Classifier) Classify(name string) (types.DataType, Rule, bool) {
	return c.classify(name, 0)
}

func (c *Classifier) classify(name string, depth int) (types.DataType, Rule, bool) {
	if dt, ok := c.override(name); ok {
		return dt, RuleOverride, true
	}
	n := normalize(name)
	if n.value == "" {
		return types.Unknown, RuleNone, false
	}
	for _, r := range rules {
		if !r.match(n) {
			continue
		}
		dt, ok := r.infer(c, n, depth)
		return dt, r.name, ok
	}
	return types.Unknown, RuleNone, false
}

func (c *Classifier) override(name string) (types.DataType, bool) {
	if len(c.overrides) == 0 {
		return types.Unknown, false
	}
	key := strings.ToUpper(strings.TrimSpace(name))
	if dt, ok := c.overrides[key]; ok {
		return dt, true
	}
	dt, ok := c.overrides[normalize(name).value]
	return dt, ok
}

// FromTypeName returns the logical type of a driver type name, or false
// when no rule matches.
func (c *Classifier) FromTypeName(name string) (types.DataType, bool) {
	dt, _, ok := c.Classify(name)
	return dt, ok
}

// FromTypeNameStrict is FromTypeName reporting an unmatched name as an
// *types.AmbiguousTypeNameError.
func (c *Classifier) FromTypeNameStrict(name string) (types.DataType, error) {
	dt, ok := c.FromTypeName(name)
	if !ok {
		return types.Unknown, &types.AmbiguousTypeNameError{Name: name}
	}
	return dt, nil
}

var defaultClassifier = NewClassifier(nil)

// FromTypeName classifies name with the built-in rules only.
func FromTypeName(name string) (types.DataType, bool) {
	return defaultClassifier.FromTypeName(name)
}

// FromTypeNameStrict classifies name with the built-in rules only and fails
// when nothing matches.
func FromTypeNameStrict(name string) (types.DataType, error) {
	return defaultClassifier.FromTypeNameStrict(name)
}

// Classify reports the built-in rule that decides name.
func Classify(name string) (types.DataType, Rule, bool) {
	return defaultClassifier.Classify(name)
}
