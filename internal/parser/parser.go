// Package parser reads canonical short-form type text such as
// "datetime[ms, UTC]" or "list[i64]" back into logical types.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/types"
)

// ErrMalformedArgs reports parameters the base type cannot accept. Lenient
// parsers recover from it by returning the base type.
var ErrMalformedArgs = errors.New("malformed type parameters")

// Option configures a Parser using the functional options pattern.
type Option func(*Parser)

// Parser parses short-form and long-form type text.
type Parser struct {
	strict  bool
	grammar *participle.Parser[typeTerm]
}

// NewParser creates a new Parser with the provided functional options.
func NewParser(options ...Option) *Parser {
	p := &Parser{grammar: buildGrammar()}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// WithStrict makes malformed parameters an error instead of falling back
// to the unparameterized base type.
func WithStrict(enabled bool) Option {
	return func(p *Parser) {
		p.strict = enabled
	}
}

// Parse converts text into a logical type. The base name must be a known
// canonical or long name; unknown names fail with ErrUnrecognizedType.
func (p *Parser) Parse(text string) (types.DataType, error) {
	term, err := p.grammar.ParseString("", text)
	if err != nil {
		return types.Unknown, &types.UnrecognizedTypeError{Spec: strconv.Quote(text), Err: err}
	}
	return p.build(term, text)
}

func (p *Parser) build(term *typeTerm, text string) (types.DataType, error) {
	base, ok := registry.FromCanonicalText(term.Name)
	if !ok {
		return types.Unknown, &types.UnrecognizedTypeError{Spec: strconv.Quote(text)}
	}
	if len(term.Args) == 0 {
		return base, nil
	}

	dt, err := p.construct(base, term.Args, text)
	if err != nil {
		if p.strict || !errors.Is(err, ErrMalformedArgs) {
			return types.Unknown, err
		}
		return base, nil
	}
	return dt, nil
}

func (p *Parser) construct(base types.DataType, args []*typeArg, text string) (types.DataType, error) {
	malformed := func() error {
		return fmt.Errorf("%s: %w", strconv.Quote(text), ErrMalformedArgs)
	}

	switch base.Kind() {
	case types.KindDecimal:
		switch len(args) {
		case 1:
			scale, ok := parseU8(args[0].text())
			if !ok {
				return types.Unknown, malformed()
			}
			return types.DecimalOpt(nil, scale), nil
		case 2:
			precision, okP := parseU8(args[0].text())
			scale, okS := parseU8(args[1].text())
			if !okP || !okS {
				return types.Unknown, malformed()
			}
			return types.DecimalOpt(precision, scale), nil
		}
	case types.KindDatetime:
		if len(args) > 2 {
			break
		}
		unit, ok := types.ParseTimeUnit(args[0].text())
		if !ok {
			return types.Unknown, malformed()
		}
		zone := ""
		if len(args) == 2 {
			zone = args[1].text()
			if zone == "None" {
				zone = ""
			}
		}
		return types.Datetime(unit, zone), nil
	case types.KindDuration:
		if len(args) != 1 {
			break
		}
		unit, ok := types.ParseTimeUnit(args[0].text())
		if !ok {
			return types.Unknown, malformed()
		}
		return types.Duration(unit), nil
	case types.KindList:
		if len(args) != 1 || args[0].Term == nil {
			break
		}
		inner, err := p.build(args[0].Term, text)
		if err != nil {
			return types.Unknown, err
		}
		return types.List(inner), nil
	case types.KindArray:
		if len(args) != 2 || args[0].Term == nil {
			break
		}
		inner, err := p.build(args[0].Term, text)
		if err != nil {
			return types.Unknown, err
		}
		size, err := strconv.Atoi(args[1].text())
		if err != nil || size < 0 {
			return types.Unknown, malformed()
		}
		return types.Array(inner, size), nil
	}
	return types.Unknown, malformed()
}

// parseU8 reads a decimal parameter; "*" and "None" mean absent.
func parseU8(s string) (*uint8, bool) {
	if s == "*" || s == "None" {
		return nil, true
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return nil, false
	}
	u := uint8(v)
	return &u, true
}

func normalizeArg(s string) string {
	s = strings.Trim(s, `'" `)
	s = strings.ReplaceAll(s, "μ", "u")
	return strings.ReplaceAll(s, "µ", "u")
}

var defaultParser = NewParser()

// FromShortText parses text leniently: malformed parameters yield the
// base type and only an unknown base or bad syntax reports false.
func FromShortText(text string) (types.DataType, bool) {
	dt, err := defaultParser.Parse(text)
	return dt, err == nil
}

var strictParser = NewParser(WithStrict(true))

// ParseStrict parses text and rejects malformed parameters.
func ParseStrict(text string) (types.DataType, error) {
	return strictParser.Parse(text)
}
