// Package cli parses the coltype command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Mode selects what the command does with its arguments.
type Mode string

const (
	// ModeParse prints the canonical form of short or long type text.
	ModeParse Mode = "parse"
	// ModeSQL classifies database type names.
	ModeSQL Mode = "sql"
	// ModeSQLite describes the result of a query against a SQLite file.
	ModeSQLite Mode = "sqlite"
	// ModeArrow prints the Arrow type of short type text.
	ModeArrow Mode = "arrow"
	// ModeInfer prints the common type of literal values.
	ModeInfer Mode = "infer"
	// ModeCoerce converts literal values to a type.
	ModeCoerce Mode = "coerce"
	// ModeTypestr decodes array-interface type strings such as "<i8".
	ModeTypestr Mode = "typestr"
)

var modes = []Mode{ModeParse, ModeSQL, ModeSQLite, ModeArrow, ModeInfer, ModeCoerce, ModeTypestr}

// minArgs is the number of arguments each mode needs after its name.
var minArgs = map[Mode]int{
	ModeParse:   1,
	ModeSQL:     1,
	ModeSQLite:  2,
	ModeArrow:   1,
	ModeInfer:   1,
	ModeCoerce:  2,
	ModeTypestr: 1,
}

// ErrUsage marks a command line that names no mode or too few arguments.
var ErrUsage = errors.New("usage error")

// Options captures the parsed command line.
type Options struct {
	ConfigPath string
	// ConfigSet reports whether ConfigPath was given explicitly.
	ConfigSet    bool
	Dialect      string
	Strict       bool
	StrictConfig bool
	Verbose      bool
	JSONLogs     bool
	Mode         Mode
	Args         []string
}

// Parse reads flags followed by a mode and its arguments.
func Parse(args []string) (Options, error) {
	const defaultConfig = "coltype.toml"

	opts := Options{
		ConfigPath: defaultConfig,
	}

	fs := flag.NewFlagSet("coltype", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.Dialect, "dialect", "", "Database dialect for type names: generic, postgresql, mysql, sqlite")
	fs.BoolVar(&opts.Strict, "strict", false, "Reject values and names that need lenient handling")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat configuration warnings as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")
	fs.BoolVar(&opts.JSONLogs, "json-logs", false, "Write logs as JSON")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || f.Name == "c" {
			opts.ConfigSet = true
		}
	})

	rest := fs.Args()
	if len(rest) == 0 {
		return Options{}, fmt.Errorf("%w: missing mode\n\n%s", ErrUsage, Usage(fs))
	}
	opts.Mode = Mode(strings.ToLower(rest[0]))
	if !slices.Contains(modes, opts.Mode) {
		return Options{}, fmt.Errorf("%w: unknown mode %q\n\n%s", ErrUsage, rest[0], Usage(fs))
	}
	opts.Args = rest[1:]
	if need := minArgs[opts.Mode]; len(opts.Args) < need {
		return Options{}, fmt.Errorf("%w: %s needs at least %d argument(s)\n\n%s", ErrUsage, opts.Mode, need, Usage(fs))
	}
	return opts, nil
}

// Usage renders the flag defaults and the mode summary.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s: %s [flags] MODE ARGS...\n", fs.Name(), fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	buf.WriteString(`
Modes:
  parse TEXT...           canonical form of type text
  sql NAME...             classify database type names
  sqlite FILE QUERY       schema of a query result
  arrow TEXT...           Arrow type of type text
  infer VALUE...          common type of literal values
  coerce TYPE VALUE...    convert literal values to TYPE
  typestr CODE...         decode array-interface type strings
`)
	return buf.String()
}
