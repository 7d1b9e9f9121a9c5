// Package main implements the coltype CLI.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/electwix/coltype/internal/cli"
	"github.com/electwix/coltype/internal/config"
	"github.com/electwix/coltype/internal/engine"
	"github.com/electwix/coltype/internal/logging"
	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/types"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 2
	}

	logger := logging.NewLogger(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
		JSON:    opts.JSONLogs,
	})

	eng, err := buildEngine(opts, logger)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	var runErr error
	switch opts.Mode {
	case cli.ModeParse:
		runErr = runParse(stdout, eng, opts.Args)
	case cli.ModeSQL:
		runErr = runSQL(stdout, eng, opts.Args, opts.Strict)
	case cli.ModeSQLite:
		runErr = runSQLite(ctx, stdout, eng, opts.Args[0], strings.Join(opts.Args[1:], " "))
	case cli.ModeArrow:
		runErr = runArrow(stdout, eng, opts.Args)
	case cli.ModeInfer:
		runErr = runInfer(stdout, eng, opts.Args)
	case cli.ModeCoerce:
		runErr = runCoerce(stdout, eng, opts.Args[0], opts.Args[1:])
	case cli.ModeTypestr:
		runErr = runTypestr(stdout, opts.Args)
	}
	if runErr != nil {
		_, _ = fmt.Fprintln(stderr, runErr.Error())
		return 1
	}
	return 0
}

// buildEngine loads the configuration, if any, and applies the flags on
// top. A missing default config file is not an error.
func buildEngine(opts cli.Options, logger logging.Logger) (*engine.Engine, error) {
	dialect, err := engine.LookupDialect(opts.Dialect)
	if err != nil {
		return nil, err
	}

	plan := config.DefaultPlan()
	if _, statErr := os.Stat(opts.ConfigPath); statErr == nil || opts.ConfigSet {
		res, err := config.Load(opts.ConfigPath, config.LoadOptions{Strict: opts.StrictConfig})
		if err != nil {
			return nil, err
		}
		for _, w := range res.Warnings {
			logger.Warn("configuration warning", "detail", w)
		}
		plan = res.Plan
		logger.Debug("loaded configuration", "path", opts.ConfigPath)
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", opts.ConfigPath, statErr)
	}

	return engine.FromConfig(plan, engine.Options{
		Dialect:        dialect,
		StrictDatabase: opts.Strict,
		StrictCoercion: opts.Strict,
		StrictParser:   opts.Strict,
		Logger:         logger,
	})
}

func runParse(w io.Writer, eng *engine.Engine, texts []string) error {
	for _, text := range texts {
		dt, err := eng.Parse(text)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", registry.CanonicalText(dt), dt)
	}
	return nil
}

func runSQL(w io.Writer, eng *engine.Engine, names []string, strict bool) error {
	var errs []error
	for _, name := range names {
		dt, rule, ok := eng.Classify(name)
		if !ok {
			if strict {
				errs = append(errs, &types.AmbiguousTypeNameError{Name: name})
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\tunresolved\t%s\n", name, rule)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, registry.CanonicalText(dt), rule)
	}
	return errors.Join(errs...)
}

func runSQLite(ctx context.Context, w io.Writer, eng *engine.Engine, path, query string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	schema, err := eng.Describe(ctx, db, query)
	for _, c := range schema.Columns() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c.Name, registry.CanonicalText(c.DType))
	}
	return err
}

func runArrow(w io.Writer, eng *engine.Engine, texts []string) error {
	for _, text := range texts {
		dt, err := eng.Parse(text)
		if err != nil {
			return err
		}
		at, err := eng.ToArrow(dt)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", registry.CanonicalText(dt), at)
	}
	return nil
}

func runInfer(w io.Writer, eng *engine.Engine, literals []string) error {
	dt, err := eng.CommonType(parseLiterals(literals))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, registry.CanonicalText(dt))
	return nil
}

func runCoerce(w io.Writer, eng *engine.Engine, text string, literals []string) error {
	dt, err := eng.Parse(text)
	if err != nil {
		return err
	}
	values, _, err := eng.Sequence(parseLiterals(literals), &dt)
	if err != nil {
		return err
	}
	for n, v := range values {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", literals[n], formatValue(v))
	}
	return nil
}

func runTypestr(w io.Writer, codes []string) error {
	for _, code := range codes {
		dt, err := registry.ParseTypestr(code)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", code, registry.CanonicalText(dt))
	}
	return nil
}

// parseLiterals reads command line words as null, booleans, integers,
// floats or, failing those, strings.
func parseLiterals(words []string) []any {
	values := make([]any, len(words))
	for n, word := range words {
		switch {
		case word == "null":
			values[n] = nil
		case word == "true" || word == "false":
			values[n] = word == "true"
		default:
			if i, err := strconv.ParseInt(word, 10, 64); err == nil {
				values[n] = i
			} else if f, err := strconv.ParseFloat(word, 64); err == nil {
				values[n] = f
			} else {
				values[n] = word
			}
		}
	}
	return values
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if b, ok := v.([]byte); ok {
		return strconv.Quote(string(b))
	}
	return fmt.Sprint(v)
}
