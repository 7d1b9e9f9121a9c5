package chaos_test

import (
	"testing"

	"github.com/electwix/coltype/internal/dbschema"
	"github.com/electwix/coltype/internal/native"
	"github.com/electwix/coltype/internal/parser"
	"github.com/electwix/coltype/internal/registry"
	"github.com/electwix/coltype/internal/sqltype"
	"github.com/electwix/coltype/internal/testing/chaos"
)

var shortTexts = []string{
	"i64",
	"datetime[μs, UTC]",
	"decimal[10,2]",
	"list[array[f32, 3]]",
	"duration[ns]",
	"cat",
}

var typeNames = []string{
	"INTEGER",
	"VARCHAR(255)",
	"NUMERIC(10,2)",
	"TIMESTAMP(3) WITH TIME ZONE",
	"ARRAY<ARRAY<INT UNSIGNED>>",
	"TEXT[]",
	"INTERVAL DAY TO SECOND",
}

// TestParserChaos checks that corrupted short text never panics and that
// anything accepted is a realizable type.
func TestParserChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(42)
	strict := parser.NewParser(parser.WithStrict(true))

	for _, corrupted := range corruptor.GenerateCorpus(shortTexts, 200) {
		if dt, ok := parser.FromShortText(corrupted); ok && !dt.IsRealizable(false) {
			t.Errorf("FromShortText(%q) = %s, not realizable", corrupted, dt)
		}
		_, _ = strict.Parse(corrupted)
	}
}

// TestClassifierChaos checks that corrupted database type names never panic
// and that a reported match carries a realizable type.
func TestClassifierChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(43)

	for _, corrupted := range corruptor.GenerateCorpus(typeNames, 200) {
		dt, rule, ok := sqltype.Classify(corrupted)
		if ok && !dt.IsRealizable(false) {
			t.Errorf("Classify(%q) = %s via %s, not realizable", corrupted, dt, rule)
		}
	}
}

// TestForwardRefChaos feeds corrupted text through forward references.
func TestForwardRefChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(44)
	inf := native.New(native.Options{AllowStrings: true, CacheSize: 8})

	for _, corrupted := range corruptor.GenerateCorpus(shortTexts, 50) {
		_, _ = inf.FromTypeSpec(native.ForwardRef(corrupted))
		_, _ = inf.FromTypeSpec(native.Optional(native.ForwardRef(corrupted)))
	}
}

// TestDBSchemaChaos resolves corrupted names as column type codes.
func TestDBSchemaChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(45)
	corpus := corruptor.GenerateCorpus(typeNames, 30)

	cols := make([]dbschema.Column, len(corpus))
	for n, name := range corpus {
		cols[n] = dbschema.Column{
			Name:         name,
			TypeCode:     name,
			InternalSize: dbschema.Known(int64(n % 9)),
			Precision:    dbschema.Known(int64(n % 50)),
			Scale:        dbschema.Known(int64(n % 7)),
		}
	}
	_, _ = dbschema.Infer(cols)
	_, _ = dbschema.New(dbschema.Options{Strict: true}).Infer(cols)
}

// TestTypestrChaos decodes corrupted array-interface type strings.
func TestTypestrChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(46)
	for _, corrupted := range corruptor.GenerateCorpus([]string{"<i8", "|b1", "<M8[ns]", "<m8[s]", "<U12"}, 100) {
		_, _ = registry.ParseTypestr(corrupted)
	}
}

func TestCorruptorDeterministic(t *testing.T) {
	a := chaos.NewCorruptor(7).GenerateCorpus(shortTexts, 10)
	b := chaos.NewCorruptor(7).GenerateCorpus(shortTexts, 10)
	if len(a) != len(shortTexts)*10 {
		t.Fatalf("corpus size = %d", len(a))
	}
	for n := range a {
		if a[n] != b[n] {
			t.Fatalf("corpus[%d] differs: %q vs %q", n, a[n], b[n])
		}
	}
}

func TestCorruptEmpty(t *testing.T) {
	if got := chaos.NewCorruptor(1).Corrupt(""); got == "" {
		t.Fatal("Corrupt(\"\") returned empty text")
	}
}
