package dbschema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "modernc.org/sqlite"

	"github.com/electwix/coltype/internal/types"
)

func TestDescribeWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	rows := mock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INTEGER", int64(0)).WithLength(4),
		sqlmock.NewColumn("name").OfType("VARCHAR(255)", "").Nullable(true),
		sqlmock.NewColumn("amt").OfType("NUMERIC", 0.0).WithPrecisionAndScale(10, 2),
		sqlmock.NewColumn("ratio").OfType("FLOAT", 0.0).WithLength(4),
		sqlmock.NewColumn("shape").OfType("GEOMETRY", []byte(nil)),
	)
	mock.ExpectQuery("^SELECT").WillReturnRows(rows)

	got, err := New(Options{}).Describe(context.Background(), db, "SELECT * FROM payments")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	want := types.NewSchema(
		types.Column{Name: "id", DType: types.Int32},
		types.Column{Name: "name", DType: types.String},
		types.Column{Name: "amt", DType: types.Decimal(10, 2)},
		types.Column{Name: "ratio", DType: types.Float32},
	)
	if !got.Equal(want) {
		t.Errorf("Describe() = %s, want %s", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFromRowsWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("^SELECT").WillReturnRows(mock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("n").OfType("BIGINT", int64(0)).Nullable(false),
	))

	rows, err := db.Query("SELECT n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	cols, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows() error = %v", err)
	}
	if len(cols) != 1 {
		t.Fatalf("FromRows() = %d columns, want 1", len(cols))
	}
	c := cols[0]
	if c.Name != "n" || c.TypeCode != "BIGINT" {
		t.Errorf("column = %+v", c)
	}
	if !c.Nullable.Valid || c.Nullable.V {
		t.Errorf("Nullable = %+v, want known false", c.Nullable)
	}
}

func TestDescribeSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE payments (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		amt NUMERIC(10,2),
		paid_at TIMESTAMP,
		memo BLOB,
		flag BOOLEAN
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	got, err := New(Options{}).Describe(ctx, db, "SELECT id, name, amt, paid_at, memo, flag FROM payments")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	want := types.NewSchema(
		types.Column{Name: "id", DType: types.Int64},
		types.Column{Name: "name", DType: types.String},
		types.Column{Name: "amt", DType: types.Decimal(10, 2)},
		types.Column{Name: "paid_at", DType: types.Datetime(types.Microseconds, "")},
		types.Column{Name: "memo", DType: types.Binary},
		types.Column{Name: "flag", DType: types.Boolean},
	)
	if !got.Equal(want) {
		t.Errorf("Describe() = %s, want %s", got, want)
	}
}
