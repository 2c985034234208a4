package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

// fakeDB records statements and replays canned results.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	tag      pgconn.CommandTag
	execErr  error
	rowErr   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return f.tag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{err: f.rowErr}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

func TestMigrate(t *testing.T) {
	db := &fakeDB{}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(db.execSQL) != 1 || !strings.Contains(db.execSQL[0], "CREATE TABLE IF NOT EXISTS items") {
		t.Errorf("Migrate() executed %q", db.execSQL)
	}

	db = &fakeDB{execErr: errors.New("permission denied")}
	if err := Migrate(context.Background(), db); err == nil {
		t.Error("Migrate() error = nil, want wrapped exec error")
	}
}

func TestSchemaColumnsMatchWrites(t *testing.T) {
	for _, col := range writeColumns {
		if !strings.Contains(schemaSQL, "\n    "+col+" ") {
			t.Errorf("column %q is written but not in schema.sql", col)
		}
	}
	if len(writeArgs(&catalog.Item{})) != len(writeColumns) {
		t.Errorf("writeArgs() has %d values for %d columns", len(writeArgs(&catalog.Item{})), len(writeColumns))
	}
}

func TestWriteArgs_PriceEncoding(t *testing.T) {
	args := writeArgs(&catalog.Item{Price: catalog.OnRequest})
	priceIdx := indexOf(writeColumns, "price")
	if p, ok := args[priceIdx].(*float64); !ok || p != nil {
		t.Errorf("price arg = %#v, want nil *float64", args[priceIdx])
	}

	args = writeArgs(&catalog.Item{Price: catalog.Known(1500)})
	if p, ok := args[priceIdx].(*float64); !ok || p == nil || *p != 1500 {
		t.Errorf("price arg = %#v, want 1500", args[priceIdx])
	}

	photosIdx := indexOf(writeColumns, "photos")
	if p, ok := args[photosIdx].([]string); !ok || p == nil {
		t.Errorf("photos arg = %#v, want empty non-nil slice", args[photosIdx])
	}
}

func TestStore_LookupsWithoutRows(t *testing.T) {
	ctx := context.Background()
	s := New(&fakeDB{rowErr: pgx.ErrNoRows})

	if _, err := s.FindByUID(ctx, "  "); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("FindByUID(blank) error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByUID(ctx, "A1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("FindByUID(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByID(ctx, "not-a-uuid"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("FindByID(malformed) error = %v, want ErrNotFound", err)
	}
	it := catalog.Item{ExternalUID: "A1"}
	if err := s.UpdateByUID(ctx, "A1", &it); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("UpdateByUID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_InsertUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "items_external_uid_key"}
	s := New(&fakeDB{rowErr: pgErr})

	it := catalog.Item{ExternalUID: "A1"}
	err := s.Insert(context.Background(), &it)
	if !errors.Is(err, catalog.ErrDuplicateKey) {
		t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
	}
	if it.ID != "" {
		t.Errorf("failed Insert assigned ID %q", it.ID)
	}
	if got := catalog.MapError(err).Code; got != "DB001" {
		t.Errorf("MapError(insert) code = %q, want DB001", got)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	id := "6f1c1b8e-3f0a-4d3c-9d55-0f5b8a8f2a11"

	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 0")}
	if err := New(db).Delete(ctx, id); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}

	db = &fakeDB{tag: pgconn.NewCommandTag("DELETE 1")}
	if err := New(db).Delete(ctx, id); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if err := New(db).Delete(ctx, "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Delete(malformed) error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteMany(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 1")}
	s := New(db)

	n, err := s.DeleteMany(ctx, []string{"bad", "6F1C1B8E-3F0A-4D3C-9D55-0F5B8A8F2A11"})
	if err != nil || n != 1 {
		t.Fatalf("DeleteMany() = %d, %v, want 1", n, err)
	}
	ids, _ := db.execArgs[0][0].([]string)
	if len(ids) != 1 || ids[0] != "6f1c1b8e-3f0a-4d3c-9d55-0f5b8a8f2a11" {
		t.Errorf("DeleteMany bound %v, want the normalised valid id", ids)
	}

	db.execSQL = nil
	if n, _ := s.DeleteMany(ctx, []string{"bad"}); n != 0 || len(db.execSQL) != 0 {
		t.Errorf("DeleteMany(all invalid) = %d and ran %d statements, want 0 and 0", n, len(db.execSQL))
	}
}

func TestStore_DeleteAll(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 42")}
	n, err := New(db).DeleteAll(context.Background())
	if err != nil || n != 42 {
		t.Errorf("DeleteAll() = %d, %v, want 42", n, err)
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
