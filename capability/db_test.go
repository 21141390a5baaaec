package capability

import (
	"context"
	"testing"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

func openTestDB(t *testing.T) (*DB, int64) {
	t.Helper()
	d := NewDB(t.TempDir())
	t.Cleanup(func() { d.Close() })

	result, err := d.open(context.Background(), objectParams("name", "test.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	h, _ := result.ObjectGet("handle")
	id, ok := h.AsInt()
	if !ok {
		t.Fatal("open did not return an integer handle")
	}
	return d, id
}

func TestDBExecuteAndQuery(t *testing.T) {
	d, h := openTestDB(t)
	ctx := context.Background()

	if _, err := d.execute(ctx, objectParams(
		"handle", h,
		"sql", "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT, score REAL)",
	)); err != nil {
		t.Fatalf("create table failed: %v", err)
	}

	args := value.NewArray()
	args.Append(value.String("first"))
	args.Append(value.Float(1.5))
	result, err := d.execute(ctx, objectParams(
		"handle", h,
		"sql", "INSERT INTO notes (body, score) VALUES (?, ?)",
		"args", args,
	))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	affected, _ := result.ObjectGet("rowsAffected")
	if n, _ := affected.AsInt(); n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	result, err = d.query(ctx, objectParams("handle", h, "sql", "SELECT id, body, score FROM notes"))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	rows, _ := result.ObjectGet("rows")
	if rows.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", rows.Len())
	}
	row, _ := rows.At(0)
	body, _ := row.ObjectGet("body")
	if s, _ := body.AsString(); s != "first" {
		t.Fatalf("expected body %q, got %q", "first", s)
	}
	score, _ := row.ObjectGet("score")
	if f, _ := score.AsFloat(); f != 1.5 {
		t.Fatalf("expected score 1.5, got %v", f)
	}
}

func TestDBTransactionCommitAndRollback(t *testing.T) {
	d, h := openTestDB(t)
	ctx := context.Background()

	if _, err := d.execute(ctx, objectParams("handle", h, "sql", "CREATE TABLE t (n INTEGER)")); err != nil {
		t.Fatal(err)
	}

	result, err := d.begin(ctx, objectParams("handle", h))
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	txv, _ := result.ObjectGet("tx")
	tx, _ := txv.AsInt()

	if _, err := d.execute(ctx, objectParams("tx", tx, "sql", "INSERT INTO t (n) VALUES (1)")); err != nil {
		t.Fatalf("insert in tx failed: %v", err)
	}
	if _, err := d.commit(ctx, objectParams("tx", tx)); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// A committed handle is gone.
	if _, err := d.commit(ctx, objectParams("tx", tx)); err == nil {
		t.Fatal("second commit should fail")
	}

	result, err = d.begin(ctx, objectParams("handle", h))
	if err != nil {
		t.Fatal(err)
	}
	txv, _ = result.ObjectGet("tx")
	tx, _ = txv.AsInt()
	if _, err := d.execute(ctx, objectParams("tx", tx, "sql", "INSERT INTO t (n) VALUES (2)")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.rollback(ctx, objectParams("tx", tx)); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	result, err = d.query(ctx, objectParams("handle", h, "sql", "SELECT n FROM t"))
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := result.ObjectGet("rows")
	if rows.Len() != 1 {
		t.Fatalf("expected only the committed row, got %d rows", rows.Len())
	}
}

func TestDBNullColumn(t *testing.T) {
	d, h := openTestDB(t)
	ctx := context.Background()

	if _, err := d.execute(ctx, objectParams("handle", h, "sql", "CREATE TABLE t (v TEXT)")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.execute(ctx, objectParams("handle", h, "sql", "INSERT INTO t (v) VALUES (NULL)")); err != nil {
		t.Fatal(err)
	}
	result, err := d.query(ctx, objectParams("handle", h, "sql", "SELECT v FROM t"))
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := result.ObjectGet("rows")
	row, _ := rows.At(0)
	v, _ := row.ObjectGet("v")
	if v.Kind() != value.KindNull {
		t.Fatalf("expected null column, got kind %s", v.Kind())
	}
}

func TestDBUnknownHandle(t *testing.T) {
	d := NewDB(t.TempDir())
	defer d.Close()
	ctx := context.Background()

	_, err := d.query(ctx, objectParams("handle", int64(42), "sql", "SELECT 1"))
	if err == nil {
		t.Fatal("expected an unknown-handle error")
	}
	if code := handlerCode(t, err); code != bridge.CodeNotFound {
		t.Fatalf("expected code %d, got %d", bridge.CodeNotFound, code)
	}

	_, err = d.close(ctx, objectParams("handle", int64(42)))
	if err == nil {
		t.Fatal("expected close of unknown handle to fail")
	}
}

func TestDBCloseReleasesHandle(t *testing.T) {
	d, h := openTestDB(t)
	ctx := context.Background()

	if _, err := d.close(ctx, objectParams("handle", h)); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_, err := d.execute(ctx, objectParams("handle", h, "sql", "SELECT 1"))
	if err == nil {
		t.Fatal("closed handle should be unusable")
	}
	if code := handlerCode(t, err); code != bridge.CodeNotFound {
		t.Fatalf("expected code %d, got %d", bridge.CodeNotFound, code)
	}
}
