package capability

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/value"
)

// DB serves the db.* methods over SQLite. Database files are confined to
// a root directory the same way the fs suite confines paths. Connections
// and transactions are referenced by integer handles; a handle is only
// valid on the suite that issued it.
type DB struct {
	root   string
	mu     sync.Mutex
	conns  map[int64]*sql.DB
	txs    map[int64]*sql.Tx
	nextID int64
}

// NewDB creates a database suite whose files live under dir.
func NewDB(dir string) *DB {
	return &DB{
		root:  filepath.Clean(dir),
		conns: make(map[int64]*sql.DB),
		txs:   make(map[int64]*sql.Tx),
	}
}

// Bind registers the db.* methods on the engine.
func (d *DB) Bind(e *bridge.Engine) error {
	return e.RegisterNamespace("db", map[string]bridge.Handler{
		"open":     d.open,
		"close":    d.close,
		"execute":  d.execute,
		"query":    d.query,
		"begin":    d.begin,
		"commit":   d.commit,
		"rollback": d.rollback,
	})
}

// Close releases every open transaction and connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, tx := range d.txs {
		tx.Rollback()
		delete(d.txs, id)
	}
	var firstErr error
	for id, conn := range d.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.conns, id)
	}
	return firstErr
}

func (d *DB) open(ctx context.Context, params value.Value) (value.Value, error) {
	name, err := stringParam(params, "name")
	if err != nil {
		return value.Value{}, err
	}
	path := filepath.Join(d.root, filepath.Clean("/"+name))
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "opening database: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "setting busy timeout: %v", err)
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.conns[id] = conn
	d.mu.Unlock()

	result := value.NewObject()
	result.ObjectSet("handle", value.Int(id))
	return result, nil
}

func (d *DB) close(ctx context.Context, params value.Value) (value.Value, error) {
	id, err := intParam(params, "handle")
	if err != nil {
		return value.Value{}, err
	}
	d.mu.Lock()
	conn, ok := d.conns[id]
	delete(d.conns, id)
	d.mu.Unlock()
	if !ok {
		return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "unknown database handle %d", id)
	}
	if err := conn.Close(); err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "closing database: %v", err)
	}
	return okResult(), nil
}

// executor is what execute and query run statements against, either a
// connection or an open transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// target picks the statement executor: a tx handle when present,
// otherwise the connection handle.
func (d *DB) target(params value.Value) (executor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := params.ObjectGet("tx"); ok {
		id, ok := v.AsInt()
		if !ok {
			return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an integer", "tx")
		}
		tx, ok := d.txs[id]
		if !ok {
			return nil, bridge.Errorf(bridge.CodeNotFound, "unknown transaction handle %d", id)
		}
		return tx, nil
	}
	v, ok := params.ObjectGet("handle")
	if !ok {
		return nil, bridge.Errorf(bridge.CodeHandlerFailed, "missing parameter %q", "handle")
	}
	id, ok := v.AsInt()
	if !ok {
		return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an integer", "handle")
	}
	conn, ok := d.conns[id]
	if !ok {
		return nil, bridge.Errorf(bridge.CodeNotFound, "unknown database handle %d", id)
	}
	return conn, nil
}

// sqlArgs converts the optional "args" array into driver arguments.
func sqlArgs(params value.Value) ([]any, error) {
	v, ok := params.ObjectGet("args")
	if !ok {
		return nil, nil
	}
	if v.Kind() != value.KindArray {
		return nil, bridge.Errorf(bridge.CodeHandlerFailed, "parameter %q must be an array", "args")
	}
	args := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem, _ := v.At(i)
		switch elem.Kind() {
		case value.KindNull:
			args = append(args, nil)
		case value.KindBool:
			b, _ := elem.AsBool()
			args = append(args, b)
		case value.KindInt:
			n, _ := elem.AsInt()
			args = append(args, n)
		case value.KindFloat:
			f, _ := elem.AsFloat()
			args = append(args, f)
		case value.KindString:
			s, _ := elem.AsString()
			args = append(args, s)
		default:
			return nil, bridge.Errorf(bridge.CodeHandlerFailed, "argument %d has unsupported type %s", i, elem.Kind())
		}
	}
	return args, nil
}

func (d *DB) execute(ctx context.Context, params value.Value) (value.Value, error) {
	stmt, err := stringParam(params, "sql")
	if err != nil {
		return value.Value{}, err
	}
	ex, err := d.target(params)
	if err != nil {
		return value.Value{}, err
	}
	args, err := sqlArgs(params)
	if err != nil {
		return value.Value{}, err
	}
	res, err := ex.ExecContext(ctx, stmt, args...)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "executing statement: %v", err)
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	result := value.NewObject()
	result.ObjectSet("rowsAffected", value.Int(affected))
	result.ObjectSet("lastInsertId", value.Int(lastID))
	return result, nil
}

func (d *DB) query(ctx context.Context, params value.Value) (value.Value, error) {
	stmt, err := stringParam(params, "sql")
	if err != nil {
		return value.Value{}, err
	}
	ex, err := d.target(params)
	if err != nil {
		return value.Value{}, err
	}
	args, err := sqlArgs(params)
	if err != nil {
		return value.Value{}, err
	}
	rows, err := ex.QueryContext(ctx, stmt, args...)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "querying: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "reading columns: %v", err)
	}
	list := value.NewArray()
	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "scanning row: %v", err)
		}
		row := value.NewObject()
		for i, col := range cols {
			row.ObjectSet(col, columnValue(dest[i]))
		}
		list.Append(row)
	}
	if err := rows.Err(); err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "iterating rows: %v", err)
	}
	result := value.NewObject()
	result.ObjectSet("rows", list)
	return result, nil
}

// columnValue maps a scanned driver value into the tagged value model.
func columnValue(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(x)
	case int64:
		return value.Int(x)
	case float64:
		return value.Float(x)
	case string:
		return value.String(x)
	case []byte:
		return value.String(string(x))
	default:
		return value.String(fmt.Sprint(x))
	}
}

func (d *DB) begin(ctx context.Context, params value.Value) (value.Value, error) {
	id, err := intParam(params, "handle")
	if err != nil {
		return value.Value{}, err
	}
	d.mu.Lock()
	conn, ok := d.conns[id]
	d.mu.Unlock()
	if !ok {
		return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "unknown database handle %d", id)
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "beginning transaction: %v", err)
	}

	d.mu.Lock()
	d.nextID++
	txID := d.nextID
	d.txs[txID] = tx
	d.mu.Unlock()

	result := value.NewObject()
	result.ObjectSet("tx", value.Int(txID))
	return result, nil
}

func (d *DB) commit(ctx context.Context, params value.Value) (value.Value, error) {
	id, err := intParam(params, "tx")
	if err != nil {
		return value.Value{}, err
	}
	d.mu.Lock()
	tx, ok := d.txs[id]
	delete(d.txs, id)
	d.mu.Unlock()
	if !ok {
		return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "unknown transaction handle %d", id)
	}
	if err := tx.Commit(); err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "committing: %v", err)
	}
	return okResult(), nil
}

func (d *DB) rollback(ctx context.Context, params value.Value) (value.Value, error) {
	id, err := intParam(params, "tx")
	if err != nil {
		return value.Value{}, err
	}
	d.mu.Lock()
	tx, ok := d.txs[id]
	delete(d.txs, id)
	d.mu.Unlock()
	if !ok {
		return value.Value{}, bridge.Errorf(bridge.CodeNotFound, "unknown transaction handle %d", id)
	}
	if err := tx.Rollback(); err != nil {
		return value.Value{}, bridge.Errorf(bridge.CodeHandlerFailed, "rolling back: %v", err)
	}
	return okResult(), nil
}
