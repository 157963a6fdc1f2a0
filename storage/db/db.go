// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db records extracted benchmark samples in a SQL database.
//
// Each processed log file becomes a run; each output row of the run
// becomes a sample whose fields are stored as named values.
package db

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/net/context"
)

// DB is a high-level interface to a database of runs. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Open opens a database named by a "driver:dsn" string, such as
// "sqlite3:results.db" or "mysql:user@/bench".
func Open(name string) (*DB, error) {
	i := strings.Index(name, ":")
	if i <= 0 {
		return nil, fmt.Errorf("database %q: want driver:dsn", name)
	}
	return OpenSQL(name[:i], name[i+1:])
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Path VARCHAR(4096),
	Mode VARCHAR(32)
);
CREATE TABLE IF NOT EXISTS Samples (
	RunID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	Name VARCHAR(64),
	Value VARCHAR(255),
	PRIMARY KEY (RunID, Seq, Name),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Path, Mode) VALUES (?, ?)")
	return err
}

// A Run is the set of samples extracted from one log file. Samples
// are inserted in a single transaction that is applied by Commit.
type Run struct {
	// ID is the numeric key of this run.
	ID int64

	// seq is the index of the next sample to insert.
	seq int64
	// tx is the transaction holding this run's rows.
	tx *sql.Tx
}

// NewRun starts a run for the log at path, processed in mode.
func (db *DB) NewRun(ctx context.Context, path, mode string) (*Run, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, path, mode)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Run{ID: id, tx: tx}, nil
}

// InsertSample inserts one sample. values[i] is stored under
// columns[i]; values beyond the named columns are stored as "f<i>".
func (r *Run) InsertSample(columns []string, values []string) error {
	if len(values) == 0 {
		r.seq++
		return nil
	}
	var args []interface{}
	for i, v := range values {
		name := "f" + strconv.Itoa(i)
		if i < len(columns) {
			name = columns[i]
		}
		args = append(args, r.ID, r.seq, name, v)
	}
	query := "INSERT INTO Samples(RunID, Seq, Name, Value) VALUES " + strings.Repeat("(?, ?, ?, ?), ", len(values))
	query = strings.TrimSuffix(query, ", ")
	if _, err := r.tx.Exec(query, args...); err != nil {
		return err
	}
	r.seq++
	return nil
}

// Commit applies the run to the database.
func (r *Run) Commit() error {
	return r.tx.Commit()
}

// Abort discards the run.
func (r *Run) Abort() error {
	return r.tx.Rollback()
}

// CountRuns returns the number of committed runs.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// RunIDs returns the IDs of the committed runs of the log at path
// processed in mode, oldest first.
func (db *DB) RunIDs(ctx context.Context, path, mode string) ([]int64, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT RunID FROM Runs WHERE Path = ? AND Mode = ? ORDER BY RunID", path, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Values returns the values stored under name for every sample of
// run id, in sample order.
func (db *DB) Values(ctx context.Context, id int64, name string) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Value FROM Samples WHERE RunID = ? AND Name = ? ORDER BY Seq", id, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
