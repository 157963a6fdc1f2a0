// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens databases for tests of the db package and its
// users.
package dbtest

import (
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/iobench/benchmetrics/storage/db"
	_ "github.com/iobench/benchmetrics/storage/db/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run database tests against this MySQL `dsn` instead of in-memory SQLite")

// NewDB makes a connection to a testing database, either in-memory
// sqlite3 or the MySQL database named by the -mysql flag. cleanup
// must be called when done with the testing database, instead of
// calling db.Close().
func NewDB(t *testing.T) (*db.DB, func()) {
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driverName, dataSourceName = "mysql", *mysqlDSN
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	cleanup := func() {
		d.Close()
	}
	// Make sure the database really is empty.
	runs, err := d.CountRuns()
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	if runs != 0 {
		cleanup()
		t.Fatalf("found %d row(s) in Runs, want 0", runs)
	}
	return d, cleanup
}
