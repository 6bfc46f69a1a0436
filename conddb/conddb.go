// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to retrieve the conditions data of the AB7
// unpacker (shift tables and per-FED unpacker settings) from a database.
package conddb // import "github.com/go-lpc/dtab7/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	timeout = 5 * time.Second
)

var (
	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve conditions data
// from the DT conditions database.
type DB struct {
	db   *sql.DB
	name string // name of the database
}

// DSN returns the data source name of a MySQL conditions database.
func DSN(usr, pwd, addr, dbname string) string {
	cfg := mysql.NewConfig()
	cfg.User = usr
	cfg.Passwd = pwd
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = dbname
	cfg.Timeout = timeout
	return cfg.FormatDSN()
}

// Open opens a connection to the conditions database described by dsn.
func Open(dsn string) (*DB, error) {
	name := dsn
	if cfg, err := mysql.ParseDSN(dsn); err == nil && cfg.DBName != "" {
		name = cfg.DBName
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", name, err)
	}

	err = ping(db, name)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db: db, name: name}, nil
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

// Name returns the name of the database.
func (db *DB) Name() string { return db.name }

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// query runs a query and calls scan for each returned row.
func (db *DB) query(ctx context.Context, what string, scan func(rows *sql.Rows) error, query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("conddb: could not query %s: %w", what, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		err = scan(rows)
		if err != nil {
			return fmt.Errorf("conddb: could not scan row %d for %s: %w", i, what, err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("conddb: could not scan db for %s: %w", what, err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conddb: context error while retrieving %s: %w", what, err)
	}

	return nil
}
