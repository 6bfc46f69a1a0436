// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb holds types to fake an in-memory DB.
//
// Queries run under Run return the rows given to Run, whatever the query.
// The last query and its arguments are recorded for inspection.
package fakedb // import "github.com/go-lpc/dtab7/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

var state struct {
	mu    sync.Mutex
	rows  Rows
	query Query
}

// Query is a query received by the fake driver.
type Query struct {
	SQL  string
	Args []driver.Value
}

// Run runs f with the fake DB returning rows to every query.
// Run returns the last query received while running f.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) (Query, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.rows = rows
	state.query = Query{}

	err := f(ctx)
	return state.query, err
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakedb: transactions not supported")
}

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1: arguments are not checked.
func (stmt *Stmt) NumInput() int {
	return -1
}

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, errors.New("fakedb: exec not supported")
}

// Query returns a copy of the rows registered with Run.
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	state.query = Query{
		SQL:  stmt.query,
		Args: append([]driver.Value(nil), args...),
	}
	rows := &Rows{
		Names:  state.rows.Names,
		Values: append([][]driver.Value(nil), state.rows.Values...),
	}
	return rows, nil
}

type Rows struct {
	Names  []string
	Values [][]driver.Value
}

func (rows *Rows) Columns() []string {
	return rows.Names
}

func (rows *Rows) Close() error {
	return nil
}

func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Rows   = (*Rows)(nil)
)
