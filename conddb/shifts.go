// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-lpc/dtab7/geom"
)

// ShiftKind selects a shift table.
type ShiftKind string

const (
	XShift ShiftKind = "x"
	ZShift ShiftKind = "z"
)

// Shifts returns the shift table of the given kind, for the given tag.
func (db *DB) Shifts(ctx context.Context, kind ShiftKind, tag string) (geom.ShiftTable, error) {
	tbl := make(geom.ShiftTable)
	what := fmt.Sprintf("%s-shifts (tag=%q)", kind, tag)
	err := db.query(ctx, what, func(rows *sql.Rows) error {
		var (
			id    int64
			shift float64
		)
		err := rows.Scan(&id, &shift)
		if err != nil {
			return err
		}
		if id < 0 || id > 0xffffffff {
			return fmt.Errorf("invalid raw id %d", id)
		}
		tbl[uint32(id)] = shift
		return nil
	},
		"SELECT rawid, shift FROM shifts WHERE kind=? AND tag=?",
		string(kind), tag,
	)
	if err != nil {
		return nil, err
	}

	if len(tbl) == 0 {
		return nil, fmt.Errorf("conddb: no %s", what)
	}

	return tbl, nil
}

// XShifts returns the x-shift table for the given tag.
func (db *DB) XShifts(ctx context.Context, tag string) (geom.ShiftTable, error) {
	return db.Shifts(ctx, XShift, tag)
}

// ZShifts returns the z-shift table for the given tag.
func (db *DB) ZShifts(ctx context.Context, tag string) (geom.ShiftTable, error) {
	return db.Shifts(ctx, ZShift, tag)
}
