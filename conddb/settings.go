// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/chmap"
)

// Settings are the unpacker settings of a FED, as registered in the
// conditions database.
type Settings struct {
	FED            int
	ChannelMapping string
	Version        string
	Wheel          int
	Sector         int
	RawTPVars      bool
	CorrectTPTime  bool
	Extended       bool
	Since          time.Time
}

// UnpackerSettings returns the most recent unpacker settings of a FED.
func (db *DB) UnpackerSettings(ctx context.Context, fed int) (Settings, error) {
	var (
		set   Settings
		found bool
	)
	what := fmt.Sprintf("unpacker settings (FED=%d)", fed)
	err := db.query(ctx, what, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(
			&set.FED, &set.ChannelMapping, &set.Version,
			&set.Wheel, &set.Sector,
			&set.RawTPVars, &set.CorrectTPTime, &set.Extended,
			&set.Since,
		)
	},
		`
SELECT fed, channel_mapping, version, wheel, sector,
       raw_tp_vars, correct_tp_time, extended, since
FROM ab7_settings
WHERE fed=?
ORDER BY since DESC LIMIT 1
`,
		fed,
	)
	if err != nil {
		return set, err
	}

	if !found {
		return set, fmt.Errorf("conddb: no %s", what)
	}

	return set, nil
}

// Options returns the decoder options described by the settings.
func (set Settings) Options() ([]ab7.Option, error) {
	m, err := chmap.Parse(set.ChannelMapping)
	if err != nil {
		return nil, fmt.Errorf("conddb: FED %d: %w", set.FED, err)
	}
	v, err := ab7.ParseVersion(set.Version)
	if err != nil {
		return nil, fmt.Errorf("conddb: FED %d: %w", set.FED, err)
	}
	return []ab7.Option{
		ab7.WithMapping(m),
		ab7.WithVersion(v),
		ab7.WithChamber(set.Wheel, set.Sector),
		ab7.WithRawTPVars(set.RawTPVars),
		ab7.WithTimeCorrection(set.CorrectTPTime),
		ab7.WithExtendedPrimitives(set.Extended),
	}, nil
}
