// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"io"
	"log"
	"os"

	"github.com/go-lpc/dtab7/chmap"
	"github.com/go-lpc/dtab7/geom"
)

type config struct {
	mapping  chmap.Mapping
	version  Version
	extended bool // produce extended primitives
	rawTP    bool // store raw position/slope instead of phi/phiB
	tpTime   bool // correct primitive time to the L1A
	hexDump  bool

	wheel  int
	sector int

	soft int // slot size warning threshold
	hard int // slot size rejection threshold

	tr  geom.Transformer
	msg *log.Logger
}

func newConfig() config {
	return config{
		mapping: chmap.Dummy,
		version: VersionAuto,
		tpTime:  true,
		wheel:   2,
		sector:  12,
		soft:    SoftSlotCeiling,
		hard:    HardSlotCeiling,
		msg:     log.New(os.Stdout, "ab7: ", 0),
	}
}

// Option configures a Decoder.
type Option func(*config)

// WithMapping selects the channel mapping used for hits.
// The default is chmap.Dummy; recorded 2019 data needs chmap.June2019
// or chmap.July2019 to be selected explicitly.
func WithMapping(m chmap.Mapping) Option {
	return func(cfg *config) {
		cfg.mapping = m
	}
}

// WithVersion forces the payload version.
// VersionAuto (the default) infers it from the first AMC header.
func WithVersion(v Version) Option {
	return func(cfg *config) {
		cfg.version = v
	}
}

// WithExtendedPrimitives enables the production of primitives with their
// per-layer hit details.
func WithExtendedPrimitives(v bool) Option {
	return func(cfg *config) {
		cfg.extended = v
	}
}

// WithRawTPVars stores the raw payload position and slope in the Phi and
// PhiB fields of primitives, with Index set to RawIndex.
func WithRawTPVars(v bool) Option {
	return func(cfg *config) {
		cfg.rawTP = v
	}
}

// WithTimeCorrection enables (the default) or disables the subtraction of
// the reference BX time from the primitive time.
func WithTimeCorrection(v bool) Option {
	return func(cfg *config) {
		cfg.tpTime = v
	}
}

// WithHexDump logs every word read from the buffer.
func WithHexDump(v bool) Option {
	return func(cfg *config) {
		cfg.hexDump = v
	}
}

// WithChamber sets the wheel and sector attached to decoded records.
func WithChamber(wheel, sector int) Option {
	return func(cfg *config) {
		cfg.wheel = wheel
		cfg.sector = sector
	}
}

// WithSlotCeilings sets the slot sizes above which a slot is reported
// (soft) and above which the block is rejected (hard).
func WithSlotCeilings(soft, hard int) Option {
	return func(cfg *config) {
		cfg.soft = soft
		cfg.hard = hard
	}
}

// WithTransform sets the transformation from the firmware reference system
// to global phi and phi-bending angles.
func WithTransform(tr geom.Transformer) Option {
	return func(cfg *config) {
		cfg.tr = tr
	}
}

// WithLogger sets the logger used for warnings and dumps.
// A nil logger discards messages.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		if msg == nil {
			msg = log.New(io.Discard, "", 0)
		}
		cfg.msg = msg
	}
}
