// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawfile reads and writes files of raw FED blocks.
//
// A raw file starts with an 8-byte magic, followed by records:
//
//	event id   uint32
//	FED id     uint16
//	reserved   uint16
//	size       uint32 (bytes)
//	block      size bytes
//
// All integers are little-endian. The records of an event are contiguous.
package rawfile // import "github.com/go-lpc/dtab7/rawfile"

import (
	"errors"
	"fmt"
)

const (
	// Magic identifies raw files.
	Magic = "AB7RAW01"

	hdrSize  = 12
	wordSize = 8
)

var errMagic = errors.New("rawfile: invalid magic")

// Record is a FED block tagged with its event.
type Record struct {
	Event uint32
	FED   int
	Data  []byte
}

// Event holds the FED blocks of a single event.
type Event struct {
	ID     uint32
	Blocks []Record
}

// Block returns the block of the given FED.
func (evt Event) Block(fed int) ([]byte, bool) {
	for _, rec := range evt.Blocks {
		if rec.FED == fed {
			return rec.Data, true
		}
	}
	return nil, false
}

func (rec Record) validate() error {
	if rec.FED < 0 || rec.FED > 0xffff {
		return fmt.Errorf("rawfile: invalid FED id %d", rec.FED)
	}
	if len(rec.Data)%wordSize != 0 {
		return fmt.Errorf(
			"rawfile: event %d FED %d block size %d is not a multiple of %d",
			rec.Event, rec.FED, len(rec.Data), wordSize,
		)
	}
	if uint64(len(rec.Data)) > 0xffffffff {
		return fmt.Errorf("rawfile: event %d FED %d block too large", rec.Event, rec.FED)
	}
	return nil
}
