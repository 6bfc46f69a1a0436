// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"encoding/binary"
	"fmt"

	"github.com/go-lpc/dtab7/internal/crc16"
)

// Event describes the content of a FED block to encode.
type Event struct {
	Event int
	BX    int
	Orbit int
	Slots []Slot
}

// Slot describes an AMC section of a FED block.
type Slot struct {
	ID       int
	Firmware int      // AMC firmware version
	BXShift  int      // added to the event BX in the AMC header
	Words    []uint64 // payload words, see HitWord and TPWords

	// Size overrides the slot size declared in the slot list.
	// Zero declares the actual size.
	Size int
}

// Encoder produces well-formed FED blocks.
type Encoder struct {
	fed int
}

// NewEncoder creates an encoder for the fed source.
func NewEncoder(fed int) *Encoder {
	return &Encoder{fed: fed}
}

// Encode returns the FED block for evt, with its word count and CRC-16
// filled in the trailer.
func (enc *Encoder) Encode(evt Event) ([]byte, error) {
	if n := len(evt.Slots); n > 0xf {
		return nil, fmt.Errorf("ab7: too many slots (n=%d)", n)
	}

	words := make([]uint64, 0, enc.size(evt))
	words = append(words,
		fedHeaderTag<<60|
			uint64(evt.Event)&0xffffff<<32|
			uint64(evt.BX)&0xfff<<20|
			uint64(enc.fed)&0xfff<<8,
		uint64(len(evt.Slots))<<52|uint64(evt.Orbit)&0xffffffff<<4,
	)

	for _, slot := range evt.Slots {
		words = append(words, uint64(slot.size())&0xffffff<<32|uint64(slot.ID)&0xf<<16)
	}

	for _, slot := range evt.Slots {
		size := uint64(len(slot.Words) + slotOverhead)
		words = append(words,
			uint64(slot.ID)&0xf<<56|
				uint64(evt.Event)&0xffffff<<32|
				uint64(evt.BX+slot.BXShift)&0xfff<<20|
				size&0xfffff,
			uint64(slot.Firmware)&0xff,
		)
		words = append(words, slot.Words...)
		words = append(words, uint64(evt.Event)&0xff<<24|size&0xfffff)
	}

	n := len(words) + 2
	words = append(words,
		uint64(evt.BX)&0xfff,
		fedTrailerTag<<60|uint64(n)&0xffffff<<32,
	)

	crc := crc16.New()
	for i, w := range words {
		if i == len(words)-1 {
			w &= crcMask
		}
		crc.Update(w)
	}
	words[n-1] |= uint64(crc.Sum16()) << 16

	raw := make([]byte, wordSize*n)
	for i, w := range words {
		binary.LittleEndian.PutUint64(raw[i*wordSize:], w)
	}
	return raw, nil
}

func (enc *Encoder) size(evt Event) int {
	n := 4 + len(evt.Slots)
	for _, slot := range evt.Slots {
		n += len(slot.Words) + slotOverhead
	}
	return n
}

func (slot Slot) size() int {
	if slot.Size != 0 {
		return slot.Size
	}
	return len(slot.Words) + slotOverhead
}
