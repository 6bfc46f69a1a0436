// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Decoder decodes and validates FED blocks from a given source.
// A Decoder holds no per-block state and may be used concurrently.
type Decoder struct {
	fed int // expected FED source id
	cfg config
}

// NewDecoder creates a decoder for blocks emitted by the fed source.
func NewDecoder(fed int, opts ...Option) *Decoder {
	dec := &Decoder{
		fed: fed,
		cfg: newConfig(),
	}
	for _, opt := range opts {
		opt(&dec.cfg)
	}
	return dec
}

// FED returns the source id the decoder expects.
func (dec *Decoder) FED() int { return dec.fed }

// Decode decodes a whole FED block.
//
// The CRC-16 and the word count declared in the FED trailer are verified
// against the words read. On error, Decode returns the records decoded so
// far together with an error wrapping one of the Err sentinels.
func (dec *Decoder) Decode(raw []byte) (Block, error) {
	f := frame{
		dec:   dec,
		cur:   newCursor(raw),
		order: make(map[int]int),
		blk:   Block{FED: dec.fed},
	}
	if dec.cfg.hexDump {
		f.cur.dump = dec.cfg.msg
	}

	err := f.decode()
	f.blk.Words = f.cur.n
	f.blk.CRC = f.cur.crc.Sum16()
	return f.blk, err
}

// frame holds the state of a single Decode call.
type frame struct {
	dec *Decoder
	cur cursor
	blk Block

	order   map[int]int // occurrences per channel
	version Version     // payload layout in effect
	fw      Version     // first layout advertised by an AMC header
}

type slotDesc struct {
	slot int
	size int // words, including AMC header and trailer
}

func (f *frame) decode() error {
	var (
		fed = f.dec.fed
		cfg = &f.dec.cfg
	)

	w, err := f.cur.next()
	if err != nil {
		return xerrors.Errorf("ab7: could not read FED header: %w", err)
	}
	if tag := w >> 60; tag != fedHeaderTag {
		return xerrors.Errorf(
			"ab7: FED %d invalid header marker (got=0x%x, want=0x%x): %w",
			fed, tag, fedHeaderTag, ErrHeaderTag,
		)
	}
	if src := int(w>>8) & 0xfff; src != fed {
		return xerrors.Errorf(
			"ab7: invalid FED source id (got=%d, want=%d): %w",
			src, fed, ErrSourceID,
		)
	}
	f.blk.Event = int(w>>32) & 0xffffff
	f.blk.BX = int(w>>20) & 0xfff

	w, err = f.cur.next()
	if err != nil {
		return xerrors.Errorf("ab7: FED %d could not read second header word: %w", fed, err)
	}
	nslots := int(w>>52) & 0xf
	f.blk.Orbit = int(w>>4) & 0xffffffff

	slots := make([]slotDesc, nslots)
	f.blk.Slots = make([]int, 0, nslots)
	for i := range slots {
		w, err := f.cur.next()
		if err != nil {
			return xerrors.Errorf("ab7: FED %d could not read slot list entry %d: %w", fed, i, err)
		}
		slot := int(w>>16) & 0xf
		if slot < MinSlot || slot > MaxSlot {
			return xerrors.Errorf(
				"ab7: FED %d slot list entry %d has slot %d: %w",
				fed, i, slot, ErrSlotRange,
			)
		}
		slots[i] = slotDesc{slot: slot, size: int(w>>32) & 0xffffff}
		f.blk.Slots = append(f.blk.Slots, slot)
	}

	f.version = cfg.version
	for i := range slots {
		err := f.decodeSlot(slots)
		if err != nil {
			return xerrors.Errorf("ab7: FED %d could not decode AMC %d/%d: %w", fed, i+1, nslots, err)
		}
	}
	if f.version == VersionAuto {
		f.version = V8
	}
	f.blk.Version = f.version

	_, err = f.cur.next()
	if err != nil {
		return xerrors.Errorf("ab7: FED %d could not read first trailer word: %w", fed, err)
	}

	w, err = f.cur.read(crcMask)
	if err != nil {
		return xerrors.Errorf("ab7: FED %d could not read second trailer word: %w", fed, err)
	}
	if tag := w >> 60; tag != fedTrailerTag {
		return xerrors.Errorf(
			"ab7: FED %d invalid trailer marker (got=0x%x, want=0x%x): %w",
			fed, tag, fedTrailerTag, ErrTrailerTag,
		)
	}

	var (
		recvCRC = uint16(w >> 16)
		compCRC = f.cur.crc.Sum16()
	)
	if recvCRC != compCRC {
		return xerrors.Errorf(
			"ab7: FED %d inconsistent CRC: recv=0x%04x comp=0x%04x: %w",
			fed, recvCRC, compCRC, ErrChecksum,
		)
	}

	if n := int(w>>32) & 0xffffff; n != f.cur.n {
		return xerrors.Errorf(
			"ab7: FED %d inconsistent word count: recv=%d comp=%d: %w",
			fed, n, f.cur.n, ErrWordCount,
		)
	}

	return nil
}

// decodeSlot decodes the next AMC section of the block.
func (f *frame) decodeSlot(slots []slotDesc) error {
	cfg := &f.dec.cfg

	w, err := f.cur.next()
	if err != nil {
		return xerrors.Errorf("could not read AMC header: %w", err)
	}
	var (
		slot = int(w>>56) & 0xf
		bx   = int(w>>20) & 0xfff
		size = -1
	)
	for _, desc := range slots {
		if desc.slot == slot {
			size = desc.size
			break
		}
	}
	if size < 0 {
		return xerrors.Errorf("AMC header slot %d: %w", slot, ErrUnknownSlot)
	}
	if bx != f.blk.BX {
		f.warnf(WarnBXMismatch, slot, "AMC BX %d differs from FED BX %d", bx, f.blk.BX)
	}

	w, err = f.cur.next()
	if err != nil {
		return xerrors.Errorf("could not read second AMC header word: %w", err)
	}
	f.sampleVersion(slot, versionFrom(int(w&0xff)))

	switch {
	case size > cfg.hard:
		return xerrors.Errorf(
			"slot %d declares %d words (max=%d): %w",
			slot, size, cfg.hard, ErrSlotSize,
		)
	case size > cfg.soft:
		f.warnf(WarnSlotSize, slot, "slot declares %d words", size)
	}

	left := size - slotOverhead
	if left < 0 {
		f.warnf(WarnSlotLength, slot, "slot declares %d words, less than its %d header and trailer words", size, slotOverhead)
		left = 0
	}

	for left > 0 {
		w, err := f.cur.next()
		if err != nil {
			return xerrors.Errorf("could not read payload word: %w", err)
		}
		left--

		switch {
		case w>>60 == hitTag:
			f.decodeHits(slot, w)
		case tpTag(w):
			err = f.decodeTP(slot, w, &left)
			if err != nil {
				return xerrors.Errorf("could not decode trigger primitive: %w", err)
			}
		default:
			f.warnf(WarnUnknownWord, slot, "skipping word 0x%016x with tag 0x%x", w, w>>60)
		}
	}

	_, err = f.cur.next()
	if err != nil {
		return xerrors.Errorf("could not read AMC trailer: %w", err)
	}

	return nil
}

// sampleVersion records the layout advertised by an AMC header.
// The first advertised layout wins.
func (f *frame) sampleVersion(slot int, v Version) {
	switch {
	case f.fw == VersionAuto:
		f.fw = v
		if f.version == VersionAuto {
			f.version = v
		}
	case f.fw != v:
		f.warnf(WarnVersion, slot, "AMC firmware advertises %v, first AMC header advertised %v", v, f.fw)
	}
}

func (f *frame) warnf(kind WarnKind, slot int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	f.blk.Warnings = append(f.blk.Warnings, Warning{Kind: kind, Slot: slot, Msg: msg})
	f.dec.cfg.msg.Printf("FED %d slot %d: %v: %s", f.dec.fed, slot, kind, msg)
}

func (f *frame) dumpf(format string, args ...interface{}) {
	f.dec.cfg.msg.Printf(format, args...)
}
