// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the 16-bit checksum computed by the AB7/AMC13
// boards over the 64-bit words of a FED block.
//
// The register is updated one full word at a time: each of the 16 output
// bits is the parity of a fixed selection of the 64 data bits and of the 16
// previous register bits (the parallel form of the 0x8005 polynomial).
package crc16 // import "github.com/go-lpc/dtab7/internal/crc16"

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// Seed is the register value at the start of each FED block.
const Seed = 0xffff

// Size is the size of a CRC-16 checksum in bytes.
const Size = 2

// WordSize is the number of bytes folded into the register per update.
const WordSize = 8

// Hash16 is the common interface implemented by the AB7 checksum.
type Hash16 interface {
	hash.Hash
	Sum16() uint16

	// Update folds a full 64-bit word into the register.
	Update(w uint64)
}

type tap struct {
	d uint64 // data bits
	c uint16 // register bits
}

var taps [16]tap

func init() {
	for i, sel := range [16]struct {
		d []uint8
		c []uint8
	}{
		{
			d: []uint8{
				63, 62, 61, 60, 55, 54, 53, 52, 51, 50, 49, 48, 47, 46, 45, 43,
				41, 40, 39, 38, 37, 36, 35, 34, 33, 32, 31, 30, 27, 26, 25, 24,
				23, 22, 21, 20, 19, 18, 17, 16, 15, 13, 12, 11, 10, 9, 8, 7,
				6, 5, 4, 3, 2, 1, 0,
			},
			c: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 12, 13, 14, 15},
		},
		{
			d: []uint8{
				63, 62, 61, 56, 55, 54, 53, 52, 51, 50, 49, 48, 47, 46, 44, 42,
				41, 40, 39, 38, 37, 36, 35, 34, 33, 32, 31, 28, 27, 26, 25, 24,
				23, 22, 21, 20, 19, 18, 17, 16, 14, 13, 12, 11, 10, 9, 8, 7,
				6, 5, 4, 3, 2, 1,
			},
			c: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 13, 14, 15},
		},
		{
			d: []uint8{61, 60, 57, 56, 46, 42, 31, 30, 29, 28, 16, 14, 1, 0},
			c: []uint8{8, 9, 12, 13},
		},
		{
			d: []uint8{62, 61, 58, 57, 47, 43, 32, 31, 30, 29, 17, 15, 2, 1},
			c: []uint8{9, 10, 13, 14},
		},
		{
			d: []uint8{63, 62, 59, 58, 48, 44, 33, 32, 31, 30, 18, 16, 3, 2},
			c: []uint8{0, 10, 11, 14, 15},
		},
		{
			d: []uint8{63, 60, 59, 49, 45, 34, 33, 32, 31, 19, 17, 4, 3},
			c: []uint8{1, 11, 12, 15},
		},
		{
			d: []uint8{61, 60, 50, 46, 35, 34, 33, 32, 20, 18, 5, 4},
			c: []uint8{2, 12, 13},
		},
		{
			d: []uint8{62, 61, 51, 47, 36, 35, 34, 33, 21, 19, 6, 5},
			c: []uint8{3, 13, 14},
		},
		{
			d: []uint8{63, 62, 52, 48, 37, 36, 35, 34, 22, 20, 7, 6},
			c: []uint8{0, 4, 14, 15},
		},
		{
			d: []uint8{63, 53, 49, 38, 37, 36, 35, 23, 21, 8, 7},
			c: []uint8{1, 5, 15},
		},
		{
			d: []uint8{54, 50, 39, 38, 37, 36, 24, 22, 9, 8},
			c: []uint8{2, 6},
		},
		{
			d: []uint8{55, 51, 40, 39, 38, 37, 25, 23, 10, 9},
			c: []uint8{3, 7},
		},
		{
			d: []uint8{56, 52, 41, 40, 39, 38, 26, 24, 11, 10},
			c: []uint8{4, 8},
		},
		{
			d: []uint8{57, 53, 42, 41, 40, 39, 27, 25, 12, 11},
			c: []uint8{5, 9},
		},
		{
			d: []uint8{58, 54, 43, 42, 41, 40, 28, 26, 13, 12},
			c: []uint8{6, 10},
		},
		{
			d: []uint8{
				63, 62, 61, 60, 59, 54, 53, 52, 51, 50, 49, 48, 47, 46, 45, 44,
				42, 40, 39, 38, 37, 36, 35, 34, 33, 32, 31, 30, 29, 26, 25, 24,
				23, 22, 21, 20, 19, 18, 17, 16, 15, 14, 12, 11, 10, 9, 8, 7,
				6, 5, 4, 3, 2, 1, 0,
			},
			c: []uint8{0, 1, 2, 3, 4, 5, 6, 11, 12, 13, 14, 15},
		},
	} {
		for _, b := range sel.d {
			taps[i].d |= 1 << b
		}
		for _, b := range sel.c {
			taps[i].c |= 1 << b
		}
	}
}

// Next returns the register value obtained by folding w into crc.
func Next(crc uint16, w uint64) uint16 {
	var v uint16
	for i, t := range taps {
		p := bits.OnesCount64(w&t.d) + bits.OnesCount16(crc&t.c)
		v |= uint16(p&1) << i
	}
	return v
}

type digest struct {
	seed uint16
	crc  uint16
	buf  [WordSize]byte
	n    int // bytes pending in buf
}

// New returns a new Hash16 starting from Seed.
func New() Hash16 {
	return NewWithSeed(Seed)
}

// NewWithSeed returns a new Hash16 whose register starts (and is reset)
// at seed.
func NewWithSeed(seed uint16) Hash16 {
	return &digest{seed: seed, crc: seed}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return WordSize }

func (d *digest) Reset() {
	d.crc = d.seed
	d.n = 0
}

func (d *digest) Update(w uint64) {
	d.crc = Next(d.crc, w)
}

// Write folds p into the register, 8 little-endian bytes at a time.
// Trailing bytes are kept until a full word is available.
func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	if d.n > 0 {
		k := copy(d.buf[d.n:], p)
		d.n += k
		p = p[k:]
		if d.n < WordSize {
			return n, nil
		}
		d.Update(binary.LittleEndian.Uint64(d.buf[:]))
		d.n = 0
	}
	for len(p) >= WordSize {
		d.Update(binary.LittleEndian.Uint64(p[:WordSize]))
		p = p[WordSize:]
	}
	d.n = copy(d.buf[:], p)
	return n, nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(b []byte) []byte {
	return append(b, byte(d.crc>>8), byte(d.crc))
}

var (
	_ Hash16 = (*digest)(nil)
)
