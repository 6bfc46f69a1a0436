// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/go-lpc/dtab7/internal/crc16"
)

func TestWrapBX(t *testing.T) {
	for _, tc := range []struct {
		dbx, want int
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{1781, 1781},
		{1782, 1782},
		{1783, -1781},
		{-1782, 1782},
		{-1781, -1781},
		{3564, 0},
		{3565, 1},
		{-3563, 1},
		{100 - 3500, 164},
		{3500 - 100, -164},
	} {
		got := WrapBX(tc.dbx)
		if got != tc.want {
			t.Fatalf("invalid wrap(%d): got=%d, want=%d", tc.dbx, got, tc.want)
		}
	}

	for x := -4 * NumBX; x <= 4*NumBX; x++ {
		v := WrapBX(x)
		if v <= -NumBX/2 || v > NumBX/2 {
			t.Fatalf("wrap(%d)=%d out of range", x, v)
		}
		if (x-v)%NumBX != 0 {
			t.Fatalf("wrap(%d)=%d not congruent", x, v)
		}
		if vv := WrapBX(v); vv != v {
			t.Fatalf("wrap not idempotent: wrap(%d)=%d", v, vv)
		}
	}
}

func TestSignExtend(t *testing.T) {
	for _, tc := range []struct {
		v    uint64
		n    uint
		want int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{0x3fff, 15, 0x3fff},
		{0x4000, 15, -0x4000},
		{0x7fff, 15, -1},
		{0x1ffff, 17, -1},
		{0x0ffff, 17, 0xffff},
		{0x1000, 13, -0x1000},
	} {
		got := signExtend(tc.v, tc.n)
		if got != tc.want {
			t.Fatalf("sign-extend(0x%x, %d): got=%d, want=%d", tc.v, tc.n, got, tc.want)
		}
	}
}

func TestLegacyTDC(t *testing.T) {
	for _, tc := range []struct {
		hit  Hit
		want int
	}{
		{Hit{Time: 0, SubBX: 1}, 0},
		{Hit{Time: 36, SubBX: 7}, 38},
		{Hit{Time: 29, SubBX: 30}, 31},
		{Hit{Time: -30, SubBX: 1}, 32*NumBX - 32},
		{Hit{Time: -16, SubBX: 15}, 32*NumBX - 32 + 15},
	} {
		got := tc.hit.LegacyTDC()
		if got != tc.want {
			t.Fatalf("invalid TDC for %+v: got=%d, want=%d", tc.hit, got, tc.want)
		}
	}
}

func TestVersion(t *testing.T) {
	for _, tc := range []struct {
		fw   int
		want Version
	}{
		{0, V8},
		{7, V8},
		{8, V8},
		{9, V9},
		{10, V9},
		{11, V11},
		{12, V11},
	} {
		got := versionFrom(tc.fw)
		if got != tc.want {
			t.Fatalf("invalid version for fw=%d: got=%v, want=%v", tc.fw, got, tc.want)
		}
	}

	for _, s := range []string{"auto", "v8", "v9", "v11"} {
		v, err := ParseVersion(s)
		if err != nil {
			t.Fatalf("could not parse %q: %+v", s, err)
		}
		if got := v.String(); got != s {
			t.Fatalf("invalid round trip: got=%q, want=%q", got, s)
		}
	}

	_, err := ParseVersion("v10")
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestCursor(t *testing.T) {
	raw := make([]byte, 3*wordSize)
	for i, w := range []uint64{0x1, 0x8000000000000000, 0xdeadbeef} {
		binary.LittleEndian.PutUint64(raw[i*wordSize:], w)
	}

	cur := newCursor(raw)
	w1, err := cur.next()
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	w2, err := cur.next()
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	var (
		n   = cur.n
		crc = cur.crc.Sum16()
	)

	cur.pushBack(w1)
	cur.pushBack(w2)
	if got, want := cur.pending(), 2; got != want {
		t.Fatalf("invalid fifo: got=%d, want=%d", got, want)
	}
	for _, want := range []uint64{w1, w2} {
		got, err := cur.next()
		if err != nil {
			t.Fatalf("could not replay word: %+v", err)
		}
		if got != want {
			t.Fatalf("invalid replay: got=0x%x, want=0x%x", got, want)
		}
	}
	if cur.n != n {
		t.Fatalf("replay counted words: got=%d, want=%d", cur.n, n)
	}
	if got := cur.crc.Sum16(); got != crc {
		t.Fatalf("replay folded words: got=0x%04x, want=0x%04x", got, crc)
	}

	want := crc16.Next(crc16.Next(crc16.Seed, 0x1), 0x8000000000000000)
	if crc != want {
		t.Fatalf("invalid crc: got=0x%04x, want=0x%04x", crc, want)
	}

	w3, err := cur.read(0xff)
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	if w3 != 0xdeadbeef {
		t.Fatalf("masking altered the word: 0x%x", w3)
	}
	if got, want := cur.crc.Sum16(), crc16.Next(crc, 0xef); got != want {
		t.Fatalf("invalid masked crc: got=0x%04x, want=0x%04x", got, want)
	}

	_, err = cur.next()
	if err == nil {
		t.Fatalf("expected a truncation error")
	}
}

func TestHitWord(t *testing.T) {
	var (
		h1 = HitData{Station: 2, SuperLayer: 1, Channel: 5, BX: 101, SubBX: 7}
		h2 = HitData{Station: 4, SuperLayer: 3, Channel: 511, BX: 4094, SubBX: 30}
	)

	for _, tc := range []struct {
		name string
		w    uint64
		want []HitData
	}{
		{"empty", HitWord(nil, nil), nil},
		{"lo", HitWord(&h1, nil), []HitData{h1}},
		{"hi", HitWord(nil, &h2), []HitData{h2}},
		{"both", HitWord(&h1, &h2), []HitData{h1, h2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if tag := tc.w >> 60; tag != hitTag {
				t.Fatalf("invalid tag: 0x%x", tag)
			}
			got := parseHits(tc.w)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid hits:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}
