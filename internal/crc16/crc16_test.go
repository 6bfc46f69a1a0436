// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crc16_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/go-lpc/dtab7/internal/crc16"
)

func TestNext(t *testing.T) {
	for _, tc := range []struct {
		crc  uint16
		word uint64
		want uint16
	}{
		{crc: 0, word: 0, want: 0},
		{crc: 0, word: 1, want: 0x8005},
		{crc: 0xffff, word: 0, want: 0x02d0},
	} {
		t.Run(fmt.Sprintf("0x%04x-0x%x", tc.crc, tc.word), func(t *testing.T) {
			if got, want := crc16.Next(tc.crc, tc.word), tc.want; got != want {
				t.Fatalf("invalid crc16: got=0x%04x, want=0x%04x", got, want)
			}
		})
	}
}

func TestCRC16(t *testing.T) {
	words := []uint64{
		0x5000055805610800,
		0x0010000000000000,
		0x0000000800010000,
		0x1000000000000001,
		0xa000000500000000,
	}

	crc := crc16.New()
	if got, want := crc.BlockSize(), 8; got != want {
		t.Fatalf("invalid crc16 block size: got=%d, want=%d", got, want)
	}
	if got, want := crc.Size(), 2; got != want {
		t.Fatalf("invalid crc16 size: got=%d, want=%d", got, want)
	}

	for _, w := range words {
		crc.Update(w)
	}
	ref := crc.Sum16()

	crc.Reset()
	if got, want := crc.Sum16(), uint16(crc16.Seed); got != want {
		t.Fatalf("invalid reset value: got=0x%04x, want=0x%04x", got, want)
	}
	for _, w := range words {
		crc.Update(w)
	}
	if got, want := crc.Sum16(), ref; got != want {
		t.Fatalf("crc16 not reproducible: got=0x%04x, want=0x%04x", got, want)
	}

	raw := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(raw[8*i:], w)
	}

	// feed the bytes in uneven chunks.
	crc.Reset()
	for _, n := range []int{3, 7, 1, 13, 16} {
		_, err := crc.Write(raw[:n])
		if err != nil {
			t.Fatalf("could not write crc16 hash: %+v", err)
		}
		raw = raw[n:]
	}
	if got, want := crc.Sum16(), ref; got != want {
		t.Fatalf("invalid crc16 checksum from Write: got=0x%04x, want=0x%04x", got, want)
	}

	want := []byte{byte(ref >> 8), byte(ref)}
	if got := crc.Sum(nil); !bytes.Equal(got, want) {
		t.Fatalf("invalid crc16 sum: got=0x%x, want=0x%x", got, want)
	}
}

func TestOrderSensitive(t *testing.T) {
	ab := crc16.Next(crc16.Next(crc16.Seed, 0), 1)
	ba := crc16.Next(crc16.Next(crc16.Seed, 1), 0)
	if ab == ba {
		t.Fatalf("crc16 should depend on word order: ab=0x%04x, ba=0x%04x", ab, ba)
	}
}

func TestSingleBitFlip(t *testing.T) {
	const word = 0x8c00000012345678
	ref := crc16.Next(crc16.Seed, word)
	for i := 0; i < 64; i++ {
		got := crc16.Next(crc16.Seed, word^(1<<i))
		if got == ref {
			t.Fatalf("bit %d flip not detected: crc=0x%04x", i, got)
		}
	}
}
