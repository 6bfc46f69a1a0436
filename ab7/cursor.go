// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"encoding/binary"
	"log"

	"github.com/go-lpc/dtab7/internal/crc16"
	"golang.org/x/xerrors"
)

const wordSize = 8

// cursor reads 64-bit words from a block.
//
// Words are folded into the CRC when they are read from the buffer.
// Words pushed back are replayed by the next read, without being folded
// nor counted again.
type cursor struct {
	buf  []byte
	pos  int // byte offset
	n    int // words read from buf
	fifo []uint64
	crc  crc16.Hash16

	dump *log.Logger
}

func newCursor(buf []byte) cursor {
	return cursor{
		buf:  buf,
		fifo: make([]uint64, 0, 2),
		crc:  crc16.New(),
	}
}

func (cur *cursor) next() (uint64, error) {
	return cur.read(^uint64(0))
}

// read returns the next word. When the word comes from the buffer, it is
// folded into the CRC after applying mask.
func (cur *cursor) read(mask uint64) (uint64, error) {
	if len(cur.fifo) > 0 {
		w := cur.fifo[0]
		cur.fifo = cur.fifo[1:]
		return w, nil
	}

	if len(cur.buf)-cur.pos < wordSize {
		return 0, xerrors.Errorf(
			"ab7: could not read word %d (offset=%d, size=%d): %w",
			cur.n, cur.pos, len(cur.buf), ErrTruncated,
		)
	}

	w := binary.LittleEndian.Uint64(cur.buf[cur.pos:])
	cur.pos += wordSize
	cur.n++
	cur.crc.Update(w & mask)
	if cur.dump != nil {
		cur.dump.Printf("dump HEX: %016x", w)
	}
	return w, nil
}

func (cur *cursor) pushBack(w uint64) {
	cur.fifo = append(cur.fifo, w)
}

func (cur *cursor) pending() int { return len(cur.fifo) }
