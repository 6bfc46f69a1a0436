// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawfile

import (
	"encoding/binary"
	"fmt"

	"github.com/go-lpc/dtab7/internal/mmap"
)

// Reader reads records from a raw file.
//
// Record data alias the content of the file: they are valid until the
// reader is closed.
type Reader struct {
	h   *mmap.Handle
	buf []byte
	pos int

	rec  Record
	peek *Record
	evt  Event
	err  error
}

// Open opens the named raw file.
func Open(fname string) (*Reader, error) {
	h, err := mmap.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("rawfile: could not open %q: %w", fname, err)
	}

	r, err := NewReader(h.Bytes())
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("rawfile: could not read %q: %w", fname, err)
	}
	r.h = h
	return r, nil
}

// NewReader returns a reader of the raw records held in buf.
func NewReader(buf []byte) (*Reader, error) {
	if len(buf) < len(Magic) || string(buf[:len(Magic)]) != Magic {
		return nil, errMagic
	}
	return &Reader{buf: buf, pos: len(Magic)}, nil
}

// Close releases the resources held by the reader.
func (r *Reader) Close() error {
	if r.h == nil {
		return nil
	}
	err := r.h.Close()
	r.h = nil
	return err
}

// Next advances to the next record.
// It returns false at the end of the file or on error.
func (r *Reader) Next() bool {
	if r.peek != nil {
		r.rec = *r.peek
		r.peek = nil
		return true
	}
	rec, ok := r.read()
	if ok {
		r.rec = rec
	}
	return ok
}

// Record returns the current record.
func (r *Reader) Record() Record { return r.rec }

// NextEvent advances to the next event, gathering its contiguous records.
func (r *Reader) NextEvent() bool {
	if !r.Next() {
		return false
	}

	r.evt = Event{
		ID:     r.rec.Event,
		Blocks: []Record{r.rec},
	}
	for {
		rec, ok := r.read()
		if !ok {
			return r.err == nil
		}
		if rec.Event != r.evt.ID {
			r.peek = &rec
			return true
		}
		r.evt.Blocks = append(r.evt.Blocks, rec)
	}
}

// Event returns the current event.
func (r *Reader) Event() Event { return r.evt }

// Err returns the first error encountered while reading.
func (r *Reader) Err() error { return r.err }

func (r *Reader) read() (Record, bool) {
	if r.err != nil || r.pos == len(r.buf) {
		return Record{}, false
	}

	if len(r.buf)-r.pos < hdrSize {
		r.err = fmt.Errorf("rawfile: truncated record header at offset %d", r.pos)
		return Record{}, false
	}

	hdr := r.buf[r.pos : r.pos+hdrSize]
	rec := Record{
		Event: binary.LittleEndian.Uint32(hdr[0:4]),
		FED:   int(binary.LittleEndian.Uint16(hdr[4:6])),
	}
	size := int64(binary.LittleEndian.Uint32(hdr[8:12]))
	beg := int64(r.pos + hdrSize)
	if int64(len(r.buf))-beg < size {
		r.err = fmt.Errorf(
			"rawfile: truncated record payload for event %d FED %d (offset=%d, size=%d)",
			rec.Event, rec.FED, r.pos, size,
		)
		return Record{}, false
	}
	end := beg + size

	rec.Data = r.buf[beg:end:end]
	r.pos = int(end)
	return rec, true
}
