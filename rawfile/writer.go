// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Writer writes records to a raw file.
type Writer struct {
	f   io.Closer
	w   *bufio.Writer
	buf [hdrSize]byte
	err error
}

// Create creates the named raw file.
func Create(fname string) (*Writer, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("rawfile: could not create %q: %w", fname, err)
	}

	w := NewWriter(f)
	w.f = f
	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return w, nil
}

// NewWriter returns a writer of raw records to w.
func NewWriter(w io.Writer) *Writer {
	wr := &Writer{w: bufio.NewWriter(w)}
	_, err := wr.w.WriteString(Magic)
	if err != nil {
		wr.err = fmt.Errorf("rawfile: could not write magic: %w", err)
	}
	return wr
}

// Write writes a record.
func (w *Writer) Write(rec Record) error {
	if w.err != nil {
		return w.err
	}
	err := rec.validate()
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(w.buf[0:4], rec.Event)
	binary.LittleEndian.PutUint16(w.buf[4:6], uint16(rec.FED))
	binary.LittleEndian.PutUint16(w.buf[6:8], 0)
	binary.LittleEndian.PutUint32(w.buf[8:12], uint32(len(rec.Data)))

	_, err = w.w.Write(w.buf[:])
	if err != nil {
		w.err = fmt.Errorf("rawfile: could not write record header: %w", err)
		return w.err
	}
	_, err = w.w.Write(rec.Data)
	if err != nil {
		w.err = fmt.Errorf("rawfile: could not write record payload: %w", err)
		return w.err
	}
	return nil
}

// Flush flushes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	if err != nil {
		w.err = fmt.Errorf("rawfile: could not flush: %w", err)
	}
	return w.err
}

// Close flushes buffered records and closes the underlying file,
// if the writer was created with Create.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.f != nil {
		e := w.f.Close()
		if e != nil && err == nil {
			err = fmt.Errorf("rawfile: could not close file: %w", e)
		}
		w.f = nil
	}
	return err
}
