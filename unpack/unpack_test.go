// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unpack

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/rawfile"
)

func block(t *testing.T, fed, nhits int) []byte {
	t.Helper()
	words := make([]uint64, nhits)
	for i := range words {
		words[i] = ab7.HitWord(&ab7.HitData{
			Station: 1, SuperLayer: 1, Channel: i, BX: 100, SubBX: 1,
		}, nil)
	}
	raw, err := ab7.NewEncoder(fed).Encode(ab7.Event{
		Event: 7,
		BX:    100,
		Slots: []ab7.Slot{{ID: 1, Firmware: 11, Words: words}},
	})
	if err != nil {
		t.Fatalf("could not encode block: %+v", err)
	}
	return raw
}

func TestUnpack(t *testing.T) {
	msg := new(strings.Builder)
	u := New(
		[]int{1368, 1369, 1370, 1371},
		[]ab7.Option{ab7.WithLogger(nil)},
		WithLogger(log.New(msg, "", 0)),
	)

	corrupt := block(t, 1370, 1)
	corrupt[len(corrupt)-6] ^= 0xff

	evt := rawfile.Event{
		ID: 7,
		Blocks: []rawfile.Record{
			{Event: 7, FED: 1369, Data: block(t, 1369, 3)},
			{Event: 7, FED: 1368, Data: block(t, 1368, 2)},
			{Event: 7, FED: 1370, Data: corrupt},
			{Event: 7, FED: 42, Data: block(t, 42, 5)},
		},
	}

	res, err := u.Unpack(context.Background(), evt)
	if err != nil {
		t.Fatalf("could not unpack event: %+v", err)
	}

	if got, want := res.Event, uint32(7); got != want {
		t.Fatalf("invalid event: got=%d, want=%d", got, want)
	}
	if got, want := len(res.Blocks), 2; got != want {
		t.Fatalf("invalid number of blocks: got=%d, want=%d", got, want)
	}
	if res.Blocks[0].FED != 1368 || res.Blocks[1].FED != 1369 {
		t.Fatalf("invalid block order: %d, %d", res.Blocks[0].FED, res.Blocks[1].FED)
	}
	if got, want := len(res.Hits), 5; got != want {
		t.Fatalf("invalid number of hits: got=%d, want=%d", got, want)
	}
	if len(res.Rejects) != 1 || res.Rejects[0].FED != 1370 {
		t.Fatalf("invalid rejects: %+v", res.Rejects)
	}
	if !errors.Is(res.Rejects[0].Err, ab7.ErrChecksum) {
		t.Fatalf("invalid reject error: %+v", res.Rejects[0].Err)
	}
	if len(res.Missing) != 1 || res.Missing[0] != 1371 {
		t.Fatalf("invalid missing FEDs: %v", res.Missing)
	}
	if !strings.Contains(msg.String(), "no block for FED 1371") {
		t.Fatalf("missing FED not logged:\n%s", msg.String())
	}

	var st Stats
	st.Add(res)
	st.Add(res)
	if got, want := st.String(), "events=2 blocks=4 rejects=2 missing=2 warnings=0 hits=10 primitives=0"; got != want {
		t.Fatalf("invalid stats:\ngot= %q\nwant=%q", got, want)
	}
}

func TestUnpackCanceled(t *testing.T) {
	u := New([]int{1368}, nil, WithLogger(log.New(io.Discard, "", 0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evt := rawfile.Event{
		ID:     1,
		Blocks: []rawfile.Record{{Event: 1, FED: 1368, Data: block(t, 1368, 1)}},
	}
	_, err := u.Unpack(ctx, evt)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FEDs = []int{1368, 1369}
	u, err := FromConfig(cfg, geom.NewNominal(), WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("could not create unpacker: %+v", err)
	}
	if got := u.FEDs(); len(got) != 2 || got[0] != 1368 || got[1] != 1369 {
		t.Fatalf("invalid FEDs: %v", got)
	}

	cfg.ChannelMapping = "may2019"
	_, err = FromConfig(cfg, geom.NewNominal())
	if err == nil {
		t.Fatalf("expected an error")
	}
}
