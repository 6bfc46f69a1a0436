// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chmap

import (
	"fmt"
	"testing"
)

func TestMap(t *testing.T) {
	type triple struct {
		sl, layer, wire int
		ok              bool
	}
	for _, tc := range []struct {
		m    Mapping
		ch   int
		sl   int
		want triple
	}{
		{Dummy, 0, 3, triple{1, 1, 1, true}},
		{Dummy, 7, 3, triple{1, 4, 2, true}},
		{Dummy, 511, 2, triple{1, 4, 128, true}},
		{June2019, 0, 2, triple{2, 4, 1, true}},
		{June2019, 6, 3, triple{3, 2, 2, true}},
		{July2019, 0, 2, triple{2, 1, 1, true}},
		{July2019, 6, 3, triple{3, 3, 2, true}},
		{July2019, 243, 1, triple{1, 4, 61, true}},
		{April2019, 0, 2, triple{3, 4, 21, true}},
		{April2019, 1, 2, triple{3, 2, 21, true}},
		{April2019, 2, 2, triple{3, 3, 21, true}},
		{April2019, 3, 2, triple{3, 1, 21, true}},
		{April2019, 16, 2, triple{1, 4, 5, true}},
		{April2019, 35, 2, triple{1, 1, 13, true}},
		{April2019, 48, 2, triple{1, 4, 9, true}},
		{April2019, 64, 2, triple{1, 4, 1, true}},
		{April2019, 95, 2, triple{3, 1, 20, true}},
		{April2019, 96, 2, triple{1, 4, 21, true}},
		{April2019, 127, 2, triple{1, 1, 20, true}},
		{April2019, 128, 2, triple{InvalidSL, 4, InvalidWire, false}},
		{July2019, 512, 2, triple{InvalidSL, InvalidWire, InvalidWire, false}},
		{Dummy, -1, 2, triple{InvalidSL, InvalidWire, InvalidWire, false}},
	} {
		t.Run(fmt.Sprintf("%v-%d", tc.m, tc.ch), func(t *testing.T) {
			var got triple
			got.sl, got.layer, got.wire, got.ok = tc.m.Map(tc.ch, tc.sl)
			if got != tc.want {
				t.Fatalf("invalid mapping:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}

func TestMapPure(t *testing.T) {
	for _, m := range []Mapping{Dummy, April2019, June2019, July2019} {
		for ch := 0; ch < NumChannels; ch++ {
			s1, l1, w1, ok1 := m.Map(ch, 2)
			s2, l2, w2, ok2 := m.Map(ch, 2)
			if s1 != s2 || l1 != l2 || w1 != w2 || ok1 != ok2 {
				t.Fatalf("%v: channel %d not reproducible", m, ch)
			}
			if ok1 && (l1 < 1 || l1 > 4) {
				t.Fatalf("%v: channel %d: invalid layer %d", m, ch, l1)
			}
		}
	}
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Mapping
		err  bool
	}{
		{"", Dummy, false},
		{"dummy", Dummy, false},
		{"april2019", April2019, false},
		{"June2019", June2019, false},
		{" july2019 ", July2019, false},
		{"may2019", Dummy, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.name)
			switch {
			case err != nil && !tc.err:
				t.Fatalf("could not parse %q: %+v", tc.name, err)
			case err == nil && tc.err:
				t.Fatalf("expected an error for %q", tc.name)
			}
			if got != tc.want {
				t.Fatalf("invalid mapping: got=%v, want=%v", got, tc.want)
			}
			if !tc.err && tc.name != "" {
				back, err := Parse(got.String())
				if err != nil || back != got {
					t.Fatalf("round-trip failed: %v -> %q -> %v (err=%v)", got, got.String(), back, err)
				}
			}
		})
	}
}
